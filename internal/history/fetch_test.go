package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"logoden/internal/cache"
	"logoden/internal/logo"
)

func newTestSession(f *fakeStore, pageSize int) *Session {
	images := cache.NewImageCache(20, 5*time.Minute)
	return NewSession(f, images, nil, "u1", pageSize)
}

func TestLoadPage_NewestFirstAndPaginated(t *testing.T) {
	f := newFakeStore()
	seedN(f, 13)
	s := newTestSession(f, 4)

	view, err := s.LoadPage(context.Background(), Query{Page: 1})
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}

	if len(view.Groups) != 4 {
		t.Fatalf("page 1 has %d groups, want 4", len(view.Groups))
	}
	// Newest (highest timestamp) first
	if got := view.Groups[0].Original.ID; got != "logo-12" {
		t.Errorf("first group = %s, want logo-12", got)
	}

	pg := view.Pagination
	if pg.Total != 13 || pg.TotalPages != 4 || pg.Page != 1 || !pg.HasMore {
		t.Errorf("pagination = %+v, want total 13, 4 pages, page 1, has_more", pg)
	}

	// Last page holds the remainder
	view, err = s.LoadPage(context.Background(), Query{Page: 4})
	if err != nil {
		t.Fatalf("LoadPage(page 4) error = %v", err)
	}
	if len(view.Groups) != 1 {
		t.Errorf("page 4 has %d groups, want 1", len(view.Groups))
	}
	if view.Pagination.HasMore {
		t.Errorf("last page reports has_more")
	}
}

func TestLoadPage_ClampsOverRangePage(t *testing.T) {
	f := newFakeStore()
	seedN(f, 10) // pageSize 4 → 3 pages
	s := newTestSession(f, 4)

	view, err := s.LoadPage(context.Background(), Query{Page: 99})
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}

	if view.Pagination.Page != 3 {
		t.Errorf("served page = %d, want clamp to 3", view.Pagination.Page)
	}
	if view.Query.Page != 3 {
		t.Errorf("committed query page = %d, want 3", view.Query.Page)
	}
	if len(view.Groups) != 2 {
		t.Errorf("clamped page has %d groups, want 2", len(view.Groups))
	}
}

func TestLoadPage_EmptyHistory(t *testing.T) {
	f := newFakeStore()
	s := newTestSession(f, 4)

	view, err := s.LoadPage(context.Background(), Query{Page: 5})
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}

	pg := view.Pagination
	if pg.Total != 0 || pg.TotalPages != 1 || pg.Page != 1 || pg.HasMore {
		t.Errorf("pagination = %+v, want total 0, 1 page, page 1", pg)
	}
	if len(view.Groups) != 0 {
		t.Errorf("empty history served %d groups", len(view.Groups))
	}
}

func TestLoadPage_StaleResponseSuppressed(t *testing.T) {
	f := newFakeStore()
	seedN(f, 5)
	s := newTestSession(f, 4)

	gate := make(chan struct{})
	f.gates = []chan struct{}{gate, nil}

	type result struct {
		view *PageView
		err  error
	}
	firstDone := make(chan result, 1)
	go func() {
		v, err := s.LoadPage(context.Background(), Query{Page: 1})
		firstDone <- result{v, err}
	}()

	// Wait for the first fetch to reach the store before issuing the second
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		started := f.fetchCalls >= 1
		f.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first fetch never reached the store")
		case <-time.After(time.Millisecond):
		}
	}

	second, err := s.LoadPage(context.Background(), Query{Page: 2})
	if err != nil {
		t.Fatalf("second LoadPage() error = %v", err)
	}

	// Release the slow first fetch; its result must be discarded
	close(gate)
	r := <-firstDone
	if r.err != nil {
		t.Errorf("stale fetch returned error %v, want nil", r.err)
	}
	if r.view != nil {
		t.Errorf("stale fetch returned a view, want nil")
	}

	current := s.Current()
	if current == nil || current.Pagination.Page != second.Pagination.Page {
		t.Errorf("committed view is not the newest fetch: %+v", current)
	}
}

func TestLoadPage_StaleErrorSwallowed(t *testing.T) {
	f := newFakeStore()
	seedN(f, 3)
	s := newTestSession(f, 4)

	gate := make(chan struct{})
	f.gates = []chan struct{}{gate, nil}
	f.fetchErr = fmt.Errorf("backend blew up")

	errDone := make(chan error, 1)
	go func() {
		_, err := s.LoadPage(context.Background(), Query{Page: 1})
		errDone <- err
	}()

	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		started := f.fetchCalls >= 1
		f.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first fetch never reached the store")
		case <-time.After(time.Millisecond):
		}
	}

	// The second fetch succeeds
	f.mu.Lock()
	f.fetchErr = nil
	f.mu.Unlock()
	if _, err := s.LoadPage(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("second LoadPage() error = %v", err)
	}

	f.mu.Lock()
	f.fetchErr = fmt.Errorf("backend blew up")
	f.mu.Unlock()
	close(gate)

	if err := <-errDone; err != nil {
		t.Errorf("stale failure surfaced error %v, want nil", err)
	}
	if err := s.LastError(); err != nil {
		t.Errorf("LastError() = %v after stale failure, want nil", err)
	}
}

func TestLoadPage_CurrentErrorRecorded(t *testing.T) {
	f := newFakeStore()
	s := newTestSession(f, 4)
	f.fetchErr = fmt.Errorf("backend down")

	if _, err := s.LoadPage(context.Background(), Query{Page: 1}); err == nil {
		t.Fatalf("LoadPage() error = nil, want failure")
	}
	if s.LastError() == nil {
		t.Errorf("LastError() = nil, want recorded failure")
	}
}

func TestLoadPage_SearchChangeClearsSelection(t *testing.T) {
	f := newFakeStore()
	seedN(f, 6)
	s := newTestSession(f, 4)

	if _, err := s.LoadPage(context.Background(), Query{Page: 1}); err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}
	s.ToggleSelect("logo-00")
	s.ToggleSelect("logo-01")

	// Same search: selection survives page navigation
	if _, err := s.LoadPage(context.Background(), Query{Page: 2}); err != nil {
		t.Fatalf("LoadPage(page 2) error = %v", err)
	}
	if got := s.SelectionCount(); got != 2 {
		t.Errorf("selection after page change = %d, want 2", got)
	}

	// Changed search: selection is cleared
	if _, err := s.LoadPage(context.Background(), Query{Page: 1, Search: "acme"}); err != nil {
		t.Fatalf("LoadPage(search) error = %v", err)
	}
	if got := s.SelectionCount(); got != 0 {
		t.Errorf("selection after search change = %d, want 0", got)
	}
}

func TestLoadPage_RevisionMatchBringsGroup(t *testing.T) {
	f := newFakeStore()
	f.addOriginal(original("orig-1", 100, "Untitled", "Acme", "tech"))
	rev := logo.Metadata{
		ID:             "rev-1",
		OwnerID:        "u1",
		Name:           "Sunburst",
		CreatedAt:      150,
		Params:         logo.Parameters{CompanyName: "Solstice", Industry: "food"},
		IsRevision:     true,
		OriginalLogoID: strPtr("orig-1"),
		RevisionNumber: intPtr(1),
	}
	f.addRevision("orig-1", rev)
	f.addOriginal(original("orig-2", 200, "Plain", "Orbit", "tech"))

	s := newTestSession(f, 4)

	// The search term matches only the revision, yet the whole group appears
	view, err := s.LoadPage(context.Background(), Query{Page: 1, Search: "sunburst"})
	if err != nil {
		t.Fatalf("LoadPage() error = %v", err)
	}
	if len(view.Groups) != 1 || view.Groups[0].Original.ID != "orig-1" {
		t.Fatalf("groups = %+v, want only orig-1's group", view.Groups)
	}

	// The revision's industry also counts for the group
	view, err = s.LoadPage(context.Background(), Query{Page: 1, Industry: "food"})
	if err != nil {
		t.Fatalf("LoadPage(industry) error = %v", err)
	}
	if len(view.Groups) != 1 || view.Groups[0].Original.ID != "orig-1" {
		t.Fatalf("industry groups = %+v, want only orig-1's group", view.Groups)
	}

	// And the group displays its highest revision
	if got := view.Groups[0].Displayed().ID; got != "rev-1" {
		t.Errorf("Displayed().ID = %s, want rev-1", got)
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		total, page, pageSize            int
		wantPage, wantTotalPages         int
		wantStart, wantEnd               int
		wantHasMore                      bool
	}{
		{0, 1, 4, 1, 1, 0, 0, false},
		{13, 1, 4, 1, 4, 0, 4, true},
		{13, 4, 4, 4, 4, 12, 13, false},
		{13, 99, 4, 4, 4, 12, 13, false},
		{13, 0, 4, 1, 4, 0, 4, true},
		{8, 2, 4, 2, 2, 4, 8, false},
	}

	for _, tt := range tests {
		pg, start, end := paginate(tt.total, tt.page, tt.pageSize)
		if pg.Page != tt.wantPage || pg.TotalPages != tt.wantTotalPages ||
			start != tt.wantStart || end != tt.wantEnd || pg.HasMore != tt.wantHasMore {
			t.Errorf("paginate(%d, %d, %d) = %+v [%d:%d], want page %d/%d [%d:%d] hasMore=%v",
				tt.total, tt.page, tt.pageSize, pg, start, end,
				tt.wantPage, tt.wantTotalPages, tt.wantStart, tt.wantEnd, tt.wantHasMore)
		}
	}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
