package history

import (
	"context"

	"logoden/internal/logo"
)

// LoadPage fetches, filters, and commits one page of the history.
//
// The call stamps a fresh generation token before touching the store. On
// completion the token is compared against the latest issued one: a stale
// result is discarded silently — (nil, nil), no state update — so a slow
// early response can never overwrite a later one after rapid page or
// filter changes. Errors are surfaced only when the call is still current.
//
// A change of search term clears the selection set before fetching.
func (s *Session) LoadPage(ctx context.Context, q Query) (*PageView, error) {
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	if q.Page <= 0 {
		q.Page = 1
	}

	s.mu.Lock()
	if q.Search != s.lastSearch {
		s.selection = make(map[string]struct{})
		s.lastSearch = q.Search
	}
	s.mu.Unlock()

	seq := s.gen.Add(1)

	groups, err := s.scanGroups(ctx)
	if err != nil {
		return nil, s.finishFetch(seq, err)
	}

	logo.SortNewestFirst(groups)
	filtered := logo.Filter(groups, q.Search, q.Industry)

	pg, start, end := paginate(len(filtered), q.Page, q.PageSize)
	items := make([]logo.Group, end-start)
	copy(items, filtered[start:end])

	view := &PageView{
		Groups:     items,
		Pagination: pg,
		Query: Query{
			Page:     pg.Page,
			PageSize: q.PageSize,
			Search:   q.Search,
			Industry: q.Industry,
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.gen.Load() {
		// A newer fetch was issued while this one was in flight
		return nil, nil
	}
	s.current = view
	s.lastErr = nil
	return view, nil
}

// finishFetch records err if the fetch is still current; a stale failure is
// swallowed entirely.
func (s *Session) finishFetch(seq int64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.gen.Load() {
		return nil
	}
	s.lastErr = err
	return err
}

// scanGroups retrieves the user's complete metadata set: every original
// with its revisions attached. Revisions are fetched up front because the
// either/or filter semantics need them before slicing. This is a full scan
// and is priced accordingly by callers (see SelectAllFiltered).
func (s *Session) scanGroups(ctx context.Context) ([]logo.Group, error) {
	originals, err := s.store.FetchOriginals(ctx, s.ownerID)
	if err != nil {
		return nil, err
	}

	groups := make([]logo.Group, 0, len(originals))
	for _, orig := range originals {
		revisions, err := s.store.FetchRevisions(ctx, orig.ID, s.ownerID)
		if err != nil {
			return nil, err
		}
		groups = append(groups, logo.Group{Original: orig, Revisions: revisions})
	}
	return groups, nil
}

// paginate clamps page into [1, totalPages] and returns the slice bounds.
// totalPages is never below 1, so an over-range request serves the last
// non-empty page instead of an empty one.
func paginate(total, page, pageSize int) (Pagination, int, int) {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Pagination{
		Page:       page,
		Limit:      pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}, start, end
}
