// Package history implements the logo-history browsing core: one page of
// metadata at a time, a bounded image cache consulted by per-card lazy
// loaders, a durable catalog-flag cache, and reconciliation of all of it
// after delete and catalog mutations. Stale fetch responses are suppressed
// by a monotonically increasing generation token rather than cancellation.
package history

import (
	"sync"
	"sync/atomic"

	"logoden/internal/cache"
	"logoden/internal/logo"
	"logoden/internal/store"
)

// Query addresses one page of the filtered history.
type Query struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// Pagination describes the committed page's position in the filtered total.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// PageView is one committed page of logo groups. Query carries the clamped
// page actually served, which may differ from the page requested.
type PageView struct {
	Groups     []logo.Group `json:"groups"`
	Pagination Pagination   `json:"pagination"`
	Query      Query        `json:"query"`
}

// Session owns the browsing state for one user: the committed page, the
// selection set, catalog flags, and both caches. It is safe for concurrent
// use; fetches racing each other resolve through the generation token, with
// only the newest allowed to commit.
type Session struct {
	store   store.Store
	images  *cache.ImageCache
	flags   *cache.CatalogFlags
	ownerID string

	pageSize int

	// gen is the fetch generation; only the stamp matching gen at commit
	// time may mutate visible state
	gen atomic.Int64

	mu             sync.Mutex
	current        *PageView
	lastErr        error
	lastSearch     string
	selection      map[string]struct{}
	catalogPending map[string]bool
	catalogState   map[string]cache.Flag
}

// NewSession creates a session for ownerID. The catalog-flag state is
// seeded from the durable cache so membership paints before any network
// confirmation.
func NewSession(st store.Store, images *cache.ImageCache, flags *cache.CatalogFlags, ownerID string, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = 12
	}
	s := &Session{
		store:          st,
		images:         images,
		flags:          flags,
		ownerID:        ownerID,
		pageSize:       pageSize,
		selection:      make(map[string]struct{}),
		catalogPending: make(map[string]bool),
		catalogState:   make(map[string]cache.Flag),
	}
	if flags != nil {
		for id, f := range flags.ReadAll() {
			s.catalogState[id] = f
		}
	}
	return s
}

// OwnerID returns the owning user id.
func (s *Session) OwnerID() string {
	return s.ownerID
}

// Images returns the session's image cache, shared with card loaders.
func (s *Session) Images() *cache.ImageCache {
	return s.images
}

// Current returns the last committed page view, or nil before the first
// successful fetch.
func (s *Session) Current() *PageView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// LastError returns the error from the most recent current-generation
// fetch, or nil. Stale errors are never recorded.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// CatalogFlag returns the known catalog flag for a logo and whether an
// add-to-catalog call is currently pending for it.
func (s *Session) CatalogFlag(id string) (cache.Flag, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalogState[id], s.catalogPending[id]
}

// currentQueryLocked returns the query to re-run after a mutation: the
// committed query if a page has been served, else the first default page.
func (s *Session) currentQueryLocked() Query {
	if s.current != nil {
		return s.current.Query
	}
	return Query{Page: 1, PageSize: s.pageSize}
}
