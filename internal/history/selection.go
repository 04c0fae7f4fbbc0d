package history

import (
	"context"
	"sort"

	"logoden/internal/logo"
)

// ToggleSelect adds or removes a logo id from the selection set.
func (s *Session) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
	} else {
		s.selection[id] = struct{}{}
	}
}

// IsSelected reports whether a logo id is in the selection set.
func (s *Session) IsSelected(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selection[id]
	return ok
}

// SelectedIDs returns the selection as a sorted slice, for deterministic
// batch ordering.
func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.selection))
	for id := range s.selection {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectionCount returns the size of the selection set.
func (s *Session) SelectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selection)
}

// ClearSelection empties the selection set.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = make(map[string]struct{})
}

// SelectPage unions the displayed-logo ids of the committed page into the
// selection set and returns the new selection size. Selection is
// independent of pagination, so ids gathered here survive page navigation.
func (s *Session) SelectPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return len(s.selection)
	}
	for i := range s.current.Groups {
		s.selection[s.current.Groups[i].Displayed().ID] = struct{}{}
	}
	return len(s.selection)
}

// SelectAllFiltered replaces the selection set with the displayed-logo ids
// of EVERY group matching the current search and industry filters, ignoring
// pagination. Unlike SelectPage this re-runs the full metadata scan and
// filter — it costs a complete pass over the user's history and is kept as
// its own code path so page navigation never pays that price by accident.
func (s *Session) SelectAllFiltered(ctx context.Context) (int, error) {
	s.mu.Lock()
	q := s.currentQueryLocked()
	s.mu.Unlock()

	groups, err := s.scanGroups(ctx)
	if err != nil {
		return 0, err
	}
	logo.SortNewestFirst(groups)
	filtered := logo.Filter(groups, q.Search, q.Industry)

	selection := make(map[string]struct{}, len(filtered))
	for i := range filtered {
		selection[filtered[i].Displayed().ID] = struct{}{}
	}

	s.mu.Lock()
	s.selection = selection
	n := len(selection)
	s.mu.Unlock()
	return n, nil
}
