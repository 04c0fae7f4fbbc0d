package history

import (
	"context"
	"fmt"
	"log"

	"logoden/internal/cache"
	"logoden/internal/errors"
)

// DeleteOne deletes a single logo, drops it from the selection set, and
// re-fetches the current page. If the deletion emptied the last page, the
// clamp in LoadPage lands the re-fetch on the new final page rather than
// returning an empty one.
func (s *Session) DeleteOne(ctx context.Context, id string) (*PageView, error) {
	if err := s.store.DeleteLogo(ctx, id, s.ownerID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.selection, id)
	q := s.currentQueryLocked()
	s.mu.Unlock()

	return s.LoadPage(ctx, q)
}

// BulkDeleteResult summarizes a bulk delete pass.
type BulkDeleteResult struct {
	Deleted int    `json:"deleted"`
	Failed  int    `json:"failed"`
	Message string `json:"message"`
}

// BulkDeleteSelected deletes every selected logo sequentially — at most one
// in-flight delete at a time, bounding backend load and keeping per-item
// failure accounting simple. A failing delete is logged and skipped; it
// never aborts the batch. Afterwards the selection is cleared regardless of
// failures and the current page is re-fetched.
func (s *Session) BulkDeleteSelected(ctx context.Context) (*BulkDeleteResult, error) {
	ids := s.SelectedIDs()

	deleted, failed := 0, 0
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("bulk delete")
		default:
		}

		if err := s.store.DeleteLogo(ctx, id, s.ownerID); err != nil {
			log.Printf("bulk delete: skipping %s: %v", id, err)
			failed++
			continue
		}
		deleted++
	}

	s.mu.Lock()
	s.selection = make(map[string]struct{})
	q := s.currentQueryLocked()
	s.mu.Unlock()

	if _, err := s.LoadPage(ctx, q); err != nil {
		return nil, err
	}

	return &BulkDeleteResult{
		Deleted: deleted,
		Failed:  failed,
		Message: formatBulkDeleteMessage(deleted, failed),
	}, nil
}

// Rename updates a logo's name and re-fetches the current page so the new
// name is reflected in committed state.
func (s *Session) Rename(ctx context.Context, id, newName string) (*PageView, error) {
	if err := s.store.RenameLogo(ctx, id, newName, s.ownerID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	q := s.currentQueryLocked()
	s.mu.Unlock()

	return s.LoadPage(ctx, q)
}

// AddToCatalog submits a logo to the curated catalog, tracking an
// optimistic pending flag while the call is in flight.
//
// A conflict ("already in catalog") is treated identically to success,
// using the code carried by the conflict: either way the confirmed positive
// flag is merged into the durable cache and session state. Any other
// failure clears the pending flag and leaves the prior flag untouched —
// a failed add never implies "not in catalog".
func (s *Session) AddToCatalog(ctx context.Context, id string) (*cache.Flag, error) {
	s.mu.Lock()
	s.catalogPending[id] = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.catalogPending, id)
		s.mu.Unlock()
	}()

	payload, err := s.store.FetchFullLogo(ctx, id, s.ownerID)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.NewNotFound(id)
	}

	code, err := s.store.AddToCatalog(ctx, id, payload.ImageDataURI, payload.Params, payload.Params.CompanyName)
	if err != nil {
		if !errors.Is(err, errors.ErrAlreadyInCatalog) {
			return nil, err
		}
		code = errors.CatalogCode(err)
	}

	flag := cache.Flag{IsInCatalog: true, CatalogCode: &code}
	if s.flags != nil {
		s.flags.WriteMerge(map[string]cache.Flag{id: flag})
	}
	s.mu.Lock()
	s.catalogState[id] = flag
	s.mu.Unlock()
	return &flag, nil
}

// RefreshCatalogFlags reconciles catalog flags for the given logo ids
// against the backend. Results of successful checks are merged into the
// durable cache and session state. A failed check writes nothing: a
// transient error must never downgrade a previously confirmed membership.
func (s *Session) RefreshCatalogFlags(ctx context.Context, ids []string) {
	confirmed := make(map[string]cache.Flag)
	for _, id := range ids {
		status, err := s.store.CheckInCatalog(ctx, id)
		if err != nil || status == nil {
			continue
		}
		confirmed[id] = cache.Flag{
			IsInCatalog: status.IsInCatalog,
			CatalogCode: status.CatalogCode,
		}
	}
	if len(confirmed) == 0 {
		return
	}

	if s.flags != nil {
		s.flags.WriteMerge(confirmed)
	}
	s.mu.Lock()
	for id, f := range confirmed {
		s.catalogState[id] = f
	}
	s.mu.Unlock()
}

// formatBulkDeleteMessage creates a human-readable message for the bulk
// delete result.
func formatBulkDeleteMessage(deleted, failed int) string {
	if deleted == 0 && failed == 0 {
		return "No logos were selected"
	}

	logoWord := "logo"
	if deleted != 1 {
		logoWord = "logos"
	}
	msg := fmt.Sprintf("Deleted %d %s", deleted, logoWord)
	if failed > 0 {
		msg += fmt.Sprintf(" (%d failed and were skipped)", failed)
	}
	return msg
}
