package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logoden/internal/cache"
	"logoden/internal/config"
	"logoden/internal/db"
	"logoden/internal/export"
	"logoden/internal/logo"
)

// TestFullWorkflow exercises the complete history lifecycle against the real
// SQLite store: create → revise → browse → search → select → catalog →
// rename → export → bulk delete.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	st := db.NewStore(database)
	images := cache.NewImageCache(20, 5*time.Minute)
	flags := cache.NewCatalogFlags(tmpDir)
	session := NewSession(st, images, flags, "u1", 4)
	ctx := context.Background()

	// 1. Create six originals and revise the last one
	var ids []string
	for i := 0; i < 6; i++ {
		p, err := st.CreateLogo(ctx, db.CreateLogoInput{
			OwnerID:      "u1",
			Name:         fmt.Sprintf("Mark %d", i),
			Params:       logo.Parameters{CompanyName: "Acme", Industry: "tech"},
			ImageDataURI: "data:image/png;base64,iVBORw0KGgo=",
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	rev, err := st.CreateRevision(ctx, ids[5], "u1", "data:image/png;base64,iVBORw0KGgo=",
		logo.Parameters{CompanyName: "Acme", Industry: "tech"})
	require.NoError(t, err)

	// 2. Browse page 1: 4 of 6 groups, newest first, revised group on top
	view, err := session.LoadPage(ctx, Query{Page: 1})
	require.NoError(t, err)
	require.Len(t, view.Groups, 4)
	require.Equal(t, 6, view.Pagination.Total)
	require.Equal(t, 2, view.Pagination.TotalPages)
	require.True(t, view.Pagination.HasMore)
	require.Equal(t, ids[5], view.Groups[0].Original.ID)
	require.Equal(t, rev.ID, view.Groups[0].Displayed().ID)
	require.True(t, view.Groups[0].CanRevise())

	// 3. Search narrows by name
	view, err = session.LoadPage(ctx, Query{Page: 1, Search: "mark 3"})
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	require.Equal(t, ids[3], view.Groups[0].Original.ID)

	// 4. Add to catalog; conflict on re-add confirms the same code
	flag, err := session.AddToCatalog(ctx, ids[3])
	require.NoError(t, err)
	require.True(t, flag.IsInCatalog)
	require.NotNil(t, flag.CatalogCode)
	again, err := session.AddToCatalog(ctx, ids[3])
	require.NoError(t, err)
	require.Equal(t, *flag.CatalogCode, *again.CatalogCode)

	// Durable cache survives a session rebuild
	session2 := NewSession(st, images, cache.NewCatalogFlags(tmpDir), "u1", 4)
	persisted, pending := session2.CatalogFlag(ids[3])
	require.True(t, persisted.IsInCatalog)
	require.False(t, pending)

	// 5. Rename is reflected in the committed page (still matching the
	// active search)
	view, err = session.Rename(ctx, ids[3], "Flagship Mark 3")
	require.NoError(t, err)
	require.Len(t, view.Groups, 1)
	require.Equal(t, "Flagship Mark 3", view.Groups[0].Original.Name)

	// 6. Export the current selection
	session.ClearSelection()
	if _, err := session.LoadPage(ctx, Query{Page: 1, Search: ""}); err != nil {
		t.Fatalf("LoadPage reset: %v", err)
	}
	session.SelectPage()
	cfg := &config.Config{AllowedPaths: []string{tmpDir}}
	out, err := export.Export(ctx, st, nil, cfg, export.Input{
		IDs:     session.SelectedIDs(),
		OwnerID: "u1",
		Path:    filepath.Join(tmpDir, "out.zip"),
	})
	require.NoError(t, err)
	require.Equal(t, 4, out.Count)
	require.Empty(t, out.Skipped)

	// 7. Bulk delete the selection; re-fetch shows the remainder. The
	// revised group's displayed id is the revision, so deleting it leaves
	// that original behind.
	result, err := session.BulkDeleteSelected(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, result.Deleted)
	require.Zero(t, result.Failed)
	require.Zero(t, session.SelectionCount())

	current := session.Current()
	require.Equal(t, 3, current.Pagination.Total)
	require.Equal(t, 1, current.Pagination.TotalPages)
	require.Empty(t, current.Groups[0].Revisions)
}
