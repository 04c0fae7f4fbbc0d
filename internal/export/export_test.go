package export

import (
	"archive/zip"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"testing"

	"logoden/internal/config"
	"logoden/internal/errors"
	"logoden/internal/logo"
	"logoden/internal/store"
)

// payloadStore serves fixed payloads by id; absent ids yield (nil, nil).
type payloadStore struct {
	payloads map[string]*logo.Payload
	failIDs  map[string]bool
}

func (s *payloadStore) FetchFullLogo(ctx context.Context, id, ownerID string) (*logo.Payload, error) {
	if s.failIDs[id] {
		return nil, errors.NewInternal(fmt.Errorf("fetch %s refused", id))
	}
	return s.payloads[id], nil
}

func (s *payloadStore) FetchOriginals(ctx context.Context, ownerID string) ([]logo.Metadata, error) {
	return nil, nil
}
func (s *payloadStore) FetchRevisions(ctx context.Context, originalID, ownerID string) ([]logo.Metadata, error) {
	return nil, nil
}
func (s *payloadStore) DeleteLogo(ctx context.Context, id, ownerID string) error { return nil }
func (s *payloadStore) RenameLogo(ctx context.Context, id, newName, ownerID string) error {
	return nil
}
func (s *payloadStore) CheckInCatalog(ctx context.Context, id string) (*store.CatalogStatus, error) {
	return &store.CatalogStatus{}, nil
}
func (s *payloadStore) AddToCatalog(ctx context.Context, id, imageDataURI string, params logo.Parameters, companyName string) (string, error) {
	return "", nil
}

var _ store.Store = (*payloadStore)(nil)

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})
}

func newPayloadStore(names map[string]string) *payloadStore {
	s := &payloadStore{payloads: make(map[string]*logo.Payload), failIDs: make(map[string]bool)}
	for id, name := range names {
		s.payloads[id] = &logo.Payload{
			Metadata:     logo.Metadata{ID: id, Name: name, Params: logo.Parameters{CompanyName: "Acme"}},
			ImageDataURI: pngDataURI(),
		}
	}
	return s
}

func archiveEntries(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("OpenReader(%s): %v", path, err)
	}
	defer r.Close()
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names
}

func TestExport_WritesArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Harbor", "b": "Beacon"})

	out, err := Export(context.Background(), st, nil, cfg, Input{
		IDs:     []string{"a", "b"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if out.Count != 2 || len(out.Skipped) != 0 {
		t.Errorf("output = %+v, want 2 entries, none skipped", out)
	}

	entries := archiveEntries(t, out.Path)
	if len(entries) != 2 {
		t.Fatalf("archive holds %d entries, want 2: %v", len(entries), entries)
	}
	found := map[string]bool{}
	for _, e := range entries {
		found[e] = true
	}
	if !found["Harbor.png"] || !found["Beacon.png"] {
		t.Errorf("entries = %v, want Harbor.png and Beacon.png", entries)
	}
}

func TestExport_PartialFailureStillProducesArchive(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Harbor", "b": "Beacon"})
	st.failIDs["b"] = true

	out, err := Export(context.Background(), st, nil, cfg, Input{
		IDs:     []string{"a", "b", "ghost"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if out.Count != 1 {
		t.Errorf("count = %d, want 1", out.Count)
	}
	if len(out.Skipped) != 2 {
		t.Errorf("skipped = %v, want [b ghost]", out.Skipped)
	}
	if entries := archiveEntries(t, out.Path); len(entries) != 1 || entries[0] != "Harbor.png" {
		t.Errorf("entries = %v, want [Harbor.png]", entries)
	}
}

func TestExport_DuplicateNamesSuffixed(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Untitled", "b": "Untitled", "c": "Untitled"})

	out, err := Export(context.Background(), st, nil, cfg, Input{
		IDs:     []string{"a", "b", "c"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	// All three fall back to the company name and get distinct suffixes
	entries := archiveEntries(t, out.Path)
	found := map[string]bool{}
	for _, e := range entries {
		found[e] = true
	}
	for _, want := range []string{"Acme.png", "Acme-2.png", "Acme-3.png"} {
		if !found[want] {
			t.Errorf("entries = %v, missing %s", entries, want)
		}
	}
}

func TestExport_SVGFormat(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Harbor"})

	out, err := Export(context.Background(), st, nil, cfg, Input{
		IDs:     []string{"a"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
		Format:  FormatSVG,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if entries := archiveEntries(t, out.Path); len(entries) != 1 || entries[0] != "Harbor.svg" {
		t.Errorf("entries = %v, want [Harbor.svg]", entries)
	}
}

func TestExport_EmptySelection(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(nil)

	_, err := Export(context.Background(), st, nil, cfg, Input{
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export() with no ids error = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_InvalidPathRejected(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Harbor"})

	_, err := Export(context.Background(), st, nil, cfg, Input{
		IDs:     []string{"a"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.tar"),
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("Export() to .tar error = %v, want INVALID_REQUEST", err)
	}
}

func TestExport_Cancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{AllowedPaths: []string{dir}}
	st := newPayloadStore(map[string]string{"a": "Harbor"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Export(ctx, st, nil, cfg, Input{
		IDs:     []string{"a"},
		OwnerID: "u1",
		Path:    filepath.Join(dir, "out.zip"),
	})
	if !errors.Is(err, errors.ErrCancelled) {
		t.Errorf("Export(cancelled ctx) error = %v, want CANCELLED", err)
	}
}
