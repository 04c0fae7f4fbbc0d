package history

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"logoden/internal/errors"
	"logoden/internal/logo"
	"logoden/internal/store"
)

// fakeStore is an in-memory store.Store for session tests. Behavior is
// tweakable per test via the error and gate fields.
type fakeStore struct {
	mu        sync.Mutex
	originals map[string]logo.Metadata
	revisions map[string][]logo.Metadata // originalID → revisions
	payloads  map[string]*logo.Payload
	catalog   map[string]string // logo id → catalog code

	// failDelete lists ids whose DeleteLogo fails
	failDelete map[string]bool

	// fetchErr, checkErr, addErr inject failures
	fetchErr error
	checkErr error
	addErr   error

	// gates holds per-call blocking channels for FetchOriginals; the Nth
	// call blocks until gates[N] is closed (nil entry = no blocking)
	gates      []chan struct{}
	fetchCalls int

	fullFetches int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		originals:  make(map[string]logo.Metadata),
		revisions:  make(map[string][]logo.Metadata),
		payloads:   make(map[string]*logo.Payload),
		catalog:    make(map[string]string),
		failDelete: make(map[string]bool),
	}
}

func (f *fakeStore) addOriginal(m logo.Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.originals[m.ID] = m
	f.payloads[m.ID] = &logo.Payload{Metadata: m, ImageDataURI: "data:image/png;base64,AAAA"}
}

func (f *fakeStore) addRevision(originalID string, m logo.Metadata) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revisions[originalID] = append(f.revisions[originalID], m)
	f.payloads[m.ID] = &logo.Payload{Metadata: m, ImageDataURI: "data:image/png;base64,AAAA"}
}

func (f *fakeStore) FetchOriginals(ctx context.Context, ownerID string) ([]logo.Metadata, error) {
	f.mu.Lock()
	n := f.fetchCalls
	f.fetchCalls++
	var gate chan struct{}
	if n < len(f.gates) {
		gate = f.gates[n]
	}
	err := f.fetchErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]logo.Metadata, 0, len(f.originals))
	for _, m := range f.originals {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FetchRevisions(ctx context.Context, originalID, ownerID string) ([]logo.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logo.Metadata(nil), f.revisions[originalID]...), nil
}

func (f *fakeStore) FetchFullLogo(ctx context.Context, id, ownerID string) (*logo.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fullFetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payloads[id], nil
}

func (f *fakeStore) DeleteLogo(ctx context.Context, id, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[id] {
		return errors.NewInternal(fmt.Errorf("delete %s refused", id))
	}
	if _, ok := f.originals[id]; !ok {
		return errors.NewNotFound(id)
	}
	delete(f.originals, id)
	delete(f.payloads, id)
	for _, r := range f.revisions[id] {
		delete(f.payloads, r.ID)
	}
	delete(f.revisions, id)
	return nil
}

func (f *fakeStore) RenameLogo(ctx context.Context, id, newName, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.originals[id]
	if !ok {
		return errors.NewNotFound(id)
	}
	m.Name = newName
	f.originals[id] = m
	f.payloads[id].Name = newName
	return nil
}

func (f *fakeStore) CheckInCatalog(ctx context.Context, id string) (*store.CatalogStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	if code, ok := f.catalog[id]; ok {
		return &store.CatalogStatus{IsInCatalog: true, CatalogCode: &code}, nil
	}
	return &store.CatalogStatus{IsInCatalog: false}, nil
}

func (f *fakeStore) AddToCatalog(ctx context.Context, id, imageDataURI string, params logo.Parameters, companyName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return "", f.addErr
	}
	if code, ok := f.catalog[id]; ok {
		return "", errors.NewAlreadyInCatalog(id, code)
	}
	code := "LG-" + id
	f.catalog[id] = code
	return code, nil
}

var _ store.Store = (*fakeStore)(nil)

// original builds metadata for an original logo.
func original(id string, createdAt int64, name, company, industry string) logo.Metadata {
	return logo.Metadata{
		ID:        id,
		OwnerID:   "u1",
		Name:      name,
		CreatedAt: createdAt,
		Params:    logo.Parameters{CompanyName: company, Industry: industry},
	}
}

// seedN populates n originals named logo-00 … with ascending timestamps.
func seedN(f *fakeStore, n int) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("logo-%02d", i)
		f.addOriginal(original(id, int64(1000+i), "Logo "+id, "Acme", "tech"))
	}
}
