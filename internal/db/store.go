package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"logoden/internal/errors"
	"logoden/internal/logo"
	"logoden/internal/store"
)

// Store implements store.Store on the local SQLite database.
type Store struct {
	DB *sql.DB
}

// NewStore wraps an initialized database handle.
func NewStore(database *sql.DB) *Store {
	return &Store{DB: database}
}

var _ store.Store = (*Store)(nil)

// FetchOriginals returns all non-revision logos for a user.
func (s *Store) FetchOriginals(ctx context.Context, ownerID string) ([]logo.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("fetch originals")
	}
	return ListOriginals(s.DB, ownerID)
}

// FetchRevisions returns the revisions of an original.
func (s *Store) FetchRevisions(ctx context.Context, originalID, ownerID string) ([]logo.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("fetch revisions")
	}
	return ListRevisions(s.DB, originalID, ownerID)
}

// FetchFullLogo returns the heavy payload, or (nil, nil) when absent.
func (s *Store) FetchFullLogo(ctx context.Context, id, ownerID string) (*logo.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("fetch logo")
	}
	return GetFullLogo(s.DB, id, ownerID)
}

// DeleteLogo removes a logo, cascading to revisions of an original.
func (s *Store) DeleteLogo(ctx context.Context, id, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("delete logo")
	}
	return DeleteLogo(s.DB, id, ownerID)
}

// RenameLogo updates a logo's name in place.
func (s *Store) RenameLogo(ctx context.Context, id, newName, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("rename logo")
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return errors.NewInvalidRequest("name must not be empty")
	}
	return RenameLogo(s.DB, id, newName, ownerID)
}

// CheckInCatalog reports catalog membership for a logo.
func (s *Store) CheckInCatalog(ctx context.Context, id string) (*store.CatalogStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("catalog check")
	}
	code, ok, err := GetCatalogEntry(s.DB, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &store.CatalogStatus{IsInCatalog: false}, nil
	}
	return &store.CatalogStatus{IsInCatalog: true, CatalogCode: &code}, nil
}

// AddToCatalog adds a logo to the curated catalog. An already-cataloged
// logo yields an ALREADY_IN_CATALOG conflict carrying the existing code.
func (s *Store) AddToCatalog(ctx context.Context, id, imageDataURI string, params logo.Parameters, companyName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewCancelled("catalog add")
	}

	if existing, ok, err := GetCatalogEntry(s.DB, id); err != nil {
		return "", err
	} else if ok {
		return "", errors.NewAlreadyInCatalog(id, existing)
	}

	code := newCatalogCode()
	if err := InsertCatalogEntry(s.DB, id, code, companyName, time.Now().Unix()); err != nil {
		return "", err
	}
	return code, nil
}

// CreateLogoInput holds the fields for storing a freshly generated logo.
type CreateLogoInput struct {
	OwnerID      string
	Name         string // defaults to logo.DefaultName
	Params       logo.Parameters
	ImageDataURI string
}

// CreateLogo stores a new original logo and returns the full record.
func (s *Store) CreateLogo(ctx context.Context, input CreateLogoInput) (*logo.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("create logo")
	}
	if input.OwnerID == "" {
		return nil, errors.NewInvalidRequest("owner_id is required")
	}
	if input.ImageDataURI == "" {
		return nil, errors.NewInvalidRequest("image data is required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = logo.DefaultName
	}

	p := &logo.Payload{
		Metadata: logo.Metadata{
			ID:        newID(),
			OwnerID:   input.OwnerID,
			Name:      name,
			CreatedAt: time.Now().Unix(),
			Params:    input.Params,
		},
		ImageDataURI: input.ImageDataURI,
	}
	if err := InsertLogo(s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateRevision stores a new revision of an original. Revision numbers are
// assigned monotonically from 1; the cap of logo.MaxRevisions per original
// is enforced here, at the store boundary.
func (s *Store) CreateRevision(ctx context.Context, originalID, ownerID, imageDataURI string, params logo.Parameters) (*logo.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("create revision")
	}
	if imageDataURI == "" {
		return nil, errors.NewInvalidRequest("image data is required")
	}

	original, err := GetFullLogo(s.DB, originalID, ownerID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, errors.NewNotFound(originalID)
	}
	if original.IsRevision {
		return nil, errors.NewInvalidRequest("cannot revise a revision; revise its original")
	}

	count, err := CountRevisions(s.DB, originalID, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= logo.MaxRevisions {
		return nil, errors.NewRevisionLimit(originalID, logo.MaxRevisions)
	}

	maxNum, err := MaxRevisionNumber(s.DB, originalID, ownerID)
	if err != nil {
		return nil, err
	}
	num := maxNum + 1

	p := &logo.Payload{
		Metadata: logo.Metadata{
			ID:             newID(),
			OwnerID:        ownerID,
			Name:           original.Name,
			CreatedAt:      time.Now().Unix(),
			Params:         params,
			IsRevision:     true,
			OriginalLogoID: &originalID,
			RevisionNumber: &num,
		},
		ImageDataURI: imageDataURI,
	}
	if err := InsertLogo(s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// newID generates a ULID string.
func newID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// newCatalogCode derives a short human-readable catalog code.
func newCatalogCode() string {
	id := newID()
	return "LG-" + id[len(id)-6:]
}
