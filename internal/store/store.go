// Package store defines the collaborator operations the history core
// depends on. The core is transport-agnostic: any backend exposing these
// operations (a local database, a remote API) can sit behind it.
package store

import (
	"context"

	"logoden/internal/logo"
)

// CatalogStatus is the result of a catalog membership check.
type CatalogStatus struct {
	IsInCatalog bool    `json:"is_in_catalog"`
	CatalogCode *string `json:"catalog_code"`
}

// Store is the persistence collaborator backing the logo history.
type Store interface {
	// FetchOriginals returns all non-revision logos for a user, metadata
	// only (image payload excluded).
	FetchOriginals(ctx context.Context, ownerID string) ([]logo.Metadata, error)

	// FetchRevisions returns the revisions of an original, ordered by
	// ascending revision number. At most logo.MaxRevisions entries.
	FetchRevisions(ctx context.Context, originalID, ownerID string) ([]logo.Metadata, error)

	// FetchFullLogo returns the heavy payload for a logo, or (nil, nil)
	// when the logo does not exist.
	FetchFullLogo(ctx context.Context, id, ownerID string) (*logo.Payload, error)

	// DeleteLogo removes a logo. Deleting an original cascades to its
	// revisions.
	DeleteLogo(ctx context.Context, id, ownerID string) error

	// RenameLogo updates a logo's name in place.
	RenameLogo(ctx context.Context, id, newName, ownerID string) error

	// CheckInCatalog reports whether a logo is in the curated catalog.
	CheckInCatalog(ctx context.Context, id string) (*CatalogStatus, error)

	// AddToCatalog adds a logo to the curated catalog and returns its
	// assigned code. If the logo is already cataloged, the error is an
	// ALREADY_IN_CATALOG conflict carrying the existing code.
	AddToCatalog(ctx context.Context, id, imageDataURI string, params logo.Parameters, companyName string) (string, error)
}
