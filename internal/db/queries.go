package db

import (
	"database/sql"
	"encoding/json"
	"strings"

	"logoden/internal/errors"
	"logoden/internal/logo"
)

// metadataColumns lists the lightweight columns; image_data_uri is
// deliberately excluded so list queries never drag payloads off disk.
const metadataColumns = `id, owner_id, name, created_at, params_json,
	is_revision, original_logo_id, revision_number`

// InsertLogo stores a new logo record, payload included.
func InsertLogo(db *sql.DB, p *logo.Payload) error {
	paramsJSON, err := json.Marshal(p.Params)
	if err != nil {
		return errors.NewInternal(err)
	}

	query := `
		INSERT INTO logos (
			id, owner_id, name, created_at, params_json,
			is_revision, original_logo_id, revision_number, image_data_uri
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = db.Exec(query,
		p.ID, p.OwnerID, p.Name, p.CreatedAt, string(paramsJSON),
		boolToInt(p.IsRevision), toNullString(p.OriginalLogoID),
		toNullInt(p.RevisionNumber), p.ImageDataURI,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewInvalidRequest("duplicate logo id or revision number")
		}
		return errors.NewInternal(err)
	}

	return nil
}

// ListOriginals returns all non-revision logos for a user, metadata only,
// newest first.
func ListOriginals(db *sql.DB, ownerID string) ([]logo.Metadata, error) {
	query := `
		SELECT ` + metadataColumns + `
		FROM logos
		WHERE owner_id = ? AND is_revision = 0
		ORDER BY created_at DESC, id DESC
	`
	rows, err := db.Query(query, ownerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanMetadataRows(rows)
}

// ListRevisions returns the revisions of an original, metadata only, by
// ascending revision number.
func ListRevisions(db *sql.DB, originalID, ownerID string) ([]logo.Metadata, error) {
	query := `
		SELECT ` + metadataColumns + `
		FROM logos
		WHERE original_logo_id = ? AND owner_id = ? AND is_revision = 1
		ORDER BY revision_number ASC
	`
	rows, err := db.Query(query, originalID, ownerID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	return scanMetadataRows(rows)
}

// GetFullLogo returns the heavy record for a logo, or (nil, nil) when it
// does not exist for that owner.
func GetFullLogo(db *sql.DB, id, ownerID string) (*logo.Payload, error) {
	query := `
		SELECT ` + metadataColumns + `, image_data_uri
		FROM logos
		WHERE id = ? AND owner_id = ?
	`
	row := db.QueryRow(query, id, ownerID)

	var p logo.Payload
	var paramsJSON sql.NullString
	var isRevision int
	var originalID sql.NullString
	var revisionNumber sql.NullInt64
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt, &paramsJSON,
		&isRevision, &originalID, &revisionNumber, &p.ImageDataURI)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := fillMetadata(&p.Metadata, paramsJSON, isRevision, originalID, revisionNumber); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteLogo removes a logo. When the logo is an original, its revisions
// are removed in the same transaction.
func DeleteLogo(db *sql.DB, id, ownerID string) error {
	tx, err := db.Begin()
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	var isRevision int
	err = tx.QueryRow(`SELECT is_revision FROM logos WHERE id = ? AND owner_id = ?`, id, ownerID).Scan(&isRevision)
	if err == sql.ErrNoRows {
		return errors.NewNotFound(id)
	}
	if err != nil {
		return errors.NewInternal(err)
	}

	if isRevision == 0 {
		if _, err := tx.Exec(`DELETE FROM logos WHERE original_logo_id = ? AND owner_id = ?`, id, ownerID); err != nil {
			return errors.NewInternal(err)
		}
	}
	if _, err := tx.Exec(`DELETE FROM logos WHERE id = ? AND owner_id = ?`, id, ownerID); err != nil {
		return errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// RenameLogo updates a logo's name in place.
func RenameLogo(db *sql.DB, id, newName, ownerID string) error {
	res, err := db.Exec(`UPDATE logos SET name = ? WHERE id = ? AND owner_id = ?`, newName, id, ownerID)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// CountRevisions returns how many revisions an original carries.
func CountRevisions(db *sql.DB, originalID, ownerID string) (int, error) {
	var count int
	err := db.QueryRow(`
		SELECT COUNT(*) FROM logos
		WHERE original_logo_id = ? AND owner_id = ? AND is_revision = 1
	`, originalID, ownerID).Scan(&count)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return count, nil
}

// MaxRevisionNumber returns the highest assigned revision number for an
// original, or 0 when it has none.
func MaxRevisionNumber(db *sql.DB, originalID, ownerID string) (int, error) {
	var maxNum sql.NullInt64
	err := db.QueryRow(`
		SELECT MAX(revision_number) FROM logos
		WHERE original_logo_id = ? AND owner_id = ? AND is_revision = 1
	`, originalID, ownerID).Scan(&maxNum)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	if !maxNum.Valid {
		return 0, nil
	}
	return int(maxNum.Int64), nil
}

// GetCatalogEntry returns the catalog code for a logo, or ("", false) when
// the logo is not cataloged.
func GetCatalogEntry(db *sql.DB, logoID string) (string, bool, error) {
	var code string
	err := db.QueryRow(`SELECT catalog_code FROM catalog_entries WHERE logo_id = ?`, logoID).Scan(&code)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.NewInternal(err)
	}
	return code, true, nil
}

// InsertCatalogEntry records a logo's catalog membership.
func InsertCatalogEntry(db *sql.DB, logoID, code, companyName string, addedAt int64) error {
	_, err := db.Exec(`
		INSERT INTO catalog_entries (logo_id, catalog_code, company_name, added_at)
		VALUES (?, ?, ?, ?)
	`, logoID, code, companyName, addedAt)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Raced with another insert; surface the existing code
			existing, ok, getErr := GetCatalogEntry(db, logoID)
			if getErr == nil && ok {
				return errors.NewAlreadyInCatalog(logoID, existing)
			}
		}
		return errors.NewInternal(err)
	}
	return nil
}

// scanMetadataRows scans metadata-only rows.
func scanMetadataRows(rows *sql.Rows) ([]logo.Metadata, error) {
	var items []logo.Metadata
	for rows.Next() {
		var m logo.Metadata
		var paramsJSON sql.NullString
		var isRevision int
		var originalID sql.NullString
		var revisionNumber sql.NullInt64
		err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.CreatedAt, &paramsJSON,
			&isRevision, &originalID, &revisionNumber)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := fillMetadata(&m, paramsJSON, isRevision, originalID, revisionNumber); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

func fillMetadata(m *logo.Metadata, paramsJSON sql.NullString, isRevision int, originalID sql.NullString, revisionNumber sql.NullInt64) error {
	if paramsJSON.Valid && paramsJSON.String != "" {
		if err := json.Unmarshal([]byte(paramsJSON.String), &m.Params); err != nil {
			return errors.NewInternal(err)
		}
	}
	m.IsRevision = isRevision != 0
	if originalID.Valid {
		s := originalID.String
		m.OriginalLogoID = &s
	}
	if revisionNumber.Valid {
		n := int(revisionNumber.Int64)
		m.RevisionNumber = &n
	}
	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
