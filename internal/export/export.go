// Package export assembles download archives of logo images. Items are
// processed one at a time with per-item failure isolation: a payload that
// cannot be fetched or converted is logged and skipped, and the archive is
// still produced with whatever succeeded.
package export

import (
	"archive/zip"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"logoden/internal/config"
	"logoden/internal/errors"
	"logoden/internal/store"
)

// Format selects the archived image representation.
type Format string

const (
	FormatOriginal Format = "original" // archive the stored bytes as-is
	FormatSVG      Format = "svg"      // convert each image through a Converter
)

// Input contains parameters for the Export operation.
type Input struct {
	IDs     []string // logo ids to archive (the displayed-logo ids)
	OwnerID string
	Path    string // optional, default: ~/.logoden/exports/logos-<timestamp>.zip
	Format  Format // default: FormatOriginal
}

// Output contains the result of the Export operation.
type Output struct {
	Path       string   `json:"path"`
	Count      int      `json:"count"`
	Skipped    []string `json:"skipped,omitempty"` // ids that failed and were left out
	ExportedAt int64    `json:"exported_at"`
}

// Export fetches each requested logo's payload and writes a zip archive.
func Export(ctx context.Context, st store.Store, conv Converter, cfg *config.Config, input Input) (*Output, error) {
	if len(input.IDs) == 0 {
		return nil, errors.NewInvalidRequest("no logos selected for export")
	}
	format := input.Format
	if format == "" {
		format = FormatOriginal
	}
	if format == FormatSVG && conv == nil {
		conv = EmbedConverter{}
	}

	now := time.Now()
	exportedAt := now.Unix()

	// Determine archive path
	archivePath := input.Path
	if archivePath == "" {
		var err error
		archivePath, err = defaultArchivePath(now)
		if err != nil {
			return nil, err
		}
	}

	// Validate ALL paths (both user-provided and default) for security
	if err := ValidateArchivePath(archivePath, cfg); err != nil {
		return nil, err
	}

	// Ensure parent directory exists
	dir := filepath.Dir(archivePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Write to temp file first, then atomic rename to preserve existing file on failure
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := archivePath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create archive file: %w", err))
	}

	// Clean up temp file on failure (any existing archive is preserved)
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	zw := zip.NewWriter(file)

	count := 0
	var skipped []string
	usedNames := make(map[string]bool)

	for _, id := range input.IDs {
		select {
		case <-ctx.Done():
			return nil, errors.NewCancelled("export")
		default:
		}

		name, data, err := renderItem(ctx, st, conv, format, id, input.OwnerID, usedNames)
		if err != nil {
			log.Printf("export: skipping %s: %v", id, err)
			skipped = append(skipped, id)
			continue
		}

		w, err := zw.Create(name)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, errors.NewInternal(err)
		}
		count++
	}

	if err := zw.Close(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Ensure file is written
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// Close before atomic replace (required on Windows; fine elsewhere).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close archive file: %w", err))
	}
	file = nil

	// Check if destination is a symlink (os.Rename would follow it)
	if info, err := os.Lstat(archivePath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInternal(fmt.Errorf("export path is a symlink"))
	}

	// Finalize export by renaming temp file into place.
	//
	// Note: On Windows, os.Rename fails if the destination exists. We
	// intentionally fail safely (preserving the existing file) instead of a
	// non-atomic delete+rename that could lose the original if rename fails.
	if err := os.Rename(tempPath, archivePath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(archivePath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; overwriting is not supported on Windows yet (choose a new path or delete the existing file)")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return &Output{
		Path:       archivePath,
		Count:      count,
		Skipped:    skipped,
		ExportedAt: exportedAt,
	}, nil
}

// renderItem fetches one logo and produces its archive entry name and bytes.
func renderItem(ctx context.Context, st store.Store, conv Converter, format Format, id, ownerID string, usedNames map[string]bool) (string, []byte, error) {
	payload, err := st.FetchFullLogo(ctx, id, ownerID)
	if err != nil {
		return "", nil, err
	}
	if payload == nil {
		return "", nil, errors.NewNotFound(id)
	}

	mimeType, data, err := DecodeDataURI(payload.ImageDataURI)
	if err != nil {
		return "", nil, err
	}

	base := DeriveFilename(payload.Metadata)

	if format == FormatSVG {
		svg, err := conv.ConvertToSVG(data, mimeType, ConvertOptions{})
		if err != nil {
			return "", nil, err
		}
		return uniqueName(base, usedNames) + ".svg", []byte(svg), nil
	}

	return uniqueName(base, usedNames) + extensionForMIME(mimeType), data, nil
}

// defaultArchivePath generates the default archive path.
// Format: ~/.logoden/exports/logos-<timestamp>.zip
func defaultArchivePath(now time.Time) (string, error) {
	exportsDir, err := DefaultExportsDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("logos-%s.zip", now.Format("2006-01-02T150405"))
	return filepath.Join(exportsDir, filename), nil
}
