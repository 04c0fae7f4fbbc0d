package export

import (
	"fmt"
	"strings"

	"logoden/internal/logo"
)

// DeriveFilename returns a filesystem-safe base name (no extension) for a
// logo. The logo's own name wins; a blank name or the literal "Untitled"
// placeholder falls back to the company name, then to "logo".
func DeriveFilename(m logo.Metadata) string {
	name := strings.TrimSpace(m.Name)
	if name == "" || name == logo.DefaultName {
		name = strings.TrimSpace(m.Params.CompanyName)
	}
	if name == "" {
		name = "logo"
	}
	return SanitizeForFilename(name)
}

// uniqueName returns base unmodified if unused, else base-2, base-3, ...
// used is updated with the returned name.
func uniqueName(base string, used map[string]bool) string {
	name := base
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s-%d", base, n)
	}
	used[name] = true
	return name
}

// SanitizeForFilename sanitizes a string for safe use in a filename.
// Removes/replaces characters that could be used for path traversal or injection.
func SanitizeForFilename(s string) string {
	// Replace path separators with dashes
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")

	// Replace ".." sequences (could be embedded)
	s = strings.ReplaceAll(s, "..", "-")

	// Remove null bytes and other control characters
	var result strings.Builder
	for _, r := range s {
		if r >= 32 && r != 127 { // printable ASCII and unicode
			result.WriteRune(r)
		}
	}
	s = result.String()

	// Collapse multiple dashes
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	// Trim leading/trailing dashes
	s = strings.Trim(s, "-")

	// If empty after sanitization, use a safe default
	if s == "" {
		s = "unnamed"
	}

	return s
}
