package logo

// MaxRevisions is the maximum number of revisions a single original logo may
// carry. The store enforces the cap; UI layers only reflect it.
const MaxRevisions = 3

// DefaultName is the placeholder name assigned to logos at creation time.
const DefaultName = "Untitled"

// Parameters is the generation parameter bag attached to every logo. The
// core treats it as opaque except for the fields used by search and
// industry filtering.
type Parameters struct {
	// CompanyName is the business name the logo was generated for
	CompanyName string `json:"company_name"`

	// Style is the requested visual style (e.g. "minimalist", "vintage")
	Style string `json:"style,omitempty"`

	// Colors is the requested color palette
	Colors []string `json:"colors,omitempty"`

	// Industry is the business industry category
	Industry string `json:"industry,omitempty"`

	// Prompt is the full generation prompt, kept for revision context
	Prompt string `json:"prompt,omitempty"`
}

// Metadata is the lightweight logo record, excluding the image payload.
type Metadata struct {
	// ID is a ULID that uniquely identifies this logo
	ID string `json:"id"`

	// OwnerID identifies the owning user (partition key)
	OwnerID string `json:"owner_id"`

	// Name is the user-assigned name, mutable, defaults to "Untitled"
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the logo was generated
	CreatedAt int64 `json:"created_at"`

	// Params holds the generation parameters
	Params Parameters `json:"params"`

	// IsRevision marks derived logos
	IsRevision bool `json:"is_revision"`

	// OriginalLogoID points at the root of the revision chain (nullable,
	// set iff IsRevision)
	OriginalLogoID *string `json:"original_logo_id,omitempty"`

	// RevisionNumber is assigned monotonically from 1 per original
	// (nullable, set iff IsRevision)
	RevisionNumber *int `json:"revision_number,omitempty"`
}

// Payload is the heavy logo record: metadata plus the encoded image.
type Payload struct {
	Metadata

	// ImageDataURI is the base64-encoded image (data URI), immutable after
	// generation
	ImageDataURI string `json:"image_data_uri"`
}

// Group is an original logo together with its ordered revisions. Revisions
// are sorted by ascending RevisionNumber.
type Group struct {
	Original  Metadata   `json:"original"`
	Revisions []Metadata `json:"revisions"`
}

// Displayed returns the logo this group presents and acts upon: the
// highest-numbered revision if any exist, else the original.
func (g *Group) Displayed() Metadata {
	if len(g.Revisions) == 0 {
		return g.Original
	}
	best := g.Revisions[0]
	for _, r := range g.Revisions[1:] {
		if revisionNumber(r) > revisionNumber(best) {
			best = r
		}
	}
	return best
}

// CanRevise reports whether another revision may be created for this group.
func (g *Group) CanRevise() bool {
	return len(g.Revisions) < MaxRevisions
}

func revisionNumber(m Metadata) int {
	if m.RevisionNumber == nil {
		return 0
	}
	return *m.RevisionNumber
}
