package domain

import "time"

// EvidenceKind classifies a digital artifact by its declared media type.
// Derived once at intake and immutable afterwards.
type EvidenceKind string

const (
	EvidenceKindImage  EvidenceKind = "image"
	EvidenceKindReport EvidenceKind = "report"
)

var imageMediaTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

var reportMediaTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
}

// EvidenceKindForMediaType maps a declared media type onto an evidence
// kind. Returns false when the media type is outside both allow-lists.
func EvidenceKindForMediaType(mediaType string) (EvidenceKind, bool) {
	if _, ok := imageMediaTypes[mediaType]; ok {
		return EvidenceKindImage, true
	}
	if _, ok := reportMediaTypes[mediaType]; ok {
		return EvidenceKindReport, true
	}
	return "", false
}

// Evidence is a digital artifact attached to a case, distinct from
// physical specimens. StorageRef is an opaque locator into the blob
// store; the core never inspects file bytes.
type Evidence struct {
	ID         string
	CaseID     string
	Kind       EvidenceKind
	FileName   string
	MediaType  string
	SizeBytes  int64
	StorageRef string
	Notes      string
	UploadedBy string
	UploadedAt time.Time
}
