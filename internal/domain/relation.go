package domain

import (
	"fmt"
	"strings"
)

// RelationKind names one many-to-many relationship. Every kind is owned by
// a sample and resolves to the same string-keyed Diff.
type RelationKind int

const (
	RelationUnknown     RelationKind = iota
	RelationFileSample               // sample -> sequencing files
	RelationSampleLabel              // sample -> pathogen labels
)

// RelationKinds lists every known kind in display order
var RelationKinds = []RelationKind{RelationFileSample, RelationSampleLabel}

func (k RelationKind) String() string {
	switch k {
	case RelationFileSample:
		return "file-sample"
	case RelationSampleLabel:
		return "sample-label"
	default:
		return "unknown"
	}
}

// Title is the human readable name used by the terminal UI
func (k RelationKind) Title() string {
	switch k {
	case RelationFileSample:
		return "Files"
	case RelationSampleLabel:
		return "Labels"
	default:
		return "Unknown"
	}
}

// OwnerType returns the record type on the "one" side
func (k RelationKind) OwnerType() RecordType {
	switch k {
	case RelationFileSample, RelationSampleLabel:
		return RecordTypeSample
	default:
		return RecordTypeUnknown
	}
}

// ItemType returns the record type on the "many" side
func (k RelationKind) ItemType() RecordType {
	switch k {
	case RelationFileSample:
		return RecordTypeFile
	case RelationSampleLabel:
		return RecordTypeLabel
	default:
		return RecordTypeUnknown
	}
}

// ParseRelationKind accepts the canonical name or the item type name
// ("file-sample", "files", "sample-label", "labels", ...)
func ParseRelationKind(s string) (RelationKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "file-sample", "sample-file", "files", "file":
		return RelationFileSample, nil
	case "sample-label", "label-sample", "labels", "label":
		return RelationSampleLabel, nil
	default:
		return RelationUnknown, fmt.Errorf("unknown relation kind: %q", s)
	}
}

// Relation identifies the relation of one kind for one owner record
type Relation struct {
	Kind    RelationKind
	OwnerID string
}

func (r Relation) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.OwnerID)
}
