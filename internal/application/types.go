package application

import "seqtag/internal/domain"

// Re-export record and relation types for use by adapters
type (
	RecordType   = domain.RecordType
	Record       = domain.Record
	RelationKind = domain.RelationKind
	Relation     = domain.Relation
)

const (
	RecordTypeUnknown = domain.RecordTypeUnknown
	RecordTypeFile    = domain.RecordTypeFile
	RecordTypeSample  = domain.RecordTypeSample
	RecordTypeLabel   = domain.RecordTypeLabel
)

// ParseRelationKind parses a relation kind name
func ParseRelationKind(s string) (RelationKind, error) {
	return domain.ParseRelationKind(s)
}

// ParseRecordType parses a record type name
func ParseRecordType(s string) RecordType {
	return domain.ParseRecordType(s)
}
