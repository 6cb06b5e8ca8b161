package application

import (
	"fmt"
	"strings"

	"seqtag/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "ownerID" -> "owner ID")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"ownerID":  "owner ID",
		"itemID":   "item ID",
		"recordID": "record ID",
		"fileID":   "file ID",
		"sampleID": "sample ID",
		"labelID":  "label ID",
		"name":     "name",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateRecordID checks that an ID is present and well formed.
// Returns a ValidationError otherwise.
func ValidateRecordID(fieldName, id string) error {
	if err := ValidateRequired(fieldName, id); err != nil {
		return err
	}
	if !domain.IsValidRecordID(id) {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("invalid %s: %q", formatFieldName(fieldName), id),
		}
	}
	return nil
}

// ValidateRecordIDs checks every ID in ids and reports the first bad one
func ValidateRecordIDs(fieldName string, ids []string) error {
	for _, id := range ids {
		if err := ValidateRecordID(fieldName, id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRelation checks that a relation has a known kind and a valid owner
func ValidateRelation(rel domain.Relation) error {
	if rel.Kind == domain.RelationUnknown {
		return &ValidationError{
			Field:   "kind",
			Message: "relation kind is required",
		}
	}
	return ValidateRecordID("ownerID", rel.OwnerID)
}
