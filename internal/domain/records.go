package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// RecordType identifies which collection a record belongs to
type RecordType int

const (
	RecordTypeUnknown RecordType = iota
	RecordTypeFile               // sequencing file
	RecordTypeSample             // biological sample
	RecordTypeLabel              // pathogen label
)

func (t RecordType) String() string {
	switch t {
	case RecordTypeFile:
		return "file"
	case RecordTypeSample:
		return "sample"
	case RecordTypeLabel:
		return "label"
	default:
		return "unknown"
	}
}

// ParseRecordType accepts singular or plural names ("file", "files", ...)
func ParseRecordType(s string) RecordType {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "file":
		return RecordTypeFile
	case "sample":
		return RecordTypeSample
	case "label":
		return RecordTypeLabel
	default:
		return RecordTypeUnknown
	}
}

// File is a sequencing output file tracked by the tool
type File struct {
	ID    string // e.g., "RUN042_L001_R1"
	Name  string // e.g., "RUN042_S7_L001_R1_001.fastq.gz"
	Path  string // Location on the sequencer share
	Run   string // Sequencing run identifier
	Lane  int
	Reads int64
	Tags  []string
}

// Sample is a biological sample that files and labels attach to
type Sample struct {
	ID          string // e.g., "S-2024-0117"
	Name        string
	Description string
}

// Label is a pathogen label assigned to samples
type Label struct {
	ID    string // e.g., "sars-cov-2"
	Name  string // e.g., "SARS-CoV-2"
	Taxon string // NCBI taxonomy ID, optional
}

// Record is the common view of any record used by list screens
type Record struct {
	Type RecordType
	ID   string
	Name string
	Info string // One-line detail (run/lane, description, taxon)
}

// AsRecord converts a file to its list view
func (f File) AsRecord() Record {
	info := f.Run
	if f.Lane > 0 {
		info = fmt.Sprintf("%s L%03d", f.Run, f.Lane)
	}
	return Record{Type: RecordTypeFile, ID: f.ID, Name: f.Name, Info: info}
}

// AsRecord converts a sample to its list view
func (s Sample) AsRecord() Record {
	return Record{Type: RecordTypeSample, ID: s.ID, Name: s.Name, Info: s.Description}
}

// AsRecord converts a label to its list view
func (l Label) AsRecord() Record {
	info := ""
	if l.Taxon != "" {
		info = "taxon " + l.Taxon
	}
	return Record{Type: RecordTypeLabel, ID: l.ID, Name: l.Name, Info: info}
}

var recordIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// IsValidRecordID reports whether id can be used as a record identifier
func IsValidRecordID(id string) bool {
	return recordIDRegex.MatchString(id)
}

// RecordIDs returns the ids of records in list order
func RecordIDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
