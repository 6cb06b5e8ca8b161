package domain

import (
	"testing"
)

func TestParseRelationKind(t *testing.T) {
	tests := []struct {
		input    string
		expected RelationKind
		wantErr  bool
	}{
		{"file-sample", RelationFileSample, false},
		{"files", RelationFileSample, false},
		{" Sample-File ", RelationFileSample, false},
		{"sample-label", RelationSampleLabel, false},
		{"labels", RelationSampleLabel, false},
		{"pathogens", RelationUnknown, true},
		{"", RelationUnknown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseRelationKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRelationKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if kind != tt.expected {
				t.Errorf("ParseRelationKind(%q) = %v, expected %v", tt.input, kind, tt.expected)
			}
		})
	}
}

func TestRelationKind_Sides(t *testing.T) {
	tests := []struct {
		kind  RelationKind
		owner RecordType
		item  RecordType
	}{
		{RelationFileSample, RecordTypeSample, RecordTypeFile},
		{RelationSampleLabel, RecordTypeSample, RecordTypeLabel},
		{RelationUnknown, RecordTypeUnknown, RecordTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.OwnerType(); got != tt.owner {
				t.Errorf("OwnerType() = %v, expected %v", got, tt.owner)
			}
			if got := tt.kind.ItemType(); got != tt.item {
				t.Errorf("ItemType() = %v, expected %v", got, tt.item)
			}
		})
	}
}

func TestParseRecordType(t *testing.T) {
	tests := []struct {
		input    string
		expected RecordType
	}{
		{"file", RecordTypeFile},
		{"files", RecordTypeFile},
		{"Samples", RecordTypeSample},
		{"label", RecordTypeLabel},
		{"run", RecordTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseRecordType(tt.input); got != tt.expected {
				t.Errorf("ParseRecordType(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsValidRecordID(t *testing.T) {
	valid := []string{"RUN042_L001_R1", "S-2024-0117", "sars-cov-2", "a", "x:1.2"}
	invalid := []string{"", " lead", "has space", "-dash", "semi;colon"}

	for _, id := range valid {
		if !IsValidRecordID(id) {
			t.Errorf("expected %q to be valid", id)
		}
	}
	for _, id := range invalid {
		if IsValidRecordID(id) {
			t.Errorf("expected %q to be invalid", id)
		}
	}
}

func TestFile_AsRecord(t *testing.T) {
	f := File{ID: "f1", Name: "x.fastq.gz", Run: "RUN042", Lane: 1}
	r := f.AsRecord()

	if r.Type != RecordTypeFile {
		t.Errorf("expected file record, got %v", r.Type)
	}
	if r.Info != "RUN042 L001" {
		t.Errorf("expected info %q, got %q", "RUN042 L001", r.Info)
	}
}
