package commands

import (
	"context"
	"fmt"

	"seqtag/internal/application"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// CreateRecordResult contains the result of creating a record
type CreateRecordResult struct {
	Record  domain.Record
	Message string
}

// CreateRecordCommand creates a file, sample or label.
// Detail is the type-specific extra field: the file path, the sample
// description or the label taxon.
type CreateRecordCommand struct {
	repo   ports.RecordRepository
	Type   domain.RecordType
	ID     string
	Name   string
	Detail string

	// File only
	Run   string
	Lane  int
	Reads int64
	Tags  []string
}

// NewCreateRecordCommand creates a new CreateRecordCommand
func NewCreateRecordCommand(repo ports.RecordRepository, t domain.RecordType, id, name, detail string) *CreateRecordCommand {
	return &CreateRecordCommand{
		repo:   repo,
		Type:   t,
		ID:     id,
		Name:   name,
		Detail: detail,
	}
}

// Validate checks if the create operation is valid
func (c *CreateRecordCommand) Validate() error {
	if c.Type == domain.RecordTypeUnknown {
		return &application.ValidationError{
			Field:   "type",
			Message: "record type must be file, sample or label",
		}
	}

	if err := application.ValidateRecordID("recordID", c.ID); err != nil {
		return err
	}

	if err := application.ValidateRequired("name", c.Name); err != nil {
		return err
	}

	if c.Type != domain.RecordTypeFile && (c.Run != "" || c.Lane != 0 || c.Reads != 0 || len(c.Tags) > 0) {
		return &application.ValidationError{
			Field:   "run",
			Message: fmt.Sprintf("run, lane, reads and tags only apply to files, not %ss", c.Type),
		}
	}

	if c.Lane < 0 || c.Reads < 0 {
		return &application.ValidationError{
			Field:   "lane",
			Message: "lane and reads cannot be negative",
		}
	}

	return nil
}

// Execute runs the create record command
func (c *CreateRecordCommand) Execute(ctx context.Context) (*CreateRecordResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var (
		rec domain.Record
		err error
	)
	switch c.Type {
	case domain.RecordTypeFile:
		f := domain.File{
			ID:    c.ID,
			Name:  c.Name,
			Path:  c.Detail,
			Run:   c.Run,
			Lane:  c.Lane,
			Reads: c.Reads,
			Tags:  c.Tags,
		}
		err = c.repo.CreateFile(ctx, f)
		rec = f.AsRecord()
	case domain.RecordTypeSample:
		s := domain.Sample{ID: c.ID, Name: c.Name, Description: c.Detail}
		err = c.repo.CreateSample(ctx, s)
		rec = s.AsRecord()
	case domain.RecordTypeLabel:
		l := domain.Label{ID: c.ID, Name: c.Name, Taxon: c.Detail}
		err = c.repo.CreateLabel(ctx, l)
		rec = l.AsRecord()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", c.Type, err)
	}

	return &CreateRecordResult{
		Record:  rec,
		Message: fmt.Sprintf("Created %s: %s %s", c.Type, rec.ID, rec.Name),
	}, nil
}
