package commands

import (
	"context"
	"fmt"

	"seqtag/internal/application"
	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// ListRecordsCommand lists all records of one type
type ListRecordsCommand struct {
	repo ports.RecordRepository
	Type domain.RecordType
}

// NewListRecordsCommand creates a new ListRecordsCommand
func NewListRecordsCommand(repo ports.RecordRepository, t domain.RecordType) *ListRecordsCommand {
	return &ListRecordsCommand{
		repo: repo,
		Type: t,
	}
}

// Validate checks that the record type is known
func (c *ListRecordsCommand) Validate() error {
	if c.Type == domain.RecordTypeUnknown {
		return &application.ValidationError{
			Field:   "type",
			Message: "record type must be file, sample or label",
		}
	}
	return nil
}

// Execute runs the list records command
func (c *ListRecordsCommand) Execute(ctx context.Context) ([]domain.Record, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	records, err := c.repo.ListRecords(ctx, c.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", c.Type, err)
	}
	return records, nil
}
