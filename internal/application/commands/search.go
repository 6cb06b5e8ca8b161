package commands

import (
	"context"
	"sort"
	"strings"

	"seqtag/internal/domain"
	"seqtag/internal/ports"
)

// SearchResult wraps a record with a relevance score
type SearchResult struct {
	domain.Record
	Score int
}

// SearchCommand searches records of one type with fuzzy matching
type SearchCommand struct {
	repo  ports.RecordRepository
	Type  domain.RecordType
	Query string
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(repo ports.RecordRepository, t domain.RecordType, query string) *SearchCommand {
	return &SearchCommand{
		repo:  repo,
		Type:  t,
		Query: query,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute(ctx context.Context) ([]SearchResult, error) {
	if len(c.Query) < 2 {
		return nil, nil
	}

	records, err := NewListRecordsCommand(c.repo, c.Type).Execute(ctx)
	if err != nil {
		return nil, err
	}

	return FuzzySort(records, c.Query), nil
}

// Substring matches always outrank in-order character matches
const (
	substringScore = 1000
	prefixBonus    = 500
)

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	if strings.Contains(target, query) {
		score := substringScore
		if strings.HasPrefix(target, query) {
			score += prefixBonus
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx >= 0 && prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && isSeparator(target[i-1]) {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return min(score, substringScore-1)
	}
	return 0
}

// Sample and file IDs use _ and - between run, lane and read parts
func isSeparator(b byte) bool {
	return b == ' ' || b == '.' || b == '-' || b == '_'
}

// FuzzySort ranks records by relevance to the query, dropping non-matches
func FuzzySort(records []domain.Record, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(records))

	for _, r := range records {
		best := max(FuzzyScore(r.ID, query), FuzzyScore(r.Name, query), FuzzyScore(r.Info, query))

		if best > 0 {
			scored = append(scored, SearchResult{
				Record: r,
				Score:  best,
			})
		}
	}

	// Sort by score descending; ties keep list order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
