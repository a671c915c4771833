package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/grantops/grantscope/schema"
)

// FileFetcher reads opportunity records from an offline JSON dump, either a
// bare array of records or an object with an "opportunities" key.
type FileFetcher struct {
	path string
}

var _ Fetcher = (*FileFetcher)(nil) // Compile-time check

// NewFileFetcher returns a fetcher over the JSON dump at path.
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// FetchOpportunities loads the dump and applies the filter in memory.
func (f *FileFetcher) FetchOpportunities(ctx context.Context, filter Filter) ([]schema.OpportunityRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read opportunity dump %q: %w", f.path, err)
	}

	records, err := decodeDump(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse opportunity dump %q: %w", f.path, err)
	}

	limit := filter.limit()
	matched := make([]schema.OpportunityRecord, 0, len(records))
	for _, rec := range records {
		if !matches(&rec, filter) {
			continue
		}
		matched = append(matched, rec)
		if len(matched) >= limit {
			break
		}
	}
	return matched, nil
}

func decodeDump(data []byte) ([]schema.OpportunityRecord, error) {
	var records []schema.OpportunityRecord
	if err := json.Unmarshal(data, &records); err == nil {
		return records, nil
	}

	var wrapped struct {
		Opportunities []schema.OpportunityRecord `json:"opportunities"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Opportunities, nil
}

func matches(rec *schema.OpportunityRecord, filter Filter) bool {
	if filter.Agency != "" && !strings.EqualFold(schema.MainAgency(rec.AgencyCode), strings.ToUpper(filter.Agency)) {
		return false
	}
	if filter.Category != "" && !strings.EqualFold(rec.Category, filter.Category) {
		return false
	}
	if filter.Keyword != "" {
		keyword := strings.ToLower(filter.Keyword)
		haystack := strings.ToLower(rec.Title + " " + rec.Description)
		if !strings.Contains(haystack, keyword) {
			return false
		}
	}
	return true
}
