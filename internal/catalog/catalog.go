// Package catalog fetches funding opportunity records from the grants
// catalog, either over HTTP or from an offline JSON dump.
package catalog

import (
	"context"

	"github.com/grantops/grantscope/schema"
)

// DefaultLimit bounds a fetch when the caller does not set one.
const DefaultLimit = 25

// Filter narrows a catalog fetch.
type Filter struct {
	Keyword  string
	Agency   string
	Category string
	Limit    int
}

// Fetcher retrieves opportunity records matching a filter. Implementations
// own their transport concerns; the scoring engine never fetches.
type Fetcher interface {
	FetchOpportunities(ctx context.Context, filter Filter) ([]schema.OpportunityRecord, error)
}

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}
