package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/grantops/grantscope/schema"
)

// DefaultBaseURL is the public grants.gov search endpoint.
const DefaultBaseURL = "https://api.grants.gov/v1/api"

const searchDateLayout = "01/02/2006"

// HTTPFetcher queries the grants.gov search API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil) // Compile-time check

// NewHTTPFetcher returns a fetcher against baseURL. An empty baseURL selects
// the public endpoint; a nil client gets a 30s-timeout default.
func NewHTTPFetcher(baseURL string, client *http.Client) *HTTPFetcher {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{baseURL: baseURL, client: client}
}

// searchRequest is the search2 POST body.
type searchRequest struct {
	Keyword           string `json:"keyword,omitempty"`
	Agencies          string `json:"agencies,omitempty"`
	FundingCategories string `json:"fundingCategories,omitempty"`
	OppStatuses       string `json:"oppStatuses"`
	Rows              int    `json:"rows"`
}

// searchResponse mirrors the subset of the search2 reply we consume.
type searchResponse struct {
	ErrorCode int    `json:"errorcode"`
	Msg       string `json:"msg"`
	Data      struct {
		OppHits []opportunityHit `json:"oppHits"`
	} `json:"data"`
}

type opportunityHit struct {
	Number         string  `json:"number"`
	Title          string  `json:"title"`
	AgencyCode     string  `json:"agencyCode"`
	Category       string  `json:"category"`
	AwardFloor     float64 `json:"awardFloor"`
	AwardCeiling   float64 `json:"awardCeiling"`
	TotalFunding   float64 `json:"estimatedTotalProgramFunding"`
	ExpectedAwards int     `json:"expectedNumberOfAwards"`
	OpenDate       string  `json:"openDate"`
	CloseDate      string  `json:"closeDate"`
	Eligibility    string  `json:"eligibility"`
	Description    string  `json:"description"`
}

// FetchOpportunities POSTs the filter to the search endpoint and maps the
// hits to opportunity records. Hits without a number are skipped.
func (f *HTTPFetcher) FetchOpportunities(ctx context.Context, filter Filter) ([]schema.OpportunityRecord, error) {
	body, err := json.Marshal(searchRequest{
		Keyword:           filter.Keyword,
		Agencies:          filter.Agency,
		FundingCategories: filter.Category,
		OppStatuses:       "forecasted|posted",
		Rows:              filter.limit(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode catalog search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/search2", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog search returned status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode catalog search response: %w", err)
	}
	if parsed.ErrorCode != 0 {
		return nil, fmt.Errorf("catalog search error %d: %s", parsed.ErrorCode, parsed.Msg)
	}

	records := make([]schema.OpportunityRecord, 0, len(parsed.Data.OppHits))
	for _, hit := range parsed.Data.OppHits {
		if hit.Number == "" {
			continue
		}
		records = append(records, hit.toRecord())
	}
	return records, nil
}

func (h *opportunityHit) toRecord() schema.OpportunityRecord {
	return schema.OpportunityRecord{
		ID:             h.Number,
		Title:          h.Title,
		AgencyCode:     h.AgencyCode,
		Category:       h.Category,
		AwardFloor:     h.AwardFloor,
		AwardCeiling:   h.AwardCeiling,
		TotalFunding:   h.TotalFunding,
		ExpectedAwards: h.ExpectedAwards,
		PostDate:       parseSearchDate(h.OpenDate),
		CloseDate:      parseSearchDate(h.CloseDate),
		Eligibility:    h.Eligibility,
		Description:    h.Description,
	}
}

// parseSearchDate parses the MM/DD/YYYY dates the search API emits. Unknown
// or malformed dates come back zero; scoring treats them as missing.
func parseSearchDate(s string) (t time.Time) {
	if s == "" {
		return t
	}
	parsed, err := time.Parse(searchDateLayout, s)
	if err != nil {
		return t
	}
	return parsed
}
