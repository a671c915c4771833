// Package parquet exports scoring sessions to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/grantops/grantscope/schema"
	"github.com/parquet-go/parquet-go"
)

// ScoreRow is one persisted grant score flattened for columnar export.
type ScoreRow struct {
	// SessionID references the scoring session the row belongs to
	SessionID string `parquet:"session_id,snappy"`

	// OpportunityID is the stable catalog identifier
	OpportunityID string `parquet:"opportunity_id,snappy"`

	// Title is the opportunity title at scoring time
	Title string `parquet:"title,snappy"`

	// Overall is the weighted aggregate score in [0,100]
	Overall float64 `parquet:"overall,snappy"`

	// Per-metric component values (nullable when a metric was not requested)
	CompetitionIndex   *float64 `parquet:"competition_index,optional,snappy"`
	SuccessProbability *float64 `parquet:"success_probability,optional,snappy"`
	ROI                *float64 `parquet:"roi,optional,snappy"`
	Timing             *float64 `parquet:"timing,optional,snappy"`
	HiddenOpportunity  *float64 `parquet:"hidden_opportunity,optional,snappy"`

	// Incomplete marks scores with no component breakdown
	Incomplete bool `parquet:"incomplete,snappy"`

	// IncompleteReason explains why scoring was skipped (nullable)
	IncompleteReason *string `parquet:"incomplete_reason,optional,snappy"`

	// Recommendation is the short advisory text (nullable)
	Recommendation *string `parquet:"recommendation,optional,snappy"`

	// ComputedAt is when the score was produced
	ComputedAt time.Time `parquet:"computed_at,snappy"`

	// ComponentsJSON holds the full explanation payload (nullable)
	ComponentsJSON *string `parquet:"components_json,optional,snappy"`
}

// WriteScoreRows writes a slice of ScoreRow structs to a Parquet file.
func WriteScoreRows(data []ScoreRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the ScoreRow struct tags
	writer := parquet.NewGenericWriter[ScoreRow](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertGrantScores converts schema.GrantScore to ScoreRow for export.
func ConvertGrantScores(scores []schema.GrantScore) []ScoreRow {
	result := make([]ScoreRow, len(scores))
	for i, score := range scores {
		row := ScoreRow{
			SessionID:     score.SessionID,
			OpportunityID: score.OpportunityID,
			Title:         score.Title,
			Overall:       score.Overall,
			Incomplete:    score.Incomplete,
			ComputedAt:    score.ComputedAt,
		}

		row.CompetitionIndex = componentPtr(score.Components, schema.CompetitionMetric)
		row.SuccessProbability = componentPtr(score.Components, schema.SuccessMetric)
		row.ROI = componentPtr(score.Components, schema.ROIMetric)
		row.Timing = componentPtr(score.Components, schema.TimingMetric)
		row.HiddenOpportunity = componentPtr(score.Components, schema.HiddenMetric)

		if score.IncompleteReason != "" {
			row.IncompleteReason = &score.IncompleteReason
		}
		if score.Recommendation != "" {
			row.Recommendation = &score.Recommendation
		}
		if len(score.Components) > 0 {
			if payload, err := json.Marshal(score.Components); err == nil {
				encoded := string(payload)
				row.ComponentsJSON = &encoded
			}
		}

		result[i] = row
	}
	return result
}

func componentPtr(components map[schema.MetricName]schema.ComponentScore, name schema.MetricName) *float64 {
	if component, ok := components[name]; ok {
		v := component.Value
		return &v
	}
	return nil
}
