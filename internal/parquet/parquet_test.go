package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantops/grantscope/schema"
)

func sampleScores() []schema.GrantScore {
	computedAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	return []schema.GrantScore{
		{
			SessionID:     "sess-1",
			OpportunityID: "NSF-26-001",
			Title:         "Advanced Computing Research",
			Overall:       72.4,
			Components: map[schema.MetricName]schema.ComponentScore{
				schema.CompetitionMetric: {Metric: schema.CompetitionMetric, Value: 64.0},
				schema.SuccessMetric:     {Metric: schema.SuccessMetric, Value: 48.5},
				schema.ROIMetric:         {Metric: schema.ROIMetric, Value: 81.2},
			},
			Recommendation: "Competitive fit",
			ComputedAt:     computedAt,
		},
		{
			SessionID:        "sess-1",
			OpportunityID:    "NIH-26-404",
			Incomplete:       true,
			IncompleteReason: "no catalog record",
			ComputedAt:       computedAt,
		},
	}
}

func TestScoreRowStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	rowSchema := parquet.SchemaOf(new(ScoreRow))
	require.NotNil(t, rowSchema)

	// Check that all expected columns exist
	expectedColumns := []string{
		"session_id",
		"opportunity_id",
		"title",
		"overall",
		"competition_index",
		"success_probability",
		"roi",
		"timing",
		"hidden_opportunity",
		"incomplete",
		"incomplete_reason",
		"recommendation",
		"computed_at",
		"components_json",
	}

	for _, colName := range expectedColumns {
		col, ok := rowSchema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestConvertGrantScores(t *testing.T) {
	rows := ConvertGrantScores(sampleScores())
	require.Len(t, rows, 2)

	complete := rows[0]
	assert.Equal(t, "sess-1", complete.SessionID)
	assert.Equal(t, "NSF-26-001", complete.OpportunityID)
	assert.InDelta(t, 72.4, complete.Overall, 0.001)
	require.NotNil(t, complete.CompetitionIndex)
	assert.InDelta(t, 64.0, *complete.CompetitionIndex, 0.001)
	require.NotNil(t, complete.ROI)
	assert.InDelta(t, 81.2, *complete.ROI, 0.001)
	assert.Nil(t, complete.Timing, "absent metrics should stay nil")
	assert.Nil(t, complete.HiddenOpportunity)
	require.NotNil(t, complete.Recommendation)
	assert.Equal(t, "Competitive fit", *complete.Recommendation)
	assert.Nil(t, complete.IncompleteReason)
	require.NotNil(t, complete.ComponentsJSON)
	assert.Contains(t, *complete.ComponentsJSON, "competition_index")

	skipped := rows[1]
	assert.True(t, skipped.Incomplete)
	require.NotNil(t, skipped.IncompleteReason)
	assert.Equal(t, "no catalog record", *skipped.IncompleteReason)
	assert.Nil(t, skipped.Recommendation)
	assert.Nil(t, skipped.ComponentsJSON)
}

func TestWriteScoreRows(t *testing.T) {
	// Create temporary directory for test output
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "scores.parquet")

	data := ConvertGrantScores(sampleScores())
	require.NotEmpty(t, data)

	// Write data to Parquet file
	err := WriteScoreRows(data, outputPath)
	require.NoError(t, err, "Writing Parquet file should not produce error")

	// Verify file was created
	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	// Read back and verify data
	file, err := os.Open(outputPath)
	require.NoError(t, err, "Should be able to open output file")
	defer file.Close()

	reader := parquet.NewGenericReader[ScoreRow](file)
	defer reader.Close()

	readData := make([]ScoreRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err, "Should be able to read data")
	}
	assert.Equal(t, len(data), n, "Should read all records")

	for i := 0; i < len(data); i++ {
		assert.Equal(t, data[i].OpportunityID, readData[i].OpportunityID, "OpportunityID should match")
		assert.Equal(t, data[i].Incomplete, readData[i].Incomplete, "Incomplete should match")
		assert.InDelta(t, data[i].Overall, readData[i].Overall, 0.001, "Overall should match")
		assert.WithinDuration(t, data[i].ComputedAt, readData[i].ComputedAt, time.Nanosecond, "ComputedAt should match within nanosecond precision")

		// Check nullable fields
		if data[i].CompetitionIndex == nil {
			assert.Nil(t, readData[i].CompetitionIndex, "CompetitionIndex should be nil")
		} else {
			require.NotNil(t, readData[i].CompetitionIndex, "CompetitionIndex should not be nil")
			assert.InDelta(t, *data[i].CompetitionIndex, *readData[i].CompetitionIndex, 0.001, "CompetitionIndex should match")
		}
		if data[i].IncompleteReason == nil {
			assert.Nil(t, readData[i].IncompleteReason, "IncompleteReason should be nil")
		} else {
			require.NotNil(t, readData[i].IncompleteReason, "IncompleteReason should not be nil")
			assert.Equal(t, *data[i].IncompleteReason, *readData[i].IncompleteReason, "IncompleteReason should match")
		}
	}
}

func TestWriteScoreRows_EmptyData(t *testing.T) {
	tmpDir := t.TempDir()
	outputPath := filepath.Join(tmpDir, "empty_scores.parquet")

	err := WriteScoreRows([]ScoreRow{}, outputPath)
	require.NoError(t, err, "Writing empty data should not produce error")

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteScoreRows_InvalidPath(t *testing.T) {
	data := ConvertGrantScores(sampleScores())
	err := WriteScoreRows(data, "/nonexistent/directory/scores.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}
