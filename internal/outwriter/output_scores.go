package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/internal/parquet"
	"github.com/grantops/grantscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteScoreResults outputs a scored batch, dispatching based on the output
// format configured.
func WriteScoreResults(scores []schema.GrantScore, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreJSON(w, scores)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreCSV(w, scores, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return fmt.Errorf("parquet output requires --output-file")
		}
		if err := parquet.WriteScoreRows(parquet.ConvertGrantScores(scores), cfg.OutputFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreTable(w, scores, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeScoreTable generates and writes the human-readable score table.
func writeScoreTable(w io.Writer, scores []schema.GrantScore, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)

	// 1. Define Headers
	headers := []string{"Rank", "ID", "Title", "Overall", "Label"}
	if cfg.Detail {
		for _, name := range schema.AllMetrics {
			headers = append(headers, shortMetricName(name))
		}
		headers = append(headers, "Drivers")
	}
	table.Header(headers)

	// 2. Configure alignment to match a minimal look
	table.Configure(func(tableCfg *tablewriter.Config) {
		tableCfg.Row.Alignment.Global = tw.AlignRight
	})

	// 3. Populate Rows
	titleWidth := getMaxTableTitleWidth(cfg)
	var data [][]string
	for i, score := range scores {
		if score.Incomplete {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				score.OpportunityID,
				contract.TruncateText(score.Title, titleWidth),
				"-",
				score.IncompleteReason,
			})
			continue
		}

		row := []string{
			strconv.Itoa(i + 1),
			score.OpportunityID,
			contract.TruncateText(score.Title, titleWidth),
			fmtFloat(score.Overall),
			scoreLabel(cfg, score.Overall),
		}
		if cfg.Detail {
			for _, name := range schema.AllMetrics {
				if component, ok := score.Components[name]; ok {
					row = append(row, fmtFloat(component.Value))
				} else {
					row = append(row, "-")
				}
			}
			row = append(row, topDriver(&score))
		}
		data = append(data, row)
	}

	// 4. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	complete := 0
	for _, score := range scores {
		if !score.Incomplete {
			complete++
		}
	}
	if _, err := fmt.Fprintf(w, "Scored %d of %d opportunities in %v\n", complete, len(scores), duration.Round(time.Millisecond)); err != nil {
		return err
	}
	return nil
}

// topDriver names the strongest component's leading explanation terms.
func topDriver(score *schema.GrantScore) string {
	var best *schema.ComponentScore
	for name := range score.Components {
		component := score.Components[name]
		if best == nil || component.Value > best.Value {
			best = &component
		}
	}
	if best == nil {
		return "Not applicable"
	}
	return fmt.Sprintf("%s: %s", best.Metric, formatTopTerms(best))
}

// writeScoreCSV writes the scored batch in CSV format.
func writeScoreCSV(w io.Writer, scores []schema.GrantScore, fmtFloat func(float64) string) error {
	header := []string{"rank", "opportunity_id", "title", "overall", "label"}
	for _, name := range schema.AllMetrics {
		header = append(header, string(name))
	}
	header = append(header, "degraded", "incomplete", "incomplete_reason", "recommendation")

	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for i, score := range scores {
			rec := []string{
				strconv.Itoa(i + 1),
				score.OpportunityID,
				score.Title,
				fmtFloat(score.Overall),
				contract.GetPlainLabel(score.Overall),
			}
			degraded := false
			for _, name := range schema.AllMetrics {
				if component, ok := score.Components[name]; ok {
					rec = append(rec, fmtFloat(component.Value))
					degraded = degraded || component.Degraded
				} else {
					rec = append(rec, "")
				}
			}
			rec = append(rec,
				strconv.FormatBool(degraded),
				strconv.FormatBool(score.Incomplete),
				score.IncompleteReason,
				score.Recommendation,
			)
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeScoreJSON writes the scored batch in JSON format with rank and label
// added.
func writeScoreJSON(w io.Writer, scores []schema.GrantScore) error {
	type JSONScoreResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.GrantScore
	}

	output := make([]JSONScoreResult, len(scores))
	for i, score := range scores {
		output[i] = JSONScoreResult{
			Rank:       i + 1,
			Label:      contract.GetPlainLabel(score.Overall),
			GrantScore: score,
		}
	}
	return writeJSON(w, output)
}

// shortMetricName compresses metric names to table-friendly headers.
func shortMetricName(name schema.MetricName) string {
	switch name {
	case schema.CompetitionMetric:
		return "Compet"
	case schema.SuccessMetric:
		return "Success"
	case schema.ROIMetric:
		return "ROI"
	case schema.TimingMetric:
		return "Timing"
	case schema.HiddenMetric:
		return "Hidden"
	default:
		return string(name)
	}
}
