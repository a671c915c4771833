package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteExplanation outputs the full component breakdown for one scored
// opportunity, dispatching based on the output format configured.
func WriteExplanation(score *schema.GrantScore, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, score)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExplanationCSV(w, score, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeExplanationTable(w, score, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writeExplanationTable renders one table per component, terms in
// computation order so the arithmetic reads top to bottom.
func writeExplanationTable(w io.Writer, score *schema.GrantScore, cfg *contract.Config, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "%s - %s\nOverall: %s (%s), scored at %s in session %s\n\n",
		score.OpportunityID, score.Title,
		fmtFloat(score.Overall), scoreLabel(cfg, score.Overall),
		score.ComputedAt.Format(time.RFC3339), score.SessionID); err != nil {
		return err
	}

	for _, name := range schema.AllMetrics {
		component, ok := score.Components[name]
		if !ok {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s = %s", name, fmtFloat(component.Value)); err != nil {
			return err
		}
		if component.Degraded {
			if _, err := fmt.Fprintf(w, " (defaults substituted for: %v)", component.Missing); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Term", "Value"})
		table.Configure(func(tableCfg *tablewriter.Config) {
			tableCfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, term := range component.Terms {
			data = append(data, []string{term.Label, fmtFloat(term.Value)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}

		if component.Interpretation != "" {
			if _, err := fmt.Fprintf(w, "%s\n", component.Interpretation); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	if score.Recommendation != "" {
		if _, err := fmt.Fprintf(w, "Recommendation: %s\n", score.Recommendation); err != nil {
			return err
		}
	}
	return nil
}

// writeExplanationCSV flattens the breakdown to (metric, term, value) rows.
func writeExplanationCSV(w io.Writer, score *schema.GrantScore, fmtFloat func(float64) string) error {
	header := []string{"opportunity_id", "metric", "term", "value"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, name := range schema.AllMetrics {
			component, ok := score.Components[name]
			if !ok {
				continue
			}
			if err := csvWriter.Write([]string{score.OpportunityID, string(name), "value", fmtFloat(component.Value)}); err != nil {
				return err
			}
			for _, term := range component.Terms {
				if err := csvWriter.Write([]string{score.OpportunityID, string(name), term.Label, fmtFloat(term.Value)}); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
