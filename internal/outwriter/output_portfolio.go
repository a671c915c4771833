package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WritePortfolioReport outputs a synthesized portfolio, dispatching based on
// the output format configured.
func WritePortfolioReport(report *schema.PortfolioReport, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePortfolioCSV(w, report, fmtFloat)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writePortfolioTable(w, report, cfg, fmtFloat)
		}, "Wrote table")
	}
}

// writePortfolioTable renders one table per tier plus summary lines.
func writePortfolioTable(w io.Writer, report *schema.PortfolioReport, cfg *contract.Config, fmtFloat func(float64) string) error {
	byTier := make(map[schema.PortfolioTier][]schema.StrategicRecommendation)
	for _, rec := range report.Recommendations {
		byTier[rec.Tier] = append(byTier[rec.Tier], rec)
	}

	for _, tier := range schema.AllTiers {
		recs := byTier[tier]
		if len(recs) == 0 {
			continue
		}

		if _, err := fmt.Fprintf(w, "%s (%d)\n", tierHeading(tier), len(recs)); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.Header([]string{"Rank", "ID", "Overall", "ROI", "Success", "Rationale"})
		table.Configure(func(tableCfg *tablewriter.Config) {
			tableCfg.Row.Alignment.Global = tw.AlignRight
		})

		var data [][]string
		for _, rec := range recs {
			data = append(data, []string{
				strconv.Itoa(rec.Rank),
				rec.OpportunityID,
				fmtFloat(rec.Overall),
				fmtFloat(rec.ROI),
				fmtFloat(rec.SuccessProbability),
				rec.Rationale,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Risk tolerance: %s. Diversity: %s. Expected success rate: %s%%. Skipped: %d\n",
		report.RiskTolerance, fmtFloat(report.DiversityScore), fmtFloat(report.ExpectedSuccessRate), report.Skipped); err != nil {
		return err
	}
	return nil
}

// writePortfolioCSV writes the recommendations in CSV format.
func writePortfolioCSV(w io.Writer, report *schema.PortfolioReport, fmtFloat func(float64) string) error {
	header := []string{"rank", "tier", "opportunity_id", "overall", "roi", "success_probability", "rationale"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, rec := range report.Recommendations {
			row := []string{
				strconv.Itoa(rec.Rank),
				string(rec.Tier),
				rec.OpportunityID,
				fmtFloat(rec.Overall),
				fmtFloat(rec.ROI),
				fmtFloat(rec.SuccessProbability),
				rec.Rationale,
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func tierHeading(tier schema.PortfolioTier) string {
	switch tier {
	case schema.ReachTier:
		return "REACH - high upside, long odds"
	case schema.SafetyTier:
		return "SAFETY - favorable odds"
	default:
		return "MATCH - balanced fit"
	}
}
