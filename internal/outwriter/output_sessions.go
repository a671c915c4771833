package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/grantops/grantscope/internal/contract"
	"github.com/grantops/grantscope/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSessionList outputs recent scoring sessions, dispatching based on the
// output format configured.
func WriteSessionList(sessions []schema.ScoringSession, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, sessions)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionCSV(w, sessions)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSessionTable(w, sessions, cfg)
		}, "Wrote table")
	}
}

func writeSessionTable(w io.Writer, sessions []schema.ScoringSession, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Created", "Scores", "Query"})
	table.Configure(func(tableCfg *tablewriter.Config) {
		tableCfg.Row.Alignment.Global = tw.AlignRight
	})

	titleWidth := getMaxTableTitleWidth(cfg)
	var data [][]string
	for _, session := range sessions {
		data = append(data, []string{
			session.ID,
			session.CreatedAt.Format(time.RFC3339),
			strconv.Itoa(session.ScoreCount),
			contract.TruncateText(session.Query, titleWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeSessionCSV(w io.Writer, sessions []schema.ScoringSession) error {
	header := []string{"id", "created_at", "score_count", "query"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, session := range sessions {
			row := []string{
				session.ID,
				session.CreatedAt.Format(time.RFC3339),
				strconv.Itoa(session.ScoreCount),
				session.Query,
			}
			if err := csvWriter.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
