package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintWeights outputs the configured package weights.
func PrintWeights(weights []schema.PackageWeight, cfg *contract.Config) error {
	handled, err := writeStructured(cfg, weights, []string{"package", "points"}, func(w *csv.Writer) error {
		for _, pw := range weights {
			if err := w.Write([]string{pw.Package, strconv.FormatInt(pw.Points, 10)}); err != nil {
				return err
			}
		}
		return nil
	})
	if handled {
		if err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if len(weights) == 0 {
			_, err := fmt.Fprintf(w, "No package weights. Every package scores %d points.\n", cfg.DefaultPoints)
			return err
		}
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Package", "Points"})
		table.Configure(func(cfg *tablewriter.Config) {
			cfg.Row.Alignment.Global = tw.AlignRight
		})
		var data [][]string
		for _, pw := range weights {
			data = append(data, []string{pw.Package, humanize.Comma(pw.Points)})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	}, "Wrote table")
}

// formatEnd renders the finish time of a run, which is empty while it is in progress.
func formatEnd(r schema.RunRecord) string {
	if r.EndTime == nil {
		return ""
	}
	return r.EndTime.Format(contract.DateTimeFormat)
}

// PrintRuns outputs the recorded pipeline runs.
func PrintRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	header := []string{"run_id", "started", "finished", "imported", "scored", "digests", "config"}
	handled, err := writeStructured(cfg, runs, header, func(w *csv.Writer) error {
		for _, r := range runs {
			rec := []string{
				r.RunID,
				r.StartTime.Format(contract.DateTimeFormat),
				formatEnd(r),
				strconv.Itoa(r.Imported),
				strconv.Itoa(r.Scored),
				strconv.Itoa(r.Digests),
				r.ConfigParams,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
	if handled {
		if err != nil {
			return fmt.Errorf("error writing %s output: %w", cfg.Output, err)
		}
		return nil
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Run", "Started", "Finished", "Imported", "Scored", "Digests"})
		var data [][]string
		for _, r := range runs {
			data = append(data, []string{
				r.RunID,
				r.StartTime.Format(contract.DateTimeFormat),
				formatEnd(r),
				humanize.Comma(int64(r.Imported)),
				humanize.Comma(int64(r.Scored)),
				strconv.Itoa(r.Digests),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%d runs\n", len(runs))
		return err
	}, "Wrote table")
}
