package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintAuthorRanking outputs the ranked authors, dispatching based on the output format configured.
// total is the number of authors before the result limit was applied.
func PrintAuthorRanking(authors []schema.RankedAuthor, total int, cfg *contract.Config, duration time.Duration) error {
	header := []string{"rank", "author", "points", "label"}
	handled, err := writeStructured(cfg, authors, header, func(w *csv.Writer) error {
		for _, a := range authors {
			rec := []string{
				strconv.Itoa(a.Rank),
				a.Author,
				strconv.FormatInt(a.Points, 10),
				string(a.Label),
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
		return writeAuthorTable(w, authors, total, cfg, duration)
	}, "Wrote table")
}

// writeAuthorTable generates and writes the human-readable ranking.
func writeAuthorTable(w io.Writer, authors []schema.RankedAuthor, total int, cfg *contract.Config, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Author", "Points", "Label"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	width := getMaxTableTextWidth(cfg, 30)
	var data [][]string
	var points int64
	for _, a := range authors {
		points += a.Points
		data = append(data, []string{
			strconv.Itoa(a.Rank),
			contract.TruncateText(a.Author, width),
			humanize.Comma(a.Points),
			contract.GetColorLabel(a.Label),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d of %d authors (%s points, cutoff %s)\n",
		len(authors), total, humanize.Comma(points), humanize.Comma(int64(cfg.EmailCutoff()))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Report completed in %v. Store backend: %s\n", duration.Round(time.Millisecond), cfg.Backend); err != nil {
		return err
	}
	return nil
}
