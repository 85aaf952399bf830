package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// PrintDigests outputs the digests of a run. CSV output has one row per listed package.
func PrintDigests(digests []schema.Digest, cfg *contract.Config) error {
	header := []string{"author", "total", "package", "points", "others", "considered"}
	handled, err := writeStructured(cfg, digests, header, func(w *csv.Writer) error {
		for _, d := range digests {
			for _, p := range d.Packages {
				rec := []string{
					d.Author,
					strconv.FormatInt(d.Total, 10),
					p.Package,
					strconv.FormatInt(p.Points, 10),
					strconv.FormatBool(d.Others),
					strconv.Itoa(d.Considered),
				}
				if err := w.Write(rec); err != nil {
					return err
				}
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
		return writeDigestTable(w, digests, cfg)
	}, "Wrote table")
}

// formatPackages lists the packages of a digest, marking the ones left out.
func formatPackages(d schema.Digest) string {
	names := make([]string, 0, len(d.Packages)+1)
	for _, p := range d.Packages {
		names = append(names, p.Package)
	}
	if d.Others {
		names = append(names, "...")
	}
	return strings.Join(names, ", ")
}

func writeDigestTable(w io.Writer, digests []schema.Digest, cfg *contract.Config) error {
	if len(digests) == 0 {
		_, err := fmt.Fprintln(w, "No author is above the notification cutoff.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Author", "Total", "Packages"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	width := getMaxTableTextWidth(cfg, 40)
	var data [][]string
	for _, d := range digests {
		data = append(data, []string{
			d.Author,
			humanize.Comma(d.Total),
			contract.TruncateText(formatPackages(d), width),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d digests\n", len(digests))
	return err
}
