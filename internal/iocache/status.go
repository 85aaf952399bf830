package iocache

import (
	"fmt"
	"io"
	"slices"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/changescore/schema"
)

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Total Entries: %s\n", humanize.Comma(int64(status.TotalEntries)))
	_, _ = fmt.Fprintf(w, "Unscored Entries: %s\n", humanize.Comma(int64(status.Unscored)))
	_, _ = fmt.Fprintf(w, "Authors: %d\n", status.Authors)
	_, _ = fmt.Fprintf(w, "Packages: %d\n", status.Packages)
	_, _ = fmt.Fprintf(w, "Package Weights: %d\n", status.Weights)
	_, _ = fmt.Fprintf(w, "Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run: %s (%s)\n", status.LastRunTime.Format("2006-01-02 15:04:05"), humanize.Time(status.LastRunTime))
	}
	if status.DatabaseSizeKB > 0 {
		_, _ = fmt.Fprintf(w, "Database Size: %s\n", humanize.IBytes(uint64(status.DatabaseSizeKB)*1024))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	tables := make([]string, 0, len(status.TableSizes))
	for table := range status.TableSizes {
		tables = append(tables, table)
	}
	slices.Sort(tables)
	for _, table := range tables {
		_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, status.TableSizes[table])
	}
}
