// Package changelog splits package changelog files into entries.
//
// A changelog is a sequence of blocks. Each block is closed by a separator
// line of hyphens and normally opens with a header naming the date and the
// author of the change:
//
//	-------------------------------------------------------------------
//	Mon Jan  5 10:00:00 UTC 2024 - jdoe@suse.com
//
//	- Update to version 1.2
//
// Parsing never fails on malformed bytes or dates; both degrade to a
// replacement character and schema.EpochSentinel respectively.
package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// headerPattern captures the date and the address of a block header.
var headerPattern = regexp.MustCompile(`^([A-Z][a-z][a-z].*2[0-2][0-9][0-9]) - (.*@.*)$`)

// headerLayouts are tried before the lenient parser.
var headerLayouts = []string{
	time.UnixDate, // Mon Jan _2 15:04:05 MST 2006
	time.ANSIC,    // Mon Jan _2 15:04:05 2006
}

// zoneOffsets resolves the zone abbreviations found in changelog headers,
// in seconds east of UTC. Go gives unknown abbreviations a zero offset.
var zoneOffsets = map[string]int{
	"UTC": 0, "GMT": 0, "UT": 0, "WET": 0,
	"CET": 1 * 3600, "MET": 1 * 3600, "WEST": 1 * 3600, "BST": 1 * 3600,
	"CEST": 2 * 3600, "MEST": 2 * 3600, "EET": 2 * 3600,
	"EEST": 3 * 3600, "MSK": 3 * 3600,
	"JST": 9 * 3600,
	"EST": -5 * 3600, "EDT": -4 * 3600,
	"CST": -6 * 3600, "CDT": -5 * 3600,
	"MST": -7 * 3600, "MDT": -6 * 3600,
	"PST": -8 * 3600, "PDT": -7 * 3600,
}

// ParseOptions tunes the state machine.
type ParseOptions struct {
	SeparatorWidth int                  // Minimum run of hyphens that closes a block
	FlushTrailing  bool                 // Emit a final block that has no closing separator
	Aliases        []schema.DomainAlias // Applied to every header address
}

// DefaultParseOptions returns the options used when nothing is configured.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SeparatorWidth: contract.DefaultSeparatorWidth,
		Aliases:        schema.DefaultDomainAliases,
	}
}

// block accumulates the fields of the entry being read.
type block struct {
	author string
	date   time.Time
	header bool
	text   strings.Builder
}

func (b *block) reset() {
	b.author = ""
	b.date = time.Time{}
	b.header = false
	b.text.Reset()
}

// entry turns the block into an entry. Blocks with blank text yield nothing.
func (b *block) entry(pkg string) (schema.Entry, bool) {
	text := strings.TrimSpace(b.text.String())
	if text == "" {
		return schema.Entry{}, false
	}
	date := b.date
	if !b.header {
		date = schema.EpochSentinel
	}
	return schema.Entry{
		Author:  b.author,
		Date:    date,
		Package: pkg,
		Text:    text,
		Score:   schema.Unscored,
	}, true
}

// Parse reads a changelog and returns one candidate entry per closed block,
// in file order. Deduplication is left to the caller.
func Parse(r io.Reader, pkg string, opts ParseOptions) ([]schema.Entry, error) {
	width := opts.SeparatorWidth
	if width <= 0 {
		width = contract.DefaultSeparatorWidth
	}

	br := bufio.NewReader(transform.NewReader(r, unicode.UTF8.NewDecoder()))
	var (
		entries []schema.Entry
		cur     block
	)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			line := strings.TrimRight(raw, "\r\n")
			switch {
			case isSeparator(line, width):
				if e, ok := cur.entry(pkg); ok {
					entries = append(entries, e)
				}
				cur.reset()
			case !cur.header && parseHeader(line, opts.Aliases, &cur):
			default:
				cur.text.WriteString(raw)
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return entries, fmt.Errorf("failed to read changelog of %s: %w", pkg, err)
		}
	}

	if opts.FlushTrailing {
		if e, ok := cur.entry(pkg); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// isSeparator reports whether the line is a run of at least width hyphens.
func isSeparator(line string, width int) bool {
	line = strings.TrimRight(line, " \t")
	if len(line) < width {
		return false
	}
	return strings.Trim(line, "-") == ""
}

// parseHeader fills the author and date of the block when line is a header.
func parseHeader(line string, aliases []schema.DomainAlias, b *block) bool {
	m := headerPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	b.author = schema.NormalizeAuthor(m[2], aliases)
	b.date = ParseDate(m[1])
	b.header = true
	return true
}

// ParseDate parses a header date in UTC, returning schema.EpochSentinel when
// the string is not a valid date.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range headerLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return withKnownZone(t)
		}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		contract.LogDebug("Unparsable changelog date", "date", s, "err", err)
		return schema.EpochSentinel
	}
	return withKnownZone(t)
}

// withKnownZone applies the offset of a known zone abbreviation that the
// parser recorded with a zero offset, and returns the time in UTC.
func withKnownZone(t time.Time) time.Time {
	name, off := t.Zone()
	if known, ok := zoneOffsets[name]; ok && off != known {
		t = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.FixedZone(name, known))
	}
	return t.UTC()
}
