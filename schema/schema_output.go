package schema

// RankedAuthor adds presentation data to an AuthorTotal.
type RankedAuthor struct {
	Rank  int         `json:"rank" yaml:"rank"`
	Label DigestLabel `json:"label" yaml:"label"`
	AuthorTotal `yaml:",inline"`
}

// GetPlainLabel classifies an author total against the notification threshold.
// Authors above the threshold with a digest are notified; those above it without
// any qualifying package only need review.
func GetPlainLabel(points int64, threshold float64, hasDigest bool) DigestLabel {
	switch {
	case float64(points) > threshold && hasDigest:
		return NotifyLabel
	case float64(points) > threshold:
		return ReviewLabel
	default:
		return BelowLabel
	}
}

// EnrichAuthors adds rank and label to a list of author totals.
func EnrichAuthors(totals []AuthorTotal, threshold float64, digests []Digest) []RankedAuthor {
	withDigest := make(map[string]bool, len(digests))
	for _, d := range digests {
		withDigest[d.Author] = true
	}
	output := make([]RankedAuthor, len(totals))
	for i, t := range totals {
		output[i] = RankedAuthor{
			Rank:        i + 1,
			Label:       GetPlainLabel(t.Points, threshold, withDigest[t.Author]),
			AuthorTotal: t,
		}
	}
	return output
}
