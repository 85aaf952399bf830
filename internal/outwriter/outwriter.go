// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteAuthors prints the author ranking using the configured output format.
func (ow *OutWriter) WriteAuthors(authors []schema.RankedAuthor, total int, cfg *contract.Config, duration time.Duration) error {
	return PrintAuthorRanking(authors, total, cfg, duration)
}

// WriteDigests prints the digests of a run using the configured output format.
func (ow *OutWriter) WriteDigests(digests []schema.Digest, cfg *contract.Config) error {
	return PrintDigests(digests, cfg)
}

// WriteWeights prints the package weights using the configured output format.
func (ow *OutWriter) WriteWeights(weights []schema.PackageWeight, cfg *contract.Config) error {
	return PrintWeights(weights, cfg)
}

// WriteRuns prints the recorded runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return PrintRuns(runs, cfg)
}
