package core

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/changescore/internal/contract"
	"github.com/huangsam/changescore/schema"
)

// ReportOptions holds the thresholds of the reporter.
// Both thresholds are multiplied by DefaultPoints.
type ReportOptions struct {
	DefaultPoints    int64
	EmailThreshold   float64
	PackageThreshold float64
	MaxPackages      int // Exclusive bound on the package counter
}

// DefaultReportOptions returns the stock thresholds.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		DefaultPoints:    contract.DefaultPoints,
		EmailThreshold:   contract.DefaultEmailThreshold,
		PackageThreshold: contract.DefaultPackageThreshold,
		MaxPackages:      contract.DefaultMaxPackages,
	}
}

// EmailCutoff is the sum an author must exceed to be considered.
func (o ReportOptions) EmailCutoff() float64 {
	return o.EmailThreshold * float64(o.DefaultPoints)
}

// PackageCutoff is the sum a package must exceed to be listed.
func (o ReportOptions) PackageCutoff() float64 {
	return o.PackageThreshold * float64(o.DefaultPoints)
}

// BuildDigests ranks authors by total score and returns one digest for every
// author above the email cutoff with at least one listed package.
//
// Packages are walked in descending order with a 1-based counter. A package is
// listed while its sum exceeds the package cutoff and the counter is below
// MaxPackages; every other package sets Others.
func BuildDigests(ctx context.Context, store contract.EntryStore, opts ReportOptions) ([]schema.Digest, error) {
	totals, err := store.AuthorTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum scores by author: %w", err)
	}

	var digests []schema.Digest
	for _, author := range totals {
		if float64(author.Points) <= opts.EmailCutoff() {
			continue
		}
		pkgs, err := store.PackageTotals(ctx, author.Author)
		if err != nil {
			return nil, fmt.Errorf("failed to sum scores of %s by package: %w", author.Author, err)
		}

		d := schema.Digest{Author: author.Author, Total: author.Points}
		for _, p := range pkgs {
			d.Considered++
			if float64(p.Points) > opts.PackageCutoff() && d.Considered < opts.MaxPackages {
				d.Packages = append(d.Packages, p)
			} else {
				d.Others = true
			}
		}
		if len(d.Packages) == 0 {
			contract.LogDebug("No package worth mentioning", "author", author.Author, "points", author.Points)
			continue
		}
		digests = append(digests, d)
	}
	return digests, nil
}

// DigestTemplate holds the fixed parts of a digest mail.
type DigestTemplate struct {
	Subject string
	Release string
	WikiURL string
}

// packageList renders the bullets of a digest, with an ellipsis for the rest.
func packageList(d schema.Digest) string {
	var b strings.Builder
	for _, p := range d.Packages {
		fmt.Fprintf(&b, "   * %s\n", p.Package)
	}
	if d.Others {
		b.WriteString("   ...\n")
	}
	return b.String()
}

// RenderDigest returns the subject and body of the mail sent to an author.
// The package list is only shown when more than two packages were considered.
func RenderDigest(d schema.Digest, tpl DigestTemplate) (string, string) {
	var b strings.Builder
	b.WriteString("Hi,\n\n")
	b.WriteString("we have detected that you did quite some interesting changes to some of your\n")
	fmt.Fprintf(&b, "packages during development of new %s.\n\n", tpl.Release)
	if d.Considered > 2 {
		b.WriteString("Namely we noticed:\n\n")
		b.WriteString(packageList(d))
		b.WriteString("\n")
	}
	b.WriteString("Do you think these changes are worth promoting? Marketing team is currently\n")
	b.WriteString("looking for interesting features to promote, so if you know about some (doesn't\n")
	b.WriteString("have to be necessarily yours), please put them to this wiki page:\n\n")
	fmt.Fprintf(&b, "%s\n\n", tpl.WikiURL)
	b.WriteString("If you are worried that you can't write pretty, don't be. Marketing team will\n")
	b.WriteString("tidy up this wiki page, but they need help with getting content - interesting\n")
	b.WriteString("new features they can write about.\n\n")
	b.WriteString("If you have already added a nice description to the wiki, you have our eternal\n")
	b.WriteString("gratitude and this mail was not meant to tell you it was not good enough!\n")
	return tpl.Subject, b.String()
}

// RenderReview returns the text printed instead of mailing an author.
func RenderReview(d schema.Digest) string {
	return fmt.Sprintf("We should send mail to %s, and ask about:\n\n%s\n", d.Author, packageList(d))
}

// Dispatch mails every digest when mail is set, or prints it for review otherwise.
// A failed send is logged and does not stop the others. It returns the number
// of digests delivered or printed.
func Dispatch(ctx context.Context, digests []schema.Digest, notifier contract.Notifier, tpl DigestTemplate, mail bool, w io.Writer) (int, error) {
	if mail && notifier == nil {
		return 0, fmt.Errorf("mail requested but no notifier is configured")
	}
	done := 0
	for _, d := range digests {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if !mail {
			if _, err := io.WriteString(w, RenderReview(d)); err != nil {
				return done, fmt.Errorf("failed to print digest of %s: %w", d.Author, err)
			}
			done++
			continue
		}
		subject, body := RenderDigest(d, tpl)
		if err := notifier.Send(ctx, d.Author, subject, body); err != nil {
			contract.LogWarn("Failed to send mail", err, "to", d.Author)
			continue
		}
		_, _ = fmt.Fprintf(w, "Sent mail to %s\n", d.Author)
		done++
	}
	return done, nil
}
