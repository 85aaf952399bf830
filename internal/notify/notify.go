// Package notify delivers rendered digests to their recipients.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/huangsam/changescore/internal/contract"
)

// FormatMessage builds an RFC 822 style message from headers and body.
func FormatMessage(from, subject, body string) string {
	var b strings.Builder
	if from != "" {
		fmt.Fprintf(&b, "From: %s\n", from)
	}
	fmt.Fprintf(&b, "Subject: %s\n\n", subject)
	b.WriteString(body)
	return b.String()
}

// validRecipient rejects addresses that a mail transfer agent would read as options.
func validRecipient(recipient string) error {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("empty recipient")
	}
	if strings.HasPrefix(recipient, "-") || strings.ContainsAny(recipient, " \t\r\n") {
		return fmt.Errorf("invalid recipient %q", recipient)
	}
	return nil
}

// Sendmail pipes messages to a sendmail-compatible binary.
type Sendmail struct {
	Path string
	From string
}

var _ contract.Notifier = &Sendmail{} // Compile-time check

// NewSendmail creates a Sendmail notifier.
func NewSendmail(path, from string) *Sendmail {
	if path == "" {
		path = contract.DefaultSendmailPath
	}
	return &Sendmail{Path: path, From: from}
}

// Send runs `<Path> <recipient>` with the message on stdin.
func (s *Sendmail) Send(ctx context.Context, recipient, subject, body string) error {
	if err := validRecipient(recipient); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, s.Path, recipient)
	cmd.Stdin = strings.NewReader(FormatMessage(s.From, subject, body))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("sendmail to %s failed: %w: %s", recipient, err, msg)
		}
		return fmt.Errorf("sendmail to %s failed: %w", recipient, err)
	}
	contract.LogDebug("Sent mail", "to", recipient, "subject", subject)
	return nil
}

// Writer writes every message to an io.Writer instead of delivering it.
type Writer struct {
	mu   sync.Mutex
	w    io.Writer
	From string
}

var _ contract.Notifier = &Writer{} // Compile-time check

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer, from string) *Writer {
	return &Writer{w: w, From: from}
}

// Send writes the message preceded by a To header.
func (n *Writer) Send(_ context.Context, recipient, subject, body string) error {
	if err := validRecipient(recipient); err != nil {
		return err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "To: %s\n%s\n", recipient, FormatMessage(n.From, subject, body))
	return err
}
