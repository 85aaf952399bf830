package notify

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMessage(t *testing.T) {
	assert.Equal(t, "From: me@x.org\nSubject: Hi\n\nbody\n", FormatMessage("me@x.org", "Hi", "body\n"))
	assert.Equal(t, "Subject: Hi\n\nbody", FormatMessage("", "Hi", "body"))
}

func TestValidRecipient(t *testing.T) {
	assert.NoError(t, validRecipient("jdoe@suse.com"))
	assert.Error(t, validRecipient(""))
	assert.Error(t, validRecipient("-oQ/tmp/x"))
	assert.Error(t, validRecipient("a@b.c d@e.f"))
}

func TestWriter_Send(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriter(&buf, "bot@x.org")

	require.NoError(t, n.Send(context.Background(), "jdoe@suse.com", "Subject line", "Hello\n"))
	assert.Equal(t, "To: jdoe@suse.com\nFrom: bot@x.org\nSubject: Subject line\n\nHello\n\n", buf.String())

	assert.Error(t, n.Send(context.Background(), "-x", "s", "b"))
}

// fakeSendmail writes a script that records its argument and stdin.
func fakeSendmail(t *testing.T, exitCode int) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "mail.out")
	script := filepath.Join(dir, "sendmail")
	content := "#!/bin/sh\necho \"$1\" > " + out + "\ncat >> " + out + "\n"
	if exitCode != 0 {
		content += "echo 'no route' >&2\nexit 3\n"
	}
	require.NoError(t, os.WriteFile(script, []byte(content), 0o755))
	return script, out
}

func TestSendmail_Send(t *testing.T) {
	script, out := fakeSendmail(t, 0)
	s := NewSendmail(script, "bot@x.org")

	require.NoError(t, s.Send(context.Background(), "jdoe@suse.com", "Tell us", "Hi,\n"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "jdoe@suse.com\nFrom: bot@x.org\nSubject: Tell us\n\nHi,\n", string(data))
}

func TestSendmail_Failure(t *testing.T) {
	script, _ := fakeSendmail(t, 3)
	err := NewSendmail(script, "").Send(context.Background(), "jdoe@suse.com", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no route")
}

func TestSendmail_MissingBinary(t *testing.T) {
	s := NewSendmail(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, s.Send(context.Background(), "jdoe@suse.com", "s", "b"))
}

func TestNewSendmail_DefaultPath(t *testing.T) {
	assert.Equal(t, "/usr/sbin/sendmail", NewSendmail("", "").Path)
}
