//go:build !stratumdebug

package assert

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestThatLogsInReleaseBuilds(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	if !That(true, logger, "never logged") {
		t.Fatalf("That(true) = false")
	}
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output %q", buf.String())
	}

	if That(false, logger, "anchor missing", "window", 7) {
		t.Fatalf("That(false) = true")
	}
	out := buf.String()
	if !strings.Contains(out, "assertion failed: anchor missing") || !strings.Contains(out, "window=7") {
		t.Fatalf("log output = %q", out)
	}
}
