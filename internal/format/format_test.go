package format_test

import (
	"strings"
	"testing"
	"time"

	"lodestar/internal/format"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Question", "Confidence", "Status")
	tb.Row("what is lodestar?", "95%", "✓")
	out := tb.String()

	// StyleLight's header formatter upper-cases header cells.
	if !strings.Contains(out, "QUESTION") {
		t.Errorf("expected header in output:\n%s", out)
	}
	if !strings.Contains(out, "95%") {
		t.Errorf("expected confidence cell in output:\n%s", out)
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing rules in ASCII output:\n%s", out)
	}
}

func TestMarkdown_Table(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Suggestion")
	tb.Row("add the deployment runbook")
	out := tb.String()

	if !strings.Contains(out, "| Suggestion |") {
		t.Errorf("expected markdown header row:\n%s", out)
	}
	if !strings.Contains(out, "| add the deployment runbook |") {
		t.Errorf("expected markdown data row:\n%s", out)
	}
}

func TestFmtConfidence(t *testing.T) {
	if got := format.FmtConfidence(0.95); got != "95%" {
		t.Errorf("FmtConfidence(0.95) = %q", got)
	}
	if got := format.FmtConfidence(0); got != "0%" {
		t.Errorf("FmtConfidence(0) = %q", got)
	}
}

func TestFmtDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{95 * time.Second, "1m 35s"},
	}
	for _, tc := range cases {
		if got := format.FmtDuration(tc.in); got != tc.want {
			t.Errorf("FmtDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := format.Truncate("a long answer text", 10); got != "a long ..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := format.Truncate("short", 10); got != "short" {
		t.Errorf("Truncate = %q", got)
	}
}
