package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(append([]string{"--no-color"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunPrintsEvents(t *testing.T) {
	code, out, errOut := runCLI(t, `<?xml version="1.0"?><a x="1"><b/>hi</a>`)
	if code != 0 {
		t.Fatalf("exit = %d, want 0 (stderr %q)", code, errOut)
	}
	for _, want := range []string{
		"StartDocument version=1.0",
		`StartElement a x="1"`,
		"StartElement b /",
		`Characters "hi"`,
		"EndElement a",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunSyntaxError(t *testing.T) {
	code, _, errOut := runCLI(t, "<a>\n<b></a>")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "-:2:") || !strings.Contains(errOut, "tag-mismatch") {
		t.Fatalf("stderr = %q, want location and code", errOut)
	}
}

func TestRunCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	if err := os.WriteFile(path, []byte(`<a><b/></a>`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	code, out, errOut := runCLI(t, "", "--check", path)
	if code != 0 {
		t.Fatalf("exit = %d, want 0 (stderr %q)", code, errOut)
	}
	if out != path+" is well-formed\n" {
		t.Fatalf("stdout = %q", out)
	}
}

func TestRunBalanceOnly(t *testing.T) {
	if code, _, _ := runCLI(t, `<a><b></a></b>`, "--check"); code != 1 {
		t.Fatalf("strict exit = %d, want 1", code)
	}
	if code, _, errOut := runCLI(t, `<a><b></a></b>`, "--check", "--balance-only"); code != 0 {
		t.Fatalf("balance-only exit = %d, want 0 (stderr %q)", code, errOut)
	}
}

func TestRunASCII(t *testing.T) {
	code, out, _ := runCLI(t, `<a>café</a>`, "--ascii")
	if code != 0 {
		t.Fatalf("exit = %d, want 0", code)
	}
	if !strings.Contains(out, `Characters "cafe"`) {
		t.Fatalf("output = %q, want transliterated text", out)
	}
}

func TestRunCharsetFlag(t *testing.T) {
	code, out, errOut := runCLI(t, "<a>caf\xe9</a>", "--charset", "latin1")
	if code != 0 {
		t.Fatalf("exit = %d, want 0 (stderr %q)", code, errOut)
	}
	if !strings.Contains(out, `Characters "café"`) {
		t.Fatalf("output = %q, want decoded text", out)
	}
}

func TestRunVerboseLogs(t *testing.T) {
	_, _, errOut := runCLI(t, `<a><b></a>`, "--verbose")
	if !strings.Contains(errOut, "level=DEBUG") {
		t.Fatalf("stderr = %q, want debug log", errOut)
	}
}

func TestRunSkipWhitespace(t *testing.T) {
	_, out, _ := runCLI(t, "<a>\n  <b/>\n</a>", "--skip-whitespace")
	if strings.Contains(out, "Characters") {
		t.Fatalf("output = %q, want no whitespace events", out)
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"--nope"}, 2},
		{"two files", []string{"a.xml", "b.xml"}, 2},
		{"bad charset", []string{"--charset", "no-such-charset"}, 2},
		{"negative limit", []string{"--max-depth", "-1"}, 2},
		{"help", []string{"--help"}, 0},
		{"missing file", []string{filepath.Join(os.TempDir(), "xmlevents-missing.xml")}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _, _ := runCLI(t, "", tt.args...); code != tt.want {
				t.Fatalf("exit = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestRunDepthLimit(t *testing.T) {
	code, _, errOut := runCLI(t, `<a><b><c></c></b></a>`, "--max-depth", "2")
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(errOut, "root-element-unbalanced") {
		t.Fatalf("stderr = %q", errOut)
	}
}
