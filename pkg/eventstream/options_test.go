package eventstream

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/jacoelho/xmlpull/pkg/charset"
)

func TestJoinOptionsLaterWins(t *testing.T) {
	opts := JoinOptions(MaxDepth(3), MatchEndTags(false), MaxDepth(5))
	resolved := resolveOptions(opts)
	if resolved.maxDepth != 5 {
		t.Fatalf("maxDepth = %d, want 5", resolved.maxDepth)
	}
	if resolved.matchEndTags {
		t.Fatalf("matchEndTags = true, want false")
	}
}

func TestResolveOptionsDefaults(t *testing.T) {
	resolved := resolveOptions(Options{})
	if !resolved.matchEndTags {
		t.Fatalf("matchEndTags default = false, want true")
	}
	if resolved.logger == nil {
		t.Fatalf("logger default = nil, want discard logger")
	}
	resolved = resolveOptions(JoinOptions(MaxTokenSize(-1), MaxNameEntries(-4)))
	if resolved.maxTokenSize != 0 || resolved.maxNameEntries != 0 {
		t.Fatalf("negative limits = %d, %d, want 0, 0", resolved.maxTokenSize, resolved.maxNameEntries)
	}
}

func TestWithLoggerRecordsFailure(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := collect(t, `<a><b></a>`, WithLogger(logger))
	if err == nil {
		t.Fatalf("collect error = nil, want TagMismatch")
	}
	if !strings.Contains(out.String(), "code=tag-mismatch") {
		t.Fatalf("log = %q, want tag-mismatch record", out.String())
	}
}

func TestWithCharsetOverridesDetection(t *testing.T) {
	latin1, err := charset.Lookup("ISO-8859-1")
	if err != nil {
		t.Fatalf("Lookup error = %v", err)
	}
	got, err := collect(t, "<a>caf\xe9</a>", WithCharset(latin1))
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	if got[1].Text != "café" {
		t.Fatalf("Characters = %q, want café", got[1].Text)
	}
}

func TestMaxNameEntriesStillParses(t *testing.T) {
	p := openString(t, `<a><b/><c/></a>`, MaxNameEntries(1))
	for _, err := range p.All() {
		if err != nil {
			t.Fatalf("All error = %v", err)
		}
	}
	if p.Stats().Names.Count != 1 {
		t.Fatalf("interned = %d, want 1", p.Stats().Names.Count)
	}
}

func TestBufferSizeOptions(t *testing.T) {
	doc := "<a>" + strings.Repeat("<b>x</b>", 200) + "</a>"
	got, err := collect(t, doc, InitialBufferSize(8), MaxBufferSize(32))
	if err != nil {
		t.Fatalf("collect error = %v", err)
	}
	if len(got) != 2+3*200 {
		t.Fatalf("events = %d, want %d", len(got), 2+3*200)
	}
}
