package xmlpull

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"

	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/pkg/eventstream"
)

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{filepath.Join("testdata", "features")},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("feature scenarios failed")
	}
}

type eventRow struct {
	kind string
	name string
	text string
}

// scenarioState holds per-scenario state for step definitions.
type scenarioState struct {
	parser   *eventstream.Parser
	err      error
	document string
	events   []eventRow
	opts     []eventstream.Options
	clean    bool
}

func (s *scenarioState) ensureParser() error {
	if s.parser != nil {
		return nil
	}
	p, err := Open(strings.NewReader(s.document), s.opts...)
	if err != nil {
		return err
	}
	s.parser = p
	return nil
}

func (s *scenarioState) read(limit int) error {
	if err := s.ensureParser(); err != nil {
		return err
	}
	for n := 0; limit < 0 || n < limit; n++ {
		ev, err := s.parser.Next()
		if errors.Is(err, io.EOF) {
			s.clean = true
			return nil
		}
		if err != nil {
			s.err = err
			return nil
		}
		s.events = append(s.events, describe(ev))
	}
	return nil
}

func describe(ev eventstream.Event) eventRow {
	row := eventRow{kind: ev.Kind.String()}
	switch ev.Kind {
	case eventstream.KindStartDocument:
		row.name = ev.Document.Version
	case eventstream.KindProcessingInstruction:
		row.name = ev.Instruction.Target
		row.text = ev.Instruction.Data.String()
	case eventstream.KindStartElement:
		row.name = ev.Start.Name.String()
		attrs := make([]string, 0, len(ev.Start.Attrs))
		for _, attr := range ev.Start.Attrs {
			attrs = append(attrs, attr.Name.String()+"="+attr.Value.String())
		}
		row.text = strings.Join(attrs, ",")
	case eventstream.KindEndElement:
		row.name = ev.End.Name.String()
	default:
		row.text = ev.Text.String()
	}
	return row
}

func initializeScenario(ctx *godog.ScenarioContext) {
	s := &scenarioState{}

	ctx.Step(`^the document:$`, func(doc *godog.DocString) error {
		s.document = doc.Content
		return nil
	})
	ctx.Step(`^end tags are matched by depth only$`, func() error {
		s.opts = append(s.opts, eventstream.MatchEndTags(false))
		return nil
	})

	ctx.Step(`^I read all events$`, func() error {
		return s.read(-1)
	})
	ctx.Step(`^I read (\d+) events$`, func(n int) error {
		if err := s.read(n); err != nil {
			return err
		}
		if s.err != nil {
			return fmt.Errorf("unexpected error after %d events: %w", len(s.events), s.err)
		}
		return nil
	})

	ctx.Step(`^the events are:$`, func(table *godog.Table) error {
		if s.err != nil {
			return fmt.Errorf("unexpected error: %w", s.err)
		}
		want := make([]eventRow, 0, len(table.Rows))
		for i, row := range table.Rows {
			if i == 0 {
				continue
			}
			if len(row.Cells) != 3 {
				return fmt.Errorf("row %d has %d cells, want 3", i, len(row.Cells))
			}
			want = append(want, eventRow{kind: row.Cells[0].Value, name: row.Cells[1].Value, text: row.Cells[2].Value})
		}
		if len(want) != len(s.events) {
			return fmt.Errorf("got %d events %v, want %d", len(s.events), s.events, len(want))
		}
		for i := range want {
			if want[i] != s.events[i] {
				return fmt.Errorf("event %d = %+v, want %+v", i, s.events[i], want[i])
			}
		}
		return nil
	})
	ctx.Step(`^the document ends cleanly at depth 0$`, func() error {
		if !s.clean || s.err != nil {
			return fmt.Errorf("document did not end cleanly: %v", s.err)
		}
		if s.parser.Depth() != 0 {
			return fmt.Errorf("depth = %d, want 0", s.parser.Depth())
		}
		return nil
	})
	ctx.Step(`^parsing fails with "([^"]*)"$`, func(code string) error {
		if s.err == nil {
			return fmt.Errorf("parsing succeeded, want %s", code)
		}
		if got := xmlerrors.CodeOf(s.err); got != xmlerrors.Code(code) {
			return fmt.Errorf("error code = %q (%v), want %q", got, s.err, code)
		}
		return nil
	})
	ctx.Step(`^the depth is (\d+)$`, func(depth int) error {
		if got := s.parser.Depth(); got != depth {
			return fmt.Errorf("depth = %d, want %d", got, depth)
		}
		return nil
	})
	ctx.Step(`^the error is sticky$`, func() error {
		if s.parser.Err() != s.err {
			return fmt.Errorf("Err() = %v, want %v", s.parser.Err(), s.err)
		}
		if _, err := s.parser.Next(); err != s.err {
			return fmt.Errorf("Next() error = %v, want %v", err, s.err)
		}
		if state := s.parser.Scan(); state != eventstream.StateEod {
			return fmt.Errorf("state = %s, want Eod", state)
		}
		return nil
	})
}
