package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/fatih/color"
	"github.com/rainycape/unidecode"
	"github.com/spf13/pflag"

	"github.com/jacoelho/xmlpull"
	xmlerrors "github.com/jacoelho/xmlpull/errors"
	"github.com/jacoelho/xmlpull/pkg/charset"
	"github.com/jacoelho/xmlpull/pkg/eventstream"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

type config struct {
	charset        string
	cpuProfile     string
	memProfile     string
	maxTokenSize   int
	maxDepth       int
	balanceOnly    bool
	skipWhitespace bool
	check          bool
	ascii          bool
	noColor        bool
	verbose        bool
}

func runWithArgs(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("xmlevents", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var cfg config
	fs.StringVar(&cfg.charset, "charset", "", "force the input charset instead of detecting it")
	fs.IntVar(&cfg.maxTokenSize, "max-token-size", 0, "limit a single token to this many bytes (0 = unlimited)")
	fs.IntVar(&cfg.maxDepth, "max-depth", 0, "limit element nesting depth (0 = unlimited)")
	fs.BoolVar(&cfg.balanceOnly, "balance-only", false, "check nesting depth only, not end tag names")
	fs.BoolVar(&cfg.skipWhitespace, "skip-whitespace", false, "omit whitespace-only character data")
	fs.BoolVar(&cfg.check, "check", false, "only check well-formedness")
	fs.BoolVar(&cfg.ascii, "ascii", false, "transliterate names and text to ASCII")
	fs.BoolVar(&cfg.noColor, "no-color", false, "disable colored output")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "log parser diagnostics to stderr")
	fs.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	fs.StringVar(&cfg.memProfile, "memprofile", "", "write memory profile to file")
	var usageErr error
	fs.Usage = func() {
		usageErr = errors.Join(
			usageErr,
			writef(stderr, "Usage: xmlevents [options] [document.xml]\n\n"),
			writeln(stderr, "Prints the event stream of a markup document, or checks that it is well-formed."),
			writeln(stderr, "Reads standard input when no file or \"-\" is given."),
			writeln(stderr),
			writeln(stderr, "Options:"),
		)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			if usageErr != nil {
				return 1
			}
			return 0
		}
		return 2
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		if err := writeln(stderr, "error: at most one XML file argument is allowed"); err != nil {
			return 1
		}
		fs.Usage()
		if usageErr != nil {
			return 1
		}
		return 2
	}

	opts, err := parserOptions(cfg, stderr)
	if err != nil {
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		return 2
	}

	if cfg.cpuProfile != "" {
		stopCPUProfile, err := startCPUProfile(cfg.cpuProfile)
		if err != nil {
			_ = writef(stderr, "error starting CPU profile: %v\n", err)
			return 1
		}
		defer func() {
			if err := stopCPUProfile(); err != nil {
				_ = writef(stderr, "error stopping CPU profile: %v\n", err)
			}
		}()
	}
	if cfg.memProfile != "" {
		defer func() {
			if err := writeMemProfile(cfg.memProfile); err != nil {
				_ = writef(stderr, "error writing memory profile: %v\n", err)
			}
		}()
	}

	name := "-"
	input := stdin
	if len(remaining) == 1 && remaining[0] != "-" {
		name = remaining[0]
		f, err := os.Open(name)
		if err != nil {
			_ = writef(stderr, "error: open %s: %v\n", name, err)
			return 1
		}
		defer f.Close()
		input = f
	}

	pal := newPalette(cfg.noColor)
	if cfg.check {
		if err := xmlpull.CheckWellFormed(input, opts...); err != nil {
			reportError(stderr, pal, name, err)
			return 1
		}
		if err := writef(stdout, "%s is well-formed\n", name); err != nil {
			return 1
		}
		return 0
	}

	p, err := xmlpull.Open(input, opts...)
	if err != nil {
		reportError(stderr, pal, name, err)
		return 1
	}
	printer := &eventPrinter{w: stdout, pal: pal, ascii: cfg.ascii}
	for ev, err := range p.All() {
		if err != nil {
			reportError(stderr, pal, name, err)
			return 1
		}
		if err := printer.print(p, ev); err != nil {
			return 1
		}
	}
	return 0
}

func parserOptions(cfg config, stderr io.Writer) ([]eventstream.Options, error) {
	var opts []eventstream.Options
	if cfg.charset != "" {
		cs, err := charset.Lookup(cfg.charset)
		if err != nil {
			return nil, err
		}
		opts = append(opts, eventstream.WithCharset(cs))
	}
	if cfg.maxTokenSize < 0 || cfg.maxDepth < 0 {
		return nil, errors.New("limits must not be negative")
	}
	if cfg.maxTokenSize > 0 {
		opts = append(opts, eventstream.MaxTokenSize(cfg.maxTokenSize))
	}
	if cfg.maxDepth > 0 {
		opts = append(opts, eventstream.MaxDepth(cfg.maxDepth))
	}
	if cfg.balanceOnly {
		opts = append(opts, eventstream.MatchEndTags(false))
	}
	if cfg.skipWhitespace {
		opts = append(opts, eventstream.SkipWhitespace(true))
	}
	if cfg.verbose {
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		opts = append(opts, eventstream.WithLogger(logger))
	}
	return opts, nil
}

type palette struct {
	start *color.Color
	end   *color.Color
	text  *color.Color
	meta  *color.Color
	err   *color.Color
}

func newPalette(noColor bool) palette {
	pal := palette{
		start: color.New(color.FgGreen),
		end:   color.New(color.FgBlue),
		text:  color.New(),
		meta:  color.New(color.FgYellow),
		err:   color.New(color.FgRed, color.Bold),
	}
	if noColor {
		for _, c := range []*color.Color{pal.start, pal.end, pal.text, pal.meta, pal.err} {
			c.DisableColor()
		}
	}
	return pal
}

type eventPrinter struct {
	w     io.Writer
	pal   palette
	ascii bool
}

func (e *eventPrinter) str(s string) string {
	if e.ascii {
		return unidecode.Unidecode(s)
	}
	return s
}

func (e *eventPrinter) print(p *eventstream.Parser, ev eventstream.Event) error {
	var line string
	c := e.pal.text
	switch ev.Kind {
	case eventstream.KindStartDocument:
		c = e.pal.meta
		line = "version=" + ev.Document.Version
		if ev.Document.Encoding != "" {
			line += " encoding=" + ev.Document.Encoding
		}
		if ev.Document.HasStandalone {
			line += fmt.Sprintf(" standalone=%t", ev.Document.Standalone)
		}
	case eventstream.KindProcessingInstruction:
		c = e.pal.meta
		line = e.str(ev.Instruction.Target) + " " + fmt.Sprintf("%q", e.str(ev.Instruction.Data.String()))
	case eventstream.KindStartElement:
		c = e.pal.start
		var b strings.Builder
		b.WriteString(e.str(ev.Start.Name.String()))
		for _, attr := range ev.Start.Attrs {
			fmt.Fprintf(&b, " %s=%q", e.str(attr.Name.String()), e.str(attr.Value.String()))
		}
		if ev.Start.SelfClosing {
			b.WriteString(" /")
		}
		line = b.String()
	case eventstream.KindEndElement:
		c = e.pal.end
		line = e.str(ev.End.Name.String())
	case eventstream.KindDoctype, eventstream.KindComment:
		c = e.pal.meta
		line = fmt.Sprintf("%q", e.str(ev.Text.String()))
	default:
		line = fmt.Sprintf("%q", e.str(ev.Text.String()))
	}
	_, err := c.Fprintf(e.w, "%d:%d %s %s\n", p.Row(), p.Col(), ev.Kind, line)
	return err
}

func reportError(w io.Writer, pal palette, name string, err error) {
	if syntax, ok := xmlerrors.AsSyntax(err); ok {
		_, _ = pal.err.Fprintf(w, "%s:%d:%d: %s\n", name, syntax.Line, syntax.Column, syntax.Code)
	}
	_ = writef(w, "%s: %v\n", name, err)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
