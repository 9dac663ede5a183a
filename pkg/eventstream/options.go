package eventstream

import (
	"log/slog"

	"github.com/jacoelho/xmlpull/pkg/charset"
)

// Options holds parser configuration values.
// The zero value means no overrides.
type Options struct {
	logger            *slog.Logger
	charset           charset.Charset
	initialBufferSize int
	maxBufferSize     int
	maxTokenSize      int
	maxDepth          int
	maxNameEntries    int
	matchEndTags      bool
	debugChecks       bool
	skipWhitespace    bool

	loggerSet            bool
	charsetSet           bool
	initialBufferSizeSet bool
	maxBufferSizeSet     bool
	maxTokenSizeSet      bool
	maxDepthSet          bool
	maxNameEntriesSet    bool
	matchEndTagsSet      bool
	debugChecksSet       bool
	skipWhitespaceSet    bool
}

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.loggerSet {
		opts.logger = src.logger
		opts.loggerSet = true
	}
	if src.charsetSet {
		opts.charset = src.charset
		opts.charsetSet = true
	}
	if src.initialBufferSizeSet {
		opts.initialBufferSize = src.initialBufferSize
		opts.initialBufferSizeSet = true
	}
	if src.maxBufferSizeSet {
		opts.maxBufferSize = src.maxBufferSize
		opts.maxBufferSizeSet = true
	}
	if src.maxTokenSizeSet {
		opts.maxTokenSize = src.maxTokenSize
		opts.maxTokenSizeSet = true
	}
	if src.maxDepthSet {
		opts.maxDepth = src.maxDepth
		opts.maxDepthSet = true
	}
	if src.maxNameEntriesSet {
		opts.maxNameEntries = src.maxNameEntries
		opts.maxNameEntriesSet = true
	}
	if src.matchEndTagsSet {
		opts.matchEndTags = src.matchEndTags
		opts.matchEndTagsSet = true
	}
	if src.debugChecksSet {
		opts.debugChecks = src.debugChecks
		opts.debugChecksSet = true
	}
	if src.skipWhitespaceSet {
		opts.skipWhitespace = src.skipWhitespace
		opts.skipWhitespaceSet = true
	}
}

// WithLogger sets the logger that receives debug records.
func WithLogger(logger *slog.Logger) Options {
	return Options{logger: logger, loggerSet: true}
}

// WithCharset forces the input charset instead of detecting it.
// Only honored by Open.
func WithCharset(cs charset.Charset) Options {
	return Options{charset: cs, charsetSet: true}
}

// InitialBufferSize sets the first read window size. Only honored by Open.
func InitialBufferSize(value int) Options {
	return Options{initialBufferSize: value, initialBufferSizeSet: true}
}

// MaxBufferSize caps the read window size. Only honored by Open.
func MaxBufferSize(value int) Options {
	return Options{maxBufferSize: value, maxBufferSizeSet: true}
}

// MaxTokenSize limits the size of a single token in bytes.
// Zero means no limit.
func MaxTokenSize(value int) Options {
	return Options{maxTokenSize: value, maxTokenSizeSet: true}
}

// MaxDepth limits element nesting depth. Zero means no limit.
func MaxDepth(value int) Options {
	return Options{maxDepth: value, maxDepthSet: true}
}

// MaxNameEntries limits the number of interned names. Zero means no limit.
func MaxNameEntries(value int) Options {
	return Options{maxNameEntries: value, maxNameEntriesSet: true}
}

// MatchEndTags requires end tags to name the element they close.
// With false only the nesting depth is checked. Enabled by default.
func MatchEndTags(value bool) Options {
	return Options{matchEndTags: value, matchEndTagsSet: true}
}

// DebugChecks poisons spans after buffer reuse and panics on state misuse.
func DebugChecks(value bool) Options {
	return Options{debugChecks: value, debugChecksSet: true}
}

// SkipWhitespace makes Next drop character runs that are only whitespace.
func SkipWhitespace(value bool) Options {
	return Options{skipWhitespace: value, skipWhitespaceSet: true}
}

type parserOptions struct {
	logger            *slog.Logger
	charset           charset.Charset
	initialBufferSize int
	maxBufferSize     int
	maxTokenSize      int
	maxDepth          int
	maxNameEntries    int
	matchEndTags      bool
	debugChecks       bool
	skipWhitespace    bool
}

func resolveOptions(opts Options) parserOptions {
	resolved := parserOptions{
		matchEndTags: true,
	}
	if opts.loggerSet {
		resolved.logger = opts.logger
	}
	if opts.charsetSet {
		resolved.charset = opts.charset
	}
	if opts.initialBufferSizeSet {
		resolved.initialBufferSize = normalizeLimit(opts.initialBufferSize)
	}
	if opts.maxBufferSizeSet {
		resolved.maxBufferSize = normalizeLimit(opts.maxBufferSize)
	}
	if opts.maxTokenSizeSet {
		resolved.maxTokenSize = normalizeLimit(opts.maxTokenSize)
	}
	if opts.maxDepthSet {
		resolved.maxDepth = normalizeLimit(opts.maxDepth)
	}
	if opts.maxNameEntriesSet {
		resolved.maxNameEntries = normalizeLimit(opts.maxNameEntries)
	}
	if opts.matchEndTagsSet {
		resolved.matchEndTags = opts.matchEndTags
	}
	if opts.debugChecksSet {
		resolved.debugChecks = opts.debugChecks
	}
	if opts.skipWhitespaceSet {
		resolved.skipWhitespace = opts.skipWhitespace
	}
	if resolved.logger == nil {
		resolved.logger = slog.New(slog.DiscardHandler)
	}
	return resolved
}

func normalizeLimit(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
