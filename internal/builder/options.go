// Package builder implements the Graph Builder: the multi-pass
// translation of Semantic Data into a Context Graph and Type Registry
// (spec §4.1).
package builder

import (
	"github.com/contextfp/cf/internal/ports"
)

// defaultMaxFixpointIterations bounds Pass 3's call-edge recovery loop
// against pathological input, mirroring the teacher's
// maxEmbedResolutionDepth defensive cap on embed resolution recursion.
const defaultMaxFixpointIterations = 50

// Options configures a Builder.
type Options struct {
	MaxFixpointIterations int
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{MaxFixpointIterations: defaultMaxFixpointIterations}
}

// Option is a functional option for configuring a Builder.
type Option func(*Options)

// WithMaxFixpointIterations overrides the Pass 3 iteration cap.
func WithMaxFixpointIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxFixpointIterations = n
		}
	}
}

// Builder translates a SemanticData value into a Context Graph and Type
// Registry. A Builder is stateless between calls; each Build invocation
// allocates its own buildState, so a single Builder may be reused
// concurrently across independent builds.
type Builder struct {
	options     Options
	reader      ports.SourceReader
	sizeFn      ports.SizeFunction
	docScorer   ports.DocumentationScorer
}

// New constructs a Builder over the three injected ports.
func New(reader ports.SourceReader, sizeFn ports.SizeFunction, docScorer ports.DocumentationScorer, opts ...Option) *Builder {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Builder{
		options:   options,
		reader:    reader,
		sizeFn:    sizeFn,
		docScorer: docScorer,
	}
}
