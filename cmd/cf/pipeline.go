package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/contextfp/cf/internal/builder"
	"github.com/contextfp/cf/internal/cfconfig"
	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/ports/docscore"
	"github.com/contextfp/cf/internal/ports/sizefunc"
	"github.com/contextfp/cf/internal/ports/sourcereader"
	"github.com/contextfp/cf/internal/semantic"
	"github.com/contextfp/cf/internal/typeregistry"
)

// buildResult bundles everything a subcommand needs after loading a
// semantic data file: the graph, the registry, and the number of
// diagnostics the build recorded.
type buildResult struct {
	graph    *graphmodel.Graph
	registry *typeregistry.Registry
	diagCount int
}

// loadAndBuild reads path, parses it as a Semantic Data Contract document,
// and runs the Graph Builder over it using the reference port
// implementations (tiktoken SizeFunction, heuristic DocumentationScorer,
// filesystem SourceReader rooted at the document's own project_root).
func loadAndBuild(ctx context.Context, path string) (*buildResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data, err := semantic.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing semantic data: %w", err)
	}

	cfg := loadCLIConfig(data.ProjectRoot)

	reader := sourcereader.New(data.ProjectRoot)
	sizeFn, err := sizefunc.New(sizefunc.WithEncoding(cfg.TokenizerEncoding))
	if err != nil {
		return nil, fmt.Errorf("initializing tokenizer: %w", err)
	}
	scorer := docscore.New(docscore.WithKeywords(cfg.DocScorerKeywords))

	b := builder.New(reader, sizeFn, scorer)
	result, err := b.Build(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}

	return &buildResult{graph: result.Graph, registry: result.Registry, diagCount: len(result.Diagnostics)}, nil
}

func loadCLIConfig(projectRoot string) cfconfig.Config {
	cfg, err := cfconfig.Load(projectRoot)
	if err != nil {
		// Falls back to the embedded default; a broken override file
		// should not prevent the CLI from running at all.
		cfg, _ = cfconfig.Default()
	}
	return cfg
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
