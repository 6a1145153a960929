package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/builder"
	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/ports/docscore"
	"github.com/contextfp/cf/internal/ports/sizefunc"
	"github.com/contextfp/cf/internal/ports/sourcereader"
	"github.com/contextfp/cf/internal/semantic"
	"github.com/contextfp/cf/internal/snapshot"
	"github.com/contextfp/cf/internal/solver"
	"github.com/contextfp/cf/internal/typeregistry"
)

// cacheDir is where the BadgerDB snapshot cache lives, following the
// teacher's convention of a dotfile cache directory under the user's home
// rather than a system-wide location.
func cacheDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving cache directory: %w", err)
	}
	return filepath.Join(home, ".cache", "cf", "snapshots"), nil
}

func newBuildFromJSONCommand(flags *globalFlags) *cobra.Command {
	var symbolID string

	cmd := &cobra.Command{
		Use:   "build-from-json <semantic.json>",
		Short: "Build (or load a cached) Context Graph from a semantic data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			data, err := semantic.ParseBytes(raw)
			if err != nil {
				return fmt.Errorf("parsing semantic data: %w", err)
			}

			canonical, err := json.Marshal(data)
			if err != nil {
				return fmt.Errorf("canonicalizing semantic data: %w", err)
			}
			contentHash := snapshot.ContentHash(canonical)

			var (
				graph    *graphmodel.Graph
				registry *typeregistry.Registry
				fromCache bool
			)

			var mgr *snapshot.Manager
			if !flags.noCache {
				m, closeDB, err := openSnapshotManager()
				if err != nil {
					// A broken cache is not fatal: fall through to a fresh build.
					fmt.Fprintf(os.Stderr, "warning: snapshot cache unavailable: %v\n", err)
				} else {
					defer closeDB()
					mgr = m
					if g, reg, meta, err := mgr.Load(ctx, contentHash); err == nil && meta != nil {
						graph, registry, fromCache = g, reg, true
					}
				}
			}

			if graph == nil {
				buildCfg := loadCLIConfig(data.ProjectRoot)
				reader := sourcereader.New(data.ProjectRoot)
				sizeFn, err := sizefunc.New(sizefunc.WithEncoding(buildCfg.TokenizerEncoding))
				if err != nil {
					return fmt.Errorf("initializing tokenizer: %w", err)
				}
				scorer := docscore.New(docscore.WithKeywords(buildCfg.DocScorerKeywords))
				b := builder.New(reader, sizeFn, scorer)
				result, err := b.Build(ctx, data)
				if err != nil {
					return fmt.Errorf("building graph: %w", err)
				}
				graph, registry = result.Graph, result.Registry

				if mgr != nil {
					if _, err := mgr.Save(ctx, contentHash, graph, registry); err != nil {
						fmt.Fprintf(os.Stderr, "warning: could not save snapshot: %v\n", err)
					}
				}
			}

			report := map[string]any{
				"node_count":   graph.NodeCount(),
				"content_hash": contentHash,
				"from_cache":   fromCache,
			}

			if symbolID != "" {
				idx, ok := graph.IndexOf(symbolID)
				if !ok {
					return fmt.Errorf("unknown symbol %q", symbolID)
				}
				cfg := loadCLIConfig(graph.ProjectRoot)
				params, err := resolvePreset(cfg, flags.preset)
				if err != nil {
					return err
				}
				var maxTokens *uint32
				if flags.maxTokens > 0 {
					maxTokens = &flags.maxTokens
				}
				result, err := solver.ComputeCF(ctx, graph, registry, idx, params, maxTokens)
				if err != nil {
					return err
				}
				report["symbol_id"] = symbolID
				report["total_context_size"] = result.TotalContextSize
				report["reachable_count"] = len(result.ReachableSet)
			}

			if wantsJSON(flags) {
				return printJSON(report)
			}
			fmt.Printf("nodes:        %d\n", graph.NodeCount())
			fmt.Printf("content_hash: %s\n", contentHash)
			fmt.Printf("from_cache:   %t\n", fromCache)
			if symbolID != "" {
				fmt.Printf("symbol:       %s\n", symbolID)
				fmt.Printf("cf:           %v\n", report["total_context_size"])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&symbolID, "symbol", "", "also compute the Context Footprint of this symbol after building")
	return cmd
}

func openSnapshotManager() (*snapshot.Manager, func(), error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating cache directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("opening snapshot cache: %w", err)
	}

	mgr, err := snapshot.New(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return mgr, func() { db.Close() }, nil
}
