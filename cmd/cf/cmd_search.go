package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/solver"
)

type searchEntry struct {
	SymbolID string  `json:"symbol_id"`
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	CF       *uint64 `json:"context_footprint,omitempty"`
}

func newSearchCommand(flags *globalFlags) *cobra.Command {
	var withCF bool

	cmd := &cobra.Command{
		Use:   "search <semantic.json> <pattern>",
		Short: "List symbols whose name contains pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, pattern := args[0], args[1]
			ctx := cmd.Context()

			built, err := loadAndBuild(ctx, path)
			if err != nil {
				return err
			}

			var matches []searchEntry
			for i := 0; i < built.graph.NodeCount(); i++ {
				idx := graphmodel.NodeIndex(i)
				node := built.graph.Node(idx)
				core := node.Core()
				if !strings.Contains(core.Name, pattern) {
					continue
				}
				matches = append(matches, searchEntry{
					SymbolID: core.ID,
					Name:     core.Name,
					Kind:     node.Kind.String(),
				})
			}

			if withCF {
				cfg := loadCLIConfig(built.graph.ProjectRoot)
				pruneParams, err := resolvePreset(cfg, flags.preset)
				if err != nil {
					return err
				}
				var maxTokens *uint32
				if flags.maxTokens > 0 {
					maxTokens = &flags.maxTokens
				}
				for i := range matches {
					idx, ok := built.graph.IndexOf(matches[i].SymbolID)
					if !ok {
						continue
					}
					result, err := solver.ComputeCF(ctx, built.graph, built.registry, idx, pruneParams, maxTokens)
					if err != nil {
						continue
					}
					cf := result.TotalContextSize
					matches[i].CF = &cf
				}
			}

			if wantsJSON(flags) {
				return printJSON(matches)
			}

			for _, m := range matches {
				if m.CF != nil {
					fmt.Printf("%-10s %-10d %s\n", m.Kind, *m.CF, m.SymbolID)
				} else {
					fmt.Printf("%-10s %s\n", m.Kind, m.SymbolID)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCF, "with-cf", false, "also compute each match's Context Footprint")
	return cmd
}
