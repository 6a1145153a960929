package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/solver"
)

type topEntry struct {
	SymbolID string `json:"symbol_id"`
	Kind     string `json:"kind"`
	CF       uint64 `json:"context_footprint"`
}

func newTopCommand(flags *globalFlags) *cobra.Command {
	var limit int
	var nodeType string

	cmd := &cobra.Command{
		Use:   "top <semantic.json>",
		Short: "List the symbols with the highest Context Footprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			filter, err := parseNodeTypeFilter(nodeType)
			if err != nil {
				return newUsageError("%v", err)
			}
			if limit <= 0 {
				return newUsageError("--limit must be positive, got %d", limit)
			}

			built, err := loadAndBuild(ctx, path)
			if err != nil {
				return err
			}
			cfg := loadCLIConfig(built.graph.ProjectRoot)
			params, err := resolvePreset(cfg, flags.preset)
			if err != nil {
				return err
			}

			var maxTokens *uint32
			if flags.maxTokens > 0 {
				maxTokens = &flags.maxTokens
			}

			entries := make([]topEntry, 0, built.graph.NodeCount())
			for i := 0; i < built.graph.NodeCount(); i++ {
				idx := graphmodel.NodeIndex(i)
				if !matchesFilter(built.graph, idx, filter) {
					continue
				}
				node := built.graph.Node(idx)
				result, err := solver.ComputeCF(ctx, built.graph, built.registry, idx, params, maxTokens)
				if err != nil {
					continue
				}
				entries = append(entries, topEntry{
					SymbolID: node.Symbol(),
					Kind:     node.Kind.String(),
					CF:       result.TotalContextSize,
				})
			}

			sort.Slice(entries, func(i, j int) bool { return entries[i].CF > entries[j].CF })
			if len(entries) > limit {
				entries = entries[:limit]
			}

			if wantsJSON(flags) {
				return printJSON(entries)
			}

			for _, e := range entries {
				fmt.Printf("%-10d %-10s %s\n", e.CF, e.Kind, e.SymbolID)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of top symbols to print")
	cmd.Flags().StringVar(&nodeType, "node-type", "", "restrict to function, variable, or all (default all)")
	return cmd
}
