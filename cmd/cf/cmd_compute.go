package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/solver"
)

func newComputeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "compute <semantic.json> <symbol_id>",
		Short: "Compute the Context Footprint of one symbol",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, symbolID := args[0], args[1]
			ctx := cmd.Context()

			built, err := loadAndBuild(ctx, path)
			if err != nil {
				return err
			}
			cfg := loadCLIConfig(built.graph.ProjectRoot)
			params, err := resolvePreset(cfg, flags.preset)
			if err != nil {
				return err
			}

			idx, ok := built.graph.IndexOf(symbolID)
			if !ok {
				return fmt.Errorf("unknown symbol %q", symbolID)
			}

			var maxTokens *uint32
			if flags.maxTokens > 0 {
				maxTokens = &flags.maxTokens
			}

			result, err := solver.ComputeCF(ctx, built.graph, built.registry, idx, params, maxTokens)
			if err != nil {
				return err
			}

			if wantsJSON(flags) {
				return printJSON(map[string]any{
					"symbol_id":          symbolID,
					"total_context_size": result.TotalContextSize,
					"reachable_count":    len(result.ReachableSet),
					"truncated":          result.Truncated,
				})
			}

			fmt.Printf("symbol:              %s\n", symbolID)
			fmt.Printf("total_context_size:  %d\n", result.TotalContextSize)
			fmt.Printf("reachable_count:     %d\n", len(result.ReachableSet))
			if result.Truncated {
				fmt.Println("truncated:           true (max-tokens reached)")
			}
			return nil
		},
	}
}
