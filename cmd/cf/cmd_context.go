package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/ports/sizefunc"
	"github.com/contextfp/cf/internal/ports/sourcereader"
	"github.com/contextfp/cf/internal/solver"
)

func newContextCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "context <semantic.json> <symbol_id>",
		Short: "Print the concatenated source spans of a symbol's reachable set",
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

			reader := sourcereader.New(built.graph.ProjectRoot)

			var out strings.Builder
			for _, nodeIdx := range result.ReachableSet {
				node := built.graph.Node(nodeIdx)
				if node == nil {
					continue
				}
				core := node.Core()
				src, err := reader.Read(core.FilePath)
				if err != nil {
					fmt.Fprintf(&out, "// %s: could not read %s: %v\n\n", core.ID, core.FilePath, err)
					continue
				}
				fmt.Fprintf(&out, "// %s (%s)\n", core.ID, core.FilePath)
				out.WriteString(sizefunc.SliceSpan(src, core.Span))
				out.WriteString("\n\n")
			}

			fmt.Print(out.String())
			return nil
		},
	}
}
