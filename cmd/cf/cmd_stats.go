package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/graphmodel"
	"github.com/contextfp/cf/internal/solver"
)

// nodeTypeFilter narrows stats/top to one node kind, matching the --node-type
// flag's "function" / "variable" values.
type nodeTypeFilter string

const (
	filterAll      nodeTypeFilter = ""
	filterFunction nodeTypeFilter = "function"
	filterVariable nodeTypeFilter = "variable"
)

func parseNodeTypeFilter(raw string) (nodeTypeFilter, error) {
	switch raw {
	case "", "all":
		return filterAll, nil
	case "function":
		return filterFunction, nil
	case "variable":
		return filterVariable, nil
	default:
		return "", fmt.Errorf("invalid --node-type %q: want function, variable, or all", raw)
	}
}

func matchesFilter(g *graphmodel.Graph, idx graphmodel.NodeIndex, f nodeTypeFilter) bool {
	if f == filterAll {
		return true
	}
	node := g.Node(idx)
	if node == nil {
		return false
	}
	switch f {
	case filterFunction:
		return node.Kind == graphmodel.NodeKindFunction
	case filterVariable:
		return node.Kind == graphmodel.NodeKindVariable
	}
	return true
}

func newStatsCommand(flags *globalFlags) *cobra.Command {
	var nodeType string

	cmd := &cobra.Command{
		Use:   "stats <semantic.json>",
		Short: "Print the CF distribution across every symbol in the graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx := cmd.Context()

			filter, err := parseNodeTypeFilter(nodeType)
			if err != nil {
				return newUsageError("%v", err)
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

			var values []uint64
			for i := 0; i < built.graph.NodeCount(); i++ {
				idx := graphmodel.NodeIndex(i)
				if !matchesFilter(built.graph, idx, filter) {
					continue
				}
				result, err := solver.ComputeCF(ctx, built.graph, built.registry, idx, params, maxTokens)
				if err != nil {
					continue
				}
				values = append(values, result.TotalContextSize)
			}

			if len(values) == 0 {
				return fmt.Errorf("no symbols matched --node-type %q", nodeType)
			}
			sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

			report := summarize(values)

			if wantsJSON(flags) {
				return printJSON(report)
			}

			fmt.Printf("count:   %d\n", report.Count)
			fmt.Printf("min:     %d\n", report.Min)
			fmt.Printf("max:     %d\n", report.Max)
			fmt.Printf("mean:    %.1f\n", report.Mean)
			fmt.Printf("median:  %d\n", report.Median)
			for p := 5; p <= 100; p += 5 {
				fmt.Printf("p%-3d:    %d\n", p, report.Percentiles[p])
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&nodeType, "node-type", "", "restrict to function, variable, or all (default all)")
	return cmd
}

type statsReport struct {
	Count       int              `json:"count"`
	Min         uint64           `json:"min"`
	Max         uint64           `json:"max"`
	Mean        float64          `json:"mean"`
	Median      uint64           `json:"median"`
	Percentiles map[int]uint64   `json:"percentiles"`
}

func summarize(sorted []uint64) statsReport {
	n := len(sorted)
	var sum uint64
	for _, v := range sorted {
		sum += v
	}

	percentiles := make(map[int]uint64, 20)
	for p := 5; p <= 100; p += 5 {
		percentiles[p] = percentileOf(sorted, p)
	}

	return statsReport{
		Count:       n,
		Min:         sorted[0],
		Max:         sorted[n-1],
		Mean:        float64(sum) / float64(n),
		Median:      percentileOf(sorted, 50),
		Percentiles: percentiles,
	}
}

// percentileOf returns the value at the given percentile (1-100) of a
// slice already sorted ascending, using the nearest-rank method.
func percentileOf(sorted []uint64, p int) uint64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := (p*n + 99) / 100
	if rank < 1 {
		rank = 1
	}
	if rank > n {
		rank = n
	}
	return sorted[rank-1]
}
