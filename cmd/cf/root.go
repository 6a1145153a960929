package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/contextfp/cf/internal/cfconfig"
	"github.com/contextfp/cf/internal/observability"
	"github.com/contextfp/cf/internal/pruning"
)

// usageError marks an error that should exit 2 (invalid CLI usage),
// distinct from I/O or build failures which exit 1, per spec §6.3.
type usageError struct{ error }

func newUsageError(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	var ue usageError
	if eAs(err, &ue) {
		return 2
	}
	return 1
}

// eAs reports whether err is itself a usageError, by a direct type
// assertion; unlike errors.As it does not unwrap wrapped errors.
func eAs(err error, target *usageError) bool {
	if u, ok := err.(usageError); ok {
		*target = u
		return true
	}
	return false
}

// globalFlags holds the flag values shared by every subcommand.
type globalFlags struct {
	preset    string
	maxTokens uint32
	noCache   bool
	jsonOut   bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	var providers *observability.Providers

	root := &cobra.Command{
		Use:           "cf",
		Short:         "Compute Context Footprint metrics over a semantic code graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configureLogging()
			// No WithStdoutTracing here: stdouttrace writes span JSON to
			// os.Stdout, which would corrupt the listing commands' own
			// stdout (text/JSON) output. Metrics flow through the
			// Prometheus exporter regardless.
			p, err := observability.Setup(cmd.Context())
			if err != nil {
				return fmt.Errorf("setting up observability: %w", err)
			}
			providers = p
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if providers == nil {
				return
			}
			if err := providers.Shutdown(cmd.Context()); err != nil {
				slog.Warn("observability shutdown failed", "error", err)
			}
		},
	}

	root.PersistentFlags().StringVar(&flags.preset, "preset", "academic", "pruning preset: academic or strict")
	root.PersistentFlags().Uint32Var(&flags.maxTokens, "max-tokens", 0, "stop traversal once this many tokens have been counted (0 = unbounded)")
	root.PersistentFlags().BoolVar(&flags.noCache, "no-cache", false, "skip the snapshot cache, always rebuild the graph")
	root.PersistentFlags().BoolVar(&flags.jsonOut, "json", false, "force machine-readable JSON output regardless of TTY detection")

	root.AddCommand(
		newStatsCommand(flags),
		newTopCommand(flags),
		newSearchCommand(flags),
		newComputeCommand(flags),
		newContextCommand(flags),
		newBuildFromJSONCommand(flags),
	)
	return root
}

// configureLogging picks a text handler for an interactive terminal and a
// JSON handler otherwise, following the teacher's mattn/go-isatty-gated
// logging split.
func configureLogging() {
	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})
	}
	slog.SetDefault(slog.New(handler))
}

// wantsJSON decides, for every subcommand's report, between human-readable
// text and indented JSON: explicit --json wins, otherwise fall back to
// whether stdout is a terminal.
func wantsJSON(flags *globalFlags) bool {
	if flags.jsonOut {
		return true
	}
	return !isatty.IsTerminal(os.Stdout.Fd())
}

func resolvePreset(cfg cfconfig.Config, name string) (pruning.Params, error) {
	params, err := cfg.Preset(name)
	if err != nil {
		return pruning.Params{}, newUsageError("%v", err)
	}
	return params, nil
}
