// Command goextract parses a tree of Go source files and emits a Semantic
// Data Contract JSON document (spec §6.1) for it, standing in for the
// per-language extractor the core treats as an external input rather than
// something it implements itself.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var modulePath, output string

	cmd := &cobra.Command{
		Use:   "goextract <source-dir>",
		Short: "Extract a Semantic Data Contract document from a Go source tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if modulePath == "" {
				modulePath = "extracted"
			}

			data, err := Extract(modulePath, dir)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", dir, err)
			}

			payload, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling semantic data: %w", err)
			}

			if output == "" || output == "-" {
				_, err = os.Stdout.Write(append(payload, '\n'))
				return err
			}
			return os.WriteFile(output, payload, 0o644)
		},
	}

	cmd.Flags().StringVar(&modulePath, "module", "", "module import path prefix for generated symbol IDs (default \"extracted\")")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: stdout)")
	return cmd
}
