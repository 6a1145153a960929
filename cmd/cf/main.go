// Command cf is the CLI driver over the Context Footprint core: it builds
// a Context Graph from a Semantic Data Contract file and exposes
// stats/top/search/compute/context/build-from-json subcommands (spec
// §6.3). The CLI is not part of the core; it is a thin consumer of the
// core's public API, matching the teacher's cmd/aleutian split between
// library packages and a cobra-based entrypoint.
package main

import "os"

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}
