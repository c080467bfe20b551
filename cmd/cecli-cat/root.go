// cecli-cat manages content-addressable test fixtures (CATs) and the
// benchmark results produced by running them.
//
// Usage:
//
//	cecli-cat cats migrate|rehash|reindex|summary
//	cecli-cat results aggregate|consolidate|clean|describe|crosstab
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ErichBSchulz/cecli-cats/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	quiet   bool
	verbose int
}

var rootCmd = &cobra.Command{
	Use:   "cecli-cat",
	Short: "Content-addressable test fixtures and benchmark result tooling",
	Long: "cecli-cat catalogs benchmark fixtures under stable UUIDs with content\n" +
		"hashes, and aggregates per-fixture benchmark results into analysis-ready\n" +
		"artifacts and CSVs.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logging.Init(logging.LevelFromVerbosity(rootFlags.quiet, rootFlags.verbose), "text")
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&rootFlags.quiet, "quiet", "q", false, "Quiet output")
	pf.CountVarP(&rootFlags.verbose, "verbose", "v", "Increase verbosity (-v, -vv)")

	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(catsCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
