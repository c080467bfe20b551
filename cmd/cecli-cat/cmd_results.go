package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ErichBSchulz/cecli-cats/internal/aggregate"
	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
	"github.com/ErichBSchulz/cecli-cats/internal/consolidate"
	"github.com/ErichBSchulz/cecli-cats/internal/format"
	"github.com/ErichBSchulz/cecli-cats/internal/logging"
	"github.com/ErichBSchulz/cecli-cats/internal/printer"
	"github.com/ErichBSchulz/cecli-cats/internal/report"
)

const defaultConsolidatedFile = "results.csv"

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Aggregate, consolidate, and analyze benchmark results",
}

func init() {
	resultsCmd.AddCommand(aggregateCmd)
	resultsCmd.AddCommand(consolidateCmd)
	resultsCmd.AddCommand(cleanCmd)
	resultsCmd.AddCommand(describeCmd)
	resultsCmd.AddCommand(crosstabCmd)
}

// decimalsFor resolves the --decimals flag: 3 when quiet, 5 normally, raw
// precision at any verbosity, unless the flag was given explicitly.
func decimalsFor(cmd *cobra.Command, flagVal int) int {
	if cmd.Flags().Changed("decimals") {
		return flagVal
	}
	if rootFlags.quiet {
		return 3
	}
	if rootFlags.verbose == 0 {
		return 5
	}
	return report.RawDecimals
}

// aggregate

var aggregateFlags struct {
	inDir     string
	outDir    string
	indexFile string
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Harvest raw result files from run directories into per-model artifacts",
	RunE:  runAggregate,
}

func init() {
	f := aggregateCmd.Flags()
	f.StringVarP(&aggregateFlags.inDir, "in-dir", "i", "..", "Input directory to scan")
	f.StringVarP(&aggregateFlags.outDir, "out-dir", "o", "results", "Output directory for aggregated results")
	f.StringVar(&aggregateFlags.indexFile, "index-file", "cat/index.csv", "Index CSV for legacy fixture lookup")
}

func runAggregate(_ *cobra.Command, _ []string) error {
	logger := logging.New("aggregate")

	ix := catalog.LoadIndex(aggregateFlags.indexFile, logger)
	res, err := aggregate.Run(aggregateFlags.inDir, ix, logger)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	written := aggregate.WriteArtifacts(aggregateFlags.outDir, res, logger)

	if !rootFlags.quiet && len(res.Buckets) > 0 {
		t := format.NewTable()
		t.Header("Run", "Model", "Count", "Pass", "Reject")
		t.RightAlign(3, 4, 5)
		for _, b := range res.Buckets {
			s := b.Summarize()
			t.Row(format.Truncate(b.Run, 40), format.Truncate(b.Model, 40), s.Count, s.Pass, s.Rejected)
		}
		fmt.Println(t.String())
		printer.Success("Processed %d results (skipped %d), wrote %d artifacts", res.Processed, res.Skipped, written)
	}
	return nil
}

// consolidate

var consolidateFlags struct {
	resultsDir string
	catsDir    string
	outFile    string
	setsOnly   bool
}

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Flatten aggregated artifacts into a single analysis-ready CSV",
	RunE:  runConsolidate,
}

func init() {
	f := consolidateCmd.Flags()
	f.StringVarP(&consolidateFlags.resultsDir, "results-dir", "r", "results", "Directory containing aggregated results")
	f.StringVarP(&consolidateFlags.catsDir, "cats-dir", "c", "cat", "Directory containing fixture metadata and index.csv")
	f.StringVarP(&consolidateFlags.outFile, "out-file", "o", defaultConsolidatedFile, "Output CSV file")
	f.BoolVar(&consolidateFlags.setsOnly, "sets-only", false, "Emit the joined sets column without per-set indicator columns")
}

func runConsolidate(_ *cobra.Command, _ []string) error {
	logger := logging.New("consolidate")

	indexFile := filepath.Join(consolidateFlags.catsDir, "index.csv")
	ix := catalog.LoadIndex(indexFile, logger)

	opts := consolidate.Options{Logger: logger}
	if consolidateFlags.setsOnly {
		opts.TagJoin = consolidate.TagJoinSetsOnly
	}

	tbl, err := consolidate.Run(consolidateFlags.resultsDir, ix, opts)
	if err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}
	if err := consolidate.WriteCSV(consolidateFlags.outFile, tbl); err != nil {
		return fmt.Errorf("consolidate: %w", err)
	}

	if !rootFlags.quiet {
		printer.Success("Consolidated %d results into %s", len(tbl.Rows), consolidateFlags.outFile)
	}
	return nil
}

// clean

var cleanFlags struct {
	inDir       string
	outDir      string
	yolo        bool
	interactive bool
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Find runs and artifacts where every result was rejected",
	Long: "Scans source run directories and aggregated artifacts for buckets whose\n" +
		"results were all rejected. By default prints the removal commands; use\n" +
		"--interactive to confirm or --yolo to delete immediately.",
	RunE: runClean,
}

func init() {
	f := cleanCmd.Flags()
	f.StringVarP(&cleanFlags.inDir, "in-dir", "i", "..", "Input directory to scan")
	f.StringVarP(&cleanFlags.outDir, "out-dir", "o", "results", "Aggregated results directory")
	f.BoolVar(&cleanFlags.yolo, "yolo", false, "Delete without confirmation")
	f.BoolVar(&cleanFlags.interactive, "interactive", false, "Ask before deleting")
}

func runClean(cmd *cobra.Command, _ []string) error {
	logger := logging.New("clean")

	broken, err := aggregate.FindBrokenRuns(cleanFlags.inDir, logger)
	if err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	broken = append(broken, aggregate.FindBrokenBuckets(logger, cleanFlags.outDir, cleanFlags.inDir)...)

	if len(broken) == 0 {
		printer.Info("No broken runs found")
		return nil
	}

	if !cleanFlags.yolo && !cleanFlags.interactive {
		fmt.Println("# run these commands to remove the broken runs")
		for _, p := range broken {
			fmt.Printf("rm -rf %q\n", p)
		}
		return nil
	}

	if cleanFlags.interactive && !cleanFlags.yolo {
		fmt.Println("The following directories will be removed:")
		for _, p := range broken {
			fmt.Printf("  %s\n", p)
		}
		fmt.Print("Remove them? [y/N] ")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Scan()
		if strings.ToLower(strings.TrimSpace(scanner.Text())) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	for _, p := range broken {
		printer.Step("Removing %s", p)
		if err := os.RemoveAll(p); err != nil {
			printer.Warning("Failed to remove %s: %v", p, err)
		}
	}
	return nil
}

// describe

var describeFlags struct {
	inputFile string
	decimals  int
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print per-column statistics for the consolidated CSV",
	RunE:  runDescribe,
}

func init() {
	f := describeCmd.Flags()
	f.StringVarP(&describeFlags.inputFile, "input-file", "i", defaultConsolidatedFile, "Consolidated CSV path")
	f.IntVar(&describeFlags.decimals, "decimals", 0, "Decimal places (default: 3 quiet, 5 normal, raw verbose)")
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	frame, err := report.LoadFrame(describeFlags.inputFile)
	if err != nil {
		return fmt.Errorf("%w (run 'cecli-cat results consolidate' first)", err)
	}
	stats := report.Describe(frame, decimalsFor(cmd, describeFlags.decimals))
	fmt.Println(report.RenderDescribe(stats))
	return nil
}

// crosstab

var crosstabFlags struct {
	inputFile string
	groupBy   string
	outcome   string
	decimals  int
}

var crosstabCmd = &cobra.Command{
	Use:   "crosstab",
	Short: "Group the consolidated CSV and aggregate outcome metrics",
	RunE:  runCrosstab,
}

func init() {
	f := crosstabCmd.Flags()
	f.StringVarP(&crosstabFlags.inputFile, "input-file", "i", defaultConsolidatedFile, "Consolidated CSV path")
	f.StringVar(&crosstabFlags.groupBy, "group-by", "", "Comma-separated columns to group by")
	f.StringVar(&crosstabFlags.outcome, "outcome", "", "Comma-separated columns to aggregate")
	f.IntVar(&crosstabFlags.decimals, "decimals", 0, "Decimal places (default: 3 quiet, 5 normal, raw verbose)")
}

func runCrosstab(cmd *cobra.Command, _ []string) error {
	frame, err := report.LoadFrame(crosstabFlags.inputFile)
	if err != nil {
		return fmt.Errorf("%w (run 'cecli-cat results consolidate' first)", err)
	}
	frame.DerivePassed()

	dims := splitColumns(crosstabFlags.groupBy)
	if len(dims) == 0 {
		dims = report.DefaultDimensions(frame, rootFlags.quiet, rootFlags.verbose)
	}
	if len(dims) == 0 {
		return fmt.Errorf("crosstab: no valid grouping columns in %s", crosstabFlags.inputFile)
	}

	outcomes := splitColumns(crosstabFlags.outcome)
	if len(outcomes) == 0 {
		outcomes = report.DefaultOutcomes(frame, rootFlags.quiet, rootFlags.verbose)
	}

	decimals := decimalsFor(cmd, crosstabFlags.decimals)
	for _, dim := range dims {
		groups := report.Crosstab(frame, dim, outcomes)
		fmt.Printf("\nDimension: %s\n", dim)
		fmt.Println(report.RenderCrosstab(dim, outcomes, groups, decimals))
	}
	return nil
}

func splitColumns(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
