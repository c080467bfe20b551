package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ErichBSchulz/cecli-cats/internal/catalog"
	"github.com/ErichBSchulz/cecli-cats/internal/logging"
	"github.com/ErichBSchulz/cecli-cats/internal/migrate"
	"github.com/ErichBSchulz/cecli-cats/internal/printer"
	"github.com/ErichBSchulz/cecli-cats/internal/rehash"
	"github.com/ErichBSchulz/cecli-cats/internal/report"
)

var catsCmd = &cobra.Command{
	Use:   "cats",
	Short: "Manage the content-addressable fixture catalog",
}

func init() {
	catsCmd.AddCommand(migrateCmd)
	catsCmd.AddCommand(rehashCmd)
	catsCmd.AddCommand(reindexCmd)
	catsCmd.AddCommand(summaryCmd)
}

// migrate

var migrateFlags struct {
	root    string
	catsDir string
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import exercism-style fixtures into the hashed catalog layout",
	Long: "Scans <root>/<language>/exercises/practice for fixtures, assigns each a\n" +
		"UUID and content hash, and copies it into the sharded catalog tree with\n" +
		"a cat.yaml metadata file.",
	RunE: runMigrate,
}

func init() {
	f := migrateCmd.Flags()
	f.StringVar(&migrateFlags.root, "root", ".", "Benchmark checkout to scan for fixtures")
	f.StringVarP(&migrateFlags.catsDir, "cats-dir", "c", "cat", "Catalog directory to migrate into")
}

func runMigrate(_ *cobra.Command, _ []string) error {
	logger := logging.New("migrate")

	n, err := migrate.Run(migrateFlags.root, migrateFlags.catsDir, logger)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !rootFlags.quiet {
		printer.Success("Migrated %d fixtures into %s", n, migrateFlags.catsDir)
	}
	return nil
}

// rehash

var rehashFlags struct {
	catsDir string
	workers int
}

var rehashCmd = &cobra.Command{
	Use:   "rehash",
	Short: "Recalculate content hashes for every cataloged fixture",
	RunE:  runRehash,
}

func init() {
	f := rehashCmd.Flags()
	f.StringVarP(&rehashFlags.catsDir, "cats-dir", "c", "cat", "Catalog directory")
	f.IntVar(&rehashFlags.workers, "workers", rehash.DefaultWorkers, "Parallel hashing workers")
}

func runRehash(_ *cobra.Command, _ []string) error {
	logger := logging.New("rehash")

	stats, err := rehash.Run(rehashFlags.catsDir, rehashFlags.workers, logger)
	if err != nil {
		return fmt.Errorf("rehash: %w", err)
	}
	if !rootFlags.quiet {
		printer.Success("Checked %d fixtures, updated %d hashes", stats.Checked, stats.Updated)
	}
	return nil
}

// reindex

var reindexFlags struct {
	inDir   string
	outFile string
}

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the index CSV from fixture metadata",
	RunE:  runReindex,
}

func init() {
	f := reindexCmd.Flags()
	f.StringVarP(&reindexFlags.inDir, "in-dir", "i", "cat", "Catalog directory to scan")
	f.StringVarP(&reindexFlags.outFile, "out-file", "o", "cat/index.csv", "Output CSV file path")
}

func runReindex(_ *cobra.Command, _ []string) error {
	logger := logging.New("reindex")

	entries, err := catalog.ScanTree(reindexFlags.inDir, logger)
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	if err := catalog.WriteIndex(reindexFlags.outFile, entries); err != nil {
		return fmt.Errorf("reindex: %w", err)
	}
	if !rootFlags.quiet {
		printer.Success("Indexed %d fixtures into %s", len(entries), reindexFlags.outFile)
	}
	return nil
}

// summary

var summaryFlags struct {
	inFile string
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize cataloged fixtures per language",
	RunE:  runSummary,
}

func init() {
	f := summaryCmd.Flags()
	f.StringVarP(&summaryFlags.inFile, "in-file", "i", "cat/index.csv", "Index CSV file path")
}

func runSummary(_ *cobra.Command, _ []string) error {
	logger := logging.New("summary")

	ix := catalog.LoadIndex(summaryFlags.inFile, logger)
	if ix.Len() == 0 {
		return fmt.Errorf("summary: no fixtures found in %s", summaryFlags.inFile)
	}

	counts, total := report.CountByLanguage(ix.Entries())

	if rootFlags.verbose >= 1 {
		for _, c := range counts {
			fmt.Printf("\nLanguage: %s (%d fixtures)\n", c.Language, c.Count)
			for _, e := range c.Entries {
				name := e.Name
				if name == "" {
					name = "unnamed"
				}
				fmt.Printf("  - %-30s %s\n", name, e.Path)
			}
		}
		fmt.Println()
	}

	fmt.Println(report.RenderSummary(counts, total))
	return nil
}
