package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/sitemap-crawler/internal/config"
	"github.com/rohmanhakim/sitemap-crawler/internal/engine"
	"github.com/rohmanhakim/sitemap-crawler/internal/export"
	"github.com/rohmanhakim/sitemap-crawler/internal/metadata"
	"github.com/rohmanhakim/sitemap-crawler/internal/store"
	"github.com/spf13/cobra"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the crawl to completion",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()

		recorder := metadata.NewRecorder("crawl")
		st, openErr := store.Open(cfg.DBPath(), cfg.MaxAttempt(), &recorder)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Error: opening store: %s\n", openErr)
			os.Exit(1)
		}
		defer st.Close()

		eng := engine.New(cfg, &recorder, &st)
		if err := eng.Seed(cfg.SeedURLs()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: seeding crawl: %s\n", err)
			os.Exit(1)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		start := time.Now()
		stats, runErr := eng.Run(ctx)
		duration := time.Since(start)
		recorder.RecordFinalCrawlStats(stats.PagesCrawled, stats.Errors, stats.Assets, duration)

		if runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: crawl stopped: %s\n", runErr)
			os.Exit(1)
		}

		fmt.Printf("Crawl finished: %d pages, %d errors, %d assets, in %v\n",
			stats.PagesCrawled, stats.Errors, stats.Assets, duration)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the store's tables to newline-delimited records",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()

		recorder := metadata.NewRecorder("export")
		st, openErr := store.Open(cfg.DBPath(), cfg.MaxAttempt(), &recorder)
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "Error: opening store: %s\n", openErr)
			os.Exit(1)
		}
		defer st.Close()

		outputDir := cfg.OutputDirectories()["json"]
		if outputDir == "" {
			outputDir = "output/json"
		}

		result, err := export.ExportAll(&st, outputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: exporting: %s\n", err)
			os.Exit(1)
		}

		fmt.Printf("Exported %d documents, %d faq items, %d link edges, %d assets, %d external urls, %d external domains to %s\n",
			result.Documents, result.FAQItems, result.LinkEdges, result.Assets,
			result.ExternalURLs, result.ExternalDomains, outputDir)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse the config and exit 0 if valid",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := resolveConfig()
		fmt.Printf("Config valid: %d seed URL(s), db_path=%s, output_dir=%s\n",
			len(cfg.SeedURLs()), cfg.DBPath(), cfg.OutputDir())
	},
}

// resolveConfig builds a Config the same way the root command does, exiting
// the process on failure. It's factored out so crawl/export/validate share
// exactly one notion of "how a config gets built from flags or a file".
func resolveConfig() config.Config {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		return cfg
	}

	if len(seedURLs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --seed-url is required when --config-file is not set.\n")
		os.Exit(1)
	}
	parsedURLs, err := parseSeedURLs(seedURLs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	return InitConfig(parsedURLs)
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
}
