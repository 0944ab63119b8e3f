package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	runTimeout   time.Duration
	keywordsPath string
	outputDir    string
	topN         int
	forcePush    bool
	skipNotify   bool
	skipLLM      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one aggregation pass and write reports",
	Long: `Run fetches all configured sources concurrently, deduplicates and
filters the headlines, ranks them, and writes HTML, text and JSON
reports. The run is saved to local history and, when channels are
configured, pushed to the notification channels.

Example:
  trendpulse run
  trendpulse run --keywords keywords.txt --top 20
  trendpulse run --force-push --output ./reports`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
	runCmd.Flags().StringVar(&keywordsPath, "keywords", "", "keyword file path (overrides config)")
	runCmd.Flags().StringVar(&outputDir, "output", "", "report output directory (overrides config)")
	runCmd.Flags().IntVar(&topN, "top", 0, "number of items to keep (overrides config)")
	runCmd.Flags().BoolVar(&forcePush, "force-push", false, "push notifications even outside the window or after today's push")
	runCmd.Flags().BoolVar(&skipNotify, "no-notify", false, "skip notifications")
	runCmd.Flags().BoolVar(&skipLLM, "no-llm", false, "skip trend analysis")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if keywordsPath != "" {
		cfg.Report.KeywordsPath = keywordsPath
	}
	if outputDir != "" {
		cfg.Report.OutputDir = outputDir
	}
	if topN > 0 {
		cfg.Report.TopN = topN
	}

	log := newLogger()
	app, err := NewApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	var progress func(sourceID, status string)
	if verbose {
		progress = func(sourceID, status string) {
			fmt.Fprintf(os.Stderr, "  %-22s %s\n", sourceID, status)
		}
	}

	started := time.Now()
	rep, err := app.RunOnce(ctx, RunOptions{
		SkipNotify: skipNotify,
		SkipLLM:    skipLLM,
		ForcePush:  forcePush,
		Progress:   progress,
	})
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}

	fmt.Printf("Fetched %d/%d sources, %d raw items, %d after filtering, kept %d\n",
		len(rep.News.SourcesFetched), app.SourceCount(), rep.News.TotalRaw,
		rep.News.TotalFiltered, len(rep.News.Items))
	if len(rep.News.SourcesFailed) > 0 {
		fmt.Printf("Failed sources: %v\n", rep.News.SourcesFailed)
	}
	fmt.Printf("New titles since last run: %d\n", len(rep.NewTitles))
	fmt.Printf("Done in %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}
