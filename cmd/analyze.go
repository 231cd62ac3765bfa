package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mtanaka-dev/pr-analytics/internal/config"
	"github.com/mtanaka-dev/pr-analytics/internal/domain"
	"github.com/mtanaka-dev/pr-analytics/internal/gateway"
	"github.com/mtanaka-dev/pr-analytics/internal/report"
	"github.com/mtanaka-dev/pr-analytics/internal/usecase"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetches pull request data and produces analytics reports",
	Long: `Fetches pull requests for the configured repositories, runs the
analytics engine over them, and writes a JSON report plus optional summary
table and HTML charts. A single repository yields an individual analysis;
multiple repositories additionally yield a comparative analysis.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Get the verbose flag from the root command to set up the logger.
		verbose, _ := cmd.InheritedFlags().GetBool("verbose")
		logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
		if verbose {
			logger.SetOutput(os.Stderr) // If verbose, log to standard error.
		}

		configPath, _ := cmd.Flags().GetString("config")
		repoFlags, _ := cmd.Flags().GetStringArray("repo")
		year, _ := cmd.Flags().GetInt("year")
		outputDir, _ := cmd.Flags().GetString("output")
		writeJSON, _ := cmd.Flags().GetBool("json")
		writeCharts, _ := cmd.Flags().GetBool("charts")
		showTable, _ := cmd.Flags().GetBool("table")

		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		if year != 0 {
			cfg.AnalysisYear = year
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}
		if err := addRepoFlags(cfg, repoFlags); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		if len(cfg.Repositories) == 0 {
			fmt.Fprintln(os.Stderr, "Error: no repositories configured. Use --repo owner/name or a config file.")
			os.Exit(1)
		}

		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		githubGateway, err := gateway.NewGitHubGateway(token, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}

		repoRecords, err := fetchAll(ctx, githubGateway, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch pull requests: %v\n", err)
			os.Exit(1)
		}

		engine := usecase.NewEngine(logger, cfg.Workers, cfg.TopContributors)
		result, err := engine.Run(ctx, repoRecords, fmt.Sprintf("%d", cfg.AnalysisYear))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to analyze pull requests: %v\n", err)
			os.Exit(1)
		}

		if writeJSON {
			path, err := report.WriteJSON(result, cfg.OutputDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write JSON report: %v\n", err)
				os.Exit(1)
			}
			color.Green("Report written to %s", path)
		}

		if writeCharts {
			paths, err := report.WriteCharts(result, cfg.OutputDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to write charts: %v\n", err)
				os.Exit(1)
			}
			color.Green("Wrote %d charts to %s", len(paths), cfg.OutputDir)
		}

		if showTable {
			printTable(result)
		}
	},
}

// addRepoFlags appends --repo owner/name overrides to the configured list.
func addRepoFlags(cfg *config.Config, repoFlags []string) error {
	for _, flag := range repoFlags {
		owner, name, ok := strings.Cut(flag, "/")
		if !ok || owner == "" || name == "" {
			return fmt.Errorf("invalid --repo value %q, expected owner/name", flag)
		}
		cfg.Repositories = append(cfg.Repositories, config.Repository{Owner: owner, Name: name})
	}
	return nil
}

// fetchAll fetches every configured repository concurrently, bounded by
// the configured worker count. Fetching completes before the engine runs.
func fetchAll(ctx context.Context, fetcher gateway.Fetcher, cfg *config.Config) (map[string][]domain.RawRecord, error) {
	from, to := cfg.AnalysisWindow()

	records := make([]([]domain.RawRecord), len(cfg.Repositories))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.Workers)
	for i, repo := range cfg.Repositories {
		i, repo := i, repo
		eg.Go(func() error {
			var err error
			records[i], err = fetcher.FetchPullRequests(egCtx, repo.Owner, repo.Name, from, to)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	repoRecords := make(map[string][]domain.RawRecord, len(cfg.Repositories))
	for i, repo := range cfg.Repositories {
		repoRecords[repo.Slug()] = records[i]
	}
	return repoRecords, nil
}

func printTable(result domain.AnalysisResult) {
	if single, ok := result.Single(); ok {
		fmt.Println(report.OverviewTable(single))
		return
	}
	if multi, ok := result.Multi(); ok {
		fmt.Println(report.SummaryTable(multi))
	}
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringP("config", "c", "pr-analytics.yaml", "Path to the YAML configuration file")
	analyzeCmd.Flags().StringArrayP("repo", "r", nil, "Repository to analyze as owner/name (repeatable)")
	analyzeCmd.Flags().Int("year", 0, "Analysis year (defaults to the config value or the current year)")
	analyzeCmd.Flags().StringP("output", "o", "", "Output directory for reports and charts")
	analyzeCmd.Flags().Bool("json", true, "Write the JSON report")
	analyzeCmd.Flags().Bool("charts", false, "Render HTML charts")
	analyzeCmd.Flags().Bool("table", true, "Print the summary table")
}
