package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kurihiro0119/github-weekly-series/internal/aggregator"
	"github.com/kurihiro0119/github-weekly-series/internal/config"
	"github.com/kurihiro0119/github-weekly-series/internal/domain"
	apperrors "github.com/kurihiro0119/github-weekly-series/internal/errors"
	"github.com/kurihiro0119/github-weekly-series/internal/logger"
)

var (
	outputJSON   bool
	useAPI       bool
	historyLimit int
)

var rootCmd = &cobra.Command{
	Use:   "weekly-series",
	Short: "Weekly activity series for GitHub repositories",
	Long: `A CLI tool for computing weekly activity series of a GitHub repository.

Series are computed on demand from the GitHub REST API: commits, distinct
contributors, new stars, and opened or closed issues per week. Weeks without
activity are reported as zero.`,
	SilenceUsage: true,
}

var seriesCmd = &cobra.Command{
	Use:   "series [kind] [owner/repo]",
	Short: "Show one weekly series",
	Long: `Display a weekly series for a repository.

Kinds: commits, contributors, starsOpened, issuesOpened, issuesClosed.`,
	Args: cobra.ExactArgs(2),
	RunE: runSeries,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard [owner/repo]",
	Short: "Show every weekly series of a repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runDashboard,
}

var historyCmd = &cobra.Command{
	Use:   "history [owner/repo]",
	Short: "Show recent series queries",
	Long:  `Display the query journal of a repository, newest first.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Show the GitHub API quota",
	Args:  cobra.NoArgs,
	RunE:  runRateLimit,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&useAPI, "api", false, "query a running API server (API_ENDPOINT) instead of GitHub")
	historyCmd.Flags().IntVar(&historyLimit, "limit", aggregator.DefaultQueryLimit, "maximum number of queries to show")

	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(rateLimitCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if apperrors.IsStatsComputing(err) {
			fmt.Fprintln(os.Stderr, "GitHub is still computing statistics for this repository, try again in a few seconds.")
		}
		stop()
		os.Exit(1)
	}
}

// parseRepoArg splits an "owner/repo" argument
func parseRepoArg(arg string) (string, string, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(arg), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("repository must be in owner/repo form, got %q", arg)
	}
	return owner, repo, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Init(logger.Options{Level: cfg.LogLevel, Format: "console", Service: "weekly-series"})
	return cfg, nil
}

func runSeries(cmd *cobra.Command, args []string) error {
	kind, ok := domain.ParseSeriesKind(args[0])
	if !ok {
		return fmt.Errorf("unknown series kind %q", args[0])
	}
	owner, repo, err := parseRepoArg(args[1])
	if err != nil {
		return err
	}

	b, err := newBackend(useAPI)
	if err != nil {
		return err
	}
	defer b.Close()

	series, err := b.WeeklySeries(cmd.Context(), kind, owner, repo)
	if err != nil {
		return fmt.Errorf("failed to get %s series: %w", kind, err)
	}

	if outputJSON {
		return printJSON(os.Stdout, series)
	}
	renderSeries(os.Stdout, series)
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	owner, repo, err := parseRepoArg(args[0])
	if err != nil {
		return err
	}

	b, err := newBackend(useAPI)
	if err != nil {
		return err
	}
	defer b.Close()

	dashboard, err := b.Dashboard(cmd.Context(), owner, repo)
	if err != nil {
		return fmt.Errorf("failed to get dashboard: %w", err)
	}

	if outputJSON {
		return printJSON(os.Stdout, dashboard)
	}
	renderDashboard(os.Stdout, dashboard)
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	owner, repo, err := parseRepoArg(args[0])
	if err != nil {
		return err
	}

	b, err := newBackend(useAPI)
	if err != nil {
		return err
	}
	defer b.Close()

	records, err := b.Queries(cmd.Context(), owner, repo, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list queries: %w", err)
	}

	if outputJSON {
		return printJSON(os.Stdout, records)
	}
	renderQueries(os.Stdout, records)
	return nil
}

func runRateLimit(cmd *cobra.Command, _ []string) error {
	b, err := newBackend(useAPI)
	if err != nil {
		return err
	}
	defer b.Close()

	quota, err := b.Quota(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get rate limit: %w", err)
	}

	if outputJSON {
		return printJSON(os.Stdout, quota)
	}
	renderQuota(os.Stdout, quota)
	return nil
}
