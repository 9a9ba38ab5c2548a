package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hession/searchdl/internal/cli"
	"github.com/hession/searchdl/internal/config"
	"github.com/hession/searchdl/internal/download"
	"github.com/hession/searchdl/internal/logger"
	"github.com/hession/searchdl/internal/metrics"
	"github.com/hession/searchdl/internal/websearch"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
)

// flagValues holds the root command's flags before they are merged into
// the loaded configuration.
type flagValues struct {
	verbose     bool
	dest        string
	site        string
	fileTypes   string
	forceDirs   bool
	timeout     float64
	maxResults  int
	perPage     int
	provider    string
	baseURL     string
	configPath  string
	metricsFile string
}

func main() {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	err := rootCmd.Execute()
	os.Exit(exitCode(err, os.Stdout, os.Stderr))
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	f := &flagValues{}

	rootCmd := &cobra.Command{
		Use:   "searchdl [flags] QUERY_WORDS...",
		Short: "Search the web and download every matching file",
		Long: `searchdl runs a web search, walks the result pages and downloads each
result to a local file named after its URL.

Examples:
  searchdl foo bar
  searchdl -s example.com -f pdf foo bar
  searchdl "foo bar site:example.com filetype:pdf"`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			applyFlags(cmd, cfg, f)
			if err := cfg.Validate(); err != nil {
				return err
			}

			words := args
			if len(words) == 0 {
				if !cli.StdinIsTerminal() {
					return errors.New("requires at least one query word")
				}
				query := cli.PromptQuery()
				if query == "" {
					return nil
				}
				words = strings.Fields(query)
			}

			return runSearch(cmd.Context(), cfg, f, words, stdout, stderr)
		},
	}

	bindFlags(rootCmd, f)
	rootCmd.PersistentFlags().StringVar(&f.configPath, "config", "", "Config file (default ./config/config.yaml)")

	// config subcommand
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(f.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(stdout, cfg.String())

			path := f.configPath
			if path == "" {
				path, _ = config.ConfigPath()
			}
			fmt.Fprintf(stdout, "\nConfig file path: %s\n", path)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := f.configPath
			if path == "" {
				p, err := config.ConfigPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists: %s", path)
			}
			if err := config.Save(config.DefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Config written to %s\n", path)
			return nil
		},
	}
	configCmd.AddCommand(initCmd)

	// version subcommand
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "searchdl v%s\n", version)
		},
	}

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	return rootCmd
}

func bindFlags(cmd *cobra.Command, f *flagValues) {
	flags := cmd.Flags()
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Increase output verbosity")
	flags.StringVarP(&f.dest, "download-dir", "d", ".", "Directory to download files")
	flags.StringVarP(&f.site, "site", "s", "", "Site to search for")
	flags.StringVarP(&f.fileTypes, "file-type", "f", "", "Comma-separated list of file types to download")
	flags.BoolVarP(&f.forceDirs, "force-directories", "x", false, "Create a hierarchy of directories based on the URL")
	flags.Float64VarP(&f.timeout, "timeout", "t", 0, "Socket timeout for network operations in seconds")
	flags.IntVarP(&f.maxResults, "max-results", "m", 1000, "Maximum results to scrape")
	flags.IntVarP(&f.perPage, "results-per-page", "p", 50, "Number of results per page")
	flags.StringVar(&f.provider, "provider", "", "Search provider (duckduckgo, searxng)")
	flags.StringVar(&f.baseURL, "base-url", "", "Search provider base URL")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file when done")
}

// applyFlags overrides configuration values with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f *flagValues) {
	changed := cmd.Flags().Changed

	if changed("download-dir") {
		cfg.Download.Dir = f.dest
	}
	if changed("force-directories") {
		cfg.Download.ForceDirectories = f.forceDirs
	}
	if changed("timeout") {
		cfg.Download.TimeoutSeconds = f.timeout
		if f.timeout > 0 {
			cfg.Search.TimeoutSeconds = int(math.Ceil(f.timeout))
		}
	}
	if changed("max-results") {
		cfg.Search.MaxResults = f.maxResults
	}
	if changed("results-per-page") {
		cfg.Search.ResultsPerPage = f.perPage
	}
	if changed("provider") {
		cfg.Search.Provider = f.provider
	}
	if changed("base-url") {
		cfg.Search.BaseURL = f.baseURL
	}
	if changed("metrics-file") {
		cfg.Download.MetricsFile = f.metricsFile
	}
	if f.verbose {
		cfg.Log.Level = "debug"
	}
}

func runSearch(parent context.Context, cfg *config.Config, f *flagValues, words []string, stdout, stderr io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var console io.Writer
	if f.verbose {
		console = stderr
	}
	runID := uuid.New().String()[:8]
	if err := logger.Init(logger.Config{
		LogDir:  cfg.Log.Dir,
		Level:   logger.ParseLevel(cfg.Log.Level),
		MaxDays: cfg.Log.MaxDays,
		Console: console,
		Prefix:  "run " + runID,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	provider, err := websearch.NewProvider(cfg.Search.Provider, websearch.Options{
		BaseURL:   cfg.Search.BaseURL,
		UserAgent: cfg.Search.UserAgent,
		APIKey:    cfg.Search.APIKey,
		Timeout:   cfg.SearchTimeout(),
	})
	if err != nil {
		return err
	}

	userAgent := cfg.Download.UserAgent
	if userAgent == "" {
		userAgent = websearch.DefaultUserAgent
	}
	client := download.NewHTTPClient(download.ClientOptions{
		Timeout: cfg.DownloadTimeout(),
		Proxy:   cfg.Download.Proxy,
	})
	resolver := download.NewResolver(download.NewHeadProber(client, userAgent))
	fetcher := download.NewDownloader(client, userAgent, cfg.DownloadTimeout())
	m := metrics.New()

	runner := cli.NewRunner(provider, resolver, fetcher, m, stdout, cli.Options{
		Words:            words,
		FileTypes:        websearch.ParseFileTypes(f.fileTypes),
		Site:             f.site,
		DestDir:          cfg.Download.Dir,
		ForceDirectories: cfg.Download.ForceDirectories,
		ResultsPerPage:   cfg.Search.ResultsPerPage,
		MaxResults:       cfg.Search.MaxResults,
	})

	start := time.Now()
	summary, runErr := runner.Run(ctx)
	logger.Debug("Run took %s: %+v", time.Since(start).Round(time.Millisecond), summary)

	if cfg.Download.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.Download.MetricsFile); err != nil {
			logger.Warn("Failed to write metrics file %s: %v", cfg.Download.MetricsFile, err)
		}
	}

	return runErr
}

// exitCode reports err the way the user expects and maps it to the
// process exit status.
func exitCode(err error, stdout, stderr io.Writer) int {
	if err == nil || errors.Is(err, context.Canceled) {
		return 0
	}

	var searchErr *websearch.SearchError
	if errors.As(err, &searchErr) {
		fmt.Fprintf(stdout, "Search failed: %v\n", searchErr)
		return 0
	}

	var fsErr *download.FilesystemError
	if errors.As(err, &fsErr) {
		fmt.Fprintf(stderr, "Error: %v raised when tried to save the file '%s'\n", fsErr.Err, fsErr.Path)
		return 1
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
