package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statpull/statpull/pkg/api"
	"github.com/statpull/statpull/pkg/config"
	"github.com/statpull/statpull/pkg/logger"
	"github.com/statpull/statpull/pkg/sink"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "statpull",
		Short: "statpull - pull sports statistics and load them into a destination",
		Long: `statpull queries a sports-statistics HTTP API, normalizes the JSON
response into a table, and writes that table to a CSV file, PostgreSQL,
BigQuery, or Snowflake. One query, one transform, one write per invocation.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("statpull v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newPullCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// pullOptions collects the pull command's flags.
type pullOptions struct {
	category    string
	searchKeys  []string
	values      []string
	file        string
	export      bool
	table       string
	destination string
	compress    bool
	timeout     time.Duration
	apiURL      string
	logLevel    string
}

func newPullCmd() *cobra.Command {
	opts := &pullOptions{}

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Query the stats API and write the result to a destination",
		Long: `Query one API category with optional filters and write the normalized
table to exactly one destination.

Example:
  statpull pull --category games --search year --value 2022 --search team --value Alabama --file games
  statpull pull --category teams --search conference --value SEC --destination snowflake --table SEC_TEAMS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "API resource category to query (required)")
	cmd.Flags().StringArrayVarP(&opts.searchKeys, "search", "s", nil, "Filter key, repeatable; order is preserved in the URL")
	cmd.Flags().StringArrayVarP(&opts.values, "value", "v", nil, "Filter value, repeatable; must match --search count")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Base name for the CSV output file (defaults to the category)")
	cmd.Flags().BoolVarP(&opts.export, "export", "e", false, "Export to Snowflake instead of writing a CSV file")
	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "Destination table name (required for database destinations)")
	cmd.Flags().StringVarP(&opts.destination, "destination", "d", "", "Destination: csv, postgres, bigquery, or snowflake (overrides --export)")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "Gzip the CSV output file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", api.DefaultTimeout, "HTTP timeout for the API request")
	cmd.Flags().StringVar(&opts.apiURL, "api-url", "", "Override the API base URL")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func runPull(ctx context.Context, opts *pullOptions) error {
	if err := logger.Init(logger.Config{Level: opts.logLevel, Encoding: "json"}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.With(zap.String("component", "statpull-cli"))

	cfg := config.Load()
	if opts.apiURL != "" {
		cfg.API.BaseURL = opts.apiURL
	}

	// Fails fast on mismatched filter lists, before any network I/O.
	query, err := api.NewQuery(opts.category, opts.searchKeys, opts.values)
	if err != nil {
		return err
	}

	dest, err := resolveDestination(opts, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Query URL: %s\n", query.URL(cfg.API.BaseURL))

	client := api.NewClient(api.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		Timeout: opts.timeout,
		Logger:  log,
	})

	result, err := client.Fetch(ctx, query)
	if err != nil {
		return err
	}

	if err := sink.Write(ctx, result, dest, log); err != nil {
		return err
	}

	fmt.Println("Success")
	return nil
}

// resolveDestination maps the flag combination onto one destination
// variant. An explicit --destination wins; --export alone selects
// Snowflake; otherwise the result is written to a CSV file named after
// --file, falling back to the category.
func resolveDestination(opts *pullOptions, cfg *config.Config) (sink.Destination, error) {
	kind := sink.KindCSV
	if opts.destination != "" {
		parsed, err := sink.ParseKind(opts.destination)
		if err != nil {
			return sink.Destination{}, err
		}
		kind = parsed
	} else if opts.export {
		kind = sink.KindSnowflake
	}

	dest := sink.Destination{
		Kind:      kind,
		Table:     opts.table,
		Postgres:  cfg.Postgres,
		BigQuery:  cfg.BigQuery,
		Snowflake: cfg.Snowflake,
	}

	if kind == sink.KindCSV {
		basename := opts.file
		if basename == "" {
			basename = opts.category
		}
		dest.Path = sink.CSVPath(basename, opts.compress)
		dest.Compress = opts.compress
	}

	if err := dest.Validate(); err != nil {
		return sink.Destination{}, err
	}

	return dest, nil
}
