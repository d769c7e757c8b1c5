package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/housing-cli/internal/audit"
	"github.com/sells-group/housing-cli/internal/fetcher"
	"github.com/sells-group/housing-cli/internal/pipeline"
)

// -- extract --

var (
	extractURL  string
	extractDir  string
	extractFile string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Download the housing dataset",
	Long:  "Downloads the CSV from --url (or source.url) into --file, creating directories as needed.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ec := pipeline.ExtractConfig{
			URL:  firstNonEmpty(extractURL, cfg.Source.URL),
			Dir:  firstNonEmpty(extractDir, cfg.Source.Dir),
			File: firstNonEmpty(extractFile, cfg.Source.File),
		}

		if ec.URL == "" {
			return eris.New("extract: no source url configured (use --url or HOUSING_SOURCE_URL)")
		}

		f, err := fetcher.ForURL(ec.URL, fetcher.Options{
			UserAgent:  cfg.Source.UserAgent,
			Timeout:    time.Duration(cfg.Source.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Source.MaxRetries,
			RateLimit:  cfg.Source.RateLimit,
			Fs:         appFs,
		})
		if err != nil {
			return eris.Wrap(err, "extract")
		}

		res, err := pipeline.Extract(cmd.Context(), appFs, f, ec)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Extracted %s to %s\n", humanize.Bytes(uint64(res.Bytes)), res.Path)
		return nil
	},
}

// -- transform_load --

var (
	loadDataset string
	loadNoReset bool
)

var transformLoadCmd = &cobra.Command{
	Use:   "transform_load",
	Short: "Load the extracted CSV into the store",
	Long: "Decodes the dataset, skipping rows that fail to parse, and bulk loads it. " +
		"The table is dropped and recreated first unless --no-reset is given.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		path := firstNonEmpty(loadDataset, cfg.Source.File)

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		res, err := pipeline.TransformLoad(ctx, appFs, st, path, !loadNoReset)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d records from %s (%d skipped)\n", res.Inserted, path, res.Skipped)
		return nil
	},
}

// -- query --

var queryCmd = &cobra.Command{
	Use:   "query [flags] <sql>",
	Short: "Run a SQL statement and record it in the audit log",
	Long: "Runs the statement as given. SELECT statements over the housing table print one " +
		"line per row; any other statement is executed and its affected row count reported. " +
		"The statement is not sanitized. Successful statements are appended to the audit log.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stmt := strings.Join(args, " ")

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		log := audit.New(appFs, cfg.Audit.Path)
		res, err := pipeline.Query(ctx, st, log, stmt, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		if !res.Select {
			fmt.Fprintf(cmd.OutOrStdout(), "%d rows affected\n", res.Affected)
		}
		return nil
	},
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	extractCmd.Flags().StringVar(&extractURL, "url", "", "dataset URL (overrides source.url)")
	extractCmd.Flags().StringVar(&extractDir, "dir", "", "download directory (overrides source.dir)")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "destination file (overrides source.file)")

	transformLoadCmd.Flags().StringVar(&loadDataset, "dataset", "", "CSV file to load (overrides source.file)")
	transformLoadCmd.Flags().BoolVar(&loadNoReset, "no-reset", false, "append to the existing table instead of recreating it")

	queryCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(transformLoadCmd)
	rootCmd.AddCommand(queryCmd)
}
