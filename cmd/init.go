package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/housing-cli/internal/loader"
)

var initReset bool

var initCmd = &cobra.Command{
	Use:   "init <csv_path>",
	Short: "Create the table and load records from a CSV file",
	Long: "Creates the housing table if needed and loads every row of the CSV file. " +
		"Any row that fails to parse aborts the load before anything is written.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		decoded, err := loader.LoadFile(appFs, path, loader.Strict)
		if err != nil {
			return eris.Wrap(err, "init")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if initReset {
			if err := st.Reset(ctx); err != nil {
				return eris.Wrap(err, "init")
			}
		}

		n, err := st.BulkInsert(ctx, decoded.Records)
		if err != nil {
			return eris.Wrap(err, "init")
		}

		zap.L().Debug("init: loaded records", zap.String("csv", path), zap.Int64("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "Database initialized and %d records loaded from %s\n", n, path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initReset, "reset", false, "drop and recreate the table before loading")
	rootCmd.AddCommand(initCmd)
}
