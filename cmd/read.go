package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/housing-cli/internal/model"
	"github.com/sells-group/housing-cli/internal/store"
)

var readFormat string

var readCmd = &cobra.Command{
	Use:   "read [id]",
	Short: "Show one record, or all records when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		render, err := formatterFor(readFormat)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var records []model.HousingRecord
		if len(args) == 1 {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rec, err := st.GetRecord(ctx, id)
			if eris.Is(err, store.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "No record found with ID %d.\n", id)
				return nil
			}
			if err != nil {
				return eris.Wrap(err, "read")
			}
			records = append(records, *rec)
		} else {
			records, err = st.ListRecords(ctx)
			if err != nil {
				return eris.Wrap(err, "read")
			}
		}

		return render(cmd.OutOrStdout(), records)
	},
}

func init() {
	readCmd.Flags().StringVar(&readFormat, "format", "table", fmt.Sprintf("output format (%s)", formatNames()))
	rootCmd.AddCommand(readCmd)
}
