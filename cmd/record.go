package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/housing-cli/internal/db"
	"github.com/sells-group/housing-cli/internal/model"
)

// -- create_record --

var createRecordCmd = &cobra.Command{
	Use:   "create_record [flags] <MedInc> <HouseAge> <AveRooms> <AveBedrms> <Population> <AveOccup> <Latitude> <Longitude> <MedHouseVal>",
	Short: "Insert a new record",
	Args:  cobra.ExactArgs(len(model.Columns)),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		rec, err := model.ParseRecord(args)
		if err != nil {
			return eris.Wrap(err, "create_record")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ids, err := st.InsertRecords(ctx, []model.HousingRecord{rec})
		if err != nil {
			return eris.Wrap(err, "create_record")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Record created with ID %d.\n", ids[0])
		return nil
	},
}

// -- update_record --

var updateSets []string

var updateRecordCmd = &cobra.Command{
	Use:   "update_record [flags] <id> [MedInc HouseAge AveRooms AveBedrms Population AveOccup Latitude Longitude MedHouseVal]",
	Short: "Update some or all measurements of a record",
	Long: "Updates a record either from nine positional values (a full replacement) or " +
		"from per-column flags such as --medinc=2.5 --latitude=37.1, or --set Column=value. " +
		"Columns that are not given keep their stored value. Flags go before the id so " +
		"negative values are not mistaken for flags.",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 && len(args) != 1+len(model.Columns) {
			return fmt.Errorf("accepts an id, optionally followed by %d values, received %d args", len(model.Columns), len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		patch, err := buildPatch(cmd, args[1:])
		if err != nil {
			return eris.Wrap(err, "update_record")
		}
		if patch.Empty() {
			return eris.Wrap(db.ErrNoFields, "update_record")
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ok, err := st.UpdateRecord(ctx, id, patch)
		if err != nil {
			return eris.Wrap(err, "update_record")
		}

		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Record with ID %d updated successfully.\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "No record found with ID %d.\n", id)
		}
		return nil
	},
}

// buildPatch merges positional values, per-column flags and --set
// assignments. Positional values cannot be combined with the others.
func buildPatch(cmd *cobra.Command, values []string) (model.Patch, error) {
	var patch model.Patch

	for _, col := range model.Columns {
		name := columnFlag(col)
		if !cmd.Flags().Changed(name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(name)
		if err != nil {
			return patch, err
		}
		if err := patch.Set(col, v); err != nil {
			return patch, err
		}
	}
	for _, kv := range updateSets {
		if err := patch.ParseAssignment(kv); err != nil {
			return patch, err
		}
	}

	if len(values) > 0 {
		if !patch.Empty() {
			return patch, eris.New("give either nine positional values or column flags, not both")
		}
		rec, err := model.ParseRecord(values)
		if err != nil {
			return patch, err
		}
		patch = model.FullPatch(rec)
	}
	return patch, nil
}

// -- delete_record --

var deleteRecordCmd = &cobra.Command{
	Use:   "delete_record <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		ok, err := st.DeleteRecord(ctx, id)
		if err != nil {
			return eris.Wrap(err, "delete_record")
		}

		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Record with ID %d deleted successfully.\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "No record found with ID %d.\n", id)
		}
		return nil
	},
}

func columnFlag(col string) string {
	return strings.ToLower(col)
}

func init() {
	for _, col := range model.Columns {
		updateRecordCmd.Flags().Float64(columnFlag(col), 0, "new "+col+" value")
	}
	updateRecordCmd.Flags().StringArrayVar(&updateSets, "set", nil, "column assignment such as Latitude=37.5 (repeatable)")

	// Positional values such as -122.42 are data, not flags.
	createRecordCmd.Flags().SetInterspersed(false)
	updateRecordCmd.Flags().SetInterspersed(false)

	rootCmd.AddCommand(createRecordCmd)
	rootCmd.AddCommand(updateRecordCmd)
	rootCmd.AddCommand(deleteRecordCmd)
}
