package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

var (
	meltIn       inputFlags
	meltOut      outputFlags
	meltID       []string
	meltValues   []string
	meltNamesTo  string
	meltValuesTo string
	meltDropNA   bool

	pivotIn         inputFlags
	pivotOut        outputFlags
	pivotID         []string
	pivotNamesFrom  string
	pivotValuesFrom string
)

var meltCmd = &cobra.Command{
	Use:   "melt <file>",
	Short: "Reshape wide to tall: one row per (row, value column)",
	Example: `  tidyloom melt rounds.csv --id Round --names-to player --values-to score`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := meltIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := table.Melt(t, table.MeltSpec{ID: meltID, Values: meltValues, NamesTo: meltNamesTo, ValuesTo: meltValuesTo, DropNulls: meltDropNA})
		if err != nil {
			return err
		}
		return meltOut.write(cmd, out)
	},
}

var pivotCmd = &cobra.Command{
	Use:     "pivot <file>",
	Short:   "Reshape tall to wide: one column per distinct name",
	Example: `  tidyloom pivot long.csv --id Round --names-from player --values-from score`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := pivotIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := table.Pivot(t, table.PivotSpec{ID: pivotID, NamesFrom: pivotNamesFrom, ValuesFrom: pivotValuesFrom})
		if err != nil {
			return err
		}
		return pivotOut.write(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(meltCmd, pivotCmd)

	meltIn.register(meltCmd)
	meltOut.register(meltCmd)
	meltCmd.Flags().StringArrayVar(&meltID, "id", nil, "identifier column kept on every row (repeatable)")
	meltCmd.Flags().StringArrayVar(&meltValues, "values", nil, "column to fold (repeatable; default: every non-id column)")
	meltCmd.Flags().StringVar(&meltNamesTo, "names-to", "name", "column receiving the original column names")
	meltCmd.Flags().StringVar(&meltValuesTo, "values-to", "value", "column receiving the cell values")
	meltCmd.Flags().BoolVar(&meltDropNA, "drop-na", false, "skip null cells")

	pivotIn.register(pivotCmd)
	pivotOut.register(pivotCmd)
	pivotCmd.Flags().StringArrayVar(&pivotID, "id", nil, "identifier column (repeatable; default: every other column)")
	pivotCmd.Flags().StringVar(&pivotNamesFrom, "names-from", "name", "column whose values become column names")
	pivotCmd.Flags().StringVar(&pivotValuesFrom, "values-from", "value", "column whose values fill the cells")
}
