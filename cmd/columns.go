package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

var (
	renameIn   inputFlags
	renameOut  outputFlags
	renameFrom string
	renameTo   string

	cleanNamesIn  inputFlags
	cleanNamesOut outputFlags

	selectIn   inputFlags
	selectOut  outputFlags
	selectCols []string

	dropIn   inputFlags
	dropOut  outputFlags
	dropCols []string

	arrangeIn  inputFlags
	arrangeOut outputFlags
	arrangeBy  []string
)

var renameCmd = &cobra.Command{
	Use:   "rename <file>",
	Short: "Rename one column; --from \"\" renames an empty column name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("from") {
			return fmt.Errorf("--from is required (use --from \"\" for an empty column name)")
		}
		t, err := renameIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := t.Rename(renameFrom, renameTo)
		if err != nil {
			return err
		}
		return renameOut.write(cmd, out)
	},
}

var cleanNamesCmd = &cobra.Command{
	Use:   "clean-names <file>",
	Short: "Rewrite every column name as a snake_case identifier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := cleanNamesIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		return cleanNamesOut.write(cmd, table.CleanNames(t))
	},
}

var selectCmd = &cobra.Command{
	Use:   "select <file>",
	Short: "Keep the named columns, in the given order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := selectIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := t.Select(selectCols...)
		if err != nil {
			return err
		}
		return selectOut.write(cmd, out)
	},
}

var dropCmd = &cobra.Command{
	Use:   "drop <file>",
	Short: "Remove the named columns",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := dropIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := t.Drop(dropCols...)
		if err != nil {
			return err
		}
		return dropOut.write(cmd, out)
	},
}

var arrangeCmd = &cobra.Command{
	Use:   "arrange <file>",
	Short: "Sort rows by columns; prefix a column with '-' for descending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := arrangeIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := t.Arrange(table.ParseOrder(arrangeBy)...)
		if err != nil {
			return err
		}
		return arrangeOut.write(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(renameCmd, cleanNamesCmd, selectCmd, dropCmd, arrangeCmd)

	renameIn.register(renameCmd)
	renameOut.register(renameCmd)
	renameCmd.Flags().StringVar(&renameFrom, "from", "", "current column name (may be empty)")
	renameCmd.Flags().StringVar(&renameTo, "to", "", "new column name")
	_ = renameCmd.MarkFlagRequired("to")

	cleanNamesIn.register(cleanNamesCmd)
	cleanNamesOut.register(cleanNamesCmd)

	selectIn.register(selectCmd)
	selectOut.register(selectCmd)
	selectCmd.Flags().StringArrayVarP(&selectCols, "column", "c", nil, "column to keep (repeatable; may be empty)")
	_ = selectCmd.MarkFlagRequired("column")

	dropIn.register(dropCmd)
	dropOut.register(dropCmd)
	dropCmd.Flags().StringArrayVarP(&dropCols, "column", "c", nil, "column to drop (repeatable; may be empty)")
	_ = dropCmd.MarkFlagRequired("column")

	arrangeIn.register(arrangeCmd)
	arrangeOut.register(arrangeCmd)
	arrangeCmd.Flags().StringSliceVar(&arrangeBy, "by", nil, "sort keys, e.g. --by team,-score")
	_ = arrangeCmd.MarkFlagRequired("by")
}
