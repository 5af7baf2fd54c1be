package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/tableio"
)

var (
	exportIn    inputFlags
	exportDB    string
	exportTable string
)

var exportSQLiteCmd = &cobra.Command{
	Use:   "export-sqlite <file>",
	Short: "Load a table into a SQLite database, replacing any table of that name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := exportIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		name := exportTable
		if name == "" {
			name = t.Name()
		}
		if err := tableio.ExportSQLite(cmd.Context(), exportDB, name, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d rows to %s (table %s)\n", t.NRow(), exportDB, name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportSQLiteCmd)
	exportIn.register(exportSQLiteCmd)
	exportSQLiteCmd.Flags().StringVar(&exportDB, "db", "", "SQLite database file")
	exportSQLiteCmd.Flags().StringVar(&exportTable, "table", "", "table name (default: input file name)")
	_ = exportSQLiteCmd.MarkFlagRequired("db")
}
