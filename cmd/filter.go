package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/expr"
)

var (
	filterIn    inputFlags
	filterOut   outputFlags
	filterWhere string

	mutateIn     inputFlags
	mutateOut    outputFlags
	mutateColumn string
	mutateExpr   string
)

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Keep rows where an expression is true",
	Long: `Keep rows where --where evaluates to True. Expressions use Starlark
syntax. Columns whose names are identifiers are variables; any column can be
read with col("name"), including col("") for an empty name. is_null(x) tests
for missing values; rows where the expression yields None are dropped.`,
	Example: `  tidyloom filter scores.csv --where 'score > 10 and team == "red"'
  tidyloom filter raw.csv --where 'col("") != "total"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := filterIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := expr.Filter(t, filterWhere, exprOptions())
		if err != nil {
			return err
		}
		return filterOut.write(cmd, out)
	},
}

var mutateCmd = &cobra.Command{
	Use:   "mutate <file>",
	Short: "Add or replace a column computed from an expression",
	Example: `  tidyloom mutate scores.csv --column ratio --expr 'score / minutes'
  tidyloom mutate scores.csv --column label --expr '"high" if score > 10 else "low"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := mutateIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := expr.Mutate(t, mutateColumn, mutateExpr, exprOptions())
		if err != nil {
			return err
		}
		return mutateOut.write(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(filterCmd, mutateCmd)

	filterIn.register(filterCmd)
	filterOut.register(filterCmd)
	filterCmd.Flags().StringVarP(&filterWhere, "where", "w", "", "predicate expression")
	_ = filterCmd.MarkFlagRequired("where")

	mutateIn.register(mutateCmd)
	mutateOut.register(mutateCmd)
	mutateCmd.Flags().StringVarP(&mutateColumn, "column", "c", "", "name of the new or replaced column")
	mutateCmd.Flags().StringVarP(&mutateExpr, "expr", "e", "", "expression evaluated per row")
	_ = mutateCmd.MarkFlagRequired("column")
	_ = mutateCmd.MarkFlagRequired("expr")
}
