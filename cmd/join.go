package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

var (
	joinIn         inputFlags
	joinOut        outputFlags
	joinHow        string
	joinBy         []string
	joinSuffixFlag []string
)

var joinCmd = &cobra.Command{
	Use:   "join <left> <right>",
	Short: "Join two tables on key columns that may be named differently",
	Long: `Join two tables. Keys are given as left=right pairs (or a bare name when
both sides share it); without --by, every column name the tables share is a
key, and a join with no shared names fails instead of producing a cross
product. Nulls never match.`,
	Example: `  tidyloom join orders.csv customers.csv --how left --by customer_id=id
  tidyloom join a.csv b.csv --how full --by year --by "country=Country Name"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := table.ParseJoinKind(joinHow)
		if err != nil {
			return err
		}
		keys, err := table.ParseKeys(joinBy)
		if err != nil {
			return err
		}
		suffixes := joinSuffixes()
		if cmd.Flags().Changed("suffixes") {
			if len(joinSuffixFlag) != 2 {
				return fmt.Errorf("--suffixes needs two values, got %d", len(joinSuffixFlag))
			}
			suffixes = [2]string{joinSuffixFlag[0], joinSuffixFlag[1]}
		}
		left, err := joinIn.read(cmd, args[0])
		if err != nil {
			return fmt.Errorf("read left: %w", err)
		}
		right, err := joinIn.read(cmd, args[1])
		if err != nil {
			return fmt.Errorf("read right: %w", err)
		}
		out, err := table.Join(left, right, table.JoinSpec{Kind: kind, Keys: keys, Suffixes: suffixes})
		if err != nil {
			return err
		}
		return joinOut.write(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
	joinIn.register(joinCmd)
	joinOut.register(joinCmd)
	joinCmd.Flags().StringVar(&joinHow, "how", "inner", "join policy: inner|left|right|full")
	joinCmd.Flags().StringArrayVar(&joinBy, "by", nil, "key pair left=right or a shared name (repeatable)")
	joinCmd.Flags().StringSliceVar(&joinSuffixFlag, "suffixes", nil, "suffixes for clashing non-key columns (default from config: .x,.y)")
}
