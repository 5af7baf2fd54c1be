package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

var (
	recodeIn        inputFlags
	recodeOut       outputFlags
	recodeColumn    string
	recodeInto      string
	recodeBreaks    []float64
	recodeLabels    []string
	recodeRight     bool
	recodeThreshold float64

	convertIn     inputFlags
	convertOut    outputFlags
	convertColumn string
	convertTo     string
	convertMode   string
	convertCoerce bool
	convertLevels []string

	cleanIn      inputFlags
	cleanOut     outputFlags
	cleanColumns []string
	cleanOps     []string
	cleanPattern string
	cleanRepl    string
)

var recodeCmd = &cobra.Command{
	Use:   "recode <file>",
	Short: "Bin a numeric column into category labels",
	Long: `Bin a numeric column: with breaks b1 < ... < bk and k+1 labels, a value
gets the label of its interval. Intervals are left-closed unless --right is
set. --threshold is shorthand for a single break with two labels.`,
	Example: `  tidyloom recode scores.csv --column score --into band --breaks 10,20 --labels low,mid,high
  tidyloom recode scores.csv --column score --into pass --threshold 50 --labels fail,pass`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := recodeIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		var out *table.Table
		if cmd.Flags().Changed("threshold") {
			if len(recodeLabels) != 2 {
				return fmt.Errorf("--threshold needs exactly two --labels, got %d", len(recodeLabels))
			}
			out, err = table.Threshold(t, recodeColumn, recodeInto, recodeThreshold, recodeLabels[0], recodeLabels[1])
		} else {
			out, err = table.Cut(t, table.CutSpec{Column: recodeColumn, Into: recodeInto, Breaks: recodeBreaks, Labels: recodeLabels, Right: recodeRight})
		}
		if err != nil {
			return err
		}
		return recodeOut.write(cmd, out)
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Change a column's type",
	Long: `Change a column's type. Converting a category column to number uses its
labels by default (--mode labels); --mode codes yields the 1-based level
positions instead. Unparsable values fail unless --coerce turns them into
nulls.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := table.ParseType(convertTo)
		if err != nil {
			return err
		}
		mode, err := table.ParseNumberMode(convertMode)
		if err != nil {
			return err
		}
		t, err := convertIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := table.Convert(t, convertColumn, typ, mode, convertCoerce, convertLevels)
		if err != nil {
			return err
		}
		return convertOut.write(cmd, out)
	},
}

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Tidy text values: trim, squish, case, accents, regex replace",
	Example: `  tidyloom clean survey.csv --ops trim,squish,lower
  tidyloom clean survey.csv -c city --ops strip_accents,title --pattern '\s+\(.*\)$' --replacement ''`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := table.ParseStringOps(cleanOps, cleanPattern, cleanRepl)
		if err != nil {
			return err
		}
		t, err := cleanIn.read(cmd, args[0])
		if err != nil {
			return err
		}
		out, err := table.CleanStrings(t, cleanColumns, ops...)
		if err != nil {
			return err
		}
		return cleanOut.write(cmd, out)
	},
}

func init() {
	rootCmd.AddCommand(recodeCmd, convertCmd, cleanCmd)

	recodeIn.register(recodeCmd)
	recodeOut.register(recodeCmd)
	recodeCmd.Flags().StringVarP(&recodeColumn, "column", "c", "", "numeric column to bin")
	recodeCmd.Flags().StringVar(&recodeInto, "into", "", "result column (default: replace --column)")
	recodeCmd.Flags().Float64SliceVar(&recodeBreaks, "breaks", nil, "strictly increasing break points")
	recodeCmd.Flags().StringSliceVar(&recodeLabels, "labels", nil, "one label per interval (breaks + 1)")
	recodeCmd.Flags().BoolVar(&recodeRight, "right", false, "right-closed intervals")
	recodeCmd.Flags().Float64Var(&recodeThreshold, "threshold", 0, "single cut point (needs two labels)")
	_ = recodeCmd.MarkFlagRequired("column")
	_ = recodeCmd.MarkFlagRequired("labels")

	convertIn.register(convertCmd)
	convertOut.register(convertCmd)
	convertCmd.Flags().StringVarP(&convertColumn, "column", "c", "", "column to convert")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target type: string|number|category")
	convertCmd.Flags().StringVar(&convertMode, "mode", "labels", "category to number: labels|codes")
	convertCmd.Flags().BoolVar(&convertCoerce, "coerce", false, "turn unparsable values into nulls instead of failing")
	convertCmd.Flags().StringSliceVar(&convertLevels, "levels", nil, "explicit category levels, in order")
	_ = convertCmd.MarkFlagRequired("column")
	_ = convertCmd.MarkFlagRequired("to")

	cleanIn.register(cleanCmd)
	cleanOut.register(cleanCmd)
	cleanCmd.Flags().StringArrayVarP(&cleanColumns, "column", "c", nil, "column to clean (repeatable; default: every text column)")
	cleanCmd.Flags().StringSliceVar(&cleanOps, "ops", nil, "operations in order: trim,squish,lower,upper,title,strip_accents,replace")
	cleanCmd.Flags().StringVar(&cleanPattern, "pattern", "", "regular expression for replace")
	cleanCmd.Flags().StringVar(&cleanRepl, "replacement", "", "replacement for --pattern ($1 refers to groups)")
}
