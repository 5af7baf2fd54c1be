package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/profile"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

var (
	descIn         inputFlags
	descOutputPath string
	descOutputDir  string
	descSampleRows int
	descGroupBy    []string
	descCorr       bool
	descTopLevels  int
	descQuiet      bool
)

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Profile CSV/TSV/XLSX files as a Markdown summary",
	Long: `Profile one or more tables: schema, missing values, numeric statistics,
category levels, optional group-by summaries, sample rows, and notes on
columns that need attention (empty names, numeric labels read as categories).
Arguments may be glob patterns.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt := profile.Options{SampleRows: descSampleRows, GroupBy: descGroupBy, Correlations: descCorr, TopLevels: descTopLevels, NullString: "NA"}
		if !cmd.Flags().Changed("sample-rows") && cfg != nil && cfg.SampleRows != 0 {
			opt.SampleRows = cfg.SampleRows
		}
		if descOutputDir != "" {
			if err := utils.EnsureDir(descOutputDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}

		var combined []byte
		total := len(files)
		for i, path := range files {
			if total > 1 && !descQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			t, err := descIn.read(cmd, path)
			if err != nil {
				return err
			}
			rep, err := profile.Build(t, opt)
			if err != nil {
				return err
			}
			md := rep.Markdown()

			if descOutputDir != "" {
				outFile := summaryPath(descOutputDir, path)
				if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				if !descQuiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote summary to %s\n", outFile)
				}
				continue
			}
			if len(combined) > 0 {
				combined = append(combined, '\n')
			}
			combined = append(combined, md...)
		}

		switch {
		case descOutputDir != "":
		case descOutputPath != "" && descOutputPath != "-":
			if err := utils.SafeWriteFile(descOutputPath, combined); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			if !descQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote summary to %s\n", descOutputPath)
			}
		default:
			_, err := cmd.OutOrStdout().Write(combined)
			return err
		}
		return nil
	},
}

// expandInputs resolves glob patterns to a sorted, de-duplicated file list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

// summaryPath picks <dir>/<name>.summary.md, adding __2, __3... when a
// summary with that name already exists.
func summaryPath(dir, input string) string {
	base := utils.TableName(input)
	outFile := filepath.Join(dir, base+".summary.md")
	if _, err := os.Stat(outFile); err != nil {
		return outFile
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d.summary.md", base, idx))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(describeCmd)
	descIn.register(describeCmd)
	describeCmd.Flags().StringVarP(&descOutputPath, "output", "o", "", "write the combined summary to a file instead of stdout")
	describeCmd.Flags().StringVar(&descOutputDir, "output-dir", "", "write one <name>.summary.md per input into this directory")
	describeCmd.Flags().IntVar(&descSampleRows, "sample-rows", 5, "number of sample rows to include (negative disables)")
	describeCmd.Flags().StringSliceVar(&descGroupBy, "group-by", nil, "comma-separated column names to group by (repeatable)")
	describeCmd.Flags().BoolVar(&descCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	describeCmd.Flags().IntVar(&descTopLevels, "top-levels", 5, "category levels listed per column")
	describeCmd.Flags().BoolVarP(&descQuiet, "quiet", "q", false, "suppress progress lines")
}
