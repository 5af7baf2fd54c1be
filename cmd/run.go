package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/recipe"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

var (
	runManifest string
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run <recipe.yaml>",
	Short: "Run a YAML recipe of cleaning steps",
	Long: `Run a recipe: load its inputs, then apply its steps in order. The first
failing step stops the run and is reported by number and op. Relative paths
in the recipe resolve against the recipe's directory.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := recipe.Load(args[0])
		if err != nil {
			return err
		}
		if runDryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Recipe %s is valid: %d inputs, %d steps\n", args[0], len(r.Inputs), len(r.Steps))
			return nil
		}
		opt := recipe.Options{
			Defaults: configSettings(),
			Expr:     exprOptions(),
			Suffixes: joinSuffixes(),
			Stdout:   cmd.OutOrStdout(),
		}
		if cfg != nil {
			opt.NullString = cfg.NullString
			opt.SampleRows = cfg.SampleRows
		}
		m, runErr := recipe.NewRunner(r, opt).Run(cmd.Context())
		if runManifest != "" {
			if err := m.Save(runManifest); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to write manifest: %v\n", err)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote manifest to %s\n", runManifest)
			}
		}
		if runErr != nil {
			return runErr
		}
		for _, out := range m.Outputs {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", out)
		}
		return nil
	},
}

var (
	initInput string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init <recipe.yaml>",
	Short: "Write a starter recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		// Refuse to overwrite an existing recipe.
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("recipe already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat recipe: %w", err)
		}
		if err := utils.SafeWriteFile(path, recipe.Starter(initInput)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Recipe initialized: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd, initCmd)
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "write a JSON run manifest to this path")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "validate the recipe without reading data")
	initCmd.Flags().StringVarP(&initInput, "input", "i", "data.csv", "input file the starter recipe reads")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing file")
}
