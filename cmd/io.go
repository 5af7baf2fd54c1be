package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tidyloom-cli/internal/expr"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
	"github.com/KaramelBytes/tidyloom-cli/internal/tableio"
)

// inputFlags are the read options shared by every table command.
type inputFlags struct {
	reader    string
	na        []string
	delimiter string
	types     []string
	sheet     string
	sheetIdx  int
	decimal   string
	thousands string
	maxRows   int
}

func (f *inputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.reader, "reader", "", "reader: tidy|categorical (default from config)")
	fl.StringSliceVar(&f.na, "na", nil, "tokens read as null, e.g. --na ',NA,N/A' (default: reader preset)")
	fl.StringVar(&f.delimiter, "delimiter", "", "input delimiter: ','|';'|'tab' (default from file extension)")
	fl.StringArrayVar(&f.types, "type", nil, "column type override column=string|number|category (repeatable)")
	fl.StringVar(&f.sheet, "sheet-name", "", "XLSX: sheet name to read")
	fl.IntVar(&f.sheetIdx, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	fl.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	fl.IntVar(&f.maxRows, "max-rows", 0, "maximum data rows to read (0 = unlimited)")
}

// settings combines the flags with the loaded configuration; flags win.
func (f *inputFlags) settings(cmd *cobra.Command) tableio.Settings {
	s := tableio.Settings{
		Reader:             f.reader,
		Delimiter:          f.delimiter,
		Types:              f.types,
		Sheet:              f.sheet,
		SheetIndex:         f.sheetIdx,
		DecimalSeparator:   f.decimal,
		ThousandsSeparator: f.thousands,
	}
	if cmd.Flags().Changed("na") {
		s.NullTokens = f.na
		if s.NullTokens == nil {
			s.NullTokens = []string{}
		}
	}
	return s.Merge(configSettings())
}

func (f *inputFlags) read(cmd *cobra.Command, path string) (*table.Table, error) {
	opt, err := f.settings(cmd).Options()
	if err != nil {
		return nil, err
	}
	opt.MaxRows = f.maxRows
	return tableio.ReadFile(path, opt)
}

// outputFlags choose where a command writes its table.
type outputFlags struct {
	output     string
	nullString string
	delimiter  string
}

func (o *outputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&o.output, "output", "o", "-", "output file (.csv or .tsv); '-' writes to stdout")
	fl.StringVar(&o.nullString, "null-string", "", "text written for null cells (default from config: empty field)")
	fl.StringVar(&o.delimiter, "out-delimiter", "", "output delimiter (default: comma, tab for .tsv)")
}

func (o *outputFlags) write(cmd *cobra.Command, t *table.Table) error {
	delim, err := tableio.ParseSeparator(o.delimiter)
	if err != nil {
		return fmt.Errorf("--out-delimiter: %w", err)
	}
	opt := tableio.WriteOptions{Delimiter: delim, NullString: o.nullString}
	if !cmd.Flags().Changed("null-string") && cfg != nil {
		opt.NullString = cfg.NullString
	}
	if o.output == "" || o.output == "-" {
		return tableio.Write(cmd.OutOrStdout(), t, opt)
	}
	if err := tableio.WriteFile(o.output, t, opt); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %d rows x %d columns to %s\n", t.NRow(), t.NCol(), o.output)
	return nil
}

func configSettings() tableio.Settings {
	if cfg == nil {
		return tableio.Settings{}
	}
	return tableio.Settings{
		Reader:           cfg.Reader,
		NullTokens:       cfg.NullTokens,
		Delimiter:        cfg.Delimiter,
		DecimalSeparator: cfg.DecimalSeparator,
	}
}

func exprOptions() expr.Options {
	if cfg == nil {
		return expr.Options{}
	}
	return expr.Options{MaxSteps: cfg.MaxExprSteps}
}

func joinSuffixes() [2]string {
	if cfg == nil {
		return [2]string{".x", ".y"}
	}
	return cfg.Suffixes()
}
