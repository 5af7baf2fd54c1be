// Package tableio reads delimited text and spreadsheets into tables and
// writes tables back out as delimited text or SQLite.
package tableio

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Reader variants.
const (
	ReaderTidy        = "tidy"
	ReaderCategorical = "categorical"
)

// DefaultNullTokens are the tokens the tidy reader maps to null.
var DefaultNullTokens = []string{"", "NA"}

// ReadOptions controls CSV ingestion.
type ReadOptions struct {
	// Delimiter for CSV. If 0, chosen from the file extension (.tsv = tab, otherwise comma).
	Delimiter rune
	// NullTokens are cell values read as null (compared after trimming when Trim is set).
	NullTokens []string
	// Categorical turns every non-numeric column into a category column
	// instead of a string column.
	Categorical bool
	// Types overrides inference for the named columns.
	Types map[string]table.Type
	// Trim strips surrounding whitespace from every cell.
	Trim bool
	// Numeric parsing locale. DecimalSeparator 0 means '.'; ThousandsSeparator
	// 0 means none.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// Sheet selects an XLSX worksheet by name; SheetIndex (1-based) is used
	// when Sheet is empty.
	Sheet      string
	SheetIndex int
}

// TidyOptions returns the null-aware reader: text stays text and "" / "NA"
// are null.
func TidyOptions() ReadOptions {
	return ReadOptions{NullTokens: append([]string(nil), DefaultNullTokens...), Trim: true}
}

// CategoricalOptions returns the category-inferring reader. No token is
// null unless configured.
func CategoricalOptions() ReadOptions {
	return ReadOptions{Categorical: true, Trim: true}
}

// OptionsFor returns the preset for a reader name.
func OptionsFor(reader string) (ReadOptions, error) {
	switch strings.ToLower(strings.TrimSpace(reader)) {
	case "", ReaderTidy:
		return TidyOptions(), nil
	case ReaderCategorical, "category", "factor":
		return CategoricalOptions(), nil
	}
	return ReadOptions{}, fmt.Errorf("unknown reader %q (use tidy|categorical)", reader)
}

// ParseTypes reads "column=type" pairs into a type override map.
func ParseTypes(specs []string) (map[string]table.Type, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[string]table.Type, len(specs))
	for _, s := range specs {
		i := strings.LastIndex(s, "=")
		if i < 0 {
			return nil, fmt.Errorf("invalid type override %q (use column=type)", s)
		}
		typ, err := table.ParseType(s[i+1:])
		if err != nil {
			return nil, err
		}
		out[s[:i]] = typ
	}
	return out, nil
}

// ParseSeparator reads a separator option: "" means unset, "tab" and "space"
// name whitespace, otherwise a single character.
func ParseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	return r[0], nil
}

// Settings is the textual form of ReadOptions shared by command flags,
// configuration and recipe inputs.
type Settings struct {
	Reader string `yaml:"reader"`
	// NullTokens replaces the reader's null tokens when non-nil.
	NullTokens         []string `yaml:"na"`
	Delimiter          string   `yaml:"delimiter"`
	Types              []string `yaml:"types"`
	Sheet              string   `yaml:"sheet"`
	SheetIndex         int      `yaml:"sheet_index"`
	DecimalSeparator   string   `yaml:"decimal_separator"`
	ThousandsSeparator string   `yaml:"thousands_separator"`
}

// Options resolves s into ReadOptions.
func (s Settings) Options() (ReadOptions, error) {
	opt, err := OptionsFor(s.Reader)
	if err != nil {
		return ReadOptions{}, err
	}
	if s.NullTokens != nil {
		opt.NullTokens = append([]string(nil), s.NullTokens...)
	}
	if opt.Delimiter, err = ParseSeparator(s.Delimiter); err != nil {
		return ReadOptions{}, fmt.Errorf("delimiter: %w", err)
	}
	if opt.DecimalSeparator, err = ParseSeparator(s.DecimalSeparator); err != nil {
		return ReadOptions{}, fmt.Errorf("decimal separator: %w", err)
	}
	if opt.ThousandsSeparator, err = ParseSeparator(s.ThousandsSeparator); err != nil {
		return ReadOptions{}, fmt.Errorf("thousands separator: %w", err)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return ReadOptions{}, fmt.Errorf("decimal and thousands separators are both %q", string(opt.DecimalSeparator))
	}
	if opt.Types, err = ParseTypes(s.Types); err != nil {
		return ReadOptions{}, err
	}
	opt.Sheet = s.Sheet
	opt.SheetIndex = s.SheetIndex
	return opt, nil
}

// Merge fills the unset fields of s from base.
func (s Settings) Merge(base Settings) Settings {
	if s.Reader == "" {
		s.Reader = base.Reader
	}
	if s.NullTokens == nil {
		s.NullTokens = base.NullTokens
	}
	if s.Delimiter == "" {
		s.Delimiter = base.Delimiter
	}
	if s.ThousandsSeparator == "" {
		s.ThousandsSeparator = base.ThousandsSeparator
	}
	// An inherited decimal separator never overrides an explicit thousands
	// separator of the same character.
	if s.DecimalSeparator == "" && s.ThousandsSeparator != base.DecimalSeparator {
		s.DecimalSeparator = base.DecimalSeparator
	}
	if len(s.Types) == 0 {
		s.Types = base.Types
	}
	return s
}
