package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// ReadCSVFile reads a delimited text file. The table is named after the file.
func ReadCSVFile(path string, opt ReadOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	t, err := ReadCSV(f, utils.TableName(path), opt)
	if err != nil {
		var pe *table.ParseError
		if errors.As(err, &pe) && pe.Source == utils.TableName(path) {
			pe.Source = filepath.Base(path)
		}
		return nil, err
	}
	return t, nil
}

// ReadCSV reads delimited text with a header row from r.
func ReadCSV(r io.Reader, name string, opt ReadOptions) (*table.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = opt.Trim
	if opt.Delimiter != 0 {
		cr.Comma = opt.Delimiter
	}
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return table.New(name)
		}
		return nil, &table.ParseError{Source: name, Reason: "read header", Err: err}
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	var rows [][]string
	for {
		if opt.MaxRows > 0 && len(rows) >= opt.MaxRows {
			break
		}
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &table.ParseError{Source: name, Row: len(rows) + 1, Err: err}
		}
		rows = append(rows, rec)
	}
	return Build(name, header, rows, opt)
}

// Build turns a header and raw rows into a typed table following opt.
func Build(name string, header []string, rows [][]string, opt ReadOptions) (*table.Table, error) {
	names := dedupeHeader(name, header, opt.Trim)
	ncol := len(names)
	if ncol == 0 {
		return table.New(name)
	}
	for i, rec := range rows {
		if len(rec) > ncol {
			return nil, &table.ParseError{
				Source: name,
				Row:    i + 1,
				Reason: fmt.Sprintf("row has %d fields, header has %d", len(rec), ncol),
			}
		}
	}
	nulls := make(map[string]bool, len(opt.NullTokens))
	for _, tok := range opt.NullTokens {
		if opt.Trim {
			tok = strings.TrimSpace(tok)
		}
		nulls[tok] = true
	}

	cols := make([]*table.Column, ncol)
	for j, colName := range names {
		cells := make([]string, len(rows))
		isNull := make([]bool, len(rows))
		for i, rec := range rows {
			if j >= len(rec) {
				isNull[i] = true
				continue
			}
			v := rec[j]
			if opt.Trim {
				v = strings.TrimSpace(v)
			}
			cells[i] = v
			isNull[i] = nulls[v]
		}
		typ, explicit := opt.Types[colName]
		col, err := buildColumn(name, colName, cells, isNull, typ, explicit, opt)
		if err != nil {
			return nil, err
		}
		cols[j] = col
	}
	for col := range opt.Types {
		if !contains(names, col) {
			slog.Warn("type override for unknown column", slog.String("table", name), slog.String("column", col))
		}
	}
	return table.New(name, cols...)
}

func buildColumn(source, name string, cells []string, isNull []bool, typ table.Type, explicit bool, opt ReadOptions) (*table.Column, error) {
	vals := make([]table.Value, len(cells))
	if !explicit {
		typ = table.Number
		nonNull := 0
		for i, s := range cells {
			if isNull[i] {
				continue
			}
			nonNull++
			if _, ok := parseNumber(s, opt); !ok {
				typ = table.String
				break
			}
		}
		if nonNull == 0 {
			typ = table.String
		}
		if typ == table.String && opt.Categorical && nonNull > 0 {
			typ = table.Category
		}
	}
	for i, s := range cells {
		if isNull[i] {
			continue
		}
		if typ != table.Number {
			vals[i] = table.Str(s)
			continue
		}
		f, ok := parseNumber(s, opt)
		if !ok {
			return nil, &table.ParseError{Source: source, Column: name, Row: i + 1, Value: s, Reason: "not a number"}
		}
		vals[i] = table.Num(f)
	}
	return table.NewColumn(name, typ, vals)
}

// dedupeHeader renames repeated header names to name...N, N being the
// 1-based column position.
func dedupeHeader(source string, header []string, trim bool) []string {
	names := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if trim {
			h = strings.TrimSpace(h)
		}
		if seen[h] {
			renamed := h + "..." + strconv.Itoa(i+1)
			for seen[renamed] {
				renamed += "_"
			}
			slog.Warn("duplicate column name renamed",
				slog.String("table", source),
				slog.String("column", h),
				slog.String("renamed", renamed))
			h = renamed
		}
		seen[h] = true
		names[i] = h
	}
	return names
}

func sniffDelimiter(path string) rune {
	name := strings.ToLower(path)
	if strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab") {
		return '\t'
	}
	return ','
}

// parseNumber reads s using the configured separators. NaN and Inf are not
// numbers.
func parseNumber(s string, opt ReadOptions) (float64, bool) {
	raw := strings.TrimSpace(s)
	dec := opt.DecimalSeparator
	if dec == 0 {
		dec = '.'
		if opt.ThousandsSeparator == '.' {
			dec = ','
		}
	}
	if thou := opt.ThousandsSeparator; thou != 0 && thou != dec {
		if thou == ' ' {
			raw = strings.ReplaceAll(raw, "\u00A0", "")
		}
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	return table.ParseNumber(raw)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
