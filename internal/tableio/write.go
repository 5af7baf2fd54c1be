package tableio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// WriteOptions controls CSV export.
type WriteOptions struct {
	// Delimiter defaults to comma (tab for .tsv paths in WriteFile).
	Delimiter rune
	// NullString is written for null cells (default: empty field).
	NullString string
}

// Write serializes t as a header row followed by data rows.
func Write(w io.Writer, t *table.Table, opt WriteOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	if t.NCol() == 0 {
		return nil
	}
	for _, rec := range t.Records(opt.NullString) {
		if len(rec) == 1 && rec[0] == "" {
			// A lone empty field would be a blank line, which readers skip.
			cw.Flush()
			if err := cw.Error(); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteFile writes t to path atomically.
func WriteFile(path string, t *table.Table, opt WriteOptions) error {
	if opt.Delimiter == 0 && strings.HasSuffix(strings.ToLower(path), ".tsv") {
		opt.Delimiter = '\t'
	}
	var buf bytes.Buffer
	if err := Write(&buf, t, opt); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
