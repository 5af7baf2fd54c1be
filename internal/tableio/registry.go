package tableio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/tidyloom-cli/internal/table"
)

// Loader reads one file format into a table.
type Loader interface {
	CanLoad(filename string) bool
	Load(path string, opt ReadOptions) (*table.Table, error)
}

var registry []Loader

// Register adds a loader to the registry. Later registrations do not
// override earlier ones for the same extension.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates no loader accepts the file.
var ErrUnsupported = errors.New("unsupported table format")

// ReadFile picks a loader by file name and reads path. Files without a known
// extension are read as CSV.
func ReadFile(path string, opt ReadOptions) (*table.Table, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xls" || ext == ".ods" {
		return nil, fmt.Errorf("%s: %w (save it as .xlsx or .csv)", filepath.Base(path), ErrUnsupported)
	}
	return ReadCSVFile(path, opt)
}

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".tsv", ".tab", ".txt":
		return true
	}
	return false
}

func (csvLoader) Load(path string, opt ReadOptions) (*table.Table, error) {
	return ReadCSVFile(path, opt)
}

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xlsx")
}

func (xlsxLoader) Load(path string, opt ReadOptions) (*table.Table, error) {
	return ReadXLSXFile(path, opt)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
