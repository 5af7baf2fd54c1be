// Package recipe runs a linear cleaning script: named input tables followed
// by steps that transform, join, and write them.
package recipe

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/tidyloom-cli/internal/tableio"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// Recipe is the parsed YAML document.
type Recipe struct {
	Name   string  `yaml:"name"`
	Inputs []Input `yaml:"inputs"`
	Steps  []Step  `yaml:"steps"`

	// Not serialized: directory relative paths resolve against.
	baseDir string
}

// Input loads one named table.
type Input struct {
	Name             string `yaml:"name"`
	Path             string `yaml:"path"`
	tableio.Settings `yaml:",inline"`
}

// Step is one operation. Only the fields relevant to Op are read.
type Step struct {
	Op string `yaml:"op"`
	// Table is the working table; empty means the table the previous step
	// produced.
	Table string `yaml:"table"`
	// Into names the result; empty overwrites Table.
	Into string `yaml:"into"`

	// rename. From is a pointer so an empty column name can be renamed.
	From *string `yaml:"from"`
	To   string  `yaml:"to"`

	// select, drop, clean
	Columns []string `yaml:"columns"`

	// filter
	Where string `yaml:"where"`

	// mutate, recode, convert
	Column string `yaml:"column"`
	Expr   string `yaml:"expr"`

	// recode
	Breaks    []float64 `yaml:"breaks"`
	Labels    []string  `yaml:"labels"`
	Right     bool      `yaml:"right"`
	Threshold *float64  `yaml:"threshold"`

	// convert
	Type   string   `yaml:"type"`
	Mode   string   `yaml:"mode"`
	Coerce bool     `yaml:"coerce"`
	Levels []string `yaml:"levels"`

	// clean
	Ops         []string `yaml:"ops"`
	Pattern     string   `yaml:"pattern"`
	Replacement string   `yaml:"replacement"`

	// melt, pivot
	ID         []string `yaml:"id"`
	Values     []string `yaml:"values"`
	NamesTo    string   `yaml:"names_to"`
	ValuesTo   string   `yaml:"values_to"`
	DropNA     bool     `yaml:"drop_na"`
	NamesFrom  string   `yaml:"names_from"`
	ValuesFrom string   `yaml:"values_from"`

	// join
	With     string   `yaml:"with"`
	How      string   `yaml:"how"`
	By       []string `yaml:"by"`
	Suffixes []string `yaml:"suffixes"`

	// write, export_sqlite, describe
	Path       string   `yaml:"path"`
	Delimiter  string   `yaml:"delimiter"`
	NullString *string  `yaml:"null_string"`
	SQLTable   string   `yaml:"sql_table"`
	GroupBy    []string `yaml:"group_by"`
}

// Ops lists the supported step operations.
var Ops = []string{
	"rename", "clean_names", "select", "drop", "filter", "mutate", "recode",
	"convert", "clean", "melt", "pivot", "join", "arrange", "write",
	"export_sqlite", "describe",
}

// Load reads and validates a recipe file.
func Load(path string) (*Recipe, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("recipe not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parse recipe %s: %w", path, err)
	}
	r.baseDir = filepath.Dir(path)
	return r, nil
}

// Parse decodes and validates a recipe. Unknown fields are rejected.
func Parse(data []byte) (*Recipe, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var r Recipe
	if err := dec.Decode(&r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// BaseDir returns the directory relative paths resolve against.
func (r *Recipe) BaseDir() string { return r.baseDir }

// Validate checks the structure of the recipe without reading any data.
func (r *Recipe) Validate() error {
	if len(r.Inputs) == 0 {
		return errors.New("recipe has no inputs")
	}
	seen := map[string]bool{}
	for i, in := range r.Inputs {
		if in.Path == "" {
			return fmt.Errorf("input %d: path is required", i+1)
		}
		name := in.TableName()
		if seen[name] {
			return fmt.Errorf("input %d: duplicate table name %q", i+1, name)
		}
		seen[name] = true
	}
	for i, s := range r.Steps {
		if !contains(Ops, s.Op) {
			return &StepError{Index: i + 1, Op: s.Op, Err: fmt.Errorf("unknown op (use %s)", strings.Join(Ops, "|"))}
		}
	}
	return nil
}

// TableName returns the name of an input table: its name, or the file base
// name without extension.
func (in Input) TableName() string {
	if in.Name != "" {
		return in.Name
	}
	return utils.TableName(in.Path)
}

// StepError reports the step that stopped a run.
type StepError struct {
	Index int
	Op    string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
