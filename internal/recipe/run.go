package recipe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/KaramelBytes/tidyloom-cli/internal/expr"
	"github.com/KaramelBytes/tidyloom-cli/internal/profile"
	"github.com/KaramelBytes/tidyloom-cli/internal/table"
	"github.com/KaramelBytes/tidyloom-cli/internal/tableio"
	"github.com/KaramelBytes/tidyloom-cli/internal/utils"
)

// Options carries the settings a recipe does not spell out.
type Options struct {
	// Defaults fill unset input read settings.
	Defaults   tableio.Settings
	Expr       expr.Options
	Suffixes   [2]string
	NullString string
	SampleRows int
	// Stdout receives write and describe output whose path is "-" or empty.
	Stdout io.Writer
}

// Runner executes a recipe step by step.
type Runner struct {
	recipe   *Recipe
	opt      Options
	tables   map[string]*table.Table
	current  string
	manifest *Manifest
}

// NewRunner prepares r for execution.
func NewRunner(r *Recipe, opt Options) *Runner {
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Suffixes == [2]string{} {
		opt.Suffixes = [2]string{".x", ".y"}
	}
	return &Runner{recipe: r, opt: opt, tables: map[string]*table.Table{}, manifest: newManifest(r.Name)}
}

// Table returns a table by name after (or during) a run.
func (rn *Runner) Table(name string) (*table.Table, bool) {
	t, ok := rn.tables[name]
	return t, ok
}

// Run loads the inputs and applies every step in order. The first failure
// stops the run; the manifest is returned either way.
func (rn *Runner) Run(ctx context.Context) (*Manifest, error) {
	m := rn.manifest
	err := rn.run(ctx)
	m.FinishedAt = time.Now()
	if err != nil {
		m.Error = err.Error()
		return m, err
	}
	slog.Info("recipe completed", slog.String("run_id", m.RunID), slog.String("recipe", m.Recipe), slog.Int("steps", len(m.Steps)), slog.Int("outputs", len(m.Outputs)))
	return m, nil
}

func (rn *Runner) run(ctx context.Context) error {
	for _, in := range rn.recipe.Inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		opt, err := in.Settings.Merge(rn.opt.Defaults).Options()
		if err != nil {
			return fmt.Errorf("input %s: %w", in.TableName(), err)
		}
		path := rn.path(in.Path)
		t, err := tableio.ReadFile(path, opt)
		if err != nil {
			return fmt.Errorf("load input %s: %w", in.TableName(), err)
		}
		name := in.TableName()
		rn.tables[name] = t.WithName(name)
		if rn.current == "" {
			rn.current = name
		}
		rn.manifest.Inputs = append(rn.manifest.Inputs, TableRecord{Name: name, Path: path, Rows: t.NRow(), Cols: t.NCol()})
	}
	for i, s := range rn.recipe.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		name, t, err := rn.step(ctx, s)
		if err != nil {
			return &StepError{Index: i + 1, Op: s.Op, Err: err}
		}
		rn.manifest.Steps = append(rn.manifest.Steps, StepRecord{
			Index: i + 1, Op: s.Op, Table: name, Rows: t.NRow(), Cols: t.NCol(),
			DurationMS: time.Since(start).Milliseconds(),
		})
		slog.Debug("step completed", slog.Int("step", i+1), slog.String("op", s.Op), slog.String("table", name), slog.Int("rows", t.NRow()))
	}
	return nil
}

// step applies s and stores its result, returning the result's name.
func (rn *Runner) step(ctx context.Context, s Step) (string, *table.Table, error) {
	src := s.Table
	if src == "" {
		src = rn.current
	}
	t, ok := rn.tables[src]
	if !ok {
		return "", nil, fmt.Errorf("unknown table %q", src)
	}
	out, err := rn.apply(ctx, s, t)
	if err != nil {
		return "", nil, err
	}
	dst := s.Into
	if dst == "" {
		dst = src
	}
	rn.tables[dst] = out.WithName(dst)
	rn.current = dst
	return dst, out, nil
}

func (rn *Runner) apply(ctx context.Context, s Step, t *table.Table) (*table.Table, error) {
	switch s.Op {
	case "rename":
		if s.From == nil {
			return nil, fmt.Errorf("rename needs from (use \"\" for an empty column name)")
		}
		return t.Rename(*s.From, s.To)
	case "clean_names":
		return table.CleanNames(t), nil
	case "select":
		return t.Select(s.Columns...)
	case "drop":
		return t.Drop(s.Columns...)
	case "filter":
		return expr.Filter(t, s.Where, rn.opt.Expr)
	case "mutate":
		return expr.Mutate(t, s.Column, s.Expr, rn.opt.Expr)
	case "recode":
		if s.Threshold != nil {
			if len(s.Labels) != 2 {
				return nil, fmt.Errorf("threshold needs two labels, got %d", len(s.Labels))
			}
			return table.Threshold(t, s.Column, s.Into, *s.Threshold, s.Labels[0], s.Labels[1])
		}
		return table.Cut(t, table.CutSpec{Column: s.Column, Into: s.Into, Breaks: s.Breaks, Labels: s.Labels, Right: s.Right})
	case "convert":
		typ, err := table.ParseType(s.Type)
		if err != nil {
			return nil, err
		}
		mode, err := table.ParseNumberMode(s.Mode)
		if err != nil {
			return nil, err
		}
		return table.Convert(t, s.Column, typ, mode, s.Coerce, s.Levels)
	case "clean":
		ops, err := table.ParseStringOps(s.Ops, s.Pattern, s.Replacement)
		if err != nil {
			return nil, err
		}
		return table.CleanStrings(t, s.Columns, ops...)
	case "melt":
		return table.Melt(t, table.MeltSpec{ID: s.ID, Values: s.Values, NamesTo: s.NamesTo, ValuesTo: s.ValuesTo, DropNulls: s.DropNA})
	case "pivot":
		return table.Pivot(t, table.PivotSpec{ID: s.ID, NamesFrom: s.NamesFrom, ValuesFrom: s.ValuesFrom})
	case "join":
		right, ok := rn.tables[s.With]
		if !ok {
			return nil, fmt.Errorf("join: unknown table %q in with", s.With)
		}
		kind, err := table.ParseJoinKind(s.How)
		if err != nil {
			return nil, err
		}
		keys, err := table.ParseKeys(s.By)
		if err != nil {
			return nil, err
		}
		suffixes := rn.opt.Suffixes
		if len(s.Suffixes) == 2 {
			suffixes = [2]string{s.Suffixes[0], s.Suffixes[1]}
		}
		return table.Join(t, right, table.JoinSpec{Kind: kind, Keys: keys, Suffixes: suffixes})
	case "arrange":
		return t.Arrange(table.ParseOrder(s.By)...)
	case "write":
		return t, rn.write(s, t)
	case "export_sqlite":
		if s.Path == "" {
			return nil, fmt.Errorf("export_sqlite needs a path")
		}
		path := rn.path(s.Path)
		name := s.SQLTable
		if name == "" {
			name = t.Name()
		}
		if err := tableio.ExportSQLite(ctx, path, name, t); err != nil {
			return nil, err
		}
		rn.manifest.Outputs = append(rn.manifest.Outputs, path)
		return t, nil
	case "describe":
		return t, rn.describe(s, t)
	}
	return nil, fmt.Errorf("unknown op")
}

func (rn *Runner) write(s Step, t *table.Table) error {
	delim, err := tableio.ParseSeparator(s.Delimiter)
	if err != nil {
		return fmt.Errorf("delimiter: %w", err)
	}
	opt := tableio.WriteOptions{Delimiter: delim, NullString: rn.opt.NullString}
	if s.NullString != nil {
		opt.NullString = *s.NullString
	}
	if s.Path == "" || s.Path == "-" {
		return tableio.Write(rn.opt.Stdout, t, opt)
	}
	path := rn.path(s.Path)
	if err := tableio.WriteFile(path, t, opt); err != nil {
		return err
	}
	rn.manifest.Outputs = append(rn.manifest.Outputs, path)
	return nil
}

func (rn *Runner) describe(s Step, t *table.Table) error {
	rep, err := profile.Build(t, profile.Options{SampleRows: rn.opt.SampleRows, GroupBy: s.GroupBy, NullString: "NA"})
	if err != nil {
		return err
	}
	md := rep.Markdown()
	if s.Path == "" || s.Path == "-" {
		_, err := io.WriteString(rn.opt.Stdout, md)
		return err
	}
	path := rn.path(s.Path)
	if err := utils.SafeWriteFile(path, []byte(md)); err != nil {
		return err
	}
	rn.manifest.Outputs = append(rn.manifest.Outputs, path)
	return nil
}

func (rn *Runner) path(p string) string { return utils.ResolvePath(rn.recipe.baseDir, p) }
