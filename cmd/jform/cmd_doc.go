package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/fileio"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fmtWrite   bool
	tableSort  string
	tableDesc  bool
	tableWidth int
	setKind    string
)

// validateCmd checks files without opening the editor
var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check that files hold a JSON array of objects",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

// fmtCmd re-indents a file the way the editor saves it
var fmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "Print a file indented the way jform saves it",
	Args:  cobra.ExactArgs(1),
	RunE:  runFmt,
}

// tableCmd prints the table view
var tableCmd = &cobra.Command{
	Use:   "table FILE",
	Short: "Print every object as a table row",
	Args:  cobra.ExactArgs(1),
	RunE:  runTable,
}

// getCmd prints one value
var getCmd = &cobra.Command{
	Use:   "get FILE INDEX PATH",
	Short: "Print the value at a dot-delimited path of one object",
	Args:  cobra.ExactArgs(3),
	RunE:  runGet,
}

// setCmd writes one value
var setCmd = &cobra.Command{
	Use:   "set FILE INDEX PATH VALUE",
	Short: "Set a value, keeping the type the field already has",
	Long: `Set the value at a dot-delimited path of one object and save the file.

The text is read as the type the field already has: setting a number field to
"42" stores the number 42. New fields are read as JSON, falling back to a
string. --kind forces a type.`,
	Args: cobra.ExactArgs(4),
	RunE: runSet,
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		doc, err := fileio.Load(path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d objects)\n", path, doc.Len())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files invalid", failed, len(args))
	}
	return nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	doc, err := fileio.Load(args[0])
	if err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	if !fmtWrite {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := fileio.WriteAtomic(args[0], data); err != nil {
		return err
	}
	logger.Info("formatted", zap.String("path", args[0]))
	return nil
}

func runTable(cmd *cobra.Command, args []string) error {
	doc, err := fileio.Load(args[0])
	if err != nil {
		return err
	}
	if tableSort != "" {
		dir := jform.Ascending
		if tableDesc {
			dir = jform.Descending
		}
		doc.Sort(jform.ParsePath(tableSort), dir)
	}

	objs := doc.Objects()
	cols := jform.Columns(objs)
	headers := make([]string, len(cols))
	for j, c := range cols {
		headers[j] = c.String()
	}
	rows := make([][]string, len(objs))
	for i, obj := range objs {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = fitCell(jform.FormatCell(c.Get(obj)), tableWidth)
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func fitCell(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", s, err)
	}
	return i, nil
}

func runGet(cmd *cobra.Command, args []string) error {
	doc, err := fileio.Load(args[0])
	if err != nil {
		return err
	}
	i, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	v, err := doc.Get(i, jform.ParsePath(args[2]))
	if err != nil {
		return err
	}
	s, err := jform.Indent(v)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), s)
	return nil
}

func runSet(cmd *cobra.Command, args []string) error {
	doc, err := fileio.Load(args[0])
	if err != nil {
		return err
	}
	i, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	path := jform.ParsePath(args[2])
	raw := args[3]

	var v any
	switch current, getErr := doc.Get(i, path); {
	case setKind != "":
		kind, err := jform.ParseKind(setKind)
		if err != nil {
			return err
		}
		v, err = doc.SetField(i, path, raw, kind)
		if err != nil {
			return err
		}
	case getErr == nil:
		v, err = doc.SetField(i, path, raw, jform.KindOf(current))
		if err != nil {
			return err
		}
	case errors.Is(getErr, jform.ErrNotFound):
		v = jform.ParseLiteral(raw)
		if err := doc.Set(i, path, v); err != nil {
			return err
		}
	default:
		return getErr
	}

	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	if err := fileio.WriteAtomic(args[0], data); err != nil {
		return err
	}
	logger.Info("value set", zap.String("path", args[0]), zap.Int("index", i), zap.String("field", path.String()))
	fmt.Fprintln(cmd.OutOrStdout(), jform.Compact(v))
	return nil
}
