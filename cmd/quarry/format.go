package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

var validFormats = []string{"json", "text"}

// validateFormat checks that the format flag is a recognized value.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResult writes a CLIResult to w in the selected format.
func outputResult(w io.Writer, result CLIResult) error {
	if flagFormat == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError writes an error in the selected format and returns it so RunE
// can propagate it to Cobra. In JSON mode the error is written to w as a
// CLIResult envelope. In text mode it goes to errW.
func outputError(w, errW io.Writer, command string, err error) error {
	errorHandled = true
	if flagFormat == "text" {
		fmt.Fprintf(errW, "Error: %s\n", err)
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(CLIResult{Command: command, Error: err.Error()})
	return err
}

func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIStatement:
		formatStatementsText(w, v)
	case CLIExecResult:
		formatExecText(w, v)
	case []map[string]any:
		formatRowsText(w, v)
	case CLIGenerated:
		fmt.Fprintf(w, "wrote %s (%s)\n", v.File, strings.Join(v.Types, ", "))
	case nil:
		fmt.Fprintln(w, "No results.")
	default:
		fmt.Fprintf(w, "%v\n", v)
	}
	return nil
}

// formatStatementsText formats CLIStatement results as aligned columns.
func formatStatementsText(w io.Writer, stmts []CLIStatement) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tPARAMS\tMAP_KEY\tSOURCE")
	for _, s := range stmts {
		source := "sql"
		if s.Scripted {
			source = "script"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Kind, strings.Join(s.Params, ","), s.MapKey, source)
	}
	tw.Flush()
}

func formatExecText(w io.Writer, r CLIExecResult) {
	if r.GeneratedKeys {
		fmt.Fprintf(w, "%s: last insert id %d\n", r.Statement, r.Count)
		return
	}
	fmt.Fprintf(w, "%s: %d rows affected\n", r.Statement, r.Count)
}

// formatRowsText formats query rows as aligned columns, ordered by column
// name.
func formatRowsText(w io.Writer, rows []map[string]any) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No rows.")
		return
	}
	colSet := make(map[string]struct{})
	for _, row := range rows {
		for col := range row {
			colSet[col] = struct{}{}
		}
	}
	cols := make([]string, 0, len(colSet))
	for col := range colSet {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(cols, "\t")))
	for _, row := range rows {
		vals := make([]string, len(cols))
		for i, col := range cols {
			if v := row[col]; v != nil {
				vals[i] = fmt.Sprint(v)
			} else {
				vals[i] = "NULL"
			}
		}
		fmt.Fprintln(tw, strings.Join(vals, "\t"))
	}
	tw.Flush()
}
