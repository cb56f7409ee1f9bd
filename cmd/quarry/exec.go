package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jward/quarry"
	"github.com/spf13/cobra"
)

var (
	flagDB     string
	flagDefs   []string
	flagSchema string
	flagOffset int
	flagLimit  int
)

var execCmd = &cobra.Command{
	Use:   "exec <statement-id> [name=value]...",
	Short: "Run one statement against a SQLite database",
	Long: `Loads definition files, opens the database and runs the statement.
Arguments of the form name=value become the statement parameter; a single
argument without "=" is passed as a scalar. Values are read as integers,
floats, booleans or null where they parse as such and as strings otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func init() {
	execCmd.Flags().StringVar(&flagDB, "db", "", "database path (required)")
	execCmd.Flags().StringSliceVar(&flagDefs, "defs", nil, "definition file or directory (repeatable)")
	execCmd.Flags().StringVar(&flagSchema, "schema", "", "SQL file executed after opening the database")
	execCmd.Flags().IntVar(&flagOffset, "offset", 0, "rows to skip for select statements")
	execCmd.Flags().IntVar(&flagLimit, "limit", 0, "maximum rows for select statements (0 = all)")
	_ = execCmd.MarkFlagRequired("db")
}

func runExec(cmd *cobra.Command, args []string) error {
	fail := func(err error) error {
		return outputError(cmd.OutOrStdout(), cmd.ErrOrStderr(), "exec", err)
	}

	opts := []quarry.Option{quarry.WithLogger(logger), quarry.WithVariables(flagVars)}
	if flagSchema != "" {
		ddl, err := os.ReadFile(flagSchema)
		if err != nil {
			return fail(fmt.Errorf("reading schema: %w", err))
		}
		opts = append(opts, quarry.WithSchema(string(ddl)))
	}

	engine, err := quarry.New(flagDB, opts...)
	if err != nil {
		return fail(err)
	}
	defer engine.Close()

	cfg := engine.Configuration()
	if len(flagDefs) > 0 {
		if err := cfg.LoadDefinitions(flagDefs...); err != nil {
			return fail(err)
		}
	}

	id := args[0]
	stmt, ok := cfg.Statement(id)
	if !ok {
		return fail(fmt.Errorf("%w: %s", quarry.ErrStatementNotFound, id))
	}
	param, err := parseParams(args[1:])
	if err != nil {
		return fail(err)
	}

	ctx := cmd.Context()
	sess := engine.Session()
	var n int64
	switch stmt.Kind {
	case quarry.KindFetch:
		var rows []map[string]any
		if err := sess.SelectList(ctx, id, param, quarry.NewRowBounds(flagOffset, flagLimit), &rows); err != nil {
			return fail(err)
		}
		count := len(rows)
		return outputResult(cmd.OutOrStdout(), CLIResult{Command: "exec", Results: rows, TotalCount: &count})
	case quarry.KindCreate:
		n, err = sess.Insert(ctx, id, param)
	case quarry.KindMutate:
		n, err = sess.Update(ctx, id, param)
	case quarry.KindRemove:
		n, err = sess.Delete(ctx, id, param)
	default:
		err = fmt.Errorf("%w: %s", quarry.ErrUnknownCommandType, id)
	}
	if err != nil {
		return fail(err)
	}
	return outputResult(cmd.OutOrStdout(), CLIResult{
		Command: "exec",
		Results: CLIExecResult{
			Statement:     id,
			Kind:          stmt.Kind.String(),
			Count:         n,
			GeneratedKeys: stmt.GeneratedKeys,
		},
	})
}

// parseParams builds the statement parameter from command-line arguments.
func parseParams(args []string) (any, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if len(args) == 1 && !strings.Contains(args[0], "=") {
		return parseValue(args[0]), nil
	}
	param := make(map[string]any, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q: want name=value", arg)
		}
		param[name] = parseValue(value)
	}
	return param, nil
}

func parseValue(s string) any {
	if s == "null" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
