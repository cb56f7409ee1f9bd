package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The commands share package-level flag variables, so these tests run
// sequentially.

const testDefs = `
mapper "app.Accounts" {
  insert "Create" {
    sql = "INSERT INTO ${var.table} (name, balance) VALUES (#{name}, #{balance})"
    params = ["name", "balance"]
    generated_keys = true
  }
  select "List" {
    sql = "SELECT id, name, balance FROM ${var.table} ORDER BY id"
  }
  update "Credit" {
    sql = "UPDATE ${var.table} SET balance = balance + #{amount}"
  }
  statement "Vacuum" {
    kind = "flush"
    sql  = "VACUUM"
  }
}
`

const testSchema = `CREATE TABLE IF NOT EXISTS accounts (
  id      INTEGER PRIMARY KEY,
  name    TEXT NOT NULL,
  balance INTEGER NOT NULL DEFAULT 0
);`

type envelope struct {
	Command    string          `json:"command"`
	Results    json.RawMessage `json:"results"`
	TotalCount *int            `json:"total_count"`
	Error      string          `json:"error"`
}

func resetFlags() {
	flagFormat = "json"
	flagLogLevel = "warn"
	flagLogFormat = "text"
	flagVars = map[string]string{}
	flagTypes = nil
	flagOutput = ""
	flagDB = ""
	flagDefs = nil
	flagSchema = ""
	flagOffset = 0
	flagLimit = 0
	errorHandled = false
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decode(t *testing.T, out string) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

func writeFixtures(t *testing.T) (dir, defs, schema string) {
	t.Helper()
	dir = t.TempDir()
	defs = filepath.Join(dir, "defs")
	require.NoError(t, os.MkdirAll(defs, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(defs, "accounts.hcl"), []byte(testDefs), 0o644))
	schema = filepath.Join(dir, "schema.sql")
	require.NoError(t, os.WriteFile(schema, []byte(testSchema), 0o644))
	return dir, defs, schema
}

// =============================================================================
// check
// =============================================================================

func TestCheck_JSON(t *testing.T) {
	_, defs, _ := writeFixtures(t)

	out, _, err := runCLI(t, "check", "--var", "table=accounts", defs)
	require.NoError(t, err)

	env := decode(t, out)
	assert.Equal(t, "check", env.Command)
	require.NotNil(t, env.TotalCount)
	assert.Equal(t, 4, *env.TotalCount)

	var stmts []CLIStatement
	require.NoError(t, json.Unmarshal(env.Results, &stmts))
	require.Len(t, stmts, 4)
	assert.Equal(t, CLIStatement{
		ID:            "app.Accounts.Create",
		Kind:          "Create",
		Params:        []string{"name", "balance"},
		GeneratedKeys: true,
	}, stmts[0])
	assert.Equal(t, "app.Accounts.Vacuum", stmts[3].ID)
	assert.Equal(t, "Unknown", stmts[3].Kind)
}

func TestCheck_Text(t *testing.T) {
	_, defs, _ := writeFixtures(t)

	out, _, err := runCLI(t, "check", "--format", "text", "--var", "table=accounts", defs)
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "MAP_KEY")
	assert.Contains(t, out, "app.Accounts.List")
	assert.Contains(t, out, "name,balance")
}

func TestCheck_Error(t *testing.T) {
	_, defs, _ := writeFixtures(t)

	// var.table is undefined without --var
	out, _, err := runCLI(t, "check", defs)
	require.Error(t, err)
	env := decode(t, out)
	assert.Equal(t, "check", env.Command)
	assert.NotEmpty(t, env.Error)
	assert.True(t, errorHandled)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := runCLI(t, "check", "--format", "yaml", ".")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

// =============================================================================
// exec
// =============================================================================

func TestExec_InsertSelectUpdate(t *testing.T) {
	dir, defs, schema := writeFixtures(t)
	db := filepath.Join(dir, "app.db")
	common := []string{"--db", db, "--defs", defs, "--schema", schema, "--var", "table=accounts"}

	run := func(args ...string) envelope {
		t.Helper()
		out, _, err := runCLI(t, append(append([]string{"exec"}, common...), args...)...)
		require.NoError(t, err, out)
		return decode(t, out)
	}

	env := run("app.Accounts.Create", "name=ada", "balance=10")
	var created CLIExecResult
	require.NoError(t, json.Unmarshal(env.Results, &created))
	assert.Equal(t, CLIExecResult{Statement: "app.Accounts.Create", Kind: "Create", Count: 1, GeneratedKeys: true}, created)

	run("app.Accounts.Create", "name=bob", "balance=20")

	env = run("app.Accounts.Credit", "amount=5")
	var credited CLIExecResult
	require.NoError(t, json.Unmarshal(env.Results, &credited))
	assert.Equal(t, int64(2), credited.Count)

	env = run("app.Accounts.List", "--offset", "1", "--limit", "1")
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(env.Results, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "bob", rows[0]["name"])
	assert.Equal(t, float64(25), rows[0]["balance"])
}

func TestFormatExecText(t *testing.T) {
	var buf bytes.Buffer
	formatExecText(&buf, CLIExecResult{Statement: "app.Accounts.Create", Kind: "Create", Count: 7, GeneratedKeys: true})
	formatExecText(&buf, CLIExecResult{Statement: "app.Accounts.Import", Kind: "Create", Count: 3})
	formatExecText(&buf, CLIExecResult{Statement: "app.Accounts.Credit", Kind: "Mutate", Count: 2})
	assert.Equal(t, "app.Accounts.Create: last insert id 7\n"+
		"app.Accounts.Import: 3 rows affected\n"+
		"app.Accounts.Credit: 2 rows affected\n", buf.String())
}

func TestExec_Errors(t *testing.T) {
	dir, defs, schema := writeFixtures(t)
	db := filepath.Join(dir, "app.db")
	common := []string{"exec", "--db", db, "--defs", defs, "--schema", schema, "--var", "table=accounts"}

	_, _, err := runCLI(t, append(common, "app.Accounts.Missing")...)
	assert.ErrorContains(t, err, "invalid bound statement (not found)")

	_, _, err = runCLI(t, append(common, "app.Accounts.Vacuum")...)
	assert.ErrorContains(t, err, "unknown execution method")

	_, _, err = runCLI(t, append(common, "app.Accounts.Create", "=x", "y")...)
	assert.ErrorContains(t, err, "want name=value")

	out, _, err := runCLI(t, append(common, "--format", "text", "app.Accounts.Create", "name=x")...)
	assert.Error(t, err, "balance is missing")
	assert.Empty(t, out)
}

func TestParseParams(t *testing.T) {
	p, err := parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = parseParams([]string{"42"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), p)

	p, err = parseParams([]string{"a=1", "b=x", "c=true", "d=null", "e=1.5", "f=a=b"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": int64(1), "b": "x", "c": true, "d": nil, "e": 1.5, "f": "a=b"}, p)
}

// =============================================================================
// generate
// =============================================================================

const generateSource = `package store

import "context"

type Account struct{ ID int64 }

type Accounts interface {
	FindByID(ctx context.Context, id int64) (*Account, error)
}
`

func TestGenerate_Stdout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "accounts.go")
	require.NoError(t, os.WriteFile(src, []byte(generateSource), 0o644))

	out, _, err := runCLI(t, "generate", src)
	require.NoError(t, err)
	assert.Contains(t, out, "func NewAccountsMapper(p *quarry.Proxy) Accounts {")
}

func TestGenerate_File(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "accounts.go")
	dst := filepath.Join(dir, "accounts_quarry.go")
	require.NoError(t, os.WriteFile(src, []byte(generateSource), 0o644))

	out, _, err := runCLI(t, "generate", src, "--type", "Accounts", "-o", dst)
	require.NoError(t, err)

	env := decode(t, out)
	var gen CLIGenerated
	require.NoError(t, json.Unmarshal(env.Results, &gen))
	assert.Equal(t, CLIGenerated{File: dst, Types: []string{"Accounts"}}, gen)

	written, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(written), "type accountsMapper struct")
}

func TestGenerate_UnknownType(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "accounts.go")
	require.NoError(t, os.WriteFile(src, []byte(generateSource), 0o644))

	_, _, err := runCLI(t, "generate", src, "--type", "Nope")
	assert.ErrorContains(t, err, "interface Nope not found")
}

// =============================================================================
// helpers
// =============================================================================

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	assert.Error(t, validateFormat("xml"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("debug", "json", &buf)
	l.Debug("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	l = newLogger("error", "text", &buf)
	l.Warn("dropped")
	assert.Empty(t, buf.String())
}

func TestFormatRowsText(t *testing.T) {
	var buf bytes.Buffer
	formatRowsText(&buf, []map[string]any{{"b": 1, "a": nil}})
	assert.Contains(t, buf.String(), "A     B")
	assert.Contains(t, buf.String(), "NULL  1")

	buf.Reset()
	formatRowsText(&buf, nil)
	assert.Equal(t, "No rows.\n", buf.String())
}
