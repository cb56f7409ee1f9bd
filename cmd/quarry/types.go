package main

// CLIResult is the JSON envelope for all command output.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIStatement describes one loaded statement.
type CLIStatement struct {
	ID            string   `json:"id"`
	Kind          string   `json:"kind"`
	Params        []string `json:"params,omitempty"`
	MapKey        string   `json:"map_key,omitempty"`
	Scripted      bool     `json:"scripted,omitempty"`
	GeneratedKeys bool     `json:"generated_keys,omitempty"`
}

// CLIExecResult is the outcome of an insert, update or delete.
type CLIExecResult struct {
	Statement string `json:"statement"`
	Kind      string `json:"kind"`
	// Count is the affected row count, or the last insert id for
	// statements with generated keys.
	Count         int64 `json:"count"`
	GeneratedKeys bool  `json:"generated_keys,omitempty"`
}

// CLIGenerated reports an adapter file written by generate.
type CLIGenerated struct {
	File  string   `json:"file"`
	Types []string `json:"types"`
}
