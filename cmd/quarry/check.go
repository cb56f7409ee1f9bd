package main

import (
	"github.com/jward/quarry"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Validate statement definition files",
	Long:  "Loads HCL and YAML definition files (directories are walked) and lists the statements they declare.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := quarry.NewConfiguration(quarry.WithLogger(logger), quarry.WithVariables(flagVars))
	if err := cfg.LoadDefinitions(args...); err != nil {
		return outputError(cmd.OutOrStdout(), cmd.ErrOrStderr(), "check", err)
	}

	ids := cfg.Catalog().IDs()
	stmts := make([]CLIStatement, 0, len(ids))
	for _, id := range ids {
		s, _ := cfg.Statement(id)
		stmts = append(stmts, statementToCLI(s))
	}
	count := len(stmts)
	return outputResult(cmd.OutOrStdout(), CLIResult{
		Command:    "check",
		Results:    stmts,
		TotalCount: &count,
	})
}

func statementToCLI(s *quarry.Statement) CLIStatement {
	return CLIStatement{
		ID:            s.ID,
		Kind:          s.Kind.String(),
		Params:        s.Params,
		MapKey:        s.MapKey,
		Scripted:      s.Script != "",
		GeneratedKeys: s.GeneratedKeys,
	}
}
