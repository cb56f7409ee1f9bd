package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/quarry/internal/gen"
	"github.com/spf13/cobra"
)

var (
	flagTypes  []string
	flagOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file.go>",
	Short: "Generate typed adapters for mapper interfaces",
	Long:  "Parses the interfaces declared in a Go file and writes adapters that forward every method to quarry.Proxy.Invoke, plus New<Name>Mapper constructors.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().StringSliceVar(&flagTypes, "type", nil, "interface to generate (repeatable; default all)")
	generateCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fail := func(err error) error {
		return outputError(cmd.OutOrStdout(), cmd.ErrOrStderr(), "generate", err)
	}

	src, err := os.ReadFile(args[0])
	if err != nil {
		return fail(fmt.Errorf("reading %s: %w", args[0], err))
	}
	file, err := gen.ParseInterfaces(cmd.Context(), src)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", args[0], err))
	}

	filename := flagOutput
	if filename == "" {
		filename = strings.TrimSuffix(filepath.Base(args[0]), ".go") + "_quarry.go"
	}
	out, err := gen.Generate(file, gen.Options{Types: flagTypes, Filename: filename})
	if err != nil {
		return fail(err)
	}

	if flagOutput == "" {
		_, err := cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(flagOutput, out, 0o644); err != nil {
		return fail(fmt.Errorf("writing %s: %w", flagOutput, err))
	}
	logger.Info("Generated adapters.", "source", args[0], "output", flagOutput)

	types := flagTypes
	if len(types) == 0 {
		for _, it := range file.Interfaces {
			types = append(types, it.Name)
		}
	}
	return outputResult(cmd.OutOrStdout(), CLIResult{
		Command: "generate",
		Results: CLIGenerated{File: flagOutput, Types: types},
	})
}
