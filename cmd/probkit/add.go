package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/registry"
)

type addOutput struct {
	OK       bool          `json:"ok"`
	Root     string        `json:"root"`
	Kind     string        `json:"kind"`
	Source   *sourceView   `json:"source,omitempty"`
	Solution *solutionView `json:"solution,omitempty"`
	Testcase *testcaseView `json:"testcase,omitempty"`
}

func newAddCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new artifact and create its file",
		RunE:  unknownKind,
	}
	cmd.AddCommand(newAddSourceCmd(a))
	cmd.AddCommand(newAddSolutionCmd(a))
	cmd.AddCommand(newAddTestcaseCmd(a))
	return cmd
}

func newAddSourceCmd(a *app) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "source <name>",
		Short: "Add a generator, validator or checker source under src/sources",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.registrar()
			if err != nil {
				return err
			}
			added, err := r.AddSource(args[0], from)
			if err != nil {
				return err
			}
			view := viewSource(added)
			a.emit(addOutput{OK: true, Root: r.Root(), Kind: "source", Source: &view}, func(w io.Writer) {
				fmt.Fprintf(w, "added source %s (%s)\n", added.Source, formatBuild(added))
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Copy the file content from this path (default: empty file)")
	return cmd
}

func newAddSolutionCmd(a *app) *cobra.Command {
	var from string
	var verdict string
	cmd := &cobra.Command{
		Use:   "solution <name>",
		Short: "Add a reference solution under src/solutions",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected := a.config.Verdict()
			if cmd.Flags().Changed("verdict") {
				parsed, err := parseVerdict(verdict)
				if err != nil {
					return err
				}
				expected = parsed
			}
			r, err := a.registrar()
			if err != nil {
				return err
			}
			added, err := r.AddSolution(args[0], from, expected)
			if err != nil {
				return err
			}
			view := viewSolution(added)
			a.emit(addOutput{OK: true, Root: r.Root(), Kind: "solution", Solution: &view}, func(w io.Writer) {
				fmt.Fprintf(w, "added solution %s expecting %s\n", added.SourceFile.Source, added.Verdict)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Copy the file content from this path (default: empty file)")
	cmd.Flags().StringVar(&verdict, "verdict", "", "Expected verdict AC|TLE|WA (default: solution.default_verdict)")
	return cmd
}

func newAddTestcaseCmd(a *app) *cobra.Command {
	var opts registry.TestcaseOptions
	cmd := &cobra.Command{
		Use:   "testcase <name>",
		Short: "Add a testcase input/output pair under testcases",
		Args:  exactArgs(1, "name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Name = args[0]
			r, err := a.registrar()
			if err != nil {
				return err
			}
			added, err := r.AddTestcase(opts)
			if err != nil {
				return err
			}
			view := viewTestcase(added)
			a.emit(addOutput{OK: true, Root: r.Root(), Kind: "testcase", Testcase: &view}, func(w io.Writer) {
				fmt.Fprintf(w, "added testcase %s (%s, %s)\n", added.Name(), added.InputPath, added.OutputPath)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.InputFrom, "input", "", "Copy the input from this path (default: empty file)")
	cmd.Flags().StringVar(&opts.OutputFrom, "output", "", "Copy the expected output from this path (default: empty file)")
	cmd.Flags().BoolVar(&opts.Sample, "sample", false, "Mark as a sample shown in the statement")
	cmd.Flags().BoolVar(&opts.Generate, "generate", false, "Mark as produced by a generator")
	return cmd
}

func parseVerdict(value string) (manifest.Verdict, error) {
	verdict, err := manifest.ParseVerdict(value)
	if err != nil {
		return "", markInvalid(err, "--verdict")
	}
	return verdict, nil
}
