package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/txn"
)

type infoOutput struct {
	OK        bool           `json:"ok"`
	Root      string         `json:"root"`
	Title     string         `json:"title"`
	Time      float64        `json:"time"`
	Tags      []string       `json:"tags"`
	Sources   []sourceView   `json:"sources"`
	Solutions []solutionView `json:"solutions"`
	Testcases []testcaseView `json:"testcases"`
	Validator string         `json:"validator,omitempty"`
	Checker   string         `json:"checker,omitempty"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the manifest of the enclosing package",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := layout.FindRoot(a.dir)
			if err != nil {
				return err
			}
			m, err := txn.View(root)
			if err != nil {
				return err
			}

			output := infoOutput{
				OK:        true,
				Root:      root,
				Title:     m.Title,
				Time:      m.Time,
				Tags:      m.Tags,
				Sources:   make([]sourceView, 0, len(m.Sources)),
				Solutions: make([]solutionView, 0, len(m.Solutions)),
				Testcases: make([]testcaseView, 0, len(m.Testcases)),
			}
			for _, source := range m.Sources {
				output.Sources = append(output.Sources, viewSource(source))
			}
			for _, solution := range m.Solutions {
				output.Solutions = append(output.Solutions, viewSolution(solution))
			}
			for _, testcase := range m.Testcases {
				output.Testcases = append(output.Testcases, viewTestcase(testcase))
			}
			if validator, ok := m.ValidatorSource(); ok {
				output.Validator = validator.Name()
			}
			if checker, ok := m.CheckerSource(); ok {
				output.Checker = checker.Name()
			}

			a.emit(output, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", output.Title)
				fmt.Fprintf(w, "  root:      %s\n", output.Root)
				fmt.Fprintf(w, "  time:      %s\n", formatSeconds(output.Time))
				fmt.Fprintf(w, "  tags:      %s\n", formatTags(output.Tags))
				fmt.Fprintf(w, "  validator: %s\n", orDash(output.Validator))
				fmt.Fprintf(w, "  checker:   %s\n", orDash(output.Checker))
				fmt.Fprintf(w, "sources (%d)\n", len(m.Sources))
				for _, source := range m.Sources {
					fmt.Fprintf(w, "  %s  %s\n", source.Name(), formatBuild(source))
				}
				fmt.Fprintf(w, "solutions (%d)\n", len(m.Solutions))
				for _, solution := range m.Solutions {
					fmt.Fprintf(w, "  %s  %s  %s\n", solution.SourceFile.Name(), solution.Verdict, formatBuild(solution.SourceFile))
				}
				fmt.Fprintf(w, "testcases (%d)\n", len(m.Testcases))
				for _, testcase := range m.Testcases {
					marker := ""
					if testcase.Sample {
						marker += " sample"
					}
					if testcase.Generate {
						marker += " generate"
					}
					fmt.Fprintf(w, "  %s%s\n", testcase.Name(), marker)
				}
			})
			return nil
		},
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
