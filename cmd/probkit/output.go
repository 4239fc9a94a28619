package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davidahmann/probkit/core/manifest"
)

// emit writes output as a JSON line with --json, otherwise calls text.
func (a *app) emit(output any, text func(io.Writer)) {
	if a.jsonOutput {
		a.writeJSONOutput(output, exitOK)
		return
	}
	text(a.stdout)
}

type sourceView struct {
	Name     string   `json:"name"`
	Source   string   `json:"source"`
	Compiler string   `json:"compiler,omitempty"`
	Args     []string `json:"compiler_args,omitempty"`
	Bin      string   `json:"bin,omitempty"`
}

type solutionView struct {
	sourceView
	Verdict manifest.Verdict `json:"verdict"`
}

type testcaseView struct {
	Name     string `json:"name"`
	Input    string `json:"input_path"`
	Output   string `json:"output_path"`
	Sample   bool   `json:"sample"`
	Generate bool   `json:"generate"`
}

func viewSource(source manifest.SourceFile) sourceView {
	return sourceView{
		Name:     source.Name(),
		Source:   source.Source,
		Compiler: source.Compiler,
		Args:     source.CompilerArgs,
		Bin:      source.Bin,
	}
}

func viewSolution(solution manifest.Solution) solutionView {
	return solutionView{sourceView: viewSource(solution.SourceFile), Verdict: solution.Verdict}
}

func viewTestcase(testcase manifest.Testcase) testcaseView {
	return testcaseView{
		Name:     testcase.Name(),
		Input:    testcase.InputPath,
		Output:   testcase.OutputPath,
		Sample:   testcase.Sample,
		Generate: testcase.Generate,
	}
}

func formatBuild(source manifest.SourceFile) string {
	if source.Compiler == "" {
		return "no build"
	}
	parts := append([]string{source.Compiler}, source.CompilerArgs...)
	return strings.Join(parts, " ") + " -> " + source.Bin
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}

func formatSeconds(seconds float64) string {
	return fmt.Sprintf("%gs", seconds)
}
