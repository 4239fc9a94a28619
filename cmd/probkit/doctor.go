package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/davidahmann/probkit/core/doctor"
	"github.com/davidahmann/probkit/core/layout"
)

type doctorOutput struct {
	OK              bool           `json:"ok"`
	SchemaID        string         `json:"schema_id,omitempty"`
	SchemaVersion   string         `json:"schema_version,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty"`
	ProducerVersion string         `json:"producer_version,omitempty"`
	Root            string         `json:"root,omitempty"`
	Status          string         `json:"status,omitempty"`
	NonFixable      bool           `json:"non_fixable,omitempty"`
	Summary         string         `json:"summary,omitempty"`
	FixCommands     []string       `json:"fix_commands,omitempty"`
	Checks          []doctor.Check `json:"checks,omitempty"`
	Error           string         `json:"error,omitempty"`
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the manifest and the package files agree",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := layout.FindRoot(a.dir)
			if err != nil {
				return err
			}
			result := doctor.Run(doctor.Options{Root: root, ProducerVersion: version})

			exitCode := exitOK
			output := doctorOutput{
				OK:              !result.Failed(),
				SchemaID:        result.SchemaID,
				SchemaVersion:   result.SchemaVersion,
				CreatedAt:       result.CreatedAt,
				ProducerVersion: result.ProducerVersion,
				Root:            result.Root,
				Status:          result.Status,
				NonFixable:      result.NonFixable,
				Summary:         result.Summary,
				FixCommands:     result.FixCommands,
				Checks:          result.Checks,
			}
			if result.Failed() {
				exitCode = exitIntegrity
				output.Error = "package has failing checks"
			}
			if a.jsonOutput {
				a.writeJSONOutput(output, exitCode)
			} else {
				writeDoctorText(a.stdout, result)
			}
			if exitCode != exitOK {
				return reportedExit{code: exitCode, reason: result.Summary}
			}
			return nil
		},
	}
}

func writeDoctorText(w io.Writer, result doctor.Result) {
	fmt.Fprintln(w, result.Summary)
	for _, check := range result.Checks {
		fmt.Fprintf(w, "  [%s] %s: %s\n", check.Status, check.Name, check.Message)
	}
	for _, fix := range result.FixCommands {
		fmt.Fprintf(w, "  fix: %s\n", fix)
	}
}
