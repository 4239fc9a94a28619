package registry

import (
	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/txn"
)

// TestcaseOptions describes a testcase to register.
type TestcaseOptions struct {
	Name string
	// InputFrom and OutputFrom are optional files to copy; empty creates an empty file.
	InputFrom  string
	OutputFrom string
	Sample     bool
	Generate   bool
}

// AddTestcase registers testcases/input/<name> and testcases/output/<name>.
func (r *Registrar) AddTestcase(opts TestcaseOptions) (manifest.Testcase, error) {
	if err := layout.CheckArtifactName(opts.Name); err != nil {
		return manifest.Testcase{}, err
	}
	var added manifest.Testcase
	err := r.modify("add_testcase", func(tx *txn.Tx) error {
		m := tx.Manifest()
		if m.TestcaseIndex(opts.Name) >= 0 {
			return coreerrors.New(coreerrors.ErrNameConflict, "testcase %q is already registered", opts.Name)
		}
		inputRel := layout.Rel(layout.InputDir, opts.Name)
		outputRel := layout.Rel(layout.OutputDir, opts.Name)
		if err := stageArtifact(tx, inputRel, opts.InputFrom); err != nil {
			return err
		}
		if err := stageArtifact(tx, outputRel, opts.OutputFrom); err != nil {
			return err
		}
		added = manifest.Testcase{
			InputPath:  inputRel,
			OutputPath: outputRel,
			Generate:   opts.Generate,
			Sample:     opts.Sample,
		}
		m.Testcases = append(m.Testcases, added)
		return nil
	})
	if err != nil {
		return manifest.Testcase{}, err
	}
	return added, nil
}

// RemoveTestcase unregisters the first testcase whose input is named name and
// deletes testcases/input/<name> and testcases/output/<name>.
func (r *Registrar) RemoveTestcase(name string) error {
	return r.modify("remove_testcase", func(tx *txn.Tx) error {
		m := tx.Manifest()
		index := m.TestcaseIndex(name)
		if index < 0 {
			return notFound("testcase", name, m.TestcaseNames())
		}
		m.Testcases = append(m.Testcases[:index], m.Testcases[index+1:]...)
		if err := tx.RemoveFile(layout.Rel(layout.InputDir, name)); err != nil {
			return err
		}
		return tx.RemoveFile(layout.Rel(layout.OutputDir, name))
	})
}
