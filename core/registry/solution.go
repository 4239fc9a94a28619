package registry

import (
	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/txn"
)

// AddSolution registers src/solutions/<name> with its expected verdict. An
// empty verdict means accepted.
func (r *Registrar) AddSolution(name, from string, verdict manifest.Verdict) (manifest.Solution, error) {
	if err := layout.CheckArtifactName(name); err != nil {
		return manifest.Solution{}, err
	}
	if verdict == "" {
		verdict = manifest.VerdictAccepted
	}
	if !verdict.Valid() {
		return manifest.Solution{}, coreerrors.New(coreerrors.ErrInvalidValue, "unknown verdict %q", verdict)
	}
	var added manifest.Solution
	err := r.modify("add_solution", func(tx *txn.Tx) error {
		m := tx.Manifest()
		if m.SolutionIndex(name) >= 0 {
			return coreerrors.New(coreerrors.ErrNameConflict, "solution %q is already registered", name)
		}
		rel := layout.Rel(layout.SolutionsDir, name)
		if err := stageArtifact(tx, rel, from); err != nil {
			return err
		}
		added = manifest.Solution{
			SourceFile: manifest.NewSourceFile(rel, layout.BinFor(name), r.toolchains),
			Verdict:    verdict,
		}
		m.Solutions = append(m.Solutions, added)
		return nil
	})
	if err != nil {
		return manifest.Solution{}, err
	}
	return added, nil
}

// RemoveSolution unregisters the first solution named name and deletes
// src/solutions/<name>.
func (r *Registrar) RemoveSolution(name string) error {
	return r.modify("remove_solution", func(tx *txn.Tx) error {
		m := tx.Manifest()
		index := m.SolutionIndex(name)
		if index < 0 {
			return notFound("solution", name, m.SolutionNames())
		}
		m.Solutions = append(m.Solutions[:index], m.Solutions[index+1:]...)
		return tx.RemoveFile(layout.Rel(layout.SolutionsDir, name))
	})
}
