package registry

import (
	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/txn"
)

// AddSource registers src/sources/<name>. With from set the file is a copy of
// from, otherwise it is created empty. The build description is derived from
// the extension of name once, here.
func (r *Registrar) AddSource(name, from string) (manifest.SourceFile, error) {
	if err := layout.CheckArtifactName(name); err != nil {
		return manifest.SourceFile{}, err
	}
	var added manifest.SourceFile
	err := r.modify("add_source", func(tx *txn.Tx) error {
		m := tx.Manifest()
		if m.SourceIndex(name) >= 0 {
			return coreerrors.New(coreerrors.ErrNameConflict, "source %q is already registered", name)
		}
		rel := layout.Rel(layout.SourcesDir, name)
		if err := stageArtifact(tx, rel, from); err != nil {
			return err
		}
		added = manifest.NewSourceFile(rel, layout.BinFor(name), r.toolchains)
		m.Sources = append(m.Sources, added)
		return nil
	})
	if err != nil {
		return manifest.SourceFile{}, err
	}
	return added, nil
}

// RemoveSource unregisters the first source named name and deletes
// src/sources/<name>. The path stored in the entry is never deleted directly.
// Sources used as validator or checker are refused; references to later
// sources are shifted so they keep pointing at the same files.
func (r *Registrar) RemoveSource(name string) error {
	return r.modify("remove_source", func(tx *txn.Tx) error {
		m := tx.Manifest()
		index := m.SourceIndex(name)
		if index < 0 {
			return notFound("source", name, m.SourceNames())
		}
		if _, err := m.RemoveSourceAt(index); err != nil {
			return err
		}
		return tx.RemoveFile(layout.Rel(layout.SourcesDir, name))
	})
}

// SetValidator points the validator at the source named name and returns its index.
func (r *Registrar) SetValidator(name string) (int, error) {
	return r.setReference("set_validator", name, func(m *manifest.Manifest, index *int) {
		m.Validator = index
	})
}

// SetChecker points the checker at the source named name and returns its index.
func (r *Registrar) SetChecker(name string) (int, error) {
	return r.setReference("set_checker", name, func(m *manifest.Manifest, index *int) {
		m.Checker = index
	})
}

// ClearValidator unsets the validator reference.
func (r *Registrar) ClearValidator() error {
	return r.modify("clear_validator", func(tx *txn.Tx) error {
		tx.Manifest().Validator = nil
		return nil
	})
}

// ClearChecker unsets the checker reference.
func (r *Registrar) ClearChecker() error {
	return r.modify("clear_checker", func(tx *txn.Tx) error {
		tx.Manifest().Checker = nil
		return nil
	})
}

func (r *Registrar) setReference(operation, name string, assign func(*manifest.Manifest, *int)) (int, error) {
	resolved := -1
	err := r.modify(operation, func(tx *txn.Tx) error {
		m := tx.Manifest()
		index := m.SourceIndex(name)
		if index < 0 {
			return notFound("source", name, m.SourceNames())
		}
		resolved = index
		assign(m, &resolved)
		return nil
	})
	if err != nil {
		return -1, err
	}
	return resolved, nil
}
