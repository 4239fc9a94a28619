package txn

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/fsx"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
)

type opKind int

const (
	opCreate opKind = iota
	opRemove
)

type fileOp struct {
	kind    opKind
	rel     string
	content []byte
}

type appliedOp struct {
	op        fileOp
	target    string
	trashPath string
}

// Tx is the handle a Mutation works through. File effects are recorded here
// and applied only after the mutation returns successfully.
type Tx struct {
	id       string
	root     string
	manifest *manifest.Manifest
	ops      []fileOp
}

func (tx *Tx) ID() string {
	return tx.id
}

func (tx *Tx) Root() string {
	return tx.root
}

func (tx *Tx) Manifest() *manifest.Manifest {
	return tx.manifest
}

// CreateFile stages a new artifact file at the package-relative path rel. The
// destination must be free both on disk and among staged creates.
func (tx *Tx) CreateFile(rel string, content []byte) error {
	cleanRel, err := tx.checkRel(rel)
	if err != nil {
		return err
	}
	for _, op := range tx.ops {
		if op.kind == opCreate && op.rel == cleanRel {
			return coreerrors.New(coreerrors.ErrNameConflict, "%s is already staged in this transaction", cleanRel)
		}
	}
	exists, err := fsx.Exists(layout.Abs(tx.root, cleanRel))
	if err != nil {
		return coreerrors.Wrap(err, coreerrors.CategoryIOFailure, "stat_failed", "check package permissions", false)
	}
	if exists && !tx.stagedForRemoval(cleanRel) {
		return coreerrors.New(coreerrors.ErrNameConflict, "%s already exists", cleanRel)
	}
	tx.ops = append(tx.ops, fileOp{kind: opCreate, rel: cleanRel, content: append([]byte{}, content...)})
	return nil
}

// CopyFile stages a copy of the file at from into rel. The source bytes are
// read now, so a missing or unreadable source fails before anything is staged.
func (tx *Tx) CopyFile(rel, from string) error {
	info, err := os.Stat(from)
	if err != nil {
		return coreerrors.Mark(coreerrors.ErrCopyFailed, err, "stat %s", from)
	}
	if !info.Mode().IsRegular() {
		return coreerrors.New(coreerrors.ErrCopyFailed, "%s is not a regular file", from)
	}
	// #nosec G304 -- copy source is explicit user input.
	content, err := os.ReadFile(from)
	if err != nil {
		return coreerrors.Mark(coreerrors.ErrCopyFailed, err, "read %s", from)
	}
	return tx.CreateFile(rel, content)
}

// RemoveFile stages deletion of the artifact at rel.
func (tx *Tx) RemoveFile(rel string) error {
	cleanRel, err := tx.checkRel(rel)
	if err != nil {
		return err
	}
	tx.ops = append(tx.ops, fileOp{kind: opRemove, rel: cleanRel})
	return nil
}

func (tx *Tx) stagedForRemoval(rel string) bool {
	for _, op := range tx.ops {
		if op.kind == opRemove && op.rel == rel {
			return true
		}
	}
	return false
}

func (tx *Tx) checkRel(rel string) (string, error) {
	cleanRel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
	if cleanRel == "." || !filepath.IsLocal(filepath.FromSlash(cleanRel)) || strings.HasPrefix(cleanRel, "/") {
		return "", coreerrors.New(coreerrors.ErrInvalidName, "path %q is outside the package", rel)
	}
	if cleanRel == layout.ManifestFileName || cleanRel == layout.LockFileName {
		return "", coreerrors.New(coreerrors.ErrInvalidName, "path %q is reserved", rel)
	}
	return cleanRel, nil
}

// apply performs staged effects in order. On error the effects applied so far
// are returned so the caller can undo them.
func (tx *Tx) apply() ([]appliedOp, error) {
	applied := make([]appliedOp, 0, len(tx.ops))
	for _, op := range tx.ops {
		target := layout.Abs(tx.root, op.rel)
		switch op.kind {
		case opCreate:
			if err := fsx.CreateExclusive(target, op.content, artifactMode); err != nil {
				if errors.Is(err, fsx.ErrExists) {
					return applied, coreerrors.New(coreerrors.ErrNameConflict, "%s appeared during the transaction", op.rel)
				}
				return applied, coreerrors.Mark(coreerrors.ErrCopyFailed, err, "write %s", op.rel)
			}
			applied = append(applied, appliedOp{op: op, target: target})
		case opRemove:
			trashPath, err := fsx.MoveToTrash(target, tx.id)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					// the entry is dropped even when its file is already gone
					continue
				}
				return applied, coreerrors.Wrap(err, coreerrors.CategoryIOFailure, "remove_failed", "check package permissions", false)
			}
			applied = append(applied, appliedOp{op: op, target: target, trashPath: trashPath})
		}
	}
	return applied, nil
}

func rollback(applied []appliedOp) error {
	var errs []error
	for index := len(applied) - 1; index >= 0; index-- {
		entry := applied[index]
		switch entry.op.kind {
		case opCreate:
			if err := os.Remove(entry.target); err != nil && !os.IsNotExist(err) {
				errs = append(errs, err)
			}
		case opRemove:
			if err := fsx.Restore(entry.trashPath, entry.target); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func purge(logger zerolog.Logger, applied []appliedOp) {
	for _, entry := range applied {
		if entry.trashPath == "" {
			continue
		}
		if err := fsx.Purge(entry.trashPath); err != nil {
			logger.Warn().Err(err).Str("path", entry.op.rel).Msg("removed artifact left in trash")
		}
	}
}
