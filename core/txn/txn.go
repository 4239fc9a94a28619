// Package txn implements the load, mutate, persist protocol around a package
// manifest.
//
// A mutation edits the in-memory manifest and stages file effects through the
// Tx. Nothing touches the disk until the mutation succeeds. Staged effects are
// then applied, the manifest is checked against the digest it was loaded with,
// and the new manifest is written with an atomic rename. If any step after the
// mutation fails, applied file effects are undone, so callers observe either
// the old package or the new one. The only exception is a failed undo, which
// is reported as ErrPersistFailed with a doctor hint.
package txn

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/fsx"
	"github.com/davidahmann/probkit/core/layout"
	"github.com/davidahmann/probkit/core/manifest"
)

const (
	artifactMode        os.FileMode = 0o644
	defaultManifestMode os.FileMode = 0o644
)

// writeManifestFile is replaced in tests to simulate a failing disk.
var writeManifestFile = fsx.WriteFileAtomic

type Options struct {
	Lock fsx.LockOptions
}

// Mutation edits tx.Manifest() and stages file effects. Returning an error
// aborts the transaction with the package untouched.
type Mutation func(tx *Tx) error

type lockOwner struct {
	TxID      string `json:"tx_id"`
	PID       int    `json:"pid"`
	StartedAt string `json:"started_at"`
}

func Modify(root string, mutate Mutation) error {
	return ModifyWithOptions(root, Options{}, mutate)
}

func ModifyWithOptions(root string, opts Options, mutate Mutation) error {
	if mutate == nil {
		return coreerrors.New(coreerrors.ErrInvalidValue, "mutation is required")
	}
	manifestPath := layout.ManifestPath(root)
	if _, err := os.Stat(manifestPath); err != nil {
		return coreerrors.Mark(coreerrors.ErrManifestUnreadable, err, "stat %s", layout.ManifestFileName)
	}

	txID := uuid.NewString()
	logger := log.With().Str("tx", txID).Str("root", root).Logger()
	owner, err := json.Marshal(lockOwner{
		TxID:      txID,
		PID:       os.Getpid(),
		StartedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("encode lock owner: %w", err)
	}

	err = fsx.WithLock(layout.LockPath(root), owner, opts.Lock, func() error {
		logger.Debug().Msg("lock acquired")
		return run(root, txID, logger, mutate)
	})
	if errors.Is(err, fsx.ErrLockTimeout) {
		return coreerrors.Mark(coreerrors.ErrConcurrentModification, err, "package is locked by another process")
	}
	return err
}

// View loads the manifest without taking the lock. It is meant for read-only
// callers and may observe a manifest that is about to be replaced.
func View(root string) (manifest.Manifest, error) {
	loaded, err := load(root)
	if err != nil {
		return manifest.Manifest{}, err
	}
	return loaded.manifest, nil
}

type loadedManifest struct {
	manifest manifest.Manifest
	digest   string
	mode     os.FileMode
}

func load(root string) (loadedManifest, error) {
	manifestPath := layout.ManifestPath(root)
	info, err := os.Stat(manifestPath)
	if err != nil {
		return loadedManifest{}, coreerrors.Mark(coreerrors.ErrManifestUnreadable, err, "stat %s", layout.ManifestFileName)
	}
	// #nosec G304 -- manifest path is derived from a resolved package root.
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return loadedManifest{}, coreerrors.Mark(coreerrors.ErrManifestUnreadable, err, "read %s", layout.ManifestFileName)
	}
	decoded, err := manifest.Decode(content)
	if err != nil {
		return loadedManifest{}, err
	}
	digest, err := manifest.Digest(content)
	if err != nil {
		return loadedManifest{}, err
	}
	mode := info.Mode().Perm()
	if mode == 0 {
		mode = defaultManifestMode
	}
	return loadedManifest{manifest: decoded, digest: digest, mode: mode}, nil
}

func run(root, txID string, logger zerolog.Logger, mutate Mutation) error {
	loaded, err := load(root)
	if err != nil {
		return err
	}
	logger.Debug().Str("digest", loaded.digest).Msg("manifest loaded")

	working := loaded.manifest
	tx := &Tx{id: txID, root: root, manifest: &working}
	if err := mutate(tx); err != nil {
		logger.Debug().Err(err).Msg("mutation aborted")
		return err
	}
	encoded, err := manifest.Encode(working)
	if err != nil {
		return err
	}

	applied, err := tx.apply()
	if err != nil {
		return abort(logger, applied, err)
	}
	logger.Debug().Int("file_ops", len(applied)).Msg("file changes applied")

	current, err := currentDigest(root)
	if err != nil {
		return abort(logger, applied, err)
	}
	if current != loaded.digest {
		return abort(logger, applied, coreerrors.New(coreerrors.ErrConcurrentModification, "%s changed on disk during the transaction", layout.ManifestFileName))
	}

	if err := writeManifestFile(layout.ManifestPath(root), encoded, loaded.mode); err != nil {
		if undoErr := rollback(applied); undoErr != nil {
			logger.Error().Err(err).AnErr("undo", undoErr).Msg("manifest write failed and file changes could not be undone")
			persistErr := coreerrors.Mark(coreerrors.ErrPersistFailed, errors.Join(err, undoErr), "write %s; file changes could not be undone", layout.ManifestFileName)
			return coreerrors.WithHint(persistErr, "package is inconsistent: the manifest is unchanged but artifact files were modified, run probkit doctor")
		}
		logger.Warn().Err(err).Msg("manifest write failed, file changes undone")
		persistErr := coreerrors.Mark(coreerrors.ErrPersistFailed, err, "write %s", layout.ManifestFileName)
		return coreerrors.WithHint(persistErr, "no changes were kept; check disk space and permissions and retry")
	}
	logger.Debug().Msg("manifest committed")

	purge(logger, applied)
	return nil
}

func currentDigest(root string) (string, error) {
	// #nosec G304 -- manifest path is derived from a resolved package root.
	content, err := os.ReadFile(layout.ManifestPath(root))
	if err != nil {
		return "", coreerrors.Mark(coreerrors.ErrConcurrentModification, err, "re-read %s", layout.ManifestFileName)
	}
	digest, err := manifest.Digest(content)
	if err != nil {
		return "", coreerrors.Mark(coreerrors.ErrConcurrentModification, err, "re-read %s", layout.ManifestFileName)
	}
	return digest, nil
}

func abort(logger zerolog.Logger, applied []appliedOp, cause error) error {
	if undoErr := rollback(applied); undoErr != nil {
		logger.Error().Err(cause).AnErr("undo", undoErr).Msg("transaction aborted and file changes could not be undone")
		persistErr := coreerrors.Mark(coreerrors.ErrPersistFailed, errors.Join(cause, undoErr), "undo file changes")
		return coreerrors.WithHint(persistErr, "package is inconsistent: artifact files were modified without a manifest update, run probkit doctor")
	}
	logger.Debug().Err(cause).Msg("transaction aborted, file changes undone")
	return cause
}
