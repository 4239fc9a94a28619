// Package layout owns the on-disk shape of a problem package:
//
//	<package>/problem_config.json
//	<package>/src/sources/      generators, validators, checkers
//	<package>/src/solutions/    reference solutions
//	<package>/testcases/input/
//	<package>/testcases/output/
//	<package>/text/             statements, tutorials, testcase notes
//	<package>/bin/              compiled binaries
package layout

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/fsx"
	"github.com/davidahmann/probkit/core/manifest"
)

const (
	ManifestFileName = "problem_config.json"
	LockFileName     = "." + ManifestFileName + ".lock"

	SourcesDir   = "src/sources"
	SolutionsDir = "src/solutions"
	InputDir     = "testcases/input"
	OutputDir    = "testcases/output"
	TextDir      = "text"
	BinDir       = "bin"

	dirMode      os.FileMode = 0o755
	manifestMode os.FileMode = 0o644
)

// Directories lists the package subdirectories in creation order. Parents come
// before children.
var Directories = []string{
	"src",
	SourcesDir,
	SolutionsDir,
	"testcases",
	InputDir,
	OutputDir,
	TextDir,
	BinDir,
}

// ArtifactDirectories are the directories whose files are registered in the manifest.
var ArtifactDirectories = []string{SourcesDir, SolutionsDir, InputDir, OutputDir}

func ManifestPath(root string) string {
	return filepath.Join(root, ManifestFileName)
}

func LockPath(root string) string {
	return filepath.Join(root, LockFileName)
}

// Rel joins a slash-separated package-relative path.
func Rel(dir, name string) string {
	return path.Join(dir, name)
}

// Abs resolves a slash-separated package-relative path against root.
func Abs(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

// BinFor returns the package-relative binary path for a source file name.
func BinFor(name string) string {
	stem := strings.TrimSuffix(name, path.Ext(name))
	return path.Join(BinDir, stem)
}

// Create scaffolds a new package at root and writes m as its manifest. The
// package directory itself must not exist. Directories are created in order and
// the manifest is written last; a failure part way leaves the partial tree in
// place, recognizable by the missing manifest.
func Create(root string, m manifest.Manifest) error {
	encoded, err := manifest.Encode(m)
	if err != nil {
		return err
	}
	if err := os.Mkdir(root, dirMode); err != nil {
		if os.IsExist(err) {
			return coreerrors.New(coreerrors.ErrNameConflict, "package directory %s already exists", root)
		}
		return coreerrors.Wrap(fmt.Errorf("create package directory: %w", err), coreerrors.CategoryIOFailure, "create_failed", "check directory permissions", false)
	}
	for _, dir := range Directories {
		if err := os.Mkdir(Abs(root, dir), dirMode); err != nil {
			return coreerrors.Wrap(fmt.Errorf("create %s: %w", dir, err), coreerrors.CategoryIOFailure, "create_failed", "remove the partial package directory and retry", false)
		}
	}
	if err := fsx.WriteFileAtomic(ManifestPath(root), encoded, manifestMode); err != nil {
		return coreerrors.Mark(coreerrors.ErrPersistFailed, err, "write %s", ManifestFileName)
	}
	log.Debug().Str("root", root).Msg("package created")
	return nil
}

// FindRoot returns the nearest ancestor of start, start included, that holds a
// manifest file. It is not cached; the answer can change between invocations.
func FindRoot(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", coreerrors.Mark(coreerrors.ErrPackageNotFound, err, "resolve %s", start)
	}
	for {
		info, statErr := os.Stat(ManifestPath(current))
		if statErr == nil && !info.IsDir() {
			return current, nil
		}
		if statErr != nil && !os.IsNotExist(statErr) {
			return "", coreerrors.Mark(coreerrors.ErrPackageNotFound, statErr, "inspect %s", current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", coreerrors.New(coreerrors.ErrPackageNotFound, "no %s found in %s or any parent directory", ManifestFileName, start)
		}
		current = parent
	}
}

// CheckArtifactName accepts plain file names only, so every registered
// artifact stays inside its directory.
func CheckArtifactName(name string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return coreerrors.New(coreerrors.ErrInvalidName, "artifact name is required")
	case trimmed != name:
		return coreerrors.New(coreerrors.ErrInvalidName, "artifact name %q has surrounding whitespace", name)
	case name == "." || name == "..":
		return coreerrors.New(coreerrors.ErrInvalidName, "artifact name %q is reserved", name)
	case strings.ContainsAny(name, `/\`):
		return coreerrors.New(coreerrors.ErrInvalidName, "artifact name %q must not contain path separators", name)
	case fsx.IsTrashName(name) || fsx.IsTempName(name) || name == LockFileName:
		return coreerrors.New(coreerrors.ErrInvalidName, "artifact name %q collides with internal files", name)
	}
	return nil
}
