// Package registry implements the artifact registrars: every add, remove and
// set operation on a package is a single txn.Modify transaction, so the
// manifest and the artifact files change together or not at all.
package registry

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/manifest"
	"github.com/davidahmann/probkit/core/txn"
)

const maxSuggestions = 3

// Options configures a Registrar.
type Options struct {
	// Toolchains drives the build description of new sources and solutions.
	// Nil means manifest.DefaultToolchains.
	Toolchains manifest.Toolchains
	Txn        txn.Options
}

// Registrar operates on one resolved package root.
type Registrar struct {
	root       string
	toolchains manifest.Toolchains
	txnOptions txn.Options
}

// New returns a registrar for the package at root.
func New(root string, opts Options) *Registrar {
	toolchains := opts.Toolchains
	if toolchains == nil {
		toolchains = manifest.DefaultToolchains()
	}
	return &Registrar{
		root:       root,
		toolchains: toolchains,
		txnOptions: opts.Txn,
	}
}

// Root is the package root the registrar operates on.
func (r *Registrar) Root() string {
	return r.root
}

func (r *Registrar) modify(operation string, mutate txn.Mutation) error {
	err := txn.ModifyWithOptions(r.root, r.txnOptions, mutate)
	if err != nil {
		log.Debug().Err(err).Str("op", operation).Str("code", coreerrors.CodeOf(err)).Msg("registrar failed")
		return err
	}
	log.Debug().Str("op", operation).Str("root", r.root).Msg("registrar committed")
	return nil
}

// stageArtifact creates rel empty, or as a copy of from when from is set.
func stageArtifact(tx *txn.Tx, rel, from string) error {
	if strings.TrimSpace(from) == "" {
		return tx.CreateFile(rel, nil)
	}
	return tx.CopyFile(rel, from)
}

// notFound builds ErrNotFound for kind/name, suggesting close registered names.
func notFound(kind, name string, registered []string) error {
	err := coreerrors.New(coreerrors.ErrNotFound, "%s %q is not registered", kind, name)
	suggestions := suggest(name, registered)
	if len(suggestions) == 0 {
		return err
	}
	return coreerrors.WithHint(err, "did you mean "+strings.Join(suggestions, ", ")+"?")
}

func suggest(name string, registered []string) []string {
	if strings.TrimSpace(name) == "" || len(registered) == 0 {
		return nil
	}
	matches := fuzzy.Find(name, registered)
	suggestions := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if len(suggestions) == maxSuggestions {
			break
		}
		suggestions = append(suggestions, match.Str)
	}
	return suggestions
}
