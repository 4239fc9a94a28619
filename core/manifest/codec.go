package manifest

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gowebpki/jcs"
	"github.com/kaptinlin/jsonschema"

	coreerrors "github.com/davidahmann/probkit/core/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiledSchema, schemaErr = compiler.Compile(schemaJSON)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile manifest schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

// Decode parses manifest bytes. Anything that is not valid JSON matching the
// manifest schema, or carries an out of range validator/checker, is rejected
// with ErrMalformedManifest.
func Decode(data []byte) (Manifest, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Manifest{}, coreerrors.New(coreerrors.ErrMalformedManifest, "manifest is empty")
	}
	if !json.Valid(data) {
		return Manifest{}, coreerrors.New(coreerrors.ErrMalformedManifest, "manifest is not valid JSON")
	}
	schema, err := loadSchema()
	if err != nil {
		return Manifest{}, coreerrors.Wrap(err, coreerrors.CategoryInternalFailure, "schema_compile_failed", "", false)
	}
	result := schema.ValidateJSON(data)
	if !result.IsValid() {
		return Manifest{}, coreerrors.New(coreerrors.ErrMalformedManifest, "schema validation failed: %v", result.Errors)
	}

	var decoded Manifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		return Manifest{}, coreerrors.Mark(coreerrors.ErrMalformedManifest, err, "decode manifest")
	}
	if err := decoded.checkReferences(); err != nil {
		return Manifest{}, err
	}
	decoded.normalize()
	return decoded, nil
}

// Encode serializes the manifest as indented JSON with a trailing newline.
// Equal manifests always encode to identical bytes.
func Encode(m Manifest) ([]byte, error) {
	m.normalize()
	encoded, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(encoded, '\n'), nil
}

// Digest returns the sha256 hex digest of the RFC 8785 canonical form of data,
// so formatting-only edits do not change it.
func Digest(data []byte) (string, error) {
	canonical, err := jcs.Transform(data)
	if err != nil {
		return "", coreerrors.Mark(coreerrors.ErrMalformedManifest, err, "canonicalize manifest")
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func (m Manifest) checkReferences() error {
	if m.Validator != nil && (*m.Validator < 0 || *m.Validator >= len(m.Sources)) {
		return coreerrors.New(coreerrors.ErrMalformedManifest, "validator index %d out of range for %d sources", *m.Validator, len(m.Sources))
	}
	if m.Checker != nil && (*m.Checker < 0 || *m.Checker >= len(m.Sources)) {
		return coreerrors.New(coreerrors.ErrMalformedManifest, "checker index %d out of range for %d sources", *m.Checker, len(m.Sources))
	}
	for index, solution := range m.Solutions {
		if !solution.Verdict.Valid() {
			return coreerrors.New(coreerrors.ErrMalformedManifest, "solution %d has unknown verdict %q", index, solution.Verdict)
		}
	}
	return nil
}
