package errors

import (
	"errors"
	"fmt"
)

type Category string

const (
	CategoryInvalidInput    Category = "invalid_input"
	CategoryNotFound        Category = "not_found"
	CategoryConflict        Category = "conflict"
	CategoryIOFailure       Category = "io_failure"
	CategoryIntegrity       Category = "integrity"
	CategoryStateContention Category = "state_contention"
	CategoryInternalFailure Category = "internal_failure"
)

// Sentinel failures of the package core, matched with errors.Is. Plain I/O
// failures (stat, rename, mkdir, config read) carry a category and code but no
// sentinel; use CategoryOf for those.
var (
	ErrPackageNotFound        = errors.New("package not found")
	ErrManifestUnreadable     = errors.New("manifest unreadable")
	ErrMalformedManifest      = errors.New("malformed manifest")
	ErrNameConflict           = errors.New("name conflict")
	ErrCopyFailed             = errors.New("copy failed")
	ErrNotFound               = errors.New("not found")
	ErrPersistFailed          = errors.New("persist failed")
	ErrReferenceInUse         = errors.New("reference in use")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrInvalidName            = errors.New("invalid name")
	ErrInvalidValue           = errors.New("invalid value")
)

type classification struct {
	category  Category
	code      string
	hint      string
	retryable bool
}

var classifications = map[error]classification{
	ErrPackageNotFound:        {CategoryNotFound, "package_not_found", "run inside a problem package or create one with probkit new", false},
	ErrManifestUnreadable:     {CategoryIOFailure, "manifest_unreadable", "check that problem_config.json exists and is readable", false},
	ErrMalformedManifest:      {CategoryIntegrity, "malformed_manifest", "fix problem_config.json by hand or restore it from version control", false},
	ErrNameConflict:           {CategoryConflict, "name_conflict", "choose another name or remove the existing artifact first", false},
	ErrCopyFailed:             {CategoryInvalidInput, "copy_failed", "check that the file to copy exists and is readable", false},
	ErrNotFound:               {CategoryNotFound, "not_found", "run probkit info to list registered artifacts", false},
	ErrPersistFailed:          {CategoryIntegrity, "persist_failed", "package may be inconsistent, run probkit doctor", false},
	ErrReferenceInUse:         {CategoryConflict, "reference_in_use", "clear the validator or checker before removing its source", false},
	ErrConcurrentModification: {CategoryStateContention, "concurrent_modification", "another probkit process is editing this package, retry when it finishes", true},
	ErrInvalidName:            {CategoryInvalidInput, "invalid_name", "use lowercase letters, digits and '-' for problem names and plain file names for artifacts", false},
	ErrInvalidValue:           {CategoryInvalidInput, "invalid_value", "check command usage", false},
}

type classifiedError struct {
	category  Category
	code      string
	hint      string
	retryable bool
	cause     error
}

func (e *classifiedError) Error() string {
	if e.cause == nil {
		return "unknown error"
	}
	return e.cause.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.cause
}

func (e *classifiedError) Category() Category {
	return e.category
}

func (e *classifiedError) Code() string {
	return e.code
}

func (e *classifiedError) Hint() string {
	return e.hint
}

func (e *classifiedError) Retryable() bool {
	return e.retryable
}

func Wrap(cause error, category Category, code, hint string, retryable bool) error {
	if cause == nil {
		return nil
	}
	return &classifiedError{
		category:  category,
		code:      code,
		hint:      hint,
		retryable: retryable,
		cause:     cause,
	}
}

// New builds a classified error for one of the package sentinels. The message
// reads "<sentinel>: <detail>" and errors.Is(err, sentinel) holds.
func New(sentinel error, format string, args ...any) error {
	cause := fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
	return classify(sentinel, cause)
}

// Mark attaches a sentinel to an underlying error, keeping both in the chain.
func Mark(sentinel error, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	cause := fmt.Errorf("%w: %s: %w", sentinel, fmt.Sprintf(format, args...), err)
	return classify(sentinel, cause)
}

func classify(sentinel, cause error) error {
	entry, ok := classifications[sentinel]
	if !ok {
		entry = classification{category: CategoryInternalFailure, code: "internal_failure"}
	}
	return Wrap(cause, entry.category, entry.code, entry.hint, entry.retryable)
}

// WithHint returns err with its hint replaced, keeping category and code.
func WithHint(err error, hint string) error {
	var classified *classifiedError
	if !errors.As(err, &classified) {
		return err
	}
	return &classifiedError{
		category:  classified.category,
		code:      classified.code,
		hint:      hint,
		retryable: classified.retryable,
		cause:     classified.cause,
	}
}

func CategoryOf(err error) Category {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.category
	}
	return ""
}

func CodeOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.code
	}
	return ""
}

func HintOf(err error) string {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.hint
	}
	return ""
}

func RetryableOf(err error) bool {
	var classified *classifiedError
	if errors.As(err, &classified) {
		return classified.retryable
	}
	return false
}
