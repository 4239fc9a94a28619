package errors

import (
	stderrors "errors"
	"testing"
)

func TestWrapRoundTrip(t *testing.T) {
	base := stderrors.New("boom")
	err := Wrap(base, CategoryIOFailure, "io_write_failed", "check directory permissions", true)
	if err == nil {
		t.Fatal("expected wrapped error")
	}
	if CategoryOf(err) != CategoryIOFailure {
		t.Fatalf("unexpected category: %s", CategoryOf(err))
	}
	if CodeOf(err) != "io_write_failed" {
		t.Fatalf("unexpected code: %s", CodeOf(err))
	}
	if HintOf(err) != "check directory permissions" {
		t.Fatalf("unexpected hint: %s", HintOf(err))
	}
	if !RetryableOf(err) {
		t.Fatal("expected retryable true")
	}
	if !stderrors.Is(err, base) {
		t.Fatal("expected wrapped error to preserve cause")
	}
}

func TestUnknownErrorDefaults(t *testing.T) {
	err := stderrors.New("plain")
	if CategoryOf(err) != "" {
		t.Fatalf("unexpected category: %s", CategoryOf(err))
	}
	if CodeOf(err) != "" {
		t.Fatalf("unexpected code: %s", CodeOf(err))
	}
	if HintOf(err) != "" {
		t.Fatalf("unexpected hint: %s", HintOf(err))
	}
	if RetryableOf(err) {
		t.Fatal("unexpected retryable true")
	}
}

func TestWrapNilCauseReturnsNil(t *testing.T) {
	if got := Wrap(nil, CategoryInternalFailure, "internal_failure", "retry later", false); got != nil {
		t.Fatalf("expected nil wrapped error, got=%v", got)
	}
}

func TestClassifiedErrorNilCauseDefaults(t *testing.T) {
	err := &classifiedError{
		category:  CategoryStateContention,
		code:      "concurrent_modification",
		hint:      "retry later",
		retryable: true,
	}
	if err.Error() != "unknown error" {
		t.Fatalf("unexpected nil-cause error text: %s", err.Error())
	}
	if err.Unwrap() != nil {
		t.Fatalf("expected unwrap nil for nil cause")
	}
	if err.Category() != CategoryStateContention {
		t.Fatalf("unexpected category: %s", err.Category())
	}
	if err.Code() != "concurrent_modification" {
		t.Fatalf("unexpected code: %s", err.Code())
	}
	if err.Hint() != "retry later" {
		t.Fatalf("unexpected hint: %s", err.Hint())
	}
	if !err.Retryable() {
		t.Fatalf("expected retryable=true")
	}
}

func TestCategorySetIsStableAndUnique(t *testing.T) {
	categories := []Category{
		CategoryInvalidInput,
		CategoryNotFound,
		CategoryConflict,
		CategoryIOFailure,
		CategoryIntegrity,
		CategoryStateContention,
		CategoryInternalFailure,
	}
	seen := map[Category]struct{}{}
	for _, category := range categories {
		if category == "" {
			t.Fatalf("category must not be empty")
		}
		if _, exists := seen[category]; exists {
			t.Fatalf("duplicate category: %s", category)
		}
		seen[category] = struct{}{}
	}
	if len(seen) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(seen))
	}
}

func TestNewClassifiesSentinel(t *testing.T) {
	err := New(ErrNameConflict, "src/sources/%s already exists", "gen.cpp")
	if !stderrors.Is(err, ErrNameConflict) {
		t.Fatalf("expected name conflict sentinel in chain: %v", err)
	}
	if err.Error() != "name conflict: src/sources/gen.cpp already exists" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if CategoryOf(err) != CategoryConflict || CodeOf(err) != "name_conflict" {
		t.Fatalf("unexpected classification: %s/%s", CategoryOf(err), CodeOf(err))
	}
	if HintOf(err) == "" {
		t.Fatal("expected default hint")
	}
}

func TestMarkKeepsBothCauses(t *testing.T) {
	base := stderrors.New("disk full")
	err := Mark(ErrPersistFailed, base, "write manifest")
	if !stderrors.Is(err, ErrPersistFailed) || !stderrors.Is(err, base) {
		t.Fatalf("expected sentinel and cause in chain: %v", err)
	}
	if CategoryOf(err) != CategoryIntegrity {
		t.Fatalf("unexpected category: %s", CategoryOf(err))
	}
	if Mark(ErrPersistFailed, nil, "noop") != nil {
		t.Fatal("expected nil for nil cause")
	}
}

func TestWithHintOverridesHint(t *testing.T) {
	err := WithHint(New(ErrNotFound, "source %q", "gne.cpp"), "did you mean gen.cpp?")
	if HintOf(err) != "did you mean gen.cpp?" {
		t.Fatalf("unexpected hint: %s", HintOf(err))
	}
	if !stderrors.Is(err, ErrNotFound) {
		t.Fatal("expected sentinel preserved")
	}
	plain := stderrors.New("plain")
	if WithHint(plain, "x") != plain {
		t.Fatal("expected unclassified error unchanged")
	}
}

func TestRetryableOnlyForContention(t *testing.T) {
	if !RetryableOf(New(ErrConcurrentModification, "lock held")) {
		t.Fatal("expected contention to be retryable")
	}
	if RetryableOf(New(ErrCopyFailed, "missing.cpp")) {
		t.Fatal("expected copy failure to be non-retryable")
	}
}

func TestWrappedIOFailureMatchesNoSentinel(t *testing.T) {
	err := Wrap(stderrors.New("stat: permission denied"), CategoryIOFailure, "stat_failed", "", false)
	for sentinel := range classifications {
		if stderrors.Is(err, sentinel) {
			t.Fatalf("plain I/O failure unexpectedly matches %v", sentinel)
		}
	}
	if CategoryOf(err) != CategoryIOFailure || CodeOf(err) != "stat_failed" {
		t.Fatalf("unexpected classification: %s/%s", CategoryOf(err), CodeOf(err))
	}
}
