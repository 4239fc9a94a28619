package registry

import (
	"math"
	"strings"

	coreerrors "github.com/davidahmann/probkit/core/errors"
	"github.com/davidahmann/probkit/core/txn"
)

// SetTitle replaces the problem title.
func (r *Registrar) SetTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return coreerrors.New(coreerrors.ErrInvalidValue, "title must not be empty")
	}
	return r.modify("set_title", func(tx *txn.Tx) error {
		tx.Manifest().Title = trimmed
		return nil
	})
}

// SetTime sets the time limit in seconds.
func (r *Registrar) SetTime(seconds float64) error {
	if err := CheckTimeLimit(seconds); err != nil {
		return err
	}
	return r.modify("set_time", func(tx *txn.Tx) error {
		tx.Manifest().Time = seconds
		return nil
	})
}

// SetTags replaces the tag list after normalizing it.
func (r *Registrar) SetTags(tags []string) error {
	normalized := NormalizeTags(tags)
	return r.modify("set_tags", func(tx *txn.Tx) error {
		tx.Manifest().Tags = normalized
		return nil
	})
}

// CheckTimeLimit accepts finite positive time limits only.
func CheckTimeLimit(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return coreerrors.New(coreerrors.ErrInvalidValue, "time limit must be a positive number of seconds, got %v", seconds)
	}
	return nil
}

// ParseTags splits a comma separated list, trimming entries and dropping empty ones.
func ParseTags(raw string) []string {
	return NormalizeTags(strings.Split(raw, ","))
}

// NormalizeTags trims tags and drops empty entries.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		normalized = append(normalized, trimmed)
	}
	return normalized
}
