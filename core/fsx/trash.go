package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const trashMarker = ".trash-"

// MoveToTrash renames path to a hidden sibling so the removal can be undone
// with Restore or made final with Purge.
func MoveToTrash(path, tag string) (string, error) {
	cleanTag := strings.TrimSpace(tag)
	if cleanTag == "" {
		return "", fmt.Errorf("trash tag is required")
	}
	trashPath := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+trashMarker+cleanTag)
	if err := os.Rename(path, trashPath); err != nil {
		return "", fmt.Errorf("move %s to trash: %w", filepath.Base(path), err)
	}
	return trashPath, nil
}

// Restore moves a trashed file back to its original path.
func Restore(trashPath, originalPath string) error {
	if err := os.Rename(trashPath, originalPath); err != nil {
		return fmt.Errorf("restore %s: %w", filepath.Base(originalPath), err)
	}
	return nil
}

func Purge(trashPath string) error {
	if err := os.Remove(trashPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("purge %s: %w", filepath.Base(trashPath), err)
	}
	return nil
}

// IsTrashName reports whether a directory entry name was produced by MoveToTrash.
func IsTrashName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, trashMarker)
}

// IsTempName reports whether a directory entry name is a WriteFileAtomic leftover.
func IsTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp-")
}
