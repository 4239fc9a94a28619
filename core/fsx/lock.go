package fsx

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	lockRetry      = 10 * time.Millisecond
	lockStaleAfter = 2 * time.Minute
)

// ErrLockTimeout is returned when another holder keeps the lock past the timeout.
var ErrLockTimeout = errors.New("lock timeout")

type LockOptions struct {
	// Timeout bounds the wait for a held lock. Zero makes a single attempt.
	Timeout    time.Duration
	Retry      time.Duration
	StaleAfter time.Duration
}

// WithLock runs fn while holding an advisory lock file at lockPath. The owner
// record is written into the lock file so a stuck lock can be attributed.
func WithLock(lockPath string, owner []byte, opts LockOptions, fn func() error) error {
	opts = opts.withDefaults()
	start := time.Now()
	for {
		// #nosec G304 -- lock path is derived from a resolved package root.
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, _ = lockFile.Write(owner)
			_ = lockFile.Close()
			defer func() {
				_ = os.Remove(lockPath)
			}()
			return fn()
		}
		if !isLockContention(err, lockPath) {
			return fmt.Errorf("acquire lock: %w", err)
		}
		if shouldRecoverStaleLock(lockPath, time.Now().UTC(), opts.StaleAfter) {
			_ = os.Remove(lockPath)
			continue
		}
		if time.Since(start) >= opts.Timeout {
			return fmt.Errorf("acquire lock %s: %w", lockPath, ErrLockTimeout)
		}
		time.Sleep(opts.Retry)
	}
}

func (opts LockOptions) withDefaults() LockOptions {
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	if opts.Retry <= 0 {
		opts.Retry = lockRetry
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = lockStaleAfter
	}
	return opts
}

func isLockContention(acquireErr error, lockPath string) bool {
	if os.IsExist(acquireErr) {
		return true
	}
	if !os.IsPermission(acquireErr) {
		return false
	}
	_, statErr := os.Stat(lockPath)
	return statErr == nil
}

func shouldRecoverStaleLock(lockPath string, now time.Time, staleAfter time.Duration) bool {
	// #nosec G304 -- lock path is derived from a resolved package root.
	info, err := os.Stat(lockPath)
	if err != nil {
		return false
	}
	return now.Sub(info.ModTime().UTC()) > staleAfter
}
