package hostlock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/giantswarm/zksupervisor/internal/fileutil"
)

// retryInterval is the interval between consecutive attempts to acquire the
// lock.
const retryInterval = 50 * time.Millisecond

// Lock is a held host lock.
type Lock struct {
	fl     *flock.Flock
	logger *slog.Logger
}

// Acquire takes an exclusive lock on path, creating its directory if needed.
// It retries until the lock is free or ctx is done.
func Acquire(ctx context.Context, path string, logger *slog.Logger) (*Lock, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("prepare lock dir: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLockContext(ctx, retryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring host lock %s: %w", path, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring host lock %s: %w", path, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring host lock %s: lock not acquired", path)
	}

	logger.Debug("host lock acquired", "path", path)
	return &Lock{fl: fl, logger: logger}, nil
}

// Release unlocks and closes the lock file. The file is left on disk;
// removing it could invalidate a lock concurrently acquired by another
// process. Safe to call on a nil Lock.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.logger.Debug("failed to release host lock", "path", l.fl.Path(), "err", err)
	}
	l.fl = nil
}
