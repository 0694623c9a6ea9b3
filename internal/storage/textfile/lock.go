package textfile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"

	"github.com/steveyegge/appmgr/internal/debug"
	"github.com/steveyegge/appmgr/internal/storage"
)

const (
	// DefaultLockTimeout is how long Load and Save wait for the data lock
	// when no explicit timeout is configured.
	DefaultLockTimeout = 30 * time.Second

	// lockPollInterval is the first retry delay; later retries back off.
	lockPollInterval = 50 * time.Millisecond

	lockMaxInterval = time.Second
)

var errLockBusy = errors.New("lock held by another process")

// dataLock coordinates access to one data file between processes. Readers
// take a shared lock and writers an exclusive one on "<data file>.lock".
type dataLock struct {
	flock   *flock.Flock
	timeout time.Duration
	mode    string
}

func newDataLock(dataPath string, timeout time.Duration) *dataLock {
	return &dataLock{
		flock:   flock.New(dataPath + ".lock"),
		timeout: timeout,
	}
}

func newLockBackoff(timeout time.Duration) backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = lockPollInterval
	bo.MaxInterval = lockMaxInterval
	bo.MaxElapsedTime = timeout
	return bo
}

// acquire takes the lock, retrying with exponential backoff until the
// timeout. A zero timeout tries exactly once.
func (l *dataLock) acquire(ctx context.Context, exclusive bool) error {
	mode := "shared"
	if exclusive {
		mode = "exclusive"
	}

	tryAcquire := func() error {
		var (
			locked bool
			err    error
		)
		if exclusive {
			locked, err = l.flock.TryLock()
		} else {
			locked, err = l.flock.TryRLock()
		}
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to acquire %s lock %s: %w", mode, l.flock.Path(), err))
		}
		if !locked {
			return errLockBusy
		}
		return nil
	}

	start := time.Now()
	var err error
	if l.timeout <= 0 {
		err = tryAcquire()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
	} else {
		err = backoff.Retry(tryAcquire, backoff.WithContext(newLockBackoff(l.timeout), ctx))
	}

	switch {
	case err == nil:
		l.mode = mode
		debug.Logf("acquired %s lock after %v: %s\n", mode, time.Since(start), l.flock.Path())
		return nil
	case errors.Is(err, errLockBusy):
		return fmt.Errorf("%w: %s lock on %s after %v (another process may be writing, try again in a moment)",
			storage.ErrLockTimeout, mode, l.flock.Path(), time.Since(start).Round(time.Millisecond))
	default:
		return err
	}
}

// release is safe to call more than once.
func (l *dataLock) release() error {
	if l.flock == nil || !l.flock.Locked() && !l.flock.RLocked() {
		return nil
	}
	debug.Logf("releasing %s lock: %s\n", l.mode, l.flock.Path())
	return l.flock.Unlock()
}

// withLock runs fn while holding the lock in the requested mode.
func withLock(ctx context.Context, dataPath string, timeout time.Duration, exclusive bool, fn func() error) error {
	lock := newDataLock(dataPath, timeout)
	if err := lock.acquire(ctx, exclusive); err != nil {
		return err
	}
	defer func() { _ = lock.release() }()

	return fn()
}
