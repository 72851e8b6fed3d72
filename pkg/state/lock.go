package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// ErrLockBusy indicates another tick currently holds the lock — the
// orchestrator's graceful-skip case, never a fatal error.
var ErrLockBusy = errors.New("lock busy")

const lockFileName = "tick.lock"

type lockPayload struct {
	PID      int       `json:"pid"`
	Token    string    `json:"token"`
	Acquired time.Time `json:"acquired_at"`
}

// Lock is a held advisory lock. Release must be called exactly once.
type Lock struct {
	store *Store
	token string
}

// TryLock attempts to acquire the named advisory lock without blocking.
// If the lock file exists but its holder process is no longer alive, or
// the lock is older than staleAfter, it is reclaimed. Otherwise ErrLockBusy
// is returned so the caller can skip this tick gracefully.
func (s *Store) TryLock(staleAfter time.Duration) (*Lock, error) {
	path := s.path(lockFileName)

	if existing, ok := readLockPayload(path); ok {
		if !processAlive(existing.PID) || time.Since(existing.Acquired) > staleAfter {
			_ = os.Remove(path)
		} else {
			return nil, ErrLockBusy
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLockBusy
		}
		return nil, fmt.Errorf("%w: creating lock: %v", ErrStateIO, err)
	}
	defer f.Close()

	token := uuid.NewString()
	payload := lockPayload{PID: os.Getpid(), Token: token, Acquired: time.Now()}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding lock payload: %v", ErrStateIO, err)
	}
	if _, err := f.Write(data); err != nil {
		return nil, fmt.Errorf("%w: writing lock: %v", ErrStateIO, err)
	}

	return &Lock{store: s, token: token}, nil
}

// Release removes the lock file, but only if it is still held by this
// token (defense against a racing reclaim).
func (l *Lock) Release() error {
	path := l.store.path(lockFileName)
	existing, ok := readLockPayload(path)
	if !ok || existing.Token != l.token {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: releasing lock: %v", ErrStateIO, err)
	}
	return nil
}

func readLockPayload(path string) (lockPayload, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return lockPayload{}, false
	}
	var p lockPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return lockPayload{}, false
	}
	return p, true
}

// WithLock acquires the named advisory lock, runs fn, and releases the
// lock unconditionally afterward — including on panic, so a cleanup
// handler further up the call stack still observes a released lock.
func (s *Store) WithLock(staleAfter time.Duration, fn func() error) error {
	lock, err := s.TryLock(staleAfter)
	if err != nil {
		return err
	}
	defer lock.Release()
	return fn()
}

// processAlive reports whether pid refers to a live process. On the
// platforms tickctl targets, signal 0 performs existence/permission
// checks without actually signaling the process.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil
}
