package service

import (
	"context"
	"sync"
)

// LocalLocker serializes mutations per alias within one process. It is
// used when no Redis lock is configured.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*aliasLock
}

type aliasLock struct {
	ch      chan struct{}
	waiters int
}

// NewLocalLocker creates a LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*aliasLock)}
}

// Lock blocks until alias is free or ctx is done.
func (l *LocalLocker) Lock(ctx context.Context, alias string) (func(), error) {
	l.mu.Lock()
	al, ok := l.locks[alias]
	if !ok {
		al = &aliasLock{ch: make(chan struct{}, 1)}
		l.locks[alias] = al
	}
	al.waiters++
	l.mu.Unlock()

	select {
	case al.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(alias, al, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(alias, al, true) })
	}, nil
}

func (l *LocalLocker) release(alias string, al *aliasLock, held bool) {
	if held {
		<-al.ch
	}
	l.mu.Lock()
	al.waiters--
	if al.waiters == 0 {
		delete(l.locks, alias)
	}
	l.mu.Unlock()
}
