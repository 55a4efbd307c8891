package lock

import (
	"context"
	"sync"
	"time"
)

var (
	mu    sync.Mutex
	slots = map[string]chan struct{}{}
)

// slot buffered channel per key, holding the key means owning its single token
func slot(key string) chan struct{} {
	mu.Lock()
	defer mu.Unlock()
	ch, ok := slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		slots[key] = ch
	}
	return ch
}

// WithDelay runs safeCode holding the key, waits up to wait for a busy key
func WithDelay(ctx context.Context, key string, wait time.Duration, safeCode func() error) (success bool, err error) {
	ch := slot(key)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, nil
	}
	defer func() { <-ch }()
	return true, safeCode()
}
