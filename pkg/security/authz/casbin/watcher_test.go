package casbin

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatcherDispatchBeforeCallbackSet(t *testing.T) {
	w := &RedisWatcher{closeCh: make(chan struct{})}

	// A message arriving before SetUpdateCallback is a no-op.
	assert.NotPanics(t, func() { w.dispatch("update") })
}

func TestWatcherCallbackSetWhileDispatching(t *testing.T) {
	w := &RedisWatcher{closeCh: make(chan struct{})}

	var calls atomic.Int64
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			w.SetUpdateCallback(func(string) { calls.Add(1) })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			w.dispatch("update")
		}
	}()
	wg.Wait()

	w.SetUpdateCallback(func(string) { calls.Add(1) })
	w.dispatch("update")
	assert.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, 10*time.Millisecond)
}
