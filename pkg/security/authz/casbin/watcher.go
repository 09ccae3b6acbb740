package casbin

import (
	"context"
	"sync"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
	"github.com/redis/go-redis/v9"
)

// ChannelName is the Redis channel for policy updates.
const ChannelName = "admin-guard:policy:update"

// RedisWatcher publishes and subscribes policy update notifications over a
// Redis channel so that multiple admin-guard instances stay in sync.
type RedisWatcher struct {
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	closeCh chan struct{}
	wg      sync.WaitGroup

	// mu guards callback: it is set after the subscribe goroutine is
	// already running.
	mu       sync.RWMutex
	callback func(string)
}

var _ Watcher = (*RedisWatcher)(nil)

// NewRedisWatcher creates a watcher on the given client. An optional channel
// name overrides the default.
func NewRedisWatcher(client *redis.Client, channel ...string) *RedisWatcher {
	ch := ChannelName
	if len(channel) > 0 {
		ch = channel[0]
	}

	w := &RedisWatcher{
		client:  client,
		channel: ch,
		closeCh: make(chan struct{}),
	}

	w.startSubscribe()
	return w
}

// executeCallback runs the callback on the ants pool to bound goroutine
// growth; if the pool rejects the task it falls back to a plain goroutine.
func executeCallback(callback func(string), payload string) {
	if callback == nil {
		return
	}

	task := func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("Recovered from panic in watcher callback",
					"error", r,
					"component", "casbin.watcher",
				)
			}
		}()

		callback(payload)
	}

	if err := ants.Submit(task); err != nil {
		logger.Warnw("Failed to submit watcher callback to pool, fallback to goroutine",
			"error", err.Error(),
			"component", "casbin.watcher",
		)
		go task()
	}
}

func (w *RedisWatcher) startSubscribe() {
	w.pubsub = w.client.Subscribe(context.Background(), w.channel)
	w.wg.Add(1)

	go func() {
		defer w.wg.Done()

		ch := w.pubsub.Channel()

		for {
			select {
			case <-w.closeCh:
				return
			case msg, ok := <-ch:
				if !ok {
					select {
					case <-w.closeCh:
					default:
						logger.Warnw("Redis subscription channel closed unexpectedly",
							"component", "casbin.watcher",
						)
					}
					return
				}
				w.dispatch(msg.Payload)
			}
		}
	}()
}

// dispatch hands a received payload to the registered callback.
func (w *RedisWatcher) dispatch(payload string) {
	w.mu.RLock()
	callback := w.callback
	w.mu.RUnlock()
	executeCallback(callback, payload)
}

// SetUpdateCallback sets the callback function to handle policy updates.
func (w *RedisWatcher) SetUpdateCallback(callback func(string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callback = callback
}

// Update publishes a policy update message to Redis.
func (w *RedisWatcher) Update() error {
	return w.client.Publish(context.Background(), w.channel, "update").Err()
}

// Close closes the Redis watcher.
func (w *RedisWatcher) Close() {
	close(w.closeCh)
	if w.pubsub != nil {
		_ = w.pubsub.Close()
	}
	w.wg.Wait()
}
