package stream

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the handful of commands the stream package uses.
// Anything else panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable

	mu       sync.Mutex
	values   map[string]string
	ttls     map[string]time.Duration
	streams  map[string][]map[string]interface{}
	acked    []string
	xaddErr  error
	writeErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values:  make(map[string]string),
		ttls:    make(map[string]time.Duration),
		streams: make(map[string][]map[string]interface{}),
	}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return redis.NewStatusResult("", f.writeErr)
	}
	f.values[key] = toString(value)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	val, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (f *fakeRedis) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.xaddErr != nil {
		return redis.NewStringResult("", f.xaddErr)
	}
	values, ok := a.Values.(map[string]interface{})
	if !ok {
		return redis.NewStringResult("", errors.New("unsupported values type"))
	}
	f.streams[a.Stream] = append(f.streams[a.Stream], values)
	return redis.NewStringResult(fmt.Sprintf("%d-0", len(f.streams[a.Stream])), nil)
}

func (f *fakeRedis) XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.acked = append(f.acked, ids...)
	return redis.NewIntResult(int64(len(ids)), nil)
}

func (f *fakeRedis) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	if err := fn(&fakePipe{store: f}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return nil, f.writeErr
}

func (f *fakeRedis) value(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeRedis) entries(stream string) []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.streams[stream]...)
}

func (f *fakeRedis) ackedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.acked...)
}

type fakePipe struct {
	redis.Pipeliner
	store *fakeRedis
}

func (p *fakePipe) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	p.store.mu.Lock()
	defer p.store.mu.Unlock()

	if p.store.writeErr == nil {
		p.store.values[key] = toString(value)
		p.store.ttls[key] = expiration
	}
	return redis.NewStatusResult("OK", nil)
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}
