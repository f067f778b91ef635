// Package cache provides a two-tier key/value store: a shared remote tier (Redis) that is
// preferred whenever it answers, and a bounded in-process tier that takes over for any
// call where the remote tier errors or times out. Remote failures are logged and absorbed.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Options tunes a Store. Zero values fall back to the package defaults.
type Options struct {
	RemoteTimeout   time.Duration
	MaxLocalEntries int
	SweepInterval   time.Duration
	// Now overrides the clock used for local expiry; tests only.
	Now func() time.Time
}

const (
	defaultRemoteTimeout   = 250 * time.Millisecond
	defaultMaxLocalEntries = 10000
	defaultSweepInterval   = time.Minute
)

// Stats is a point-in-time snapshot of tier usage.
type Stats struct {
	RemoteHits     int64 `json:"remoteHits"`
	LocalHits      int64 `json:"localHits"`
	Misses         int64 `json:"misses"`
	Fallbacks      int64 `json:"fallbacks"`
	Evictions      int64 `json:"evictions"`
	Expired        int64 `json:"expired"`
	LocalEntries   int   `json:"localEntries"`
	RemoteAttached bool  `json:"remoteAttached"`
}

type Store struct {
	remote  RemoteTier
	local   *localTier
	timeout time.Duration
	logger  *zap.Logger

	remoteHits atomic.Int64
	localHits  atomic.Int64
	misses     atomic.Int64
	fallbacks  atomic.Int64
	evictions  atomic.Int64
	expired    atomic.Int64

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New builds a Store and starts its background sweep. remote may be nil, in which case
// every call is served by the local tier.
func New(remote RemoteTier, opts Options, logger *zap.Logger) *Store {
	if opts.RemoteTimeout <= 0 {
		opts.RemoteTimeout = defaultRemoteTimeout
	}
	if opts.MaxLocalEntries <= 0 {
		opts.MaxLocalEntries = defaultMaxLocalEntries
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		remote:  remote,
		local:   newLocalTier(opts.MaxLocalEntries, opts.Now),
		timeout: opts.RemoteTimeout,
		logger:  logger.With(zap.String("component", "cache")),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.sweepLoop(opts.SweepInterval)
	return s
}

// Set stores value under key for ttl. The only error returned is a value that cannot be
// encoded; tier failures are absorbed.
func (s *Store) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if s.remote != nil {
		rctx, cancel := s.remoteContext(ctx)
		err = s.remote.Set(rctx, key, data, ttl)
		cancel()
		if err == nil {
			// A copy written during an outage must not resurface once the remote tier is back.
			s.local.delete(key)
			return nil
		}
		s.degraded("set", key, err)
	}

	if n := s.local.set(key, data, ttl); n > 0 {
		s.evictions.Add(int64(n))
	}
	return nil
}

// Get decodes the value under key into dest. found is false when neither tier holds a
// live entry. The only error returned is a payload that cannot be decoded into dest.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	if s.remote != nil {
		rctx, cancel := s.remoteContext(ctx)
		data, ok, err := s.remote.Get(rctx, key)
		cancel()
		switch {
		case err != nil:
			s.degraded("get", key, err)
		case ok:
			s.remoteHits.Add(1)
			return true, json.Unmarshal(data, dest)
		}
	}

	data, ok := s.local.get(key)
	if !ok {
		s.misses.Add(1)
		return false, nil
	}
	s.localHits.Add(1)
	return true, json.Unmarshal(data, dest)
}

// Delete removes keys from both tiers.
func (s *Store) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if s.remote != nil {
		rctx, cancel := s.remoteContext(ctx)
		_, err := s.remote.Del(rctx, keys...)
		cancel()
		if err != nil {
			s.degraded("delete", keys[0], err)
		}
	}
	for _, key := range keys {
		s.local.delete(key)
	}
}

// DeletePattern removes every key matching a Redis glob pattern from both tiers and
// returns the number of distinct keys removed.
func (s *Store) DeletePattern(ctx context.Context, pattern string) int {
	removed := make(map[string]struct{})

	if s.remote != nil {
		rctx, cancel := s.remoteContext(ctx)
		keys, err := s.remote.Keys(rctx, pattern)
		if err == nil && len(keys) > 0 {
			_, err = s.remote.Del(rctx, keys...)
		}
		cancel()
		if err != nil {
			s.degraded("delete_pattern", pattern, err)
		} else {
			for _, key := range keys {
				removed[key] = struct{}{}
			}
		}
	}

	for _, key := range s.local.deleteMatching(func(key string) bool { return matchGlob(pattern, key) }) {
		removed[key] = struct{}{}
	}
	return len(removed)
}

// Wrap returns the cached value for key, or calls fetch, caches its result for ttl and
// returns it. Concurrent misses each call fetch. A fetch error is returned as is and
// nothing is cached.
func Wrap[T any](ctx context.Context, s *Store, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	found, err := s.Get(ctx, key, &cached)
	if err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		s.Delete(ctx, key)
	} else if found {
		return cached, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := s.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("Failed to encode value for cache", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}

func (s *Store) Stats() Stats {
	return Stats{
		RemoteHits:     s.remoteHits.Load(),
		LocalHits:      s.localHits.Load(),
		Misses:         s.misses.Load(),
		Fallbacks:      s.fallbacks.Load(),
		Evictions:      s.evictions.Load(),
		Expired:        s.expired.Load(),
		LocalEntries:   s.local.len(),
		RemoteAttached: s.remote != nil,
	}
}

// Sweep removes every expired local entry now and returns how many were dropped.
func (s *Store) Sweep() int {
	n := s.local.sweep()
	if n > 0 {
		s.expired.Add(int64(n))
	}
	return n
}

// Close stops the sweep and drops the local tier. Nothing is flushed to the remote tier.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		s.local.clear()
	})
}

func (s *Store) sweepLoop(interval time.Duration) {
	defer close(s.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("Swept expired local entries", zap.Int("count", n))
			}
		}
	}
}

func (s *Store) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Store) degraded(op, key string, err error) {
	s.fallbacks.Add(1)
	s.logger.Warn("Remote cache unavailable, using local tier",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}
