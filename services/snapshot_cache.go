package services

import (
	"context"
	"sync"
	"time"

	"rental-pricing-api/dataset"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
)

const (
	snapshotKeyPrefix = "pricing:snapshot:"

	// snapshotFlightTimeout bounds a shared load. The flight outlives the
	// caller that started it, so it cannot use that caller's context.
	snapshotFlightTimeout = 60 * time.Second
)

// SnapshotCache serves dataset snapshots with a time-to-live. Parsed
// frames are kept in memory; raw bodies are shared through Redis when it
// is available. A TTL of zero fetches on every call.
type SnapshotCache struct {
	fetcher dataset.Fetcher
	remote  *CacheService
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]snapshotEntry
	group   singleflight.Group
}

type snapshotEntry struct {
	frame   *dataset.Frame
	expires time.Time
}

type snapshotEnvelope struct {
	URL       string    `msgpack:"url"`
	FetchedAt time.Time `msgpack:"fetched_at"`
	Body      []byte    `msgpack:"body"`
}

func NewSnapshotCache(fetcher dataset.Fetcher, remote *CacheService, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{
		fetcher: fetcher,
		remote:  remote,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]snapshotEntry),
	}
}

func (s *SnapshotCache) TTL() time.Duration {
	return s.ttl
}

// Get returns the frame behind spec. Fetch and decode failures are
// reported as upstream errors.
func (s *SnapshotCache) Get(ctx context.Context, spec dataset.Spec) (*dataset.Frame, error) {
	if s.ttl <= 0 {
		frame, _, err := s.load(ctx, spec)
		return frame, err
	}

	if frame, ok := s.lookup(spec.URL); ok {
		snapshotCacheHits.WithLabelValues("memory").Inc()
		return frame, nil
	}

	v, err, _ := s.group.Do(spec.URL, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotFlightTimeout)
		defer cancel()

		if frame, ok := s.fromRemote(ctx, spec); ok {
			snapshotCacheHits.WithLabelValues("redis").Inc()
			s.store(spec.URL, frame)
			return frame, nil
		}
		frame, body, err := s.load(ctx, spec)
		if err != nil {
			return nil, err
		}
		s.store(spec.URL, frame)
		s.toRemote(ctx, spec, body)
		return frame, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dataset.Frame), nil
}

// Invalidate drops a snapshot from both tiers.
func (s *SnapshotCache) Invalidate(ctx context.Context, url string) error {
	s.mu.Lock()
	delete(s.entries, url)
	s.mu.Unlock()
	return s.remote.Delete(ctx, snapshotKeyPrefix+url)
}

func (s *SnapshotCache) lookup(url string) (*dataset.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[url]
	if !ok {
		return nil, false
	}
	if !s.now().Before(entry.expires) {
		delete(s.entries, url)
		return nil, false
	}
	return entry.frame, true
}

func (s *SnapshotCache) store(url string, frame *dataset.Frame) {
	s.mu.Lock()
	s.entries[url] = snapshotEntry{frame: frame, expires: s.now().Add(s.ttl)}
	s.mu.Unlock()
}

func (s *SnapshotCache) load(ctx context.Context, spec dataset.Spec) (*dataset.Frame, []byte, error) {
	start := time.Now()
	defer func() {
		datasetFetchDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := s.fetcher.Fetch(ctx, spec.URL)
	if err != nil {
		return nil, nil, Upstream("failed to fetch dataset", err)
	}
	frame, err := dataset.Decode(spec, body)
	if err != nil {
		return nil, nil, Upstream("failed to decode dataset", err)
	}
	log.Debug().
		Str("url", spec.URL).
		Int("rows", frame.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")
	return frame, body, nil
}

func (s *SnapshotCache) fromRemote(ctx context.Context, spec dataset.Spec) (*dataset.Frame, bool) {
	raw, err := s.remote.GetBytes(ctx, snapshotKeyPrefix+spec.URL)
	if err != nil {
		if err != ErrCacheMiss {
			log.Warn().Err(err).Str("url", spec.URL).Msg("redis snapshot read failed")
		}
		return nil, false
	}
	var env snapshotEnvelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		log.Warn().Err(err).Str("url", spec.URL).Msg("discarding undecodable snapshot")
		return nil, false
	}
	frame, err := dataset.Decode(spec, env.Body)
	if err != nil {
		log.Warn().Err(err).Str("url", spec.URL).Msg("discarding unparseable snapshot")
		return nil, false
	}
	return frame, true
}

func (s *SnapshotCache) toRemote(ctx context.Context, spec dataset.Spec, body []byte) {
	if !s.remote.Available() {
		return
	}
	raw, err := msgpack.Marshal(snapshotEnvelope{URL: spec.URL, FetchedAt: s.now().UTC(), Body: body})
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode snapshot")
		return
	}
	if err := s.remote.SetBytes(ctx, snapshotKeyPrefix+spec.URL, raw, s.ttl); err != nil {
		log.Warn().Err(err).Str("url", spec.URL).Msg("redis snapshot write failed")
	}
}
