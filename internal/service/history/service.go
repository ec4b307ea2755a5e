package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iamasit07/connect4-table/internal/domain"
	"github.com/iamasit07/connect4-table/internal/repository/postgres"
	"github.com/iamasit07/connect4-table/internal/repository/redis"
	log "github.com/sirupsen/logrus"
)

const (
	MaxRecent       = 100
	DefaultRecent   = 20
	DefaultCacheTTL = 30 * time.Second

	// generationKey is bumped on every archived round; cached views live under
	// keys carrying the generation they were read in.
	generationKey = "results:gen"
)

type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.RoundResult) error
	ListRecent(ctx context.Context, limit int) ([]domain.RoundResult, error)
	Tally(ctx context.Context) (postgres.Tally, error)
}

// CacheRepository is satisfied by redis.Cache. Get reports a missing key as
// redis.ErrCacheMiss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}

// Service archives finished rounds and serves the results feed.
type Service struct {
	repo     ResultRepository
	cache    CacheRepository // Optional, can be nil
	cacheTTL time.Duration
}

// NewService falls back to DefaultCacheTTL when cacheTTL is not positive;
// a cached view must always expire.
func NewService(repo ResultRepository, cache CacheRepository, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// Record stores the round and moves the cache to a new generation. Views
// filled concurrently under the old generation are never read again.
func (s *Service) Record(ctx context.Context, result domain.RoundResult) error {
	if err := s.repo.SaveResult(ctx, result); err != nil {
		return err
	}

	if s.cache == nil {
		return nil
	}

	gen, err := s.cache.Incr(ctx, generationKey)
	if err != nil {
		log.Warnf("[RESULTS] Failed to invalidate cache: %v", err)
		return nil
	}
	if err := s.cache.Del(ctx, cacheKeys(gen-1)...); err != nil {
		log.Warnf("[RESULTS] Failed to drop generation %d: %v", gen-1, err)
	}
	return nil
}

// Recent returns up to limit rounds, newest first. limit is clamped to [1, MaxRecent].
func (s *Service) Recent(ctx context.Context, limit int) ([]domain.RoundResult, error) {
	if limit <= 0 {
		limit = DefaultRecent
	}
	if limit > MaxRecent {
		limit = MaxRecent
	}

	gen, cached := s.generation(ctx)
	key := recentKey(gen, limit)

	var results []domain.RoundResult
	if cached && s.fromCache(ctx, key, &results) {
		return results, nil
	}

	results, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	if cached {
		s.toCache(ctx, key, results)
	}
	return results, nil
}

func (s *Service) Tally(ctx context.Context) (postgres.Tally, error) {
	gen, cached := s.generation(ctx)
	key := tallyKey(gen)

	var tally postgres.Tally
	if cached && s.fromCache(ctx, key, &tally) {
		return tally, nil
	}

	tally, err := s.repo.Tally(ctx)
	if err != nil {
		return postgres.Tally{}, err
	}
	if cached {
		s.toCache(ctx, key, tally)
	}
	return tally, nil
}

func recentKey(gen int64, limit int) string {
	return fmt.Sprintf("results:%d:recent:%d", gen, limit)
}

func tallyKey(gen int64) string {
	return fmt.Sprintf("results:%d:tally", gen)
}

// Only the limits Recent can produce are cached, so they can be listed.
func cacheKeys(gen int64) []string {
	keys := make([]string, 0, MaxRecent+1)
	for limit := 1; limit <= MaxRecent; limit++ {
		keys = append(keys, recentKey(gen, limit))
	}
	return append(keys, tallyKey(gen))
}

// generation reads the current cache generation. false means the cache is
// unusable for this call and reads go straight to the archive.
func (s *Service) generation(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}

	raw, err := s.cache.Get(ctx, generationKey)
	if errors.Is(err, redis.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		log.Warnf("[RESULTS] Failed to read cache generation: %v", err)
		return 0, false
	}

	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warnf("[RESULTS] Corrupt cache generation %q", raw)
		return 0, false
	}
	return gen, true
}

func (s *Service) fromCache(ctx context.Context, key string, dst interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			log.Warnf("[RESULTS] Cache read for %s failed: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(data), dst); err != nil {
		log.Warnf("[RESULTS] Corrupt cache entry %s: %v", key, err)
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Warnf("[RESULTS] Failed to cache %s: %v", key, err)
	}
}
