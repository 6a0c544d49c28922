package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/stocklab/internal/models"
)

// barCacheKey identifies one fetch request
type barCacheKey struct {
	Symbol    string
	StartDate time.Time
	EndDate   time.Time
}

// String returns string representation of cache key
func (k barCacheKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.Symbol, k.StartDate.Format("20060102"), k.EndDate.Format("20060102"))
}

// CachedSource wraps another Source with in-memory TTL caching.
// Daily bars only change after the provider's end-of-day settlement,
// so repeated backtests over the same range skip the network entirely.
type CachedSource struct {
	inner     Source
	cache     *cache.Cache
	ttl       time.Duration
	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewCachedSource wraps inner with a TTL cache
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Name returns the name of the underlying data source
func (s *CachedSource) Name() string {
	return s.inner.Name()
}

// IsEnabled returns whether the underlying data source is enabled
func (s *CachedSource) IsEnabled() bool {
	return s.inner.IsEnabled()
}

// FetchDailyBars returns cached bars when present, otherwise delegates to the inner source
func (s *CachedSource) FetchDailyBars(ctx context.Context, symbol string, startDate, endDate time.Time) ([]models.Bar, error) {
	key := barCacheKey{Symbol: symbol, StartDate: startDate, EndDate: endDate}.String()

	s.mu.RLock()
	cached, found := s.cache.Get(key)
	s.mu.RUnlock()

	if found {
		if bars, ok := cached.([]models.Bar); ok {
			s.mu.Lock()
			s.hitCount++
			s.mu.Unlock()
			return bars, nil
		}
	}

	bars, err := s.inner.FetchDailyBars(ctx, symbol, startDate, endDate)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.missCount++
	s.cache.Set(key, bars, s.ttl)
	s.mu.Unlock()

	return bars, nil
}

// Stats returns cache hit and miss counts
func (s *CachedSource) Stats() (hits, misses uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hitCount, s.missCount
}

// Invalidate removes all cached entries for a symbol
func (s *CachedSource) Invalidate(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := symbol + ":"
	for k := range s.cache.Items() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			s.cache.Delete(k)
		}
	}
}
