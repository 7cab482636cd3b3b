package shortcode

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CachedStorage wraps any TemplateStorage with an in-memory cache of Get
// results. Missing templates can be cached too, which keeps repeated lookups
// of unknown tags off the backend.
type CachedStorage struct {
	storage TemplateStorage
	config  CacheConfig

	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	closed bool

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheConfig configures the caching behavior.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries is the maximum number of cached templates; the least
	// recently used entry is evicted when it is exceeded.
	// Default: 1000.
	MaxEntries int

	// NegativeCacheTTL is how long "not found" results are cached.
	// Set to 0 to disable negative caching.
	NegativeCacheTTL time.Duration
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              DefaultCacheTTL,
		MaxEntries:       DefaultCacheMaxEntries,
		NegativeCacheTTL: DefaultNegativeCacheTTL,
	}
}

type cacheEntry struct {
	template   *StoredTemplate
	notFound   bool
	cachedAt   time.Time
	accessedAt atomic.Int64
	key        string
}

// NewCachedStorage wraps a storage with caching.
func NewCachedStorage(storage TemplateStorage, config CacheConfig) *CachedStorage {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	return &CachedStorage{
		storage: storage,
		config:  config,
		cache:   make(map[string]*cacheEntry),
	}
}

// Get retrieves a template, using the cache when available.
func (s *CachedStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, NewStorageClosedError()
	}
	entry, ok := s.cache[name]
	if ok && s.isValid(entry) {
		entry.accessedAt.Store(time.Now().UnixNano())
		s.mu.RUnlock()
		s.hits.Add(1)

		if entry.notFound {
			return nil, NewStorageTemplateNotFoundError(name)
		}
		return copyStoredTemplate(entry.template), nil
	}
	s.mu.RUnlock()
	s.misses.Add(1)

	tmpl, err := s.storage.Get(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	if err != nil {
		if s.config.NegativeCacheTTL > 0 && IsTemplateNotFound(err) {
			s.addEntry(name, nil, true)
		}
		return nil, err
	}

	s.addEntry(name, tmpl, false)
	return copyStoredTemplate(tmpl), nil
}

// GetVersion retrieves a specific version, bypassing the cache.
func (s *CachedStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	return s.storage.GetVersion(ctx, name, version)
}

// Save stores a template and invalidates its cache entry.
func (s *CachedStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := s.storage.Save(ctx, tmpl); err != nil {
		return err
	}
	s.Invalidate(tmpl.Name)
	return nil
}

// Delete removes a template and invalidates its cache entry.
func (s *CachedStorage) Delete(ctx context.Context, name string) error {
	if err := s.storage.Delete(ctx, name); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// List bypasses the cache.
func (s *CachedStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	return s.storage.List(ctx, query)
}

// Exists answers from the cache when a valid entry exists.
func (s *CachedStorage) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false, NewStorageClosedError()
	}
	entry, ok := s.cache[name]
	if ok && s.isValid(entry) {
		s.mu.RUnlock()
		s.hits.Add(1)
		return !entry.notFound, nil
	}
	s.mu.RUnlock()

	return s.storage.Exists(ctx, name)
}

// ListVersions bypasses the cache.
func (s *CachedStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	return s.storage.ListVersions(ctx, name)
}

// Close closes the cache and the underlying storage.
func (s *CachedStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()

	return s.storage.Close()
}

// Invalidate removes a template from the cache.
func (s *CachedStorage) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// InvalidateAll clears the cache.
func (s *CachedStorage) InvalidateAll() {
	s.mu.Lock()
	if !s.closed {
		s.cache = make(map[string]*cacheEntry)
	}
	s.mu.Unlock()
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
	Hits            int64
	Misses          int64
}

// Stats returns cache statistics.
func (s *CachedStorage) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{
		Entries: len(s.cache),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
	for _, entry := range s.cache {
		if !s.isValid(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

func (s *CachedStorage) isValid(entry *cacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// addEntry caches a result, evicting the least recently used entry when
// full. Caller must hold the write lock.
func (s *CachedStorage) addEntry(name string, tmpl *StoredTemplate, notFound bool) {
	if _, exists := s.cache[name]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}

	now := time.Now()
	entry := &cacheEntry{
		template: copyStoredTemplate(tmpl),
		notFound: notFound,
		cachedAt: now,
		key:      name,
	}
	entry.accessedAt.Store(now.UnixNano())
	s.cache[name] = entry
}

// evictOldest removes the least recently accessed entry.
// Caller must hold the write lock.
func (s *CachedStorage) evictOldest() {
	var oldest *cacheEntry
	for _, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Load() < oldest.accessedAt.Load() {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(s.cache, oldest.key)
	}
}
