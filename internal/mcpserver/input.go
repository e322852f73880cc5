package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erraggy/apicatalog/catalog"
	"github.com/erraggy/apicatalog/internal/corpusutil"
	"github.com/erraggy/apicatalog/tables"
)

// catalogInput selects the corpus to build and how.
type catalogInput struct {
	SchemasDir      string `json:"schemas_dir"                jsonschema:"Directory with one subdirectory per endpoint"`
	MergeEquivalent bool   `json:"merge_equivalent,omitempty" jsonschema:"Merge differently named types of identical shape"`
	Strict          bool   `json:"strict,omitempty"           jsonschema:"Fail on collisions without an override instead of numbering them"`
}

// buildResult is one successful build.
type buildResult struct {
	catalog *catalog.Catalog
	report  *catalog.Report
}

// cacheEntry holds a cached build with LRU ordering and TTL expiry.
type cacheEntry struct {
	result    *buildResult
	insertAt  time.Time
	expiresAt time.Time
}

// buildCache provides a session-scoped cache for built catalogs. Entries are
// keyed by (absolute directory, newest mtime, flags).
type buildCache struct {
	mu             sync.Mutex
	entries        map[string]*cacheEntry
	maxSize        int
	sweeperStarted atomic.Bool
}

var builds = &buildCache{
	entries: make(map[string]*cacheEntry),
	maxSize: cfg.CacheMaxSize,
}

// get returns a cached result or nil. Expired entries are lazily removed.
func (c *buildCache) get(key string) *buildResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if time.Now().After(e.expiresAt) {
			delete(c.entries, key)
			return nil
		}
		e.insertAt = time.Now()
		return e.result
	}
	return nil
}

// put stores a result, evicting the least recently used entry if at
// capacity.
func (c *buildCache) put(key string, result *buildResult, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry := &cacheEntry{result: result, insertAt: now, expiresAt: now.Add(ttl)}
	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}
	if len(c.entries) >= c.maxSize {
		var oldestKey string
		var oldestTime time.Time
		for k, e := range c.entries {
			if oldestKey == "" || e.insertAt.Before(oldestTime) {
				oldestKey = k
				oldestTime = e.insertAt
			}
		}
		delete(c.entries, oldestKey)
	}
	c.entries[key] = entry
}

// sweep removes all expired entries from the cache.
func (c *buildCache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// startSweeper launches a goroutine that periodically removes expired
// entries until ctx is cancelled. Only the first call spawns a sweeper.
func (c *buildCache) startSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	if !c.sweeperStarted.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer c.sweeperStarted.Store(false)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

// reset clears all cached entries. Used in tests.
func (c *buildCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// size returns the number of cached entries.
func (c *buildCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey returns the key of in, or "" when the directory cannot be
// stat'ed.
func (in catalogInput) cacheKey() string {
	abs, err := filepath.Abs(in.SchemasDir)
	if err != nil {
		return ""
	}
	var newest time.Time
	err = filepath.WalkDir(abs, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s:%d:%t:%t:%s", abs, newest.UnixNano(), in.MergeEquivalent, in.Strict, cfg.TablesFile)
}

// build reads and builds the corpus, using the cache when enabled.
func (in catalogInput) build(ctx context.Context) (*buildResult, error) {
	if in.SchemasDir == "" {
		return nil, errors.New("schemas_dir is required")
	}
	if info, err := os.Stat(in.SchemasDir); err != nil {
		return nil, err
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", in.SchemasDir)
	}

	var key string
	if cfg.CacheEnabled {
		key = in.cacheKey()
	}
	if key != "" {
		if cached := builds.get(key); cached != nil {
			return cached, nil
		}
	}

	sources, err := corpusutil.Read(in.SchemasDir, nil)
	if err != nil {
		return nil, err
	}
	t := tables.Default()
	if cfg.TablesFile != "" {
		if t, err = tables.Load(cfg.TablesFile); err != nil {
			return nil, err
		}
	}
	cat, report, err := catalog.Build(ctx, sources,
		catalog.WithTables(t),
		catalog.WithSuffixFallback(!in.Strict),
		catalog.WithMergeEquivalent(in.MergeEquivalent),
	)
	if err != nil {
		return nil, err
	}

	result := &buildResult{catalog: cat, report: report}
	if key != "" {
		builds.put(key, result, cfg.CacheTTL)
	}
	return result, nil
}
