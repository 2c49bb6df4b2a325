package terrain

import (
	"fmt"
	"sync"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// CacheStats is a point-in-time snapshot of cache behavior. HitRate is
// hits/(hits+misses) over lookups since the last ResetStats; it is 0
// when no lookups happened.
type CacheStats struct {
	TileCount   int
	Capacity    int
	MemoryBytes int64
	Hits        uint64
	Misses      uint64
	Evictions   uint64
	HitRate     float64
}

// EntryInfo describes one resident tile for an eviction policy:
// monotonic sequence numbers for the last access and the insertion.
type EntryInfo struct {
	Key       TileKey
	AccessSeq uint64
	InsertSeq uint64
}

// EvictionPolicy chooses which resident tile to drop when the cache is
// full. Implementations must be deterministic for a given entry set.
type EvictionPolicy interface {
	Name() string
	Victim(entries []EntryInfo) TileKey
}

// LRUPolicy evicts the least recently used tile. Ties on access order
// break by insertion order, oldest first.
type LRUPolicy struct{}

func (LRUPolicy) Name() string { return "lru" }

func (LRUPolicy) Victim(entries []EntryInfo) TileKey {
	victim := entries[0]
	for _, e := range entries[1:] {
		if e.AccessSeq < victim.AccessSeq ||
			(e.AccessSeq == victim.AccessSeq && e.InsertSeq < victim.InsertSeq) {
			victim = e
		}
	}
	return victim.Key
}

type cacheEntry struct {
	tile      *Tile
	accessSeq uint64
	insertSeq uint64
}

// Cache is a bounded, thread-safe tile cache. Every Get and Put counts
// as an access for recency purposes; overwriting a resident key never
// evicts.
type Cache struct {
	mu      sync.Mutex
	max     int
	policy  EvictionPolicy
	entries map[TileKey]*cacheEntry
	seq     uint64

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewCache builds a cache holding at most maxTiles tiles. A nil policy
// defaults to LRU.
func NewCache(maxTiles int, policy EvictionPolicy) (*Cache, error) {
	if maxTiles <= 0 {
		return nil, fmt.Errorf("%w: cache capacity %d must be positive", errs.ErrInvalidArgument, maxTiles)
	}
	if policy == nil {
		policy = LRUPolicy{}
	}
	return &Cache{
		max:     maxTiles,
		policy:  policy,
		entries: make(map[TileKey]*cacheEntry, maxTiles),
	}, nil
}

// Get looks up a tile, bumping its recency on a hit. Misses only count;
// loading is the caller's job.
func (c *Cache) Get(key TileKey) (*Tile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.seq++
	e.accessSeq = c.seq
	return e.tile, true
}

// Put inserts or overwrites a tile. At capacity, inserting a new key
// evicts exactly one victim chosen by the policy; overwriting counts as
// an access and never evicts. The evicted key is returned when an
// eviction happened.
func (c *Cache) Put(key TileKey, tile *Tile) (TileKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	if e, ok := c.entries[key]; ok {
		e.tile = tile
		e.accessSeq = c.seq
		return TileKey{}, false
	}

	var evicted TileKey
	var didEvict bool
	if len(c.entries) >= c.max {
		infos := make([]EntryInfo, 0, len(c.entries))
		for k, e := range c.entries {
			infos = append(infos, EntryInfo{Key: k, AccessSeq: e.accessSeq, InsertSeq: e.insertSeq})
		}
		evicted = c.policy.Victim(infos)
		delete(c.entries, evicted)
		c.evictions++
		didEvict = true
	}

	c.entries[key] = &cacheEntry{tile: tile, accessSeq: c.seq, insertSeq: c.seq}
	return evicted, didEvict
}

// Remove drops a tile if resident.
func (c *Cache) Remove(key TileKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		return false
	}
	delete(c.entries, key)
	return true
}

// Len returns the resident tile count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every resident tile. Statistics are unaffected; use
// ResetStats for those.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[TileKey]*cacheEntry, c.max)
}

// Stats snapshots counters and residency.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var bytes int64
	for _, e := range c.entries {
		bytes += e.tile.MemoryBytes()
	}
	s := CacheStats{
		TileCount:   len(c.entries),
		Capacity:    c.max,
		MemoryBytes: bytes,
		Hits:        c.hits,
		Misses:      c.misses,
		Evictions:   c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// ResetStats zeroes the hit/miss/eviction counters without touching
// resident tiles. Counters never reset implicitly.
func (c *Cache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses, c.evictions = 0, 0, 0
}
