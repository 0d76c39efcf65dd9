package merge

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"sync"

	"github.com/james-see/ledcostume/pkg/timeline"
)

// DefaultCacheSize bounds the number of memoized composites
const DefaultCacheSize = 64

// Cache memoizes Merge results keyed by a hash of the entries' content.
// A changed pattern, pause or duration produces a new key, so results are
// recomputed on demand rather than patched. Returned composites are shared
// between callers and must be treated as read-only.
type Cache struct {
	mu      sync.Mutex
	size    int
	entries map[string]*Composite
	hits    int
	misses  int
}

// NewCache creates a cache holding up to size composites
func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Cache{
		size:    size,
		entries: make(map[string]*Composite),
	}
}

// Merge returns the memoized composite for entries, computing it on a miss.
// Errors are not cached.
func (c *Cache) Merge(entries []Entry) (*Composite, error) {
	key := Key(entries)

	c.mu.Lock()
	if comp, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return comp, nil
	}
	c.misses++
	c.mu.Unlock()

	comp, err := Merge(entries)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.size {
		c.entries = make(map[string]*Composite)
	}
	c.entries[key] = comp
	return comp, nil
}

// Stats returns hit and miss counts
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Key hashes everything Merge depends on. Interval identities are excluded.
func Key(entries []Entry) string {
	h := sha256.New()
	writeInt(h, int64(len(entries)))
	for _, e := range entries {
		writeString(h, e.Source)
		writeInt(h, int64(e.Pause))
		if e.AudioDuration == nil {
			writeInt(h, -1)
		} else {
			writeInt(h, 1)
			writeInt(h, int64(*e.AudioDuration))
		}
		writePattern(h, e.Pattern)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writePattern(h hash.Hash, p *timeline.Pattern) {
	if p == nil {
		writeInt(h, -1)
		return
	}
	writeInt(h, int64(len(p.Seqs)))
	for _, s := range p.Seqs {
		writeString(h, string(s.ID))
		writeInt(h, int64(len(s.Leds)))
		for _, l := range s.Leds {
			writeString(h, string(l))
		}
		writeInt(h, int64(len(s.Intervals)))
		for _, iv := range s.Intervals {
			writeInt(h, int64(iv.Start))
			writeInt(h, int64(iv.End))
			writeString(h, string(iv.Color))
		}
	}
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}
