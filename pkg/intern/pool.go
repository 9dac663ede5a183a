// Package intern provides a per-parser string pool for tag and attribute names.
package intern

// Stats reports interning activity.
type Stats struct {
	Count  int
	Hits   int
	Misses int
}

type entry struct {
	name string
}

// Pool returns canonical strings for byte slices. Equal content always yields
// equal strings; repeated names are served from the pool without allocating.
// A Pool is not safe for concurrent use.
type Pool struct {
	entries    map[uint64][]entry
	recent     [recentSize]entry
	recentNext int
	maxEntries int
	stats      Stats
}

const recentSize = 8

// New returns a pool that caches at most maxEntries names.
// Zero means no bound.
func New(maxEntries int) *Pool {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Pool{
		entries:    make(map[uint64][]entry, 64),
		maxEntries: maxEntries,
	}
}

// Intern returns the canonical string for name.
func (p *Pool) Intern(name []byte) string {
	if len(name) == 0 {
		return ""
	}
	for i := range p.recent {
		if e := p.recent[i]; len(e.name) == len(name) && e.name == string(name) {
			p.stats.Hits++
			return e.name
		}
	}
	return p.lookup(name, fnv1a(name))
}

func (p *Pool) lookup(name []byte, hash uint64) string {
	if p.entries == nil {
		p.entries = make(map[uint64][]entry, 64)
	}
	for _, e := range p.entries[hash] {
		if e.name == string(name) {
			p.stats.Hits++
			p.remember(e)
			return e.name
		}
	}
	p.stats.Misses++
	s := string(name)
	if p.maxEntries > 0 && p.stats.Count >= p.maxEntries {
		return s
	}
	e := entry{name: s}
	p.entries[hash] = append(p.entries[hash], e)
	p.stats.Count++
	p.remember(e)
	return s
}

func (p *Pool) remember(e entry) {
	p.recent[p.recentNext] = e
	p.recentNext++
	if p.recentNext == recentSize {
		p.recentNext = 0
	}
}

func (p *Pool) contains(name []byte) bool {
	for _, e := range p.entries[fnv1a(name)] {
		if e.name == string(name) {
			return true
		}
	}
	return false
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return p.stats
}

// fnv1a buckets names.
func fnv1a(data []byte) uint64 {
	const (
		offset = 14695981039346656037
		prime  = 1099511628211
	)
	hash := uint64(offset)
	for _, b := range data {
		hash ^= uint64(b)
		hash *= prime
	}
	return hash
}
