package renderer

import "fmt"

// DefaultCapacity is the number of programs a cache holds unless configured.
const DefaultCapacity = 64

// CacheStats counts cache queries made through GetOrCreate.
type CacheStats struct {
	Hits   int
	Misses int
}

// ProgramCache owns every program built for the lifetime of the process.
// Programs are kept in insertion order and never evicted.
type ProgramCache struct {
	programs []*Program
	index    map[uint32]int
	capacity int
	stats    CacheStats
}

func NewProgramCache(capacity int) *ProgramCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ProgramCache{
		programs: make([]*Program, 0, capacity),
		index:    make(map[uint32]int, capacity),
		capacity: capacity,
	}
}

// Lookup returns the program for id, or nil.
func (c *ProgramCache) Lookup(id uint32) *Program {
	if i, ok := c.index[id]; ok {
		return c.programs[i]
	}
	return nil
}

// GetOrCreate returns the cached program for id, calling build on a miss.
// A miss with the cache at capacity fails with ErrCacheFull before build runs.
func (c *ProgramCache) GetOrCreate(id uint32, build func(id uint32) (*Program, error)) (*Program, error) {
	if p := c.Lookup(id); p != nil {
		c.stats.Hits++
		return p, nil
	}
	c.stats.Misses++
	if len(c.programs) >= c.capacity {
		return nil, fmt.Errorf("program %#08x: %w (capacity %d)", id, ErrCacheFull, c.capacity)
	}
	p, err := build(id)
	if err != nil {
		return nil, fmt.Errorf("program %#08x: %w", id, err)
	}
	c.index[id] = len(c.programs)
	c.programs = append(c.programs, p)
	return p, nil
}

func (c *ProgramCache) Len() int          { return len(c.programs) }
func (c *ProgramCache) Cap() int          { return c.capacity }
func (c *ProgramCache) Stats() CacheStats { return c.stats }

// Programs returns the cached programs in creation order.
func (c *ProgramCache) Programs() []*Program {
	return append([]*Program(nil), c.programs...)
}
