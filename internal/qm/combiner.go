package qm

import "github.com/pborges/qelm/internal/cube"

// Handle addresses a cube stored in a Combiner.
type Handle int

// Combiner runs one Quine-McCluskey round. It owns its cubes; the
// per-cube used marks live in a side table indexed by Handle.
type Combiner struct {
	arena []cube.Cube
	used  []bool
	index map[string]Handle
}

// NewCombiner returns a Combiner holding cubes, dropping exact duplicates.
func NewCombiner(cubes []cube.Cube) *Combiner {
	cb := &Combiner{
		arena: make([]cube.Cube, 0, len(cubes)),
		index: make(map[string]Handle, len(cubes)),
	}
	for _, c := range cubes {
		cb.Add(c)
	}
	return cb
}

// Add stores c and returns its handle. A cube equal to one already held
// returns the existing handle.
func (cb *Combiner) Add(c cube.Cube) Handle {
	k := c.Key()
	if h, ok := cb.index[k]; ok {
		return h
	}
	h := Handle(len(cb.arena))
	cb.arena = append(cb.arena, c)
	cb.used = append(cb.used, false)
	cb.index[k] = h
	return h
}

func (cb *Combiner) Len() int { return len(cb.arena) }

func (cb *Combiner) Cube(h Handle) cube.Cube { return cb.arena[h] }

// Used reports whether the cube took part in a combination.
func (cb *Combiner) Used(h Handle) bool { return cb.used[h] }

// Round combines every cube of popcount k with every cube of popcount
// k+1. Both sources of a successful combination are marked used. The
// combined cubes are returned deduplicated in discovery order as next;
// cubes never used in the round are returned as primes.
func (cb *Combiner) Round() (next, primes []cube.Cube) {
	ones, groups := cube.PopcountIndex(cb.arena)
	seen := make(map[string]struct{})
	for i := 0; i+1 < len(groups); i++ {
		if ones[i+1] != ones[i]+1 {
			continue
		}
		for _, a := range groups[i] {
			for _, b := range groups[i+1] {
				c, ok := cube.TryCombine(cb.arena[a], cb.arena[b])
				if !ok {
					continue
				}
				cb.used[a] = true
				cb.used[b] = true
				k := c.Key()
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				next = append(next, c)
			}
		}
	}
	for h, c := range cb.arena {
		if !cb.used[h] {
			primes = append(primes, c)
		}
	}
	return next, primes
}

// Tabulate runs rounds until nothing combines and returns every cube that
// was never consumed: the prime implicants of cubes.
func Tabulate(cubes []cube.Cube) []cube.Cube {
	var primes []cube.Cube
	current := cubes
	for len(current) > 0 {
		next, unused := NewCombiner(current).Round()
		primes = append(primes, unused...)
		current = next
	}
	return primes
}
