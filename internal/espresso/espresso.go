// Package espresso implements a heuristic two-level minimizer in the
// spirit of Espresso: expand the on-set by pairwise merging, drop
// redundant cubes, then keep the essential cubes plus whatever is needed
// to finish the cover. Several randomized passes are run and the cheapest
// cover wins.
package espresso

import (
	"math/rand"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pborges/qelm/internal/cube"
	"github.com/pborges/qelm/internal/qm"
)

// Expand grows the on-set cover by merging adjacent cubes, and cubes with
// don't-cares, until a full sweep produces nothing new. Each sweep visits
// the cover in a fresh random order drawn from rng, so the order in which
// merged cubes are appended differs between runs.
func Expand(on, dc []cube.Cube, rng *rand.Rand) []cube.Cube {
	cover := make([]cube.Cube, 0, len(on))
	inCover := make(map[string]bool, len(on))
	for _, c := range on {
		if k := c.Key(); !inCover[k] {
			inCover[k] = true
			cover = append(cover, c)
		}
	}

	for {
		var fresh []cube.Cube
		inFresh := make(map[string]bool)
		try := func(a, b cube.Cube) {
			c, ok := cube.TryCombine(a, b)
			if !ok {
				return
			}
			k := c.Key()
			if inCover[k] || inFresh[k] {
				return
			}
			inFresh[k] = true
			fresh = append(fresh, c)
		}

		order := rng.Perm(len(cover))
		for i := range order {
			for j := i + 1; j < len(order); j++ {
				try(cover[order[i]], cover[order[j]])
			}
		}
		for _, d := range dc {
			for _, i := range order {
				try(cover[i], d)
			}
		}

		if len(fresh) == 0 {
			return cover
		}
		for _, c := range fresh {
			inCover[c.Key()] = true
		}
		cover = append(cover, fresh...)
	}
}

// Reduce walks the cover in order and drops every cube whose minterms are
// all still covered by the other remaining cubes. Dropped cubes are gone
// for the tests that follow, so the result depends on cover order.
func Reduce(cover []cube.Cube) []cube.Cube {
	count := make(map[uint64]int)
	for _, c := range cover {
		for _, m := range c.Minterms() {
			count[m]++
		}
	}
	var kept []cube.Cube
	for _, c := range cover {
		redundant := true
		for _, m := range c.Minterms() {
			if count[m] < 2 {
				redundant = false
				break
			}
		}
		if !redundant {
			kept = append(kept, c)
			continue
		}
		for _, m := range c.Minterms() {
			count[m]--
		}
	}
	return kept
}

// ExtractEssential keeps the cubes that alone cover some on-set minterm,
// then adds, in cover order, every other cube that still covers an
// on-set minterm nobody has covered yet.
func ExtractEssential(reduced, on []cube.Cube) []cube.Cube {
	required := qm.Required(on)
	ch := qm.BuildChart(reduced, required)

	picked := make(map[int]bool)
	covered := mapset.NewThreadUnsafeSet[uint64]()
	var out []cube.Cube
	take := func(i int) {
		picked[i] = true
		out = append(out, reduced[i])
		covered.Append(reduced[i].Minterms()...)
	}
	for _, i := range ch.Essentials() {
		take(i)
	}
	for i, c := range reduced {
		if picked[i] {
			continue
		}
		for _, m := range c.Minterms() {
			if required.Contains(m) && !covered.Contains(m) {
				take(i)
				break
			}
		}
	}
	return out
}

// Cost is the number of literals in a cover.
func Cost(cover []cube.Cube) int {
	return cube.Literals(cover)
}

// RunOnce performs a single expand, reduce and extract pass.
func RunOnce(on, dc []cube.Cube, rng *rand.Rand) []cube.Cube {
	dc = dropOverlap(on, dc)
	return ExtractEssential(Reduce(Expand(on, dc, rng)), on)
}

// Result is the outcome of a multi-pass run.
type Result struct {
	Cubes []cube.Cube
	// Costs holds the literal count of every pass in order.
	Costs []int
	// Pass is the index of the pass that produced Cubes.
	Pass int
}

// Minimize runs passes randomized passes and returns the cheapest cover.
func Minimize(on, dc []cube.Cube, passes int, rng *rand.Rand) []cube.Cube {
	return Run(on, dc, passes, rng).Cubes
}

// Run is Minimize keeping the cost of every pass. The earliest pass wins
// ties and passes below one count as one. A nil rng is replaced by one
// seeded from the clock.
func Run(on, dc []cube.Cube, passes int, rng *rand.Rand) Result {
	var res Result
	if len(on) == 0 {
		return res
	}
	if passes < 1 {
		passes = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	res.Costs = make([]int, 0, passes)
	for p := 0; p < passes; p++ {
		cover := RunOnce(on, dc, rng)
		cost := Cost(cover)
		res.Costs = append(res.Costs, cost)
		if p == 0 || cost < res.Costs[res.Pass] {
			res.Cubes = cover
			res.Pass = p
		}
	}
	return res
}

// dropOverlap removes don't-care cubes whose minterms are all on-set
// minterms already.
func dropOverlap(on, dc []cube.Cube) []cube.Cube {
	if len(dc) == 0 {
		return dc
	}
	required := qm.Required(on)
	out := make([]cube.Cube, 0, len(dc))
	for _, c := range dc {
		if !required.Contains(c.Minterms()...) {
			out = append(out, c)
		}
	}
	return out
}
