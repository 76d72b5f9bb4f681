package qm

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pborges/qelm/internal/cube"
)

// Chart maps each required minterm to the implicants covering it.
type Chart struct {
	// Minterms lists the chart rows in ascending order.
	Minterms []uint64
	// Rows holds, per minterm, indices into the implicant slice the chart
	// was built from.
	Rows map[uint64][]int
}

// Required collects the minterms of the on-set cubes. Don't-care cubes
// contribute nothing.
func Required(on []cube.Cube) mapset.Set[uint64] {
	req := mapset.NewThreadUnsafeSet[uint64]()
	for _, c := range on {
		if c.DontCare() {
			continue
		}
		for _, m := range c.Minterms() {
			req.Add(m)
		}
	}
	return req
}

// BuildChart builds the coverage chart of implicants over the required
// minterms.
func BuildChart(implicants []cube.Cube, required mapset.Set[uint64]) Chart {
	ch := Chart{Rows: make(map[uint64][]int)}
	for i, c := range implicants {
		for _, m := range c.Minterms() {
			if !required.Contains(m) {
				continue
			}
			if _, ok := ch.Rows[m]; !ok {
				ch.Minterms = append(ch.Minterms, m)
			}
			ch.Rows[m] = append(ch.Rows[m], i)
		}
	}
	slices.Sort(ch.Minterms)
	return ch
}

// Essentials returns the indices of implicants that are the only cover of
// some row, in row order and without repeats.
func (ch Chart) Essentials() []int {
	var out []int
	seen := make(map[int]bool)
	for _, m := range ch.Minterms {
		row := ch.Rows[m]
		if len(row) != 1 || seen[row[0]] {
			continue
		}
		seen[row[0]] = true
		out = append(out, row[0])
	}
	return out
}

// Uncovered returns the rows not covered by any of the selected
// implicants, in ascending order.
func (ch Chart) Uncovered(implicants []cube.Cube, selected []int) []uint64 {
	covered := mapset.NewThreadUnsafeSet[uint64]()
	for _, i := range selected {
		covered.Append(implicants[i].Minterms()...)
	}
	var out []uint64
	for _, m := range ch.Minterms {
		if !covered.Contains(m) {
			out = append(out, m)
		}
	}
	return out
}

// Clauses returns, for each minterm, the set of implicants covering it.
// Identical clauses are kept once.
func (ch Chart) Clauses(minterms []uint64) [][]int {
	var out [][]int
	seen := make(map[string]bool)
	for _, m := range minterms {
		row := ch.Rows[m]
		if len(row) == 0 {
			continue
		}
		k := selectionKey(row)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, slices.Clone(row))
	}
	return out
}
