package qm

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ErrProductTooLarge is returned by Petrick when the expanded product
// outgrows its limit.
var ErrProductTooLarge = errors.New("petrick product too large")

// Petrick solves the covering problem given as a product of clauses,
// each clause a sum of implicant indices. The product is multiplied out
// one clause at a time, dropping repeated and absorbed selections
// (X + XY = X). The returned selection has minimum cardinality; ties go
// to the lowest total weight, then to the lexicographically smallest
// index list.
//
// An empty clause list yields a nil selection. A positive limit bounds
// the number of partial selections kept between clauses.
func Petrick(clauses [][]int, weight func(int) int, limit int) ([]int, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	products := make([][]int, 0, len(clauses[0]))
	for _, opt := range clauses[0] {
		products = append(products, []int{opt})
	}
	products = absorb(products)

	for n, clause := range clauses[1:] {
		var next [][]int
		seen := make(map[string]bool)
		add := func(p []int) {
			k := selectionKey(p)
			if seen[k] {
				return
			}
			seen[k] = true
			next = append(next, p)
		}
		for _, p := range products {
			if intersects(p, clause) {
				add(p)
				continue
			}
			for _, opt := range clause {
				add(insertSorted(p, opt))
			}
		}
		products = absorb(next)
		if limit > 0 && len(products) > limit {
			return nil, fmt.Errorf("%w: %d partial covers after %d of %d clauses", ErrProductTooLarge, len(products), n+2, len(clauses))
		}
	}

	best := products[0]
	bestWeight := totalWeight(best, weight)
	for _, p := range products[1:] {
		w := totalWeight(p, weight)
		switch {
		case len(p) < len(best):
		case len(p) > len(best):
			continue
		case w < bestWeight:
		case w > bestWeight:
			continue
		case slices.Compare(p, best) >= 0:
			continue
		}
		best, bestWeight = p, w
	}
	return best, nil
}

func totalWeight(sel []int, weight func(int) int) int {
	if weight == nil {
		return 0
	}
	w := 0
	for _, i := range sel {
		w += weight(i)
	}
	return w
}

// absorb drops every selection that is a strict superset of another.
// Selections must be sorted and distinct.
func absorb(products [][]int) [][]int {
	sort.SliceStable(products, func(i, j int) bool { return len(products[i]) < len(products[j]) })
	out := products[:0:0]
	for _, p := range products {
		absorbed := false
		for _, q := range out {
			if len(q) < len(p) && subset(q, p) {
				absorbed = true
				break
			}
		}
		if !absorbed {
			out = append(out, p)
		}
	}
	return out
}

// subset reports whether sorted a is contained in sorted b.
func subset(a, b []int) bool {
	j := 0
	for _, x := range a {
		for j < len(b) && b[j] < x {
			j++
		}
		if j == len(b) || b[j] != x {
			return false
		}
		j++
	}
	return true
}

func intersects(sorted, clause []int) bool {
	for _, x := range clause {
		if _, ok := slices.BinarySearch(sorted, x); ok {
			return true
		}
	}
	return false
}

func insertSorted(p []int, x int) []int {
	i, _ := slices.BinarySearch(p, x)
	out := make([]int, 0, len(p)+1)
	out = append(out, p[:i]...)
	out = append(out, x)
	return append(out, p[i:]...)
}

func selectionKey(sel []int) string {
	var sb strings.Builder
	for i, x := range sel {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(x))
	}
	return sb.String()
}
