package qm

import (
	"errors"
	"sort"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

const (
	satisfiable = 1
)

// ErrNoCover is returned when a covering problem has no solution, which
// only happens if a clause is empty.
var ErrNoCover = errors.New("covering problem has no solution")

// SATCover solves the same problem as Petrick with a SAT solver: one
// variable per implicant, one clause per row, and a sorting network over
// the implicant variables whose outputs bound the number selected. The
// bound is raised from zero until the formula becomes satisfiable, so
// the selection has minimum cardinality. Among equal-size covers the
// choice is the solver's.
func SATCover(clauses [][]int) ([]int, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	var ids []int
	seen := make(map[int]bool)
	for _, clause := range clauses {
		if len(clause) == 0 {
			return nil, ErrNoCover
		}
		for _, i := range clause {
			if !seen[i] {
				seen[i] = true
				ids = append(ids, i)
			}
		}
	}
	sort.Ints(ids)

	c := logic.NewCCap(4 * len(ids))
	lits := make([]z.Lit, len(ids))
	litOf := make(map[int]z.Lit, len(ids))
	for k, i := range ids {
		m := c.Lit()
		lits[k] = m
		litOf[i] = m
	}
	cs := c.CardSort(lits)

	g := gini.New()
	c.ToCnf(g)
	for _, clause := range clauses {
		for _, i := range clause {
			g.Add(litOf[i])
		}
		g.Add(z.LitNull)
	}

	for w := 1; w <= cs.N(); w++ {
		g.Assume(cs.Leq(w))
		if g.Solve() != satisfiable {
			continue
		}
		var sel []int
		for k, i := range ids {
			if g.Value(lits[k]) {
				sel = append(sel, i)
			}
		}
		return sel, nil
	}
	return nil, ErrNoCover
}
