package qm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crillab/gophersat/solver"
)

// PBCover solves the covering problem as a pseudo-boolean optimisation.
// Every implicant i costs big+weight(i), where big exceeds the total
// weight of all implicants, so the optimum has minimum cardinality first
// and the lowest total weight among covers of that size.
func PBCover(clauses [][]int, weight func(int) int) ([]int, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	var ids []int
	varOf := make(map[int]int)
	for _, clause := range clauses {
		if len(clause) == 0 {
			return nil, ErrNoCover
		}
		for _, i := range clause {
			if _, ok := varOf[i]; !ok {
				varOf[i] = 0
				ids = append(ids, i)
			}
		}
	}
	sort.Ints(ids)
	big := 1
	for k, i := range ids {
		varOf[i] = k + 1
		big += weight(i)
	}

	var opb strings.Builder
	opb.WriteString("min:")
	for _, i := range ids {
		fmt.Fprintf(&opb, " %d x%d", big+weight(i), varOf[i])
	}
	opb.WriteString(" ;\n")
	for _, clause := range clauses {
		for _, i := range clause {
			fmt.Fprintf(&opb, "1 x%d ", varOf[i])
		}
		opb.WriteString(">= 1 ;\n")
	}

	pb, err := solver.ParseOPB(strings.NewReader(opb.String()))
	if err != nil {
		return nil, fmt.Errorf("building pseudo-boolean problem: %w", err)
	}
	s := solver.New(pb)
	if s.Minimize() < 0 {
		return nil, ErrNoCover
	}
	model := s.Model()
	var sel []int
	for k, i := range ids {
		if k < len(model) && model[k] {
			sel = append(sel, i)
		}
	}
	return sel, nil
}
