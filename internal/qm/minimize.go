package qm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/pborges/qelm/internal/cube"
)

// CoverStrategy selects how the covering problem left after essential
// extraction is solved.
type CoverStrategy string

const (
	CoverAuto    CoverStrategy = "auto"
	CoverPetrick CoverStrategy = "petrick"
	CoverSAT     CoverStrategy = "sat"
	CoverPB      CoverStrategy = "pb"
)

// ParseCoverStrategy accepts the strategy names, with the empty string
// meaning CoverAuto.
func ParseCoverStrategy(s string) (CoverStrategy, error) {
	switch CoverStrategy(s) {
	case "", CoverAuto:
		return CoverAuto, nil
	case CoverPetrick, CoverSAT, CoverPB:
		return CoverStrategy(s), nil
	}
	return "", fmt.Errorf("unknown cover strategy %q", s)
}

// DefaultPetrickLimit bounds Petrick's partial product under CoverAuto
// before switching to the SAT solver.
const DefaultPetrickLimit = 4096

type Options struct {
	Cover CoverStrategy
	// PetrickLimit caps the partial product. Zero means DefaultPetrickLimit
	// under CoverAuto and no cap under CoverPetrick.
	PetrickLimit int
}

// Result is the outcome of an exact minimization.
type Result struct {
	Cubes      []cube.Cube
	Primes     int
	Essentials int
	// Residual counts the on-set minterms left uncovered by the essential
	// prime implicants.
	Residual int
	// Solver names the strategy that covered the residual; empty when the
	// essentials were enough.
	Solver CoverStrategy
}

// Minimize computes a minimum cover of the on-set using prime implicants
// of on ∪ dc. Don't-care minterms never need covering.
func Minimize(on, dc []cube.Cube, opts Options) (Result, error) {
	var res Result
	if len(on) == 0 {
		return res, nil
	}
	required := Required(on)
	all := make([]cube.Cube, 0, len(on)+len(dc))
	all = append(all, on...)
	for _, c := range dc {
		// A row listed as both on and don't-care is an on row.
		if required.Contains(c.Minterms()...) {
			continue
		}
		all = append(all, c)
	}

	primes := Tabulate(all)
	res.Primes = len(primes)

	ch := BuildChart(primes, required)
	selected := ch.Essentials()
	res.Essentials = len(selected)

	uncovered := ch.Uncovered(primes, selected)
	res.Residual = len(uncovered)
	if len(uncovered) > 0 {
		extra, solver, err := solveResidual(ch.Clauses(uncovered), primes, opts)
		if err != nil {
			return res, err
		}
		res.Solver = solver
		for _, i := range extra {
			if !slices.Contains(selected, i) {
				selected = append(selected, i)
			}
		}
	}

	cover := make([]cube.Cube, 0, len(selected))
	for _, i := range selected {
		cover = append(cover, primes[i])
	}
	res.Cubes = Cleanup(cover)
	return res, nil
}

func solveResidual(clauses [][]int, primes []cube.Cube, opts Options) ([]int, CoverStrategy, error) {
	weight := func(i int) int { return primes[i].Literals() }
	switch opts.Cover {
	case CoverSAT:
		sel, err := SATCover(clauses)
		return sel, CoverSAT, err
	case CoverPB:
		sel, err := PBCover(clauses, weight)
		return sel, CoverPB, err
	case CoverPetrick:
		sel, err := Petrick(clauses, weight, opts.PetrickLimit)
		return sel, CoverPetrick, err
	default:
		limit := opts.PetrickLimit
		if limit <= 0 {
			limit = DefaultPetrickLimit
		}
		sel, err := Petrick(clauses, weight, limit)
		if errors.Is(err, ErrProductTooLarge) {
			sel, err = SATCover(clauses)
			return sel, CoverSAT, err
		}
		return sel, CoverPetrick, err
	}
}

// Cleanup runs one more combination round over a cover. Cubes consumed
// by a combination are replaced by the combined cube.
func Cleanup(cover []cube.Cube) []cube.Cube {
	if len(cover) < 2 {
		return cover
	}
	next, unused := NewCombiner(cover).Round()
	return append(unused, next...)
}
