// Package testutil holds truth-table helpers shared by the minimizer tests.
package testutil

import (
	"bytes"
	"fmt"
	"math/bits"
	"slices"

	"github.com/pborges/qelm/internal/cube"
)

// Matches reports whether the pattern of c contains minterm m. Unlike
// c.Covers it ignores the recorded minterm list.
func Matches(c cube.Cube, m uint64) bool {
	w := c.Width()
	for j := 0; j < w; j++ {
		bit := (m >> (w - 1 - j)) & 1
		switch c.At(j) {
		case '1':
			if bit == 0 {
				return false
			}
		case '0':
			if bit == 1 {
				return false
			}
		}
	}
	return true
}

// Eval evaluates the SOP formed by cover at minterm m.
func Eval(cover []cube.Cube, m uint64) bool {
	for _, c := range cover {
		if Matches(c, m) {
			return true
		}
	}
	return false
}

// Cubes converts minterm numbers into fully specified cubes and fails
// loudly on bad input.
func Cubes(width int, minterms []uint64, dontCare bool) []cube.Cube {
	cs, err := cube.FromMinterms(width, minterms, dontCare)
	if err != nil {
		panic(err)
	}
	return cs
}

// CompareCover checks cover against the function given by on and dc and
// returns a human-readable report of every minterm where they disagree:
// on-set minterms left uncovered and off-set minterms covered. The empty
// string means the cover is correct.
func CompareCover(width int, on, dc []uint64, cover []cube.Cube) string {
	var buf bytes.Buffer
	mismatches := 0
	for m := uint64(0); m < 1<<width; m++ {
		want := slices.Contains(on, m)
		free := slices.Contains(dc, m)
		got := Eval(cover, m)
		if free || got == want {
			continue
		}
		mismatches++
		fmt.Fprintf(&buf, "  minterm %0*b: got=%t want=%t\n", width, m, got, want)
		if mismatches >= 40 {
			fmt.Fprintf(&buf, "  ... (%d+ mismatches, truncated)\n", mismatches)
			break
		}
	}
	if mismatches == 0 {
		return ""
	}
	return fmt.Sprintf("%d minterm mismatches:\n%s", mismatches, buf.String())
}

type implicant struct {
	pattern  string
	literals int
	on       uint64 // bitmask over on-set positions
}

// MinimumCover finds, by exhaustive search over prime implicants, the
// smallest number of products covering on (with dc free), and the fewest
// literals any cover of that size needs. It also returns the fewest
// literals of any prime cover regardless of size. Keep width and the
// number of primes small: the search is exponential.
func MinimumCover(width int, on, dc []uint64) (size, literals, minLiterals int) {
	if len(on) == 0 {
		return 0, 0, 0
	}
	if len(on) > 64 {
		panic("testutil: MinimumCover supports at most 64 on-set minterms")
	}
	allowed := make(map[uint64]bool)
	onIdx := make(map[uint64]int)
	for i, m := range on {
		allowed[m] = true
		onIdx[m] = i
	}
	for _, m := range dc {
		allowed[m] = true
	}

	isImplicant := func(p string) (uint64, bool) {
		c := cube.MustParse(p, []uint64{0}, false)
		var mask uint64
		for m := uint64(0); m < 1<<width; m++ {
			if !Matches(c, m) {
				continue
			}
			if !allowed[m] {
				return 0, false
			}
			if i, ok := onIdx[m]; ok {
				mask |= 1 << i
			}
		}
		return mask, true
	}

	var primes []implicant
	for _, p := range patterns(width) {
		mask, ok := isImplicant(p)
		if !ok || mask == 0 {
			continue
		}
		prime := true
		for j := 0; j < width && prime; j++ {
			if p[j] == '-' {
				continue
			}
			if _, ok := isImplicant(p[:j] + "-" + p[j+1:]); ok {
				prime = false
			}
		}
		if prime {
			primes = append(primes, implicant{pattern: p, literals: width - countDash(p), on: mask})
		}
	}
	if len(primes) > 24 {
		panic(fmt.Sprintf("testutil: %d primes is too many for exhaustive search", len(primes)))
	}

	full := uint64(1)<<len(on) - 1
	if len(on) == 64 {
		full = ^uint64(0)
	}
	size, literals, minLiterals = -1, -1, -1
	for set := uint32(1); set < 1<<len(primes); set++ {
		var mask uint64
		lits := 0
		for i, p := range primes {
			if set&(1<<i) != 0 {
				mask |= p.on
				lits += p.literals
			}
		}
		if mask != full {
			continue
		}
		n := bits.OnesCount32(set)
		if size < 0 || n < size || (n == size && lits < literals) {
			size, literals = n, lits
		}
		if minLiterals < 0 || lits < minLiterals {
			minLiterals = lits
		}
	}
	return size, literals, minLiterals
}

func patterns(width int) []string {
	out := []string{""}
	for i := 0; i < width; i++ {
		next := make([]string, 0, 3*len(out))
		for _, p := range out {
			next = append(next, p+"0", p+"1", p+"-")
		}
		out = next
	}
	return out
}

func countDash(p string) int {
	n := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '-' {
			n++
		}
	}
	return n
}
