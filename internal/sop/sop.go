// Package sop renders cube covers as sum-of-products expressions.
package sop

import (
	"strconv"
	"strings"

	"github.com/pborges/qelm/internal/cube"
)

// DefaultNames returns A..Z for the first 26 variables and x26, x27, ...
// after that.
func DefaultNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		if i < 26 {
			names[i] = string(rune('A' + i))
		} else {
			names[i] = "x" + strconv.Itoa(i)
		}
	}
	return names
}

// Render writes cubes as products joined by " + ", in the order given. A
// 1 becomes the variable name and a 0 its complement X'. When every name
// is a single character literals are written side by side (AB'C),
// otherwise they are joined with '*'. Missing names fall back to
// DefaultNames. An empty cover renders as 0 and a cube without literals
// as 1.
func Render(cubes []cube.Cube, names []string) string {
	if len(cubes) == 0 {
		return "0"
	}
	width := cubes[0].Width()
	if len(names) < width {
		full := DefaultNames(width)
		copy(full, names)
		names = full
	}
	sep := ""
	for _, n := range names[:width] {
		if len(n) != 1 {
			sep = "*"
			break
		}
	}

	terms := make([]string, 0, len(cubes))
	for _, c := range cubes {
		terms = append(terms, product(c, names, sep))
	}
	return strings.Join(terms, " + ")
}

func product(c cube.Cube, names []string, sep string) string {
	var lits []string
	for j := 0; j < c.Width(); j++ {
		switch c.At(j) {
		case '1':
			lits = append(lits, names[j])
		case '0':
			lits = append(lits, names[j]+"'")
		}
	}
	if len(lits) == 0 {
		return "1"
	}
	return strings.Join(lits, sep)
}
