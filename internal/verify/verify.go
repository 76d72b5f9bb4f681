// Package verify checks minimized covers against the function they were
// computed from, using binary decision diagrams.
package verify

import (
	"errors"
	"fmt"

	"github.com/dalzilio/rudd"

	"github.com/pborges/qelm/internal/cube"
)

var (
	// ErrNotSound means the cover misses an on-set minterm.
	ErrNotSound = errors.New("cover does not cover the on-set")
	// ErrNotSafe means the cover includes a minterm outside on ∪ dc.
	ErrNotSafe = errors.New("cover leaves on ∪ dc")
)

// Check reports whether cover implements the function with on-set on and
// don't-care set dc over width variables. The returned error wraps
// ErrNotSound, naming an uncovered minterm, or ErrNotSafe, naming a cube
// that reaches the off-set.
func Check(width int, on, dc []uint64, cover []cube.Cube) error {
	if width < 1 || width > cube.MaxWidth {
		return fmt.Errorf("width %d out of range 1..%d", width, cube.MaxWidth)
	}
	b, err := rudd.New(width, rudd.Nodesize(10000), rudd.Cachesize(5000))
	if err != nil {
		return fmt.Errorf("creating bdd: %w", err)
	}

	onF := mintermSet(b, width, on)
	careF := b.Or(onF, mintermSet(b, width, dc))
	coverF := b.False()
	for _, c := range cover {
		if c.Width() != width {
			return fmt.Errorf("cube %s has width %d, want %d", c, c.Width(), width)
		}
		coverF = b.Or(coverF, product(b, c))
	}
	if msg := b.Error(); msg != "" {
		return fmt.Errorf("bdd: %s", msg)
	}

	if !b.Equal(b.And(onF, b.Not(coverF)), b.False()) {
		for _, m := range on {
			if !b.Equal(b.And(minterm(b, width, m), b.Not(coverF)), b.False()) {
				return fmt.Errorf("%w: minterm %0*b uncovered", ErrNotSound, width, m)
			}
		}
	}
	for _, c := range cover {
		if !b.Equal(b.And(product(b, c), b.Not(careF)), b.False()) {
			return fmt.Errorf("%w: cube %s reaches the off-set", ErrNotSafe, c)
		}
	}
	return nil
}

// Equivalent reports whether two covers denote the same function.
func Equivalent(width int, a, b []cube.Cube) (bool, error) {
	bdd, err := rudd.New(width, rudd.Nodesize(10000), rudd.Cachesize(5000))
	if err != nil {
		return false, fmt.Errorf("creating bdd: %w", err)
	}
	fa, fb := bdd.False(), bdd.False()
	for _, c := range a {
		fa = bdd.Or(fa, product(bdd, c))
	}
	for _, c := range b {
		fb = bdd.Or(fb, product(bdd, c))
	}
	if msg := bdd.Error(); msg != "" {
		return false, fmt.Errorf("bdd: %s", msg)
	}
	return bdd.Equal(fa, fb), nil
}

// Variable j of the bdd is pattern position j.
func product(b *rudd.BDD, c cube.Cube) rudd.Node {
	n := b.True()
	for j := 0; j < c.Width(); j++ {
		switch c.At(j) {
		case '1':
			n = b.And(n, b.Ithvar(j))
		case '0':
			n = b.And(n, b.NIthvar(j))
		}
	}
	return n
}

func minterm(b *rudd.BDD, width int, m uint64) rudd.Node {
	p := b.True()
	for j := 0; j < width; j++ {
		if m>>(width-1-j)&1 == 1 {
			p = b.And(p, b.Ithvar(j))
		} else {
			p = b.And(p, b.NIthvar(j))
		}
	}
	return p
}

func mintermSet(b *rudd.BDD, width int, ms []uint64) rudd.Node {
	n := b.False()
	for _, m := range ms {
		n = b.Or(n, minterm(b, width, m))
	}
	return n
}
