package cube

import (
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strconv"
	"strings"
)

// MaxWidth is the widest pattern a Cube can hold.
const MaxWidth = 64

// ErrInvalidOperation reports a broken caller contract, such as combining
// two cubes that are not adjacent.
var ErrInvalidOperation = errors.New("invalid operation")

// Cube is a product term over a fixed number of variables.
//
// The pattern is stored as two bitmasks: care has a 1 for every position
// holding a literal, value holds the literal's polarity (and is always
// zero where care is zero). Position j of the pattern maps to bit
// width-1-j, so a fully specified cube's value is its minterm number.
//
// The minterm list is authoritative for coverage. It is carried through
// every combination and never recomputed from the pattern.
type Cube struct {
	width    int
	value    uint64
	care     uint64
	minterms []uint64
	dontCare bool
}

func fullMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<width - 1
}

func checkWidth(width int) error {
	if width < 1 || width > MaxWidth {
		return fmt.Errorf("width %d out of range 1..%d", width, MaxWidth)
	}
	return nil
}

// FromMinterm returns the fully specified cube for minterm m.
func FromMinterm(m uint64, width int, dontCare bool) (Cube, error) {
	if err := checkWidth(width); err != nil {
		return Cube{}, err
	}
	mask := fullMask(width)
	if m&^mask != 0 {
		return Cube{}, fmt.Errorf("minterm %d does not fit in %d variables", m, width)
	}
	return Cube{
		width:    width,
		value:    m,
		care:     mask,
		minterms: []uint64{m},
		dontCare: dontCare,
	}, nil
}

// FromRow builds a cube from a fully specified row such as "0110".
func FromRow(row string, dontCare bool) (Cube, error) {
	if err := checkWidth(len(row)); err != nil {
		return Cube{}, err
	}
	var m uint64
	for i := 0; i < len(row); i++ {
		m <<= 1
		switch row[i] {
		case '1':
			m |= 1
		case '0':
		default:
			return Cube{}, fmt.Errorf("row %q: position %d is %q, want 0 or 1", row, i, row[i])
		}
	}
	return FromMinterm(m, len(row), dontCare)
}

// Parse builds a cube from a ternary pattern and the minterms it covers.
func Parse(pattern string, minterms []uint64, dontCare bool) (Cube, error) {
	if err := checkWidth(len(pattern)); err != nil {
		return Cube{}, err
	}
	if len(minterms) == 0 {
		return Cube{}, fmt.Errorf("pattern %q: empty minterm set", pattern)
	}
	c := Cube{width: len(pattern), dontCare: dontCare}
	for i := 0; i < len(pattern); i++ {
		bit := uint64(1) << (c.width - 1 - i)
		switch pattern[i] {
		case '1':
			c.care |= bit
			c.value |= bit
		case '0':
			c.care |= bit
		case '-':
		default:
			return Cube{}, fmt.Errorf("pattern %q: position %d is %q, want 0, 1 or -", pattern, i, pattern[i])
		}
	}
	ms := slices.Clone(minterms)
	slices.Sort(ms)
	c.minterms = slices.Compact(ms)
	return c, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// fixed tables.
func MustParse(pattern string, minterms []uint64, dontCare bool) Cube {
	c, err := Parse(pattern, minterms, dontCare)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Cube) Width() int { return c.width }

// DontCare reports whether the cube only stands for don't-care rows.
func (c Cube) DontCare() bool { return c.dontCare }

// Minterms returns the covered minterms in ascending order. The slice is
// shared and must not be modified.
func (c Cube) Minterms() []uint64 { return c.minterms }

// Covers reports whether m is in the cube's minterm set.
func (c Cube) Covers(m uint64) bool {
	_, ok := slices.BinarySearch(c.minterms, m)
	return ok
}

// Popcount returns the number of 1 literals.
func (c Cube) Popcount() int {
	return bits.OnesCount64(c.value)
}

// Literals returns the number of non-dash positions.
func (c Cube) Literals() int {
	return bits.OnesCount64(c.care)
}

// At returns the symbol at position j: '0', '1' or '-'.
func (c Cube) At(j int) byte {
	bit := uint64(1) << (c.width - 1 - j)
	switch {
	case c.care&bit == 0:
		return '-'
	case c.value&bit != 0:
		return '1'
	default:
		return '0'
	}
}

// Pattern renders the cube as a string over {0,1,-}.
func (c Cube) Pattern() string {
	b := make([]byte, c.width)
	for j := range b {
		b[j] = c.At(j)
	}
	return string(b)
}

func (c Cube) String() string {
	return c.Pattern()
}

// Key returns a string that is equal for two cubes iff Equal reports true.
func (c Cube) Key() string {
	var sb strings.Builder
	sb.Grow(c.width + 4*len(c.minterms) + 2)
	sb.WriteString(c.Pattern())
	if c.dontCare {
		sb.WriteString("|d")
	} else {
		sb.WriteString("|c")
	}
	var buf [20]byte
	for _, m := range c.minterms {
		sb.WriteByte(',')
		sb.Write(strconv.AppendUint(buf[:0], m, 10))
	}
	return sb.String()
}

// Equal compares pattern, minterm set and don't-care flag.
func (c Cube) Equal(o Cube) bool {
	return c.width == o.width &&
		c.value == o.value &&
		c.care == o.care &&
		c.dontCare == o.dontCare &&
		slices.Equal(c.minterms, o.minterms)
}

// Compare orders cubes by pattern, then minterm sequence, then the
// don't-care flag (false first).
func Compare(a, b Cube) int {
	if r := strings.Compare(a.Pattern(), b.Pattern()); r != 0 {
		return r
	}
	if r := slices.Compare(a.minterms, b.minterms); r != 0 {
		return r
	}
	switch {
	case a.dontCare == b.dontCare:
		return 0
	case a.dontCare:
		return 1
	default:
		return -1
	}
}

// diff returns a mask of the positions where a and b hold different
// symbols, a dash counting as a symbol of its own.
func diff(a, b Cube) uint64 {
	return (a.care ^ b.care) | ((a.value ^ b.value) & a.care & b.care)
}

// Combinable reports whether a and b have the same width and differ in
// exactly one position.
func Combinable(a, b Cube) bool {
	if a.width != b.width {
		return false
	}
	return bits.OnesCount64(diff(a, b)) == 1
}

// Combine merges two adjacent cubes. The differing position becomes a
// dash and the minterm sets are united. The result is a don't-care cube
// only when both parents are.
func Combine(a, b Cube) (Cube, error) {
	if !Combinable(a, b) {
		return Cube{}, fmt.Errorf("%w: cannot combine %s with %s", ErrInvalidOperation, a, b)
	}
	return merge(a, b), nil
}

// merge assumes Combinable(a, b).
func merge(a, b Cube) Cube {
	d := diff(a, b)
	return Cube{
		width:    a.width,
		value:    a.value &^ d,
		care:     a.care &^ d,
		minterms: union(a.minterms, b.minterms),
		dontCare: a.dontCare && b.dontCare,
	}
}

// TryCombine returns the merged cube and true when a and b are adjacent.
func TryCombine(a, b Cube) (Cube, bool) {
	if !Combinable(a, b) {
		return Cube{}, false
	}
	return merge(a, b), true
}

func union(a, b []uint64) []uint64 {
	out := make([]uint64, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Literals returns the total literal count of a cover.
func Literals(cubes []Cube) int {
	n := 0
	for _, c := range cubes {
		n += c.Literals()
	}
	return n
}

// FromMinterms returns one fully specified cube per minterm.
func FromMinterms(width int, minterms []uint64, dontCare bool) ([]Cube, error) {
	out := make([]Cube, 0, len(minterms))
	for _, m := range minterms {
		c, err := FromMinterm(m, width, dontCare)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
