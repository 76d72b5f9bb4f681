package cube

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allPatterns enumerates every ternary pattern of the given width.
func allPatterns(width int) []string {
	out := []string{""}
	for i := 0; i < width; i++ {
		var next []string
		for _, p := range out {
			next = append(next, p+"0", p+"1", p+"-")
		}
		out = next
	}
	return out
}

func TestFromRow(t *testing.T) {
	c, err := FromRow("0110", false)
	require.NoError(t, err)
	assert.Equal(t, "0110", c.Pattern())
	assert.Equal(t, []uint64{6}, c.Minterms())
	assert.Equal(t, 2, c.Popcount())
	assert.Equal(t, 4, c.Literals())
	assert.False(t, c.DontCare())

	_, err = FromRow("01-0", false)
	assert.Error(t, err)
	_, err = FromRow("", false)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	c, err := Parse("1-0", []uint64{6, 4, 4}, true)
	require.NoError(t, err)
	assert.Equal(t, "1-0", c.Pattern())
	assert.Equal(t, []uint64{4, 6}, c.Minterms())
	assert.Equal(t, 1, c.Popcount())
	assert.Equal(t, 2, c.Literals())
	assert.True(t, c.DontCare())
	assert.True(t, c.Covers(6))
	assert.False(t, c.Covers(5))

	_, err = Parse("1x0", []uint64{4}, false)
	assert.Error(t, err)
	_, err = Parse("1-0", nil, false)
	assert.Error(t, err)
}

func TestFromMintermRange(t *testing.T) {
	_, err := FromMinterm(8, 3, false)
	assert.Error(t, err)
	c, err := FromMinterm(5, 3, false)
	require.NoError(t, err)
	assert.Equal(t, "101", c.String())

	wide, err := FromMinterm(^uint64(0), 64, false)
	require.NoError(t, err)
	assert.Equal(t, 64, wide.Popcount())
}

func TestCombinableSymmetric(t *testing.T) {
	patterns := allPatterns(3)
	for _, pa := range patterns {
		for _, pb := range patterns {
			a := MustParse(pa, []uint64{0}, false)
			b := MustParse(pb, []uint64{1}, false)
			assert.Equal(t, Combinable(a, b), Combinable(b, a), "%s vs %s", pa, pb)
		}
	}
}

func TestCombinable(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"000", "001", true},
		{"000", "011", false},
		{"00-", "01-", true},
		{"00-", "001", true},
		{"0-1", "01-", false},
		{"---", "---", false},
		{"101", "101", false},
	}
	for _, tc := range cases {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			a := MustParse(tc.a, []uint64{0}, false)
			b := MustParse(tc.b, []uint64{1}, false)
			assert.Equal(t, tc.want, Combinable(a, b))
		})
	}

	short := MustParse("01", []uint64{1}, false)
	long := MustParse("011", []uint64{3}, false)
	assert.False(t, Combinable(short, long))
}

func TestCombine(t *testing.T) {
	patterns := allPatterns(3)
	for _, pa := range patterns {
		for _, pb := range patterns {
			a := MustParse(pa, []uint64{1, 2}, false)
			b := MustParse(pb, []uint64{2, 7}, false)
			if !Combinable(a, b) {
				continue
			}
			c, err := Combine(a, b)
			require.NoError(t, err)
			assert.Equal(t, []uint64{1, 2, 7}, c.Minterms())
			differing := 0
			for j := 0; j < 3; j++ {
				if pa[j] == pb[j] {
					assert.Equal(t, pa[j], c.At(j), "%s+%s at %d", pa, pb, j)
				} else {
					differing++
					assert.Equal(t, byte('-'), c.At(j), "%s+%s at %d", pa, pb, j)
				}
			}
			assert.Equal(t, 1, differing)
		}
	}
}

func TestCombineInvalid(t *testing.T) {
	a := MustParse("00", []uint64{0}, false)
	b := MustParse("11", []uint64{3}, false)
	_, err := Combine(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOperation))

	_, ok := TryCombine(a, b)
	assert.False(t, ok)
}

func TestCombineDontCare(t *testing.T) {
	on := MustParse("00", []uint64{0}, false)
	dc1 := MustParse("01", []uint64{1}, true)
	dc2 := MustParse("11", []uint64{3}, true)

	c, ok := TryCombine(on, dc1)
	require.True(t, ok)
	assert.False(t, c.DontCare())

	c, ok = TryCombine(dc1, dc2)
	require.True(t, ok)
	assert.True(t, c.DontCare())
	assert.Equal(t, "-1", c.Pattern())
}

func TestEqualAndKey(t *testing.T) {
	a := MustParse("1-", []uint64{2, 3}, false)
	b := MustParse("1-", []uint64{3, 2}, false)
	dc := MustParse("1-", []uint64{2, 3}, true)
	other := MustParse("1-", []uint64{2}, false)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(dc))
	assert.NotEqual(t, a.Key(), dc.Key())
	assert.False(t, a.Equal(other))
	assert.NotEqual(t, a.Key(), other.Key())
	assert.True(t, slices.ContainsFunc([]Cube{other, b}, a.Equal))
	assert.False(t, slices.ContainsFunc([]Cube{other, dc}, a.Equal))
}

func TestCompare(t *testing.T) {
	a := MustParse("-1", []uint64{1, 3}, false)
	b := MustParse("01", []uint64{1}, false)
	c := MustParse("01", []uint64{1}, true)
	d := MustParse("01", []uint64{1, 3}, false)

	assert.Negative(t, Compare(a, b))
	assert.Negative(t, Compare(b, c))
	assert.Negative(t, Compare(b, d))
	assert.Zero(t, Compare(b, b))
	assert.Positive(t, Compare(c, b))
}

func TestLiterals(t *testing.T) {
	cover := []Cube{
		MustParse("0-", []uint64{0, 1}, false),
		MustParse("-0", []uint64{0, 2}, false),
		MustParse("--", []uint64{0, 1, 2, 3}, false),
	}
	assert.Equal(t, 2, Literals(cover))
	assert.Equal(t, 0, Literals(nil))
}

func TestGroupByPopcount(t *testing.T) {
	var cubes []Cube
	for _, row := range []string{"111", "000", "011", "100", "010"} {
		c, err := FromRow(row, false)
		require.NoError(t, err)
		cubes = append(cubes, c)
	}
	groups := GroupByPopcount(cubes)
	got := make(map[int][]string)
	var order []int
	for _, g := range groups {
		order = append(order, g.Ones)
		for _, c := range g.Cubes {
			got[g.Ones] = append(got[g.Ones], c.Pattern())
		}
	}
	want := map[int][]string{
		0: {"000"},
		1: {"100", "010"},
		2: {"011"},
		3: {"111"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, order)
	assert.Empty(t, GroupByPopcount(nil))
}
