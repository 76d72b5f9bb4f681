package qm

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pborges/qelm/internal/cube"
	"github.com/pborges/qelm/internal/testutil"
)

func patternsOf(cubes []cube.Cube) []string {
	out := make([]string, len(cubes))
	for i, c := range cubes {
		out[i] = c.Pattern()
	}
	sort.Strings(out)
	return out
}

func minimize(t *testing.T, width int, on, dc []uint64, opts Options) Result {
	t.Helper()
	res, err := Minimize(testutil.Cubes(width, on, false), testutil.Cubes(width, dc, true), opts)
	require.NoError(t, err)
	if diff := testutil.CompareCover(width, on, dc, res.Cubes); diff != "" {
		t.Fatalf("cover is wrong for on=%v dc=%v:\n%s", on, dc, diff)
	}
	return res
}

func TestCombinerRound(t *testing.T) {
	cb := NewCombiner(testutil.Cubes(3, []uint64{0, 1, 2, 5, 0}, false))
	assert.Equal(t, 4, cb.Len())

	next, primes := cb.Round()
	assert.Equal(t, []string{"00-", "0-0", "-01"}, func() []string {
		var out []string
		for _, c := range next {
			out = append(out, c.Pattern())
		}
		return out
	}())
	assert.Empty(t, primes)
	for h := Handle(0); int(h) < cb.Len(); h++ {
		assert.True(t, cb.Used(h), "cube %s", cb.Cube(h))
	}
}

func TestCombinerKeepsUnused(t *testing.T) {
	cb := NewCombiner(testutil.Cubes(3, []uint64{0, 7}, false))
	next, primes := cb.Round()
	assert.Empty(t, next)
	assert.Equal(t, []string{"000", "111"}, patternsOf(primes))
}

func TestCombinerDeduplicates(t *testing.T) {
	// 00-, 01-, 10-, 11- over two rounds: "0--" and "-0-" style cubes are
	// reachable through two different pairs and must appear once.
	gen := []cube.Cube{
		cube.MustParse("00-", []uint64{0, 1}, false),
		cube.MustParse("01-", []uint64{2, 3}, false),
		cube.MustParse("10-", []uint64{4, 5}, false),
		cube.MustParse("11-", []uint64{6, 7}, false),
	}
	next, _ := NewCombiner(gen).Round()
	assert.Equal(t, []string{"-0-", "-1-", "0--", "1--"}, patternsOf(next))
	final, primes := NewCombiner(next).Round()
	assert.Equal(t, []string{"---"}, patternsOf(final))
	assert.Empty(t, primes)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, final[0].Minterms())
}

func TestTabulate(t *testing.T) {
	// f = Σm(0,1,2,5,6,7): the classic cyclic function with six primes.
	primes := Tabulate(testutil.Cubes(3, []uint64{0, 1, 2, 5, 6, 7}, false))
	assert.Equal(t, []string{"-01", "-10", "0-0", "00-", "1-1", "11-"}, patternsOf(primes))
}

func TestScenarioTautology(t *testing.T) {
	res := minimize(t, 3, []uint64{0, 1, 2, 3, 4, 5, 6, 7}, nil, Options{})
	require.Len(t, res.Cubes, 1)
	assert.Equal(t, "---", res.Cubes[0].Pattern())
	assert.Len(t, res.Cubes[0].Minterms(), 8)
	assert.Equal(t, 0, cube.Literals(res.Cubes))
}

func TestScenarioTwoVariables(t *testing.T) {
	res := minimize(t, 2, []uint64{0, 1, 2}, nil, Options{})
	assert.Equal(t, []string{"-0", "0-"}, patternsOf(res.Cubes))
	assert.Equal(t, 2, cube.Literals(res.Cubes))
	assert.Equal(t, 2, res.Essentials)
	assert.Empty(t, res.Solver)
}

func TestScenarioSingleMintermAllDontCare(t *testing.T) {
	for m := uint64(0); m < 8; m++ {
		var dc []uint64
		for d := uint64(0); d < 8; d++ {
			if d != m {
				dc = append(dc, d)
			}
		}
		res := minimize(t, 3, []uint64{m}, dc, Options{})
		require.Len(t, res.Cubes, 1)
		assert.Equal(t, "---", res.Cubes[0].Pattern())
		assert.False(t, res.Cubes[0].DontCare())
	}
}

func TestDegenerate(t *testing.T) {
	res, err := Minimize(nil, testutil.Cubes(2, []uint64{1}, true), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Cubes)

	res = minimize(t, 4, []uint64{9}, nil, Options{})
	assert.Equal(t, []string{"1001"}, patternsOf(res.Cubes))
}

func TestOnOverlappingDontCare(t *testing.T) {
	res := minimize(t, 2, []uint64{0, 1}, []uint64{1, 3}, Options{})
	assert.Equal(t, []string{"0-"}, patternsOf(res.Cubes))
	assert.False(t, res.Cubes[0].DontCare())
}

func TestCyclicNeedsPetrick(t *testing.T) {
	for _, strategy := range []CoverStrategy{CoverAuto, CoverPetrick, CoverSAT, CoverPB} {
		t.Run(string(strategy), func(t *testing.T) {
			res := minimize(t, 3, []uint64{0, 1, 2, 5, 6, 7}, nil, Options{Cover: strategy})
			assert.Equal(t, 6, res.Primes)
			assert.Equal(t, 0, res.Essentials)
			assert.Equal(t, 6, res.Residual)
			assert.Len(t, res.Cubes, 3)
			assert.Equal(t, 6, cube.Literals(res.Cubes))
			if strategy == CoverAuto {
				assert.Equal(t, CoverPetrick, res.Solver)
			} else {
				assert.Equal(t, strategy, res.Solver)
			}
		})
	}
}

func TestPetrickTieBreakIsDeterministic(t *testing.T) {
	on := []uint64{0, 1, 2, 5, 6, 7}
	first := minimize(t, 3, on, nil, Options{Cover: CoverPetrick})
	for i := 0; i < 5; i++ {
		again := minimize(t, 3, on, nil, Options{Cover: CoverPetrick})
		assert.Equal(t, patternsOf(first.Cubes), patternsOf(again.Cubes))
	}
}

func TestAutoFallsBackToSAT(t *testing.T) {
	res := minimize(t, 3, []uint64{0, 1, 2, 5, 6, 7}, nil, Options{Cover: CoverAuto, PetrickLimit: 1})
	assert.Equal(t, CoverSAT, res.Solver)
	assert.Len(t, res.Cubes, 3)
}

func TestPetrickLimitWithoutFallback(t *testing.T) {
	_, err := Minimize(testutil.Cubes(3, []uint64{0, 1, 2, 5, 6, 7}, false), nil, Options{Cover: CoverPetrick, PetrickLimit: 1})
	assert.ErrorIs(t, err, ErrProductTooLarge)
}

// TestExhaustiveThreeVariables checks every 3-variable function with
// don't-cares against an exhaustive search.
func TestExhaustiveThreeVariables(t *testing.T) {
	const width = 3
	total := 1
	for i := 0; i < 1<<width; i++ {
		total *= 3
	}
	for code := 0; code < total; code++ {
		var on, dc []uint64
		x := code
		for m := uint64(0); m < 1<<width; m++ {
			switch x % 3 {
			case 1:
				on = append(on, m)
			case 2:
				dc = append(dc, m)
			}
			x /= 3
		}
		res := minimize(t, width, on, dc, Options{})
		size, lits, _ := testutil.MinimumCover(width, on, dc)
		if !assert.Equal(t, size, len(res.Cubes), "on=%v dc=%v cover=%v", on, dc, res.Cubes) {
			return
		}
		if !assert.Equal(t, lits, cube.Literals(res.Cubes), "on=%v dc=%v cover=%v", on, dc, res.Cubes) {
			return
		}
	}
}

func TestFourVariableMinimality(t *testing.T) {
	cases := []struct {
		name string
		on   []uint64
		dc   []uint64
	}{
		{"textbook", []uint64{4, 8, 10, 11, 12, 15}, []uint64{9, 14}},
		{"xor", []uint64{1, 2, 4, 7, 8, 11, 13, 14}, nil},
		{"cyclic", []uint64{0, 2, 5, 6, 7, 8, 10, 13, 15}, nil},
		{"sparse", []uint64{0, 5, 10, 15}, []uint64{1, 4}},
		{"dense", []uint64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 12, 13}, []uint64{14}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := minimize(t, 4, tc.on, tc.dc, Options{})
			size, lits, _ := testutil.MinimumCover(4, tc.on, tc.dc)
			assert.Equal(t, size, len(res.Cubes))
			assert.Equal(t, lits, cube.Literals(res.Cubes))
		})
	}
}

func TestSATMatchesPetrickCardinality(t *testing.T) {
	on := []uint64{0, 2, 5, 6, 7, 8, 10, 13, 15}
	p := minimize(t, 4, on, nil, Options{Cover: CoverPetrick})
	s := minimize(t, 4, on, nil, Options{Cover: CoverSAT})
	assert.Equal(t, len(p.Cubes), len(s.Cubes))
}

func TestPBMatchesPetrick(t *testing.T) {
	cases := [][]uint64{
		{0, 2, 5, 6, 7, 8, 10, 13, 15},
		{1, 2, 4, 7, 8, 11, 13, 14},
		{0, 1, 2, 5, 6, 7, 8, 9, 10, 14},
	}
	for _, on := range cases {
		p := minimize(t, 4, on, nil, Options{Cover: CoverPetrick})
		b := minimize(t, 4, on, nil, Options{Cover: CoverPB})
		assert.Equal(t, len(p.Cubes), len(b.Cubes), "on=%v", on)
		assert.Equal(t, cube.Literals(p.Cubes), cube.Literals(b.Cubes), "on=%v", on)
	}
}

func TestParseCoverStrategy(t *testing.T) {
	for in, want := range map[string]CoverStrategy{"": CoverAuto, "auto": CoverAuto, "petrick": CoverPetrick, "sat": CoverSAT, "pb": CoverPB} {
		got, err := ParseCoverStrategy(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCoverStrategy("greedy")
	assert.Error(t, err)
}

func TestCleanup(t *testing.T) {
	cover := []cube.Cube{
		cube.MustParse("0-", []uint64{0, 1}, false),
		cube.MustParse("1-", []uint64{2, 3}, false),
	}
	assert.Equal(t, []string{"--"}, patternsOf(Cleanup(cover)))

	single := cover[:1]
	assert.Equal(t, single, Cleanup(single))
}
