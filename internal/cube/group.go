package cube

import "sort"

// Group holds the cubes sharing one popcount.
type Group struct {
	Ones  int
	Cubes []Cube
}

// GroupByPopcount partitions cubes by number of 1 literals. Groups are
// ordered by increasing popcount and keep the input order within a group.
func GroupByPopcount(cubes []Cube) []Group {
	ones, idx := PopcountIndex(cubes)
	groups := make([]Group, len(ones))
	for i := range ones {
		groups[i].Ones = ones[i]
		groups[i].Cubes = make([]Cube, len(idx[i]))
		for k, j := range idx[i] {
			groups[i].Cubes[k] = cubes[j]
		}
	}
	return groups
}

// PopcountIndex is GroupByPopcount over positions: ones[i] is the popcount
// shared by the cubes at positions idx[i].
func PopcountIndex(cubes []Cube) (ones []int, idx [][]int) {
	at := make(map[int]int)
	for j, c := range cubes {
		n := c.Popcount()
		i, ok := at[n]
		if !ok {
			i = len(ones)
			at[n] = i
			ones = append(ones, n)
			idx = append(idx, nil)
		}
		idx[i] = append(idx[i], j)
	}
	order := make([]int, len(ones))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return ones[order[a]] < ones[order[b]] })
	sortedOnes := make([]int, len(ones))
	sortedIdx := make([][]int, len(ones))
	for k, i := range order {
		sortedOnes[k] = ones[i]
		sortedIdx[k] = idx[i]
	}
	return sortedOnes, sortedIdx
}
