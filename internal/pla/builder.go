package pla

import (
	"fmt"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/pborges/qelm/internal/cube"
)

// MaxFreeInputs is the largest number of '-' positions a single input
// row may carry. Each free position doubles the minterms the row expands
// to.
const MaxFreeInputs = 20

// Function is one output of a truth table: its on-set and don't-care set
// over Inputs variables. A minterm never appears in both sets.
type Function struct {
	Index      int
	Name       string
	Inputs     int
	InputNames []string
	On         []uint64
	DC         []uint64
}

// OnCubes returns the on-set as minterm cubes.
func (f Function) OnCubes() ([]cube.Cube, error) {
	return cube.FromMinterms(f.Inputs, f.On, false)
}

// DCCubes returns the don't-care set as minterm cubes.
func (f Function) DCCubes() ([]cube.Cube, error) {
	return cube.FromMinterms(f.Inputs, f.DC, true)
}

// Builder accumulates rows for every output of a table. Functions only
// exist once Build is called, all at once.
type Builder struct {
	inputs  int
	outputs int
	on      []mapset.Set[uint64]
	dc      []mapset.Set[uint64]
}

func NewBuilder(inputs, outputs int) *Builder {
	b := &Builder{
		inputs:  inputs,
		outputs: outputs,
		on:      make([]mapset.Set[uint64], outputs),
		dc:      make([]mapset.Set[uint64], outputs),
	}
	for i := 0; i < outputs; i++ {
		b.on[i] = mapset.NewThreadUnsafeSet[uint64]()
		b.dc[i] = mapset.NewThreadUnsafeSet[uint64]()
	}
	return b
}

// Add records one row. Output symbol 1 puts the row's minterms in that
// output's on-set, '-' or '2' in its don't-care set; '0' and '~' leave
// the output untouched.
func (b *Builder) Add(in, out string) error {
	if len(in) != b.inputs {
		return fmt.Errorf("input part %q has %d positions, want %d", in, len(in), b.inputs)
	}
	if len(out) != b.outputs {
		return fmt.Errorf("output part %q has %d positions, want %d", out, len(out), b.outputs)
	}
	var ms []uint64
	expand := func() error {
		if ms != nil {
			return nil
		}
		var err error
		ms, err = Expand(in)
		return err
	}
	for i := 0; i < len(out); i++ {
		var dst mapset.Set[uint64]
		switch out[i] {
		case '1':
			dst = b.on[i]
		case '-', '2':
			dst = b.dc[i]
		case '0', '~':
			continue
		default:
			return fmt.Errorf("invalid output symbol %q", out[i])
		}
		if err := expand(); err != nil {
			return err
		}
		dst.Append(ms...)
	}
	return nil
}

// Build returns one Function per output, in output order. Minterms given
// as both on and don't-care are on.
func (b *Builder) Build() []Function {
	fns := make([]Function, b.outputs)
	for i := range fns {
		on := b.on[i].ToSlice()
		slices.Sort(on)
		var dc []uint64
		for m := range b.dc[i].Iter() {
			if !b.on[i].Contains(m) {
				dc = append(dc, m)
			}
		}
		slices.Sort(dc)
		fns[i] = Function{Index: i, Inputs: b.inputs, On: on, DC: dc}
	}
	return fns
}

// Expand lists the minterms matched by an input pattern over {0,1,-} in
// ascending order.
func Expand(in string) ([]uint64, error) {
	var base uint64
	var free []int
	for j := 0; j < len(in); j++ {
		bit := len(in) - 1 - j
		switch in[j] {
		case '1':
			base |= uint64(1) << bit
		case '0':
		case '-':
			free = append(free, bit)
		default:
			return nil, fmt.Errorf("invalid input symbol %q", in[j])
		}
	}
	if len(free) > MaxFreeInputs {
		return nil, fmt.Errorf("input part %q has %d free positions, at most %d are expanded", in, len(free), MaxFreeInputs)
	}
	slices.Reverse(free)
	n := 1 << len(free)
	out := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		m := base
		for k, bit := range free {
			if i&(1<<k) != 0 {
				m |= uint64(1) << bit
			}
		}
		out = append(out, m)
	}
	return out, nil
}
