package pla

import (
	"fmt"
	"io"
	"strings"

	"github.com/pborges/qelm/internal/cube"
)

// Cover is the minimized cover of one output.
type Cover struct {
	Name  string
	Cubes []cube.Cube
}

// Format renders covers as a PLA over the given inputs. Products shared
// by several outputs are written once with a 1 in each of their output
// columns; rows appear in order of first use.
func Format(inputs int, inputNames []string, covers []Cover) string {
	var order []string
	cols := make(map[string][]byte)
	for i, c := range covers {
		for _, cb := range c.Cubes {
			p := cb.Pattern()
			row, ok := cols[p]
			if !ok {
				row = []byte(strings.Repeat("0", len(covers)))
				cols[p] = row
				order = append(order, p)
			}
			row[i] = '1'
		}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, ".i %d\n", inputs)
	fmt.Fprintf(&buf, ".o %d\n", len(covers))
	if len(inputNames) == inputs {
		fmt.Fprintf(&buf, ".ilb %s\n", strings.Join(inputNames, " "))
	}
	names := make([]string, len(covers))
	for i, c := range covers {
		names[i] = c.Name
	}
	fmt.Fprintf(&buf, ".ob %s\n", strings.Join(names, " "))
	buf.WriteString(".type f\n")
	fmt.Fprintf(&buf, ".p %d\n", len(order))
	for _, p := range order {
		buf.WriteString(p)
		buf.WriteByte(' ')
		buf.Write(cols[p])
		buf.WriteByte('\n')
	}
	buf.WriteString(".e\n")
	return buf.String()
}

func Write(w io.Writer, inputs int, inputNames []string, covers []Cover) error {
	_, err := io.WriteString(w, Format(inputs, inputNames, covers))
	return err
}
