// Package pla reads and writes Berkeley PLA truth tables.
package pla

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/pborges/qelm/internal/cube"
)

// PLA is a parsed truth table. Rows are kept as written; Functions turns
// them into per-output minterm sets.
type PLA struct {
	Inputs      int
	Outputs     int
	InputNames  []string
	OutputNames []string
	// Type is the .type directive, "f" when absent.
	Type string
	// Products is the row count announced by .p, zero when absent.
	Products int
	Rows     []Row
}

// Row is one cube line of the table.
type Row struct {
	In   string
	Out  string
	Line int
}

func Parse(src []byte) (*PLA, error) {
	p := &PLA{Type: "f"}
	sc := bufio.NewScanner(bytes.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if text[0] == '.' {
			done, err := p.directive(text, line)
			if err != nil {
				return nil, err
			}
			if done {
				break
			}
			continue
		}
		if err := p.row(text, line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading pla: %w", err)
	}
	if p.Inputs == 0 {
		return nil, fmt.Errorf("missing .i directive and no rows to infer it from")
	}
	if p.Outputs == 0 {
		p.Outputs = 1
	}
	return p, nil
}

func (p *PLA) directive(text string, line int) (bool, error) {
	fields := strings.Fields(text)
	switch fields[0] {
	case ".e", ".end":
		return true, nil
	case ".i", ".o", ".p":
		if len(fields) != 2 {
			return false, fmt.Errorf("line %d: %s takes one argument", line, fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return false, fmt.Errorf("line %d: invalid %s value %q", line, fields[0], fields[1])
		}
		switch fields[0] {
		case ".i":
			if n < 1 || n > cube.MaxWidth {
				return false, fmt.Errorf("line %d: .i %d out of range 1..%d", line, n, cube.MaxWidth)
			}
			if len(p.Rows) > 0 && n != p.Inputs {
				return false, fmt.Errorf("line %d: .i %d after rows of width %d", line, n, p.Inputs)
			}
			p.Inputs = n
		case ".o":
			if n < 1 {
				return false, fmt.Errorf("line %d: .o must be at least 1", line)
			}
			if len(p.Rows) > 0 && n != p.Outputs {
				return false, fmt.Errorf("line %d: .o %d after rows with %d outputs", line, n, p.Outputs)
			}
			p.Outputs = n
		case ".p":
			p.Products = n
		}
	case ".ilb":
		p.InputNames = fields[1:]
	case ".ob":
		p.OutputNames = fields[1:]
	case ".type":
		if len(fields) != 2 {
			return false, fmt.Errorf("line %d: .type takes one argument", line)
		}
		switch fields[1] {
		case "f", "fd":
			p.Type = fields[1]
		default:
			return false, fmt.Errorf("line %d: unsupported .type %q", line, fields[1])
		}
	}
	return false, nil
}

func (p *PLA) row(text string, line int) error {
	fields := strings.Fields(text)
	var in, out string
	switch {
	case len(fields) == 2:
		in, out = fields[0], fields[1]
	case len(fields) == 1 && p.Inputs > 0 && p.Outputs > 0 && len(fields[0]) == p.Inputs+p.Outputs:
		in, out = fields[0][:p.Inputs], fields[0][p.Inputs:]
	default:
		return fmt.Errorf("line %d: expected <inputs> <outputs>, got %q", line, text)
	}

	if p.Inputs == 0 {
		if len(in) > cube.MaxWidth {
			return fmt.Errorf("line %d: %d inputs, at most %d are supported", line, len(in), cube.MaxWidth)
		}
		p.Inputs = len(in)
	}
	if p.Outputs == 0 {
		p.Outputs = len(out)
	}
	if len(in) != p.Inputs {
		return fmt.Errorf("line %d: input part %q has %d positions, want %d", line, in, len(in), p.Inputs)
	}
	if len(out) != p.Outputs {
		return fmt.Errorf("line %d: output part %q has %d positions, want %d", line, out, len(out), p.Outputs)
	}
	for i := 0; i < len(in); i++ {
		switch in[i] {
		case '0', '1', '-':
		default:
			return fmt.Errorf("line %d: invalid input symbol %q", line, in[i])
		}
	}
	for i := 0; i < len(out); i++ {
		switch out[i] {
		case '0', '1', '-', '2', '~':
		default:
			return fmt.Errorf("line %d: invalid output symbol %q", line, out[i])
		}
	}
	p.Rows = append(p.Rows, Row{In: in, Out: out, Line: line})
	return nil
}

// InputName returns the name of input i, or "" when .ilb did not name it.
func (p *PLA) InputName(i int) string {
	if i < len(p.InputNames) {
		return p.InputNames[i]
	}
	return ""
}

// OutputName returns the .ob name of output i, or f<i>.
func (p *PLA) OutputName(i int) string {
	if i < len(p.OutputNames) {
		return p.OutputNames[i]
	}
	return "f" + strconv.Itoa(i)
}

// Functions splits the table into one Function per output.
func (p *PLA) Functions() ([]Function, error) {
	b := NewBuilder(p.Inputs, p.Outputs)
	for _, r := range p.Rows {
		if err := b.Add(r.In, r.Out); err != nil {
			return nil, fmt.Errorf("line %d: %w", r.Line, err)
		}
	}
	fns := b.Build()
	for i := range fns {
		fns[i].Name = p.OutputName(i)
		fns[i].InputNames = p.InputNames
	}
	return fns, nil
}
