package debugger

import (
	"strconv"

	"github.com/aj-kip/erfindung/fixed"
	"github.com/aj-kip/erfindung/isa"
	"github.com/aj-kip/erfindung/machine"
)

// Snapshot is the read-only state a Debugger renders against: the eight
// CPU registers and the assembler's dense instruction-index -> source-line
// map. Re-architected per the original's friend-class "attorney" pattern:
// rather than the debugger reaching into machine.CPU's exported fields
// directly, the caller hands it a value copy after every step.
type Snapshot struct {
	Registers  [8]fixed.Word
	InstToLine []int
}

// Interpretation selects how InterpretRegister formats a register's value.
type Interpretation int

const (
	AsInt Interpretation = iota
	AsFP
)

// Debugger holds the current Snapshot plus the break-point set armed
// against it.
type Debugger struct {
	Breakpoints *BreakpointManager
	snapshot    Snapshot
}

// New returns a Debugger with no break-points and an empty snapshot.
func New() *Debugger {
	return &Debugger{Breakpoints: NewBreakpointManager()}
}

// Update replaces the current snapshot, called once per CPU step by the
// owning driver.
func (d *Debugger) Update(snap Snapshot) {
	d.snapshot = snap
}

// Snapshot returns the most recently recorded snapshot.
func (d *Debugger) Snapshot() Snapshot {
	return d.snapshot
}

// AddBreakPoint arms a break-point at the instruction nearest line.
func (d *Debugger) AddBreakPoint(line int) (int, bool) {
	return d.Breakpoints.Add(line, d.snapshot.InstToLine)
}

// AtBreakPoint reports whether the current PC's source line has an armed
// break-point.
func (d *Debugger) AtBreakPoint() bool {
	pc := int(d.snapshot.Registers[isa.PC])
	if pc < 0 || pc >= len(d.snapshot.InstToLine) {
		return false
	}
	return d.Breakpoints.Has(d.snapshot.InstToLine[pc])
}

// InterpretRegister formats register r's value as a decimal integer or a
// fixed-point number. If memory is non-nil and r holds a valid RAM word
// address, the formatted value is the memory cell it points at rather than
// the raw register — mirroring the original's "does this look like a
// pointer" convenience for the debugger REPL.
func (d *Debugger) InterpretRegister(r isa.Register, mode Interpretation, memory *machine.Bus) string {
	source := uint32(d.snapshot.Registers[r])
	if memory != nil && int(source) < len(memory.RAM) {
		source = uint32(memory.RAM[source])
	}

	label := r.String() + ": "
	switch mode {
	case AsFP:
		return label + strconv.FormatFloat(fixed.ToFloat64(fixed.Word(source)), 'f', -1, 64)
	case AsInt:
		return label + strconv.Itoa(int(int32(source)))
	default:
		return label + "?"
	}
}
