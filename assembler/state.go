package assembler

import (
	"github.com/aj-kip/erfindung/isa"
)

// Assumption is the transient numeric-type assumption that disambiguates
// bare-register arithmetic as integer or fixed-point.
type Assumption int

const (
	AssumeNone Assumption = iota
	AssumeInt
	AssumeFP
)

// IOConvention governs whether the "io" pseudo-instruction's GPU
// sub-commands (upload/draw/clear/unload) save and restore the scratch
// register they use, or spend it freely (the caller's problem to preserve,
// if it cares). The halt, wait and APU expansions overwrite the scratch
// register under either convention.
type IOConvention int

const (
	IOSaveAndRestore IOConvention = iota
	IOThrowAway
)

// LabelInfo is a label table entry: the program-word index it resolved to,
// and the source line it was declared on (for duplicate-label diagnostics).
type LabelInfo struct {
	Index int
	Line  int
}

// Fixup is a deferred patch into an already-emitted instruction, applied by
// Resolve once every label has a known address.
type Fixup struct {
	Index int // program-word position of the placeholder instruction
	Label string
	Line  int
}

// TextState is the assembler's single mutable context, threaded through
// every per-mnemonic encoder: the emitted instruction buffer, the label
// table, the outstanding fixups, the current numeric assumption, and
// collected warnings. This replaces the friend-class/attorney pattern the
// original debugger used to reach into the assembler — callers get a
// Snapshot (see the debugger package) instead of raw access to this type.
type TextState struct {
	Filename   string
	Program    []isa.Word
	LineMap    []int // InstructionToSourceLine: dense, index-aligned with Program
	Labels     map[string]LabelInfo
	Fixups     []Fixup
	Assumption Assumption
	IOConv     IOConvention
	Errors     ErrorList
	curLine    int
}

// NewTextState creates an empty assembly context for filename.
func NewTextState(filename string) *TextState {
	return &TextState{
		Filename: filename,
		Labels:   make(map[string]LabelInfo),
	}
}

// Emit appends an instruction to the program buffer, recording its source
// line in the line map, and returns its program-word index.
func (s *TextState) Emit(w isa.Word, line int) int {
	idx := len(s.Program)
	s.Program = append(s.Program, w)
	s.LineMap = append(s.LineMap, line)
	return idx
}

// AddFixup records that the instruction at idx needs label to be patched in
// once it resolves.
func (s *TextState) AddFixup(idx int, label string, line int) {
	s.Fixups = append(s.Fixups, Fixup{Index: idx, Label: label, Line: line})
}

// BindLabel records a label at the current program position. Duplicate
// names, or names that parse as a register, are errors.
func (s *TextState) BindLabel(name string, line int) error {
	if _, isReg := isa.ParseRegister(name); isReg {
		return NewError(s.pos(line), ErrorBadParameterForm, "label name \""+name+"\" shadows a register")
	}
	if existing, ok := s.Labels[name]; ok {
		return NewError(s.pos(line), ErrorDuplicateLabel,
			"label \""+name+"\" already bound at line "+itoa(existing.Line))
	}
	s.Labels[name] = LabelInfo{Index: len(s.Program), Line: line}
	return nil
}

func (s *TextState) pos(line int) Position {
	return Position{Filename: s.Filename, Line: line, Column: 1}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
