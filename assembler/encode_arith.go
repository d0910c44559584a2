package assembler

import (
	"strings"

	"github.com/aj-kip/erfindung/isa"
)

// opNeedsAssumption is true for opcodes whose bare-register RRR form is
// genuinely ambiguous between integer and fixed-point execution (the
// operator behaves differently in each domain). PLUS/MINUS/AND/OR/XOR are
// type-indifferent at the bit level and never need one.
func opNeedsAssumption(op isa.Opcode) bool {
	switch op {
	case isa.TIMES, isa.DIVIDE, isa.MODULUS, isa.COMP:
		return true
	default:
		return false
	}
}

// forcedAssumption reports the assumption a "-int"/"-fp" mnemonic suffix
// demands, stripping the suffix from the literal.
func forcedAssumption(literal string) (base string, forced Assumption) {
	switch {
	case strings.HasSuffix(literal, "-int"):
		return strings.TrimSuffix(literal, "-int"), AssumeInt
	case strings.HasSuffix(literal, "-fp"):
		return strings.TrimSuffix(literal, "-fp"), AssumeFP
	default:
		return literal, AssumeNone
	}
}

// arithEncoder builds the encoder for one R-type opcode (PLUS, MINUS,
// TIMES, DIVIDE, MODULUS, AND, OR, XOR, COMP). All share one shape: three
// registers, or two registers plus an integer/fp/label immediate.
func arithEncoder(op isa.Opcode) EncoderFunc {
	return func(s *TextState, cur *Cursor, line int) error {
		mnem := cur.Next()
		_, forced := forcedAssumption(mnem.Literal)

		operands, err := readOperands(cur, line, s.Filename)
		if err != nil {
			s.Errors.AddError(err.(*Error))
			cur.SkipToNewline()
			return nil
		}
		cur.SkipToNewline()

		assumption := forced
		if assumption == AssumeNone {
			assumption = s.Assumption
		}

		switch {
		case len(operands) == 3 && allRegisters(operands):
			if opNeedsAssumption(op) && assumption == AssumeNone {
				s.Errors.AddError(NewError(pos(s, line), ErrorAmbiguousNumericAssumption,
					"bare three-register form of this opcode needs an active \"assume\" or a -int/-fp suffix"))
				return nil
			}
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRR,
				Regs:       isa.Regs{R0: operands[0].Reg, R1: operands[1].Reg, R2: operands[2].Reg, NR: 3},
				FixedPoint: assumption == AssumeFP,
			})
			return emitOrFail(s, w, eerr, line)

		case len(operands) == 2 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandRegister:
			if opNeedsAssumption(op) && assumption == AssumeNone {
				s.Errors.AddError(NewError(pos(s, line), ErrorAmbiguousNumericAssumption,
					"bare two-register form of this opcode needs an active \"assume\" or a -int/-fp suffix"))
				return nil
			}
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRR,
				Regs:       isa.Regs{R0: operands[0].Reg, R1: operands[0].Reg, R2: operands[1].Reg, NR: 3},
				FixedPoint: assumption == AssumeFP,
			})
			return emitOrFail(s, w, eerr, line)

		case len(operands) == 2 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandIntLiteral:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRI,
				Regs:    isa.Regs{R0: operands[0].Reg, R1: operands[0].Reg, NR: 2},
				HasImmd: true, ImmdInt: operands[1].Int,
			})
			return emitOrFail(s, w, eerr, line)

		case len(operands) == 2 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandFPLiteral:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRI,
				Regs:       isa.Regs{R0: operands[0].Reg, R1: operands[0].Reg, NR: 2},
				FixedPoint: true, HasImmd: true, ImmdFP: operands[1].FP,
			})
			return emitOrFail(s, w, eerr, line)

		case len(operands) == 2 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandLabel:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRI,
				Regs: isa.Regs{R0: operands[0].Reg, R1: operands[0].Reg, NR: 2},
			})
			if eerr != nil {
				return emitOrFail(s, w, eerr, line)
			}
			idx := s.Emit(w, line)
			s.AddFixup(idx, operands[1].Label, line)
			return nil

		default:
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm,
				"this opcode accepts three registers, or two registers plus an immediate"))
			return nil
		}
	}
}

// rotateEncoder: arithmetic rotate, RRR or RRI, never needs an assumption
// (the rotate amount is always an integer count).
func rotateEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next() // mnemonic
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if s.Assumption == AssumeFP {
		s.Errors.AddWarning(&Warning{Pos: pos(s, line), Message: "rotate ignores the active fixed-point assumption"})
	}

	switch {
	case len(operands) == 3 && allRegisters(operands):
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.ROTATE, PF: isa.RRR,
			Regs: isa.Regs{R0: operands[0].Reg, R1: operands[1].Reg, R2: operands[2].Reg, NR: 3},
		})
		return emitOrFail(s, w, eerr, line)
	case len(operands) == 2 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandIntLiteral:
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.ROTATE, PF: isa.RRI,
			Regs:    isa.Regs{R0: operands[0].Reg, R1: operands[0].Reg, NR: 2},
			HasImmd: true, ImmdInt: operands[1].Int,
		})
		return emitOrFail(s, w, eerr, line)
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "rotate accepts three registers or two registers plus an integer"))
		return nil
	}
}

// notEncoder: unary bitwise complement, single register.
func notEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if len(operands) != 1 || operands[0].Kind != OperandRegister {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "not accepts a single register"))
		return nil
	}
	w, eerr := isa.Encode(isa.EncodeParams{
		Op: isa.NOT, PF: isa.R,
		Regs: isa.Regs{R0: operands[0].Reg, NR: 1},
	})
	return emitOrFail(s, w, eerr, line)
}

func allRegisters(ops []Operand) bool {
	for _, o := range ops {
		if o.Kind != OperandRegister {
			return false
		}
	}
	return true
}

func emitOrFail(s *TextState, w isa.Word, err error, line int) error {
	if err != nil {
		s.Errors.AddError(NewError(pos(s, line), ErrorOverflow, err.Error()))
		return nil
	}
	s.Emit(w, line)
	return nil
}

func pos(s *TextState, line int) Position {
	return Position{Filename: s.Filename, Line: line, Column: 1}
}

// readOperands classifies every token from the cursor's current position
// up to the line's end, without consuming them — callers that succeed
// still need cur.SkipToNewline() to advance past the line.
func readOperands(cur *Cursor, line int, filename string) ([]Operand, error) {
	toks := cur.LineTokens()
	operands := make([]Operand, 0, len(toks))
	for _, t := range toks {
		if t.Type != TokenWord {
			continue
		}
		op, err := classifyToken(t.Literal)
		if err != nil {
			return nil, NewError(Position{Filename: filename, Line: line, Column: t.Pos.Column}, ErrorLexical, err.Error())
		}
		operands = append(operands, op)
	}
	return operands, nil
}
