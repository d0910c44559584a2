package assembler

import "github.com/aj-kip/erfindung/isa"

// skipEncoder: "skip r0" (R form, runtime default mask is "any bit set")
// or "skip r0 <mask>" (RI form) where mask is a symbolic comparison token
// (==, !=, <, <=, >, >=) or a raw integer bitmask.
func skipEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if len(operands) == 1 && operands[0].Kind == OperandRegister {
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SKIP, PF: isa.R, Regs: isa.Regs{R0: operands[0].Reg, NR: 1}})
		return emitOrFail(s, w, eerr, line)
	}
	if len(operands) == 2 && operands[0].Kind == OperandRegister {
		var mask int32
		switch operands[1].Kind {
		case OperandSkipMask:
			mask = int32(operands[1].SkipBit)
		case OperandIntLiteral:
			mask = operands[1].Int
		default:
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "skip's second operand must be a comparison symbol or an integer mask"))
			return nil
		}
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.SKIP, PF: isa.RI, Regs: isa.Regs{R0: operands[0].Reg, NR: 1},
			HasImmd: true, ImmdInt: mask,
		})
		return emitOrFail(s, w, eerr, line)
	}

	s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "skip accepts a register, optionally followed by a comparison mask"))
	return nil
}

// callEncoder: "call r0" (R form) or "call target"/"call label" (I form).
func callEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if len(operands) != 1 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "call accepts a single register, literal, or label"))
		return nil
	}

	switch operands[0].Kind {
	case OperandRegister:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.CALL, PF: isa.R, Regs: isa.Regs{R0: operands[0].Reg, NR: 1}})
		return emitOrFail(s, w, eerr, line)
	case OperandIntLiteral:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.CALL, PF: isa.I, HasImmd: true, ImmdInt: operands[0].Int})
		return emitOrFail(s, w, eerr, line)
	case OperandLabel:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.CALL, PF: isa.I})
		if eerr != nil {
			return emitOrFail(s, w, eerr, line)
		}
		idx := s.Emit(w, line)
		s.AddFixup(idx, operands[0].Label, line)
		return nil
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "call's operand must be a register, literal, or label"))
		return nil
	}
}
