package assembler

import "github.com/aj-kip/erfindung/isa"

// setEncoder implements SET: "reg0 = reg1" (RR), "reg0 = immediate" (RI),
// where the immediate may be an integer literal, a fixed-point literal, or
// a label (resolved to the label's program address in the second pass), or
// "reg0 = reg1 + offset" (RRI), where the offset is an integer literal or a
// label.
func setEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next() // mnemonic
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if len(operands) == 3 && operands[0].Kind == OperandRegister && operands[1].Kind == OperandRegister {
		dst, base := operands[0].Reg, operands[1].Reg
		switch operands[2].Kind {
		case OperandIntLiteral:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: isa.SET, PF: isa.RRI, Regs: isa.Regs{R0: dst, R1: base, NR: 2},
				HasImmd: true, ImmdInt: operands[2].Int,
			})
			return emitOrFail(s, w, eerr, line)
		case OperandLabel:
			w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RRI, Regs: isa.Regs{R0: dst, R1: base, NR: 2}})
			if eerr != nil {
				return emitOrFail(s, w, eerr, line)
			}
			idx := s.Emit(w, line)
			s.AddFixup(idx, operands[2].Label, line)
			return nil
		default:
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "set's third operand must be an integer literal or a label"))
			return nil
		}
	}

	if len(operands) != 2 || operands[0].Kind != OperandRegister {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "set accepts a register followed by a register, literal, or label, or two registers plus an offset"))
		return nil
	}

	dst := operands[0].Reg
	switch operands[1].Kind {
	case OperandRegister:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RR, Regs: isa.Regs{R0: dst, R1: operands[1].Reg, NR: 2}})
		return emitOrFail(s, w, eerr, line)

	case OperandIntLiteral:
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: dst, NR: 1},
			HasImmd: true, ImmdInt: operands[1].Int,
		})
		return emitOrFail(s, w, eerr, line)

	case OperandFPLiteral:
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: dst, NR: 1},
			FixedPoint: true, HasImmd: true, ImmdFP: operands[1].FP,
		})
		return emitOrFail(s, w, eerr, line)

	case OperandLabel:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: dst, NR: 1}})
		if eerr != nil {
			return emitOrFail(s, w, eerr, line)
		}
		idx := s.Emit(w, line)
		s.AddFixup(idx, operands[1].Label, line)
		return nil

	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "set's second operand must be a register, literal, or label"))
		return nil
	}
}
