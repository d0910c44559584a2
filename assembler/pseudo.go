package assembler

import "github.com/aj-kip/erfindung/isa"

// pushEncoder: "push r1 r2 ... rn" lowers to "PLUS SP SP n" followed by
// "SAVE ri SP (n+1-i)" for each argument, so the first-named register is
// saved at the highest offset from the updated SP.
func pushEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	regs, err := readRegisterList(s, cur, line)
	if err != nil {
		return nil
	}
	n := len(regs)
	if n == 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "push needs at least one register"))
		return nil
	}

	emitArithRRI(s, isa.PLUS, isa.SP, isa.SP, int32(n), line)
	for i, r := range regs {
		offset := int32(n - i)
		emitMemRRI(s, isa.SAVE, r, isa.SP, offset, line)
	}
	return nil
}

// popEncoder: "pop r1 r2 ... rn" lowers to "MINUS SP SP n" emitted before
// the loads, so "pop pc" is a legal return from a CALL-pushed frame.
func popEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	regs, err := readRegisterList(s, cur, line)
	if err != nil {
		return nil
	}
	n := len(regs)
	if n == 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "pop needs at least one register"))
		return nil
	}

	emitArithRRI(s, isa.MINUS, isa.SP, isa.SP, int32(n), line)
	for i, r := range regs {
		offset := int32(n - i)
		emitMemRRI(s, isa.LOAD, r, isa.SP, offset, line)
	}
	return nil
}

// jumpEncoder: "jump target" lowers to "SET PC target".
func jumpEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil
	}
	cur.SkipToNewline()

	if len(operands) != 1 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "jump accepts a single register, literal, or label"))
		return nil
	}

	switch operands[0].Kind {
	case OperandRegister:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RR, Regs: isa.Regs{R0: isa.PC, R1: operands[0].Reg, NR: 2}})
		emitOrFail(s, w, eerr, line)
	case OperandIntLiteral:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.PC, NR: 1}, HasImmd: true, ImmdInt: operands[0].Int})
		emitOrFail(s, w, eerr, line)
	case OperandLabel:
		w, eerr := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.PC, NR: 1}})
		if eerr != nil {
			emitOrFail(s, w, eerr, line)
			return nil
		}
		idx := s.Emit(w, line)
		s.AddFixup(idx, operands[0].Label, line)
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "jump's target must be a register, literal, or label"))
	}
	return nil
}

// assumeEncoder: "assume fp|int|none|io-save-and-restore|io-throw-away"
// mutates the context's assumption state and emits nothing.
func assumeEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	toks := cur.LineTokens()
	cur.SkipToNewline()

	if len(toks) != 1 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "assume takes exactly one keyword"))
		return nil
	}
	switch toks[0].Literal {
	case "fp":
		s.Assumption = AssumeFP
	case "int":
		s.Assumption = AssumeInt
	case "none":
		s.Assumption = AssumeNone
	case "io-save-and-restore":
		s.IOConv = IOSaveAndRestore
	case "io-throw-away":
		s.IOConv = IOThrowAway
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "unknown assume keyword \""+toks[0].Literal+"\""))
	}
	return nil
}

func readRegisterList(s *TextState, cur *Cursor, line int) ([]isa.Register, error) {
	operands, err := readOperands(cur, line, s.Filename)
	if err != nil {
		s.Errors.AddError(err.(*Error))
		cur.SkipToNewline()
		return nil, err
	}
	cur.SkipToNewline()

	regs := make([]isa.Register, 0, len(operands))
	for _, o := range operands {
		if o.Kind != OperandRegister {
			e := NewError(pos(s, line), ErrorBadParameterForm, "expected only registers in this list")
			s.Errors.AddError(e)
			return nil, e
		}
		regs = append(regs, o.Reg)
	}
	return regs, nil
}

func emitArithRRI(s *TextState, op isa.Opcode, dst, src isa.Register, immd int32, line int) {
	w, err := isa.Encode(isa.EncodeParams{
		Op: op, PF: isa.RRI, Regs: isa.Regs{R0: dst, R1: src, NR: 2},
		HasImmd: true, ImmdInt: immd,
	})
	emitOrFail(s, w, err, line)
}

func emitMemRRI(s *TextState, op isa.Opcode, dst, base isa.Register, offset int32, line int) {
	w, err := isa.Encode(isa.EncodeParams{
		Op: op, PF: isa.RRI, Regs: isa.Regs{R0: dst, R1: base, NR: 2},
		HasImmd: true, ImmdInt: offset,
	})
	emitOrFail(s, w, err, line)
}
