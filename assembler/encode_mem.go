package assembler

import "github.com/aj-kip/erfindung/isa"

// memEncoder builds the encoder for LOAD/SAVE. Syntax is
// "load r0 [r1]", "load r0 [r1 offset]", or "load r0 [addr]" (addr an
// integer literal or label) — mirrored for save, which writes r0 rather
// than reading into it.
func memEncoder(op isa.Opcode) EncoderFunc {
	return func(s *TextState, cur *Cursor, line int) error {
		cur.Next() // mnemonic

		regTok := cur.Next()
		if regTok.Type != TokenWord {
			return failMem(s, line, cur)
		}
		dstOp, err := classifyToken(regTok.Literal)
		if err != nil || dstOp.Kind != OperandRegister {
			return failMem(s, line, cur)
		}

		if cur.Next().Type != TokenLBracket {
			return failMem(s, line, cur)
		}

		var inner []Token
		for {
			t := cur.Peek()
			if t.Type == TokenRBracket || t.Type == TokenNewline || t.Type == TokenEOF {
				break
			}
			inner = append(inner, cur.Next())
		}
		if cur.Peek().Type != TokenRBracket {
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "unclosed '[' in load/save"))
			cur.SkipToNewline()
			return nil
		}
		cur.Next() // consume ']'
		cur.SkipToNewline()

		var inside []Operand
		for _, t := range inner {
			if t.Type != TokenWord {
				continue
			}
			o, err := classifyToken(t.Literal)
			if err != nil {
				s.Errors.AddError(NewError(pos(s, line), ErrorLexical, err.Error()))
				return nil
			}
			inside = append(inside, o)
		}

		dst := dstOp.Reg
		switch {
		case len(inside) == 1 && inside[0].Kind == OperandRegister:
			w, eerr := isa.Encode(isa.EncodeParams{Op: op, PF: isa.RR, Regs: isa.Regs{R0: dst, R1: inside[0].Reg, NR: 2}})
			return emitOrFail(s, w, eerr, line)

		case len(inside) == 2 && inside[0].Kind == OperandRegister && inside[1].Kind == OperandIntLiteral:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RRI, Regs: isa.Regs{R0: dst, R1: inside[0].Reg, NR: 2},
				HasImmd: true, ImmdInt: inside[1].Int,
			})
			return emitOrFail(s, w, eerr, line)

		case len(inside) == 1 && inside[0].Kind == OperandIntLiteral:
			w, eerr := isa.Encode(isa.EncodeParams{
				Op: op, PF: isa.RI, Regs: isa.Regs{R0: dst, NR: 1},
				HasImmd: true, ImmdInt: inside[0].Int,
			})
			return emitOrFail(s, w, eerr, line)

		case len(inside) == 1 && inside[0].Kind == OperandLabel:
			w, eerr := isa.Encode(isa.EncodeParams{Op: op, PF: isa.RI, Regs: isa.Regs{R0: dst, NR: 1}})
			if eerr != nil {
				return emitOrFail(s, w, eerr, line)
			}
			idx := s.Emit(w, line)
			s.AddFixup(idx, inside[0].Label, line)
			return nil

		default:
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "load/save accepts [reg], [reg offset], or [address]"))
			return nil
		}
	}
}

func failMem(s *TextState, line int, cur *Cursor) error {
	s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "load/save needs a destination register and a bracketed address"))
	cur.SkipToNewline()
	return nil
}
