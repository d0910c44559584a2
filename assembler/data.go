package assembler

import (
	"github.com/aj-kip/erfindung/fixed"
	"github.com/aj-kip/erfindung/isa"
)

// dataEncoder: "data binary [ ... ]" and "data numbers [ ... ]" consume
// tokens until the matching ']', appending raw words to the program
// buffer. Binary blocks pack 32 bits per word, MSB first; "1"/"x" mean a
// set bit, "_"/"o"/"0"/"." mean a clear bit. Numeric blocks accept the
// same literals the expression parser accepts; fractional literals are
// folded through fixed.ToFixed.
func dataEncoder(s *TextState, cur *Cursor, line int) error {
	mnemTok := cur.Next()
	_ = mnemTok

	kindTok := cur.Next()
	if kindTok.Type != TokenWord || (kindTok.Literal != "binary" && kindTok.Literal != "numbers") {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "data must be followed by \"binary\" or \"numbers\""))
		cur.SkipToNewline()
		return nil
	}

	if cur.Next().Type != TokenLBracket {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "data block must open with '['"))
		cur.SkipToNewline()
		return nil
	}

	tokens, openLine, err := collectDataBlock(s, cur, line)
	if err != nil {
		return nil
	}

	if kindTok.Literal == "binary" {
		encodeBinaryBlock(s, tokens, openLine)
	} else {
		encodeNumbersBlock(s, tokens, openLine)
	}
	cur.SkipToNewline()
	return nil
}

// collectDataBlock reads tokens (ignoring embedded newlines) until a
// closing ']', failing UnclosedDataBlock if EOF arrives first.
func collectDataBlock(s *TextState, cur *Cursor, openLine int) ([]Token, int, error) {
	var out []Token
	for {
		t := cur.Next()
		switch t.Type {
		case TokenRBracket:
			return out, openLine, nil
		case TokenEOF:
			e := NewError(pos(s, openLine), ErrorUnclosedDataBlock, "data block never closed with ']'")
			s.Errors.AddError(e)
			return nil, openLine, e
		case TokenNewline:
			continue
		default:
			out = append(out, t)
		}
	}
}

func encodeBinaryBlock(s *TextState, tokens []Token, line int) {
	var bits []byte
	for _, t := range tokens {
		for i := 0; i < len(t.Literal); i++ {
			c := t.Literal[i]
			switch c {
			case '1', 'x':
				bits = append(bits, 1)
			case '_', 'o', '0', '.':
				bits = append(bits, 0)
			default:
				s.Errors.AddError(NewError(Position{Filename: s.Filename, Line: t.Pos.Line, Column: t.Pos.Column}, ErrorBadDataCharacter,
					"'"+string(c)+"' is not a valid binary data character"))
				return
			}
		}
	}
	if len(bits)%32 != 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorMisalignedDataBlock, "binary data block is not a multiple of 32 bits"))
		return
	}
	for base := 0; base < len(bits); base += 32 {
		var w uint32
		for i := 0; i < 32; i++ {
			w <<= 1
			w |= uint32(bits[base+i])
		}
		s.Emit(isa.Word(w), line)
	}
}

func encodeNumbersBlock(s *TextState, tokens []Token, line int) {
	for _, t := range tokens {
		op, err := classifyToken(t.Literal)
		if err != nil {
			s.Errors.AddError(NewError(Position{Filename: s.Filename, Line: t.Pos.Line, Column: t.Pos.Column}, ErrorBadDataCharacter, err.Error()))
			continue
		}
		switch op.Kind {
		case OperandIntLiteral:
			s.Emit(isa.Word(uint32(op.Int)), line)
		case OperandFPLiteral:
			w, ferr := fixed.ToFixed(op.FP)
			if ferr != nil {
				s.Errors.AddError(NewError(Position{Filename: s.Filename, Line: t.Pos.Line, Column: t.Pos.Column}, ErrorOverflow, ferr.Error()))
				continue
			}
			s.Emit(isa.Word(w), line)
		default:
			s.Errors.AddError(NewError(Position{Filename: s.Filename, Line: t.Pos.Line, Column: t.Pos.Column}, ErrorBadDataCharacter,
				"\""+t.Literal+"\" is not a valid numeric data literal"))
		}
	}
}
