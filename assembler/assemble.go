package assembler

import "github.com/aj-kip/erfindung/isa"

// Program is the output of assembly: the emitted instruction words and the
// dense source-line map the debugger uses to translate a PC back to a
// source line.
type Program struct {
	Words   []isa.Word
	LineMap []int
}

// Assemble performs both assembler passes over source text: the first
// pass lexes, dispatches each line to its mnemonic encoder, and builds the
// label table and fixup list; the second pass (Resolve) patches every
// outstanding label reference. It always returns the ErrorList — callers
// should check HasErrors() before trusting the returned Program.
func Assemble(source, filename string) (*Program, *ErrorList) {
	tokens := Lex(source, filename)
	cur := NewCursor(tokens)
	s := NewTextState(filename)

	for {
		t := cur.Peek()
		if t.Type == TokenEOF {
			break
		}
		if t.Type == TokenNewline {
			cur.Next()
			continue
		}
		if t.Type == TokenColon {
			cur.Next()
			nameTok := cur.Next()
			if nameTok.Type != TokenWord {
				s.Errors.AddError(NewError(pos(s, t.Pos.Line), ErrorLexical, "':' must be followed by a label name"))
				cur.SkipToNewline()
				continue
			}
			if err := s.BindLabel(nameTok.Literal, t.Pos.Line); err != nil {
				s.Errors.AddError(err.(*Error))
			}
			continue
		}

		if t.Type != TokenWord {
			s.Errors.AddError(NewError(pos(s, t.Pos.Line), ErrorLexical, "unexpected token"))
			cur.SkipToNewline()
			continue
		}

		fn, ok := lookupMnemonic(t.Literal)
		if !ok {
			s.Errors.AddError(NewError(pos(s, t.Pos.Line), ErrorUnknownMnemonic, "\""+t.Literal+"\" is not a label, directive, or mnemonic"))
			cur.SkipToNewline()
			continue
		}
		_ = fn(s, cur, t.Pos.Line)
	}

	if !s.Errors.HasErrors() {
		Resolve(s)
	}

	return &Program{Words: s.Program, LineMap: s.LineMap}, &s.Errors
}
