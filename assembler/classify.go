package assembler

import (
	"github.com/aj-kip/erfindung/fixed"
	"github.com/aj-kip/erfindung/isa"
)

// OperandKind is what a bare word token turned out to be.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandIntLiteral
	OperandFPLiteral
	OperandLabel
	OperandSkipMask
)

// Operand is the single-pass classification of one token: unlike the
// original's classify_token, which probed string_to_number twice (once to
// test for overflow, once to convert) to decide integer vs. fixed-point,
// ParseNumber below reports the fractional/integral distinction on its one
// parse, so classification never re-parses the same literal.
type Operand struct {
	Kind    OperandKind
	Reg     isa.Register
	Int     int32
	FP      float64
	Label   string
	SkipBit uint32
}

var skipMasks = map[string]uint32{
	"==": 1, // EQ
	"!=": 8, // NE
	"<":  2, // LT
	">":  4, // GT
	"<=": 1 | 2,
	">=": 1 | 4,
}

// classifyToken inspects one token's literal and reports what kind of
// operand it is, in a single pass over the text.
func classifyToken(tok string) (Operand, error) {
	if r, ok := isa.ParseRegister(tok); ok {
		return Operand{Kind: OperandRegister, Reg: r}, nil
	}
	if mask, ok := skipMasks[tok]; ok {
		return Operand{Kind: OperandSkipMask, SkipBit: mask}, nil
	}
	if looksNumeric(tok) {
		v, isInt, err := fixed.ParseNumber(tok)
		if err != nil {
			return Operand{}, err
		}
		if isInt {
			return Operand{Kind: OperandIntLiteral, Int: int32(v)}, nil
		}
		return Operand{Kind: OperandFPLiteral, FP: v}, nil
	}
	return Operand{Kind: OperandLabel, Label: tok}, nil
}

// looksNumeric reports whether tok starts like a number (optional '-',
// then a digit or "0x"/"0b" prefix) rather than an identifier — the only
// lookahead classifyToken needs before committing to ParseNumber.
func looksNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	i := 0
	if tok[0] == '-' {
		i++
	}
	if i >= len(tok) {
		return false
	}
	c := tok[i]
	return c >= '0' && c <= '9'
}
