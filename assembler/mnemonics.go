package assembler

import (
	"sync"

	"github.com/aj-kip/erfindung/isa"
)

// EncoderFunc is the per-mnemonic line encoder. It receives the cursor
// positioned at the mnemonic token itself and leaves it just past the
// line's terminating newline (the newline is consumed, not left as the
// current token), whether it succeeds or fails.
type EncoderFunc func(s *TextState, cur *Cursor, mnemonicLine int) error

// mnemonicEntry is one row of the static dispatch table: a canonical name
// plus every alias that resolves to the same encoder. Per the redesign
// note against a lazily-initialized process-wide map, the table itself is
// a plain literal slice built at init time; only the alias-to-row index
// below is built once (via sync.Once) to avoid a linear scan per line.
type mnemonicEntry struct {
	Canonical string
	Aliases   []string
	Fn        EncoderFunc
}

var mnemonicTable = buildMnemonicTable()

var (
	mnemonicIndexOnce sync.Once
	mnemonicIndex     map[string]EncoderFunc
)

func lookupMnemonic(name string) (EncoderFunc, bool) {
	mnemonicIndexOnce.Do(func() {
		mnemonicIndex = make(map[string]EncoderFunc)
		for _, entry := range mnemonicTable {
			mnemonicIndex[entry.Canonical] = entry.Fn
			for _, a := range entry.Aliases {
				mnemonicIndex[a] = entry.Fn
			}
		}
	})
	fn, ok := mnemonicIndex[name]
	return fn, ok
}

// arithGroup registers one arithmetic/compare opcode under its plain
// aliases plus, for each alias, the -int and -fp suffix variants that
// force the corresponding numeric assumption for that single instruction,
// without touching s.Assumption (see forcedAssumption in encode_arith.go).
func arithGroup(canonical string, names []string, op isa.Opcode) mnemonicEntry {
	var aliases []string
	for _, n := range names {
		aliases = append(aliases, n, n+"-int", n+"-fp")
	}
	return mnemonicEntry{Canonical: canonical, Aliases: aliases, Fn: arithEncoder(op)}
}

func buildMnemonicTable() []mnemonicEntry {
	return []mnemonicEntry{
		arithGroup("plus", []string{"+", "add", "plus"}, isa.PLUS),
		arithGroup("minus", []string{"-", "sub", "minus"}, isa.MINUS),
		arithGroup("times", []string{"*", "mul", "multiply", "times"}, isa.TIMES),
		arithGroup("divide", []string{"/", "div", "divmod", "divide"}, isa.DIVIDE),
		arithGroup("modulus", []string{"%", "mod", "modulus"}, isa.MODULUS),
		arithGroup("and", []string{"&", "and"}, isa.AND),
		arithGroup("or", []string{"|", "or"}, isa.OR),
		arithGroup("xor", []string{"^", "xor"}, isa.XOR),
		arithGroup("comp", []string{"<=>", "cmp", "compare", "comp"}, isa.COMP),
		{Canonical: "rotate", Aliases: []string{"@", "rot", "rotate"}, Fn: rotateEncoder},
		{Canonical: "not", Aliases: []string{"!", "~", "not"}, Fn: notEncoder},
		{Canonical: "set", Aliases: []string{"=", "set"}, Fn: setEncoder},
		{Canonical: "save", Aliases: []string{"<<", "sav", "save"}, Fn: memEncoder(isa.SAVE)},
		{Canonical: "load", Aliases: []string{">>", "ld", "load"}, Fn: memEncoder(isa.LOAD)},
		{Canonical: "skip", Aliases: []string{"?", "skip"}, Fn: skipEncoder},
		{Canonical: "call", Aliases: []string{"call"}, Fn: callEncoder},

		{Canonical: "push", Aliases: []string{"push"}, Fn: pushEncoder},
		{Canonical: "pop", Aliases: []string{"pop"}, Fn: popEncoder},
		{Canonical: "jump", Aliases: []string{"jump"}, Fn: jumpEncoder},
		{Canonical: "io", Aliases: []string{"io"}, Fn: ioEncoder},
		{Canonical: "assume", Aliases: []string{"assume"}, Fn: assumeEncoder},
		{Canonical: "data", Aliases: []string{"data"}, Fn: dataEncoder},
	}
}
