package assembler_test

import (
	"testing"

	"github.com/aj-kip/erfindung/assembler"
	"github.com/aj-kip/erfindung/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOUnloadWritesGPUUnloadOpcodeThenIndex(t *testing.T) {
	prog, errs := assembler.Assemble("io unload 3\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	// save-and-restore wraps the scratch register: push, opcode (set+save),
	// arg (set+save), pop.
	require.Len(t, prog.Words, 8)

	d0 := isa.Decode(prog.Words[0])
	assert.Equal(t, isa.PLUS, d0.Op)
	d2 := isa.Decode(prog.Words[2])
	assert.Equal(t, isa.SET, d2.Op)
	d3 := isa.Decode(prog.Words[3])
	assert.Equal(t, isa.SAVE, d3.Op)
}

func TestIOReadEmitsOneLoadPerRegister(t *testing.T) {
	prog, errs := assembler.Assemble("io read controller x y\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Words, 2)

	d0 := isa.Decode(prog.Words[0])
	assert.Equal(t, isa.LOAD, d0.Op)
	assert.Equal(t, isa.X, d0.R0)
	d1 := isa.Decode(prog.Words[1])
	assert.Equal(t, isa.LOAD, d1.Op)
	assert.Equal(t, isa.Y, d1.R0)
}

func TestIOReadUnknownSourceFails(t *testing.T) {
	_, errs := assembler.Assemble("io read nonsense x\n", "t.erf")
	require.True(t, errs.HasErrors())
	assert.Equal(t, assembler.ErrorBadParameterForm, errs.Errors[0].Kind)
}

func TestIOHaltTakesNoArguments(t *testing.T) {
	prog, errs := assembler.Assemble("io halt\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Words, 2)
	d1 := isa.Decode(prog.Words[1])
	assert.Equal(t, isa.SAVE, d1.Op)

	_, errs = assembler.Assemble("io halt x\n", "t.erf")
	require.True(t, errs.HasErrors())
	assert.Equal(t, assembler.ErrorBadParameterForm, errs.Errors[0].Kind)
}

func TestIOWaitTakesNoArguments(t *testing.T) {
	prog, errs := assembler.Assemble("io wait\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Words, 2)
}

func TestIOPulseChannelRequiresOneOrTwo(t *testing.T) {
	prog, errs := assembler.Assemble("io pulse one note x\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Words, 6) // set/save chan, set/save cmd, set/save value

	_, errs = assembler.Assemble("io pulse three note x\n", "t.erf")
	require.True(t, errs.HasErrors())
	assert.Equal(t, assembler.ErrorBadParameterForm, errs.Errors[0].Kind)
}

func TestIONoiseTempoWithLiteralValue(t *testing.T) {
	prog, errs := assembler.Assemble("io noise tempo 4\n", "t.erf")
	require.False(t, errs.HasErrors(), errs.Error())
	require.Len(t, prog.Words, 6)
}

func TestIOUnknownAPUCommandFails(t *testing.T) {
	_, errs := assembler.Assemble("io triangle warble x\n", "t.erf")
	require.True(t, errs.HasErrors())
	assert.Equal(t, assembler.ErrorBadParameterForm, errs.Errors[0].Kind)
}
