package assembler

import "github.com/aj-kip/erfindung/isa"

// ioScratch is the register the "io" pseudo-instruction's expansion uses
// to stage each word of a device command before writing it to the
// gpu/apu input stream. Because the device target and command id are
// compile-time constants, every io expansion is a straight-line sequence
// of SET/SAVE (and, under the save-and-restore convention, PLUS/MINUS
// around a push/pop of the scratch register) with no runtime dispatch.
const ioScratch = isa.C

var gpuSubcommandParamCount = map[string]int{
	"upload": 3, // width, height, address
	"draw":   3, // x, y, sprite index
	"clear":  0,
	"unload": 1, // sprite index
}

var gpuSubcommandOpcode = map[string]uint32{
	"upload": isa.GPUUpload,
	"draw":   isa.GPUDraw,
	"clear":  isa.GPUClear,
	"unload": isa.GPUUnload,
}

// ioReadSource maps an "io read <source>" keyword to the device address it
// loads from, grounded on the original implementation's make_io_read.
var ioReadSource = map[string]uint32{
	"controller": isa.DeviceController,
	"timer":      isa.DeviceTimerElapsed,
	"random":     isa.DeviceRNG,
	"gpu":        isa.DeviceGPUResponse,
	"bus-error":  isa.DeviceBusError,
}

var apuChannelID = map[string]uint32{
	"triangle": isa.APUChannelTriangle,
	"noise":    isa.APUChannelNoise,
}

var apuCommandID = map[string]uint32{
	"note":              isa.APUCommandNote,
	"tempo":             isa.APUCommandTempo,
	"duty-cycle-window": isa.APUCommandDutyCycleWindow,
}

// ioEncoder expands the "io" pseudo-instruction's sub-commands into
// constant device-stream writes: the GPU command-stream helpers
// (upload/draw/clear/unload), reads from the read-only devices
// (controller/timer/random/gpu/bus-error), halt, wait, and the APU
// channel commands (triangle/pulse/noise), grounded on the original
// implementation's make_sysio dispatch.
func ioEncoder(s *TextState, cur *Cursor, line int) error {
	cur.Next()
	toks := cur.LineTokens()
	cur.SkipToNewline()

	if len(toks) == 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io needs a sub-command"))
		return nil
	}

	sub := toks[0].Literal
	rest := toks[1:]

	switch sub {
	case "upload", "draw", "clear", "unload":
		return ioGPUEncoder(s, sub, rest, line)
	case "read":
		return ioReadEncoder(s, rest, line)
	case "halt":
		return ioHaltEncoder(s, rest, line)
	case "wait":
		return ioWaitEncoder(s, rest, line)
	case "triangle", "pulse", "noise":
		return ioAPUEncoder(s, toks, line)
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "unknown io sub-command \""+sub+"\""))
		return nil
	}
}

// ioGPUEncoder expands "io upload w h addr", "io draw x y index",
// "io clear", and "io unload index" into constant GPU command-stream
// writes: an opcode word followed by each argument word.
func ioGPUEncoder(s *TextState, sub string, toks []Token, line int) error {
	want := gpuSubcommandParamCount[sub]

	args, err := classifyOperands(s, toks, line)
	if err != nil {
		return nil
	}
	if len(args) != want {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm,
			"io "+sub+" takes exactly "+itoa(want)+" argument(s)"))
		return nil
	}

	saveRestore := s.IOConv == IOSaveAndRestore
	if saveRestore {
		emitArithRRI(s, isa.PLUS, isa.SP, isa.SP, 1, line)
		emitMemRRI(s, isa.SAVE, ioScratch, isa.SP, 1, line)
	}

	writeToGPUStream(s, int32(gpuSubcommandOpcode[sub]), line)
	for _, a := range args {
		if err := emitScratchOperand(s, a, line, "io arguments must be registers or integer literals"); err != nil {
			return nil
		}
		writeScratchToGPUStream(s, line)
	}

	if saveRestore {
		emitMemRRI(s, isa.LOAD, ioScratch, isa.SP, 1, line)
		emitArithRRI(s, isa.MINUS, isa.SP, isa.SP, 1, line)
	}
	return nil
}

// ioReadEncoder expands "io read <source> r0 [r1 ...]" into one LOAD per
// register argument, each reading the source device's address.
func ioReadEncoder(s *TextState, toks []Token, line int) error {
	if len(toks) < 2 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm,
			"io read needs a source and at least one register"))
		return nil
	}
	source := toks[0].Literal
	addr, known := ioReadSource[source]
	if !known {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "\""+source+"\" is not a valid read source"))
		return nil
	}

	for _, t := range toks[1:] {
		reg, ok := isa.ParseRegister(t.Literal)
		if !ok {
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io read arguments must be registers"))
			return nil
		}
		w, eerr := isa.Encode(isa.EncodeParams{
			Op: isa.LOAD, PF: isa.RI, Regs: isa.Regs{R0: reg, NR: 1},
			HasAddr: true, ImmdAddr: addr,
		})
		emitOrFail(s, w, eerr, line)
	}
	return nil
}

// ioHaltEncoder expands "io halt" into a write of a nonzero word to the
// halt device. The original's make_io_halt gates this on an argument-count
// check that can never pass (`beg - eol != 1` compares a negative or zero
// pointer difference against 1); this version requires zero arguments and
// enforces that explicitly, rather than reproducing the broken check.
func ioHaltEncoder(s *TextState, toks []Token, line int) error {
	if len(toks) != 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io halt takes no arguments"))
		return nil
	}
	emitSetScratchInt(s, 1, line)
	w, eerr := isa.Encode(isa.EncodeParams{
		Op: isa.SAVE, PF: isa.RI, Regs: isa.Regs{R0: ioScratch, NR: 1},
		HasAddr: true, ImmdAddr: isa.DeviceHalt,
	})
	emitOrFail(s, w, eerr, line)
	return nil
}

// ioWaitEncoder expands "io wait" into a write of a nonzero word to the
// timer-wait device, requesting the CPU suspend until the next frame.
func ioWaitEncoder(s *TextState, toks []Token, line int) error {
	if len(toks) != 0 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io wait takes no arguments"))
		return nil
	}
	emitSetScratchInt(s, 1, line)
	w, eerr := isa.Encode(isa.EncodeParams{
		Op: isa.SAVE, PF: isa.RI, Regs: isa.Regs{R0: ioScratch, NR: 1},
		HasAddr: true, ImmdAddr: isa.DeviceTimerWait,
	})
	emitOrFail(s, w, eerr, line)
	return nil
}

// ioAPUEncoder expands "io triangle|pulse|noise <note|tempo|duty-cycle-
// window> value" into a three-word apu-input command: channel, command
// kind, then value. Grounded on the original implementation's
// make_io_apu_inst, which parses the same channel/command/value shape but
// (per its own `(void)ait; (void)channel;`) discards the channel and
// command words before writing the stream — this version writes all
// three, matching the three-word protocol machine.APU already collects.
func ioAPUEncoder(s *TextState, toks []Token, line int) error {
	idx := 1 // toks[0] is the channel keyword, already dispatched on
	channel := toks[0].Literal

	var chanID uint32
	if channel == "pulse" {
		if idx >= len(toks) {
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io pulse needs \"one\" or \"two\""))
			return nil
		}
		switch toks[idx].Literal {
		case "one":
			chanID = isa.APUChannelPulseOne
		case "two":
			chanID = isa.APUChannelPulseTwo
		default:
			s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "\""+toks[idx].Literal+"\" is not a valid pulse channel"))
			return nil
		}
		idx++
	} else {
		chanID = apuChannelID[channel]
	}

	if idx >= len(toks) {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io "+channel+" needs a note/tempo/duty-cycle-window command"))
		return nil
	}
	cmdName := toks[idx].Literal
	cmdID, known := apuCommandID[cmdName]
	if !known {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "\""+cmdName+"\" is not a recognized apu command"))
		return nil
	}
	idx++

	args, err := classifyOperands(s, toks[idx:], line)
	if err != nil {
		return nil
	}
	if len(args) != 1 {
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, "io "+channel+" "+cmdName+" takes exactly one argument"))
		return nil
	}

	emitSetScratchInt(s, int32(chanID), line)
	writeScratchToAPUStream(s, line)
	emitSetScratchInt(s, int32(cmdID), line)
	writeScratchToAPUStream(s, line)
	if err := emitScratchOperand(s, args[0], line, "io apu arguments must be registers or integer literals"); err != nil {
		return nil
	}
	writeScratchToAPUStream(s, line)
	return nil
}

// classifyOperands classifies every token in toks as an Operand, failing
// the whole line on the first lexical error.
func classifyOperands(s *TextState, toks []Token, line int) ([]Operand, error) {
	var args []Operand
	for _, t := range toks {
		o, err := classifyToken(t.Literal)
		if err != nil {
			s.Errors.AddError(NewError(pos(s, line), ErrorLexical, err.Error()))
			return nil, err
		}
		args = append(args, o)
	}
	return args, nil
}

// emitScratchOperand stages a register or integer-literal operand into
// ioScratch, failing the line if it is neither.
func emitScratchOperand(s *TextState, a Operand, line int, errMsg string) error {
	switch a.Kind {
	case OperandRegister:
		emitSetScratchReg(s, a.Reg, line)
		return nil
	case OperandIntLiteral:
		emitSetScratchInt(s, a.Int, line)
		return nil
	default:
		s.Errors.AddError(NewError(pos(s, line), ErrorBadParameterForm, errMsg))
		return NewError(pos(s, line), ErrorBadParameterForm, errMsg)
	}
}

func emitSetScratchInt(s *TextState, v int32, line int) {
	w, err := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: ioScratch, NR: 1}, HasImmd: true, ImmdInt: v})
	emitOrFail(s, w, err, line)
}

func emitSetScratchReg(s *TextState, src isa.Register, line int) {
	w, err := isa.Encode(isa.EncodeParams{Op: isa.SET, PF: isa.RR, Regs: isa.Regs{R0: ioScratch, R1: src, NR: 2}})
	emitOrFail(s, w, err, line)
}

// writeToGPUStream loads the opcode constant into the scratch register and
// saves it to the gpu-input device address.
func writeToGPUStream(s *TextState, opcode int32, line int) {
	emitSetScratchInt(s, opcode, line)
	writeScratchToGPUStream(s, line)
}

func writeScratchToGPUStream(s *TextState, line int) {
	w, err := isa.Encode(isa.EncodeParams{
		Op: isa.SAVE, PF: isa.RI, Regs: isa.Regs{R0: ioScratch, NR: 1},
		HasAddr: true, ImmdAddr: isa.DeviceGPUInput,
	})
	emitOrFail(s, w, err, line)
}

func writeScratchToAPUStream(s *TextState, line int) {
	w, err := isa.Encode(isa.EncodeParams{
		Op: isa.SAVE, PF: isa.RI, Regs: isa.Regs{R0: ioScratch, NR: 1},
		HasAddr: true, ImmdAddr: isa.DeviceAPUInput,
	})
	emitOrFail(s, w, err, line)
}
