package machine

import (
	"github.com/aj-kip/erfindung/fixed"
	"github.com/aj-kip/erfindung/isa"
)

// CPU is the fetch-decode-execute loop's state: eight general registers
// plus the wait_called flag set when a program asks to be suspended until
// the next frame. Grounded on the teacher's vm.CPU shape (vm/cpu.go),
// generalized from 16 ARM registers with a CPSR to Erfindung's 8 named
// registers and no flag register (comparisons write their result word
// straight into a register instead).
type CPU struct {
	Regs       [8]isa.Word
	Bus        *Bus
	WaitCalled bool
	Cycles     uint64
}

// NewCPU creates a CPU with every register zeroed, wired to bus.
func NewCPU(bus *Bus) *CPU {
	return &CPU{Bus: bus}
}

// Reset zeroes every register, the cycle counter and the bus's RAM, per
// spec.md §3's lifecycle note ("register file and RAM are reset to zero on
// CPU reset").
func (c *CPU) Reset() {
	c.Regs = [8]isa.Word{}
	c.WaitCalled = false
	c.Cycles = 0
	if c.Bus != nil {
		clear(c.Bus.RAM)
	}
}

func (c *CPU) fault(pc uint32, kind ErrorKind, format string, args ...any) *ErfiError {
	return newFault(pc, kind, format, args...)
}

// ServiceWait is the outer driver's frame-boundary hook: called once it has
// observed WaitCalled, it records how much fixed-point time elapsed and
// resets both the CPU's and the bus's wait flags for the next cycle, per
// spec.md §4.7's "the outer loop converts [wait_requested] into a frame
// boundary and a reset of wait_called".
func (c *CPU) ServiceWait(elapsed fixed.Word) {
	c.Bus.Timer.AdvanceFrame(elapsed)
	c.WaitCalled = false
	c.Bus.WaitRequested = false
}

// Step runs exactly one fetch-decode-execute cycle, grounded on the
// teacher's vm.VM.Step (vm/executor.go): fetch increments PC, decode
// dispatches on bit fields, execute mutates registers/memory, and any
// fault is wrapped with the PC of the offending instruction.
func (c *CPU) Step() error {
	pc := uint32(c.Regs[isa.PC])

	raw, err := c.Bus.Read(pc)
	if err != nil {
		return c.fault(pc, AccessViolation, "fetch: %s", err.Error())
	}
	c.Regs[isa.PC] = isa.Word(pc + 1)

	d := isa.Decode(raw)
	if err := c.execute(d, pc); err != nil {
		return err
	}
	c.Cycles++
	return nil
}

func (c *CPU) execute(d isa.Decoded, pc uint32) error {
	switch d.Op {
	case isa.PLUS, isa.MINUS, isa.TIMES, isa.DIVIDE, isa.MODULUS, isa.AND, isa.OR, isa.XOR, isa.COMP:
		return c.execArith(d, pc)
	case isa.ROTATE:
		return c.execRotate(d, pc)
	case isa.NOT:
		return c.execNot(d, pc)
	case isa.SET:
		return c.execSet(d, pc)
	case isa.LOAD:
		return c.execLoad(d, pc)
	case isa.SAVE:
		return c.execSave(d, pc)
	case isa.SKIP:
		return c.execSkip(d, pc)
	case isa.CALL:
		return c.execCall(d, pc)
	default:
		return c.fault(pc, IllegalInstruction, "opcode %s is not implemented", d.Op)
	}
}

// secondOperand resolves an R-type instruction's second operand, either a
// register (RRR) or an immediate decoded as int or 9/6 fp per the
// fixed-point flag (RRI).
func (c *CPU) secondOperand(d isa.Decoded, pc uint32) (isa.Word, error) {
	switch d.PF {
	case isa.RRR:
		return c.Regs[d.R2], nil
	case isa.RRI:
		if d.FixedPoint {
			return isa.Word(isa.DecodeImmdFP(d.ImmdBits)), nil
		}
		return isa.Word(uint32(isa.DecodeImmdInt(d.ImmdBits))), nil
	default:
		return 0, c.fault(pc, IllegalInstruction, "opcode does not accept parameter form %s", d.PF)
	}
}

// execArith runs PLUS/MINUS/TIMES/DIVIDE/MODULUS/AND/OR/XOR/COMP.
// PLUS/MINUS/AND/OR/XOR operate on the raw word bits regardless of the
// fixed-point flag — sign-magnitude and two's-complement addition only
// diverge for multiply/divide/modulus/compare, which dispatch through
// fixed vs. plain-integer implementations by flag.
func (c *CPU) execArith(d isa.Decoded, pc uint32) error {
	b, err := c.secondOperand(d, pc)
	if err != nil {
		return err
	}
	a := c.Regs[d.R1]

	var result isa.Word
	switch d.Op {
	case isa.PLUS:
		result = isa.Word(uint32(a) + uint32(b))
	case isa.MINUS:
		result = isa.Word(uint32(a) - uint32(b))
	case isa.AND:
		result = isa.Word(uint32(a) & uint32(b))
	case isa.OR:
		result = isa.Word(uint32(a) | uint32(b))
	case isa.XOR:
		result = isa.Word(uint32(a) ^ uint32(b))
	case isa.TIMES:
		if d.FixedPoint {
			result = isa.Word(fixed.Mul(fixed.Word(a), fixed.Word(b)))
		} else {
			result = isa.Word(uint32(int32(a) * int32(b)))
		}
	case isa.DIVIDE:
		if d.FixedPoint {
			q, derr := fixed.Div(fixed.Word(a), fixed.Word(b))
			if derr != nil {
				return c.fault(pc, DivideByZero, "%s", derr.Error())
			}
			result = isa.Word(q)
		} else {
			if int32(b) == 0 {
				return c.fault(pc, DivideByZero, "integer division by zero")
			}
			result = isa.Word(uint32(int32(a) / int32(b)))
		}
	case isa.MODULUS:
		if d.FixedPoint {
			q, derr := fixed.Div(fixed.Word(a), fixed.Word(b))
			if derr != nil {
				return c.fault(pc, DivideByZero, "%s", derr.Error())
			}
			result = isa.Word(fixed.Rem(q, fixed.Word(b), fixed.Word(a)))
		} else {
			if int32(b) == 0 {
				return c.fault(pc, DivideByZero, "integer modulus by zero")
			}
			result = isa.Word(uint32(modInt(int32(a), int32(b))))
		}
	case isa.COMP:
		if d.FixedPoint {
			result = isa.Word(fixed.CmpFixed(fixed.Word(a), fixed.Word(b)))
		} else {
			result = isa.Word(fixed.CmpInt(fixed.Word(a), fixed.Word(b)))
		}
	}
	c.Regs[d.R0] = result
	return nil
}

// modInt mirrors the original interpreter's signed modulus: the magnitude
// of x reduced mod the magnitude of y, with the sign of the product of
// the two operands' signs — not Go's native truncated-division remainder,
// which only follows the dividend's sign.
func modInt(x, y int32) int32 {
	sign := int32(1)
	if (x < 0) != (y < 0) {
		sign = -1
	}
	mag := func(v int32) int32 {
		if v < 0 {
			return -v
		}
		return v
	}
	return sign * (mag(x) % mag(y))
}

// execRotate performs an arithmetic rotate of reg1 by a signed count taken
// from reg2 (RRR) or the immediate (RRI), writing the result to reg0:
// negative rotates left, positive rotates right, both modulo 32; zero is a
// no-op.
func (c *CPU) execRotate(d isa.Decoded, pc uint32) error {
	var count int32
	switch d.PF {
	case isa.RRR, isa.RRI:
		if d.PF == isa.RRR {
			count = int32(c.Regs[d.R2])
		} else {
			count = isa.DecodeImmdInt(d.ImmdBits)
		}
	default:
		return c.fault(pc, IllegalInstruction, "rotate does not accept parameter form %s", d.PF)
	}

	r0 := uint32(c.Regs[d.R1])
	switch {
	case count < 0:
		n := uint32(-count) % 32
		if n != 0 {
			r0 = (r0 << n) | (r0 >> (32 - n))
		}
	case count > 0:
		n := uint32(count) % 32
		if n != 0 {
			r0 = (r0 >> n) | (r0 << (32 - n))
		}
	}
	c.Regs[d.R0] = isa.Word(r0)
	return nil
}

// execNot writes the bitwise complement of reg0 back into reg0. The
// original interpreter computes this and discards it (`(void)~reg0(inst)`)
// rather than writing it back; spec.md §4.7 is explicit that NOT must
// mutate reg0, so this corrects that rather than reproducing it.
func (c *CPU) execNot(d isa.Decoded, pc uint32) error {
	if d.PF != isa.R {
		return c.fault(pc, IllegalInstruction, "not does not accept parameter form %s", d.PF)
	}
	c.Regs[d.R0] = isa.Word(^uint32(c.Regs[d.R0]))
	return nil
}

// execSet implements reg0 = reg1 (RR), reg0 = immediate (RI), or
// reg0 = reg1 + immediate (RRI, the label-resolved addressing form).
func (c *CPU) execSet(d isa.Decoded, pc uint32) error {
	switch d.PF {
	case isa.RR:
		c.Regs[d.R0] = c.Regs[d.R1]
	case isa.RI:
		if d.FixedPoint {
			c.Regs[d.R0] = isa.Word(isa.DecodeImmdFP(d.ImmdBits))
		} else {
			c.Regs[d.R0] = isa.Word(uint32(isa.DecodeImmdInt(d.ImmdBits)))
		}
	case isa.RRI:
		offset := isa.DecodeImmdInt(d.ImmdBits)
		c.Regs[d.R0] = isa.Word(uint32(int32(c.Regs[d.R1]) + offset))
	default:
		return c.fault(pc, IllegalInstruction, "set does not accept parameter form %s", d.PF)
	}
	return nil
}

// effectiveAddress computes a memory-or-device address for LOAD/SAVE's
// three parameter forms: bare register, register+signed-offset, or a bare
// (already-resolved) address immediate.
func (c *CPU) effectiveAddress(d isa.Decoded, pc uint32) (uint32, error) {
	switch d.PF {
	case isa.RR:
		return uint32(c.Regs[d.R1]), nil
	case isa.RRI:
		return uint32(int32(c.Regs[d.R1]) + isa.DecodeImmdInt(d.ImmdBits)), nil
	case isa.RI:
		return isa.DecodeImmdAddr(d.ImmdBits), nil
	default:
		return 0, c.fault(pc, IllegalInstruction, "load/save does not accept parameter form %s", d.PF)
	}
}

func (c *CPU) execLoad(d isa.Decoded, pc uint32) error {
	addr, err := c.effectiveAddress(d, pc)
	if err != nil {
		return err
	}
	v, rerr := c.Bus.Read(addr)
	if rerr != nil {
		return c.fault(pc, AccessViolation, "%s", rerr.Error())
	}
	c.Regs[d.R0] = v
	return nil
}

func (c *CPU) execSave(d isa.Decoded, pc uint32) error {
	addr, err := c.effectiveAddress(d, pc)
	if err != nil {
		return err
	}
	if werr := c.Bus.Write(addr, c.Regs[d.R0]); werr != nil {
		return c.fault(pc, AccessViolation, "%s", werr.Error())
	}
	if c.Bus.HaltRequested {
		return c.fault(pc, HaltRequested, "halt device was written")
	}
	if c.Bus.WaitRequested {
		c.WaitCalled = true
	}
	return nil
}

// execSkip increments PC once more (skipping the next instruction) when
// reg0 matches the comparison mask, defaulting to "any bit set".
func (c *CPU) execSkip(d isa.Decoded, pc uint32) error {
	var mask uint32 = ^uint32(0)
	switch d.PF {
	case isa.R:
	case isa.RI:
		mask = uint32(isa.DecodeImmdInt(d.ImmdBits))
	default:
		return c.fault(pc, IllegalInstruction, "skip does not accept parameter form %s", d.PF)
	}
	if uint32(c.Regs[d.R0])&mask != 0 {
		c.Regs[isa.PC] = isa.Word(uint32(c.Regs[isa.PC]) + 1)
	}
	return nil
}

// execCall pushes PC onto the stack (pre-incrementing SP, then saving PC
// at [SP]) and sets PC to the target.
func (c *CPU) execCall(d isa.Decoded, pc uint32) error {
	var target uint32
	switch d.PF {
	case isa.R:
		target = uint32(c.Regs[d.R0])
	case isa.I:
		target = isa.DecodeImmdAddr(d.ImmdBits)
	default:
		return c.fault(pc, IllegalInstruction, "call does not accept parameter form %s", d.PF)
	}

	sp := uint32(c.Regs[isa.SP]) + 1
	c.Regs[isa.SP] = isa.Word(sp)
	if werr := c.Bus.Write(sp, c.Regs[isa.PC]); werr != nil {
		return c.fault(pc, AccessViolation, "%s", werr.Error())
	}
	c.Regs[isa.PC] = isa.Word(target)
	return nil
}
