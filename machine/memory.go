package machine

import (
	"fmt"

	"github.com/aj-kip/erfindung/isa"
)

// DefaultRAMWords is the flat RAM size in 32-bit words, grounded on
// spec.md §3's memory space (replacing the teacher's four named, permission-
// tagged segments — code/data/heap/stack — with a single flat region, since
// Erfindung has no execute/read/write distinction on ordinary memory; only
// the device range, reached via the address's high bit, is specialized).
const DefaultRAMWords = 16384

// Bus is the memory/device pack a CPU steps against: RAM plus every
// memory-mapped device, routed by address the way spec.md §4.6 describes.
// Grounded on the teacher's vm.Memory (vm/memory.go), generalized from a
// segment table lookup to a single high-bit test.
type Bus struct {
	RAM           []isa.Word
	GPU           GPU
	APU           APU
	Timer         Timer
	RNG           *RNG
	Controller    Controller
	BusErrorLatch bool
	HaltRequested bool
	WaitRequested bool
}

// NewBus allocates a zeroed bus with ramWords of RAM and a freshly seeded
// RNG device.
func NewBus(ramWords int, rngSeed int64) *Bus {
	return &Bus{
		RAM: make([]isa.Word, ramWords),
		RNG: NewRNG(rngSeed),
	}
}

// Load copies program into RAM starting at word offset 0, per spec.md §6's
// "program buffer is loaded starting at RAM offset 0".
func (b *Bus) Load(program []isa.Word) {
	copy(b.RAM, program)
}

// Read dispatches a load to RAM or to a device handler, per address.
func (b *Bus) Read(addr uint32) (isa.Word, error) {
	if addr&isa.DeviceBase != 0 {
		return b.deviceRead(addr)
	}
	if int(addr) < len(b.RAM) {
		return b.RAM[addr], nil
	}
	return 0, errAccessViolation(addr)
}

// Write dispatches a store to RAM or to a device handler, per address.
func (b *Bus) Write(addr uint32, v isa.Word) error {
	if addr&isa.DeviceBase != 0 {
		return b.deviceWrite(addr, v)
	}
	if int(addr) < len(b.RAM) {
		b.RAM[addr] = v
		return nil
	}
	return errAccessViolation(addr)
}

// fault sets the bus-error latch for a misused device access (read from a
// write-only device, write to a read-only device, or an unknown/reserved
// device). This is a soft, recoverable condition — never an ErfiError —
// the caller always gets back zero.
func (b *Bus) fault() isa.Word {
	b.BusErrorLatch = true
	return 0
}

// clearLatch runs at the start of every device access, per spec.md §4.6:
// "each handler first clears the bus-error latch", returning the value it
// held so the bus-error device itself can still report the prior fault.
func (b *Bus) clearLatch() bool {
	prev := b.BusErrorLatch
	b.BusErrorLatch = false
	return prev
}

func (b *Bus) deviceRead(addr uint32) (isa.Word, error) {
	prevLatch := b.clearLatch()
	switch addr {
	case isa.DeviceGPUResponse:
		return b.GPU.readResponse(), nil
	case isa.DeviceTimerElapsed:
		return isa.Word(b.Timer.Elapsed), nil
	case isa.DeviceRNG:
		return isa.Word(b.RNG.next()), nil
	case isa.DeviceController:
		return isa.Word(b.Controller.Bits), nil
	case isa.DeviceBusError:
		if prevLatch {
			return 1, nil
		}
		return 0, nil
	default:
		return b.fault(), nil
	}
}

func (b *Bus) deviceWrite(addr uint32, v isa.Word) error {
	b.clearLatch()
	switch addr {
	case isa.DeviceGPUInput:
		b.GPU.writeInput(uint32(v))
	case isa.DeviceAPUInput:
		b.APU.writeInput(uint32(v))
	case isa.DeviceTimerWait:
		if v != 0 {
			b.WaitRequested = true
		}
	case isa.DeviceHalt:
		if v != 0 {
			b.HaltRequested = true
		}
	default:
		b.fault()
	}
	return nil
}

// errAccessViolation is a plain error, not an ErfiError — the bus has no
// notion of "current PC"; the CPU attaches that when it turns this into a
// fault (see cpu.go's Step, execLoad and execSave).
func errAccessViolation(addr uint32) error {
	return fmt.Errorf("address 0x%08x is not mapped", addr)
}
