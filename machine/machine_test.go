package machine_test

import (
	"testing"

	"github.com/aj-kip/erfindung/isa"
	"github.com/aj-kip/erfindung/machine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, p isa.EncodeParams) isa.Word {
	t.Helper()
	w, err := isa.Encode(p)
	require.NoError(t, err)
	return w
}

func TestThreeCycleProgramLeavesSumInZ(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.X, NR: 1}, HasImmd: true, ImmdInt: 5}),
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.Y, NR: 1}, HasImmd: true, ImmdInt: 3}),
		encode(t, isa.EncodeParams{Op: isa.PLUS, PF: isa.RRR, Regs: isa.Regs{R0: isa.Z, R1: isa.X, R2: isa.Y, NR: 3}}),
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Step())
	}
	assert.EqualValues(t, 8, cpu.Regs[isa.Z])
}

func TestFourthCycleDivideByZeroCarriesFaultingPC(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.X, NR: 1}, HasImmd: true, ImmdInt: 5}),
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.Y, NR: 1}, HasImmd: true, ImmdInt: 3}),
		encode(t, isa.EncodeParams{Op: isa.PLUS, PF: isa.RRR, Regs: isa.Regs{R0: isa.Z, R1: isa.X, R2: isa.Y, NR: 3}}),
		encode(t, isa.EncodeParams{Op: isa.DIVIDE, PF: isa.RRI, Regs: isa.Regs{R0: isa.X, R1: isa.Y, NR: 2}, HasImmd: true, ImmdInt: 0}),
	})

	for i := 0; i < 3; i++ {
		require.NoError(t, cpu.Step())
	}
	err := cpu.Step()
	require.Error(t, err)
	var ferr *machine.ErfiError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, machine.DivideByZero, ferr.Kind)
	assert.EqualValues(t, 3, ferr.PC)
}

func TestRotateNegativeCountRotatesLeft(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)
	cpu.Regs[isa.X] = 0x1

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.ROTATE, PF: isa.RRI, Regs: isa.Regs{R0: isa.X, R1: isa.X, NR: 2}, HasImmd: true, ImmdInt: -1}),
	})
	require.NoError(t, cpu.Step())
	assert.EqualValues(t, 0x2, cpu.Regs[isa.X])
}

func TestNotWritesBackComplement(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)
	cpu.Regs[isa.X] = 0

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.NOT, PF: isa.R, Regs: isa.Regs{R0: isa.X, NR: 1}}),
	})
	require.NoError(t, cpu.Step())
	assert.EqualValues(t, 0xFFFFFFFF, uint32(cpu.Regs[isa.X]))
}

func TestCallPushesPCAndJumpsToTarget(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)
	cpu.Regs[isa.SP] = 100

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.CALL, PF: isa.I, HasImmd: true, ImmdInt: 10}),
	})
	require.NoError(t, cpu.Step())
	assert.EqualValues(t, 10, cpu.Regs[isa.PC])
	assert.EqualValues(t, 101, cpu.Regs[isa.SP])
	saved, err := bus.Read(101)
	require.NoError(t, err)
	assert.EqualValues(t, 1, saved) // return address: PC was 0, fetch incremented it to 1
}

func TestSkipAdvancesPastNextInstruction(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)
	cpu.Regs[isa.X] = 1

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.SKIP, PF: isa.R, Regs: isa.Regs{R0: isa.X, NR: 1}}),
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.Y, NR: 1}, HasImmd: true, ImmdInt: 99}),
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.Z, NR: 1}, HasImmd: true, ImmdInt: 7}),
	})
	require.NoError(t, cpu.Step()) // skip
	require.NoError(t, cpu.Step()) // lands on the SET Z 7 instruction
	assert.EqualValues(t, 0, cpu.Regs[isa.Y])
	assert.EqualValues(t, 7, cpu.Regs[isa.Z])
}

func TestBusErrorLatchSetByReservedDeviceThenCleared(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	_, err := bus.Read(isa.DeviceReservedNull)
	require.NoError(t, err)
	assert.True(t, bus.BusErrorLatch)

	v, err := bus.Read(isa.DeviceBusError)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)
	assert.False(t, bus.BusErrorLatch)
}

func TestAccessViolationBeyondRAMAndBelowDeviceRange(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	_, err := bus.Read(uint32(machine.DefaultRAMWords) + 10)
	assert.Error(t, err)
}

func TestGPUUploadThenResponse(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	require.NoError(t, bus.Write(isa.DeviceGPUInput, isa.Word(isa.GPUUpload)))
	require.NoError(t, bus.Write(isa.DeviceGPUInput, 8))  // width
	require.NoError(t, bus.Write(isa.DeviceGPUInput, 8))  // height
	require.NoError(t, bus.Write(isa.DeviceGPUInput, 0))  // address
	v, err := bus.Read(isa.DeviceGPUResponse)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}

func TestHaltDeviceWriteRaisesHaltRequested(t *testing.T) {
	bus := machine.NewBus(machine.DefaultRAMWords, 1)
	cpu := machine.NewCPU(bus)

	bus.Load([]isa.Word{
		encode(t, isa.EncodeParams{Op: isa.SET, PF: isa.RI, Regs: isa.Regs{R0: isa.X, NR: 1}, HasImmd: true, ImmdInt: 1}),
		encode(t, isa.EncodeParams{Op: isa.SAVE, PF: isa.RI, Regs: isa.Regs{R0: isa.X, NR: 1}, HasAddr: true, ImmdAddr: isa.DeviceHalt}),
	})
	require.NoError(t, cpu.Step())
	err := cpu.Step()
	require.Error(t, err)
	var ferr *machine.ErfiError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, machine.HaltRequested, ferr.Kind)
}
