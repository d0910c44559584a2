package machine

import "fmt"

// ErrorKind classifies a runtime fault raised during a CPU cycle.
type ErrorKind int

const (
	IllegalInstruction ErrorKind = iota
	DivideByZero
	AccessViolation
	HaltRequested
)

var errorKindNames = map[ErrorKind]string{
	IllegalInstruction: "illegal instruction",
	DivideByZero:       "divide by zero",
	AccessViolation:    "access violation",
	HaltRequested:      "halt requested",
}

func (k ErrorKind) String() string {
	if n, ok := errorKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ErfiError is a runtime fault raised during Step, carrying the PC of the
// instruction that caused it. Unlike assembler errors, these are not
// collected — a fault aborts the current cycle and is returned directly to
// the caller, who decides whether to keep stepping (bus-error is latched
// and recoverable at the device level, never raised as an ErfiError) or
// stop (every ErrorKind here does).
type ErfiError struct {
	PC      uint32
	Kind    ErrorKind
	Message string
}

func (e *ErfiError) Error() string {
	return fmt.Sprintf("pc=0x%08x: %s: %s", e.PC, e.Kind, e.Message)
}

func newFault(pc uint32, kind ErrorKind, format string, args ...any) *ErfiError {
	return &ErfiError{PC: pc, Kind: kind, Message: fmt.Sprintf(format, args...)}
}
