package chip8

import (
	"errors"
	"fmt"
)

// Load errors.
var (
	ErrRomTooLarge = errors.New("rom too large")
	ErrRomRead     = errors.New("reading rom")
)

// Fault kinds returned by Step wrapped in a *Fault.
var (
	ErrInvalidOpcode     = errors.New("invalid opcode")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
	ErrMemoryOutOfBounds = errors.New("memory access out of bounds")
)

// Fault describes an instruction that could not be executed.
type Fault struct {
	Kind    error  // one of the Err* fault kinds
	PC      uint16 // address of the faulting instruction
	Opcode  uint16 // faulting instruction word, 0 if it could not be fetched
	Address int    // offending memory address for ErrMemoryOutOfBounds
}

func (f *Fault) Error() string {
	if errors.Is(f.Kind, ErrMemoryOutOfBounds) {
		return fmt.Sprintf("%s: address 0x%04X (pc 0x%04X, opcode 0x%04X)", f.Kind, f.Address, f.PC, f.Opcode)
	}
	return fmt.Sprintf("%s 0x%04X at pc 0x%04X", f.Kind, f.Opcode, f.PC)
}

// Unwrap returns the fault kind, this allows errors.Is checks against the Err* values.
func (f *Fault) Unwrap() error {
	return f.Kind
}
