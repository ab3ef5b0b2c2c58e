// Package chip8 implements a CHIP-8 virtual machine interpreter.
//
// # CHIP-8 Architecture Overview
//
// CHIP-8 is an interpreted programming language developed in the 1970s for simple games
// on early microcomputers. This package executes CHIP-8 program images one instruction
// at a time and exposes the machine state to a host that renders the display, polls the
// keys and paces execution.
//
// # Memory Layout
//
// The interpreter owns a flat 4KB address space (0x000-MaxAddress):
//   - 0x000-0x04F: Font glyphs 0-F, 5 bytes each
//   - 0x200-0xFFF: Program image and data, copied in by Load
//   - 0x6A0-0x6AF: Reserved, bounds the stack from below
//   - 0x6B0-0x6CF: Call stack, growing downward from StackStart
//   - 0x700-0x7FF: Display buffer, 64x32 pixels packed 8 per byte
//
// # Execution Model
//
// Step executes exactly one instruction. The delay and sound timers either decay
// once per Step (TimersCoupled, the default) or are driven by the host through
// TickTimers (TimersDecoupled).
//
// The interpreter is a small state machine:
//   - Running: instructions are fetched and executed
//   - WaitingForKey: entered by Fx0A, every Step polls the keys once
//   - Faulted: entered by any fault, left through Recover or Reset
//
// # Faults
//
// Faults are returned as *Fault values wrapping one of ErrInvalidOpcode,
// ErrStackOverflow, ErrStackUnderflow or ErrMemoryOutOfBounds. All bounds are
// checked before the machine state is modified, a faulting Step changes nothing.
//
// # Usage Example
//
//	vm := chip8.New(chip8.Config{})
//	if err := vm.Load(image); err != nil {
//		return fmt.Errorf("loading rom: %w", err)
//	}
//	for {
//		if err := vm.Step(); err != nil {
//			return err
//		}
//	}
//
// The interpreter performs no internal synchronization and must be driven from a
// single goroutine.
package chip8
