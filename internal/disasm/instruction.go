package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// sysName is used for 0nnn machine code calls that are not part of the opcode table.
const sysName = "sys"

// Instruction is a decoded CHIP-8 instruction word.
type Instruction struct {
	Opcode uint16
	ins    *chip8.Instruction
}

// Decode looks up the instruction word in the CHIP-8 opcode table.
// It returns false if the word does not encode a known instruction.
func Decode(opcode uint16) (Instruction, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return Instruction{Opcode: opcode, ins: op.Instruction}, true
		}
	}

	// machine code routine calls are executed as jumps by the interpreter
	if opcode&0xF000 == 0x0000 {
		return Instruction{Opcode: opcode}, true
	}
	return Instruction{Opcode: opcode}, false
}

// Name returns the instruction name.
func (i Instruction) Name() string {
	if i.ins == nil {
		return sysName
	}
	return i.ins.Name
}

// IsJump returns true if the instruction is an unconditional jump to a fixed address.
func (i Instruction) IsJump() bool {
	return i.Opcode&0xF000 == 0x1000 || i.isSys()
}

// IsIndirectJump returns true for the jump with V0 offset whose target is not known statically.
func (i Instruction) IsIndirectJump() bool {
	return i.Opcode&0xF000 == 0xB000
}

// IsCall returns true if the instruction is a call instruction.
func (i Instruction) IsCall() bool {
	return i.ins == chip8.CallInst
}

// IsReturn returns true if the instruction is a return instruction.
func (i Instruction) IsReturn() bool {
	return i.ins == chip8.RetInst
}

// IsSkip returns true if the instruction is a conditional skip instruction.
func (i Instruction) IsSkip() bool {
	if i.ins == nil {
		return false
	}
	return chip8.SkipInstructions.Contains(i.ins.Name)
}

// IsDataReference returns true if the instruction loads an address into I.
func (i Instruction) IsDataReference() bool {
	return i.Opcode&0xF000 == 0xA000
}

// Target returns the address encoded in the lower 12 bits of the instruction.
func (i Instruction) Target() uint16 {
	return i.Opcode & 0x0FFF
}

func (i Instruction) isSys() bool {
	if i.Opcode&0xF000 != 0x0000 {
		return false
	}
	return i.ins == nil || i.ins == chip8.JpInst || strings.EqualFold(i.ins.Name, sysName)
}

// String returns the instruction name followed by its formatted parameters.
func (i Instruction) String() string {
	name := i.Name()
	if params := formatParams(i.Opcode); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// Format returns the assembly representation of an instruction word.
// Words that do not encode an instruction are returned as a data word.
func Format(opcode uint16) string {
	instruction, ok := Decode(opcode)
	if !ok {
		return fmt.Sprintf(".word $%04X", opcode)
	}
	return instruction.String()
}

// formatParams formats the parameters of an instruction word.
func formatParams(opcode uint16) string {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)

	switch opcode & 0xF000 {
	case 0x0000:
		if opcode == 0x00E0 || opcode == 0x00EE {
			return ""
		}
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0x1000, 0x2000:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case 0xB000:
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	case 0x3000, 0x4000, 0x6000, 0x7000, 0xC000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0x8000:
		return formatArithmeticParams(opcode)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xD000:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, opcode&0x000F)
	case 0xE000:
		return fmt.Sprintf("V%X", x)
	default:
		return formatMiscParams(opcode)
	}
}

// formatArithmeticParams formats the 8xyn register instructions.
func formatArithmeticParams(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & 0x000F {
	case 0x6, 0xE:
		return fmt.Sprintf("V%X", x)
	default:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	}
}

// formatMiscParams formats the Fxkk instructions whose operands are implied by kk.
func formatMiscParams(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x1E:
		return fmt.Sprintf("I, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	default:
		return fmt.Sprintf("V%X", x)
	}
}

// extractRegisterX extracts the X register nibble from a CHIP-8 opcode.
func extractRegisterX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// extractRegisterY extracts the Y register nibble from a CHIP-8 opcode.
func extractRegisterY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
