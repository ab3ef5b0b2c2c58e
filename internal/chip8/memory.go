package chip8

// CHIP-8 memory layout constants.
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// MaxAddress is the highest valid address in CHIP-8 memory space.
	MaxAddress = MemorySize - 1

	// ProgramStart is the memory address where CHIP-8 programs are loaded
	// and begin execution.
	ProgramStart = 0x200

	// MaxRomSize is the largest program image that fits into memory.
	MaxRomSize = MemorySize - ProgramStart

	// FontStart is the address of the first font glyph.
	FontStart = 0x000

	// FontGlyphSize is the number of bytes of a single font glyph.
	FontGlyphSize = 5

	// ReservedStart is the start of the 16 bytes below the stack that
	// the stack is not allowed to grow into.
	ReservedStart = 0x6A0

	// ReservedEnd is the last byte of the reserved region.
	ReservedEnd = ReservedStart + RegisterCount - 1

	// StackStart is the initial stack pointer, the stack grows downward.
	StackStart = 0x6CF

	// StackDepth is the maximum number of nested calls.
	StackDepth = (StackStart - ReservedEnd) / 2

	// DisplayStart is the address of the display buffer.
	DisplayStart = 0x700

	// DisplayWidth is the horizontal resolution in pixels.
	DisplayWidth = 64

	// DisplayHeight is the vertical resolution in pixels.
	DisplayHeight = 32

	// DisplayPitch is the number of bytes per display row.
	DisplayPitch = DisplayWidth / 8

	// DisplaySize is the size of the display buffer in bytes.
	DisplaySize = DisplayPitch * DisplayHeight

	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16

	// KeyCount is the number of keys of the hex key pad.
	KeyCount = 16

	// opcodeSize is the size of CHIP-8 instructions in bytes.
	opcodeSize = 2
)

// fontSet contains the hexadecimal digit sprites 0-F.
var fontSet = [16 * FontGlyphSize]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// inBounds returns whether length bytes starting at address are addressable.
func inBounds(address, length int) bool {
	return address >= 0 && length >= 0 && address+length <= MemorySize
}
