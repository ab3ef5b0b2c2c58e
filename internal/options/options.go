// Package options contains the program options.
package options

// Fault handling policies of the runner.
const (
	FaultHalt = "halt"
	FaultSkip = "skip"
)

// Parameters contains file path and input options.
type Parameters struct {
	Input       string `flag:"i" usage:"input ROM file"`
	Keys        string `flag:"keys" usage:"scripted key presses, e.g. 5@10+3,W@40"`
	Breakpoints string `flag:"break" usage:"comma separated addresses to stop execution at"`
}

// Flags contains behavior options.
type Flags struct {
	Frames               int    `flag:"frames" usage:"number of frames to run, 0 runs until stopped"`
	InstructionsPerFrame int    `flag:"ipf" usage:"instructions executed per frame" default:"9"`
	FrameRate            int    `flag:"hz" usage:"frames per second" default:"60"`
	Fast                 bool   `flag:"fast" usage:"do not pace execution to wall clock time"`
	Timers               string `flag:"timers" usage:"timer mode: coupled, decoupled" default:"coupled"`
	Seed                 uint64 `flag:"seed" usage:"random number generator seed, 0 is time based"`
	OnFault              string `flag:"onfault" usage:"fault handling: halt, skip" default:"halt"`
	Disasm               bool   `flag:"disasm" usage:"print a disassembly listing instead of running the ROM"`
	Debug                bool   `flag:"debug" usage:"enable debug logging"`
	Quiet                bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	NoScreen      bool `flag:"noscreen" usage:"do not print the display after execution"`
	Border        bool `flag:"border" usage:"draw pixels with a border"`
	Keypad        bool `flag:"keypad" usage:"print the key pad state after execution"`
	NoHexComments bool `flag:"nohexcomments" usage:"omit addresses and opcode bytes in listing comments"`
	ZeroBytes     bool `flag:"z" usage:"include trailing zero bytes in the listing"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Disassembler defines options to control the disassembly listing.
type Disassembler struct {
	HexComments bool
	ZeroBytes   bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments: true,
	}
}
