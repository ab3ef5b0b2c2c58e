// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and disassembler options
func ParseFlags() (options.Program, options.Disassembler, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Input == "") {
		return opts, options.Disassembler{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Disassembler{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Disassembler{}, err
	}

	if opts.Input == "" {
		opts.Input = args[0]
	}

	disasmOptions := options.NewDisassembler()
	disasmOptions.HexComments = !opts.NoHexComments
	disasmOptions.ZeroBytes = opts.ZeroBytes

	return opts, disasmOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	if e.msg == "" {
		return "missing ROM file"
	}
	return e.msg
}

// ShowUsage prints the usage text and all flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(arg, "-") {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Timers = strings.ToLower(opts.Timers)
	if _, err := chip8.ParseTimerMode(opts.Timers); err != nil {
		return err
	}

	opts.OnFault = strings.ToLower(opts.OnFault)
	if opts.OnFault != options.FaultHalt && opts.OnFault != options.FaultSkip {
		return fmt.Errorf("unsupported fault handling: %s. Valid options: %s, %s",
			opts.OnFault, options.FaultHalt, options.FaultSkip)
	}

	switch {
	case opts.Frames < 0:
		return fmt.Errorf("invalid number of frames: %d", opts.Frames)
	case opts.InstructionsPerFrame < 1:
		return fmt.Errorf("invalid number of instructions per frame: %d", opts.InstructionsPerFrame)
	case opts.FrameRate < 1:
		return fmt.Errorf("invalid frame rate: %d", opts.FrameRate)
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Keys, "keys", "", "scripted key presses as key@frame[+duration], for example 5@10+3,W@40")
	flags.StringVar(&opts.Breakpoints, "break", "", "comma separated addresses to stop execution at, for example 0x200,0x2A4")
	flags.IntVar(&opts.Frames, "frames", 0, "number of frames to run, 0 runs until stopped")
	flags.IntVar(&opts.InstructionsPerFrame, "ipf", 9, "instructions executed per frame")
	flags.IntVar(&opts.FrameRate, "hz", 60, "frames per second")
	flags.BoolVar(&opts.Fast, "fast", false, "do not pace execution to wall clock time")
	flags.StringVar(&opts.Timers, "timers", chip8.TimersCoupled.String(), "timer mode (coupled/decoupled)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random number generator seed, 0 uses a time based seed")
	flags.StringVar(&opts.OnFault, "onfault", options.FaultHalt, "fault handling (halt/skip)")
	flags.BoolVar(&opts.Disasm, "disasm", false, "print a disassembly listing of the ROM instead of running it")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.BoolVar(&opts.NoScreen, "noscreen", false, "do not print the display after execution")
	flags.BoolVar(&opts.Border, "border", false, "draw display pixels with a border")
	flags.BoolVar(&opts.Keypad, "keypad", false, "print the key pad state after execution")
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output addresses and opcode bytes as hex values in listing comments")
	flags.BoolVar(&opts.ZeroBytes, "z", false, "output the trailing zero bytes of the ROM in the listing")
}
