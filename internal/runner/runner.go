// Package runner executes CHIP-8 programs frame by frame.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keypad"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// ErrLoad is returned when the ROM file can not be loaded.
var ErrLoad = errors.New("loading ROM")

// StopReason describes why execution ended.
type StopReason int

// Reasons for ending the execution.
const (
	StopFrames StopReason = iota
	StopBreakpoint
	StopFault
	StopCancelled
)

var stopReasonNames = map[StopReason]string{
	StopFrames:     "frame limit reached",
	StopBreakpoint: "breakpoint",
	StopFault:      "fault",
	StopCancelled:  "cancelled",
}

func (s StopReason) String() string {
	return stopReasonNames[s]
}

// Result contains the outcome of an execution.
type Result struct {
	Stop         StopReason
	Frames       int // number of completed frames
	Instructions int // number of executed instructions
	Breakpoint   uint16
	Fault        *chip8.Fault
	Registers    chip8.Registers
}

// Runner loads ROM files and executes or disassembles them.
type Runner struct {
	logger *log.Logger
	loader *loader.Loader
	output io.Writer
}

// New creates a new runner that writes display dumps and listings to output.
func New(logger *log.Logger, output io.Writer) *Runner {
	return &Runner{
		logger: logger,
		loader: loader.New(),
		output: output,
	}
}

// Execute loads the ROM file and either runs it or writes its disassembly listing.
func (r *Runner) Execute(ctx context.Context, opts options.Program, disasmOpts options.Disassembler) (*Result, error) {
	image, err := r.loader.Load(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	r.printInfo(opts, image)

	if opts.Disasm {
		if err := r.Disassemble(ctx, image, disasmOpts); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}

	return r.ExecuteImage(ctx, image, opts)
}

// Disassemble writes the disassembly listing of the program image.
func (r *Runner) Disassemble(ctx context.Context, image []byte, disasmOpts options.Disassembler) error {
	dis, err := disasm.New(r.logger, image, disasmOpts)
	if err != nil {
		return fmt.Errorf("creating disassembler: %w", err)
	}

	offsets, err := dis.Process(ctx)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}

	if err := dis.NewWriter(r.output, offsets).Write(); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

// ExecuteImage runs the program image until the frame limit, a breakpoint,
// a fault or the cancellation of the context ends the execution.
func (r *Runner) ExecuteImage(ctx context.Context, image []byte, opts options.Program) (*Result, error) {
	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	timers, err := chip8.ParseTimerMode(opts.Timers)
	if err != nil {
		return nil, fmt.Errorf("parsing timer mode: %w", err)
	}
	schedule, err := keypad.ParseSchedule(opts.Keys)
	if err != nil {
		return nil, fmt.Errorf("parsing key schedule: %w", err)
	}
	r.checkSchedule(opts, schedule)

	breakpoints, err := ParseBreakpoints(opts.Breakpoints)
	if err != nil {
		return nil, fmt.Errorf("parsing breakpoints: %w", err)
	}

	interpreter := chip8.New(chip8.Config{
		Timers: timers,
		Seed:   opts.Seed,
	})
	if err := interpreter.Load(image); err != nil {
		return nil, fmt.Errorf("loading program image: %w", err)
	}

	exec := &execution{
		logger:      r.logger,
		opts:        opts,
		interpreter: interpreter,
		timers:      timers,
		schedule:    schedule,
		breakpoints: breakpoints,
		result:      &Result{},
	}
	if err := exec.run(ctx); err != nil {
		return nil, err
	}

	result := exec.result
	result.Registers = interpreter.Registers()
	r.logger.Info("Execution stopped",
		log.Stringer("reason", result.Stop),
		log.Int("frames", result.Frames),
		log.Int("instructions", result.Instructions),
		log.Hex("pc", result.Registers.PC),
	)

	if err := r.writeOutput(opts, interpreter); err != nil {
		return result, err
	}

	switch result.Stop {
	case StopFault:
		return result, fmt.Errorf("executing ROM: %w", result.Fault)
	case StopCancelled:
		return result, fmt.Errorf("executing ROM: %w", ctx.Err())
	default:
		return result, nil
	}
}

// checkSchedule logs the key schedule and warns about presses that the
// frame limit cuts off.
func (r *Runner) checkSchedule(opts options.Program, schedule *keypad.Schedule) {
	if schedule.Len() == 0 {
		return
	}

	lastFrame := schedule.LastFrame()
	r.logger.Debug("Key schedule",
		log.Int("presses", schedule.Len()),
		log.Int("last_frame", lastFrame),
	)
	if opts.Frames > 0 && lastFrame > opts.Frames {
		r.logger.Warn("Key schedule extends beyond the frame limit",
			log.Int("frames", opts.Frames),
			log.Int("last_frame", lastFrame),
		)
	}
}

// validateOptions checks the execution options that the frame loop depends on.
func validateOptions(opts options.Program) error {
	switch {
	case opts.Frames < 0:
		return fmt.Errorf("invalid number of frames: %d", opts.Frames)
	case opts.InstructionsPerFrame < 1:
		return fmt.Errorf("invalid number of instructions per frame: %d", opts.InstructionsPerFrame)
	case opts.FrameRate < 1 && !opts.Fast:
		return fmt.Errorf("invalid frame rate: %d", opts.FrameRate)
	}
	return nil
}

// writeOutput writes the final display and key pad state.
func (r *Runner) writeOutput(opts options.Program, interpreter *chip8.Interpreter) error {
	renderer := display.New(opts.Border)

	if !opts.NoScreen {
		if err := renderer.WriteScreen(r.output, interpreter); err != nil {
			return fmt.Errorf("writing display: %w", err)
		}
	}
	if opts.Keypad {
		if err := renderer.WriteKeypad(r.output, interpreter); err != nil {
			return fmt.Errorf("writing key pad: %w", err)
		}
	}
	return nil
}

// printInfo prints information about the ROM being processed.
func (r *Runner) printInfo(opts options.Program, image []byte) {
	if opts.Quiet {
		return
	}

	r.logger.Info("Processing CHIP-8 ROM",
		log.String("file", opts.Input),
		log.Int("size", len(image)),
	)
}

// ParseBreakpoints parses a comma separated list of hex addresses. The
// addresses can be prefixed with 0x or $.
func ParseBreakpoints(s string) (set.Set[uint16], error) {
	breakpoints := set.New[uint16]()
	s = strings.TrimSpace(s)
	if s == "" {
		return breakpoints, nil
	}

	for entry := range strings.SplitSeq(s, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		digits := strings.TrimPrefix(strings.TrimPrefix(entry, "0x"), "$")

		address, err := strconv.ParseUint(digits, 16, 16)
		if err != nil || address > chip8.MaxAddress {
			return nil, fmt.Errorf("invalid breakpoint address '%s'", entry)
		}
		breakpoints.Add(uint16(address))
	}
	return breakpoints, nil
}

// execution holds the state of a single program run.
type execution struct {
	logger      *log.Logger
	opts        options.Program
	interpreter *chip8.Interpreter
	timers      chip8.TimerMode
	schedule    *keypad.Schedule
	breakpoints set.Set[uint16]
	result      *Result
	beeping     bool
}

func (e *execution) run(ctx context.Context) error {
	var ticker *time.Ticker
	if !e.opts.Fast {
		ticker = time.NewTicker(time.Second / time.Duration(e.opts.FrameRate))
		defer ticker.Stop()
	}

	for frame := 0; e.opts.Frames == 0 || frame < e.opts.Frames; frame++ {
		if ctx.Err() != nil {
			e.result.Stop = StopCancelled
			return nil
		}

		e.schedule.Apply(frame, e.interpreter)

		stop, err := e.runFrame()
		if err != nil {
			return err
		}
		if stop {
			return nil
		}

		if e.timers == chip8.TimersDecoupled {
			e.interpreter.TickTimers()
		}
		e.updateSound(frame)
		e.result.Frames++

		if ticker != nil {
			select {
			case <-ctx.Done():
				e.result.Stop = StopCancelled
				return nil
			case <-ticker.C:
			}
		}
	}

	e.result.Stop = StopFrames
	return nil
}

// runFrame executes the instructions of a single frame and returns whether
// the execution has to stop.
func (e *execution) runFrame() (bool, error) {
	for range e.opts.InstructionsPerFrame {
		pc := e.interpreter.Registers().PC
		if e.breakpoints.Contains(pc) {
			e.logger.Info("Breakpoint reached", log.Hex("pc", pc))
			e.result.Stop = StopBreakpoint
			e.result.Breakpoint = pc
			return true, nil
		}

		if e.opts.Debug {
			e.trace(pc)
		}

		err := e.interpreter.Step()
		if err == nil {
			e.result.Instructions++
			continue
		}

		var fault *chip8.Fault
		if !errors.As(err, &fault) {
			return true, fmt.Errorf("executing instruction: %w", err)
		}

		if e.opts.OnFault != options.FaultSkip {
			e.logger.Warn("Halting on fault", log.Err(fault))
			e.result.Stop = StopFault
			e.result.Fault = fault
			return true, nil
		}

		e.logger.Warn("Skipping faulting instruction", log.Err(fault))
		e.interpreter.Recover()
	}
	return false, nil
}

func (e *execution) trace(pc uint16) {
	opcode, ok := e.interpreter.Opcode()
	if !ok {
		return
	}

	e.logger.Debug("Executing",
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.String("instruction", disasm.Format(opcode)),
		log.Stringer("state", e.interpreter.State()),
	)
}

// updateSound logs the start and end of the sound output.
func (e *execution) updateSound(frame int) {
	active := e.interpreter.SoundActive()
	if active == e.beeping {
		return
	}

	e.beeping = active
	if active {
		e.logger.Info("Beep started", log.Int("frame", frame))
	} else {
		e.logger.Info("Beep stopped", log.Int("frame", frame))
	}
}
