package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func assemble(words ...uint16) []byte {
	image := make([]byte, 0, len(words)*2)
	for _, word := range words {
		image = append(image, byte(word>>8), byte(word))
	}
	return image
}

func testOptions() options.Program {
	return options.Program{
		Flags: options.Flags{
			Frames:               1,
			InstructionsPerFrame: 9,
			FrameRate:            60,
			Fast:                 true,
			Timers:               chip8.TimersCoupled.String(),
			Seed:                 1,
			OnFault:              options.FaultHalt,
		},
		OutputFlags: options.OutputFlags{
			NoScreen: true,
		},
	}
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return New(log.NewTestLogger(t), &buf), &buf
}

func TestExecuteImageFrameLimit(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Frames = 3

	result, err := r.ExecuteImage(context.Background(), assemble(0x1200), opts)
	assert.NoError(t, err)
	assert.Equal(t, StopFrames, result.Stop)
	assert.Equal(t, 3, result.Frames)
	assert.Equal(t, 27, result.Instructions)
	assert.Equal(t, uint16(0x200), result.Registers.PC)
}

func TestExecuteImageBreakpoint(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Breakpoints = "0x204"

	program := assemble(
		0x6005, // LD V0, $05
		0x7001, // ADD V0, $01
		0x1202, // JP $202
	)
	result, err := r.ExecuteImage(context.Background(), program, opts)
	assert.NoError(t, err)
	assert.Equal(t, StopBreakpoint, result.Stop)
	assert.Equal(t, uint16(0x204), result.Breakpoint)
	assert.Equal(t, 2, result.Instructions)
	assert.Equal(t, uint8(6), result.Registers.V[0])
}

func TestExecuteImageFaultHalt(t *testing.T) {
	r, _ := newTestRunner(t)

	result, err := r.ExecuteImage(context.Background(), assemble(0x6001, 0xF0FF), testOptions())
	assert.True(t, errors.Is(err, chip8.ErrInvalidOpcode))

	var fault *chip8.Fault
	assert.True(t, errors.As(err, &fault))
	assert.Equal(t, uint16(0x202), fault.PC)

	assert.NotNil(t, result)
	assert.Equal(t, StopFault, result.Stop)
	assert.Equal(t, 1, result.Instructions)
}

func TestExecuteImageFaultSkip(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.OnFault = options.FaultSkip
	opts.InstructionsPerFrame = 4

	result, err := r.ExecuteImage(context.Background(), assemble(0xF0FF, 0x1202), opts)
	assert.NoError(t, err)
	assert.Equal(t, StopFrames, result.Stop)
	assert.Equal(t, 3, result.Instructions)
	assert.Equal(t, uint16(0x202), result.Registers.PC)
}

func TestExecuteImageKeySchedule(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Frames = 4
	opts.InstructionsPerFrame = 1
	opts.Keys = "7@2"

	program := assemble(
		0xF30A, // LD V3, K
		0x1202, // JP $202
	)
	result, err := r.ExecuteImage(context.Background(), program, opts)
	assert.NoError(t, err)
	assert.Equal(t, uint8(7), result.Registers.V[3])
	assert.Equal(t, uint16(0x202), result.Registers.PC)
}

func TestExecuteImageDecoupledTimers(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Frames = 3
	opts.Timers = chip8.TimersDecoupled.String()

	program := assemble(
		0x6005, // LD V0, $05
		0xF015, // LD DT, V0
		0x1204, // JP $204
	)
	result, err := r.ExecuteImage(context.Background(), program, opts)
	assert.NoError(t, err)
	assert.Equal(t, uint8(2), result.Registers.DelayTimer)
}

func TestExecuteImageCancelled(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Frames = 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.ExecuteImage(ctx, assemble(0x1200), opts)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StopCancelled, result.Stop)
	assert.Equal(t, 0, result.Frames)
}

func TestExecuteImageInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		modify func(opts *options.Program)
	}{
		{"timer mode", func(opts *options.Program) { opts.Timers = "fast" }},
		{"key schedule", func(opts *options.Program) { opts.Keys = "5" }},
		{"breakpoints", func(opts *options.Program) { opts.Breakpoints = "xyz" }},
		{"negative frames", func(opts *options.Program) { opts.Frames = -1 }},
		{"zero instructions per frame", func(opts *options.Program) { opts.InstructionsPerFrame = 0 }},
		{"paced zero frame rate", func(opts *options.Program) {
			opts.Fast = false
			opts.FrameRate = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRunner(t)
			opts := testOptions()
			tt.modify(&opts)

			_, err := r.ExecuteImage(context.Background(), assemble(0x1200), opts)
			assert.Error(t, err)
		})
	}
}

func TestExecuteImageUnpacedIgnoresFrameRate(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.FrameRate = 0

	result, err := r.ExecuteImage(context.Background(), assemble(0x1200), opts)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Frames)
}

func TestExecuteImageScheduleBeyondFrameLimit(t *testing.T) {
	r, _ := newTestRunner(t)
	opts := testOptions()
	opts.Frames = 2
	opts.Keys = "5@1+4"

	result, err := r.ExecuteImage(context.Background(), assemble(0x1200), opts)
	assert.NoError(t, err)
	assert.Equal(t, StopFrames, result.Stop)
	assert.Equal(t, 2, result.Frames)
}

func TestExecuteImageScreen(t *testing.T) {
	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	r, buf := newTestRunner(t)
	opts := testOptions()
	opts.NoScreen = false
	opts.Keypad = true

	program := assemble(
		0xA000, // LD I, $000
		0xD005, // DRW V0, V0, $5
		0x1204, // JP $204
	)
	_, err := r.ExecuteImage(context.Background(), program, opts)
	assert.NoError(t, err)

	output := buf.String()
	assert.True(t, strings.Contains(output, "|"+strings.Repeat("██", 4)+"  "))
	assert.True(t, strings.Contains(output, " 1(1)   2(2)   3(3)   C(4) "))
}

func TestExecute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, assemble(0x00E0, 0x1202), 0600))

	t.Run("run", func(t *testing.T) {
		r, _ := newTestRunner(t)
		opts := testOptions()
		opts.Input = path

		result, err := r.Execute(context.Background(), opts, options.NewDisassembler())
		assert.NoError(t, err)
		assert.Equal(t, 9, result.Instructions)
	})

	t.Run("disassemble", func(t *testing.T) {
		r, buf := newTestRunner(t)
		opts := testOptions()
		opts.Input = path
		opts.Disasm = true

		_, err := r.Execute(context.Background(), opts, options.NewDisassembler())
		assert.NoError(t, err)
		assert.True(t, strings.Contains(buf.String(), ".org $200"))
		assert.True(t, strings.Contains(buf.String(), "_label_0202:"))
	})

	t.Run("missing file", func(t *testing.T) {
		r, _ := newTestRunner(t)
		opts := testOptions()
		opts.Input = filepath.Join(t.TempDir(), "missing.ch8")

		_, err := r.Execute(context.Background(), opts, options.NewDisassembler())
		assert.True(t, errors.Is(err, ErrLoad))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})
}

func TestParseBreakpoints(t *testing.T) {
	breakpoints, err := ParseBreakpoints("0x200, $2A4,300")
	assert.NoError(t, err)
	assert.Len(t, breakpoints, 3)
	assert.True(t, breakpoints.Contains(0x200))
	assert.True(t, breakpoints.Contains(0x2A4))
	assert.True(t, breakpoints.Contains(0x300))

	empty, err := ParseBreakpoints("")
	assert.NoError(t, err)
	assert.Empty(t, empty)

	for _, invalid := range []string{"zz", "0x1000", "0x200,,0x202"} {
		_, err := ParseBreakpoints(invalid)
		assert.Error(t, err, "breakpoints '%s'", invalid)
	}
}
