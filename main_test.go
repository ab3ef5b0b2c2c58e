package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "load failure",
			err:      fmt.Errorf("%w: %w", runner.ErrLoad, os.ErrNotExist),
			expected: exitLoad,
		},
		{
			name:     "ROM too large",
			err:      fmt.Errorf("%w: %w", runner.ErrLoad, chip8.ErrRomTooLarge),
			expected: exitLoad,
		},
		{
			name:     "fault",
			err:      fmt.Errorf("executing ROM: %w", &chip8.Fault{Kind: chip8.ErrStackUnderflow, PC: 0x200, Opcode: 0x00EE}),
			expected: exitFault,
		},
		{
			name:     "invalid option",
			err:      errors.New("parsing key schedule: invalid key schedule"),
			expected: exitUsage,
		},
		{
			name:     "cancelled listing",
			err:      fmt.Errorf("disassembling: %w", context.Canceled),
			expected: exitUsage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, exitCode(tt.err))
		})
	}
}
