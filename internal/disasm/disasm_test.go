package disasm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var testProgram = []byte{
	0x60, 0x01, // 200: LD V0, $01
	0x22, 0x08, // 202: CALL $208
	0x12, 0x04, // 204: JP $204
	0x00, 0x00, // 206: unreachable
	0xA2, 0x0E, // 208: LD I, $20E
	0x00, 0xEE, // 20A: RET
	0xF0, 0xFF, // 20C: unreachable
	0xF0, 0x90, // 20E: sprite data
}

func processTestProgram(t *testing.T, image []byte, opts options.Disassembler) (*Disasm, []Offset) {
	t.Helper()

	dis, err := New(log.NewTestLogger(t), image, opts)
	assert.NoError(t, err)
	offsets, err := dis.Process(context.Background())
	assert.NoError(t, err)
	return dis, offsets
}

func TestProcess(t *testing.T) {
	_, offsets := processTestProgram(t, testProgram, options.NewDisassembler())
	assert.Len(t, offsets, len(testProgram))

	assert.Equal(t, startLabel, offsets[0x0].Label)
	assert.True(t, offsets[0x0].IsCode)
	assert.Equal(t, chip8cpu.LdName+" V0, $01", offsets[0x0].Code)

	assert.True(t, offsets[0x2].IsCode)
	assert.Equal(t, "_func_0208", offsets[0x2].BranchingTo)
	assert.Equal(t, "_func_0208", offsets[0x8].Label)

	assert.Equal(t, "_label_0204", offsets[0x4].Label)
	assert.Equal(t, "_label_0204", offsets[0x4].BranchingTo)

	assert.False(t, offsets[0x6].IsCode)
	assert.True(t, offsets[0xA].IsCode)
	assert.False(t, offsets[0xC].IsCode)

	assert.False(t, offsets[0xE].IsCode)
	assert.Equal(t, "_data_020e", offsets[0xE].Label)
	assert.Equal(t, "_data_020e", offsets[0x8].BranchingTo)
}

func TestProcessSkip(t *testing.T) {
	image := []byte{
		0x31, 0x00, // 200: SE V1, $00
		0x00, 0xEE, // 202: RET
		0x00, 0xE0, // 204: CLS
		0x00, 0xEE, // 206: RET
	}
	_, offsets := processTestProgram(t, image, options.NewDisassembler())

	for _, index := range []int{0, 2, 4, 6} {
		assert.True(t, offsets[index].IsCode, "offset %d", index)
	}
}

func TestProcessCancelled(t *testing.T) {
	dis, err := New(log.NewTestLogger(t), testProgram, options.NewDisassembler())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = dis.Process(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewImageTooLarge(t *testing.T) {
	_, err := New(log.NewTestLogger(t), make([]byte, chip8.MaxRomSize+1), options.NewDisassembler())
	assert.True(t, errors.Is(err, chip8.ErrRomTooLarge))
}

func TestWriter(t *testing.T) {
	opts := options.NewDisassembler()
	opts.HexComments = false
	dis, offsets := processTestProgram(t, testProgram, opts)

	var buf bytes.Buffer
	assert.NoError(t, dis.NewWriter(&buf, offsets).Write())
	output := buf.String()

	expected := []string{
		".org $200\n",
		"Start:\n    " + chip8cpu.LdName + " V0, $01\n",
		"    " + chip8cpu.CallName + " _func_0208\n",
		"_label_0204:\n    " + chip8cpu.JpName + " _label_0204\n",
		"    .byte $00, $00\n",
		"_func_0208:\n    " + chip8cpu.LdName + " I, _data_020e\n",
		"    .byte $F0, $FF\n",
		"_data_020e:\n    .byte $F0, $90\n",
	}
	for _, line := range expected {
		assert.True(t, strings.Contains(output, line), "missing %q in\n%s", line, output)
	}
}

func TestWriterTrailingZeroBytes(t *testing.T) {
	image := []byte{0x12, 0x00, 0x00, 0x00, 0x00, 0x00}

	tests := []struct {
		name      string
		zeroBytes bool
		contains  bool
	}{
		{"trimmed", false, false},
		{"kept", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.NewDisassembler()
			opts.ZeroBytes = tt.zeroBytes
			dis, offsets := processTestProgram(t, image, opts)

			var buf bytes.Buffer
			assert.NoError(t, dis.NewWriter(&buf, offsets).Write())
			assert.Equal(t, tt.contains, strings.Contains(buf.String(), ".byte $00"))
		})
	}
}
