package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// bytesPerDataLine is the maximum number of data bytes written per .byte directive.
const bytesPerDataLine = 8

// Writer writes a disassembled program as assembly listing.
type Writer struct {
	offsets    []Offset
	hexComment bool
	zeroBytes  bool
	mainWriter io.Writer
}

// NewWriter returns a new listing writer for the disassembled offsets.
func (dis *Disasm) NewWriter(mainWriter io.Writer, offsets []Offset) *Writer {
	return &Writer{
		offsets:    offsets,
		hexComment: dis.options.HexComments,
		zeroBytes:  dis.options.ZeroBytes,
		mainWriter: mainWriter,
	}
}

// Write writes the listing header followed by all code and data offsets.
func (w *Writer) Write() error {
	if _, err := fmt.Fprintf(w.mainWriter, "; CHIP-8 ROM Disassembly\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}

	if _, err := fmt.Fprintf(w.mainWriter, "; Program starts at $%03X in CHIP-8 memory space\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing memory space comment: %w", err)
	}

	if _, err := fmt.Fprintf(w.mainWriter, ".org $%03X\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}

	endIndex := w.endIndex()
	for i := 0; i < endIndex; {
		offset := w.offsets[i]

		if err := w.writeLabel(offset); err != nil {
			return fmt.Errorf("writing label: %w", err)
		}

		if offset.IsCode {
			if err := w.writeCode(offset); err != nil {
				return fmt.Errorf("writing code: %w", err)
			}
			i++
			continue
		}

		if offset.consumed {
			i++
			continue
		}

		count, err := w.writeData(i, endIndex)
		if err != nil {
			return fmt.Errorf("writing data: %w", err)
		}
		i += count
	}

	return nil
}

// writeLabel writes a label if present in the offset.
func (w *Writer) writeLabel(offset Offset) error {
	if offset.Label != "" {
		if _, err := fmt.Fprintf(w.mainWriter, "%s:\n", offset.Label); err != nil {
			return fmt.Errorf("writing label %s: %w", offset.Label, err)
		}
	}
	return nil
}

// writeCode writes a CHIP-8 instruction.
func (w *Writer) writeCode(offset Offset) error {
	code := offset.Code
	if offset.BranchingTo != "" {
		if idx := strings.LastIndex(code, "$"); idx >= 0 {
			code = code[:idx] + offset.BranchingTo
		}
	}
	line := "    " + code

	var comments []string
	if w.hexComment {
		comments = append(comments, fmt.Sprintf("$%04X  %02X %02X", offset.Address, offset.Data[0], offset.Data[1]))
	}
	if offset.Comment != "" {
		comments = append(comments, offset.Comment)
	}

	if len(comments) == 0 {
		if _, err := fmt.Fprintf(w.mainWriter, "%s\n", line); err != nil {
			return fmt.Errorf("writing code: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w.mainWriter, "%-32s ; %s\n", line, strings.Join(comments, " ")); err != nil {
		return fmt.Errorf("writing code with comment: %w", err)
	}
	return nil
}

// writeData writes a run of data bytes that ends at the next label, code
// offset or line limit and returns the number of offsets written.
func (w *Writer) writeData(start, endIndex int) (int, error) {
	var buf strings.Builder
	count := 0

	for i := start; i < endIndex && count < bytesPerDataLine; i++ {
		offset := w.offsets[i]
		if offset.IsCode || offset.consumed || (i > start && offset.Label != "") {
			break
		}

		if count == 0 {
			buf.WriteString(fmt.Sprintf("    .byte $%02X", offset.Data[0]))
		} else {
			buf.WriteString(fmt.Sprintf(", $%02X", offset.Data[0]))
		}
		count++
	}

	line := buf.String()
	if w.hexComment {
		line = fmt.Sprintf("%-32s ; $%04X", line, w.offsets[start].Address)
	}
	if _, err := fmt.Fprintf(w.mainWriter, "%s\n", line); err != nil {
		return 0, fmt.Errorf("writing data: %w", err)
	}
	return count, nil
}

// endIndex finds the offset after the last meaningful byte of the program.
func (w *Writer) endIndex() int {
	if w.zeroBytes {
		return len(w.offsets)
	}

	for i := len(w.offsets) - 1; i >= 0; i-- {
		offset := w.offsets[i]
		if offset.Label != "" || offset.IsCode || offset.consumed {
			return i + 1
		}
		for _, b := range offset.Data {
			if b != 0 {
				return i + 1
			}
		}
	}

	return 0
}
