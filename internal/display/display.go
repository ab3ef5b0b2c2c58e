// Package display renders the CHIP-8 framebuffer and key pad as text.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keypad"
)

// Screen provides the pixel state of a framebuffer.
type Screen interface {
	Pixel(x, y int) bool
}

// Keys provides the pressed state of the key pad.
type Keys interface {
	Key(key uint8) bool
}

const (
	pixelLit          = "██"
	pixelUnlit        = "  "
	pixelBorderLit    = "[]"
	pixelBorderUnlit  = " ."
	frameCorner       = "+"
	frameHorizontal   = "-"
	frameVertical     = "|"
	pixelColumnsWidth = 2
)

// Renderer writes framebuffer and key pad views.
type Renderer struct {
	border  bool
	lit     func(a ...any) string
	frame   func(a ...any) string
	pressed func(a ...any) string
}

// New returns a new renderer. With border enabled every pixel is drawn
// with a visible outline so that unlit pixels can be counted.
func New(border bool) *Renderer {
	return &Renderer{
		border:  border,
		lit:     color.New(color.FgGreen).SprintFunc(),
		frame:   color.New(color.FgHiBlack).SprintFunc(),
		pressed: color.New(color.FgYellow, color.Bold).SprintFunc(),
	}
}

// WriteScreen writes the framebuffer surrounded by a frame.
func (r *Renderer) WriteScreen(w io.Writer, screen Screen) error {
	edge := r.frame(frameCorner + strings.Repeat(frameHorizontal, chip8.DisplayWidth*pixelColumnsWidth) + frameCorner)
	if _, err := fmt.Fprintln(w, edge); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}

	var line strings.Builder
	for y := range chip8.DisplayHeight {
		line.Reset()
		line.WriteString(r.frame(frameVertical))
		for x := range chip8.DisplayWidth {
			line.WriteString(r.pixel(screen.Pixel(x, y)))
		}
		line.WriteString(r.frame(frameVertical))

		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return fmt.Errorf("writing display row %d: %w", y, err)
		}
	}

	if _, err := fmt.Fprintln(w, edge); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

func (r *Renderer) pixel(lit bool) string {
	switch {
	case lit && r.border:
		return r.lit(pixelBorderLit)
	case lit:
		return r.lit(pixelLit)
	case r.border:
		return r.frame(pixelBorderUnlit)
	default:
		return pixelUnlit
	}
}

// WriteKeypad writes the key pad in its physical layout. Every key shows
// its hex name and the host keyboard key it is mapped to, pressed keys are
// enclosed in brackets.
func (r *Renderer) WriteKeypad(w io.Writer, keys Keys) error {
	var line strings.Builder
	for _, row := range keypad.Grid {
		line.Reset()
		for i, key := range row {
			if i > 0 {
				line.WriteByte(' ')
			}
			label := fmt.Sprintf("%X(%c)", key, keypad.HostRune(key))
			if keys.Key(key) {
				line.WriteString(r.pressed("[" + label + "]"))
			} else {
				line.WriteString(" " + label + " ")
			}
		}

		if _, err := fmt.Fprintln(w, line.String()); err != nil {
			return fmt.Errorf("writing key pad row: %w", err)
		}
	}
	return nil
}
