// Package keypad maps host keyboard keys to the CHIP-8 hex key pad and
// provides scripted key press schedules for headless execution.
package keypad

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/retroenv/retrochip8/internal/chip8"
)

var (
	// ErrInvalidKey is returned for key names that do not map to a CHIP-8 key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidSchedule is returned for malformed key schedule entries.
	ErrInvalidSchedule = errors.New("invalid key schedule")
)

// Grid is the physical arrangement of the hex key pad, row by row.
var Grid = [4][4]uint8{
	{0x1, 0x2, 0x3, 0xC},
	{0x4, 0x5, 0x6, 0xD},
	{0x7, 0x8, 0x9, 0xE},
	{0xA, 0x0, 0xB, 0xF},
}

// hostLayout holds the QWERTY key for every CHIP-8 key, indexed by key.
// The left 4x4 block of the keyboard mirrors the key pad grid.
var hostLayout = [chip8.KeyCount]rune{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

// HostKey returns the CHIP-8 key that a host keyboard key is mapped to.
func HostKey(r rune) (uint8, bool) {
	r = unicode.ToLower(r)
	for key, host := range hostLayout {
		if host == r {
			return uint8(key), true
		}
	}
	return 0, false
}

// HostRune returns the host keyboard key that is mapped to a CHIP-8 key.
func HostRune(key uint8) rune {
	return unicode.ToUpper(hostLayout[key&0x0F])
}

// ParseKey parses a key name. A single hex digit names the CHIP-8 key
// directly, any other single character is looked up in the host keyboard
// layout.
func ParseKey(name string) (uint8, error) {
	name = strings.TrimSpace(name)
	runes := []rune(name)
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w '%s'", ErrInvalidKey, name)
	}

	if value, err := strconv.ParseUint(name, 16, 8); err == nil {
		return uint8(value), nil
	}
	if key, ok := HostKey(runes[0]); ok {
		return key, nil
	}
	return 0, fmt.Errorf("%w '%s'", ErrInvalidKey, name)
}
