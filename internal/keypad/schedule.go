package keypad

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// KeySetter is implemented by consumers of key states.
type KeySetter interface {
	SetKey(key uint8, pressed bool)
}

// Press holds a key down for a number of frames.
type Press struct {
	Key      uint8
	Frame    int // first frame that the key is held in
	Duration int // number of frames that the key is held
}

// Holds returns whether the press holds its key in the given frame.
func (p Press) Holds(frame int) bool {
	return frame >= p.Frame && frame < p.Frame+p.Duration
}

// Schedule is a list of scripted key presses.
type Schedule struct {
	presses []Press
}

// ParseSchedule parses a comma separated list of key presses in the
// format key@frame[+duration], for example "5@10+3,W@40". The duration
// defaults to a single frame.
func ParseSchedule(s string) (*Schedule, error) {
	schedule := &Schedule{}
	s = strings.TrimSpace(s)
	if s == "" {
		return schedule, nil
	}

	for entry := range strings.SplitSeq(s, ",") {
		press, err := parsePress(strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		schedule.presses = append(schedule.presses, press)
	}
	return schedule, nil
}

func parsePress(entry string) (Press, error) {
	name, timing, ok := strings.Cut(entry, "@")
	if !ok {
		return Press{}, fmt.Errorf("%w: entry '%s' is missing the frame", ErrInvalidSchedule, entry)
	}

	key, err := ParseKey(name)
	if err != nil {
		return Press{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
	}

	press := Press{Key: key, Duration: 1}
	frame, duration, hasDuration := strings.Cut(timing, "+")

	press.Frame, err = strconv.Atoi(frame)
	if err != nil || press.Frame < 0 {
		return Press{}, fmt.Errorf("%w: invalid frame '%s' in entry '%s'", ErrInvalidSchedule, frame, entry)
	}

	if hasDuration {
		press.Duration, err = strconv.Atoi(duration)
		if err != nil || press.Duration < 1 {
			return Press{}, fmt.Errorf("%w: invalid duration '%s' in entry '%s'", ErrInvalidSchedule, duration, entry)
		}
	}
	return press, nil
}

// Pressed returns the state of all keys in the given frame.
func (s *Schedule) Pressed(frame int) [chip8.KeyCount]bool {
	var keys [chip8.KeyCount]bool
	for _, press := range s.presses {
		if press.Holds(frame) {
			keys[press.Key] = true
		}
	}
	return keys
}

// Apply sets the state of every key for the given frame.
func (s *Schedule) Apply(frame int, setter KeySetter) {
	for key, pressed := range s.Pressed(frame) {
		setter.SetKey(uint8(key), pressed)
	}
}

// Len returns the number of scheduled presses.
func (s *Schedule) Len() int {
	return len(s.presses)
}

// LastFrame returns the frame after the last scheduled press is released.
func (s *Schedule) LastFrame() int {
	last := 0
	for _, press := range s.presses {
		last = max(last, press.Frame+press.Duration)
	}
	return last
}
