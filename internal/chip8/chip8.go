package chip8

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"
)

// TimerMode selects who drives the delay and sound timers.
type TimerMode uint8

const (
	// TimersCoupled decrements both timers once after every Step.
	TimersCoupled TimerMode = iota
	// TimersDecoupled leaves the timers to the host which calls TickTimers.
	TimersDecoupled
)

var timerModeNames = map[TimerMode]string{
	TimersCoupled:   "coupled",
	TimersDecoupled: "decoupled",
}

func (m TimerMode) String() string {
	if name, ok := timerModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("TimerMode(%d)", uint8(m))
}

// ParseTimerMode returns the timer mode for the given name.
func ParseTimerMode(name string) (TimerMode, error) {
	for mode, modeName := range timerModeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unsupported timer mode '%s'", name)
}

// State is the execution state of the interpreter.
type State uint8

// Interpreter states.
const (
	Running State = iota
	WaitingForKey
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting for key"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Config contains the interpreter options.
type Config struct {
	Timers TimerMode
	Seed   uint64 // seed of the random number generator, 0 uses the current time
}

// Registers is a snapshot of the CPU registers and timers.
type Registers struct {
	V          [RegisterCount]uint8
	I          uint16
	PC         uint16
	SP         uint16
	DelayTimer uint8
	SoundTimer uint8
}

// Interpreter is a CHIP-8 virtual machine.
type Interpreter struct {
	cfg Config
	rng *rand.Rand

	memory [MemorySize]uint8
	image  []byte

	v  [RegisterCount]uint8
	i  uint16
	pc uint16
	sp uint16

	delayTimer uint8
	soundTimer uint8

	keys [KeyCount]bool

	state   State
	waitReg uint8 // register receiving the key index while waiting for a key
	fault   *Fault
}

// New returns a new interpreter with the font loaded and no program.
func New(cfg Config) *Interpreter {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	c := &Interpreter{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed>>32|seed<<32)),
	}
	c.Reset()
	return c
}

// Load copies a program image into memory at ProgramStart.
func (c *Interpreter) Load(image []byte) error {
	if len(image) > MaxRomSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrRomTooLarge, len(image), MaxRomSize)
	}

	c.image = append(c.image[:0], image...)
	copy(c.memory[ProgramStart:], c.image)
	return nil
}

// ReadImage reads a program image from the reader. Reading stops after
// MaxRomSize+1 bytes, larger images are rejected.
func ReadImage(r io.Reader) ([]byte, error) {
	image, err := io.ReadAll(io.LimitReader(r, MaxRomSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRomRead, err)
	}
	if len(image) > MaxRomSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrRomTooLarge, MaxRomSize)
	}
	return image, nil
}

// LoadReader reads a program image from the reader and loads it.
func (c *Interpreter) LoadReader(r io.Reader) error {
	image, err := ReadImage(r)
	if err != nil {
		return err
	}
	return c.Load(image)
}

// Reset restores the power on state while keeping the loaded program image.
func (c *Interpreter) Reset() {
	c.memory = [MemorySize]uint8{}
	copy(c.memory[FontStart:], fontSet[:])
	copy(c.memory[ProgramStart:], c.image)

	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = ProgramStart
	c.sp = StackStart
	c.delayTimer = 0
	c.soundTimer = 0
	c.keys = [KeyCount]bool{}
	c.state = Running
	c.waitReg = 0
	c.fault = nil
}

// Step executes a single instruction. While waiting for a key it polls
// the key state once instead. In the coupled timer mode both timers
// are decremented afterwards. A faulted interpreter returns its fault
// without changing any state.
func (c *Interpreter) Step() error {
	switch c.state {
	case Faulted:
		return c.fault

	case WaitingForKey:
		c.pollKeys()

	default:
		opcode, fault := c.fetch()
		if fault == nil {
			fault = c.execute(opcode)
		}
		if fault != nil {
			c.fault = fault
			c.state = Faulted
			return fault
		}
	}

	if c.cfg.Timers == TimersCoupled {
		c.TickTimers()
	}
	return nil
}

// TickTimers decrements the delay and sound timers by one, stopping at zero.
func (c *Interpreter) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// Recover clears a fault by skipping the faulting instruction.
// It does nothing if the interpreter is not faulted.
func (c *Interpreter) Recover() {
	if c.state != Faulted {
		return
	}
	c.pc += opcodeSize
	c.state = Running
	c.fault = nil
}

// SetKey sets the pressed state of a key.
func (c *Interpreter) SetKey(key uint8, pressed bool) {
	if key >= KeyCount {
		panic(fmt.Sprintf("chip8: key %d out of range", key))
	}
	c.keys[key] = pressed
}

// Key returns whether a key is pressed.
func (c *Interpreter) Key(key uint8) bool {
	if key >= KeyCount {
		panic(fmt.Sprintf("chip8: key %d out of range", key))
	}
	return c.keys[key]
}

// Pixel returns whether the display pixel at the given coordinates is set.
func (c *Interpreter) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		panic(fmt.Sprintf("chip8: pixel %d,%d out of range", x, y))
	}
	b := c.memory[DisplayStart+x/8+DisplayPitch*y]
	return (b>>(7-x%8))&1 == 1
}

// SoundActive returns whether the sound timer is running.
func (c *Interpreter) SoundActive() bool {
	return c.soundTimer > 0
}

// State returns the execution state.
func (c *Interpreter) State() State {
	return c.state
}

// Fault returns the fault of a faulted interpreter or nil.
func (c *Interpreter) Fault() *Fault {
	return c.fault
}

// Registers returns a snapshot of the registers and timers.
func (c *Interpreter) Registers() Registers {
	return Registers{
		V:          c.v,
		I:          c.i,
		PC:         c.pc,
		SP:         c.sp,
		DelayTimer: c.delayTimer,
		SoundTimer: c.soundTimer,
	}
}

// ReadMemory returns the byte at the given address.
func (c *Interpreter) ReadMemory(address uint16) (uint8, error) {
	if !inBounds(int(address), 1) {
		return 0, fmt.Errorf("%w: address 0x%04X", ErrMemoryOutOfBounds, address)
	}
	return c.memory[address], nil
}

// Opcode returns the instruction word at the program counter.
func (c *Interpreter) Opcode() (uint16, bool) {
	if !inBounds(int(c.pc), opcodeSize) {
		return 0, false
	}
	return uint16(c.memory[c.pc])<<8 | uint16(c.memory[c.pc+1]), true
}

// fetch reads the instruction word at the program counter.
func (c *Interpreter) fetch() (uint16, *Fault) {
	opcode, ok := c.Opcode()
	if !ok {
		address := int(c.pc)
		if address < MemorySize {
			address++
		}
		return 0, c.newFault(ErrMemoryOutOfBounds, 0, address)
	}
	return opcode, nil
}

// pollKeys completes a pending key wait if any key is pressed.
// The lowest pressed key index wins.
func (c *Interpreter) pollKeys() {
	for key, pressed := range c.keys {
		if pressed {
			c.v[c.waitReg] = uint8(key)
			c.pc += opcodeSize
			c.state = Running
			return
		}
	}
	c.state = WaitingForKey
}

func (c *Interpreter) newFault(kind error, opcode uint16, address int) *Fault {
	return &Fault{
		Kind:    kind,
		PC:      c.pc,
		Opcode:  opcode,
		Address: address,
	}
}
