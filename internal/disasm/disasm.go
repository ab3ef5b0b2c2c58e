// Package disasm implements a CHIP-8 disassembler that follows the execution
// flow of a program image to separate code from data.
package disasm

import (
	"context"
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
	startLabel  = "Start"
)

// Offset describes a single byte of the program image.
type Offset struct {
	Address     uint16
	Data        []byte // instruction or data bytes starting at this offset
	Code        string // formatted instruction, empty for data
	Label       string
	Comment     string
	BranchingTo string // label of the referenced address
	IsCode      bool
	consumed    bool // second byte of an instruction
}

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	offsets []Offset

	branchDestinations set.Set[uint16] // set of all addresses that are branched to
	callDestinations   set.Set[uint16]
	dataReferences     set.Set[uint16]
	references         map[uint16]uint16 // instruction address to referenced address

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the program image.
func New(logger *log.Logger, image []byte, opts options.Disassembler) (*Disasm, error) {
	if len(image) > chip8.MaxRomSize {
		return nil, fmt.Errorf("%w: %d bytes, maximum is %d", chip8.ErrRomTooLarge, len(image), chip8.MaxRomSize)
	}

	dis := &Disasm{
		logger:              logger,
		options:             opts,
		offsets:             make([]Offset, len(image)),
		branchDestinations:  set.New[uint16](),
		callDestinations:    set.New[uint16](),
		dataReferences:      set.New[uint16](),
		references:          map[uint16]uint16{},
		offsetsToParseAdded: set.New[uint16](),
	}
	for i, b := range image {
		dis.offsets[i] = Offset{
			Address: uint16(chip8.ProgramStart + i),
			Data:    []byte{b},
		}
	}
	return dis, nil
}

// Process follows the execution flow starting at the program start and returns
// the disassembled offsets.
func (dis *Disasm) Process(ctx context.Context) ([]Offset, error) {
	dis.addAddressToParse(chip8.ProgramStart)

	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("following execution flow: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}

	dis.processDestinations()
	return dis.offsets, nil
}

// processOffset decodes the instruction at the address and queues all
// addresses that execution can continue at.
func (dis *Disasm) processOffset(address uint16) {
	index, ok := dis.index(address)
	if !ok || index+1 >= len(dis.offsets) {
		return
	}

	offsetInfo := &dis.offsets[index]
	if offsetInfo.consumed {
		dis.logger.Debug("Branch into instruction detected", log.Hex("address", address))
		offsetInfo.Comment = "branch into instruction detected"
		return
	}
	if offsetInfo.IsCode || dis.offsets[index+1].IsCode {
		return
	}

	opcode := uint16(offsetInfo.Data[0])<<8 | uint16(dis.offsets[index+1].Data[0])
	instruction, ok := Decode(opcode)
	if !ok {
		// consider an unknown instruction as start of data
		return
	}

	offsetInfo.IsCode = true
	offsetInfo.Code = instruction.String()
	offsetInfo.Data = append(offsetInfo.Data, dis.offsets[index+1].Data[0])
	dis.offsets[index+1].consumed = true
	dis.offsets[index+1].Data = nil

	dis.handleControlFlow(address, instruction)
}

// handleControlFlow processes control flow based on instruction type.
func (dis *Disasm) handleControlFlow(address uint16, instruction Instruction) {
	next := address + opcodeSize

	switch {
	case instruction.IsJump():
		dis.addBranchDestination(address, instruction.Target())

	case instruction.IsCall():
		dis.addBranchDestination(address, instruction.Target())
		dis.callDestinations.Add(instruction.Target())
		dis.addAddressToParse(next)

	case instruction.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + opcodeSize)

	case instruction.IsDataReference():
		if target := instruction.Target(); target >= chip8.ProgramStart {
			dis.dataReferences.Add(target)
			dis.references[address] = target
		}
		dis.addAddressToParse(next)

	case instruction.IsReturn(), instruction.IsIndirectJump():

	default:
		dis.addAddressToParse(next)
	}
}

func (dis *Disasm) addBranchDestination(from, target uint16) {
	if target < chip8.ProgramStart {
		return
	}
	dis.branchDestinations.Add(target)
	dis.references[from] = target
	dis.addAddressToParse(target)
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

// processDestinations names all referenced addresses and updates the
// referencing instructions with the label name.
func (dis *Disasm) processDestinations() {
	if len(dis.offsets) > 0 {
		dis.offsets[0].Label = startLabel
	}

	destinations := make([]uint16, 0, len(dis.branchDestinations)+len(dis.dataReferences))
	for address := range dis.branchDestinations {
		destinations = append(destinations, address)
	}
	for address := range dis.dataReferences {
		destinations = append(destinations, address)
	}
	slices.Sort(destinations)

	for _, address := range destinations {
		index, ok := dis.index(address)
		if !ok {
			continue
		}
		offsetInfo := &dis.offsets[index]
		if offsetInfo.Label != "" {
			continue
		}

		switch {
		case dis.callDestinations.Contains(address):
			offsetInfo.Label = fmt.Sprintf(funcNaming, address)
		case dis.branchDestinations.Contains(address):
			offsetInfo.Label = fmt.Sprintf(labelNaming, address)
		default:
			offsetInfo.Label = fmt.Sprintf(dataNaming, address)
		}
	}

	for from, to := range dis.references {
		fromIndex, ok1 := dis.index(from)
		toIndex, ok2 := dis.index(to)
		if !ok1 || !ok2 {
			continue
		}
		dis.offsets[fromIndex].BranchingTo = dis.offsets[toIndex].Label
	}
}

// index returns the offset index of a memory address.
func (dis *Disasm) index(address uint16) (int, bool) {
	if address < chip8.ProgramStart {
		return 0, false
	}
	index := int(address) - chip8.ProgramStart
	return index, index < len(dis.offsets)
}
