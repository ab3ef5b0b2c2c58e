package chip8

// execute runs a single instruction. All memory and stack bounds are
// checked before any state is modified.
func (c *Interpreter) execute(opcode uint16) *Fault {
	nnn := opcode & 0x0FFF
	kk := uint8(opcode & 0x00FF)
	x := (opcode & 0x0F00) >> 8
	y := (opcode & 0x00F0) >> 4
	n := opcode & 0x000F

	switch opcode & 0xF000 {
	case 0x0000:
		return c.executeSystem(opcode, nnn)

	case 0x1000: // JP addr
		c.pc = nnn

	case 0x2000: // CALL addr
		return c.call(opcode, nnn)

	case 0x3000: // SE Vx, byte
		c.skipIf(c.v[x] == kk)

	case 0x4000: // SNE Vx, byte
		c.skipIf(c.v[x] != kk)

	case 0x5000: // SE Vx, Vy
		if n != 0 {
			return c.newFault(ErrInvalidOpcode, opcode, 0)
		}
		c.skipIf(c.v[x] == c.v[y])

	case 0x6000: // LD Vx, byte
		c.v[x] = kk
		c.next()

	case 0x7000: // ADD Vx, byte
		c.v[x] += kk
		c.next()

	case 0x8000:
		return c.executeArithmetic(opcode, x, y, n)

	case 0x9000: // SNE Vx, Vy
		if n != 0 {
			return c.newFault(ErrInvalidOpcode, opcode, 0)
		}
		c.skipIf(c.v[x] != c.v[y])

	case 0xA000: // LD I, addr
		c.i = nnn
		c.next()

	case 0xB000: // JP V0, addr
		c.pc = uint16(c.v[0]) + nnn

	case 0xC000: // RND Vx, byte
		c.v[x] = uint8(c.rng.Uint32()) & kk
		c.next()

	case 0xD000: // DRW Vx, Vy, nibble
		return c.draw(opcode, x, y, n)

	case 0xE000:
		return c.executeKey(opcode, x)

	default:
		return c.executeMisc(opcode, x)
	}
	return nil
}

// executeSystem handles the 0nnn instruction family.
func (c *Interpreter) executeSystem(opcode, nnn uint16) *Fault {
	switch opcode {
	case 0x00E0: // CLS
		clear(c.memory[DisplayStart : DisplayStart+DisplaySize])
		c.next()

	case 0x00EE: // RET
		if c.sp >= StackStart {
			return c.newFault(ErrStackUnderflow, opcode, 0)
		}
		address := uint16(c.memory[c.sp+1])<<8 | uint16(c.memory[c.sp+2])
		c.sp += 2
		c.pc = address + opcodeSize

	default: // SYS addr, treated as a jump
		c.pc = nnn
	}
	return nil
}

// call pushes the address of the call instruction and jumps to the target.
// The return address is stored low byte first at the stack pointer.
func (c *Interpreter) call(opcode, target uint16) *Fault {
	if c.sp-1 <= ReservedEnd {
		return c.newFault(ErrStackOverflow, opcode, 0)
	}
	c.memory[c.sp] = uint8(c.pc & 0x00FF)
	c.memory[c.sp-1] = uint8(c.pc >> 8)
	c.sp -= 2
	c.pc = target
	return nil
}

// executeArithmetic handles the 8xyn register to register instructions.
// Flag results are written to VF after the result register.
func (c *Interpreter) executeArithmetic(opcode, x, y, n uint16) *Fault {
	vx, vy := c.v[x], c.v[y]

	switch n {
	case 0x0: // LD Vx, Vy
		c.v[x] = vy
	case 0x1: // OR Vx, Vy
		c.v[x] = vx | vy
	case 0x2: // AND Vx, Vy
		c.v[x] = vx & vy
	case 0x3: // XOR Vx, Vy
		c.v[x] = vx ^ vy
	case 0x4: // ADD Vx, Vy
		sum := uint16(vx) + uint16(vy)
		c.setWithFlag(x, uint8(sum), sum > 0xFF)
	case 0x5: // SUB Vx, Vy
		c.setWithFlag(x, vx-vy, vx > vy)
	case 0x6: // SHR Vx
		c.setWithFlag(x, vx>>1, vx&0x01 != 0)
	case 0x7: // SUBN Vx, Vy
		c.setWithFlag(x, vy-vx, vy > vx)
	case 0xE: // SHL Vx
		c.setWithFlag(x, vx<<1, vx&0x80 != 0)
	default:
		return c.newFault(ErrInvalidOpcode, opcode, 0)
	}

	c.next()
	return nil
}

// draw XORs an n byte sprite from memory at I onto the display.
// The start position wraps around the display edges and every sprite row
// is split across at most two display bytes, the second one wrapping to
// the start of the same row. VF is set if any set pixel was cleared.
func (c *Interpreter) draw(opcode, x, y, n uint16) *Fault {
	if fault := c.checkBounds(opcode, int(c.i), int(n)); fault != nil {
		return fault
	}

	xpos := int(c.v[x]) % DisplayWidth
	shift := xpos % 8
	column := xpos / 8

	var collision uint8
	for row := range int(n) {
		ypos := (int(c.v[y]) + row) % DisplayHeight
		line := DisplayStart + DisplayPitch*ypos
		sprite := c.memory[int(c.i)+row]

		left := sprite >> shift
		right := sprite << (8 - shift)

		leftIndex := line + column
		collision |= c.memory[leftIndex] & left
		c.memory[leftIndex] ^= left

		rightIndex := line + (column+1)%DisplayPitch
		collision |= c.memory[rightIndex] & right
		c.memory[rightIndex] ^= right
	}

	if collision != 0 {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
	c.next()
	return nil
}

// executeKey handles the Ex9E and ExA1 key skip instructions.
// Only the low nibble of Vx selects the key.
func (c *Interpreter) executeKey(opcode, x uint16) *Fault {
	pressed := c.keys[c.v[x]&0x0F]

	switch opcode & 0x00FF {
	case 0x9E: // SKP Vx
		c.skipIf(pressed)
	case 0xA1: // SKNP Vx
		c.skipIf(!pressed)
	default:
		return c.newFault(ErrInvalidOpcode, opcode, 0)
	}
	return nil
}

// executeMisc handles the Fxkk timer, key, index and memory instructions.
func (c *Interpreter) executeMisc(opcode, x uint16) *Fault {
	switch opcode & 0x00FF {
	case 0x07: // LD Vx, DT
		c.v[x] = c.delayTimer

	case 0x0A: // LD Vx, K
		c.waitReg = uint8(x)
		c.pollKeys()
		return nil

	case 0x15: // LD DT, Vx
		c.delayTimer = c.v[x]

	case 0x18: // LD ST, Vx
		c.soundTimer = c.v[x]

	case 0x1E: // ADD I, Vx
		c.i += uint16(c.v[x])

	case 0x29: // LD F, Vx
		c.i = FontStart + FontGlyphSize*uint16(c.v[x])

	case 0x33: // LD B, Vx
		if fault := c.checkBounds(opcode, int(c.i), 3); fault != nil {
			return fault
		}
		value := c.v[x]
		c.memory[c.i] = value / 100
		c.memory[c.i+1] = value / 10 % 10
		c.memory[c.i+2] = value % 10

	case 0x55: // LD [I], Vx
		if fault := c.checkBounds(opcode, int(c.i), int(x)+1); fault != nil {
			return fault
		}
		copy(c.memory[c.i:], c.v[:x+1])

	case 0x65: // LD Vx, [I]
		if fault := c.checkBounds(opcode, int(c.i), int(x)+1); fault != nil {
			return fault
		}
		copy(c.v[:x+1], c.memory[c.i:])

	default:
		return c.newFault(ErrInvalidOpcode, opcode, 0)
	}

	c.next()
	return nil
}

// checkBounds returns a fault if the memory range starting at address is
// not fully addressable. The fault reports the first invalid address.
func (c *Interpreter) checkBounds(opcode uint16, address, length int) *Fault {
	if inBounds(address, length) {
		return nil
	}
	return c.newFault(ErrMemoryOutOfBounds, opcode, max(address, MemorySize))
}

// setWithFlag writes a result register followed by the VF flag.
func (c *Interpreter) setWithFlag(x uint16, value uint8, flag bool) {
	c.v[x] = value
	if flag {
		c.v[0xF] = 1
	} else {
		c.v[0xF] = 0
	}
}

// skipIf advances past the next instruction if the condition holds.
func (c *Interpreter) skipIf(condition bool) {
	if condition {
		c.pc += 2 * opcodeSize
		return
	}
	c.pc += opcodeSize
}

func (c *Interpreter) next() {
	c.pc += opcodeSize
}
