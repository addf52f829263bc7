package isa

import "fmt"

// InstructionSize is the fixed width in bytes of every encoded instruction,
// regardless of how many operand slots the mnemonic actually uses.
const InstructionSize = 8

// Width is an operand size in bytes. Only 1, 2, 4 and 8 are meaningful.
type Width byte

// Valid reports whether w is one of the four widths Transient understands.
func (w Width) Valid() bool {
	switch w {
	case 1, 2, 4, 8:
		return true
	default:
		return false
	}
}

// Instruction is the decoded, tagged form of one Transient instruction: an
// opcode plus its three address/width operand slots. Every variant carries
// all three slots so that encode/decode round-trips losslessly even though
// a given mnemonic only assigns meaning to a subset of them (spec.md §3.1).
type Instruction struct {
	Op    Opcode
	Size  Width
	Src1  uint16
	Src2  uint16
	Dest  uint16
}

// Encode packs i into its fixed 8-byte wire form:
// [opcode, size, src1_hi, src1_lo, src2_hi, src2_lo, dest_hi, dest_lo].
func (i Instruction) Encode() [InstructionSize]byte {
	var out [InstructionSize]byte
	out[0] = byte(i.Op)
	out[1] = byte(i.Size)
	putU16BE(out[2:4], i.Src1)
	putU16BE(out[4:6], i.Src2)
	putU16BE(out[6:8], i.Dest)
	return out
}

// Decode unpacks an 8-byte wire record into an Instruction. It performs no
// validation of the opcode or size byte; that is the caller's concern (the
// assembler never emits anything else, the VM validates at execution time).
func Decode(record [InstructionSize]byte) Instruction {
	return Instruction{
		Op:   Opcode(record[0]),
		Size: Width(record[1]),
		Src1: u16BE(record[2:4]),
		Src2: u16BE(record[4:6]),
		Dest: u16BE(record[6:8]),
	}
}

// String renders an instruction roughly as source text, for --asm dumps and
// debugger display.
func (i Instruction) String() string {
	switch i.Op.Arity() {
	case ArityNone:
		return i.Op.String()
	case ArityUnarySrc:
		return fmt.Sprintf("%s #%d", i.Op, i.Src1)
	case ArityUnary:
		return fmt.Sprintf("%s%d $%d", i.Op, i.Size*8, i.Src1)
	case ArityDest:
		return fmt.Sprintf("%s%d $%d", i.Op, i.Size*8, i.Dest)
	case ArityBinary:
		return fmt.Sprintf("%s%d #%d $%d", i.Op, i.Size*8, i.Src1, i.Src2)
	case ArityMove:
		return fmt.Sprintf("%s%d $%d $%d", i.Op, i.Size*8, i.Src1, i.Dest)
	case ArityTernary:
		return fmt.Sprintf("%s%d $%d $%d $%d", i.Op, i.Size*8, i.Src1, i.Src2, i.Dest)
	default:
		return i.Op.String()
	}
}
