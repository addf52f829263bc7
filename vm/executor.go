package vm

import (
	"strconv"

	"github.com/transient-lang/transient/isa"
)

// fetch reads the 8-byte instruction record at pc, trapping if the read
// would run off the end of memory (spec.md §4.2 "Fetch").
func (s *State) fetch(pc uint32) ([isa.InstructionSize]byte, error) {
	var record [isa.InstructionSize]byte
	if uint64(pc)+isa.InstructionSize > uint64(len(s.Memory)) {
		return record, newTrap(TrapFetchOutOfBounds, pc, "")
	}
	copy(record[:], s.Memory[pc:pc+isa.InstructionSize])
	return record, nil
}

// addressUsage reports which of an instruction's address slots are
// actually dereferenced/written by its opcode, for bounds checking.
type addressUsage struct {
	src1, src2, dest bool
}

func usage(op isa.Opcode) addressUsage {
	switch op.Arity() {
	case isa.ArityNone:
		return addressUsage{}
	case isa.ArityUnarySrc:
		return addressUsage{src1: true}
	case isa.ArityUnary:
		return addressUsage{src1: true}
	case isa.ArityDest:
		return addressUsage{dest: true}
	case isa.ArityBinary:
		return addressUsage{src1: true, src2: true}
	case isa.ArityMove:
		return addressUsage{src1: true, dest: true}
	case isa.ArityTernary:
		return addressUsage{src1: true, src2: true, dest: true}
	default:
		return addressUsage{}
	}
}

// checkBounds validates that a size-byte access at addr stays within
// memory. size may be zero (jmp/hlt), in which case any address is valid
// since nothing is read or written.
func (s *State) checkBounds(pc uint32, addr uint16, size isa.Width) error {
	if size == 0 {
		return nil
	}
	if uint64(addr)+uint64(size) > uint64(len(s.Memory)) {
		return newTrap(TrapOperandOutOfBounds, pc, "")
	}
	return nil
}

// execute decodes and runs one instruction, returning the next program
// counter. Per spec.md §4.2, every opcode other than hlt and jmp has its
// used addresses bounds-checked before operands are touched.
func (s *State) execute(record [isa.InstructionSize]byte) (uint32, error) {
	pc := s.ProgramCounter
	inst := isa.Decode(record)

	if inst.Op != isa.Hlt {
		if inst.Op.HasSize() && !inst.Size.Valid() {
			return 0, newTrap(TrapInvalidWidth, pc, inst.Op.String())
		}

		if inst.Op != isa.Jmp {
			use := usage(inst.Op)
			if use.src1 {
				if err := s.checkBounds(pc, inst.Src1, inst.Size); err != nil {
					return 0, err
				}
			}
			if use.src2 {
				if err := s.checkBounds(pc, inst.Src2, inst.Size); err != nil {
					return 0, err
				}
			}
			if use.dest {
				if err := s.checkBounds(pc, inst.Dest, inst.Size); err != nil {
					return 0, err
				}
			}
		}
	}

	switch inst.Op {
	case isa.Hlt:
		s.Mode = Halted
		return pc, nil

	case isa.Jmp:
		return uint32(inst.Src1), nil

	case isa.Mov:
		src := s.load(inst.Src1, inst.Size)
		s.store(inst.Dest, inst.Size, src)
		return pc + isa.InstructionSize, nil

	case isa.Imz:
		s.store(inst.Dest, inst.Size, uint64(s.ImageLength))
		return pc + isa.InstructionSize, nil

	case isa.PutI:
		src := s.load(inst.Src1, inst.Size)
		s.writeString(strconv.FormatUint(src, 10))
		return pc + isa.InstructionSize, nil

	case isa.PutC:
		src := s.load(inst.Src1, inst.Size)
		s.writeString(string(rune(byte(src))))
		return pc + isa.InstructionSize, nil

	case isa.Jie:
		cond := s.load(inst.Src2, inst.Size)
		if cond != 0 {
			return uint32(inst.Src1), nil
		}
		return pc + isa.InstructionSize, nil

	case isa.Jne:
		cond := s.load(inst.Src2, inst.Size)
		if cond == 0 {
			return uint32(inst.Src1), nil
		}
		return pc + isa.InstructionSize, nil
	}

	// Remaining opcodes are all binary-operand, ternary-slot arithmetic
	// and comparisons: src1, src2 -> dest.
	if inst.Op.Arity() != isa.ArityTernary {
		return 0, newTrap(TrapUnknownOpcode, pc, inst.Op.String())
	}
	s1 := s.load(inst.Src1, inst.Size)
	s2 := s.load(inst.Src2, inst.Size)

	var result uint64
	switch inst.Op {
	case isa.Add:
		sum := s1 + s2
		if sum < s1 {
			return 0, newTrap(TrapArithmeticOverflow, pc, "add")
		}
		result = sum

	case isa.Sub:
		if s2 > s1 {
			return 0, newTrap(TrapArithmeticOverflow, pc, "sub")
		}
		result = s1 - s2

	case isa.Mul:
		if s1 != 0 && s2 != 0 {
			product := s1 * s2
			if product/s1 != s2 {
				return 0, newTrap(TrapArithmeticOverflow, pc, "mul")
			}
			result = product
		}

	case isa.DivT:
		if s2 == 0 {
			return 0, newTrap(TrapDivisionByZero, pc, "divt")
		}
		result = s1 / s2

	case isa.DivR:
		if s2 == 0 {
			return 0, newTrap(TrapDivisionByZero, pc, "divr")
		}
		result = divRoundHalfAwayFromZero(s1, s2)

	case isa.Rem:
		if s2 == 0 {
			return 0, newTrap(TrapDivisionByZero, pc, "rem")
		}
		result = s1 % s2

	case isa.Cgt:
		result = boolToU64(s1 > s2)

	case isa.Clt:
		result = boolToU64(s1 < s2)

	case isa.Equ:
		result = boolToU64(s1 == s2)

	default:
		return 0, newTrap(TrapUnknownOpcode, pc, inst.Op.String())
	}

	s.store(inst.Dest, inst.Size, result)
	return pc + isa.InstructionSize, nil
}

// load reads a Size-byte big-endian value at addr and zero-extends it to
// 64 bits (spec.md §4.2 "Operand loading").
func (s *State) load(addr uint16, size isa.Width) uint64 {
	return isa.ZeroExtend(s.Memory[addr:addr+uint16(size)], size)
}

// store writes the least-significant Size bytes of value's 8-byte
// big-endian encoding to addr (spec.md §4.2 "Operand storing").
func (s *State) store(addr uint16, size isa.Width, value uint64) {
	copy(s.Memory[addr:], isa.LeastSignificant(value, size))
}

func (s *State) writeString(str string) {
	if s.Stdout != nil {
		s.Stdout.WriteString(str)
	}
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

// divRoundHalfAwayFromZero computes round(s1/s2) with ties breaking away
// from zero, using only integer arithmetic so the result is exact for
// operands beyond float64's 53-bit mantissa (SPEC_FULL.md §4, deciding the
// `divr` open question).
func divRoundHalfAwayFromZero(s1, s2 uint64) uint64 {
	q := s1 / s2
	r := s1 % s2
	if r >= s2-r {
		q++
	}
	return q
}
