// Package isa defines the Transient instruction set: the 17 opcodes, their
// mnemonics and operand arity, and the 8-byte wire encoding shared by the
// assembler and the VM. Nothing in this package touches source text or
// executes anything; it is the contract the other two sides agree on.
package isa

// Opcode identifies a Transient instruction.
type Opcode byte

// The 17 opcodes, in the order spec.md §3.1 lists them.
const (
	Mov  Opcode = 0x01
	Add  Opcode = 0x02
	Sub  Opcode = 0x03
	Mul  Opcode = 0x04
	DivT Opcode = 0x05
	DivR Opcode = 0x06
	Rem  Opcode = 0x07
	Cgt  Opcode = 0x08
	Clt  Opcode = 0x09
	Jmp  Opcode = 0x0A
	Jie  Opcode = 0x0B
	Jne  Opcode = 0x0C
	PutI Opcode = 0x0D
	PutC Opcode = 0x0E
	Imz  Opcode = 0x0F
	Equ  Opcode = 0x10
	Hlt  Opcode = 0xFF
)

// Arity enumerates which operand slots a mnemonic consumes, in declaration
// order. Every instruction still occupies all three address slots in the
// 8-byte encoding; Arity only says which of them the source text supplies.
type Arity int

const (
	// ArityNone takes no operands (hlt).
	ArityNone Arity = iota
	// ArityDest takes only size, dest (imz).
	ArityDest
	// ArityUnarySrc takes only src1, with no size field (jmp).
	ArityUnarySrc
	// ArityUnary takes size, src1 (puti, putc).
	ArityUnary
	// ArityBinary takes size, src1, src2 (jie, jne).
	ArityBinary
	// ArityMove takes size, src1, dest (mov).
	ArityMove
	// ArityTernary takes size, src1, src2, dest (add, sub, mul, divt, divr, rem, cgt, clt, equ).
	ArityTernary
)

// Mnemonic is the textual name of an opcode as it appears in source, with
// the width suffix stripped (e.g. "add" for "add64").
type Mnemonic string

// mnemonicTable is the single source of truth binding a mnemonic's text to
// its opcode and arity. mnemonicToOpcode, opcodeToMnemonic and opcodeToArity
// are derived from it at init time, mirroring the teacher's
// strToInstrMap/instrToStrMap split.
var mnemonicTable = []struct {
	name   Mnemonic
	opcode Opcode
	arity  Arity
}{
	{"mov", Mov, ArityMove},
	{"add", Add, ArityTernary},
	{"sub", Sub, ArityTernary},
	{"mul", Mul, ArityTernary},
	{"divt", DivT, ArityTernary},
	{"divr", DivR, ArityTernary},
	{"rem", Rem, ArityTernary},
	{"cgt", Cgt, ArityTernary},
	{"clt", Clt, ArityTernary},
	{"jmp", Jmp, ArityUnarySrc},
	{"jie", Jie, ArityBinary},
	{"jne", Jne, ArityBinary},
	{"puti", PutI, ArityUnary},
	{"putc", PutC, ArityUnary},
	{"imz", Imz, ArityDest},
	{"equ", Equ, ArityTernary},
	{"hlt", Hlt, ArityNone},
}

var (
	mnemonicToOpcode = make(map[Mnemonic]Opcode, len(mnemonicTable))
	opcodeToMnemonic = make(map[Opcode]Mnemonic, len(mnemonicTable))
	opcodeToArity    = make(map[Opcode]Arity, len(mnemonicTable))
)

func init() {
	for _, row := range mnemonicTable {
		mnemonicToOpcode[row.name] = row.opcode
		opcodeToMnemonic[row.opcode] = row.name
		opcodeToArity[row.opcode] = row.arity
	}
}

// Lookup resolves a mnemonic to its opcode and arity. ok is false for any
// unrecognized mnemonic text.
func Lookup(name Mnemonic) (op Opcode, arity Arity, ok bool) {
	op, ok = mnemonicToOpcode[name]
	if !ok {
		return 0, 0, false
	}
	return op, opcodeToArity[op], true
}

// String renders an opcode's mnemonic, or "?unknown?" if it is not one of
// the 17 defined opcodes.
func (o Opcode) String() string {
	if name, ok := opcodeToMnemonic[o]; ok {
		return string(name)
	}
	return "?unknown?"
}

// Arity reports the operand arity of o. Unknown opcodes report ArityNone.
func (o Opcode) Arity() Arity {
	return opcodeToArity[o]
}

// HasSize reports whether source text for this opcode carries a <BITS>
// width suffix. jmp and hlt are the only opcodes without one.
func (o Opcode) HasSize() bool {
	return o != Jmp && o != Hlt
}
