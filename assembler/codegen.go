package assembler

import "github.com/transient-lang/transient/isa"

// Codegen concatenates the text section (one 8-byte record per instruction)
// with the data section (each variable's least-significant Width bytes,
// written at its resolved address), producing the flat image spec.md §3.2
// describes.
func Codegen(instructions []isa.Instruction, memMap MemoryMap) []byte {
	textSize := len(instructions) * isa.InstructionSize
	image := make([]byte, textSize+memMap.TotalWidth())

	for i, inst := range instructions {
		record := inst.Encode()
		copy(image[i*isa.InstructionSize:], record[:])
	}

	for _, v := range memMap {
		bytes := isa.LeastSignificant(v.Value, v.Width)
		copy(image[v.Address:], bytes)
	}

	return image
}
