package assembler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/transient-lang/transient/isa"
)

// FormatInstructions renders a decoded instruction list one-per-line, for
// the --asm diagnostic dump (spec.md §6.1). It mirrors the teacher's
// PrintProgram, adapted to return a string instead of writing directly.
func FormatInstructions(instructions []isa.Instruction) string {
	var sb strings.Builder
	for i, inst := range instructions {
		fmt.Fprintf(&sb, "%d: %s\n", i*isa.InstructionSize, inst)
	}
	return sb.String()
}

// FormatMemoryMap renders the memory map sorted by address, for the --asm
// diagnostic dump. Sorting is purely presentational; MemoryMap itself has
// no ordering.
func FormatMemoryMap(memMap MemoryMap) string {
	names := make([]string, 0, len(memMap))
	for name := range memMap {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return memMap[names[i]].Address < memMap[names[j]].Address
	})

	var sb strings.Builder
	for _, name := range names {
		v := memMap[name]
		fmt.Fprintf(&sb, "[%d]: $%s = %d (%db)\n", v.Address, name, v.Value, v.Width)
	}
	return sb.String()
}
