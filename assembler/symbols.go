package assembler

import "github.com/transient-lang/transient/isa"

// Variable is one entry of the memory map: a declared `set<BITS> $name
// value` binding resolved to its data-section address (spec.md §3.3).
type Variable struct {
	Address uint16
	Value   uint64
	Width   isa.Width
}

// MemoryMap maps variable name (without the leading '$') to its resolved
// storage. Keys are unique; collisions are E010.
type MemoryMap map[string]Variable

// JumpMap maps tag name (without the leading '#') to its resolved
// text-section byte address. A tag seen twice is rejected with E013
// (SPEC_FULL.md's decision on the original's redefinition behavior) rather
// than letting the second declaration silently overwrite the first.
type JumpMap map[string]uint16

// TotalWidth sums the byte width of every declared variable — the size of
// the image's data section.
func (m MemoryMap) TotalWidth() int {
	total := 0
	for _, v := range m {
		total += int(v.Width)
	}
	return total
}
