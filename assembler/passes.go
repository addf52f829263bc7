// Package assembler implements the eight-pass Transient pipeline described
// in spec.md §4.1: comment stripping, immediate interning and lowering,
// text-size counting, variable layout, declaration/blank removal, tag
// resolution, instruction-list construction, and finally code generation
// (in codegen.go). Each pass assumes its predecessors' invariants and
// raises a *Diagnostic, fatally, on the first malformed line it meets.
package assembler

import (
	"strconv"
	"strings"

	"github.com/transient-lang/transient/isa"
)

// PassCount is the number of passes AssembleWithProgress reports through,
// one per pass run by Assemble; Codegen is a separate step and is not
// counted.
const PassCount = 8

// Assemble runs the full eight-pass pipeline over source lines and returns
// the resolved instruction list and memory map. Codegen (the binary image)
// is a separate step; see Codegen.
func Assemble(lines []string) ([]isa.Instruction, MemoryMap, error) {
	return AssembleWithProgress(lines, nil)
}

// AssembleWithProgress is Assemble, additionally calling report once each
// pass completes, with that pass's name. report may be nil; it is called
// exactly PassCount times on a successful assembly, fewer on a pass that
// returns a Diagnostic.
func AssembleWithProgress(lines []string, report func(pass string)) ([]isa.Instruction, MemoryMap, error) {
	notify := func(pass string) {
		if report != nil {
			report(pass)
		}
	}

	lines = stripComments(lines)
	notify("strip comments")

	found, err := collectImmediates(lines)
	if err != nil {
		return nil, nil, err
	}
	notify("collect immediates")

	lines = lowerImmediates(lines, found)
	notify("lower immediates")

	textSizeBytes := countTextSize(lines)
	notify("count text size")

	memMap, err := layoutVariables(lines, textSizeBytes)
	if err != nil {
		return nil, nil, err
	}
	notify("layout variables")

	lines = dropDeclarations(lines)
	notify("drop declarations")

	lines, jumpMap, err := resolveTags(lines)
	if err != nil {
		return nil, nil, err
	}
	notify("resolve tags")

	instructions, err := buildInstructions(lines, memMap, jumpMap)
	if err != nil {
		return nil, nil, err
	}
	notify("build instructions")

	return instructions, memMap, nil
}

// stripComments is Pass 1: drop every line whose first characters are "//".
// No other normalization is performed.
func stripComments(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "//") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// isDeclaration reports whether line is a `set...` variable declaration.
func isDeclaration(line string) bool {
	return strings.HasPrefix(line, "set")
}

// isTag reports whether line is a `#tag` label.
func isTag(line string) bool {
	return strings.HasPrefix(line, "#")
}

// countTextSize is Pass 4: count lines that are real instructions (not
// blank, not a tag, not a comment, not a declaration) and return the
// resulting text-section size in bytes.
func countTextSize(lines []string) int {
	count := 0
	for _, line := range lines {
		if line == "" || isTag(line) || strings.HasPrefix(line, "//") || isDeclaration(line) {
			continue
		}
		count++
	}
	return count * isa.InstructionSize
}

// layoutVariables is Pass 5: walk lines in order, binding each `set<BITS>
// $name value` to a data-section address.
func layoutVariables(lines []string, textSizeBytes int) (MemoryMap, error) {
	memMap := make(MemoryMap)
	offset := 0

	for _, line := range lines {
		if !isDeclaration(line) {
			continue
		}

		tokens := strings.Split(line, " ")
		if len(tokens) != 3 {
			return nil, newDiagnostic(E001, "malformed declaration: expected `set<BITS> $name value`", line)
		}

		name := tokens[1]
		if !strings.HasPrefix(name, "$") {
			return nil, newDiagnostic(E002, "variable name must start with $", line)
		}
		name = name[1:]

		bitsStr := tokens[0][len("set"):]
		bits, err := strconv.ParseUint(bitsStr, 10, 64)
		if err != nil {
			return nil, newDiagnostic(E003, "could not parse declaration width: "+err.Error(), line)
		}

		value, err := strconv.ParseUint(tokens[2], 10, 64)
		if err != nil {
			return nil, newDiagnostic(E004, "could not parse declaration value: "+err.Error(), line)
		}

		if _, exists := memMap[name]; exists {
			return nil, newDiagnostic(E010, "variable `"+name+"` declared more than once", line)
		}

		width := isa.Width(bits / 8)
		memMap[name] = Variable{
			Address: uint16(textSizeBytes + offset),
			Value:   value,
			Width:   width,
		}
		offset += int(width)
	}

	return memMap, nil
}

// dropDeclarations is Pass 6: retain only non-empty, non-`set` lines.
func dropDeclarations(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" || isDeclaration(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// resolveTags is Pass 7: bind every `#tag` to the byte address of the
// instruction that follows it, then strip the tag lines. Implemented as a
// single streaming pass treating tag lines as zero-length, per the
// equivalence spec.md §9 notes, rather than the reference's repeated O(n²)
// rescans.
func resolveTags(lines []string) ([]string, JumpMap, error) {
	jumpMap := make(JumpMap)
	out := make([]string, 0, len(lines))
	index := 0

	for _, line := range lines {
		if isTag(line) {
			name := line[1:]
			if _, exists := jumpMap[name]; exists {
				return nil, nil, newDiagnostic(E013, "tag `"+name+"` declared more than once", line)
			}
			jumpMap[name] = uint16(index * isa.InstructionSize)
			continue
		}
		out = append(out, line)
		index++
	}

	return out, jumpMap, nil
}

// splitMnemonic splits a token like "add64" into its alphabetic mnemonic
// ("add") and numeric width suffix ("64"); "hlt" has no suffix.
func splitMnemonic(token string) (mnemonic, bits string) {
	i := 0
	for i < len(token) && isAlpha(token[i]) {
		i++
	}
	return token[:i], token[i:]
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// buildInstructions is Pass 8: resolve each remaining line into a decoded
// Instruction.
func buildInstructions(lines []string, memMap MemoryMap, jumpMap JumpMap) ([]isa.Instruction, error) {
	out := make([]isa.Instruction, 0, len(lines))

	for _, line := range lines {
		tokens := strings.Split(line, " ")
		mnemonicText, bitsText := splitMnemonic(tokens[0])

		op, arity, ok := isa.Lookup(isa.Mnemonic(mnemonicText))
		if !ok {
			return nil, newDiagnostic(E009, "unknown mnemonic `"+mnemonicText+"`", line)
		}

		var size isa.Width
		if op.HasSize() {
			bits, err := strconv.ParseUint(bitsText, 10, 64)
			if err != nil {
				return nil, newDiagnostic(E003, "could not parse instruction width: "+err.Error(), line)
			}
			size = isa.Width(bits / 8)
		}

		args := tokens[1:]
		resolved := make([]uint16, len(args))
		for i, arg := range args {
			addr, err := resolveOperand(arg, memMap, jumpMap, line)
			if err != nil {
				return nil, err
			}
			resolved[i] = addr
		}

		inst, err := assignOperands(op, arity, size, resolved, line)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}

	return out, nil
}

// resolveOperand resolves a single `#tag` or `$var` argument to its
// address.
func resolveOperand(arg string, memMap MemoryMap, jumpMap JumpMap, line string) (uint16, error) {
	switch {
	case strings.HasPrefix(arg, "#"):
		name := arg[1:]
		addr, ok := jumpMap[name]
		if !ok {
			return 0, newDiagnostic(E005, "undefined tag `"+name+"`", line)
		}
		return addr, nil
	case strings.HasPrefix(arg, "$"):
		name := arg[1:]
		v, ok := memMap[name]
		if !ok {
			return 0, newDiagnostic(E006, "undefined variable `"+name+"`", line)
		}
		return v.Address, nil
	default:
		return 0, newDiagnostic(E007, "argument `"+arg+"` is neither a $variable nor a #tag", line)
	}
}

// assignOperands validates arity and places resolved operand addresses into
// the correct slots for op's arity.
func assignOperands(op isa.Opcode, arity isa.Arity, size isa.Width, args []uint16, line string) (isa.Instruction, error) {
	expect := func(n int) error {
		if len(args) != n {
			return newDiagnostic(E008, op.String()+" expects exactly "+strconv.Itoa(n)+" operand(s)", line)
		}
		return nil
	}

	inst := isa.Instruction{Op: op, Size: size}

	switch arity {
	case isa.ArityNone:
		if err := expect(0); err != nil {
			return inst, err
		}
	case isa.ArityUnarySrc:
		if err := expect(1); err != nil {
			return inst, err
		}
		inst.Src1 = args[0]
	case isa.ArityUnary:
		if err := expect(1); err != nil {
			return inst, err
		}
		inst.Src1 = args[0]
	case isa.ArityDest:
		if err := expect(1); err != nil {
			return inst, err
		}
		inst.Dest = args[0]
	case isa.ArityBinary:
		if err := expect(2); err != nil {
			return inst, err
		}
		inst.Src1, inst.Src2 = args[0], args[1]
	case isa.ArityMove:
		if err := expect(2); err != nil {
			return inst, err
		}
		inst.Src1, inst.Dest = args[0], args[1]
	case isa.ArityTernary:
		if err := expect(3); err != nil {
			return inst, err
		}
		inst.Src1, inst.Src2, inst.Dest = args[0], args[1], args[2]
	}

	return inst, nil
}
