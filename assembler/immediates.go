package assembler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// immediate is a parsed !<BITS>_<VALUE> literal, keyed by its exact token
// text so identical tokens collapse to one synthetic variable (spec.md
// §4.1 Pass 2).
type immediate struct {
	token string
	bits  uint64
	value uint64
}

// syntheticName derives a stable textual identifier for an immediate token
// so that repeated assemblies of the same source produce byte-identical
// synthetic variable names (spec.md §9 "Symbol tables").
func (im immediate) syntheticName() string {
	return fmt.Sprintf("imm%d_%d", im.bits, im.value)
}

// collectImmediates implements Pass 2: scan every token of every line for
// !<BITS>_<VALUE> literals and de-duplicate by token text.
func collectImmediates(lines []string) (map[string]immediate, error) {
	found := make(map[string]immediate)

	for _, line := range lines {
		for _, token := range strings.Split(line, " ") {
			if !strings.HasPrefix(token, "!") {
				continue
			}
			if _, ok := found[token]; ok {
				continue
			}

			body := token[1:]
			parts := strings.SplitN(body, "_", 2)
			if len(parts) != 2 {
				return nil, newDiagnostic(E011,
					"immediate lacks a size marker; expected !<BITS>_<VALUE>", line)
			}

			bits, err := strconv.ParseUint(parts[0], 10, 64)
			if err != nil {
				return nil, newDiagnostic(E011,
					"could not parse immediate size: "+err.Error(), line)
			}

			value, err := strconv.ParseUint(parts[1], 10, 64)
			if err != nil {
				return nil, newDiagnostic(E012,
					"could not parse immediate value: "+err.Error(), line)
			}

			found[token] = immediate{token: token, bits: bits, value: value}
		}
	}

	return found, nil
}

// lowerImmediates implements Pass 3: synthesize a `set<BITS> $<H> <VALUE>`
// declaration for every unique immediate and replace each occurrence of its
// token with `$<H>`. Declarations are prepended in a sorted, deterministic
// order; ordering has no bearing on correctness but must be reproducible
// across runs.
func lowerImmediates(lines []string, found map[string]immediate) []string {
	if len(found) == 0 {
		return lines
	}

	tokens := make([]string, 0, len(found))
	for tok := range found {
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)

	declarations := make([]string, 0, len(tokens))
	replacements := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		im := found[tok]
		name := im.syntheticName()
		declarations = append(declarations, fmt.Sprintf("set%d $%s %d", im.bits, name, im.value))
		replacements[tok] = "$" + name
	}

	out := make([]string, 0, len(declarations)+len(lines))
	out = append(out, declarations...)
	for _, line := range lines {
		out = append(out, substituteTokens(line, replacements))
	}
	return out
}

// substituteTokens rewrites line token-by-token (split on a single space,
// the same delimiter the rest of the pipeline uses) so that an immediate
// token is never confused with a textually-overlapping one (e.g. !8_2
// inside !8_23).
func substituteTokens(line string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return line
	}
	tokens := strings.Split(line, " ")
	changed := false
	for i, tok := range tokens {
		if rep, ok := replacements[tok]; ok {
			tokens[i] = rep
			changed = true
		}
	}
	if !changed {
		return line
	}
	return strings.Join(tokens, " ")
}
