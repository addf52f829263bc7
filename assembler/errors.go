package assembler

import (
	"fmt"
	"strings"
)

// ECode identifies one of the assembler's fatal diagnostic classes
// (spec.md §7).
type ECode string

const (
	E001 ECode = "E001" // malformed set (token count != 3)
	E002 ECode = "E002" // variable name missing $
	E003 ECode = "E003" // unparseable size suffix
	E004 ECode = "E004" // unparseable declaration value
	E005 ECode = "E005" // undefined tag reference
	E006 ECode = "E006" // undefined variable reference
	E007 ECode = "E007" // argument not a $ or # form
	E008 ECode = "E008" // arity mismatch for mnemonic
	E009 ECode = "E009" // unknown mnemonic
	E010 ECode = "E010" // duplicate variable declaration
	E011 ECode = "E011" // immediate lacks size marker
	E012 ECode = "E012" // non-integer immediate value
	E013 ECode = "E013" // duplicate tag declaration (open question, decided in SPEC_FULL.md)
)

// Diagnostic is a fatal assembly error carrying the offending line verbatim,
// per spec.md §6.5. Every pass stops at the first Diagnostic it raises.
type Diagnostic struct {
	Code    ECode
	Message string
	Line    string
}

func newDiagnostic(code ECode, message, line string) *Diagnostic {
	return &Diagnostic{Code: code, Message: message, Line: line}
}

// Error renders the four-line stderr diagnostic format from spec.md §6.5:
// a separator, "Error: [<code>] <message>", the offending line, another
// separator.
func (d *Diagnostic) Error() string {
	var sb strings.Builder
	const rule = "--------------------------------------------"

	fmt.Fprintln(&sb, rule)
	fmt.Fprintf(&sb, "Error: [%s] %s\n", d.Code, d.Message)
	fmt.Fprintf(&sb, "-> Compilation failed on line `%s`\n", d.Line)
	fmt.Fprint(&sb, rule)
	return sb.String()
}
