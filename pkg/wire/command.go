package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgKind enumerates the closed set of command argument variants. Every
// argument in an engine command is one of these; keeping serialization in
// one place keeps the wire grammar testable.
type ArgKind uint8

const (
	// ArgNumber is a numeric literal
	ArgNumber ArgKind = iota
	// ArgInt is an integer literal
	ArgInt
	// ArgString is a double-quoted string literal
	ArgString
	// ArgName is a bare identifier (node names, type keywords)
	ArgName
	// ArgRef is a reference to an engine node path
	ArgRef
	// ArgExpr is a brace-wrapped expression the engine evaluates
	ArgExpr
)

// Arg is one tagged command argument.
type Arg struct {
	kind ArgKind
	str  string
	num  float64
	i    int
}

// Num returns a numeric argument.
func Num(v float64) Arg { return Arg{kind: ArgNumber, num: v} }

// Int returns an integer argument.
func Int(v int) Arg { return Arg{kind: ArgInt, i: v} }

// Str returns a quoted string argument.
func Str(v string) Arg { return Arg{kind: ArgString, str: v} }

// Name returns a bare identifier argument.
func Name(v string) Arg { return Arg{kind: ArgName, str: v} }

// Ref returns a node-path reference argument.
func Ref(path string) Arg { return Arg{kind: ArgRef, str: path} }

// Expr returns a brace-wrapped expression argument.
func Expr(v float64) Arg { return Arg{kind: ArgExpr, num: v} }

// String serializes the argument in the engine's textual grammar.
func (a Arg) String() string {
	switch a.kind {
	case ArgNumber:
		return formatFloat(a.num)
	case ArgInt:
		return strconv.Itoa(a.i)
	case ArgString:
		return `"` + a.str + `"`
	case ArgName, ArgRef:
		return a.str
	case ArgExpr:
		return "{" + formatFloat(a.num) + "}"
	default:
		return ""
	}
}

// formatFloat renders a float the way the engine accepts it: shortest
// round-trippable decimal form.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Call formats a method invocation on a node path.
func Call(node, method string, args ...Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s.%s(%s)", node, method, strings.Join(parts, ","))
}

// SetProp formats a property assignment on a node path.
func SetProp(node, prop string, value Arg) string {
	return fmt.Sprintf("%s.%s = %s", node, prop, value.String())
}

// Subscript formats an indexed path element, e.g. Subscript("app.subnodes", 3).
func Subscript(base string, index int) string {
	return fmt.Sprintf("%s[%d]", base, index)
}

// Script accumulates an ordered batch of commands sent as one request.
// The engine executes the lines in order; sending a batch is much faster
// than one round-trip per line.
type Script struct {
	lines []string
}

// NewScript returns an empty command batch.
func NewScript() *Script {
	return &Script{}
}

// Add appends one command line.
func (s *Script) Add(line string) *Script {
	s.lines = append(s.lines, line)
	return s
}

// Addf appends one formatted command line.
func (s *Script) Addf(format string, args ...any) *Script {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
	return s
}

// Call appends a method invocation.
func (s *Script) Call(node, method string, args ...Arg) *Script {
	return s.Add(Call(node, method, args...))
}

// Set appends a property assignment.
func (s *Script) Set(node, prop string, value Arg) *Script {
	return s.Add(SetProp(node, prop, value))
}

// Len returns the number of accumulated lines.
func (s *Script) Len() int {
	return len(s.lines)
}

// String joins the batch into one newline-separated command text.
func (s *Script) String() string {
	return strings.Join(s.lines, "\n")
}
