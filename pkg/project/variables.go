package project

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// ErrNotVariablesNode is returned when the referenced node is not a
// variables node.
var ErrNotVariablesNode = errors.New("node is not a variables node")

// refCounter issues unique engine-side reference names. References are
// global on the engine, so the counter is process-wide.
var refCounter atomic.Int64

func nextRefName() string {
	return fmt.Sprintf("fgref_%d", refCounter.Add(1))
}

// Variables wraps a project's variables node: named values and formulas
// the engine substitutes into expressions.
type Variables struct {
	ch   wire.Sender
	ref  string
	path string
}

// OpenVariables binds the variables node at the slash-separated path
// inside a project. The node's type is checked before use.
func OpenVariables(ch wire.Sender, prj *registry.BuiltNode, fimmpath string) (*Variables, error) {
	ref, err := FindNode(ch, prj, fimmpath)
	if err != nil {
		return nil, err
	}
	reply, err := ch.Send(ref + ".objtype")
	if err != nil {
		return nil, err
	}
	objtype, err := reply.Str()
	if err != nil {
		return nil, err
	}
	if objtype != "pdVariablesNode" {
		return nil, fmt.Errorf("%w: %q has type %q", ErrNotVariablesNode, fimmpath, objtype)
	}
	return &Variables{ch: ch, ref: ref, path: fimmpath}, nil
}

// Path returns the node's path inside its project.
func (v *Variables) Path() string { return v.path }

// Add creates a variable, optionally setting its value.
func (v *Variables) Add(name, value string) error {
	if _, err := v.ch.Send(fmt.Sprintf("%s.addvariable(%q)", v.ref, name)); err != nil {
		return err
	}
	if value == "" {
		return nil
	}
	return v.Set(name, value)
}

// Set assigns a value or formula to an existing variable.
func (v *Variables) Set(name, value string) error {
	_, err := v.ch.Send(fmt.Sprintf("%s.setvariable(%q,%q)", v.ref, name, value))
	return err
}

// Get returns a variable's value as the engine evaluates it. Formulas
// come back as their final value; unevaluable statements as text.
func (v *Variables) Get(name string) (string, error) {
	reply, err := v.ch.Send(fmt.Sprintf("%s.getvariable(%q)", v.ref, name))
	if err != nil {
		return "", err
	}
	return reply.Str()
}

// GetFloat returns a variable evaluated to a number.
func (v *Variables) GetFloat(name string) (float64, error) {
	s, err := v.Get(name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("variable %q is not numeric: %q", name, s)
	}
	return f, nil
}

// All reads every variable in the node by parsing its block dump.
func (v *Variables) All() (map[string]string, error) {
	reply, err := v.ch.Send(v.ref + ".writeblock()")
	if err != nil {
		return nil, err
	}
	return parseBlock(reply.Raw()), nil
}

// parseBlock extracts "name = value" pairs from a writeblock dump,
// skipping the begin/end bracket lines.
func parseBlock(raw string) map[string]string {
	if idx := strings.Index(raw, "RETVAL:"); idx >= 0 {
		raw = raw[idx+len("RETVAL:"):]
	}
	out := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "begin ") || line == "end" {
			continue
		}
		key, value, found := strings.Cut(line, " = ")
		if !found {
			continue
		}
		out[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return out
}
