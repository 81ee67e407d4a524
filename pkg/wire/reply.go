package wire

import (
	"regexp"
	"strconv"
	"strings"
)

// retvalMarker separates command echo/noise from the returned value. A
// reply without it is an error message from the engine.
const retvalMarker = "RETVAL:"

var (
	vecIndexPat    = regexp.MustCompile(`^[^\[\]]+\[(\d+)\]$`)
	matrixIndexPat = regexp.MustCompile(`^[^\[\]]+\[(\d+)\]\[(\d+)\]$`)
	complexPat     = regexp.MustCompile(`^\(([^,]+),([^)]+)\)$`)
)

// Reply is one raw engine reply, bound to the command that produced it so
// decode failures carry context.
type Reply struct {
	command string
	payload string
}

func newReply(command string, payload []byte) *Reply {
	// The engine pads replies with NUL and EOL characters
	text := strings.TrimRight(string(payload), "\x00\n\r ")
	return &Reply{command: command, payload: text}
}

// NewReply builds a reply from raw payload text. Exposed for fakes and
// fixture tests; production replies come from Channel.Send.
func NewReply(command, payload string) *Reply {
	return newReply(command, []byte(payload))
}

// Raw returns the reply payload with framing junk stripped.
func (r *Reply) Raw() string {
	return r.payload
}

// Command returns the command this reply answers.
func (r *Reply) Command() string {
	return r.command
}

// IsEngineError reports whether the engine answered with an error message
// instead of a value. Assignments and some calls legally return nothing,
// so an empty reply is not an error.
func (r *Reply) IsEngineError() bool {
	return strings.TrimSpace(r.payload) != "" && !strings.Contains(r.payload, retvalMarker)
}

// Err returns the engine-reported error, or nil for a value reply.
func (r *Reply) Err() error {
	if !r.IsEngineError() {
		return nil
	}
	return &EngineError{Command: r.command, Message: strings.TrimSpace(r.payload)}
}

// value extracts the text after the RETVAL marker.
func (r *Reply) value() (string, error) {
	idx := strings.Index(r.payload, retvalMarker)
	if idx < 0 {
		if err := r.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return strings.TrimSpace(r.payload[idx+len(retvalMarker):]), nil
}

// Str decodes the reply as a single string value.
func (r *Reply) Str() (string, error) {
	return r.value()
}

// Float decodes the reply as one floating-point value.
func (r *Reply) Float() (float64, error) {
	val, err := r.value()
	if err != nil {
		return 0, err
	}
	if line, _, found := strings.Cut(val, "\n"); found {
		val = strings.TrimSpace(line)
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &ProtocolError{Command: r.command, Detail: "expected float, got " + strconv.Quote(val)}
	}
	return f, nil
}

// Int decodes the reply as one integer value. The engine reports counts
// as floats, so integral floats are accepted.
func (r *Reply) Int() (int, error) {
	f, err := r.Float()
	if err != nil {
		return 0, err
	}
	n := int(f)
	if float64(n) != f {
		return 0, &ProtocolError{Command: r.command, Detail: "expected integer, got non-integral value"}
	}
	return n, nil
}

// Complex decodes the reply as a complex value in the engine's "(re,im)"
// form, falling back to a plain float with zero imaginary part.
func (r *Reply) Complex() (complex128, error) {
	val, err := r.value()
	if err != nil {
		return 0, err
	}
	if line, _, found := strings.Cut(val, "\n"); found {
		val = strings.TrimSpace(line)
	}
	if m := complexPat.FindStringSubmatch(val); m != nil {
		re, err1 := strconv.ParseFloat(strings.TrimSpace(m[1]), 64)
		im, err2 := strconv.ParseFloat(strings.TrimSpace(m[2]), 64)
		if err1 != nil || err2 != nil {
			return 0, &ProtocolError{Command: r.command, Detail: "malformed complex value " + strconv.Quote(val)}
		}
		return complex(re, im), nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &ProtocolError{Command: r.command, Detail: "expected complex or float, got " + strconv.Quote(val)}
	}
	return complex(f, 0), nil
}

// FloatVec decodes a 1-D array reply. The engine emits alternating
// "ident[i]" markers and values in index order.
func (r *Reply) FloatVec() ([]float64, error) {
	val, err := r.value()
	if err != nil {
		return nil, err
	}
	tokens := strings.Fields(val)
	var out []float64
	expectValue := false
	for _, tok := range tokens {
		if vecIndexPat.MatchString(tok) {
			expectValue = true
			continue
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			if expectValue {
				return nil, &ProtocolError{Command: r.command, Detail: "non-numeric array element " + strconv.Quote(tok)}
			}
			continue
		}
		out = append(out, f)
		expectValue = false
	}
	if out == nil {
		return nil, &ProtocolError{Command: r.command, Detail: "reply contains no array values"}
	}
	return out, nil
}

// FloatMatrix decodes a 2-D array reply. Markers carry two indices; a
// change in the first index starts a new row.
func (r *Reply) FloatMatrix() ([][]float64, error) {
	val, err := r.value()
	if err != nil {
		return nil, err
	}
	tokens := strings.Fields(val)
	var out [][]float64
	row := -1
	pendingRow := -1
	for _, tok := range tokens {
		if m := matrixIndexPat.FindStringSubmatch(tok); m != nil {
			i, err := strconv.Atoi(m[1])
			if err != nil {
				return nil, &ProtocolError{Command: r.command, Detail: "malformed matrix index " + strconv.Quote(tok)}
			}
			pendingRow = i
			continue
		}
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if pendingRow < 0 {
			return nil, &ProtocolError{Command: r.command, Detail: "matrix value without index marker"}
		}
		if pendingRow != row {
			out = append(out, nil)
			row = pendingRow
		}
		out[len(out)-1] = append(out[len(out)-1], f)
	}
	if out == nil {
		return nil, &ProtocolError{Command: r.command, Detail: "reply contains no matrix values"}
	}
	return out, nil
}
