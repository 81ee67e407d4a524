package modes

import (
	"errors"
	"fmt"

	"github.com/photonlink/fimmgo/pkg/wire"
)

// ErrInvalidComponent is returned for a field component outside the
// engine's set.
var ErrInvalidComponent = errors.New("invalid field component")

// FieldComponent names one field quantity the engine can sample.
type FieldComponent string

const (
	Ex FieldComponent = "Ex"
	Ey FieldComponent = "Ey"
	Ez FieldComponent = "Ez"
	Hx FieldComponent = "Hx"
	Hy FieldComponent = "Hy"
	Hz FieldComponent = "Hz"
	I  FieldComponent = "I" // intensity
)

// componentCode maps a component to the engine's numeric selector.
var componentCode = map[FieldComponent]int{
	Ex: 1, Ey: 2, Ez: 3,
	Hx: 4, Hy: 5, Hz: 6,
	I: 7,
}

// FieldGrid describes the physical window a sampled field covers and
// whether PML regions are included in the sample.
type FieldGrid struct {
	XMin, XMax float64 // um
	YMin, YMax float64 // um
	IncludePML bool
}

// FieldSample is one sampled field component on a regular grid. Values
// are row-major: Values[iy][ix].
type FieldSample struct {
	Component FieldComponent
	X, Y      []float64 // grid coordinates per column / row
	Values    [][]float64
}

// GetField samples one field component of a solved mode. The mode's
// profile is refreshed first; an engine message there means the mode was
// never computed.
func (s *Solver) GetField(m Mode, comp FieldComponent, grid FieldGrid) (*FieldSample, error) {
	code, ok := componentCode[comp]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidComponent, comp)
	}
	if m.path == "" {
		return nil, ErrNotBuilt
	}
	entry := wire.Subscript(m.path+".list", m.Index+1)

	if _, err := s.ch.Send(entry + ".profile.update"); err != nil {
		return nil, fmt.Errorf("profile update: %w", err)
	}

	pml := 0
	if grid.IncludePML {
		pml = 1
	}
	// Binding the array to a variable first keeps the engine from
	// rebuilding it for the read.
	script := wire.NewScript().
		Addf("Set f = %s.profile.data.getfieldarray(%d,%d)", entry, code, pml).
		Add("f.fieldarray")
	reply, err := s.ch.Send(script.String())
	if err != nil {
		return nil, err
	}
	values, err := reply.FloatMatrix()
	if err != nil {
		return nil, s.countDecodeError(err)
	}

	if s.met != nil {
		s.met.RecordFieldRead(string(comp))
	}
	nx := 0
	if len(values) > 0 {
		nx = len(values[0])
	}
	return &FieldSample{
		Component: comp,
		X:         gridAxis(grid.XMin, grid.XMax, nx),
		Y:         gridAxis(grid.YMin, grid.YMax, len(values)),
		Values:    values,
	}, nil
}

// gridAxis spreads n sample coordinates evenly over [min,max]. With no
// physical window given, coordinates fall back to sample indices.
func gridAxis(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if max <= min {
		for i := range out {
			out[i] = float64(i)
		}
		return out
	}
	if n == 1 {
		out[0] = min
		return out
	}
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}
