package structure

import "fmt"

// Segment is one slice spanning a horizontal width: a column of a
// waveguide cross-section.
type Segment struct {
	slice *Slice
	width float64
}

// Slice returns the segment's layer stack.
func (g Segment) Slice() *Slice { return g.slice }

// Width returns the segment's horizontal extent.
func (g Segment) Width() float64 { return g.width }

// Waveguide is a 2-D cross-section: segments side by side, left to
// right. Segments may stack to different heights; the engine pads the
// shorter columns. The empty waveguide is the identity for Append and
// ConcatWaveguides.
type Waveguide struct {
	segments []Segment
}

// NewWaveguide places segments left to right.
func NewWaveguide(segments ...Segment) (*Waveguide, error) {
	w := &Waveguide{segments: make([]Segment, len(segments))}
	copy(w.segments, segments)
	return w, nil
}

// Append returns a new waveguide with other's segments placed to the
// right of the receiver's.
func (w *Waveguide) Append(other *Waveguide) (*Waveguide, error) {
	out := &Waveguide{segments: make([]Segment, 0, len(w.segments)+len(other.segments))}
	out.segments = append(out.segments, w.segments...)
	out.segments = append(out.segments, other.segments...)
	return out, nil
}

// ConcatWaveguides joins all waveguides left to right. With no arguments
// it returns the empty waveguide.
func ConcatWaveguides(wgs ...*Waveguide) (*Waveguide, error) {
	out := &Waveguide{}
	for _, w := range wgs {
		var err error
		out, err = out.Append(w)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Segments returns the columns, left to right.
func (w *Waveguide) Segments() []Segment {
	out := make([]Segment, len(w.segments))
	copy(out, w.segments)
	return out
}

// NumSegments returns the column count.
func (w *Waveguide) NumSegments() int { return len(w.segments) }

// Width returns the summed horizontal extent of all segments.
func (w *Waveguide) Width() float64 {
	var t float64
	for _, g := range w.segments {
		t += g.width
	}
	return t
}

// Height returns the tallest segment's stack thickness, zero for an
// empty waveguide.
func (w *Waveguide) Height() float64 {
	var max float64
	for _, g := range w.segments {
		if g.slice == nil {
			continue
		}
		if t := g.slice.Thickness(); t > max {
			max = t
		}
	}
	return max
}

// Section extends the cross-section along the propagation axis, making a
// device element of the given length.
func (w *Waveguide) Section(length float64) (Section, error) {
	if length < 0 {
		return Section{}, fmt.Errorf("%w: section length %g", ErrNegativeExtent, length)
	}
	return Section{comp: w, length: length}, nil
}
