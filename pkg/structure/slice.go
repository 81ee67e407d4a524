package structure

import "fmt"

// Layer is one material of a given vertical extent. Layers are leaf
// values; building a structure never mutates them.
type Layer struct {
	mat       Material
	thickness float64
	cfseg     bool
}

// LayerOf builds a layer of the material with the given thickness.
func LayerOf(m Material, thickness float64) (Layer, error) {
	if m.IsZero() {
		return Layer{}, ErrNoMaterial
	}
	if thickness < 0 {
		return Layer{}, fmt.Errorf("%w: layer thickness %g", ErrNegativeExtent, thickness)
	}
	return Layer{mat: m, thickness: thickness}, nil
}

// Material returns the layer's material.
func (l Layer) Material() Material { return l.mat }

// Thickness returns the layer's vertical extent.
func (l Layer) Thickness() float64 { return l.thickness }

// Confined returns a copy marked for confinement-factor accounting.
// The solver reports the confinement factor over all marked layers.
func (l Layer) Confined() Layer {
	l.cfseg = true
	return l
}

// IsConfined reports whether the layer counts toward the confinement factor.
func (l Layer) IsConfined() bool { return l.cfseg }

// Slice is a vertical stack of layers, bottom to top, with an optional
// etch depth eaten into the top. The empty slice is the identity for
// Append and ConcatSlices.
type Slice struct {
	layers []Layer
	etch   float64
}

// NewSlice stacks layers bottom to top.
func NewSlice(layers ...Layer) *Slice {
	s := &Slice{layers: make([]Layer, len(layers))}
	copy(s.layers, layers)
	return s
}

// Append returns a new slice with other's layers stacked on top. Neither
// receiver nor argument is modified. The result keeps the receiver's etch.
func (s *Slice) Append(other *Slice) *Slice {
	out := &Slice{
		layers: make([]Layer, 0, len(s.layers)+len(other.layers)),
		etch:   s.etch,
	}
	out.layers = append(out.layers, s.layers...)
	out.layers = append(out.layers, other.layers...)
	return out
}

// ConcatSlices stacks all slices in order. With no arguments it returns
// the empty slice.
func ConcatSlices(slices ...*Slice) *Slice {
	out := NewSlice()
	for _, s := range slices {
		out = out.Append(s)
	}
	return out
}

// WithEtch returns a copy with the given etch depth.
func (s *Slice) WithEtch(depth float64) (*Slice, error) {
	if depth < 0 {
		return nil, fmt.Errorf("%w: etch depth %g", ErrNegativeExtent, depth)
	}
	out := s.Append(NewSlice())
	out.etch = depth
	return out, nil
}

// Etch returns the etch depth.
func (s *Slice) Etch() float64 { return s.etch }

// Layers returns the layer stack, bottom to top.
func (s *Slice) Layers() []Layer {
	out := make([]Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// NumLayers returns the layer count.
func (s *Slice) NumLayers() int { return len(s.layers) }

// Thickness returns the summed vertical extent of all layers.
func (s *Slice) Thickness() float64 {
	var t float64
	for _, l := range s.layers {
		t += l.thickness
	}
	return t
}

// Segment places the slice over a horizontal width, making one column of
// a waveguide cross-section.
func (s *Slice) Segment(width float64) (Segment, error) {
	if width < 0 {
		return Segment{}, fmt.Errorf("%w: segment width %g", ErrNegativeExtent, width)
	}
	return Segment{slice: s, width: width}, nil
}
