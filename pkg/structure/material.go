// Package structure holds the composition algebra for layered photonic
// structures: materials stack into layers, layers into slices, slices
// into waveguide cross-sections, waveguides into devices. Values are
// immutable; composition returns new values and never touches the engine.
package structure

import "fmt"

// Material describes what a layer is made of: either a raw refractive
// index (n with optional loss coefficient k), or a named entry in the
// engine's material database with up to two mole fractions. The zero
// Material is invalid.
type Material struct {
	name   string
	n, k   float64
	mx, my float64
	moles  int // how many mole fractions a database material carries
	set    bool
}

// RIX returns a raw refractive-index material.
func RIX(n, k float64) Material {
	return Material{n: n, k: k, set: true}
}

// Named returns a material resolved from the engine's material database,
// with up to two mole fractions (e.g. AlGaAs x, InGaAsP x/y).
func Named(name string, mole ...float64) Material {
	m := Material{name: name, set: true}
	if len(mole) > 0 {
		m.mx = mole[0]
		m.moles = 1
	}
	if len(mole) > 1 {
		m.my = mole[1]
		m.moles = 2
	}
	return m
}

// IsZero reports whether the material was never set.
func (m Material) IsZero() bool { return !m.set }

// IsDatabase reports whether the material comes from a material database.
func (m Material) IsDatabase() bool { return m.name != "" }

// Name returns the database material name, empty for raw-index materials.
func (m Material) Name() string { return m.name }

// Index returns the refractive index pair for a raw-index material.
func (m Material) Index() (n, k float64) { return m.n, m.k }

// Moles returns the mole fractions and how many are set.
func (m Material) Moles() (mx, my float64, count int) {
	return m.mx, m.my, m.moles
}

// Layer wraps the material in a layer of the given thickness.
func (m Material) Layer(thickness float64) (Layer, error) {
	return LayerOf(m, thickness)
}

func (m Material) String() string {
	switch {
	case !m.set:
		return "Material(unset)"
	case m.name != "" && m.moles == 2:
		return fmt.Sprintf("Material(%s,x=%g,y=%g)", m.name, m.mx, m.my)
	case m.name != "" && m.moles == 1:
		return fmt.Sprintf("Material(%s,x=%g)", m.name, m.mx)
	case m.name != "":
		return fmt.Sprintf("Material(%s)", m.name)
	case m.k != 0:
		return fmt.Sprintf("Material(n=%g,k=%g)", m.n, m.k)
	default:
		return fmt.Sprintf("Material(n=%g)", m.n)
	}
}
