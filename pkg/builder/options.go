package builder

import (
	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
)

// Boundary selects the wall condition on one edge of a cross-section.
// The engine numbers them 1 through 5; the zero value falls back to metal.
type Boundary int

const (
	BoundaryMetal Boundary = iota + 1 // electric wall
	BoundaryMagneticWall
	BoundaryPeriodic
	BoundaryTransparent
	BoundaryImpedance
)

func (b Boundary) engineType() int {
	if b < BoundaryMetal || b > BoundaryImpedance {
		return int(BoundaryMetal)
	}
	return int(b)
}

// Boundaries holds the four wall conditions and the PML depths applied
// outside them. Zero values mean metal walls and no PML.
type Boundaries struct {
	Left, Right Boundary
	Top, Bottom Boundary
	XPML, YPML  float64
}

// SolverParams are the per-waveguide solver settings written at build
// time. Zero fields take engine-friendly defaults.
type SolverParams struct {
	Wavelength float64 // um; default 1.55
	MaxModes   int     // default 10
	NX, NY     int     // grid points; default 60 each
	Fast       bool    // trade accuracy for speed
	Autorun    bool    // solve immediately on list access
	BendRadius float64 // um; 0 means straight
	MinTEFrac  float64 // percent; default 0
	MaxTEFrac  float64 // percent; default 100
	RIXTol     float64 // default 0.01
	SolverID   int     // engine solver selector; default 71 (vectorial FDM real)
}

func (p SolverParams) withDefaults() SolverParams {
	if p.Wavelength == 0 {
		p.Wavelength = 1.55
	}
	if p.MaxModes == 0 {
		p.MaxModes = 10
	}
	if p.NX == 0 {
		p.NX = 60
	}
	if p.NY == 0 {
		p.NY = 60
	}
	if p.MaxTEFrac == 0 {
		p.MaxTEFrac = 100
	}
	if p.RIXTol == 0 {
		p.RIXTol = 0.01
	}
	if p.SolverID == 0 {
		p.SolverID = 71
	}
	return p
}

// Options configures a Builder.
type Options struct {
	// MaterialDB is the engine-side material database path written with
	// setmaterbase on every node that uses database materials.
	MaterialDB string
	Boundaries Boundaries
	Solver     SolverParams
	Logger     logging.Logger
	Metrics    *metrics.Registry
}
