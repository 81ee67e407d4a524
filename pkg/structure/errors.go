package structure

import "errors"

var (
	// ErrNegativeExtent is returned when a thickness, width or length is negative
	ErrNegativeExtent = errors.New("extent must be non-negative")
	// ErrNoMaterial is returned when a layer is created from the zero Material
	ErrNoMaterial = errors.New("layer has no material")
	// ErrDimensionMismatch is returned when composed parts have incompatible extents
	ErrDimensionMismatch = errors.New("dimension mismatch between composed parts")
	// ErrEmptyComponent is returned when a section wraps nothing
	ErrEmptyComponent = errors.New("section has no component")
)
