package structure

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the YAML description of a set of structures: named
// materials, waveguides assembled from them, and devices assembled from
// the waveguides. It is the file format the solve command consumes.
type Document struct {
	Materials  map[string]MaterialSpec  `yaml:"materials"`
	Waveguides map[string]WaveguideSpec `yaml:"waveguides"`
	Devices    map[string]DeviceSpec    `yaml:"devices"`
	Solve      SolveSpec                `yaml:"solve"`
}

// MaterialSpec describes one material, either by refractive index or by
// database name with optional mole fractions.
type MaterialSpec struct {
	N        float64   `yaml:"n"`
	K        float64   `yaml:"k"`
	Database string    `yaml:"database"`
	Moles    []float64 `yaml:"moles"`
}

// WaveguideSpec lists a waveguide's segments left to right.
type WaveguideSpec struct {
	Segments []SegmentSpec `yaml:"segments"`
}

// SegmentSpec is one vertical slice of a waveguide cross-section.
type SegmentSpec struct {
	Width  float64     `yaml:"width"`
	Etch   float64     `yaml:"etch"`
	Layers []LayerSpec `yaml:"layers"`
}

// LayerSpec is one layer in a slice, bottom to top.
type LayerSpec struct {
	Material  string  `yaml:"material"`
	Thickness float64 `yaml:"thickness"`
	Confined  bool    `yaml:"confined"`
}

// DeviceSpec lists a device's elements along the propagation axis. Each
// section names either a waveguide or another device from the document.
type DeviceSpec struct {
	Joint    string        `yaml:"joint"`
	Sections []SectionSpec `yaml:"sections"`
}

// SectionSpec is one device element. Waveguide sections carry a length;
// device sections take the nested device's own length.
type SectionSpec struct {
	Waveguide string  `yaml:"waveguide"`
	Device    string  `yaml:"device"`
	Length    float64 `yaml:"length"`
	Joint     string  `yaml:"joint"`
}

// SolveSpec selects what to solve and with which parameters.
type SolveSpec struct {
	Target     string  `yaml:"target"`
	Wavelength float64 `yaml:"wavelength"`
	MaxModes   int     `yaml:"max_modes"`
	MinTEFrac  float64 `yaml:"min_te_frac"`
	MaxTEFrac  float64 `yaml:"max_te_frac"`
}

// Library holds the structures built from a document, addressable by
// their document names.
type Library struct {
	Materials  map[string]Material
	Waveguides map[string]*Waveguide
	Devices    map[string]*Device
}

// LoadDocument reads and builds a YAML structure file.
func LoadDocument(path string) (*Document, *Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading structures %s: %w", path, err)
	}
	return DecodeDocument(data)
}

// DecodeDocument parses YAML text and builds every structure it names.
func DecodeDocument(data []byte) (*Document, *Library, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parsing structures: %w", err)
	}
	lib, err := doc.Build()
	if err != nil {
		return nil, nil, err
	}
	return &doc, lib, nil
}

// ParseJointType maps a document joint name to its engine type. The
// empty string means the default complete joint.
func ParseJointType(s string) (JointType, error) {
	switch s {
	case "", "complete":
		return JointComplete, nil
	case "normal":
		return JointNormalFresnel, nil
	case "oblique":
		return JointObliqueFresnel, nil
	case "special":
		return JointSpecialComplete, nil
	default:
		return 0, fmt.Errorf("unknown joint type %q", s)
	}
}

// Build assembles every material, waveguide and device in the document.
// Devices may reference each other; cycles are rejected.
func (d *Document) Build() (*Library, error) {
	lib := &Library{
		Materials:  make(map[string]Material),
		Waveguides: make(map[string]*Waveguide),
		Devices:    make(map[string]*Device),
	}
	for name, spec := range d.Materials {
		if spec.Database != "" {
			lib.Materials[name] = Named(spec.Database, spec.Moles...)
			continue
		}
		lib.Materials[name] = RIX(spec.N, spec.K)
	}
	for name, spec := range d.Waveguides {
		wg, err := d.buildWaveguide(lib, spec)
		if err != nil {
			return nil, fmt.Errorf("waveguide %q: %w", name, err)
		}
		lib.Waveguides[name] = wg
	}
	building := make(map[string]bool)
	for name := range d.Devices {
		if _, err := d.buildDevice(lib, building, name); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (d *Document) buildWaveguide(lib *Library, spec WaveguideSpec) (*Waveguide, error) {
	if len(spec.Segments) == 0 {
		return nil, fmt.Errorf("no segments")
	}
	segments := make([]Segment, 0, len(spec.Segments))
	for i, seg := range spec.Segments {
		layers := make([]Layer, 0, len(seg.Layers))
		for _, ls := range seg.Layers {
			mat, ok := lib.Materials[ls.Material]
			if !ok {
				return nil, fmt.Errorf("segment %d: unknown material %q", i+1, ls.Material)
			}
			layer, err := LayerOf(mat, ls.Thickness)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i+1, err)
			}
			if ls.Confined {
				layer = layer.Confined()
			}
			layers = append(layers, layer)
		}
		slice := NewSlice(layers...)
		if seg.Etch != 0 {
			var err error
			slice, err = slice.WithEtch(seg.Etch)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i+1, err)
			}
		}
		segment, err := slice.Segment(seg.Width)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		segments = append(segments, segment)
	}
	return NewWaveguide(segments...)
}

func (d *Document) buildDevice(lib *Library, building map[string]bool, name string) (*Device, error) {
	if dev, ok := lib.Devices[name]; ok {
		return dev, nil
	}
	spec, ok := d.Devices[name]
	if !ok {
		return nil, fmt.Errorf("unknown device %q", name)
	}
	if building[name] {
		return nil, fmt.Errorf("device %q references itself", name)
	}
	building[name] = true
	defer delete(building, name)

	sections := make([]Section, 0, len(spec.Sections))
	for i, ss := range spec.Sections {
		var section Section
		switch {
		case ss.Waveguide != "" && ss.Device != "":
			return nil, fmt.Errorf("device %q section %d: both waveguide and device named", name, i+1)
		case ss.Waveguide != "":
			wg, ok := lib.Waveguides[ss.Waveguide]
			if !ok {
				return nil, fmt.Errorf("device %q section %d: unknown waveguide %q", name, i+1, ss.Waveguide)
			}
			var err error
			section, err = wg.Section(ss.Length)
			if err != nil {
				return nil, fmt.Errorf("device %q section %d: %w", name, i+1, err)
			}
		case ss.Device != "":
			sub, err := d.buildDevice(lib, building, ss.Device)
			if err != nil {
				return nil, err
			}
			section = sub.Section()
		default:
			return nil, fmt.Errorf("device %q section %d: %w", name, i+1, ErrEmptyComponent)
		}
		if ss.Joint != "" {
			joint, err := ParseJointType(ss.Joint)
			if err != nil {
				return nil, fmt.Errorf("device %q section %d: %w", name, i+1, err)
			}
			section = section.WithJoint(joint)
		}
		sections = append(sections, section)
	}

	dev, err := NewDevice(sections...)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", name, err)
	}
	joint, err := ParseJointType(spec.Joint)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", name, err)
	}
	if joint != JointComplete {
		dev = dev.WithJointType(joint)
	}
	lib.Devices[name] = dev
	return dev, nil
}
