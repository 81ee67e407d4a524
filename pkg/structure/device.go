package structure

import "fmt"

// JointType selects how the engine matches modes across the joint
// between two device elements.
type JointType int

const (
	JointComplete JointType = iota
	JointNormalFresnel
	JointObliqueFresnel
	JointSpecialComplete
)

func (j JointType) String() string {
	switch j {
	case JointComplete:
		return "complete"
	case JointNormalFresnel:
		return "normal fresnel"
	case JointObliqueFresnel:
		return "oblique fresnel"
	case JointSpecialComplete:
		return "special complete"
	default:
		return fmt.Sprintf("JointType(%d)", int(j))
	}
}

// Component is anything a device section can carry: a waveguide
// cross-section or a nested device.
type Component interface {
	isComponent()
}

func (*Waveguide) isComponent() {}
func (*Device) isComponent()    {}

// Section is one element along a device's propagation axis: a component
// extended over a length, with an optional joint-type override for the
// joint following it.
type Section struct {
	comp     Component
	length   float64
	joint    JointType
	jointSet bool
}

// Component returns the section's payload.
func (s Section) Component() Component { return s.comp }

// Length returns the section's extent along the propagation axis.
func (s Section) Length() float64 { return s.length }

// WithJoint returns a copy whose trailing joint uses the given type
// instead of the device default.
func (s Section) WithJoint(j JointType) Section {
	s.joint = j
	s.jointSet = true
	return s
}

// Joint returns the section's joint override, if set.
func (s Section) Joint() (JointType, bool) { return s.joint, s.jointSet }

// Device is a 3-D assembly: sections in propagation order with simple
// joints between consecutive elements. The empty device is the identity
// for Append and ConcatDevices.
type Device struct {
	sections []Section
	joint    JointType
}

// NewDevice assembles sections in order.
func NewDevice(sections ...Section) (*Device, error) {
	d := &Device{sections: make([]Section, len(sections))}
	copy(d.sections, sections)
	for i, s := range d.sections {
		if s.comp == nil {
			return nil, fmt.Errorf("section %d: %w", i, ErrEmptyComponent)
		}
	}
	return d, nil
}

// Append returns a new device with other's sections following the
// receiver's. The result keeps the receiver's default joint type.
func (d *Device) Append(other *Device) (*Device, error) {
	out := &Device{
		sections: make([]Section, 0, len(d.sections)+len(other.sections)),
		joint:    d.joint,
	}
	out.sections = append(out.sections, d.sections...)
	out.sections = append(out.sections, other.sections...)
	return out, nil
}

// ConcatDevices chains all devices in order. With no arguments it
// returns the empty device.
func ConcatDevices(devs ...*Device) (*Device, error) {
	out := &Device{}
	for _, d := range devs {
		var err error
		out, err = out.Append(d)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// WithJointType returns a copy whose joints default to the given type.
func (d *Device) WithJointType(j JointType) *Device {
	out, _ := d.Append(&Device{})
	out.joint = j
	return out
}

// JointType returns the device-level default joint type.
func (d *Device) JointType() JointType { return d.joint }

// Sections returns the elements in propagation order.
func (d *Device) Sections() []Section {
	out := make([]Section, len(d.sections))
	copy(out, d.sections)
	return out
}

// NumSections returns the element count.
func (d *Device) NumSections() int { return len(d.sections) }

// Length returns the summed extent along the propagation axis, nested
// devices counted by their own length.
func (d *Device) Length() float64 {
	var t float64
	for _, s := range d.sections {
		t += s.length
	}
	return t
}

// Section wraps the device as an element of an enclosing device. Its
// length is the device's own length.
func (d *Device) Section() Section {
	return Section{comp: d, length: d.Length()}
}
