package builder

import (
	"fmt"
	"time"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/structure"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// flatElem is one device element after nesting has been flattened: a
// waveguide extended over a length, plus the joint type that follows it.
type flatElem struct {
	wg     *structure.Waveguide
	length float64
	joint  structure.JointType
}

// BuildDevice materializes a device under the given project. Constituent
// waveguides build first (recursively, with default names when unnamed);
// nested devices flatten into the parent's element list in propagation
// order. The same device value builds once.
func (b *Builder) BuildDevice(project *registry.BuiltNode, dev *structure.Device, name string) (*registry.BuiltNode, error) {
	if existing, ok := b.reg.Lookup(dev); ok {
		if b.met != nil {
			b.met.RecordBuildIdempotent()
		}
		return existing, nil
	}

	elems, err := flatten(dev, dev.JointType())
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("device: %w", ErrEmptyStructure)
	}

	name, err = b.reserveName(project.Path, name, registry.KindDevice)
	if err != nil {
		return nil, err
	}

	// Waveguide nodes must exist before the device references them.
	for _, el := range elems {
		if _, err := b.BuildWaveguide(project, el.wg, ""); err != nil {
			return nil, fmt.Errorf("building constituent waveguide: %w", err)
		}
	}

	start := time.Now()
	index := b.reg.NextIndex(project.Path)
	path := wire.Subscript(project.Path+".subnodes", index)

	script := wire.NewScript().
		Call(project.Path, "addsubnode", wire.Name("FPdeviceNode"), wire.Name(name))
	if b.opts.MaterialDB != "" {
		script.Call(path, "setmaterbase", wire.Name(b.opts.MaterialDB))
	}

	elnum := 0
	for i, el := range elems {
		wgNode, _ := b.reg.Lookup(el.wg)
		elnum++
		script.Call(path+".cdev", "newwgsect",
			wire.Int(elnum), wire.Name("../"+wgNode.Name), wire.Int(1))
		script.Set(wire.Subscript(path+".cdev.eltlist", elnum), "length", wire.Num(el.length))

		if i != len(elems)-1 {
			elnum++
			script.Call(path+".cdev", "newsjoint", wire.Int(elnum))
			script.Addf("%s.method=%d", wire.Subscript(path+".cdev.eltlist", elnum), int(el.joint))
		}
	}
	script.Set(path, "lambda", wire.Num(b.opts.Solver.Wavelength))

	if _, err := b.ch.Send(script.String()); err != nil {
		return nil, err
	}

	node, err := b.reg.Register(dev, registry.BuiltNode{
		Name:   name,
		Path:   path,
		Parent: project.Path,
		Kind:   registry.KindDevice,
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("device built",
		logging.Component("builder"),
		logging.NodeName(name),
		logging.Node(path),
		logging.Int("elements", len(elems)))
	if b.met != nil {
		b.met.RecordBuild(string(registry.KindDevice), time.Since(start))
	}
	return node, nil
}

// flatten expands nested devices depth first into a linear element list.
// A section's joint override wins over the enclosing device's default;
// inside a nested device its own default applies.
func flatten(dev *structure.Device, defaultJoint structure.JointType) ([]flatElem, error) {
	var out []flatElem
	for i, sec := range dev.Sections() {
		joint := defaultJoint
		if j, set := sec.Joint(); set {
			joint = j
		}
		switch c := sec.Component().(type) {
		case *structure.Waveguide:
			out = append(out, flatElem{wg: c, length: sec.Length(), joint: joint})
		case *structure.Device:
			nested, err := flatten(c, c.JointType())
			if err != nil {
				return nil, err
			}
			if len(nested) > 0 {
				// The joint following the nested device is the
				// enclosing section's.
				nested[len(nested)-1].joint = joint
			}
			out = append(out, nested...)
		default:
			return nil, fmt.Errorf("section %d: unsupported component %T", i, c)
		}
	}
	return out, nil
}
