// Package builder materializes structure values as engine nodes. It
// walks a structure depth first in declaration order, emits the build
// commands as one batch per node, and records the resulting node paths
// in the registry. Rebuilding a value it has already built is a lookup.
package builder

import (
	"errors"
	"fmt"
	"time"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// ErrEmptyStructure is returned when a structure with no content is
// asked to build. Empty values compose fine; they just cannot become
// engine nodes.
var ErrEmptyStructure = errors.New("structure has no content to build")

// Builder turns structure values into engine nodes.
type Builder struct {
	ch   wire.Sender
	reg  *registry.Registry
	opts Options
	log  logging.Logger
	met  *metrics.Registry
}

// New returns a builder sending over ch and recording into reg.
func New(ch wire.Sender, reg *registry.Registry, opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	opts.Solver = opts.Solver.withDefaults()
	return &Builder{
		ch:   ch,
		reg:  reg,
		opts: opts,
		log:  opts.Logger,
		met:  opts.Metrics,
	}
}

// Registry exposes the builder's node registry.
func (b *Builder) Registry() *registry.Registry { return b.reg }

// BuildProject creates a top-level project node, or returns the existing
// one when a project of that name was already built.
func (b *Builder) BuildProject(name string) (*registry.BuiltNode, error) {
	if name == "" {
		name = b.reg.DefaultName("", registry.KindProject)
	}
	if existing, ok := b.reg.LookupByName("", name); ok {
		if existing.Kind != registry.KindProject {
			return nil, fmt.Errorf("%w: %q is a %s", registry.ErrNameConflict, name, existing.Kind)
		}
		return existing, nil
	}

	start := time.Now()
	// Top-level slots are shared with whatever the engine already holds,
	// so the index must come from the engine, not local bookkeeping.
	reply, err := b.ch.Send("app.numsubnodes()")
	if err != nil {
		return nil, err
	}
	count, err := reply.Int()
	if err != nil {
		return nil, err
	}
	index := count + 1

	cmd := wire.Call("app", "addsubnode", wire.Name("fimmwave_prj"), wire.Name(name))
	if _, err := b.ch.Send(cmd); err != nil {
		return nil, err
	}

	node, err := b.reg.Register(nil, registry.BuiltNode{
		Name: name,
		Path: wire.Subscript("app.subnodes", index),
		Kind: registry.KindProject,
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("project built",
		logging.Component("builder"),
		logging.NodeName(name),
		logging.Node(node.Path))
	if b.met != nil {
		b.met.RecordBuild(string(registry.KindProject), time.Since(start))
	}
	return node, nil
}

// reserveName resolves the final node name and checks for conflicts
// before any command is emitted.
func (b *Builder) reserveName(parent string, name string, kind registry.Kind) (string, error) {
	if name == "" {
		return b.reg.DefaultName(parent, kind), nil
	}
	if _, taken := b.reg.LookupByName(parent, name); taken {
		if b.met != nil {
			b.met.RecordBuildConflict()
		}
		return "", fmt.Errorf("%w: %q under %q", registry.ErrNameConflict, name, parent)
	}
	return name, nil
}
