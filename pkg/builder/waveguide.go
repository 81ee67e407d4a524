package builder

import (
	"fmt"
	"time"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/structure"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// BuildWaveguide materializes a waveguide cross-section under the given
// project. The same waveguide value builds once; later calls return the
// recorded node. An empty name gets a deterministic default.
func (b *Builder) BuildWaveguide(project *registry.BuiltNode, wg *structure.Waveguide, name string) (*registry.BuiltNode, error) {
	if existing, ok := b.reg.Lookup(wg); ok {
		if b.met != nil {
			b.met.RecordBuildIdempotent()
		}
		return existing, nil
	}
	if wg.NumSegments() == 0 {
		return nil, fmt.Errorf("waveguide: %w", ErrEmptyStructure)
	}
	for i, seg := range wg.Segments() {
		if seg.Slice() == nil || seg.Slice().NumLayers() == 0 {
			return nil, fmt.Errorf("waveguide segment %d: %w", i, ErrEmptyStructure)
		}
	}

	name, err := b.reserveName(project.Path, name, registry.KindWaveguide)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	index := b.reg.NextIndex(project.Path)
	path := wire.Subscript(project.Path+".subnodes", index)

	script := wire.NewScript().
		Call(project.Path, "addsubnode", wire.Name("rwguideNode"), wire.Name(name))
	b.emitCrossSection(script, path, wg)
	b.emitBoundaries(script, path)
	b.emitSolver(script, path+".evlist")

	if _, err := b.ch.Send(script.String()); err != nil {
		return nil, err
	}

	node, err := b.reg.Register(wg, registry.BuiltNode{
		Name:   name,
		Path:   path,
		Parent: project.Path,
		Kind:   registry.KindWaveguide,
	})
	if err != nil {
		return nil, err
	}
	b.log.Info("waveguide built",
		logging.Component("builder"),
		logging.NodeName(name),
		logging.Node(path),
		logging.Int("segments", wg.NumSegments()))
	if b.met != nil {
		b.met.RecordBuild(string(registry.KindWaveguide), time.Since(start))
	}
	return node, nil
}

// emitCrossSection writes the slice and layer geometry. The engine
// indexes slices left to right and layers bottom to top, both 1-based.
func (b *Builder) emitCrossSection(script *wire.Script, path string, wg *structure.Waveguide) {
	if b.opts.MaterialDB != "" && usesDatabase(wg) {
		script.Call(path, "setmaterbase", wire.Name(b.opts.MaterialDB))
	}
	for si, seg := range wg.Segments() {
		sliceRef := wire.Subscript(path+".slices", si+1)
		script.Call(path, "insertslice", wire.Int(si+1))
		script.Set(sliceRef, "width", wire.Num(seg.Width()))
		script.Set(sliceRef, "etch", wire.Num(seg.Slice().Etch()))

		layers := seg.Slice().Layers()
		// insertslice leaves one default layer in place
		for range layers[1:] {
			script.Call(sliceRef, "insertlayer", wire.Int(1))
		}
		for li, layer := range layers {
			layerRef := wire.Subscript(sliceRef+".layers", li+1)
			script.Set(layerRef, "size", wire.Num(layer.Thickness()))

			mat := layer.Material()
			if mat.IsDatabase() {
				script.Call(layerRef, "setMAT", wire.Name(mat.Name()))
				mx, my, count := mat.Moles()
				if count >= 1 {
					script.Set(layerRef, "mx", wire.Num(mx))
				}
				if count >= 2 {
					script.Set(layerRef, "my", wire.Num(my))
				}
			} else {
				n, _ := mat.Index()
				script.Set(layerRef, "nr11", wire.Num(n))
				script.Set(layerRef, "nr22", wire.Num(n))
				script.Set(layerRef, "nr33", wire.Num(n))
			}
			if layer.IsConfined() {
				script.Set(layerRef, "cfseg", wire.Int(1))
			}
		}
	}
}

// emitBoundaries writes the four wall conditions and PML depths.
func (b *Builder) emitBoundaries(script *wire.Script, path string) {
	bc := b.opts.Boundaries
	script.Addf("%s.lhsbc.type = %d", path, bc.Left.engineType())
	script.Addf("%s.rhsbc.type = %d", path, bc.Right.engineType())
	script.Addf("%s.botbc.type = %d", path, bc.Bottom.engineType())
	script.Addf("%s.topbc.type = %d", path, bc.Top.engineType())
	script.Set(path+".lhsbc", "pmlpar", wire.Expr(bc.XPML))
	script.Set(path+".rhsbc", "pmlpar", wire.Expr(bc.XPML))
	script.Set(path+".topbc", "pmlpar", wire.Expr(bc.YPML))
	script.Set(path+".botbc", "pmlpar", wire.Expr(bc.YPML))
}

// emitSolver writes the svp/mlp solver block under the node's mode list.
func (b *Builder) emitSolver(script *wire.Script, evlist string) {
	p := b.opts.Solver

	hcurv := 0.0
	if p.BendRadius != 0 {
		hcurv = 1.0 / p.BendRadius
	}
	script.Addf("%s.svp.hcurv={%s}", evlist, wire.Num(hcurv).String())

	autorun := 0
	if p.Autorun {
		autorun = 1
	}
	speed := 0
	if p.Fast {
		speed = 1
	}
	script.Addf("%s.mlp.autorun=%d", evlist, autorun)
	script.Addf("%s.mlp.speed=%d", evlist, speed)
	script.Addf("%s.svp.hsymmetry=0", evlist)
	script.Addf("%s.svp.vsymmetry=0", evlist)
	script.Addf("%s.mlp.maxnmodes={%d}", evlist, p.MaxModes)
	script.Addf("%s.mlp.nx={%d}", evlist, p.NX)
	script.Addf("%s.mlp.ny={%d}", evlist, p.NY)
	script.Addf("%s.mlp.mintefrac={%s}", evlist, wire.Num(p.MinTEFrac).String())
	script.Addf("%s.mlp.maxtefrac={%s}", evlist, wire.Num(p.MaxTEFrac).String())
	script.Addf("%s.mlp.evend={-1e+050}", evlist)
	script.Addf("%s.mlp.evstart={1e+050}", evlist)
	script.Addf("%s.svp.solvid=%d", evlist, p.SolverID)
	script.Addf("%s.svp.buff=V1 %d %d 0 100 %s", evlist, p.NX, p.NY, wire.Num(p.RIXTol).String())
	script.Set(evlist+".svp", "lambda", wire.Num(p.Wavelength))
}

func usesDatabase(wg *structure.Waveguide) bool {
	for _, seg := range wg.Segments() {
		if seg.Slice() == nil {
			continue
		}
		for _, l := range seg.Slice().Layers() {
			if l.Material().IsDatabase() {
				return true
			}
		}
	}
	return false
}
