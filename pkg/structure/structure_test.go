package structure

import (
	"errors"
	"math"
	"testing"
)

func mustLayer(t *testing.T, m Material, thickness float64) Layer {
	t.Helper()
	l, err := LayerOf(m, thickness)
	if err != nil {
		t.Fatalf("LayerOf failed: %v", err)
	}
	return l
}

func TestMaterial(t *testing.T) {
	rix := RIX(3.4, 0.001)
	if rix.IsZero() || rix.IsDatabase() {
		t.Error("raw-index material misclassified")
	}
	n, k := rix.Index()
	if n != 3.4 || k != 0.001 {
		t.Errorf("Index = (%v,%v)", n, k)
	}

	db := Named("AlGaAs", 0.3)
	if !db.IsDatabase() || db.Name() != "AlGaAs" {
		t.Errorf("database material: %v", db)
	}
	mx, _, count := db.Moles()
	if mx != 0.3 || count != 1 {
		t.Errorf("Moles = (%v, count=%d)", mx, count)
	}

	quat := Named("InGaAsP", 0.2, 0.45)
	_, my, count := quat.Moles()
	if my != 0.45 || count != 2 {
		t.Errorf("quaternary Moles = (%v, count=%d)", my, count)
	}

	var zero Material
	if !zero.IsZero() {
		t.Error("zero Material not detected")
	}
}

func TestLayerValidation(t *testing.T) {
	if _, err := LayerOf(Material{}, 1.0); !errors.Is(err, ErrNoMaterial) {
		t.Errorf("zero material error = %v", err)
	}
	if _, err := LayerOf(RIX(3.4, 0), -0.5); !errors.Is(err, ErrNegativeExtent) {
		t.Errorf("negative thickness error = %v", err)
	}
	if _, err := RIX(1.0, 0).Layer(0); err != nil {
		t.Errorf("zero thickness rejected: %v", err)
	}
}

func TestLayerConfined(t *testing.T) {
	l := mustLayer(t, RIX(3.4, 0), 0.1)
	if l.IsConfined() {
		t.Error("layer confined by default")
	}
	c := l.Confined()
	if !c.IsConfined() {
		t.Error("Confined() copy not marked")
	}
	if l.IsConfined() {
		t.Error("Confined() mutated the original")
	}
}

func TestSliceThickness(t *testing.T) {
	sub := mustLayer(t, RIX(3.17, 0), 2.0)
	core := mustLayer(t, RIX(3.4, 0), 0.25)
	clad := mustLayer(t, RIX(1.0, 0), 1.5)

	s := NewSlice(sub, core, clad)
	if got := s.Thickness(); math.Abs(got-3.75) > 1e-12 {
		t.Errorf("Thickness = %v, want 3.75", got)
	}
	if s.NumLayers() != 3 {
		t.Errorf("NumLayers = %d", s.NumLayers())
	}
}

func TestSliceAppendPure(t *testing.T) {
	a := NewSlice(mustLayer(t, RIX(3.17, 0), 1.0))
	b := NewSlice(mustLayer(t, RIX(3.4, 0), 0.5))

	c := a.Append(b)
	if c.NumLayers() != 2 {
		t.Fatalf("NumLayers = %d", c.NumLayers())
	}
	if a.NumLayers() != 1 || b.NumLayers() != 1 {
		t.Error("Append mutated an operand")
	}

	// Order preserved: receiver's layers below the argument's.
	layers := c.Layers()
	if n, _ := layers[0].Material().Index(); n != 3.17 {
		t.Errorf("bottom layer n = %v", n)
	}
	if n, _ := layers[1].Material().Index(); n != 3.4 {
		t.Errorf("top layer n = %v", n)
	}
}

func TestSliceEmptyIdentity(t *testing.T) {
	s := NewSlice(mustLayer(t, RIX(3.4, 0), 0.25))
	empty := NewSlice()

	left := empty.Append(s)
	right := s.Append(empty)
	if left.NumLayers() != 1 || right.NumLayers() != 1 {
		t.Error("empty slice is not an Append identity")
	}
	if left.Thickness() != s.Thickness() || right.Thickness() != s.Thickness() {
		t.Error("identity append changed thickness")
	}
}

func TestConcatSlices(t *testing.T) {
	a := NewSlice(mustLayer(t, RIX(1, 0), 1.0))
	b := NewSlice(mustLayer(t, RIX(2, 0), 2.0))
	c := NewSlice(mustLayer(t, RIX(3, 0), 3.0))

	all := ConcatSlices(a, b, c)
	if all.NumLayers() != 3 || all.Thickness() != 6.0 {
		t.Errorf("ConcatSlices: layers=%d thickness=%v", all.NumLayers(), all.Thickness())
	}
	if ConcatSlices().NumLayers() != 0 {
		t.Error("ConcatSlices() is not empty")
	}
}

func TestSliceEtch(t *testing.T) {
	s := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0))
	etched, err := s.WithEtch(0.3)
	if err != nil {
		t.Fatalf("WithEtch failed: %v", err)
	}
	if etched.Etch() != 0.3 {
		t.Errorf("Etch = %v", etched.Etch())
	}
	if s.Etch() != 0 {
		t.Error("WithEtch mutated the original")
	}
	if _, err := s.WithEtch(-1); !errors.Is(err, ErrNegativeExtent) {
		t.Errorf("negative etch error = %v", err)
	}
}

func TestSegment(t *testing.T) {
	s := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0))
	g, err := s.Segment(2.5)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if g.Width() != 2.5 || g.Slice() != s {
		t.Errorf("Segment = %+v", g)
	}
	if _, err := s.Segment(-1); !errors.Is(err, ErrNegativeExtent) {
		t.Errorf("negative width error = %v", err)
	}
}

func TestWaveguideWidthAndHeight(t *testing.T) {
	stack := NewSlice(
		mustLayer(t, RIX(3.17, 0), 2.0),
		mustLayer(t, RIX(3.4, 0), 0.5),
	)
	left, _ := stack.Segment(1.0)
	mid, _ := stack.Segment(2.0)
	right, _ := stack.Segment(1.0)

	w, err := NewWaveguide(left, mid, right)
	if err != nil {
		t.Fatalf("NewWaveguide failed: %v", err)
	}
	if got := w.Width(); got != 4.0 {
		t.Errorf("Width = %v, want 4", got)
	}
	if got := w.Height(); got != 2.5 {
		t.Errorf("Height = %v, want 2.5", got)
	}
}

// Columns of different stack heights share a cross-section; the engine
// pads the shorter side. The classic example is a thin cladding slice
// flanking a taller ridge stack.
func TestWaveguideUnequalColumnHeights(t *testing.T) {
	clad := NewSlice(mustLayer(t, RIX(1.45, 0), 15.75))
	core := NewSlice(
		mustLayer(t, RIX(1.45, 0), 10.0),
		mustLayer(t, RIX(2.01, 0), 2.5),
		mustLayer(t, RIX(1.45, 0), 5.0),
	)
	if got := core.Thickness(); got != 17.5 {
		t.Fatalf("core thickness = %v, want 17.5", got)
	}

	left, _ := clad.Segment(3.0)
	mid, _ := core.Segment(1.0)
	right, _ := clad.Segment(4.0)

	w, err := NewWaveguide(left, mid, right)
	if err != nil {
		t.Fatalf("NewWaveguide failed: %v", err)
	}
	if got := w.Width(); got != 8.0 {
		t.Errorf("Width = %v, want 8", got)
	}
	if got := w.NumSegments(); got != 3 {
		t.Errorf("NumSegments = %v, want 3", got)
	}
	if got := w.Height(); got != 17.5 {
		t.Errorf("Height = %v, want tallest column 17.5", got)
	}
	segs := w.Segments()
	if segs[0].Slice() != clad || segs[1].Slice() != core || segs[2].Slice() != clad {
		t.Error("segment order not preserved")
	}

	// Append tolerates the same difference.
	wa, _ := NewWaveguide(left, mid)
	wb, _ := NewWaveguide(right)
	out, err := wa.Append(wb)
	if err != nil || out.Width() != 8.0 {
		t.Errorf("Append: %v width=%v", err, out.Width())
	}
}

func TestWaveguideEmptyIdentity(t *testing.T) {
	g, _ := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0)).Segment(2.0)
	w, _ := NewWaveguide(g)
	empty, _ := NewWaveguide()

	out, err := empty.Append(w)
	if err != nil || out.Width() != 2.0 {
		t.Errorf("identity append: %v width=%v", err, out.Width())
	}
	out, err = w.Append(empty)
	if err != nil || out.Width() != 2.0 {
		t.Errorf("identity append: %v width=%v", err, out.Width())
	}
}

func TestDevice(t *testing.T) {
	g, _ := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0)).Segment(2.0)
	wg, _ := NewWaveguide(g)

	in, err := wg.Section(10.0)
	if err != nil {
		t.Fatalf("Section failed: %v", err)
	}
	cavity, _ := wg.Section(250.0)
	out, _ := wg.Section(10.0)

	dev, err := NewDevice(in, cavity, out)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	if dev.NumSections() != 3 {
		t.Errorf("NumSections = %d", dev.NumSections())
	}
	if got := dev.Length(); got != 270.0 {
		t.Errorf("Length = %v, want 270", got)
	}
}

func TestDeviceNesting(t *testing.T) {
	g, _ := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0)).Segment(2.0)
	wg, _ := NewWaveguide(g)
	s, _ := wg.Section(100.0)
	inner, _ := NewDevice(s)

	tail, _ := wg.Section(50.0)
	outer, err := NewDevice(inner.Section(), tail)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}
	if got := outer.Length(); got != 150.0 {
		t.Errorf("nested Length = %v, want 150", got)
	}
}

func TestDeviceJointTypes(t *testing.T) {
	g, _ := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0)).Segment(2.0)
	wg, _ := NewWaveguide(g)
	a, _ := wg.Section(1.0)
	b, _ := wg.Section(2.0)

	dev, _ := NewDevice(a.WithJoint(JointNormalFresnel), b)
	if dev.JointType() != JointComplete {
		t.Errorf("default joint = %v", dev.JointType())
	}

	fresnel := dev.WithJointType(JointObliqueFresnel)
	if fresnel.JointType() != JointObliqueFresnel {
		t.Errorf("WithJointType = %v", fresnel.JointType())
	}
	if dev.JointType() != JointComplete {
		t.Error("WithJointType mutated the original")
	}

	j, set := fresnel.Sections()[0].Joint()
	if !set || j != JointNormalFresnel {
		t.Errorf("section joint override = %v set=%v", j, set)
	}
	if _, set := fresnel.Sections()[1].Joint(); set {
		t.Error("unset section joint reported as set")
	}
}

func TestDeviceEmptySection(t *testing.T) {
	if _, err := NewDevice(Section{}); !errors.Is(err, ErrEmptyComponent) {
		t.Errorf("empty section error = %v", err)
	}
}

func TestConcatDevices(t *testing.T) {
	g, _ := NewSlice(mustLayer(t, RIX(3.4, 0), 1.0)).Segment(2.0)
	wg, _ := NewWaveguide(g)
	a, _ := wg.Section(1.0)
	b, _ := wg.Section(2.0)
	da, _ := NewDevice(a)
	db, _ := NewDevice(b)

	all, err := ConcatDevices(da, db)
	if err != nil {
		t.Fatalf("ConcatDevices failed: %v", err)
	}
	if all.NumSections() != 2 || all.Length() != 3.0 {
		t.Errorf("ConcatDevices: sections=%d length=%v", all.NumSections(), all.Length())
	}

	empty, err := ConcatDevices()
	if err != nil || empty.NumSections() != 0 {
		t.Errorf("ConcatDevices() = %v, %v", empty, err)
	}
}
