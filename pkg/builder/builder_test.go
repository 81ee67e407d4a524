package builder_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/photonlink/fimmgo/pkg/builder"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/structure"
	"github.com/photonlink/fimmgo/pkg/wire/wiretest"
)

func mustLayer(t *testing.T, m structure.Material, thickness float64) structure.Layer {
	t.Helper()
	l, err := structure.LayerOf(m, thickness)
	if err != nil {
		t.Fatalf("LayerOf failed: %v", err)
	}
	return l
}

// ridgeWaveguide builds a three-column ridge cross-section: substrate and
// air on the sides, substrate/core/air in the middle.
func ridgeWaveguide(t *testing.T) *structure.Waveguide {
	t.Helper()
	sub := structure.RIX(3.17, 0)
	core := structure.RIX(3.4, 0)
	air := structure.RIX(1, 0)

	side := structure.NewSlice(
		mustLayer(t, sub, 1.5),
		mustLayer(t, air, 1.5),
	)
	center := structure.NewSlice(
		mustLayer(t, sub, 1.5),
		mustLayer(t, core, 0.5).Confined(),
		mustLayer(t, air, 1.0),
	)

	l, err := side.Segment(1.0)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	m, err := center.Segment(1.2)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	r, err := side.Segment(1.0)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	wg, err := structure.NewWaveguide(l, m, r)
	if err != nil {
		t.Fatalf("NewWaveguide failed: %v", err)
	}
	return wg
}

func stripWaveguide(t *testing.T, width float64) *structure.Waveguide {
	t.Helper()
	s := structure.NewSlice(mustLayer(t, structure.RIX(3.4, 0), 1.0))
	g, err := s.Segment(width)
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	wg, err := structure.NewWaveguide(g)
	if err != nil {
		t.Fatalf("NewWaveguide failed: %v", err)
	}
	return wg
}

func newTestBuilder(opts builder.Options) (*builder.Builder, *wiretest.Recorder) {
	rec := wiretest.NewRecorder()
	rec.Respond("app.numsubnodes()", wiretest.Value("0"))
	return builder.New(rec, registry.New(), opts), rec
}

func TestBuildProject(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})

	node, err := b.BuildProject("chip")
	if err != nil {
		t.Fatalf("BuildProject failed: %v", err)
	}
	if node.Path != "app.subnodes[1]" || node.Kind != registry.KindProject {
		t.Errorf("node = %+v", node)
	}
	sent := rec.Sent()
	if len(sent) != 2 || sent[0] != "app.numsubnodes()" || sent[1] != "app.addsubnode(fimmwave_prj,chip)" {
		t.Errorf("Sent = %v", sent)
	}

	// Same name resolves to the existing node without engine contact.
	again, err := b.BuildProject("chip")
	if err != nil {
		t.Fatalf("second BuildProject failed: %v", err)
	}
	if again.Path != node.Path {
		t.Errorf("second build path = %q", again.Path)
	}
	if len(rec.Sent()) != 2 {
		t.Errorf("idempotent rebuild emitted commands: %v", rec.Sent())
	}
}

func TestBuildProjectAfterExistingNodes(t *testing.T) {
	rec := wiretest.NewRecorder()
	// The engine already holds two top-level nodes; the new project
	// must land after them.
	rec.Respond("app.numsubnodes()", wiretest.Value("2"))
	b := builder.New(rec, registry.New(), builder.Options{})

	node, err := b.BuildProject("chip")
	if err != nil {
		t.Fatalf("BuildProject failed: %v", err)
	}
	if node.Path != "app.subnodes[3]" {
		t.Errorf("Path = %q, want app.subnodes[3]", node.Path)
	}
}

func TestBuildWaveguideScript(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, err := b.BuildProject("chip")
	if err != nil {
		t.Fatalf("BuildProject failed: %v", err)
	}

	node, err := b.BuildWaveguide(project, ridgeWaveguide(t), "ridge")
	if err != nil {
		t.Fatalf("BuildWaveguide failed: %v", err)
	}
	if node.Path != "app.subnodes[1].subnodes[1]" {
		t.Errorf("Path = %q", node.Path)
	}
	if node.Parent != project.Path {
		t.Errorf("Parent = %q", node.Parent)
	}

	sent := rec.Sent()
	if len(sent) != 3 {
		t.Fatalf("expected probe + project + waveguide batches, got %d", len(sent))
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ridge_waveguide", []byte(sent[2]))
}

func TestBuildWaveguideIdempotent(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")
	wg := ridgeWaveguide(t)

	first, err := b.BuildWaveguide(project, wg, "ridge")
	if err != nil {
		t.Fatalf("BuildWaveguide failed: %v", err)
	}
	commands := len(rec.Sent())

	again, err := b.BuildWaveguide(project, wg, "other")
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if again.Path != first.Path || again.Name != "ridge" {
		t.Errorf("rebuild = %+v, want original node", again)
	}
	if len(rec.Sent()) != commands {
		t.Error("idempotent rebuild reached the engine")
	}
}

func TestBuildWaveguideNameConflict(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	if _, err := b.BuildWaveguide(project, stripWaveguide(t, 1.0), "wg"); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	commands := len(rec.Sent())

	_, err := b.BuildWaveguide(project, stripWaveguide(t, 2.0), "wg")
	if !errors.Is(err, registry.ErrNameConflict) {
		t.Fatalf("error = %v, want ErrNameConflict", err)
	}
	// The conflict is detected before anything reaches the wire.
	if len(rec.Sent()) != commands {
		t.Error("conflicting build reached the engine")
	}
}

func TestBuildWaveguideEmpty(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	empty, err := structure.NewWaveguide()
	if err != nil {
		t.Fatalf("NewWaveguide failed: %v", err)
	}
	if _, err := b.BuildWaveguide(project, empty, "x"); !errors.Is(err, builder.ErrEmptyStructure) {
		t.Errorf("error = %v, want ErrEmptyStructure", err)
	}
	if len(rec.Sent()) != 2 {
		t.Error("empty build reached the engine")
	}
}

func TestBuildWaveguideEngineError(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")
	rec.RespondFunc(func(string) string {
		return wiretest.ErrorReply("ERROR: out of memory")
	})

	wg := stripWaveguide(t, 1.0)
	if _, err := b.BuildWaveguide(project, wg, "wg"); err == nil {
		t.Fatal("expected engine error")
	}

	// A failed build must not be recorded: the same value and name retry
	// cleanly once the engine recovers.
	rec.RespondFunc(nil)
	commands := len(rec.Sent())
	if _, err := b.BuildWaveguide(project, wg, "wg"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if len(rec.Sent()) != commands+1 {
		t.Error("retry did not rebuild")
	}
}

func TestBuildWaveguideDefaultName(t *testing.T) {
	b, _ := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	a, err := b.BuildWaveguide(project, stripWaveguide(t, 1.0), "")
	if err != nil {
		t.Fatalf("BuildWaveguide failed: %v", err)
	}
	bNode, err := b.BuildWaveguide(project, stripWaveguide(t, 2.0), "")
	if err != nil {
		t.Fatalf("BuildWaveguide failed: %v", err)
	}
	if a.Name != "waveguide_1" || bNode.Name != "waveguide_2" {
		t.Errorf("default names = %q, %q", a.Name, bNode.Name)
	}
}

func TestBuildWaveguideMaterialDB(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{MaterialDB: "refbase.mat"})
	project, _ := b.BuildProject("chip")

	s := structure.NewSlice(mustLayer(t, structure.Named("AlGaAs", 0.3), 1.0))
	g, _ := s.Segment(2.0)
	wg, _ := structure.NewWaveguide(g)

	if _, err := b.BuildWaveguide(project, wg, "wg"); err != nil {
		t.Fatalf("BuildWaveguide failed: %v", err)
	}
	script := rec.Sent()[2]
	for _, want := range []string{
		".setmaterbase(refbase.mat)",
		".layers[1].setMAT(AlGaAs)",
		".layers[1].mx = 0.3",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
	if strings.Contains(script, ".nr11") {
		t.Error("database material emitted raw indices")
	}
}

func TestBuildDeviceScript(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	wg := stripWaveguide(t, 2.0)
	in, _ := wg.Section(10.0)
	cavity, _ := wg.Section(250.0)
	out, _ := wg.Section(10.0)
	dev, err := structure.NewDevice(in, cavity, out)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	node, err := b.BuildDevice(project, dev, "cavity")
	if err != nil {
		t.Fatalf("BuildDevice failed: %v", err)
	}
	if node.Path != "app.subnodes[1].subnodes[2]" || node.Kind != registry.KindDevice {
		t.Errorf("node = %+v", node)
	}

	sent := rec.Sent()
	// probe + project + shared waveguide + device: the waveguide builds once.
	if len(sent) != 4 {
		t.Fatalf("expected 4 batches, got %d: %v", len(sent), sent)
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "fp_cavity", []byte(sent[3]))
}

func TestBuildDeviceJointOverride(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	wg := stripWaveguide(t, 2.0)
	a, _ := wg.Section(1.0)
	bSec, _ := wg.Section(2.0)
	dev, _ := structure.NewDevice(a.WithJoint(structure.JointNormalFresnel), bSec)

	if _, err := b.BuildDevice(project, dev, "dev"); err != nil {
		t.Fatalf("BuildDevice failed: %v", err)
	}
	script := rec.Sent()[len(rec.Sent())-1]
	if !strings.Contains(script, ".eltlist[2].method=1") {
		t.Errorf("joint override missing:\n%s", script)
	}
}

func TestBuildDeviceFlattensNesting(t *testing.T) {
	b, rec := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	wg := stripWaveguide(t, 2.0)
	s1, _ := wg.Section(5.0)
	s2, _ := wg.Section(7.0)
	inner, _ := structure.NewDevice(s1, s2)

	tail, _ := wg.Section(3.0)
	outer, err := structure.NewDevice(inner.Section(), tail)
	if err != nil {
		t.Fatalf("NewDevice failed: %v", err)
	}

	if _, err := b.BuildDevice(project, outer, "dev"); err != nil {
		t.Fatalf("BuildDevice failed: %v", err)
	}
	script := rec.Sent()[len(rec.Sent())-1]
	if got := strings.Count(script, "newwgsect("); got != 3 {
		t.Errorf("newwgsect count = %d, want 3:\n%s", got, script)
	}
	if got := strings.Count(script, "newsjoint("); got != 2 {
		t.Errorf("newsjoint count = %d, want 2:\n%s", got, script)
	}
	for _, want := range []string{
		".eltlist[1].length = 5",
		".eltlist[3].length = 7",
		".eltlist[5].length = 3",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestBuildDeviceEmpty(t *testing.T) {
	b, _ := newTestBuilder(builder.Options{})
	project, _ := b.BuildProject("chip")

	empty, _ := structure.NewDevice()
	if _, err := b.BuildDevice(project, empty, "dev"); !errors.Is(err, builder.ErrEmptyStructure) {
		t.Errorf("error = %v, want ErrEmptyStructure", err)
	}
}
