// Package modes runs the engine's mode solver against built nodes and
// decodes the results. Every operation resolves its target through the
// registry first; an unbuilt structure fails locally without touching
// the channel.
package modes

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// ErrNotBuilt is returned when the target structure has no engine node.
var ErrNotBuilt = errors.New("structure has not been built")

// Config wires a Solver's dependencies.
type Config struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// SolveOptions adjust a single solve run. Zero fields keep whatever the
// node was built with.
type SolveOptions struct {
	Wavelength float64 // um
	MaxModes   int
	MinTEFrac  float64 // percent
	MaxTEFrac  float64 // percent; 0 means leave unchanged
}

// Mode is one solved eigenmode. Index is 0-based in caller terms; the
// engine's 1-based list offset stays internal.
type Mode struct {
	Index       int
	Neff        complex128
	Beta        complex128
	TEFrac      float64 // percent
	Confinement float64 // fraction of field in confined layers
	FillFactor  float64
	Loss        float64 // 1/um, from the imaginary effective index

	path string // owning node's evlist path
}

// Solver drives the engine's eigenmode solver.
type Solver struct {
	ch  wire.Sender
	reg *registry.Registry
	log logging.Logger
	met *metrics.Registry
}

// New returns a solver sending over ch and resolving nodes through reg.
func New(ch wire.Sender, reg *registry.Registry, cfg Config) *Solver {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	return &Solver{ch: ch, reg: reg, log: cfg.Logger, met: cfg.Metrics}
}

// nodePath resolves target to a built node path. Target may be a
// structure value previously built, or a *registry.BuiltNode directly.
func (s *Solver) nodePath(target any) (string, error) {
	if bn, ok := target.(*registry.BuiltNode); ok {
		return bn.Path, nil
	}
	if bn, ok := s.reg.Lookup(target); ok {
		return bn.Path, nil
	}
	return "", ErrNotBuilt
}

// SetWavelength updates the solve wavelength on a built node.
func (s *Solver) SetWavelength(target any, wavelength float64) error {
	path, err := s.nodePath(target)
	if err != nil {
		return err
	}
	if wavelength <= 0 {
		return fmt.Errorf("wavelength %g must be positive", wavelength)
	}
	_, err = s.ch.Send(wire.SetProp(path+".evlist.svp", "lambda", wire.Num(wavelength)))
	return err
}

// ComputeModes runs the solver and reads back every mode it found, in
// the engine's reported order. When the engine holds fewer modes than
// the configured maximum, the list is simply shorter.
func (s *Solver) ComputeModes(target any, opts SolveOptions) ([]Mode, error) {
	path, err := s.nodePath(target)
	if err != nil {
		return nil, err
	}
	evlist := path + ".evlist"
	start := time.Now()

	script := wire.NewScript()
	if opts.Wavelength > 0 {
		script.Set(evlist+".svp", "lambda", wire.Num(opts.Wavelength))
	}
	if opts.MaxModes > 0 {
		script.Addf("%s.mlp.maxnmodes={%d}", evlist, opts.MaxModes)
	}
	if opts.MinTEFrac > 0 {
		script.Addf("%s.mlp.mintefrac={%s}", evlist, wire.Num(opts.MinTEFrac).String())
	}
	if opts.MaxTEFrac > 0 {
		script.Addf("%s.mlp.maxtefrac={%s}", evlist, wire.Num(opts.MaxTEFrac).String())
	}
	script.Add(evlist + ".update")

	if _, err := s.ch.Send(script.String()); err != nil {
		s.recordSolve("engine_error", start, 0)
		return nil, fmt.Errorf("solve failed: %w", err)
	}

	max := opts.MaxModes
	if max == 0 {
		reply, err := s.ch.Send(evlist + ".mlp.maxnmodes")
		if err != nil {
			s.recordSolve("engine_error", start, 0)
			return nil, err
		}
		if max, err = reply.Int(); err != nil {
			s.recordSolve("protocol_error", start, 0)
			return nil, s.countDecodeError(err)
		}
	}

	wavelength := opts.Wavelength
	if wavelength == 0 {
		reply, err := s.ch.Send(evlist + ".svp.lambda")
		if err != nil {
			s.recordSolve("engine_error", start, 0)
			return nil, err
		}
		if wavelength, err = reply.Float(); err != nil {
			s.recordSolve("protocol_error", start, 0)
			return nil, s.countDecodeError(err)
		}
	}

	ms := make([]Mode, 0, max)
	for i := 0; i < max; i++ {
		m, err := s.readMode(evlist, i, wavelength)
		if err != nil {
			// The engine reports an error for indices past the last
			// mode it found; everything before is a complete list.
			if wire.IsEngineError(err) && i > 0 {
				break
			}
			s.recordSolve("error", start, len(ms))
			return nil, err
		}
		ms = append(ms, m)
	}

	s.log.Info("modes computed",
		logging.Component("modes"),
		logging.Node(path),
		logging.Int("modes", len(ms)),
		logging.Duration("elapsed", time.Since(start)))
	s.recordSolve("ok", start, len(ms))
	return ms, nil
}

// readMode reads one mode's scalar data. index is 0-based.
func (s *Solver) readMode(evlist string, index int, wavelength float64) (Mode, error) {
	entry := wire.Subscript(evlist+".list", index+1)

	neff, err := s.sendComplex(entry + ".neff")
	if err != nil {
		return Mode{}, err
	}
	beta, err := s.sendComplex(entry + ".beta")
	if err != nil {
		return Mode{}, err
	}
	tefrac, err := s.sendFloat(entry + ".modedata.tefrac")
	if err != nil {
		return Mode{}, err
	}
	gammaE, err := s.sendFloat(entry + ".modedata.gammaE")
	if err != nil {
		return Mode{}, err
	}
	fillFac, err := s.sendFloat(entry + ".modedata.fillFac")
	if err != nil {
		return Mode{}, err
	}

	// The engine's own modedata.alpha is unreliable for some solvers;
	// derive loss from the imaginary effective index instead.
	loss := 0.0
	if wavelength > 0 {
		loss = 4 * math.Pi * math.Abs(imag(neff)) / wavelength
	}

	return Mode{
		Index:       index,
		Neff:        neff,
		Beta:        beta,
		TEFrac:      tefrac,
		Confinement: gammaE,
		FillFactor:  fillFac,
		Loss:        loss,
		path:        evlist,
	}, nil
}

// EffectiveIndex reads a single mode's complex effective index without a
// full mode-data sweep. index is 0-based.
func (s *Solver) EffectiveIndex(target any, index int) (complex128, error) {
	path, err := s.nodePath(target)
	if err != nil {
		return 0, err
	}
	return s.sendComplex(wire.Subscript(path+".evlist.list", index+1) + ".neff")
}

func (s *Solver) sendComplex(cmd string) (complex128, error) {
	reply, err := s.ch.Send(cmd)
	if err != nil {
		return 0, err
	}
	v, err := reply.Complex()
	return v, s.countDecodeError(err)
}

func (s *Solver) sendFloat(cmd string) (float64, error) {
	reply, err := s.ch.Send(cmd)
	if err != nil {
		return 0, err
	}
	v, err := reply.Float()
	return v, s.countDecodeError(err)
}

// countDecodeError feeds the wire error-class counters for decode
// failures surfacing here rather than in the channel.
func (s *Solver) countDecodeError(err error) error {
	if err != nil && s.met != nil && wire.IsProtocolError(err) {
		s.met.RecordProtocolError()
	}
	return err
}

func (s *Solver) recordSolve(status string, start time.Time, found int) {
	if s.met != nil {
		s.met.RecordSolve(status, time.Since(start), found)
	}
}

// SortByNeff returns a copy ordered by descending real effective index,
// fundamental mode first. The engine's own order is preserved in the
// input.
func SortByNeff(ms []Mode) []Mode {
	out := make([]Mode, len(ms))
	copy(out, ms)
	sort.SliceStable(out, func(i, j int) bool {
		return real(out[i].Neff) > real(out[j].Neff)
	})
	return out
}
