// Package session ties the channel, registry, builder and solver into
// one connected engine session. There are no package globals; multiple
// sessions against different engines can coexist.
package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/photonlink/fimmgo/pkg/builder"
	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
	"github.com/photonlink/fimmgo/pkg/modes"
	"github.com/photonlink/fimmgo/pkg/project"
	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/structure"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// ErrNotConnected is returned for operations on a session that has not
// connected yet or was closed.
var ErrNotConnected = errors.New("session is not connected")

// Options carries a session's ambient dependencies.
type Options struct {
	Logger  logging.Logger
	Metrics *metrics.Registry

	// Build configures the session's builder beyond the config file's
	// reach (boundaries, solver grid). The material database path and
	// wavelength from Config always win.
	Build builder.Options

	// Dial overrides TCP dialing. Tests hand a net.Pipe end here.
	Dial func(ctx context.Context, addr string) (net.Conn, error)
}

// Session is one live engine connection with its node bookkeeping.
// Channel-reaching operations are serialized by the session mutex.
type Session struct {
	id   string
	cfg  Config
	opts Options
	log  logging.Logger

	mu      sync.Mutex
	ch      *wire.Channel
	reg     *registry.Registry
	builder *builder.Builder
	solver  *modes.Solver
	project *registry.BuiltNode
}

// New validates the config and prepares an unconnected session.
func New(cfg Config, opts Options) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	id := uuid.NewString()
	return &Session{
		id:   id,
		cfg:  cfg,
		opts: opts,
		log:  opts.Logger.With(logging.Session(id)),
		reg:  registry.New(),
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Connect dials the engine, probes it, and applies the session-wide
// settings (working directory, default wavelength).
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil && s.ch.IsValid() {
		return nil
	}
	return s.connectLocked(ctx)
}

func (s *Session) connectLocked(ctx context.Context) error {
	wireOpts := wire.Options{
		DialTimeout:  s.cfg.DialTimeout,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		Logger:       s.log,
		Metrics:      s.opts.Metrics,
	}

	var ch *wire.Channel
	if s.opts.Dial != nil {
		conn, err := s.opts.Dial(ctx, s.cfg.Addr())
		if err != nil {
			return &wire.TransportError{Op: "dial", Err: err}
		}
		ch = wire.NewChannel(conn, wireOpts)
	} else {
		var err error
		ch, err = wire.Connect(ctx, s.cfg.Addr(), wireOpts)
		if err != nil {
			return err
		}
	}

	// Probe: any live engine answers a subnode count.
	reply, err := ch.Send("app.numsubnodes()")
	if err != nil {
		ch.Close()
		return fmt.Errorf("engine probe: %w", err)
	}
	if _, err := reply.Int(); err != nil {
		ch.Close()
		return fmt.Errorf("engine probe: %w", err)
	}

	setup := wire.NewScript()
	if s.cfg.WorkingDir != "" {
		setup.Call("app", "setwdir", wire.Str(s.cfg.WorkingDir))
	}
	if s.cfg.Wavelength > 0 {
		setup.Set("app", "defaultlambda", wire.Expr(s.cfg.Wavelength))
	}
	if setup.Len() > 0 {
		if _, err := ch.Send(setup.String()); err != nil {
			ch.Close()
			return fmt.Errorf("session setup: %w", err)
		}
	}

	buildOpts := s.opts.Build
	buildOpts.MaterialDB = s.cfg.MaterialDB
	buildOpts.Solver.Wavelength = s.cfg.Wavelength
	buildOpts.Logger = s.log
	buildOpts.Metrics = s.opts.Metrics

	s.ch = ch
	s.builder = builder.New(ch, s.reg, buildOpts)
	s.solver = modes.New(ch, s.reg, modes.Config{Logger: s.log, Metrics: s.opts.Metrics})
	s.project = nil

	s.log.Info("session connected",
		logging.Component("session"),
		logging.String("addr", s.cfg.Addr()))
	return nil
}

// Reconnect tears the channel down and dials again. The registry clears:
// a fresh engine process knows nothing about previously built nodes.
func (s *Session) Reconnect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch != nil {
		s.ch.Close()
		s.ch = nil
	}
	s.reg.Clear()
	s.project = nil
	return s.connectLocked(ctx)
}

// Close shuts the channel down. The session can be reconnected.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil
	}
	err := s.ch.Close()
	s.ch = nil
	s.log.Info("session closed", logging.Component("session"))
	return err
}

// Exec sends a raw engine command on the session's channel.
func (s *Session) Exec(command string) (*wire.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil, ErrNotConnected
	}
	return s.ch.Send(command)
}

// ImportProject opens an existing project file on the engine and
// registers it with its children.
func (s *Session) ImportProject(filePath, name string) (*registry.BuiltNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil, ErrNotConnected
	}
	return project.Import(s.ch, s.reg, filePath, name)
}

// OpenVariables binds a variables node inside an imported project.
func (s *Session) OpenVariables(prj *registry.BuiltNode, fimmpath string) (*project.Variables, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ch == nil {
		return nil, ErrNotConnected
	}
	return project.OpenVariables(s.ch, prj, fimmpath)
}

// Project returns the session's project node, creating it on first use
// with the configured project name.
func (s *Session) Project() (*registry.BuiltNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked()
}

func (s *Session) projectLocked() (*registry.BuiltNode, error) {
	if s.builder == nil {
		return nil, ErrNotConnected
	}
	if s.project != nil {
		return s.project, nil
	}
	node, err := s.builder.BuildProject(s.cfg.ProjectName)
	if err != nil {
		return nil, err
	}
	s.project = node
	return node, nil
}

// BuildWaveguide materializes wg under the session project.
func (s *Session) BuildWaveguide(wg *structure.Waveguide, name string) (*registry.BuiltNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.projectLocked()
	if err != nil {
		return nil, err
	}
	return s.builder.BuildWaveguide(project, wg, name)
}

// BuildDevice materializes dev under the session project.
func (s *Session) BuildDevice(dev *structure.Device, name string) (*registry.BuiltNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, err := s.projectLocked()
	if err != nil {
		return nil, err
	}
	return s.builder.BuildDevice(project, dev, name)
}

// ComputeModes solves for the modes of a built structure.
func (s *Session) ComputeModes(target any, opts modes.SolveOptions) ([]modes.Mode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solver == nil {
		return nil, ErrNotConnected
	}
	return s.solver.ComputeModes(target, opts)
}

// GetField samples a field component of a solved mode.
func (s *Session) GetField(m modes.Mode, comp modes.FieldComponent, grid modes.FieldGrid) (*modes.FieldSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.solver == nil {
		return nil, ErrNotConnected
	}
	return s.solver.GetField(m, comp, grid)
}

// Registry exposes the session's node registry.
func (s *Session) Registry() *registry.Registry { return s.reg }

// Builder exposes the session's builder; nil before Connect.
func (s *Session) Builder() *builder.Builder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builder
}

// Solver exposes the session's mode solver; nil before Connect.
func (s *Session) Solver() *modes.Solver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solver
}
