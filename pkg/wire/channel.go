package wire

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/photonlink/fimmgo/pkg/logging"
	"github.com/photonlink/fimmgo/pkg/metrics"
)

// Sender is the send surface the builder and solver depend on. Tests
// substitute a scripted fake.
type Sender interface {
	Send(command string) (*Reply, error)
}

// Options configures a channel.
type Options struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration // per-reply deadline; a hung engine trips this
	WriteTimeout time.Duration
	Logger       logging.Logger
	Metrics      *metrics.Registry
}

// DefaultOptions returns the defaults used when fields are left zero.
func DefaultOptions() Options {
	return Options{
		DialTimeout:  10 * time.Second,
		ReadTimeout:  5 * time.Minute, // solves are slow; generous by default
		WriteTimeout: 10 * time.Second,
	}
}

// Channel owns the single synchronous connection to the engine process.
// The protocol is strictly request/response: one command in flight at a
// time, each reply fully consumed before the next Send. A read timeout or
// transport failure leaves the engine's state unknown, so the channel
// marks itself invalid and refuses further traffic until reconnected.
type Channel struct {
	conn net.Conn
	opts Options

	inflight atomic.Bool
	valid    atomic.Bool
	closed   atomic.Bool

	log logging.Logger
	met *metrics.Registry
}

// Connect dials the engine and returns a live channel.
func Connect(ctx context.Context, addr string, opts Options) (*Channel, error) {
	def := DefaultOptions()
	if opts.DialTimeout == 0 {
		opts.DialTimeout = def.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}

	dialer := net.Dialer{Timeout: opts.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		if opts.Metrics != nil {
			opts.Metrics.RecordTransportError()
		}
		return nil, &TransportError{Op: "dial", Err: fmt.Errorf("dial %s (timeout=%v): %w", addr, opts.DialTimeout, err)}
	}

	ch := newChannel(conn, opts)
	ch.log.Info("connected to engine",
		logging.Component("wire"),
		logging.String("addr", addr))
	return ch, nil
}

// NewChannel wraps an existing connection. Used by tests that drive a
// scripted engine over net.Pipe.
func NewChannel(conn net.Conn, opts Options) *Channel {
	def := DefaultOptions()
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = def.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return newChannel(conn, opts)
}

func newChannel(conn net.Conn, opts Options) *Channel {
	ch := &Channel{
		conn: conn,
		opts: opts,
		log:  opts.Logger,
		met:  opts.Metrics,
	}
	ch.valid.Store(true)
	if ch.met != nil {
		ch.met.SetConnected(true)
	}
	return ch
}

// IsValid reports whether the channel may still carry traffic.
func (c *Channel) IsValid() bool {
	return c.valid.Load() && !c.closed.Load()
}

// Send transmits one command (or newline-separated batch) and blocks until
// the complete reply arrives. Engine-reported errors come back as
// *EngineError with the reply still returned for inspection; transport
// failures invalidate the channel.
func (c *Channel) Send(command string) (*Reply, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if !c.valid.Load() {
		return nil, ErrChannelInvalid
	}
	// Overlapping sends would interleave two replies on one stream; fail
	// fast instead of corrupting subsequent reads.
	if !c.inflight.CompareAndSwap(false, true) {
		return nil, ErrChannelBusy
	}
	defer c.inflight.Store(false)

	start := time.Now()

	frame, err := EncodeFrame(command)
	if err != nil {
		return nil, &ProtocolError{Command: command, Detail: err.Error()}
	}

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return nil, c.fail("set write deadline", command, err)
	}
	if _, err := c.conn.Write(frame); err != nil {
		return nil, c.fail("write", command, err)
	}

	if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
		return nil, c.fail("set read deadline", command, err)
	}
	payload, err := ReadFrame(c.conn)
	if err != nil {
		return nil, c.fail("read", command, err)
	}

	reply := newReply(command, payload)
	elapsed := time.Since(start)

	if err := reply.Err(); err != nil {
		c.log.Warn("engine reported error",
			logging.Component("wire"),
			logging.Command(command),
			logging.Error(err))
		if c.met != nil {
			c.met.RecordCommand("engine_error", elapsed, len(frame), len(payload))
			c.met.RecordEngineError()
		}
		return reply, err
	}

	c.log.Debug("command ok",
		logging.Component("wire"),
		logging.Command(command),
		logging.Duration("elapsed", elapsed),
		logging.Bytes("reply_bytes", len(payload)))
	if c.met != nil {
		c.met.RecordCommand("ok", elapsed, len(frame), len(payload))
	}
	return reply, nil
}

// fail marks the channel unusable and wraps the cause. The engine may or
// may not have executed the command; only a reconnect restores a known
// state.
func (c *Channel) fail(op, command string, err error) error {
	c.valid.Store(false)
	if c.met != nil {
		c.met.RecordTransportError()
		c.met.SetConnected(false)
	}
	c.log.Error("channel failure",
		logging.Component("wire"),
		logging.Operation(op),
		logging.Command(command),
		logging.Error(err))
	return &TransportError{Op: op, Err: err}
}

// Close tears the connection down. The channel cannot be reused.
func (c *Channel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.valid.Store(false)
	if c.met != nil {
		c.met.SetConnected(false)
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
