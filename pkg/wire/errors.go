package wire

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when sending on a channel that was never connected
	ErrNotConnected = errors.New("channel is not connected")
	// ErrChannelBusy is returned when a Send overlaps an in-flight request
	ErrChannelBusy = errors.New("channel busy: a command is already in flight")
	// ErrChannelInvalid is returned after a transport failure left the
	// engine's state unknown; the channel must be reconnected
	ErrChannelInvalid = errors.New("channel invalid: reconnect required")
	// ErrClosed is returned when sending on a closed channel
	ErrClosed = errors.New("channel is closed")
)

// TransportError is a channel-fatal failure: the connection broke or a
// reply never arrived. The channel is unusable afterwards.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is a decode failure: the reply arrived but does not match
// the expected shape. Fatal for the call, the channel stays usable.
type ProtocolError struct {
	Command string
	Detail  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error for %q: %s", e.Command, e.Detail)
}

// EngineError is a logical error the engine itself reported (bad node
// path, rejected build, solver failure). Recoverable: the caller may
// retry with corrected input.
type EngineError struct {
	Command string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine rejected %q: %s", e.Command, e.Message)
}

// IsEngineError reports whether err (or anything it wraps) is an
// engine-reported logical error.
func IsEngineError(err error) bool {
	var ee *EngineError
	return errors.As(err, &ee)
}

// IsProtocolError reports whether err (or anything it wraps) is a reply
// decode failure.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTransportError reports whether err is channel-fatal.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
