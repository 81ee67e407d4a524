// Package wiretest provides a scripted stand-in for the engine process so
// channel, builder and solver behavior can be tested without a real solver.
package wiretest

import (
	"bytes"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/photonlink/fimmgo/pkg/wire"
)

// Value wraps v in the engine's value-reply form.
func Value(v string) string {
	return "RETVAL:" + v + "\n\x00"
}

// ErrorReply returns an engine-error payload (no value marker).
func ErrorReply(msg string) string {
	return msg + "\n\x00"
}

// Empty is the reply to assignments and other void commands.
const Empty = ""

// Engine serves the engine side of a connection, answering each framed
// request from a script. Unmatched commands get the default reply.
type Engine struct {
	conn net.Conn

	mu        sync.Mutex
	exact     map[string]string
	prefixes  []prefixRule
	fallback  func(command string) string
	hangOn    map[string]bool
	requests  []string
	closeOnce sync.Once
	done      chan struct{}
}

type prefixRule struct {
	prefix  string
	payload string
}

// Serve starts answering requests on conn until it closes.
func Serve(conn net.Conn) *Engine {
	e := &Engine{
		conn:   conn,
		exact:  make(map[string]string),
		hangOn: make(map[string]bool),
		done:   make(chan struct{}),
	}
	go e.loop()
	return e
}

// Respond registers an exact-match reply payload for a command.
func (e *Engine) Respond(command, payload string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exact[command] = payload
	return e
}

// RespondPrefix registers a reply for any command with the given prefix.
func (e *Engine) RespondPrefix(prefix, payload string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prefixes = append(e.prefixes, prefixRule{prefix: prefix, payload: payload})
	return e
}

// RespondFunc registers a catch-all handler consulted last.
func (e *Engine) RespondFunc(fn func(command string) string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallback = fn
	return e
}

// HangOn makes the engine swallow a command without replying, simulating
// a stalled solver.
func (e *Engine) HangOn(command string) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hangOn[command] = true
	return e
}

// Requests returns every command text received so far.
func (e *Engine) Requests() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.requests))
	copy(out, e.requests)
	return out
}

// Close shuts the engine side of the connection.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.conn.Close()
	})
}

func (e *Engine) loop() {
	for {
		payload, err := wire.ReadFrame(e.conn)
		if err != nil {
			return
		}
		command := strings.TrimRight(string(payload), "\x00")
		command = strings.TrimRight(command, ";\n ")

		e.mu.Lock()
		e.requests = append(e.requests, command)
		hang := e.hangOn[command]
		reply, ok := e.exact[command]
		if !ok {
			for _, r := range e.prefixes {
				if strings.HasPrefix(command, r.prefix) {
					reply, ok = r.payload, true
					break
				}
			}
		}
		if !ok && e.fallback != nil {
			reply, ok = e.fallback(command), true
		}
		e.mu.Unlock()

		if hang {
			<-e.done
			return
		}
		if !ok {
			reply = Empty
		}
		if err := writeReply(e.conn, reply); err != nil {
			return
		}
	}
}

// writeReply frames a payload the way the engine does: 20-byte ASCII
// length header, then the payload bytes.
func writeReply(conn net.Conn, payload string) error {
	lenStr := strconv.Itoa(len(payload))
	header := make([]byte, 0, 20)
	header = append(header, lenStr...)
	header = append(header, bytes.Repeat([]byte{0}, 20-len(lenStr))...)
	if _, err := conn.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		// net.Pipe blocks even on zero-length writes until the peer
		// reads, but the client never issues a read for an empty
		// payload; the byte stream is identical either way.
		return nil
	}
	_, err := conn.Write([]byte(payload))
	return err
}
