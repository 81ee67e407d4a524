package wiretest

import (
	"strings"
	"sync"

	"github.com/photonlink/fimmgo/pkg/wire"
)

// Recorder satisfies wire.Sender in-process, recording every command and
// answering from the same matching rules as Engine. Higher-level packages
// test their command emission against it without a socket.
type Recorder struct {
	mu       sync.Mutex
	exact    map[string]string
	prefixes []prefixRule
	fallback func(command string) string
	sent     []string
}

// NewRecorder returns an empty recorder; unmatched commands get an empty
// (void) reply.
func NewRecorder() *Recorder {
	return &Recorder{exact: make(map[string]string)}
}

// Respond registers an exact-match reply payload for a command.
func (r *Recorder) Respond(command, payload string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exact[command] = payload
	return r
}

// RespondPrefix registers a reply for any command with the given prefix.
func (r *Recorder) RespondPrefix(prefix, payload string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefixes = append(r.prefixes, prefixRule{prefix: prefix, payload: payload})
	return r
}

// RespondFunc registers a catch-all handler consulted last.
func (r *Recorder) RespondFunc(fn func(command string) string) *Recorder {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = fn
	return r
}

// Send records the command and returns the scripted reply. Scripts are
// answered line by line; only the last line's reply is returned, matching
// the engine's batched-command behavior.
func (r *Recorder) Send(command string) (*wire.Reply, error) {
	r.mu.Lock()
	r.sent = append(r.sent, command)
	lines := strings.Split(command, "\n")
	last := strings.TrimRight(lines[len(lines)-1], ";\n ")
	payload, ok := r.lookupLocked(last)
	r.mu.Unlock()

	if !ok {
		payload = Empty
	}
	reply := wire.NewReply(command, payload)
	if err := reply.Err(); err != nil {
		return reply, err
	}
	return reply, nil
}

func (r *Recorder) lookupLocked(command string) (string, bool) {
	if p, ok := r.exact[command]; ok {
		return p, true
	}
	for _, rule := range r.prefixes {
		if strings.HasPrefix(command, rule.prefix) {
			return rule.payload, true
		}
	}
	if r.fallback != nil {
		return r.fallback(command), true
	}
	return "", false
}

// Sent returns every command passed to Send, in order.
func (r *Recorder) Sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.sent))
	copy(out, r.sent)
	return out
}

// SentJoined returns all commands joined with newlines, convenient for
// golden-file comparison.
func (r *Recorder) SentJoined() string {
	return strings.Join(r.Sent(), "\n")
}

// Reset clears the recorded command log but keeps the reply script.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = nil
}
