// Package registry tracks which structure values have been materialized
// as engine nodes. The engine addresses nodes positionally, so once a
// structure is built its path must be remembered; building the same value
// twice would create a duplicate node the engine treats as distinct.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrNameConflict is returned when a name in a parent scope is already
// taken by a different structure.
var ErrNameConflict = errors.New("node name already taken in this scope")

// Kind labels what an engine node holds.
type Kind string

const (
	KindProject   Kind = "project"
	KindWaveguide Kind = "waveguide"
	KindDevice    Kind = "device"
	KindImported  Kind = "imported"
)

// BuiltNode is one materialized engine node.
type BuiltNode struct {
	Name   string
	Path   string // engine node path, e.g. app.subnodes[1]
	Parent string // parent engine path; empty for top-level nodes
	Kind   Kind
}

// scopeKey addresses a name within one parent scope.
type scopeKey struct {
	parent string
	name   string
}

// Registry maps structural identity to built engine nodes. Identity is
// pointer identity, not content equality: two equal-valued structures are
// distinct nodes. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byIdent  map[any]*BuiltNode
	byName   map[scopeKey]*BuiltNode
	children map[string]int           // direct child count per parent path
	kindSeq  map[string]map[Kind]int  // default-name counters per scope
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		byIdent:  make(map[any]*BuiltNode),
		byName:   make(map[scopeKey]*BuiltNode),
		children: make(map[string]int),
		kindSeq:  make(map[string]map[Kind]int),
	}
}

// Register records a built node. Registering the same identity again is an
// idempotent lookup returning the existing entry. A different identity
// claiming a taken name fails with ErrNameConflict and leaves the registry
// unchanged. A nil identity (imported nodes with no in-process structure)
// is indexed by name only.
func (r *Registry) Register(identity any, node BuiltNode) (*BuiltNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if identity != nil {
		if existing, ok := r.byIdent[identity]; ok {
			return existing, nil
		}
	}
	key := scopeKey{parent: node.Parent, name: node.Name}
	if existing, ok := r.byName[key]; ok {
		if identity == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %q under %q", ErrNameConflict, node.Name, node.Parent)
	}

	stored := node
	if identity != nil {
		r.byIdent[identity] = &stored
	}
	r.byName[key] = &stored
	r.children[node.Parent]++
	return &stored, nil
}

// Lookup returns the node built for identity, if any.
func (r *Registry) Lookup(identity any) (*BuiltNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byIdent[identity]
	return n, ok
}

// LookupByName returns the node registered under name in parent's scope.
func (r *Registry) LookupByName(parent, name string) (*BuiltNode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byName[scopeKey{parent: parent, name: name}]
	return n, ok
}

// NextIndex returns the 1-based engine subnode index the next child of
// parent will occupy.
func (r *Registry) NextIndex(parent string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.children[parent] + 1
}

// DefaultName issues a deterministic name for an unnamed node of the given
// kind in parent's scope. Names advance per kind and never repeat within a
// registry generation.
func (r *Registry) DefaultName(parent string, kind Kind) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq := r.kindSeq[parent]
	if seq == nil {
		seq = make(map[Kind]int)
		r.kindSeq[parent] = seq
	}
	for {
		seq[kind]++
		name := fmt.Sprintf("%s_%d", kind, seq[kind])
		if _, taken := r.byName[scopeKey{parent: parent, name: name}]; !taken {
			return name
		}
	}
}

// Len returns the number of registered nodes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Nodes returns all registered nodes ordered by path.
func (r *Registry) Nodes() []BuiltNode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BuiltNode, 0, len(r.byName))
	for _, n := range r.byName {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Clear drops every entry. Called after a reconnect, when the engine's
// node tree no longer matches what was recorded.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIdent = make(map[any]*BuiltNode)
	r.byName = make(map[scopeKey]*BuiltNode)
	r.children = make(map[string]int)
	r.kindSeq = make(map[string]map[Kind]int)
}
