// Package project handles engine-side project files: opening an
// existing .prj into the node tree and cataloguing what it contains, so
// pre-built nodes can be referenced alongside ones built in-process.
package project

import (
	"fmt"

	"github.com/photonlink/fimmgo/pkg/registry"
	"github.com/photonlink/fimmgo/pkg/wire"
)

// Import opens a project file on the engine and registers the project
// node plus its direct children. The engine may rename the project when
// the requested name collides; the registered name is what the engine
// reports back.
func Import(ch wire.Sender, reg *registry.Registry, filePath, name string) (*registry.BuiltNode, error) {
	reply, err := ch.Send("app.numsubnodes()")
	if err != nil {
		return nil, err
	}
	count, err := reply.Int()
	if err != nil {
		return nil, err
	}
	index := count + 1

	// The engine takes the file path bare and the node name quoted.
	if _, err := ch.Send(wire.Call("app", "openproject", wire.Name(filePath), wire.Str(name))); err != nil {
		return nil, fmt.Errorf("opening project %s: %w", filePath, err)
	}

	prjPath := wire.Subscript("app.subnodes", index)
	reply, err = ch.Send(prjPath + ".nodename()")
	if err != nil {
		return nil, err
	}
	actualName, err := reply.Str()
	if err != nil {
		return nil, err
	}

	node, err := reg.Register(nil, registry.BuiltNode{
		Name: actualName,
		Path: prjPath,
		Kind: registry.KindProject,
	})
	if err != nil {
		return nil, err
	}

	if err := catalogChildren(ch, reg, prjPath); err != nil {
		return nil, err
	}
	return node, nil
}

// catalogChildren registers the direct subnodes of a project so they can
// be addressed by name.
func catalogChildren(ch wire.Sender, reg *registry.Registry, parent string) error {
	reply, err := ch.Send(parent + ".numsubnodes()")
	if err != nil {
		return err
	}
	count, err := reply.Int()
	if err != nil {
		return err
	}
	for i := 1; i <= count; i++ {
		childPath := wire.Subscript(parent+".subnodes", i)
		reply, err := ch.Send(childPath + ".nodename()")
		if err != nil {
			return err
		}
		name, err := reply.Str()
		if err != nil {
			return err
		}
		if _, err := reg.Register(nil, registry.BuiltNode{
			Name:   name,
			Path:   childPath,
			Parent: parent,
			Kind:   registry.KindImported,
		}); err != nil {
			return err
		}
	}
	return nil
}

// List returns the registered children of a project, in path order.
func List(reg *registry.Registry, prj *registry.BuiltNode) []registry.BuiltNode {
	var out []registry.BuiltNode
	for _, n := range reg.Nodes() {
		if n.Parent == prj.Path {
			out = append(out, n)
		}
	}
	return out
}

// FindNode resolves a slash-separated node path inside a project to an
// engine-side reference and returns the reference name usable as a node
// path in later commands.
func FindNode(ch wire.Sender, prj *registry.BuiltNode, fimmpath string) (string, error) {
	ref := nextRefName()
	cmd := fmt.Sprintf("Ref& %s = %s.findnode(%q)", ref, prj.Path, fimmpath)
	if _, err := ch.Send(cmd); err != nil {
		return "", fmt.Errorf("finding node %q: %w", fimmpath, err)
	}
	return ref, nil
}
