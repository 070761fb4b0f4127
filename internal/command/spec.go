/*
author: akashmaji
email: akashmaji@iisc.ac.in
file: respkv/internal/command/spec.go
*/

// Package command implements the hierarchical, table-driven command
// dispatcher: a spec tree keyed by lowercase command/subcommand token,
// argument parsing against a matched leaf Spec, and the handlers
// themselves.
package command

import (
	"io"

	"github.com/akashmaji946/respkv/internal/store"
)

// Context is everything a handler needs: the shared database and the
// sink its reply is written to. A handler acquires at most one dataset
// lock at a time and never holds it across the write to W.
type Context struct {
	DB *store.Database
	W  io.Writer
}

// HandlerFunc executes one already-parsed command against ctx.
type HandlerFunc func(ctx *Context, args ParsedArgs) error

// Spec is a leaf in the command tree: a handler plus the shape of
// arguments it accepts.
type Spec struct {
	// LeadingArgc is the number of mandatory positional arguments.
	LeadingArgc int
	// NamedArgc maps a lowercase named-argument token to how many
	// following tokens it consumes; 0 means a boolean flag.
	NamedArgc map[string]int
	Handler   HandlerFunc
}

// Node is either a leaf Spec or a subtree keyed by the next lowercase
// token, supporting commands like CONFIG GET that need a second level of
// descent.
type Node struct {
	Leaf     *Spec
	Children map[string]*Node
}

func leaf(spec *Spec) *Node { return &Node{Leaf: spec} }

func subtree(children map[string]*Node) *Node { return &Node{Children: children} }

// NewSpecTree builds the command table this server implements. It is
// built once and never mutated afterward, so it is safe to share across
// every connection.
func NewSpecTree() *Node {
	return subtree(map[string]*Node{
		"ping": leaf(&Spec{Handler: handlePing}),
		"echo": leaf(&Spec{LeadingArgc: 1, Handler: handleEcho}),
		"get":  leaf(&Spec{LeadingArgc: 1, Handler: handleGet}),
		"set": leaf(&Spec{
			LeadingArgc: 2,
			NamedArgc:   map[string]int{"px": 1},
			Handler:     handleSet,
		}),
		"keys": leaf(&Spec{LeadingArgc: 1, Handler: handleKeys}),
		"config": subtree(map[string]*Node{
			"get": leaf(&Spec{LeadingArgc: 1, Handler: handleConfigGet}),
		}),
	})
}
