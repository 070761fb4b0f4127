package command

import "github.com/akashmaji946/respkv/internal/common"

// ParsedArgs is the result of matching a request's tokens against a
// Spec: the leading positional arguments plus whatever positionals
// trailed, and any recognized named arguments with their values.
type ParsedArgs struct {
	Args      [][]byte
	NamedArgs map[string][][]byte
}

// Lookup descends root folding each token to lowercase, stopping at the
// first leaf Spec. It returns the matched spec and the tokens still
// unconsumed (which ParseArgs then parses). A lookup that runs out of
// tokens before reaching a leaf, or hits an unrecognized token, fails
// with a ProtocolError.
func Lookup(root *Node, tokens [][]byte) (*Spec, [][]byte, error) {
	node := root
	i := 0
	for {
		if i >= len(tokens) {
			return nil, nil, protocolErrorf("incomplete command")
		}
		name := string(common.ToLowerASCII(tokens[i]))
		child, ok := node.Children[name]
		if !ok {
			return nil, nil, protocolErrorf("unknown command %q", name)
		}
		i++
		if child.Leaf != nil {
			return child.Leaf, tokens[i:], nil
		}
		node = child
	}
}

// ParseArgs matches spec against the tokens left over after Lookup:
// the first LeadingArgc tokens become positional arguments, then each
// remaining token is folded to lowercase and checked against
// spec.NamedArgc — a match consumes that many following tokens as the
// named argument's value, a miss falls through as an extra positional.
func ParseArgs(spec *Spec, tokens [][]byte) (ParsedArgs, error) {
	if len(tokens) < spec.LeadingArgc {
		return ParsedArgs{}, protocolErrorf("not enough arguments")
	}

	args := make([][]byte, spec.LeadingArgc, len(tokens))
	copy(args, tokens[:spec.LeadingArgc])
	rest := tokens[spec.LeadingArgc:]

	named := make(map[string][][]byte)
	for i := 0; i < len(rest); {
		token := rest[i]
		name := string(common.ToLowerASCII(token))
		i++

		argc, recognized := spec.NamedArgc[name]
		if !recognized {
			args = append(args, token)
			continue
		}
		if i+argc > len(rest) {
			return ParsedArgs{}, protocolErrorf("missing value for named argument %q", name)
		}
		named[name] = rest[i : i+argc]
		i += argc
	}

	return ParsedArgs{Args: args, NamedArgs: named}, nil
}

// Dispatch runs Lookup then ParseArgs then the matched handler, the full
// pipeline the connection driver invokes for each decoded request.
func Dispatch(root *Node, ctx *Context, tokens [][]byte) error {
	spec, rest, err := Lookup(root, tokens)
	if err != nil {
		return err
	}
	args, err := ParseArgs(spec, rest)
	if err != nil {
		return err
	}
	return spec.Handler(ctx, args)
}
