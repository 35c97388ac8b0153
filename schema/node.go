// Package schema implements the password schema language: a small
// regular-expression-like DSL parsed to an AST, together with the
// enumeration engine that treats every AST node as a finite, ordered set of
// strings supporting bijective index-to-string mapping and cardinality.
package schema

import (
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/onepass/internal/bignat"
)

// kind discriminates the five closed Node variants. Node is not meant to be
// extended with new kinds from outside this package; the open extension
// point for new behavior is Generator, via GeneratorFunc.
type kind int

const (
	kindLiteral kind = iota
	kindChars
	kindList
	kindCount
	kindGenerator
)

// Node is an AST node: a tagged union of Literal, Chars, List, Count, and
// Generator. Construct one with the New* functions.
type Node struct {
	kind  kind
	lit   string
	chars *Chars
	list  []*Node
	child *Node // Count only
	min   uint32
	max   uint32
	gen   Generator
}

// NewLiteral returns a Node that always renders s verbatim.
func NewLiteral(s string) *Node { return &Node{kind: kindLiteral, lit: s} }

// NewCharsNode returns a Node denoting a single character drawn from c.
func NewCharsNode(c *Chars) *Node { return &Node{kind: kindChars, chars: c} }

// NewList returns a Node denoting the concatenation of children.
func NewList(children []*Node) *Node { return &Node{kind: kindList, list: children} }

// NewCount returns a Node denoting child repeated k times for k in [min, max].
func NewCount(child *Node, min, max uint32) *Node {
	return &Node{kind: kindCount, child: child, min: min, max: max}
}

// NewGeneratorNode returns a Node delegating to a named, context-resolved
// generator.
func NewGeneratorNode(g Generator) *Node { return &Node{kind: kindGenerator, gen: g} }

// Size returns the cardinality of the set node denotes, saturating at
// 2²⁵⁶−1.
func (n *Node) Size(ctx *Context) *bignat.Nat {
	switch n.kind {
	case kindLiteral:
		return bignat.One()
	case kindChars:
		return bignat.FromUint64(n.chars.Size())
	case kindList:
		size := bignat.One()
		for _, child := range n.list {
			size = bignat.Mul(size, child.Size(ctx))
		}
		return size
	case kindCount:
		return n.countSize(ctx)
	case kindGenerator:
		fn, ok := ctx.Generator(n.gen.Name())
		if !ok {
			return bignat.Zero()
		}
		return fn.Size(ctx, n.gen.Args())
	default:
		panic("schema: unreachable node kind")
	}
}

// countSize computes Σ_{k=min..max} base^k in closed form, or max-min+1 when
// base == 1 (every repetition count renders the same single string).
func (n *Node) countSize(ctx *Context) *bignat.Nat {
	base := n.child.Size(ctx)
	if bignat.IsOne(base) {
		return bignat.FromUint64(uint64(n.max-n.min) + 1)
	}
	// (base^(max+1) - base^min) / (base - 1)
	hi := bignat.Pow(base, uint64(n.max)+1)
	lo := bignat.Pow(base, uint64(n.min))
	numerator := bignat.Sub(hi, lo)
	denom := bignat.Sub(base, bignat.One())
	q, _ := bignat.DivMod(numerator, denom)
	return q
}

// WriteAt writes the index'th member of node's denoted set to w. index must
// be strictly less than Size(ctx); callers must scrub index after use.
func (n *Node) WriteAt(ctx *Context, w io.Writer, index *bignat.Nat) error {
	switch n.kind {
	case kindLiteral:
		_, err := io.WriteString(w, n.lit)
		return err

	case kindChars:
		r := n.chars.Nth(bignat.Uint64(index))
		_, err := io.WriteString(w, string(r))
		return err

	case kindList:
		idx := index
		for _, child := range n.list {
			childSize := child.Size(ctx)
			q, r := bignat.DivMod(idx, childSize)
			if err := child.WriteAt(ctx, w, r); err != nil {
				return err
			}
			idx = q
		}
		return nil

	case kindCount:
		return n.writeCountAt(ctx, w, index)

	case kindGenerator:
		fn, ok := ctx.Generator(n.gen.Name())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGenerator, n.gen.Name())
		}
		return fn.WriteAt(ctx, w, index, n.gen.Args())

	default:
		panic("schema: unreachable node kind")
	}
}

func (n *Node) writeCountAt(ctx *Context, w io.Writer, index *bignat.Nat) error {
	base := n.child.Size(ctx)
	idx := index
	count := n.min
	rep := bignat.Pow(base, uint64(n.min))
	for bignat.Cmp(rep, idx) <= 0 {
		count++
		idx = bignat.Sub(idx, rep)
		rep = bignat.Mul(rep, base)
	}
	for i := uint32(0); i < count; i++ {
		q, r := bignat.DivMod(idx, base)
		if err := n.child.WriteAt(ctx, w, r); err != nil {
			return err
		}
		idx = q
	}
	return nil
}

// WriteRepr writes the canonical textual form of node to w: the
// round-trip serializer described in the schema language's repr law.
func (n *Node) WriteRepr(ctx *Context, w io.Writer) error {
	return n.writeRepr(ctx, w, false)
}

func (n *Node) writeRepr(ctx *Context, w io.Writer, nested bool) error {
	switch n.kind {
	case kindLiteral:
		return writeLiteralRepr(w, n.lit)

	case kindChars:
		return writeCharsRepr(w, n.chars)

	case kindList:
		if nested {
			if _, err := io.WriteString(w, "("); err != nil {
				return err
			}
		}
		for _, child := range n.list {
			if err := child.writeRepr(ctx, w, true); err != nil {
				return err
			}
		}
		if nested {
			if _, err := io.WriteString(w, ")"); err != nil {
				return err
			}
		}
		return nil

	case kindCount:
		if err := n.child.writeRepr(ctx, w, true); err != nil {
			return err
		}
		if n.min == n.max {
			_, err := fmt.Fprintf(w, "{%d}", n.min)
			return err
		}
		_, err := fmt.Fprintf(w, "{%d,%d}", n.min, n.max)
		return err

	case kindGenerator:
		fn, ok := ctx.Generator(n.gen.Name())
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGenerator, n.gen.Name())
		}
		if _, err := io.WriteString(w, "{"); err != nil {
			return err
		}
		if err := fn.WriteRepr(ctx, w, n.gen.Args()); err != nil {
			return err
		}
		_, err := io.WriteString(w, "}")
		return err

	default:
		panic("schema: unreachable node kind")
	}
}

// Repr returns the canonical textual form of node as a string.
func Repr(ctx *Context, node *Node) (string, error) {
	var b strings.Builder
	if err := node.WriteRepr(ctx, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
