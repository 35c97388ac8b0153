package schema

import (
	"strings"
	"testing"

	"github.com/creachadair/onepass/internal/bignat"
)

func lowerNode() *Node  { return NewCharsNode(NewChars(lowerRanges)) }
func digitNode() *Node  { return NewCharsNode(NewChars(digitRanges)) }

func renderAt(t *testing.T, ctx *Context, n *Node, index uint64) string {
	t.Helper()
	var b strings.Builder
	if err := n.WriteAt(ctx, &b, bignat.FromUint64(index)); err != nil {
		t.Fatalf("WriteAt(%d): %v", index, err)
	}
	return b.String()
}

// Scenario D: ([[:lower:]][[:digit:]][[:lower:]]){3} has size (26·10·26)³ = 308915776000.
func TestSchemaSizeScenarioD(t *testing.T) {
	ctx := NewContext()
	triple := NewList([]*Node{lowerNode(), digitNode(), lowerNode()})
	node := NewCount(triple, 3, 3)
	size := node.Size(ctx)
	want := bignat.FromUint64(308915776000)
	if bignat.Cmp(size, want) != 0 {
		t.Errorf("Size() = %s, want %s", bignat.Dec(size), bignat.Dec(want))
	}
}

// Scenario E: Count(1,5) and Count(2,5) over [a-z].
func TestCountEnumerationScenarioE(t *testing.T) {
	ctx := NewContext()
	child := lowerNode()

	c15 := NewCount(child, 1, 5)
	size15 := c15.Size(ctx)
	if bignat.Cmp(size15, bignat.FromUint64(12356630)) != 0 {
		t.Fatalf("Count(1,5).Size() = %s, want 12356630", bignat.Dec(size15))
	}
	vectors15 := map[uint64]string{
		0:        "a",
		1:        "b",
		26:       "aa",
		27:       "ba",
		12356629: "zzzzz",
	}
	for idx, want := range vectors15 {
		if got := renderAt(t, ctx, c15, idx); got != want {
			t.Errorf("Count(1,5) index %d = %q, want %q", idx, got, want)
		}
	}

	c25 := NewCount(child, 2, 5)
	size25 := c25.Size(ctx)
	if bignat.Cmp(size25, bignat.FromUint64(12356604)) != 0 {
		t.Fatalf("Count(2,5).Size() = %s, want 12356604", bignat.Dec(size25))
	}
	vectors25 := map[uint64]string{
		0:   "aa",
		675: "zz",
		676: "aaa",
	}
	for idx, want := range vectors25 {
		if got := renderAt(t, ctx, c25, idx); got != want {
			t.Errorf("Count(2,5) index %d = %q, want %q", idx, got, want)
		}
	}
}

func TestListSizeIsProduct(t *testing.T) {
	ctx := NewContext()
	node := NewList([]*Node{lowerNode(), digitNode()})
	want := bignat.FromUint64(260)
	if got := node.Size(ctx); bignat.Cmp(got, want) != 0 {
		t.Errorf("Size() = %s, want %s", bignat.Dec(got), bignat.Dec(want))
	}
}

func TestLiteralSizeIsOne(t *testing.T) {
	ctx := NewContext()
	node := NewLiteral("hello")
	if got := node.Size(ctx); !bignat.IsOne(got) {
		t.Errorf("Size() = %s, want 1", bignat.Dec(got))
	}
	if got := renderAt(t, ctx, node, 0); got != "hello" {
		t.Errorf("WriteAt(0) = %q, want %q", got, "hello")
	}
}

func TestReprLiteralAndChars(t *testing.T) {
	ctx := NewContext()
	node := NewList([]*Node{NewLiteral("ab"), lowerNode()})
	got, err := Repr(ctx, node)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	want := "ab[a-z]"
	if got != want {
		t.Errorf("Repr() = %q, want %q", got, want)
	}
}

func TestReprCountWrapsChildInParens(t *testing.T) {
	ctx := NewContext()
	triple := NewList([]*Node{lowerNode(), digitNode(), lowerNode()})
	node := NewCount(triple, 3, 3)
	got, err := Repr(ctx, node)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	want := "([a-z][0-9][a-z]){3}"
	if got != want {
		t.Errorf("Repr() = %q, want %q", got, want)
	}
}
