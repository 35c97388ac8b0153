package schema

import (
	"strings"
	"testing"

	"github.com/creachadair/onepass/internal/bignat"
)

func TestWordGeneratorSizeMatchesDictionary(t *testing.T) {
	ctx := NewContext()
	n := mustParse(t, "{word}")
	want := bignat.FromUint64(uint64(ctx.DefaultDictionary().Len()))
	if got := n.Size(ctx); bignat.Cmp(got, want) != 0 {
		t.Errorf("Size() = %s, want %s", bignat.Dec(got), bignat.Dec(want))
	}
}

func TestWordsGeneratorDefaultCountIsFive(t *testing.T) {
	ctx := NewContext()
	n := mustParse(t, "{words}")
	base := bignat.FromUint64(uint64(ctx.DefaultDictionary().Len()))
	want := bignat.Pow(base, 5)
	if got := n.Size(ctx); bignat.Cmp(got, want) != 0 {
		t.Errorf("Size() = %s, want %s", bignat.Dec(got), bignat.Dec(want))
	}
}

func TestWordsGeneratorRendersSeparatedWords(t *testing.T) {
	ctx := NewContext()
	n := mustParse(t, "{words}")
	got := renderAt(t, ctx, n, 0)
	parts := strings.Split(got, " ")
	if len(parts) != 5 {
		t.Fatalf("WriteAt(0) = %q, want 5 space-separated words", got)
	}
	d := ctx.DefaultDictionary()
	for _, w := range parts {
		if w != d.Word(0) {
			t.Errorf("index 0 should render the dictionary's first word in every position, got %q", w)
		}
	}
}

func TestWordsGeneratorCustomSeparatorAndCount(t *testing.T) {
	ctx := NewContext()
	n := mustParse(t, "{words|3|-}")
	got := renderAt(t, ctx, n, 0)
	parts := strings.Split(got, "-")
	if len(parts) != 3 {
		t.Fatalf("WriteAt(0) = %q, want 3 hyphen-separated words", got)
	}
}

func TestWordGeneratorUppercaseFlag(t *testing.T) {
	ctx := NewContext()
	n := mustParse(t, "{word|U}")
	got := renderAt(t, ctx, n, 0)
	if got == "" || got[0] < 'A' || got[0] > 'Z' {
		t.Errorf("WriteAt(0) = %q, want an uppercase-first word", got)
	}
}

func TestUnknownGeneratorZeroSizeAndWriteAtError(t *testing.T) {
	ctx := EmptyContext()
	n := mustParse(t, "{nonesuch}")
	if got := n.Size(ctx); !bignat.IsZero(got) {
		t.Errorf("Size() with unregistered generator = %s, want 0", bignat.Dec(got))
	}
	var b strings.Builder
	err := n.WriteAt(ctx, &b, bignat.Zero())
	if err == nil {
		t.Fatal("WriteAt with unregistered generator succeeded, want error")
	}
}

func TestWithGeneratorExtendsContext(t *testing.T) {
	base := EmptyContext()
	ext := base.WithGenerator(&wordGenerator{})
	if _, ok := base.Generator("word"); ok {
		t.Fatal("WithGenerator mutated the base context")
	}
	if _, ok := ext.Generator("word"); !ok {
		t.Fatal("WithGenerator did not register the generator on the clone")
	}
}
