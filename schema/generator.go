package schema

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/creachadair/onepass/dict"
	"github.com/creachadair/onepass/internal/bignat"
	"github.com/creachadair/onepass/internal/tsvescape"
)

// ErrUnknownGenerator is returned when a generator reference names a
// generator not bound in the context. It surfaces at render and repr time
// (WriteAt, WriteRepr), not at parse time — a schema string parses
// successfully even if it names a generator nothing has registered yet.
// Size reports such a reference as having size 0 rather than failing.
var ErrUnknownGenerator = errors.New("schema: unknown generator")

// ErrDictHashUnknown is returned when a generator reference names an
// explicit dictionary hash not bound in the context.
var ErrDictHashUnknown = errors.New("schema: unknown dictionary hash")

// Generator is an opaque reference of the form "name(sep arg)*", where name
// is a maximal run of lowercase ASCII letters and sep is the first
// non-lowercase-ASCII character, used consistently as the argument
// separator within this reference.
type Generator struct {
	raw string
}

// NewGenerator wraps the text between a generator reference's braces.
func NewGenerator(raw string) Generator { return Generator{raw: raw} }

// Raw returns the generator reference's unparsed text.
func (g Generator) Raw() string { return g.raw }

// Name returns the generator's name: the maximal prefix of lowercase ASCII
// letters.
func (g Generator) Name() string {
	for i, r := range g.raw {
		if r < 'a' || r > 'z' {
			return g.raw[:i]
		}
	}
	return g.raw
}

// Args returns the generator's arguments, split on the first
// non-lowercase-ASCII character found after the name.
func (g Generator) Args() []string {
	rest := g.raw[len(g.Name()):]
	if rest == "" {
		return nil
	}
	sep := rest[0]
	return strings.Split(rest[1:], string(sep))
}

// GeneratorFunc is the capability interface a generator implementation
// exposes to the enumeration engine. Built-ins (word, words) and any
// caller-registered generator both implement this.
type GeneratorFunc interface {
	Name() string
	Size(ctx *Context, args []string) *bignat.Nat
	WriteAt(ctx *Context, w io.Writer, index *bignat.Nat, args []string) error
	WriteRepr(ctx *Context, w io.Writer, args []string) error
}

// Context is a process-wide (or locally extended) registry of generator
// functions and dictionaries. It is read-only once built; "extension"
// always produces a new Context, never mutates a shared one.
type Context struct {
	generators  map[string]GeneratorFunc
	dicts       map[string]*dict.Dictionary // keyed by lowercase hex hash
	defaultDict *dict.Dictionary
}

// NewContext builds the default context: {word, words} bound to the
// built-in dictionary, dict.Default().
func NewContext() *Context {
	d := dict.Default()
	c := &Context{
		generators:  make(map[string]GeneratorFunc, 2),
		dicts:       make(map[string]*dict.Dictionary, 1),
		defaultDict: d,
	}
	c.dicts[d.HashHex()] = d
	word := &wordGenerator{}
	words := &wordsGenerator{}
	c.generators[word.Name()] = word
	c.generators[words.Name()] = words
	return c
}

// EmptyContext builds a context with no registered generators or
// dictionaries, useful for testing error paths.
func EmptyContext() *Context {
	return &Context{generators: map[string]GeneratorFunc{}, dicts: map[string]*dict.Dictionary{}}
}

// Clone returns a shallow copy of c that can be extended without mutating c.
func (c *Context) Clone() *Context {
	clone := &Context{
		generators:  make(map[string]GeneratorFunc, len(c.generators)),
		dicts:       make(map[string]*dict.Dictionary, len(c.dicts)),
		defaultDict: c.defaultDict,
	}
	for k, v := range c.generators {
		clone.generators[k] = v
	}
	for k, v := range c.dicts {
		clone.dicts[k] = v
	}
	return clone
}

// WithGenerator returns a clone of c with fn registered under fn.Name().
func (c *Context) WithGenerator(fn GeneratorFunc) *Context {
	clone := c.Clone()
	clone.generators[fn.Name()] = fn
	return clone
}

// WithDictionary returns a clone of c with d registered under its content
// hash, addressable by generators that take an explicit hash argument.
func (c *Context) WithDictionary(d *dict.Dictionary) *Context {
	clone := c.Clone()
	clone.dicts[d.HashHex()] = d
	return clone
}

// Generator looks up a registered generator function by name.
func (c *Context) Generator(name string) (GeneratorFunc, bool) {
	fn, ok := c.generators[name]
	return fn, ok
}

// Dictionary resolves a dictionary by its hex hash, or the default
// dictionary if hashHex is empty.
func (c *Context) Dictionary(hashHex string) (*dict.Dictionary, bool) {
	if hashHex == "" {
		if c.defaultDict == nil {
			return nil, false
		}
		return c.defaultDict, true
	}
	d, ok := c.dicts[hashHex]
	return d, ok
}

// DefaultDictionary returns the context's designated default dictionary.
func (c *Context) DefaultDictionary() *dict.Dictionary { return c.defaultDict }

// isHexHash reports whether s looks like a 64-character lowercase hex
// dictionary hash.
func isHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return false
		}
	}
	return true
}

// wordArgs is the parsed, defaulted argument set shared by word and words.
type wordArgs struct {
	dictHash string // "" means default dictionary
	upper    bool
	count    int    // words only
	sep      string // words only
}

func parseArgs(args []string, defaultCount int, defaultSep string) wordArgs {
	wa := wordArgs{count: defaultCount, sep: defaultSep}
	for _, a := range args {
		switch {
		case a == "":
			continue
		case a == "U":
			wa.upper = true
		case isHexHash(a):
			wa.dictHash = a
		case len(a) == 1 && isASCIIPunct(a[0]):
			wa.sep = a
		default:
			if n, err := strconv.Atoi(a); err == nil && n > 0 {
				wa.count = n
			}
		}
	}
	return wa
}

func isASCIIPunct(b byte) bool {
	return (b >= '!' && b <= '/') || (b >= ':' && b <= '@') ||
		(b >= '[' && b <= '`') || (b >= '{' && b <= '~')
}

func resolveDict(ctx *Context, hashHex string) (*dict.Dictionary, error) {
	d, ok := ctx.Dictionary(hashHex)
	if !ok {
		if hashHex == "" {
			return nil, fmt.Errorf("%w: no default dictionary", ErrDictHashUnknown)
		}
		return nil, fmt.Errorf("%w: %s", ErrDictHashUnknown, hashHex)
	}
	return d, nil
}

func uppercaseFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = toUpperASCII(r[0])
	return string(r)
}

func toUpperASCII(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}

// wordGenerator implements the built-in {word} generator.
type wordGenerator struct{}

func (*wordGenerator) Name() string { return "word" }

func (g *wordGenerator) Size(ctx *Context, args []string) *bignat.Nat {
	wa := parseArgs(args, 1, " ")
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return bignat.Zero()
	}
	return bignat.FromUint64(uint64(d.Len()))
}

func (g *wordGenerator) WriteAt(ctx *Context, w io.Writer, index *bignat.Nat, args []string) error {
	wa := parseArgs(args, 1, " ")
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return err
	}
	word := d.Word(int(bignat.Uint64(index)))
	if wa.upper {
		word = uppercaseFirst(word)
	}
	_, err = io.WriteString(w, word)
	return err
}

func (g *wordGenerator) WriteRepr(ctx *Context, w io.Writer, args []string) error {
	wa := parseArgs(args, 1, " ")
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "word|%s", d.HashHex()); err != nil {
		return err
	}
	if wa.upper {
		if _, err := io.WriteString(w, "|U"); err != nil {
			return err
		}
	}
	return nil
}

// wordsGenerator implements the built-in {words} generator.
type wordsGenerator struct{}

const (
	defaultWordsCount = 5
	defaultWordsSep   = " "
)

func (*wordsGenerator) Name() string { return "words" }

func (g *wordsGenerator) Size(ctx *Context, args []string) *bignat.Nat {
	wa := parseArgs(args, defaultWordsCount, defaultWordsSep)
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return bignat.Zero()
	}
	base := bignat.FromUint64(uint64(d.Len()))
	size := bignat.Pow(base, uint64(wa.count))
	if wa.upper {
		size = bignat.Mul(size, bignat.FromUint64(uint64(wa.count)))
	}
	return size
}

func (g *wordsGenerator) WriteAt(ctx *Context, w io.Writer, index *bignat.Nat, args []string) error {
	wa := parseArgs(args, defaultWordsCount, defaultWordsSep)
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return err
	}
	base := bignat.FromUint64(uint64(d.Len()))

	idx := index
	upperPos := -1
	if wa.upper {
		q, r := bignat.DivMod(idx, bignat.FromUint64(uint64(wa.count)))
		idx = q
		upperPos = int(bignat.Uint64(r))
	}
	for i := 0; i < wa.count; i++ {
		if i != 0 {
			if _, err := io.WriteString(w, wa.sep); err != nil {
				return err
			}
		}
		q, r := bignat.DivMod(idx, base)
		idx = q
		word := d.Word(int(bignat.Uint64(r)))
		if i == upperPos {
			word = uppercaseFirst(word)
		}
		if _, err := io.WriteString(w, word); err != nil {
			return err
		}
	}
	return nil
}

func (g *wordsGenerator) WriteRepr(ctx *Context, w io.Writer, args []string) error {
	wa := parseArgs(args, defaultWordsCount, defaultWordsSep)
	d, err := resolveDict(ctx, wa.dictHash)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "words|%s", d.HashHex()); err != nil {
		return err
	}
	if wa.upper {
		if _, err := io.WriteString(w, "|U"); err != nil {
			return err
		}
	}
	if wa.count != defaultWordsCount {
		if _, err := fmt.Fprintf(w, "|%d", wa.count); err != nil {
			return err
		}
	}
	if wa.sep != defaultWordsSep {
		if _, err := fmt.Fprintf(w, "|%s", tsvEscapeArg(wa.sep)); err != nil {
			return err
		}
	}
	return nil
}

// tsvEscapeArg escapes a generator argument using the same backslash
// escapes as derivation-record TSV fields, since generator args ride inside
// the canonical repr which in turn rides inside a TSV field.
func tsvEscapeArg(s string) string { return tsvescape.Escape(s) }
