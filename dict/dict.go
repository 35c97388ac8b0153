// Package dict implements the normalized, content-hashed word lists used by
// the word/words schema generators.
package dict

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/creachadair/onepass/internal/tsvescape"
)

// Dictionary is an immutable, sorted, deduplicated word list together with
// its content hash.
type Dictionary struct {
	words []string
	hash  [32]byte
}

// Words returns the dictionary's words in sorted order. The caller must not
// modify the returned slice.
func (d *Dictionary) Words() []string { return d.words }

// Len returns the number of words.
func (d *Dictionary) Len() int { return len(d.words) }

// Hash returns the dictionary's 32-byte content hash.
func (d *Dictionary) Hash() [32]byte { return d.hash }

// HashHex returns the content hash as 64 lowercase hex characters.
func (d *Dictionary) HashHex() string { return fmt.Sprintf("%x", d.hash[:]) }

// Word returns the i'th word. The caller must ensure 0 <= i < Len().
func (d *Dictionary) Word(i int) string { return d.words[i] }

// Build constructs a Dictionary from an arbitrary collection of tokens,
// dropping empty tokens, sorting, and deduplicating.
func Build(tokens []string) *Dictionary {
	seen := make(map[string]bool, len(tokens))
	words := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		words = append(words, tok)
	}
	sort.Strings(words)
	return &Dictionary{words: words, hash: contentHash(words)}
}

// BuildLines constructs a Dictionary from a string of newline-separated
// words, trimming surrounding whitespace from each line before dedup/sort.
func BuildLines(text string) *Dictionary {
	lines := strings.Split(text, "\n")
	tokens := make([]string, 0, len(lines))
	for _, ln := range lines {
		tokens = append(tokens, strings.TrimSpace(ln))
	}
	return Build(tokens)
}

// BuildSeparated constructs a Dictionary from text split on sep, without any
// per-token trimming.
func BuildSeparated(text, sep string) *Dictionary {
	return Build(strings.Split(text, sep))
}

// contentHash computes BLAKE2b-256 over the TSV-escaped word list, each word
// followed by a newline, using the escaping applied to derivation-record fields.
func contentHash(words []string) [32]byte {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails for a key longer than 64 bytes; nil never does.
		panic(err)
	}
	for _, w := range words {
		h.Write([]byte(tsvescape.Escape(w)))
		h.Write([]byte{'\n'})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

//go:embed data/eff_large_wordlist.txt
var effWordlistData string

var defaultDict *Dictionary

func init() {
	defaultDict = buildEFF(effWordlistData)
}

// buildEFF parses the diceroll<TAB>word format build.rs reads from the EFF
// large wordlist, taking the second tab-separated field of each line.
func buildEFF(data string) *Dictionary {
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	tokens := make([]string, 0, len(lines))
	for _, ln := range lines {
		if ln == "" {
			continue
		}
		parts := strings.SplitN(ln, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		tokens = append(tokens, parts[1])
	}
	return Build(tokens)
}

// Default returns the built-in 7776-word dictionary embedded from
// data/eff_large_wordlist.txt. Its words, and therefore its content hash, are
// not those of the EFF large wordlist.
func Default() *Dictionary { return defaultDict }
