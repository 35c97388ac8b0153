package schema

import (
	"fmt"
	"sort"
)

const (
	surrogateStart = 0xD800
	surrogateEnd   = 0xDFFF
	surrogateGap   = surrogateEnd - surrogateStart + 1 // 0x800
)

// CharRange is a closed interval [Start, End] of Unicode scalar values. It
// never straddles only part of the surrogate block; Start/End are always
// themselves valid scalar values.
type CharRange struct {
	Start, End rune
}

// size returns the number of scalar values in r, excluding the surrogate
// block if r spans it.
func (r CharRange) size() uint64 {
	count := uint64(r.End) - uint64(r.Start) + 1
	if r.Start < surrogateStart && r.End >= 0xE000 {
		count -= surrogateGap
	}
	return count
}

// nth returns the n'th scalar value in r (0-indexed), skipping the
// surrogate block if r spans it.
func (r CharRange) nth(n uint64) rune {
	res := uint64(r.Start) + n
	if r.Start < surrogateStart && res >= surrogateStart {
		res += surrogateGap
	}
	return rune(res)
}

// Chars is a set of non-overlapping, sorted character ranges.
type Chars struct {
	ranges []CharRange
}

// Ranges returns the coalesced ranges backing c, in ascending order. The
// caller must not modify the returned slice.
func (c *Chars) Ranges() []CharRange { return c.ranges }

// NewChars builds a Chars from possibly overlapping or unsorted ranges,
// sorting and coalescing adjacent or overlapping ranges — including across
// the surrogate gap, so [U+0000-U+D7FF] and [U+E000-U+10FFFF] merge into a
// single logical range.
func NewChars(ranges []CharRange) *Chars {
	rs := make([]CharRange, len(ranges))
	copy(rs, ranges)
	sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })

	i, j := 0, 1
	for j < len(rs) {
		next, ok := nextScalar(rs[i].End)
		if !ok || next < rs[j].Start {
			if j != i+1 {
				rs[i+1] = rs[j]
			}
			i++
			j++
			continue
		}
		if rs[j].End > rs[i].End {
			rs[i].End = rs[j].End
		}
		j++
	}
	rs = rs[:i+1]
	return &Chars{ranges: rs}
}

// nextScalar returns the scalar value immediately after c, skipping the
// surrogate block, or false if c is the maximum scalar value.
func nextScalar(c rune) (rune, bool) {
	if c == surrogateStart-1 { // 0xD7FF
		return 0xE000, true
	}
	if c == 0x10FFFF {
		return 0, false
	}
	return c + 1, true
}

// Size returns the total number of scalar values denoted by c.
func (c *Chars) Size() uint64 {
	var total uint64
	for _, r := range c.ranges {
		total += r.size()
	}
	return total
}

// Nth returns the n'th scalar value denoted by c, in ascending order.
func (c *Chars) Nth(n uint64) rune {
	for _, r := range c.ranges {
		sz := r.size()
		if n < sz {
			return r.nth(n)
		}
		n -= sz
	}
	panic(fmt.Sprintf("schema: index %d out of range for Chars", n))
}

var (
	lowerRanges  = []CharRange{{'a', 'z'}}
	upperRanges  = []CharRange{{'A', 'Z'}}
	alphaRanges  = []CharRange{{'A', 'Z'}, {'a', 'z'}}
	alnumRanges  = []CharRange{{'0', '9'}, {'A', 'Z'}, {'a', 'z'}}
	digitRanges  = []CharRange{{'0', '9'}}
	xdigitRanges = []CharRange{{'0', '9'}, {'a', 'f'}}
	punctRanges  = []CharRange{{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}}
	printRanges  = []CharRange{{' ', '~'}}
	wordRanges   = []CharRange{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
)
