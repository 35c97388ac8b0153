// Package derive implements the cryptographic pipeline that turns a seed
// password and a site's derivation record into that site's password: build
// the canonical record, hash it to a salt, stretch the seed through
// Argon2id into a site secret, draw a uniform index into the schema's
// enumerated set with a ChaCha20-keyed RNG, and render.
package derive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20"

	"github.com/creachadair/onepass/internal/bignat"
	"github.com/creachadair/onepass/internal/scrub"
	"github.com/creachadair/onepass/internal/tsvescape"
	"github.com/creachadair/onepass/schema"
)

// recordTag is the fixed version tag prefixing every derivation record.
const recordTag = "v3"

// Argon2id parameters. Fixed; changing any of these changes every derived
// password, so they are not configurable.
const (
	argonTimeCost   = 4
	argonMemoryKiB  = 262144 // 256 MiB
	argonThreads    = 4
	argonOutputSize = 32
)

// passwordBufferSize bounds the rendered password: large enough for any
// schema this package is expected to enumerate, small enough to scrub
// cheaply on every return path.
const passwordBufferSize = 2048

// ErrIndexOutOfRange signals an index at or beyond a node's size, which
// should be unreachable given a correctly computed n.
var ErrIndexOutOfRange = errors.New("derive: index out of range")

// ErrEncoding signals that a rendered password was not valid UTF-8.
var ErrEncoding = errors.New("derive: rendered password is not valid UTF-8")

// Record is a derivation record: the complete, user-facing description of
// one site's password, independent of the seed password itself.
type Record struct {
	URL       string // canonical site URL, per siteurl.Normalize
	Username  string // empty if none
	Schema    string // canonical schema repr, per schema.Repr
	Increment int
}

// Serialize returns the bit-exact TSV encoding of r: "v3", url, username,
// schema repr, and increment joined by tabs, with TSV-meaningful characters
// in each field backslash-escaped. There is no trailing newline.
func (r Record) Serialize() string {
	fields := []string{
		recordTag,
		tsvescape.Escape(r.URL),
		tsvescape.Escape(r.Username),
		tsvescape.Escape(r.Schema),
		strconv.Itoa(r.Increment),
	}
	return strings.Join(fields, "\t")
}

// Salt returns BLAKE2b-256 of r's serialized form.
func (r Record) Salt() [32]byte {
	return blake2b.Sum256([]byte(r.Serialize()))
}

// Secret stretches seedPassword through Argon2id, salted with r's
// derivation-record hash, into the site's 32-byte secret. This is the slow
// step (by design): m=256 MiB, t=4, p=4.
//
// The caller owns seedPassword and is responsible for scrubbing it; Secret
// does not retain or mutate it.
func Secret(seedPassword []byte, r Record) [32]byte {
	salt := r.Salt()
	defer scrub.Array32(&salt)
	out := argon2.IDKey(seedPassword, salt[:], argonTimeCost, argonMemoryKiB, argonThreads, argonOutputSize)
	defer scrub.Bytes(out)
	var secret [32]byte
	copy(secret[:], out)
	return secret
}

// UniformIndex draws a uniform index in [0, n) from a ChaCha20 stream keyed
// by secret (nonce zero), using rejection sampling with a power-of-two fast
// path. n must be >= 1; secret is not modified.
func UniformIndex(secret [32]byte, n *bignat.Nat) *bignat.Nat {
	if bignat.IsOne(n) {
		return bignat.Zero()
	}
	bitLen := bignat.BitLen(n)
	stream, err := chacha20.NewUnauthenticatedCipher(secret[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		// secret is exactly chacha20.KeySize (32) bytes and the nonce is
		// exactly chacha20.NonceSize bytes; this cannot fail.
		panic(err)
	}

	if bignat.IsPowerOfTwo(n) {
		return drawBits(stream, bitLen-1)
	}

	nBytes := (bitLen + 7) / 8
	topBits := bitLen % 8
	if topBits == 0 {
		topBits = 8
	}
	topMask := byte(0xff) >> (8 - topBits)

	for {
		buf := make([]byte, nBytes)
		stream.XORKeyStream(buf, buf)
		buf[nBytes-1] &= topMask
		candidate := bignat.FromBytesLE(buf)
		scrub.Bytes(buf)
		if bignat.Cmp(candidate, n) < 0 {
			return candidate
		}
	}
}

// drawBits returns a value built from exactly nbits random bits, read as a
// little-endian bit stream from stream's keystream.
func drawBits(stream *chacha20.Cipher, nbits int) *bignat.Nat {
	if nbits <= 0 {
		return bignat.Zero()
	}
	nBytes := (nbits + 7) / 8
	buf := make([]byte, nBytes)
	stream.XORKeyStream(buf, buf)
	topBits := nbits % 8
	if topBits != 0 {
		buf[nBytes-1] &= byte(0xff) >> (8 - topBits)
	}
	v := bignat.FromBytesLE(buf)
	scrub.Bytes(buf)
	return v
}

// Password derives the full site password for seedPassword and record: it
// computes the secret, draws a uniform index into root's enumerated set,
// and renders the index'th string. The secret and index are scrubbed before
// Password returns on every path. As with Secret, the caller owns
// seedPassword and is responsible for scrubbing it.
func Password(seedPassword []byte, record Record, ctx *schema.Context, root *schema.Node) (string, error) {
	secret := Secret(seedPassword, record)
	defer scrub.Array32(&secret)

	n := root.Size(ctx)
	index := UniformIndex(secret, n)
	defer index.Clear()

	w := &boundedBuffer{buf: make([]byte, passwordBufferSize)}
	defer scrub.Bytes(w.buf)

	if err := root.WriteAt(ctx, w, index); err != nil {
		return "", fmt.Errorf("derive: render: %w", err)
	}

	out := w.buf[:w.n]
	if i := indexOfZero(out); i >= 0 {
		out = out[:i]
	}
	if !utf8.Valid(out) {
		return "", ErrEncoding
	}
	return string(out), nil
}

// boundedBuffer is a fixed-capacity io.Writer backing the password render,
// so a schema that would overflow it fails loudly rather than silently
// reallocating (and leaving password residue in the old allocation).
type boundedBuffer struct {
	buf []byte
	n   int
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.n+len(p) > len(b.buf) {
		return 0, fmt.Errorf("derive: rendered password exceeds %d-byte buffer", len(b.buf))
	}
	copy(b.buf[b.n:], p)
	b.n += len(p)
	return len(p), nil
}

func indexOfZero(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
