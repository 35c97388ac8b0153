package bignat_test

import (
	"testing"

	"github.com/creachadair/onepass/internal/bignat"
)

func TestSaturatingMul(t *testing.T) {
	max := bignat.Max()
	huge := bignat.Pow(bignat.FromUint64(2), 200)
	got := bignat.Mul(huge, huge)
	if bignat.Cmp(got, max) != 0 {
		t.Fatalf("Mul(2^200, 2^200) = %v, want saturated Max", got)
	}
}

func TestSaturatingMulExact(t *testing.T) {
	got := bignat.Mul(bignat.FromUint64(6), bignat.FromUint64(7))
	if bignat.Uint64(got) != 42 {
		t.Fatalf("Mul(6,7) = %d, want 42", bignat.Uint64(got))
	}
}

func TestSaturatingAdd(t *testing.T) {
	max := bignat.Max()
	got := bignat.Add(max, bignat.One())
	if bignat.Cmp(got, max) != 0 {
		t.Fatalf("Add(Max, 1) = %v, want saturated Max", got)
	}
}

func TestPow(t *testing.T) {
	got := bignat.Pow(bignat.FromUint64(26), 4)
	if bignat.Uint64(got) != 26*26*26*26 {
		t.Fatalf("Pow(26,4) = %d, want %d", bignat.Uint64(got), 26*26*26*26)
	}
}

func TestPowSaturates(t *testing.T) {
	got := bignat.Pow(bignat.FromUint64(2), 300)
	if bignat.Cmp(got, bignat.Max()) != 0 {
		t.Fatalf("Pow(2,300) should saturate at Max, got %v", got)
	}
}

func TestDivMod(t *testing.T) {
	q, r := bignat.DivMod(bignat.FromUint64(17), bignat.FromUint64(5))
	if bignat.Uint64(q) != 3 || bignat.Uint64(r) != 2 {
		t.Fatalf("DivMod(17,5) = (%d,%d), want (3,2)", bignat.Uint64(q), bignat.Uint64(r))
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	cases := map[uint64]bool{
		0: false, 1: true, 2: true, 3: false, 4: true, 26: false, 64: true,
	}
	for v, want := range cases {
		got := bignat.IsPowerOfTwo(bignat.FromUint64(v))
		if got != want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	n := bignat.Pow(bignat.FromUint64(2), 130)
	be := bignat.BytesBE32(n)
	got := bignat.FromBytesBE(be[:])
	if bignat.Cmp(got, n) != 0 {
		t.Fatalf("BE round trip mismatch")
	}
}

func TestFromBytesLE(t *testing.T) {
	// Little-endian [0x01, 0x00] is 1, not 256.
	got := bignat.FromBytesLE([]byte{0x01, 0x00})
	if bignat.Uint64(got) != 1 {
		t.Fatalf("FromBytesLE([1,0]) = %d, want 1", bignat.Uint64(got))
	}
	got = bignat.FromBytesLE([]byte{0x00, 0x01})
	if bignat.Uint64(got) != 256 {
		t.Fatalf("FromBytesLE([0,1]) = %d, want 256", bignat.Uint64(got))
	}
}
