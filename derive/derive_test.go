package derive_test

import (
	"encoding/hex"
	"testing"

	"github.com/creachadair/onepass/derive"
	"github.com/creachadair/onepass/internal/bignat"
	"github.com/creachadair/onepass/schema"
)

// Scenario F: derivation salt for two records differing only in username.
func TestDerivationSaltScenarioF(t *testing.T) {
	schemaRepr := "{words|323606b363ebdedff9f562cb84c50df1a21cbd4b597ff4566df92bb9f2cefdfd}"

	rec := derive.Record{
		URL:    "https://google.com/",
		Schema: schemaRepr,
	}
	wantSerialized := "v3\thttps://google.com/\t\t" + schemaRepr + "\t0"
	if got := rec.Serialize(); got != wantSerialized {
		t.Fatalf("Serialize() = %q, want %q", got, wantSerialized)
	}
	salt := rec.Salt()
	wantSalt := "54fdc7b0a714e494b08563043429c9343e32680cbc7a9d4b23287db322c583ba"
	if got := hex.EncodeToString(salt[:]); got != wantSalt {
		t.Errorf("Salt() = %s, want %s", got, wantSalt)
	}

	recWithUser := rec
	recWithUser.Username = "me@example.com"
	saltWithUser := recWithUser.Salt()
	wantSaltWithUser := "8c6ffa25db380192f6aa494eb01d281aae89d39d1f8e6ea343f60b97e6d26a9a"
	if got := hex.EncodeToString(saltWithUser[:]); got != wantSaltWithUser {
		t.Errorf("Salt() with username = %s, want %s", got, wantSaltWithUser)
	}
}

// Scenario G pins the Argon2id secret for a fixed record whose schema repr
// names the upstream EFF wordlist hash. The secret depends only on the seed
// and the serialized record, not on the dictionary embedded in dict, and no
// password is rendered here (see TestSiteSecretScenarioGPassword for that).
// Argon2id at the spec's m=256MiB/t=4 parameters takes real wall-clock time;
// skip in short mode.
func TestSiteSecretScenarioG(t *testing.T) {
	if testing.Short() {
		t.Skip("Argon2id at full parameters is slow; skipped in -short mode")
	}
	schemaRepr := "{words|323606b363ebdedff9f562cb84c50df1a21cbd4b597ff4566df92bb9f2cefdfd}"
	rec := derive.Record{URL: "https://google.com/", Schema: schemaRepr}

	secret := derive.Secret([]byte("testpass"), rec)
	want := "a89b5d180f4bda7a2ab4b090c18668f8d673d5743f7d9b58d737fede04bd7e12"
	if got := hex.EncodeToString(secret[:]); got != want {
		t.Errorf("Secret() = %s, want %s", got, want)
	}
}

// TestSiteSecretScenarioGPassword exercises the full pipeline end to end: a
// {word} schema against the real default dictionary, canonicalized to its
// repr (which embeds the dictionary's content hash), then derived into a
// single literal word.
func TestSiteSecretScenarioGPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("Argon2id at full parameters is slow; skipped in -short mode")
	}
	ctx := schema.NewContext()
	node, err := schema.Parse("{word}")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	canonical, err := schema.Repr(ctx, node)
	if err != nil {
		t.Fatalf("Repr: %v", err)
	}
	wantRepr := "{word|abc949b207e1769e25097323200c88cedbee91304cddc3368328dff50c6cb344}"
	if canonical != wantRepr {
		t.Fatalf("Repr() = %s, want %s", canonical, wantRepr)
	}

	rec := derive.Record{URL: "https://google.com/", Schema: canonical}
	secret := derive.Secret([]byte("testpass"), rec)
	wantSecret := "c9e498ab2af26d8171fb3e7bf9553e83bba8861ac5d4f6d861cac0394e50a75c"
	if got := hex.EncodeToString(secret[:]); got != wantSecret {
		t.Fatalf("Secret() = %s, want %s", got, wantSecret)
	}

	password, err := derive.Password([]byte("testpass"), rec, ctx, node)
	if err != nil {
		t.Fatalf("Password: %v", err)
	}
	if want := "validate"; password != want {
		t.Errorf("Password() = %q, want %q", password, want)
	}
}

// Scenario C: uniform sampling vectors.
func TestUniformIndexScenarioC(t *testing.T) {
	var zeroSecret [32]byte
	n := bignat.Sub(bignat.Pow(bignat.FromUint64(2), 256), bignat.One()) // 2^256 - 1
	got := derive.UniformIndex(zeroSecret, n)
	want, err := hexToBigEndianNat("C70D778BCCEF36A81AED8DA0B819D2BD28BD8653E56A5D40903DF1A0ADE0B876")
	if err != nil {
		t.Fatalf("decode want: %v", err)
	}
	if bignat.Cmp(got, want) != 0 {
		t.Errorf("UniformIndex(0, 2^256-1) = %s, want %s", bignat.Dec(got), bignat.Dec(want))
	}

	one := bignat.One()
	for _, secret := range [][32]byte{zeroSecret, {1, 2, 3}, {0xff}} {
		if got := derive.UniformIndex(secret, one); !bignat.IsZero(got) {
			t.Errorf("UniformIndex(secret, 1) = %s, want 0", bignat.Dec(got))
		}
	}
}

func hexToBigEndianNat(s string) (*bignat.Nat, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return bignat.FromBytesBE(b), nil
}

func TestUniformIndexAlwaysInRange(t *testing.T) {
	n := bignat.FromUint64(12356630) // Scenario E's Count(1,5) size
	for i := byte(0); i < 32; i++ {
		var secret [32]byte
		secret[0] = i
		secret[31] = i * 7
		idx := derive.UniformIndex(secret, n)
		if bignat.Cmp(idx, n) >= 0 {
			t.Errorf("UniformIndex(%v, %s) = %s, out of range", secret, bignat.Dec(n), bignat.Dec(idx))
		}
	}
}
