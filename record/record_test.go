package record

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"aleosdk/account"
)

func testRecord(t *testing.T, key *account.PrivateKey, microcredits, nonce uint64) *Plaintext {
	t.Helper()
	return NewPlaintext(key.Address(), microcredits, account.FieldFromUint64(nonce))
}

func TestPlaintextRoundTrip(t *testing.T) {
	key := account.FromSeed([]byte("record owner"))
	rec := testRecord(t, key, 1_500_000, 42)

	parsed, err := ParsePlaintext(rec.String())
	require.NoError(t, err)
	require.True(t, parsed.Owner.Equal(rec.Owner))
	require.Equal(t, rec.Microcredits, parsed.Microcredits)
	require.True(t, parsed.Nonce.Equal(&rec.Nonce))

	cm := rec.Commitment()
	cm2 := parsed.Commitment()
	require.True(t, cm.Equal(&cm2))
}

func TestParsePlaintextRejectsMalformedText(t *testing.T) {
	for name, text := range map[string]string{
		"no braces":      "owner: aleo1abc",
		"missing nonce":  "{ owner: aleo1abc, microcredits: 5u64 }",
		"bad balance":    "{ owner: aleo1abc, microcredits: five, _nonce: 1field }",
		"unknown entry":  "{ owner: aleo1abc, microcredits: 5u64, _nonce: 1field, gates: 0u64 }",
		"missing suffix": "{ owner: aleo1abc, microcredits: 5, _nonce: 1field }",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlaintext(text)
			require.Error(t, err)
		})
	}
}

func TestSerialNumberRequiresProgramAndName(t *testing.T) {
	key := account.FromSeed([]byte("sn"))
	rec := testRecord(t, key, 100, 7)

	_, err := rec.SerialNumber(key, "", "credits")
	require.Error(t, err)
	_, err = rec.SerialNumber(key, "credits.aleo", "")
	require.Error(t, err)

	a, err := rec.SerialNumber(key, "credits.aleo", "credits")
	require.NoError(t, err)
	b, err := rec.SerialNumber(key, "credits.aleo", "credits")
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.True(t, strings.HasSuffix(a, "field"))

	other, err := rec.SerialNumber(key, "other.aleo", "credits")
	require.NoError(t, err)
	require.NotEqual(t, a, other)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := account.FromSeed([]byte("owner"))
	rec := testRecord(t, key, 2_500_000, 11)

	ct := Encrypt(rec, key.ViewKey())
	parsed, err := ParseCiphertext(ct.String())
	require.NoError(t, err)

	dec, err := parsed.Decrypt(key.ViewKey())
	require.NoError(t, err)
	require.True(t, dec.Owner.Equal(rec.Owner))
	require.Equal(t, rec.Microcredits, dec.Microcredits)
}

func TestDecryptWithWrongViewKeyFails(t *testing.T) {
	owner := account.FromSeed([]byte("owner"))
	thief := account.FromSeed([]byte("thief"))
	ct := Encrypt(testRecord(t, owner, 100, 3), owner.ViewKey())

	_, err := ct.Decrypt(thief.ViewKey())
	require.Error(t, err)
}

func TestParseCiphertextRejectsGarbage(t *testing.T) {
	_, err := ParseCiphertext("not-a-record")
	require.Error(t, err)
	_, err = ParseCiphertext("record1!!!")
	require.Error(t, err)
}
