package account

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyDerivationIsDeterministic(t *testing.T) {
	a := FromSeed([]byte("test seed"))
	b := FromSeed([]byte("test seed"))
	require.Equal(t, a.String(), b.String())
	require.Equal(t, a.ViewKey().String(), b.ViewKey().String())
	require.Equal(t, a.Address().String(), b.Address().String())

	c := FromSeed([]byte("another seed"))
	require.NotEqual(t, a.Address().String(), c.Address().String())
}

func TestPrivateKeyRoundTrip(t *testing.T) {
	key, err := New()
	require.NoError(t, err)

	parsed, err := ParsePrivateKey(key.String())
	require.NoError(t, err)
	require.True(t, parsed.Address().Equal(key.Address()))
}

func TestViewKeyAndAddressRoundTrip(t *testing.T) {
	key := FromSeed([]byte("round trip"))

	vk, err := ParseViewKey(key.ViewKey().String())
	require.NoError(t, err)
	require.True(t, vk.Address().Equal(key.Address()))

	addr, err := ParseAddress(key.Address().String())
	require.NoError(t, err)
	require.True(t, addr.Equal(key.Address()))
}

func TestParseRejectsWrongPrefix(t *testing.T) {
	key := FromSeed([]byte("prefixes"))

	_, err := ParsePrivateKey(key.Address().String())
	require.Error(t, err)
	_, err = ParseViewKey(key.String())
	require.Error(t, err)
	_, err = ParseAddress("AViewKey1abc")
	require.Error(t, err)
	_, err = ParseAddress("aleo1!!!not-base58!!!")
	require.Error(t, err)
}

func TestHashFieldsIsOrderSensitive(t *testing.T) {
	a := FieldFromUint64(1)
	b := FieldFromUint64(2)
	require.False(t, func() bool {
		x := HashFields(a, b)
		y := HashFields(b, a)
		return x.Equal(&y)
	}())

	x := HashFields(a, b)
	y := HashFields(a, b)
	require.True(t, x.Equal(&y))
}
