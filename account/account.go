// Package account implements Aleo-style account key material: private
// keys, the view keys derived from them, and addresses.
//
// Key derivation is a MiMC chain over the BLS12-377 scalar field:
// view key = H(private key), address = H(view key). The view key alone
// suffices to decrypt records owned by the address; the private key is
// additionally required to derive serial numbers.
package account

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/mr-tron/base58"
)

// Display prefixes, in the style of the Aleo account encoding.
const (
	privateKeyPrefix = "APrivateKey1"
	viewKeyPrefix    = "AViewKey1"
	addressPrefix    = "aleo1"
)

// PrivateKey is the root account secret, a scalar of the BLS12-377
// scalar field.
type PrivateKey struct {
	sk fr.Element
}

// New generates a fresh private key from crypto/rand.
func New() (*PrivateKey, error) {
	seed := make([]byte, fr.Bytes)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("account seed generation failed: %w", err)
	}
	return FromSeed(seed), nil
}

// FromSeed derives a private key deterministically from arbitrary seed
// bytes. The seed is reduced into the scalar field.
func FromSeed(seed []byte) *PrivateKey {
	var sk fr.Element
	sk.SetBytes(seed)
	return &PrivateKey{sk: sk}
}

// ParsePrivateKey decodes the textual form produced by String.
func ParsePrivateKey(s string) (*PrivateKey, error) {
	raw, err := decodeWithPrefix(s, privateKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	var sk fr.Element
	sk.SetBytes(raw)
	return &PrivateKey{sk: sk}, nil
}

// String encodes the private key as APrivateKey1 followed by the
// base58-encoded scalar bytes.
func (p *PrivateKey) String() string {
	b := p.sk.Bytes()
	return privateKeyPrefix + base58.Encode(b[:])
}

// Scalar returns the underlying field element. Used by serial-number
// derivation and spend authorization.
func (p *PrivateKey) Scalar() fr.Element {
	return p.sk
}

// ViewKey derives the account view key, H(sk).
func (p *PrivateKey) ViewKey() *ViewKey {
	return &ViewKey{vk: HashFields(p.sk)}
}

// Address derives the account address via the view key.
func (p *PrivateKey) Address() *Address {
	return p.ViewKey().Address()
}

// ViewKey decrypts records owned by its address. It cannot authorize
// spends.
type ViewKey struct {
	vk fr.Element
}

// ParseViewKey decodes the textual form produced by String.
func ParseViewKey(s string) (*ViewKey, error) {
	raw, err := decodeWithPrefix(s, viewKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid view key: %w", err)
	}
	var vk fr.Element
	vk.SetBytes(raw)
	return &ViewKey{vk: vk}, nil
}

func (v *ViewKey) String() string {
	b := v.vk.Bytes()
	return viewKeyPrefix + base58.Encode(b[:])
}

// Scalar returns the underlying field element, the symmetric key
// material for record decryption.
func (v *ViewKey) Scalar() fr.Element {
	return v.vk
}

// Address derives the address owned by this view key, H(vk).
func (v *ViewKey) Address() *Address {
	return &Address{addr: HashFields(v.vk)}
}

// Address is the public account identifier records are owned by.
type Address struct {
	addr fr.Element
}

// ParseAddress decodes the textual form produced by String.
func ParseAddress(s string) (*Address, error) {
	raw, err := decodeWithPrefix(s, addressPrefix)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	var a fr.Element
	a.SetBytes(raw)
	return &Address{addr: a}, nil
}

func (a *Address) String() string {
	b := a.addr.Bytes()
	return addressPrefix + base58.Encode(b[:])
}

// Field returns the address as a field element, the form records store
// their owner in.
func (a *Address) Field() fr.Element {
	return a.addr
}

// Equal reports whether two addresses are the same account.
func (a *Address) Equal(other *Address) bool {
	return a.addr.Equal(&other.addr)
}

func decodeWithPrefix(s, prefix string) ([]byte, error) {
	if !strings.HasPrefix(s, prefix) {
		return nil, fmt.Errorf("missing %q prefix", prefix)
	}
	raw, err := base58.Decode(strings.TrimPrefix(s, prefix))
	if err != nil {
		return nil, fmt.Errorf("base58 decode failed: %w", err)
	}
	return raw, nil
}
