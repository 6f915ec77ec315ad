package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/mr-tron/base58"

	"aleosdk/account"
)

const ciphertextPrefix = "record1"

// Ciphertext is the encrypted form of a record. The nonce and the
// commitment travel in the clear; owner and balance are masked with a
// MiMC chain keyed by the owner's view key.
type Ciphertext struct {
	Nonce        fr.Element
	OwnerCipher  fr.Element
	AmountCipher fr.Element
	Commitment   fr.Element
}

type ciphertextJSON struct {
	Nonce      string `json:"nonce"`
	Owner      string `json:"owner"`
	Amount     string `json:"amount"`
	Commitment string `json:"commitment"`
}

// Encrypt masks the record under the owner's view key. The mask chain
// is seeded by H(vk, nonce) and extended by rehashing, so each field
// gets an independent mask.
func Encrypt(p *Plaintext, viewKey *account.ViewKey) *Ciphertext {
	m1, m2 := maskChain(viewKey, p.Nonce)
	var ownerC, amountC fr.Element
	owner := p.Owner.Field()
	amount := account.FieldFromUint64(p.Microcredits)
	ownerC.Add(&owner, &m1)
	amountC.Add(&amount, &m2)
	return &Ciphertext{
		Nonce:        p.Nonce,
		OwnerCipher:  ownerC,
		AmountCipher: amountC,
		Commitment:   p.Commitment(),
	}
}

// Decrypt unmasks the record with the view key. It fails if the view
// key is not the owner's: the unmasked owner must match the view key's
// address and the unmasked fields must recommit to the transmitted
// commitment.
func (c *Ciphertext) Decrypt(viewKey *account.ViewKey) (*Plaintext, error) {
	m1, m2 := maskChain(viewKey, c.Nonce)
	var owner, amount fr.Element
	owner.Sub(&c.OwnerCipher, &m1)
	amount.Sub(&c.AmountCipher, &m2)

	expected := viewKey.Address().Field()
	if !owner.Equal(&expected) {
		return nil, fmt.Errorf("record decryption failed: view key does not own this record")
	}
	if !amount.IsUint64() {
		return nil, fmt.Errorf("record decryption failed: malformed balance")
	}
	p := &Plaintext{
		Owner:        viewKey.Address(),
		Microcredits: amount.Uint64(),
		Nonce:        c.Nonce,
	}
	cm := p.Commitment()
	if !cm.Equal(&c.Commitment) {
		return nil, fmt.Errorf("record decryption failed: commitment mismatch")
	}
	return p, nil
}

// String encodes the ciphertext as record1 followed by the base58 of
// its serialized fields.
func (c *Ciphertext) String() string {
	payload, _ := json.Marshal(ciphertextJSON{
		Nonce:      c.Nonce.String(),
		Owner:      c.OwnerCipher.String(),
		Amount:     c.AmountCipher.String(),
		Commitment: c.Commitment.String(),
	})
	return ciphertextPrefix + base58.Encode(payload)
}

// ParseCiphertext decodes the textual form produced by String.
func ParseCiphertext(s string) (*Ciphertext, error) {
	if !strings.HasPrefix(s, ciphertextPrefix) {
		return nil, fmt.Errorf("invalid record ciphertext: missing %q prefix", ciphertextPrefix)
	}
	payload, err := base58.Decode(strings.TrimPrefix(s, ciphertextPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid record ciphertext: %w", err)
	}
	var enc ciphertextJSON
	if err := json.Unmarshal(payload, &enc); err != nil {
		return nil, fmt.Errorf("invalid record ciphertext: %w", err)
	}
	var c Ciphertext
	for _, f := range []struct {
		dst *fr.Element
		src string
	}{
		{&c.Nonce, enc.Nonce},
		{&c.OwnerCipher, enc.Owner},
		{&c.AmountCipher, enc.Amount},
		{&c.Commitment, enc.Commitment},
	} {
		if _, err := f.dst.SetString(f.src); err != nil {
			return nil, fmt.Errorf("invalid record ciphertext field: %w", err)
		}
	}
	return &c, nil
}

func maskChain(viewKey *account.ViewKey, nonce fr.Element) (fr.Element, fr.Element) {
	m1 := account.HashFields(viewKey.Scalar(), nonce)
	m2 := account.HashFields(m1)
	return m1, m2
}
