// Package record implements private records: the plaintext value
// bundles owned by an account, their encrypted on-chain form, and the
// serial numbers that spend them.
package record

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"aleosdk/account"
)

// Plaintext is a decrypted record: a microcredit balance bound to one
// owner, randomized by a nonce.
type Plaintext struct {
	Owner        *account.Address
	Microcredits uint64
	Nonce        fr.Element
}

// NewPlaintext builds a record for the given owner and balance with a
// caller-supplied nonce. Nonces must be unique per record; commitments
// collide otherwise.
func NewPlaintext(owner *account.Address, microcredits uint64, nonce fr.Element) *Plaintext {
	return &Plaintext{Owner: owner, Microcredits: microcredits, Nonce: nonce}
}

// Commitment binds the record contents: cm = H(owner, microcredits, nonce).
func (p *Plaintext) Commitment() fr.Element {
	return account.HashFields(p.Owner.Field(), account.FieldFromUint64(p.Microcredits), p.Nonce)
}

// String renders the record in its canonical textual form, the form
// program inputs carry:
//
//	{ owner: aleo1..., microcredits: 1500000u64, _nonce: 123field }
func (p *Plaintext) String() string {
	return fmt.Sprintf("{ owner: %s, microcredits: %du64, _nonce: %sfield }",
		p.Owner, p.Microcredits, p.Nonce.String())
}

// ParsePlaintext parses the textual form produced by String.
func ParsePlaintext(s string) (*Plaintext, error) {
	body := strings.TrimSpace(s)
	if !strings.HasPrefix(body, "{") || !strings.HasSuffix(body, "}") {
		return nil, fmt.Errorf("invalid record plaintext: missing braces")
	}
	body = strings.TrimSpace(body[1 : len(body)-1])

	rec := &Plaintext{}
	seen := map[string]bool{}
	for _, part := range strings.Split(body, ",") {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid record plaintext entry %q", strings.TrimSpace(part))
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "owner":
			owner, err := account.ParseAddress(value)
			if err != nil {
				return nil, fmt.Errorf("invalid record owner: %w", err)
			}
			rec.Owner = owner
		case "microcredits":
			raw := strings.TrimSuffix(value, "u64")
			if raw == value {
				return nil, fmt.Errorf("invalid record balance %q: missing u64 suffix", value)
			}
			amount, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid record balance %q: %w", value, err)
			}
			rec.Microcredits = amount
		case "_nonce":
			raw := strings.TrimSuffix(value, "field")
			if raw == value {
				return nil, fmt.Errorf("invalid record nonce %q: missing field suffix", value)
			}
			if _, err := rec.Nonce.SetString(raw); err != nil {
				return nil, fmt.Errorf("invalid record nonce %q: %w", value, err)
			}
		default:
			return nil, fmt.Errorf("unknown record entry %q", key)
		}
		seen[key] = true
	}
	for _, required := range []string{"owner", "microcredits", "_nonce"} {
		if !seen[required] {
			return nil, fmt.Errorf("record plaintext is missing %q", required)
		}
	}
	return rec, nil
}

// SerialNumber deterministically tags the record for double-spend
// detection: sn = H(sk, cm, program id, record name). A pure function
// of its inputs.
func (p *Plaintext) SerialNumber(key *account.PrivateKey, programID, name string) (string, error) {
	if programID == "" {
		return "", fmt.Errorf("serial number derivation requires a program id")
	}
	if name == "" {
		return "", fmt.Errorf("serial number derivation requires a record name")
	}
	sn := account.HashFields(
		key.Scalar(),
		p.Commitment(),
		account.FieldFromString(programID),
		account.FieldFromString(name),
	)
	return sn.String() + "field", nil
}
