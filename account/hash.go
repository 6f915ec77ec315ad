package account

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr/mimc"
)

// HashFields computes the native MiMC hash of the given field elements,
// reduced back into the scalar field. All protocol hashing (key
// derivation, commitments, serial numbers, digests) goes through this
// single primitive so in-circuit MiMC gadgets can reproduce it.
func HashFields(elems ...fr.Element) fr.Element {
	h := mimc.NewMiMC()
	for i := range elems {
		b := elems[i].Bytes()
		h.Write(b[:])
	}
	var out fr.Element
	out.SetBytes(h.Sum(nil))
	return out
}

// FieldFromBytes maps arbitrary bytes into the scalar field
// (big-endian, reduced modulo r).
func FieldFromBytes(data []byte) fr.Element {
	var e fr.Element
	e.SetBytes(data)
	return e
}

// FieldFromString maps a textual identifier (program id, record name)
// into the scalar field. Deterministic; used as domain separation in
// serial-number derivation.
func FieldFromString(s string) fr.Element {
	return FieldFromBytes([]byte(s))
}

// FieldFromUint64 lifts an unsigned integer into the scalar field.
func FieldFromUint64(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}
