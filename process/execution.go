package process

import (
	"encoding/json"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"

	"aleosdk/account"
)

// Execution is a proven, verifiable trace. Immutable once produced;
// its id deterministically binds it to exactly one fee payment.
type Execution struct {
	Transitions     []*Transition `json:"transitions"`
	GlobalStateRoot string        `json:"global_state_root"`
	Proof           []byte        `json:"proof"`
}

// ExecutionID digests the transition ids into the value a fee payment
// binds to.
func (e *Execution) ExecutionID() (string, error) {
	if len(e.Transitions) == 0 {
		return "", fmt.Errorf("cannot compute the id of an empty execution")
	}
	elems := make([]fr.Element, 0, len(e.Transitions))
	for _, transition := range e.Transitions {
		elems = append(elems, account.FieldFromString(transition.ID))
	}
	id := account.HashFields(elems...)
	return id.String() + "field", nil
}

// Bytes serializes the execution; its length is the storage cost basis.
func (e *Execution) Bytes() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("execution serialization failed: %w", err)
	}
	return data, nil
}

// SizeInBytes returns the serialized size of the execution.
func (e *Execution) SizeInBytes() (uint64, error) {
	data, err := e.Bytes()
	if err != nil {
		return 0, err
	}
	return uint64(len(data)), nil
}
