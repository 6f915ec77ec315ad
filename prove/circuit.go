package prove

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
)

// MaxTransitions caps the trace width one execution proof covers.
// Shorter traces are zero-padded; longer traces are rejected before
// proving.
const MaxTransitions = 8

// executionCircuit proves knowledge of the transition ids behind a
// public trace digest: digest = H(id_0, ..., id_7).
type executionCircuit struct {
	Digest frontend.Variable `gnark:",public"`

	TransitionIDs [MaxTransitions]frontend.Variable
}

func (c *executionCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	for i := 0; i < MaxTransitions; i++ {
		hasher.Write(c.TransitionIDs[i])
	}
	api.AssertIsEqual(c.Digest, hasher.Sum())
	return nil
}

// feeCircuit binds a fee payment to one execution: the public digest
// commits to the fee transition together with the public execution id,
// so a proof for one execution id cannot verify against another.
type feeCircuit struct {
	ExecutionID frontend.Variable `gnark:",public"`
	Digest      frontend.Variable `gnark:",public"`

	TransitionID frontend.Variable
}

func (c *feeCircuit) Define(api frontend.API) error {
	hasher, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}
	hasher.Write(c.TransitionID)
	hasher.Write(c.ExecutionID)
	api.AssertIsEqual(c.Digest, hasher.Sum())
	return nil
}
