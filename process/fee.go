package process

import (
	"fmt"

	"aleosdk/account"
	"aleosdk/program"
	"aleosdk/record"
)

// Fee is the proven fee payment bound to one execution. Invalid if its
// bound execution id does not match the execution it pays for.
type Fee struct {
	Transition      *Transition `json:"transition"`
	ExecutionID     string      `json:"execution_id"`
	GlobalStateRoot string      `json:"global_state_root"`
	Proof           []byte      `json:"proof"`
}

// FeeBuilder constructs fee traces. It can only be created from a
// committed execution id, so a Fee cannot exist without the execution
// it binds to.
type FeeBuilder struct {
	executionID string
}

// NewFeeBuilder binds a builder to an execution id.
func NewFeeBuilder(executionID string) (*FeeBuilder, error) {
	if executionID == "" {
		return nil, fmt.Errorf("a fee cannot be built without an execution id")
	}
	return &FeeBuilder{executionID: executionID}, nil
}

// ExecutionID returns the bound execution id.
func (b *FeeBuilder) ExecutionID() string { return b.executionID }

// Execute runs the credits fee function against the fee record and
// returns the unproven fee trace, bound to the builder's execution id.
func (b *FeeBuilder) Execute(p *Process, key *account.PrivateKey, feeRecord *record.Plaintext, feeMicrocredits uint64) (*Trace, error) {
	if feeRecord == nil {
		return nil, fmt.Errorf("a fee record is required to pay the fee")
	}
	if feeRecord.Microcredits < feeMicrocredits {
		return nil, fmt.Errorf("fee amount %d exceeds fee record balance %d", feeMicrocredits, feeRecord.Microcredits)
	}
	inputs := []string{
		feeRecord.String(),
		fmt.Sprintf("%du64", feeMicrocredits),
		b.executionID,
	}
	trace, err := p.Execute(key, program.CreditsID, "fee", inputs)
	if err != nil {
		return nil, fmt.Errorf("fee execution failed: %w", err)
	}
	trace.BoundExecutionID = b.executionID
	return trace, nil
}
