package process

import (
	"encoding/json"
	"fmt"

	"aleosdk/account"
)

// Transaction kinds.
const (
	TransactionExecute = "execute"
	TransactionDeploy  = "deploy"
)

// Deployment carries a program's source plus the verifying keys that
// certify its functions compile to valid circuits.
type Deployment struct {
	ProgramID     string            `json:"program_id"`
	Program       string            `json:"program"`
	VerifyingKeys map[string][]byte `json:"verifying_keys"`
}

// Bytes serializes the deployment; its length is the storage cost basis.
func (d *Deployment) Bytes() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("deployment serialization failed: %w", err)
	}
	return data, nil
}

// Transaction is the assembled, submittable artifact: either an
// execution with an optional fee, or a deployment. Immutable once
// assembled.
type Transaction struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Execution  *Execution  `json:"execution,omitempty"`
	Fee        *Fee        `json:"fee,omitempty"`
	Deployment *Deployment `json:"deployment,omitempty"`
}

// FromExecution assembles an execution transaction. When a fee is
// present its bound execution id must match the execution's own id.
func FromExecution(execution *Execution, fee *Fee) (*Transaction, error) {
	executionID, err := execution.ExecutionID()
	if err != nil {
		return nil, err
	}
	if fee != nil && fee.ExecutionID != executionID {
		return nil, fmt.Errorf("fee is bound to execution %s, not %s", fee.ExecutionID, executionID)
	}
	return &Transaction{
		ID:        transactionID(TransactionExecute, executionID),
		Type:      TransactionExecute,
		Execution: execution,
		Fee:       fee,
	}, nil
}

// FromDeployment assembles a deployment transaction with an optional
// deploy fee.
func FromDeployment(deployment *Deployment, fee *Fee) (*Transaction, error) {
	if len(deployment.VerifyingKeys) == 0 {
		return nil, fmt.Errorf("attempted to create an empty transaction deployment")
	}
	return &Transaction{
		ID:         transactionID(TransactionDeploy, deployment.ProgramID),
		Type:       TransactionDeploy,
		Deployment: deployment,
		Fee:        fee,
	}, nil
}

// String serializes the transaction for submission.
func (t *Transaction) String() (string, error) {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("transaction serialization failed: %w", err)
	}
	return string(data), nil
}

func transactionID(kind, payload string) string {
	id := account.HashFields(account.FieldFromString(kind), account.FieldFromString(payload))
	return "at1" + id.Text(16)
}
