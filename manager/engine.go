package manager

import (
	"github.com/consensys/gnark/backend/groth16"

	"aleosdk/process"
	"aleosdk/program"
)

// Engine is the proving collaborator the manager drives. prove.Engine
// is the production implementation; tests substitute fakes.
type Engine interface {
	// SynthesizeKeys produces the key pair for one program function.
	SynthesizeKeys(prog *program.Program, function string) (groth16.ProvingKey, groth16.VerifyingKey, error)

	// ProveExecution turns a prepared trace into a proven execution.
	ProveExecution(trace *process.Trace, pk groth16.ProvingKey) (*process.Execution, error)

	// VerifyExecution checks an execution proof.
	VerifyExecution(execution *process.Execution, vk groth16.VerifyingKey) error

	// ProveFee turns a prepared, execution-bound fee trace into a fee.
	ProveFee(trace *process.Trace, pk groth16.ProvingKey) (*process.Fee, error)

	// VerifyFee checks a fee proof and its binding to executionID.
	VerifyFee(fee *process.Fee, vk groth16.VerifyingKey, executionID string) error
}
