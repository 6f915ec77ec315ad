// Package prove implements the proving engine on gnark's Groth16
// backend over BLS12-377: key synthesis per program function, execution
// and fee proofs, and their verification.
package prove

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/rs/zerolog"

	"aleosdk/account"
	"aleosdk/process"
	"aleosdk/program"
)

// Engine synthesizes keys and produces/verifies Groth16 proofs. Safe
// for concurrent use; compiled constraint systems are built once and
// shared.
type Engine struct {
	logger zerolog.Logger
	store  *KeyStore

	execOnce sync.Once
	execCCS  constraint.ConstraintSystem
	execErr  error

	feeOnce sync.Once
	feeCCS  constraint.ConstraintSystem
	feeErr  error
}

// NewEngine creates an engine logging to logger.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// WithKeyStore attaches a disk key store: synthesized keys are loaded
// from and persisted to it.
func (e *Engine) WithKeyStore(store *KeyStore) *Engine {
	e.store = store
	return e
}

// SynthesizeKeys produces the Groth16 key pair for one program
// function. Fee proofs use the fee circuit; everything else uses the
// execution circuit.
func (e *Engine) SynthesizeKeys(prog *program.Program, function string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if _, err := prog.Function(function); err != nil {
		return nil, nil, err
	}
	if e.store != nil {
		if pk, vk, err := e.store.Load(prog.ID(), function); err == nil {
			e.logger.Debug().Str("program", prog.ID()).Str("function", function).Msg("loaded keys from store")
			return pk, vk, nil
		}
	}
	ccs, err := e.constraintSystem(function == "fee")
	if err != nil {
		return nil, nil, err
	}
	e.logger.Info().Str("program", prog.ID()).Str("function", function).Msg("synthesizing proving and verifying keys")
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, fmt.Errorf("key synthesis for %s/%s failed: %w", prog.ID(), function, err)
	}
	if e.store != nil {
		if err := e.store.Save(prog.ID(), function, pk, vk); err != nil {
			return nil, nil, err
		}
	}
	return pk, vk, nil
}

// ProveExecution proves a prepared trace and returns the immutable
// execution artifact.
func (e *Engine) ProveExecution(trace *process.Trace, pk groth16.ProvingKey) (*process.Execution, error) {
	if !trace.Prepared() {
		return nil, fmt.Errorf("cannot prove an execution before inclusion data is attached")
	}
	ids, err := paddedTransitionIDs(trace.Transitions)
	if err != nil {
		return nil, err
	}
	digest := traceDigest(ids)

	assignment := &executionCircuit{Digest: digest.String()}
	for i := range ids {
		assignment.TransitionIDs[i] = ids[i].String()
	}
	proof, err := e.prove(false, pk, assignment)
	if err != nil {
		return nil, fmt.Errorf("execution proof generation failed: %w", err)
	}
	return &process.Execution{
		Transitions:     trace.Transitions,
		GlobalStateRoot: trace.StateRoot(),
		Proof:           proof,
	}, nil
}

// VerifyExecution checks an execution proof against the verifying key,
// recomputing the trace digest from the execution's transitions.
func (e *Engine) VerifyExecution(execution *process.Execution, vk groth16.VerifyingKey) error {
	ids, err := paddedTransitionIDs(execution.Transitions)
	if err != nil {
		return err
	}
	digest := traceDigest(ids)
	public := &executionCircuit{Digest: digest.String()}
	for i := range ids {
		public.TransitionIDs[i] = ids[i].String()
	}
	if err := e.verify(execution.Proof, vk, public); err != nil {
		return fmt.Errorf("execution verification failed: %w", err)
	}
	return nil
}

// ProveFee proves a fee trace. The trace must be bound to an execution
// id and carry exactly the single fee transition.
func (e *Engine) ProveFee(trace *process.Trace, pk groth16.ProvingKey) (*process.Fee, error) {
	if trace.BoundExecutionID == "" {
		return nil, fmt.Errorf("cannot prove a fee that is not bound to an execution id")
	}
	if len(trace.Transitions) != 1 {
		return nil, fmt.Errorf("a fee trace must contain exactly one transition, got %d", len(trace.Transitions))
	}
	if !trace.Prepared() {
		return nil, fmt.Errorf("cannot prove a fee before inclusion data is attached")
	}
	transition := trace.Transitions[0]
	executionID := account.FieldFromString(trace.BoundExecutionID)
	transitionID := account.FieldFromString(transition.ID)
	digest := account.HashFields(transitionID, executionID)

	assignment := &feeCircuit{
		ExecutionID:  executionID.String(),
		Digest:       digest.String(),
		TransitionID: transitionID.String(),
	}
	proof, err := e.prove(true, pk, assignment)
	if err != nil {
		return nil, fmt.Errorf("fee proof generation failed: %w", err)
	}
	return &process.Fee{
		Transition:      transition,
		ExecutionID:     trace.BoundExecutionID,
		GlobalStateRoot: trace.StateRoot(),
		Proof:           proof,
	}, nil
}

// VerifyFee checks a fee proof against the verifying key and the
// execution id the fee must be bound to.
func (e *Engine) VerifyFee(fee *process.Fee, vk groth16.VerifyingKey, executionID string) error {
	if fee.ExecutionID != executionID {
		return fmt.Errorf("fee verification failed: fee is bound to execution %s, not %s", fee.ExecutionID, executionID)
	}
	executionIDField := account.FieldFromString(executionID)
	transitionID := account.FieldFromString(fee.Transition.ID)
	digest := account.HashFields(transitionID, executionIDField)
	public := &feeCircuit{
		ExecutionID: executionIDField.String(),
		Digest:      digest.String(),
	}
	if err := e.verify(fee.Proof, vk, public); err != nil {
		return fmt.Errorf("fee verification failed: %w", err)
	}
	return nil
}

func (e *Engine) prove(fee bool, pk groth16.ProvingKey, assignment frontend.Circuit) ([]byte, error) {
	ccs, err := e.constraintSystem(fee)
	if err != nil {
		return nil, err
	}
	witness, err := frontend.NewWitness(assignment, ecc.BLS12_377.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("witness creation failed: %w", err)
	}
	proof, err := groth16.Prove(ccs, pk, witness)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("proof marshaling failed: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) verify(proofBytes []byte, vk groth16.VerifyingKey, public frontend.Circuit) error {
	witness, err := frontend.NewWitness(public, ecc.BLS12_377.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("public witness creation failed: %w", err)
	}
	proof := groth16.NewProof(ecc.BLS12_377)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return fmt.Errorf("proof unmarshaling failed: %w", err)
	}
	return groth16.Verify(proof, vk, witness)
}

func (e *Engine) constraintSystem(fee bool) (constraint.ConstraintSystem, error) {
	if fee {
		e.feeOnce.Do(func() {
			e.feeCCS, e.feeErr = frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &feeCircuit{})
		})
		if e.feeErr != nil {
			return nil, fmt.Errorf("fee circuit compilation failed: %w", e.feeErr)
		}
		return e.feeCCS, nil
	}
	e.execOnce.Do(func() {
		e.execCCS, e.execErr = frontend.Compile(ecc.BLS12_377.ScalarField(), r1cs.NewBuilder, &executionCircuit{})
	})
	if e.execErr != nil {
		return nil, fmt.Errorf("execution circuit compilation failed: %w", e.execErr)
	}
	return e.execCCS, nil
}

func paddedTransitionIDs(transitions []*process.Transition) ([MaxTransitions]fr.Element, error) {
	var ids [MaxTransitions]fr.Element
	if len(transitions) == 0 {
		return ids, fmt.Errorf("cannot prove an empty trace")
	}
	if len(transitions) > MaxTransitions {
		return ids, fmt.Errorf("trace has %d transitions, the proof system supports at most %d", len(transitions), MaxTransitions)
	}
	for i, transition := range transitions {
		ids[i] = account.FieldFromString(transition.ID)
	}
	return ids, nil
}

func traceDigest(ids [MaxTransitions]fr.Element) fr.Element {
	return account.HashFields(ids[:]...)
}
