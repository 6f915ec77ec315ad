package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-377/fr"
	"github.com/mr-tron/base58"

	"aleosdk/account"
	"aleosdk/program"
	"aleosdk/query"
	"aleosdk/record"
)

// Transition records one function invocation: its inputs, outputs, and
// the serial numbers of the records it consumed.
type Transition struct {
	ID            string   `json:"id"`
	ProgramID     string   `json:"program"`
	Function      string   `json:"function"`
	Inputs        []string `json:"inputs"`
	Outputs       []string `json:"outputs"`
	SerialNumbers []string `json:"serial_numbers,omitempty"`
}

// Trace is an unproven execution: the ordered transitions produced by
// interpreting a function, plus the inclusion data attached by Prepare.
// It exists only between execution and proving.
type Trace struct {
	Transitions []*Transition

	// BoundExecutionID is set on fee traces only; it names the
	// execution the fee payment is cryptographically tied to.
	BoundExecutionID string

	stateRoot string
	inclusion map[string]*query.StatePath
}

// Execute runs a function against inputs and returns the unproven
// trace. Record inputs are validated and consumed (their serial
// numbers derived with the caller's key); cross-program call
// instructions append a transition for the callee before the caller's
// own, so callee transitions precede their caller in the trace.
func (p *Process) Execute(key *account.PrivateKey, programID, function string, inputs []string) (*Trace, error) {
	trace := &Trace{}
	if err := p.executeInto(trace, key, programID, function, inputs); err != nil {
		return nil, err
	}
	return trace, nil
}

func (p *Process) executeInto(trace *Trace, key *account.PrivateKey, programID, function string, inputs []string) error {
	stack, err := p.Stack(programID)
	if err != nil {
		return err
	}
	fn, err := stack.Program().Function(function)
	if err != nil {
		return err
	}

	for _, instruction := range fn.Instructions {
		calleeProgram, calleeFunction, ok := program.CalleeOf(instruction)
		if !ok {
			continue
		}
		operands := callOperands(instruction)
		if err := p.executeInto(trace, key, calleeProgram, calleeFunction, operands); err != nil {
			return fmt.Errorf("call into %s/%s failed: %w", calleeProgram, calleeFunction, err)
		}
	}

	transition, err := buildTransition(key, programID, fn, inputs)
	if err != nil {
		return err
	}
	trace.Transitions = append(trace.Transitions, transition)
	return nil
}

// Prepare fetches inclusion data for every transition and attaches it
// to the trace. This is the pipeline's suspension point; any failure
// leaves the trace unprepared, never partially prepared.
func (t *Trace) Prepare(ctx context.Context, client query.Client) error {
	stateRoot, err := client.StateRoot(ctx)
	if err != nil {
		return fmt.Errorf("inclusion preparation failed: %w", err)
	}
	inclusion := make(map[string]*query.StatePath, len(t.Transitions))
	for _, transition := range t.Transitions {
		path, err := client.StatePath(ctx, transition.ID)
		if err != nil {
			return fmt.Errorf("inclusion preparation failed: %w", err)
		}
		inclusion[transition.ID] = path
	}
	t.stateRoot = stateRoot
	t.inclusion = inclusion
	return nil
}

// Prepared reports whether inclusion data is attached.
func (t *Trace) Prepared() bool { return t.inclusion != nil }

// StateRoot returns the state root the trace was prepared against.
func (t *Trace) StateRoot() string { return t.stateRoot }

// Inclusion returns the attached state path for a transition.
func (t *Trace) Inclusion(transitionID string) (*query.StatePath, bool) {
	path, ok := t.inclusion[transitionID]
	return path, ok
}

func buildTransition(key *account.PrivateKey, programID string, fn *program.Function, inputs []string) (*Transition, error) {
	transition := &Transition{
		ProgramID: programID,
		Function:  fn.Name,
		Inputs:    inputs,
	}

	recordName := strings.TrimSuffix(programID, ".aleo")
	for _, input := range inputs {
		if !strings.HasPrefix(strings.TrimSpace(input), "{") {
			continue
		}
		rec, err := record.ParsePlaintext(input)
		if err != nil {
			return nil, fmt.Errorf("invalid record input for %s/%s: %w", programID, fn.Name, err)
		}
		if !rec.Owner.Equal(key.Address()) {
			return nil, fmt.Errorf("record input for %s/%s is not owned by the caller", programID, fn.Name)
		}
		serial, err := rec.SerialNumber(key, programID, recordName)
		if err != nil {
			return nil, err
		}
		transition.SerialNumbers = append(transition.SerialNumbers, serial)
	}

	seed := []fr.Element{account.FieldFromString(programID), account.FieldFromString(fn.Name)}
	for _, input := range inputs {
		seed = append(seed, account.FieldFromString(input))
	}
	outputIndex := 0
	for _, instruction := range fn.Instructions {
		if !strings.HasPrefix(instruction, "output ") {
			continue
		}
		out := account.HashFields(append(seed, account.FieldFromUint64(uint64(outputIndex)))...)
		transition.Outputs = append(transition.Outputs, out.String()+"field")
		outputIndex++
	}

	id := account.HashFields(seed...)
	idBytes := id.Bytes()
	transition.ID = "au1" + base58.Encode(idBytes[:])
	return transition, nil
}

func callOperands(instruction string) []string {
	fields := strings.Fields(instruction)
	if len(fields) <= 2 {
		return nil
	}
	operands := fields[2:]
	// "call prog/fn r0 r1 into r2" passes r0 r1; the into clause names
	// the destination register, not an operand.
	for i, tok := range operands {
		if tok == "into" {
			operands = operands[:i]
			break
		}
	}
	return operands
}
