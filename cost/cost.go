// Package cost prices deployments and executions in microcredits.
// All functions are pure: they never prove anything and are safe to
// call speculatively for price quotes.
package cost

import (
	"errors"
	"fmt"

	"aleosdk/process"
	"aleosdk/program"
)

// ErrOverflow reports that a cost accumulation exceeded the uint64
// ceiling. Distinct from validation errors; never silently wrapped.
var ErrOverflow = errors.New("cost computation overflowed")

// CheckedSum accumulates costs, failing on overflow instead of
// wrapping around.
func CheckedSum(costs ...uint64) (uint64, error) {
	var total uint64
	for _, c := range costs {
		sum := total + c
		if sum < total {
			return 0, ErrOverflow
		}
		total = sum
	}
	return total, nil
}

// ExecutionFee prices a proven execution: the storage cost is the
// serialized byte size of the execution, the finalize cost the sum in
// execution order of each transition function's finalize logic.
// Functions without finalize logic contribute zero; a transition
// naming a function the program does not define is an error.
func ExecutionFee(prog *program.Program, execution *process.Execution) (storage, finalize uint64, err error) {
	storage, err = execution.SizeInBytes()
	if err != nil {
		return 0, 0, err
	}
	for _, transition := range execution.Transitions {
		fn, err := prog.Function(transition.Function)
		if err != nil {
			return 0, 0, err
		}
		if fn.Finalize == nil {
			continue
		}
		c, err := fn.Finalize.Cost()
		if err != nil {
			return 0, 0, err
		}
		finalize, err = CheckedSum(finalize, c)
		if err != nil {
			return 0, 0, fmt.Errorf("the finalize cost computation overflowed for an execution: %w", err)
		}
	}
	return storage, finalize, nil
}

// Deployment prices a deployment: storage is the serialized deployment
// size, finalize the summed finalize cost of every function the
// program defines, and the total their checked sum.
func Deployment(deployment *process.Deployment) (total, storage, finalize uint64, err error) {
	data, err := deployment.Bytes()
	if err != nil {
		return 0, 0, 0, err
	}
	storage = uint64(len(data))

	prog, err := program.Parse(deployment.Program)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("deployment program failed to parse: %w", err)
	}
	for _, fn := range prog.Functions() {
		if fn.Finalize == nil {
			continue
		}
		c, err := fn.Finalize.Cost()
		if err != nil {
			return 0, 0, 0, err
		}
		finalize, err = CheckedSum(finalize, c)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("the finalize cost computation overflowed for a deployment: %w", err)
		}
	}
	total, err = CheckedSum(storage, finalize)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("the total deployment cost overflowed: %w", err)
	}
	return total, storage, finalize, nil
}
