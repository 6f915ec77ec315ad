package cost

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"aleosdk/process"
	"aleosdk/program"
)

func executionOf(functions ...string) *process.Execution {
	execution := &process.Execution{GlobalStateRoot: "sr1root", Proof: []byte("proof")}
	for _, fn := range functions {
		execution.Transitions = append(execution.Transitions, &process.Transition{
			ID:        "au1transition",
			ProgramID: program.CreditsID,
			Function:  fn,
			Inputs:    []string{"aleo1recipient", "1u64"},
		})
	}
	return execution
}

func TestCheckedSum(t *testing.T) {
	total, err := CheckedSum(1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(6), total)

	total, err = CheckedSum()
	require.NoError(t, err)
	require.Zero(t, total)

	_, err = CheckedSum(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedSum(math.MaxUint64-1, 1)
	require.NoError(t, err)
}

func TestExecutionFee(t *testing.T) {
	credits := program.Credits()
	execution := executionOf("transfer_public")

	storage, finalize, err := ExecutionFee(credits, execution)
	require.NoError(t, err)

	size, err := execution.SizeInBytes()
	require.NoError(t, err)
	require.Equal(t, size, storage)

	public, err := credits.Function("transfer_public")
	require.NoError(t, err)
	expected, err := public.Finalize.Cost()
	require.NoError(t, err)
	require.Equal(t, expected, finalize)
}

func TestExecutionFeeWithoutFinalizeIsZero(t *testing.T) {
	credits := program.Credits()
	_, finalize, err := ExecutionFee(credits, executionOf("transfer_private"))
	require.NoError(t, err)
	require.Zero(t, finalize)
}

func TestExecutionFeeSumsTransitions(t *testing.T) {
	credits := program.Credits()
	_, single, err := ExecutionFee(credits, executionOf("transfer_public"))
	require.NoError(t, err)
	_, double, err := ExecutionFee(credits, executionOf("transfer_public", "transfer_public"))
	require.NoError(t, err)
	require.Equal(t, 2*single, double)
}

func TestExecutionFeeRejectsUnknownFunction(t *testing.T) {
	credits := program.Credits()
	_, _, err := ExecutionFee(credits, executionOf("not_a_function"))
	require.Error(t, err)
}

func TestExecutionFeeIsIdempotent(t *testing.T) {
	credits := program.Credits()
	execution := executionOf("transfer_public", "transfer_private_to_public")

	s1, f1, err := ExecutionFee(credits, execution)
	require.NoError(t, err)
	s2, f2, err := ExecutionFee(credits, execution)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
	require.Equal(t, f1, f2)
}

func TestDeploymentCost(t *testing.T) {
	credits := program.Credits()
	deployment := &process.Deployment{
		ProgramID:     credits.ID(),
		Program:       credits.String(),
		VerifyingKeys: map[string][]byte{"transfer_public": []byte("vk")},
	}

	total, storage, finalize, err := Deployment(deployment)
	require.NoError(t, err)

	data, err := deployment.Bytes()
	require.NoError(t, err)
	require.Equal(t, uint64(len(data)), storage)
	require.Equal(t, storage+finalize, total)

	// Finalize prices every function the program defines.
	var expected uint64
	for _, fn := range credits.Functions() {
		if fn.Finalize == nil {
			continue
		}
		c, err := fn.Finalize.Cost()
		require.NoError(t, err)
		expected += c
	}
	require.Equal(t, expected, finalize)
}

func TestDeploymentCostRejectsUnparseableProgram(t *testing.T) {
	deployment := &process.Deployment{
		ProgramID:     "broken.aleo",
		Program:       "this is not a program",
		VerifyingKeys: map[string][]byte{"f": []byte("vk")},
	}
	_, _, _, err := Deployment(deployment)
	require.Error(t, err)
}
