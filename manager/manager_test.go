package manager

import (
	"context"
	"fmt"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/stretchr/testify/require"

	"aleosdk/account"
	"aleosdk/process"
	"aleosdk/program"
	"aleosdk/query"
	"aleosdk/record"
)

// fakeEngine produces structurally valid artifacts without running the
// proof system, and counts key syntheses for cache assertions.
type fakeEngine struct {
	synthesized int
}

func (f *fakeEngine) SynthesizeKeys(prog *program.Program, function string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if _, err := prog.Function(function); err != nil {
		return nil, nil, err
	}
	f.synthesized++
	return groth16.NewProvingKey(ecc.BLS12_377), groth16.NewVerifyingKey(ecc.BLS12_377), nil
}

func (f *fakeEngine) ProveExecution(trace *process.Trace, pk groth16.ProvingKey) (*process.Execution, error) {
	if !trace.Prepared() {
		return nil, fmt.Errorf("trace is not prepared")
	}
	return &process.Execution{
		Transitions:     trace.Transitions,
		GlobalStateRoot: trace.StateRoot(),
		Proof:           []byte("execution-proof"),
	}, nil
}

func (f *fakeEngine) VerifyExecution(execution *process.Execution, vk groth16.VerifyingKey) error {
	return nil
}

func (f *fakeEngine) ProveFee(trace *process.Trace, pk groth16.ProvingKey) (*process.Fee, error) {
	if trace.BoundExecutionID == "" {
		return nil, fmt.Errorf("fee trace is not bound")
	}
	return &process.Fee{
		Transition:      trace.Transitions[0],
		ExecutionID:     trace.BoundExecutionID,
		GlobalStateRoot: trace.StateRoot(),
		Proof:           []byte("fee-proof"),
	}, nil
}

func (f *fakeEngine) VerifyFee(fee *process.Fee, vk groth16.VerifyingKey, executionID string) error {
	if fee.ExecutionID != executionID {
		return fmt.Errorf("fee verification failed: fee is bound to execution %s, not %s", fee.ExecutionID, executionID)
	}
	return nil
}

// misboundEngine breaks the fee binding to exercise the verification
// phase.
type misboundEngine struct {
	fakeEngine
}

func (m *misboundEngine) ProveFee(trace *process.Trace, pk groth16.ProvingKey) (*process.Fee, error) {
	fee, err := m.fakeEngine.ProveFee(trace, pk)
	if err != nil {
		return nil, err
	}
	fee.ExecutionID = "0field"
	return fee, nil
}

type fakeClient struct{}

func (fakeClient) StateRoot(ctx context.Context) (string, error) {
	return "sr1root", nil
}

func (fakeClient) StatePath(ctx context.Context, transitionID string) (*query.StatePath, error) {
	return &query.StatePath{TransitionID: transitionID, StateRoot: "sr1root"}, nil
}

func testKeys(t *testing.T) (*account.PrivateKey, string) {
	t.Helper()
	sender := account.FromSeed([]byte("sender"))
	recipient := account.FromSeed([]byte("recipient")).Address().String()
	return sender, recipient
}

func fundingRecord(key *account.PrivateKey, microcredits, nonce uint64) *record.Plaintext {
	return record.NewPlaintext(key.Address(), microcredits, account.FieldFromUint64(nonce))
}

func TestParseTransferKind(t *testing.T) {
	for name, want := range map[string]TransferKind{
		"private":                    TransferPrivate,
		"public":                     TransferPublic,
		"private_to_public":          TransferPrivateToPublic,
		"public_to_private":          TransferPublicToPrivate,
		"transfer_public":            TransferPublic,
		"transfer_private_to_public": TransferPrivateToPublic,
	} {
		kind, err := ParseTransferKind(name)
		require.NoError(t, err, name)
		require.Equal(t, want, kind, name)
	}

	_, err := ParseTransferKind("quantum")
	require.ErrorIs(t, err, ErrUnknownTransferKind)
	_, err = ParseTransferKind("")
	require.ErrorIs(t, err, ErrUnknownTransferKind)
}

func TestMicrocredits(t *testing.T) {
	for credits, want := range map[float64]uint64{
		2.5:       2_500_000,
		0.01:      10_000,
		0:         0,
		0.0000015: 2,
	} {
		got, err := Microcredits(credits)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := Microcredits(-1)
	require.Error(t, err)
}

func TestTransferInputOrderings(t *testing.T) {
	sender, _ := testKeys(t)
	recipient := account.FromSeed([]byte("recipient")).Address()
	rec := fundingRecord(sender, 5_000_000, 1)

	cases := []struct {
		kind TransferKind
		want []string
	}{
		{TransferPrivate, []string{rec.String(), recipient.String(), "2500000u64"}},
		{TransferPrivateToPublic, []string{rec.String(), recipient.String(), "2500000u64"}},
		{TransferPublic, []string{recipient.String(), "2500000u64"}},
		{TransferPublicToPrivate, []string{recipient.String(), "2500000u64"}},
	}
	for _, tc := range cases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			inputs, err := buildTransferInputs(tc.kind, recipient, 2_500_000, rec)
			require.NoError(t, err)
			require.Equal(t, tc.want, inputs)
		})
	}
}

func TestTransferInputValidation(t *testing.T) {
	sender, _ := testKeys(t)
	recipient := account.FromSeed([]byte("recipient")).Address()

	_, err := buildTransferInputs(TransferPrivate, recipient, 100, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "amount record must be provided")

	small := fundingRecord(sender, 50, 1)
	_, err = buildTransferInputs(TransferPrivate, recipient, 100, small)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds record balance")

	// Public kinds draw from the public balance and ignore the record.
	inputs, err := buildTransferInputs(TransferPublic, recipient, 100, nil)
	require.NoError(t, err)
	require.Len(t, inputs, 2)
}

func TestTransferPublicEndToEnd(t *testing.T) {
	engine := &fakeEngine{}
	mgr := New(engine, fakeClient{})
	sender, recipient := testKeys(t)

	tx, err := mgr.Transfer(context.Background(), TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 2.5,
		FeeCredits:    0.01,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
	})
	require.NoError(t, err)
	require.Equal(t, process.TransactionExecute, tx.Type)
	require.NotNil(t, tx.Execution)
	require.NotNil(t, tx.Fee)

	require.Len(t, tx.Execution.Transitions, 1)
	require.Equal(t, []string{recipient, "2500000u64"}, tx.Execution.Transitions[0].Inputs)

	executionID, err := tx.Execution.ExecutionID()
	require.NoError(t, err)
	require.Equal(t, executionID, tx.Fee.ExecutionID)
	require.Equal(t, "fee", tx.Fee.Transition.Function)
}

func TestTransferFailsWhenFeeRecordCannotCover(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, recipient := testKeys(t)

	_, err := mgr.Transfer(context.Background(), TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 1,
		FeeCredits:    0.02,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds fee record balance")
}

func TestTransferRejectsMisboundFee(t *testing.T) {
	mgr := New(&misboundEngine{}, fakeClient{})
	sender, recipient := testKeys(t)

	_, err := mgr.Transfer(context.Background(), TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 1,
		FeeCredits:    0.01,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "bound to execution")
}

func TestRetainedProcessReusesKeys(t *testing.T) {
	engine := &fakeEngine{}
	mgr := New(engine, fakeClient{})
	sender, recipient := testKeys(t)

	opts := TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 1,
		FeeCredits:    0.005,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
		Cache:         true,
	}

	_, err := mgr.Transfer(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, engine.synthesized) // transfer_public + fee

	opts.FeeRecord = fundingRecord(sender, 10_000, 2)
	_, err = mgr.Transfer(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, engine.synthesized)
}

func TestEphemeralProcessSynthesizesEachCall(t *testing.T) {
	engine := &fakeEngine{}
	mgr := New(engine, fakeClient{})
	sender, recipient := testKeys(t)

	opts := TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 1,
		FeeCredits:    0.005,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
	}

	_, err := mgr.Transfer(context.Background(), opts)
	require.NoError(t, err)
	_, err = mgr.Transfer(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 4, engine.synthesized)
}

func TestCallerSuppliedKeysSkipSynthesis(t *testing.T) {
	engine := &fakeEngine{}
	mgr := New(engine, fakeClient{})
	sender, recipient := testKeys(t)

	_, err := mgr.Transfer(context.Background(), TransferOptions{
		Key:           sender,
		Kind:          TransferPublic,
		Recipient:     recipient,
		AmountCredits: 1,
		FeeCredits:    0.005,
		FeeRecord:     fundingRecord(sender, 10_000, 1),
		ProvingKey:    groth16.NewProvingKey(ecc.BLS12_377),
		VerifyingKey:  groth16.NewVerifyingKey(ecc.BLS12_377),
	})
	require.NoError(t, err)
	require.Equal(t, 1, engine.synthesized) // only the fee function
}

func TestExecuteGenericProgram(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, _ := testKeys(t)

	source := "program counter.aleo;\n\nfunction bump:\n    input r0 as u64.private;\n    add r0 1u64 into r1;\n    output r1 as u64.private;\n"
	tx, err := mgr.Execute(context.Background(), ExecuteOptions{
		Key:        sender,
		Program:    source,
		Function:   "bump",
		Inputs:     []string{"7u64"},
		FeeCredits: 0.001,
		FeeRecord:  fundingRecord(sender, 10_000, 1),
	})
	require.NoError(t, err)
	require.Equal(t, "counter.aleo", tx.Execution.Transitions[0].ProgramID)
	require.Equal(t, "bump", tx.Execution.Transitions[0].Function)
}

func TestExecuteUnresolvedImportFails(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, _ := testKeys(t)

	source := "program island.aleo;\nimport missing.aleo;\nfunction f:\n    output r0 as u64;\n"
	_, err := mgr.Execute(context.Background(), ExecuteOptions{
		Key:       sender,
		Program:   source,
		Function:  "f",
		FeeRecord: fundingRecord(sender, 10_000, 1),
	})
	require.ErrorIs(t, err, process.ErrUnresolvedImport)
}

func TestDeploy(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, _ := testKeys(t)

	source := "program counter.aleo;\n\nfunction bump:\n    input r0 as u64.private;\n    add r0 1u64 into r1;\n    output r1 as u64.private;\n"
	tx, err := mgr.Deploy(context.Background(), DeployOptions{
		Key:     sender,
		Program: source,
	})
	require.NoError(t, err)
	require.Equal(t, process.TransactionDeploy, tx.Type)
	require.Nil(t, tx.Fee)
	require.Contains(t, tx.Deployment.VerifyingKeys, "bump")
}

func TestDeployWithFee(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, _ := testKeys(t)

	source := "program counter.aleo;\n\nfunction bump:\n    input r0 as u64.private;\n    add r0 1u64 into r1;\n    output r1 as u64.private;\n"
	tx, err := mgr.Deploy(context.Background(), DeployOptions{
		Key:        sender,
		Program:    source,
		FeeCredits: 0.001,
		FeeRecord:  fundingRecord(sender, 10_000, 1),
	})
	require.NoError(t, err)
	require.NotNil(t, tx.Fee)
	require.Equal(t, "fee", tx.Fee.Transition.Function)
}

func TestDeployRejectsProgramWithoutFunctions(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, _ := testKeys(t)

	_, err := mgr.Deploy(context.Background(), DeployOptions{
		Key:     sender,
		Program: "program hollow.aleo;\n",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty transaction deployment")
}

func TestExecutionCostQuote(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})
	sender, recipient := testKeys(t)

	quote, err := mgr.ExecutionCost(context.Background(), ExecutionCostOptions{
		Key:      sender,
		Function: "transfer_public",
		Inputs:   []string{recipient, "1000u64"},
	})
	require.NoError(t, err)
	require.NotZero(t, quote.StorageCost)

	credits := program.Credits()
	public, err := credits.Function("transfer_public")
	require.NoError(t, err)
	finalize, err := public.Finalize.Cost()
	require.NoError(t, err)
	require.Equal(t, finalize, quote.FinalizeCost)
	require.Equal(t, quote.StorageCost+quote.FinalizeCost, quote.MinimumExecutionCost)

	again, err := mgr.ExecutionCost(context.Background(), ExecutionCostOptions{
		Key:      sender,
		Function: "transfer_public",
		Inputs:   []string{recipient, "1000u64"},
	})
	require.NoError(t, err)
	require.Equal(t, quote, again)
}

func TestDeploymentCostQuote(t *testing.T) {
	mgr := New(&fakeEngine{}, fakeClient{})

	source := "program counter.aleo;\n\nfunction bump:\n    input r0 as u64.private;\n    add r0 1u64 into r1;\n    output r1 as u64.private;\n"
	quote, err := mgr.DeploymentCost(source, nil)
	require.NoError(t, err)
	require.NotZero(t, quote.StorageCost)
	require.Zero(t, quote.FinalizeCost)
	require.Equal(t, quote.StorageCost, quote.MinimumDeploymentCost)
}
