// Package manager orchestrates transaction construction: it loads a
// process, resolves imports, builds inputs, traces, prepares inclusion
// data, proves the execution and its fee, verifies both, and assembles
// the final transaction. Every phase is fail-fast; a partial
// transaction is never returned.
package manager

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"aleosdk/account"
	"aleosdk/cost"
	"aleosdk/process"
	"aleosdk/program"
	"aleosdk/query"
	"aleosdk/record"
)

// ProgramManager builds, prices, and assembles transactions. It holds
// one retained process for cached calls; the mutex serializes those
// calls so the shared key caches see one writer at a time.
type ProgramManager struct {
	engine Engine
	client query.Client
	logger zerolog.Logger

	mu       sync.Mutex
	retained *process.Process
}

// New creates a manager over a proving engine and a query client.
func New(engine Engine, client query.Client) *ProgramManager {
	return &ProgramManager{engine: engine, client: client, logger: zerolog.Nop()}
}

// WithLogger attaches a structured logger.
func (m *ProgramManager) WithLogger(logger zerolog.Logger) *ProgramManager {
	m.logger = logger
	return m
}

// TransferOptions parameterizes a credits transfer.
type TransferOptions struct {
	Key           *account.PrivateKey
	Kind          TransferKind
	Recipient     string
	AmountCredits float64

	// AmountRecord funds record-funded kinds; ignored otherwise.
	AmountRecord *record.Plaintext

	FeeCredits float64
	FeeRecord  *record.Plaintext

	// Cache reuses the manager's retained process so synthesized keys
	// survive across calls.
	Cache bool

	// Caller-supplied keys, installed into the key cache before tracing.
	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
}

// Transfer builds a proven, verified credits transfer transaction.
func (m *ProgramManager) Transfer(ctx context.Context, opts TransferOptions) (*process.Transaction, error) {
	logger := m.requestLogger("transfer")
	recipient, err := account.ParseAddress(opts.Recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer recipient: %w", err)
	}
	amountMicro, err := Microcredits(opts.AmountCredits)
	if err != nil {
		return nil, err
	}
	inputs, err := buildTransferInputs(opts.Kind, recipient, amountMicro, opts.AmountRecord)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "inputs_built").Str("kind", opts.Kind.String()).Uint64("microcredits", amountMicro).Msg("transfer inputs built")
	return m.execute(ctx, logger, executeRequest{
		key:        opts.Key,
		function:   opts.Kind.Function(),
		inputs:     inputs,
		feeCredits: opts.FeeCredits,
		feeRecord:  opts.FeeRecord,
		cache:      opts.Cache,
		pk:         opts.ProvingKey,
		vk:         opts.VerifyingKey,
	})
}

// ExecuteOptions parameterizes a generic program execution.
type ExecuteOptions struct {
	Key *account.PrivateKey

	// Program is the program source text; empty selects the built-in
	// credits program.
	Program  string
	Function string
	Inputs   []string

	// Imports supplies source text for imports not yet loaded, keyed by
	// program id.
	Imports map[string]string

	FeeCredits float64
	FeeRecord  *record.Plaintext
	Cache      bool

	ProvingKey   groth16.ProvingKey
	VerifyingKey groth16.VerifyingKey
}

// Execute builds a proven, verified execution transaction for an
// arbitrary program function.
func (m *ProgramManager) Execute(ctx context.Context, opts ExecuteOptions) (*process.Transaction, error) {
	logger := m.requestLogger("execute")
	return m.execute(ctx, logger, executeRequest{
		key:        opts.Key,
		source:     opts.Program,
		imports:    opts.Imports,
		function:   opts.Function,
		inputs:     opts.Inputs,
		feeCredits: opts.FeeCredits,
		feeRecord:  opts.FeeRecord,
		cache:      opts.Cache,
		pk:         opts.ProvingKey,
		vk:         opts.VerifyingKey,
	})
}

type executeRequest struct {
	key        *account.PrivateKey
	source     string
	imports    map[string]string
	function   string
	inputs     []string
	feeCredits float64
	feeRecord  *record.Plaintext
	cache      bool
	pk         groth16.ProvingKey
	vk         groth16.VerifyingKey
}

func (m *ProgramManager) execute(ctx context.Context, logger zerolog.Logger, req executeRequest) (*process.Transaction, error) {
	proc, release := m.acquireProcess(req.cache)
	defer release()
	logger.Debug().Str("phase", "process_ready").Bool("cache", req.cache).Msg("process acquired")

	proven, err := m.proveTarget(ctx, logger, proc, req)
	if err != nil {
		return nil, err
	}

	storage, finalize, err := cost.ExecutionFee(proven.program, proven.execution)
	if err != nil {
		return nil, err
	}
	required, err := cost.CheckedSum(storage, finalize)
	if err != nil {
		return nil, err
	}
	feeMicro, err := Microcredits(req.feeCredits)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "fee_computed").
		Uint64("storage_cost", storage).
		Uint64("finalize_cost", finalize).
		Uint64("minimum_cost", required).
		Uint64("fee_microcredits", feeMicro).
		Msg("fee computed")

	fee, feeVK, err := m.proveFee(ctx, logger, proc, req.key, proven.executionID, req.feeRecord, feeMicro)
	if err != nil {
		return nil, err
	}

	if err := m.engine.VerifyExecution(proven.execution, proven.verifyingKey); err != nil {
		return nil, err
	}
	if err := m.engine.VerifyFee(fee, feeVK, proven.executionID); err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "verified").Msg("execution and fee verified")

	tx, err := process.FromExecution(proven.execution, fee)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("phase", "assembled").Str("transaction", tx.ID).Msg("transaction assembled")
	return tx, nil
}

// provenTarget is the output of the trace-and-prove phases, shared by
// transaction construction and execution cost quoting.
type provenTarget struct {
	program      *program.Program
	execution    *process.Execution
	executionID  string
	verifyingKey groth16.VerifyingKey
}

func (m *ProgramManager) proveTarget(ctx context.Context, logger zerolog.Logger, proc *process.Process, req executeRequest) (*provenTarget, error) {
	var prog *program.Program
	if req.source == "" {
		stack, err := proc.Stack(program.CreditsID)
		if err != nil {
			return nil, err
		}
		prog = stack.Program()
	} else {
		parsed, err := program.Parse(req.source)
		if err != nil {
			return nil, err
		}
		if err := proc.ResolveImports(parsed, req.imports); err != nil {
			return nil, err
		}
		prog = parsed
	}
	logger.Debug().Str("phase", "imports_resolved").Str("program", prog.ID()).Msg("program loaded")

	stack, err := proc.Stack(prog.ID())
	if err != nil {
		return nil, err
	}
	if req.pk != nil && req.vk != nil {
		stack.Keys().Put(req.function, req.pk, req.vk)
	}

	trace, err := proc.Execute(req.key, prog.ID(), req.function, req.inputs)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "traced").Int("transitions", len(trace.Transitions)).Msg("trace produced")

	if err := trace.Prepare(ctx, m.client); err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "inclusion_prepared").Str("state_root", trace.StateRoot()).Msg("inclusion data attached")

	pk, vk, err := m.functionKeys(stack, prog, req.function)
	if err != nil {
		return nil, err
	}
	execution, err := m.engine.ProveExecution(trace, pk)
	if err != nil {
		return nil, err
	}
	executionID, err := execution.ExecutionID()
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "execution_proven").Str("execution_id", executionID).Msg("execution proven")

	return &provenTarget{
		program:      prog,
		execution:    execution,
		executionID:  executionID,
		verifyingKey: vk,
	}, nil
}

func (m *ProgramManager) proveFee(ctx context.Context, logger zerolog.Logger, proc *process.Process, key *account.PrivateKey, executionID string, feeRecord *record.Plaintext, feeMicro uint64) (*process.Fee, groth16.VerifyingKey, error) {
	builder, err := process.NewFeeBuilder(executionID)
	if err != nil {
		return nil, nil, err
	}
	feeTrace, err := builder.Execute(proc, key, feeRecord, feeMicro)
	if err != nil {
		return nil, nil, err
	}
	if err := feeTrace.Prepare(ctx, m.client); err != nil {
		return nil, nil, err
	}
	creditsStack, err := proc.Stack(program.CreditsID)
	if err != nil {
		return nil, nil, err
	}
	feePK, feeVK, err := m.functionKeys(creditsStack, creditsStack.Program(), "fee")
	if err != nil {
		return nil, nil, err
	}
	fee, err := m.engine.ProveFee(feeTrace, feePK)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("phase", "fee_proven").Str("execution_id", executionID).Msg("fee proven")
	return fee, feeVK, nil
}

// DeployOptions parameterizes a program deployment.
type DeployOptions struct {
	Key     *account.PrivateKey
	Program string
	Imports map[string]string

	// FeeRecord, when set, pays a deploy fee bound to the deployment id.
	FeeCredits float64
	FeeRecord  *record.Plaintext

	Cache bool
}

// Deploy synthesizes keys for every function of a program and assembles
// a deployment transaction, with an optional fee bound to the
// deployment id.
func (m *ProgramManager) Deploy(ctx context.Context, opts DeployOptions) (*process.Transaction, error) {
	logger := m.requestLogger("deploy")
	proc, release := m.acquireProcess(opts.Cache)
	defer release()
	logger.Debug().Str("phase", "process_ready").Bool("cache", opts.Cache).Msg("process acquired")

	prog, err := program.Parse(opts.Program)
	if err != nil {
		return nil, err
	}
	if err := proc.ResolveImports(prog, opts.Imports); err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "imports_resolved").Str("program", prog.ID()).Msg("program loaded")

	deployment, err := m.buildDeployment(proc, prog)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("phase", "deployment_built").Int("functions", len(deployment.VerifyingKeys)).Msg("deployment built")

	var fee *process.Fee
	if opts.FeeRecord != nil {
		feeMicro, err := Microcredits(opts.FeeCredits)
		if err != nil {
			return nil, err
		}
		bindingID, err := deploymentID(deployment)
		if err != nil {
			return nil, err
		}
		var feeVK groth16.VerifyingKey
		fee, feeVK, err = m.proveFee(ctx, logger, proc, opts.Key, bindingID, opts.FeeRecord, feeMicro)
		if err != nil {
			return nil, err
		}
		if err := m.engine.VerifyFee(fee, feeVK, bindingID); err != nil {
			return nil, err
		}
	}

	tx, err := process.FromDeployment(deployment, fee)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("phase", "assembled").Str("transaction", tx.ID).Msg("transaction assembled")
	return tx, nil
}

func (m *ProgramManager) buildDeployment(proc *process.Process, prog *program.Program) (*process.Deployment, error) {
	stack, err := proc.Stack(prog.ID())
	if err != nil {
		return nil, err
	}
	keys := make(map[string][]byte, len(prog.Functions()))
	for _, fn := range prog.Functions() {
		_, vk, err := m.functionKeys(stack, prog, fn.Name)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if _, err := vk.WriteTo(&buf); err != nil {
			return nil, fmt.Errorf("verifying key serialization for %s failed: %w", fn.Name, err)
		}
		keys[fn.Name] = buf.Bytes()
	}
	return &process.Deployment{
		ProgramID:     prog.ID(),
		Program:       prog.String(),
		VerifyingKeys: keys,
	}, nil
}

// deploymentID digests a deployment into the value its deploy fee binds
// to, playing the role the execution id plays for executions.
func deploymentID(deployment *process.Deployment) (string, error) {
	data, err := deployment.Bytes()
	if err != nil {
		return "", err
	}
	id := account.HashFields(account.FieldFromString(deployment.ProgramID), account.FieldFromBytes(data))
	return id.String() + "field", nil
}

// functionKeys returns cached keys for a function, synthesizing and
// caching them on a miss.
func (m *ProgramManager) functionKeys(stack *process.Stack, prog *program.Program, function string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	if pk, vk, ok := stack.Keys().Get(function); ok {
		return pk, vk, nil
	}
	pk, vk, err := m.engine.SynthesizeKeys(prog, function)
	if err != nil {
		return nil, nil, err
	}
	stack.Keys().Put(function, pk, vk)
	return pk, vk, nil
}

// acquireProcess returns the process for a call and its release
// function. Cached calls share the retained process under the mutex;
// uncached calls get a throwaway one.
func (m *ProgramManager) acquireProcess(cache bool) (*process.Process, func()) {
	if !cache {
		return process.Load(), func() {}
	}
	m.mu.Lock()
	if m.retained == nil {
		m.retained = process.Load()
	}
	return m.retained, m.mu.Unlock
}

func (m *ProgramManager) requestLogger(operation string) zerolog.Logger {
	return m.logger.With().
		Str("request_id", uuid.NewString()).
		Str("operation", operation).
		Logger()
}
