package manager

import (
	"context"

	"aleosdk/account"
	"aleosdk/cost"
	"aleosdk/process"
	"aleosdk/program"
)

// ExecutionQuote is the priced cost breakdown for an execution.
type ExecutionQuote struct {
	MinimumExecutionCost uint64 `json:"minimum_execution_cost"`
	StorageCost          uint64 `json:"storage_cost"`
	FinalizeCost         uint64 `json:"finalize_cost"`
}

// DeploymentQuote is the priced cost breakdown for a deployment.
type DeploymentQuote struct {
	MinimumDeploymentCost uint64 `json:"minimum_deployment_cost"`
	StorageCost           uint64 `json:"storage_cost"`
	FinalizeCost          uint64 `json:"finalize_cost"`
}

// ExecutionCostOptions parameterizes an execution cost quote.
type ExecutionCostOptions struct {
	Key *account.PrivateKey

	// Program is the program source text; empty selects the built-in
	// credits program.
	Program  string
	Function string
	Inputs   []string
	Imports  map[string]string
	Cache    bool
}

// ExecutionCost prices an execution. The storage cost is only known
// from the proven artifact's size, so the quote runs the real trace,
// inclusion, and proving phases and then prices the result; no fee is
// computed and no transaction is assembled.
func (m *ProgramManager) ExecutionCost(ctx context.Context, opts ExecutionCostOptions) (*ExecutionQuote, error) {
	logger := m.requestLogger("execution_cost")
	proc, release := m.acquireProcess(opts.Cache)
	defer release()

	proven, err := m.proveTarget(ctx, logger, proc, executeRequest{
		key:      opts.Key,
		source:   opts.Program,
		imports:  opts.Imports,
		function: opts.Function,
		inputs:   opts.Inputs,
		cache:    opts.Cache,
	})
	if err != nil {
		return nil, err
	}
	storage, finalize, err := cost.ExecutionFee(proven.program, proven.execution)
	if err != nil {
		return nil, err
	}
	total, err := cost.CheckedSum(storage, finalize)
	if err != nil {
		return nil, err
	}
	return &ExecutionQuote{
		MinimumExecutionCost: total,
		StorageCost:          storage,
		FinalizeCost:         finalize,
	}, nil
}

// DeploymentCost prices a deployment quote-only: keys are synthesized
// to size the artifact, but nothing is proven or assembled. Quotes run
// on a throwaway process so they never mutate retained state.
func (m *ProgramManager) DeploymentCost(source string, imports map[string]string) (*DeploymentQuote, error) {
	proc := process.Load()
	prog, err := program.Parse(source)
	if err != nil {
		return nil, err
	}
	if err := proc.ResolveImports(prog, imports); err != nil {
		return nil, err
	}
	deployment, err := m.buildDeployment(proc, prog)
	if err != nil {
		return nil, err
	}
	total, storage, finalize, err := cost.Deployment(deployment)
	if err != nil {
		return nil, err
	}
	return &DeploymentQuote{
		MinimumDeploymentCost: total,
		StorageCost:           storage,
		FinalizeCost:          finalize,
	}, nil
}
