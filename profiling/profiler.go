package profiling

import (
	"context"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/crytic/tokengas/profiling/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Profiler measures the gas used to deploy contracts of a standard interface and to call each of its methods.
type Profiler struct {
	// client describes the chain contracts are deployed to.
	client chain.Client

	// compiler describes the compiler contracts are obtained from.
	compiler Compiler

	// contractType describes the interface of the profiled contracts.
	contractType *ContractType

	// workers describes how many contracts ProfileAll profiles concurrently.
	workers int

	// options describes the configuration shared by pipeline stages.
	options PipelineOptions

	// logger describes the profiling service logger.
	logger *logging.Logger

	// Events describes the event system for the Profiler.
	Events ProfilerEvents
}

// NewPollingConfig converts the configured receipt polling into a PollingConfig.
func NewPollingConfig(pollingConfig config.ReceiptPollingConfig) PollingConfig {
	return PollingConfig{
		InitialInterval: pollingConfig.InitialInterval(),
		MaxInterval:     pollingConfig.MaxInterval(),
		Multiplier:      pollingConfig.Multiplier,
		Timeout:         pollingConfig.Timeout(),
	}
}

// NewProfiler creates a Profiler for the configured contract type. Returns an UnsupportedContractTypeError if the
// contract type is unknown.
func NewProfiler(client chain.Client, compiler Compiler, profilingConfig config.ProfilingConfig, logger *logging.Logger) (*Profiler, error) {
	contractType, err := LookupContractType(profilingConfig.ContractType)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.GlobalLogger
	}
	logger = logger.NewSubLogger(logging.SERVICE_KEY, logging.PROFILING_SERVICE)

	return &Profiler{
		client:       client,
		compiler:     compiler,
		contractType: contractType,
		workers:      profilingConfig.Workers,
		options: PipelineOptions{
			Polling:            NewPollingConfig(profilingConfig.ReceiptPolling),
			GasLimitMultiplier: profilingConfig.GasLimitMultiplier,
			Logger:             logger,
		},
		logger: logger,
	}, nil
}

// ContractType returns the interface of the profiled contracts.
func (p *Profiler) ContractType() *ContractType {
	return p.contractType
}

// Profile deploys the contract described by spec from the deployer account and calls each method of the contract
// type in order, using second as the counterparty. Returns the frozen report, or the error of the first failing stage.
func (p *Profiler) Profile(ctx context.Context, deployer common.Address, second common.Address, spec ContractSpec) (GasReport, error) {
	runId := uuid.New().String()
	logger := p.logger.NewSubLogger(logging.RUN_ID_KEY, runId)
	opts := p.options
	opts.Logger = logger

	logger.Info("Profiling ", colors.Bold, spec.Selector, colors.Reset, " as ", p.contractType.Name)

	instance, report, err := Deploy(ctx, p.client, p.compiler, deployer, spec, opts)
	if err != nil {
		return GasReport{}, err
	}
	gasUsed, _ := report.Get(DeploymentOperation)
	err = p.Events.DeploymentCompleted.Publish(DeploymentCompletedEvent{RunId: runId, Spec: spec, Instance: instance, GasUsed: gasUsed})
	if err != nil {
		return GasReport{}, err
	}

	calls := p.contractType.Calls(deployer, second)
	steps := make([]Step, len(calls))
	for i, call := range calls {
		steps[i] = p.publishingStep(runId, spec, call, NewMethodCallStep(p.client, opts, deployer, call))
	}

	_, report, err = RunSteps(ctx, instance, report, steps...)
	if err != nil {
		return GasReport{}, err
	}
	report = report.Freeze()

	logger.Info("Profiled ", colors.Bold, spec.Selector, colors.Reset, " (", report.Len(), " operations)")
	if err = p.Events.ProfileCompleted.Publish(ProfileCompletedEvent{RunId: runId, Spec: spec, Report: report}); err != nil {
		return GasReport{}, err
	}
	return report, nil
}

// publishingStep wraps a step so that a StepCompletedEvent is published once it succeeds.
func (p *Profiler) publishingStep(runId string, spec ContractSpec, call MethodCall, step Step) Step {
	operation := call.Operation()
	return func(ctx context.Context, instance *chain.ContractInstance, report GasReport) (*chain.ContractInstance, GasReport, error) {
		instance, next, err := step(ctx, instance, report)
		if err != nil {
			return nil, GasReport{}, err
		}
		gasUsed, recorded := next.Get(operation)
		err = p.Events.StepCompleted.Publish(StepCompletedEvent{
			RunId:     runId,
			Spec:      spec,
			Operation: operation,
			GasUsed:   gasUsed,
			Skipped:   !recorded,
		})
		if err != nil {
			return nil, GasReport{}, err
		}
		return instance, next, nil
	}
}

// accountPair describes the accounts a pipeline sends transactions from.
type accountPair struct {
	deployer common.Address
	second   common.Address
}

// ProfileAll profiles each of the provided contracts with an independent pipeline, running up to the configured
// number of workers concurrently. Each worker owns a distinct pair of accounts so concurrent pipelines never share a
// sender. The first failure cancels the remaining pipelines and is returned; reports are returned in the order of
// specs.
func (p *Profiler) ProfileAll(ctx context.Context, specs []ContractSpec) ([]GasReport, error) {
	if len(specs) == 0 {
		return []GasReport{}, nil
	}

	accounts, err := p.client.Accounts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not list accounts")
	}
	if len(accounts) < 2 {
		return nil, &InsufficientAccountsError{Required: 2, Available: len(accounts)}
	}

	workers := max(p.workers, 1)
	workers = min(workers, len(specs))
	if workers > len(accounts)/2 {
		p.logger.Warn("Only ", len(accounts), " accounts are available, limiting workers to ", len(accounts)/2)
		workers = len(accounts) / 2
	}

	pairs := make(chan accountPair, workers)
	for i := 0; i < workers; i++ {
		pairs <- accountPair{deployer: accounts[2*i], second: accounts[2*i+1]}
	}

	reports := make([]GasReport, len(specs))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, spec := range specs {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			pair := <-pairs
			defer func() { pairs <- pair }()

			report, err := p.Profile(groupCtx, pair.deployer, pair.second, spec)
			if err != nil {
				p.logger.Error("Failed to profile ", spec.Selector, err)
				return err
			}
			reports[i] = report
			return nil
		})
	}
	if err = group.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
