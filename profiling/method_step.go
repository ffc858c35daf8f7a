package profiling

import (
	"context"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/compilation/abiutils"
	"github.com/crytic/tokengas/logging"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Step is a single stage of a profiling pipeline. It receives the contract instance and the report accumulated so
// far and returns them with its own measurement added. Steps never know their position in a pipeline.
type Step func(ctx context.Context, instance *chain.ContractInstance, report GasReport) (*chain.ContractInstance, GasReport, error)

// MethodCall describes a contract method to call with fixed arguments.
type MethodCall struct {
	// Method describes the name of the contract method.
	Method string

	// Label describes the operation name the gas is recorded under. Defaults to Method.
	Label string

	// Args describes the arguments to call the method with. They are coerced to the method's parameter types.
	Args []any

	// Optional indicates the step is skipped when the contract does not declare the method.
	Optional bool
}

// Operation returns the operation name the call's gas is recorded under.
func (m MethodCall) Operation() string {
	if m.Label != "" {
		return m.Label
	}
	return m.Method
}

// NewMethodStep creates a Step which calls methodName with fixedArgs from the sender account and records the gas
// used under the method's name.
func NewMethodStep(client chain.Client, opts PipelineOptions, sender common.Address, methodName string, fixedArgs ...any) Step {
	return NewMethodCallStep(client, opts, sender, MethodCall{Method: methodName, Args: fixedArgs})
}

// NewMethodCallStep creates a Step which performs the provided call from the sender account as a transaction and
// records the gas it used.
func NewMethodCallStep(client chain.Client, opts PipelineOptions, sender common.Address, call MethodCall) Step {
	operation := call.Operation()

	return func(ctx context.Context, instance *chain.ContractInstance, report GasReport) (*chain.ContractInstance, GasReport, error) {
		logger := opts.logger()

		if call.Optional && !instance.HasMethod(call.Method) {
			logger.Warn("Skipping ", operation, ": contract ", instance.Name, " does not declare ", call.Method)
			return instance, report, nil
		}

		method, err := instance.ResolveMethod(call.Method, len(call.Args))
		if err != nil {
			return nil, GasReport{}, &MissingMethodError{Operation: operation, Err: err}
		}
		args, err := abiutils.CoerceArguments(method.Inputs, call.Args)
		if err != nil {
			return nil, GasReport{}, &ArgumentError{Operation: operation, Err: err}
		}
		data, err := instance.Pack(method, args...)
		if err != nil {
			return nil, GasReport{}, &ArgumentError{Operation: operation, Err: err}
		}

		receipt, _, err := executeTransaction(ctx, client, opts, operationTransaction{
			operation:   operation,
			from:        sender,
			to:          &instance.Address,
			data:        data,
			contractAbi: instance.Abi,
		})
		if err != nil {
			return nil, GasReport{}, err
		}

		next, err := report.With(operation, receipt.GasUsed)
		if err != nil {
			return nil, GasReport{}, err
		}
		logger.Debug("Measured ", operation, logging.StructuredLogInfo{"gasUsed": receipt.GasUsed})
		return instance, next, nil
	}
}

// RunSteps folds the steps over the instance and report in order. The first failing step aborts the fold and its
// error is returned without a partial report.
func RunSteps(ctx context.Context, instance *chain.ContractInstance, report GasReport, steps ...Step) (*chain.ContractInstance, GasReport, error) {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, GasReport{}, errors.WithStack(err)
		}

		var err error
		instance, report, err = step(ctx, instance, report)
		if err != nil {
			return nil, GasReport{}, err
		}
	}
	return instance, report, nil
}
