package profiling

import (
	"context"

	"github.com/crytic/tokengas/chain"
	"github.com/crytic/tokengas/compilation/abiutils"
	"github.com/crytic/tokengas/compilation/types"
	"github.com/crytic/tokengas/logging"
	"github.com/crytic/tokengas/logging/colors"
	"github.com/ethereum/go-ethereum/common"
)

// Deploy compiles the contract described by spec, deploys it from the deployer account and returns the deployed
// instance along with a GasReport holding the gas used by the deployment. Any failure aborts the deployment.
func Deploy(ctx context.Context, client chain.Client, compiler Compiler, deployer common.Address, spec ContractSpec, opts PipelineOptions) (*chain.ContractInstance, GasReport, error) {
	logger := opts.logger()
	logger.Debug("Compiling contract ", spec.Selector, " at ", spec.SourcePath)

	compilations, err := compiler.CompileSource(spec.SourcePath)
	if err != nil {
		return nil, GasReport{}, &CompilationError{Selector: spec.Selector, SourcePath: spec.SourcePath, Err: err}
	}
	contract, found := types.FindContractInCompilations(compilations, spec.SourcePath, spec.ContractName())
	if !found {
		return nil, GasReport{}, &CompilationError{Selector: spec.Selector, SourcePath: spec.SourcePath}
	}
	if !contract.HasBytecode() {
		return nil, GasReport{}, &MissingBytecodeError{Selector: spec.Selector, RequiresLinking: contract.RequiresLinking}
	}
	if !contract.HasInterface() {
		return nil, GasReport{}, &MissingInterfaceError{Selector: spec.Selector}
	}

	constructorArgs := make([]any, len(spec.ConstructorArgs))
	for i, arg := range spec.ConstructorArgs {
		constructorArgs[i] = arg
	}
	args, err := abiutils.CoerceArguments(contract.Abi.Constructor.Inputs, constructorArgs)
	if err != nil {
		return nil, GasReport{}, &ArgumentError{Operation: DeploymentOperation, Err: err}
	}
	data, err := contract.GetDeploymentMessageData(args)
	if err != nil {
		return nil, GasReport{}, &ArgumentError{Operation: DeploymentOperation, Err: err}
	}

	receipt, gasLimit, err := executeTransaction(ctx, client, opts, operationTransaction{
		operation:   DeploymentOperation,
		from:        deployer,
		data:        data,
		contractAbi: contract.Abi,
	})
	if err != nil {
		return nil, GasReport{}, err
	}
	if receipt.ContractAddress == (common.Address{}) {
		return nil, GasReport{}, &MalformedReceiptError{TxHash: receipt.TxHash, Reason: "the receipt has no contract address"}
	}

	report, err := NewGasReport().With(DeploymentOperation, receipt.GasUsed)
	if err != nil {
		return nil, GasReport{}, err
	}

	logger.Info("Deployed ", colors.Bold, spec.Selector, colors.Reset, " at ", receipt.ContractAddress.Hex(), logging.StructuredLogInfo{
		"gasUsed":  receipt.GasUsed,
		"gasLimit": gasLimit,
	})
	return chain.NewContractInstance(spec.ContractName(), receipt.ContractAddress, contract.Abi), report, nil
}
