package profiling

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

// ContractType describes a standard token interface and the method calls used to profile it.
type ContractType struct {
	// Name describes the canonical name of the interface.
	Name string

	// Aliases describes every name the interface can be selected by.
	Aliases []string

	// Calls returns the ordered method calls profiling a contract of this type, given the deployer and a second
	// account.
	Calls func(deployer common.Address, second common.Address) []MethodCall
}

// erc20ContractType profiles the fungible token interface.
var erc20ContractType = ContractType{
	Name:    "ERC20",
	Aliases: []string{"ERC20", "EIP20", "erc20", "eip20"},
	Calls: func(deployer common.Address, second common.Address) []MethodCall {
		return []MethodCall{
			{Method: "totalSupply"},
			{Method: "balanceOf", Args: []any{deployer}},
			{Method: "transfer", Args: []any{second, 100}},
			{Method: "approve", Args: []any{deployer, 47}},
			{Method: "allowance", Args: []any{deployer, deployer}},
			{Method: "transferFrom", Args: []any{deployer, second, 42}},
		}
	},
}

// erc721ContractType profiles the non-fungible token interface. The contract is expected to mint tokens 1 through 3 to
// the deployer and to declare totalSupply. transfer and allowance, which ERC721 does not define, are optional.
var erc721ContractType = ContractType{
	Name:    "ERC721",
	Aliases: []string{"ERC721", "EIP721", "erc721", "eip721"},
	Calls: func(deployer common.Address, second common.Address) []MethodCall {
		return []MethodCall{
			{Method: "totalSupply"},
			{Method: "balanceOf", Args: []any{deployer}},
			{Method: "transfer", Args: []any{second, 1}, Optional: true},
			{Method: "approve", Args: []any{second, 2}},
			{Method: "allowance", Args: []any{deployer, deployer}, Optional: true},
			{Method: "transferFrom", Args: []any{deployer, second, 2}},
			{Method: "ownerOf", Args: []any{3}},
			{Method: "setApprovalForAll", Args: []any{second, true}},
			{Method: "safeTransferFrom", Args: []any{deployer, second, 3}},
			{Method: "getApproved", Args: []any{3}},
			{Method: "isApprovedForAll", Args: []any{deployer, second}},
			{Method: "ownerOf", Label: "ownerOf#2", Args: []any{3}},
		}
	},
}

// contractTypes lists the supported contract types.
var contractTypes = []*ContractType{&erc20ContractType, &erc721ContractType}

// LookupContractType returns the contract type selected by the provided name or alias.
func LookupContractType(name string) (*ContractType, error) {
	for _, contractType := range contractTypes {
		for _, alias := range contractType.Aliases {
			if alias == name {
				return contractType, nil
			}
		}
	}
	return nil, &UnsupportedContractTypeError{ContractType: name, Supported: SupportedContractTypes()}
}

// SupportedContractTypes returns every accepted contract type name, sorted.
func SupportedContractTypes() []string {
	var names []string
	for _, contractType := range contractTypes {
		names = append(names, contractType.Aliases...)
	}
	sort.Strings(names)
	return names
}
