package abiutils

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
)

// UnpackEventAndValues takes a given contract ABI, and an emitted event log, and attempts to find an event definition
// for the log, and unpack its input values in declaration order.
// Returns the event definition and unpacked event input values, or nil for both if an event definition could not
// be resolved, or values could not be unpacked.
func UnpackEventAndValues(contractAbi *abi.ABI, eventLog *coreTypes.Log) (*abi.Event, []any) {
	if contractAbi == nil || len(eventLog.Topics) == 0 {
		return nil, nil
	}

	event, err := contractAbi.EventByID(eventLog.Topics[0])
	if err != nil {
		return nil, nil
	}

	// go-ethereum's ABI API does not unpack indexed arguments, so indexed arguments are re-declared as un-indexed and
	// unpacked from the concatenated topics, while the remaining arguments are unpacked from the log data.
	var (
		unindexedInputArguments abi.Arguments
		indexedInputArguments   abi.Arguments
	)
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexedInputArguments = append(indexedInputArguments, abi.Argument{Name: arg.Name, Type: arg.Type})
		} else {
			unindexedInputArguments = append(unindexedInputArguments, arg)
		}
	}
	if len(eventLog.Topics) != len(indexedInputArguments)+1 {
		return nil, nil
	}

	var indexedInputData []byte
	for i := range indexedInputArguments {
		indexedInputData = append(indexedInputData, eventLog.Topics[i+1].Bytes()...)
	}

	unindexedInputValues, err := unindexedInputArguments.Unpack(eventLog.Data)
	if err != nil {
		return nil, nil
	}
	indexedInputValues, err := indexedInputArguments.Unpack(indexedInputData)
	if err != nil {
		return nil, nil
	}

	// Merge the values back into declaration order
	var (
		currentIndexed   int
		currentUnindexed int
		inputValues      []any
	)
	for _, arg := range event.Inputs {
		if arg.Indexed {
			inputValues = append(inputValues, indexedInputValues[currentIndexed])
			currentIndexed++
		} else {
			inputValues = append(inputValues, unindexedInputValues[currentUnindexed])
			currentUnindexed++
		}
	}
	return event, inputValues
}

// FormatEventLog renders an event log as "Name(value, ...)", or an empty string if it could not be decoded.
func FormatEventLog(contractAbi *abi.ABI, eventLog *coreTypes.Log) string {
	event, values := UnpackEventAndValues(contractAbi, eventLog)
	if event == nil {
		return ""
	}
	args := make([]string, len(values))
	for i, value := range values {
		args[i] = fmt.Sprintf("%v", value)
	}
	return fmt.Sprintf("%s(%s)", event.Name, strings.Join(args, ", "))
}
