package abiutils

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/crytic/tokengas/utils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// CoerceArguments converts the provided values into the Go representations go-ethereum expects when packing the given
// arguments. Values may already be of the expected type, or be loosely typed (integers of any width, decimal or hex
// strings, addresses as hex strings), as is the case for command line input and fixed method arguments.
func CoerceArguments(arguments abi.Arguments, values []any) ([]any, error) {
	if len(arguments) != len(values) {
		return nil, errors.Errorf("expected %d arguments but %d were provided", len(arguments), len(values))
	}

	coerced := make([]any, len(values))
	for i, argument := range arguments {
		value, err := CoerceArgument(argument.Type, values[i])
		if err != nil {
			name := argument.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, errors.Wrapf(err, "invalid value for argument %s (%s)", name, argument.Type.String())
		}
		coerced[i] = value
	}
	return coerced, nil
}

// CoerceArgument converts a single value into the Go representation expected for the given ABI type.
func CoerceArgument(inputType abi.Type, value any) (any, error) {
	switch inputType.T {
	case abi.UintTy, abi.IntTy:
		return coerceInteger(inputType, value)
	case abi.AddressTy:
		return coerceAddress(value)
	case abi.BoolTy:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			return b, errors.WithStack(err)
		}
	case abi.StringTy:
		switch v := value.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case abi.BytesTy:
		return coerceBytes(value)
	case abi.FixedBytesTy:
		b, err := coerceBytes(value)
		if err != nil {
			return nil, err
		}
		if len(b) > inputType.Size {
			return nil, errors.Errorf("value is %d bytes long but the type holds %d", len(b), inputType.Size)
		}
		// Fixed bytes are represented as byte arrays of the exact size, left aligned
		array := reflect.New(inputType.GetType()).Elem()
		reflect.Copy(array, reflect.ValueOf(b))
		return array.Interface(), nil
	}

	// Values which already have the expected representation are passed through unchanged
	if value != nil && reflect.TypeOf(value) == inputType.GetType() {
		return value, nil
	}
	return nil, errors.Errorf("cannot use %T as %s", value, inputType.String())
}

// coerceInteger converts a value into the integer representation go-ethereum uses for the given type: native integer
// types for sizes up to 64 bits and *big.Int otherwise.
func coerceInteger(inputType abi.Type, value any) (any, error) {
	signed := inputType.T == abi.IntTy
	b, err := toBigInt(value, signed)
	if err != nil {
		return nil, err
	}
	if !utils.IsIntegerInBounds(b, signed, inputType.Size) {
		return nil, errors.Errorf("value %v is out of bounds", b)
	}

	// Only 8, 16, 32 and 64 bit integers have native representations
	targetType := inputType.GetType()
	if targetType == reflect.TypeOf(b) {
		return b, nil
	}
	if signed {
		return reflect.ValueOf(b.Int64()).Convert(targetType).Interface(), nil
	}
	return reflect.ValueOf(b.Uint64()).Convert(targetType).Interface(), nil
}

// toBigInt converts any integer-like value into a *big.Int.
func toBigInt(value any, signed bool) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case big.Int:
		return new(big.Int).Set(&v), nil
	case *uint256.Int:
		return v.ToBig(), nil
	case int:
		return big.NewInt(int64(v)), nil
	case int8:
		return big.NewInt(int64(v)), nil
	case int16:
		return big.NewInt(int64(v)), nil
	case int32:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case string:
		return parseIntegerString(strings.TrimSpace(v), signed)
	}
	return nil, errors.Errorf("cannot use %T as an integer", value)
}

// parseIntegerString parses a decimal or 0x-prefixed hex string. Unsigned decimal values are parsed as 256-bit words,
// which rejects negative numbers and anything wider than the largest Solidity integer.
func parseIntegerString(s string, signed bool) (*big.Int, error) {
	isHex := strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
	if !signed && !isHex {
		word, err := uint256.FromDecimal(s)
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q as an unsigned integer", s)
		}
		return word.ToBig(), nil
	}

	b, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, errors.Errorf("could not parse %q as an integer", s)
	}
	return b, nil
}

// coerceAddress converts an address or hex string into a common.Address.
func coerceAddress(value any) (any, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		if v != nil {
			return *v, nil
		}
	case string:
		if common.IsHexAddress(strings.TrimSpace(v)) {
			return common.HexToAddress(strings.TrimSpace(v)), nil
		}
		return nil, errors.Errorf("%q is not a valid address", v)
	}
	return nil, errors.Errorf("cannot use %T as an address", value)
}

// coerceBytes converts a byte slice or hex string into a byte slice.
func coerceBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case common.Hash:
		return v.Bytes(), nil
	case string:
		b, err := hexutil.Decode(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.Wrapf(err, "could not parse %q as hex encoded bytes", v)
		}
		return b, nil
	}
	return nil, errors.Errorf("cannot use %T as bytes", value)
}
