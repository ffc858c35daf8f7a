package abiutils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	coreTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mustType creates an ABI type or fails the test.
func mustType(t *testing.T, typeName string) abi.Type {
	abiType, err := abi.NewType(typeName, "", nil)
	require.NoError(t, err)
	return abiType
}

// concat joins a selector and encoded arguments into revert data.
func concat(selector []byte, data []byte) []byte {
	return append(append([]byte{}, selector...), data...)
}

// TestCoerceIntegers ensures integers are converted to the representation go-ethereum packs for each width.
func TestCoerceIntegers(t *testing.T) {
	value, err := CoerceArgument(mustType(t, "uint256"), 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), value)

	value, err = CoerceArgument(mustType(t, "uint256"), "1200000")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1200000), value)

	value, err = CoerceArgument(mustType(t, "uint256"), "0xff")
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(255), value)

	value, err = CoerceArgument(mustType(t, "uint256"), uint256.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), value)

	value, err = CoerceArgument(mustType(t, "uint8"), "1")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), value)

	value, err = CoerceArgument(mustType(t, "int64"), -5)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), value)

	value, err = CoerceArgument(mustType(t, "uint24"), 5)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), value)

	_, err = CoerceArgument(mustType(t, "uint8"), 256)
	assert.Error(t, err)
	_, err = CoerceArgument(mustType(t, "uint256"), "-1")
	assert.Error(t, err)
	_, err = CoerceArgument(mustType(t, "uint256"), "twelve")
	assert.Error(t, err)
	_, err = CoerceArgument(mustType(t, "uint256"), true)
	assert.Error(t, err)
}

// TestCoerceOtherTypes ensures addresses, booleans, strings and byte types are converted.
func TestCoerceOtherTypes(t *testing.T) {
	address := common.HexToAddress("0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf")

	value, err := CoerceArgument(mustType(t, "address"), address.Hex())
	require.NoError(t, err)
	assert.Equal(t, address, value)

	value, err = CoerceArgument(mustType(t, "address"), &address)
	require.NoError(t, err)
	assert.Equal(t, address, value)

	_, err = CoerceArgument(mustType(t, "address"), "0x1234")
	assert.Error(t, err)

	value, err = CoerceArgument(mustType(t, "bool"), "true")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	value, err = CoerceArgument(mustType(t, "string"), "TST")
	require.NoError(t, err)
	assert.Equal(t, "TST", value)

	value, err = CoerceArgument(mustType(t, "bytes"), "0x0102")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, value)

	value, err = CoerceArgument(mustType(t, "bytes4"), "0x01020304")
	require.NoError(t, err)
	assert.Equal(t, [4]byte{1, 2, 3, 4}, value)

	_, err = CoerceArgument(mustType(t, "bytes2"), "0x010203")
	assert.Error(t, err)

	value, err = CoerceArgument(mustType(t, "uint256[]"), []*big.Int{big.NewInt(1)})
	require.NoError(t, err)
	assert.Equal(t, []*big.Int{big.NewInt(1)}, value)
}

// TestCoerceArguments ensures constructor style string arguments are converted and packable.
func TestCoerceArguments(t *testing.T) {
	arguments := abi.Arguments{
		{Name: "_initialAmount", Type: mustType(t, "uint256")},
		{Name: "_tokenName", Type: mustType(t, "string")},
		{Name: "_decimalUnits", Type: mustType(t, "uint8")},
		{Name: "_tokenSymbol", Type: mustType(t, "string")},
	}

	values, err := CoerceArguments(arguments, []any{"1200000", "Test ERC20 token", "1", "TST"})
	require.NoError(t, err)
	_, err = arguments.Pack(values...)
	assert.NoError(t, err)

	_, err = CoerceArguments(arguments, []any{"1200000"})
	assert.ErrorContains(t, err, "expected 4 arguments")

	_, err = CoerceArguments(arguments, []any{"1200000", "Test ERC20 token", "300", "TST"})
	assert.ErrorContains(t, err, "_decimalUnits")
}

// TestDecodeRevertReason ensures builtin and custom errors are decoded from revert data.
func TestDecodeRevertReason(t *testing.T) {
	errorData, err := errorReturnDataAbi.Inputs.Pack("insufficient balance")
	require.NoError(t, err)
	assert.Equal(t, "insufficient balance", DecodeRevertReason(nil, concat(errorReturnDataAbi.ID, errorData)))

	panicData, err := panicReturnDataAbi.Inputs.Pack(big.NewInt(PanicCodeArithmeticUnderOverflow))
	require.NoError(t, err)
	assert.Equal(t, "panic: arithmetic underflow", DecodeRevertReason(nil, concat(panicReturnDataAbi.ID, panicData)))

	contractAbi, err := abi.JSON(strings.NewReader(`[{"type":"error","name":"ERC721NonexistentToken","inputs":[{"name":"tokenId","type":"uint256"}]}]`))
	require.NoError(t, err)
	customError := contractAbi.Errors["ERC721NonexistentToken"]
	customData, err := customError.Inputs.Pack(big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, "ERC721NonexistentToken(3)", DecodeRevertReason(&contractAbi, concat(customError.ID.Bytes()[:4], customData)))

	assert.Equal(t, "", DecodeRevertReason(nil, nil))
	assert.Nil(t, GetRevertData(assert.AnError))
}

// TestFormatEventLog ensures indexed and un-indexed event arguments are decoded in declaration order.
func TestFormatEventLog(t *testing.T) {
	contractAbi, err := abi.JSON(strings.NewReader(`[{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]}]`))
	require.NoError(t, err)

	from := common.HexToAddress("0x1000")
	to := common.HexToAddress("0x2000")
	data, err := abi.Arguments{{Type: mustType(t, "uint256")}}.Pack(big.NewInt(100))
	require.NoError(t, err)

	eventLog := &coreTypes.Log{
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}

	event, values := UnpackEventAndValues(&contractAbi, eventLog)
	require.NotNil(t, event)
	assert.Equal(t, []any{from, to, big.NewInt(100)}, values)
	assert.Equal(t, "Transfer("+from.String()+", "+to.String()+", 100)", FormatEventLog(&contractAbi, eventLog))

	assert.Equal(t, "", FormatEventLog(nil, eventLog))
}
