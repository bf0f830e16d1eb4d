package contracts

import (
	"bytes"
	"math/big"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Uint64 narrows an on-chain integer. Rates, periods and counters never exceed 64 bits;
// nil maps to zero and larger values saturate. Slot ids are range-checked by the decoder.
func Uint64(value *big.Int) uint64 {
	if value == nil || value.Sign() <= 0 {
		return 0
	}
	if !value.IsUint64() {
		return ^uint64(0)
	}
	return value.Uint64()
}

// Decimal converts a raw token amount into an exact decimal. nil maps to zero.
func Decimal(value *big.Int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0)
}

// BytesToString decodes a bytes32 name/symbol result.
func BytesToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

// AsAddress converts an unpacked ABI value to an address.
func AsAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, errors.Errorf("unsupported address type %T", value)
	}
}

// AsUint8 converts an unpacked ABI value to a uint8.
func AsUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case uint16:
		return uint8(v), nil
	case uint32:
		return uint8(v), nil
	case uint64:
		return uint8(v), nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, errors.Errorf("unsupported uint8 type %T", value)
	}
}
