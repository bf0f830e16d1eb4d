package metadata

import (
	"context"
	"math/big"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"slotScope/internal/contracts"
	"slotScope/internal/model"
)

// Caller performs read-only contract calls. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver enriches currencies with ERC20 metadata. Every read is independent:
// a failed call leaves only its own field unset. Each token is attempted at most
// once per process unless Forget is called.
type Resolver struct {
	caller Caller
	logger *zap.Logger

	mu        sync.Mutex
	attempted map[common.Address]struct{}
}

func NewResolver(caller Caller, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		caller:    caller,
		logger:    logger,
		attempted: make(map[common.Address]struct{}),
	}
}

// Attempted reports whether token was already resolved in this process.
func (r *Resolver) Attempted(token common.Address) bool {
	if r == nil {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.attempted[token]
	return ok
}

// Forget allows token to be resolved again.
func (r *Resolver) Forget(token common.Address) {
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.attempted, token)
	r.mu.Unlock()
}

// Resolve reads name, symbol and decimals of token and, when it wraps another
// asset, the same fields of the underlying token.
func (r *Resolver) Resolve(ctx context.Context, token common.Address) model.CurrencyMetadata {
	var meta model.CurrencyMetadata
	if r == nil || r.caller == nil {
		return meta
	}

	r.mu.Lock()
	r.attempted[token] = struct{}{}
	r.mu.Unlock()

	meta.Name, meta.Symbol, meta.Decimals = r.tokenFields(ctx, token)

	underlying, ok := r.underlying(ctx, token)
	if !ok {
		return meta
	}
	meta.Underlying = &underlying
	meta.UnderlyingName, meta.UnderlyingSymbol, meta.UnderlyingDecimals = r.tokenFields(ctx, underlying)
	return meta
}

// FactoryAdmin reads admin() of a slots factory.
func (r *Resolver) FactoryAdmin(ctx context.Context, factory common.Address) (*common.Address, bool) {
	if r == nil || r.caller == nil {
		return nil, false
	}
	factoryABI, err := contracts.FactoryABI()
	if err != nil {
		return nil, false
	}
	values, err := r.call(ctx, factory, factoryABI, "admin")
	if err != nil {
		r.failed("admin", factory, err)
		return nil, false
	}
	admin, err := contracts.AsAddress(values[0])
	if err != nil {
		r.failed("admin", factory, err)
		return nil, false
	}
	return &admin, true
}

func (r *Resolver) tokenFields(ctx context.Context, token common.Address) (name *string, symbol *string, decimals *uint8) {
	stringABI, err := contracts.TokenABI()
	if err != nil {
		r.logger.Error("parse token abi", zap.Error(err))
		return nil, nil, nil
	}
	bytes32ABI, err := contracts.TokenBytes32ABI()
	if err != nil {
		r.logger.Error("parse token bytes32 abi", zap.Error(err))
		return nil, nil, nil
	}

	name = r.textField(ctx, token, "name", stringABI, bytes32ABI)
	symbol = r.textField(ctx, token, "symbol", stringABI, bytes32ABI)

	if values, err := r.call(ctx, token, stringABI, "decimals"); err == nil {
		if d, err := contracts.AsUint8(values[0]); err == nil {
			decimals = &d
		} else {
			r.failed("decimals", token, err)
		}
	} else {
		r.failed("decimals", token, err)
	}
	return name, symbol, decimals
}

func (r *Resolver) textField(ctx context.Context, token common.Address, method string, stringABI, bytes32ABI abi.ABI) *string {
	if values, err := r.call(ctx, token, stringABI, method); err == nil {
		if text, ok := values[0].(string); ok {
			return &text
		}
	}
	values, err := r.call(ctx, token, bytes32ABI, method)
	if err != nil {
		r.failed(method, token, err)
		return nil
	}
	text, ok := contracts.BytesToString(values[0])
	if !ok {
		r.failed(method, token, errors.Errorf("unexpected %s type %T", method, values[0]))
		return nil
	}
	return &text
}

// underlying tries ERC4626 asset() then the Compound-style underlying().
func (r *Resolver) underlying(ctx context.Context, token common.Address) (common.Address, bool) {
	tokenABI, err := contracts.TokenABI()
	if err != nil {
		return common.Address{}, false
	}
	for _, method := range []string{"asset", "underlying"} {
		values, err := r.call(ctx, token, tokenABI, method)
		if err != nil {
			r.logger.Debug("underlying call failed", zap.String("token", token.Hex()), zap.String("method", method), zap.Error(err))
			continue
		}
		addr, err := contracts.AsAddress(values[0])
		if err != nil || addr == (common.Address{}) || addr == token {
			continue
		}
		return addr, true
	}
	return common.Address{}, false
}

func (r *Resolver) call(ctx context.Context, to common.Address, parsed abi.ABI, method string) ([]interface{}, error) {
	data, err := parsed.Pack(method)
	if err != nil {
		return nil, errors.Wrapf(err, "pack %s", method)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	if len(values) == 0 {
		return nil, errors.Errorf("%s returned no values", method)
	}
	return values, nil
}

func (r *Resolver) failed(field string, token common.Address, err error) {
	callFailures.WithLabelValues(field).Inc()
	r.logger.Debug("metadata call failed", zap.String("token", token.Hex()), zap.String("field", field), zap.Error(err))
}
