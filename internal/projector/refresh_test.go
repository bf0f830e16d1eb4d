package projector

import (
	"bytes"
	"context"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/common/errs"
	"slotScope/internal/contracts"
	"slotScope/internal/metadata"
)

// tokenCaller answers ERC20 reads by method name for any address. Anything else reverts.
type tokenCaller struct {
	t      *testing.T
	values map[string][]interface{}
}

func (c *tokenCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	parsed, err := contracts.TokenABI()
	require.NoError(c.t, err)
	for name, values := range c.values {
		method := parsed.Methods[name]
		if bytes.Equal(method.ID, msg.Data[:4]) {
			return method.Outputs.Pack(values...)
		}
	}
	return nil, errors.New("execution reverted")
}

func TestRefreshCurrency(t *testing.T) {
	h := newHarness(t)
	caller := &tokenCaller{t: t, values: map[string][]interface{}{
		"name":   {"USD Coin"},
		"symbol": {"USDC"},
	}}
	p, err := New(h.store, h.registry, metadata.NewResolver(caller, nil), nil)
	require.NoError(t, err)
	h.projector = p

	h.emit(hubAddr, contracts.HubABI, "CurrencyAllowedUpdated", usdc, true)
	currency, ok, err := h.store.GetCurrency(h.ctx, usdc)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, currency.Name)
	assert.Nil(t, currency.Decimals, "reverted decimals stay unset")

	caller.values["decimals"] = []interface{}{uint8(6)}
	h.emit(hubAddr, contracts.HubABI, "CurrencyAllowedUpdated", usdc, false)
	currency, _, err = h.store.GetCurrency(h.ctx, usdc)
	require.NoError(t, err)
	assert.Nil(t, currency.Decimals, "a named currency is not re-queried by events")
	assert.False(t, currency.Allowed)

	refreshed, err := p.RefreshCurrency(h.ctx, usdc)
	require.NoError(t, err)
	require.NotNil(t, refreshed.Decimals)
	assert.EqualValues(t, 6, *refreshed.Decimals)
	assert.False(t, refreshed.Allowed)

	caller.values = map[string][]interface{}{}
	refreshed, err = p.RefreshCurrency(h.ctx, usdc)
	require.NoError(t, err)
	require.NotNil(t, refreshed.Name)
	assert.Equal(t, "USD Coin", *refreshed.Name, "failed reads keep stored fields")
	require.NotNil(t, refreshed.Decimals)

	stored, _, err := h.store.GetCurrency(h.ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, refreshed, stored)

	_, err = p.RefreshCurrency(h.ctx, moduleA)
	assert.True(t, errors.Is(err, errs.NotFound))

	bare, err := New(h.store, h.registry, nil, nil)
	require.NoError(t, err)
	_, err = bare.RefreshCurrency(h.ctx, usdc)
	assert.Error(t, err)
}
