package projector

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// RefreshCurrency re-reads the metadata of a known currency, including one
// that already has a name. A field whose call fails keeps its stored value.
func (p *Projector) RefreshCurrency(ctx context.Context, addr common.Address) (model.Currency, error) {
	if p.resolver == nil {
		return model.Currency{}, errors.New("metadata resolver is not configured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var refreshed model.Currency
	err := p.store.WithTx(ctx, func(tx storage.Tx) error {
		currency, ok, err := tx.GetCurrency(ctx, addr)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(errs.NotFound, "currency %s", addr.Hex())
		}

		p.resolver.Forget(addr)
		currency.CurrencyMetadata = mergeMetadata(currency.CurrencyMetadata, p.resolver.Resolve(ctx, addr))
		refreshed = currency
		return tx.PutCurrency(ctx, currency)
	})
	if err != nil {
		return model.Currency{}, err
	}
	p.logger.Info("currency refreshed", zap.String("currency", addr.Hex()), zap.Bool("named", refreshed.Enriched()))
	return refreshed, nil
}

func mergeMetadata(stored, fresh model.CurrencyMetadata) model.CurrencyMetadata {
	out := stored
	out.Name = pick(fresh.Name, stored.Name)
	out.Symbol = pick(fresh.Symbol, stored.Symbol)
	out.Decimals = pick(fresh.Decimals, stored.Decimals)
	if fresh.Underlying != nil {
		if stored.Underlying == nil || *stored.Underlying != *fresh.Underlying {
			out.UnderlyingName, out.UnderlyingSymbol, out.UnderlyingDecimals = nil, nil, nil
		}
		out.Underlying = fresh.Underlying
		out.UnderlyingName = pick(fresh.UnderlyingName, out.UnderlyingName)
		out.UnderlyingSymbol = pick(fresh.UnderlyingSymbol, out.UnderlyingSymbol)
		out.UnderlyingDecimals = pick(fresh.UnderlyingDecimals, out.UnderlyingDecimals)
	}
	return out
}

func pick[T any](fresh, stored *T) *T {
	if fresh != nil {
		return fresh
	}
	return stored
}
