package indexer

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"

	"slotScope/internal/model"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
)

// SeedRegistry registers the configured roots and every land already in
// store. Factory-deployed lands are single-slot instances.
func SeedRegistry(ctx context.Context, reg *registry.Registry, store storage.Reader, hubs, factories []common.Address, fromBlock uint64) error {
	for _, hub := range hubs {
		reg.Register(hub, model.SourceHub, fromBlock)
	}
	for _, factory := range factories {
		reg.Register(factory, model.SourceFactory, fromBlock)
	}

	page := storage.Page{Limit: storage.MaxLimit}
	for {
		lands, err := store.ListLands(ctx, storage.LandFilter{Page: page})
		if err != nil {
			return errors.Wrap(err, "list lands")
		}
		for _, land := range lands {
			kind := model.SourceLand
			if land.Factory != nil {
				kind = model.SourceSlot
			}
			reg.Register(land.Address, kind, land.CreatedBlock)
		}
		if len(lands) < page.Limit {
			return nil
		}
		page.Offset += len(lands)
	}
}
