package storage

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"slotScope/internal/model"
)

// Archive defines a sink for raw log records.
type Archive interface {
	PutLogBatch(logs []model.LogRecord) error
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Page bounds a listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default and maximum limit.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// LandFilter selects lands. Results are ordered newest first.
type LandFilter struct {
	Hub     *common.Address
	Factory *common.Address
	Owner   *common.Address
	Page
}

type SlotFilter struct {
	Land   common.Address
	Vacant *bool
}

// EventFilter selects history records. Results are ordered newest first.
type EventFilter struct {
	SlotID string
	Kind   model.SlotEventKind
	Actor  *common.Address
	Page
}

type Stats struct {
	Hubs          int64 `json:"hubs"`
	Factories     int64 `json:"factories"`
	Lands         int64 `json:"lands"`
	Slots         int64 `json:"slots"`
	OccupiedSlots int64 `json:"occupied_slots"`
	Events        int64 `json:"events"`
	Currencies    int64 `json:"currencies"`
	Modules       int64 `json:"modules"`
}

// Reader exposes the projected entities. Getters return false when the entity is absent.
type Reader interface {
	GetHub(ctx context.Context, addr common.Address) (model.Hub, bool, error)
	GetFactory(ctx context.Context, addr common.Address) (model.Factory, bool, error)
	GetLand(ctx context.Context, addr common.Address) (model.Land, bool, error)
	GetSlot(ctx context.Context, id string) (model.Slot, bool, error)
	GetCurrency(ctx context.Context, addr common.Address) (model.Currency, bool, error)
	GetModule(ctx context.Context, addr common.Address) (model.Module, bool, error)

	ListLands(ctx context.Context, filter LandFilter) ([]model.Land, error)
	ListSlots(ctx context.Context, filter SlotFilter) ([]model.Slot, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]model.SlotEvent, error)
	ListCurrencies(ctx context.Context, page Page) ([]model.Currency, error)
	ListModules(ctx context.Context, page Page) ([]model.Module, error)
	Stats(ctx context.Context) (Stats, error)
}

// Writer persists entities. Put* are upserts keyed by the entity id.
type Writer interface {
	PutHub(ctx context.Context, hub model.Hub) error
	PutFactory(ctx context.Context, factory model.Factory) error
	PutLand(ctx context.Context, land model.Land) error
	PutSlot(ctx context.Context, slot model.Slot) error
	PutCurrency(ctx context.Context, currency model.Currency) error
	PutModule(ctx context.Context, module model.Module) error
	// InsertEvent appends a history record. It fails with errs.Duplicate when the id exists.
	InsertEvent(ctx context.Context, event model.SlotEvent) error
}

// Tx sees its own writes. Nothing is visible to other readers until the
// enclosing WithTx returns nil.
type Tx interface {
	Reader
	Writer
}

// Store is the entity store used by the projector and the query API.
type Store interface {
	Reader
	WithTx(ctx context.Context, fn func(tx Tx) error) error
	// LoadState returns the last processed block recorded under name.
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, block uint64) error
	Close()
}
