package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// Store keeps every entity in process memory. It backs replays and tests.
type Store struct {
	mu    sync.RWMutex
	data  *tables
	state map[string]uint64
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{data: newTables(), state: make(map[string]uint64)}
}

// WithTx runs fn against a buffered view. Writers are serialized; the
// buffered writes are applied only when fn returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &view{base: s.data, pending: newTables()}
	if err := fn(v); err != nil {
		return err
	}
	s.data.merge(v.pending)
	return nil
}

func (s *Store) LoadState(_ context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, errors.New("state name required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	block, ok := s.state[name]
	return block, ok, nil
}

func (s *Store) SaveState(_ context.Context, name string, block uint64) error {
	if name == "" {
		return errors.New("state name required")
	}
	s.mu.Lock()
	s.state[name] = block
	s.mu.Unlock()
	return nil
}

func (s *Store) Close() {}

func (s *Store) read() *view {
	return &view{base: s.data}
}

func (s *Store) GetHub(ctx context.Context, addr common.Address) (model.Hub, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetHub(ctx, addr)
}

func (s *Store) GetFactory(ctx context.Context, addr common.Address) (model.Factory, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetFactory(ctx, addr)
}

func (s *Store) GetLand(ctx context.Context, addr common.Address) (model.Land, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetLand(ctx, addr)
}

func (s *Store) GetSlot(ctx context.Context, id string) (model.Slot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetSlot(ctx, id)
}

func (s *Store) GetCurrency(ctx context.Context, addr common.Address) (model.Currency, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetCurrency(ctx, addr)
}

func (s *Store) GetModule(ctx context.Context, addr common.Address) (model.Module, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetModule(ctx, addr)
}

func (s *Store) ListLands(ctx context.Context, filter storage.LandFilter) ([]model.Land, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListLands(ctx, filter)
}

func (s *Store) ListSlots(ctx context.Context, filter storage.SlotFilter) ([]model.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListSlots(ctx, filter)
}

func (s *Store) ListEvents(ctx context.Context, filter storage.EventFilter) ([]model.SlotEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListEvents(ctx, filter)
}

func (s *Store) ListCurrencies(ctx context.Context, page storage.Page) ([]model.Currency, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListCurrencies(ctx, page)
}

func (s *Store) ListModules(ctx context.Context, page storage.Page) ([]model.Module, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().ListModules(ctx, page)
}

func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Stats(ctx)
}

type tables struct {
	hubs       map[common.Address]model.Hub
	factories  map[common.Address]model.Factory
	lands      map[common.Address]model.Land
	slots      map[string]model.Slot
	currencies map[common.Address]model.Currency
	modules    map[common.Address]model.Module
	events     []model.SlotEvent
	eventIDs   map[string]struct{}
}

func newTables() *tables {
	return &tables{
		hubs:       make(map[common.Address]model.Hub),
		factories:  make(map[common.Address]model.Factory),
		lands:      make(map[common.Address]model.Land),
		slots:      make(map[string]model.Slot),
		currencies: make(map[common.Address]model.Currency),
		modules:    make(map[common.Address]model.Module),
		eventIDs:   make(map[string]struct{}),
	}
}

func (t *tables) merge(o *tables) {
	for k, v := range o.hubs {
		t.hubs[k] = v
	}
	for k, v := range o.factories {
		t.factories[k] = v
	}
	for k, v := range o.lands {
		t.lands[k] = v
	}
	for k, v := range o.slots {
		t.slots[k] = v
	}
	for k, v := range o.currencies {
		t.currencies[k] = v
	}
	for k, v := range o.modules {
		t.modules[k] = v
	}
	for _, event := range o.events {
		t.events = append(t.events, event)
		t.eventIDs[event.ID] = struct{}{}
	}
}

// view reads pending writes before the committed tables. A nil pending makes it read-only.
type view struct {
	base    *tables
	pending *tables
}

func lookup[K comparable, V any](base, pending map[K]V, key K) (V, bool) {
	if pending != nil {
		if v, ok := pending[key]; ok {
			return v, true
		}
	}
	v, ok := base[key]
	return v, ok
}

func values[K comparable, V any](base, pending map[K]V) []V {
	if len(pending) == 0 {
		return lo.Values(base)
	}
	return lo.Values(lo.Assign(base, pending))
}

func paginate[T any](items []T, page storage.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

func (v *view) pendingTables() *tables {
	if v.pending == nil {
		return &tables{}
	}
	return v.pending
}

func (v *view) GetHub(_ context.Context, addr common.Address) (model.Hub, bool, error) {
	hub, ok := lookup(v.base.hubs, v.pendingTables().hubs, addr)
	return hub, ok, nil
}

func (v *view) GetFactory(_ context.Context, addr common.Address) (model.Factory, bool, error) {
	factory, ok := lookup(v.base.factories, v.pendingTables().factories, addr)
	return factory, ok, nil
}

func (v *view) GetLand(_ context.Context, addr common.Address) (model.Land, bool, error) {
	land, ok := lookup(v.base.lands, v.pendingTables().lands, addr)
	return land, ok, nil
}

func (v *view) GetSlot(_ context.Context, id string) (model.Slot, bool, error) {
	slot, ok := lookup(v.base.slots, v.pendingTables().slots, strings.ToLower(id))
	return slot, ok, nil
}

func (v *view) GetCurrency(_ context.Context, addr common.Address) (model.Currency, bool, error) {
	currency, ok := lookup(v.base.currencies, v.pendingTables().currencies, addr)
	return currency, ok, nil
}

func (v *view) GetModule(_ context.Context, addr common.Address) (model.Module, bool, error) {
	module, ok := lookup(v.base.modules, v.pendingTables().modules, addr)
	return module, ok, nil
}

func (v *view) ListLands(_ context.Context, filter storage.LandFilter) ([]model.Land, error) {
	lands := lo.Filter(values(v.base.lands, v.pendingTables().lands), func(land model.Land, _ int) bool {
		if filter.Hub != nil && (land.Hub == nil || *land.Hub != *filter.Hub) {
			return false
		}
		if filter.Factory != nil && (land.Factory == nil || *land.Factory != *filter.Factory) {
			return false
		}
		if filter.Owner != nil && land.Owner != *filter.Owner {
			return false
		}
		return true
	})
	sort.Slice(lands, func(i, j int) bool {
		if lands[i].CreatedBlock != lands[j].CreatedBlock {
			return lands[i].CreatedBlock > lands[j].CreatedBlock
		}
		return lands[i].Address.Cmp(lands[j].Address) < 0
	})
	return paginate(lands, filter.Page), nil
}

func (v *view) ListSlots(_ context.Context, filter storage.SlotFilter) ([]model.Slot, error) {
	slots := lo.Filter(values(v.base.slots, v.pendingTables().slots), func(slot model.Slot, _ int) bool {
		if slot.Land != filter.Land {
			return false
		}
		return filter.Vacant == nil || slot.Vacant == *filter.Vacant
	})
	sort.Slice(slots, func(i, j int) bool { return slots[i].Index < slots[j].Index })
	return slots, nil
}

func (v *view) ListEvents(_ context.Context, filter storage.EventFilter) ([]model.SlotEvent, error) {
	all := append(append([]model.SlotEvent{}, v.base.events...), v.pendingTables().events...)
	events := lo.Filter(all, func(event model.SlotEvent, _ int) bool {
		if filter.SlotID != "" && event.SlotID != strings.ToLower(filter.SlotID) {
			return false
		}
		if filter.Kind != "" && event.Kind != filter.Kind {
			return false
		}
		if filter.Actor != nil && (event.Actor == nil || *event.Actor != *filter.Actor) {
			return false
		}
		return true
	})
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].BlockNumber != events[j].BlockNumber {
			return events[i].BlockNumber > events[j].BlockNumber
		}
		return events[i].LogIndex > events[j].LogIndex
	})
	return paginate(events, filter.Page), nil
}

func (v *view) ListCurrencies(_ context.Context, page storage.Page) ([]model.Currency, error) {
	currencies := values(v.base.currencies, v.pendingTables().currencies)
	sort.Slice(currencies, func(i, j int) bool { return currencies[i].Address.Cmp(currencies[j].Address) < 0 })
	return paginate(currencies, page), nil
}

func (v *view) ListModules(_ context.Context, page storage.Page) ([]model.Module, error) {
	modules := values(v.base.modules, v.pendingTables().modules)
	sort.Slice(modules, func(i, j int) bool { return modules[i].Address.Cmp(modules[j].Address) < 0 })
	return paginate(modules, page), nil
}

func (v *view) Stats(_ context.Context) (storage.Stats, error) {
	p := v.pendingTables()
	slots := values(v.base.slots, p.slots)
	return storage.Stats{
		Hubs:          int64(len(values(v.base.hubs, p.hubs))),
		Factories:     int64(len(values(v.base.factories, p.factories))),
		Lands:         int64(len(values(v.base.lands, p.lands))),
		Slots:         int64(len(slots)),
		OccupiedSlots: int64(lo.CountBy(slots, func(slot model.Slot) bool { return !slot.Vacant })),
		Events:        int64(len(v.base.events) + len(p.events)),
		Currencies:    int64(len(values(v.base.currencies, p.currencies))),
		Modules:       int64(len(values(v.base.modules, p.modules))),
	}, nil
}

func (v *view) writable() (*tables, error) {
	if v.pending == nil {
		return nil, errors.New("read-only view")
	}
	return v.pending, nil
}

func (v *view) PutHub(_ context.Context, hub model.Hub) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.hubs[hub.Address] = hub
	return nil
}

func (v *view) PutFactory(_ context.Context, factory model.Factory) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.factories[factory.Address] = factory
	return nil
}

func (v *view) PutLand(_ context.Context, land model.Land) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.lands[land.Address] = land
	return nil
}

func (v *view) PutSlot(_ context.Context, slot model.Slot) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.slots[strings.ToLower(slot.ID)] = slot
	return nil
}

func (v *view) PutCurrency(_ context.Context, currency model.Currency) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.currencies[currency.Address] = currency
	return nil
}

func (v *view) PutModule(_ context.Context, module model.Module) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	p.modules[module.Address] = module
	return nil
}

func (v *view) InsertEvent(_ context.Context, event model.SlotEvent) error {
	p, err := v.writable()
	if err != nil {
		return err
	}
	if _, ok := v.base.eventIDs[event.ID]; ok {
		return errors.Wrapf(errs.Duplicate, "event %s", event.ID)
	}
	if _, ok := p.eventIDs[event.ID]; ok {
		return errors.Wrapf(errs.Duplicate, "event %s", event.ID)
	}
	p.events = append(p.events, event)
	p.eventIDs[event.ID] = struct{}{}
	return nil
}
