package projector

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"slotScope/common/errs"
	"slotScope/internal/contracts"
	"slotScope/internal/metadata"
	"slotScope/internal/model"
	"slotScope/internal/registry"
	"slotScope/internal/storage"
)

// ErrUndecodable marks logs whose payload does not match the ABI of their source kind.
var ErrUndecodable = errors.New("undecodable log")

// errAlreadyApplied is returned by handlers when the target entity has already
// folded in an event at or after this position.
var errAlreadyApplied = errors.New("event already applied")

// Outcome describes what Apply did with a log.
type Outcome string

const (
	Applied           Outcome = "applied"
	SkippedUnknown    Outcome = "unknown_source"
	SkippedEvent      Outcome = "unknown_event"
	SkippedRemoved    Outcome = "removed"
	SkippedDuplicate  Outcome = "duplicate"
	SkippedMissing    Outcome = "missing_entity"
	SkippedOutOfOrder Outcome = "out_of_order"
	Failed            Outcome = "failed"
)

// Event is a decoded log on its way to a handler.
type Event struct {
	Source  common.Address
	Kind    model.SourceKind
	Name    string
	Payload interface{}
	Log     model.LogRecord
	Pos     model.EventPosition

	discovered []registry.Source
}

// Timestamp is the block time of the log.
func (e *Event) Timestamp() uint64 {
	return e.Log.Timestamp
}

// discover queues addr for registration once the event commits.
func (e *Event) discover(addr common.Address, kind model.SourceKind) {
	e.discovered = append(e.discovered, registry.Source{Address: addr, Kind: kind, FromBlock: e.Pos.BlockNumber})
}

type handlerFunc func(ctx context.Context, tx storage.Tx, ev *Event) error

// Projector routes logs of registered sources to their handlers and applies
// each one in its own store transaction.
type Projector struct {
	store    storage.Store
	registry *registry.Registry
	decoder  *contracts.Decoder
	resolver *metadata.Resolver
	logger   *zap.Logger

	handlers map[model.SourceKind]map[string]handlerFunc

	mu   sync.Mutex
	last map[common.Address]model.EventPosition
}

// New builds a projector. resolver may be nil, in which case currencies are
// never enriched.
func New(store storage.Store, reg *registry.Registry, resolver *metadata.Resolver, logger *zap.Logger) (*Projector, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	decoder, err := contracts.NewDecoder()
	if err != nil {
		return nil, err
	}

	p := &Projector{
		store:    store,
		registry: reg,
		decoder:  decoder,
		resolver: resolver,
		logger:   logger,
		last:     make(map[common.Address]model.EventPosition),
	}
	p.handlers = map[model.SourceKind]map[string]handlerFunc{
		model.SourceHub: {
			"HubSettingsUpdated":     p.onHubSettingsUpdated,
			"LandOpened":             p.onLandOpened,
			"ModuleAllowedUpdated":   p.onModuleAllowedUpdated,
			"CurrencyAllowedUpdated": p.onCurrencyAllowedUpdated,
		},
		model.SourceFactory: {
			"SlotsDeployed": p.onSlotsDeployed,
		},
		model.SourceLand: {
			"SlotCreated":            p.onSlotCreated,
			"SlotPurchased":          p.onSlotPurchased,
			"SlotReleased":           p.onSlotReleased,
			"SlotLiquidated":         p.onSlotLiquidated,
			"PriceUpdated":           p.onLandPriceUpdated,
			"TaxRateUpdateProposed":  p.onTaxRateUpdateProposed,
			"TaxRateUpdateConfirmed": p.onTaxRateUpdateConfirmed,
			"TaxRateUpdateCancelled": p.onTaxRateUpdateCancelled,
			"SlotActivated":          p.onSlotActivated,
			"SlotDeactivated":        p.onSlotDeactivated,
			"SlotSettingsUpdated":    p.onSlotSettingsUpdated,
			"Deposited":              p.onLandDeposited,
			"Withdrawn":              p.onLandWithdrawn,
			"Settled":                p.onLandSettled,
			"TaxCollected":           p.onLandTaxCollected,
		},
		model.SourceSlot: {
			"Bought":                   p.onBought,
			"Released":                 p.onReleased,
			"Liquidated":               p.onLiquidated,
			"PriceUpdated":             p.onPriceUpdated,
			"Deposited":                p.onDeposited,
			"Withdrawn":                p.onWithdrawn,
			"TaxCollected":             p.onTaxCollected,
			"Settled":                  p.onSettled,
			"TaxUpdateProposed":        p.onTaxUpdateProposed,
			"ModuleUpdateProposed":     p.onModuleUpdateProposed,
			"PendingUpdateCancelled":   p.onPendingUpdateCancelled,
			"PendingUpdateApplied":     p.onPendingUpdateApplied,
			"LiquidationBountyUpdated": p.onLiquidationBountyUpdated,
		},
	}
	return p, nil
}

// Registry returns the source registry the projector routes by.
func (p *Projector) Registry() *registry.Registry {
	return p.registry
}

// Topics returns every topic0 the projector can handle, for log filters.
func (p *Projector) Topics() []common.Hash {
	return p.decoder.Topics()
}

// Apply routes one log. Logs of unknown sources or events are skipped. Logs of
// a source must arrive in chain order: an older position fails with
// errs.OutOfOrder and the same position is skipped as a duplicate.
func (p *Projector) Apply(ctx context.Context, log model.LogRecord) (Outcome, error) {
	source := common.HexToAddress(log.Address)
	kind, ok := p.registry.Lookup(source)
	if !ok {
		eventsSkipped.WithLabelValues(string(SkippedUnknown), "").Inc()
		return SkippedUnknown, nil
	}
	if log.Removed {
		eventsSkipped.WithLabelValues(string(SkippedRemoved), "").Inc()
		return SkippedRemoved, nil
	}
	if !p.decoder.CanDecode(kind, log.Topic0()) {
		eventsSkipped.WithLabelValues(string(SkippedEvent), "").Inc()
		return SkippedEvent, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pos := log.Position()
	if last, ok := p.last[source]; ok {
		switch cmp := pos.Compare(last); {
		case cmp < 0:
			eventsSkipped.WithLabelValues(string(SkippedOutOfOrder), "").Inc()
			return SkippedOutOfOrder, errors.Wrapf(errs.OutOfOrder, "%s at %s after %s", source.Hex(), pos, last)
		case cmp == 0:
			eventsSkipped.WithLabelValues(string(SkippedDuplicate), "").Inc()
			return SkippedDuplicate, nil
		}
	}

	decoded, err := p.decoder.Decode(kind, log)
	if err != nil {
		return Failed, errors.Mark(errors.Wrapf(err, "%s log %s", kind, pos), ErrUndecodable)
	}
	handle, ok := p.handlers[kind][decoded.Name]
	if !ok {
		eventsSkipped.WithLabelValues(string(SkippedEvent), decoded.Name).Inc()
		return SkippedEvent, nil
	}

	ev := &Event{
		Source:  source,
		Kind:    kind,
		Name:    decoded.Name,
		Payload: decoded.Payload,
		Log:     log,
		Pos:     pos,
	}
	err = p.store.WithTx(ctx, func(tx storage.Tx) error {
		return handle(ctx, tx, ev)
	})

	outcome := Applied
	switch {
	case err == nil:
		eventsApplied.WithLabelValues(string(kind), ev.Name).Inc()
		for _, s := range ev.discovered {
			if p.registry.Register(s.Address, s.Kind, s.FromBlock) {
				sourcesDiscovered.WithLabelValues(string(s.Kind)).Inc()
				p.logger.Info("source discovered",
					zap.String("address", s.Address.Hex()),
					zap.String("kind", string(s.Kind)),
					zap.Uint64("from_block", s.FromBlock),
				)
			}
		}
	case errors.Is(err, errs.NotFound):
		outcome = SkippedMissing
		eventsSkipped.WithLabelValues(string(SkippedMissing), ev.Name).Inc()
		p.logger.Warn("entity missing, event ignored",
			zap.String("source", source.Hex()),
			zap.String("event", ev.Name),
			zap.String("tx_hash", log.TxHash),
			zap.Uint64("log_index", log.LogIndex),
			zap.Error(err),
		)
	case errors.Is(err, errAlreadyApplied):
		outcome = SkippedDuplicate
		eventsSkipped.WithLabelValues(string(SkippedDuplicate), ev.Name).Inc()
		p.logger.Debug("event already applied",
			zap.String("source", source.Hex()),
			zap.String("event", ev.Name),
			zap.Stringer("position", pos),
		)
	default:
		return Failed, errors.Wrapf(err, "apply %s %s", ev.Name, pos)
	}

	p.last[source] = pos
	return outcome, nil
}
