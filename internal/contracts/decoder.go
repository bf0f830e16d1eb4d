package contracts

import (
	"math/big"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"slotScope/internal/model"
)

// Decoded is a log decoded against the vocabulary of its source kind.
type Decoded struct {
	Kind    model.SourceKind
	Name    string
	Payload interface{}
}

type eventDef struct {
	event   abi.Event
	payload func() interface{}
}

// Decoder decodes logs of every watched source kind into typed payloads.
type Decoder struct {
	byKind map[model.SourceKind]map[string]eventDef
}

// NewDecoder parses every contract ABI and indexes events by topic0.
func NewDecoder() (*Decoder, error) {
	vocab := map[model.SourceKind]struct {
		load     func() (abi.ABI, error)
		payloads map[string]func() interface{}
	}{
		model.SourceHub: {HubABI, map[string]func() interface{}{
			"HubSettingsUpdated":     func() interface{} { return new(HubSettingsUpdated) },
			"LandOpened":             func() interface{} { return new(LandOpened) },
			"ModuleAllowedUpdated":   func() interface{} { return new(ModuleAllowedUpdated) },
			"CurrencyAllowedUpdated": func() interface{} { return new(CurrencyAllowedUpdated) },
		}},
		model.SourceFactory: {FactoryABI, map[string]func() interface{}{
			"SlotsDeployed": func() interface{} { return new(SlotsDeployed) },
		}},
		model.SourceLand: {LandABI, map[string]func() interface{}{
			"SlotCreated":            func() interface{} { return new(SlotCreated) },
			"SlotPurchased":          func() interface{} { return new(SlotPurchased) },
			"SlotReleased":           func() interface{} { return new(SlotReleased) },
			"SlotLiquidated":         func() interface{} { return new(SlotLiquidated) },
			"PriceUpdated":           func() interface{} { return new(LandPriceUpdated) },
			"TaxRateUpdateProposed":  func() interface{} { return new(TaxRateUpdateProposed) },
			"TaxRateUpdateConfirmed": func() interface{} { return new(TaxRateUpdateConfirmed) },
			"TaxRateUpdateCancelled": func() interface{} { return new(TaxRateUpdateCancelled) },
			"SlotActivated":          func() interface{} { return new(SlotActivated) },
			"SlotDeactivated":        func() interface{} { return new(SlotDeactivated) },
			"SlotSettingsUpdated":    func() interface{} { return new(SlotSettingsUpdated) },
			"Deposited":              func() interface{} { return new(LandDeposited) },
			"Withdrawn":              func() interface{} { return new(LandWithdrawn) },
			"Settled":                func() interface{} { return new(LandSettled) },
			"TaxCollected":           func() interface{} { return new(LandTaxCollected) },
		}},
		model.SourceSlot: {SlotABI, map[string]func() interface{}{
			"Bought":                   func() interface{} { return new(Bought) },
			"Released":                 func() interface{} { return new(Released) },
			"Liquidated":               func() interface{} { return new(Liquidated) },
			"PriceUpdated":             func() interface{} { return new(PriceUpdated) },
			"Deposited":                func() interface{} { return new(Deposited) },
			"Withdrawn":                func() interface{} { return new(Withdrawn) },
			"TaxCollected":             func() interface{} { return new(TaxCollected) },
			"Settled":                  func() interface{} { return new(Settled) },
			"TaxUpdateProposed":        func() interface{} { return new(TaxUpdateProposed) },
			"ModuleUpdateProposed":     func() interface{} { return new(ModuleUpdateProposed) },
			"PendingUpdateCancelled":   func() interface{} { return new(PendingUpdateCancelled) },
			"PendingUpdateApplied":     func() interface{} { return new(PendingUpdateApplied) },
			"LiquidationBountyUpdated": func() interface{} { return new(LiquidationBountyUpdated) },
		}},
	}

	d := &Decoder{byKind: make(map[model.SourceKind]map[string]eventDef, len(vocab))}
	for kind, v := range vocab {
		parsed, err := v.load()
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s abi", kind)
		}
		topics := make(map[string]eventDef, len(v.payloads))
		for name, payload := range v.payloads {
			event, ok := parsed.Events[name]
			if !ok {
				return nil, errors.Errorf("%s abi has no event %s", kind, name)
			}
			topics[strings.ToLower(event.ID.Hex())] = eventDef{event: event, payload: payload}
		}
		d.byKind[kind] = topics
	}
	return d, nil
}

// CanDecode checks if the topic0 belongs to the vocabulary of kind.
func (d *Decoder) CanDecode(kind model.SourceKind, topic0 string) bool {
	if topic0 == "" {
		return false
	}
	_, ok := d.byKind[kind][strings.ToLower(topic0)]
	return ok
}

// Topics returns every topic0 across all kinds, for log filters.
func (d *Decoder) Topics() []common.Hash {
	seen := make(map[common.Hash]struct{})
	out := make([]common.Hash, 0)
	for _, kind := range model.SourceKinds {
		for _, def := range d.byKind[kind] {
			if _, ok := seen[def.event.ID]; ok {
				continue
			}
			seen[def.event.ID] = struct{}{}
			out = append(out, def.event.ID)
		}
	}
	return out
}

// Decode converts a LogRecord into the typed payload of its event.
func (d *Decoder) Decode(kind model.SourceKind, log model.LogRecord) (Decoded, error) {
	if len(log.Topics) == 0 {
		return Decoded{}, errors.New("missing topics")
	}
	def, ok := d.byKind[kind][log.Topic0()]
	if !ok {
		return Decoded{}, errors.Errorf("unsupported %s topic0: %s", kind, log.Topics[0])
	}

	payload := def.payload()
	if err := unpackLog(def.event, log, payload); err != nil {
		return Decoded{}, errors.Wrapf(err, "decode %s", def.event.Name)
	}
	if err := checkSlotIndex(payload); err != nil {
		return Decoded{}, errors.Wrapf(err, "decode %s", def.event.Name)
	}
	return Decoded{Kind: kind, Name: def.event.Name, Payload: payload}, nil
}

// checkSlotIndex rejects a SlotId that does not fit the uint64 slot key.
func checkSlotIndex(payload interface{}) error {
	field := reflect.ValueOf(payload).Elem().FieldByName("SlotId")
	if !field.IsValid() {
		return nil
	}
	id, ok := field.Interface().(*big.Int)
	if !ok || id == nil {
		return nil
	}
	if id.Sign() < 0 || !id.IsUint64() {
		return errors.Newf("slot id %s overflows uint64", id)
	}
	return nil
}

func unpackLog(event abi.Event, log model.LogRecord, out interface{}) error {
	indexedTopics, err := parseIndexedTopics(event, log.Topics)
	if err != nil {
		return err
	}
	if err := abi.ParseTopics(out, indexedArguments(event.Inputs), indexedTopics); err != nil {
		return errors.Wrap(err, "parse topics")
	}

	var data []byte
	if log.Data != "" {
		data, err = hexutil.Decode(log.Data)
		if err != nil {
			return errors.Wrap(err, "invalid data")
		}
	}
	values, err := event.Inputs.Unpack(data)
	if err != nil {
		return errors.Wrapf(err, "unpack %s", event.Name)
	}
	if err := event.Inputs.Copy(out, values); err != nil {
		return errors.Wrapf(err, "copy %s", event.Name)
	}
	return nil
}

func parseIndexedTopics(event abi.Event, topics []string) ([]common.Hash, error) {
	indexedCount := len(indexedArguments(event.Inputs))
	if len(topics) != indexedCount+1 {
		return nil, errors.Errorf("expected %d topics, got %d", indexedCount+1, len(topics))
	}
	return parseTopicHashes(topics[1:])
}

func parseTopicHashes(topics []string) ([]common.Hash, error) {
	out := make([]common.Hash, 0, len(topics))
	for _, topic := range topics {
		data, err := hexutil.Decode(topic)
		if err != nil {
			return nil, errors.Wrap(err, "invalid topic")
		}
		if len(data) > 32 {
			return nil, errors.Errorf("topic length %d", len(data))
		}
		out = append(out, common.BytesToHash(data))
	}
	return out, nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
