package postgres

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"slotScope/common/errs"
	"slotScope/internal/model"
	"slotScope/internal/storage"
)

// uniqueViolation is the Postgres SQLSTATE for a primary key collision.
const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store provides Postgres persistence for the projected entities.
type Store struct {
	queries
	pool *pgxpool.Pool
}

var (
	_ storage.Store = (*Store)(nil)
	_ storage.Tx    = (*queries)(nil)
)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, errors.New("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return &Store{queries: queries{db: pool}, pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// WithTx runs fn inside a database transaction and commits when it returns nil.
func (s *Store) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&queries{db: tx})
	})
}

// LoadState returns last_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, errors.New("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "load state")
	}
	return uint64(block), true, nil
}

// SaveState upserts last_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return errors.New("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return errors.Wrap(err, "save state")
}

// queries implements storage.Tx over a pool or a transaction.
type queries struct {
	db querier
}

func (q *queries) GetHub(ctx context.Context, addr common.Address) (model.Hub, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+hubColumns+` FROM hubs WHERE address=$1`, hexAddr(addr))
	hub, err := scanHub(row)
	return notFound(hub, err)
}

func (q *queries) GetFactory(ctx context.Context, addr common.Address) (model.Factory, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+factoryColumns+` FROM factories WHERE address=$1`, hexAddr(addr))
	factory, err := scanFactory(row)
	return notFound(factory, err)
}

func (q *queries) GetLand(ctx context.Context, addr common.Address) (model.Land, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+landColumns+` FROM lands WHERE address=$1`, hexAddr(addr))
	land, err := scanLand(row)
	return notFound(land, err)
}

func (q *queries) GetSlot(ctx context.Context, id string) (model.Slot, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id=$1`, strings.ToLower(id))
	slot, err := scanSlot(row)
	return notFound(slot, err)
}

func (q *queries) GetCurrency(ctx context.Context, addr common.Address) (model.Currency, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE address=$1`, hexAddr(addr))
	currency, err := scanCurrency(row)
	return notFound(currency, err)
}

func (q *queries) GetModule(ctx context.Context, addr common.Address) (model.Module, bool, error) {
	row := q.db.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE address=$1`, hexAddr(addr))
	module, err := scanModule(row)
	return notFound(module, err)
}

func (q *queries) ListLands(ctx context.Context, filter storage.LandFilter) ([]model.Land, error) {
	page := filter.Page.Normalize()
	rows, err := q.db.Query(ctx, `
		SELECT `+landColumns+` FROM lands
		WHERE ($1::text IS NULL OR hub = $1)
		  AND ($2::text IS NULL OR factory = $2)
		  AND ($3::text IS NULL OR owner = $3)
		ORDER BY created_block DESC, address
		LIMIT $4 OFFSET $5
	`, nullAddr(filter.Hub), nullAddr(filter.Factory), nullAddr(filter.Owner), page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list lands")
	}
	return collect(rows, scanLand)
}

func (q *queries) ListSlots(ctx context.Context, filter storage.SlotFilter) ([]model.Slot, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+slotColumns+` FROM slots
		WHERE land = $1 AND ($2::boolean IS NULL OR vacant = $2)
		ORDER BY slot_index
	`, hexAddr(filter.Land), filter.Vacant)
	if err != nil {
		return nil, errors.Wrap(err, "list slots")
	}
	return collect(rows, scanSlot)
}

func (q *queries) ListEvents(ctx context.Context, filter storage.EventFilter) ([]model.SlotEvent, error) {
	page := filter.Page.Normalize()
	var slotID, kind *string
	if filter.SlotID != "" {
		id := strings.ToLower(filter.SlotID)
		slotID = &id
	}
	if filter.Kind != "" {
		k := string(filter.Kind)
		kind = &k
	}
	rows, err := q.db.Query(ctx, `
		SELECT `+eventColumns+` FROM slot_events
		WHERE ($1::text IS NULL OR slot_id = $1)
		  AND ($2::text IS NULL OR kind = $2)
		  AND ($3::text IS NULL OR actor = $3)
		ORDER BY block_number DESC, log_index DESC
		LIMIT $4 OFFSET $5
	`, slotID, kind, nullAddr(filter.Actor), page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list events")
	}
	return collect(rows, scanEvent)
}

func (q *queries) ListCurrencies(ctx context.Context, page storage.Page) ([]model.Currency, error) {
	page = page.Normalize()
	rows, err := q.db.Query(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY address LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list currencies")
	}
	return collect(rows, scanCurrency)
}

func (q *queries) ListModules(ctx context.Context, page storage.Page) ([]model.Module, error) {
	page = page.Normalize()
	rows, err := q.db.Query(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY address LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	if err != nil {
		return nil, errors.Wrap(err, "list modules")
	}
	return collect(rows, scanModule)
}

func (q *queries) Stats(ctx context.Context) (storage.Stats, error) {
	var stats storage.Stats
	row := q.db.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM hubs),
			(SELECT count(*) FROM factories),
			(SELECT count(*) FROM lands),
			(SELECT count(*) FROM slots),
			(SELECT count(*) FROM slots WHERE NOT vacant),
			(SELECT count(*) FROM slot_events),
			(SELECT count(*) FROM currencies),
			(SELECT count(*) FROM modules)
	`)
	err := row.Scan(
		&stats.Hubs,
		&stats.Factories,
		&stats.Lands,
		&stats.Slots,
		&stats.OccupiedSlots,
		&stats.Events,
		&stats.Currencies,
		&stats.Modules,
	)
	return stats, errors.Wrap(err, "stats")
}

func (q *queries) PutHub(ctx context.Context, hub model.Hub) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO hubs (`+hubColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (address) DO UPDATE SET
			protocol_fee_bps = EXCLUDED.protocol_fee_bps,
			protocol_fee_recipient = EXCLUDED.protocol_fee_recipient,
			slot_creation_price = EXCLUDED.slot_creation_price,
			default_currency = EXCLUDED.default_currency,
			default_slot_count = EXCLUDED.default_slot_count,
			default_price = EXCLUDED.default_price,
			default_tax_percentage = EXCLUDED.default_tax_percentage,
			default_max_tax_percentage = EXCLUDED.default_max_tax_percentage,
			default_min_tax_update_period = EXCLUDED.default_min_tax_update_period,
			default_module = EXCLUDED.default_module,
			updated_at = EXCLUDED.updated_at
	`,
		hexAddr(hub.Address),
		int64(hub.ProtocolFeeBps),
		hexAddr(hub.ProtocolFeeRecipient),
		hub.SlotCreationPrice,
		hexAddr(hub.DefaultCurrency),
		int64(hub.DefaultSlotCount),
		hub.DefaultPrice,
		int64(hub.DefaultTaxPercentage),
		int64(hub.DefaultMaxTaxPercentage),
		int64(hub.DefaultMinTaxUpdatePeriod),
		hexAddr(hub.DefaultModule),
		int64(hub.UpdatedAt),
	)
	return errors.Wrap(err, "put hub")
}

func (q *queries) PutFactory(ctx context.Context, factory model.Factory) error {
	block, txIndex, logIndex := positionArgs(factory.LastEvent)
	_, err := q.db.Exec(ctx, `
		INSERT INTO factories (`+factoryColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (address) DO UPDATE SET
			admin = EXCLUDED.admin,
			instance_count = EXCLUDED.instance_count,
			last_block = EXCLUDED.last_block,
			last_tx_index = EXCLUDED.last_tx_index,
			last_log_index = EXCLUDED.last_log_index
	`,
		hexAddr(factory.Address),
		nullAddr(factory.Admin),
		int64(factory.InstanceCount),
		block, txIndex, logIndex,
	)
	return errors.Wrap(err, "put factory")
}

func (q *queries) PutLand(ctx context.Context, land model.Land) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO lands (`+landColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (address) DO UPDATE SET
			hub = EXCLUDED.hub,
			factory = EXCLUDED.factory,
			owner = EXCLUDED.owner
	`,
		hexAddr(land.Address),
		nullAddr(land.Hub),
		nullAddr(land.Factory),
		hexAddr(land.Owner),
		int64(land.CreatedAt),
		int64(land.CreatedBlock),
		land.CreatedTx,
	)
	return errors.Wrap(err, "put land")
}

func (q *queries) PutSlot(ctx context.Context, slot model.Slot) error {
	block, txIndex, logIndex := positionArgs(slot.LastEvent)
	var pendingModule *string
	if slot.PendingModule.Value != nil {
		v := hexAddr(*slot.PendingModule.Value)
		pendingModule = &v
	}
	_, err := q.db.Exec(ctx, `
		INSERT INTO slots (`+slotColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)
		ON CONFLICT (id) DO UPDATE SET
			occupant = EXCLUDED.occupant,
			vacant = EXCLUDED.vacant,
			currency = EXCLUDED.currency,
			base_price = EXCLUDED.base_price,
			price = EXCLUDED.price,
			active = EXCLUDED.active,
			tax_percentage = EXCLUDED.tax_percentage,
			max_tax_percentage = EXCLUDED.max_tax_percentage,
			min_tax_update_period = EXCLUDED.min_tax_update_period,
			module = EXCLUDED.module,
			pending_tax = EXCLUDED.pending_tax,
			pending_tax_value = EXCLUDED.pending_tax_value,
			pending_tax_confirmable_at = EXCLUDED.pending_tax_confirmable_at,
			pending_module = EXCLUDED.pending_module,
			pending_module_value = EXCLUDED.pending_module_value,
			pending_module_confirmable_at = EXCLUDED.pending_module_confirmable_at,
			liquidation_bounty_bps = EXCLUDED.liquidation_bounty_bps,
			deposit = EXCLUDED.deposit,
			collected_tax = EXCLUDED.collected_tax,
			tax_paid = EXCLUDED.tax_paid,
			updated_at = EXCLUDED.updated_at,
			last_block = EXCLUDED.last_block,
			last_tx_index = EXCLUDED.last_tx_index,
			last_log_index = EXCLUDED.last_log_index
	`,
		strings.ToLower(slot.ID),
		hexAddr(slot.Land),
		int64(slot.Index),
		nullAddr(slot.Occupant),
		slot.Vacant,
		hexAddr(slot.Currency),
		slot.BasePrice,
		slot.Price,
		slot.Active,
		int64(slot.TaxPercentage),
		int64(slot.MaxTaxPercentage),
		int64(slot.MinTaxUpdatePeriod),
		hexAddr(slot.Module),
		slot.PendingTax.Pending,
		nullInt(slot.PendingTax.Value),
		nullInt(slot.PendingTax.ConfirmableAt),
		slot.PendingModule.Pending,
		pendingModule,
		nullInt(slot.PendingModule.ConfirmableAt),
		int64(slot.LiquidationBountyBps),
		slot.Deposit,
		slot.CollectedTax,
		slot.TaxPaid,
		int64(slot.CreatedAt),
		int64(slot.UpdatedAt),
		block, txIndex, logIndex,
	)
	return errors.Wrap(err, "put slot")
}

func (q *queries) PutCurrency(ctx context.Context, currency model.Currency) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO currencies (`+currencyColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (address) DO UPDATE SET
			allowed = EXCLUDED.allowed,
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals,
			underlying = EXCLUDED.underlying,
			underlying_name = EXCLUDED.underlying_name,
			underlying_symbol = EXCLUDED.underlying_symbol,
			underlying_decimals = EXCLUDED.underlying_decimals
	`,
		hexAddr(currency.Address),
		currency.Allowed,
		currency.Name,
		currency.Symbol,
		nullSmallint(currency.Decimals),
		nullAddr(currency.Underlying),
		currency.UnderlyingName,
		currency.UnderlyingSymbol,
		nullSmallint(currency.UnderlyingDecimals),
	)
	return errors.Wrap(err, "put currency")
}

func (q *queries) PutModule(ctx context.Context, module model.Module) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO modules (`+moduleColumns+`)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (address) DO UPDATE SET
			allowed = EXCLUDED.allowed,
			name = EXCLUDED.name,
			version = EXCLUDED.version
	`,
		hexAddr(module.Address),
		module.Allowed,
		module.Name,
		module.Version,
	)
	return errors.Wrap(err, "put module")
}

func (q *queries) InsertEvent(ctx context.Context, event model.SlotEvent) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO slot_events (`+eventColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		event.ID,
		string(event.Kind),
		strings.ToLower(event.SlotID),
		hexAddr(event.Land),
		nullAddr(event.Actor),
		nullAddr(event.Counterparty),
		event.Amount,
		event.OldValue,
		event.NewValue,
		nullAddr(event.OldModule),
		nullAddr(event.NewModule),
		int64(event.BlockNumber),
		int64(event.Timestamp),
		strings.ToLower(event.TxHash),
		int64(event.LogIndex),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errors.Wrapf(errs.Duplicate, "event %s", event.ID)
		}
		return errors.Wrap(err, "insert event")
	}
	return nil
}

func notFound[T any](value T, err error) (T, bool, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return value, false, nil
		}
		return value, false, errors.WithStack(err)
	}
	return value, true, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, item)
	}
	return out, errors.WithStack(rows.Err())
}
