package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Field names follow abi.ToCamelCase of the ABI argument names so that
// abi.ParseTopics and Arguments.Copy can fill them. Tuple fields are
// matched by position.

// HubSettingsTuple mirrors IHub.HubSettings.
type HubSettingsTuple struct {
	ProtocolFeeBps            *big.Int
	ProtocolFeeRecipient      common.Address
	SlotCreationPrice         *big.Int
	DefaultCurrency           common.Address
	DefaultSlotCount          *big.Int
	DefaultPrice              *big.Int
	DefaultTaxPercentage      *big.Int
	DefaultMaxTaxPercentage   *big.Int
	DefaultMinTaxUpdatePeriod *big.Int
	DefaultModule             common.Address
}

type HubSettingsUpdated struct {
	Settings HubSettingsTuple
}

type LandOpened struct {
	Land    common.Address
	Account common.Address
}

type ModuleAllowedUpdated struct {
	Module  common.Address
	Allowed bool
	Name    string
	Version string
}

type CurrencyAllowedUpdated struct {
	Currency common.Address
	Allowed  bool
}

// SlotsConfig mirrors ISlotsFactory.SlotsConfig.
type SlotsConfig struct {
	BasePrice          *big.Int
	TaxPercentage      *big.Int
	MaxTaxPercentage   *big.Int
	MinTaxUpdatePeriod *big.Int
	Module             common.Address
}

// SlotsInitParams mirrors ISlotsFactory.SlotsInitParams.
type SlotsInitParams struct {
	InitialPrice         *big.Int
	LiquidationBountyBps *big.Int
}

type SlotsDeployed struct {
	Instance   common.Address
	Recipient  common.Address
	Currency   common.Address
	Config     SlotsConfig
	InitParams SlotsInitParams
}

// SlotParams mirrors ILand.SlotParams.
type SlotParams struct {
	Currency           common.Address
	BasePrice          *big.Int
	Price              *big.Int
	TaxPercentage      *big.Int
	MaxTaxPercentage   *big.Int
	MinTaxUpdatePeriod *big.Int
	Module             common.Address
}

type SlotCreated struct {
	SlotId *big.Int
	Params SlotParams
}

type SlotPurchased struct {
	SlotId      *big.Int
	NewOccupant common.Address
	Price       *big.Int
}

type SlotReleased struct {
	SlotId *big.Int
}

type SlotLiquidated struct {
	SlotId     *big.Int
	Liquidator common.Address
	Occupant   common.Address
	Bounty     *big.Int
}

type LandPriceUpdated struct {
	SlotId   *big.Int
	OldPrice *big.Int
	NewPrice *big.Int
}

type TaxRateUpdateProposed struct {
	SlotId        *big.Int
	NewPercentage *big.Int
	ConfirmableAt *big.Int
}

type TaxRateUpdateConfirmed struct {
	SlotId        *big.Int
	OldPercentage *big.Int
	NewPercentage *big.Int
}

type TaxRateUpdateCancelled struct {
	SlotId              *big.Int
	CancelledPercentage *big.Int
}

type SlotActivated struct {
	SlotId *big.Int
}

type SlotDeactivated struct {
	SlotId *big.Int
}

type SlotSettingsUpdated struct {
	SlotId           *big.Int
	BasePrice        *big.Int
	Currency         common.Address
	MaxTaxPercentage *big.Int
	Module           common.Address
}

type LandDeposited struct {
	SlotId    *big.Int
	Depositor common.Address
	Amount    *big.Int
}

type LandWithdrawn struct {
	SlotId  *big.Int
	Account common.Address
	Amount  *big.Int
}

type LandSettled struct {
	SlotId           *big.Int
	TaxPaid          *big.Int
	TaxOwed          *big.Int
	DepositRemaining *big.Int
}

type LandTaxCollected struct {
	SlotId    *big.Int
	Collector common.Address
	Amount    *big.Int
}

type Bought struct {
	Buyer            common.Address
	PreviousOccupant common.Address
	Price            *big.Int
	Deposit          *big.Int
}

type Released struct {
	Occupant common.Address
	Refund   *big.Int
}

type Liquidated struct {
	Liquidator common.Address
	Occupant   common.Address
	Bounty     *big.Int
}

type PriceUpdated struct {
	OldPrice *big.Int
	NewPrice *big.Int
}

type Deposited struct {
	Depositor common.Address
	Amount    *big.Int
}

type Withdrawn struct {
	Occupant common.Address
	Amount   *big.Int
}

type TaxCollected struct {
	Collector common.Address
	Amount    *big.Int
}

type Settled struct {
	TaxPaid          *big.Int
	TaxOwed          *big.Int
	DepositRemaining *big.Int
}

type TaxUpdateProposed struct {
	NewPercentage *big.Int
	ConfirmableAt *big.Int
}

type ModuleUpdateProposed struct {
	NewModule     common.Address
	ConfirmableAt *big.Int
}

type PendingUpdateCancelled struct{}

type PendingUpdateApplied struct{}

type LiquidationBountyUpdated struct {
	OldBps *big.Int
	NewBps *big.Int
}
