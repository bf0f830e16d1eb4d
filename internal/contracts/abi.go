package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const hubABIJSON = `[
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "struct IHub.HubSettings", "name": "settings", "type": "tuple", "components": [{"internalType": "uint256", "name": "protocolFeeBps", "type": "uint256"}, {"internalType": "address", "name": "protocolFeeRecipient", "type": "address"}, {"internalType": "uint256", "name": "slotCreationPrice", "type": "uint256"}, {"internalType": "address", "name": "defaultCurrency", "type": "address"}, {"internalType": "uint256", "name": "defaultSlotCount", "type": "uint256"}, {"internalType": "uint256", "name": "defaultPrice", "type": "uint256"}, {"internalType": "uint256", "name": "defaultTaxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "defaultMaxTaxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "defaultMinTaxUpdatePeriod", "type": "uint256"}, {"internalType": "address", "name": "defaultModule", "type": "address"}]}], "name": "HubSettingsUpdated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "land", "type": "address"}, {"indexed": true, "internalType": "address", "name": "account", "type": "address"}], "name": "LandOpened", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "module", "type": "address"}, {"indexed": false, "internalType": "bool", "name": "allowed", "type": "bool"}, {"indexed": false, "internalType": "string", "name": "name", "type": "string"}, {"indexed": false, "internalType": "string", "name": "version", "type": "string"}], "name": "ModuleAllowedUpdated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "currency", "type": "address"}, {"indexed": false, "internalType": "bool", "name": "allowed", "type": "bool"}], "name": "CurrencyAllowedUpdated", "type": "event"}
]`

const factoryABIJSON = `[
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "instance", "type": "address"}, {"indexed": true, "internalType": "address", "name": "recipient", "type": "address"}, {"indexed": true, "internalType": "address", "name": "currency", "type": "address"}, {"indexed": false, "internalType": "struct ISlotsFactory.SlotsConfig", "name": "config", "type": "tuple", "components": [{"internalType": "uint256", "name": "basePrice", "type": "uint256"}, {"internalType": "uint256", "name": "taxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "maxTaxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "minTaxUpdatePeriod", "type": "uint256"}, {"internalType": "address", "name": "module", "type": "address"}]}, {"indexed": false, "internalType": "struct ISlotsFactory.SlotsInitParams", "name": "initParams", "type": "tuple", "components": [{"internalType": "uint256", "name": "initialPrice", "type": "uint256"}, {"internalType": "uint256", "name": "liquidationBountyBps", "type": "uint256"}]}], "name": "SlotsDeployed", "type": "event"},
  {"inputs": [], "name": "admin", "outputs": [{"internalType": "address", "name": "", "type": "address"}], "stateMutability": "view", "type": "function"}
]`

const landABIJSON = `[
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "struct ILand.SlotParams", "name": "params", "type": "tuple", "components": [{"internalType": "address", "name": "currency", "type": "address"}, {"internalType": "uint256", "name": "basePrice", "type": "uint256"}, {"internalType": "uint256", "name": "price", "type": "uint256"}, {"internalType": "uint256", "name": "taxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "maxTaxPercentage", "type": "uint256"}, {"internalType": "uint256", "name": "minTaxUpdatePeriod", "type": "uint256"}, {"internalType": "address", "name": "module", "type": "address"}]}], "name": "SlotCreated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": true, "internalType": "address", "name": "newOccupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}], "name": "SlotPurchased", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}], "name": "SlotReleased", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": true, "internalType": "address", "name": "liquidator", "type": "address"}, {"indexed": true, "internalType": "address", "name": "occupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "bounty", "type": "uint256"}], "name": "SlotLiquidated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "oldPrice", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "newPrice", "type": "uint256"}], "name": "PriceUpdated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "newPercentage", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "confirmableAt", "type": "uint256"}], "name": "TaxRateUpdateProposed", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "oldPercentage", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "newPercentage", "type": "uint256"}], "name": "TaxRateUpdateConfirmed", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "cancelledPercentage", "type": "uint256"}], "name": "TaxRateUpdateCancelled", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}], "name": "SlotActivated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}], "name": "SlotDeactivated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "basePrice", "type": "uint256"}, {"indexed": false, "internalType": "address", "name": "currency", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "maxTaxPercentage", "type": "uint256"}, {"indexed": false, "internalType": "address", "name": "module", "type": "address"}], "name": "SlotSettingsUpdated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": true, "internalType": "address", "name": "depositor", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "Deposited", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": true, "internalType": "address", "name": "account", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "Withdrawn", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "taxPaid", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "taxOwed", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "depositRemaining", "type": "uint256"}], "name": "Settled", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "uint256", "name": "slotId", "type": "uint256"}, {"indexed": true, "internalType": "address", "name": "collector", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "TaxCollected", "type": "event"}
]`

const slotABIJSON = `[
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "buyer", "type": "address"}, {"indexed": true, "internalType": "address", "name": "previousOccupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "price", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "deposit", "type": "uint256"}], "name": "Bought", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "occupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "refund", "type": "uint256"}], "name": "Released", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "liquidator", "type": "address"}, {"indexed": true, "internalType": "address", "name": "occupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "bounty", "type": "uint256"}], "name": "Liquidated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "uint256", "name": "oldPrice", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "newPrice", "type": "uint256"}], "name": "PriceUpdated", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "depositor", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "Deposited", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "occupant", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "Withdrawn", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": true, "internalType": "address", "name": "collector", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "TaxCollected", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "uint256", "name": "taxPaid", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "taxOwed", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "depositRemaining", "type": "uint256"}], "name": "Settled", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "uint256", "name": "newPercentage", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "confirmableAt", "type": "uint256"}], "name": "TaxUpdateProposed", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "address", "name": "newModule", "type": "address"}, {"indexed": false, "internalType": "uint256", "name": "confirmableAt", "type": "uint256"}], "name": "ModuleUpdateProposed", "type": "event"},
  {"anonymous": false, "inputs": [], "name": "PendingUpdateCancelled", "type": "event"},
  {"anonymous": false, "inputs": [], "name": "PendingUpdateApplied", "type": "event"},
  {"anonymous": false, "inputs": [{"indexed": false, "internalType": "uint256", "name": "oldBps", "type": "uint256"}, {"indexed": false, "internalType": "uint256", "name": "newBps", "type": "uint256"}], "name": "LiquidationBountyUpdated", "type": "event"}
]`

type parsedABI struct {
	once   sync.Once
	source string
	abi    abi.ABI
	err    error
}

func (p *parsedABI) get() (abi.ABI, error) {
	p.once.Do(func() {
		p.abi, p.err = abi.JSON(strings.NewReader(p.source))
	})
	return p.abi, p.err
}

var (
	hubABI     = &parsedABI{source: hubABIJSON}
	factoryABI = &parsedABI{source: factoryABIJSON}
	landABI    = &parsedABI{source: landABIJSON}
	slotABI    = &parsedABI{source: slotABIJSON}
)

// HubABI returns the parsed hub ABI.
func HubABI() (abi.ABI, error) {
	return hubABI.get()
}

// FactoryABI returns the parsed slots factory ABI.
func FactoryABI() (abi.ABI, error) {
	return factoryABI.get()
}

// LandABI returns the parsed land ABI.
func LandABI() (abi.ABI, error) {
	return landABI.get()
}

// SlotABI returns the parsed single-slot instance ABI.
func SlotABI() (abi.ABI, error) {
	return slotABI.get()
}
