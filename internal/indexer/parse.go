package indexer

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// ParseAddresses turns configured hex addresses into a duplicate-free list,
// skipping blank entries.
func ParseAddresses(inputs []string) ([]common.Address, error) {
	var addresses []common.Address
	for _, input := range lo.Compact(lo.Map(inputs, func(s string, _ int) string { return strings.TrimSpace(s) })) {
		if !common.IsHexAddress(input) {
			return nil, errors.Newf("invalid address: %s", input)
		}
		addresses = append(addresses, common.HexToAddress(input))
	}
	return lo.Uniq(addresses), nil
}
