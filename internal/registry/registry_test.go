package registry

import (
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotScope/internal/model"
)

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	hub := common.HexToAddress("0x1111111111111111111111111111111111111111")
	land := common.HexToAddress("0x2222222222222222222222222222222222222222")

	assert.True(t, r.Register(hub, model.SourceHub, 0))
	assert.True(t, r.Register(land, model.SourceLand, 100))

	kind, ok := r.Lookup(land)
	require.True(t, ok)
	assert.Equal(t, model.SourceLand, kind)

	_, ok = r.Lookup(common.HexToAddress("0x3333333333333333333333333333333333333333"))
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}

func TestRegisterKeepsFirstKind(t *testing.T) {
	r := New()
	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")

	require.True(t, r.Register(addr, model.SourceLand, 100))
	assert.False(t, r.Register(addr, model.SourceSlot, 50))

	kind, _ := r.Lookup(addr)
	assert.Equal(t, model.SourceLand, kind)
	assert.EqualValues(t, 1, r.Version())

	sources := r.Since(0)
	require.Len(t, sources, 1)
	assert.EqualValues(t, 50, sources[0].FromBlock)
}

func TestSinceReturnsNewSourcesInOrder(t *testing.T) {
	r := New()
	a := common.HexToAddress("0x3333333333333333333333333333333333333333")
	b := common.HexToAddress("0x1111111111111111111111111111111111111111")
	c := common.HexToAddress("0x2222222222222222222222222222222222222222")

	r.Register(a, model.SourceHub, 0)
	v := r.Version()
	r.Register(b, model.SourceLand, 10)
	r.Register(c, model.SourceSlot, 20)

	sources := r.Since(v)
	require.Len(t, sources, 2)
	assert.Equal(t, b, sources[0].Address)
	assert.Equal(t, c, sources[1].Address)

	assert.Equal(t, []common.Address{b, c, a}, r.Addresses())
}

func TestRegisterConcurrent(t *testing.T) {
	r := New()
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			addr := common.BigToAddress(common.Big1)
			if i%2 == 0 {
				addr = common.BytesToAddress([]byte{byte(i)})
			}
			r.Register(addr, model.SourceLand, uint64(i))
			r.Lookup(addr)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, r.Len(), int(r.Version()))
}
