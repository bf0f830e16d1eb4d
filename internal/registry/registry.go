package registry

import (
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"slotScope/internal/model"
)

// Source is a watched contract and the block from which its logs matter.
type Source struct {
	Address   common.Address
	Kind      model.SourceKind
	FromBlock uint64
	Version   uint64
}

// Registry maps watched addresses to their contract kind. It only grows:
// a registered address is never removed or re-kinded.
type Registry struct {
	mu      sync.RWMutex
	sources map[common.Address]Source
	version uint64
}

func New() *Registry {
	return &Registry{sources: make(map[common.Address]Source)}
}

// Register adds addr and reports whether it was new. Re-registering an
// address keeps the original kind and lowers FromBlock if needed.
func (r *Registry) Register(addr common.Address, kind model.SourceKind, fromBlock uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sources[addr]; ok {
		if fromBlock < existing.FromBlock {
			existing.FromBlock = fromBlock
			r.sources[addr] = existing
		}
		return false
	}
	r.version++
	r.sources[addr] = Source{Address: addr, Kind: kind, FromBlock: fromBlock, Version: r.version}
	return true
}

// Lookup returns the kind registered for addr.
func (r *Registry) Lookup(addr common.Address) (model.SourceKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.sources[addr]
	return source.Kind, ok
}

// Addresses returns all watched addresses in a stable order.
func (r *Registry) Addresses() []common.Address {
	r.mu.RLock()
	out := make([]common.Address, 0, len(r.sources))
	for addr := range r.sources {
		out = append(out, addr)
	}
	r.mu.RUnlock()
	sortAddresses(out)
	return out
}

// Version increases by one with each new address.
func (r *Registry) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Since returns sources registered after version, oldest first.
func (r *Registry) Since(version uint64) []Source {
	r.mu.RLock()
	out := make([]Source, 0)
	for _, source := range r.sources {
		if source.Version > version {
			out = append(out, source)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// Len returns the number of watched addresses.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Cmp(addrs[j]) < 0
	})
}
