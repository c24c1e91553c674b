// Package provider gives read-only indexed access over a loaded snapshot.
package provider

import (
	"cn-data/internal/model"
	"cn-data/internal/store"
)

// Provider indexes one snapshot for lookup by symbol and by exchange.
// It is read-only for its lifetime: construct a new Provider from a freshly
// loaded snapshot to observe new data. Lookups never fail; absence is an
// empty result.
type Provider struct {
	snap       *store.Snapshot
	bySymbol   map[string][]int
	byExchange map[string][]int
}

// New builds a provider over the given snapshot.
func New(snap *store.Snapshot) *Provider {
	p := &Provider{
		snap:       snap,
		bySymbol:   make(map[string][]int),
		byExchange: make(map[string][]int),
	}
	for i, r := range snap.Records() {
		p.bySymbol[r.Symbol] = append(p.bySymbol[r.Symbol], i)
		p.byExchange[r.Exchange] = append(p.byExchange[r.Exchange], i)
	}
	return p
}

// Get returns the record for the exact (exchange, symbol) key.
func (p *Provider) Get(exchange, symbol string) (model.SymbolRecord, bool) {
	return p.snap.Get(model.Key{Exchange: exchange, Symbol: symbol})
}

// BySymbol returns the first record matching symbol across all exchanges.
// When a symbol exists on more than one exchange the choice follows snapshot
// order; callers wanting a specific one should use Get.
func (p *Provider) BySymbol(symbol string) (model.SymbolRecord, bool) {
	idx, ok := p.bySymbol[symbol]
	if !ok || len(idx) == 0 {
		return model.SymbolRecord{}, false
	}
	return p.snap.Records()[idx[0]], true
}

// ByExchange returns all records for the exchange, ordered by symbol.
func (p *Provider) ByExchange(exchange string) []model.SymbolRecord {
	idx := p.byExchange[exchange]
	out := make([]model.SymbolRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, p.snap.Records()[i])
	}
	return out
}

// All returns every record, ordered by exchange then symbol.
func (p *Provider) All() []model.SymbolRecord {
	return p.snap.Records()
}

// LatestTradingDate returns the most recent bar date anywhere in the snapshot.
// The second return is false when no record has any bars.
func (p *Provider) LatestTradingDate() (int32, bool) {
	var latest int32
	found := false
	for _, r := range p.snap.Records() {
		if n := len(r.Daily); n > 0 {
			if d := r.Daily[n-1].Date; !found || d > latest {
				latest = d
				found = true
			}
		}
	}
	return latest, found
}
