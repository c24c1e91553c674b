package store

import (
	"sort"

	"cn-data/internal/model"
)

// Snapshot is the complete set of symbol records at one point in time.
// It is immutable after construction: the merge engine builds a new Snapshot
// on every run instead of mutating a loaded one.
type Snapshot struct {
	records []model.SymbolRecord
	index   map[model.Key]int
}

// New builds a snapshot from records. Records are sorted by (exchange, symbol)
// so persisted output is deterministic. When two records share a key the later
// one wins; the merge engine never produces duplicates.
func New(records []model.SymbolRecord) *Snapshot {
	sorted := make([]model.SymbolRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Exchange != sorted[j].Exchange {
			return sorted[i].Exchange < sorted[j].Exchange
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	index := make(map[model.Key]int, len(sorted))
	for i, r := range sorted {
		index[r.Key()] = i
	}
	return &Snapshot{records: sorted, index: index}
}

// Empty returns a snapshot with no records (first-run bootstrap).
func Empty() *Snapshot {
	return New(nil)
}

// Records returns all records ordered by exchange then symbol.
// Callers must not modify the returned slice.
func (s *Snapshot) Records() []model.SymbolRecord {
	return s.records
}

// Get returns the record for the given key.
func (s *Snapshot) Get(key model.Key) (model.SymbolRecord, bool) {
	i, ok := s.index[key]
	if !ok {
		return model.SymbolRecord{}, false
	}
	return s.records[i], true
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	return len(s.records)
}
