// Package store persists the symbol snapshot as a single Parquet file,
// one row per symbol with the daily series as a nested list column.
package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"cn-data/internal/model"
)

const (
	// schemaKey names the footer metadata entry carrying the store schema version.
	schemaKey = "cn-data.schema"
	// schemaVersion must match on load; bump when the row shape changes.
	schemaVersion = "1"
)

// ErrSchema reports an on-disk store whose schema version does not match
// this build. Loading aborts rather than misreading columns.
var ErrSchema = errors.New("incompatible store schema")

// Load reads the snapshot at path. A missing file is not an error: it yields
// an empty snapshot so a first run can bootstrap the store.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat store %s: %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}
	version, ok := pf.Lookup(schemaKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no %s metadata", ErrSchema, path, schemaKey)
	}
	if version != schemaVersion {
		return nil, fmt.Errorf("%w: %s has version %s, want %s", ErrSchema, path, version, schemaVersion)
	}

	records := make([]model.SymbolRecord, 0, pf.NumRows())
	buf := make([]model.SymbolRecord, 64)
	for _, rg := range pf.RowGroups() {
		r := parquet.NewGenericRowGroupReader[model.SymbolRecord](rg)
		for {
			n, err := r.Read(buf)
			records = append(records, buf[:n]...)
			if err == io.EOF {
				break
			}
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("read store %s: %w", path, err)
			}
		}
		if err := r.Close(); err != nil {
			return nil, fmt.Errorf("close store reader %s: %w", path, err)
		}
	}
	return New(records), nil
}
