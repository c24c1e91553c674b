package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parquet-go/parquet-go"

	"cn-data/internal/model"
)

func sampleRecords() []model.SymbolRecord {
	return []model.SymbolRecord{
		{
			Exchange: "SZSE", Symbol: "000001", Name: "平安银行",
			Daily: []model.Bar{
				{Date: 20250102, Open: 10.1, High: 10.5, Low: 10.0, Close: 10.4, Volume: 1200000, Amount: 12480000},
			},
		},
		{
			Exchange: "SSE", Symbol: "600000", Name: "浦发银行",
			Daily: []model.Bar{
				{Date: 20250102, Open: 7.1, High: 7.3, Low: 7.0, Close: 7.2, Volume: 900000, Amount: 6480000},
				{Date: 20250103, Open: 7.2, High: 7.4, Low: 7.1, Close: 7.3, Volume: 950000, Amount: 6935000},
			},
		},
	}
}

func TestNewSortsAndIndexes(t *testing.T) {
	s := New(sampleRecords())
	recs := s.Records()
	if len(recs) != 2 {
		t.Fatalf("Len = %d, want 2", len(recs))
	}
	if recs[0].Exchange != "SSE" || recs[1].Exchange != "SZSE" {
		t.Errorf("records not sorted by exchange: %s, %s", recs[0].Exchange, recs[1].Exchange)
	}
	r, ok := s.Get(model.Key{Exchange: "SZSE", Symbol: "000001"})
	if !ok || r.Name != "平安银行" {
		t.Errorf("Get(SZSE:000001) = %+v, %v", r, ok)
	}
	if _, ok := s.Get(model.Key{Exchange: "SSE", Symbol: "000001"}); ok {
		t.Errorf("Get(SSE:000001) should miss, identity is the pair")
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.parquet"))
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.parquet")
	if err := Persist(New(sampleRecords()), path); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := New(sampleRecords())
	if !reflect.DeepEqual(got.Records(), want.Records()) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got.Records(), want.Records())
	}
}

func TestPersistIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.parquet")
	pathB := filepath.Join(dir, "b.parquet")

	if err := Persist(New(sampleRecords()), pathA); err != nil {
		t.Fatalf("Persist a: %v", err)
	}
	loaded, err := Load(pathA)
	if err != nil {
		t.Fatalf("Load a: %v", err)
	}
	if err := Persist(loaded, pathB); err != nil {
		t.Fatalf("Persist b: %v", err)
	}

	a, err := os.ReadFile(pathA)
	if err != nil {
		t.Fatalf("read a: %v", err)
	}
	b, err := os.ReadFile(pathB)
	if err != nil {
		t.Fatalf("read b: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("re-persisting a loaded snapshot changed the file (%d vs %d bytes)", len(a), len(b))
	}
}

func TestLoadRejectsWrongSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.parquet")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	w := parquet.NewGenericWriter[model.SymbolRecord](f, parquet.KeyValueMetadata(schemaKey, "0"))
	if _, err := w.Write(sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}

	if _, err := Load(path); !errorsIsSchema(err) {
		t.Errorf("Load = %v, want ErrSchema", err)
	}
}

func TestLoadRejectsMissingSchemaMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.parquet")
	if err := parquet.WriteFile(path, sampleRecords()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); !errorsIsSchema(err) {
		t.Errorf("Load = %v, want ErrSchema", err)
	}
}

// Interrupting persistence before the rename must leave the previous store
// intact and loadable, and the leftover temp file must not shadow it.
func TestInterruptedPersistLeavesPreviousFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.parquet")
	if err := Persist(New(sampleRecords()), path); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	// A crashed writer leaves a half-written temp file next to the store.
	stale := filepath.Join(dir, ".stock.parquet.tmp-crashed")
	if err := os.WriteFile(stale, []byte("partial write"), 0644); err != nil {
		t.Fatalf("write stale temp: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load after interrupted persist: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("Len = %d, want 2", got.Len())
	}
}

func errorsIsSchema(err error) bool {
	return errors.Is(err, ErrSchema)
}
