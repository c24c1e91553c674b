package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"cn-data/internal/model"
)

// Persist writes the snapshot to path with write-to-temp-then-rename semantics:
// the full file is written and fsynced to a temp file in the destination
// directory, then renamed over path. Readers of path see either the previous
// or the new content, never a partial write. On any failure before the rename
// the previous file is untouched.
func Persist(s *Snapshot, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := parquet.NewGenericWriter[model.SymbolRecord](tmp, parquet.KeyValueMetadata(schemaKey, schemaVersion))
	if len(s.records) > 0 {
		if _, err := w.Write(s.records); err != nil {
			return fmt.Errorf("write store rows: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		tmpPath = ""
		return fmt.Errorf("replace store %s: %w", path, err)
	}
	tmpPath = ""
	return nil
}
