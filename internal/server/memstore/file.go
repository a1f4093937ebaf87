package memstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/agahlya1812/memoboost/internal/filex"
)

// Load reads a store.json file. A missing file yields an empty dataset.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Data{}, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}

	d := &Data{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", path, err)
	}
	return d, nil
}

// FilePersister writes the dataset to path atomically.
func FilePersister(path string) PersistFunc {
	return func(d *Data) error {
		raw, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return fmt.Errorf("encode store: %w", err)
		}
		return filex.WriteFileAtomic(path, raw, 0o600)
	}
}
