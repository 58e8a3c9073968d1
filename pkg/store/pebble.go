package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"chatstore/pkg/logger"

	"github.com/cockroachdb/pebble"
)

// ErrNotFound is returned for point lookups of absent ids. Callers use it to
// distinguish "this was removed" from authorization failures.
var ErrNotFound = errors.New("not found")

var (
	db     *pebble.DB
	dbPath string
)

// Open opens (or creates) the Pebble database at the given path and keeps a
// global handle for the package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	dbPath = ""
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool { return db != nil }

func errNotReady() error {
	return fmt.Errorf("pebble not opened; call store.Open first")
}

func get(key string) ([]byte, error) {
	if db == nil {
		return nil, errNotReady()
	}
	opsTotal.WithLabelValues("get").Inc()
	v, closer, err := db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	out := append([]byte(nil), v...)
	if closer != nil {
		_ = closer.Close()
	}
	return out, nil
}

func set(key string, val []byte) error {
	if db == nil {
		return errNotReady()
	}
	opsTotal.WithLabelValues("set").Inc()
	return db.Set([]byte(key), val, pebble.Sync)
}

// del removes a key. Deleting an absent key is not an error at this layer;
// collaborators that need existence semantics must check first.
func del(key string) error {
	if db == nil {
		return errNotReady()
	}
	opsTotal.WithLabelValues("delete").Inc()
	return db.Delete([]byte(key), pebble.Sync)
}

func getJSON(key string, v interface{}) error {
	b, err := get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("invalid stored row at %s: %w", key, err)
	}
	return nil
}

func setJSON(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal row for %s: %w", key, err)
	}
	return set(key, b)
}

// ListKeys returns all keys starting with prefix; an empty prefix returns
// every key. Used by the retention sweeper and the inspect tool.
func ListKeys(prefix string) ([]string, error) {
	if db == nil {
		return nil, errNotReady()
	}
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	pfx := []byte(prefix)
	var out []string
	for iter.SeekGE(pfx); iter.Valid(); iter.Next() {
		if len(pfx) > 0 && !bytes.HasPrefix(iter.Key(), pfx) {
			break
		}
		out = append(out, string(iter.Key()))
	}
	return out, iter.Error()
}

// GetKey returns the raw value for the given key.
func GetKey(key string) (string, error) {
	v, err := get(key)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// SaveKey writes a raw key/value pair.
func SaveKey(key string, val []byte) error { return set(key, val) }

// DeleteKey removes a raw key. Idempotent.
func DeleteKey(key string) error { return del(key) }

// EngineMetrics is a snapshot of storage engine internals used by the
// health monitor.
type EngineMetrics struct {
	WALBytes  uint64
	DiskBytes uint64
}

// GetEngineMetrics reads the current Pebble metrics. Zero values when the
// store is not open.
func GetEngineMetrics() EngineMetrics {
	if db == nil {
		return EngineMetrics{}
	}
	m := db.Metrics()
	return EngineMetrics{WALBytes: m.WAL.Size, DiskBytes: m.DiskSpaceUsage()}
}

// scanIndex walks an index prefix in ascending order and returns the row
// ids the entries point at.
func scanIndex(prefix string) ([]string, error) {
	if db == nil {
		return nil, errNotReady()
	}
	opsTotal.WithLabelValues("scan").Inc()
	pfx := []byte(prefix)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: pfx, UpperBound: keyUpperBound(pfx)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()
	var out []string
	for iter.First(); iter.Valid(); iter.Next() {
		out = append(out, string(iter.Value()))
	}
	return out, iter.Error()
}
