// Package badgerstore is the embedded key-value backend. Each task is one JSON
// record under "task:<id>"; every operation runs in a single Badger
// transaction.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskeeper/internal/model"
	"github.com/BuzzLyutic/taskeeper/internal/storage"
)

var keyPrefix = []byte("task:")

type Config struct {
	// Path is ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
}

// zapLogger adapts zap to badger's Logger interface.
type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Errorf(f string, a ...interface{})   { l.s.Errorf(f, a...) }
func (l zapLogger) Warningf(f string, a ...interface{}) { l.s.Warnf(f, a...) }
func (l zapLogger) Infof(f string, a ...interface{})    { l.s.Infof(f, a...) }
func (l zapLogger) Debugf(f string, a ...interface{})   { l.s.Debugf(f, a...) }

// Open opens a Badger database. A nil logger silences badger's own output.
func Open(cfg Config, logger *zap.Logger) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badger: path is required for a persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if logger != nil {
		opts = opts.WithLogger(zapLogger{s: logger.Named("badger").Sugar()})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// ValueLogGC runs one value-log garbage collection pass. It reports false when
// badger found nothing worth rewriting.
func ValueLogGC(db *badger.DB, discardRatio float64) (bool, error) {
	err := db.RunValueLogGC(discardRatio)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected), errors.Is(err, badger.ErrGCInMemoryMode):
		return false, nil
	default:
		return false, fmt.Errorf("badger value log gc: %w", err)
	}
}

type TaskAdapter struct {
	db *badger.DB
}

func NewTaskAdapter(db *badger.DB) *TaskAdapter {
	return &TaskAdapter{db: db}
}

var _ storage.Adapter = (*TaskAdapter)(nil)

func key(id string) []byte {
	return append(append([]byte{}, keyPrefix...), id...)
}

func (a *TaskAdapter) Insert(_ context.Context, task model.Task) error {
	data, err := json.Marshal(storage.NewRecord(task))
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	return a.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(task.ID))
		switch {
		case err == nil:
			return fmt.Errorf("insert %s: %w", task.ID, storage.ErrDuplicate)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		return txn.Set(key(task.ID), data)
	})
}

func (a *TaskAdapter) FindByID(_ context.Context, id string) (model.Task, bool, error) {
	var (
		rec   storage.Record
		found bool
	)
	err := a.db.View(func(txn *badger.Txn) error {
		var err error
		rec, found, err = get(txn, id)
		return err
	})
	if err != nil || !found {
		return model.Task{}, false, err
	}

	t, err := rec.Task()
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

func (a *TaskAdapter) Update(_ context.Context, id string, patch storage.Patch) (model.Task, bool, error) {
	var (
		rec   storage.Record
		found bool
	)
	err := a.db.Update(func(txn *badger.Txn) error {
		var err error
		rec, found, err = get(txn, id)
		if err != nil || !found {
			return err
		}

		rec.Apply(patch)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key(id), data)
	})
	if err != nil || !found {
		return model.Task{}, false, err
	}

	t, err := rec.Task()
	if err != nil {
		return model.Task{}, false, err
	}
	return t, true, nil
}

func (a *TaskAdapter) Remove(_ context.Context, id string) error {
	return a.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(id))
	})
}

func (a *TaskAdapter) List(_ context.Context) ([]model.Task, error) {
	var records []storage.Record

	err := a.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec storage.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("read %s: %w", it.Item().Key(), err)
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return storage.DecodeAll(records)
}

func get(txn *badger.Txn, id string) (storage.Record, bool, error) {
	var rec storage.Record

	item, err := txn.Get(key(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return rec, false, fmt.Errorf("decode task %s: %w", id, err)
	}
	return rec, true, nil
}
