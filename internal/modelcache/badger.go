package modelcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const badgerPrefix = "model:"

// BadgerMedium stores slots as keys of a Badger database.
type BadgerMedium struct {
	db *badger.DB
}

// NewBadgerMedium opens a Badger database in dir. An empty dir opens an
// in-memory database.
func NewBadgerMedium(dir string) (*BadgerMedium, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return &BadgerMedium{db: db}, nil
}

func (b *BadgerMedium) Read(_ context.Context, slot string) ([]byte, bool, error) {
	var data []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerPrefix + slot))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (b *BadgerMedium) Write(_ context.Context, slot string, data []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(badgerPrefix+slot), data)
	})
}

func (b *BadgerMedium) Close() error { return b.db.Close() }
