// Package badger implements ledger.Ledger on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/hupe1980/pathfiles/codec"
	"github.com/hupe1980/pathfiles/ledger"
)

const keyPrefix = "entry:"

// Config configures a badger ledger.
type Config struct {
	// DBPath is the database directory.
	DBPath string `mapstructure:"db_path"`

	// InMemory keeps the database in memory; DBPath is ignored.
	InMemory bool `mapstructure:"in_memory"`

	// Codec encodes entries. Defaults to codec.Default.
	Codec codec.Codec
}

// Ledger stores entries in a BadgerDB database.
type Ledger struct {
	db    *badger.DB
	codec codec.Codec
}

var _ ledger.Ledger = (*Ledger)(nil)

// Open opens or creates the ledger database.
func Open(ctx context.Context, cfg Config) (*Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	c := cfg.Codec
	if c == nil {
		c = codec.Default
	}

	return &Ledger{db: db, codec: c}, nil
}

func key(name string) []byte {
	return []byte(keyPrefix + name)
}

// Lookup implements ledger.Ledger.
func (l *Ledger) Lookup(ctx context.Context, name string) (ledger.Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return ledger.Entry{}, false, err
	}

	var (
		e     ledger.Entry
		found bool
	)
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return l.codec.Unmarshal(val, &e)
		})
	})
	if err != nil {
		return ledger.Entry{}, false, fmt.Errorf("lookup %s: %w", name, err)
	}
	return e, found, nil
}

// Record implements ledger.Ledger.
func (l *Ledger) Record(ctx context.Context, e ledger.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	val, err := codec.Encode(l.codec, e)
	if err != nil {
		return err
	}

	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(e.Name), val)
	})
}

// Len returns the number of entries.
func (l *Ledger) Len() (int, error) {
	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close implements ledger.Ledger.
func (l *Ledger) Close() error {
	return l.db.Close()
}
