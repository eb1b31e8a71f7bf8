package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend wraps one BadgerDB instance. Repositories share a single Backend;
// whoever opened it owns Close.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogBadger forwards badger's internal logging to slog.
type slogBadger struct {
	l *slog.Logger
}

var _ badger.Logger = (*slogBadger)(nil)

func (s *slogBadger) Errorf(format string, args ...any)   { s.l.Error(fmt.Sprintf(format, args...)) }
func (s *slogBadger) Warningf(format string, args ...any) { s.l.Warn(fmt.Sprintf(format, args...)) }
func (s *slogBadger) Infof(format string, args ...any)    { s.l.Info(fmt.Sprintf(format, args...)) }
func (s *slogBadger) Debugf(format string, args ...any)   { s.l.Debug(fmt.Sprintf(format, args...)) }

// OpenBackend opens the database directory at filePath, creating it when
// missing. With inMemory set the path is ignored and nothing touches disk,
// which keeps tests fast.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	logger := slog.Default()

	opts := badger.DefaultOptions(filePath)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else if err := ensureDir(filePath); err != nil {
		return nil, err
	}
	opts = opts.WithLogger(&slogBadger{l: logger}).WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(path, 0o755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Close closes the underlying database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn inside a badger transaction, read-write when update is set.
// The transaction is always discarded afterwards; fn commits explicitly when
// it wants its writes kept.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, update bool) error {
	tx := b.db.NewTransaction(update)
	defer tx.Discard()
	return fn(tx)
}

// WithTransaction runs fn inside a committed read-write transaction.
// Implements the storage.Repository transaction contract.
func (b *Backend) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return b.WithTx(func(tx *badger.Txn) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
