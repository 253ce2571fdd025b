package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/dgraph-io/badger/v3"

	"github.com/abdulehsan/Jarvis/internal/logging"
)

const (
	keyPrefix = "msg/"

	// maxConflictRetries bounds retries of an append that raced another
	// append to the same session.
	maxConflictRetries = 3
)

// BadgerStore is a Store persisted in a badger database. Keys are
// "msg/<escaped session>/<ulid>", so a prefix scan returns a session in
// insertion order.
type BadgerStore struct {
	db     *badger.DB
	max    int
	ids    *ids
	logger *slog.Logger
}

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	// Dir is the database directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps the database in memory only.
	InMemory bool

	MaxMessages int
	Logger      *slog.Logger
}

// OpenBadger opens (creating if needed) a badger backed store.
func OpenBadger(opts BadgerOptions) (*BadgerStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logging.WithComponent(logger, "memory")

	bopts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else if opts.Dir == "" {
		return nil, fmt.Errorf("memory directory is required")
	}
	bopts = bopts.WithLogger(logging.NewPrintfAdapter(logging.WithComponent(logger, "badger")))

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open memory store at %s: %w", opts.Dir, err)
	}
	logger.Debug("memory store opened", "dir", opts.Dir, "in_memory", opts.InMemory)

	return &BadgerStore{
		db:     db,
		max:    limitOrDefault(opts.MaxMessages),
		ids:    newIDs(),
		logger: logger,
	}, nil
}

func sessionPrefix(session string) []byte {
	return []byte(keyPrefix + url.PathEscape(session) + "/")
}

func (s *BadgerStore) Load(ctx context.Context, session string) ([]Message, error) {
	prefix := sessionPrefix(session)
	var msgs []Message
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var m Message
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			})
			if err != nil {
				return fmt.Errorf("failed to decode message %s: %w", it.Item().Key(), err)
			}
			msgs = append(msgs, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	return msgs, nil
}

func (s *BadgerStore) Append(ctx context.Context, session string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	prefix := sessionPrefix(session)
	stamped := stamp(s.ids, msgs)

	update := func(txn *badger.Txn) error {
		var existing [][]byte
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			existing = append(existing, it.Item().KeyCopy(nil))
		}
		it.Close()

		// Evict the oldest so that existing plus new fits the limit.
		over := len(existing) + len(stamped) - s.max
		for i := 0; i < over && i < len(existing); i++ {
			if err := txn.Delete(existing[i]); err != nil {
				return err
			}
		}

		skip := 0
		if over > len(existing) {
			skip = over - len(existing)
		}
		for _, m := range stamped[skip:] {
			val, err := json.Marshal(m)
			if err != nil {
				return err
			}
			key := append(append([]byte{}, prefix...), m.ID...)
			if err := txn.Set(key, val); err != nil {
				return err
			}
		}
		return nil
	}

	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		if err = s.db.Update(update); !errors.Is(err, badger.ErrConflict) {
			break
		}
		s.logger.Debug("history append conflicted, retrying", logging.Session(logging.Anonymize(session)))
	}
	if err != nil {
		return fmt.Errorf("failed to save session history: %w", err)
	}
	return nil
}

func (s *BadgerStore) Clear(ctx context.Context, session string) error {
	if err := s.db.DropPrefix(sessionPrefix(session)); err != nil {
		return fmt.Errorf("failed to clear session history: %w", err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
