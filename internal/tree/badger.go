// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package tree

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/solarguardian/internal/logging"
	"github.com/tomtom215/solarguardian/internal/metrics"
)

const (
	nodeKeyPrefix  = "n/"
	stateKeyPrefix = "s/"

	// DefaultGCDiscardRatio is the value log discard ratio used by RunGC.
	DefaultGCDiscardRatio = 0.5
)

// Options configures a BadgerStore.
type Options struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory only.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// BadgerStore implements Store on top of BadgerDB.
type BadgerStore struct {
	db     *badger.DB
	hub    *broadcaster
	closed atomic.Bool
	now    func() time.Time
}

// Open opens (or creates) an on-disk store at path.
func Open(path string) (*BadgerStore, error) {
	return OpenWithOptions(Options{Path: path})
}

// OpenInMemory opens a store that is discarded on Close.
func OpenInMemory() (*BadgerStore, error) {
	return OpenWithOptions(Options{InMemory: true})
}

// OpenWithOptions opens a store with explicit options.
func OpenWithOptions(o Options) (*BadgerStore, error) {
	var opts badger.Options
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if o.Path == "" {
			return nil, errors.New("tree: store path is required")
		}
		opts = badger.DefaultOptions(o.Path)
	}
	opts.SyncWrites = o.SyncWrites
	opts.Logger = logging.NewBadgerLogger()

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", o.Path).
		Bool("in_memory", o.InMemory).
		Msg("Tree store opened")

	return &BadgerStore{
		db:  db,
		hub: newBroadcaster(),
		now: time.Now,
	}, nil
}

func nodeKey(p Path) []byte  { return []byte(nodeKeyPrefix + string(p)) }
func stateKey(p Path) []byte { return []byte(stateKeyPrefix + string(p)) }

func (s *BadgerStore) check(ctx context.Context, p Path) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.Valid()
}

// CreateIfAbsent implements Writer.
func (s *BadgerStore) CreateIfAbsent(ctx context.Context, path Path, kind Kind, name string) (bool, error) {
	if err := s.check(ctx, path); err != nil {
		return false, err
	}

	created := false
	err := s.db.Update(func(txn *badger.Txn) error {
		key := nodeKey(path)
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		data, err := json.Marshal(Node{Path: path, Kind: kind, Name: name, CreatedAt: s.now().UTC()})
		if err != nil {
			return fmt.Errorf("marshal node: %w", err)
		}
		created = true
		return txn.Set(key, data)
	})
	if err != nil {
		return false, fmt.Errorf("create node %s: %w", path, err)
	}

	if created {
		metrics.TreeWrites.WithLabelValues("create").Inc()
	} else {
		metrics.TreeWrites.WithLabelValues("exists").Inc()
	}
	return created, nil
}

// WriteValue implements Writer. The value is JSON encoded; json.RawMessage
// values are stored as given.
func (s *BadgerStore) WriteValue(ctx context.Context, path Path, value interface{}) error {
	if err := s.check(ctx, path); err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", path, err)
	}

	now := s.now().UTC()
	change := Change{Path: path, Value: encoded, Timestamp: now}

	err = s.db.Update(func(txn *badger.Txn) error {
		key := stateKey(path)
		next := State{Path: path, Value: encoded, UpdatedAt: now, ChangedAt: now}

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			change.Changed = true
		case err != nil:
			return err
		default:
			var prev State
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &prev)
			}); err != nil {
				return fmt.Errorf("decode previous state: %w", err)
			}
			change.Previous = prev.Value
			change.Changed = !bytes.Equal(prev.Value, encoded)
			if !change.Changed {
				next.ChangedAt = prev.ChangedAt
			}
		}

		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("marshal state: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("write state %s: %w", path, err)
	}

	metrics.TreeWrites.WithLabelValues("write").Inc()
	s.hub.publish(change)
	return nil
}

// GetNode implements Reader.
func (s *BadgerStore) GetNode(ctx context.Context, path Path) (Node, error) {
	var node Node
	err := s.get(ctx, nodeKey(path), path, &node)
	return node, err
}

// GetState implements Reader.
func (s *BadgerStore) GetState(ctx context.Context, path Path) (State, error) {
	var state State
	err := s.get(ctx, stateKey(path), path, &state)
	return state, err
}

func (s *BadgerStore) get(ctx context.Context, key []byte, path Path, dst interface{}) error {
	if err := s.check(ctx, path); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return err
}

// ListNodes implements Reader. Results are sorted by path.
func (s *BadgerStore) ListNodes(ctx context.Context, prefix Path) ([]Node, error) {
	nodes := make([]Node, 0)
	err := s.scan(ctx, nodeKeyPrefix, prefix, func(val []byte) error {
		var n Node
		if err := json.Unmarshal(val, &n); err != nil {
			return err
		}
		if n.Path.HasPrefix(prefix) {
			nodes = append(nodes, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Path < nodes[j].Path })
	return nodes, nil
}

// ListStates implements Reader. Results are sorted by path.
func (s *BadgerStore) ListStates(ctx context.Context, prefix Path) ([]State, error) {
	states := make([]State, 0)
	err := s.scan(ctx, stateKeyPrefix, prefix, func(val []byte) error {
		var st State
		if err := json.Unmarshal(val, &st); err != nil {
			return err
		}
		if st.Path.HasPrefix(prefix) {
			states = append(states, st)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list states: %w", err)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Path < states[j].Path })
	return states, nil
}

func (s *BadgerStore) scan(ctx context.Context, keyPrefix string, prefix Path, fn func(val []byte) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if prefix != "" {
		if err := prefix.Valid(); err != nil {
			return err
		}
	}
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(keyPrefix + string(prefix))
		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// Subscribe implements Store.
func (s *BadgerStore) Subscribe(buffer int) (<-chan Change, func()) {
	return s.hub.subscribe(buffer)
}

// RunGC runs one pass of value log garbage collection. It returns nil when
// there was nothing to rewrite.
func (s *BadgerStore) RunGC() error {
	if s.closed.Load() {
		return ErrClosed
	}
	err := s.db.RunValueLogGC(DefaultGCDiscardRatio)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

// Close implements Store. Subscriber channels are closed.
func (s *BadgerStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.hub.close()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Tree store closed")
	return nil
}
