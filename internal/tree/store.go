// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package tree

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound    = errors.New("tree: path not found")
	ErrInvalidPath = errors.New("tree: invalid path")
	ErrClosed      = errors.New("tree: store closed")
)

// Kind is the type of a container node.
type Kind string

const (
	KindDevice  Kind = "device"
	KindFolder  Kind = "folder"
	KindChannel Kind = "channel"
	KindState   Kind = "state"
)

// Node is a container in the tree.
type Node struct {
	Path      Path      `json:"path"`
	Kind      Kind      `json:"kind"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// State is the current value of a leaf. ChangedAt only moves when the value
// differs from the previous write; UpdatedAt moves on every write.
type State struct {
	Path      Path            `json:"path"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
	ChangedAt time.Time       `json:"changed_at"`
}

// Change describes one committed WriteValue.
type Change struct {
	Path      Path            `json:"path"`
	Value     json.RawMessage `json:"value"`
	Previous  json.RawMessage `json:"previous,omitempty"`
	Changed   bool            `json:"changed"`
	Timestamp time.Time       `json:"timestamp"`
}

// Writer is the write side used by the synchronization engine.
type Writer interface {
	// CreateIfAbsent creates a container node. It reports false without
	// touching the node when the path already exists.
	CreateIfAbsent(ctx context.Context, path Path, kind Kind, name string) (bool, error)

	// WriteValue stores value, JSON encoded, as the state of path.
	WriteValue(ctx context.Context, path Path, value interface{}) error
}

// Reader is the read side used by the HTTP API.
type Reader interface {
	GetNode(ctx context.Context, path Path) (Node, error)
	GetState(ctx context.Context, path Path) (State, error)
	ListNodes(ctx context.Context, prefix Path) ([]Node, error)
	ListStates(ctx context.Context, prefix Path) ([]State, error)
}

// Store is the full tree store.
type Store interface {
	Writer
	Reader

	// Subscribe registers a change listener with the given buffer size. The
	// returned function unregisters it and closes the channel.
	Subscribe(buffer int) (<-chan Change, func())

	Close() error
}

// Op is the operation of a Write.
type Op int

const (
	OpCreate Op = iota
	OpSet
)

// Write is one deferred store operation, produced by mapping functions and
// executed with Apply.
type Write struct {
	Op    Op
	Path  Path
	Kind  Kind
	Name  string
	Value interface{}
}

// Create returns a CreateIfAbsent operation.
func Create(path Path, kind Kind, name string) Write {
	return Write{Op: OpCreate, Path: path, Kind: kind, Name: name}
}

// Set returns a WriteValue operation.
func Set(path Path, value interface{}) Write {
	return Write{Op: OpSet, Path: path, Value: value}
}

// String implements fmt.Stringer.
func (w Write) String() string {
	if w.Op == OpCreate {
		return fmt.Sprintf("create %s (%s)", w.Path, w.Kind)
	}
	return fmt.Sprintf("set %s", w.Path)
}

// Apply executes writes in order and stops at the first failure.
func Apply(ctx context.Context, w Writer, writes []Write) error {
	for _, op := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch op.Op {
		case OpCreate:
			_, err = w.CreateIfAbsent(ctx, op.Path, op.Kind, op.Name)
		case OpSet:
			err = w.WriteValue(ctx, op.Path, op.Value)
		default:
			err = fmt.Errorf("unknown op %d", op.Op)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}
