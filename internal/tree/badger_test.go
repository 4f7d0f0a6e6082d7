// Solarguardian - EPEver Cloud Telemetry Mirror
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/solarguardian

package tree

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/solarguardian/internal/metrics"
)

func newTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateIfAbsent(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateIfAbsent(ctx, "powerStations.7", KindDevice, "Farm")
	if err != nil || !created {
		t.Fatalf("first CreateIfAbsent() = %v, %v", created, err)
	}
	created, err = s.CreateIfAbsent(ctx, "powerStations.7", KindDevice, "Renamed")
	if err != nil || created {
		t.Fatalf("second CreateIfAbsent() = %v, %v", created, err)
	}

	node, err := s.GetNode(ctx, "powerStations.7")
	if err != nil {
		t.Fatalf("GetNode() error = %v", err)
	}
	if node.Name != "Farm" || node.Kind != KindDevice {
		t.Errorf("node = %+v, existing node must not be overwritten", node)
	}
}

func TestWriteValueAndGetState(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteValue(ctx, "devices.1.status", int64(1)); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}
	if err := s.WriteValue(ctx, "devices.1.name", "Inverter"); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}
	if err := s.WriteValue(ctx, "devices.1.parameters.9.value", json.RawMessage(`12.5`)); err != nil {
		t.Fatalf("WriteValue() error = %v", err)
	}

	cases := map[Path]string{
		"devices.1.status":             `1`,
		"devices.1.name":               `"Inverter"`,
		"devices.1.parameters.9.value": `12.5`,
	}
	for p, want := range cases {
		st, err := s.GetState(ctx, p)
		if err != nil {
			t.Fatalf("GetState(%s) error = %v", p, err)
		}
		if string(st.Value) != want {
			t.Errorf("GetState(%s) = %s, want %s", p, st.Value, want)
		}
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetNode(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetNode() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetState(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetState() error = %v, want ErrNotFound", err)
	}
}

func TestInvalidPathRejected(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	err := s.WriteValue(context.Background(), "a..b", 1)
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("WriteValue() error = %v, want ErrInvalidPath", err)
	}
}

func TestChangedAtOnlyMovesOnChange(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	if err := s.WriteValue(ctx, "alarms.1.status", 0); err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(time.Minute)
	if err := s.WriteValue(ctx, "alarms.1.status", 0); err != nil {
		t.Fatal(err)
	}

	st, err := s.GetState(ctx, "alarms.1.status")
	if err != nil {
		t.Fatal(err)
	}
	if !st.UpdatedAt.Equal(clock) {
		t.Errorf("UpdatedAt = %v, want %v", st.UpdatedAt, clock)
	}
	if !st.ChangedAt.Equal(clock.Add(-time.Minute)) {
		t.Errorf("ChangedAt = %v, want first write time", st.ChangedAt)
	}

	clock = clock.Add(time.Minute)
	if err := s.WriteValue(ctx, "alarms.1.status", 1); err != nil {
		t.Fatal(err)
	}
	st, _ = s.GetState(ctx, "alarms.1.status")
	if !st.ChangedAt.Equal(clock) {
		t.Errorf("ChangedAt = %v, want %v after a new value", st.ChangedAt, clock)
	}
}

func TestListPrefixBoundary(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	for _, p := range []Path{"devices.1", "devices.10", "devices.1.parameters.2"} {
		if _, err := s.CreateIfAbsent(ctx, p, KindDevice, ""); err != nil {
			t.Fatal(err)
		}
		if err := s.WriteValue(ctx, p.Child("name"), string(p)); err != nil {
			t.Fatal(err)
		}
	}

	nodes, err := s.ListNodes(ctx, "devices.1")
	if err != nil {
		t.Fatalf("ListNodes() error = %v", err)
	}
	if len(nodes) != 2 || nodes[0].Path != "devices.1" || nodes[1].Path != "devices.1.parameters.2" {
		t.Errorf("ListNodes(devices.1) = %+v", nodes)
	}

	states, err := s.ListStates(ctx, "")
	if err != nil {
		t.Fatalf("ListStates() error = %v", err)
	}
	if len(states) != 3 {
		t.Errorf("ListStates(\"\") returned %d states, want 3", len(states))
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	ch, cancel := s.Subscribe(4)
	defer cancel()

	if err := s.WriteValue(ctx, "info.connection", true); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteValue(ctx, "info.connection", true); err != nil {
		t.Fatal(err)
	}

	first := <-ch
	if first.Path != "info.connection" || !first.Changed || string(first.Value) != "true" {
		t.Errorf("first change = %+v", first)
	}
	second := <-ch
	if second.Changed || string(second.Previous) != "true" {
		t.Errorf("second change = %+v, want unchanged with previous value", second)
	}
}

func TestSubscribeDropsWhenFull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, cancel := s.Subscribe(1)
	defer cancel()

	before := testutil.ToFloat64(metrics.TreeNotificationsDropped)
	for i := 0; i < 3; i++ {
		if err := s.WriteValue(ctx, "info.connection", i); err != nil {
			t.Fatal(err)
		}
	}
	if got := testutil.ToFloat64(metrics.TreeNotificationsDropped) - before; got != 2 {
		t.Errorf("dropped = %v, want 2", got)
	}
}

func TestCloseRejectsWritesAndClosesSubscribers(t *testing.T) {
	t.Parallel()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	ch, _ := s.Subscribe(1)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}
	if err := s.WriteValue(context.Background(), "a", 1); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteValue() after Close error = %v, want ErrClosed", err)
	}
	if err := s.RunGC(); !errors.Is(err, ErrClosed) {
		t.Errorf("RunGC() after Close error = %v, want ErrClosed", err)
	}
}

func TestOpenOnDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.WriteValue(context.Background(), "info.connection", false); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	st, err := s.GetState(context.Background(), "info.connection")
	if err != nil || string(st.Value) != "false" {
		t.Errorf("persisted state = %s, %v", st.Value, err)
	}
}

type recordingWriter struct {
	ops    []string
	failAt int
}

func (w *recordingWriter) CreateIfAbsent(_ context.Context, p Path, _ Kind, _ string) (bool, error) {
	w.ops = append(w.ops, "create "+string(p))
	if len(w.ops) == w.failAt {
		return false, errors.New("boom")
	}
	return true, nil
}

func (w *recordingWriter) WriteValue(_ context.Context, p Path, _ interface{}) error {
	w.ops = append(w.ops, "set "+string(p))
	if len(w.ops) == w.failAt {
		return errors.New("boom")
	}
	return nil
}

func TestApplyStopsAtFirstError(t *testing.T) {
	t.Parallel()

	w := &recordingWriter{failAt: 2}
	writes := []Write{
		Create("a", KindDevice, "A"),
		Set("a.name", "A"),
		Set("a.status", 1),
	}
	err := Apply(context.Background(), w, writes)
	if err == nil {
		t.Fatal("Apply() error = nil, want failure")
	}
	if len(w.ops) != 2 {
		t.Errorf("ops = %v, want to stop after the failing write", w.ops)
	}
}
