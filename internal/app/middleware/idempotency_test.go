package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"villacove/internal/app/commands"
)

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func newMapStore() *mapStore {
	return &mapStore{items: make(map[string]IdempotencyRecord)}
}

func (s *mapStore) Get(ctx context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(ctx context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

type testCommand struct {
	IDKey string
}

func (c testCommand) Key() string { return "test.command" }

func (c testCommand) IdempotencyKey() string { return c.IDKey }

func (c testCommand) ResultPrototype() any { return &testResult{} }

type testResult struct {
	Value int `json:"value"`
}

func TestIdempotencyReplaysStoredResult(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := 0
	commands.RegisterHandler(bus, testCommand{}.Key(), commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			calls++
			return &testResult{Value: calls}, nil
		}))
	wrapped := ChainCommands(bus, Idempotency(newMapStore(), nil))

	first, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{IDKey: "k1"})
	if err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	second, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{IDKey: "k1"})
	if err != nil {
		t.Fatalf("second dispatch: %v", err)
	}
	if calls != 1 {
		t.Fatalf("handler must run once for a repeated key, ran %d times", calls)
	}
	if first.Value != second.Value {
		t.Fatalf("replayed result differs: %d vs %d", first.Value, second.Value)
	}
}

func TestIdempotencyReplaysFailures(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := 0
	sentinel := errors.New("boom")
	commands.RegisterHandler(bus, testCommand{}.Key(), commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			calls++
			return nil, sentinel
		}))
	wrapped := ChainCommands(bus, Idempotency(newMapStore(), nil))

	if _, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{IDKey: "k1"}); err == nil {
		t.Fatal("expected error")
	}
	if _, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{IDKey: "k1"}); err == nil || err.Error() != sentinel.Error() {
		t.Fatalf("expected replayed failure, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("failed command must not rerun, ran %d times", calls)
	}
}

func TestIdempotencySkipsCommandsWithoutKey(t *testing.T) {
	bus := commands.NewInMemoryBus()
	calls := 0
	commands.RegisterHandler(bus, testCommand{}.Key(), commands.HandlerFunc[testCommand, *testResult](
		func(ctx context.Context, cmd testCommand) (*testResult, error) {
			calls++
			return &testResult{Value: calls}, nil
		}))
	wrapped := ChainCommands(bus, Idempotency(newMapStore(), nil))

	for i := 0; i < 2; i++ {
		if _, err := commands.Dispatch[testCommand, *testResult](context.Background(), wrapped, testCommand{}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}
	if calls != 2 {
		t.Fatalf("keyless commands run every time, ran %d times", calls)
	}
}
