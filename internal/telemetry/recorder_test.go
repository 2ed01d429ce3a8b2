package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStorage struct {
	mu     sync.Mutex
	events []Event
}

func (s *memStorage) WriteBatch(_ context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestRecorder_DrainsOnStop(t *testing.T) {
	store := &memStorage{}
	rec := NewRecorder(store, zap.NewNop(), Options{
		BufferSize: 100, BatchSize: 100, FlushInterval: time.Hour,
	})
	rec.Start()

	for i := 0; i < 25; i++ {
		rec.Record(Event{Type: TypeGuardOpen, ActionID: "create_treatment"})
	}
	rec.Stop()

	// Flush-таймер не успел сработать — всё должно уйти финальным сбросом
	assert.Equal(t, 25, store.count(), "no event loss on shutdown")
}

func TestRecorder_BatchFlushOnSize(t *testing.T) {
	store := &memStorage{}
	rec := NewRecorder(store, zap.NewNop(), Options{
		BufferSize: 100, BatchSize: 5, FlushInterval: time.Hour,
	})
	rec.Start()
	defer rec.Stop()

	for i := 0; i < 5; i++ {
		rec.Record(Event{Type: TypeUnblocked})
	}

	require.Eventually(t, func() bool { return store.count() == 5 },
		time.Second, 10*time.Millisecond)
}

func TestRecorder_TimestampAlwaysSet(t *testing.T) {
	store := &memStorage{}
	rec := NewRecorder(store, zap.NewNop(), Options{BatchSize: 1, FlushInterval: time.Hour})
	rec.Start()

	rec.Record(Event{Type: TypeAutofixTriggered})
	rec.Stop()

	require.Equal(t, 1, store.count())
	assert.False(t, store.events[0].Timestamp.IsZero())
}

func TestRecorder_RecordAfterStopIsDropped(t *testing.T) {
	store := &memStorage{}
	rec := NewRecorder(store, zap.NewNop(), Options{BatchSize: 1, FlushInterval: time.Hour})
	rec.Start()
	rec.Stop()

	// Не должно паниковать и не должно попасть в хранилище
	rec.Record(Event{Type: TypeGuardOpen})
	assert.Equal(t, 0, store.count())
}
