package autofix

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
)

type memBus struct {
	mu     sync.Mutex
	events []string
}

func (b *memBus) Publish(_ context.Context, event string, _ EventPayload) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *memBus) count(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, e := range b.events {
		if e == event {
			n++
		}
	}
	return n
}

func TestThrottle_SuppressesWithinWindow(t *testing.T) {
	tr := NewThrottle(2 * time.Second)
	now := time.Now()
	tr.now = func() time.Time { return now }

	assert.True(t, tr.Allow("k"))
	assert.False(t, tr.Allow("k"), "same key within window must be suppressed")

	now = now.Add(2100 * time.Millisecond)
	assert.True(t, tr.Allow("k"), "key outside window fires again")
}

func TestThrottle_KeysAreIndependent(t *testing.T) {
	tr := NewThrottle(2 * time.Second)
	assert.True(t, tr.Allow("a"))
	assert.True(t, tr.Allow("b"))
}

func TestFix_EmitsBothEventNames(t *testing.T) {
	bus := &memBus{}
	s := NewSet(bus, 2*time.Second, zap.NewNop())

	rem := s.Fix(context.Background(), domain.ReqSupplies, domain.GuardContext{ClinicID: "cl-1"})
	require.NotNil(t, rem)
	assert.Equal(t, EventOpenSuppliesImporter, rem.Event)
	assert.Equal(t, EventOpenSuppliesImporterLegacy, rem.LegacyEvent)
	assert.Equal(t, 1, bus.count(EventOpenSuppliesImporter))
	assert.Equal(t, 1, bus.count(EventOpenSuppliesImporterLegacy))
}

func TestFix_IdempotentWithinWindow(t *testing.T) {
	bus := &memBus{}
	s := NewSet(bus, 2*time.Second, zap.NewNop())
	g := domain.GuardContext{ClinicID: "cl-1"}

	first := s.Fix(context.Background(), domain.ReqServiceRecipe, g)
	second := s.Fix(context.Background(), domain.ReqServiceRecipe, g)

	require.NotNil(t, first)
	assert.Nil(t, second, "duplicate within 2s must be suppressed")
	assert.Equal(t, 1, bus.count(EventOpenRecipeWizard), "exactly one dispatch per window")
}

func TestFix_DifferentServiceIsNewKey(t *testing.T) {
	bus := &memBus{}
	s := NewSet(bus, 2*time.Second, zap.NewNop())

	require.NotNil(t, s.Fix(context.Background(), domain.ReqServiceRecipe,
		domain.GuardContext{ClinicID: "cl-1", ServiceID: "svc-1"}))
	require.NotNil(t, s.Fix(context.Background(), domain.ReqServiceRecipe,
		domain.GuardContext{ClinicID: "cl-1", ServiceID: "svc-2"}))
}

func TestFix_NodeWithoutAutofix(t *testing.T) {
	bus := &memBus{}
	s := NewSet(bus, 2*time.Second, zap.NewNop())

	assert.Nil(t, s.Fix(context.Background(), domain.ReqCostPerMin, domain.GuardContext{ClinicID: "cl-1"}))
	assert.Empty(t, bus.events)
	assert.False(t, s.CanFix(domain.ReqCostPerMin))
	assert.True(t, s.CanFix(domain.ReqSupplies))
}
