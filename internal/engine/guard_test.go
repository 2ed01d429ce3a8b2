package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
	"github.com/xela07ax/dentops-gate-prototype/internal/telemetry"
)

type memSink struct {
	events []telemetry.Event
}

func (s *memSink) Record(e telemetry.Event) { s.events = append(s.events, e) }

func (s *memSink) types() []string {
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

// healingValidators закрывает узел после того, как по нему прошла ремедиация.
// Имитация импортера склада, который успел досыпать данные до re-check.
type healingValidators struct {
	statuses map[domain.RequirementID]domain.Status
	healed   map[domain.RequirementID]bool
}

func (f *healingValidators) Check(_ context.Context, id domain.RequirementID, _ domain.GuardContext) domain.Status {
	if f.healed[id] {
		return domain.StatusSatisfied
	}
	if st, ok := f.statuses[id]; ok {
		return st
	}
	return domain.StatusSatisfied
}

type healingAutofixes struct {
	validators *healingValidators
	heal       bool
}

func (f *healingAutofixes) CanFix(id domain.RequirementID) bool {
	return id == domain.ReqSupplies || id == domain.ReqServiceRecipe
}

func (f *healingAutofixes) Fix(_ context.Context, id domain.RequirementID, g domain.GuardContext) *domain.Remediation {
	if f.heal {
		f.validators.healed[id] = true
	}
	return &domain.Remediation{Requirement: id, ClinicID: g.ClinicID}
}

func newTestGuard(v ValidatorSet, a AutofixSet, sink telemetry.Sink) *Guard {
	mx := NewMetrics(nil)
	return NewGuard(NewEvaluator(v, a, mx, zap.NewNop()), sink, nil, mx, zap.NewNop())
}

func TestEnsureReady_AllSatisfied(t *testing.T) {
	sink := &memSink{}
	gd := newTestGuard(&fakeValidators{}, &fakeAutofixes{}, sink)

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateService,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Missing)
	assert.Nil(t, d.Remediation)
	assert.Equal(t, map[string]any{"duration_minutes": 30}, d.Defaults)

	// Разрешенная проверка тоже фиксируется: guard.open с пустым missing
	require.Equal(t, []string{telemetry.TypeGuardOpen}, sink.types())
	assert.Empty(t, sink.events[0].Missing)
	assert.Equal(t, "create_service", sink.events[0].ActionID)
}

func TestEnsureReady_BlockedWithFullMissingSet(t *testing.T) {
	sink := &memSink{}
	v := &fakeValidators{statuses: map[domain.RequirementID]domain.Status{
		domain.ReqDepreciation: domain.StatusUnsatisfied,
		domain.ReqCostPerMin:   domain.StatusUnsatisfied,
	}}
	gd := newTestGuard(v, &fakeAutofixes{}, sink)

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateService,
		domain.GuardContext{ClinicID: "c1", WorkspaceID: "w1"})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, []domain.RequirementID{domain.ReqDepreciation, domain.ReqCostPerMin}, d.Missing)
	assert.Nil(t, d.Remediation, "financial nodes have no autofix")

	require.Equal(t, []string{telemetry.TypeGuardOpen}, sink.types())
	assert.Equal(t, []string{"depreciation", "cost_per_min"}, sink.events[0].Missing)
	assert.Equal(t, "w1", sink.events[0].WorkspaceID)
}

func TestEnsureReady_AutofixUnblocks(t *testing.T) {
	sink := &memSink{}
	v := &healingValidators{
		statuses: map[domain.RequirementID]domain.Status{
			domain.ReqSupplies: domain.StatusUnsatisfied,
		},
		healed: map[domain.RequirementID]bool{},
	}
	a := &healingAutofixes{validators: v, heal: true}
	gd := newTestGuard(v, a, sink)

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateTariff,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	assert.True(t, d.Allowed)
	assert.Empty(t, d.Missing)
	require.NotNil(t, d.Remediation)
	assert.Equal(t, domain.ReqSupplies, d.Remediation.Requirement)

	assert.Equal(t, []string{
		telemetry.TypeGuardOpen,
		telemetry.TypeAutofixTriggered,
		telemetry.TypeUnblocked,
	}, sink.types())
}

func TestEnsureReady_AutofixDoesNotHeal(t *testing.T) {
	sink := &memSink{}
	v := &healingValidators{
		statuses: map[domain.RequirementID]domain.Status{
			domain.ReqSupplies: domain.StatusUnsatisfied,
		},
		healed: map[domain.RequirementID]bool{},
	}
	a := &healingAutofixes{validators: v, heal: false}
	gd := newTestGuard(v, a, sink)

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateTariff,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	assert.False(t, d.Allowed)
	assert.Equal(t, []domain.RequirementID{domain.ReqSupplies}, d.Missing)
	require.NotNil(t, d.Remediation, "remediation UI is surfaced even when blocked")

	assert.Equal(t, []string{
		telemetry.TypeGuardOpen,
		telemetry.TypeAutofixTriggered,
	}, sink.types())
}

func TestEnsureReady_UnknownBlocksFailClosed(t *testing.T) {
	sink := &memSink{}
	v := &fakeValidators{statuses: map[domain.RequirementID]domain.Status{
		domain.ReqCostPerMin: domain.StatusUnknown,
	}}
	gd := newTestGuard(v, &fakeAutofixes{}, sink)

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateService,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err, "probe failures never surface as errors")

	assert.False(t, d.Allowed)
	assert.Contains(t, d.Missing, domain.ReqCostPerMin)
}

func TestEnsureReady_UnknownActionIsError(t *testing.T) {
	gd := newTestGuard(&fakeValidators{}, &fakeAutofixes{}, &memSink{})

	_, err := gd.EnsureReady(context.Background(), "teleport_patient",
		domain.GuardContext{ClinicID: "c1"})
	require.Error(t, err)
}

func TestEnsureReady_PolicyFlagsEchoed(t *testing.T) {
	gd := newTestGuard(&fakeValidators{}, &fakeAutofixes{}, &memSink{})

	d, err := gd.EnsureReady(context.Background(), domain.ActionCreateTreatment,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	assert.True(t, d.SnapshotRequired)
	assert.True(t, d.AllowClinicalWithoutTariff)
}

type memBroadcast struct {
	decisions []any
}

func (b *memBroadcast) PublishDecision(_ context.Context, d any) error {
	b.decisions = append(b.decisions, d)
	return nil
}

func TestEnsureReady_BroadcastsDecision(t *testing.T) {
	bus := &memBroadcast{}
	v := &fakeValidators{statuses: map[domain.RequirementID]domain.Status{
		domain.ReqSupplies: domain.StatusUnsatisfied,
	}}
	mx := NewMetrics(nil)
	gd := NewGuard(NewEvaluator(v, &fakeAutofixes{}, mx, zap.NewNop()),
		&memSink{}, bus, mx, zap.NewNop())

	_, err := gd.EnsureReady(context.Background(), domain.ActionCreateTariff,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	require.Len(t, bus.decisions, 1)
	d, ok := bus.decisions[0].(*domain.GateDecision)
	require.True(t, ok)
	assert.False(t, d.Allowed)
}

func TestInspect_NoAutofixNoTelemetry(t *testing.T) {
	sink := &memSink{}
	v := &fakeValidators{statuses: map[domain.RequirementID]domain.Status{
		domain.ReqSupplies: domain.StatusUnsatisfied,
	}}
	a := &fakeAutofixes{}
	gd := newTestGuard(v, a, sink)

	res, err := gd.Inspect(context.Background(), domain.ActionCreateTariff,
		domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	assert.Contains(t, res.Missing, domain.ReqSupplies)
	assert.Empty(t, a.fixed, "dry check must not trigger remediations")
	assert.Empty(t, sink.events)
}

func TestProgress_PhasesAndPercent(t *testing.T) {
	v := &fakeValidators{statuses: map[domain.RequirementID]domain.Status{
		domain.ReqSupplies:      domain.StatusUnsatisfied,
		domain.ReqServiceRecipe: domain.StatusUnsatisfied,
		domain.ReqTariffs:       domain.StatusUnknown,
	}}
	gd := newTestGuard(v, &fakeAutofixes{}, &memSink{})

	p, err := gd.Progress(context.Background(), domain.GuardContext{ClinicID: "c1"})
	require.NoError(t, err)

	require.Len(t, p.Phases, 2)
	fin, cat := p.Phases[0], p.Phases[1]

	assert.Equal(t, "financial", fin.Name)
	assert.True(t, fin.Complete)
	assert.Equal(t, 3, fin.Satisfied)

	assert.Equal(t, "catalog", cat.Name)
	assert.False(t, cat.Complete)
	assert.Equal(t, 0, cat.Satisfied)
	// Unknown отдается как есть, не маскируется под unsatisfied
	for _, n := range cat.Nodes {
		if n.ID == domain.ReqTariffs {
			assert.Equal(t, domain.StatusUnknown, n.Status)
		}
	}

	assert.Equal(t, 50, p.Percent)
}
