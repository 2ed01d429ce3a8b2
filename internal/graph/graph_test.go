package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/dentops-gate-prototype/internal/domain"
)

func indexOf(ids []domain.RequirementID, id domain.RequirementID) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func TestTopoOrder_DependenciesFirst(t *testing.T) {
	// Для каждого узла результата все его зависимости должны стоять раньше
	order, err := TopoOrder(domain.AllRequirements)
	require.NoError(t, err)

	for _, id := range order {
		n, err := GetNode(id)
		require.NoError(t, err)
		for _, dep := range n.DependsOn {
			assert.Less(t, indexOf(order, dep), indexOf(order, id),
				"dependency %s must precede %s", dep, id)
		}
	}
}

func TestTopoOrder_ExpandsTransitiveDeps(t *testing.T) {
	order, err := TopoOrder([]domain.RequirementID{domain.ReqTariffs})
	require.NoError(t, err)

	// tariffs тянет за собой cost_per_min -> (depreciation, fixed_costs)
	// и service_recipe -> supplies
	assert.Equal(t, []domain.RequirementID{
		domain.ReqDepreciation,
		domain.ReqFixedCosts,
		domain.ReqCostPerMin,
		domain.ReqSupplies,
		domain.ReqServiceRecipe,
		domain.ReqTariffs,
	}, order)
}

func TestTopoOrder_Deduplicates(t *testing.T) {
	order, err := TopoOrder([]domain.RequirementID{
		domain.ReqCostPerMin, domain.ReqCostPerMin, domain.ReqBreakEven, domain.ReqFixedCosts,
	})
	require.NoError(t, err)

	seen := make(map[domain.RequirementID]int)
	for _, id := range order {
		seen[id]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "node %s repeated", id)
	}
}

func TestTopoOrder_UnknownNodeFailsLoudly(t *testing.T) {
	_, err := TopoOrder([]domain.RequirementID{"nonexistent"})
	require.ErrorIs(t, err, ErrUnknownNode)
}

func TestGetAction_Unknown(t *testing.T) {
	_, err := GetAction("nonexistent")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestGetAction_MinRequirementsResolvable(t *testing.T) {
	// Все ссылки из таблицы действий обязаны разрешаться в таблице узлов
	for _, id := range []domain.ActionID{
		domain.ActionCreateService, domain.ActionCreateTariff, domain.ActionCreateTreatment,
	} {
		a, err := GetAction(id)
		require.NoError(t, err)
		require.NotEmpty(t, a.MinRequirements)
		_, err = TopoOrder(a.MinRequirements)
		require.NoError(t, err, "action %s", id)
	}
}

func TestGraph_Acyclic(t *testing.T) {
	// TopoOrder на полном наборе обязан завершиться и покрыть все узлы
	order, err := TopoOrder(domain.AllRequirements)
	require.NoError(t, err)
	assert.Len(t, order, len(domain.AllRequirements))
}
