package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xela07ax/dentops-gate-prototype/internal/clinicapi"
)

func TestNormalizeRealPct(t *testing.T) {
	// Двойная интерпретация: >1 — процент, <=1 — уже доля
	assert.Equal(t, 0.8, NormalizeRealPct(80))
	assert.Equal(t, 0.8, NormalizeRealPct(0.8))
	assert.Equal(t, 1.0, NormalizeRealPct(1))
	assert.Equal(t, 1.0, NormalizeRealPct(100))
	assert.Equal(t, 0.0, NormalizeRealPct(0))
	assert.Equal(t, 0.0, NormalizeRealPct(-5))
}

func TestEffectiveMinutes(t *testing.T) {
	// 20 дней * 8 часов * 60 минут * 0.8 = 7680
	assert.Equal(t, int64(7680), EffectiveMinutes(20, 8, 0.8))
	// Процентная форма дает тот же результат
	assert.Equal(t, int64(7680), EffectiveMinutes(20, 8, 80))
	assert.Equal(t, int64(0), EffectiveMinutes(0, 8, 0.8))
}

func TestCostPerMinuteCents(t *testing.T) {
	// 500000 / 7680 = 65.1 -> 65
	assert.Equal(t, int64(65), CostPerMinuteCents(500000, 7680))
	// Округление вверх: 500 / 3 = 166.67 -> 167
	assert.Equal(t, int64(167), CostPerMinuteCents(500, 3))
	assert.Equal(t, int64(0), CostPerMinuteCents(500000, 0))
	assert.Equal(t, int64(0), CostPerMinuteCents(0, 7680))
}

func TestSumFixedCents(t *testing.T) {
	rows := []clinicapi.FixedCost{{AmountCents: 100}, {AmountCents: 200}, {AmountCents: 300}}
	assert.Equal(t, int64(600), SumFixedCents(rows))
	assert.Equal(t, int64(0), SumFixedCents(nil))
}
