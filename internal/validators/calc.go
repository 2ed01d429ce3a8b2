package validators

import (
	"github.com/shopspring/decimal"

	"github.com/xela07ax/dentops-gate-prototype/internal/clinicapi"
)

// Денежная арифметика гейта. Все входы в центах, деление — через decimal,
// чтобы округление CPM не плавало на float64.

// NormalizeRealPct приводит загрузку кресла к доле [0,1].
// Upstream хранит значение непоследовательно: иногда 0.8, иногда 80 —
// значения > 1 трактуем как проценты. Это осознанная терпимость.
func NormalizeRealPct(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// EffectiveMinutes — реально доступные минуты в месяц:
// workDays * hoursPerDay * 60 * clamp(realPct), округленные до целого.
func EffectiveMinutes(workDays, hoursPerDay, realPct float64) int64 {
	pct := decimal.NewFromFloat(NormalizeRealPct(realPct))
	minutes := decimal.NewFromFloat(workDays).
		Mul(decimal.NewFromFloat(hoursPerDay)).
		Mul(decimal.NewFromInt(60)).
		Mul(pct)
	return minutes.Round(0).IntPart()
}

// CostPerMinuteCents — round(totalFixed / effectiveMinutes); 0 если минут нет.
func CostPerMinuteCents(totalFixedCents, effectiveMinutes int64) int64 {
	if effectiveMinutes <= 0 || totalFixedCents <= 0 {
		return 0
	}
	return decimal.NewFromInt(totalFixedCents).
		Div(decimal.NewFromInt(effectiveMinutes)).
		Round(0).
		IntPart()
}

// SumFixedCents складывает строки фиксированных затрат.
func SumFixedCents(rows []clinicapi.FixedCost) int64 {
	var sum int64
	for _, r := range rows {
		sum += r.AmountCents
	}
	return sum
}
