// Package ledger — points.go содержит таблицу коэффициентов экобаллов.
// Баллы начисляются за грамм сданного вторсырья и зависят от категории.
package ledger

// Встроенные коэффициенты (экобаллов за грамм).
// Категории без встроенного значения дают 0 баллов, пока коэффициент
// не задан через LEDGER_EXTRA_COEFFICIENTS.
var baseCoefficients = map[Category]float64{
	Plastic: 0.03,
	Paper:   0.02,
	Glass:   0.015,
	Metal:   0.04,
}

// PointsTable считает экобаллы за сдачу.
type PointsTable struct {
	coefficients map[Category]float64
}

// NewPointsTable собирает таблицу коэффициентов: встроенные значения
// плюс переопределения из конфигурации (ключи — имена категорий enum).
// Переопределить можно и встроенный коэффициент.
func NewPointsTable(extra map[string]float64) *PointsTable {
	coeffs := make(map[Category]float64, len(baseCoefficients)+len(extra))
	for c, v := range baseCoefficients {
		coeffs[c] = v
	}
	for name, v := range extra {
		c := Category(name)
		if c.Valid() {
			coeffs[c] = v
		}
	}
	return &PointsTable{coefficients: coeffs}
}

// Coefficient возвращает коэффициент категории (0, если не задан).
func (t *PointsTable) Coefficient(c Category) float64 {
	return t.coefficients[c]
}

// PointsFor считает баллы за вес: граммы × коэффициент категории.
func (t *PointsTable) PointsFor(c Category, grams int64) float64 {
	return float64(grams) * t.coefficients[c]
}
