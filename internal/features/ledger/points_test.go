package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointsTableBaseCoefficients(t *testing.T) {
	table := NewPointsTable(nil)

	tests := []struct {
		category Category
		grams    int64
		want     float64
	}{
		{Plastic, 100, 3.0},
		{Paper, 100, 2.0},
		{Glass, 100, 1.5},
		{Metal, 100, 4.0},
		{Electronic, 100, 0},
		{OilFats, 100, 0},
		{Organic, 100, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.InDelta(t, tt.want, table.PointsFor(tt.category, tt.grams), 1e-9)
		})
	}
}

func TestPointsTableExtraCoefficients(t *testing.T) {
	table := NewPointsTable(map[string]float64{
		"ELECTRONIC": 0.05,
		"ORGANIC":    0.005,
		"PLASTIC":    0.10, // переопределение встроенного значения
		"BANANAS":    1.0,  // не категория — игнорируется
	})

	assert.InDelta(t, 0.05, table.Coefficient(Electronic), 1e-9)
	assert.InDelta(t, 0.005, table.Coefficient(Organic), 1e-9)
	assert.InDelta(t, 0.10, table.Coefficient(Plastic), 1e-9)
	assert.InDelta(t, 0.02, table.Coefficient(Paper), 1e-9)
	assert.InDelta(t, 0.0, table.Coefficient(Category("BANANAS")), 1e-9)
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input string
		want  Category
		ok    bool
	}{
		{"пластик", Plastic, true},
		{"ПЛАСТИК", Plastic, true},
		{"бумага", Paper, true},
		{"стекло", Glass, true},
		{"металл", Metal, true},
		{"электроника", Electronic, true},
		{"масло", OilFats, true},
		{"органика", Organic, true},
		{"PLASTIC", Plastic, true},
		{"plastic", Plastic, true},
		{"дерево", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseCategory(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
