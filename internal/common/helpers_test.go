package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizeGrams(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1, "грамм"},
		{21, "грамм"},
		{101, "грамм"},
		{2, "грамма"},
		{3, "грамма"},
		{4, "грамма"},
		{22, "грамма"},
		{0, "граммов"},
		{5, "граммов"},
		{11, "граммов"},
		{12, "граммов"},
		{14, "граммов"},
		{100, "граммов"},
		{111, "граммов"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeGrams(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeBadges(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "значок"},
		{2, "значка"},
		{5, "значков"},
		{11, "значков"},
		{21, "значок"},
		{24, "значка"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeBadges(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeDays(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "день"},
		{3, "дня"},
		{7, "дней"},
		{12, "дней"},
		{21, "день"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeDays(tt.n), "n=%d", tt.n)
	}
}

func TestFormatGrams(t *testing.T) {
	assert.Equal(t, "500 граммов", FormatGrams(500))
	assert.Equal(t, "1 грамм", FormatGrams(1))
	assert.Equal(t, "999 граммов", FormatGrams(999))
	assert.Equal(t, "1.0 кг", FormatGrams(1000))
	assert.Equal(t, "1.5 кг", FormatGrams(1500))
	assert.Equal(t, "12.0 кг", FormatGrams(12000))
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "37.5 экобаллов", FormatPoints(37.5))
	assert.Equal(t, "0.0 экобаллов", FormatPoints(0))
}

func TestFormatEmissions(t *testing.T) {
	assert.Equal(t, "1.23 кг CO₂", FormatEmissions(1.234))
}

func TestDaysLeft(t *testing.T) {
	now := GetMoscowTime()

	// Московский часовой пояс без перевода часов, сутки всегда 24 часа
	assert.Equal(t, 3, DaysLeft(now.Add(72*time.Hour)))
	assert.Equal(t, 0, DaysLeft(now))
	assert.Equal(t, -1, DaysLeft(now.Add(-24*time.Hour)))
}

func TestFormatDateTime(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	ts := time.Date(2025, 3, 8, 12, 30, 0, 0, loc)
	assert.Equal(t, "08.03.2025 12:30", FormatDateTime(ts))
}
