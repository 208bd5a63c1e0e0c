package community

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsThanks(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"спасибо", true},
		{"Спасибо большое!", true},
		{"СПАСИБО", true},
		{"благодарю", true},
		{"спс", true},
		{"👍", true},
		{"🙏", true},
		{"вот это да", false},
		{"", false},
		{"   ", false},
		{"!сдал пластик 500", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsThanks(tt.text))
		})
	}
}
