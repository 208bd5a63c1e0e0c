package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	parser := NewCommandParser()

	tests := []struct {
		name     string
		text     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{"восклицательный знак", "!сдал пластик 500", "сдал", []string{"пластик", "500"}, true},
		{"точка", ".профиль", "профиль", nil, true},
		{"слэш", "/start", "start", nil, true},
		{"регистр команды", "!ТОП значки", "топ", []string{"значки"}, true},
		{"пробелы вокруг", "  !история  ", "история", nil, true},
		{"обычный текст", "сдал пластик", "", nil, false},
		{"пустая строка", "", "", nil, false},
		{"только префикс", "!", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, ok := parser.ParseCommand(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
