package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Iced Americano", "iced-americano"},
		{"korean", "김치찌개", "김치찌개"},
		{"korean with qualifier", "김치찌개 (특)", "김치찌개-특"},
		{"punctuation", "Hello,   World!", "hello-world"},
		{"leading and trailing separators", "  --Latte--  ", "latte"},
		{"mixed scripts", "카페 Latte", "카페-latte"},
		{"digits kept", "Set Menu 2", "set-menu-2"},
		{"empty", "", ""},
		{"only separators", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Make(tt.input))
		})
	}
}
