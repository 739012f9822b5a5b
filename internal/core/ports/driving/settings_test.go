package driving

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSettingEntry_DisplayValue(t *testing.T) {
	tests := []struct {
		name     string
		entry    SettingEntry
		expected string
	}{
		{"plain value", SettingEntry{Value: "groq"}, "groq"},
		{"empty secret", SettingEntry{Value: "", Secret: true}, ""},
		{"short secret", SettingEntry{Value: "abcd1234", Secret: true}, "****"},
		{"long secret", SettingEntry{Value: "gsk_abcdefghijklmnop", Secret: true}, "gsk_...mnop"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.entry.DisplayValue())
		})
	}
}
