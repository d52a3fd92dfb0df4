package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
)

func TestApplyRemapRules(t *testing.T) {
	rules := []config.RemapRule{
		{Contains: "Blowdry Cream", Replacement: "Styling"},
		{Contains: "Prime Day", Replacement: "Biolage - Brand"},
		{Contains: "Biolage", Replacement: "Core"},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"exact substring match", "Biolage Blowdry Cream 5oz", "Styling"},
		{"first match wins over later rules", "Biolage Prime Day Bundle", "Biolage - Brand"},
		{"later rule when earlier ones miss", "Biolage ColorLast", "Core"},
		{"no rule matches", "Redken Acidic Bonding", "Redken Acidic Bonding"},
		{"empty label passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyRemapRules(tt.in, rules))
		})
	}
}

func TestApplyRemapRulesNoRules(t *testing.T) {
	assert.Equal(t, "ColorLast", ApplyRemapRules("ColorLast", nil))
}
