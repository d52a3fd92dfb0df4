package dataprocessing

import (
	"strings"

	"github.com/scott-pak-loreal/automation-beta/internal/config"
)

// ApplyRemapRules rewrites a franchise label using the ordered rule
// list. The first rule whose substring appears in the label wins; a
// label matching no rule passes through unchanged.
//
// The default rules collapse promotional line items into their parent
// franchise ("Blowdry Cream" variants into Styling, "Prime Day"
// entries into the brand line).
func ApplyRemapRules(franchise string, rules []config.RemapRule) string {
	for _, rule := range rules {
		if strings.Contains(franchise, rule.Contains) {
			return rule.Replacement
		}
	}
	return franchise
}
