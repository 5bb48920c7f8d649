package workspace

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// substringBonus keeps substring hits ahead of any edit-distance match.
const substringBonus = 1 << 16

// matchScore is lower for better matches.
func matchScore(query, name string) int {
	if query == "" {
		return 0
	}
	if strings.Contains(name, query) {
		return len(name) - len(query) - substringBonus
	}
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem = name[:i]
	}
	return min(levenshtein.ComputeDistance(query, name), levenshtein.ComputeDistance(query, stem))
}
