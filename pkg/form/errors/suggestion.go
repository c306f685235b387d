package errors

import (
	"fmt"
	"strings"
)

// maxSuggestDistance is the largest edit distance still offered as "did you mean".
const maxSuggestDistance = 3

// SuggestFieldID proposes the closest existing field id for a dangling reference.
func SuggestFieldID(unknown string, fieldIDs []string) string {
	if best, ok := closest(unknown, fieldIDs); ok {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	if len(fieldIDs) == 0 {
		return ""
	}
	if len(fieldIDs) > 5 {
		return fmt.Sprintf("Known fields include: %s, ...", strings.Join(fieldIDs[:5], ", "))
	}
	return fmt.Sprintf("Known fields: %s", strings.Join(fieldIDs, ", "))
}

// SuggestName proposes the closest valid name (operator, action, field type) for an
// unknown one, or lists the valid names.
func SuggestName(unknown string, valid []string) string {
	if best, ok := closest(unknown, valid); ok {
		return fmt.Sprintf("Did you mean '%s'?", best)
	}
	if len(valid) == 0 {
		return ""
	}
	return fmt.Sprintf("Valid values: %s", strings.Join(valid, ", "))
}

// SuggestOperators lists the operators that apply to a field type.
func SuggestOperators(fieldType string, operators []string) string {
	if len(operators) == 0 {
		return fmt.Sprintf("No operators apply to %s fields", fieldType)
	}
	return fmt.Sprintf("Operators for %s fields: %s", fieldType, strings.Join(operators, ", "))
}

func closest(unknown string, candidates []string) (string, bool) {
	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, candidate := range candidates {
		if d := levenshteinDistance(strings.ToLower(unknown), strings.ToLower(candidate)); d < bestDistance {
			bestDistance = d
			best = candidate
		}
	}
	return best, bestDistance <= maxSuggestDistance
}

// levenshteinDistance computes the edit distance between two strings by rune using
// two rolling rows.
func levenshteinDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
