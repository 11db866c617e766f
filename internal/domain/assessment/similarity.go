package assessment

import "strings"

// NameRatio scores the similarity of two names on [0,100]. It is the
// indel-distance ratio (substitutions count as delete+insert), which makes
// 100 an exact match after case folding and trimming, and keeps transposed
// or slightly misspelled names in the 70–95 band that sanctions screening
// treats as a candidate match.
func NameRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		if a == "" {
			return 0
		}
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	lensum := len(ra) + len(rb)
	dist := indelDistance(ra, rb)
	return float64(lensum-dist) / float64(lensum) * 100
}

// indelDistance is the edit distance where the only operations are insert
// and delete, each at cost 1. Equivalent to lensum minus twice the length of
// the longest common subsequence.
func indelDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
			} else {
				curr[j] = min(prev[j], curr[j-1]) + 1
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
