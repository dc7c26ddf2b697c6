package textutil

import "golang.org/x/text/cases"

// EditDistance is Levenshtein distance extended with adjacent transpositions
// (optimal string alignment), so "Elyra" and "Elrya" are one edit apart.
func EditDistance(a, b string) int {
	s1, s2 := []rune(a), []rune(b)
	m, n := len(s1), len(s2)
	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Three rows: two back, previous, current.
	back := make([]int, n+1)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && s1[i-1] == s2[j-2] && s1[i-2] == s2[j-1] {
				curr[j] = min(curr[j], back[j-2]+1)
			}
		}
		back, prev, curr = prev, curr, back
	}

	return prev[n]
}

// Similarity returns a case-insensitive 0-1 similarity normalised by the
// longer string. Identical strings (including two empty ones) score 1.
func Similarity(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	maxLen := max(len([]rune(fa)), len([]rune(fb)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(EditDistance(fa, fb))/float64(maxLen)
}

// Fold applies Unicode case folding.
func Fold(s string) string {
	return cases.Fold().String(s)
}
