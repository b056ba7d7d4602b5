package textutil

import (
	"sort"
	"strings"
	"unicode"
)

// NormalizeTokens lowercases s, treats every non-alphanumeric rune as a
// separator, sorts the resulting tokens, and joins them with single spaces.
// Word order and punctuation therefore never affect comparisons.
func NormalizeTokens(s string) string {
	lowered := strings.ToLower(s)
	tokens := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(tokens) == 0 {
		return ""
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// TokenSortRatio scores the similarity of a and b on a 0-100 scale: both
// sides are token-normalized and the normalized indel similarity of the
// results is returned. Strings with no alphanumeric content score 0.
func TokenSortRatio(a, b string) float64 {
	na := NormalizeTokens(a)
	nb := NormalizeTokens(b)
	if na == "" || nb == "" {
		return 0
	}
	return IndelRatio(na, nb)
}

// IndelRatio returns (lenA+lenB-distance)/(lenA+lenB) * 100, where distance
// is the minimum number of insertions and deletions turning a into b.
func IndelRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	distance := indelDistance(ra, rb)
	return float64(total-distance) / float64(total) * 100
}

// IndelRatioCeiling bounds IndelRatio from above using only the string
// lengths: the best case is the shorter string being a subsequence of the
// longer. Callers can skip the quadratic distance computation whenever the
// ceiling already misses their threshold.
func IndelRatioCeiling(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	total := la + lb
	if total == 0 {
		return 100
	}
	shorter := la
	if lb < la {
		shorter = lb
	}
	return float64(2*shorter) / float64(total) * 100
}

func indelDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
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
				continue
			}
			deletion := prev[j] + 1
			insertion := curr[j-1] + 1
			if deletion < insertion {
				curr[j] = deletion
			} else {
				curr[j] = insertion
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
