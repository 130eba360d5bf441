package intent

import (
	"math"
	"regexp"
	"strings"
)

var fuzzyTokenRe = regexp.MustCompile(`[a-z0-9&\-]+`)

// tokenizeForFuzzy lowercases the text and keeps alphanumeric tokens of at
// least minLen characters.
func tokenizeForFuzzy(text string, minLen int) []string {
	if minLen < 1 {
		minLen = 1
	}
	var out []string
	for _, tok := range fuzzyTokenRe.FindAllString(strings.ToLower(text), -1) {
		if len(tok) >= minLen {
			out = append(out, tok)
		}
	}
	return out
}

// similarityPct scores two strings 0-100 as twice the longest common
// subsequence over the combined length, the classic sequence-matcher ratio.
func similarityPct(a, b string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	lcs := lcsLength(a, b)
	return int(math.Round(200 * float64(lcs) / float64(len(a)+len(b))))
}

func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// bestFuzzyCandidate scores every candidate against the full text and each
// token, keeping the maximum. It returns the winning candidate with the best
// and runner-up scores so callers can demand an unambiguous margin before
// trusting the match.
func bestFuzzyCandidate(candidates, tokens []string, fullText string) (best string, bestScore, secondScore int) {
	ft := strings.ToLower(fullText)
	bestScore = -1
	secondScore = -1
	for _, c := range candidates {
		cl := strings.ToLower(strings.TrimSpace(c))
		if cl == "" {
			continue
		}
		s := 0
		if ft != "" {
			s = similarityPct(cl, ft)
		}
		for _, t := range tokens {
			if r := similarityPct(cl, t); r > s {
				s = r
			}
		}
		switch {
		case s > bestScore:
			secondScore = bestScore
			bestScore = s
			best = c
		case s > secondScore:
			secondScore = s
		}
	}
	if bestScore < 0 {
		bestScore = 0
	}
	if secondScore < 0 {
		secondScore = 0
	}
	return best, bestScore, secondScore
}
