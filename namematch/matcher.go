package namematch

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/hashicorp/go-set/v2"
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultThreshold is the minimum similarity accepted as a fuzzy match.
const DefaultThreshold = 0.85

// Method records how a match was established.
type Method string

const (
	MethodNone       Method = ""
	MethodExact      Method = "exact"
	MethodTokenSet   Method = "token_set"
	MethodSimilarity Method = "similarity"
)

// Named is implemented by reference entries that can be matched by name.
type Named interface {
	MatchName() string
}

// Result is the outcome of matching one candidate against one list.
type Result[E Named] struct {
	Matched bool
	Entry   E
	Score   float64
	Method  Method
}

// Matcher compares names using a fixed similarity threshold.
// The zero value uses DefaultThreshold.
type Matcher struct {
	Threshold float64
}

// NewMatcher returns a Matcher with the given threshold. Values outside
// (0, 1] fall back to DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return Matcher{Threshold: threshold}
}

func (m Matcher) threshold() float64 {
	if m.Threshold <= 0 || m.Threshold > 1 {
		return DefaultThreshold
	}
	return m.Threshold
}

// Match returns the best entry for candidate.
//
// Exact normalized equality scores 1.0. So does a token-set match, where the
// significant tokens of one name all appear in the other in any order and the
// smaller set holds at least two tokens. Otherwise the better of the
// Levenshtein similarity and the token-sort ratio of the sorted significant
// tokens must reach the threshold. When several entries share the best score
// the first one in entries wins, unless a later entry matches exactly.
func Match[E Named](m Matcher, candidate string, entries []E) Result[E] {
	var best Result[E]

	norm := Normalize(candidate)
	if norm == "" {
		return best
	}
	candTokens := significantTokens(norm)
	candKey := strings.Join(candTokens, " ")
	candSet := set.From(candTokens)

	lev := metrics.NewLevenshtein()
	threshold := m.threshold()

	for _, entry := range entries {
		entryNorm := Normalize(entry.MatchName())
		if entryNorm == "" {
			continue
		}

		var score float64
		var method Method
		switch {
		case entryNorm == norm:
			score, method = 1, MethodExact
		default:
			entryTokens := significantTokens(entryNorm)
			if len(entryTokens) == 0 || len(candTokens) == 0 {
				continue
			}
			entryKey := strings.Join(entryTokens, " ")
			if entryKey == candKey || tokenSubset(candSet, set.From(entryTokens)) {
				score, method = 1, MethodTokenSet
			} else {
				score, method = similarity(candKey, entryKey, lev), MethodSimilarity
			}
		}

		if score < threshold || !improves(best, score, method) {
			continue
		}
		best = Result[E]{Matched: true, Entry: entry, Score: score, Method: method}
		if method == MethodExact {
			break
		}
	}

	return best
}

// tokenSubset reports whether one token set contains the other and the
// contained set has at least two tokens. A lone surname never matches.
func tokenSubset(a, b *set.Set[string]) bool {
	if a.Size() >= 2 && b.Subset(a) {
		return true
	}
	return b.Size() >= 2 && a.Subset(b)
}

func similarity(a, b string, lev *metrics.Levenshtein) float64 {
	score := strutil.Similarity(a, b, lev)
	return max(score, float64(fuzzy.TokenSortRatio(a, b))/100)
}

func improves[E Named](best Result[E], score float64, method Method) bool {
	if score != best.Score {
		return score > best.Score
	}
	return method == MethodExact && best.Method != MethodExact
}
