package rules

import "github.com/liamcoop/riskscore/namematch"

// addressCoverage returns the share of distinct submitted address tokens that
// also appear in the OCR text, and the number of distinct submitted tokens.
// Word order and punctuation are ignored.
func addressCoverage(submitted, ocr string) (float64, int) {
	want := distinct(namematch.Tokens(submitted))
	if len(want) == 0 {
		return 0, 0
	}

	have := make(map[string]bool)
	for _, tok := range namematch.Tokens(ocr) {
		have[tok] = true
	}

	found := 0
	for _, tok := range want {
		if have[tok] {
			found++
		}
	}
	return float64(found) / float64(len(want)), len(want)
}

func distinct(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if !seen[tok] {
			seen[tok] = true
			out = append(out, tok)
		}
	}
	return out
}
