package infer

import (
	"regexp"
	"strings"
)

// backRefBonus is added to the similarity score of the immediately preceding
// node when the description contains an explicit back-reference phrase.
const backRefBonus = 0.25

var tokenRe = regexp.MustCompile(`[a-z0-9]+`)

// stopwords are excluded from token overlap; they carry no lexical signal.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "in": true, "is": true,
	"it": true, "of": true, "on": true, "or": true, "that": true, "the": true,
	"then": true, "this": true, "to": true, "was": true, "with": true,
}

// backRefPhrases signal that a step's description refers to a prior result.
var backRefPhrases = []string{
	"the above",
	"that result",
	"this result",
	"the previous",
	"from before",
	"the result",
}

// tokenize lowercases, splits on non-alphanumerics, and drops stopwords.
func tokenize(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(s), -1) {
		if !stopwords[tok] {
			out[tok] = true
		}
	}
	return out
}

// Similarity scores the lexical overlap of two descriptions as the Jaccard
// index of their token sets. Returns 0 when either side has no tokens.
func Similarity(a, b string) float64 {
	ta := tokenize(a)
	tb := tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for tok := range ta {
		if tb[tok] {
			shared++
		}
	}
	union := len(ta) + len(tb) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// HasBackReference reports whether a description contains an explicit
// back-reference phrase ("the above", "that result", ...).
func HasBackReference(desc string) bool {
	lower := strings.ToLower(desc)
	for _, phrase := range backRefPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
