package emotion

import (
	"strings"

	"github.com/renaissancebro/AGI-seed/internal/domain"
)

// Belief semantics live in [stability, positivity, certainty, social].
var beliefDimensions = [][]string{
	{"stable", "reliable", "consistent", "predictable"},
	{"good", "positive", "helpful", "beneficial"},
	{"certain", "sure", "confident", "clear"},
	{"social", "people", "relationship", "connect"},
}

// EncodeBelief maps a belief name onto the four comfort dimensions and
// normalizes the result. Names with no keyword hits encode to the zero vector.
func EncodeBelief(b *domain.Belief) []float64 {
	text := strings.ToLower(b.Name())
	vec := make([]float64, len(beliefDimensions))
	for i, words := range beliefDimensions {
		if containsAny(text, words) {
			vec[i] = 1
		}
	}
	return domain.NormalizeVector(vec)
}

type keywordVector struct {
	word string
	vec  [4]float64
}

// Conduct semantics live in [calm, helpful, honest, respectful].
var standardKeywords = []keywordVector{
	{"calm", [4]float64{1, 0, 0, 0}},
	{"helpful", [4]float64{0, 1, 0, 0}},
	{"honest", [4]float64{0, 0, 1, 0}},
	{"respectful", [4]float64{0, 0, 0, 1}},
}

var actionKeywords = []keywordVector{
	{"angry", [4]float64{-1, 0, 0, 0}},
	{"rude", [4]float64{0, -1, 0, -1}},
	{"lie", [4]float64{0, 0, -1, 0}},
	{"mean", [4]float64{0, -1, 0, -1}},
	{"stupid", [4]float64{0, -1, 0, -1}},
	{"calm", [4]float64{1, 0, 0, 0}},
	{"helpful", [4]float64{0, 1, 0, 0}},
	{"honest", [4]float64{0, 0, 1, 0}},
	{"respectful", [4]float64{0, 0, 0, 1}},
}

// EncodeStandard derives a conduct vector from a standard's name and
// description.
func EncodeStandard(name, description string) []float64 {
	return encodeKeywords(name+" "+description, standardKeywords)
}

// EncodeAction derives a conduct vector from what the agent said or did.
// Hostile words push against the matching dimensions.
func EncodeAction(content string) []float64 {
	return encodeKeywords(content, actionKeywords)
}

func encodeKeywords(text string, keywords []keywordVector) []float64 {
	text = strings.ToLower(text)
	vec := make([]float64, 4)
	for _, kw := range keywords {
		if !strings.Contains(text, kw.word) {
			continue
		}
		for i, v := range kw.vec {
			vec[i] += v
		}
	}
	return vec
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
