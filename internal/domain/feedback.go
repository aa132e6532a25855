package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackTypeGeneral       FeedbackType = "general"
	FeedbackTypeClarity       FeedbackType = "clarity"
	FeedbackTypeUnderstanding FeedbackType = "understanding"
	FeedbackTypeKnowledge     FeedbackType = "knowledge"
)

const (
	BeliefCommunicatesClearly = "I communicate clearly"
	BeliefUnderstandsUsers    = "I understand users"
	BeliefKnowledgeable       = "I am knowledgeable"
	BeliefHelpful             = "I am helpful"
	BeliefValuesAccuracy      = "I value accuracy"
	BeliefCurious             = "I am curious"
)

// FeedbackTargets maps feedback types to the belief they update. Unknown
// types fall back to the general target.
var FeedbackTargets = map[FeedbackType]string{
	FeedbackTypeGeneral:       BeliefCommunicatesClearly,
	FeedbackTypeClarity:       BeliefCommunicatesClearly,
	FeedbackTypeUnderstanding: BeliefUnderstandsUsers,
	FeedbackTypeKnowledge:     BeliefKnowledgeable,
}

func FeedbackTarget(t FeedbackType) string {
	if name, ok := FeedbackTargets[t]; ok {
		return name
	}
	return FeedbackTargets[FeedbackTypeGeneral]
}

var (
	positiveFeedbackWords = []string{"good", "great", "helpful", "clear", "excellent", "perfect"}
	negativeFeedbackWords = []string{"bad", "unclear", "confusing", "wrong", "unhelpful", "terrible"}
)

// ClassifyFeedback scores free-text feedback by keyword. Each matching word
// adds a third of full intensity; ties read as faintly positive.
func ClassifyFeedback(text string) (Valence, float64) {
	lower := strings.ToLower(text)
	pos := countMatches(lower, positiveFeedbackWords)
	neg := countMatches(lower, negativeFeedbackWords)

	switch {
	case pos > neg:
		return ValencePositive, clamp01(float64(pos) / 3.0)
	case neg > pos:
		return ValenceNegative, clamp01(float64(neg) / 3.0)
	default:
		return ValencePositive, 0.1
	}
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

// InteractionFeedback is the processed form of user feedback on a response.
type InteractionFeedback struct {
	Feedback  string       `json:"feedback"`
	Type      FeedbackType `json:"type"`
	Valence   Valence      `json:"processed_valence"`
	Intensity float64      `json:"processed_intensity"`
}

// Interaction records one prompt/response exchange and the identity state it
// was toned with.
type Interaction struct {
	ID         uuid.UUID            `json:"id"`
	IdentityID uuid.UUID            `json:"identity_id"`
	UserID     string               `json:"user_id"`
	Prompt     string               `json:"prompt"`
	Response   string               `json:"response"`
	Mass       float64              `json:"mass"`
	Resistance float64              `json:"resistance"`
	Feedback   *InteractionFeedback `json:"user_feedback,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}
