package grading

import (
	"strings"
	"unicode"
)

// Metrics are the automated quality scores for a generated answer. Optional
// sub-scores are nil when they could not be computed.
type Metrics struct {
	Grade              string
	BERTScoreF1        float64
	HallucinationScore *float64
	FactualityScore    *float64
	ContextRelevance   *float64
	Feedback           *string
}

const (
	gradeAThreshold = 0.85
	gradeBThreshold = 0.70
	gradeCThreshold = 0.55
	gradeDThreshold = 0.40

	// 一个句子中上下文能支撑的token比例达到该阈值视为有依据
	sentenceSupportThreshold = 0.6
)

var feedbackByGrade = map[string]string{
	"A": "Answer is well grounded in the retrieved legal context.",
	"B": "Answer is mostly grounded; minor unsupported phrasing.",
	"C": "Answer is partially grounded; verify citations before relying on it.",
	"D": "Answer has weak grounding in the retrieved context.",
	"F": "Answer is largely unsupported by the retrieved context.",
}

// Grade scores answer against the retrieved context. It is a pure function of
// its inputs: identical (query, answer, contexts) always produce identical
// metrics.
func Grade(query, answer string, contexts []string) Metrics {
	contextTokens := tokenSet(strings.Join(contexts, " "))
	answerTokens := tokenize(answer)
	queryTokens := tokenize(query)

	if len(answerTokens) == 0 || len(contextTokens) == 0 {
		zero := 0.0
		feedback := feedbackByGrade["F"]
		return Metrics{
			Grade:              "F",
			BERTScoreF1:        0,
			HallucinationScore: ptr(1.0),
			FactualityScore:    &zero,
			ContextRelevance:   ptr(overlapRatio(queryTokens, contextTokens)),
			Feedback:           &feedback,
		}
	}

	// Precision: answer tokens supported by the context.
	precision := overlapRatio(answerTokens, contextTokens)

	// Coverage: query tokens the answer actually addresses.
	coverage := overlapRatio(queryTokens, tokenSet(answer))

	f1 := 0.0
	if precision+coverage > 0 {
		f1 = 2 * precision * coverage / (precision + coverage)
	}

	hallucination := 1 - supportedSentenceRatio(answer, contextTokens)
	factuality := 0.7*precision + 0.3*(1-hallucination)
	relevance := overlapRatio(queryTokens, contextTokens)

	grade := letterGrade(aggregate(f1, factuality, hallucination))
	feedback := feedbackByGrade[grade]

	return Metrics{
		Grade:              grade,
		BERTScoreF1:        f1,
		HallucinationScore: &hallucination,
		FactualityScore:    &factuality,
		ContextRelevance:   &relevance,
		Feedback:           &feedback,
	}
}

// aggregate folds the sub-scores into one quality number. It is increasing in
// f1 and factuality and decreasing in hallucination, which keeps the letter
// grade monotonic in every sub-score.
func aggregate(f1, factuality, hallucination float64) float64 {
	return 0.5*f1 + 0.3*factuality + 0.2*(1-hallucination)
}

func letterGrade(score float64) string {
	switch {
	case score >= gradeAThreshold:
		return "A"
	case score >= gradeBThreshold:
		return "B"
	case score >= gradeCThreshold:
		return "C"
	case score >= gradeDThreshold:
		return "D"
	default:
		return "F"
	}
}

func supportedSentenceRatio(answer string, contextTokens map[string]struct{}) float64 {
	sentences := splitSentences(answer)
	if len(sentences) == 0 {
		return 0
	}

	supported := 0
	for _, sentence := range sentences {
		tokens := tokenize(sentence)
		if len(tokens) == 0 {
			continue
		}
		if overlapRatio(tokens, contextTokens) >= sentenceSupportThreshold {
			supported++
		}
	}
	return float64(supported) / float64(len(sentences))
}

func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		b.Reset()
	}

	for _, r := range text {
		b.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n', ';':
			flush()
		}
	}
	flush()

	return sentences
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

// overlapRatio is the fraction of tokens present in the reference set.
func overlapRatio(tokens []string, ref map[string]struct{}) float64 {
	if len(tokens) == 0 {
		return 0
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := ref[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(tokens))
}

func ptr(f float64) *float64 {
	return &f
}
