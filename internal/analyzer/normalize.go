package analyzer

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/muhammadolammi/resumeforge/internal/llm"
)

const undetermined = "Unable to determine"

// Parse decodes a model reply and normalizes it. An empty reply is treated
// as an empty object, so it yields an all-default analysis.
func Parse(content string) (Analysis, error) {
	cleaned := llm.CleanJSON(content)
	if cleaned == "" {
		cleaned = "{}"
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return Analysis{}, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}

	raw, _ := decoded.(map[string]any)
	return Normalize(raw), nil
}

// Normalize turns an untrusted JSON object into a complete Analysis: scores
// are clamped to [0,100], lists keep only scalar entries and missing text
// falls back to fixed defaults.
func Normalize(raw map[string]any) Analysis {
	return Analysis{
		OverallScore:     score(raw["overallScore"]),
		KeywordScore:     score(raw["keywordScore"]),
		FormatScore:      score(raw["formatScore"]),
		ContentScore:     score(raw["contentScore"]),
		ReadabilityScore: score(raw["readabilityScore"]),

		Strengths:       stringList(raw["strengths"]),
		Weaknesses:      stringList(raw["weaknesses"]),
		Recommendations: stringList(raw["recommendations"]),

		MissingKeywords: stringList(raw["missingKeywords"]),
		PresentKeywords: stringList(raw["presentKeywords"]),

		FormatIssues:  stringList(raw["formatIssues"]),
		ContentIssues: stringList(raw["contentIssues"]),

		IndustryAlignment: text(raw["industryAlignment"], undetermined),
		ExperienceLevel:   text(raw["experienceLevel"], undetermined),

		ImprovementPriority: improvements(raw["improvementPriority"]),
	}
}

func score(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		f, _ = n.Float64()
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(100, f))
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case float64:
			out = append(out, strconv.FormatFloat(s, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(s))
		}
	}
	return out
}

func text(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func improvements(v any) []Improvement {
	items, ok := v.([]any)
	if !ok {
		return []Improvement{}
	}
	out := make([]Improvement, 0, len(items))
	for _, item := range items {
		fields, _ := item.(map[string]any)
		out = append(out, Improvement{
			Category:   text(fields["category"], "General"),
			Issue:      text(fields["issue"], "Unknown issue"),
			Impact:     impact(fields["impact"]),
			Suggestion: text(fields["suggestion"], "No suggestion provided"),
		})
	}
	return out
}

func impact(v any) string {
	s, _ := v.(string)
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case ImpactHigh, ImpactMedium, ImpactLow:
		return s
	default:
		return ImpactMedium
	}
}
