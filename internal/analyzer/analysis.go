// Package analyzer produces ATS compatibility analyses by prompting a hosted
// model with the rendered resume and sanitizing whatever JSON comes back.
package analyzer

const (
	ImpactHigh   = "high"
	ImpactMedium = "medium"
	ImpactLow    = "low"
)

// Analysis is the typed ATS report returned to clients. All scores are in
// [0,100].
type Analysis struct {
	OverallScore     float64 `json:"overallScore"`
	KeywordScore     float64 `json:"keywordScore"`
	FormatScore      float64 `json:"formatScore"`
	ContentScore     float64 `json:"contentScore"`
	ReadabilityScore float64 `json:"readabilityScore"`

	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`

	MissingKeywords []string `json:"missingKeywords"`
	PresentKeywords []string `json:"presentKeywords"`

	FormatIssues  []string `json:"formatIssues"`
	ContentIssues []string `json:"contentIssues"`

	IndustryAlignment string `json:"industryAlignment"`
	ExperienceLevel   string `json:"experienceLevel"`

	ImprovementPriority []Improvement `json:"improvementPriority"`
}

type Improvement struct {
	Category   string `json:"category"`
	Issue      string `json:"issue"`
	Impact     string `json:"impact"`
	Suggestion string `json:"suggestion"`
}

// ScoreLabel names a score the way the analysis report does.
func ScoreLabel(score float64) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 80:
		return "Good"
	case score >= 60:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

// ScoreBand buckets a score into good, fair or poor.
func ScoreBand(score float64) string {
	switch {
	case score >= 80:
		return "good"
	case score >= 60:
		return "fair"
	default:
		return "poor"
	}
}

// Report is an Analysis together with the label and colour band of its
// overall score.
type Report struct {
	Analysis
	Label string `json:"label"`
	Band  string `json:"band"`
}

func NewReport(a Analysis) Report {
	return Report{Analysis: a, Label: ScoreLabel(a.OverallScore), Band: ScoreBand(a.OverallScore)}
}
