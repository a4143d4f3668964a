package resume

import "unicode/utf8"

const (
	IssueError   = "error"
	IssueWarning = "warning"
	IssueInfo    = "info"
)

type Issue struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Score is the rule-based ATS pre-score: a weighted checklist over field
// presence and length, capped at 100.
func Score(d Data) int {
	p := d.PersonalInfo
	score := 0

	// basic info, 40 points
	if p.Name != "" {
		score += 10
	}
	if p.Email != "" {
		score += 10
	}
	if p.Phone != "" {
		score += 10
	}
	if p.Summary != "" {
		score += 10
	}

	// content, 40 points
	if len(d.Experience) > 0 {
		score += 20
	}
	if len(d.Education) > 0 {
		score += 10
	}
	if len(d.Skills) > 0 {
		score += 10
	}

	// quality, 20 points
	if utf8.RuneCountInString(p.Summary) > 50 {
		score += 10
	}
	for _, e := range d.Experience {
		if utf8.RuneCountInString(e.Description) > 100 {
			score += 10
			break
		}
	}

	return min(score, 100)
}

// Issues lists what keeps the pre-score down, most severe first.
func Issues(d Data) []Issue {
	p := d.PersonalInfo
	issues := []Issue{}

	if p.Email == "" || p.Phone == "" {
		issues = append(issues, Issue{Type: IssueError, Text: "Missing contact information"})
	}
	if len(d.Experience) == 0 {
		issues = append(issues, Issue{Type: IssueWarning, Text: "Add work experience"})
	}
	if len(d.Skills) < 5 {
		issues = append(issues, Issue{Type: IssueInfo, Text: "Add more relevant skills"})
	}
	if utf8.RuneCountInString(p.Summary) < 50 {
		issues = append(issues, Issue{Type: IssueWarning, Text: "Expand professional summary"})
	}

	return issues
}

func ScoreLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	default:
		return "Needs Improvement"
	}
}
