package analyzer

import (
	"fmt"
	"strings"
)

const SystemPrompt = "You are an expert ATS analyzer with deep knowledge of modern applicant tracking systems used by Fortune 500 companies. Provide accurate, actionable analysis based on real ATS requirements."

const responseContract = `{
  "overallScore": number (0-100),
  "keywordScore": number (0-100),
  "formatScore": number (0-100),
  "contentScore": number (0-100),
  "readabilityScore": number (0-100),
  "strengths": ["strength1", "strength2", ...],
  "weaknesses": ["weakness1", "weakness2", ...],
  "recommendations": ["recommendation1", "recommendation2", ...],
  "missingKeywords": ["keyword1", "keyword2", ...],
  "presentKeywords": ["keyword1", "keyword2", ...],
  "formatIssues": ["issue1", "issue2", ...],
  "contentIssues": ["issue1", "issue2", ...],
  "industryAlignment": "industry assessment",
  "experienceLevel": "junior/mid/senior level assessment",
  "improvementPriority": [
    {
      "category": "category name",
      "issue": "specific issue",
      "impact": "high/medium/low",
      "suggestion": "specific suggestion"
    }
  ]
}`

// BuildPrompt renders the user prompt for one analysis. The job description
// block is left out when jobDescription is blank.
func BuildPrompt(resumeText, jobDescription string) string {
	var jd string
	if strings.TrimSpace(jobDescription) != "" {
		jd = "Job Description for Analysis:\n" + jobDescription
	}

	return fmt.Sprintf(`
You are an expert ATS (Applicant Tracking System) analyzer. Analyze the following resume and provide a comprehensive ATS compatibility score.

Resume Content:
%s

%s

Please analyze the resume based on these ATS criteria:
1. Keyword optimization and industry relevance
2. Format compatibility (headers, sections, formatting)
3. Content quality and quantifiable achievements
4. Readability and structure
5. Missing critical elements

Provide a detailed analysis with specific scores and actionable recommendations. Focus on real ATS requirements used by major companies.

Respond with JSON in this exact format:
%s
`, resumeText, jd, responseContract)
}
