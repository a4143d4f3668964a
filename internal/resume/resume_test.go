package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() Data {
	return Data{
		PersonalInfo: PersonalInfo{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "555-0100",
			Location: "Austin, TX",
			LinkedIn: "linkedin.com/in/janedoe",
			Summary:  "Backend engineer with eight years building payment systems in Go.",
		},
		Experience: []Experience{
			{Company: "Acme", Position: "Senior Engineer", StartDate: "2020-01", Current: true, Description: "Led the ledger team."},
			{Company: "Initech", Position: "Engineer", StartDate: "2016-05", EndDate: "2019-12", Description: "Built TPS reports."},
		},
		Education: []Education{
			{Institution: "UT Austin", Degree: "BSc", Field: "Computer Science", StartDate: "2012", EndDate: "2016", GPA: "3.8"},
		},
		Skills: []Skill{
			{Name: "Go", Level: "Expert", Category: "Technical"},
			{Name: "Mentoring", Level: "Advanced", Category: "Soft"},
			{Name: "Postgres", Level: "Advanced", Category: "Technical"},
		},
		Projects: []Project{
			{Name: "ledgerd", Description: "Double-entry ledger", Technologies: "Go, Postgres", Link: "github.com/jane/ledgerd"},
		},
	}
}

func TestText(t *testing.T) {
	want := "Name: Jane Doe\n" +
		"Email: jane@example.com\n" +
		"Phone: 555-0100\n" +
		"Location: Austin, TX\n" +
		"LinkedIn: linkedin.com/in/janedoe\n\n" +
		"PROFESSIONAL SUMMARY:\nBackend engineer with eight years building payment systems in Go.\n\n" +
		"WORK EXPERIENCE:\n" +
		"Senior Engineer at Acme\n2020-01 - Present\nLed the ledger team.\n\n" +
		"Engineer at Initech\n2016-05 - 2019-12\nBuilt TPS reports.\n\n" +
		"EDUCATION:\n" +
		"BSc in Computer Science\nUT Austin\n2012 - 2016\nGPA: 3.8\n\n" +
		"SKILLS:\n" +
		"Technical: Go (Expert), Postgres (Advanced)\n" +
		"Soft: Mentoring (Advanced)\n\n" +
		"PROJECTS:\n" +
		"ledgerd\nDouble-entry ledger\nTechnologies: Go, Postgres\nLink: github.com/jane/ledgerd\n\n"

	assert.Equal(t, want, sampleResume().Text())
}

func TestTextOmitsEmptySections(t *testing.T) {
	d := Data{PersonalInfo: PersonalInfo{Name: "Solo"}}
	assert.Equal(t, "Name: Solo\nEmail: \nPhone: \nLocation: \nLinkedIn: \n\n", d.Text())

	d.Education = []Education{{Institution: "MIT", Degree: "PhD", Field: "Math"}}
	assert.NotContains(t, d.Text(), "GPA:")
}

func TestScore(t *testing.T) {
	long := strings.Repeat("x", 101)

	tests := []struct {
		name string
		data Data
		want int
	}{
		{"empty", Data{}, 0},
		{"contact only", Data{PersonalInfo: PersonalInfo{Name: "a", Email: "b", Phone: "c"}}, 30},
		{"short summary", Data{PersonalInfo: PersonalInfo{Summary: "short"}}, 10},
		{"long summary", Data{PersonalInfo: PersonalInfo{Summary: strings.Repeat("s", 51)}}, 20},
		{"summary of exactly 50", Data{PersonalInfo: PersonalInfo{Summary: strings.Repeat("s", 50)}}, 10},
		{"experience weighs 20", Data{Experience: []Experience{{Company: "a", Position: "b"}}}, 20},
		{"long description", Data{Experience: []Experience{{Description: "short"}, {Description: long}}}, 30},
		{"sample", sampleResume(), 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.data))
		})
	}
}

func TestScoreCountsCharactersNotBytes(t *testing.T) {
	// 51 runes, 102 bytes
	d := Data{PersonalInfo: PersonalInfo{Summary: strings.Repeat("é", 51)}}
	assert.Equal(t, 20, Score(d))

	d.PersonalInfo.Summary = strings.Repeat("é", 30)
	assert.Equal(t, 10, Score(d))
}

func TestScoreFull(t *testing.T) {
	d := sampleResume()
	d.Experience[0].Description = strings.Repeat("Shipped things. ", 10)
	assert.Equal(t, 100, Score(d))
}

func TestIssues(t *testing.T) {
	issues := Issues(Data{})
	require.Len(t, issues, 4)
	assert.Equal(t, Issue{Type: IssueError, Text: "Missing contact information"}, issues[0])
	assert.Equal(t, Issue{Type: IssueWarning, Text: "Add work experience"}, issues[1])
	assert.Equal(t, Issue{Type: IssueInfo, Text: "Add more relevant skills"}, issues[2])
	assert.Equal(t, Issue{Type: IssueWarning, Text: "Expand professional summary"}, issues[3])

	d := sampleResume()
	issues = Issues(d)
	require.Len(t, issues, 1)
	assert.Equal(t, "Add more relevant skills", issues[0].Text)

	d.PersonalInfo.Phone = ""
	assert.Equal(t, "Missing contact information", Issues(d)[0].Text)
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "Excellent", ScoreLabel(90))
	assert.Equal(t, "Good", ScoreLabel(89))
	assert.Equal(t, "Good", ScoreLabel(70))
	assert.Equal(t, "Needs Improvement", ScoreLabel(69))
}

func TestValidate(t *testing.T) {
	require.NoError(t, sampleResume().Validate())
	require.NoError(t, Data{}.Validate())

	d := sampleResume()
	d.Experience[1].Company = " "
	d.Skills = append(d.Skills, Skill{})
	err := d.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "experience[1].company: required")
	assert.Contains(t, err.Error(), "skills[3].name: required")
}

func TestFromJSON(t *testing.T) {
	d, err := FromJSON([]byte(`{"personalInfo":{"name":"Jane"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Jane", d.PersonalInfo.Name)
	assert.NotNil(t, d.Experience)
	assert.NotNil(t, d.Skills)

	_, err = FromJSON([]byte(`null`))
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = FromJSON([]byte(`{"experience":"nope"}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecode(t *testing.T) {
	d, err := Decode(strings.NewReader(`{"skills":[{"name":"Go","level":"Expert","category":"Technical"}]}`))
	require.NoError(t, err)
	require.Len(t, d.Skills, 1)
	assert.Empty(t, d.Projects)
}

func TestSkillGroupsKeepFirstSeenOrder(t *testing.T) {
	d := Data{Skills: []Skill{
		{Name: "Figma", Category: "Design"},
		{Name: "Go", Category: "Technical"},
		{Name: "Sketch", Category: "Design"},
	}}
	groups := d.SkillGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Design", groups[0].Category)
	assert.Len(t, groups[0].Skills, 2)
	assert.Equal(t, "Technical", groups[1].Category)
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "resume.pdf", Filename(Data{}, ".pdf"))
	assert.Equal(t, "Jane Doe.pdf", Filename(sampleResume(), ".pdf"))

	d := Data{PersonalInfo: PersonalInfo{Name: "../../etc/passwd"}}
	assert.NotContains(t, Filename(d, ".pdf"), "/")
}
