package resume

import (
	"strings"
	"unicode"
)

// Text renders the resume as the plain-text document handed to the analyzer.
func (d Data) Text() string {
	var b strings.Builder
	p := d.PersonalInfo

	b.WriteString("Name: " + p.Name + "\n")
	b.WriteString("Email: " + p.Email + "\n")
	b.WriteString("Phone: " + p.Phone + "\n")
	b.WriteString("Location: " + p.Location + "\n")
	b.WriteString("LinkedIn: " + p.LinkedIn + "\n\n")

	if p.Summary != "" {
		b.WriteString("PROFESSIONAL SUMMARY:\n" + p.Summary + "\n\n")
	}

	if len(d.Experience) > 0 {
		b.WriteString("WORK EXPERIENCE:\n")
		for _, e := range d.Experience {
			b.WriteString(e.Position + " at " + e.Company + "\n")
			b.WriteString(e.StartDate + " - " + e.Period() + "\n")
			b.WriteString(e.Description + "\n\n")
		}
	}

	if len(d.Education) > 0 {
		b.WriteString("EDUCATION:\n")
		for _, e := range d.Education {
			b.WriteString(e.Degree + " in " + e.Field + "\n")
			b.WriteString(e.Institution + "\n")
			b.WriteString(e.StartDate + " - " + e.EndDate + "\n")
			if e.GPA != "" {
				b.WriteString("GPA: " + e.GPA + "\n")
			}
			b.WriteString("\n")
		}
	}

	if len(d.Skills) > 0 {
		b.WriteString("SKILLS:\n")
		for _, g := range d.SkillGroups() {
			entries := make([]string, 0, len(g.Skills))
			for _, s := range g.Skills {
				entries = append(entries, s.Name+" ("+s.Level+")")
			}
			b.WriteString(g.Category + ": " + strings.Join(entries, ", ") + "\n")
		}
		b.WriteString("\n")
	}

	if len(d.Projects) > 0 {
		b.WriteString("PROJECTS:\n")
		for _, pr := range d.Projects {
			b.WriteString(pr.Name + "\n")
			b.WriteString(pr.Description + "\n")
			b.WriteString("Technologies: " + pr.Technologies + "\n")
			if pr.Link != "" {
				b.WriteString("Link: " + pr.Link + "\n")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

// Period is the end of an experience entry as shown to readers.
func (e Experience) Period() string {
	if e.Current {
		return "Present"
	}
	return e.EndDate
}

type SkillGroup struct {
	Category string
	Skills   []Skill
}

// SkillGroups groups skills by category, keeping categories in the order they
// first appear.
func (d Data) SkillGroups() []SkillGroup {
	var groups []SkillGroup
	index := make(map[string]int)
	for _, s := range d.Skills {
		i, ok := index[s.Category]
		if !ok {
			i = len(groups)
			index[s.Category] = i
			groups = append(groups, SkillGroup{Category: s.Category})
		}
		groups[i].Skills = append(groups[i].Skills, s)
	}
	return groups
}

// Filename is the download name for an exported resume.
func Filename(d Data, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '-'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(d.PersonalInfo.Name))
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "resume"
	}
	return name + ext
}
