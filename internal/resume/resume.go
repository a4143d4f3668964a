// Package resume holds the editor's resume data and the logic that runs on it
// without a model: text rendering, validation and the rule-based ATS pre-score.
package resume

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrInvalid = errors.New("invalid resume data")

type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin"`
	Summary  string `json:"summary"`
}

type Experience struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	GPA         string `json:"gpa,omitempty"`
}

type Skill struct {
	Name     string `json:"name"`
	Level    string `json:"level"`
	Category string `json:"category"`
}

type Project struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link,omitempty"`
}

// Data is the full editor state that gets analyzed, scored and exported.
type Data struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Skills       []Skill      `json:"skills"`
	Projects     []Project    `json:"projects"`
}

// Decode reads JSON resume data. Absent lists come back empty, not nil.
func Decode(r io.Reader) (Data, error) {
	var d Data
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	d.normalize()
	return d, nil
}

// FromJSON is Decode for an in-memory document.
func FromJSON(raw []byte) (Data, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return Data{}, fmt.Errorf("%w: resume data is required", ErrInvalid)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	d.normalize()
	return d, nil
}

func (d *Data) normalize() {
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
}

// Validate applies the same rules the editor enforces when an entry is added.
func (d Data) Validate() error {
	var problems []string
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, field+": required")
		}
	}

	for i, e := range d.Experience {
		required(fmt.Sprintf("experience[%d].company", i), e.Company)
		required(fmt.Sprintf("experience[%d].position", i), e.Position)
	}
	for i, e := range d.Education {
		required(fmt.Sprintf("education[%d].institution", i), e.Institution)
		required(fmt.Sprintf("education[%d].degree", i), e.Degree)
	}
	for i, s := range d.Skills {
		required(fmt.Sprintf("skills[%d].name", i), s.Name)
	}
	for i, p := range d.Projects {
		required(fmt.Sprintf("projects[%d].name", i), p.Name)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
}
