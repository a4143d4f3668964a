// Package export renders resume data to a printable PDF.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/muhammadolammi/resumeforge/internal/resume"
	"github.com/muhammadolammi/resumeforge/internal/templates"
)

const (
	ContentType = "application/pdf"

	margin     = 0.5
	lineHeight = 0.2
	otherSkill = "Other"
)

type renderer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	font   string
	accent [3]int
	width  float64
}

// RenderPDF writes d as a single-column US Letter document styled with the
// template's font and accent colour.
func RenderPDF(w io.Writer, d resume.Data, tpl templates.Template) error {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreator("resumeforge", true)
	pdf.SetTitle(d.PersonalInfo.Name, true)
	pdf.SetAuthor(d.PersonalInfo.Name, true)

	r := &renderer{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		font: fontFamily(tpl.Font),
	}
	if red, green, blue, err := templates.ParseHex(tpl.Accent); err == nil {
		r.accent = [3]int{red, green, blue}
	}
	pageW, _ := pdf.GetPageSize()
	r.width = pageW - 2*margin

	pdf.AddPage()
	r.header(d.PersonalInfo)
	r.summary(d.PersonalInfo.Summary)
	r.experience(d.Experience)
	r.education(d.Education)
	r.skills(d)
	r.projects(d.Projects)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

func fontFamily(name string) string {
	switch strings.ToLower(name) {
	case "times":
		return "Times"
	case "courier":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func (r *renderer) header(p resume.PersonalInfo) {
	name := p.Name
	if name == "" {
		name = "Your Name"
	}
	r.pdf.SetFont(r.font, "B", 20)
	r.pdf.SetTextColor(r.accent[0], r.accent[1], r.accent[2])
	r.pdf.CellFormat(r.width, 0.35, r.tr(name), "", 1, "C", false, 0, "")

	var contact []string
	for _, v := range []string{p.Email, p.Phone, p.Location, p.LinkedIn} {
		if v != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		r.pdf.SetFont(r.font, "", 9)
		r.pdf.SetTextColor(80, 80, 80)
		r.pdf.CellFormat(r.width, lineHeight, r.tr(strings.Join(contact, "  |  ")), "", 1, "C", false, 0, "")
	}
	r.pdf.Ln(0.1)
}

func (r *renderer) section(title string) {
	r.pdf.Ln(0.08)
	r.pdf.SetFont(r.font, "B", 12)
	r.pdf.SetTextColor(r.accent[0], r.accent[1], r.accent[2])
	r.pdf.CellFormat(r.width, 0.24, r.tr(strings.ToUpper(title)), "", 1, "L", false, 0, "")

	y := r.pdf.GetY()
	r.pdf.SetDrawColor(r.accent[0], r.accent[1], r.accent[2])
	r.pdf.SetLineWidth(0.01)
	r.pdf.Line(margin, y, margin+r.width, y)
	r.pdf.Ln(0.06)
}

func (r *renderer) body(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	r.pdf.SetFont(r.font, "", 10)
	r.pdf.SetTextColor(30, 30, 30)
	r.pdf.MultiCell(r.width, lineHeight, r.tr(text), "", "L", false)
}

// titleLine prints left in bold with right-aligned in the remaining width.
func (r *renderer) titleLine(left, right string) {
	r.pdf.SetFont(r.font, "B", 11)
	r.pdf.SetTextColor(20, 20, 20)
	rightW := 0.0
	if right != "" {
		r.pdf.SetFont(r.font, "", 10)
		rightW = r.pdf.GetStringWidth(r.tr(right)) + 0.05
		r.pdf.SetFont(r.font, "B", 11)
	}
	r.pdf.CellFormat(r.width-rightW, lineHeight+0.02, r.tr(left), "", 0, "L", false, 0, "")
	r.pdf.SetFont(r.font, "", 10)
	r.pdf.CellFormat(rightW, lineHeight+0.02, r.tr(right), "", 1, "R", false, 0, "")
}

func (r *renderer) subtitle(text string) {
	if text == "" {
		return
	}
	r.pdf.SetFont(r.font, "I", 10)
	r.pdf.SetTextColor(70, 70, 70)
	r.pdf.CellFormat(r.width, lineHeight, r.tr(text), "", 1, "L", false, 0, "")
}

func (r *renderer) summary(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	r.section("Professional Summary")
	r.body(s)
}

func (r *renderer) experience(items []resume.Experience) {
	if len(items) == 0 {
		return
	}
	r.section("Experience")
	for _, e := range items {
		r.titleLine(e.Position, period(e.StartDate, e.Period()))
		r.subtitle(e.Company)
		r.body(e.Description)
		r.pdf.Ln(0.08)
	}
}

func (r *renderer) education(items []resume.Education) {
	if len(items) == 0 {
		return
	}
	r.section("Education")
	for _, e := range items {
		degree := e.Degree
		if e.Field != "" {
			degree += " in " + e.Field
		}
		r.titleLine(degree, period(e.StartDate, e.EndDate))
		sub := e.Institution
		if e.GPA != "" {
			sub += "  |  GPA: " + e.GPA
		}
		r.subtitle(sub)
		r.pdf.Ln(0.08)
	}
}

func (r *renderer) skills(d resume.Data) {
	groups := d.SkillGroups()
	if len(groups) == 0 {
		return
	}
	r.section("Skills")
	for _, g := range groups {
		category := g.Category
		if category == "" {
			category = otherSkill
		}
		names := make([]string, 0, len(g.Skills))
		for _, s := range g.Skills {
			if s.Level != "" {
				names = append(names, fmt.Sprintf("%s (%s)", s.Name, s.Level))
			} else {
				names = append(names, s.Name)
			}
		}
		r.pdf.SetFont(r.font, "B", 10)
		r.pdf.SetTextColor(20, 20, 20)
		label := r.tr(category + ": ")
		r.pdf.CellFormat(r.pdf.GetStringWidth(label)+0.02, lineHeight, label, "", 0, "L", false, 0, "")
		r.pdf.SetFont(r.font, "", 10)
		r.pdf.MultiCell(0, lineHeight, r.tr(strings.Join(names, ", ")), "", "L", false)
	}
}

func (r *renderer) projects(items []resume.Project) {
	if len(items) == 0 {
		return
	}
	r.section("Projects")
	for _, p := range items {
		r.titleLine(p.Name, p.Link)
		if p.Technologies != "" {
			r.subtitle("Technologies: " + p.Technologies)
		}
		r.body(p.Description)
		r.pdf.Ln(0.08)
	}
}

func period(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case start == "":
		return end
	case end == "":
		return start
	}
	return start + " - " + end
}
