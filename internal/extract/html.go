package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const boilerplate = "script, style, nav, footer, header, iframe, noscript"

// htmlText keeps the job posting body of a saved web page. Known posting
// containers win over the whole body.
func htmlText(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}
	doc.Find(boilerplate).Remove()

	section := doc.Find("div.job-description, section.job-details, #job-content")
	if section.Length() == 0 {
		section = doc.Find("body")
	}

	var lines []string
	section.Find("br").ReplaceWithHtml("\n")
	section.Find("p, li, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	for _, l := range strings.Split(section.Text(), "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n"), nil
}
