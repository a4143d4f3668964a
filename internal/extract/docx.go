package extract

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:cr\s*/>`)
	tabTag       = regexp.MustCompile(`<w:tab\s*/>`)
	anyTag       = regexp.MustCompile(`<[^>]*>`)
)

func docxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse docx: %w", err)
	}
	defer doc.Close()

	return documentXMLText(doc.Editable().GetContent()), nil
}

// documentXMLText flattens WordprocessingML into one line per paragraph.
func documentXMLText(content string) string {
	content = paragraphEnd.ReplaceAllString(content, "\n")
	content = tabTag.ReplaceAllString(content, "\t")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)

	lines := strings.Split(content, "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
