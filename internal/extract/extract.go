// Package extract pulls plain text out of uploaded resumes and job
// descriptions.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEHTML = "text/html"
)

var ErrUnsupported = errors.New("unsupported file type")

// Text extracts the readable text of a document of the given MIME type.
func Text(mime string, data []byte) (string, error) {
	switch baseMIME(mime) {
	case MIMEText:
		return string(data), nil
	case MIMEPDF:
		return pdfText(data)
	case MIMEDOCX:
		return docxText(data)
	case MIMEHTML:
		return htmlText(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}
}

// DetectMIME picks a document type from the file extension, falling back to
// the declared Content-Type.
func DetectMIME(filename, declared string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return MIMEPDF
	case ".docx":
		return MIMEDOCX
	case ".txt":
		return MIMEText
	case ".html", ".htm":
		return MIMEHTML
	}
	return baseMIME(declared)
}

// Allowed reports whether mime is one of accepted.
func Allowed(mime string, accepted ...string) bool {
	mime = baseMIME(mime)
	for _, a := range accepted {
		if mime == a {
			return true
		}
	}
	return false
}

func baseMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to read pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to read pdf page %d: %w", i, err)
		}
		b.WriteString(text)
	}
	return strings.TrimSpace(b.String()), nil
}
