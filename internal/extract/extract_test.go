package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildPDF(t *testing.T, lines ...string) []byte {
	t.Helper()
	doc := fpdf.New("P", "mm", "A4", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)
	for _, l := range lines {
		doc.CellFormat(0, 8, l, "", 1, "L", false, 0, "")
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestTextPlain(t *testing.T) {
	got, err := Text("text/plain; charset=utf-8", []byte("Senior Go engineer"))
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer", got)
}

func TestTextDocx(t *testing.T) {
	data := buildDocx(t,
		`<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t xml:space="preserve">Go </w:t></w:r><w:r><w:t>&amp; Postgres</w:t></w:r></w:p>`+
			`<w:p></w:p>`+
			`<w:p><w:r><w:t>Lagos</w:t><w:br/><w:t>Remote</w:t></w:r></w:p>`)

	got, err := Text(MIMEDOCX, data)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo & Postgres\nLagos\nRemote", got)
}

func TestTextDocxRejectsOtherZips(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Text(MIMEDOCX, buf.Bytes())
	assert.ErrorContains(t, err, "failed to parse docx")
}

func TestTextPDF(t *testing.T) {
	got, err := Text(MIMEPDF, buildPDF(t, "Jane Doe", "Backend Engineer"))
	require.NoError(t, err)
	assert.Contains(t, got, "Jane Doe")
	assert.Contains(t, got, "Backend Engineer")
}

func TestTextPDFGarbage(t *testing.T) {
	_, err := Text(MIMEPDF, []byte("not a pdf"))
	assert.Error(t, err)
}

func TestTextHTML(t *testing.T) {
	page := `<html><head><style>p{}</style><script>track()</script></head><body>
<header>Acme careers</header>
<nav>Home | Jobs</nav>
<div class="job-description">
  <h2>Platform Engineer</h2>
  <p>Build   services in Go.</p>
  <ul><li>Kubernetes</li><li>Postgres</li></ul>
  <p>Remote<br>Full time</p>
</div>
<footer>© Acme</footer>
</body></html>`

	got, err := Text(MIMEHTML, []byte(page))
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer\nBuild services in Go.\nKubernetes\nPostgres\nRemote\nFull time", got)
}

func TestTextHTMLWithoutPostingContainer(t *testing.T) {
	got, err := Text(MIMEHTML, []byte(`<body><nav>menu</nav><p>We are hiring</p></body>`))
	require.NoError(t, err)
	assert.Equal(t, "We are hiring", got)
}

func TestTextUnsupported(t *testing.T) {
	_, err := Text("image/png", []byte{0x89})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestDetectMIME(t *testing.T) {
	tests := []struct {
		filename, declared, want string
	}{
		{"cv.PDF", "application/octet-stream", MIMEPDF},
		{"cv.docx", "", MIMEDOCX},
		{"jd.txt", "", MIMEText},
		{"jd.htm", "", MIMEHTML},
		{"jd", "Text/Plain; charset=utf-8", MIMEText},
		{"photo.png", "image/png", "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMIME(tt.filename, tt.declared))
		})
	}
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed("application/pdf", MIMEPDF, MIMEDOCX))
	assert.False(t, Allowed(MIMEText, MIMEPDF, MIMEDOCX))
}

func TestDocumentXMLText(t *testing.T) {
	assert.Equal(t, "a\tb", documentXMLText(`<w:p><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t></w:r></w:p>`))
	assert.Equal(t, "", documentXMLText(`<w:body></w:body>`))
}
