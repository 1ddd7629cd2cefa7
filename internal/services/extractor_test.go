package services

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one line of Helvetica text per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	n := len(pages)
	fontID := 3
	pageID := func(i int) int { return 4 + 2*i }
	contentID := func(i int) int { return 5 + 2*i }
	total := 3 + 2*n

	objects := make(map[int]string, total)
	objects[1] = "<< /Type /Catalog /Pages 2 0 R >>"

	kids := make([]string, n)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", pageID(i))
	}
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
	objects[fontID] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"

	for i, text := range pages {
		objects[pageID(i)] = fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			fontID, contentID(i),
		)
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects[contentID(i)] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, total+1)
	for id := 1; id <= total; id++ {
		offsets[id] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", id, objects[id])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for id := 1; id <= total; id++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[id])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)

	return buf.Bytes()
}

// buildDOCX writes a Word document with one paragraph per entry.
func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()

	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, p)
	}

	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"_rels/.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(f.content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	return buf.Bytes()
}

func TestExtract_PDFKeepsPageOrder(t *testing.T) {
	data := buildPDF(t, "Senior Go Engineer", "Kubernetes and PostgreSQL")

	text, err := NewDocumentExtractor().Extract(MediaTypePDF, bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Senior Go Engineer\nKubernetes and PostgreSQL", text)
}

func TestExtract_PDFMediaTypeWithParameters(t *testing.T) {
	data := buildPDF(t, "Resume")

	text, err := NewDocumentExtractor().Extract("Application/PDF; name=cv.pdf", bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Resume", text)
}

func TestExtract_DOCX(t *testing.T) {
	data := buildDOCX(t, "Jane Doe", "Backend developer &amp; mentor")

	text, err := NewDocumentExtractor().Extract(MediaTypeDOCX, bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe\nBackend developer & mentor", text)
}

func TestExtract_LegacyWordTypeUsesWordReader(t *testing.T) {
	data := buildDOCX(t, "Legacy upload")

	text, err := NewDocumentExtractor().Extract(MediaTypeMSWord, bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "Legacy upload", text)
}

func TestExtract_UnsupportedTypeNeverReads(t *testing.T) {
	for _, mediaType := range []string{"image/png", "text/plain", ""} {
		t.Run(mediaType, func(t *testing.T) {
			reader := &trackingReader{}

			text, err := NewDocumentExtractor().Extract(mediaType, reader)

			var unsupported *UnsupportedTypeError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, mediaType, unsupported.MediaType)
			assert.Empty(t, text)
			assert.False(t, reader.wasRead())
		})
	}
}

func TestExtract_CorruptFilesAreReadErrors(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		data      []byte
	}{
		{"pdf", MediaTypePDF, []byte("this is not a pdf")},
		{"truncated pdf", MediaTypePDF, buildPDF(t, "cut")[:60]},
		{"docx", MediaTypeDOCX, []byte("PK not really a zip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := NewDocumentExtractor().Extract(tt.mediaType, bytes.NewReader(tt.data))

			var readErr *ReadError
			require.ErrorAs(t, err, &readErr)
			assert.Equal(t, tt.mediaType, readErr.MediaType)
			assert.Empty(t, text)
		})
	}
}

func TestExtract_EmptyDocument(t *testing.T) {
	data := buildDOCX(t)

	_, err := NewDocumentExtractor().Extract(MediaTypeDOCX, bytes.NewReader(data))

	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, ErrNoTextContent)
}

func TestMediaTypeFromFilename(t *testing.T) {
	assert.Equal(t, MediaTypePDF, MediaTypeFromFilename("cv.PDF"))
	assert.Equal(t, MediaTypeDOCX, MediaTypeFromFilename("cv.docx"))
	assert.Equal(t, MediaTypeMSWord, MediaTypeFromFilename("cv.doc"))
	assert.Equal(t, "application/octet-stream", MediaTypeFromFilename("cv"))
	assert.False(t, IsSupportedMediaType(MediaTypeFromFilename("photo.png")))
}

func TestWordMLText_TabsAndBreaks(t *testing.T) {
	content := `<w:document xmlns:w="w"><w:body><w:p><w:r><w:t>Go</w:t><w:tab/><w:t>5 years</w:t><w:br/><w:t>Remote</w:t></w:r></w:p><w:p><w:r><w:t>Next</w:t></w:r></w:p></w:body></w:document>`

	text, err := wordMLText(content)
	require.NoError(t, err)
	assert.Equal(t, "Go\t5 years\nRemote\nNext", text)
}
