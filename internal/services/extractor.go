package services

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MediaTypePDF    = "application/pdf"
	MediaTypeDOCX   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeMSWord = "application/msword"
)

// DocumentExtractor turns an uploaded CV into plain text.
type DocumentExtractor interface {
	Extract(mediaType string, r io.Reader) (string, error)
}

type documentExtractor struct{}

func NewDocumentExtractor() DocumentExtractor {
	return &documentExtractor{}
}

// NormalizeMediaType lowercases the media type and drops any parameters.
func NormalizeMediaType(mediaType string) string {
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		return parsed
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// MediaTypeFromFilename guesses the media type of a CV file from its extension.
func MediaTypeFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MediaTypePDF
	case ".docx":
		return MediaTypeDOCX
	case ".doc":
		return MediaTypeMSWord
	}
	if guessed := mime.TypeByExtension(filepath.Ext(name)); guessed != "" {
		return guessed
	}
	return "application/octet-stream"
}

func IsSupportedMediaType(mediaType string) bool {
	switch NormalizeMediaType(mediaType) {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeMSWord:
		return true
	}
	return false
}

func (e *documentExtractor) Extract(mediaType string, r io.Reader) (string, error) {
	normalized := NormalizeMediaType(mediaType)
	if !IsSupportedMediaType(normalized) {
		return "", &UnsupportedTypeError{MediaType: mediaType}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", &ReadError{MediaType: normalized, Err: fmt.Errorf("failed to read upload: %w", err)}
	}

	var text string
	if normalized == MediaTypePDF {
		text, err = extractPDFText(data)
	} else {
		text, err = extractWordText(data)
	}
	if err != nil {
		return "", &ReadError{MediaType: normalized, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ReadError{MediaType: normalized, Err: ErrNoTextContent}
	}

	return text, nil
}

func extractPDFText(data []byte) (text string, err error) {
	// The pdf package panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to decode PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	totalPage := reader.NumPage()
	pages := make([]string, 0, totalPage)

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
		}

		pages = append(pages, strings.Join(strings.Fields(pageText), " "))
	}

	return strings.Join(pages, "\n"), nil
}

func extractWordText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open Word document: %w", err)
	}
	defer doc.Close()

	return wordMLText(doc.Editable().GetContent())
}

// wordMLText keeps the character data of w:t runs from a document.xml body.
func wordMLText(content string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(content))

	var builder strings.Builder
	inText := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to decode document body: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				builder.WriteString("\t")
			case "br", "cr":
				builder.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				builder.Write(t)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
