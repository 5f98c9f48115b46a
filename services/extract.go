package services

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractDocumentText pulls plain text out of an uploaded document so it
// can seed lesson generation. PDF and plain-text files are supported.
func ExtractDocumentText(fileHeader *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(fileHeader.Filename)
	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	switch {
	case strings.HasSuffix(ext, ".pdf"):
		return extractPDF(file)
	case strings.HasSuffix(ext, ".txt"):
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, file); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	default:
		return "", fmt.Errorf("unsupported file type, expected .pdf or .txt")
	}
}

func extractPDF(file multipart.File) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("cannot read PDF upload: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		return "", fmt.Errorf("cannot open PDF: %w", err)
	}

	var text strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text.WriteString(content)
	}
	return strings.TrimSpace(text.String()), nil
}
