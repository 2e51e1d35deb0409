package resume

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"script-designer/api/internal/util"
)

var (
	ErrUnsupportedType = errors.New("resume: unsupported file type; use .pdf, .txt or .md")
	ErrNoText          = errors.New("resume: no text could be extracted")
)

// Parse returns the plain text of an uploaded resume. The type is taken from
// the file extension; files without one are sniffed.
func Parse(content []byte, filename string) (string, error) {
	switch kind(content, filename) {
	case "pdf":
		return parsePDF(content)
	case "text":
		return parseText(content)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filename)
	}
}

func kind(content []byte, filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".txt", ".md", ".markdown":
		return "text"
	case "":
		switch util.SniffDocument(content) {
		case "application/pdf":
			return "pdf"
		case "text/plain":
			return "text"
		}
	}
	return ""
}

func parseText(content []byte) (string, error) {
	s := strings.TrimSpace(strings.ToValidUTF8(string(content), "�"))
	if s == "" {
		return "", ErrNoText
	}
	return s, nil
}

// parsePDF joins the text of every readable page with blank lines. The pdf
// reader panics on some malformed files; that is reported as an error.
func parsePDF(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("resume: malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("resume: open pdf: %w", err)
	}
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			pages = append(pages, s)
		}
	}
	if len(pages) == 0 {
		return "", ErrNoText
	}
	return strings.Join(pages, "\n\n"), nil
}
