package docxtpl

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MainPart is the archive path of the document body.
const MainPart = "word/document.xml"

// ErrTemplateMalformed reports a template that cannot be rendered at all:
// the main part is missing, empty or not text.
var ErrTemplateMalformed = errors.New("docxtpl: template malformed")

var templatedPart = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// IsTemplatedPart reports whether an archive entry carries placeholders that
// RenderPackage processes.
func IsTemplatedPart(name string) bool {
	return templatedPart.MatchString(name)
}

// RenderPart normalizes and renders a single document part.
func RenderPart(part string, ctx Context, options ...Option) (string, error) {
	if strings.TrimSpace(part) == "" {
		return "", fmt.Errorf("%w: document part is empty", ErrTemplateMalformed)
	}
	if !utf8.ValidString(part) {
		return "", fmt.Errorf("%w: document part is not valid UTF-8", ErrTemplateMalformed)
	}
	return Render(Normalize(part), ctx, options...)
}

// RenderPackage renders every templated part of a .docx archive and copies
// all other entries unchanged, preserving entry order and timestamps so the
// output is byte-for-byte reproducible.
func RenderPackage(docx []byte, ctx Context, options ...Option) ([]byte, error) {
	return rewritePackage(docx, func(part string) (string, error) {
		return RenderPart(part, ctx, options...)
	})
}

// NormalizePackage repairs the placeholder syntax of every templated part and
// leaves the placeholders in place.
func NormalizePackage(docx []byte) ([]byte, error) {
	return rewritePackage(docx, func(part string) (string, error) {
		return Normalize(part), nil
	})
}

// PartReport describes the placeholders of one templated part after
// normalization.
type PartReport struct {
	Name string
	Keys []string
	// Err holds the *SyntaxError of the part, if any.
	Err error
}

// InspectPackage reports the placeholders and structural issues of every
// templated part, in archive order.
func InspectPackage(docx []byte) ([]PartReport, error) {
	reader, err := openPackage(docx)
	if err != nil {
		return nil, err
	}
	var reports []PartReport
	for _, file := range reader.File {
		if !IsTemplatedPart(file.Name) {
			continue
		}
		content, err := readEntry(file)
		if err != nil {
			return nil, fmt.Errorf("docxtpl: read %s: %w", file.Name, err)
		}
		normalized := Normalize(string(content))
		reports = append(reports, PartReport{
			Name: file.Name,
			Keys: Keys(normalized),
			Err:  Validate(normalized),
		})
	}
	return reports, nil
}

func openPackage(docx []byte) (*zip.Reader, error) {
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, fmt.Errorf("%w: open archive: %v", ErrTemplateMalformed, err)
	}
	if !hasEntry(reader, MainPart) {
		return nil, fmt.Errorf("%w: %s not found", ErrTemplateMalformed, MainPart)
	}
	return reader, nil
}

func rewritePackage(docx []byte, rewrite func(part string) (string, error)) ([]byte, error) {
	reader, err := openPackage(docx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for _, file := range reader.File {
		content, err := readEntry(file)
		if err != nil {
			return nil, fmt.Errorf("docxtpl: read %s: %w", file.Name, err)
		}

		if IsTemplatedPart(file.Name) {
			rendered, err := rewrite(string(content))
			if err != nil {
				return nil, fmt.Errorf("docxtpl: render %s: %w", file.Name, err)
			}
			content = []byte(rendered)
		}

		header := &zip.FileHeader{
			Name:     file.Name,
			Method:   file.Method,
			Modified: file.Modified,
		}
		w, err := writer.CreateHeader(header)
		if err != nil {
			return nil, fmt.Errorf("docxtpl: write %s: %w", file.Name, err)
		}
		if _, err := w.Write(content); err != nil {
			return nil, fmt.Errorf("docxtpl: write %s: %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("docxtpl: close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadPart returns the content of one archive entry.
func ReadPart(docx []byte, name string) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return "", fmt.Errorf("%w: open archive: %v", ErrTemplateMalformed, err)
	}
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		content, err := readEntry(file)
		if err != nil {
			return "", fmt.Errorf("docxtpl: read %s: %w", name, err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("%w: %s not found", ErrTemplateMalformed, name)
}

func hasEntry(reader *zip.Reader, name string) bool {
	for _, file := range reader.File {
		if file.Name == name {
			return true
		}
	}
	return false
}

func readEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
