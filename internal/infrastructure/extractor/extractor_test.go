package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

type runnerFake struct {
	out   string
	err   error
	name  string
	args  []string
	calls int
}

func (r *runnerFake) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	r.calls++
	r.name = name
	r.args = args
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.out), nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeDOCX(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

// writePDF builds a one-page PDF whose content stream shows text in Helvetica.
func writePDF(t *testing.T, text string) string {
	t.Helper()
	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return writeFile(t, "resume.pdf", buf.String())
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := New(Options{OCR: &runnerFake{}})
	_, err := e.Extract(context.Background(), writeFile(t, "a.doc", "x"), "doc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedFormat))
}

func TestExtractMissingFile(t *testing.T) {
	e := New(Options{OCR: &runnerFake{}})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), "pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFileNotFound))
}

func TestExtractCorruptPDFFails(t *testing.T) {
	e := New(Options{OCR: &runnerFake{}})
	_, err := e.Extract(context.Background(), writeFile(t, "bad.pdf", "definitely not a pdf"), ".PDF")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestExtractDOCXRawTextWithHeaderSpacing(t *testing.T) {
	path := writeDOCX(t,
		`<w:p><w:r><w:t>John  Smith</w:t></w:r></w:p>`+
			`<w:p><w:r><w:t>Skills</w:t></w:r><w:r><w:br/><w:t xml:space="preserve">Go, </w:t><w:t>SQL</w:t></w:r></w:p>`)

	e := New(Options{OCR: &runnerFake{}})
	got, err := e.Extract(context.Background(), path, "docx")
	require.NoError(t, err)
	assert.Equal(t, "John Smith\n\nSkills\n\nGo, SQL", got)
}

func TestExtractImageUsesOCR(t *testing.T) {
	runner := &runnerFake{out: "Jane Doe\nEXPERIENCE\nEngineer 1|A"}
	e := New(Options{OCR: runner, OCRLang: "deu"})

	path := writeFile(t, "scan.png", "png-bytes")
	got, err := e.Extract(context.Background(), path, "png")
	require.NoError(t, err)

	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{path, "stdout", "-l", "deu"}, runner.args)
	assert.Equal(t, "Jane Doe\n\nEXPERIENCE\n\nEngineer 1lA", got)
}

func TestExtractOCRFailureIsExtractionFailed(t *testing.T) {
	e := New(Options{OCR: &runnerFake{err: errors.New("exit status 1")}})
	_, err := e.Extract(context.Background(), writeFile(t, "scan.jpg", "x"), "jpg")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestJoinRunsRebuildsLines(t *testing.T) {
	runs := []pdf.Text{
		{S: "John", X: 10, Y: 700, W: 20, FontSize: 10},
		{S: "Smith", X: 35, Y: 700, W: 25, FontSize: 10},
		{S: "EXPER", X: 10, Y: 680, W: 30, FontSize: 10},
		{S: "IENCE", X: 40, Y: 681, W: 30, FontSize: 10},
	}
	assert.Equal(t, "John Smith\nEXPERIENCE", joinRuns(runs))
}

func TestExtractLowTextPDFIsFlaggedWithoutOCR(t *testing.T) {
	var logs bytes.Buffer
	runner := &runnerFake{out: "should never be used"}
	e := New(Options{OCR: runner, Logger: slog.New(slog.NewJSONHandler(&logs, nil))})

	got, err := e.Extract(context.Background(), writePDF(t, "Hi"), "pdf")
	require.NoError(t, err)

	assert.Less(t, len(got), lowTextThreshold)
	assert.NotContains(t, got, "should never be used")
	assert.Zero(t, runner.calls, "PDF extraction must not fall back to OCR")
	assert.Contains(t, logs.String(), `"msg":"pdf_low_text"`)
}

func TestExtractPDFWithEnoughTextIsNotFlagged(t *testing.T) {
	var logs bytes.Buffer
	runner := &runnerFake{}
	e := New(Options{OCR: runner, Logger: slog.New(slog.NewJSONHandler(&logs, nil))})

	text := "Jane Doe Senior Software Engineer jane.doe@example.com Berlin"
	got, err := e.Extract(context.Background(), writePDF(t, text), "pdf")
	require.NoError(t, err)

	assert.Contains(t, got, "Jane")
	assert.Zero(t, runner.calls)
	assert.NotContains(t, logs.String(), "pdf_low_text")
}
