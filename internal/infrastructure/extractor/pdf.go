package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// lineThreshold is the vertical distance, in PDF units, that starts a new line.
	lineThreshold = 5.0
	// wordGapRatio of the font size separates two runs on one line with a space.
	wordGapRatio = 0.25
	// lowTextThreshold marks extractions too short to be trusted. OCR is not
	// attempted for PDFs.
	lowTextThreshold = 50
)

func extractPDF(ctx context.Context, path string, logger *slog.Logger) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pages = append(pages, joinRuns(page.Content().Text))
	}

	text = strings.Join(pages, "\n\n")
	if n := len(strings.TrimSpace(text)); n < lowTextThreshold {
		logger.Warn("pdf_low_text", "path", path, "chars", n, "pages", reader.NumPage())
	}
	return text, nil
}

// joinRuns rebuilds lines from positioned text runs in delivery order.
func joinRuns(runs []pdf.Text) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range runs {
		run := &runs[i]
		if prev != nil {
			switch {
			case math.Abs(run.Y-prev.Y) > lineThreshold:
				b.WriteByte('\n')
			case run.X-(prev.X+prev.W) > run.FontSize*wordGapRatio && !endsWithSpace(prev.S) && !strings.HasPrefix(run.S, " "):
				b.WriteByte(' ')
			}
		}
		b.WriteString(run.S)
		prev = run
	}
	return b.String()
}

func endsWithSpace(s string) bool {
	return strings.HasSuffix(s, " ")
}
