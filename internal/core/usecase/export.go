package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/parsing/normalize"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

const exportSheet = "Resumes"

var exportHeaders = []string{
	"Resume ID",
	"File Name",
	"Created At",
	"Confidence",
	"Name",
	"Email",
	"Phone",
	"Skills",
	"Experiences",
	"Experience (months)",
}

var exportColumnWidths = []struct {
	from, to string
	width    float64
}{
	{"A", "A", 38},
	{"B", "C", 24},
	{"E", "G", 22},
	{"H", "H", 60},
}

type ExportUseCase struct {
	results ports.ResultStore
	logger  *slog.Logger
	now     func() time.Time
}

func NewExportUseCase(results ports.ResultStore, logger *slog.Logger) *ExportUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportUseCase{
		results: results,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ExportXLSX renders the uploader's newest results as a single-sheet workbook,
// one row per stored result.
func (uc *ExportUseCase) ExportXLSX(ctx context.Context, uploaderID string, limit int) ([]byte, error) {
	start := uc.now()
	stored, err := listStored(ctx, uc.results, uploaderID, limit)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("xlsx header row: %w", err)
	}

	for i, r := range stored {
		row := []any{
			r.ID,
			r.Metadata.FileName,
			r.CreatedAt.Format(time.RFC3339),
			r.Confidence,
			deref(r.Parsed.Contact.Name),
			deref(r.Parsed.Contact.Email),
			deref(r.Parsed.Contact.Phone),
			strings.Join(r.Parsed.Skills, ", "),
			len(r.Parsed.Experiences),
			experienceMonths(r.Parsed.Experiences, start),
		}
		if err := f.SetSheetRow(exportSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, fmt.Errorf("xlsx row for resume %s: %w", r.ID, err)
		}
	}

	for _, w := range exportColumnWidths {
		if err := f.SetColWidth(exportSheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("xlsx column width %s:%s: %w", w.from, w.to, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	uc.logger.Info("export_xlsx_ok",
		"uploader_id", uploaderID,
		"rows", len(stored),
		"duration_ms", uc.now().Sub(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// experienceMonths sums the durations of entries with a usable date range.
func experienceMonths(experiences []domain.Experience, now time.Time) int {
	total := 0
	for _, exp := range experiences {
		if exp.StartDate == nil || exp.EndDate == nil {
			continue
		}
		if months, ok := normalize.DurationMonths(*exp.StartDate, *exp.EndDate, now); ok {
			total += months
		}
	}
	return total
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
