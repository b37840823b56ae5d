// Package extractor turns uploaded documents into cleaned raw text.
//
// Each FileKind maps to exactly one backend through a fixed table. Every
// backend's output goes through the header-spacing pass and the text cleaner.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/parsing/sections"
	"github.com/kirillkom/resume-parser/internal/core/parsing/textclean"
)

type backendFunc func(ctx context.Context, path string) (string, error)

type Extractor struct {
	backends   map[domain.FileKind]backendFunc
	classifier *sections.Classifier
	logger     *slog.Logger
}

type Options struct {
	OCR        Runner
	OCRBinary  string
	OCRLang    string
	Classifier *sections.Classifier
	Logger     *slog.Logger
}

func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = sections.Default()
	}
	ocr := NewOCR(opts.OCR, opts.OCRBinary, opts.OCRLang)

	return &Extractor{
		backends: map[domain.FileKind]backendFunc{
			domain.FileKindPDF: func(ctx context.Context, path string) (string, error) {
				return extractPDF(ctx, path, logger)
			},
			domain.FileKindDOCX:  extractDOCX,
			domain.FileKindImage: ocr.Extract,
		},
		classifier: classifier,
		logger:     logger,
	}
}

// Extract fails with ErrUnsupportedFormat for unknown types, ErrFileNotFound
// when the file is missing and ErrExtractionFailed when a backend fails.
func (e *Extractor) Extract(ctx context.Context, path, declaredType string) (string, error) {
	kind, err := domain.FileKindFromType(declaredType)
	if err != nil {
		return "", err
	}
	backend, ok := e.backends[kind]
	if !ok {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text", fmt.Errorf("no backend for %s", kind))
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", domain.WrapError(domain.ErrFileNotFound, "extract text", err)
		}
		return "", domain.WrapError(domain.ErrExtractionFailed, "extract text", err)
	}

	raw, err := backend(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", domain.WrapError(domain.ErrExtractionFailed, fmt.Sprintf("extract %s text", kind), err)
	}

	return textclean.Clean(sections.IsolateHeaders(raw, e.classifier)), nil
}
