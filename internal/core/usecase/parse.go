package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/parsing/entities"
	"github.com/kirillkom/resume-parser/internal/core/parsing/normalize"
	"github.com/kirillkom/resume-parser/internal/core/parsing/scoring"
	"github.com/kirillkom/resume-parser/internal/core/parsing/sections"
	"github.com/kirillkom/resume-parser/internal/core/parsing/structure"
	"github.com/kirillkom/resume-parser/internal/core/parsing/textclean"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

// Stage names a step of the parsing pipeline.
type Stage string

const (
	StageExtracting         Stage = "extracting"
	StageSegmenting         Stage = "segmenting"
	StageExtractingEntities Stage = "extracting-entities"
	StageStructuring        Stage = "structuring"
	StageNormalizing        Stage = "normalizing"
	StageScoring            Stage = "scoring"
	StagePersisting         Stage = "persisting"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// ParseOptions carries the optional collaborators of the pipeline.
type ParseOptions struct {
	Classifier *sections.Classifier
	Recognizer ports.EntityRecognizer
	Validator  ports.ResultValidator
	Logger     *slog.Logger
}

type ParseResumeUseCase struct {
	extractor  ports.TextExtractor
	results    ports.ResultStore
	classifier *sections.Classifier
	recognizer ports.EntityRecognizer
	validator  ports.ResultValidator
	logger     *slog.Logger
	now        func() time.Time
}

func NewParseResumeUseCase(extractor ports.TextExtractor, results ports.ResultStore, opts ParseOptions) *ParseResumeUseCase {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = sections.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseResumeUseCase{
		extractor:  extractor,
		results:    results,
		classifier: classifier,
		recognizer: opts.Recognizer,
		validator:  opts.Validator,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// pipelineRun holds the intermediate state of one Parse call.
type pipelineRun struct {
	doc      domain.UploadedDocument
	started  time.Time
	progress ports.ProgressFunc

	text       string
	paragraphs []string
	sections   sections.SectionMap
	entities   []domain.Entity
	raw        domain.RawResume
	parsed     domain.ParsedResume
	confidence float64
}

// Parse runs extraction through persistence for one document. Progress is
// reported at 20 before extraction, 80 after scoring and 95 once stored.
func (uc *ParseResumeUseCase) Parse(
	ctx context.Context,
	doc domain.UploadedDocument,
	progress ports.ProgressFunc,
) (*domain.ParseResult, error) {
	run := &pipelineRun{doc: doc, started: uc.now(), progress: progress}

	result, err := uc.runPipeline(ctx, run)
	if err != nil {
		uc.enter(run, StageFailed, "error", err)
		return nil, err
	}
	uc.enter(run, StageDone, "resume_id", result.ResumeID, "confidence", result.Confidence)
	return result, nil
}

func (uc *ParseResumeUseCase) runPipeline(ctx context.Context, run *pipelineRun) (*domain.ParseResult, error) {
	run.report(ctx, domain.ProgressExtracting)
	if err := uc.extractText(ctx, run); err != nil {
		return nil, err
	}

	uc.segment(run)
	uc.extractEntities(ctx, run)

	uc.enter(run, StageStructuring)
	run.raw = structure.Build(run.sections, run.entities)

	uc.enter(run, StageNormalizing)
	run.parsed = normalize.Normalize(run.raw)

	uc.enter(run, StageScoring)
	run.confidence = scoring.Score(run.parsed)
	run.report(ctx, domain.ProgressStructured)

	result, err := uc.persist(ctx, run)
	if err != nil {
		return nil, err
	}
	run.report(ctx, domain.ProgressPersisted)
	return result, nil
}

func (uc *ParseResumeUseCase) extractText(ctx context.Context, run *pipelineRun) error {
	uc.enter(run, StageExtracting)
	text, err := uc.extractor.Extract(ctx, run.doc.Path, run.doc.FileType)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.WrapError(domain.ErrNoTextExtracted, "extract text", errors.New("document contains no readable text"))
	}
	run.text = text
	return nil
}

func (uc *ParseResumeUseCase) segment(run *pipelineRun) {
	uc.enter(run, StageSegmenting)
	run.paragraphs = textclean.SplitParagraphs(run.text)
	run.sections = sections.Segment(run.paragraphs, uc.classifier)
}

// extractEntities merges pattern entities with the optional recognizer's.
// Recognizer failures only cost the extra entities.
func (uc *ParseResumeUseCase) extractEntities(ctx context.Context, run *pipelineRun) {
	uc.enter(run, StageExtractingEntities)
	run.entities = entities.Extract(run.text)
	if uc.recognizer == nil {
		return
	}
	extra, err := uc.recognizer.Recognize(ctx, run.text)
	if err != nil {
		uc.logger.Warn("ner_unavailable", "file_name", run.doc.FileName, "error", err)
		return
	}
	run.entities = append(run.entities, extra...)
}

func (uc *ParseResumeUseCase) persist(ctx context.Context, run *pipelineRun) (*domain.ParseResult, error) {
	uc.enter(run, StagePersisting)
	if uc.validator != nil {
		if err := uc.validator.Validate(run.parsed); err != nil {
			return nil, domain.WrapError(domain.ErrPersistenceFailed, "persist result", err)
		}
	}

	now := uc.now()
	stored := &domain.StoredResumeResult{
		ID:         uuid.NewString(),
		Parsed:     run.parsed,
		Confidence: run.confidence,
		Metadata: domain.ResultMetadata{
			FileType:         run.doc.FileType,
			FileName:         run.doc.FileName,
			RawTextLength:    len(run.text),
			ProcessingTimeMs: now.Sub(run.started).Milliseconds(),
			ParagraphCount:   len(run.paragraphs),
			DetectedSections: run.sections.Keys(),
			EntityCount:      len(run.entities),
		},
		UploaderID: run.doc.UploaderID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.results.Save(ctx, stored); err != nil {
		if domain.IsKind(err, domain.ErrPersistenceFailed) {
			return nil, fmt.Errorf("persist result: %w", err)
		}
		return nil, domain.WrapError(domain.ErrPersistenceFailed, "persist result", err)
	}
	return stored.View(), nil
}

func (uc *ParseResumeUseCase) enter(run *pipelineRun, stage Stage, attrs ...any) {
	args := append([]any{"stage", string(stage), "file_name", run.doc.FileName}, attrs...)
	if stage == StageFailed {
		uc.logger.Warn("pipeline_stage", args...)
		return
	}
	uc.logger.Debug("pipeline_stage", args...)
}

func (r *pipelineRun) report(ctx context.Context, progress int) {
	if r.progress != nil {
		r.progress(ctx, progress)
	}
}
