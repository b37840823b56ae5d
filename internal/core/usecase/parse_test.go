package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

const sectionedResume = "Jane Doe\njane@x.com\n\n" +
	"EXPERIENCE\n\n" +
	"Senior Engineer\nbuilt payment services for many customers\nled a team of five engineers\n\n" +
	"SKILLS\n\n" +
	"go, docker, GO, kubernetes, sql, python"

func newParseUseCase(extractor *extractorFake, results *resultStoreFake, opts ParseOptions) *ParseResumeUseCase {
	return NewParseResumeUseCase(extractor, results, opts)
}

func TestParseContactOnlyDocument(t *testing.T) {
	results := newResultStoreFake()
	uc := newParseUseCase(&extractorFake{text: "John Smith\njohn@x.com"}, results, ParseOptions{})

	res, err := uc.Parse(context.Background(), domain.UploadedDocument{Path: "/tmp/a.pdf", FileType: "pdf", FileName: "a.pdf"}, nil)
	require.NoError(t, err)

	require.NotNil(t, res.Parsed.Contact.Email)
	assert.Equal(t, "john@x.com", *res.Parsed.Contact.Email)
	assert.Empty(t, res.Parsed.Experiences)
	assert.NotNil(t, res.Parsed.Experiences)
	// Name and email fill half the contact weight: 0.5 + 0.2*2/4.
	assert.InDelta(t, 0.6, res.Confidence, 1e-9)
	assert.Equal(t, 1, results.count())
}

func TestParseSectionedDocument(t *testing.T) {
	results := newResultStoreFake()
	uc := newParseUseCase(&extractorFake{text: sectionedResume}, results, ParseOptions{})

	var progress []int
	res, err := uc.Parse(context.Background(),
		domain.UploadedDocument{Path: "/tmp/b.docx", FileType: "docx", FileName: "b.docx", UploaderID: "u1"},
		func(_ context.Context, p int) { progress = append(progress, p) },
	)
	require.NoError(t, err)

	require.Len(t, res.Parsed.Experiences, 1)
	assert.Equal(t, "Senior Engineer", *res.Parsed.Experiences[0].Role)
	assert.Len(t, res.Parsed.Experiences[0].Description, 2)
	assert.Equal(t, []string{"Go", "Docker", "Kubernetes", "Sql", "Python"}, res.Parsed.Skills)
	assert.Equal(t, []int{domain.ProgressExtracting, domain.ProgressStructured, domain.ProgressPersisted}, progress)

	assert.Equal(t, "docx", res.Metadata.FileType)
	assert.Equal(t, "b.docx", res.Metadata.FileName)
	assert.Equal(t, len(sectionedResume), res.Metadata.RawTextLength)
	assert.Equal(t, 5, res.Metadata.ParagraphCount)
	assert.Equal(t, []string{"other", "experiences", "skills"}, res.Metadata.DetectedSections)
	assert.Positive(t, res.Metadata.EntityCount)

	stored, err := results.Get(context.Background(), res.ResumeID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UploaderID)
	assert.Equal(t, res.Confidence, stored.Confidence)
}

func TestParseEmptyTextFails(t *testing.T) {
	results := newResultStoreFake()
	uc := newParseUseCase(&extractorFake{text: "  \n\n "}, results, ParseOptions{})

	_, err := uc.Parse(context.Background(), domain.UploadedDocument{FileType: "pdf"}, nil)
	if !errors.Is(err, domain.ErrNoTextExtracted) {
		t.Fatalf("expected ErrNoTextExtracted, got %v", err)
	}
	if results.count() != 0 {
		t.Fatalf("result persisted for empty document")
	}
}

func TestParseExtractorErrorPropagates(t *testing.T) {
	extractErr := domain.WrapError(domain.ErrUnsupportedFormat, "detect file kind", errors.New("txt"))
	uc := newParseUseCase(&extractorFake{errs: []error{extractErr}}, newResultStoreFake(), ParseOptions{})

	_, err := uc.Parse(context.Background(), domain.UploadedDocument{FileType: "txt"}, nil)
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseRecognizerAddsEntitiesAndFailsOpen(t *testing.T) {
	text := "SKILLS\n\nGo\n\nEXPERIENCE\n\nBackend Engineer\nshipped the billing platform end to end"

	withNER := newParseUseCase(&extractorFake{text: text}, newResultStoreFake(), ParseOptions{
		Recognizer: &recognizerFake{entities: []domain.Entity{
			{Label: domain.EntityPerson, Text: "Ada Lovelace", Confidence: 0.85},
			{Label: domain.EntityOrg, Text: "Initech", Confidence: 0.85},
		}},
	})
	res, err := withNER.Parse(context.Background(), domain.UploadedDocument{FileType: "pdf"}, nil)
	require.NoError(t, err)
	require.NotNil(t, res.Parsed.Contact.Name)
	assert.Equal(t, "Ada Lovelace", *res.Parsed.Contact.Name)
	require.Len(t, res.Parsed.Experiences, 1)
	assert.Equal(t, "Initech", *res.Parsed.Experiences[0].Company)

	failing := newParseUseCase(&extractorFake{text: text}, newResultStoreFake(), ParseOptions{
		Recognizer: &recognizerFake{err: domain.WrapError(domain.ErrTemporary, "ner", errors.New("down"))},
	})
	res, err = failing.Parse(context.Background(), domain.UploadedDocument{FileType: "pdf"}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Parsed.Experiences[0].Company)
}

func TestParseValidationFailureIsPersistenceFailure(t *testing.T) {
	results := newResultStoreFake()
	uc := newParseUseCase(&extractorFake{text: "John Smith"}, results, ParseOptions{
		Validator: &validatorFake{err: domain.WrapError(domain.ErrInvalidInput, "validate resume", errors.New("bad date"))},
	})

	_, err := uc.Parse(context.Background(), domain.UploadedDocument{FileType: "pdf"}, nil)
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if results.count() != 0 {
		t.Fatalf("invalid record was stored")
	}
}

func TestParseStoreFailureIsPersistenceFailure(t *testing.T) {
	results := newResultStoreFake()
	results.saveErr = errors.New("connection reset")
	uc := newParseUseCase(&extractorFake{text: "John Smith"}, results, ParseOptions{})

	_, err := uc.Parse(context.Background(), domain.UploadedDocument{FileType: "pdf"}, nil)
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
}
