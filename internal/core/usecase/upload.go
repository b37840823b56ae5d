package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
)

var allowedUploadTypes = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"doc":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"bmp":  {},
}

var mimeFileTypes = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"application/msword": "doc",
	"image/jpeg":         "jpg",
	"image/png":          "png",
	"image/gif":          "gif",
	"image/bmp":          "bmp",
}

type UploadResumeUseCase struct {
	jobs    ports.JobStore
	storage ports.UploadStorage
	queue   ports.JobQueue
	logger  *slog.Logger
	now     func() time.Time
}

func NewUploadResumeUseCase(
	jobs ports.JobStore,
	storage ports.UploadStorage,
	queue ports.JobQueue,
	logger *slog.Logger,
) *UploadResumeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadResumeUseCase{
		jobs:    jobs,
		storage: storage,
		queue:   queue,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload stores the document, records a waiting job and queues it. The type
// is checked before storage is touched. A failed publish leaves the job
// waiting for the recovery sweep instead of failing the upload.
func (uc *UploadResumeUseCase) Upload(
	ctx context.Context,
	filename, mimeType, uploaderID string,
	body io.Reader,
) (*domain.ParseJob, error) {
	fileType, err := detectUploadType(filename, mimeType)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	now := uc.now()
	job := &domain.ParseJob{
		ID: id,
		Document: domain.UploadedDocument{
			StorageKey: storageKey,
			Path:       uc.storage.Path(storageKey),
			FileType:   fileType,
			FileName:   filepath.Base(filename),
			UploaderID: strings.TrimSpace(uploaderID),
		},
		Status:    domain.JobWaiting,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		if delErr := uc.storage.Delete(ctx, storageKey); delErr != nil {
			uc.logger.Warn("upload_cleanup_failed", "job_id", id, "error", delErr)
		}
		return nil, fmt.Errorf("create parse job: %w", err)
	}

	if err := uc.queue.Publish(ctx, domain.ParseRequest{JobID: id, EnqueuedAt: now}); err != nil {
		uc.logger.Warn("job_publish_failed", "job_id", id, "error", err)
	}

	uc.logger.Info("job_created", "job_id", id, "file_type", fileType, "uploader_id", job.Document.UploaderID)
	return job, nil
}

// detectUploadType resolves the declared type from the extension, falling
// back to the MIME type when the name has none. A specific MIME type that is
// not on the allow list is rejected even if the extension is.
func detectUploadType(filename, mimeType string) (string, error) {
	mediaType := ""
	if mimeType != "" {
		if parsed, _, err := mime.ParseMediaType(mimeType); err == nil {
			mediaType = strings.ToLower(parsed)
		}
	}
	if mediaType != "" && mediaType != "application/octet-stream" {
		if _, ok := mimeFileTypes[mediaType]; !ok {
			return "", domain.WrapError(domain.ErrUnsupportedFormat, "validate upload", fmt.Errorf("mime type %q is not allowed", mediaType))
		}
	}

	fileType := domain.FileTypeFromName(filename)
	if fileType == "" {
		fileType = mimeFileTypes[mediaType]
	}
	if _, ok := allowedUploadTypes[fileType]; !ok {
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "validate upload", fmt.Errorf("file type %q is not allowed", fileType))
	}
	return fileType, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." {
		return "document.bin"
	}
	return base
}
