package domain

import "time"

// ResultMetadata describes how a stored result was produced.
type ResultMetadata struct {
	FileType         string   `json:"fileType"`
	FileName         string   `json:"fileName"`
	RawTextLength    int      `json:"rawTextLength"`
	ProcessingTimeMs int64    `json:"processingTime"`
	ParagraphCount   int      `json:"paragraphCount"`
	DetectedSections []string `json:"detectedSections"`
	EntityCount      int      `json:"entityCount"`
}

// StoredResumeResult is the persisted outcome of a successful parse.
type StoredResumeResult struct {
	ID         string         `json:"id"`
	Parsed     ParsedResume   `json:"parsed"`
	Confidence float64        `json:"confidence"`
	Metadata   ResultMetadata `json:"metadata"`
	UploaderID string         `json:"uploaderId,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// ParseResult is the payload returned for a completed job or a result fetch.
type ParseResult struct {
	ResumeID   string         `json:"resumeId"`
	Parsed     ParsedResume   `json:"parsed"`
	Confidence float64        `json:"confidence"`
	Metadata   ResultMetadata `json:"metadata"`
	CreatedAt  *time.Time     `json:"createdAt,omitempty"`
}

func (r *StoredResumeResult) View() *ParseResult {
	created := r.CreatedAt
	return &ParseResult{
		ResumeID:   r.ID,
		Parsed:     r.Parsed,
		Confidence: r.Confidence,
		Metadata:   r.Metadata,
		CreatedAt:  &created,
	}
}

// ResultSummary is the listing projection of a stored result.
type ResultSummary struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"createdAt"`
}
