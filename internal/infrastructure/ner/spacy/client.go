// Package spacy is a client for an optional spaCy-style NER service that
// contributes PERSON and ORG entities the regex rules cannot find.
package spacy

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
	"github.com/kirillkom/resume-parser/internal/infrastructure/chunking"
	"github.com/kirillkom/resume-parser/internal/infrastructure/resilience"
)

const defaultConfidence = 0.85

// kept maps service labels to the entity labels the pipeline consumes.
var kept = map[string]domain.EntityLabel{
	"PERSON": domain.EntityPerson,
	"PER":    domain.EntityPerson,
	"ORG":    domain.EntityOrg,
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	chunker    ports.Chunker
	executor   *resilience.Executor
	logger     *slog.Logger
}

type Options struct {
	Timeout            time.Duration
	Chunker            ports.Chunker
	ResilienceExecutor *resilience.Executor
	Logger             *slog.Logger
}

func New(baseURL string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	chunker := opts.Chunker
	if chunker == nil {
		chunker = chunking.NewSplitter(chunking.DefaultChunkSize, 0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		chunker:    chunker,
		executor:   opts.ResilienceExecutor,
		logger:     logger,
	}
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Entities []struct {
		Label      string   `json:"label"`
		Text       string   `json:"text"`
		Start      int      `json:"start"`
		End        int      `json:"end"`
		Confidence *float64 `json:"confidence"`
	} `json:"entities"`
}

// Recognize sends text chunk by chunk and returns the PERSON and ORG entities
// in document order. A chunk the service refuses as too large or
// unprocessable is skipped; any other failure aborts the call.
func (c *Client) Recognize(ctx context.Context, text string) ([]domain.Entity, error) {
	out := make([]domain.Entity, 0)
	for i, chunk := range c.chunker.Split(text) {
		var resp nerResponse
		call := func(ctx context.Context) error {
			resp = nerResponse{}
			return c.postJSON(ctx, "/ner", nerRequest{Text: chunk}, &resp, "ner")
		}

		var err error
		if c.executor != nil {
			err = c.executor.Execute(ctx, "ner.recognize", call, classifyNERError)
		} else {
			err = call(ctx)
		}
		if isChunkRejected(err) {
			c.logger.Warn("ner_chunk_rejected", "chunk", i, "chars", len(chunk), "error", err)
			continue
		}
		if err != nil {
			return nil, recognizeError(err)
		}

		for _, e := range resp.Entities {
			label, ok := kept[strings.ToUpper(strings.TrimSpace(e.Label))]
			text := strings.TrimSpace(e.Text)
			if !ok || text == "" {
				continue
			}
			confidence := defaultConfidence
			if e.Confidence != nil {
				confidence = max(0, min(*e.Confidence, 1))
			}
			out = append(out, domain.Entity{Label: label, Text: text, Confidence: confidence})
		}
	}
	return out, nil
}
