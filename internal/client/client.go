// Package client talks to the resume parser HTTP API: it uploads documents,
// reads job state and waits for parse results.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/resume-parser/internal/core/domain"
)

// ErrJobFailed is returned by WaitForResult when the job ends in failed state.
var ErrJobFailed = errors.New("job failed")

// PollPolicy controls the WaitForResult loop. The delay stays at Initial for
// the first RampAfter polls, then grows by Step per poll up to Max.
type PollPolicy struct {
	Initial   time.Duration
	Step      time.Duration
	Max       time.Duration
	RampAfter int
	MaxPolls  int
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		Initial:   500 * time.Millisecond,
		Step:      50 * time.Millisecond,
		Max:       2 * time.Second,
		RampAfter: 60,
		MaxPolls:  300,
	}
}

// Delay returns the wait after the given 1-based poll.
func (p PollPolicy) Delay(poll int) time.Duration {
	if poll <= p.RampAfter {
		return p.Initial
	}
	delay := p.Initial + time.Duration(poll-p.RampAfter)*p.Step
	if p.Max > 0 && delay > p.Max {
		return p.Max
	}
	return delay
}

type UploadResponse struct {
	JobID     string `json:"jobId"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	StatusURL string `json:"statusUrl"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	poll       PollPolicy
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithPollPolicy(policy PollPolicy) Option {
	return func(c *Client) {
		c.poll = policy
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		poll:       DefaultPollPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Upload(ctx context.Context, filename, userID string, body io.Reader) (*UploadResponse, error) {
	var payload bytes.Buffer
	writer := multipart.NewWriter(&payload)
	if userID != "" {
		if err := writer.WriteField("userId", userID); err != nil {
			return nil, fmt.Errorf("write userId field: %w", err)
		}
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("copy file body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/parser/upload", &payload)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out UploadResponse
	if err := c.do(req, "upload", http.StatusAccepted, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status(ctx context.Context, jobID string) (*domain.JobStatusView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/parser/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	var out domain.JobStatusView
	if err := c.do(req, "job status", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Result(ctx context.Context, resumeID string) (*domain.ParseResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/parser/results/"+url.PathEscape(resumeID), nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}
	var out domain.ParseResult
	if err := c.do(req, "get result", http.StatusOK, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForResult polls the job until it is terminal. Temporary API errors count
// as a poll and do not end the loop. Exceeding MaxPolls yields
// domain.ErrJobTimeout.
func (c *Client) WaitForResult(ctx context.Context, jobID string) (*domain.ParseResult, error) {
	for poll := 1; c.poll.MaxPolls <= 0 || poll <= c.poll.MaxPolls; poll++ {
		view, err := c.Status(ctx, jobID)
		switch {
		case err == nil:
			switch view.Status {
			case domain.JobCompleted:
				if view.Result != nil {
					return view.Result, nil
				}
				return nil, fmt.Errorf("job %s completed without result", jobID)
			case domain.JobFailed:
				msg := view.Error
				if msg == "" {
					msg = "job processing failed"
				}
				return nil, fmt.Errorf("%w: job=%s: %s", ErrJobFailed, jobID, msg)
			}
		case domain.IsKind(err, domain.ErrTemporary):
		default:
			return nil, err
		}

		timer := time.NewTimer(c.poll.Delay(poll))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, domain.WrapError(domain.ErrJobTimeout, "wait for result", fmt.Errorf("job=%s polls=%d", jobID, c.poll.MaxPolls))
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request, op string, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var body apiError
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, &body); err != nil || (body.Error == "" && body.Message == "") {
			body.Message = strings.TrimSpace(string(raw))
		}
		detail := strings.TrimSpace(strings.Join([]string{body.Error, body.Message}, ": "))
		return domain.WrapError(kindForStatus(resp.StatusCode), op, fmt.Errorf("status=%d %s", resp.StatusCode, strings.Trim(detail, ": ")))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusNotFound:
		return domain.ErrNotFound
	case status == http.StatusConflict:
		return domain.ErrConflict
	case status == http.StatusUnsupportedMediaType:
		return domain.ErrUnsupportedFormat
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable,
		status == http.StatusBadGateway, status == http.StatusGatewayTimeout:
		return domain.ErrTemporary
	case status >= 400 && status < 500:
		return domain.ErrInvalidInput
	default:
		return domain.ErrTemporary
	}
}
