package httpadapter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/resume-parser/internal/config"
	"github.com/kirillkom/resume-parser/internal/core/domain"
	"github.com/kirillkom/resume-parser/internal/core/ports"
	"github.com/kirillkom/resume-parser/internal/observability/metrics"
)

const (
	serviceName          = "resume-parser-api"
	defaultListLimit     = 10
	maxListLimit         = 100
	multipartMemory      = 4 << 20
	backpressureWait     = 250 * time.Millisecond
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	jobStatusURLTemplate = "/api/parser/jobs/%s"
)

type Router struct {
	uploader ports.ResumeUploader
	jobs     ports.JobReader
	results  ports.ResultReader
	exporter ports.ResultExporter

	uploadMaxBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
	maxInFlight    int

	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(
	cfg config.Config,
	uploader ports.ResumeUploader,
	jobs ports.JobReader,
	results ports.ResultReader,
	exporter ports.ResultExporter,
) *Router {
	return &Router{
		uploader:       uploader,
		jobs:           jobs,
		results:        results,
		exporter:       exporter,
		uploadMaxBytes: cfg.UploadMaxBytes,
		rateLimitRPS:   cfg.APIRateLimitRPS,
		rateLimitBurst: cfg.APIRateLimitBurst,
		maxInFlight:    cfg.APIMaxInFlight,
		logger:         slog.Default(),
	}
}

func (rt *Router) SetMetrics(m *metrics.HTTPServerMetrics) {
	rt.metrics = m
}

func (rt *Router) SetLogger(logger *slog.Logger) {
	if logger != nil {
		rt.logger = logger
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/parser/upload", rt.uploadResume)
	api.HandleFunc("GET /api/parser/jobs/{jobId}", rt.getJobStatus)
	api.HandleFunc("DELETE /api/parser/jobs/{jobId}", rt.removeJob)
	api.HandleFunc("GET /api/parser/results/{resumeId}", rt.getResult)
	api.HandleFunc("GET /api/parser/users/{userId}/resumes", rt.listUserResumes)
	api.HandleFunc("GET /api/parser/users/{userId}/resumes.xlsx", rt.exportUserResumes)
	api.HandleFunc("GET /api/parser/stats", rt.getStats)
	api.HandleFunc("GET /api/parser/health", rt.parserHealth)

	var guarded http.Handler = api
	guarded = backpressureMiddleware(guarded, rt.maxInFlight, backpressureWait)
	guarded = rateLimitMiddleware(guarded, rt.rateLimitRPS, rt.rateLimitBurst)

	root := http.NewServeMux()
	root.Handle("/api/", guarded)
	root.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		root.Handle("GET /metrics", rt.metrics.Handler())
	}

	var handler http.Handler = root
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) parserHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"service":   "resume-parser",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (rt *Router) uploadResume(w http.ResponseWriter, r *http.Request) {
	if rt.uploadMaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.uploadMaxBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := mapErrorToHTTPStatus(err)
		if status != http.StatusRequestEntityTooLarge {
			status = http.StatusBadRequest
		}
		rt.recordUpload("rejected")
		writeError(w, status, errorTitle(status), err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload("rejected")
		writeError(w, http.StatusBadRequest, "No file provided", "Please upload a resume file in multipart field 'file'")
		return
	}
	defer file.Close()

	job, err := rt.uploader.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		strings.TrimSpace(r.FormValue("userId")),
		file,
	)
	if err != nil {
		status := writeDomainError(w, err)
		if status >= http.StatusInternalServerError {
			rt.recordUpload("error")
		} else {
			rt.recordUpload("rejected")
		}
		return
	}

	rt.recordUpload("accepted")
	writeJSON(w, http.StatusAccepted, map[string]any{
		"jobId":     job.ID,
		"message":   "Resume parsing started",
		"status":    job.Status,
		"statusUrl": fmt.Sprintf(jobStatusURLTemplate, job.ID),
	})
}

func (rt *Router) getJobStatus(w http.ResponseWriter, r *http.Request) {
	view, err := rt.jobs.Status(r.Context(), r.PathValue("jobId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) removeJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("jobId")
	if err := rt.jobs.Remove(r.Context(), jobID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"jobId":   jobID,
		"message": "Job removed",
	})
}

func (rt *Router) getResult(w http.ResponseWriter, r *http.Request) {
	result, err := rt.results.Get(r.Context(), r.PathValue("resumeId"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) listUserResumes(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseListLimit(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userId")

	resumes, err := rt.results.ListByUploader(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if resumes == nil {
		resumes = []domain.ResultSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"userId":  userID,
		"resumes": resumes,
		"count":   len(resumes),
	})
}

func (rt *Router) exportUserResumes(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseListLimit(w, r)
	if !ok {
		return
	}
	userID := r.PathValue("userId")

	payload, err := rt.exporter.ExportXLSX(r.Context(), userID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="resumes-%s.xlsx"`, sanitizeHeaderToken(userID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (rt *Router) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.jobs.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"queue": stats})
}

func (rt *Router) recordUpload(outcome string) {
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, outcome)
	}
}

// parseListLimit reads ?limit=, defaulting to 10. Values outside 1..100 are
// rejected rather than clamped.
func parseListLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultListLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxListLimit {
		writeError(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("Limit must be between 1 and %d", maxListLimit))
		return 0, false
	}
	return limit, true
}

func sanitizeHeaderToken(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "export"
	}
	return b.String()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, map[string]string{
		"error":   title,
		"message": message,
	})
}
