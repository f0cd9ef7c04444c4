// Package httpadapter exposes the API surface: document upload and
// status, and conversational Q&A against the active document.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docmentor/docmentor/internal/core/ports"
	"github.com/docmentor/docmentor/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	ingest  ports.DocumentIngestor
	chat    ports.ChatService
	docs    ports.DocumentReader
	metrics *metrics.APIMetrics
	logger  *slog.Logger

	rateLimitPerSecond float64
	rateLimitBurst     int
}

type RouterOptions struct {
	RateLimitPerSecond float64
	RateLimitBurst     int
}

func NewRouter(
	ingest ports.DocumentIngestor,
	chat ports.ChatService,
	docs ports.DocumentReader,
	apiMetrics *metrics.APIMetrics,
	logger *slog.Logger,
	options RouterOptions,
) *Router {
	return &Router{
		ingest:             ingest,
		chat:               chat,
		docs:               docs,
		metrics:            apiMetrics,
		logger:             logger,
		rateLimitPerSecond: options.RateLimitPerSecond,
		rateLimitBurst:     options.RateLimitBurst,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.uploadDocument)
	mux.HandleFunc("/v1/documents/", rt.getDocumentByID)
	mux.HandleFunc("/v1/chat", rt.chatWithDocument)

	var handler http.Handler = mux
	if rt.rateLimitPerSecond > 0 {
		handler = rateLimitMiddleware(handler, rt.rateLimitPerSecond, rt.rateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	enhanced := false
	if v := r.FormValue("enhanced"); v != "" {
		enhanced, err = strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "field 'enhanced' must be a boolean"})
			return
		}
	}

	doc, err := rt.ingest.Upload(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		enhanced,
		file,
	)
	if err != nil {
		rt.writeError(w, r, "upload_failed", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName)
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	doc, err := rt.docs.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, "get_document_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) chatWithDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Question  string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		rt.writeError(w, r, "chat_failed", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordChatObservation(serviceName, len(answer.Sources), time.Since(start))
	}
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, event string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		rt.logger.Error(event, "request_id", requestIDFromContext(r.Context()), "error", err)
	} else {
		rt.logger.Warn(event, "request_id", requestIDFromContext(r.Context()), "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
