package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/evanly-gh/remember-me/internal/analysis"
)

// AnalyzeHandler relays face analysis requests to the configured engine.
// Every engine failure is converted to a JSON error response; nothing the
// engine does can take the service down with it.
type AnalyzeHandler struct {
	engine analysis.Engine
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(engine analysis.Engine) *AnalyzeHandler {
	return &AnalyzeHandler{engine: engine}
}

// AnalyzeRequest represents the relay request body. The image is base64,
// with or without a data-URI prefix.
type AnalyzeRequest struct {
	Image string `json:"image"`
}

// Analyze handles POST /analyze-face.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	image, err := analysis.DecodeImagePayload(req.Image)
	if err != nil {
		if errors.Is(err, analysis.ErrMissingImage) {
			respondError(w, http.StatusBadRequest, analysis.ErrMissingImage.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "image is not valid base64")
		return
	}

	result, err := h.engine.Analyze(r.Context(), image)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// respondEngineError maps the engine error taxonomy onto the HTTP contract:
// 500 with {error, detail?}. Detail carries engine diagnostics (stderr,
// unparseable output) so the client can surface something actionable.
func (h *AnalyzeHandler) respondEngineError(w http.ResponseWriter, err error) {
	log.Printf("analysis failed: %v", sanitizeForLog(err.Error()))

	var engErr *analysis.EngineError
	if errors.As(err, &engErr) {
		body := map[string]string{"error": h.engineErrorMessage(engErr.Kind)}
		if engErr.Detail != "" {
			body["detail"] = engErr.Detail
		}
		respondJSON(w, http.StatusInternalServerError, body)
		return
	}

	if errors.Is(err, analysis.ErrEngineUnavailable) {
		respondError(w, http.StatusInternalServerError, analysis.ErrEngineUnavailable.Error())
		return
	}

	respondError(w, http.StatusInternalServerError, "analysis failed")
}

func (h *AnalyzeHandler) engineErrorMessage(kind analysis.ErrorKind) string {
	switch kind {
	case analysis.ErrorStartup:
		return "failed to start analysis engine"
	case analysis.ErrorExecution:
		return "analysis engine failed"
	case analysis.ErrorResponse:
		return "analysis engine returned an invalid response"
	default:
		return "analysis failed"
	}
}
