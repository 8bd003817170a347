package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"promptcraft/app/usecase"
	"promptcraft/internal/domain/entity"
)

// Response details. Internal error text never reaches the client.
const (
	statusRunning          = "PromptCraft API is running!"
	detailEmptyUseCase     = "Use case cannot be empty."
	detailInvalidJSON      = "Model returned invalid JSON."
	detailMissingKeys      = "Model JSON missing required keys."
	detailGenerationFailed = "Failed to generate prompt from the model."
	detailBadBody          = "Request body must be a JSON object with a string use_case field."
	detailMissingUseCase   = "Field use_case is required."
)

// maxBodyBytes bounds the request body of /generate-prompt.
const maxBodyBytes = 1 << 20

type PromptHandler struct {
	promptService usecase.PromptUsecase
	logger        *slog.Logger
}

func NewPromptHandler(promptService usecase.PromptUsecase, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		logger:        logger,
	}
}

func (h *PromptHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/generate-prompt", h.handleGeneratePrompt).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

// GET /
func (h *PromptHandler) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusRunning})
}

// POST /generate-prompt
func (h *PromptHandler) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	logger := LoggerFromContext(r.Context(), h.logger)

	var req entity.UseCaseRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logger.Info("bad request body", "err", err)
		writeDetail(w, http.StatusUnprocessableEntity, detailBadBody)
		return
	}
	// the body must hold exactly one JSON value
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		logger.Info("bad request body", "err", "trailing data after JSON value")
		writeDetail(w, http.StatusUnprocessableEntity, detailBadBody)
		return
	}
	if req.UseCase == nil {
		writeDetail(w, http.StatusUnprocessableEntity, detailMissingUseCase)
		return
	}

	resp, err := h.promptService.GeneratePrompt(r.Context(), *req.UseCase)
	if err != nil {
		code, detail := errorResponse(err)
		if code >= http.StatusInternalServerError {
			logger.Error("generate prompt failed", "status", code, "err", err)
		}
		writeDetail(w, code, detail)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// errorResponse maps a generation error to a status and a fixed detail.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest, detailEmptyUseCase
	case errors.Is(err, entity.ErrMalformedUpstreamOutput):
		return http.StatusBadGateway, detailInvalidJSON
	case errors.Is(err, entity.ErrUnexpectedUpstreamShape):
		return http.StatusBadGateway, detailMissingKeys
	default:
		return http.StatusInternalServerError, detailGenerationFailed
	}
}
