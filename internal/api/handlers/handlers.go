package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arthabot/ai-service/internal/api/middleware"
	"github.com/arthabot/ai-service/internal/pipeline"
	"github.com/rs/zerolog"
)

// ExpenseService is the pipeline surface the handlers depend on.
type ExpenseService interface {
	ProcessFinanceText(ctx context.Context, text string) (*pipeline.TransactionRecord, error)
	ProcessFinanceImage(ctx context.Context, imageBase64, caption string) (*pipeline.ReceiptResult, error)
	ProcessMetalText(ctx context.Context, text string) (*pipeline.MetalRecord, error)
	ProcessMetalImage(ctx context.Context, imageBase64, caption string) (*pipeline.MetalReceiptResult, error)
	ProcessVoice(ctx context.Context, audio []byte) (string, error)
}

// ExpenseHandler exposes the extraction pipeline over HTTP.
type ExpenseHandler struct {
	svc ExpenseService
	log zerolog.Logger
}

// NewExpenseHandler creates a new expense handler.
func NewExpenseHandler(svc ExpenseService, log zerolog.Logger) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, log: log}
}

type textInput struct {
	Text string `json:"text"`
}

type imageInput struct {
	Image   string `json:"image"`
	Caption string `json:"caption"`
}

type voiceInput struct {
	FileBase64 string `json:"file_base64"`
}

// ProcessMetalText handles POST /process_expense
func (h *ExpenseHandler) ProcessMetalText(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	record, err := h.svc.ProcessMetalText(r.Context(), text)
	if err != nil {
		h.writeProcessingError(w, err, "Failed to process text")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, record)
}

// ProcessMetalImage handles POST /process_image_expense
func (h *ExpenseHandler) ProcessMetalImage(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeImage(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ProcessMetalImage(r.Context(), input.Image, input.Caption)
	if err != nil {
		h.writeProcessingError(w, err, "Failed to process image")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ProcessFinanceText handles POST /process_expense_keuangan
func (h *ExpenseHandler) ProcessFinanceText(w http.ResponseWriter, r *http.Request) {
	text, ok := h.decodeText(w, r)
	if !ok {
		return
	}

	record, err := h.svc.ProcessFinanceText(r.Context(), text)
	if err != nil {
		h.writeProcessingError(w, err, "Failed to process text")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, record)
}

// ProcessFinanceImage handles POST /process_image_expense_keuangan
func (h *ExpenseHandler) ProcessFinanceImage(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decodeImage(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ProcessFinanceImage(r.Context(), input.Image, input.Caption)
	if err != nil {
		h.writeProcessingError(w, err, "Failed to process image")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// ProcessVoice handles POST /process_voice_expense_keuangan
func (h *ExpenseHandler) ProcessVoice(w http.ResponseWriter, r *http.Request) {
	var input voiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(input.FileBase64)
	if err != nil || len(audio) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "file_base64 must be non-empty base64 audio")
		return
	}

	summary, err := h.svc.ProcessVoice(r.Context(), audio)
	if err != nil {
		h.writeProcessingError(w, err, "Failed to process voice note")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"summary": summary})
}

// Health handles GET /health
func (h *ExpenseHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// decodeText validates a text request body. Empty text is rejected with a
// 400 before any outbound model call is made.
func (h *ExpenseHandler) decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var input textInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return "", false
	}

	text := strings.TrimSpace(input.Text)
	if text == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Text must not be empty")
		return "", false
	}

	return text, true
}

func (h *ExpenseHandler) decodeImage(w http.ResponseWriter, r *http.Request) (*imageInput, bool) {
	var input imageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}

	if strings.TrimSpace(input.Image) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Image must not be empty")
		return nil, false
	}

	return &input, true
}

// writeProcessingError translates pipeline errors to HTTP statuses: a
// model-declared rejection is the caller's problem (400), everything else
// (configuration, gateway, extraction) is a 500.
func (h *ExpenseHandler) writeProcessingError(w http.ResponseWriter, err error, msg string) {
	var rejection *pipeline.SemanticRejectionError
	if errors.As(err, &rejection) {
		h.log.Warn().Str("reason", rejection.Reason).Msg("Model rejected input")
		middleware.WriteError(w, http.StatusBadRequest, rejection.Reason)
		return
	}

	h.log.Error().Err(err).Msg(msg)
	middleware.WriteError(w, http.StatusInternalServerError, err.Error())
}
