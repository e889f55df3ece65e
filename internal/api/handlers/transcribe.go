package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"whisper-gateway/internal/jobs"
	"whisper-gateway/internal/webhook"
	"whisper-gateway/internal/whisper"
)

type TranscribeHandler struct {
	engine   whisper.Transcriber
	runner   *jobs.Runner
	notifier *webhook.Notifier
	validate *validator.Validate
}

func NewTranscribeHandler(engine whisper.Transcriber, runner *jobs.Runner, notifier *webhook.Notifier) *TranscribeHandler {
	v := validator.New()
	// Report fields by their wire names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &TranscribeHandler{
		engine:   engine,
		runner:   runner,
		notifier: notifier,
		validate: v,
	}
}

type transcribeRequest struct {
	URL            string  `json:"url" validate:"required,url"`
	Language       string  `json:"language"`
	Task           string  `json:"task" validate:"omitempty,oneof=transcribe translate"`
	WordTimestamps bool    `json:"word_timestamps"`
	Temperature    float64 `json:"temperature"`
	WebhookURL     string  `json:"webhook_url" validate:"omitempty,url"`
}

type ackResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Transcribe handles POST /transcribe. Requests without webhook_url are
// served inline; the rest are queued and acknowledged immediately.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Task == "" {
		req.Task = whisper.TaskTranscribe
	}

	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationDetail(err))
		return
	}

	opts := whisper.Options{
		Language:       req.Language,
		Task:           req.Task,
		WordTimestamps: req.WordTimestamps,
		Temperature:    req.Temperature,
	}

	if req.WebhookURL == "" {
		h.respondSync(w, r, req.URL, opts)
		return
	}
	h.respondAsync(w, req, opts)
}

func (h *TranscribeHandler) respondSync(w http.ResponseWriter, r *http.Request, audioURL string, opts whisper.Options) {
	result, err := h.engine.Transcribe(r.Context(), audioURL, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TranscribeHandler) respondAsync(w http.ResponseWriter, req transcribeRequest, opts whisper.Options) {
	jobID := uuid.New()
	job := jobs.Job{
		ID: jobID,
		Run: func(ctx context.Context) {
			result, err := h.engine.Transcribe(ctx, req.URL, opts)
			if err != nil {
				slog.Error("background transcription failed", "job_id", jobID, "error", err)
				_ = h.notifier.Notify(ctx, req.WebhookURL, webhook.NewErrorPayload(err))
				return
			}
			_ = h.notifier.Notify(ctx, req.WebhookURL, webhook.NewResultPayload(result))
		},
	}

	if err := h.runner.Submit(job); err != nil {
		writeError(w, http.StatusServiceUnavailable, "job queue full, try again later")
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{
		Status:  "accepted",
		Message: fmt.Sprintf("transcription job %s accepted, result will be posted to webhook_url", jobID),
	})
}

// validationDetail turns the first validation failure into a
// caller-readable message naming the offending field.
func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
