package handlers

import (
	"encoding/json"
	"net/http"

	"whisper-gateway/internal/jobs"
	"whisper-gateway/internal/whisper"
)

type HealthHandler struct {
	engine whisper.Transcriber
	runner *jobs.Runner
}

func NewHealthHandler(engine whisper.Transcriber, runner *jobs.Runner) *HealthHandler {
	return &HealthHandler{engine: engine, runner: runner}
}

// Root reports service status and the available endpoints.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"message":     "whisper transcription gateway is running",
		"model":       h.engine.Model(),
		"queue_depth": h.runner.Depth(),
		"endpoints": map[string]string{
			"transcribe": "/transcribe (POST)",
			"health":     "/health (GET)",
		},
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  h.engine.Model(),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
