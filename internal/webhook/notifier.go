// Package webhook delivers job results to caller-supplied callback URLs.
// Delivery is best effort: one attempt, bounded wait, failures logged and
// dropped.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"whisper-gateway/internal/whisper"
)

// ResultPayload is posted to the callback URL when a job completes.
type ResultPayload struct {
	Status   string            `json:"status"`
	Text     string            `json:"text"`
	Language string            `json:"language"`
	Segments []whisper.Segment `json:"segments"`
}

// ErrorPayload is posted when a job fails.
type ErrorPayload struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func NewResultPayload(res *whisper.Result) ResultPayload {
	return ResultPayload{
		Status:   "completed",
		Text:     res.Text,
		Language: res.Language,
		Segments: res.Segments,
	}
}

func NewErrorPayload(err error) ErrorPayload {
	return ErrorPayload{Status: "error", Error: err.Error()}
}

// Notifier posts payloads to webhook endpoints.
type Notifier struct {
	httpClient *http.Client
	secret     string
}

// NewNotifier creates a Notifier whose deliveries wait at most timeout for
// the remote endpoint. When secret is non-empty, payloads are signed with
// an HMAC-SHA256 X-Webhook-Signature header.
func NewNotifier(timeout time.Duration, secret string) *Notifier {
	return &Notifier{
		httpClient: &http.Client{Timeout: timeout},
		secret:     secret,
	}
}

// Notify sends exactly one POST with the JSON-encoded payload. The outcome
// is logged; the returned error exists for tests and is never surfaced to
// the caller that submitted the job.
func (n *Notifier) Notify(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		slog.Error("webhook request creation failed", "url", url, "error", err)
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if n.secret != "" {
		req.Header.Set("X-Webhook-Signature", sign(body, n.secret))
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		slog.Error("webhook delivery failed", "url", url, "error", err)
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		slog.Warn("webhook received non-success response", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	slog.Info("webhook delivered", "url", url, "status", resp.StatusCode)
	return nil
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
