package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atzlabs/zadarma-atz-relay/internal/call"
	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

// eventProcessor runs the CRM pipeline for one normalized call event.
type eventProcessor interface {
	Process(ctx context.Context, rec call.Record)
}

// ZadarmaWebhookHandler receives Zadarma's URL-validation handshake and call
// event notifications. Event POSTs are acknowledged before any processing
// starts: Zadarma must never see a slow or failing response, or it begins
// retrying and backing off.
type ZadarmaWebhookHandler struct {
	processor eventProcessor
	logger    *logging.Logger
}

type ZadarmaWebhookConfig struct {
	Processor eventProcessor
	Logger    *logging.Logger
}

func NewZadarmaWebhookHandler(cfg ZadarmaWebhookConfig) *ZadarmaWebhookHandler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &ZadarmaWebhookHandler{
		processor: cfg.Processor,
		logger:    cfg.Logger,
	}
}

// Health answers the liveness probe.
func (h *ZadarmaWebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Webhook is alive"))
}

// HandleEcho implements the provider's URL verification: GET /zadarma with a
// zd_echo query parameter must answer with the token verbatim.
func (h *ZadarmaWebhookHandler) HandleEcho(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if echo := r.URL.Query().Get("zd_echo"); echo != "" {
		_, _ = w.Write([]byte(echo))
		return
	}
	_, _ = w.Write([]byte("OK"))
}

// HandleEvent accepts a call event notification. The body may be JSON or
// form-encoded; an empty body falls back to the query string. The response
// is sent unconditionally before the event is looked at.
func (h *ZadarmaWebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	payload := parseEventPayload(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"ok":true}`))

	rec := call.Extract(payload)
	h.logger.Info("incoming zadarma event",
		"event", rec.Event,
		"call_id", rec.CallID,
		"direction", rec.Direction,
		"raw_keys", payloadKeys(payload),
	)

	if h.processor == nil {
		return
	}
	// Detached from the request context: the response is already written
	// and the pipeline must run to completion regardless of the caller.
	go h.processor.Process(context.Background(), rec)
}

// parseEventPayload extracts the event mapping from a request. Malformed
// input is never an error; it just yields fewer recognized fields.
func parseEventPayload(r *http.Request) call.Payload {
	payload := call.Payload{}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err == nil && len(strings.TrimSpace(string(body))) > 0 {
		trimmed := strings.TrimSpace(string(body))
		var asJSON map[string]any
		if jsonErr := json.Unmarshal([]byte(trimmed), &asJSON); jsonErr == nil {
			for k, v := range asJSON {
				payload[k] = v
			}
		} else if form, formErr := url.ParseQuery(trimmed); formErr == nil {
			for k, vals := range form {
				if len(vals) > 0 {
					payload[k] = vals[0]
				}
			}
		}
	}
	if len(payload) == 0 {
		for k, vals := range r.URL.Query() {
			if len(vals) > 0 {
				payload[k] = vals[0]
			}
		}
	}
	return payload
}

func payloadKeys(p call.Payload) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	return keys
}
