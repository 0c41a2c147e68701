package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atzlabs/zadarma-atz-relay/internal/http/handlers"
	"github.com/atzlabs/zadarma-atz-relay/pkg/logging"
)

func TestRoutes(t *testing.T) {
	r := New(&Config{
		Logger:   logging.New("error"),
		Webhooks: handlers.NewZadarmaWebhookHandler(handlers.ZadarmaWebhookConfig{Logger: logging.New("error")}),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/zadarma?zd_echo=tok", http.StatusOK},
		{http.MethodPost, "/zadarma", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
		assert.NoError(t, err)
		resp, err := srv.Client().Do(req)
		assert.NoError(t, err)
		assert.Equal(t, tt.status, resp.StatusCode, "%s %s", tt.method, tt.path)
		resp.Body.Close()
	}
}

func TestEchoThroughRouter(t *testing.T) {
	r := New(&Config{
		Webhooks: handlers.NewZadarmaWebhookHandler(handlers.ZadarmaWebhookConfig{Logger: logging.New("error")}),
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/zadarma?zd_echo=abc123", nil))
	assert.Equal(t, "abc123", rec.Body.String())
}
