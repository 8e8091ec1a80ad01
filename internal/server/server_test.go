package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenerlabs/kener-telegram-relay/internal/relay"
)

// newTestStack wires a real relay pipeline to a fake Telegram API and
// returns the HTTP server plus a channel that receives each outbound
// sendMessage text.
func newTestStack(t *testing.T, secret string) (*HTTPServer, chan string) {
	t.Helper()

	sent := make(chan string, 16)

	fakeTelegram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		text, _ := payload["text"].(string)
		sent <- text
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(fakeTelegram.Close)

	rly := relay.NewRelay(
		&relay.RelayConfig{DispatchTimeout: 5 * time.Second, LogLevel: "error"},
		&relay.TelegramConfig{
			BotToken:   "test-token",
			ChatID:     "-1001234",
			APIBaseURL: fakeTelegram.URL,
			Timeout:    5 * time.Second,
		},
		nil,
	)
	require.NoError(t, rly.Start(context.Background()))
	t.Cleanup(func() { rly.Stop() })

	srv, err := NewHTTPServer(&ServerConfig{
		Port:          3000,
		Host:          "127.0.0.1",
		ReadTimeout:   5 * time.Second,
		WriteTimeout:  5 * time.Second,
		EnableMetrics: false,
		MaxBodyBytes:  256 * 1024,
		WebhookSecret: secret,
	}, rly, nil)
	require.NoError(t, err)

	return srv, sent
}

func awaitDispatch(t *testing.T, sent chan string) string {
	t.Helper()
	select {
	case text := <-sent:
		return text
	case <-time.After(2 * time.Second):
		t.Fatal("expected an outbound dispatch, got none")
		return ""
	}
}

func assertNoDispatch(t *testing.T, sent chan string) {
	t.Helper()
	select {
	case text := <-sent:
		t.Fatalf("expected no outbound dispatch, got %q", text)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHealthHandler(t *testing.T) {
	srv, _ := newTestStack(t, "")

	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWebhookAcceptedAndRelayed(t *testing.T) {
	srv, sent := newTestStack(t, "secret")

	body := `{"id":"demo-1","alert_name":"CPU high","status":"TRIGGERED","severity":"critical"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set(TokenHeader, "secret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"ok": true}, resp)

	text := awaitDispatch(t, sent)
	assert.Contains(t, text, "🚨")
	assert.Contains(t, text, "CPU high")
	assert.Contains(t, text, "critical")
	assert.Contains(t, text, "TRIGGERED")
	assert.Contains(t, text, "Kener")
}

func TestWebhookRejectsWrongToken(t *testing.T) {
	srv, sent := newTestStack(t, "secret")

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"alert_name":"x"}`))
	req.Header.Set(TokenHeader, "wrong")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"invalid token"}`, rec.Body.String())

	assertNoDispatch(t, sent)
}

func TestWebhookRejectsMissingToken(t *testing.T) {
	srv, sent := newTestStack(t, "secret")

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assertNoDispatch(t, sent)
}

func TestWebhookAuthDisabledWithoutSecret(t *testing.T) {
	srv, sent := newTestStack(t, "")

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"alert_name":"open door"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	text := awaitDispatch(t, sent)
	assert.Contains(t, text, "open door")
}

func TestWebhookMalformedBodyStillAcknowledged(t *testing.T) {
	srv, sent := newTestStack(t, "")

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// The relay still runs with full defaults.
	text := awaitDispatch(t, sent)
	assert.Contains(t, text, "Alert")
	assert.Contains(t, text, "UNKNOWN")
}

func TestWebhookDispatchFailureDoesNotAffectResponse(t *testing.T) {
	sent := make(chan string, 1)

	failingTelegram := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sent <- "rejected"
		w.Write([]byte(`{"ok":false}`))
	}))
	t.Cleanup(failingTelegram.Close)

	rly := relay.NewRelay(
		&relay.RelayConfig{DispatchTimeout: 5 * time.Second, LogLevel: "error"},
		&relay.TelegramConfig{
			BotToken:   "test-token",
			ChatID:     "-1001234",
			APIBaseURL: failingTelegram.URL,
			Timeout:    5 * time.Second,
		},
		nil,
	)
	require.NoError(t, rly.Start(context.Background()))
	t.Cleanup(func() { rly.Stop() })

	srv, err := NewHTTPServer(&ServerConfig{
		Port:         3000,
		Host:         "127.0.0.1",
		MaxBodyBytes: 256 * 1024,
	}, rly, nil)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"alert_name":"x"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	// Caller gets 200 regardless of the dispatch outcome.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	awaitDispatch(t, sent)
	require.Eventually(t, func() bool {
		return rly.GetStats().TotalFailed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWebhookBodySizeCap(t *testing.T) {
	srv, sent := newTestStack(t, "")

	// Oversized bodies fail to decode and relay defaults instead.
	huge := `{"description":"` + strings.Repeat("a", 300*1024) + `"}`
	req := httptest.NewRequest("POST", "/", strings.NewReader(huge))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	text := awaitDispatch(t, sent)
	assert.Contains(t, text, "Alert")
}
