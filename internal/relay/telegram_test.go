package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

func newTestSender(apiBaseURL string) *TelegramSender {
	return NewTelegramSender(&TelegramConfig{
		BotToken:   "test-token",
		ChatID:     "-1001234",
		APIBaseURL: apiBaseURL,
		Timeout:    5 * time.Second,
	}, NewLogger("error"))
}

func TestSendSuccess(t *testing.T) {
	var gotPath string
	var gotPayload map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer ts.Close()

	sender := newTestSender(ts.URL)

	err := sender.Send(context.Background(), "test-relay-id", "<b>hello</b>")
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendMessage", gotPath)
	assert.Equal(t, "-1001234", gotPayload["chat_id"])
	assert.Equal(t, "<b>hello</b>", gotPayload["text"])
	assert.Equal(t, "HTML", gotPayload["parse_mode"])
	assert.Equal(t, true, gotPayload["disable_web_page_preview"])
}

func TestSendRejectedByAPI(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer ts.Close()

	err := newTestSender(ts.URL).Send(context.Background(), "test-relay-id", "hello")
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeDispatch, appErr.Code)
	assert.Contains(t, appErr.Details, "status: 400")
	assert.Contains(t, appErr.Details, "chat not found")
}

func TestSendTransportSuccessBodyNotOK(t *testing.T) {
	// 200 with ok:false is still a dispatch failure; both conditions must
	// hold for success.
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false}`))
	}))
	defer ts.Close()

	err := newTestSender(ts.URL).Send(context.Background(), "test-relay-id", "hello")
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeDispatch, appErr.Code)
	assert.Contains(t, appErr.Details, "status: 200")
}

func TestSendUnparseableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer ts.Close()

	err := newTestSender(ts.URL).Send(context.Background(), "test-relay-id", "hello")
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Contains(t, appErr.Details, "<unparseable body>")
}

func TestSendUnreachableHost(t *testing.T) {
	err := newTestSender("http://127.0.0.1:1").Send(context.Background(), "test-relay-id", "hello")
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeExternal, appErr.Code)
}

func TestValidateTelegramConfig(t *testing.T) {
	sender := newTestSender("")

	err := sender.ValidateTelegramConfig(&TelegramConfig{ChatID: "1"})
	assert.Error(t, err)

	err = sender.ValidateTelegramConfig(&TelegramConfig{BotToken: "t", ChatID: "  "})
	assert.Error(t, err)

	cfg := &TelegramConfig{BotToken: "t", ChatID: "1"}
	require.NoError(t, sender.ValidateTelegramConfig(cfg))
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
