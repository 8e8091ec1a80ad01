// File: internal/relay/telegram.go
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kenerlabs/kener-telegram-relay/pkg/utils"
)

// DefaultAPIBaseURL is the Telegram Bot API endpoint used when none is
// configured. Tests point this at a local server.
const DefaultAPIBaseURL = "https://api.telegram.org"

// maxResponseBytes caps how much of the Telegram API response body is read
// for error reporting.
const maxResponseBytes = 4096

// TelegramConfig holds Telegram Bot API credentials and transport settings
type TelegramConfig struct {
	BotToken   string        `json:"-"`
	ChatID     string        `json:"chat_id"`
	APIBaseURL string        `json:"api_base_url"`
	Timeout    time.Duration `json:"timeout"`
}

// TelegramSender delivers rendered messages through the Bot API
type TelegramSender struct {
	config     *TelegramConfig
	logger     *Logger
	httpClient *http.Client
}

// sendMessageRequest is the Bot API sendMessage payload. HTML parse mode
// is always on and link previews are always suppressed.
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// sendMessageResponse is the subset of the Bot API response the sender
// inspects. Delivery succeeded only when OK is true.
type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// DispatchResult captures the outcome of a single send attempt
type DispatchResult struct {
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
	Success      bool          `json:"success"`
	Body         string        `json:"body,omitempty"`
	Error        error         `json:"error,omitempty"`
}

// NewTelegramSender creates a new Telegram sender
func NewTelegramSender(config *TelegramConfig, logger *Logger) *TelegramSender {
	if config.APIBaseURL == "" {
		config.APIBaseURL = DefaultAPIBaseURL
	}

	return &TelegramSender{
		config: config,
		logger: logger.WithField("sender", "telegram"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}
}

// Start starts the Telegram sender
func (ts *TelegramSender) Start(ctx context.Context) error {
	ts.logger.Info("Telegram sender started")
	return nil
}

// Stop stops the Telegram sender
func (ts *TelegramSender) Stop() error {
	ts.logger.Info("Telegram sender stopped")
	return nil
}

// Send delivers a rendered message to the configured chat. It makes a
// single attempt: there is no retry and no timeout beyond the HTTP
// client's own. The returned error is a DISPATCH_ERROR AppError carrying
// the transport status and whatever body the API returned.
func (ts *TelegramSender) Send(ctx context.Context, relayID, text string) error {
	result := ts.sendMessage(ctx, text)

	ts.logger.LogDispatchResult(relayID, result.StatusCode, result.ResponseTime, result.Error)

	return result.Error
}

// sendMessage performs the sendMessage call and classifies the outcome
func (ts *TelegramSender) sendMessage(ctx context.Context, text string) *DispatchResult {
	startTime := time.Now()

	result := &DispatchResult{
		Success: false,
	}

	payload := &sendMessageRequest{
		ChatID:                ts.config.ChatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		result.Error = utils.NewAppError(utils.ErrCodeInternal, "Failed to marshal sendMessage payload", err.Error())
		result.ResponseTime = time.Since(startTime)
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.endpointURL(), bytes.NewReader(jsonData))
	if err != nil {
		result.Error = utils.NewAppError(utils.ErrCodeInternal, "Failed to create sendMessage request", err.Error())
		result.ResponseTime = time.Since(startTime)
		return result
	}

	ts.setRequestHeaders(req)

	resp, err := ts.httpClient.Do(req)
	result.ResponseTime = time.Since(startTime)

	if err != nil {
		result.Error = utils.NewAppError(utils.ErrCodeExternal, "Failed to reach Telegram API", err.Error())
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		result.Body = "<unreadable body>"
	} else {
		result.Body = string(body)
	}

	var apiResp sendMessageResponse
	decodable := json.Unmarshal(body, &apiResp) == nil

	// Delivery needs both a 2xx transport status and ok:true in the body.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && decodable && apiResp.OK {
		result.Success = true
		return result
	}

	detailBody := result.Body
	if !decodable {
		detailBody = "<unparseable body>"
	}
	result.Error = utils.NewAppError(utils.ErrCodeDispatch,
		"Telegram API rejected message",
		fmt.Sprintf("status: %d, body: %s", resp.StatusCode, detailBody))

	return result
}

// endpointURL builds the bot-scoped sendMessage URL
func (ts *TelegramSender) endpointURL() string {
	return fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(ts.config.APIBaseURL, "/"), ts.config.BotToken)
}

// setRequestHeaders sets HTTP request headers
func (ts *TelegramSender) setRequestHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Kener-Telegram-Relay/1.0")

	// Add request ID for tracing
	if requestID, err := utils.GenerateID(); err == nil {
		req.Header.Set("X-Request-ID", requestID)
	}
}

// ValidateTelegramConfig validates sender configuration
func (ts *TelegramSender) ValidateTelegramConfig(config *TelegramConfig) error {
	if strings.TrimSpace(config.BotToken) == "" {
		return utils.NewAppError(utils.ErrCodeValidation, "Telegram bot token is required", "")
	}
	if strings.TrimSpace(config.ChatID) == "" {
		return utils.NewAppError(utils.ErrCodeValidation, "Telegram chat ID is required", "")
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return nil
}

// GetSenderStats returns sender statistics
func (ts *TelegramSender) GetSenderStats() map[string]interface{} {
	return map[string]interface{}{
		"timeout":      ts.httpClient.Timeout,
		"api_base_url": ts.config.APIBaseURL,
		"chat_id":      ts.config.ChatID,
	}
}
