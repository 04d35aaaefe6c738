package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tg-relay-bot/internal/infra/metrics"
)

// DefaultTimeout ограничивает запрос к супервизору.
const DefaultTimeout = 10 * time.Second

// Client сообщает внешнему супервизору о самоперезапуске.
type Client struct {
	endpoint   *url.URL
	runID      string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if c.httpClient == nil {
			c.httpClient = &http.Client{}
		}
		c.httpClient.Timeout = timeout
	}
}

type restartPayload struct {
	Action  string `json:"action"`
	Reason  string `json:"reason"`
	Restart int    `json:"restart"`
	RunID   string `json:"run_id,omitempty"`
}

// New создаёт клиента для webhookURL. runID помечает текущий запуск процесса.
func New(webhookURL, runID string, opts ...Option) (*Client, error) {
	if webhookURL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if !strings.Contains(webhookURL, "://") {
		webhookURL = "http://" + webhookURL
	}
	parsed, err := url.Parse(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("parse webhook url: %w", err)
	}
	client := &Client{
		endpoint:   parsed,
		runID:      runID,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NotifyRestart отправляет POST с причиной и номером перезапуска.
func (c *Client) NotifyRestart(ctx context.Context, reason string, restart int) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveNetworkRequest("webhook", "notify_restart", start, err) }()

	raw, err := json.Marshal(restartPayload{
		Action:  "restart",
		Reason:  reason,
		Restart: restart,
		RunID:   c.runID,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.String(), bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook error: status=%d message=%s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
