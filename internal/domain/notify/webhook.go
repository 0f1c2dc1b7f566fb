package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// WebhookConfig tunes delivery retries
type WebhookConfig struct {
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	UserAgent    string
}

// DefaultWebhookConfig keeps retries well inside the controller's notify
// timeout.
func DefaultWebhookConfig() WebhookConfig {
	return WebhookConfig{
		RetryMax:     2,
		RetryWaitMin: 50 * time.Millisecond,
		RetryWaitMax: 250 * time.Millisecond,
		UserAgent:    "AgentOS-Launcher/1.0",
	}
}

// Webhook posts events as JSON to a URL
type Webhook struct {
	url       string
	userAgent string
	client    *retryablehttp.Client
}

// NewWebhook creates a webhook observer
func NewWebhook(url string, cfg WebhookConfig) *Webhook {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.Logger = nil

	return &Webhook{
		url:       url,
		userAgent: cfg.UserAgent,
		client:    client,
	}
}

// URL returns the target
func (w *Webhook) URL() string {
	return w.url
}

// Notify implements apphandler.Observer
func (w *Webhook) Notify(ctx context.Context, event types.Event) error {
	body, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Launcher-Event", string(event.Category))
	req.Header.Set("X-Launcher-Seq", strconv.FormatUint(event.Seq, 10))
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook %s: %w", w.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook %s returned %s", w.url, resp.Status)
	}
	return nil
}
