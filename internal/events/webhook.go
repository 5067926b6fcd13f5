package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SignatureHeader carries the HMAC-SHA256 of the request body.
const SignatureHeader = "X-Cardledger-Signature"

// Webhook is one HTTP delivery target.
type Webhook struct {
	URL    string   `mapstructure:"url"`
	Secret string   `mapstructure:"secret"`
	Events []string `mapstructure:"events"` // empty means every event; "card.*" matches a prefix
}

// wants reports whether the webhook is subscribed to eventType.
func (w Webhook) wants(eventType string) bool {
	if len(w.Events) == 0 {
		return true
	}
	for _, e := range w.Events {
		switch {
		case e == "*" || e == eventType:
			return true
		case strings.HasSuffix(e, ".*") && strings.HasPrefix(eventType, strings.TrimSuffix(e, "*")):
			return true
		}
	}
	return false
}

// DeliveryRecorder is an optional callback for recording delivery outcomes.
type DeliveryRecorder func(success bool)

// WebhookPublisher POSTs events as JSON to configured webhooks. Deliveries run
// in the background with retries; Publish never waits for them.
type WebhookPublisher struct {
	hooks      []Webhook
	httpClient *http.Client
	backoff    []time.Duration // wait before each retry
	onMetrics  DeliveryRecorder
	wg         sync.WaitGroup
	logger     *zap.Logger
}

// NewWebhookPublisher creates a publisher for hooks.
func NewWebhookPublisher(hooks []Webhook, logger *zap.Logger) *WebhookPublisher {
	return &WebhookPublisher{
		hooks:      hooks,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		backoff:    []time.Duration{1 * time.Second, 5 * time.Second, 25 * time.Second},
		logger:     logger,
	}
}

// SetMetricsRecorder configures the metrics callback.
func (p *WebhookPublisher) SetMetricsRecorder(fn DeliveryRecorder) {
	p.onMetrics = fn
}

// Publish implements Publisher. It fans ev out to every subscribed webhook.
func (p *WebhookPublisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	// Deliveries outlive the request that triggered them.
	ctx = context.WithoutCancel(ctx)
	for _, hook := range p.hooks {
		if !hook.wants(ev.Type) {
			continue
		}
		p.wg.Add(1)
		go func(hook Webhook) {
			defer p.wg.Done()
			p.deliver(ctx, hook, ev.Type, body)
		}(hook)
	}
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (p *WebhookPublisher) Wait() {
	p.wg.Wait()
}

// deliver sends body to a single webhook, retrying with backoff.
func (p *WebhookPublisher) deliver(ctx context.Context, hook Webhook, eventType string, body []byte) {
	signature := signPayload(body, hook.Secret)
	attempts := len(p.backoff) + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(p.backoff[attempt-2])
		}

		success, errMsg := p.doDelivery(ctx, hook.URL, body, signature)

		if p.onMetrics != nil {
			p.onMetrics(success)
		}
		if success {
			return
		}

		p.logger.Warn("webhook: delivery failed",
			zap.String("url", hook.URL),
			zap.String("event", eventType),
			zap.Int("attempt", attempt),
			zap.String("error", errMsg),
		)
	}
	p.logger.Error("webhook: giving up", zap.String("url", hook.URL), zap.String("event", eventType))
}

// doDelivery performs a single HTTP POST delivery.
func (p *WebhookPublisher) doDelivery(ctx context.Context, url string, body []byte, signature string) (bool, string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return false, err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024)) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return true, ""
}

// signPayload computes an HMAC-SHA256 signature. Unsigned when secret is empty.
func signPayload(body []byte, secret string) string {
	if secret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
