// Package slack posts pipeline events to a recruiting team's Slack webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/target/hiring-pipeline/internal/domain/model"
	"github.com/target/hiring-pipeline/internal/observability/notify"
)

// Config captures the subset of Slack webhook behaviour we need.
type Config struct {
	WebhookURL string
	Channel    string
	Username   string
	Timeout    time.Duration
	RetryLimit int
	Client     *http.Client
	// ApplicationURLPrefix links messages to the recruiter UI, e.g. https://hire.example/applications.
	ApplicationURLPrefix string
	// Kinds restricts which events are posted. Empty posts every kind.
	Kinds []model.EventKind
}

// Client delivers pipeline events to a Slack webhook.
type Client struct {
	webhookURL   string
	channel      string
	username     string
	retryLimit   int
	appURLPrefix string
	kinds        map[model.EventKind]struct{}
	client       *http.Client
}

var _ notify.Sink = (*Client)(nil)

// NewClient builds a Slack webhook client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	webhookURL := strings.TrimSpace(cfg.WebhookURL)
	if webhookURL == "" {
		return nil, errors.New("slack webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	var kinds map[model.EventKind]struct{}
	if len(cfg.Kinds) > 0 {
		kinds = make(map[model.EventKind]struct{}, len(cfg.Kinds))
		for _, k := range cfg.Kinds {
			kinds[k] = struct{}{}
		}
	}

	return &Client{
		webhookURL:   webhookURL,
		channel:      strings.TrimSpace(cfg.Channel),
		username:     fallbackString(strings.TrimSpace(cfg.Username), "hiring-pipeline"),
		retryLimit:   max(cfg.RetryLimit, 0),
		appURLPrefix: strings.TrimSpace(cfg.ApplicationURLPrefix),
		kinds:        kinds,
		client:       hc,
	}, nil
}

// Publish posts a formatted message for ev. Events outside the configured kinds are dropped.
func (c *Client) Publish(ctx context.Context, ev model.Event) error {
	if c.kinds != nil {
		if _, ok := c.kinds[ev.Kind]; !ok {
			return nil
		}
	}
	body, err := json.Marshal(c.formatMessage(ev))
	if err != nil {
		return fmt.Errorf("encode slack payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

var headlines = map[model.EventKind]string{
	model.EventApplicationSubmitted: "New application",
	model.EventRoundCompleted:       "Round completed",
	model.EventRoundScheduled:       "Round scheduled",
	model.EventFeedbackRecorded:     "Feedback recorded",
}

func (c *Client) formatMessage(ev model.Event) map[string]any {
	timestamp := ev.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	text := strings.Builder{}
	text.WriteString("*")
	text.WriteString(fallbackString(headlines[ev.Kind], string(ev.Kind)))
	text.WriteString("*")
	if ev.RecipientID != "" {
		text.WriteString(" for candidate `")
		text.WriteString(escapeSlackText(ev.RecipientID))
		text.WriteByte('`')
	}
	text.WriteByte('\n')

	appID, _ := ev.Payload["application_id"].(string)
	appendSlackField(&text, "Application", c.formatApplicationValue(appID))
	appendSlackPayload(&text, ev.Payload)
	text.WriteString("• Timestamp: ")
	text.WriteString(timestamp.UTC().Format(time.RFC3339))

	msg := map[string]any{
		"text":     text.String(),
		"username": c.username,
	}
	if c.channel != "" {
		msg["channel"] = c.channel
	}
	return msg
}

func (c *Client) formatApplicationValue(appID string) string {
	id := escapeSlackText(strings.TrimSpace(appID))
	if id == "" {
		return ""
	}
	if link := c.buildApplicationLink(strings.TrimSpace(appID)); link != "" {
		return fmt.Sprintf("<%s|%s>", link, id)
	}
	return id
}

func (c *Client) buildApplicationLink(appID string) string {
	if c.appURLPrefix == "" {
		return ""
	}
	u, err := url.Parse(c.appURLPrefix)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	link, err := url.JoinPath(u.String(), appID)
	if err != nil {
		return ""
	}
	return link
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func escapeSlackText(value string) string {
	if value == "" {
		return ""
	}
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	).Replace(value)
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if readErr != nil {
			return fmt.Errorf("read slack error response: %w", readErr)
		}
		return fmt.Errorf("slack webhook %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}
	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		return fmt.Errorf("drain slack response body: %w", err)
	}
	return nil
}

func appendSlackField(text *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	text.WriteString("• ")
	text.WriteString(label)
	text.WriteString(": ")
	text.WriteString(value)
	text.WriteByte('\n')
}

func appendSlackPayload(text *strings.Builder, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k == "application_id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		appendSlackField(text, k, escapeSlackText(fmt.Sprint(payload[k])))
	}
}
