package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dit/internal/config"
)

const userAgent = "dit/0.1.0"

// Event identifies a notification category.
type Event string

const (
	EventTransmissionQueued    Event = "transmission_queued"
	EventTransmissionCompleted Event = "transmission_completed"
	EventTransmissionFailed    Event = "transmission_failed"
	EventCodeLine              Event = "code_line"
	EventTestNotification      Event = "test"
)

// StatusError is a non-success response from the ntfy server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ntfy returned %d: %s", e.StatusCode, e.Body)
}

// ErrorKind reports 4xx responses as validation failures, except request
// timeouts and rate limiting, which may clear on their own.
func (e *StatusError) ErrorKind() string {
	switch {
	case e.StatusCode == http.StatusRequestTimeout, e.StatusCode == http.StatusTooManyRequests:
		return "transient"
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return "validation"
	default:
		return "transient"
	}
}

// Payload carries event specific fields.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		transmissions: cfg.Notifications.Transmissions,
		errors:        cfg.Notifications.Errors,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	transmissions bool
	errors        bool
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	msg, ok := n.format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventTransmissionCompleted:
		if !n.transmissions {
			return message{}, false
		}
		text := payload.string("text")
		body := fmt.Sprintf("📡 Sent at %s wpm: %s", payload.string("speed"), text)
		if code := payload.string("code"); code != "" {
			body = fmt.Sprintf("%s\n%s", body, code)
		}
		return message{
			title: "dit - Transmission Sent",
			body:  body,
			tags:  []string{"dit", "transmission", "completed"},
		}, true
	case EventTransmissionFailed:
		if !n.errors {
			return message{}, false
		}
		detail := payload.string("error")
		if detail == "" {
			detail = "unknown"
		}
		return message{
			title:    "dit - Transmission Failed",
			body:     fmt.Sprintf("❌ Failed to send %q: %s", payload.string("text"), detail),
			tags:     []string{"dit", "error", "alert"},
			priority: "high",
		}, true
	case EventCodeLine:
		return message{
			title: "dit - " + strings.Join(strings.Fields(payload.string("text")), " "),
			body:  payload.string("code"),
			tags:  []string{"dit", "morse"},
		}, true
	case EventTestNotification:
		return message{
			title:    "dit - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"dit", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func (n *ntfyService) send(ctx context.Context, data message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p Payload) string(key string) string {
	if p == nil {
		return ""
	}
	value, ok := p[key]
	if !ok || value == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
