package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"textsummarizer/internal/config"
	"textsummarizer/internal/services"
)

const userAgent = "summarizer/0.1.0"

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, runID string, stages int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, runID, stage string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service, or a no-op when the topic is empty.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:  topic,
		onSuccess: cfg.NotifyOnSuccess,
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
	}
}

// Enabled reports whether svc delivers anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint  string
	onSuccess bool
	client    *resty.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, runID string, stages int, duration time.Duration) error {
	if !n.onSuccess {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return n.send(ctx, payload{
		title:   "Summarizer - Run Complete",
		message: fmt.Sprintf("Run %s finished %d stage(s) in %s", shortID(runID), stages, duration),
		tags:    []string{"summarizer", "run", "completed"},
	})
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, runID, stage string, err error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Run %s failed", shortID(runID))
	if stage = strings.TrimSpace(stage); stage != "" {
		fmt.Fprintf(&builder, " in %s", stage)
	}
	builder.WriteString(": ")
	if err != nil {
		details := services.ErrorDetails(err)
		message := strings.TrimSpace(details.Message)
		if message == "" {
			message = strings.TrimSpace(err.Error())
		}
		builder.WriteString(message)
		if details.Hint != "" {
			fmt.Fprintf(&builder, "\nHint: %s", details.Hint)
		}
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Summarizer - Run Failed",
		message:  builder.String(),
		tags:     []string{"summarizer", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Summarizer - Test",
		message:  "Notification system test",
		tags:     []string{"summarizer", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain; charset=utf-8").
		SetBody(data.message)
	if data.title != "" {
		req.SetHeader("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.SetHeader("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.SetHeader("Priority", data.priority)
	}

	resp, err := req.Post(n.endpoint)
	if err != nil {
		return services.Wrap(services.ErrTransient, "notifications", "send", "Unable to reach ntfy", err)
	}
	if resp.StatusCode() >= 300 {
		body := strings.TrimSpace(resp.String())
		if len(body) > 2048 {
			body = body[:2048]
		}
		return services.Wrap(services.ErrExternalTool, "notifications", "send",
			fmt.Sprintf("ntfy returned %d: %s", resp.StatusCode(), body), nil)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, string, int, time.Duration) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, string, error) error         { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
