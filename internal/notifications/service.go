package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"murajaah/internal/config"
)

const userAgent = "Murajaah-Go/0.1.0"

// Service defines the notification surface exposed to engine components.
// Recipients are student or mentor identifiers; each gets its own topic.
type Service interface {
	NotifySubmissionReady(ctx context.Context, mentorID, studentID, taskLabel string) error
	NotifyVerdict(ctx context.Context, studentID, taskLabel string, passed bool) error
	NotifyTaskPassed(ctx context.Context, studentID, taskLabel string) error
	NotifyStageAdvanced(ctx context.Context, studentID string, page int, taskLabel string) error
	TestNotification(ctx context.Context, recipient string) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no base URL is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	baseURL := strings.TrimSpace(cfg.Delivery.NtfyBaseURL)
	if baseURL == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Delivery.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	prefix := strings.TrimSpace(cfg.Delivery.TopicPrefix)
	if prefix == "" {
		prefix = "murajaah"
	}

	return &ntfyService{
		baseURL: strings.TrimRight(baseURL, "/"),
		prefix:  prefix,
		client:  &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	baseURL string
	prefix  string
	client  *http.Client
}

func (n *ntfyService) topicURL(recipient string) string {
	return fmt.Sprintf("%s/%s-%s", n.baseURL, n.prefix, strings.TrimSpace(recipient))
}

func (n *ntfyService) NotifySubmissionReady(ctx context.Context, mentorID, studentID, taskLabel string) error {
	data := payload{
		title:    "Murajaah - Review Ready",
		message:  fmt.Sprintf("New recitation from %s: %s", strings.TrimSpace(studentID), strings.TrimSpace(taskLabel)),
		tags:     []string{"murajaah", "review", "ready"},
		priority: "high",
	}
	return n.send(ctx, mentorID, data)
}

func (n *ntfyService) NotifyVerdict(ctx context.Context, studentID, taskLabel string, passed bool) error {
	title := "Murajaah - Not Accepted"
	message := fmt.Sprintf("Recitation needs another attempt: %s", strings.TrimSpace(taskLabel))
	tags := []string{"murajaah", "verdict", "failed"}
	if passed {
		title = "Murajaah - Accepted"
		message = fmt.Sprintf("Recitation accepted: %s", strings.TrimSpace(taskLabel))
		tags = []string{"murajaah", "verdict", "passed"}
	}
	data := payload{
		title:   title,
		message: message,
		tags:    tags,
	}
	return n.send(ctx, studentID, data)
}

func (n *ntfyService) NotifyTaskPassed(ctx context.Context, studentID, taskLabel string) error {
	data := payload{
		title:    "Murajaah - Task Complete",
		message:  fmt.Sprintf("Target reached: %s", strings.TrimSpace(taskLabel)),
		tags:     []string{"murajaah", "task", "completed"},
		priority: "high",
	}
	return n.send(ctx, studentID, data)
}

func (n *ntfyService) NotifyStageAdvanced(ctx context.Context, studentID string, page int, taskLabel string) error {
	data := payload{
		title:   "Murajaah - Progress",
		message: fmt.Sprintf("Page %d: now working on %s", page, strings.TrimSpace(taskLabel)),
		tags:    []string{"murajaah", "progress"},
	}
	return n.send(ctx, studentID, data)
}

func (n *ntfyService) TestNotification(ctx context.Context, recipient string) error {
	data := payload{
		title:    "Murajaah - Test",
		message:  "Notification system test",
		tags:     []string{"murajaah", "test"},
		priority: "low",
	}
	return n.send(ctx, recipient, data)
}

func (n *ntfyService) send(ctx context.Context, recipient string, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("notification recipient required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.topicURL(recipient), strings.NewReader(data.message))
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
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySubmissionReady(context.Context, string, string, string) error { return nil }
func (noopService) NotifyVerdict(context.Context, string, string, bool) error           { return nil }
func (noopService) NotifyTaskPassed(context.Context, string, string) error              { return nil }
func (noopService) NotifyStageAdvanced(context.Context, string, int, string) error      { return nil }
func (noopService) TestNotification(context.Context, string) error                      { return nil }
