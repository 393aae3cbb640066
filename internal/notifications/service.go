package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marquee/internal/config"
)

const userAgent = "Marquee-Go/0.1.0"

// maxListedIDs bounds how many missing ids are spelled out in one message.
const maxListedIDs = 20

// Service defines the notification surface exposed to import components.
type Service interface {
	NotifyImportCompleted(ctx context.Context, title string, credits, missing int) error
	NotifyMissingPeople(ctx context.Context, title string, externalIDs []string) error
	NotifyImportFailed(ctx context.Context, filmExternalID string, err error) error
	NotifyRepairCompleted(ctx context.Context, films, linksAdded int, duration time.Duration) error
	TestNotification(ctx context.Context) error
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
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		imports:  cfg.Notifications.Imports,
		missing:  cfg.Notifications.MissingPeople,
		errors:   cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	imports  bool
	missing  bool
	errors   bool
}

func (n *ntfyService) NotifyImportCompleted(ctx context.Context, title string, credits, missing int) error {
	if !n.imports {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("🎬 Imported: %s (%d credits)", title, credits)
	if missing > 0 {
		message = fmt.Sprintf("%s\n%d people need follow-up", message, missing)
	}
	return n.send(ctx, payload{
		title:   "Marquee - Imported",
		message: message,
		tags:    []string{"marquee", "import", "completed"},
	})
}

func (n *ntfyService) NotifyMissingPeople(ctx context.Context, title string, externalIDs []string) error {
	if !n.missing || len(externalIDs) == 0 {
		return nil
	}
	listed := externalIDs
	suffix := ""
	if len(listed) > maxListedIDs {
		suffix = fmt.Sprintf(" (+%d more)", len(listed)-maxListedIDs)
		listed = listed[:maxListedIDs]
	}
	return n.send(ctx, payload{
		title:   "Marquee - Unresolved People",
		message: fmt.Sprintf("%s: could not resolve %s%s\nManual review required", strings.TrimSpace(title), strings.Join(listed, ", "), suffix),
		tags:    []string{"marquee", "people", "review"},
	})
}

func (n *ntfyService) NotifyImportFailed(ctx context.Context, filmExternalID string, err error) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Import failed")
	if filmExternalID = strings.TrimSpace(filmExternalID); filmExternalID != "" {
		builder.WriteString(" for film ")
		builder.WriteString(filmExternalID)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Marquee - Error",
		message:  builder.String(),
		tags:     []string{"marquee", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRepairCompleted(ctx context.Context, films, linksAdded int, duration time.Duration) error {
	if !n.imports {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return n.send(ctx, payload{
		title:   "Marquee - Repair Complete",
		message: fmt.Sprintf("Checked %d films, added %d back-references in %s", films, linksAdded, duration),
		tags:    []string{"marquee", "repair", "completed"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Marquee - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"marquee", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
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

func (noopService) NotifyImportCompleted(context.Context, string, int, int) error { return nil }
func (noopService) NotifyMissingPeople(context.Context, string, []string) error   { return nil }
func (noopService) NotifyImportFailed(context.Context, string, error) error       { return nil }
func (noopService) NotifyRepairCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) TestNotification(context.Context) error { return nil }

// NewNoop returns a Service that discards every notification.
func NewNoop() Service {
	return noopService{}
}
