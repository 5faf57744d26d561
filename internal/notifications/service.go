package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"reelsync/internal/config"
	"reelsync/internal/logging"
	"reelsync/internal/services"
)

const defaultServer = "https://ntfy.sh/"

// Service publishes page lifecycle events to an ntfy topic. Event categories
// can be muted individually through configuration.
type Service struct {
	topicURL   string
	client     *http.Client
	synced     bool
	duplicates bool
	errors     bool
	logger     *slog.Logger
}

// NewService builds a Service from configuration. A bare topic name is
// published against the public ntfy.sh server; a full URL is used as-is.
func NewService(cfg config.Notifications, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	topicURL := strings.TrimSpace(cfg.NtfyTopic)
	if topicURL != "" && !strings.Contains(topicURL, "://") {
		topicURL = defaultServer + topicURL
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		topicURL:   topicURL,
		client:     &http.Client{Timeout: timeout},
		synced:     cfg.Synced,
		duplicates: cfg.Duplicates,
		errors:     cfg.Errors,
		logger:     logger.With(logging.String(logging.FieldComponent, "notifications")),
	}
}

// Enabled reports whether a topic is configured.
func (s *Service) Enabled() bool {
	return s.topicURL != ""
}

// NotifyPageSynced announces a completed first-time sync.
func (s *Service) NotifyPageSynced(ctx context.Context, title string) {
	if !s.synced {
		return
	}
	s.publish(ctx, "Synced", fmt.Sprintf("%s is now in your catalog", title), "white_check_mark")
}

// NotifyDuplicate announces a duplicate page scheduled for archive.
func (s *Service) NotifyDuplicate(ctx context.Context, title string) {
	if !s.duplicates {
		return
	}
	s.publish(ctx, "Duplicate", fmt.Sprintf("%s already exists and will be archived", title), "wastebasket")
}

// NotifySyncError announces a failed resolution.
func (s *Service) NotifySyncError(ctx context.Context, title, message string) {
	if !s.errors {
		return
	}
	s.publish(ctx, "Sync failed", fmt.Sprintf("%s: %s", title, message), "warning")
}

// TestNotification sends a test message, returning the publish error so the
// CLI can surface it.
func (s *Service) TestNotification(ctx context.Context) error {
	if !s.Enabled() {
		return services.Wrap(services.ErrConfiguration, "notifications", "test",
			"no ntfy topic configured", nil)
	}
	return s.send(ctx, "Test notification", "reelsync notifications are working", "tada")
}

func (s *Service) publish(ctx context.Context, title, message, tags string) {
	if !s.Enabled() {
		return
	}
	if err := s.send(ctx, title, message, tags); err != nil {
		s.logger.Warn("notification delivery failed", logging.Error(err))
	}
}

func (s *Service) send(ctx context.Context, title, message, tags string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.topicURL, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Title", title)
	req.Header.Set("Tags", tags)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("notification rejected with status %d", resp.StatusCode)
	}
	return nil
}
