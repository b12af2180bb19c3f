package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// Sender delivers one notification to one subscriber. The default
// implementation only logs; a real mail transport can be plugged in.
type Sender interface {
	Send(ctx context.Context, email, subject, body string) error
}

// LogSender writes notifications to the log instead of sending mail.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger.With("component", "sender")}
}

func (s *LogSender) Send(ctx context.Context, email, subject, body string) error {
	s.logger.Info("notification dispatched",
		"email", email,
		"subject", subject,
		"body_bytes", len(body))
	return nil
}

// Notifier fans new events out to every subscriber. Notification is
// best effort: failures are logged and never propagate to the caller.
type Notifier struct {
	store  storage.Store
	sender Sender
	logger *slog.Logger
}

func NewNotifier(store storage.Store, sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if sender == nil {
		sender = NewLogSender(logger)
	}
	return &Notifier{
		store:  store,
		sender: sender,
		logger: logger.With("component", "notifier"),
	}
}

// NotifyNewEvents sends one digest per subscriber describing the newly
// inserted events. Empty input and an empty subscriber list are both
// no-ops, and no notification log entry is written for either.
func (n *Notifier) NotifyNewEvents(ctx context.Context, events []types.Event, now time.Time) {
	if len(events) == 0 {
		n.logger.Debug("no new events, skipping notification")
		return
	}

	subscribers, err := n.store.ListSubscribers(ctx)
	if err != nil {
		n.logger.Error("failed to list subscribers", "error", err)
		return
	}
	if len(subscribers) == 0 {
		n.logger.Debug("no subscribers, skipping notification")
		return
	}

	subject := fmt.Sprintf("%d new Sydney events just dropped", len(events))
	body := renderDigest(events)

	sent := 0
	for _, sub := range subscribers {
		if err := n.sender.Send(ctx, sub.Email, subject, body); err != nil {
			n.logger.Warn("failed to notify subscriber", "email", sub.Email, "error", err)
			continue
		}
		sent++
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	entry := types.NotificationLog{
		Timestamp:       now,
		SubscriberCount: sent,
		EventCount:      len(events),
		EventIDs:        ids,
	}
	if err := n.store.AppendNotificationLog(ctx, entry); err != nil {
		n.logger.Error("failed to record notification log", "error", err)
		return
	}

	n.logger.Info("notified subscribers of new events",
		"subscribers", sent,
		"events", len(events))
}

func renderDigest(events []types.Event) string {
	var b strings.Builder
	b.WriteString("<h2>New events in Sydney</h2>\n<ul>\n")
	for _, ev := range events {
		b.WriteString("<li><strong>")
		b.WriteString(ev.Title)
		b.WriteString("</strong> on ")
		b.WriteString(ev.Date.Format("Mon, 2 Jan 2006"))
		if ev.Location != "" {
			b.WriteString(" at ")
			b.WriteString(ev.Location)
		}
		if ev.URL != "" {
			b.WriteString(` (<a href="`)
			b.WriteString(ev.URL)
			b.WriteString(`">details</a>)`)
		}
		b.WriteString("</li>\n")
	}
	b.WriteString("</ul>\n")
	return b.String()
}
