package notifications

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

const previewRunes = 80

// LogNotifier delivers contact messages to the structured log. It is the
// default delivery channel until a mail provider is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendContactMessage(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.contact_message",
		"name", msg.Name,
		"email", msg.Email,
		"length", utf8.RuneCountInString(msg.Message),
		"preview", preview(msg.Message),
	)
	return nil
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes]) + "…"
}
