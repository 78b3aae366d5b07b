package middleware

import (
	"context"
	"strings"

	"bakerybot/core/logger"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware logs a single receipt line per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		user := c.Sender()
		chat := c.Chat()

		attrs := []slog.Attr{
			slog.Int("update_id", upd.ID),
		}
		if chat != nil {
			attrs = append(attrs, slog.Int64("chat_id", chat.ID))
		}
		if user != nil {
			attrs = append(attrs, slog.Int64("user_id", user.ID))
		}

		switch {
		case upd.Callback != nil:
			key, payload := parseCallback(upd.Callback)
			if key != "" {
				attrs = append(attrs, slog.String("cb_key", limit(key, 128)))
			}
			if payload != "" {
				attrs = append(attrs, slog.String("payload", limit(payload, 256)))
			}
		case upd.Message != nil:
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", limit(t, 256)))
			}
		}
		logger.Debug(context.Background(), "tg", "update.received", attrs...)

		return next(c)
	}
}

func parseCallback(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\\f")
	parts := strings.SplitN(raw, "|", 2)
	key := strings.TrimSpace(parts[0])
	payload := ""
	if len(parts) == 2 {
		payload = parts[1]
	}
	return key, payload
}

func limit(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
