// Package sms delivers billing notifications by text message.
package sms

import (
	"context"
	"log/slog"

	"github.com/mickey-water/billing/internal/models"
)

// Sender delivers a single text message.
type Sender interface {
	Send(ctx context.Context, msg models.SMSMessage) error
}

// LogSender records messages in the log instead of delivering them. It is
// used until a gateway is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a logging sender.
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(ctx context.Context, msg models.SMSMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "sms would be sent", "to", msg.To, "length", len(msg.Body), "message", msg.Body)
	return nil
}
