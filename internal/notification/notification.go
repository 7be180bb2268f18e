// Package notification delivers SMS messages for dispatch events.
package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/ttacon/libphonenumber"
	"go.uber.org/zap"
)

// Message is a single outbound SMS. Ref identifies the message across
// retries and log lines.
type Message struct {
	Ref  uuid.UUID
	To   string
	Body string
}

// Sender delivers a message to a phone number. Implementations must not
// panic; delivery failures surface as errors and never reach the caller's
// request path.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Normalize parses a raw phone number against the configured region and
// returns it in E.164 form. Local Sri Lankan numbers like 0771234567 come
// back as +94771234567.
func Normalize(raw, region string) (string, error) {
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("parse phone %q: %w", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// LogSender writes messages to the log instead of a gateway. It stands in
// for a real SMS provider in development and tests.
type LogSender struct {
	log    *zap.Logger
	sender string
}

func NewLogSender(cfg config.Config, log *zap.Logger) *LogSender {
	return &LogSender{
		log:    log.Named("notification.sms"),
		sender: cfg.SMSSenderName,
	}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("sms dispatched",
		zap.String("ref", msg.Ref.String()),
		zap.String("from", s.sender),
		zap.String("to", msg.To),
		zap.String("body", msg.Body),
	)
	return nil
}
