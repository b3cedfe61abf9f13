// Package transport abstracts the conversational channel the intake
// pipeline answers on.
package transport

import (
	"context"

	"github.com/munidigital/tramite-backend/pkg/logger"
)

// Messenger delivers replies back to a requester. Implementations wrap a
// messaging platform; delivery is best-effort and must never block case
// registration.
type Messenger interface {
	// SendMessage delivers one text message to the requester.
	SendMessage(ctx context.Context, recipientKey, text string) error

	// SendTyping shows a typing indicator. Failures are swallowed; the
	// indicator is cosmetic.
	SendTyping(ctx context.Context, recipientKey string)
}

// LogMessenger writes outbound messages to the log instead of a messaging
// platform. Default in development and in deployments without a channel.
type LogMessenger struct {
	logger *logger.Logger
}

// NewLogMessenger creates a messenger that only logs.
func NewLogMessenger(log *logger.Logger) *LogMessenger {
	return &LogMessenger{logger: log.WithComponent("messenger")}
}

func (m *LogMessenger) SendMessage(_ context.Context, recipientKey, text string) error {
	m.logger.Info().
		Str("recipient", recipientKey).
		Str("text", text).
		Msg("outbound message")
	return nil
}

func (m *LogMessenger) SendTyping(_ context.Context, recipientKey string) {
	m.logger.Debug().
		Str("recipient", recipientKey).
		Msg("typing indicator")
}
