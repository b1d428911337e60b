package auth

import (
	"context"

	"go.uber.org/zap"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes the reset token to the log instead of sending mail.
type LogMailer struct {
	logger  *zap.Logger
	baseURL string
}

func NewLogMailer(logger *zap.Logger, baseURL string) *LogMailer {
	return &LogMailer{logger: logger, baseURL: baseURL}
}

func (m *LogMailer) SendPasswordReset(_ context.Context, email, token string) error {
	m.logger.Info("Password reset requested",
		zap.String("email", email),
		zap.String("link", m.baseURL+"/auth/password-reset/confirm?token="+token),
	)
	return nil
}
