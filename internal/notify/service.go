package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/vitalink/vitalink-api/pkg/logging"
)

// Service sends account emails (verification codes, password resets) through
// whichever EmailSender is configured.
type Service struct {
	email   EmailSender
	appName string
	codeTTL time.Duration
	logger  *logging.Logger
}

// ServiceConfig holds notification service settings.
type ServiceConfig struct {
	AppName string
	CodeTTL time.Duration
}

// NewService creates a notification service.
func NewService(email EmailSender, cfg ServiceConfig, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.AppName == "" {
		cfg.AppName = "VitaLink"
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = 15 * time.Minute
	}
	return &Service{
		email:   email,
		appName: cfg.AppName,
		codeTTL: cfg.CodeTTL,
		logger:  logger,
	}
}

// SendVerificationCode emails a newly registered user their 6-digit code.
func (s *Service) SendVerificationCode(ctx context.Context, to, name, code string) error {
	if s.email == nil {
		s.logger.Warn("notify: no email sender configured, dropping verification code", "to", to)
		return nil
	}
	if name == "" {
		name = "there"
	}
	minutes := int(s.codeTTL.Minutes())

	subject := fmt.Sprintf("%s verification code: %s", s.appName, code)
	body := fmt.Sprintf(`Hi %s,

Your %s verification code is:

    %s

Enter this code in the app to activate your account. It expires in %d minutes.

If you did not create an account, you can ignore this email.

— The %s Team`, name, s.appName, code, minutes, s.appName)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px;">
<p>Hi %s,</p>
<p>Your %s verification code is:</p>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold; background: #f3f4f6; padding: 16px; border-radius: 8px; text-align: center;">%s</p>
<p>Enter this code in the app to activate your account. It expires in %d minutes.</p>
<p style="color: #6b7280; font-size: 12px;">If you did not create an account, you can ignore this email.</p>
<p style="color: #6b7280; font-size: 12px;">— The %s Team</p>
</div>`, name, s.appName, code, minutes, s.appName)

	msg := EmailMessage{
		To:      to,
		ToName:  name,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: verification email: %w", err)
	}
	s.logger.Info("verification code sent", "to", to)
	return nil
}

// SendPasswordReset emails a password reset code.
func (s *Service) SendPasswordReset(ctx context.Context, to, name, code string) error {
	if s.email == nil {
		s.logger.Warn("notify: no email sender configured, dropping reset code", "to", to)
		return nil
	}
	if name == "" {
		name = "there"
	}
	minutes := int(s.codeTTL.Minutes())

	subject := fmt.Sprintf("%s password reset", s.appName)
	body := fmt.Sprintf(`Hi %s,

We received a request to reset your %s password. Your reset code is:

    %s

The code expires in %d minutes. If you did not request a reset, your account
is still secure and no action is needed.

— The %s Team`, name, s.appName, code, minutes, s.appName)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px;">
<p>Hi %s,</p>
<p>We received a request to reset your %s password. Your reset code is:</p>
<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold; background: #f3f4f6; padding: 16px; border-radius: 8px; text-align: center;">%s</p>
<p>The code expires in %d minutes. If you did not request a reset, your account is still secure and no action is needed.</p>
<p style="color: #6b7280; font-size: 12px;">— The %s Team</p>
</div>`, name, s.appName, code, minutes, s.appName)

	msg := EmailMessage{
		To:      to,
		ToName:  name,
		Subject: subject,
		Body:    body,
		HTML:    html,
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: password reset email: %w", err)
	}
	s.logger.Info("password reset code sent", "to", to)
	return nil
}
