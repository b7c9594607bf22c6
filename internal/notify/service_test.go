package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type mockEmailSender struct {
	sent    []EmailMessage
	callErr error
}

func (m *mockEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if m.callErr != nil {
		return m.callErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestSendVerificationCode(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, ServiceConfig{CodeTTL: 15 * time.Minute}, nil)

	err := svc.SendVerificationCode(context.Background(), "ana@example.com", "Ana", "482913")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.To != "ana@example.com" {
		t.Errorf("wrong recipient: %s", msg.To)
	}
	if !strings.Contains(msg.Subject, "482913") {
		t.Errorf("subject should carry the code, got %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "482913") {
		t.Error("body should carry the code")
	}
	if !strings.Contains(msg.Body, "15 minutes") {
		t.Errorf("body should mention expiry, got %q", msg.Body)
	}
	if msg.HTML == "" {
		t.Error("expected an HTML variant")
	}
}

func TestSendVerificationCode_EmptyName(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, ServiceConfig{}, nil)

	if err := svc.SendVerificationCode(context.Background(), "x@example.com", "", "000001"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "Hi there") {
		t.Error("expected fallback greeting for empty name")
	}
}

func TestSendPasswordReset(t *testing.T) {
	sender := &mockEmailSender{}
	svc := NewService(sender, ServiceConfig{AppName: "VitaLink", CodeTTL: 30 * time.Minute}, nil)

	err := svc.SendPasswordReset(context.Background(), "bo@example.com", "Bo", "771204")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := sender.sent[0]
	if !strings.Contains(msg.Subject, "password reset") {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.Body, "771204") {
		t.Error("body should carry the reset code")
	}
	if !strings.Contains(msg.Body, "30 minutes") {
		t.Errorf("body should mention expiry, got %q", msg.Body)
	}
}

func TestService_SendFailure(t *testing.T) {
	sender := &mockEmailSender{callErr: errors.New("smtp down")}
	svc := NewService(sender, ServiceConfig{}, nil)

	if err := svc.SendVerificationCode(context.Background(), "x@example.com", "X", "123456"); err == nil {
		t.Error("expected error when sender fails")
	}
	if err := svc.SendPasswordReset(context.Background(), "x@example.com", "X", "123456"); err == nil {
		t.Error("expected error when sender fails")
	}
}

func TestService_NilSender(t *testing.T) {
	svc := NewService(nil, ServiceConfig{}, nil)

	// Sending without a configured provider is a no-op, not a failure. The
	// code is logged so local development still works.
	if err := svc.SendVerificationCode(context.Background(), "x@example.com", "X", "123456"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := svc.SendPasswordReset(context.Background(), "x@example.com", "X", "123456"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
