package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vitalink/vitalink-api/internal/auth"
)

type recordingMailer struct {
	verifications []string
	resets        []string
}

func (m *recordingMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	m.verifications = append(m.verifications, code)
	return nil
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, to, name, code string) error {
	m.resets = append(m.resets, code)
	return nil
}

type fixture struct {
	handler *Handler
	repo    *InMemoryRepository
	mailer  *recordingMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := NewInMemoryRepository()
	mailer := &recordingMailer{}
	handler := NewHandler(repo, mailer, nil, HandlerConfig{BcryptCost: 4})
	return &fixture{handler: handler, repo: repo, mailer: mailer}
}

func (f *fixture) post(handlerFunc http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func (f *fixture) register(t *testing.T, email string) *User {
	t.Helper()
	rec := f.post(f.handler.Register, `{"name": "Test", "email": "`+email+`", "password": "long-enough-pw"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	user, err := f.repo.GetByEmail(context.Background(), email)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	return user
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ana@example.com")

	if user.Verified() {
		t.Error("new users start unverified")
	}
	if user.VerificationCode == nil || len(*user.VerificationCode) != 6 {
		t.Error("expected a 6-digit verification code")
	}
	if user.HashedPassword == "long-enough-pw" {
		t.Error("password must be hashed")
	}
	if len(f.mailer.verifications) != 1 {
		t.Errorf("expected 1 verification email, got %d", len(f.mailer.verifications))
	}
	if !auth.CheckPassword(user.HashedPassword, "long-enough-pw") {
		t.Error("stored hash should verify against the original password")
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad email", `{"name": "X", "email": "not-an-email", "password": "long-enough-pw"}`},
		{"short password", `{"name": "X", "email": "x@example.com", "password": "short"}`},
		{"bad json", `{`},
	}
	for _, tc := range cases {
		rec := f.post(f.handler.Register, tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")

	rec := f.post(f.handler.Register, `{"name": "Dup", "email": "ana@example.com", "password": "long-enough-pw"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestVerifyEmail(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ana@example.com")

	rec := f.post(f.handler.VerifyEmail, `{"email": "ana@example.com", "code": "000000"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("wrong code: expected 400, got %d", rec.Code)
	}

	rec = f.post(f.handler.VerifyEmail, `{"email": "ana@example.com", "code": "`+*user.VerificationCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, _ := f.repo.GetByEmail(context.Background(), "ana@example.com")
	if !updated.Verified() {
		t.Error("user should be verified")
	}

	// Verifying twice is idempotent.
	rec = f.post(f.handler.VerifyEmail, `{"email": "ana@example.com", "code": "anything"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("already verified: expected 200, got %d", rec.Code)
	}
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ana@example.com")

	f.handler.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	rec := f.post(f.handler.VerifyEmail, `{"email": "ana@example.com", "code": "`+*user.VerificationCode+`"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for expired code, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), ErrCodeExpired.Error()) {
		t.Errorf("expected expired-code error, got %q", rec.Body.String())
	}
}

func TestResendCodeRotates(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "ana@example.com")
	original := *user.VerificationCode

	rec := f.post(f.handler.ResendCode, `{"email": "ana@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	updated, _ := f.repo.GetByEmail(context.Background(), "ana@example.com")
	if *updated.VerificationCode == original {
		// 1 in 10^6 chance of a legitimate collision; treat as failure.
		t.Error("resend should rotate the code")
	}
	if len(f.mailer.verifications) != 2 {
		t.Errorf("expected 2 verification emails, got %d", len(f.mailer.verifications))
	}
}

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")

	known := f.post(f.handler.ForgotPassword, `{"email": "ana@example.com"}`)
	unknown := f.post(f.handler.ForgotPassword, `{"email": "nobody@example.com"}`)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Error("response must not reveal whether the email is registered")
	}
	if len(f.mailer.resets) != 1 {
		t.Errorf("expected 1 reset email, got %d", len(f.mailer.resets))
	}
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")
	f.post(f.handler.ForgotPassword, `{"email": "ana@example.com"}`)
	code := f.mailer.resets[0]

	rec := f.post(f.handler.ResetPassword, `{"email": "ana@example.com", "code": "`+code+`", "new_password": "brand-new-password"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	user, _ := f.repo.GetByEmail(context.Background(), "ana@example.com")
	if !auth.CheckPassword(user.HashedPassword, "brand-new-password") {
		t.Error("password should be updated")
	}
}

func TestResetPasswordRejectsWeakOrBadCode(t *testing.T) {
	f := newFixture(t)
	f.register(t, "ana@example.com")

	rec := f.post(f.handler.ResetPassword, `{"email": "ana@example.com", "code": "123456", "new_password": "short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("weak password: expected 400, got %d", rec.Code)
	}

	rec = f.post(f.handler.ResetPassword, `{"email": "ana@example.com", "code": "999999", "new_password": "long-enough-pw"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad code: expected 400, got %d", rec.Code)
	}
}

func TestGenerateCodeFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code := generateCode()
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes should vary")
	}
}

var _ Mailer = (*recordingMailer)(nil)
