package services

import (
	"testing"
	"time"

	"github.com/Habib-0007/habsblog-api/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	user, err := svc.Register(RegisterInput{
		Name:     "Alice",
		Email:    "Alice@Example.COM",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.Role != models.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, models.RoleUser)
	}
	if user.PasswordHash == "secret123" {
		t.Error("password stored in plain text")
	}

	if _, err := svc.Login("alice@example.com", "secret123"); err != nil {
		t.Errorf("Login() error = %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	tests := []struct {
		name     string
		input    RegisterInput
		wantKind Kind
	}{
		{"missing name", RegisterInput{Email: "a@b.com", Password: "secret123"}, KindValidation},
		{"missing email", RegisterInput{Name: "A", Password: "secret123"}, KindValidation},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret123"}, KindValidation},
		{"short password", RegisterInput{Name: "A", Email: "a@b.com", Password: "12345"}, KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.input)
			if got := kindOf(t, err); got != tt.wantKind {
				t.Errorf("Register() kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	in := RegisterInput{Name: "Alice", Email: "alice@example.com", Password: "secret123"}
	if _, err := svc.Register(in); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, err := svc.Register(in)
	if got := kindOf(t, err); got != KindConflict {
		t.Errorf("second Register() kind = %v, want %v", got, KindConflict)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	if _, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "secret123"},
		{"wrong password", "alice@example.com", "wrong-pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(tt.email, tt.password)
			if got := kindOf(t, err); got != KindUnauthenticated {
				t.Errorf("Login() kind = %v, want %v", got, KindUnauthenticated)
			}
		})
	}
}

func TestRefreshFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	user, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := svc.IssueTokens(user)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("IssueTokens() returned an empty token")
	}

	access, err := svc.Refresh(pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if access == "" {
		t.Error("Refresh() returned an empty access token")
	}

	if _, err := svc.Refresh("bogus-token"); KindOf(err) != KindUnauthenticated {
		t.Errorf("Refresh(bogus) kind = %v, want %v", KindOf(err), KindUnauthenticated)
	}
}

func TestLogoutDeletesRefreshToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	user, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	pair, err := svc.IssueTokens(user)
	if err != nil {
		t.Fatalf("IssueTokens() error = %v", err)
	}

	actor := Actor{ID: user.ID, Role: user.Role}
	if err := svc.Logout(actor, pair.RefreshToken, ""); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.Refresh(pair.RefreshToken); KindOf(err) != KindUnauthenticated {
		t.Errorf("Refresh() after logout kind = %v, want %v", KindOf(err), KindUnauthenticated)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	user, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.ForgotPassword("nobody@example.com"); KindOf(err) != KindNotFound {
		t.Errorf("ForgotPassword(unknown) kind = %v, want %v", KindOf(err), KindNotFound)
	}

	// The raw token leaves the system only by mail; plant one directly the
	// way ForgotPassword stores it.
	raw := "testresettoken"
	record := &models.AuthToken{
		UserID:    user.ID,
		Token:     hashResetToken(raw),
		Kind:      models.TokenPasswordReset,
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}
	if err := db.Create(record).Error; err != nil {
		t.Fatalf("plant reset token: %v", err)
	}

	if err := svc.ResetPassword("wrong-token", "newpass123"); KindOf(err) != KindValidation {
		t.Errorf("ResetPassword(wrong) kind = %v, want %v", KindOf(err), KindValidation)
	}

	if err := svc.ResetPassword(raw, "newpass123"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}
	if _, err := svc.Login("alice@example.com", "newpass123"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, err := svc.Login("alice@example.com", "secret123"); KindOf(err) != KindUnauthenticated {
		t.Errorf("Login() with old password kind = %v, want %v", KindOf(err), KindUnauthenticated)
	}

	// The token is single-use.
	if err := svc.ResetPassword(raw, "anotherpass"); KindOf(err) != KindValidation {
		t.Errorf("ResetPassword(reuse) kind = %v, want %v", KindOf(err), KindValidation)
	}
}

func TestUpdatePassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, newFakeStore())

	user, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	actor := Actor{ID: user.ID, Role: user.Role}

	if err := svc.UpdatePassword(actor, "wrong-pass", "newpass123"); KindOf(err) != KindUnauthenticated {
		t.Errorf("UpdatePassword(wrong current) kind = %v, want %v", KindOf(err), KindUnauthenticated)
	}
	if err := svc.UpdatePassword(actor, "secret123", "123"); KindOf(err) != KindValidation {
		t.Errorf("UpdatePassword(short) kind = %v, want %v", KindOf(err), KindValidation)
	}
	if err := svc.UpdatePassword(actor, "secret123", "newpass123"); err != nil {
		t.Fatalf("UpdatePassword() error = %v", err)
	}
	if _, err := svc.Login("alice@example.com", "newpass123"); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	store := newFakeStore()
	svc := NewAuthService(db, store)

	user, err := svc.Register(RegisterInput{
		Name: "Alice", Email: "alice@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(RegisterInput{
		Name: "Bob", Email: "bob@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register(bob) error = %v", err)
	}
	actor := Actor{ID: user.ID, Role: user.Role}

	updated, err := svc.UpdateProfile(actor, UpdateProfileInput{
		Name:   "Alice Cooper",
		Bio:    "writes about Go",
		Avatar: "data:image/png;base64,aGk=",
	})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Name != "Alice Cooper" || updated.Bio != "writes about Go" {
		t.Errorf("profile = (%q, %q), want updated values", updated.Name, updated.Bio)
	}
	if updated.Avatar == "" {
		t.Error("Avatar not set after upload")
	}

	_, err = svc.UpdateProfile(actor, UpdateProfileInput{Email: "bob@example.com"})
	if got := kindOf(t, err); got != KindConflict {
		t.Errorf("UpdateProfile(taken email) kind = %v, want %v", got, KindConflict)
	}
}
