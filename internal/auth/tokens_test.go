package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	id := uuid.New()

	token, expiresAt, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expiresAt) <= 59*time.Minute {
		t.Errorf("unexpected expiry %s", expiresAt)
	}

	got, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got != id {
		t.Errorf("expected session %s, got %s", id, got)
	}
}

func TestValidateRejects(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	id := uuid.New()
	good, _, _ := svc.Issue(id)

	expired := NewTokenService("test-secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.Issue(id)

	other := NewTokenService("other-secret", time.Hour)
	forged, _, _ := other.Issue(id)

	noSession, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	badSession, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": "not-a-uuid",
		"exp":        time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": id.String(),
	}).SignedString([]byte("test-secret"))

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"truncated", good[:len(good)-4]},
		{"expired", old},
		{"wrong key", forged},
		{"missing session", noSession},
		{"malformed session", badSession},
		{"missing expiry", noExpiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}
