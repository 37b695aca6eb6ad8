package authz

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
)

func generateKeys(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return pub, priv
}

func issue(t *testing.T, priv ed25519.PrivateKey, req GrantRequest) string {
	t.Helper()
	grant, err := IssueWriterGrant(priv, req)
	if err != nil {
		t.Fatalf("issue grant: %v", err)
	}
	return grant
}

func TestLoadWriterGrantConfigFromEnv(t *testing.T) {
	t.Setenv(EnvWriterIssuer, "")
	t.Setenv(EnvWriterAudience, "")
	t.Setenv(EnvWriterPublicKey, "")

	cfg, err := LoadWriterGrantConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load disabled config: %v", err)
	}
	if cfg.Enabled() {
		t.Fatal("expected config without key to be disabled")
	}

	pub, _ := generateKeys(t)
	t.Setenv(EnvWriterPublicKey, base64.RawStdEncoding.EncodeToString(pub))
	if _, err := LoadWriterGrantConfigFromEnv(nil); err == nil {
		t.Fatal("expected error when issuer is missing")
	}

	t.Setenv(EnvWriterIssuer, "scenectl")
	t.Setenv(EnvWriterAudience, "scene")
	cfg, err = LoadWriterGrantConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.Enabled() || cfg.Issuer != "scenectl" || cfg.Audience != "scene" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadWriterGrantConfigRejectsShortKey(t *testing.T) {
	t.Setenv(EnvWriterIssuer, "scenectl")
	t.Setenv(EnvWriterAudience, "scene")
	t.Setenv(EnvWriterPublicKey, base64.StdEncoding.EncodeToString([]byte("short")))

	if _, err := LoadWriterGrantConfigFromEnv(nil); err == nil {
		t.Fatal("expected key size error")
	}
}

func TestValidateWriterGrantSuccess(t *testing.T) {
	pub, priv := generateKeys(t)
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	grant := issue(t, priv, GrantRequest{Issuer: "scenectl", Audience: "scene", Subject: "editor-1", TTL: time.Hour, Now: now})

	cfg := WriterGrantConfig{Issuer: "scenectl", Audience: "scene", Key: pub, Now: func() time.Time { return now.Add(time.Minute) }}
	claims, err := ValidateWriterGrant(grant, cfg)
	if err != nil {
		t.Fatalf("validate grant: %v", err)
	}
	if claims.Subject != "editor-1" {
		t.Fatalf("subject = %q, want editor-1", claims.Subject)
	}
	if !claims.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expires_at = %v, want %v", claims.ExpiresAt, now.Add(time.Hour))
	}
	if claims.JWTID == "" {
		t.Fatal("expected jti")
	}
}

func TestValidateWriterGrantFailures(t *testing.T) {
	pub, priv := generateKeys(t)
	_, otherPriv := generateKeys(t)
	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)
	cfg := WriterGrantConfig{Issuer: "scenectl", Audience: "scene", Key: pub, Now: func() time.Time { return now }}
	base := GrantRequest{Issuer: "scenectl", Audience: "scene", Subject: "editor-1", TTL: time.Hour, Now: now}

	expired := base
	expired.Now = now.Add(-2 * time.Hour)
	wrongAudience := base
	wrongAudience.Audience = "mcp"
	wrongIssuer := base
	wrongIssuer.Issuer = "someone"

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Issuer: "scenectl"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign hmac token: %v", err)
	}

	tests := []struct {
		name  string
		grant string
		code  apperrors.Code
	}{
		{"missing", "  ", apperrors.CodeWriteGrantMissing},
		{"garbage", "not-a-jwt", apperrors.CodeWriteGrantInvalid},
		{"wrong key", issue(t, otherPriv, base), apperrors.CodeWriteGrantInvalid},
		{"wrong alg", hmacToken, apperrors.CodeWriteGrantInvalid},
		{"expired", issue(t, priv, expired), apperrors.CodeWriteGrantExpired},
		{"wrong audience", issue(t, priv, wrongAudience), apperrors.CodeWriteGrantMismatch},
		{"wrong issuer", issue(t, priv, wrongIssuer), apperrors.CodeWriteGrantMismatch},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateWriterGrant(tc.grant, cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tc.code {
				t.Fatalf("code = %s, want %s (err %v)", got, tc.code, err)
			}
		})
	}
}

func TestValidateWriterGrantRequiresConfig(t *testing.T) {
	_, priv := generateKeys(t)
	grant := issue(t, priv, GrantRequest{Issuer: "a", Audience: "b", Subject: "c", TTL: time.Minute})
	if _, err := ValidateWriterGrant(grant, WriterGrantConfig{}); err == nil {
		t.Fatal("expected unconfigured verifier error")
	}
}

func TestIssueWriterGrantRejectsBadRequests(t *testing.T) {
	_, priv := generateKeys(t)
	if _, err := IssueWriterGrant(nil, GrantRequest{Issuer: "a", Audience: "b", Subject: "c", TTL: time.Minute}); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := IssueWriterGrant(priv, GrantRequest{Issuer: "a", Audience: "b", TTL: time.Minute}); err == nil {
		t.Fatal("expected missing subject error")
	}
	if _, err := IssueWriterGrant(priv, GrantRequest{Issuer: "a", Audience: "b", Subject: "c"}); err == nil {
		t.Fatal("expected ttl error")
	}
}

func TestDecodeKeys(t *testing.T) {
	pub, priv := generateKeys(t)
	gotPub, err := DecodePublicKey(base64.StdEncoding.EncodeToString(pub))
	if err != nil || !gotPub.Equal(pub) {
		t.Fatalf("DecodePublicKey = %v, %v", gotPub, err)
	}
	gotPriv, err := DecodePrivateKey(base64.RawStdEncoding.EncodeToString(priv))
	if err != nil || !gotPriv.Equal(priv) {
		t.Fatalf("DecodePrivateKey = %v, %v", gotPriv, err)
	}
	if _, err := DecodePrivateKey(base64.RawStdEncoding.EncodeToString(pub)); err == nil {
		t.Fatal("expected private key size error")
	}
}
