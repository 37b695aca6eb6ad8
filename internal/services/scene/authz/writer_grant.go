// Package authz verifies the writer grants that guard scene mutations.
package authz

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/louisbranch/courtroom.space/internal/platform/errors"
	"github.com/louisbranch/courtroom.space/internal/platform/id"
)

const (
	EnvWriterIssuer     = "COURTROOM_SPACE_WRITER_ISSUER"
	EnvWriterAudience   = "COURTROOM_SPACE_WRITER_AUDIENCE"
	EnvWriterPublicKey  = "COURTROOM_SPACE_WRITER_PUBLIC_KEY"
	EnvWriterPrivateKey = "COURTROOM_SPACE_WRITER_PRIVATE_KEY"
)

// writerGrantEnv holds raw env values before post-parse validation.
type writerGrantEnv struct {
	Issuer    string `env:"COURTROOM_SPACE_WRITER_ISSUER"`
	Audience  string `env:"COURTROOM_SPACE_WRITER_AUDIENCE"`
	PublicKey string `env:"COURTROOM_SPACE_WRITER_PUBLIC_KEY"`
}

// WriterGrantConfig defines how writer grants are verified. A config without
// a key disables verification.
type WriterGrantConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// Enabled reports whether writes must carry a grant.
func (c WriterGrantConfig) Enabled() bool {
	return len(c.Key) > 0
}

// WriterGrantClaims captures validated writer grant claims.
type WriterGrantClaims struct {
	Issuer    string
	Audience  []string
	Subject   string
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
}

type writerGrantClaims struct {
	jwt.RegisteredClaims
}

// LoadWriterGrantConfigFromEnv reads writer grant verification configuration.
// Without a public key the returned config is disabled; with one, issuer and
// audience are required.
func LoadWriterGrantConfigFromEnv(now func() time.Time) (WriterGrantConfig, error) {
	var raw writerGrantEnv
	if err := env.Parse(&raw); err != nil {
		return WriterGrantConfig{}, fmt.Errorf("parse writer grant env: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	publicKey := strings.TrimSpace(raw.PublicKey)
	if publicKey == "" {
		return WriterGrantConfig{Now: now}, nil
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	if issuer == "" {
		return WriterGrantConfig{}, fmt.Errorf("%s is required", EnvWriterIssuer)
	}
	if audience == "" {
		return WriterGrantConfig{}, fmt.Errorf("%s is required", EnvWriterAudience)
	}
	key, err := DecodePublicKey(publicKey)
	if err != nil {
		return WriterGrantConfig{}, err
	}
	return WriterGrantConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      key,
		Now:      now,
	}, nil
}

// DecodePublicKey decodes a base64 Ed25519 public key.
func DecodePublicKey(value string) (ed25519.PublicKey, error) {
	keyBytes, err := decodeBase64(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("decode writer public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("writer public key must be %d bytes", ed25519.PublicKeySize)
	}
	return ed25519.PublicKey(keyBytes), nil
}

// DecodePrivateKey decodes a base64 Ed25519 private key.
func DecodePrivateKey(value string) (ed25519.PrivateKey, error) {
	keyBytes, err := decodeBase64(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("decode writer private key: %w", err)
	}
	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("writer private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(keyBytes), nil
}

// GrantRequest describes a writer grant to sign.
type GrantRequest struct {
	Issuer   string
	Audience string
	Subject  string
	TTL      time.Duration
	Now      time.Time
}

// IssueWriterGrant signs an EdDSA writer grant.
func IssueWriterGrant(key ed25519.PrivateKey, req GrantRequest) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return "", errors.New("writer private key is required")
	}
	if strings.TrimSpace(req.Issuer) == "" || strings.TrimSpace(req.Audience) == "" {
		return "", errors.New("issuer and audience are required")
	}
	if strings.TrimSpace(req.Subject) == "" {
		return "", errors.New("subject is required")
	}
	if req.TTL <= 0 {
		return "", errors.New("ttl must be positive")
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}
	claims := writerGrantClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    req.Issuer,
		Subject:   req.Subject,
		Audience:  jwt.ClaimStrings{req.Audience},
		ExpiresAt: jwt.NewNumericDate(now.Add(req.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        jti,
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign writer grant: %w", err)
	}
	return signed, nil
}

// ValidateWriterGrant verifies a writer grant token against cfg.
func ValidateWriterGrant(grant string, cfg WriterGrantConfig) (WriterGrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return WriterGrantClaims{}, apperrors.New(apperrors.CodeWriteGrantMissing, "writer grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return WriterGrantClaims{}, errors.New("writer grant verifier is not configured")
	}

	var parsed writerGrantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return WriterGrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return WriterGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeWriteGrantMismatch,
			"writer grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !slices.Contains([]string(parsed.Audience), cfg.Audience) {
		return WriterGrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeWriteGrantMismatch,
			"writer grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return WriterGrantClaims{}, apperrors.New(apperrors.CodeWriteGrantInvalid, "writer grant sub is required")
	}
	if parsed.ExpiresAt == nil {
		return WriterGrantClaims{}, apperrors.New(apperrors.CodeWriteGrantInvalid, "writer grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return WriterGrantClaims{}, apperrors.New(apperrors.CodeWriteGrantExpired, "writer grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return WriterGrantClaims{}, apperrors.New(apperrors.CodeWriteGrantInvalid, "writer grant not active yet")
	}

	claims := WriterGrantClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		Subject:   parsed.Subject,
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.Wrap(apperrors.CodeWriteGrantInvalid, "writer grant signature is invalid", err)
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.Wrap(apperrors.CodeWriteGrantInvalid, "writer grant alg is invalid", err)
	}
	return apperrors.Wrap(apperrors.CodeWriteGrantInvalid, "writer grant is invalid", err)
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
