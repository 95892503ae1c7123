// Package session verifies caller session grants.
//
// A session grant is a short-lived JWT minted by the auth layer (out of
// scope here) that tells the governance core who is calling: the tenant,
// their plan tier, and their role. Grants are verified against an ed25519
// public key distributed through the environment; issuance never happens
// in this process.
package session

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plumehq/plume/internal/governance/domain"
	"github.com/plumehq/plume/internal/platform/config"
	apperrors "github.com/plumehq/plume/internal/platform/errors"
)

// Role is the caller's role within a tenant.
type Role string

const (
	// RoleMember is a regular tenant user.
	RoleMember Role = "member"
	// RoleOperator is an elevated operator; only operators hold the daily
	// gate bypass.
	RoleOperator Role = "operator"
)

// Grant captures a verified caller session.
type Grant struct {
	TenantID  string
	PlanTier  domain.PlanTier
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
	JWTID     string
}

// HoldsBypass reports whether the grant carries the elevated daily-gate
// bypass.
func (g Grant) HoldsBypass() bool {
	return g.Role == RoleOperator
}

// verifierEnv holds raw env values before post-parse validation.
type verifierEnv struct {
	Issuer    string `env:"PLUME_SESSION_ISSUER"`
	Audience  string `env:"PLUME_SESSION_AUDIENCE"`
	PublicKey string `env:"PLUME_SESSION_PUBLIC_KEY"`
}

// VerifierConfig defines how session grants are verified.
type VerifierConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tenant_id"`
	PlanTier string `json:"plan_tier"`
	Role     string `json:"role"`
}

// LoadVerifierConfigFromEnv reads session grant verification configuration.
func LoadVerifierConfigFromEnv(now func() time.Time) (VerifierConfig, error) {
	var raw verifierEnv
	if err := config.ParseEnv(&raw); err != nil {
		return VerifierConfig{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return VerifierConfig{}, fmt.Errorf("PLUME_SESSION_ISSUER is required")
	}
	if audience == "" {
		return VerifierConfig{}, fmt.Errorf("PLUME_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return VerifierConfig{}, fmt.Errorf("PLUME_SESSION_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return VerifierConfig{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return VerifierConfig{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return VerifierConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// Verify checks a session grant token and extracts the caller identity.
func Verify(token string, cfg VerifierConfig) (Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantInvalid, "session grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Grant{}, errors.New("session grant verifier is not configured")
	}

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Grant{}, apperrors.Wrap(apperrors.CodeSessionGrantInvalid, "parse session grant", err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Grant{}, apperrors.WithMetadata(
			apperrors.CodeSessionGrantInvalid,
			"session grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Grant{}, apperrors.WithMetadata(
			apperrors.CodeSessionGrantInvalid,
			"session grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if parsed.ID == "" {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantInvalid, "session grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantInvalid, "session grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantExpired, "session grant is expired")
	}
	if parsed.NotBefore != nil && now.Before(parsed.NotBefore.Time.UTC()) {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantInvalid, "session grant not active yet")
	}

	tenantID := strings.TrimSpace(parsed.TenantID)
	if tenantID == "" {
		return Grant{}, apperrors.New(apperrors.CodeSessionGrantInvalid, "session grant tenant is required")
	}
	tier, err := domain.ParseTier(parsed.PlanTier)
	if err != nil {
		return Grant{}, apperrors.Wrap(apperrors.CodeSessionGrantInvalid, "session grant plan tier", err)
	}
	role, err := parseRole(parsed.Role)
	if err != nil {
		return Grant{}, apperrors.Wrap(apperrors.CodeSessionGrantInvalid, "session grant role", err)
	}

	grant := Grant{
		TenantID:  tenantID,
		PlanTier:  tier,
		Role:      role,
		ExpiresAt: exp,
		JWTID:     parsed.ID,
	}
	if parsed.IssuedAt != nil {
		grant.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return grant, nil
}

func parseRole(value string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "member":
		return RoleMember, nil
	case "operator":
		return RoleOperator, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

func audienceContains(audience jwt.ClaimStrings, expected string) bool {
	for _, value := range audience {
		if value == expected {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(value)
}
