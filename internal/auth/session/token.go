// Package session verifies role-bearing session tokens issued by the
// identity provider and exposes the authenticated identity they carry.
package session

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stagehandhq/stagehand/internal/platform/config"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
)

// Role is a platform role carried by a session token.
type Role string

const (
	// RoleOrganizer may create and manage events.
	RoleOrganizer Role = "ORGANIZER"
	// RoleCoreMember works tasks but cannot manage events.
	RoleCoreMember Role = "CORE_MEMBER"
	// RoleVolunteer has the same task access as core members.
	RoleVolunteer Role = "VOLUNTEER"
)

// ParseRole validates a raw role string from a token claim.
func ParseRole(value string) (Role, error) {
	switch Role(strings.TrimSpace(value)) {
	case RoleOrganizer:
		return RoleOrganizer, nil
	case RoleCoreMember:
		return RoleCoreMember, nil
	case RoleVolunteer:
		return RoleVolunteer, nil
	default:
		return "", apperrors.WithMetadata(
			apperrors.CodeSessionInvalid,
			"session role is not recognized",
			map[string]string{"Role": value},
		)
	}
}

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID string
	Role   Role
}

// Config defines how session tokens are verified.
type Config struct {
	Issuer   string
	Audience string
	Key      ed25519.PublicKey
	Now      func() time.Time
}

// sessionEnv holds raw env values before post-parse validation.
type sessionEnv struct {
	Issuer    string `env:"STAGEHAND_SESSION_ISSUER"`
	Audience  string `env:"STAGEHAND_SESSION_AUDIENCE"`
	PublicKey string `env:"STAGEHAND_SESSION_PUBLIC_KEY"`
}

// sessionClaims is the internal claims type used for JWT parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// LoadConfigFromEnv reads session verification configuration.
func LoadConfigFromEnv(now func() time.Time) (Config, error) {
	var raw sessionEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("parse session env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	publicKey := strings.TrimSpace(raw.PublicKey)
	if issuer == "" {
		return Config{}, fmt.Errorf("STAGEHAND_SESSION_ISSUER is required")
	}
	if audience == "" {
		return Config{}, fmt.Errorf("STAGEHAND_SESSION_AUDIENCE is required")
	}
	if publicKey == "" {
		return Config{}, fmt.Errorf("STAGEHAND_SESSION_PUBLIC_KEY is required")
	}
	keyBytes, err := decodeBase64(publicKey)
	if err != nil {
		return Config{}, fmt.Errorf("decode session public key: %w", err)
	}
	if len(keyBytes) != ed25519.PublicKeySize {
		return Config{}, fmt.Errorf("session public key must be %d bytes", ed25519.PublicKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return Config{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PublicKey(keyBytes),
		Now:      now,
	}, nil
}

// Verify checks a session token and returns the identity it carries.
func Verify(token string, cfg Config) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperrors.New(apperrors.CodeUnauthenticated, "session token is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PublicKeySize {
		return Identity{}, errors.New("session verifier is not configured")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(token *jwt.Token) (any, error) {
		return cfg.Key, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Identity{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeSessionInvalid,
			"session token issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return Identity{}, apperrors.WithMetadata(
			apperrors.CodeSessionInvalid,
			"session token audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}
	if strings.TrimSpace(parsed.Subject) == "" {
		return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session token sub is required")
	}
	if parsed.ExpiresAt == nil {
		return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session token exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return Identity{}, apperrors.New(apperrors.CodeSessionExpired, "session token is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return Identity{}, apperrors.New(apperrors.CodeSessionInvalid, "session token not active yet")
		}
	}

	role, err := ParseRole(parsed.Role)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID: strings.TrimSpace(parsed.Subject),
		Role:   role,
	}, nil
}

// MintConfig defines how session tokens are signed.
type MintConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PrivateKey
	TTL      time.Duration
	Now      func() time.Time
}

// Mint signs a session token for the given identity. It backs the local
// token CLI command and tests; production tokens come from the identity
// provider.
func Mint(userID string, role Role, cfg MintConfig) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("user id is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return "", err
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PrivateKeySize {
		return "", errors.New("session minter is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}

	now := cfg.Now().UTC()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeSessionInvalid, "session token signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeSessionInvalid, "session token alg is invalid")
	}
	return apperrors.New(apperrors.CodeSessionInvalid, "session token is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
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
