// Package guard centralizes role-based authorization decisions so route
// handlers do not carry their own checks.
package guard

import (
	"context"
	"strings"

	"github.com/stagehandhq/stagehand/internal/auth/session"
	apperrors "github.com/stagehandhq/stagehand/internal/platform/errors"
	"github.com/stagehandhq/stagehand/internal/platform/requestctx"
)

// Authenticate resolves the authenticated identity from the request context.
// Absence of identity is an unauthenticated failure (HTTP 401).
func Authenticate(ctx context.Context) (session.Identity, error) {
	raw, ok := requestctx.IdentityFromContext(ctx)
	if !ok {
		return session.Identity{}, apperrors.New(apperrors.CodeUnauthenticated, "authentication is required")
	}
	role, err := session.ParseRole(raw.Role)
	if err != nil {
		return session.Identity{}, err
	}
	return session.Identity{UserID: raw.UserID, Role: role}, nil
}

// RequireOrganizer resolves the identity and rejects non-organizer roles.
// A present identity with an insufficient role is a forbidden failure (403).
func RequireOrganizer(ctx context.Context) (session.Identity, error) {
	identity, err := Authenticate(ctx)
	if err != nil {
		return session.Identity{}, err
	}
	if identity.Role != session.RoleOrganizer {
		return session.Identity{}, apperrors.WithMetadata(
			apperrors.CodeForbidden,
			"organizer role is required",
			map[string]string{"Role": string(identity.Role)},
		)
	}
	return identity, nil
}

// DefaultOwner returns the explicit owner when provided, otherwise the
// requesting identity's user id.
func DefaultOwner(identity session.Identity, ownerID string) string {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID != "" {
		return ownerID
	}
	return identity.UserID
}
