package httpapi

import (
	"net/http"
	"strings"

	"github.com/stagehandhq/stagehand/internal/auth/session"
	"github.com/stagehandhq/stagehand/internal/platform/requestctx"
)

// withSession resolves the Bearer token into a request identity. Requests
// without a token pass through unauthenticated; the service layer decides
// whether the operation needs one.
func withSession(cfg session.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := session.Verify(token, cfg)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := requestctx.WithIdentity(r.Context(), requestctx.Identity{
			UserID: identity.UserID,
			Role:   string(identity.Role),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
