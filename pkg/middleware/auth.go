package middleware

import (
	"context"
	"net/http"
	"strings"

	apperrors "airseat/pkg/errors"
	httputil "airseat/pkg/http"
	"airseat/pkg/logger"
	"airseat/pkg/token"
)

type principalKey struct{}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Name   string
	Email  string
	Role   string
}

func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the caller authenticated by Authenticate, or
// nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Required rejects anonymous requests outside PublicPrefixes.
	Required       bool
	PublicPrefixes []string
}

// Authenticate verifies an optional "Authorization: Bearer" token and stores
// its claims in the request context. A token that does not verify is always
// rejected, even on public paths.
func Authenticate(tokens *token.Manager, opts AuthOptions, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, present := bearerToken(r)
			if !present {
				if opts.Required && !isPublic(r.URL.Path, opts.PublicPrefixes) {
					rejectUnauthorized(w, log, r, "missing bearer token")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(raw)
			if err != nil {
				rejectUnauthorized(w, log, r, err.Error())
				return
			}

			ctx := WithPrincipal(r.Context(), &Principal{
				UserID: claims.UserID(),
				Name:   claims.Name,
				Email:  claims.Email,
				Role:   claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets through only principals holding one of roles.
func RequireRole(log *logger.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				rejectUnauthorized(w, log, r, "authentication required")
				return
			}
			for _, role := range roles {
				if p.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Warn("Role not permitted",
				"request_id", logger.RequestID(r.Context()),
				"user_id", p.UserID,
				"role", p.Role,
				"path", r.URL.Path,
			)
			_ = httputil.WriteError(w, apperrors.Forbidden("Insufficient role"))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(raw), true
}

func isPublic(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func rejectUnauthorized(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.Warn("Authentication failed",
		"request_id", logger.RequestID(r.Context()),
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	_ = httputil.WriteError(w, apperrors.Unauthorized("Invalid or missing credentials"))
}
