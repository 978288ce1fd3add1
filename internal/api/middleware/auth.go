package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Aniketv10/E-Commerce-Back-End/internal/common"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/common/security"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/model"
	"github.com/Aniketv10/E-Commerce-Back-End/internal/domain/repository"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	UserIDCtxKey      contextKey = "userID"
	UserRoleCtxKey    contextKey = "userRole"
	TokenIDCtxKey     contextKey = "tokenID"
	TokenExpiryCtxKey contextKey = "tokenExpiry"
)

// Authenticator resolves the acting user from a verified session credential.
// Signature and expiry have already been checked by jwtauth.Verifier; this
// layer rejects denylisted (logged-out) tokens and loads the claims into the
// request context.
func Authenticator(denylist repository.SessionDenylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

			if err != nil {
				if strings.Contains(err.Error(), "token not found") || token == nil {
					common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				} else {
					common.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				}
				return
			}

			if token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			userID, err := security.GetUserIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			userRole, err := security.GetUserRoleFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}
			jti, err := security.GetTokenIDFromClaims(claims)
			if err != nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
				return
			}

			revoked, err := denylist.IsRevoked(r.Context(), jti)
			if err != nil {
				common.RespondWithError(w, http.StatusInternalServerError, "Failed to validate session")
				return
			}
			if revoked {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, userRole)
			ctx = context.WithValue(ctx, TokenIDCtxKey, jti)
			ctx = context.WithValue(ctx, TokenExpiryCtxKey, token.Expiration())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(UserRoleCtxKey).(string)
		if !ok || role != model.RoleAdmin {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}

// Helper to get user role from context
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	userRole, ok := ctx.Value(UserRoleCtxKey).(string)
	return userRole, ok
}

func GetTokenIDFromContext(ctx context.Context) (string, bool) {
	jti, ok := ctx.Value(TokenIDCtxKey).(string)
	return jti, ok
}

func GetTokenExpiryFromContext(ctx context.Context) (time.Time, bool) {
	exp, ok := ctx.Value(TokenExpiryCtxKey).(time.Time)
	return exp, ok
}
