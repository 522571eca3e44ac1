// Package auth carries the authenticated admin through request contexts.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/tokens"
	"go.uber.org/zap"
)

// Admin is the caller identified by a verified bearer token.
type Admin struct {
	ID               string
	OrganizationName string
}

// Verifier validates an Authorization header value.
type Verifier interface {
	VerifyHeader(header string) (*tokens.Claims, error)
}

type ctxKey string

const currentAdminKey ctxKey = "currentAdmin"

// CurrentAdmin returns the admin set by RequireAdmin.
func CurrentAdmin(r *http.Request) (*Admin, bool) {
	a, ok := r.Context().Value(currentAdminKey).(*Admin)
	return a, ok
}

// WithAdmin returns a copy of ctx carrying a.
func WithAdmin(ctx context.Context, a *Admin) context.Context {
	return context.WithValue(ctx, currentAdminKey, a)
}

// RequireAdmin rejects requests without a valid bearer token with 401 and
// puts the token's admin into the request context otherwise.
func RequireAdmin(v Verifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.VerifyHeader(r.Header.Get("Authorization"))
			if err != nil {
				logger.Debug("bearer token rejected",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				jsonutil.Error(w, http.StatusUnauthorized, failureMessage(err))
				return
			}
			a := &Admin{ID: claims.AdminID, OrganizationName: claims.OrganizationName}
			next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), a)))
		})
	}
}

// OwnsOrganization reports whether the current admin's token names name. It
// is a pre-check only; use OwnsRecord once the record is loaded.
func OwnsOrganization(r *http.Request, name string) bool {
	a, ok := CurrentAdmin(r)
	return ok && a.OrganizationName == name
}

// OwnsRecord reports whether the current admin's token was issued for the
// registry record with this id and name. A name reused by a later record
// does not match an older token.
func OwnsRecord(r *http.Request, id, name string) bool {
	a, ok := CurrentAdmin(r)
	return ok && id != "" && a.ID == id && a.OrganizationName == name
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, tokens.ErrMissingHeader):
		return "authorization header required"
	case errors.Is(err, tokens.ErrMalformedHeader):
		return "authorization header must be \"Bearer <token>\""
	case errors.Is(err, tokens.ErrExpiredToken):
		return "token has expired"
	default:
		return "invalid token"
	}
}
