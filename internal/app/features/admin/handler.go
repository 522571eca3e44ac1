// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/orgmanager/internal/app/adminauth"
	"github.com/dalemusser/orgmanager/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Authenticator checks admin credentials and issues a session token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (adminauth.Session, error)
}

// Throttle limits login attempts.
type Throttle interface {
	Check(r *http.Request, email string) ratelimit.Decision
	ResetEmail(email string)
}

// LoginRecorder stores successful logins.
type LoginRecorder interface {
	CreateFrom(ctx context.Context, r *http.Request, adminID, organization string) error
}

type Handler struct {
	Auth     Authenticator
	Limiter  Throttle
	Recorder LoginRecorder // optional
	Log      *zap.Logger
}

func NewHandler(auth Authenticator, limiter Throttle, recorder LoginRecorder, logger *zap.Logger) *Handler {
	return &Handler{Auth: auth, Limiter: limiter, Recorder: recorder, Log: logger}
}
