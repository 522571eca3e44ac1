// internal/app/features/admin/login.go
package admin

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/dalemusser/orgmanager/internal/app/adminauth"
	"github.com/dalemusser/orgmanager/internal/app/system/inputval"
	"github.com/dalemusser/orgmanager/internal/app/system/jsonutil"
	"github.com/dalemusser/orgmanager/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,max=254" label:"email"`
	Password string `json:"password" validate:"required,password" label:"password"`
}

// HandleLogin exchanges an admin's email and password for a bearer token.
//
// Route: POST /admin/login
//
//	{ "email": "...", "password": "..." }
//
// Unknown emails and wrong passwords get the same 401 body.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.Error(w, http.StatusBadRequest, res.First())
		return
	}

	if h.Limiter != nil {
		if d := h.Limiter.Check(r, in.Email); !d.Allowed {
			h.Log.Warn("admin login throttled", zap.String("reason", d.Reason))
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			jsonutil.Error(w, http.StatusTooManyRequests, d.Reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "admin login")
	defer cancel()

	sess, err := h.Auth.Login(ctx, in.Email, in.Password)
	switch {
	case errors.Is(err, adminauth.ErrInvalidCredentials):
		jsonutil.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	case err != nil:
		h.Log.Error("admin login failed", zap.Error(err))
		jsonutil.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	if h.Recorder != nil {
		if err := h.Recorder.CreateFrom(ctx, r, sess.AdminID, sess.OrganizationName); err != nil {
			h.Log.Warn("failed to record admin login",
				zap.String("organization", sess.OrganizationName),
				zap.Error(err))
		}
	}

	jsonutil.OK(w, http.StatusOK, jsonutil.Fields{
		"message":          "Login successful",
		"token":            sess.Token,
		"adminId":          sess.AdminID,
		"organizationName": sess.OrganizationName,
		"expiresAt":        sess.ExpiresAt,
	})
}
