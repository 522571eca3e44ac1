// internal/app/features/activity/handler.go
package activity

import (
	"context"

	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.uber.org/zap"
)

// LoginReader is satisfied by *loginstore.Store.
type LoginReader interface {
	Recent(ctx context.Context, adminID string, offset, limit int64) ([]models.AdminLogin, error)
	CountForAdmin(ctx context.Context, adminID string) (int64, error)
}

type Handler struct {
	Logins LoginReader
	Log    *zap.Logger
}

func NewHandler(logins LoginReader, logger *zap.Logger) *Handler {
	return &Handler{Logins: logins, Log: logger}
}
