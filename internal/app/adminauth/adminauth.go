// Package adminauth logs organization admins in and verifies their bearer
// tokens. Each organization has exactly one admin: the email and password
// stored on its registry record.
package adminauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/orgmanager/internal/app/system/authutil"
	"github.com/dalemusser/orgmanager/internal/app/system/normalize"
	"github.com/dalemusser/orgmanager/internal/app/system/tokens"
	"github.com/dalemusser/orgmanager/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized wraps every token and header failure.
	ErrUnauthorized = errors.New("unauthorized")
)

// Accounts looks up the organization an admin email belongs to. A miss is
// mongo.ErrNoDocuments.
type Accounts interface {
	GetByEmail(ctx context.Context, email string) (models.Organization, error)
}

// Session is the result of a successful login.
type Session struct {
	Token            string
	AdminID          string
	OrganizationName string
	ExpiresAt        time.Time
}

type Service struct {
	accounts Accounts
	tokens   *tokens.Service
	log      *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func New(accounts Accounts, tok *tokens.Service, logger *zap.Logger) *Service {
	return &Service{accounts: accounts, tokens: tok, log: logger}
}

// Login checks email and password against the registry and issues a token
// carrying the organization's ID and name.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	org, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Spend the same bcrypt time as a real check.
		authutil.CheckPassword(password, s.dummy())
		s.log.Info("admin login failed", zap.String("reason", "unknown email"))
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("look up admin: %w", err)
	}
	if !authutil.CheckPassword(password, org.PasswordHash) {
		s.log.Info("admin login failed",
			zap.String("reason", "bad password"),
			zap.String("organization", org.OrganizationName))
		return Session{}, ErrInvalidCredentials
	}

	adminID := org.ID.Hex()
	token, err := s.tokens.Issue(adminID, org.OrganizationName)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("admin logged in", zap.String("organization", org.OrganizationName))
	return Session{
		Token:            token,
		AdminID:          adminID,
		OrganizationName: org.OrganizationName,
		ExpiresAt:        time.Now().Add(s.tokens.TTL()),
	}, nil
}

// VerifyHeader validates an Authorization header value. Every failure wraps
// ErrUnauthorized together with the tokens package error.
func (s *Service) VerifyHeader(header string) (*tokens.Claims, error) {
	raw, err := tokens.ExtractBearer(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := authutil.HashPassword("timing-equalizer")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
