package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/metrics"
)

// SessionIssuerImpl implements domain.SessionIssuer
type SessionIssuerImpl struct {
	users          domain.UserRepository
	sessions       domain.SessionRepository
	tokens         domain.TokenService
	audit          domain.AuditLogger
	metrics        *metrics.Metrics
	logger         *zap.Logger
	storageTimeout time.Duration
	now            func() time.Time
}

// NewSessionIssuer creates a new session issuer
func NewSessionIssuer(
	users domain.UserRepository,
	sessions domain.SessionRepository,
	tokens domain.TokenService,
	audit domain.AuditLogger,
	m *metrics.Metrics,
	logger *zap.Logger,
	storageTimeout time.Duration,
) *SessionIssuerImpl {
	if audit == nil {
		audit = nopAudit{}
	}
	return &SessionIssuerImpl{
		users:          users,
		sessions:       sessions,
		tokens:         tokens,
		audit:          audit,
		metrics:        m,
		logger:         logging.OrNop(logger).Named("sessions"),
		storageTimeout: storageTimeout,
		now:            time.Now,
	}
}

// IssueSession implements domain.SessionIssuer. The same phone number always
// maps to the same user; the first successful verification creates it.
func (s *SessionIssuerImpl) IssueSession(ctx context.Context, phoneNumber string) (*domain.AuthResult, error) {
	user, created, err := s.findOrCreateUser(ctx, phoneNumber)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &domain.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.tokens.TTL()),
	}

	token, err := s.tokens.Generate(session)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	storeCtx, cancel := withTimeout(ctx, s.storageTimeout)
	err = s.sessions.Create(storeCtx, session)
	cancel()
	if err != nil {
		return nil, storageErr("create session", err)
	}

	s.metrics.SessionIssued(created)
	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionIssuedEvent).
		WithPhone(phoneNumber).
		WithUser(user.ID).
		WithSession(session.ID).
		WithMetadata("new_user", created))

	return &domain.AuthResult{
		User:        user,
		Session:     session,
		AccessToken: token,
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

func (s *SessionIssuerImpl) findOrCreateUser(ctx context.Context, phoneNumber string) (*domain.User, bool, error) {
	user, err := s.findByPhone(ctx, phoneNumber)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, storageErr("find user", err)
	}

	user = &domain.User{
		ID:          uuid.NewString(),
		PhoneNumber: phoneNumber,
		Role:        domain.DefaultRole,
	}
	createCtx, cancel := withTimeout(ctx, s.storageTimeout)
	err = s.users.Create(createCtx, user)
	cancel()

	switch {
	case err == nil:
		s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.UserCreatedEvent).
			WithPhone(phoneNumber).
			WithUser(user.ID))
		return user, true, nil
	case errors.Is(err, domain.ErrUserAlreadyExists):
		// A concurrent redemption created the identity first
		s.logger.Debug("user created concurrently, re-fetching", zap.String("phone", logging.MaskPhone(phoneNumber)))
		user, err = s.findByPhone(ctx, phoneNumber)
		if err != nil {
			return nil, false, storageErr("find user", err)
		}
		return user, false, nil
	default:
		return nil, false, storageErr("create user", err)
	}
}

func (s *SessionIssuerImpl) findByPhone(ctx context.Context, phoneNumber string) (*domain.User, error) {
	findCtx, cancel := withTimeout(ctx, s.storageTimeout)
	defer cancel()
	return s.users.FindByPhone(findCtx, phoneNumber)
}

// GetCurrentSession implements domain.SessionIssuer
func (s *SessionIssuerImpl) GetCurrentSession(ctx context.Context, accessToken string) (*domain.AuthResult, error) {
	claims, err := s.tokens.Validate(accessToken)
	if err != nil {
		return nil, err
	}

	findCtx, cancel := withTimeout(ctx, s.storageTimeout)
	defer cancel()

	session, err := s.sessions.FindByID(findCtx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.FindByID(findCtx, session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}

	remaining := session.ExpiresAt.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}

	return &domain.AuthResult{
		User:        user,
		Session:     session,
		AccessToken: accessToken,
		ExpiresIn:   int64(remaining.Seconds()),
	}, nil
}

// DestroySession implements domain.SessionIssuer. Destroying an unknown
// session succeeds.
func (s *SessionIssuerImpl) DestroySession(ctx context.Context, sessionID string) error {
	deleteCtx, cancel := withTimeout(ctx, s.storageTimeout)
	defer cancel()

	if err := s.sessions.Delete(deleteCtx, sessionID); err != nil {
		return storageErr("delete session", err)
	}

	s.audit.LogEvent(ctx, domain.NewAuditEvent(domain.SessionDestroyedEvent).WithSession(sessionID))
	return nil
}
