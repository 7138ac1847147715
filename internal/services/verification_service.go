package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sharmarobin1121-cmyk/yikyak2/domain"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/logging"
	"github.com/sharmarobin1121-cmyk/yikyak2/internal/metrics"
)

const (
	codeLength = 6
	codeMin    = 100000
	codeSpan   = 900000
)

// VerificationConfig tunes the send/redeem protocol
type VerificationConfig struct {
	CodeTTL            time.Duration
	InvalidatePrevious bool
	StorageTimeout     time.Duration
	DeliveryTimeout    time.Duration
	Now                func() time.Time
}

// VerificationDeps are the collaborators of VerificationServiceImpl.
// Limiters, Audit, Metrics and Logger may be nil.
type VerificationDeps struct {
	Normalizer    domain.PhoneNormalizer
	Codes         domain.CodeStore
	Hasher        domain.CodeHasher
	Sender        domain.SMSSender
	Issuer        domain.SessionIssuer
	SendLimiter   domain.Limiter
	RedeemLimiter domain.Limiter
	Audit         domain.AuditLogger
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

// VerificationServiceImpl implements domain.VerificationService
type VerificationServiceImpl struct {
	deps   VerificationDeps
	config VerificationConfig
	logger *zap.Logger
}

// NewVerificationService creates a new verification service
func NewVerificationService(deps VerificationDeps, config VerificationConfig) *VerificationServiceImpl {
	if config.Now == nil {
		config.Now = time.Now
	}
	if deps.Audit == nil {
		deps.Audit = nopAudit{}
	}
	return &VerificationServiceImpl{
		deps:   deps,
		config: config,
		logger: logging.OrNop(deps.Logger).Named("verification"),
	}
}

// SendCode implements domain.VerificationService
func (s *VerificationServiceImpl) SendCode(ctx context.Context, rawPhone string) (*domain.SendResult, error) {
	phone, err := s.deps.Normalizer.Canonicalize(rawPhone)
	if err != nil {
		return nil, s.sendFailed(ctx, "", metrics.ResultInvalid, err)
	}

	if err := s.allow(ctx, s.deps.SendLimiter, phone); err != nil {
		return nil, s.sendFailed(ctx, phone, resultFor(err), err)
	}

	code, err := generateCode()
	if err != nil {
		return nil, s.sendFailed(ctx, phone, metrics.ResultStorageError, err)
	}
	hash, err := s.deps.Hasher.Hash(code)
	if err != nil {
		return nil, s.sendFailed(ctx, phone, metrics.ResultStorageError, fmt.Errorf("failed to hash verification code: %w", err))
	}

	now := s.config.Now()
	vc := &domain.VerificationCode{
		ID:          uuid.NewString(),
		PhoneNumber: phone,
		CodeHash:    hash,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.config.CodeTTL),
	}

	storeCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	err = s.deps.Codes.Put(storeCtx, vc)
	cancel()
	if err != nil {
		s.releaseSend(ctx, phone)
		return nil, s.sendFailed(ctx, phone, metrics.ResultStorageError, storageErr("store verification code", err))
	}

	deliverCtx, cancel := withTimeout(ctx, s.config.DeliveryTimeout)
	started := time.Now()
	err = s.deps.Sender.Send(deliverCtx, phone, code)
	cancel()
	s.deps.Metrics.ObserveDelivery(time.Since(started))
	if err != nil {
		// The stored code stays valid; a late delivery can still be redeemed
		s.releaseSend(ctx, phone)
		if !errors.Is(err, domain.ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
		}
		return nil, s.sendFailed(ctx, phone, metrics.ResultDeliveryError, err)
	}

	if s.config.InvalidatePrevious {
		supersedeCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
		n, err := s.deps.Codes.SupersedeOutstanding(supersedeCtx, vc)
		cancel()
		if err != nil {
			s.logger.Warn("failed to supersede older codes",
				zap.String("phone", logging.MaskPhone(phone)),
				zap.Error(err),
			)
		} else if n > 0 {
			s.logger.Debug("superseded older codes",
				zap.String("phone", logging.MaskPhone(phone)),
				zap.Int64("count", n),
			)
		}
	}

	s.deps.Metrics.CodeSent(metrics.ResultSuccess)
	s.deps.Audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRequestedEvent).
		WithPhone(phone).
		WithMetadata("code_id", vc.ID).
		WithMetadata("expires_at", vc.ExpiresAt))

	return &domain.SendResult{PhoneNumber: phone, ExpiresAt: vc.ExpiresAt}, nil
}

// Redeem implements domain.VerificationService. A code is burned before the
// identity is issued, so an issuance failure requires a new code.
func (s *VerificationServiceImpl) Redeem(ctx context.Context, rawPhone, code string) (*domain.AuthResult, error) {
	phone, err := s.deps.Normalizer.Canonicalize(rawPhone)
	if err != nil {
		return nil, s.redeemFailed(ctx, "", metrics.ResultInvalid, err)
	}

	if !isCode(code) {
		return nil, s.redeemFailed(ctx, phone, metrics.ResultInvalid, domain.ErrInvalidOrExpiredCode)
	}

	if err := s.allow(ctx, s.deps.RedeemLimiter, phone); err != nil {
		return nil, s.redeemFailed(ctx, phone, resultFor(err), err)
	}

	findCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	vc, err := s.deps.Codes.FindActive(findCtx, phone, code)
	cancel()
	if err != nil {
		if errors.Is(err, domain.ErrCodeNotFound) {
			return nil, s.redeemFailed(ctx, phone, metrics.ResultInvalid, domain.ErrInvalidOrExpiredCode)
		}
		return nil, s.redeemFailed(ctx, phone, metrics.ResultStorageError, storageErr("find verification code", err))
	}

	consumeCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	consumed, err := s.deps.Codes.MarkConsumed(consumeCtx, vc.ID)
	cancel()
	if err != nil {
		return nil, s.redeemFailed(ctx, phone, metrics.ResultStorageError, storageErr("consume verification code", err))
	}
	if !consumed {
		return nil, s.redeemFailed(ctx, phone, metrics.ResultInvalid, domain.ErrInvalidOrExpiredCode)
	}

	result, err := s.deps.Issuer.IssueSession(ctx, phone)
	if err != nil {
		return nil, s.redeemFailed(ctx, phone, metrics.ResultIssuanceError,
			fmt.Errorf("%w: %w", domain.ErrIdentityIssuanceFailed, err))
	}

	if s.deps.RedeemLimiter != nil {
		resetCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
		err := s.deps.RedeemLimiter.Reset(resetCtx, phone)
		cancel()
		if err != nil {
			s.logger.Warn("failed to reset redeem limiter", zap.Error(err))
		}
	}

	s.deps.Metrics.Redemption(metrics.ResultSuccess)
	s.deps.Audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRedeemedEvent).
		WithPhone(phone).
		WithUser(result.User.ID).
		WithSession(result.Session.ID).
		WithMetadata("code_id", vc.ID))

	return result, nil
}

func (s *VerificationServiceImpl) sendFailed(ctx context.Context, phone, result string, err error) error {
	s.deps.Metrics.CodeSent(result)
	s.deps.Audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRequestFailureEvent).
		WithPhone(phone).
		WithError(err))
	return err
}

func (s *VerificationServiceImpl) redeemFailed(ctx context.Context, phone, result string, err error) error {
	s.deps.Metrics.Redemption(result)
	s.deps.Audit.LogEvent(ctx, domain.NewAuditEvent(domain.CodeRedeemFailureEvent).
		WithPhone(phone).
		WithError(err))
	return err
}

// generateCode draws a code uniformly from [100000, 999999]
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+codeMin), nil
}

func isCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *VerificationServiceImpl) allow(ctx context.Context, limiter domain.Limiter, subject string) error {
	if limiter == nil {
		return nil
	}
	allowCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	defer cancel()
	return limiter.Allow(allowCtx, subject)
}

// releaseSend lets the caller retry at once after a send that did not go out
func (s *VerificationServiceImpl) releaseSend(ctx context.Context, phone string) {
	if s.deps.SendLimiter == nil {
		return
	}
	releaseCtx, cancel := withTimeout(ctx, s.config.StorageTimeout)
	defer cancel()
	if err := s.deps.SendLimiter.Release(releaseCtx, phone); err != nil {
		s.logger.Warn("failed to release send cooldown",
			zap.String("phone", logging.MaskPhone(phone)),
			zap.Error(err),
		)
	}
}

func resultFor(err error) string {
	if errors.Is(err, domain.ErrRateLimited) {
		return metrics.ResultRateLimited
	}
	return metrics.ResultStorageError
}

// storageErr makes sure a storage failure carries domain.ErrStorageUnavailable
func storageErr(op string, err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return domain.StorageError(op, err)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

type nopAudit struct{}

func (nopAudit) LogEvent(context.Context, *domain.AuditEvent) {}
