package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Mailer is the out-of-band channel a freshly issued code travels on.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

type VerificationPolicy struct {
	TTL      time.Duration
	Throttle time.Duration
}

type VerificationService struct {
	repo   repository.VerificationRepository
	tx     database.Transactor
	mailer Mailer
	policy VerificationPolicy
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewVerificationService(repo repository.VerificationRepository, tx database.Transactor, mailer Mailer, policy VerificationPolicy, log *zap.SugaredLogger) *VerificationService {
	return &VerificationService{repo: repo, tx: tx, mailer: mailer, policy: policy, log: log, now: time.Now}
}

var codeSpace = big.NewInt(1_000_000)

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendCode issues a new code unless one was issued for the same email
// within the throttle window. The code itself only leaves through the
// mailer.
func (s *VerificationService) SendCode(ctx context.Context, email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	now := s.now()

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.repo.LockEmail(ctx, tx, email); err != nil {
			return err
		}
		latest, err := s.repo.LatestUnused(ctx, tx, email)
		switch {
		case err == nil:
			if now.Sub(latest.CreatedAt) < s.policy.Throttle {
				return common.ErrThrottled
			}
		case !errors.Is(err, common.ErrNotFound):
			return err
		}
		if err := s.repo.InvalidateUnused(ctx, tx, email); err != nil {
			return err
		}
		return s.repo.Create(ctx, tx, &model.EmailVerification{Email: email, Code: code, CreatedAt: now})
	})
	if err != nil {
		return err
	}

	s.log.Infow("verification code issued", "email", email)
	if err := s.mailer.SendVerificationCode(ctx, email, code); err != nil {
		// the row is committed; the user can request again after the window
		s.log.Errorw("failed to dispatch verification code", "email", email, "error", err)
	}
	return nil
}

// ConsumeCode must run in the transaction that depends on it. The newest
// unused code within the TTL is row locked, compared and marked used.
func (s *VerificationService) ConsumeCode(ctx context.Context, tx *sqlx.Tx, email, code string) error {
	email = NormalizeEmail(email)
	v, err := s.repo.LockLatestValid(ctx, tx, email, s.now().Add(-s.policy.TTL))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidOrExpiredCode
		}
		return fmt.Errorf("failed to load verification code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(v.Code), []byte(code)) != 1 {
		return common.ErrInvalidOrExpiredCode
	}
	return s.repo.MarkUsed(ctx, tx, v.ID)
}
