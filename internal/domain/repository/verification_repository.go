package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

type VerificationRepository interface {
	// LockEmail serializes code issuance per email until tx ends.
	LockEmail(ctx context.Context, tx *sqlx.Tx, email string) error
	LatestUnused(ctx context.Context, tx *sqlx.Tx, email string) (*model.EmailVerification, error)
	Create(ctx context.Context, tx *sqlx.Tx, v *model.EmailVerification) error
	// InvalidateUnused retires every outstanding code for email.
	InvalidateUnused(ctx context.Context, tx *sqlx.Tx, email string) error
	// LockLatestValid row locks the newest unused code created at or after
	// notBefore.
	LockLatestValid(ctx context.Context, tx *sqlx.Tx, email string, notBefore time.Time) (*model.EmailVerification, error)
	MarkUsed(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type pgVerificationRepository struct {
	db *sqlx.DB
}

func NewPgVerificationRepository(db *sqlx.DB) VerificationRepository {
	return &pgVerificationRepository{db: db}
}

func (r *pgVerificationRepository) LockEmail(ctx context.Context, tx *sqlx.Tx, email string) error {
	if _, err := database.Conn(r.db, tx).ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, email); err != nil {
		return fmt.Errorf("pgVerificationRepository.LockEmail: %w", err)
	}
	return nil
}

func (r *pgVerificationRepository) LatestUnused(ctx context.Context, tx *sqlx.Tx, email string) (*model.EmailVerification, error) {
	query := `SELECT id, email, code, created_at, is_used FROM email_verifications
	          WHERE email = $1 AND is_used = FALSE
	          ORDER BY created_at DESC, id DESC LIMIT 1`
	v := &model.EmailVerification{}
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), v, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgVerificationRepository.LatestUnused: %w", err)
	}
	return v, nil
}

func (r *pgVerificationRepository) Create(ctx context.Context, tx *sqlx.Tx, v *model.EmailVerification) error {
	query := `INSERT INTO email_verifications (email, code, created_at, is_used)
	          VALUES ($1, $2, $3, FALSE) RETURNING id`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), &v.ID, query, v.Email, v.Code, v.CreatedAt); err != nil {
		return fmt.Errorf("pgVerificationRepository.Create: %w", err)
	}
	return nil
}

func (r *pgVerificationRepository) InvalidateUnused(ctx context.Context, tx *sqlx.Tx, email string) error {
	if _, err := database.Conn(r.db, tx).ExecContext(ctx, `UPDATE email_verifications SET is_used = TRUE WHERE email = $1 AND is_used = FALSE`, email); err != nil {
		return fmt.Errorf("pgVerificationRepository.InvalidateUnused: %w", err)
	}
	return nil
}

func (r *pgVerificationRepository) LockLatestValid(ctx context.Context, tx *sqlx.Tx, email string, notBefore time.Time) (*model.EmailVerification, error) {
	query := `SELECT id, email, code, created_at, is_used FROM email_verifications
	          WHERE email = $1 AND is_used = FALSE AND created_at >= $2
	          ORDER BY created_at DESC, id DESC LIMIT 1
	          FOR UPDATE`
	v := &model.EmailVerification{}
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), v, query, email, notBefore); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgVerificationRepository.LockLatestValid: %w", err)
	}
	return v, nil
}

func (r *pgVerificationRepository) MarkUsed(ctx context.Context, tx *sqlx.Tx, id int64) error {
	res, err := database.Conn(r.db, tx).ExecContext(ctx, `UPDATE email_verifications SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`, id)
	if err != nil {
		return fmt.Errorf("pgVerificationRepository.MarkUsed: %w", err)
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return common.ErrInvalidOrExpiredCode
	}
	return nil
}
