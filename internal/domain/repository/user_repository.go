package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error
	CreateProfile(ctx context.Context, tx *sqlx.Tx, profile *model.Profile) error
	FindByEmail(ctx context.Context, tx *sqlx.Tx, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindProfile(ctx context.Context, userID int64) (*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
}

type pgUserRepository struct {
	db *sqlx.DB
}

func NewPgUserRepository(db *sqlx.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, tx *sqlx.Tx, user *model.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := database.Conn(r.db, tx).ExecContext(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", user.Email, common.ErrDuplicateEmail)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) CreateProfile(ctx context.Context, tx *sqlx.Tx, profile *model.Profile) error {
	query := `INSERT INTO profiles (user_id, display_name, avatar_url) VALUES ($1, $2, $3)`
	if _, err := database.Conn(r.db, tx).ExecContext(ctx, query, profile.UserID, profile.DisplayName, profile.AvatarURL); err != nil {
		return fmt.Errorf("pgUserRepository.CreateProfile: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, tx *sqlx.Tx, email string) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	user := &model.User{}
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindProfile(ctx context.Context, userID int64) (*model.Profile, error) {
	query := `SELECT user_id, display_name, avatar_url FROM profiles WHERE user_id = $1`
	profile := &model.Profile{}
	if err := r.db.GetContext(ctx, profile, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindProfile: %w", err)
	}
	return profile, nil
}

// UpdateProfile upserts so users created without a profile row can still
// set one.
func (r *pgUserRepository) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	query := `INSERT INTO profiles (user_id, display_name, avatar_url) VALUES ($1, $2, $3)
	          ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name, avatar_url = EXCLUDED.avatar_url`
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.DisplayName, profile.AvatarURL); err != nil {
		return fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	return nil
}
