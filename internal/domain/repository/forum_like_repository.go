package repository

import (
	"context"
	"fmt"

	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

// ForumLikeRepository pairs like rows with the denormalized counter on
// forum_posts. Callers run both halves in one transaction.
type ForumLikeRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, postID string, userID int64) (bool, error)
	Delete(ctx context.Context, tx *sqlx.Tx, postID string, userID int64) (bool, error)
	IncrementPostLikes(ctx context.Context, tx *sqlx.Tx, postID string) error
	DecrementPostLikes(ctx context.Context, tx *sqlx.Tx, postID string) error
	Count(ctx context.Context, postID string) (int, error)
}

type pgForumLikeRepository struct {
	db *sqlx.DB
}

func NewPgForumLikeRepository(db *sqlx.DB) ForumLikeRepository {
	return &pgForumLikeRepository{db: db}
}

func (r *pgForumLikeRepository) Insert(ctx context.Context, tx *sqlx.Tx, postID string, userID int64) (bool, error) {
	res, err := database.Conn(r.db, tx).ExecContext(ctx,
		`INSERT INTO forum_post_likes (post_id, user_id) VALUES ($1, $2) ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID)
	if err != nil {
		return false, fmt.Errorf("pgForumLikeRepository.Insert: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *pgForumLikeRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID string, userID int64) (bool, error) {
	res, err := database.Conn(r.db, tx).ExecContext(ctx,
		`DELETE FROM forum_post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("pgForumLikeRepository.Delete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *pgForumLikeRepository) IncrementPostLikes(ctx context.Context, tx *sqlx.Tx, postID string) error {
	if _, err := database.Conn(r.db, tx).ExecContext(ctx,
		`UPDATE forum_posts SET likes_count = likes_count + 1 WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("pgForumLikeRepository.IncrementPostLikes: %w", err)
	}
	return nil
}

func (r *pgForumLikeRepository) DecrementPostLikes(ctx context.Context, tx *sqlx.Tx, postID string) error {
	if _, err := database.Conn(r.db, tx).ExecContext(ctx,
		`UPDATE forum_posts SET likes_count = likes_count - 1 WHERE id = $1 AND likes_count > 0`, postID); err != nil {
		return fmt.Errorf("pgForumLikeRepository.DecrementPostLikes: %w", err)
	}
	return nil
}

func (r *pgForumLikeRepository) Count(ctx context.Context, postID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM forum_post_likes WHERE post_id = $1`, postID); err != nil {
		return 0, fmt.Errorf("pgForumLikeRepository.Count: %w", err)
	}
	return n, nil
}
