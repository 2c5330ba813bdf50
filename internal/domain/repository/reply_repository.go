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

type ReplyRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, reply *model.ReviewReply) error
	FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.ReviewReply, error)
	List(ctx context.Context, reviewID string, limit, offset int) ([]model.ReviewReply, int, error)
	UpdateContent(ctx context.Context, id, content string) error
	// SoftDelete reports whether the row flipped from live to deleted.
	SoftDelete(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
}

type pgReplyRepository struct {
	db *sqlx.DB
}

func NewPgReplyRepository(db *sqlx.DB) ReplyRepository {
	return &pgReplyRepository{db: db}
}

const replySelect = `SELECT rr.id, rr.review_id, rr.author_id, rr.content, rr.created_at, rr.likes_count,
	rr.reply_to_user_id, rr.is_deleted, ` + authorSelect + `, ` + replyToSelect + `
	FROM course_review_replies rr`

func (r *pgReplyRepository) Create(ctx context.Context, tx *sqlx.Tx, rp *model.ReviewReply) error {
	query := `INSERT INTO course_review_replies (id, review_id, author_id, content, created_at, reply_to_user_id)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := database.Conn(r.db, tx).ExecContext(ctx, query, rp.ID, rp.ReviewID, rp.AuthorID, rp.Content, rp.CreatedAt, rp.ReplyToUserID)
	if err != nil {
		return fmt.Errorf("pgReplyRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReplyRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.ReviewReply, error) {
	rp := &model.ReviewReply{}
	query := replySelect + authorJoin("rr") + replyToJoin("rr") + ` WHERE rr.id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), rp, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReplyRepository.FindByID: %w", err)
	}
	return rp, nil
}

// List returns oldest first so a conversation reads top down.
func (r *pgReplyRepository) List(ctx context.Context, reviewID string, limit, offset int) ([]model.ReviewReply, int, error) {
	var w whereBuilder
	if reviewID != "" {
		w.add(`rr.review_id = $%d`, reviewID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM course_review_replies rr`+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("pgReplyRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`%s%s%s%s ORDER BY rr.created_at ASC, rr.id ASC LIMIT $%d OFFSET $%d`,
		replySelect, authorJoin("rr"), replyToJoin("rr"), w.clause(), w.next(1), w.next(2))
	replies := []model.ReviewReply{}
	if err := r.db.SelectContext(ctx, &replies, query, append(w.args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("pgReplyRepository.List query: %w", err)
	}
	return replies, total, nil
}

func (r *pgReplyRepository) UpdateContent(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE course_review_replies SET content = $1 WHERE id = $2 AND is_deleted = FALSE`, content, id)
	if err != nil {
		return fmt.Errorf("pgReplyRepository.UpdateContent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgReplyRepository) SoftDelete(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	res, err := database.Conn(r.db, tx).ExecContext(ctx, `UPDATE course_review_replies SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return false, fmt.Errorf("pgReplyRepository.SoftDelete: %w", err)
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}
