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

type ForumCommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.ForumComment) error
	FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.ForumComment, error)
	List(ctx context.Context, filter model.CommentFilter, limit, offset int) ([]model.ForumComment, int, error)
	CountInThread(ctx context.Context, rootID string) (int, error)
	UpdateContent(ctx context.Context, id, content string) error
	SoftDelete(ctx context.Context, id string) error
}

type pgForumCommentRepository struct {
	db *sqlx.DB
}

func NewPgForumCommentRepository(db *sqlx.DB) ForumCommentRepository {
	return &pgForumCommentRepository{db: db}
}

// replies_count is a flat count over the thread root pointer; it is only
// meaningful for main comments and is zero for replies.
const commentSelect = `SELECT c.id, c.post_id, c.parent_id, c.main_comment_id, c.content, c.author_id,
	c.reply_to_user_id, c.created_at, c.is_deleted, c.likes_count,
	(SELECT COUNT(*) FROM forum_comments t WHERE t.main_comment_id = c.id) AS replies_count,
	` + authorSelect + `, ` + replyToSelect + `
	FROM forum_comments c`

func (r *pgForumCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.ForumComment) error {
	query := `INSERT INTO forum_comments (id, post_id, parent_id, main_comment_id, content, author_id, reply_to_user_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := database.Conn(r.db, tx).ExecContext(ctx, query, c.ID, c.PostID, c.ParentID, c.MainCommentID,
		c.Content, c.AuthorID, c.ReplyToUserID, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgForumCommentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgForumCommentRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.ForumComment, error) {
	c := &model.ForumComment{}
	query := commentSelect + authorJoin("c") + replyToJoin("c") + ` WHERE c.id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgForumCommentRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgForumCommentRepository) List(ctx context.Context, f model.CommentFilter, limit, offset int) ([]model.ForumComment, int, error) {
	var w whereBuilder
	if f.PostID != "" {
		w.add(`c.post_id = $%d`, f.PostID)
	}
	if f.ParentID != "" {
		w.add(`c.parent_id = $%d`, f.ParentID)
	}
	if f.MainCommentID != "" {
		w.add(`c.main_comment_id = $%d`, f.MainCommentID)
	}
	if f.OnlyMain != nil {
		if *f.OnlyMain {
			w.addRaw(`c.main_comment_id IS NULL`)
		} else {
			w.addRaw(`c.main_comment_id IS NOT NULL`)
		}
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM forum_comments c`+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("pgForumCommentRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`%s%s%s%s ORDER BY c.created_at DESC, c.id DESC LIMIT $%d OFFSET $%d`,
		commentSelect, authorJoin("c"), replyToJoin("c"), w.clause(), w.next(1), w.next(2))
	comments := []model.ForumComment{}
	if err := r.db.SelectContext(ctx, &comments, query, append(w.args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("pgForumCommentRepository.List query: %w", err)
	}
	return comments, total, nil
}

func (r *pgForumCommentRepository) CountInThread(ctx context.Context, rootID string) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM forum_comments WHERE main_comment_id = $1`, rootID); err != nil {
		return 0, fmt.Errorf("pgForumCommentRepository.CountInThread: %w", err)
	}
	return n, nil
}

func (r *pgForumCommentRepository) UpdateContent(ctx context.Context, id, content string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE forum_comments SET content = $1 WHERE id = $2 AND is_deleted = FALSE`, content, id)
	if err != nil {
		return fmt.Errorf("pgForumCommentRepository.UpdateContent: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgForumCommentRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE forum_comments SET is_deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgForumCommentRepository.SoftDelete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}
