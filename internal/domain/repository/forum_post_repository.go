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

type ForumPostRepository interface {
	Create(ctx context.Context, post *model.ForumPost) error
	Update(ctx context.Context, post *model.ForumPost) error
	Delete(ctx context.Context, id string) error
	// FindByID fills IsLiked for viewer; pass 0 for anonymous callers.
	FindByID(ctx context.Context, tx *sqlx.Tx, id string, viewer int64) (*model.ForumPost, error)
	Exists(ctx context.Context, tx *sqlx.Tx, id string) (bool, error)
	List(ctx context.Context, filter model.PostFilter, limit, offset int) ([]model.ForumPost, int, error)
}

type pgForumPostRepository struct {
	db *sqlx.DB
}

func NewPgForumPostRepository(db *sqlx.DB) ForumPostRepository {
	return &pgForumPostRepository{db: db}
}

// postSelect takes the viewer placeholder index.
func postSelect(viewerArg int) string {
	return fmt.Sprintf(`SELECT p.id, p.title, p.slug, p.content, p.author_id, p.created_at, p.tags, p.language, p.likes_count,
	(SELECT COUNT(*) FROM forum_comments fc WHERE fc.post_id = p.id) AS comments_count,
	EXISTS (SELECT 1 FROM forum_post_likes l WHERE l.post_id = p.id AND l.user_id = $%d) AS is_liked,
	%s
	FROM forum_posts p`, viewerArg, authorSelect)
}

func (r *pgForumPostRepository) Create(ctx context.Context, p *model.ForumPost) error {
	query := `INSERT INTO forum_posts (id, title, slug, content, author_id, created_at, tags, language)
	          VALUES (:id, :title, :slug, :content, :author_id, :created_at, :tags, :language)`
	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("pgForumPostRepository.Create: %w", err)
	}
	return nil
}

func (r *pgForumPostRepository) Update(ctx context.Context, p *model.ForumPost) error {
	query := `UPDATE forum_posts SET title = :title, slug = :slug, content = :content, tags = :tags, language = :language
	          WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("pgForumPostRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgForumPostRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM forum_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgForumPostRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgForumPostRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id string, viewer int64) (*model.ForumPost, error) {
	p := &model.ForumPost{}
	query := postSelect(2) + authorJoin("p") + ` WHERE p.id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), p, query, id, viewer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgForumPostRepository.FindByID: %w", err)
	}
	return p, nil
}

func (r *pgForumPostRepository) Exists(ctx context.Context, tx *sqlx.Tx, id string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, database.Conn(r.db, tx), &exists, `SELECT EXISTS (SELECT 1 FROM forum_posts WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("pgForumPostRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgForumPostRepository) List(ctx context.Context, f model.PostFilter, limit, offset int) ([]model.ForumPost, int, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add(`(p.title ILIKE $%[1]d OR p.content ILIKE $%[1]d OR array_to_string(p.tags, ' ') ILIKE $%[1]d)`, likePattern(f.Search))
	}
	if f.Tag != "" {
		w.add(`$%d = ANY(p.tags)`, f.Tag)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM forum_posts p`+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("pgForumPostRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`%s%s%s ORDER BY p.created_at DESC, p.id DESC LIMIT $%d OFFSET $%d`,
		postSelect(w.next(1)), authorJoin("p"), w.clause(), w.next(2), w.next(3))
	posts := []model.ForumPost{}
	if err := r.db.SelectContext(ctx, &posts, query, append(w.args, f.Viewer, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("pgForumPostRepository.List query: %w", err)
	}
	return posts, total, nil
}
