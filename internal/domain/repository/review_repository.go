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

type ReviewRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, review *model.CourseReview) error
	Update(ctx context.Context, tx *sqlx.Tx, review *model.CourseReview) error
	Delete(ctx context.Context, tx *sqlx.Tx, id string) error
	FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.CourseReview, error)
	List(ctx context.Context, courseID int64, limit, offset int) ([]model.CourseReview, int, error)
	AdjustRepliesCount(ctx context.Context, tx *sqlx.Tx, id string, delta int) error
}

type pgReviewRepository struct {
	db *sqlx.DB
}

func NewPgReviewRepository(db *sqlx.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

const reviewSelect = `SELECT r.id, r.course_id, r.author_id, r.overall_rating, r.attr_difficulty, r.attr_workload,
	r.attr_grading, r.attr_gain, r.content, r.likes_count, r.replies_count, r.term_year, r.term_semester,
	r.created_at, r.updated_at, ` + authorSelect + `
	FROM course_reviews r`

func (r *pgReviewRepository) Create(ctx context.Context, tx *sqlx.Tx, rv *model.CourseReview) error {
	query := `INSERT INTO course_reviews (id, course_id, author_id, overall_rating, attr_difficulty, attr_workload,
	              attr_grading, attr_gain, content, term_year, term_semester, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`
	_, err := database.Conn(r.db, tx).ExecContext(ctx, query, rv.ID, rv.CourseID, rv.AuthorID, rv.OverallRating,
		rv.Difficulty, rv.Workload, rv.Grading, rv.Gain, rv.Content, rv.TermYear, rv.TermSemester, rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgReviewRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) Update(ctx context.Context, tx *sqlx.Tx, rv *model.CourseReview) error {
	query := `UPDATE course_reviews SET overall_rating = $1, attr_difficulty = $2, attr_workload = $3,
	              attr_grading = $4, attr_gain = $5, content = $6, term_year = $7, term_semester = $8, updated_at = NOW()
	          WHERE id = $9`
	res, err := database.Conn(r.db, tx).ExecContext(ctx, query, rv.OverallRating, rv.Difficulty, rv.Workload,
		rv.Grading, rv.Gain, rv.Content, rv.TermYear, rv.TermSemester, rv.ID)
	if err != nil {
		return fmt.Errorf("pgReviewRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgReviewRepository) Delete(ctx context.Context, tx *sqlx.Tx, id string) error {
	res, err := database.Conn(r.db, tx).ExecContext(ctx, `DELETE FROM course_reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgReviewRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgReviewRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id string) (*model.CourseReview, error) {
	rv := &model.CourseReview{}
	query := reviewSelect + authorJoin("r") + ` WHERE r.id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), rv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgReviewRepository.FindByID: %w", err)
	}
	return rv, nil
}

// List returns newest first. courseID 0 lists every course.
func (r *pgReviewRepository) List(ctx context.Context, courseID int64, limit, offset int) ([]model.CourseReview, int, error) {
	var w whereBuilder
	if courseID > 0 {
		w.add(`r.course_id = $%d`, courseID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM course_reviews r`+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`%s%s%s ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d`,
		reviewSelect, authorJoin("r"), w.clause(), w.next(1), w.next(2))
	reviews := []model.CourseReview{}
	if err := r.db.SelectContext(ctx, &reviews, query, append(w.args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("pgReviewRepository.List query: %w", err)
	}
	return reviews, total, nil
}

func (r *pgReviewRepository) AdjustRepliesCount(ctx context.Context, tx *sqlx.Tx, id string, delta int) error {
	query := `UPDATE course_reviews SET replies_count = GREATEST(replies_count + $1, 0) WHERE id = $2`
	if _, err := database.Conn(r.db, tx).ExecContext(ctx, query, delta, id); err != nil {
		return fmt.Errorf("pgReviewRepository.AdjustRepliesCount: %w", err)
	}
	return nil
}
