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

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	Update(ctx context.Context, course *model.Course) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Course, error)
	List(ctx context.Context, filter model.CourseFilter, limit, offset int) ([]model.Course, int, error)
	// RefreshRating recomputes the aggregate from the course's reviews.
	RefreshRating(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type pgCourseRepository struct {
	db *sqlx.DB
}

func NewPgCourseRepository(db *sqlx.DB) CourseRepository {
	return &pgCourseRepository{db: db}
}

const courseColumns = `id, subject_id, subject_code, title, term_year, term_semester, rating_score, rating_reviews_count,
	attr_difficulty, attr_workload, attr_grading, attr_gain, teachers, department, last_updated`

func (r *pgCourseRepository) Create(ctx context.Context, c *model.Course) error {
	query := `INSERT INTO courses (subject_id, subject_code, title, term_year, term_semester,
	              attr_difficulty, attr_workload, attr_grading, attr_gain, teachers, department)
	          VALUES (:subject_id, :subject_code, :title, :term_year, :term_semester,
	              :attr_difficulty, :attr_workload, :attr_grading, :attr_gain, :teachers, :department)
	          RETURNING id, last_updated`
	rows, err := r.db.NamedQueryContext(ctx, query, c)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("course with subject_id %s already exists: %w", c.SubjectID, common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.Create: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&c.ID, &c.LastUpdated); err != nil {
			return fmt.Errorf("pgCourseRepository.Create scan: %w", err)
		}
	}
	return rows.Err()
}

func (r *pgCourseRepository) Update(ctx context.Context, c *model.Course) error {
	query := `UPDATE courses SET subject_id = :subject_id, subject_code = :subject_code, title = :title,
	              term_year = :term_year, term_semester = :term_semester,
	              attr_difficulty = :attr_difficulty, attr_workload = :attr_workload,
	              attr_grading = :attr_grading, attr_gain = :attr_gain,
	              teachers = :teachers, department = :department, last_updated = NOW()
	          WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, c)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("course with subject_id %s already exists: %w", c.SubjectID, common.ErrConflict)
		}
		return fmt.Errorf("pgCourseRepository.Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCourseRepository.Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCourseRepository) FindByID(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Course, error) {
	c := &model.Course{}
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	if err := sqlx.GetContext(ctx, database.Conn(r.db, tx), c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCourseRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgCourseRepository) List(ctx context.Context, f model.CourseFilter, limit, offset int) ([]model.Course, int, error) {
	var w whereBuilder
	if f.Search != "" {
		w.add(`(title ILIKE $%[1]d OR subject_code ILIKE $%[1]d OR subject_id ILIKE $%[1]d)`, likePattern(f.Search))
	}
	if f.Department != "" {
		w.add(`department = $%d`, f.Department)
	}
	if f.Semester != "" {
		w.add(`term_semester = $%d`, f.Semester)
	}
	if f.Year > 0 {
		w.add(`term_year = $%d`, f.Year)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses`+w.clause(), w.args...); err != nil {
		return nil, 0, fmt.Errorf("pgCourseRepository.List count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM courses%s ORDER BY subject_code ASC, id ASC LIMIT $%d OFFSET $%d`,
		courseColumns, w.clause(), w.next(1), w.next(2))
	courses := []model.Course{}
	if err := r.db.SelectContext(ctx, &courses, query, append(w.args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("pgCourseRepository.List query: %w", err)
	}
	return courses, total, nil
}

func (r *pgCourseRepository) RefreshRating(ctx context.Context, tx *sqlx.Tx, id int64) error {
	query := `UPDATE courses SET
	              rating_score = COALESCE((SELECT AVG(overall_rating) FROM course_reviews WHERE course_id = $1), 0),
	              rating_reviews_count = (SELECT COUNT(*) FROM course_reviews WHERE course_id = $1),
	              last_updated = NOW()
	          WHERE id = $1`
	if _, err := database.Conn(r.db, tx).ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("pgCourseRepository.RefreshRating: %w", err)
	}
	return nil
}
