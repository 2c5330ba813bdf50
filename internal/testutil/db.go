// Package testutil holds fixtures for tests that need a live Postgres.
package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"coursehub/internal/domain/model"
	"coursehub/internal/platform/database"
	"coursehub/internal/platform/idgen"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

// SetupTestDB connects to TEST_DATABASE_URL and builds the schema inside a
// throwaway Postgres schema, so packages testing in parallel never share
// tables. The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	admin, err := database.Open(dsn, 2)
	require.NoError(t, err)
	schemaName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schemaName)
	require.NoError(t, err)

	db, err := database.Open(withSearchPath(dsn, schemaName), 20)
	require.NoError(t, err)
	require.NoError(t, database.EnsureSchema(ctx, db))

	t.Cleanup(func() {
		db.Close()
		admin.Exec("DROP SCHEMA " + schemaName + " CASCADE")
		admin.Close()
	})
	return db
}

func withSearchPath(dsn, schema string) string {
	if !strings.Contains(dsn, "://") {
		return dsn + " search_path=" + schema
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&search_path=" + schema
	}
	return dsn + "?search_path=" + schema
}

// CreateUser inserts a user with a profile and returns its id.
func CreateUser(t *testing.T, db *sqlx.DB, name string) int64 {
	t.Helper()
	id := idgen.NewUserID()
	email := fmt.Sprintf("%s-%d@example.com", strings.ToLower(name), id)
	_, err := db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $2, 'x')`, id, email)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO profiles (user_id, display_name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

// CreatePost inserts a forum post owned by authorID and returns its id.
func CreatePost(t *testing.T, db *sqlx.DB, authorID int64, title string, tags ...string) string {
	t.Helper()
	id := uuid.NewString()
	if tags == nil {
		tags = []string{}
	}
	_, err := db.Exec(`INSERT INTO forum_posts (id, title, slug, content, author_id, tags) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, title, id[:8], "body of "+title, authorID, pq.StringArray(tags))
	require.NoError(t, err)
	return id
}

// CreateCourse inserts a course with default attributes and returns it.
func CreateCourse(t *testing.T, db *sqlx.DB, code string) model.Course {
	t.Helper()
	c := model.Course{
		SubjectID:    "SUBJ-" + code,
		SubjectCode:  code,
		Title:        "Course " + code,
		TermYear:     2024,
		TermSemester: model.SemesterFall,
		Teachers:     pq.StringArray{"Dr. Smith"},
		Department:   "Computer Science",
		Attributes: model.Attributes{
			Difficulty: model.DifficultyMedium,
			Workload:   model.WorkloadModerate,
			Grading:    model.GradingBalanced,
			Gain:       model.GainDecent,
		},
	}
	err := db.QueryRow(`INSERT INTO courses (subject_id, subject_code, title, term_year, term_semester, teachers, department,
			attr_difficulty, attr_workload, attr_grading, attr_gain)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		c.SubjectID, c.SubjectCode, c.Title, c.TermYear, c.TermSemester, c.Teachers, c.Department,
		c.Difficulty, c.Workload, c.Grading, c.Gain).Scan(&c.ID)
	require.NoError(t, err)
	return c
}
