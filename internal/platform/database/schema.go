package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id      BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		display_name TEXT NOT NULL DEFAULT '',
		avatar_url   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS email_verifications (
		id         BIGSERIAL PRIMARY KEY,
		email      TEXT NOT NULL,
		code       CHAR(6) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_used    BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_email_verifications_email ON email_verifications(email, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id                   BIGSERIAL PRIMARY KEY,
		subject_id           TEXT NOT NULL UNIQUE,
		subject_code         TEXT NOT NULL,
		title                TEXT NOT NULL,
		term_year            INT NOT NULL,
		term_semester        TEXT NOT NULL CHECK (term_semester IN ('spring', 'summer', 'fall')),
		rating_score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		rating_reviews_count INT NOT NULL DEFAULT 0,
		attr_difficulty      TEXT NOT NULL DEFAULT 'medium',
		attr_workload        TEXT NOT NULL DEFAULT 'moderate',
		attr_grading         TEXT NOT NULL DEFAULT 'balanced',
		attr_gain            TEXT NOT NULL DEFAULT 'decent',
		teachers             TEXT[] NOT NULL DEFAULT '{}',
		department           TEXT NOT NULL DEFAULT '',
		last_updated         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS course_reviews (
		id              UUID PRIMARY KEY,
		course_id       BIGINT NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
		author_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		overall_rating  DOUBLE PRECISION NOT NULL CHECK (overall_rating >= 0 AND overall_rating <= 10),
		attr_difficulty TEXT NOT NULL,
		attr_workload   TEXT NOT NULL,
		attr_grading    TEXT NOT NULL,
		attr_gain       TEXT NOT NULL,
		content         TEXT NOT NULL,
		likes_count     INT NOT NULL DEFAULT 0,
		replies_count   INT NOT NULL DEFAULT 0,
		term_year       INT,
		term_semester   TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_course_reviews_course ON course_reviews(course_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS course_review_replies (
		id               UUID PRIMARY KEY,
		review_id        UUID NOT NULL REFERENCES course_reviews(id) ON DELETE CASCADE,
		author_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		content          TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		likes_count      INT NOT NULL DEFAULT 0,
		reply_to_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		is_deleted       BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_course_review_replies_review ON course_review_replies(review_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS forum_posts (
		id          UUID PRIMARY KEY,
		title       TEXT NOT NULL,
		slug        TEXT NOT NULL,
		content     TEXT NOT NULL,
		author_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		tags        TEXT[] NOT NULL DEFAULT '{}',
		language    TEXT NOT NULL DEFAULT '',
		likes_count INT NOT NULL DEFAULT 0 CHECK (likes_count >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_posts_created ON forum_posts(created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS forum_comments (
		id               UUID PRIMARY KEY,
		post_id          UUID NOT NULL REFERENCES forum_posts(id) ON DELETE CASCADE,
		parent_id        UUID REFERENCES forum_comments(id) ON DELETE CASCADE,
		main_comment_id  UUID REFERENCES forum_comments(id) ON DELETE CASCADE,
		content          TEXT NOT NULL,
		author_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		reply_to_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		is_deleted       BOOLEAN NOT NULL DEFAULT FALSE,
		likes_count      INT NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_comments_post ON forum_comments(post_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_comments_parent ON forum_comments(parent_id)`,
	`CREATE INDEX IF NOT EXISTS idx_forum_comments_main ON forum_comments(main_comment_id)`,
	`CREATE TABLE IF NOT EXISTS forum_post_likes (
		id         BIGSERIAL PRIMARY KEY,
		post_id    UUID NOT NULL REFERENCES forum_posts(id) ON DELETE CASCADE,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (post_id, user_id)
	)`,
}

// Tables lists every table in dependency order, parents first.
var Tables = []string{
	"users", "profiles", "email_verifications", "courses", "course_reviews",
	"course_review_replies", "forum_posts", "forum_comments", "forum_post_likes",
}

// EnsureSchema creates all tables and indexes if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
