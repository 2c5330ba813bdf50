package model

import "time"

type EmailVerification struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
	IsUsed    bool      `db:"is_used"`
}
