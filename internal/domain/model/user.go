package model

import (
	"database/sql"
	"strings"
	"time"

	"coursehub/internal/platform/idgen"
)

type User struct {
	ID           int64     `db:"id" json:"-"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

type Profile struct {
	UserID      int64          `db:"user_id"`
	DisplayName string         `db:"display_name"`
	AvatarURL   sql.NullString `db:"avatar_url"`
}

// Author is the public projection of a user embedded in every payload.
type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

// AuthorFor never fails: a missing profile or empty display name falls back
// to the username.
func AuthorFor(userID int64, username string, displayName, avatarURL sql.NullString) Author {
	a := Author{ID: idgen.FormatID(userID), Name: username}
	if displayName.Valid && strings.TrimSpace(displayName.String) != "" {
		a.Name = displayName.String
	}
	if avatarURL.Valid && avatarURL.String != "" {
		avatar := avatarURL.String
		a.Avatar = &avatar
	}
	return a
}

// AuthorOf projects a loaded user and its (possibly nil) profile.
func AuthorOf(u *User, p *Profile) Author {
	if p == nil {
		return AuthorFor(u.ID, u.Username, sql.NullString{}, sql.NullString{})
	}
	return AuthorFor(u.ID, u.Username, sql.NullString{String: p.DisplayName, Valid: true}, p.AvatarURL)
}

// AuthorColumns is scanned from the users/profiles join every content query
// carries.
type AuthorColumns struct {
	AuthorID          int64          `db:"author_id"`
	AuthorUsername    string         `db:"author_username"`
	AuthorDisplayName sql.NullString `db:"author_display_name"`
	AuthorAvatarURL   sql.NullString `db:"author_avatar_url"`
}

func (c AuthorColumns) Author() Author {
	return AuthorFor(c.AuthorID, c.AuthorUsername, c.AuthorDisplayName, c.AuthorAvatarURL)
}

// ReplyToColumns is the optional counterpart for reply_to_user.
type ReplyToColumns struct {
	ReplyToUserID      sql.NullInt64  `db:"reply_to_user_id"`
	ReplyToUsername    sql.NullString `db:"reply_to_username"`
	ReplyToDisplayName sql.NullString `db:"reply_to_display_name"`
	ReplyToAvatarURL   sql.NullString `db:"reply_to_avatar_url"`
}

func (c ReplyToColumns) ReplyToUser() *Author {
	if !c.ReplyToUserID.Valid || !c.ReplyToUsername.Valid {
		return nil
	}
	a := AuthorFor(c.ReplyToUserID.Int64, c.ReplyToUsername.String, c.ReplyToDisplayName, c.ReplyToAvatarURL)
	return &a
}

// UserPayload is returned by register, login and me.
type UserPayload struct {
	ID     string  `json:"id"`
	Email  string  `json:"email"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

func UserPayloadOf(u *User, p *Profile) UserPayload {
	a := AuthorOf(u, p)
	return UserPayload{ID: a.ID, Email: u.Email, Name: a.Name, Avatar: a.Avatar}
}
