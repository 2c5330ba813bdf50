package model

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type ForumPost struct {
	ID            string         `db:"id"`
	Title         string         `db:"title"`
	Slug          string         `db:"slug"`
	Content       string         `db:"content"`
	CreatedAt     time.Time      `db:"created_at"`
	Tags          pq.StringArray `db:"tags"`
	Language      string         `db:"language"`
	LikesCount    int            `db:"likes_count"`
	CommentsCount int            `db:"comments_count"`
	IsLiked       bool           `db:"is_liked"`
	AuthorColumns
}

type PostPayload struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
	Likes     int       `json:"likes"`
	Comments  int       `json:"comments"`
	IsLiked   bool      `json:"isLiked"`
	Language  string    `json:"language"`
}

func (p *ForumPost) Payload() PostPayload {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	return PostPayload{
		ID:        p.ID,
		Title:     p.Title,
		Slug:      p.Slug,
		Content:   p.Content,
		Author:    p.Author(),
		CreatedAt: p.CreatedAt,
		Tags:      tags,
		Likes:     p.LikesCount,
		Comments:  p.CommentsCount,
		IsLiked:   p.IsLiked,
		Language:  p.Language,
	}
}

type PostFilter struct {
	Search string
	Tag    string
	// Viewer, when non-zero, fills IsLiked.
	Viewer int64
}

// ForumComment rows carry two thread pointers. MainCommentID is null for a
// root and otherwise always names a root, never an intermediate reply.
type ForumComment struct {
	ID            string         `db:"id"`
	PostID        string         `db:"post_id"`
	ParentID      sql.NullString `db:"parent_id"`
	MainCommentID sql.NullString `db:"main_comment_id"`
	Content       string         `db:"content"`
	CreatedAt     time.Time      `db:"created_at"`
	IsDeleted     bool           `db:"is_deleted"`
	LikesCount    int            `db:"likes_count"`
	RepliesCount  int            `db:"replies_count"`
	AuthorColumns
	ReplyToColumns
}

func (c *ForumComment) IsMain() bool {
	return !c.MainCommentID.Valid
}

// ThreadRoot is the id every reply to c must point at.
func (c *ForumComment) ThreadRoot() string {
	if c.MainCommentID.Valid {
		return c.MainCommentID.String
	}
	return c.ID
}

type CommentPayload struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Author        Author    `json:"author"`
	CreatedAt     time.Time `json:"createdAt"`
	Likes         int       `json:"likes"`
	IsDeleted     bool      `json:"is_deleted"`
	ParentID      *string   `json:"parentId"`
	MainCommentID *string   `json:"mainCommentId"`
	PostID        string    `json:"postId"`
	ReplyToUser   *Author   `json:"replyToUser"`
	RepliesCount  int       `json:"repliesCount"`
}

func (c *ForumComment) Payload() CommentPayload {
	p := CommentPayload{
		ID:           c.ID,
		Content:      c.Content,
		Author:       c.Author(),
		CreatedAt:    c.CreatedAt,
		Likes:        c.LikesCount,
		IsDeleted:    c.IsDeleted,
		PostID:       c.PostID,
		ReplyToUser:  c.ReplyToUser(),
		RepliesCount: c.RepliesCount,
	}
	if c.IsDeleted {
		p.Content = ""
	}
	if c.ParentID.Valid {
		p.ParentID = &c.ParentID.String
	}
	if c.MainCommentID.Valid {
		p.MainCommentID = &c.MainCommentID.String
	}
	return p
}

// CommentFilter fields are ANDed; zero values are ignored.
type CommentFilter struct {
	PostID        string
	ParentID      string
	MainCommentID string
	OnlyMain      *bool
}
