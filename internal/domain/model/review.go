package model

import (
	"database/sql"
	"time"
)

type CourseReview struct {
	ID            string         `db:"id"`
	CourseID      int64          `db:"course_id"`
	OverallRating float64        `db:"overall_rating"`
	Content       string         `db:"content"`
	LikesCount    int            `db:"likes_count"`
	RepliesCount  int            `db:"replies_count"`
	TermYear      sql.NullInt64  `db:"term_year"`
	TermSemester  sql.NullString `db:"term_semester"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
	Attributes
	AuthorColumns
}

type ReviewPayload struct {
	ID            string     `json:"id"`
	Course        int64      `json:"course"`
	Author        Author     `json:"author"`
	OverallRating float64    `json:"overallRating"`
	Attributes    Attributes `json:"attributes"`
	Content       string     `json:"content"`
	LikesCount    int        `json:"likes_count"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	TermYear      *int64     `json:"term_year"`
	TermSemester  *string    `json:"term_semester"`
	RepliesCount  int        `json:"replies_count"`
}

func (r *CourseReview) Payload() ReviewPayload {
	p := ReviewPayload{
		ID:            r.ID,
		Course:        r.CourseID,
		Author:        r.Author(),
		OverallRating: r.OverallRating,
		Attributes:    r.Attributes,
		Content:       r.Content,
		LikesCount:    r.LikesCount,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		RepliesCount:  r.RepliesCount,
	}
	if r.TermYear.Valid {
		p.TermYear = &r.TermYear.Int64
	}
	if r.TermSemester.Valid {
		p.TermSemester = &r.TermSemester.String
	}
	return p
}

// ReviewReply is single level: replies never nest under other replies.
type ReviewReply struct {
	ID         string    `db:"id"`
	ReviewID   string    `db:"review_id"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	LikesCount int       `db:"likes_count"`
	IsDeleted  bool      `db:"is_deleted"`
	AuthorColumns
	ReplyToColumns
}

type ReplyPayload struct {
	ID          string    `json:"id"`
	Review      string    `json:"review"`
	Author      Author    `json:"author"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	LikesCount  int       `json:"likes_count"`
	ReplyToUser *Author   `json:"replyToUser"`
	IsDeleted   bool      `json:"is_deleted"`
}

func (r *ReviewReply) Payload() ReplyPayload {
	content := r.Content
	if r.IsDeleted {
		content = ""
	}
	return ReplyPayload{
		ID:          r.ID,
		Review:      r.ReviewID,
		Author:      r.Author(),
		Content:     content,
		CreatedAt:   r.CreatedAt,
		LikesCount:  r.LikesCount,
		ReplyToUser: r.ReplyToUser(),
		IsDeleted:   r.IsDeleted,
	}
}
