package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/database"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const maxCommentLen = 5000

type CommentService struct {
	commentRepo repository.ForumCommentRepository
	postRepo    repository.ForumPostRepository
	tx          database.Transactor
	log         *zap.SugaredLogger
	now         func() time.Time
}

func NewCommentService(commentRepo repository.ForumCommentRepository, postRepo repository.ForumPostRepository, tx database.Transactor, log *zap.SugaredLogger) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo, tx: tx, log: log, now: time.Now}
}

type CreateCommentRequest struct {
	PostID   string  `json:"postId"`
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// CreateComment attaches a comment to a post. A reply inherits the thread
// root of its parent, so main_comment_id always names a root no matter how
// deep the parent sits.
func (s *CommentService) CreateComment(ctx context.Context, authorID int64, req CreateCommentRequest) (*model.CommentPayload, error) {
	content, err := requireText("content", req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}
	if !validUUID(req.PostID) {
		return nil, common.Validationf("postId must be a UUID")
	}

	comment := &model.ForumComment{
		ID:        uuid.NewString(),
		PostID:    req.PostID,
		Content:   content,
		CreatedAt: s.now(),
	}
	comment.AuthorID = authorID

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.postRepo.Exists(ctx, tx, req.PostID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("post %s: %w", req.PostID, common.ErrNotFound)
		}

		if req.ParentID != nil && *req.ParentID != "" {
			parent, err := s.resolveParent(ctx, tx, req.PostID, *req.ParentID)
			if err != nil {
				return err
			}
			comment.ParentID = sql.NullString{String: parent.ID, Valid: true}
			comment.MainCommentID = sql.NullString{String: parent.ThreadRoot(), Valid: true}
			comment.ReplyToUserID = sql.NullInt64{Int64: parent.AuthorID, Valid: true}
		}
		return s.commentRepo.Create(ctx, tx, comment)
	})
	if err != nil {
		return nil, err
	}
	return s.GetComment(ctx, comment.ID)
}

func (s *CommentService) resolveParent(ctx context.Context, tx *sqlx.Tx, postID, parentID string) (*model.ForumComment, error) {
	if !validUUID(parentID) {
		return nil, common.ErrParentNotFound
	}
	parent, err := s.commentRepo.FindByID(ctx, tx, parentID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrParentNotFound
		}
		return nil, err
	}
	if parent.PostID != postID {
		return nil, common.ErrParentNotFound
	}
	return parent, nil
}

func (s *CommentService) GetComment(ctx context.Context, id string) (*model.CommentPayload, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	payload := c.Payload()
	return &payload, nil
}

func (s *CommentService) find(ctx context.Context, id string) (*model.ForumComment, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	return s.commentRepo.FindByID(ctx, nil, id)
}

// ListComments is newest first. Filters are ANDed.
func (s *CommentService) ListComments(ctx context.Context, filter model.CommentFilter, page common.Pagination) (*model.Page[model.CommentPayload], error) {
	for name, v := range map[string]string{"postId": filter.PostID, "parentId": filter.ParentID, "mainCommentId": filter.MainCommentID} {
		if v != "" && !validUUID(v) {
			return nil, common.Validationf("%s must be a UUID", name)
		}
	}
	comments, total, err := s.commentRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	results := make([]model.CommentPayload, 0, len(comments))
	for i := range comments {
		results = append(results, comments[i].Payload())
	}
	return &model.Page[model.CommentPayload]{Results: results, Count: total, Page: page.Page, PageSize: page.PageSize}, nil
}

type ThreadSizePayload struct {
	RootID     string `json:"rootId"`
	ThreadSize int    `json:"threadSize"`
}

// ThreadSize counts the replies anywhere below the root of id's thread, so
// any comment in the thread resolves to the same answer.
func (s *CommentService) ThreadSize(ctx context.Context, id string) (*ThreadSizePayload, error) {
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	root := c.ThreadRoot()
	n, err := s.commentRepo.CountInThread(ctx, root)
	if err != nil {
		return nil, err
	}
	return &ThreadSizePayload{RootID: root, ThreadSize: n}, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, userID int64, id string, req UpdateCommentRequest) (*model.CommentPayload, error) {
	content, err := requireText("content", req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, common.ErrForbidden
	}
	if c.IsDeleted {
		return nil, fmt.Errorf("comment %s is deleted: %w", id, common.ErrNotFound)
	}
	if err := s.commentRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.GetComment(ctx, id)
}

// DeleteComment is a soft delete: the row keeps its place in the thread so
// replies below it stay addressable.
func (s *CommentService) DeleteComment(ctx context.Context, userID int64, id string) error {
	c, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if c.AuthorID != userID {
		return common.ErrForbidden
	}
	if c.IsDeleted {
		return nil
	}
	if err := s.commentRepo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.log.Debugw("comment soft deleted", "comment_id", id, "user_id", userID)
	return nil
}
