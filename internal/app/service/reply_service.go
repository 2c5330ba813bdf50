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
	"coursehub/internal/platform/idgen"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ReplyService struct {
	replyRepo  repository.ReplyRepository
	reviewRepo repository.ReviewRepository
	userRepo   repository.UserRepository
	tx         database.Transactor
	now        func() time.Time
}

func NewReplyService(replyRepo repository.ReplyRepository, reviewRepo repository.ReviewRepository, userRepo repository.UserRepository, tx database.Transactor) *ReplyService {
	return &ReplyService{replyRepo: replyRepo, reviewRepo: reviewRepo, userRepo: userRepo, tx: tx, now: time.Now}
}

type CreateReplyRequest struct {
	Review      string  `json:"review"`
	Content     string  `json:"content"`
	ReplyToUser *string `json:"replyToUser"`
}

type UpdateReplyRequest struct {
	Content string `json:"content"`
}

func (s *ReplyService) CreateReply(ctx context.Context, authorID int64, req CreateReplyRequest) (*model.ReplyPayload, error) {
	content, err := requireText("content", req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}
	if !validUUID(req.Review) {
		return nil, common.Validationf("review must be a UUID")
	}

	reply := &model.ReviewReply{ID: uuid.NewString(), ReviewID: req.Review, Content: content, CreatedAt: s.now()}
	reply.AuthorID = authorID

	if req.ReplyToUser != nil && *req.ReplyToUser != "" {
		target, err := idgen.ParseID(*req.ReplyToUser)
		if err != nil {
			return nil, common.Validationf("replyToUser must be a user id")
		}
		if _, err := s.userRepo.FindByID(ctx, target); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.Validationf("replyToUser %s does not exist", *req.ReplyToUser)
			}
			return nil, err
		}
		reply.ReplyToUserID = sql.NullInt64{Int64: target, Valid: true}
	}

	err = s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.reviewRepo.FindByID(ctx, tx, req.Review); err != nil {
			return fmt.Errorf("review %s: %w", req.Review, err)
		}
		if err := s.replyRepo.Create(ctx, tx, reply); err != nil {
			return err
		}
		return s.reviewRepo.AdjustRepliesCount(ctx, tx, req.Review, 1)
	})
	if err != nil {
		return nil, err
	}
	return s.GetReply(ctx, reply.ID)
}

func (s *ReplyService) GetReply(ctx context.Context, id string) (*model.ReplyPayload, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	rp, err := s.replyRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	payload := rp.Payload()
	return &payload, nil
}

func (s *ReplyService) ListReplies(ctx context.Context, reviewID string, page common.Pagination) (*model.Page[model.ReplyPayload], error) {
	if reviewID != "" && !validUUID(reviewID) {
		return nil, common.Validationf("review must be a UUID")
	}
	replies, total, err := s.replyRepo.List(ctx, reviewID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	results := make([]model.ReplyPayload, 0, len(replies))
	for i := range replies {
		results = append(results, replies[i].Payload())
	}
	return &model.Page[model.ReplyPayload]{Results: results, Count: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *ReplyService) UpdateReply(ctx context.Context, userID int64, id string, req UpdateReplyRequest) (*model.ReplyPayload, error) {
	content, err := requireText("content", req.Content, maxCommentLen)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, userID, id); err != nil {
		return nil, err
	}
	if err := s.replyRepo.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.GetReply(ctx, id)
}

// DeleteReply soft deletes and drops the review's visible reply count once.
func (s *ReplyService) DeleteReply(ctx context.Context, userID int64, id string) error {
	if err := s.authorize(ctx, userID, id); err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		rp, err := s.replyRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		changed, err := s.replyRepo.SoftDelete(ctx, tx, id)
		if err != nil || !changed {
			return err
		}
		return s.reviewRepo.AdjustRepliesCount(ctx, tx, rp.ReviewID, -1)
	})
}

func (s *ReplyService) authorize(ctx context.Context, userID int64, id string) error {
	if !validUUID(id) {
		return common.ErrNotFound
	}
	rp, err := s.replyRepo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	if rp.AuthorID != userID {
		return common.ErrForbidden
	}
	return nil
}
