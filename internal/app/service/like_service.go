package service

import (
	"context"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

// LikeService keeps forum_posts.likes_count equal to the number of like
// rows. The counter only moves in the same transaction as a row that was
// actually inserted or deleted.
type LikeService struct {
	likeRepo repository.ForumLikeRepository
	postRepo repository.ForumPostRepository
	tx       database.Transactor
}

func NewLikeService(likeRepo repository.ForumLikeRepository, postRepo repository.ForumPostRepository, tx database.Transactor) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, tx: tx}
}

func (s *LikeService) Like(ctx context.Context, postID string, userID int64) (*model.PostPayload, error) {
	return s.toggle(ctx, postID, userID, true)
}

func (s *LikeService) Unlike(ctx context.Context, postID string, userID int64) (*model.PostPayload, error) {
	return s.toggle(ctx, postID, userID, false)
}

func (s *LikeService) toggle(ctx context.Context, postID string, userID int64, like bool) (*model.PostPayload, error) {
	if !validUUID(postID) {
		return nil, common.ErrNotFound
	}
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		exists, err := s.postRepo.Exists(ctx, tx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("post %s: %w", postID, common.ErrNotFound)
		}

		if like {
			inserted, err := s.likeRepo.Insert(ctx, tx, postID, userID)
			if err != nil || !inserted {
				return err
			}
			return s.likeRepo.IncrementPostLikes(ctx, tx, postID)
		}

		deleted, err := s.likeRepo.Delete(ctx, tx, postID, userID)
		if err != nil || !deleted {
			return err
		}
		return s.likeRepo.DecrementPostLikes(ctx, tx, postID)
	})
	if err != nil {
		return nil, err
	}

	post, err := s.postRepo.FindByID(ctx, nil, postID, userID)
	if err != nil {
		return nil, err
	}
	payload := post.Payload()
	return &payload, nil
}
