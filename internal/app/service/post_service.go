package service

import (
	"context"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	maxTitleLen    = 200
	maxPostLen     = 20000
	maxTags        = 10
	maxLanguageLen = 32
)

type PostService struct {
	postRepo repository.ForumPostRepository
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewPostService(postRepo repository.ForumPostRepository, log *zap.SugaredLogger) *PostService {
	return &PostService{postRepo: postRepo, log: log, now: time.Now}
}

type CreatePostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Language string   `json:"language"`
}

type UpdatePostRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	Language *string   `json:"language"`
}

func postSlug(title, id string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return id[:8]
}

func validateTags(tags []string) ([]string, error) {
	tags = normalizeTags(tags)
	if len(tags) > maxTags {
		return nil, common.Validationf("at most %d tags are allowed", maxTags)
	}
	return tags, nil
}

func (s *PostService) CreatePost(ctx context.Context, authorID int64, req CreatePostRequest) (*model.PostPayload, error) {
	title, err := requireText("title", req.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	content, err := requireText("content", req.Content, maxPostLen)
	if err != nil {
		return nil, err
	}
	tags, err := validateTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if len(req.Language) > maxLanguageLen {
		return nil, common.Validationf("language must be at most %d characters", maxLanguageLen)
	}

	post := &model.ForumPost{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: s.now(),
		Tags:      pq.StringArray(tags),
		Language:  req.Language,
	}
	post.Slug = postSlug(title, post.ID)
	post.AuthorID = authorID

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.log.Debugw("forum post created", "post_id", post.ID, "author_id", authorID)
	return s.GetPost(ctx, post.ID, authorID)
}

func (s *PostService) GetPost(ctx context.Context, id string, viewer int64) (*model.PostPayload, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	post, err := s.postRepo.FindByID(ctx, nil, id, viewer)
	if err != nil {
		return nil, err
	}
	payload := post.Payload()
	return &payload, nil
}

func (s *PostService) ListPosts(ctx context.Context, filter model.PostFilter, page common.Pagination) (*model.Page[model.PostPayload], error) {
	posts, total, err := s.postRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	results := make([]model.PostPayload, 0, len(posts))
	for i := range posts {
		results = append(results, posts[i].Payload())
	}
	return &model.Page[model.PostPayload]{Results: results, Count: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *PostService) UpdatePost(ctx context.Context, userID int64, id string, req UpdatePostRequest) (*model.PostPayload, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	post, err := s.postRepo.FindByID(ctx, nil, id, userID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, common.ErrForbidden
	}

	if req.Title != nil {
		if post.Title, err = requireText("title", *req.Title, maxTitleLen); err != nil {
			return nil, err
		}
		post.Slug = postSlug(post.Title, post.ID)
	}
	if req.Content != nil {
		if post.Content, err = requireText("content", *req.Content, maxPostLen); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		tags, err := validateTags(*req.Tags)
		if err != nil {
			return nil, err
		}
		post.Tags = pq.StringArray(tags)
	}
	if req.Language != nil {
		if len(*req.Language) > maxLanguageLen {
			return nil, common.Validationf("language must be at most %d characters", maxLanguageLen)
		}
		post.Language = *req.Language
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.GetPost(ctx, id, userID)
}

func (s *PostService) DeletePost(ctx context.Context, userID int64, id string) error {
	if !validUUID(id) {
		return common.ErrNotFound
	}
	post, err := s.postRepo.FindByID(ctx, nil, id, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return common.ErrForbidden
	}
	return s.postRepo.Delete(ctx, id)
}
