package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"
	"coursehub/internal/platform/database"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const maxReviewLen = 10000

// ReviewService keeps the parent course's rating aggregate in step with
// its reviews.
type ReviewService struct {
	reviewRepo repository.ReviewRepository
	courseRepo repository.CourseRepository
	tx         database.Transactor
	now        func() time.Time
}

func NewReviewService(reviewRepo repository.ReviewRepository, courseRepo repository.CourseRepository, tx database.Transactor) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, courseRepo: courseRepo, tx: tx, now: time.Now}
}

type ReviewRequest struct {
	Course        int64             `json:"course"`
	OverallRating *float64          `json:"overallRating"`
	Attributes    *model.Attributes `json:"attributes"`
	Content       *string           `json:"content"`
	TermYear      *int64            `json:"term_year"`
	TermSemester  *string           `json:"term_semester"`
}

func (req ReviewRequest) apply(rv *model.CourseReview) error {
	if req.OverallRating != nil {
		if *req.OverallRating < 0 || *req.OverallRating > 10 {
			return common.Validationf("overallRating must be between 0 and 10")
		}
		rv.OverallRating = *req.OverallRating
	}
	if req.Attributes != nil {
		if !req.Attributes.Valid() {
			return common.Validationf("attributes contain an unknown value")
		}
		rv.Attributes = *req.Attributes
	}
	if req.Content != nil {
		content, err := requireText("content", *req.Content, maxReviewLen)
		if err != nil {
			return err
		}
		rv.Content = content
	}
	if req.TermYear != nil {
		rv.TermYear = sql.NullInt64{Int64: *req.TermYear, Valid: true}
	}
	if req.TermSemester != nil {
		if *req.TermSemester == "" {
			rv.TermSemester = sql.NullString{}
		} else {
			if !model.Semester(*req.TermSemester).Valid() {
				return common.Validationf("term_semester %q is not one of spring, summer, fall", *req.TermSemester)
			}
			rv.TermSemester = sql.NullString{String: *req.TermSemester, Valid: true}
		}
	}
	return nil
}

func (s *ReviewService) CreateReview(ctx context.Context, authorID int64, req ReviewRequest) (*model.ReviewPayload, error) {
	if req.OverallRating == nil || req.Attributes == nil || req.Content == nil {
		return nil, common.Validationf("overallRating, attributes and content are required")
	}
	rv := &model.CourseReview{ID: uuid.NewString(), CourseID: req.Course, CreatedAt: s.now()}
	rv.AuthorID = authorID
	if err := req.apply(rv); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.courseRepo.FindByID(ctx, tx, req.Course); err != nil {
			return fmt.Errorf("course %d: %w", req.Course, err)
		}
		if err := s.reviewRepo.Create(ctx, tx, rv); err != nil {
			return err
		}
		return s.courseRepo.RefreshRating(ctx, tx, req.Course)
	})
	if err != nil {
		return nil, err
	}
	return s.GetReview(ctx, rv.ID)
}

func (s *ReviewService) GetReview(ctx context.Context, id string) (*model.ReviewPayload, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	rv, err := s.reviewRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	payload := rv.Payload()
	return &payload, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, courseID int64, page common.Pagination) (*model.Page[model.ReviewPayload], error) {
	reviews, total, err := s.reviewRepo.List(ctx, courseID, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	results := make([]model.ReviewPayload, 0, len(reviews))
	for i := range reviews {
		results = append(results, reviews[i].Payload())
	}
	return &model.Page[model.ReviewPayload]{Results: results, Count: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID int64, id string, req ReviewRequest) (*model.ReviewPayload, error) {
	if !validUUID(id) {
		return nil, common.ErrNotFound
	}
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		rv, err := s.reviewRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if rv.AuthorID != userID {
			return common.ErrForbidden
		}
		if err := req.apply(rv); err != nil {
			return err
		}
		if err := s.reviewRepo.Update(ctx, tx, rv); err != nil {
			return err
		}
		return s.courseRepo.RefreshRating(ctx, tx, rv.CourseID)
	})
	if err != nil {
		return nil, err
	}
	return s.GetReview(ctx, id)
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID int64, id string) error {
	if !validUUID(id) {
		return common.ErrNotFound
	}
	return s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		rv, err := s.reviewRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if rv.AuthorID != userID {
			return common.ErrForbidden
		}
		if err := s.reviewRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.courseRepo.RefreshRating(ctx, tx, rv.CourseID)
	})
}
