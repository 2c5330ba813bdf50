package service

import (
	"context"
	"fmt"
	"sync"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/jmoiron/sqlx"
)

// catalogStore backs the course, review and reply fakes so the rating
// aggregate and reply counters can be observed together.
type catalogStore struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]model.Course
	reviews map[string]model.CourseReview
	replies map[string]model.ReviewReply
}

func newCatalogStore() *catalogStore {
	return &catalogStore{
		courses: map[int64]model.Course{},
		reviews: map[string]model.CourseReview{},
		replies: map[string]model.ReviewReply{},
	}
}

type fakeCourseRepo struct{ s *catalogStore }

func (r fakeCourseRepo) Create(_ context.Context, c *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	c.ID = r.s.nextID
	r.s.courses[c.ID] = *c
	return nil
}

func (r fakeCourseRepo) Update(_ context.Context, c *model.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[c.ID]; !ok {
		return common.ErrNotFound
	}
	r.s.courses[c.ID] = *c
	return nil
}

func (r fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.s.courses, id)
	return nil
}

func (r fakeCourseRepo) FindByID(_ context.Context, _ *sqlx.Tx, id int64) (*model.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &c, nil
}

func (r fakeCourseRepo) List(_ context.Context, f model.CourseFilter, limit, offset int) ([]model.Course, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Course
	for id := int64(1); id <= r.s.nextID; id++ {
		c, ok := r.s.courses[id]
		if !ok {
			continue
		}
		if f.Department != "" && c.Department != f.Department {
			continue
		}
		if f.Semester != "" && c.TermSemester != f.Semester {
			continue
		}
		if f.Year != 0 && c.TermYear != f.Year {
			continue
		}
		out = append(out, c)
	}
	return window(out, limit, offset), len(out), nil
}

func (r fakeCourseRepo) RefreshRating(_ context.Context, _ *sqlx.Tx, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return common.ErrNotFound
	}
	var sum float64
	var n int
	for _, rv := range r.s.reviews {
		if rv.CourseID == id {
			sum += rv.OverallRating
			n++
		}
	}
	c.RatingReviewsCount = n
	c.RatingScore = 0
	if n > 0 {
		c.RatingScore = sum / float64(n)
	}
	r.s.courses[id] = c
	return nil
}

type fakeReviewRepo struct{ s *catalogStore }

func (r fakeReviewRepo) Create(_ context.Context, _ *sqlx.Tx, rv *model.CourseReview) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv.AuthorUsername = fmt.Sprintf("user%d", rv.AuthorID)
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r fakeReviewRepo) Update(_ context.Context, _ *sqlx.Tx, rv *model.CourseReview) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reviews[rv.ID] = *rv
	return nil
}

func (r fakeReviewRepo) Delete(_ context.Context, _ *sqlx.Tx, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reviews, id)
	return nil
}

func (r fakeReviewRepo) FindByID(_ context.Context, _ *sqlx.Tx, id string) (*model.CourseReview, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rv, nil
}

func (r fakeReviewRepo) List(_ context.Context, courseID int64, limit, offset int) ([]model.CourseReview, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.CourseReview
	for _, rv := range r.s.reviews {
		if courseID == 0 || rv.CourseID == courseID {
			out = append(out, rv)
		}
	}
	return window(out, limit, offset), len(out), nil
}

func (r fakeReviewRepo) AdjustRepliesCount(_ context.Context, _ *sqlx.Tx, id string, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return common.ErrNotFound
	}
	rv.RepliesCount += delta
	if rv.RepliesCount < 0 {
		rv.RepliesCount = 0
	}
	r.s.reviews[id] = rv
	return nil
}

type fakeReplyRepo struct{ s *catalogStore }

func (r fakeReplyRepo) Create(_ context.Context, _ *sqlx.Tx, rp *model.ReviewReply) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp.AuthorUsername = fmt.Sprintf("user%d", rp.AuthorID)
	r.s.replies[rp.ID] = *rp
	return nil
}

func (r fakeReplyRepo) FindByID(_ context.Context, _ *sqlx.Tx, id string) (*model.ReviewReply, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.replies[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rp, nil
}

func (r fakeReplyRepo) List(_ context.Context, reviewID string, limit, offset int) ([]model.ReviewReply, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ReviewReply
	for _, rp := range r.s.replies {
		if reviewID == "" || rp.ReviewID == reviewID {
			out = append(out, rp)
		}
	}
	return window(out, limit, offset), len(out), nil
}

func (r fakeReplyRepo) UpdateContent(_ context.Context, id, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.replies[id]
	if !ok {
		return common.ErrNotFound
	}
	rp.Content = content
	r.s.replies[id] = rp
	return nil
}

func (r fakeReplyRepo) SoftDelete(_ context.Context, _ *sqlx.Tx, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.replies[id]
	if !ok {
		return false, common.ErrNotFound
	}
	if rp.IsDeleted {
		return false, nil
	}
	rp.IsDeleted = true
	r.s.replies[id] = rp
	return true, nil
}
