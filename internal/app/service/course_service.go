package service

import (
	"context"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
	"coursehub/internal/domain/repository"

	"github.com/lib/pq"
)

type CourseService struct {
	courseRepo repository.CourseRepository
}

func NewCourseService(courseRepo repository.CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

type CourseRequest struct {
	SubjectID   *string           `json:"subject_id"`
	SubjectCode *string           `json:"subject_code"`
	Title       *string           `json:"title"`
	Term        *model.Term       `json:"term"`
	Attributes  *model.Attributes `json:"attributes"`
	Teachers    *[]string         `json:"teachers"`
	Department  *string           `json:"department"`
}

var defaultCourseAttributes = model.Attributes{
	Difficulty: model.DifficultyMedium,
	Workload:   model.WorkloadModerate,
	Grading:    model.GradingBalanced,
	Gain:       model.GainDecent,
}

// apply copies the set fields of req onto c and validates the result.
func (req CourseRequest) apply(c *model.Course) error {
	var err error
	if req.SubjectID != nil {
		if c.SubjectID, err = requireText("subject_id", *req.SubjectID, 64); err != nil {
			return err
		}
	}
	if req.SubjectCode != nil {
		if c.SubjectCode, err = requireText("subject_code", *req.SubjectCode, 64); err != nil {
			return err
		}
	}
	if req.Title != nil {
		if c.Title, err = requireText("title", *req.Title, maxTitleLen); err != nil {
			return err
		}
	}
	if req.Term != nil {
		c.TermYear = req.Term.Year
		c.TermSemester = req.Term.Semester
	}
	if req.Attributes != nil {
		c.Attributes = *req.Attributes
	}
	if req.Teachers != nil {
		c.Teachers = pq.StringArray(normalizeTags(*req.Teachers))
	}
	if req.Department != nil {
		c.Department = *req.Department
	}

	if c.SubjectID == "" || c.SubjectCode == "" || c.Title == "" {
		return common.Validationf("subject_id, subject_code and title are required")
	}
	if c.TermYear < 1900 || c.TermYear > 3000 {
		return common.Validationf("term.year %d is out of range", c.TermYear)
	}
	if !c.TermSemester.Valid() {
		return common.Validationf("term.semester %q is not one of spring, summer, fall", c.TermSemester)
	}
	if !c.Attributes.Valid() {
		return common.Validationf("attributes contain an unknown value")
	}
	return nil
}

func (s *CourseService) CreateCourse(ctx context.Context, req CourseRequest) (*model.CoursePayload, error) {
	c := &model.Course{Attributes: defaultCourseAttributes, Teachers: pq.StringArray{}, LastUpdated: time.Now()}
	if err := req.apply(c); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	payload := c.Payload()
	return &payload, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id int64) (*model.CoursePayload, error) {
	c, err := s.courseRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	payload := c.Payload()
	return &payload, nil
}

func (s *CourseService) ListCourses(ctx context.Context, filter model.CourseFilter, page common.Pagination) (*model.Page[model.CoursePayload], error) {
	if filter.Semester != "" && !filter.Semester.Valid() {
		return nil, common.Validationf("semester %q is not one of spring, summer, fall", filter.Semester)
	}
	courses, total, err := s.courseRepo.List(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, err
	}
	results := make([]model.CoursePayload, 0, len(courses))
	for i := range courses {
		results = append(results, courses[i].Payload())
	}
	return &model.Page[model.CoursePayload]{Results: results, Count: total, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *CourseService) UpdateCourse(ctx context.Context, id int64, req CourseRequest) (*model.CoursePayload, error) {
	c, err := s.courseRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(c); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return s.GetCourse(ctx, id)
}

func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	return s.courseRepo.Delete(ctx, id)
}
