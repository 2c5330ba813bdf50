package model

import (
	"time"

	"github.com/lib/pq"
)

type Semester string
type Difficulty string
type Workload string
type Grading string
type Gain string

const (
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
	SemesterFall   Semester = "fall"

	DifficultyVeryEasy Difficulty = "veryEasy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "veryHard"

	WorkloadLight     Workload = "light"
	WorkloadModerate  Workload = "moderate"
	WorkloadHeavy     Workload = "heavy"
	WorkloadVeryHeavy Workload = "veryHeavy"

	GradingLenient  Grading = "lenient"
	GradingBalanced Grading = "balanced"
	GradingStrict   Grading = "strict"

	GainLow    Gain = "low"
	GainDecent Gain = "decent"
	GainHigh   Gain = "high"
)

func (s Semester) Valid() bool {
	switch s {
	case SemesterSpring, SemesterSummer, SemesterFall:
		return true
	}
	return false
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyVeryEasy, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard:
		return true
	}
	return false
}

func (w Workload) Valid() bool {
	switch w {
	case WorkloadLight, WorkloadModerate, WorkloadHeavy, WorkloadVeryHeavy:
		return true
	}
	return false
}

func (g Grading) Valid() bool {
	switch g {
	case GradingLenient, GradingBalanced, GradingStrict:
		return true
	}
	return false
}

func (g Gain) Valid() bool {
	switch g {
	case GainLow, GainDecent, GainHigh:
		return true
	}
	return false
}

// Attributes are the four categorical ratings shared by courses and reviews.
type Attributes struct {
	Difficulty Difficulty `db:"attr_difficulty" json:"difficulty"`
	Workload   Workload   `db:"attr_workload" json:"workload"`
	Grading    Grading    `db:"attr_grading" json:"grading"`
	Gain       Gain       `db:"attr_gain" json:"gain"`
}

func (a Attributes) Valid() bool {
	return a.Difficulty.Valid() && a.Workload.Valid() && a.Grading.Valid() && a.Gain.Valid()
}

type Term struct {
	Year     int      `json:"year"`
	Semester Semester `json:"semester"`
}

type Rating struct {
	Score        float64 `json:"score"`
	ReviewsCount int     `json:"reviewsCount"`
}

type Course struct {
	ID                 int64          `db:"id"`
	SubjectID          string         `db:"subject_id"`
	SubjectCode        string         `db:"subject_code"`
	Title              string         `db:"title"`
	TermYear           int            `db:"term_year"`
	TermSemester       Semester       `db:"term_semester"`
	RatingScore        float64        `db:"rating_score"`
	RatingReviewsCount int            `db:"rating_reviews_count"`
	Teachers           pq.StringArray `db:"teachers"`
	Department         string         `db:"department"`
	LastUpdated        time.Time      `db:"last_updated"`
	Attributes
}

type CoursePayload struct {
	ID          int64      `json:"id"`
	SubjectID   string     `json:"subject_id"`
	SubjectCode string     `json:"subject_code"`
	Title       string     `json:"title"`
	Term        Term       `json:"term"`
	Rating      Rating     `json:"rating"`
	Attributes  Attributes `json:"attributes"`
	Teachers    []string   `json:"teachers"`
	Department  string     `json:"department"`
	LastUpdated time.Time  `json:"last_updated"`
}

func (c *Course) Payload() CoursePayload {
	teachers := []string(c.Teachers)
	if teachers == nil {
		teachers = []string{}
	}
	return CoursePayload{
		ID:          c.ID,
		SubjectID:   c.SubjectID,
		SubjectCode: c.SubjectCode,
		Title:       c.Title,
		Term:        Term{Year: c.TermYear, Semester: c.TermSemester},
		Rating:      Rating{Score: c.RatingScore, ReviewsCount: c.RatingReviewsCount},
		Attributes:  c.Attributes,
		Teachers:    teachers,
		Department:  c.Department,
		LastUpdated: c.LastUpdated,
	}
}

type CourseFilter struct {
	Search     string
	Department string
	Semester   Semester
	Year       int
}
