package models

import "time"

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// Valid reports whether s is a known status.
func (s CourseStatus) Valid() bool {
	switch s {
	case CourseStatusDraft, CourseStatusPublished, CourseStatusArchived:
		return true
	}
	return false
}

// Label is the badge text.
func (s CourseStatus) Label() string {
	switch s {
	case CourseStatusDraft:
		return "Rascunho"
	case CourseStatusPublished:
		return "Publicado"
	case CourseStatusArchived:
		return "Arquivado"
	}
	return string(s)
}

// PluralLabel is the tab text.
func (s CourseStatus) PluralLabel() string {
	switch s {
	case CourseStatusDraft:
		return "rascunhos"
	case CourseStatusPublished:
		return "publicados"
	case CourseStatusArchived:
		return "arquivados"
	}
	return string(s)
}

// Course is a catalog entry. Price is in cents.
type Course struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Slug             string       `json:"slug,omitempty"`
	ShortDescription string       `json:"shortDescription"`
	Description      string       `json:"description"`
	Area             string       `json:"area"`
	Category         string       `json:"category"`
	Price            int64        `json:"price"`
	Status           CourseStatus `json:"status"`
	ImageURL         string       `json:"imageUrl,omitempty"`
	CompletionRate   float64      `json:"completionRate,omitempty"`
	CreatedAt        *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time   `json:"updatedAt,omitempty"`
}

// CourseDiscipline links a subject to a course with its module tree.
type CourseDiscipline struct {
	ID        string         `json:"id"`
	CourseID  string         `json:"courseId"`
	SubjectID string         `json:"subjectId"`
	Name      string         `json:"name,omitempty"`
	Order     int            `json:"order"`
	Modules   []CourseModule `json:"modules"`
}

// CourseModule groups lessons and quizzes inside a discipline.
type CourseModule struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Order   int            `json:"order"`
	Lessons []CourseLesson `json:"lessons"`
	Quizzes []CourseQuiz   `json:"quizzes"`
}

type CourseLesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
	Duration int    `json:"duration,omitempty"`
	VideoURL string `json:"videoUrl,omitempty"`
}

type CourseQuiz struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Order         int    `json:"order"`
	QuestionCount int    `json:"questionCount,omitempty"`
}
