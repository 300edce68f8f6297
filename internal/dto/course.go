package dto

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/money"
)

// CourseForm is the course editor. Price is typed in reais ("49.90").
type CourseForm struct {
	Title            string              `json:"title" validate:"required,min=3,max=200"`
	ShortDescription string              `json:"shortDescription" validate:"required,max=300"`
	Description      string              `json:"description" validate:"max=20000"`
	Area             string              `json:"area" validate:"required"`
	Category         string              `json:"category" validate:"required"`
	Price            string              `json:"price" validate:"required"`
	Status           models.CourseStatus `json:"status" validate:"required,oneof=draft published archived"`
}

// Normalize trims free-text fields.
func (f *CourseForm) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.ShortDescription = strings.TrimSpace(f.ShortDescription)
	f.Description = strings.TrimSpace(f.Description)
	f.Area = strings.TrimSpace(f.Area)
	f.Category = strings.TrimSpace(f.Category)
	f.Price = strings.TrimSpace(f.Price)
}

// NewCourseForm returns the defaults of the "new course" dialog.
func NewCourseForm() CourseForm {
	return CourseForm{Status: models.CourseStatusDraft, Price: "0.00"}
}

// CourseFormFrom pre-populates the editor from a course.
func CourseFormFrom(c models.Course) CourseForm {
	return CourseForm{
		Title:            c.Title,
		ShortDescription: c.ShortDescription,
		Description:      c.Description,
		Area:             c.Area,
		Category:         c.Category,
		Price:            money.FormatCents(c.Price),
		Status:           c.Status,
	}
}

// CoursePayload is the body sent to the backend. Price is in cents.
type CoursePayload struct {
	Title            string              `json:"title"`
	Slug             string              `json:"slug"`
	ShortDescription string              `json:"shortDescription"`
	Description      string              `json:"description"`
	Area             string              `json:"area"`
	Category         string              `json:"category"`
	Price            int64               `json:"price"`
	Status           models.CourseStatus `json:"status"`
}

// Payload converts the form for the backend.
func (f CourseForm) Payload() (CoursePayload, error) {
	cents, err := money.ParseCents(f.Price)
	if err != nil {
		return CoursePayload{}, appErrors.WithFields("Verifique os campos destacados.", map[string]string{
			"price": priceMessage(err),
		})
	}
	return CoursePayload{
		Title:            f.Title,
		Slug:             slug.Make(f.Title),
		ShortDescription: f.ShortDescription,
		Description:      f.Description,
		Area:             f.Area,
		Category:         f.Category,
		Price:            cents,
		Status:           f.Status,
	}, nil
}

func priceMessage(err error) string {
	for _, known := range []error{money.ErrEmpty, money.ErrNegative, money.ErrPrecision} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "preço inválido"
}
