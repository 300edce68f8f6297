package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/service"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/response"
)

const maxImageSize = 5 << 20

type courseService interface {
	List(ctx context.Context, sess session.Session, q dto.ListQuery) (service.Page[models.Course], error)
	Get(ctx context.Context, sess session.Session, id string) (*models.Course, error)
	FormFor(ctx context.Context, sess session.Session, id string) (dto.CourseForm, error)
	Save(ctx context.Context, sess session.Session, id string, form dto.CourseForm) (*models.Course, dialog.Snapshot, error)
	Delete(ctx context.Context, sess session.Session, id string) error
	UploadImage(ctx context.Context, sess session.Session, id, filename string, r io.Reader) (string, error)
	Disciplines(ctx context.Context, sess session.Session, id string) ([]models.CourseDiscipline, error)
}

// CourseHandler exposes the course catalogue and editor.
type CourseHandler struct {
	courses courseService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param q query string false "Search title, short description or category"
// @Param status query string false "draft, published or archived"
// @Param minPrice query number false "Minimum price in reais"
// @Param maxPrice query number false "Maximum price in reais"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size, 0 for all"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	q, err := listQuery(c, service.CourseRanges...)
	if err != nil {
		response.Error(c, err)
		return
	}
	page, err := h.courses.List(c.Request.Context(), sess, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	writePage(c, page)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Form godoc
// @Summary Course editor values
// @Description Returns defaults for a new course or the current values of an existing one.
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID or new"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/form [get]
func (h *CourseHandler) Form(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	id := trimmedParam(c, "id")
	if id == "new" {
		id = ""
	}
	form, err := h.courses.FormFor(c.Request.Context(), sess, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, form, nil)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseForm true "Course form"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body dto.CourseForm true "Course form"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	h.save(c, trimmedParam(c, "id"), http.StatusOK)
}

func (h *CourseHandler) save(c *gin.Context, id string, status int) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var form dto.CourseForm
	if !bindJSON(c, &form) {
		return
	}
	course, snap, err := h.courses.Save(c.Request.Context(), sess, id, form)
	writeMutation(c, status, course, snap, err)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param id path string true "Course ID"
// @Success 204
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UploadImage godoc
// @Summary Upload course cover image
// @Tags Courses
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID"
// @Param image formData file true "Image"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/image [post]
func (h *CourseHandler) UploadImage(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.WithFields("imagem obrigatória", map[string]string{"image": "selecione uma imagem"}))
		return
	}
	if header.Size > maxImageSize {
		response.Error(c, appErrors.WithFields("imagem muito grande", map[string]string{"image": "tamanho máximo de 5 MB"}))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "não foi possível ler a imagem"))
		return
	}
	defer file.Close()

	imageURL, err := h.courses.UploadImage(c.Request.Context(), sess, c.Param("id"), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"imageUrl": imageURL}, nil)
}

// Disciplines godoc
// @Summary Course curriculum
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/disciplines [get]
func (h *CourseHandler) Disciplines(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	disciplines, err := h.courses.Disciplines(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, disciplines, nil)
}
