package service

import (
	"context"
	"io"
	"net/http"
	"sort"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/money"
	"github.com/noah-isme/lms-portal-gateway/pkg/upstream"
)

var courseSpec = filter.Spec[models.Course]{
	Search: []func(models.Course) string{
		func(c models.Course) string { return c.Title },
		func(c models.Course) string { return c.ShortDescription },
		func(c models.Course) string { return c.Category },
	},
	Status: func(c models.Course) string { return string(c.Status) },
	Ranges: map[string]func(models.Course) float64{
		"price": func(c models.Course) float64 { return money.ToReais(c.Price) },
		"rate":  func(c models.Course) float64 { return c.CompletionRate },
	},
}

var courseLabels = filter.Labels{
	Noun: "cursos",
	Tab:  func(s string) string { return models.CourseStatus(s).PluralLabel() },
}

// CourseRanges are the numeric filters accepted by course lists.
var CourseRanges = []string{"price", "rate"}

// CourseService manages the course catalogue.
type CourseService struct {
	deps Deps
}

// NewCourseService constructs a CourseService.
func NewCourseService(deps Deps) *CourseService {
	return &CourseService{deps: deps.withDefaults()}
}

func coursesKey() query.Key { return query.NewKey(pathCourses) }

// List returns the filtered catalogue. Students only see published courses.
func (s *CourseService) List(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.Course], error) {
	res := fetchCollection[models.Course](ctx, s.deps, sess, coursesKey().Scoped(sess.Scope()), pathCourses, nil)
	items, err := res.Unpack()
	if err != nil {
		return Page[models.Course]{}, err
	}
	if sess.In(models.PortalStudent) {
		items = filter.Apply(items, courseSpec, filter.Criteria{Status: string(models.CourseStatusPublished)})
	}
	return buildPage(items, res, courseSpec, courseLabels, q), nil
}

// Get loads one course.
func (s *CourseService) Get(ctx context.Context, sess session.Session, id string) (*models.Course, error) {
	res := fetchOne[models.Course](ctx, s.deps, sess, coursesKey().With(id).Scoped(sess.Scope()), pathCourses+"/"+id)
	course, err := res.Unpack()
	if err != nil {
		return nil, err
	}
	if sess.In(models.PortalStudent) && course.Status != models.CourseStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "curso não encontrado")
	}
	return &course, nil
}

// FormFor returns the editor pre-populated for id, or the defaults of a new
// course when id is empty.
func (s *CourseService) FormFor(ctx context.Context, sess session.Session, id string) (dto.CourseForm, error) {
	if id == "" {
		return dto.NewCourseForm(), nil
	}
	course, err := s.Get(ctx, sess, id)
	if err != nil {
		return dto.CourseForm{}, err
	}
	return dto.CourseFormFrom(*course), nil
}

// Save creates a course when id is empty and updates it otherwise. The
// returned snapshot is the editor state after the attempt.
func (s *CourseService) Save(ctx context.Context, sess session.Session, id string, form dto.CourseForm) (*models.Course, dialog.Snapshot, error) {
	var saved *models.Course
	snap, err := submitForm(ctx, s.deps.Validate, id, form, func(ctx context.Context, entityID string, f dto.CourseForm) error {
		payload, err := f.Payload()
		if err != nil {
			return err
		}
		spec := mutation.Spec{
			Name:        "course.create",
			LockKey:     "course:new:" + sess.UserID() + ":" + payload.Slug,
			Invalidates: []query.Key{coursesKey()},
			Success:     mutation.Message{Title: "Curso criado", Description: "O curso foi criado com sucesso."},
			Failure:     mutation.Failure{Title: "Erro ao criar curso", Fallback: "Não foi possível criar o curso."},
			Actor:       sess,
			Resource:    "course",
		}
		method, path := http.MethodPost, pathCourses
		if entityID != "" {
			spec.Name = "course.update"
			spec.LockKey = "course:" + entityID
			spec.ResourceID = entityID
			spec.Success = mutation.Message{Title: "Curso atualizado", Description: "As alterações foram salvas."}
			spec.Failure = mutation.Failure{Title: "Erro ao atualizar curso", Fallback: "Não foi possível salvar as alterações."}
			method, path = http.MethodPut, pathCourses+"/"+entityID
		}
		course, err := mutation.Execute(ctx, s.deps.Mutations, spec, func(ctx context.Context) (models.Course, error) {
			var out models.Course
			err := s.deps.Backend.Send(ctx, sess.Token, method, path, payload, &out)
			return out, err
		})
		if err != nil {
			return err
		}
		saved = &course
		return nil
	})
	return saved, snap, err
}

// Delete removes a course.
func (s *CourseService) Delete(ctx context.Context, sess session.Session, id string) error {
	return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:        "course.delete",
		LockKey:     "course:" + id,
		Invalidates: []query.Key{coursesKey()},
		Success:     mutation.Message{Title: "Curso excluído", Description: "O curso foi removido."},
		Failure:     mutation.Failure{Title: "Erro ao excluir curso", Fallback: "Não foi possível excluir o curso."},
		Actor:       sess,
		Resource:    "course",
		ResourceID:  id,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodDelete, pathCourses+"/"+id, nil, nil)
	})
}

type imageUpload struct {
	ImageURL string `json:"imageUrl"`
}

// UploadImage replaces the course cover and returns its new URL.
func (s *CourseService) UploadImage(ctx context.Context, sess session.Session, id, filename string, r io.Reader) (string, error) {
	res, err := mutation.Execute(ctx, s.deps.Mutations, mutation.Spec{
		Name:        "course.upload_image",
		LockKey:     "course-image:" + id,
		Invalidates: []query.Key{coursesKey()},
		Success:     mutation.Message{Title: "Imagem atualizada"},
		Failure:     mutation.Failure{Title: "Erro ao enviar imagem", Fallback: "Não foi possível enviar a imagem."},
		Actor:       sess,
		Resource:    "course",
		ResourceID:  id,
	}, func(ctx context.Context) (imageUpload, error) {
		var out imageUpload
		err := s.deps.Backend.Upload(ctx, sess.Token, pathCourses+"/"+id+"/image", nil,
			upstream.FilePart{Field: "image", Filename: filename, Reader: r}, &out)
		return out, err
	})
	return res.ImageURL, err
}

// Disciplines returns the course structure ordered for display.
func (s *CourseService) Disciplines(ctx context.Context, sess session.Session, id string) ([]models.CourseDiscipline, error) {
	key := coursesKey().With(id, "disciplines").Scoped(sess.Scope())
	res := fetchCollection[models.CourseDiscipline](ctx, s.deps, sess, key, pathCourses+"/"+id+"/disciplines", nil)
	items, err := res.Unpack()
	if err != nil {
		return nil, err
	}
	out := make([]models.CourseDiscipline, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	for i := range out {
		modules := append([]models.CourseModule(nil), out[i].Modules...)
		sort.SliceStable(modules, func(a, b int) bool { return modules[a].Order < modules[b].Order })
		out[i].Modules = modules
	}
	return out, nil
}
