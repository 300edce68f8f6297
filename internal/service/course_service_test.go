package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

func sampleCourses() []models.Course {
	return []models.Course{
		{ID: "c1", Title: "Gestão de Projetos", Category: "Negócios", Price: 4990, Status: models.CourseStatusPublished, CompletionRate: 72},
		{ID: "c2", Title: "Excel Avançado", Category: "Tecnologia", Price: 19990, Status: models.CourseStatusDraft, CompletionRate: 10},
		{ID: "c3", Title: "Liderança", Category: "Negócios", Price: 9900, Status: models.CourseStatusPublished, CompletionRate: 40},
	}
}

func TestCourseSaveCreateSendsCents(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("GET", "/api/courses", respond(sampleCourses()))
	env.backend.on("POST", "/api/courses", func(c backendCall) (interface{}, error) {
		payload := c.Body.(dto.CoursePayload)
		return models.Course{ID: "c9", Title: payload.Title, Price: payload.Price, Status: payload.Status}, nil
	})
	svc := NewCourseService(env.deps)
	ctx := context.Background()

	_, err := svc.List(ctx, adminSession, dto.ListQuery{})
	require.NoError(t, err)

	form, err := svc.FormFor(ctx, adminSession, "")
	require.NoError(t, err)
	form.Title = " Gestão de Projetos Ágeis "
	form.ShortDescription = "Scrum e Kanban na prática"
	form.Area = "Negócios"
	form.Category = "Gestão"
	form.Price = "49.90"

	course, snap, err := svc.Save(ctx, adminSession, "", form)

	require.NoError(t, err)
	assert.Equal(t, dialog.StateClosed, snap.State)
	assert.Equal(t, "c9", course.ID)
	call, _ := env.backend.last("POST", "/api/courses")
	payload := call.Body.(dto.CoursePayload)
	assert.Equal(t, int64(4990), payload.Price)
	assert.Equal(t, "gestao-de-projetos-ageis", payload.Slug)
	assert.Equal(t, models.CourseStatusDraft, payload.Status)

	_, err = svc.List(ctx, adminSession, dto.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, env.backend.count("GET", "/api/courses"))
}

func TestCourseSaveInvalidKeepsDialogOpen(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCourseService(env.deps)

	form := dto.NewCourseForm()
	form.Price = "49.999"
	_, snap, err := svc.Save(context.Background(), adminSession, "c1", form)

	require.Error(t, err)
	assert.Equal(t, dialog.StateOpen, snap.State)
	assert.Equal(t, "c1", snap.EntityID)
	assert.Equal(t, "campo obrigatório", snap.Errors["title"])
	assert.Zero(t, env.backend.count("PUT", "/api/courses/c1"))
	assert.Empty(t, env.notifier.all())
}

func TestCourseSavePriceErrorComesFromPayload(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCourseService(env.deps)

	form := dto.CourseForm{Title: "Excel", ShortDescription: "Planilhas", Area: "TI", Category: "Office", Price: "49.999", Status: models.CourseStatusDraft}
	_, snap, err := svc.Save(context.Background(), adminSession, "c2", form)

	require.Error(t, err)
	assert.Equal(t, dialog.StateOpen, snap.State)
	assert.Equal(t, "use no máximo duas casas decimais", snap.Errors["price"])
	assert.Zero(t, env.backend.count("PUT", "/api/courses/c2"))
}

func TestCourseDeleteShowsServerMessage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("DELETE", "/api/courses/c1", func(backendCall) (interface{}, error) {
		return nil, appErrors.Clone(appErrors.ErrConflict, "Não é possível excluir um curso com matrículas ativas")
	})
	svc := NewCourseService(env.deps)

	err := svc.Delete(context.Background(), adminSession, "c1")

	require.Error(t, err)
	note, ok := env.notifier.lastNote()
	require.True(t, ok)
	assert.Equal(t, models.NotificationError, note.Variant)
	assert.Equal(t, "Não é possível excluir um curso com matrículas ativas", note.Description)
}

func TestCourseDeleteInFlightRejectsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	env.backend.on("DELETE", "/api/courses/c1", func(backendCall) (interface{}, error) {
		close(entered)
		<-release
		return nil, nil
	})
	svc := NewCourseService(env.deps)

	var wg sync.WaitGroup
	var first error
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = svc.Delete(context.Background(), adminSession, "c1")
	}()
	<-entered

	second := svc.Delete(context.Background(), adminSession, "c1")
	close(release)
	wg.Wait()

	require.NoError(t, first)
	assert.ErrorIs(t, second, appErrors.ErrMutationInFlight)
	assert.Equal(t, 1, env.backend.count("DELETE", "/api/courses/c1"))
}

func TestCourseListStudentSeesPublishedOnly(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("GET", "/api/courses", respond(sampleCourses()))
	svc := NewCourseService(env.deps)
	lo := 50.0

	page, err := svc.List(context.Background(), studentSession, dto.ListQuery{
		Criteria: filter.Criteria{Ranges: map[string]filter.Range{"price": {Min: &lo}}},
	})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c3", page.Items[0].ID)
	assert.Equal(t, 1, page.Pagination.TotalCount)
}

func TestCourseListPaginates(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("GET", "/api/courses", respond(sampleCourses()))
	svc := NewCourseService(env.deps)

	page, err := svc.List(context.Background(), adminSession, dto.ListQuery{Page: 2, PageSize: 2})

	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c3", page.Items[0].ID)
	assert.Equal(t, 3, page.Pagination.TotalCount)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestCourseUploadImage(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("POST", "/api/courses/c1/image", respond(map[string]string{"imageUrl": "https://cdn/c1.png"}))
	svc := NewCourseService(env.deps)

	url, err := svc.UploadImage(context.Background(), adminSession, "c1", "c1.png", strings.NewReader("png"))

	require.NoError(t, err)
	assert.Equal(t, "https://cdn/c1.png", url)
	call, _ := env.backend.last("POST", "/api/courses/c1/image")
	assert.Equal(t, "image:png", call.File)
}

func TestCourseDisciplinesSorted(t *testing.T) {
	env := newTestEnv(t)
	env.backend.on("GET", "/api/courses/c1/disciplines", respond([]models.CourseDiscipline{
		{ID: "b", Name: "Execução", Order: 2, Modules: []models.CourseModule{{ID: "m2", Order: 2}, {ID: "m1", Order: 1}}},
		{ID: "a", Name: "Fundamentos", Order: 1},
	}))
	svc := NewCourseService(env.deps)

	out, err := svc.Disciplines(context.Background(), adminSession, "c1")

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "m1", out[1].Modules[0].ID)
}
