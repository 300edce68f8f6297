package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

func TestCourseFormPriceRoundTrip(t *testing.T) {
	form := CourseForm{Title: "Gestão de Projetos Ágeis", Price: "49.90", Status: models.CourseStatusDraft}

	payload, err := form.Payload()
	require.NoError(t, err)
	assert.Equal(t, int64(4990), payload.Price)
	assert.Equal(t, "gestao-de-projetos-ageis", payload.Slug)

	loaded := CourseFormFrom(models.Course{Price: 4990})
	assert.Equal(t, "49.90", loaded.Price)
}

func TestCourseFormPriceErrors(t *testing.T) {
	_, err := CourseForm{Price: "49.999"}.Payload()
	require.Error(t, err)
	apiErr := appErrors.FromError(err)
	assert.Equal(t, "use no máximo duas casas decimais", apiErr.Fields["price"])

	_, err = CourseForm{Price: "abc"}.Payload()
	assert.Equal(t, "preço inválido", appErrors.FromError(err).Fields["price"])
}

func TestRejectFormNormalize(t *testing.T) {
	f := RejectForm{Comments: "  Documento ilegível, envie novamente.  "}
	f.Normalize()
	assert.Equal(t, "Documento ilegível, envie novamente.", f.Comments)
}
