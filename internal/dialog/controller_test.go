package dialog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

type rejectForm struct {
	Comment string `json:"comment" validate:"required,min=10"`
}

func (f *rejectForm) Normalize() {
	f.Comment = strings.TrimSpace(f.Comment)
}

type goalForm struct {
	Title  string `json:"title" validate:"required"`
	Target int    `json:"target" validate:"gte=1"`
}

func TestSubmitShortCommentNeverCallsFn(t *testing.T) {
	ctrl := New[rejectForm](nil)
	ctrl.Open("doc-1", rejectForm{Comment: "   curto   "})

	called := false
	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f rejectForm) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
	snap := ctrl.Snapshot()
	assert.Equal(t, StateOpen, snap.State)
	assert.Equal(t, "doc-1", snap.EntityID)
	assert.Equal(t, "deve ter pelo menos 10 caracteres", snap.Errors["comment"])
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitSuccessClosesDialog(t *testing.T) {
	ctrl := New[rejectForm](nil)
	ctrl.Open("doc-1", rejectForm{Comment: " Documento ilegível, envie novamente. "})

	var gotID, gotComment string
	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f rejectForm) error {
		gotID, gotComment = id, f.Comment
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "doc-1", gotID)
	assert.Equal(t, "Documento ilegível, envie novamente.", gotComment)
	assert.Equal(t, Snapshot{State: StateClosed}, ctrl.Snapshot())
}

func TestSubmitFailureKeepsDialogOpenWithValues(t *testing.T) {
	ctrl := New[goalForm](nil)
	ctrl.OpenNew(goalForm{Title: "Concluir módulo 1", Target: 3})

	boom := errors.New("boom")
	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f goalForm) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateOpen, ctrl.Snapshot().State)
	assert.Equal(t, "Concluir módulo 1", ctrl.Values().Title)
}

func TestSubmitCopiesServerFieldErrors(t *testing.T) {
	ctrl := New[goalForm](nil)
	ctrl.OpenNew(goalForm{Title: "Meta", Target: 1})

	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f goalForm) error {
		return appErrors.WithFields("inválido", map[string]string{"title": "já existe"})
	})

	require.Error(t, err)
	assert.Equal(t, map[string]string{"title": "já existe"}, ctrl.Snapshot().Errors)
}

func TestSubmitRequiresOpenDialog(t *testing.T) {
	ctrl := New[goalForm](nil)

	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f goalForm) error {
		t.Fatal("submit must not run")
		return nil
	})

	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestValidationMessagesUseJSONNames(t *testing.T) {
	ctrl := New[goalForm](nil)
	ctrl.OpenNew(goalForm{})

	err := ctrl.Submit(context.Background(), func(ctx context.Context, id string, f goalForm) error { return nil })

	require.Error(t, err)
	errs := ctrl.Snapshot().Errors
	assert.Equal(t, "campo obrigatório", errs["title"])
	assert.Equal(t, "deve ser maior ou igual a 1", errs["target"])
}

func TestCloseResetsState(t *testing.T) {
	ctrl := New[goalForm](nil)
	ctrl.Open("g-1", goalForm{Title: "x"})
	ctrl.Close()

	assert.Equal(t, Snapshot{State: StateClosed}, ctrl.Snapshot())
	assert.Equal(t, goalForm{}, ctrl.Values())
}
