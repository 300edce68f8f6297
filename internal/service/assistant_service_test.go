package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/jobs"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
	history [][]models.ChatMessage
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, history []models.ChatMessage, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	g.history = append(g.history, history)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

type fakeDispatcher struct {
	jobs []jobs.Job
	err  error
}

func (d *fakeDispatcher) Dispatch(jobType, userID string, payload interface{}) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	job := jobs.Job{ID: "job-1", Type: jobType, UserID: userID, Payload: payload}
	d.jobs = append(d.jobs, job)
	return job.ID, nil
}

func newAssistant(gen Generator, notifier mutation.Notifier, limit int) *AssistantService {
	exec := mutation.NewExecutor(nil, zap.NewNop(), mutation.WithNotifier(notifier))
	return NewAssistantService(config.AssistantConfig{HistoryLimit: limit}, gen, exec, notifier, nil, zap.NewNop())
}

func TestAssistantAskAppendsExchange(t *testing.T) {
	gen := &fakeGenerator{reply: "Um sprint dura de 1 a 4 semanas."}
	svc := newAssistant(gen, &recordingNotifier{}, 4)
	ctx := context.Background()

	exchange, snap, err := svc.Ask(ctx, studentSession, dto.ChatForm{Message: " Quanto dura um sprint? "})
	require.NoError(t, err)
	assert.Equal(t, dialog.StateClosed, snap.State)
	assert.Equal(t, "Quanto dura um sprint?", exchange.Question.Content)
	assert.Equal(t, models.ChatRoleAssistant, exchange.Answer.Role)

	_, _, err = svc.Ask(ctx, studentSession, dto.ChatForm{Message: "E o daily?"})
	require.NoError(t, err)
	assert.Len(t, gen.history[1], 2)

	_, _, err = svc.Ask(ctx, studentSession, dto.ChatForm{Message: "E a retrospectiva?"})
	require.NoError(t, err)

	history := svc.History(studentSession)
	require.Len(t, history, 4)
	assert.Equal(t, "E o daily?", history[0].Content)
	assert.Empty(t, svc.History(adminSession))

	svc.Clear(studentSession)
	assert.Empty(t, svc.History(studentSession))
}

func TestAssistantAskFailureKeepsHistory(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	notifier := &recordingNotifier{}
	svc := newAssistant(gen, notifier, 10)

	_, snap, err := svc.Ask(context.Background(), studentSession, dto.ChatForm{Message: "Olá"})

	require.Error(t, err)
	assert.Equal(t, dialog.StateOpen, snap.State)
	assert.Empty(t, svc.History(studentSession))
	note, _ := notifier.lastNote()
	assert.Equal(t, "Não foi possível obter uma resposta.", note.Description)
}

func TestAssistantDisabledWithoutGenerator(t *testing.T) {
	svc := newAssistant(nil, &recordingNotifier{}, 10)

	_, _, err := svc.Ask(context.Background(), studentSession, dto.ChatForm{Message: "Olá"})

	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, appErrors.FromError(err).Code)
}

func TestAssistantContentJobNotifiesResult(t *testing.T) {
	gen := &fakeGenerator{reply: "1. O que é Scrum?"}
	notifier := &recordingNotifier{}
	svc := newAssistant(gen, notifier, 10)
	queue := &fakeDispatcher{}
	svc.UseQueue(queue, nil)
	ctx := context.Background()

	ack, _, err := svc.RequestContent(ctx, adminSession, dto.ContentRequestForm{Kind: "QUIZ", Topic: "Scrum", CourseID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "job-1", ack.JobID)
	require.Len(t, queue.jobs, 1)

	require.NoError(t, svc.HandleJob(ctx, queue.jobs[0]))

	assert.True(t, strings.HasPrefix(gen.prompts[0], "Crie um questionário"))
	note, ok := notifier.lastNote()
	require.True(t, ok)
	assert.Equal(t, "admin-1", note.UserID)
	content, ok := note.Data.(dto.GeneratedContent)
	require.True(t, ok)
	assert.Equal(t, "quiz", content.Kind)
	assert.Equal(t, "1. O que é Scrum?", content.Content)
}

func TestAssistantContentRequestValidates(t *testing.T) {
	svc := newAssistant(&fakeGenerator{}, &recordingNotifier{}, 10)
	svc.UseQueue(&fakeDispatcher{}, nil)

	_, snap, err := svc.RequestContent(context.Background(), adminSession, dto.ContentRequestForm{Kind: "poem", Topic: "Go"})

	require.Error(t, err)
	assert.Contains(t, snap.Errors, "kind")
	assert.Contains(t, snap.Errors, "topic")
}

func TestAssistantJobFailureNotifies(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newAssistant(&fakeGenerator{}, notifier, 10)

	svc.HandleJobFailure(context.Background(), jobs.Job{ID: "job-2", UserID: "admin-1"}, errors.New("boom"))

	note, ok := notifier.lastNote()
	require.True(t, ok)
	assert.Equal(t, models.NotificationError, note.Variant)
	assert.Equal(t, "Não foi possível gerar o material. Tente novamente.", note.Description)
}
