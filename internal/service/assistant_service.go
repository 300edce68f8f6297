package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/jobs"
)

// JobContentGeneration is the queue job type for course material requests.
const JobContentGeneration = "assistant.generate_content"

const chatSystemPrompt = "Você é o assistente de uma plataforma de cursos online. " +
	"Responda em português do Brasil, de forma objetiva e cordial."

var contentPrompts = map[string]string{
	"lesson":      "Escreva o roteiro de uma aula sobre %s.",
	"quiz":        "Crie um questionário de 5 perguntas de múltipla escolha sobre %s, indicando a resposta correta.",
	"summary":     "Escreva um resumo didático sobre %s.",
	"description": "Escreva a descrição comercial de um curso sobre %s.",
}

// Generator produces model text. *ai.Gemini satisfies it.
type Generator interface {
	Generate(ctx context.Context, system string, history []models.ChatMessage, prompt string) (string, error)
}

// Dispatcher enqueues background work. *jobs.Queue satisfies it.
type Dispatcher interface {
	Dispatch(jobType, userID string, payload interface{}) (string, error)
}

// JobObserver counts finished jobs.
type JobObserver interface {
	ObserveJob(jobType, outcome string)
}

type contentJob struct {
	Form dto.ContentRequestForm
}

// AssistantService is the AI chat and content generator. Chat history lives
// in memory per user and is capped at the configured length.
type AssistantService struct {
	generator Generator
	mutations *mutation.Executor
	notifier  mutation.Notifier
	queue     Dispatcher
	observer  JobObserver
	validate  *validator.Validate
	cfg       config.AssistantConfig
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	chats map[string][]models.ChatMessage
}

// NewAssistantService constructs the assistant. A nil generator disables it.
func NewAssistantService(cfg config.AssistantConfig, generator Generator, mutations *mutation.Executor, notifier mutation.Notifier, validate *validator.Validate, logger *zap.Logger) *AssistantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dialog.NewValidator()
	}
	if mutations == nil {
		mutations = mutation.NewExecutor(nil, logger)
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &AssistantService{
		generator: generator,
		mutations: mutations,
		notifier:  notifier,
		validate:  validate,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		chats:     make(map[string][]models.ChatMessage),
	}
}

// UseQueue attaches the background queue used by RequestContent.
func (s *AssistantService) UseQueue(q Dispatcher, observer JobObserver) {
	s.queue = q
	s.observer = observer
}

// Enabled reports whether a model is configured.
func (s *AssistantService) Enabled() bool {
	return s != nil && s.generator != nil
}

func (s *AssistantService) disabled() error {
	return appErrors.Clone(appErrors.ErrFeatureDisabled, "Assistente indisponível no momento.")
}

// History returns the caller's conversation, oldest first.
func (s *AssistantService) History(sess session.Session) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := s.chats[sess.UserID()]
	out := make([]models.ChatMessage, len(history))
	copy(out, history)
	return out
}

// Clear forgets the caller's conversation.
func (s *AssistantService) Clear(sess session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, sess.UserID())
}

// Ask sends one user turn. The question and answer are appended together, so
// a failed turn leaves the history untouched.
func (s *AssistantService) Ask(ctx context.Context, sess session.Session, form dto.ChatForm) (*dto.ChatExchange, dialog.Snapshot, error) {
	if !s.Enabled() {
		return nil, dialog.Snapshot{State: dialog.StateClosed}, s.disabled()
	}
	var exchange *dto.ChatExchange
	snap, err := submitForm(ctx, s.validate, "", form, func(ctx context.Context, _ string, f dto.ChatForm) error {
		answer, err := mutation.Execute(ctx, s.mutations, mutation.Spec{
			Name:     "assistant.chat",
			LockKey:  "assistant:" + sess.UserID(),
			Failure:  mutation.Failure{Title: "Erro no assistente", Fallback: "Não foi possível obter uma resposta."},
			Actor:    sess,
			Resource: "assistant",
		}, func(ctx context.Context) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
			return s.generator.Generate(ctx, chatSystemPrompt, s.History(sess), f.Message)
		})
		if err != nil {
			return err
		}
		now := s.now().UTC()
		exchange = &dto.ChatExchange{
			Question: models.ChatMessage{ID: uuid.NewString(), Role: models.ChatRoleUser, Content: f.Message, Timestamp: now},
			Answer:   models.ChatMessage{ID: uuid.NewString(), Role: models.ChatRoleAssistant, Content: answer, Timestamp: now},
		}
		s.remember(sess.UserID(), exchange.Question, exchange.Answer)
		return nil
	})
	return exchange, snap, err
}

func (s *AssistantService) remember(userID string, msgs ...models.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.chats[userID], msgs...)
	if over := len(history) - s.cfg.HistoryLimit; over > 0 {
		history = append([]models.ChatMessage(nil), history[over:]...)
	}
	s.chats[userID] = history
}

// RequestContent queues a generation job. The result arrives as a
// notification carrying dto.GeneratedContent.
func (s *AssistantService) RequestContent(ctx context.Context, sess session.Session, form dto.ContentRequestForm) (*dto.ContentJob, dialog.Snapshot, error) {
	if !s.Enabled() || s.queue == nil {
		return nil, dialog.Snapshot{State: dialog.StateClosed}, s.disabled()
	}
	var queued *dto.ContentJob
	snap, err := submitForm(ctx, s.validate, "", form, func(ctx context.Context, _ string, f dto.ContentRequestForm) error {
		id, err := s.queue.Dispatch(JobContentGeneration, sess.UserID(), contentJob{Form: f})
		if err != nil {
			s.logger.Warn("enqueue content generation", zap.String("user_id", sess.UserID()), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrFeatureDisabled.Code, appErrors.ErrFeatureDisabled.Status,
				"Muitas solicitações em andamento. Tente novamente em instantes.")
		}
		queued = &dto.ContentJob{JobID: id, Kind: f.Kind}
		return nil
	})
	return queued, snap, err
}

// HandleJob is the queue handler for content generation.
func (s *AssistantService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(contentJob)
	if !ok {
		s.logger.Error("unexpected assistant job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	form := payload.Form
	template, ok := contentPrompts[form.Kind]
	if !ok {
		template = contentPrompts["summary"]
	}
	prompt := fmt.Sprintf(template, form.Topic)
	if form.Audience != "" {
		prompt += " Público-alvo: " + form.Audience + "."
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	text, err := s.generator.Generate(genCtx, chatSystemPrompt, nil, prompt)
	if err != nil {
		return err
	}

	s.observeJob(job.Type, "success")
	s.notify(ctx, models.Notification{
		UserID:      job.UserID,
		Variant:     models.NotificationSuccess,
		Title:       "Conteúdo gerado",
		Description: "O material solicitado está pronto.",
		Data: dto.GeneratedContent{
			JobID:    job.ID,
			Kind:     form.Kind,
			Topic:    form.Topic,
			CourseID: form.CourseID,
			Content:  text,
		},
	})
	return nil
}

// HandleJobFailure tells the requester that generation gave up.
func (s *AssistantService) HandleJobFailure(ctx context.Context, job jobs.Job, err error) {
	s.observeJob(job.Type, "failure")
	s.notify(ctx, models.Notification{
		UserID:      job.UserID,
		Variant:     models.NotificationError,
		Title:       "Erro ao gerar conteúdo",
		Description: mutation.FailureMessage(err, "Não foi possível gerar o material. Tente novamente."),
		Data:        map[string]string{"jobId": job.ID},
	})
}

func (s *AssistantService) notify(ctx context.Context, n models.Notification) {
	if s.notifier == nil || n.UserID == "" {
		return
	}
	n.ID = uuid.NewString()
	n.CreatedAt = s.now().UTC()
	s.notifier.Notify(ctx, n)
}

func (s *AssistantService) observeJob(jobType, outcome string) {
	if s.observer != nil {
		s.observer.ObserveJob(jobType, outcome)
	}
}
