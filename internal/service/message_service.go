package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/internal/dialog"
	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

var messageSpec = filter.Spec[models.Message]{
	Search: []func(models.Message) string{
		func(m models.Message) string { return m.Subject },
		func(m models.Message) string { return m.SenderName },
		func(m models.Message) string { return m.Content },
	},
	Status: func(m models.Message) string { return string(m.Status) },
}

var messageLabels = filter.Labels{
	Noun:  "mensagens",
	Tab:   func(s string) string { return models.MessageStatus(s).PluralLabel() },
	Empty: "Sua caixa de entrada está vazia.",
}

// MessageService is the internal inbox.
type MessageService struct {
	deps Deps
}

// NewMessageService constructs a MessageService.
func NewMessageService(deps Deps) *MessageService {
	return &MessageService{deps: deps.withDefaults()}
}

func messagesKey() query.Key { return query.NewKey(pathMessages) }

// Inbox lists messages addressed to the caller.
func (s *MessageService) Inbox(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.Message], error) {
	res := fetchCollection[models.Message](ctx, s.deps, sess, messagesKey().Scoped(sess.Scope()), pathMessages,
		queryParams("recipientId", sess.UserID()))
	items, err := res.Unpack()
	if err != nil {
		return Page[models.Message]{}, err
	}
	return buildPage(items, res, messageSpec, messageLabels, q), nil
}

func (s *MessageService) get(ctx context.Context, sess session.Session, id string) (models.Message, error) {
	return fetchOne[models.Message](ctx, s.deps, sess, messagesKey().With(id).Scoped(sess.Scope()), pathMessages+"/"+id).Unpack()
}

// Open returns a message and marks it read when the caller is the recipient.
// Marking is silent: a failure is logged and the unread message still returned.
func (s *MessageService) Open(ctx context.Context, sess session.Session, id string) (*models.Message, error) {
	msg, err := s.get(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if msg.Status != models.MessageStatusUnread || msg.RecipientID != sess.UserID() {
		return &msg, nil
	}

	err = mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:        "message.mark_read",
		LockKey:     "message-read:" + id,
		Invalidates: []query.Key{messagesKey()},
		Actor:       sess,
		Resource:    "message",
		ResourceID:  id,
		Silent:      true,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodPatch, pathMessages+"/"+id+"/read", nil, nil)
	})
	if err != nil {
		if !errors.Is(err, appErrors.ErrMutationInFlight) {
			s.deps.Logger.Warn("mark message read", zap.String("message_id", id), zap.Error(err))
		}
		return &msg, nil
	}

	refreshed, err := s.get(ctx, sess, id)
	if err != nil {
		return &msg, nil
	}
	return &refreshed, nil
}

// Send composes a new message from the caller.
func (s *MessageService) Send(ctx context.Context, sess session.Session, form dto.SendMessageForm) (*models.Message, dialog.Snapshot, error) {
	var sent *models.Message
	snap, err := submitForm(ctx, s.deps.Validate, "", form, func(ctx context.Context, _ string, f dto.SendMessageForm) error {
		if f.RecipientID == sess.UserID() {
			return appErrors.WithFields("Verifique os campos destacados.", map[string]string{"recipientId": "escolha outro destinatário"})
		}
		msg, err := mutation.Execute(ctx, s.deps.Mutations, mutation.Spec{
			Name:        "message.send",
			LockKey:     "message-send:" + sess.UserID(),
			Invalidates: []query.Key{messagesKey()},
			Success:     mutation.Message{Title: "Mensagem enviada"},
			Failure:     mutation.Failure{Title: "Erro ao enviar mensagem", Fallback: "Não foi possível enviar a mensagem."},
			Actor:       sess,
			Resource:    "message",
		}, func(ctx context.Context) (models.Message, error) {
			var out models.Message
			err := s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathMessages, dto.MessagePayload{
				SenderID:    sess.UserID(),
				RecipientID: f.RecipientID,
				Subject:     f.Subject,
				Content:     f.Content,
				ThreadID:    f.ThreadID,
			}, &out)
			return out, err
		})
		if err != nil {
			return err
		}
		sent = &msg
		return nil
	})
	return sent, snap, err
}
