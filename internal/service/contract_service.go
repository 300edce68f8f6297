package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/lms-portal-gateway/internal/dto"
	"github.com/noah-isme/lms-portal-gateway/internal/filter"
	"github.com/noah-isme/lms-portal-gateway/internal/models"
	"github.com/noah-isme/lms-portal-gateway/internal/mutation"
	"github.com/noah-isme/lms-portal-gateway/internal/query"
	"github.com/noah-isme/lms-portal-gateway/internal/session"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/money"
)

var contractSpec = filter.Spec[models.Contract]{
	Search: []func(models.Contract) string{
		func(c models.Contract) string { return c.ContractNumber },
		func(c models.Contract) string { return c.CourseName },
		func(c models.Contract) string { return c.StudentName },
	},
	Status: func(c models.Contract) string { return string(c.Status) },
	Ranges: map[string]func(models.Contract) float64{
		"value": func(c models.Contract) float64 { return money.ToReais(c.TotalValue) },
	},
}

var contractLabels = filter.Labels{
	Noun: "contratos",
	Tab:  func(s string) string { return models.ContractStatus(s).PluralLabel() },
}

// ContractRanges are the numeric filters accepted by contract lists.
var ContractRanges = []string{"value"}

// ContractService lists and signs enrollment contracts.
type ContractService struct {
	deps Deps
}

// NewContractService constructs a ContractService.
func NewContractService(deps Deps) *ContractService {
	return &ContractService{deps: deps.withDefaults()}
}

func contractsKey() query.Key { return query.NewKey(pathContracts) }

// List returns the caller's contracts; admins see all of them.
func (s *ContractService) List(ctx context.Context, sess session.Session, q dto.ListQuery) (Page[models.Contract], error) {
	var p url.Values
	if sess.In(models.PortalStudent) {
		p = queryParams("studentId", sess.UserID())
	}
	res := fetchCollection[models.Contract](ctx, s.deps, sess, contractsKey().Scoped(sess.Scope()), pathContracts, p)
	items, err := res.Unpack()
	if err != nil {
		return Page[models.Contract]{}, err
	}
	return buildPage(items, res, contractSpec, contractLabels, q), nil
}

// Get loads one contract including its text.
func (s *ContractService) Get(ctx context.Context, sess session.Session, id string) (*models.Contract, error) {
	res := fetchOne[models.Contract](ctx, s.deps, sess, contractsKey().With(id).Scoped(sess.Scope()), pathContracts+"/"+id)
	contract, err := res.Unpack()
	if err != nil {
		return nil, err
	}
	if sess.In(models.PortalStudent) && contract.StudentID != sess.UserID() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "contrato não encontrado")
	}
	return &contract, nil
}

// Sign accepts a pending contract.
func (s *ContractService) Sign(ctx context.Context, sess session.Session, id string) error {
	return mutation.Run(ctx, s.deps.Mutations, mutation.Spec{
		Name:    "contract.sign",
		LockKey: "contract:" + id,
		Guard: func(ctx context.Context) error {
			contract, err := s.Get(ctx, sess, id)
			if err != nil {
				return err
			}
			if contract.Status != models.ContractStatusPending {
				return appErrors.Clone(appErrors.ErrMutationNotAllowed, "Contrato não pode ser assinado: "+contract.Status.Label()+".")
			}
			return nil
		},
		Invalidates: []query.Key{contractsKey()},
		Success:     mutation.Message{Title: "Contrato assinado", Description: "Sua matrícula foi confirmada."},
		Failure:     mutation.Failure{Title: "Erro ao assinar contrato", Fallback: "Não foi possível assinar o contrato."},
		Actor:       sess,
		Resource:    "contract",
		ResourceID:  id,
	}, func(ctx context.Context) error {
		return s.deps.Backend.Send(ctx, sess.Token, http.MethodPost, pathContracts+"/"+id+"/sign", nil, nil)
	})
}
