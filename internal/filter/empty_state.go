package filter

import "fmt"

// Reason names the constraint responsible for an empty result.
type Reason string

const (
	ReasonNone   Reason = "none"
	ReasonSearch Reason = "search"
	ReasonStatus Reason = "status"
	ReasonRange  Reason = "range"
)

// EmptyState is the placeholder shown when a filtered list has no rows.
type EmptyState struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

// Labels holds the copy used to build empty-state messages.
type Labels struct {
	// Noun is the plural collection name, e.g. "documentos".
	Noun string
	// Tab renders a status as its plural tab label, e.g. "pendentes".
	Tab func(status string) string
	// Empty overrides the message shown when nothing is filtered.
	Empty string
}

// Describe explains an empty result. An active search takes precedence over
// the status tab, which takes precedence over ranges.
func Describe(c Criteria, labels Labels) EmptyState {
	noun := labels.Noun
	if noun == "" {
		noun = "registros"
	}
	switch {
	case c.SearchTerm() != "":
		return EmptyState{
			Reason:  ReasonSearch,
			Message: fmt.Sprintf("Nenhum resultado encontrado para \"%s\".", c.SearchTerm()),
		}
	case c.StatusActive():
		tab := c.Status
		if labels.Tab != nil {
			tab = labels.Tab(c.Status)
		}
		return EmptyState{
			Reason:  ReasonStatus,
			Message: fmt.Sprintf("Não há %s %s.", noun, tab),
		}
	case c.RangeActive():
		return EmptyState{
			Reason:  ReasonRange,
			Message: fmt.Sprintf("Nenhum item de %s dentro do intervalo selecionado.", noun),
		}
	}
	msg := labels.Empty
	if msg == "" {
		msg = fmt.Sprintf("Não há %s para exibir.", noun)
	}
	return EmptyState{Reason: ReasonNone, Message: msg}
}

// Run applies c and, when nothing matches, describes why.
func Run[T any](items []T, spec Spec[T], c Criteria, labels Labels) ([]T, *EmptyState) {
	out := Apply(items, spec, c)
	if len(out) > 0 {
		return out, nil
	}
	state := Describe(c, labels)
	return out, &state
}
