package filter

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-portal-gateway/internal/models"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
)

func documentSpec() Spec[models.StudentDocument] {
	return Spec[models.StudentDocument]{
		Search: []func(models.StudentDocument) string{
			func(d models.StudentDocument) string { return d.Title },
			func(d models.StudentDocument) string { return d.DocumentType },
		},
		Status: func(d models.StudentDocument) string { return string(d.Status) },
	}
}

func sampleDocuments() []models.StudentDocument {
	return []models.StudentDocument{
		{ID: "1", Title: "RG frente", DocumentType: "rg", Status: models.DocumentStatusPending},
		{ID: "2", Title: "Histórico escolar", DocumentType: "historico", Status: models.DocumentStatusApproved},
		{ID: "3", Title: "Comprovante de residência", DocumentType: "comprovante", Status: models.DocumentStatusPending},
		{ID: "4", Title: "RG verso", DocumentType: "rg", Status: models.DocumentStatusRejected},
	}
}

func ids(docs []models.StudentDocument) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.ID)
	}
	return out
}

func TestApplyPreservesOrderAndMatchesEveryPredicate(t *testing.T) {
	docs := sampleDocuments()

	got := Apply(docs, documentSpec(), Criteria{Search: "rg", Status: "pending"})
	assert.Equal(t, []string{"1"}, ids(got))

	got = Apply(docs, documentSpec(), Criteria{Search: "RG"})
	assert.Equal(t, []string{"1", "4"}, ids(got))

	got = Apply(docs, documentSpec(), Criteria{Status: "pending"})
	assert.Equal(t, []string{"1", "3"}, ids(got))
	for _, d := range got {
		assert.Equal(t, models.DocumentStatusPending, d.Status)
	}
}

func TestApplyAllSentinelIsIdentity(t *testing.T) {
	docs := sampleDocuments()

	for _, status := range []string{"all", "ALL", "", "  "} {
		got := Apply(docs, documentSpec(), Criteria{Status: status})
		assert.Equal(t, docs, got, "status %q", status)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	docs := sampleDocuments()
	before := ids(docs)

	_ = Apply(docs, documentSpec(), Criteria{Status: "approved"})

	assert.Equal(t, before, ids(docs))
}

func TestApplyInclusiveRanges(t *testing.T) {
	courses := []models.Course{
		{ID: "a", Price: 1000},
		{ID: "b", Price: 4990},
		{ID: "c", Price: 9990},
	}
	spec := Spec[models.Course]{
		Ranges: map[string]func(models.Course) float64{
			"price": func(c models.Course) float64 { return float64(c.Price) / 100 },
		},
	}
	lo, hi := 10.0, 49.90

	got := Apply(courses, spec, Criteria{Ranges: map[string]Range{"price": {Min: &lo, Max: &hi}}})
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got = Apply(courses, spec, Criteria{Ranges: map[string]Range{"price": {Min: &hi}}})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)

	got = Apply(courses, spec, Criteria{Ranges: map[string]Range{"rate": {Min: &lo}}})
	assert.Len(t, got, 3)
}

func documentLabels() Labels {
	return Labels{
		Noun: "documentos",
		Tab:  func(s string) string { return models.DocumentStatus(s).PluralLabel() },
	}
}

func TestDescribePrefersSearchOverTab(t *testing.T) {
	state := Describe(Criteria{Search: "xyz", Status: "pending"}, documentLabels())

	assert.Equal(t, ReasonSearch, state.Reason)
	assert.Contains(t, state.Message, "xyz")
	assert.NotContains(t, state.Message, "pendentes")
}

func TestDescribeUsesTabLabelWithoutSearch(t *testing.T) {
	state := Describe(Criteria{Search: "  ", Status: "pending"}, documentLabels())

	assert.Equal(t, ReasonStatus, state.Reason)
	assert.Contains(t, state.Message, "pendentes")
}

func TestRunReturnsEmptyStateOnlyWhenEmpty(t *testing.T) {
	docs := sampleDocuments()

	out, state := Run(docs, documentSpec(), Criteria{Status: "pending"}, documentLabels())
	assert.Len(t, out, 2)
	assert.Nil(t, state)

	out, state = Run(docs, documentSpec(), Criteria{Search: "xyz", Status: "pending"}, documentLabels())
	assert.Empty(t, out)
	require.NotNil(t, state)
	assert.Equal(t, ReasonSearch, state.Reason)

	_, state = Run([]models.StudentDocument{}, documentSpec(), Criteria{}, documentLabels())
	require.NotNil(t, state)
	assert.Equal(t, ReasonNone, state.Reason)
}

func TestFromQuery(t *testing.T) {
	values := url.Values{
		"q":        {" Go "},
		"status":   {"published"},
		"minPrice": {"10,50"},
		"maxPrice": {"99"},
	}

	c, err := FromQuery(values, "price", "rate")

	require.NoError(t, err)
	assert.Equal(t, "Go", c.Search)
	assert.Equal(t, "published", c.Status)
	require.NotNil(t, c.Ranges["price"].Min)
	assert.InDelta(t, 10.5, *c.Ranges["price"].Min, 0.0001)
	assert.InDelta(t, 99.0, *c.Ranges["price"].Max, 0.0001)
	assert.False(t, c.Ranges["rate"].Active())
}

func TestFromQueryRejectsInvalidBounds(t *testing.T) {
	_, err := FromQuery(url.Values{"minAmount": {"abc"}}, "amount")

	require.Error(t, err)
	apiErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, apiErr.Code)
	assert.Contains(t, apiErr.Fields, "minAmount")

	for _, raw := range []string{"NaN", "Inf", "-Inf", "+inf"} {
		_, err := FromQuery(url.Values{"minPrice": {raw}}, "price")
		require.Error(t, err, raw)
		assert.Contains(t, appErrors.FromError(err).Fields, "minPrice", raw)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{3, 4}, Paginate(items, 2, 2))
	assert.Equal(t, []int{5}, Paginate(items, 3, 2))
	assert.Empty(t, Paginate(items, 4, 2))
	assert.Equal(t, items, Paginate(items, 1, 0))
}
