package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Dataset {
	return Dataset{
		Title:   "Relatório de pagamentos",
		Headers: []string{"Aluno", "Valor"},
		Rows: []map[string]string{
			{"Aluno": "João", "Valor": "R$ 49,90"},
			{"Aluno": "Maria; Silva", "Valor": "R$ 10,00"},
		},
		Footer: map[string]string{"Aluno": "Total", "Valor": "R$ 59,90"},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, utf8BOM))
	lines := strings.Split(strings.TrimSpace(string(out[len(utf8BOM):])), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Aluno;Valor", lines[0])
	assert.Equal(t, `"Maria; Silva";R$ 10,00`, lines[2])
	assert.Equal(t, "Total;R$ 59,90", lines[3])
}

func TestCSVRenderDoesNotAlterRows(t *testing.T) {
	data := sample()
	_, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Len(t, data.Rows, 2)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
