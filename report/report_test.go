package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(3, 0))
	assert.Equal(t, 50.0, Percent(1, 2))
	assert.Equal(t, 33.33, Percent(1, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
}

func TestByCategory(t *testing.T) {
	assets := []models.Asset{
		{Category: models.CategoryAudio},
		{Category: models.CategoryAudio},
		{Category: models.CategoryTool},
		{Category: models.CategoryOther},
	}
	bs := ByCategory(assets)
	require.Len(t, bs, len(models.Categories))
	assert.Equal(t, Bucket{Key: "mueble", Label: "Mueble", Count: 0, Percent: 0}, bs[0])
	assert.Equal(t, Bucket{Key: "audio", Label: "Audio", Count: 2, Percent: 50}, bs[1])
	assert.Equal(t, 25.0, bs[3].Percent)

	empty := ByCategory(nil)
	for _, b := range empty {
		assert.Zero(t, b.Count)
		assert.Zero(t, b.Percent)
	}
}

func TestByStatusAndSummarize(t *testing.T) {
	loans := []models.Loan{
		{Status: models.LoanPending},
		{Status: models.LoanReturned},
		{Status: models.LoanReturned},
		{Status: models.LoanOverdue},
	}
	bs := ByStatus(loans)
	require.Len(t, bs, 3)
	assert.Equal(t, "Pendiente", bs[0].Label)
	assert.Equal(t, 2, bs[1].Count)
	assert.Equal(t, 50.0, bs[1].Percent)

	assert.Equal(t, Stats{Total: 4, Pending: 1, Returned: 2, Overdue: 1}, Summarize(loans))
	assert.Equal(t, Stats{}, Summarize(nil))
}

func TestByPerson(t *testing.T) {
	ana := &models.Person{ID: "E-2", Name: "Ana"}
	loans := []models.Loan{
		{PersonID: "E-1"},
		{PersonID: "E-2", Person: ana},
		{PersonID: "E-2", Person: ana},
		{PersonID: "E-3"},
	}
	bs := ByPerson(loans)
	require.Len(t, bs, 3)
	assert.Equal(t, "E-2", bs[0].Key)
	assert.Equal(t, "Ana", bs[0].Label)
	assert.Equal(t, 50.0, bs[0].Percent)
	assert.Equal(t, "E-1", bs[1].Key)
	assert.Equal(t, "E-1", bs[1].Label, "falls back to carnet without a name")
	assert.Equal(t, "E-3", bs[2].Key)
}

func sampleLoans() []models.Loan {
	loanAt := time.Date(2025, 4, 3, 14, 5, 0, 0, time.UTC)
	back := loanAt.Add(26 * time.Hour)
	return []models.Loan{
		{
			ID: 7, LoanDate: loanAt, ReturnDate: &back, Status: models.LoanReturned,
			Asset:  &models.Asset{Name: `Parlante "JBL", 200W`},
			Person: &models.Person{Name: "Pérez, Juan"},
		},
		{
			ID: 8, LoanDate: loanAt, Status: models.LoanPending,
			Asset:  &models.Asset{Name: "Cable\nlargo"},
			Person: &models.Person{Name: "Ana"},
		},
		{ID: 9, LoanDate: loanAt, Status: models.LoanOverdue},
	}
}

func TestLoanTable(t *testing.T) {
	byPerson := LoanTable(ByPersonReport, sampleLoans(), nil)
	assert.Equal(t, []string{"Código Préstamo", "Activo", "Fecha Préstamo", "Fecha Devolución", "Estado"}, byPerson.Header)
	require.Len(t, byPerson.Rows, 3)
	assert.Equal(t, []string{"7", `Parlante "JBL", 200W`, "03/04/2025 14:05", "04/04/2025 16:05", "devuelto"}, byPerson.Rows[0])
	assert.Equal(t, "Pendiente", byPerson.Rows[1][3])
	assert.Equal(t, "N/A", byPerson.Rows[2][1])

	byAsset := LoanTable(ByAssetReport, sampleLoans(), nil)
	assert.Equal(t, "Persona", byAsset.Header[1])
	assert.Equal(t, "Pérez, Juan", byAsset.Rows[0][1])
}

func TestCSVRoundTrip(t *testing.T) {
	src := LoanTable(ByPersonReport, sampleLoans(), time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, src))
	assert.Contains(t, buf.String(), `"Parlante ""JBL"", 200W"`)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Header, got.Header)
	require.Len(t, got.Rows, len(src.Rows))
	assert.Equal(t, src.Rows, got.Rows)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestXLSXRoundTrip(t *testing.T) {
	src := LoanTable(ByAssetReport, sampleLoans(), time.UTC)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, "Reporte", src))

	got, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, src.Header, got.Header)
	assert.Equal(t, src.Rows, got.Rows)
}

func TestFileName(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "reporte_persona_E-1_20250102T030405.csv", FileName(ByPersonReport, "E-1", now, "csv"))
}
