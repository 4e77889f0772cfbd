package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory/models"
)

// Table 导出用的二维表，第一行是表头
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

const DateLayout = "02/01/2006 15:04"

type By string

const (
	ByPersonReport By = "persona"
	ByAssetReport  By = "activo"
)

// LoanTable 按人员报表显示资产名，按资产报表显示人员名
func LoanTable(by By, loans []models.Loan, loc *time.Location) Table {
	if loc == nil {
		loc = time.UTC
	}
	second := "Activo"
	if by == ByAssetReport {
		second = "Persona"
	}
	t := Table{
		Header: []string{"Código Préstamo", second, "Fecha Préstamo", "Fecha Devolución", "Estado"},
		Rows:   make([][]string, 0, len(loans)),
	}
	for _, l := range loans {
		name := "N/A"
		if by == ByAssetReport {
			if l.Person != nil {
				name = l.Person.Name
			}
		} else if l.Asset != nil {
			name = l.Asset.Name
		}
		returned := "Pendiente"
		if l.ReturnDate != nil {
			returned = l.ReturnDate.In(loc).Format(DateLayout)
		}
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(l.ID),
			name,
			l.LoanDate.In(loc).Format(DateLayout),
			returned,
			string(l.Status),
		})
	}
	return t
}

// FileName 例如 reporte_persona_E-1_20250101T100000.csv
func FileName(by By, id string, now time.Time, ext string) string {
	return fmt.Sprintf("reporte_%s_%s_%s.%s", by, id, now.UTC().Format("20060102T150405"), ext)
}

func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	recs, err := cr.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(recs) == 0 {
		return Table{}, fmt.Errorf("read csv: missing header")
	}
	return Table{Header: recs[0], Rows: recs[1:]}, nil
}
