// Package report 报表聚合与导出，只做纯计算，不访问数据库
package report

import (
	"math"
	"sort"

	"Gin_postgres_redis_inventory/models"
)

type Bucket struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

var categoryLabels = map[models.Category]string{
	models.CategoryFurniture: "Mueble",
	models.CategoryAudio:     "Audio",
	models.CategoryComputing: "Computación",
	models.CategoryTool:      "Herramienta",
	models.CategoryOther:     "Otro",
}

var statusLabels = map[models.LoanStatus]string{
	models.LoanPending:  "Pendiente",
	models.LoanReturned: "Devuelto",
	models.LoanOverdue:  "Retraso",
}

func CategoryLabel(c models.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func StatusLabel(s models.LoanStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Percent total 为 0 时返回 0，保留两位小数
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)*10000/float64(total)) / 100
}

// ByCategory 每个分类一项（含 0），按固定顺序
func ByCategory(assets []models.Asset) []Bucket {
	counts := make(map[models.Category]int, len(models.Categories))
	for _, a := range assets {
		counts[a.Category]++
	}
	out := make([]Bucket, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, Bucket{Key: string(c), Label: CategoryLabel(c), Count: counts[c]})
	}
	return withPercent(out, len(assets))
}

func ByStatus(loans []models.Loan) []Bucket {
	counts := make(map[models.LoanStatus]int, len(models.LoanStatuses))
	for _, l := range loans {
		counts[l.Status]++
	}
	out := make([]Bucket, 0, len(models.LoanStatuses))
	for _, s := range models.LoanStatuses {
		out = append(out, Bucket{Key: string(s), Label: StatusLabel(s), Count: counts[s]})
	}
	return withPercent(out, len(loans))
}

// ByPerson 按借用次数倒序，次数相同按 carnet
func ByPerson(loans []models.Loan) []Bucket {
	idx := map[string]int{}
	var out []Bucket
	for _, l := range loans {
		i, ok := idx[l.PersonID]
		if !ok {
			label := l.PersonID
			if l.Person != nil && l.Person.Name != "" {
				label = l.Person.Name
			}
			i = len(out)
			idx[l.PersonID] = i
			out = append(out, Bucket{Key: l.PersonID, Label: label})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Key < out[b].Key
	})
	return withPercent(out, len(loans))
}

func withPercent(bs []Bucket, total int) []Bucket {
	for i := range bs {
		bs[i].Percent = Percent(bs[i].Count, total)
	}
	return bs
}

type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Returned int `json:"returned"`
	Overdue  int `json:"overdue"`
}

func Summarize(loans []models.Loan) Stats {
	s := Stats{Total: len(loans)}
	for _, l := range loans {
		switch l.Status {
		case models.LoanPending:
			s.Pending++
		case models.LoanReturned:
			s.Returned++
		case models.LoanOverdue:
			s.Overdue++
		}
	}
	return s
}
