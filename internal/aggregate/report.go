package aggregate

import (
	"time"

	"zaad/internal/core"
)

// Report is the plain-data form of a Summary handed to templates, the JSON
// API and the sheet exporter. This is the only place values are rounded.
type Report struct {
	ReferenceDate string             `json:"referenceDate"`
	Methods       MethodReport       `json:"methods"`
	Balances      BalanceReport      `json:"balances"`
	Liabilities   map[string]float64 `json:"liabilities"`
	Daily         WindowReport       `json:"last7days"`
	Monthly       WindowReport       `json:"last12months"`
}

type MethodReport struct {
	Income         map[string]float64 `json:"income"`
	Expense        map[string]float64 `json:"expense"`
	TotalIncome    float64            `json:"totalIncome"`
	TotalExpense   float64            `json:"totalExpense"`
	BankBalance    float64            `json:"bankBalance"`
	CashBalance    float64            `json:"cashBalance"`
	TasdeedBalance float64            `json:"tasdeedBalance"`
	TotalBalance   float64            `json:"totalBalance"`
}

type EntityRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Kind       string  `json:"kind"`
	Income     float64 `json:"income"`
	Expense    float64 `json:"expense"`
	Advance    float64 `json:"advance"`
	ServiceFee float64 `json:"serviceFee"`
	Balance    float64 `json:"balance"`
}

type BalanceReport struct {
	Over        []EntityRow `json:"overBalance"`
	Under       []EntityRow `json:"underBalance"`
	TotalProfit float64     `json:"totalProfit"`
	TotalToGive float64     `json:"totalToGive"`
	TotalToGet  float64     `json:"totalToGet"`
}

type BucketRow struct {
	Label   string  `json:"label"`
	Expense float64 `json:"expense"`
	Profit  float64 `json:"profit"`
}

type WindowReport struct {
	Type    string      `json:"type"`
	Buckets []BucketRow `json:"buckets"`
}

func (s Summary) Report() Report {
	return Report{
		ReferenceDate: s.ReferenceDate.Format(time.DateOnly),
		Methods:       s.Methods.Report(),
		Balances:      s.Entities.Report(),
		Liabilities:   s.Liabilities.Report(),
		Daily:         s.Daily.Report(),
		Monthly:       s.Monthly.Report(),
	}
}

func (t MethodTotals) Report() MethodReport {
	return MethodReport{
		Income:         roundMap(t.Income),
		Expense:        roundMap(t.Expense),
		TotalIncome:    core.Round2(t.TotalIncome),
		TotalExpense:   core.Round2(t.TotalExpense),
		BankBalance:    core.Round2(t.BankBalance),
		CashBalance:    core.Round2(t.CashBalance),
		TasdeedBalance: core.Round2(t.TasdeedBalance),
		TotalBalance:   core.Round2(t.TotalBalance),
	}
}

func (b EntityBalances) Report() BalanceReport {
	return BalanceReport{
		Over:        entityRows(b.Over),
		Under:       entityRows(b.Under),
		TotalProfit: core.Round2(b.TotalProfit),
		TotalToGive: core.Round2(b.TotalToGive),
		TotalToGet:  core.Round2(b.TotalToGet),
	}
}

func (l Liabilities) Report() map[string]float64 {
	return map[string]float64{
		"incurred":    core.Round2(l.Incurred),
		"settled":     core.Round2(l.Settled),
		"outstanding": core.Round2(l.Outstanding),
	}
}

func (w Window) Report() WindowReport {
	rows := make([]BucketRow, len(w.Buckets))
	for i, b := range w.Buckets {
		rows[i] = BucketRow{
			Label:   b.Label,
			Expense: core.Round2(b.Expense),
			Profit:  core.Round2(b.Profit),
		}
	}
	return WindowReport{Type: string(w.Type), Buckets: rows}
}

func entityRows(list []EntityBalance) []EntityRow {
	rows := make([]EntityRow, len(list))
	for i, e := range list {
		rows[i] = EntityRow{
			ID:         e.ID,
			Name:       e.Name,
			Kind:       string(e.Kind),
			Income:     core.Round2(e.Income),
			Expense:    core.Round2(e.Expense),
			Advance:    core.Round2(e.Advance),
			ServiceFee: core.Round2(e.ServiceFee),
			Balance:    core.Round2(e.Balance),
		}
	}
	return rows
}

func roundMap(m map[core.Method]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[string(k)] = core.Round2(v)
	}
	return out
}
