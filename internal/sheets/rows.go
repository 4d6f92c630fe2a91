package sheets

import (
	"sort"

	"zaad/internal/aggregate"
)

// Table is one titled block of a report export.
type Table struct {
	Title  string
	Header []string
	Rows   [][]any
}

// Tables lays a report out as the blocks every exporter writes, in order:
// overview, positive balances, negative balances, daily and monthly trend.
func Tables(rep aggregate.Report) []Table {
	return []Table{
		overviewTable(rep),
		balanceTable("Over balance", rep.Balances.Over),
		balanceTable("Under balance", rep.Balances.Under),
		windowTable("Last 7 days", rep.Daily),
		windowTable("Last 12 months", rep.Monthly),
	}
}

func overviewTable(rep aggregate.Report) Table {
	m := rep.Methods
	t := Table{
		Title:  "Overview " + rep.ReferenceDate,
		Header: []string{"Item", "Income", "Expense", "Net"},
	}
	for _, method := range sortedKeys(m.Income) {
		in, out := m.Income[method], m.Expense[method]
		t.Rows = append(t.Rows, []any{method, in, out, in - out})
	}
	t.Rows = append(t.Rows,
		[]any{"total", m.TotalIncome, m.TotalExpense, m.TotalBalance},
		[]any{"bank balance", "", "", m.BankBalance},
		[]any{"cash balance", "", "", m.CashBalance},
		[]any{"tasdeed balance", "", "", m.TasdeedBalance},
		[]any{"total profit", "", "", rep.Balances.TotalProfit},
		[]any{"to give", "", "", rep.Balances.TotalToGive},
		[]any{"to get", "", "", rep.Balances.TotalToGet},
		[]any{"liabilities outstanding", rep.Liabilities["incurred"], rep.Liabilities["settled"], rep.Liabilities["outstanding"]},
	)
	return t
}

func balanceTable(title string, rows []aggregate.EntityRow) Table {
	t := Table{
		Title:  title,
		Header: []string{"Name", "Kind", "Income", "Expense", "Advance", "Service fee", "Balance"},
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.Name, r.Kind, r.Income, r.Expense, r.Advance, r.ServiceFee, r.Balance})
	}
	return t
}

func windowTable(title string, w aggregate.WindowReport) Table {
	t := Table{
		Title:  title,
		Header: []string{"Period", "Expense", "Profit"},
	}
	for _, b := range w.Buckets {
		t.Rows = append(t.Rows, []any{b.Label, b.Expense, b.Profit})
	}
	return t
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Grid stacks tables vertically: title row, header row, data rows, then
// one blank row between tables.
func Grid(tables []Table) [][]any {
	var out [][]any
	for i, t := range tables {
		if i > 0 {
			out = append(out, []any{})
		}
		out = append(out, []any{t.Title})
		header := make([]any, len(t.Header))
		for j, h := range t.Header {
			header[j] = h
		}
		out = append(out, header)
		out = append(out, t.Rows...)
	}
	return out
}
