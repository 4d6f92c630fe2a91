package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/aggregate"
)

func sampleReport() aggregate.Report {
	return aggregate.Report{
		ReferenceDate: "2024-03-05",
		Methods: aggregate.MethodReport{
			Income:       map[string]float64{"cash": 10, "bank": 1000},
			Expense:      map[string]float64{"cash": 0, "bank": 200},
			TotalIncome:  1010,
			TotalExpense: 200,
			TotalBalance: 810,
		},
		Balances: aggregate.BalanceReport{
			Over:        []aggregate.EntityRow{{ID: "c1", Name: "Acme", Kind: "company", Income: 1000, Expense: 250, ServiceFee: 50, Balance: 750}},
			Under:       []aggregate.EntityRow{},
			TotalProfit: 50,
			TotalToGive: 750,
		},
		Liabilities: map[string]float64{"incurred": 0, "settled": 0, "outstanding": 0},
		Daily:       aggregate.WindowReport{Type: "last7days", Buckets: []aggregate.BucketRow{{Label: "2024-03-05", Expense: 200, Profit: 50}}},
		Monthly:     aggregate.WindowReport{Type: "last12months"},
	}
}

func TestTables(t *testing.T) {
	tables := Tables(sampleReport())
	require.Len(t, tables, 5)

	overview := tables[0]
	assert.Equal(t, "Overview 2024-03-05", overview.Title)
	assert.Equal(t, []any{"bank", 1000.0, 200.0, 800.0}, overview.Rows[0], "methods sorted by name")
	assert.Equal(t, []any{"cash", 10.0, 0.0, 10.0}, overview.Rows[1])

	over := tables[1]
	require.Len(t, over.Rows, 1)
	assert.Equal(t, "Acme", over.Rows[0][0])
	assert.Equal(t, 750.0, over.Rows[0][6])

	assert.Empty(t, tables[2].Rows)
	assert.Equal(t, []any{"2024-03-05", 200.0, 50.0}, tables[3].Rows[0])
}

func TestGrid(t *testing.T) {
	grid := Grid([]Table{
		{Title: "A", Header: []string{"x"}, Rows: [][]any{{1}}},
		{Title: "B", Header: []string{"y"}},
	})
	assert.Equal(t, [][]any{
		{"A"}, {"x"}, {1},
		{},
		{"B"}, {"y"},
	}, grid)
}
