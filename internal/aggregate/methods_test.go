package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zaad/internal/core"
)

func rec(typ core.RecordType, method core.Method, amount float64) core.Record {
	return core.Record{Type: typ, Method: method, Amount: amount, CreatedAt: march5, Published: true}
}

func TestBankBalanceFoldsInSwiper(t *testing.T) {
	got := ComputeMethodTotals([]core.Record{
		rec(core.Income, core.MethodBank, 100),
		rec(core.Expense, core.MethodBank, 20),
		rec(core.Income, core.MethodSwiper, 50),
		rec(core.Expense, core.MethodSwiper, 10),
	})
	assert.Equal(t, 120.0, got.BankBalance)
	assert.Equal(t, 0.0, got.CashBalance)
	assert.Equal(t, 120.0, got.TotalBalance)
}

func TestMethodTotalsSumInvariant(t *testing.T) {
	records := []core.Record{
		rec(core.Income, core.MethodBank, 10.1),
		rec(core.Income, core.MethodCash, 20.2),
		rec(core.Income, core.MethodTasdeed, 30.3),
		rec(core.Income, core.MethodSwiper, 40.4),
		rec(core.Income, "crypto", 1000),
		rec(core.Income, core.MethodLiability, 500),
		rec(core.Expense, core.MethodCash, 5.5),
		rec(core.Expense, core.MethodTasdeed, 6.6),
		rec(core.Expense, "barter", 77),
		rec("transfer", core.MethodBank, 12345),
	}
	got := ComputeMethodTotals(records)

	var in, out float64
	for _, v := range got.Income {
		in += v
	}
	for _, v := range got.Expense {
		out += v
	}
	assert.InDelta(t, got.TotalIncome, in, 1e-9)
	assert.InDelta(t, got.TotalExpense, out, 1e-9)
	assert.InDelta(t, 101.0, got.TotalIncome, 1e-9)
	assert.InDelta(t, 12.1, got.TotalExpense, 1e-9)
	assert.Len(t, got.Income, len(DefaultMethods))

	assert.InDelta(t, 20.2-5.5, got.CashBalance, 1e-9)
	assert.InDelta(t, 30.3-6.6, got.TasdeedBalance, 1e-9)
	assert.InDelta(t, got.TotalIncome-got.TotalExpense, got.TotalBalance, 1e-9)
}

func TestMethodTotalsSkipsUnpublished(t *testing.T) {
	r := rec(core.Income, core.MethodCash, 10)
	r.Published = false
	got := ComputeMethodTotals([]core.Record{r})
	assert.Zero(t, got.TotalIncome)
}

func TestMethodTotalsCustomMethods(t *testing.T) {
	got := ComputeMethodTotals([]core.Record{
		rec(core.Income, core.MethodServiceFee, 15),
		rec(core.Income, core.MethodBank, 100),
	}, core.MethodServiceFee)
	assert.Equal(t, 15.0, got.TotalIncome)
	assert.Equal(t, map[core.Method]float64{core.MethodServiceFee: 15}, got.Income)
}

func TestComputeLiabilities(t *testing.T) {
	got := ComputeLiabilities([]core.Record{
		rec(core.Income, core.MethodLiability, 1000),
		rec(core.Expense, core.MethodLiability, 250),
		rec(core.Expense, core.MethodBank, 999),
	})
	assert.Equal(t, Liabilities{Incurred: 1000, Settled: 250, Outstanding: 750}, got)
}
