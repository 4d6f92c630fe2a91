package aggregate

import "zaad/internal/core"

// DefaultMethods are the payment channels shown in the balance panel.
var DefaultMethods = []core.Method{
	core.MethodBank,
	core.MethodCash,
	core.MethodTasdeed,
	core.MethodSwiper,
}

// MethodTotals holds income and expense sums per payment channel.
type MethodTotals struct {
	Income  map[core.Method]float64
	Expense map[core.Method]float64

	TotalIncome  float64
	TotalExpense float64

	// Swiper settlements land in the bank account, so they count towards
	// BankBalance.
	BankBalance    float64
	CashBalance    float64
	TasdeedBalance float64
	TotalBalance   float64
}

// ComputeMethodTotals sums published records per method. Only the given
// methods are counted (DefaultMethods when none are passed); anything else
// is ignored, so TotalIncome always equals the sum of Income.
func ComputeMethodTotals(records []core.Record, methods ...core.Method) MethodTotals {
	if len(methods) == 0 {
		methods = DefaultMethods
	}
	t := MethodTotals{
		Income:  make(map[core.Method]float64, len(methods)),
		Expense: make(map[core.Method]float64, len(methods)),
	}
	for _, m := range methods {
		t.Income[m] = 0
		t.Expense[m] = 0
	}

	for _, r := range records {
		if !r.Published {
			continue
		}
		if _, ok := t.Income[r.Method]; !ok {
			continue
		}
		switch r.Type {
		case core.Income:
			t.Income[r.Method] += r.Amount
			t.TotalIncome += r.Amount
		case core.Expense:
			t.Expense[r.Method] += r.Amount
			t.TotalExpense += r.Amount
		}
	}

	t.BankBalance = t.net(core.MethodBank) + t.net(core.MethodSwiper)
	t.CashBalance = t.net(core.MethodCash)
	t.TasdeedBalance = t.net(core.MethodTasdeed)
	t.TotalBalance = t.TotalIncome - t.TotalExpense
	return t
}

func (t MethodTotals) net(m core.Method) float64 {
	return t.Income[m] - t.Expense[m]
}

// Liabilities tracks money taken on credit: liability-method income is
// incurred debt, liability-method expense pays it back.
type Liabilities struct {
	Incurred    float64
	Settled     float64
	Outstanding float64
}

func ComputeLiabilities(records []core.Record) Liabilities {
	t := ComputeMethodTotals(records, core.MethodLiability)
	l := Liabilities{
		Incurred: t.Income[core.MethodLiability],
		Settled:  t.Expense[core.MethodLiability],
	}
	l.Outstanding = l.Incurred - l.Settled
	return l
}
