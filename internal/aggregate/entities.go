// Package aggregate computes dashboard summaries over an in-memory snapshot
// of records. Every function here is pure: no I/O, no shared state, no
// errors. Bad data degrades to zero rather than failing a summary.
package aggregate

import (
	"sort"

	"zaad/internal/core"
)

// EntityBalance is the profit-and-loss position of one company or employee.
type EntityBalance struct {
	ID         string
	Name       string
	Kind       core.CounterpartyKind
	Income     float64 // income excluding advances
	Expense    float64 // expense amounts plus service fees
	Advance    float64
	ServiceFee float64
	Balance    float64 // Income - Expense
}

// EntityBalances splits entities into those owing the business (Over) and
// those the business owes (Under). Entities with a zero balance are in
// neither list.
type EntityBalances struct {
	Over        []EntityBalance
	Under       []EntityBalance
	TotalProfit float64 // service fees of Over entities
	TotalToGive float64 // sum of positive balances
	TotalToGet  float64 // sum of negative balances, stays negative
}

// ComputeEntityBalances classifies every entity by the balance of the
// published records that reference it.
func ComputeEntityBalances(entities []core.Entity, records []core.Record) EntityBalances {
	byRef := make(map[refKey][]core.Record)
	for _, r := range records {
		if !r.Published {
			continue
		}
		kind, ref := r.Counterparty()
		if !kind.IsEntity() {
			continue
		}
		k := refKey{kind, ref}
		byRef[k] = append(byRef[k], r)
	}

	out := EntityBalances{
		Over:  []EntityBalance{},
		Under: []EntityBalance{},
	}
	for _, e := range entities {
		b := balanceOf(e, byRef[refKey{e.Kind, e.ID}])
		switch {
		case b.Balance > 0:
			out.Over = append(out.Over, b)
			out.TotalProfit += b.ServiceFee
			out.TotalToGive += b.Balance
		case b.Balance < 0:
			out.Under = append(out.Under, b)
			out.TotalToGet += b.Balance
		}
	}

	sortByName(out.Over)
	sortByName(out.Under)
	return out
}

type refKey struct {
	kind core.CounterpartyKind
	ref  string
}

func balanceOf(e core.Entity, records []core.Record) EntityBalance {
	b := EntityBalance{ID: e.ID, Name: e.Name, Kind: e.Kind}
	for _, r := range records {
		switch r.Type {
		case core.Income:
			if r.IsAdvance() {
				b.Advance += r.Amount
				continue
			}
			b.Income += r.Amount
		case core.Expense:
			b.Expense += r.Amount + r.ServiceFee
			b.ServiceFee += r.ServiceFee
		}
	}
	b.Balance = b.Income - b.Expense
	return b
}

// sortByName orders ascending by name; ties fall back to id so output is
// deterministic.
func sortByName(list []EntityBalance) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
}
