package core

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() Record {
	return Record{
		ID:        "r1",
		Type:      Expense,
		Amount:    10,
		Method:    MethodCash,
		Company:   "c1",
		CreatedAt: time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Published: true,
	}
}

func TestRecordValidate(t *testing.T) {
	require.NoError(t, validRecord().Validate())

	cases := []struct {
		name   string
		mutate func(*Record)
		want   error
	}{
		{"bad type", func(r *Record) { r.Type = "transfer" }, ErrInvalidType},
		{"bad method", func(r *Record) { r.Method = "crypto" }, ErrInvalidMethod},
		{"zero amount", func(r *Record) { r.Amount = 0 }, ErrInvalidAmount},
		{"negative fee", func(r *Record) { r.ServiceFee = -1 }, ErrInvalidAmount},
		{"infinite amount", func(r *Record) { r.Amount = math.Inf(1) }, ErrInvalidAmount},
		{"NaN amount", func(r *Record) { r.Amount = math.NaN() }, ErrInvalidAmount},
		{"infinite fee", func(r *Record) { r.ServiceFee = math.Inf(1) }, ErrInvalidAmount},
		{"two counterparties", func(r *Record) { r.Employee = "e1" }, ErrInvalidCounterparty},
		{"missing date", func(r *Record) { r.CreatedAt = time.Time{} }, ErrInvalidDate},
	}
	for _, tc := range cases {
		r := validRecord()
		tc.mutate(&r)
		assert.ErrorIs(t, r.Validate(), tc.want, tc.name)
	}
}

func TestRecordOrphanIsValid(t *testing.T) {
	r := validRecord()
	r.Company = ""
	require.NoError(t, r.Validate())

	kind, ref := r.Counterparty()
	assert.Equal(t, KindNone, kind)
	assert.Empty(t, ref)
}

func TestEntityValidate(t *testing.T) {
	assert.NoError(t, (Entity{Name: "Acme Co", Kind: KindCompany}).Validate())
	assert.ErrorIs(t, (Entity{Name: " ", Kind: KindCompany}).Validate(), ErrEmptyName)
	assert.ErrorIs(t, (Entity{Name: "x", Kind: KindSelf}).Validate(), ErrInvalidKind)
}

func TestPublishedOnly(t *testing.T) {
	a, b := validRecord(), validRecord()
	b.ID, b.Published = "r2", false
	got := PublishedOnly([]Record{a, b})
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].ID)
}
