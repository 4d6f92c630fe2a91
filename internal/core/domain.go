package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  RecordType = "income"
	Expense RecordType = "expense"
)

const (
	MethodBank       Method = "bank"
	MethodCash       Method = "cash"
	MethodTasdeed    Method = "tasdeed"
	MethodSwiper     Method = "swiper"
	MethodServiceFee Method = "service-fee"
	MethodLiability  Method = "liability"
)

const (
	KindNone     CounterpartyKind = ""
	KindCompany  CounterpartyKind = "company"
	KindEmployee CounterpartyKind = "employee"
	KindSelf     CounterpartyKind = "self"
)

// StatusAdvance marks an income record paid ahead of the work it covers.
const StatusAdvance = "Advance"

type (
	RecordType       string
	Method           string
	CounterpartyKind string

	Record struct {
		ID          string
		Type        RecordType
		Amount      float64
		Method      Method
		Company     string // Company ID
		Employee    string // Employee ID
		Self        string // Internal bucket tag, e.g. "zaad"
		ServiceFee  float64
		CreatedAt   time.Time // Zero when missing or unparseable
		Status      string
		Published   bool
		Description string
	}

	Entity struct {
		ID        string
		Name      string
		Kind      CounterpartyKind // KindCompany or KindEmployee
		Published bool
		CreatedAt time.Time
	}
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidType         = errors.New("invalid record type")
	ErrInvalidMethod       = errors.New("invalid method")
	ErrInvalidCounterparty = errors.New("record must reference at most one of company, employee, self")
	ErrInvalidDate         = errors.New("invalid created at")
	ErrEmptyName           = errors.New("empty name")
	ErrInvalidKind         = errors.New("invalid entity kind")
)

// Methods returns every payment channel known to the system.
func Methods() []Method {
	return []Method{MethodBank, MethodCash, MethodTasdeed, MethodSwiper, MethodServiceFee, MethodLiability}
}

func (m Method) IsValid() bool {
	switch m {
	case MethodBank, MethodCash, MethodTasdeed, MethodSwiper, MethodServiceFee, MethodLiability:
		return true
	}
	return false
}

func (t RecordType) IsValid() bool {
	return t == Income || t == Expense
}

func (k CounterpartyKind) IsEntity() bool {
	return k == KindCompany || k == KindEmployee
}

// Counterparty reports which party the record belongs to. Orphan records
// return KindNone and an empty reference.
func (r Record) Counterparty() (CounterpartyKind, string) {
	switch {
	case r.Company != "":
		return KindCompany, r.Company
	case r.Employee != "":
		return KindEmployee, r.Employee
	case r.Self != "":
		return KindSelf, r.Self
	}
	return KindNone, ""
}

// IsAdvance reports whether an income record is an advance payment.
func (r Record) IsAdvance() bool {
	return r.Type == Income && r.Status == StatusAdvance
}

// Validate is the write-side gate for records entering the store.
func (r Record) Validate() error {
	if !r.Type.IsValid() {
		return ErrInvalidType
	}
	if !r.Method.IsValid() {
		return ErrInvalidMethod
	}
	if r.Amount <= 0 || r.ServiceFee < 0 || !IsFinite(r.Amount) || !IsFinite(r.ServiceFee) {
		return ErrInvalidAmount
	}
	set := 0
	for _, ref := range []string{r.Company, r.Employee, r.Self} {
		if strings.TrimSpace(ref) != "" {
			set++
		}
	}
	if set > 1 {
		return ErrInvalidCounterparty
	}
	if r.CreatedAt.IsZero() {
		return ErrInvalidDate
	}
	if len(r.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (e Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if !e.Kind.IsEntity() {
		return ErrInvalidKind
	}
	return nil
}

// PublishedOnly drops soft-deleted records. The result shares no backing
// array with the input.
func PublishedOnly(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Published {
			out = append(out, r)
		}
	}
	return out
}
