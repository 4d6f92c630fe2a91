package core

import (
	"strings"
	"time"
)

// RecordDocument is the loosely typed form records arrive in from seed files
// and the JSON API. ToRecord normalises it; missing numbers become zero and
// an unreadable createdAt becomes the zero time.
type RecordDocument struct {
	ID          string        `json:"id"`
	Type        string        `json:"type"`
	Amount      LenientAmount `json:"amount"`
	Method      string        `json:"method"`
	Company     string        `json:"company,omitempty"`
	Employee    string        `json:"employee,omitempty"`
	Self        string        `json:"self,omitempty"`
	ServiceFee  LenientAmount `json:"serviceFee"`
	CreatedAt   string        `json:"createdAt"`
	Status      string        `json:"status,omitempty"`
	Published   *bool         `json:"published,omitempty"`
	Description string        `json:"description,omitempty"`
}

// EntityDocument is the JSON form of a company or employee.
type EntityDocument struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Kind      string `json:"kind,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt reads the timestamp formats seen in record documents.
// Layouts without an offset are interpreted in loc. Returns the zero time
// when nothing matches.
func ParseCreatedAt(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ToRecord converts the document. Published defaults to true.
func (d RecordDocument) ToRecord(loc *time.Location) Record {
	published := true
	if d.Published != nil {
		published = *d.Published
	}
	return Record{
		ID:          strings.TrimSpace(d.ID),
		Type:        RecordType(strings.ToLower(strings.TrimSpace(d.Type))),
		Amount:      float64(d.Amount),
		Method:      Method(strings.ToLower(strings.TrimSpace(d.Method))),
		Company:     strings.TrimSpace(d.Company),
		Employee:    strings.TrimSpace(d.Employee),
		Self:        strings.TrimSpace(d.Self),
		ServiceFee:  float64(d.ServiceFee),
		CreatedAt:   ParseCreatedAt(d.CreatedAt, loc),
		Status:      strings.TrimSpace(d.Status),
		Published:   published,
		Description: strings.TrimSpace(d.Description),
	}
}

// NewRecordDocument is the inverse of ToRecord, used for API responses.
func NewRecordDocument(r Record) RecordDocument {
	published := r.Published
	doc := RecordDocument{
		ID:          r.ID,
		Type:        string(r.Type),
		Amount:      LenientAmount(r.Amount),
		Method:      string(r.Method),
		Company:     r.Company,
		Employee:    r.Employee,
		Self:        r.Self,
		ServiceFee:  LenientAmount(r.ServiceFee),
		Status:      r.Status,
		Published:   &published,
		Description: r.Description,
	}
	if !r.CreatedAt.IsZero() {
		doc.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return doc
}

func (d EntityDocument) ToEntity(kind CounterpartyKind) Entity {
	published := true
	if d.Published != nil {
		published = *d.Published
	}
	if k := CounterpartyKind(strings.ToLower(strings.TrimSpace(d.Kind))); k != "" {
		kind = k
	}
	return Entity{
		ID:        strings.TrimSpace(d.ID),
		Name:      strings.TrimSpace(d.Name),
		Kind:      kind,
		Published: published,
	}
}

func NewEntityDocument(e Entity) EntityDocument {
	published := e.Published
	return EntityDocument{ID: e.ID, Name: e.Name, Kind: string(e.Kind), Published: &published}
}
