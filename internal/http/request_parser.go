// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// reference dates, record filters, paging and the record and entity payloads
// accepted as JSON or as form posts from the dashboard.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/now"

	"zaad/internal/core"
)

const maxBodyBytes = 1 << 20

// errBadParam wraps every query parameter error so handlers can answer 400.
var errBadParam = errors.New("invalid parameter")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseReferenceDate reads ?date=YYYY-MM-DD as a calendar day in loc. A
// missing date returns the zero time, which the summary service treats as
// now.
func ParseReferenceDate(query url.Values, loc *time.Location) (time.Time, error) {
	v := strings.TrimSpace(query.Get("date"))
	if v == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", errBadParam, v)
	}
	// End of the day so records created that day fall inside the windows.
	return now.With(t).EndOfDay(), nil
}

// ParseFilter builds a record filter from query parameters. from and to are
// calendar days in loc; to is inclusive.
func ParseFilter(query url.Values, loc *time.Location) (core.Filter, error) {
	if loc == nil {
		loc = time.UTC
	}
	var f core.Filter

	day := func(key string) (time.Time, error) {
		v := strings.TrimSpace(query.Get(key))
		if v == "" {
			return time.Time{}, nil
		}
		t, err := time.ParseInLocation(time.DateOnly, v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s %q", errBadParam, key, v)
		}
		return t, nil
	}

	var err error
	if f.From, err = day("from"); err != nil {
		return f, err
	}
	if f.To, err = day("to"); err != nil {
		return f, err
	}
	if !f.To.IsZero() {
		f.To = f.To.AddDate(0, 0, 1)
	}
	if !f.From.IsZero() && !f.To.IsZero() && !f.From.Before(f.To) {
		return f, fmt.Errorf("%w: from after to", errBadParam)
	}

	if v := strings.ToLower(strings.TrimSpace(query.Get("type"))); v != "" {
		f.Type = core.RecordType(v)
		if !f.Type.IsValid() {
			return f, fmt.Errorf("%w: type %q", errBadParam, v)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(query.Get("method"))); v != "" {
		f.Method = core.Method(v)
		if !f.Method.IsValid() {
			return f, fmt.Errorf("%w: method %q", errBadParam, v)
		}
	}
	if v := strings.ToLower(strings.TrimSpace(query.Get("kind"))); v != "" {
		f.Kind = core.CounterpartyKind(v)
		if !f.Kind.IsEntity() && f.Kind != core.KindSelf {
			return f, fmt.Errorf("%w: kind %q", errBadParam, v)
		}
	}
	f.EntityID = strings.TrimSpace(query.Get("entity"))

	if v := strings.TrimSpace(query.Get("include_unpublished")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: include_unpublished %q", errBadParam, v)
		}
		f.IncludeUnpublished = b
	}
	return f, nil
}

// ParsePage reads limit and offset. limit defaults to core.DefaultPageLimit
// and is capped at core.MaxPageLimit.
func ParsePage(query url.Values) (core.Page, error) {
	p := core.Page{Limit: core.DefaultPageLimit}

	if v := strings.TrimSpace(query.Get("limit")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, fmt.Errorf("%w: limit %q", errBadParam, v)
		}
		p.Limit = min(n, core.MaxPageLimit)
	}
	if v := strings.TrimSpace(query.Get("offset")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("%w: offset %q", errBadParam, v)
		}
		p.Offset = n
	}
	return p, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads at most 1 MiB of the body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RecordPayload is the write form of a record. Amounts stay strings until
// validated so both "12,50" from a form and 12.5 from JSON are accepted.
type RecordPayload struct {
	Type        string `json:"type" validate:"required,oneof=income expense"`
	Amount      string `json:"amount" validate:"required"`
	Method      string `json:"method" validate:"required,oneof=bank cash tasdeed swiper service-fee liability"`
	Company     string `json:"company" validate:"omitempty,max=64,excluded_with=Employee Self"`
	Employee    string `json:"employee" validate:"omitempty,max=64,excluded_with=Company Self"`
	Self        string `json:"self" validate:"omitempty,max=64"`
	ServiceFee  string `json:"serviceFee"`
	CreatedAt   string `json:"createdAt"`
	Status      string `json:"status" validate:"omitempty,max=32"`
	Description string `json:"description" validate:"max=500"`
}

// ValidationError maps payload fields to the rule they broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k, v := range e.Fields {
		keys = append(keys, k+": "+v)
	}
	slices.Sort(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

func newValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return &ValidationError{Fields: fields}
}

// ParseRecordPayload reads and validates a record body. loc interprets
// createdAt values without an offset.
func ParseRecordPayload(r *http.Request, loc *time.Location) (core.Record, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Record{}, fmt.Errorf("%w: body: %v", errBadParam, err)
	}

	payload := RecordPayload{
		Type:        strings.ToLower(p.Get("type")),
		Amount:      p.Get("amount"),
		Method:      strings.ToLower(p.Get("method")),
		Company:     p.Get("company"),
		Employee:    p.Get("employee"),
		Self:        p.Get("self"),
		ServiceFee:  p.Get("serviceFee"),
		CreatedAt:   p.Get("createdAt"),
		Status:      p.Get("status"),
		Description: p.Get("description"),
	}
	return payload.Record(loc)
}

// Record validates the payload and converts it.
func (p RecordPayload) Record(loc *time.Location) (core.Record, error) {
	if err := validate.Struct(p); err != nil {
		return core.Record{}, newValidationError(err)
	}

	fields := map[string]string{}
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		fields["amount"] = "positive"
	}
	fee := 0.0
	if v := strings.TrimSpace(p.ServiceFee); v != "" && v != "0" {
		if fee, err = core.ParseAmount(v); err != nil {
			fields["serviceFee"] = "positive"
		}
	}
	var created time.Time
	if p.CreatedAt != "" {
		if created = core.ParseCreatedAt(p.CreatedAt, loc); created.IsZero() {
			fields["createdAt"] = "datetime"
		}
	}
	if len(fields) > 0 {
		return core.Record{}, &ValidationError{Fields: fields}
	}

	return core.Record{
		Type:        core.RecordType(p.Type),
		Amount:      amount,
		Method:      core.Method(p.Method),
		Company:     p.Company,
		Employee:    p.Employee,
		Self:        p.Self,
		ServiceFee:  fee,
		CreatedAt:   created,
		Status:      p.Status,
		Description: p.Description,
	}, nil
}

type EntityPayload struct {
	ID   string `json:"id" validate:"omitempty,max=64,excludesall=/?#"`
	Name string `json:"name" validate:"required,max=120"`
}

// ParseEntityPayload reads and validates a company or employee body.
func ParseEntityPayload(r *http.Request, kind core.CounterpartyKind) (core.Entity, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return core.Entity{}, fmt.Errorf("%w: body: %v", errBadParam, err)
	}
	payload := EntityPayload{ID: p.Get("id"), Name: p.Get("name")}
	if err := validate.Struct(payload); err != nil {
		return core.Entity{}, newValidationError(err)
	}
	return core.Entity{ID: payload.ID, Name: payload.Name, Kind: kind}, nil
}
