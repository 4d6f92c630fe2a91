package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zaad/internal/core"
)

func TestParseReferenceDate(t *testing.T) {
	dubai := time.FixedZone("GST", 4*3600)

	tests := []struct {
		name    string
		query   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "missing date means now",
			query: "",
			want:  time.Time{},
		},
		{
			name:  "end of the given day",
			query: "date=2024-03-05",
			want:  time.Date(2024, 3, 5, 23, 59, 59, 999999999, dubai),
		},
		{
			name:    "wrong layout",
			query:   "date=05/03/2024",
			wantErr: true,
		},
		{
			name:    "impossible day",
			query:   "date=2024-02-30",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			got, err := ParseReferenceDate(q, dubai)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestParseFilter(t *testing.T) {
	q, _ := url.ParseQuery("from=2024-03-01&to=2024-03-31&type=Expense&method=cash&kind=self&entity=zaad&include_unpublished=1")
	f, err := ParseFilter(q, time.UTC)
	require.NoError(t, err)

	assert.True(t, f.From.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)), "From = %v", f.From)
	// to is inclusive, so the exclusive bound is the next day.
	assert.True(t, f.To.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)), "To = %v", f.To)
	assert.Equal(t, core.Expense, f.Type)
	assert.Equal(t, core.MethodCash, f.Method)
	assert.Equal(t, core.KindSelf, f.Kind)
	assert.Equal(t, "zaad", f.EntityID)
	assert.True(t, f.IncludeUnpublished)
}

func TestParseFilter_Invalid(t *testing.T) {
	queries := []string{
		"from=yesterday",
		"to=2024-13-01",
		"from=2024-03-02&to=2024-03-01",
		"type=refund",
		"method=crypto",
		"kind=vendor",
		"include_unpublished=sometimes",
	}
	for _, raw := range queries {
		q, _ := url.ParseQuery(raw)
		_, err := ParseFilter(q, nil)
		assert.Error(t, err, raw)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
		wantErr    bool
	}{
		{"", core.DefaultPageLimit, 0, false},
		{"limit=10&offset=20", 10, 20, false},
		{"limit=100000", core.MaxPageLimit, 0, false},
		{"limit=0", 0, 0, true},
		{"limit=ten", 0, 0, true},
		{"offset=-1", 0, 0, true},
	}

	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		p, err := ParsePage(q)
		if tt.wantErr {
			assert.Error(t, err, tt.query)
			continue
		}
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.wantLimit, p.Limit, tt.query)
		assert.Equal(t, tt.wantOffset, p.Offset, tt.query)
	}
}

func TestRecordPayload(t *testing.T) {
	valid := RecordPayload{
		Type:       "expense",
		Amount:     "1250,5",
		Method:     "bank",
		Company:    "c1",
		ServiceFee: "12,5",
		CreatedAt:  "2024-03-05T10:00",
	}

	tests := []struct {
		name       string
		mutate     func(p *RecordPayload)
		wantFields []string
	}{
		{name: "valid", mutate: func(p *RecordPayload) {}},
		{name: "unknown type", mutate: func(p *RecordPayload) { p.Type = "refund" }, wantFields: []string{"type"}},
		{name: "missing amount", mutate: func(p *RecordPayload) { p.Amount = "" }, wantFields: []string{"amount"}},
		{name: "negative amount", mutate: func(p *RecordPayload) { p.Amount = "-4" }, wantFields: []string{"amount"}},
		{name: "unknown method", mutate: func(p *RecordPayload) { p.Method = "crypto" }, wantFields: []string{"method"}},
		{name: "bad fee", mutate: func(p *RecordPayload) { p.ServiceFee = "x" }, wantFields: []string{"serviceFee"}},
		{name: "bad createdAt", mutate: func(p *RecordPayload) { p.CreatedAt = "tomorrow" }, wantFields: []string{"createdAt"}},
		{name: "company and self", mutate: func(p *RecordPayload) { p.Self = "zaad" }, wantFields: []string{"company"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			_, err := p.Record(time.UTC)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			for _, f := range tt.wantFields {
				assert.Contains(t, ve.Fields, f)
			}
		})
	}
}

func TestRecordPayload_Converts(t *testing.T) {
	p := RecordPayload{
		Type:       "income",
		Amount:     "99,90",
		Method:     "swiper",
		Employee:   "e1",
		ServiceFee: "0",
		CreatedAt:  "2024-03-05",
	}
	rec, err := p.Record(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 99.9, rec.Amount)
	assert.Zero(t, rec.ServiceFee)
	assert.Equal(t, core.MethodSwiper, rec.Method)
	assert.Equal(t, "e1", rec.Employee)
	assert.True(t, rec.CreatedAt.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), "CreatedAt = %v", rec.CreatedAt)
}

func TestParseEntityPayload(t *testing.T) {
	tests := []struct {
		body    string
		wantErr bool
	}{
		{`{"name":"Acme"}`, false},
		{"id=acme&name=Acme+Trading", false},
		{`{"name":"  "}`, true},
		{`{"id":"a/b","name":"Acme"}`, true},
		{`{"name":`, true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/companies", strings.NewReader(tt.body))
		e, err := ParseEntityPayload(req, core.KindCompany)
		if tt.wantErr {
			assert.Error(t, err, tt.body)
			continue
		}
		require.NoError(t, err, tt.body)
		assert.Equal(t, core.KindCompany, e.Kind)
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	require.NoError(t, parser.Parse())

	assert.True(t, parser.IsJSON())
	assert.Equal(t, "123", parser.Get("id"))
	assert.Equal(t, "test", parser.Get("name"))
	assert.Equal(t, "42.5", parser.Get("amount"))
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	require.NoError(t, parser.Parse())

	assert.False(t, parser.IsJSON())
	assert.Equal(t, "456", parser.Get("id"))
	assert.Equal(t, "form test", parser.Get("name"))
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	require.NoError(t, parser.Parse())
	assert.Empty(t, parser.Get("nonexistent"))
}
