package http

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"zaad/internal/core"
	"zaad/internal/log"
)

type recordPage struct {
	Records []core.RecordDocument `json:"records"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := ParseFilter(q, s.summary.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := ParsePage(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := s.records.ListRecords(r.Context(), f, p)
	if err != nil {
		writeError(w, r, fmt.Errorf("list records: %w", err))
		return
	}

	out := recordPage{
		Records: make([]core.RecordDocument, len(page.Records)),
		Total:   page.Total,
		Limit:   p.Limit,
		Offset:  p.Offset,
	}
	for i, rec := range page.Records {
		out.Records[i] = core.NewRecordDocument(rec)
	}
	JSONResponse(http.StatusOK, out).Write(w)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.GetRecord(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(http.StatusOK, core.NewRecordDocument(rec)).Write(w)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := ParseRecordPayload(r, s.summary.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec, err = s.records.CreateRecord(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.appMetrics.recordsCreated.Add(1)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogRecordWritten(r.Context(), log.OpCreate, rec.ID, string(rec.Type), string(rec.Method), rec.Amount)

	if isHTMX(r) {
		NewHTMXResponse().
			Status(http.StatusCreated).
			TriggerRecordChanged("created", rec.ID).
			TriggerFormReset().
			TriggerSummaryRefresh("").
			TriggerSuccessNotification("Record saved").
			BodyHTML(`<div class="success">Saved ` + template.HTMLEscapeString(string(rec.Type)) +
				` of ` + formatAmount(rec.Amount) +
				` (` + template.HTMLEscapeString(string(rec.Method)) + `)</div>`).
			Write(w)
		return
	}
	NewHTMXResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/records/"+rec.ID).
		BodyJSON(core.NewRecordDocument(rec)).
		Write(w)
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := ParseRecordPayload(r, s.summary.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rec.ID = r.PathValue("id")
	rec, err = s.records.UpdateRecord(r.Context(), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.appMetrics.recordsUpdated.Add(1)
	log.NewStructuredLogger(log.FromContext(r.Context())).
		LogRecordWritten(r.Context(), log.OpUpdate, rec.ID, string(rec.Type), string(rec.Method), rec.Amount)

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerRecordChanged("updated", rec.ID).
			TriggerSummaryRefresh("").
			TriggerSuccessNotification("Record updated").
			Write(w)
		return
	}
	JSONResponse(http.StatusOK, core.NewRecordDocument(rec)).Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.records.DeleteRecord(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.appMetrics.recordsDeleted.Add(1)

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerRecordChanged("deleted", id).
			TriggerSummaryRefresh("").
			TriggerSuccessNotification("Record deleted").
			Write(w)
		return
	}
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleListEntities(kind core.CounterpartyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		includeUnpublished := false
		if v := r.URL.Query().Get("include_unpublished"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: include_unpublished %q", errBadParam, v))
				return
			}
			includeUnpublished = b
		}

		list, err := s.records.ListEntities(r.Context(), kind, includeUnpublished)
		if err != nil {
			writeError(w, r, fmt.Errorf("list %s entities: %w", kind, err))
			return
		}
		out := make([]core.EntityDocument, len(list))
		for i, e := range list {
			out[i] = core.NewEntityDocument(e)
		}
		JSONResponse(http.StatusOK, out).Write(w)
	}
}

func (s *Server) handleCreateEntity(kind core.CounterpartyKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := ParseEntityPayload(r, kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		e, err = s.records.CreateEntity(r.Context(), e)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.appMetrics.entityWrites.Add(1)

		if isHTMX(r) {
			NewHTMXResponse().
				Status(http.StatusCreated).
				TriggerEntityChanged("created", string(kind), e.ID).
				TriggerFormReset().
				TriggerSummaryRefresh("").
				TriggerSuccessNotification(e.Name + " added").
				Write(w)
			return
		}
		JSONResponse(http.StatusCreated, core.NewEntityDocument(e)).Write(w)
	}
}

func (s *Server) handleDeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	e, err := s.records.GetEntity(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.records.DeleteEntity(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	s.appMetrics.entityWrites.Add(1)

	if isHTMX(r) {
		NewHTMXResponse().
			TriggerEntityChanged("deleted", string(e.Kind), id).
			TriggerSummaryRefresh("").
			Write(w)
		return
	}
	NewHTMXResponse().Status(http.StatusNoContent).Write(w)
}
