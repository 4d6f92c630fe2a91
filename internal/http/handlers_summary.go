package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"zaad/internal/aggregate"
	"zaad/internal/core"
	"zaad/internal/log"
	"zaad/internal/sheets/xlsx"
)

const summaryTimeout = 10 * time.Second

// dashboardView is the data behind dashboard.html and summary.html.
type dashboardView struct {
	Date       string
	Report     aggregate.Report
	Methods    []string
	MaxDaily   float64
	MaxMonthly float64
	Companies  []core.Entity
	Employees  []core.Entity
	RecordForm []core.Method
}

// report computes the summary for the request's ?date.
func (s *Server) report(r *http.Request) (aggregate.Report, error) {
	ref, err := ParseReferenceDate(r.URL.Query(), s.summary.Location())
	if err != nil {
		return aggregate.Report{}, err
	}
	ctx, cancel := context.WithTimeout(r.Context(), summaryTimeout)
	defer cancel()

	rep, err := s.summary.Report(ctx, ref)
	if err != nil {
		return aggregate.Report{}, fmt.Errorf("compute summary: %w", err)
	}
	s.appMetrics.summaries.Add(1)
	return rep, nil
}

func newDashboardView(rep aggregate.Report) dashboardView {
	v := dashboardView{
		Date:       rep.ReferenceDate,
		Report:     rep,
		RecordForm: core.Methods(),
	}
	for _, m := range aggregate.DefaultMethods {
		v.Methods = append(v.Methods, string(m))
	}
	v.MaxDaily = maxBucket(rep.Daily)
	v.MaxMonthly = maxBucket(rep.Monthly)
	return v
}

func maxBucket(w aggregate.WindowReport) float64 {
	var m float64
	for _, b := range w.Buckets {
		m = max(m, b.Expense, b.Profit)
	}
	return m
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate,
			"error_type", log.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			"template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := newDashboardView(rep)

	// Entity pickers are a convenience; the page still renders without them.
	if view.Companies, err = s.records.ListEntities(r.Context(), core.KindCompany, false); err != nil {
		s.logger.ErrorContext(r.Context(), "Company list error", log.FieldError, err)
	}
	if view.Employees, err = s.records.ListEntities(r.Context(), core.KindEmployee, false); err != nil {
		s.logger.ErrorContext(r.Context(), "Employee list error", log.FieldError, err)
	}
	s.render(w, r, "dashboard.html", view)
}

func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.render(w, r, "summary.html", newDashboardView(rep))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(http.StatusOK, rep).Write(w)
}

func (s *Server) handleSummaryXLSX(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := xlsx.Write(&buf, rep); err != nil {
		writeError(w, r, fmt.Errorf("build workbook: %w", err))
		return
	}
	w.Header().Set("Content-Type", xlsx.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", xlsx.FileName(rep)))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(http.StatusOK, rep.Balances).Write(w)
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(http.StatusOK, rep.Methods).Write(w)
}

func (s *Server) handleLiabilities(w http.ResponseWriter, r *http.Request) {
	rep, err := s.report(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	JSONResponse(http.StatusOK, rep.Liabilities).Write(w)
}

// handleWindow computes one rolling window without the rest of the summary.
func (s *Server) handleWindow(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("window")
	wt, err := aggregate.ParseWindowType(name)
	if err != nil {
		writeError(w, r, fmt.Errorf("window %q: %w", name, core.ErrNotFound))
		return
	}
	ref, err := ParseReferenceDate(r.URL.Query(), s.summary.Location())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), summaryTimeout)
	defer cancel()

	win, err := s.summary.Window(ctx, wt, ref)
	if err != nil {
		writeError(w, r, fmt.Errorf("compute window: %w", err))
		return
	}
	JSONResponse(http.StatusOK, win.Report()).Write(w)
}
