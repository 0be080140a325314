package http

import (
	"context"
	"net/http"

	"monev/internal/core"
	"monev/internal/dashboard"
	"monev/internal/log"
)

const (
	budgetChartTitle = "Anggaran dan Realisasi per Wilayah"
	actionChartTitle = "Hasil Pengawasan Aksi Konvergensi"

	msgLoadFailed = "Data tidak dapat dimuat. Coba muat ulang halaman."
)

// segmentResources maps /ui path segments to resources.
var segmentResources = func() map[string]string {
	m := make(map[string]string, len(uiSegments))
	for res, seg := range uiSegments {
		m[seg] = res
	}
	return m
}()

type indexPage struct {
	Budget       dashboard.TableView
	Action       dashboard.TableView
	Availability dashboard.TableView
	Control      dashboard.TableView

	BudgetChart chartPartial
	ActionChart chartPartial

	BudgetOptions []dashboard.BudgetOption
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, r, "GET")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	q := dashboard.ParseQuery(nil)
	snap, err := s.snapshot(ctx, r)

	page := indexPage{
		Budget:       tableFor(core.ResourceBudget, snap, q, err),
		Action:       tableFor(core.ResourceAction, snap, q, err),
		Availability: tableFor(core.ResourceKetersediaan, snap, q, err),
		Control:      tableFor(core.ResourceControl, snap, q, err),
	}
	page.BudgetChart = chartFor(uiSegments[core.ResourceBudget], snap, err)
	page.ActionChart = chartFor(uiSegments[core.ResourceAction], snap, err)
	if err == nil {
		page.BudgetOptions = dashboard.BudgetOptions(snap.Budgets)
	}

	s.render(w, r, "index.html", page)
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	resource, ok := segmentResources[r.PathValue("segment")]
	if !ok {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	snap, err := s.snapshot(ctx, r)
	s.render(w, r, "table", tableFor(resource, snap, dashboard.ParseQuery(r.URL.Query()), err))
}

type chartPartial struct {
	Segment string
	Chart   dashboard.BarChart
	Err     string
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	segment := r.PathValue("segment")
	if segment != uiSegments[core.ResourceBudget] && segment != uiSegments[core.ResourceAction] {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	snap, err := s.snapshot(ctx, r)
	s.render(w, r, "chart", chartFor(segment, snap, err))
}

func (s *Server) handleBudgetOptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	budgets, err := s.svc.ListBudgets(ctx)
	if err != nil {
		s.fail(w, r, "budget_options", err)
		return
	}
	s.render(w, r, "options", dashboard.BudgetOptions(budgets))
}

func (s *Server) handleControlEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	id, _, err := pathID(r)
	if err != nil {
		s.fail(w, r, "edit_control", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	c, err := s.svc.GetControl(ctx, id)
	if err != nil {
		s.fail(w, r, "edit_control", err)
		return
	}
	s.render(w, r, "spi_edit", c)
}

// snapshot loads the dashboard data, logging failures. Callers render a
// per-section error instead of failing the page.
func (s *Server) snapshot(ctx context.Context, r *http.Request) (core.Snapshot, error) {
	snap, err := s.svc.Snapshot(ctx)
	if err != nil {
		s.structured.LogError(r.Context(), "Failed to load dashboard snapshot", err, log.ComponentDashboard, log.OpRead, nil)
	}
	return snap, err
}

// tableFor renders one resource's table. On err the table keeps its
// headers and shows msgLoadFailed in place of rows.
func tableFor(resource string, snap core.Snapshot, q dashboard.Query, err error) dashboard.TableView {
	if err != nil {
		snap = core.Snapshot{}
	}
	var tv dashboard.TableView
	switch resource {
	case core.ResourceBudget:
		tv = dashboard.BudgetView.Render(snap.Budgets, q)
	case core.ResourceAction:
		tv = dashboard.ActionView.Render(dashboard.JoinActions(snap.Actions, snap.Budgets), q)
	case core.ResourceKetersediaan:
		tv = dashboard.AvailabilityView.Render(dashboard.JoinAvailability(snap.Availability, snap.Budgets), q)
	default:
		tv = dashboard.ControlView.Render(snap.Controls, q)
	}
	if err != nil {
		tv.Err = msgLoadFailed
	}
	return tv
}

// chartFor builds the budget or action chart partial for segment.
func chartFor(segment string, snap core.Snapshot, err error) chartPartial {
	data := chartPartial{Segment: segment}
	if segment == uiSegments[core.ResourceBudget] {
		data.Chart = dashboard.Bars(budgetChartTitle, dashboard.BuildBudgetChart(snap.Budgets), dashboard.RupiahLabel)
	} else {
		data.Chart = dashboard.Bars(actionChartTitle, dashboard.BuildActionChart(snap.Actions), dashboard.ScoreLabel)
	}
	if err != nil {
		data.Err = msgLoadFailed
	}
	return data
}
