package http

import (
	"context"
	"html/template"
	"net/http"

	"monev/internal/core"
	"monev/internal/dashboard"
)

const (
	msgBudgetSaved       = "Data anggaran disimpan"
	msgActionSaved       = "Aksi konvergensi disimpan"
	msgAvailabilitySaved = "Ketersediaan sumber daya disimpan"
	msgControlSaved      = "Unsur SPI disimpan"
	msgControlUpdated    = "Unsur SPI diperbarui"
	msgDeleted           = "Data dihapus"
)

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listJSON(s, w, r, "list_budgets", s.svc.ListBudgets)
	case http.MethodPost:
		s.createBudget(w, r)
	case http.MethodDelete:
		deleteRecord(s, w, r, core.ResourceBudget, s.svc.DeleteBudget, func(core.Budget) int64 { return 0 })
	default:
		methodNotAllowed(w, r, "GET, POST, DELETE")
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, "DELETE")
		return
	}
	deleteRecord(s, w, r, core.ResourceBudget, s.svc.DeleteBudget, func(core.Budget) int64 { return 0 })
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listJSON(s, w, r, "list_actions", s.svc.ListActions)
	case http.MethodPost:
		s.createAction(w, r)
	case http.MethodDelete:
		deleteRecord(s, w, r, core.ResourceAction, s.svc.DeleteAction, actionBudget)
	default:
		methodNotAllowed(w, r, "GET, POST, DELETE")
	}
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, "DELETE")
		return
	}
	deleteRecord(s, w, r, core.ResourceAction, s.svc.DeleteAction, actionBudget)
}

func (s *Server) handleAvailabilities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listJSON(s, w, r, "list_availability", s.svc.ListAvailability)
	case http.MethodPost:
		s.createAvailability(w, r)
	case http.MethodDelete:
		deleteRecord(s, w, r, core.ResourceKetersediaan, s.svc.DeleteAvailability, availabilityBudget)
	default:
		methodNotAllowed(w, r, "GET, POST, DELETE")
	}
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, "DELETE")
		return
	}
	deleteRecord(s, w, r, core.ResourceKetersediaan, s.svc.DeleteAvailability, availabilityBudget)
}

func (s *Server) handleControls(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		listJSON(s, w, r, "list_controls", s.svc.ListControls)
	case http.MethodPost:
		s.createControl(w, r)
	case http.MethodPut:
		s.updateControl(w, r)
	case http.MethodDelete:
		deleteRecord(s, w, r, core.ResourceControl, s.svc.DeleteControl, func(core.ControlElement) int64 { return 0 })
	default:
		methodNotAllowed(w, r, "GET, POST, PUT, DELETE")
	}
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		s.updateControl(w, r)
	case http.MethodDelete:
		deleteRecord(s, w, r, core.ResourceControl, s.svc.DeleteControl, func(core.ControlElement) int64 { return 0 })
	default:
		methodNotAllowed(w, r, "PUT, DELETE")
	}
}

func actionBudget(a core.ConvergenceAction) int64         { return a.BudgetID }
func availabilityBudget(a core.ResourceAvailability) int64 { return a.BudgetID }

func (s *Server) createBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, "create_budget", err)
		return
	}
	b, err := parseBudget(p)
	if err != nil {
		s.fail(w, r, "create_budget", err)
		return
	}
	created, err := s.svc.CreateBudget(r.Context(), b)
	if err != nil {
		s.fail(w, r, "create_budget", err)
		return
	}
	s.respondMutation(w, r, core.ResourceBudget, "created", created.ID, 0, created, msgBudgetSaved)
}

func (s *Server) createAction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, "create_action", err)
		return
	}
	a, err := parseAction(p)
	if err != nil {
		s.fail(w, r, "create_action", err)
		return
	}
	created, err := s.svc.CreateAction(r.Context(), a)
	if err != nil {
		s.fail(w, r, "create_action", err)
		return
	}
	s.respondMutation(w, r, core.ResourceAction, "created", created.ID, created.BudgetID, created, msgActionSaved)
}

func (s *Server) createAvailability(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, "create_availability", err)
		return
	}
	ra, err := parseAvailability(p)
	if err != nil {
		s.fail(w, r, "create_availability", err)
		return
	}
	created, err := s.svc.CreateAvailability(r.Context(), ra)
	if err != nil {
		s.fail(w, r, "create_availability", err)
		return
	}
	s.respondMutation(w, r, core.ResourceKetersediaan, "created", created.ID, created.BudgetID, created, msgAvailabilitySaved)
}

func (s *Server) createControl(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, "create_control", err)
		return
	}
	created, err := s.svc.CreateControl(r.Context(), parseControl(p))
	if err != nil {
		s.fail(w, r, "create_control", err)
		return
	}
	s.respondMutation(w, r, core.ResourceControl, "created", created.ID, 0, created, msgControlSaved)
}

// updateControl takes the id from the path or, on /api/spi, from the body.
func (s *Server) updateControl(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		s.fail(w, r, "update_control", err)
		return
	}
	c := parseControl(p)

	id, ok, err := pathID(r)
	if !ok {
		id, err = p.ID("id")
	}
	if err != nil {
		s.fail(w, r, "update_control", err)
		return
	}
	c.ID = id

	updated, err := s.svc.UpdateControl(r.Context(), c)
	if err != nil {
		s.fail(w, r, "update_control", err)
		return
	}
	s.respondMutation(w, r, core.ResourceControl, "updated", updated.ID, 0, updated, msgControlUpdated)
}

func listJSON[T any](s *Server, w http.ResponseWriter, r *http.Request, op string, load func(context.Context) ([]T, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	items, err := load(ctx)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, items)
}

func deleteRecord[T any](s *Server, w http.ResponseWriter, r *http.Request, resource string, del func(context.Context, int64) (T, error), budgetOf func(T) int64) {
	op := "delete_" + resource
	id, err := targetID(w, r)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	deleted, err := del(r.Context(), id)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	s.respondMutation(w, r, resource, "deleted", id, budgetOf(deleted), deleted, msgDeleted)
}

// respondMutation answers a committed mutation. HTMX clients get the change
// triggers that refresh dependent partials; API clients get the record.
func (s *Server) respondMutation(w http.ResponseWriter, r *http.Request, resource, action string, id, budgetID int64, record any, message string) {
	s.mutated(r.Context(), resource, action, id, budgetID)

	status := http.StatusOK
	if action == "created" {
		status = http.StatusCreated
	}

	if !isHTMX(r) {
		writeJSON(w, status, record)
		return
	}

	b := NewHTMXResponse().
		Status(status).
		TriggerChanged(resource, action, id).
		TriggerSuccessNotification(message)
	if action == "created" {
		b.TriggerFormReset(resource)
	}
	b.BodyHTML(`<div class="success" role="status">` + template.HTMLEscapeString(message) + `</div>`).Write(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logRequestError(r, op, err)
	writeError(w, r, err)
}

func (s *Server) handleBudgetChartJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	budgets, err := s.svc.ListBudgets(ctx)
	if err != nil {
		s.fail(w, r, "budget_chart", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BuildBudgetChart(budgets))
}

func (s *Server) handleActionChartJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, "GET")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), dashboardTimeout)
	defer cancel()

	actions, err := s.svc.ListActions(ctx)
	if err != nil {
		s.fail(w, r, "action_chart", err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.BuildActionChart(actions))
}
