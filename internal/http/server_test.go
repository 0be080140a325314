package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"monev/internal/core"
	"monev/internal/dashboard"
	"monev/internal/log"
	"monev/internal/services"
	"monev/internal/storage"
)

// newTestServer wires a real sqlite-backed service behind the server.
func newTestServer(t *testing.T) (*Server, *services.MonitoringService) {
	t.Helper()
	store, err := storage.Open(context.Background(), storage.Config{
		Driver: storage.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "monev.db"),
	})
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	svc := services.NewMonitoringService(store)
	t.Cleanup(func() { _ = svc.Close() })

	logger := log.New(log.Config{Output: io.Discard})
	return NewServer(":0", svc, WithLogger(logger)), svc
}

func do(t *testing.T, srv *Server, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	} else if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body APIError
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("error body is not JSON: %q", rr.Body.String())
	}
	return body.Error
}

func createBudget(t *testing.T, srv *Server, provinsi, kabupaten string) core.Budget {
	t.Helper()
	rr := do(t, srv, http.MethodPost, "/api/budget",
		fmt.Sprintf(`{"provinsi":%q,"kabupaten":%q,"opd":"Bappeda","anggaran":"1.500.000","realisasi":750000}`, provinsi, kabupaten))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create budget status = %d, body %s", rr.Code, rr.Body.String())
	}
	var b core.Budget
	if err := json.Unmarshal(rr.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode budget: %v", err)
	}
	return b
}

func TestIndexAndHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"Monitoring dan Evaluasi",
		"Cari berdasarkan Unsur SPI",
		"Pilih Provinsi dan Kabupaten/Kota",
		`id="table-aksi"`,
		`id="chart-budget"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index body missing %q", want)
		}
	}

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status = %d, body %s", path, rr.Code, rr.Body.String())
		}
	}

	if rr := do(t, srv, http.MethodGet, "/does-not-exist", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	b := createBudget(t, srv, "Jawa Barat", "Bandung")
	if b.Anggaran != 1500000 || b.Realisasi != 750000 {
		t.Errorf("amounts = %d/%d, want 1500000/750000", b.Anggaran, b.Realisasi)
	}

	rr := do(t, srv, http.MethodPost, "/api/aksiKonvergensi",
		fmt.Sprintf(`{"budgetId":%d,"aksi":%q,"hasilPengawasan":"7,5"}`, b.ID, core.ActionLabels[0]))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create action status = %d, body %s", rr.Code, rr.Body.String())
	}
	var a core.ConvergenceAction
	_ = json.Unmarshal(rr.Body.Bytes(), &a)

	rr = do(t, srv, http.MethodGet, "/api/aksiKonvergensi", "")
	var actions []core.ConvergenceAction
	if err := json.Unmarshal(rr.Body.Bytes(), &actions); err != nil || len(actions) != 1 {
		t.Fatalf("list actions = %s (%v)", rr.Body.String(), err)
	}
	if actions[0].Budget == nil || actions[0].Budget.Provinsi != "Jawa Barat" {
		t.Errorf("action list should embed its budget: %+v", actions[0])
	}

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), "")
	if rr.Code != http.StatusConflict || errorCode(t, rr) != "conflict_error" {
		t.Fatalf("delete referenced budget = %d %s, want 409", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, "/api/aksiKonvergensi", fmt.Sprintf(`{"id":%d}`, a.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("delete action by body id = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete budget = %d %s", rr.Code, rr.Body.String())
	}
	var deleted core.Budget
	if err := json.Unmarshal(rr.Body.Bytes(), &deleted); err != nil || deleted.ID != b.ID {
		t.Errorf("delete should return the deleted record, got %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), "")
	if rr.Code != http.StatusNotFound || errorCode(t, rr) != "not_found_error" {
		t.Errorf("delete unknown budget = %d %s, want 404", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/budget", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("empty list body = %q, want []", rr.Body.String())
	}
}

func TestDeleteOnlyRemovesTarget(t *testing.T) {
	srv, _ := newTestServer(t)
	first := createBudget(t, srv, "Aceh", "Banda Aceh")
	second := createBudget(t, srv, "Bali", "Denpasar")

	if rr := do(t, srv, http.MethodDelete, "/api/budget", fmt.Sprintf("id=%d", first.ID)); rr.Code != http.StatusOK {
		t.Fatalf("delete = %d %s", rr.Code, rr.Body.String())
	}

	var budgets []core.Budget
	_ = json.Unmarshal(do(t, srv, http.MethodGet, "/api/budget", "").Body.Bytes(), &budgets)
	if len(budgets) != 1 || budgets[0].ID != second.ID {
		t.Errorf("remaining budgets = %+v, want only %d", budgets, second.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	b := createBudget(t, srv, "Jawa Tengah", "Semarang")

	tests := []struct {
		name string
		path string
		body string
	}{
		{"missing provinsi", "/api/budget", `{"kabupaten":"X","opd":"Y","anggaran":1,"realisasi":1}`},
		{"bad amount", "/api/budget", "provinsi=A&kabupaten=B&opd=C&anggaran=12,5&realisasi=1"},
		{"missing amount", "/api/budget", `{"provinsi":"A","kabupaten":"B","opd":"C","anggaran":1}`},
		{"unknown aksi", "/api/aksiKonvergensi", fmt.Sprintf(`{"budgetId":%d,"aksi":"AKSI 9","hasilPengawasan":"1"}`, b.ID)},
		{"unknown budget", "/api/aksiKonvergensi", fmt.Sprintf(`{"budgetId":9999,"aksi":%q,"hasilPengawasan":"1"}`, core.ActionLabels[1])},
		{"bad score", "/api/aksiKonvergensi", fmt.Sprintf(`{"budgetId":%d,"aksi":%q,"hasilPengawasan":"baik"}`, b.ID, core.ActionLabels[1])},
		{"unknown jenis", "/api/ketersediaan", fmt.Sprintf(`{"budgetId":%d,"jenis":"Dokter","kebutuhan":1,"tersedia":1}`, b.ID)},
		{"negative quantity", "/api/ketersediaan", fmt.Sprintf(`{"budgetId":%d,"jenis":"USG","kebutuhan":-2,"tersedia":1}`, b.ID)},
		{"unknown unsur", "/api/spi", `{"unsurSpi":"Lainnya","hasilPengawasan":"ok"}`},
		{"empty result", "/api/spi", `{"unsur":"Pemantauan","hasilPengawasan":"  "}`},
		{"malformed json", "/api/spi", `{"unsur":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, srv, http.MethodPost, tt.path, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
			if code := errorCode(t, rr); code != "validation_error" {
				t.Errorf("error code = %q", code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		method, path, allow string
	}{
		{http.MethodPatch, "/api/budget", "GET, POST, DELETE"},
		{http.MethodPut, "/api/ketersediaan", "GET, POST, DELETE"},
		{http.MethodGet, "/api/spi/1", "PUT, DELETE"},
		{http.MethodPost, "/api/charts/aksi", "GET"},
	}
	for _, tt := range tests {
		rr := do(t, srv, tt.method, tt.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s = %d, want 405", tt.method, tt.path, rr.Code)
			continue
		}
		if rr.Header().Get("Allow") != tt.allow {
			t.Errorf("%s %s Allow = %q, want %q", tt.method, tt.path, rr.Header().Get("Allow"), tt.allow)
		}
		if code := errorCode(t, rr); code != "method_not_allowed" {
			t.Errorf("%s %s error = %q", tt.method, tt.path, code)
		}
	}
}

func TestHTMXMutation(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/budget",
		"provinsi=DKI+Jakarta&kabupaten=Jakarta+Selatan&opd=Bappeda&anggaran=2.000.000&realisasi=1.000.000",
		"HX-Request", "true")
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, want := range []string{`"budget:changed"`, `"form:reset"`, `"form":"budget"`, `"show-notification"`} {
		if !strings.Contains(trigger, want) {
			t.Errorf("HX-Trigger missing %s: %s", want, trigger)
		}
	}
	if !strings.Contains(rr.Body.String(), `class="success"`) {
		t.Errorf("body = %q", rr.Body.String())
	}

	rr = do(t, srv, http.MethodPost, "/api/budget", "provinsi=&kabupaten=X&opd=Y&anggaran=1&realisasi=1",
		"HX-Request", "true")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid HTMX status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `class="error"`) {
		t.Errorf("invalid HTMX body = %q", rr.Body.String())
	}
	if rr.Header().Get("HX-Trigger") != "" {
		t.Errorf("failed mutation should not trigger refreshes: %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestControlUpdate(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/api/spi", `{"unsurSpi":"Penilaian Risiko","hasilPengawasan":"Memadai"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rr.Code, rr.Body.String())
	}
	var c core.ControlElement
	_ = json.Unmarshal(rr.Body.Bytes(), &c)
	if c.Unsur != "Penilaian Risiko" {
		t.Errorf("unsurSpi alias not honoured: %+v", c)
	}

	rr = do(t, srv, http.MethodPut, "/api/spi",
		fmt.Sprintf(`{"id":%d,"unsur":"Pemantauan","hasilPengawasan":"Perlu perbaikan"}`, c.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, fmt.Sprintf("/ui/spi/%d/edit", c.ID), "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Perlu perbaikan") {
		t.Errorf("edit row = %d %s", rr.Code, rr.Body.String())
	}

	rr = do(t, srv, http.MethodPut, "/api/spi/9999", "unsurSpi=Pemantauan&hasilPengawasan=x")
	if rr.Code != http.StatusNotFound {
		t.Errorf("update unknown = %d, want 404", rr.Code)
	}

	rr = do(t, srv, http.MethodPut, "/api/spi", "unsurSpi=Pemantauan&hasilPengawasan=x")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("update without id = %d, want 400", rr.Code)
	}
}

func TestTablePartial(t *testing.T) {
	srv, _ := newTestServer(t)
	createBudget(t, srv, "DKI Jakarta", "Jakarta Pusat")
	createBudget(t, srv, "Jawa Barat", "Bogor")

	rr := do(t, srv, http.MethodGet, "/ui/budget/table?q=jakarta", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "DKI Jakarta") || strings.Contains(body, "Bogor") {
		t.Errorf("filter jakarta should keep only DKI Jakarta:\n%s", body)
	}
	if !strings.Contains(body, "Rp 1.500.000") {
		t.Errorf("amounts should render as Rupiah:\n%s", body)
	}

	rr = do(t, srv, http.MethodGet, "/ui/budget/table?sort=provinsi&dir=desc", "")
	body = rr.Body.String()
	if strings.Index(body, "Jawa Barat") > strings.Index(body, "DKI Jakarta") {
		t.Error("descending sort should list Jawa Barat first")
	}
	if !strings.Contains(body, "▼") {
		t.Error("active descending column should show ▼")
	}

	if rr := do(t, srv, http.MethodGet, "/ui/unknown/table", ""); rr.Code != http.StatusNotFound {
		t.Errorf("unknown table = %d, want 404", rr.Code)
	}
}

func TestUnmatchedChildRendersNotFound(t *testing.T) {
	srv, svc := newTestServer(t)
	b := createBudget(t, srv, "Papua", "Jayapura")
	if rr := do(t, srv, http.MethodPost, "/api/ketersediaan",
		fmt.Sprintf(`{"budgetId":%d,"jenis":"USG","kebutuhan":4,"tersedia":1}`, b.ID)); rr.Code != http.StatusCreated {
		t.Fatalf("create availability = %d %s", rr.Code, rr.Body.String())
	}

	rr := do(t, srv, http.MethodGet, "/ui/ketersediaan/table", "")
	if !strings.Contains(rr.Body.String(), "Papua") || !strings.Contains(rr.Body.String(), "-3") {
		t.Errorf("availability row should show region and gap:\n%s", rr.Body.String())
	}

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	orphans := tableFor(core.ResourceKetersediaan, core.Snapshot{Availability: snap.Availability}, dashboard.ParseQuery(nil), nil)
	if len(orphans.Rows) != 1 || !orphans.Rows[0].Unmatched {
		t.Fatalf("rows = %+v, want one unmatched row", orphans.Rows)
	}
	if orphans.Rows[0].Cells[0].Text != dashboard.NotFoundLabel {
		t.Errorf("unmatched region cell = %q", orphans.Rows[0].Cells[0].Text)
	}
}

func TestBudgetOptionsAndCharts(t *testing.T) {
	srv, _ := newTestServer(t)
	b := createBudget(t, srv, "A", "B")
	do(t, srv, http.MethodPost, "/api/aksiKonvergensi",
		fmt.Sprintf(`{"budgetId":%d,"aksi":%q,"hasilPengawasan":"5"}`, b.ID, core.ActionLabels[0]))
	do(t, srv, http.MethodPost, "/api/aksiKonvergensi",
		fmt.Sprintf(`{"budgetId":%d,"aksi":%q,"hasilPengawasan":"3"}`, b.ID, core.ActionLabels[1]))

	rr := do(t, srv, http.MethodGet, "/ui/budget/options", "")
	if !strings.Contains(rr.Body.String(), fmt.Sprintf(`<option value="%d">A - B</option>`, b.ID)) {
		t.Errorf("options body = %s", rr.Body.String())
	}

	rr = do(t, srv, http.MethodGet, "/api/charts/aksi", "")
	var chart struct {
		Labels   []string `json:"labels"`
		Datasets []struct {
			Label string    `json:"label"`
			Data  []float64 `json:"data"`
		} `json:"datasets"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &chart); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if len(chart.Labels) != 1 || chart.Labels[0] != "A - B" {
		t.Errorf("labels = %v", chart.Labels)
	}
	if len(chart.Datasets) != len(core.ActionLabels) {
		t.Fatalf("datasets = %d, want %d", len(chart.Datasets), len(core.ActionLabels))
	}
	if chart.Datasets[0].Data[0] != 5 || chart.Datasets[1].Data[0] != 3 || chart.Datasets[2].Data[0] != 0 {
		t.Errorf("datasets = %+v", chart.Datasets)
	}

	rr = do(t, srv, http.MethodGet, "/ui/aksi/chart", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "width: 100%") {
		t.Errorf("chart partial = %d %s", rr.Code, rr.Body.String())
	}
}

type failingSnapshot struct{ MonitoringService }

func (failingSnapshot) Snapshot(context.Context) (core.Snapshot, error) {
	return core.Snapshot{}, errors.New("database is locked")
}

func TestSnapshotErrorStillRenders(t *testing.T) {
	_, svc := newTestServer(t)
	srv := NewServer(":0", failingSnapshot{svc}, WithLogger(log.New(log.Config{Output: io.Discard})))

	rr := do(t, srv, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("index should render despite snapshot errors, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), msgLoadFailed) {
		t.Error("index should show the per-section load error")
	}
	if strings.Contains(rr.Body.String(), "database is locked") {
		t.Error("internal error text leaked into the page")
	}
}

func TestTemplatesMissing(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.templates = nil

	if rr := do(t, srv, http.MethodGet, "/", ""); rr.Code != http.StatusInternalServerError {
		t.Errorf("index without templates = %d, want 500", rr.Code)
	}
	if rr := do(t, srv, http.MethodGet, "/readyz", ""); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("readyz without templates = %d, want 503", rr.Code)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	b := createBudget(t, srv, "Maluku", "Ambon")
	do(t, srv, http.MethodDelete, fmt.Sprintf("/api/budget/%d", b.ID), "")
	do(t, srv, http.MethodGet, "/?q=1%20union%20select%201", "")

	body := do(t, srv, http.MethodGet, "/metrics", "").Body.String()
	for _, want := range []string{
		`records_mutated_total{resource="budget",action="created"} 1`,
		`records_mutated_total{resource="budget",action="deleted"} 1`,
		`records_mutated_total{resource="spi",action="updated"} 0`,
		"suspicious_requests_total 1",
		"rate_limit_hits_total 0",
		"# TYPE http_requests_total counter",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q\n%s", want, body)
		}
	}
}

func TestRateLimitedMutations(t *testing.T) {
	_, svc := newTestServer(t)
	srv := NewServer(":0", svc, WithRateLimit(1), WithLogger(log.New(log.Config{Output: io.Discard})))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	body := `{"unsur":"Pemantauan","hasilPengawasan":"ok"}`
	if rr := do(t, srv, http.MethodPost, "/api/spi", body); rr.Code != http.StatusCreated {
		t.Fatalf("first POST = %d", rr.Code)
	}
	rr := do(t, srv, http.MethodPost, "/api/spi", body)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q", rr.Header().Get("Retry-After"))
	}
	if rr := do(t, srv, http.MethodGet, "/api/spi", ""); rr.Code != http.StatusOK {
		t.Errorf("reads should not be limited, got %d", rr.Code)
	}
}

// logLine returns the first record in out whose message is msg.
func logLine(t *testing.T, out, msg string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "msg=\""+msg+"\"") {
			return line
		}
	}
	t.Fatalf("no %q record in log:\n%s", msg, out)
	return ""
}

func TestRouteGroupsTagLogComponent(t *testing.T) {
	_, svc := newTestServer(t)
	var buf bytes.Buffer
	srv := NewServer(":0", svc, WithLogger(log.New(log.Config{Level: slog.LevelDebug, Output: &buf})))

	if rr := do(t, srv, http.MethodPost, "/api/budget", `{"provinsi":""}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid create = %d, want 400", rr.Code)
	}
	srv.templates = nil
	if rr := do(t, srv, http.MethodGet, "/ui/budget/table", ""); rr.Code != http.StatusInternalServerError {
		t.Fatalf("table without templates = %d, want 500", rr.Code)
	}

	tests := []struct {
		msg, component string
	}{
		{"Request rejected", log.ComponentMonitor},
		{"Templates not loaded", log.ComponentDashboard},
	}
	for _, tt := range tests {
		line := logLine(t, buf.String(), tt.msg)
		if !strings.Contains(line, "component="+tt.component) {
			t.Errorf("%q record = %q, want component=%s", tt.msg, line, tt.component)
		}
		if n := strings.Count(line, "component="); n != 1 {
			t.Errorf("%q record has %d component keys, want 1", tt.msg, n)
		}
		if !strings.Contains(line, log.FieldRequestID+"=") {
			t.Errorf("%q record = %q, want a request id", tt.msg, line)
		}
	}
}

func TestLargeJSONAmountStoredExactly(t *testing.T) {
	srv, _ := newTestServer(t)
	const anggaran int64 = 9007199254740993 // 2^53 + 1

	rr := do(t, srv, http.MethodPost, "/api/budget",
		fmt.Sprintf(`{"provinsi":"Papua","kabupaten":"Jayapura","opd":"Bappeda","anggaran":%d,"realisasi":0}`, anggaran))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}

	var budgets []core.Budget
	if err := json.Unmarshal(do(t, srv, http.MethodGet, "/api/budget", "").Body.Bytes(), &budgets); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(budgets) != 1 || budgets[0].Anggaran != anggaran {
		t.Errorf("stored budgets = %+v, want anggaran %d", budgets, anggaran)
	}
}
