package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"monev/internal/core"
)

func newParser(t *testing.T, body string) *RequestBodyParser {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse(%q) error = %v", body, err)
	}
	return p
}

func TestRequestBodyParser_JSON(t *testing.T) {
	p := newParser(t, `{"id": "123", "provinsi": " DKI Jakarta ", "hasilPengawasan": 7.5}`)

	if !p.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}
	if got := p.Get("id"); got != "123" {
		t.Errorf("Get('id') = %q, want '123'", got)
	}
	if got := p.Get("provinsi"); got != "DKI Jakarta" {
		t.Errorf("Get('provinsi') = %q, want trimmed value", got)
	}
	if got := p.Get("hasilPengawasan"); got != "7.5" {
		t.Errorf("Get('hasilPengawasan') = %q, want '7.5'", got)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	p := newParser(t, "id=456&kabupaten=Kota+Bandung&unsur=Pemantauan")

	if p.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}
	if got := p.Get("kabupaten"); got != "Kota Bandung" {
		t.Errorf("Get('kabupaten') = %q", got)
	}
	if got := p.First("unsurSpi", "unsur"); got != "Pemantauan" {
		t.Errorf("First() = %q, want fallback to unsur", got)
	}
}

func TestRequestBodyParser_Malformed(t *testing.T) {
	for _, body := range []string{`{"provinsi":`, `[1,2]`, "a=%zz", `{"id":1} {"id":2}`} {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse()
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("Parse(%q) error = %v, want validation error", body, err)
		}
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := "provinsi=" + strings.Repeat("x", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	if err := NewRequestBodyParser(httptest.NewRecorder(), req).Parse(); !errors.Is(err, core.ErrValidation) {
		t.Errorf("Parse() error = %v, want validation error", err)
	}
}

func TestRequestBodyParser_Amount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{"json number", `{"anggaran": 1500000}`, 1500000, false},
		{"json grouped string", `{"anggaran": "1.500.000"}`, 1500000, false},
		{"form with Rp", "anggaran=Rp+2.000.000", 2000000, false},
		{"json beyond float precision", `{"anggaran": 9007199254740993}`, 9007199254740993, false},
		{"json max int64", `{"anggaran": 9223372036854775807}`, 9223372036854775807, false},
		{"json integral decimal", `{"anggaran": 1500000.0}`, 1500000, false},
		{"json int64 overflow", `{"anggaran": 9223372036854775808}`, 0, true},
		{"json exponent beyond 2^53", `{"anggaran": 1e19}`, 0, true},
		{"json fraction", `{"anggaran": 12.5}`, 0, true},
		{"json negative", `{"anggaran": -1}`, 0, true},
		{"missing", `{}`, 0, true},
		{"letters", "anggaran=abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newParser(t, tt.body).Amount("anggaran")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Amount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var ve *core.ValidationError
				if !errors.As(err, &ve) || ve.Field != "anggaran" {
					t.Errorf("error = %v, want ValidationError on anggaran", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Amount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_ID(t *testing.T) {
	tests := []struct {
		body    string
		want    int64
		wantErr bool
	}{
		{`{"id": 4}`, 4, false},
		{"id=12", 12, false},
		{`{"id": 0}`, 0, true},
		{"id=x", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := newParser(t, tt.body).ID("id")
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ID(%q) = (%d, %v), want (%d, wantErr %v)", tt.body, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseAvailability(t *testing.T) {
	p := newParser(t, `{"budgetId": 3, "jenis": "Bidan", "kebutuhan": "12", "tersedia": 9}`)
	ra, err := parseAvailability(p)
	if err != nil {
		t.Fatalf("parseAvailability() error = %v", err)
	}
	want := core.ResourceAvailability{BudgetID: 3, Jenis: "Bidan", Kebutuhan: 12, Tersedia: 9}
	if ra != want {
		t.Errorf("parseAvailability() = %+v, want %+v", ra, want)
	}

	_, err = parseAvailability(newParser(t, `{"jenis": "Bidan", "kebutuhan": 1, "tersedia": 1}`))
	if !errors.Is(err, core.ErrMissingBudget) {
		t.Errorf("missing budgetId error = %v, want ErrMissingBudget", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  Jawa\x00 Barat\t "); got != "Jawa Barat" {
		t.Errorf("sanitizeInput() = %q", got)
	}
}
