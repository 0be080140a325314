// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Mutations arrive either as JSON (API clients) or form-encoded (HTMX forms).

package http

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"monev/internal/core"
)

// maxBodyBytes caps every mutation body.
const maxBodyBytes = 64 << 10

// maxExactFloat is the largest integer a float64 holds exactly (2^53).
const maxExactFloat = 1 << 53

// errMalformedBody is reported for bodies that are neither JSON nor form data.
var errMalformedBody = fmt.Errorf("%w: malformed request body", core.ErrValidation)

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errMalformedBody, p.err)
	}
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

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = errMalformedBody
			return p.err
		}
		if _, err := dec.Token(); err != io.EOF {
			p.jsonData = nil
			p.err = errMalformedBody
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errMalformedBody
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Has reports whether key was sent at all.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a string value from the parsed data (JSON or form).
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

// First returns the first non-empty value among keys.
func (p *RequestBodyParser) First(keys ...string) string {
	for _, k := range keys {
		if v := p.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// Amount reads a whole-Rupiah value. JSON numbers must be integral and
// non-negative; strings go through core.ParseAmount.
func (p *RequestBodyParser) Amount(key string) (int64, error) {
	return p.integer(key, core.ParseAmount, core.ErrInvalidAmount)
}

// Quantity reads a non-negative count.
func (p *RequestBodyParser) Quantity(key string) (int64, error) {
	return p.integer(key, core.ParseQuantity, core.ErrInvalidQty)
}

func (p *RequestBodyParser) integer(key string, parse func(string) (int64, error), invalid error) (int64, error) {
	if p.jsonData != nil {
		if n, ok := p.jsonData[key].(json.Number); ok {
			v, err := jsonInteger(n)
			if err != nil {
				return 0, core.NewValidationError(key, invalid)
			}
			return v, nil
		}
	}
	raw := p.Get(key)
	if raw == "" {
		return 0, core.NewValidationError(key, invalid)
	}
	v, err := parse(raw)
	if err != nil {
		return 0, core.NewValidationError(key, err)
	}
	return v, nil
}

// jsonInteger parses a non-negative integral JSON number without going
// through float64. Integral decimals such as 1500000.0 are accepted up to 2^53.
func jsonInteger(n json.Number) (int64, error) {
	if v, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if v < 0 {
			return 0, core.ErrInvalidAmount
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > maxExactFloat {
		return 0, core.ErrInvalidAmount
	}
	return int64(f), nil
}

// ID reads a positive record id from key.
func (p *RequestBodyParser) ID(key string) (int64, error) {
	raw := p.Get(key)
	if raw == "" {
		return 0, core.NewValidationError(key, core.ErrMissingID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(key, core.ErrMissingID)
	}
	return id, nil
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// pathID parses the {id} path segment. ok is false when the route has none.
func pathID(r *http.Request) (int64, bool, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, true, core.NewValidationError("id", core.ErrMissingID)
	}
	return id, true, nil
}

// targetID resolves the record id from the path, falling back to the body.
func targetID(w http.ResponseWriter, r *http.Request) (int64, error) {
	if id, ok, err := pathID(r); ok {
		return id, err
	}
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return 0, err
	}
	if id, err := p.ID("id"); err == nil {
		return id, nil
	}
	if id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64); err == nil && id > 0 {
		return id, nil
	}
	return 0, core.NewValidationError("id", core.ErrMissingID)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func parseBudget(p *RequestBodyParser) (core.Budget, error) {
	b := core.Budget{
		Provinsi:  p.Get("provinsi"),
		Kabupaten: p.Get("kabupaten"),
		OPD:       p.Get("opd"),
	}
	var err error
	if b.Anggaran, err = p.Amount("anggaran"); err != nil {
		return b, err
	}
	if b.Realisasi, err = p.Amount("realisasi"); err != nil {
		return b, err
	}
	return b, nil
}

func parseAction(p *RequestBodyParser) (core.ConvergenceAction, error) {
	a := core.ConvergenceAction{
		Aksi:            p.Get("aksi"),
		HasilPengawasan: p.Get("hasilPengawasan"),
	}
	id, err := p.ID("budgetId")
	if err != nil {
		return a, core.NewValidationError("budgetId", core.ErrMissingBudget)
	}
	a.BudgetID = id
	return a, nil
}

func parseAvailability(p *RequestBodyParser) (core.ResourceAvailability, error) {
	ra := core.ResourceAvailability{Jenis: p.Get("jenis")}
	id, err := p.ID("budgetId")
	if err != nil {
		return ra, core.NewValidationError("budgetId", core.ErrMissingBudget)
	}
	ra.BudgetID = id
	if ra.Kebutuhan, err = p.Quantity("kebutuhan"); err != nil {
		return ra, err
	}
	if ra.Tersedia, err = p.Quantity("tersedia"); err != nil {
		return ra, err
	}
	return ra, nil
}

func parseControl(p *RequestBodyParser) core.ControlElement {
	return core.ControlElement{
		Unsur:           p.First("unsurSpi", "unsur"),
		HasilPengawasan: p.Get("hasilPengawasan"),
	}
}
