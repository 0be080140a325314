package core

import (
	"errors"
	"fmt"
	"strings"
)

// Canonical label sets. Order matters: charts and selects render in this order.
var (
	ActionLabels = []string{
		"AKSI 1: Analisa Situasi Stunting",
		"AKSI 2: Rencana Kegiatan",
		"AKSI 3: Rembug Stunting",
		"AKSI 4: Regulasi terkait Stunting",
		"AKSI 5: Pembinaan Unsur Pelaku",
		"AKSI 6: Sistem Manajemen Data",
		"AKSI 7: Data Cakupan Sasaran dan Publikasi Data",
		"AKSI 8: Review Kerja",
	}

	ResourceKinds = []string{"Bidan", "USG", "Antropometri"}

	ControlUnsur = []string{
		"Lingkungan Pengendalian",
		"Penilaian Risiko",
		"Kegiatan Pengendalian",
		"Informasi dan Komunikasi",
		"Pemantauan",
	}
)

// UnknownRegionPart stands in for a province or district when the parent budget is missing.
const UnknownRegionPart = "Unknown"

type (
	Budget struct {
		ID        int64  `json:"id" db:"id"`
		Provinsi  string `json:"provinsi" db:"provinsi"`
		Kabupaten string `json:"kabupaten" db:"kabupaten"`
		OPD       string `json:"opd" db:"opd"`
		Anggaran  int64  `json:"anggaran" db:"anggaran"`   // whole Rupiah
		Realisasi int64  `json:"realisasi" db:"realisasi"` // whole Rupiah
	}

	ConvergenceAction struct {
		ID              int64   `json:"id" db:"id"`
		BudgetID        int64   `json:"budgetId" db:"budget_id"`
		Aksi            string  `json:"aksi" db:"aksi"`
		HasilPengawasan string  `json:"hasilPengawasan" db:"hasil_pengawasan"`
		Budget          *Budget `json:"budget,omitempty" db:"-"`
	}

	ResourceAvailability struct {
		ID        int64  `json:"id" db:"id"`
		BudgetID  int64  `json:"budgetId" db:"budget_id"`
		Jenis     string `json:"jenis" db:"jenis"`
		Kebutuhan int64  `json:"kebutuhan" db:"kebutuhan"`
		Tersedia  int64  `json:"tersedia" db:"tersedia"`
	}

	// ControlElement is one SPI (internal control system) dimension with its monitoring result.
	ControlElement struct {
		ID              int64  `json:"id" db:"id"`
		Unsur           string `json:"unsur" db:"unsur"`
		HasilPengawasan string `json:"hasilPengawasan" db:"hasil_pengawasan"`
	}
)

// Error categories. Every field-level error below wraps ErrValidation.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("record not found")
	ErrConflict   = errors.New("record is still referenced")
)

var (
	ErrEmptyProvince = fmt.Errorf("%w: provinsi is required", ErrValidation)
	ErrEmptyDistrict = fmt.Errorf("%w: kabupaten is required", ErrValidation)
	ErrEmptyAgency   = fmt.Errorf("%w: opd is required", ErrValidation)
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidQty    = fmt.Errorf("%w: invalid quantity", ErrValidation)
	ErrInvalidScore  = fmt.Errorf("%w: invalid score", ErrValidation)
	ErrInvalidAksi   = fmt.Errorf("%w: unknown aksi", ErrValidation)
	ErrInvalidJenis  = fmt.Errorf("%w: unknown jenis", ErrValidation)
	ErrInvalidUnsur  = fmt.Errorf("%w: unknown unsur", ErrValidation)
	ErrEmptyResult   = fmt.Errorf("%w: hasilPengawasan is required", ErrValidation)
	ErrMissingBudget = fmt.Errorf("%w: budgetId is required", ErrValidation)
	ErrUnknownBudget = fmt.Errorf("%w: budget does not exist", ErrValidation)
	ErrMissingID     = fmt.Errorf("%w: id is required", ErrValidation)
	ErrFieldTooLong  = fmt.Errorf("%w: value too long", ErrValidation)
)

// ValidationError ties a validation failure to the offending field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func requireText(field, value string, max int, empty error) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return invalid(field, empty)
	}
	if len(v) > max {
		return invalid(field, fmt.Errorf("%w (max %d characters)", ErrFieldTooLong, max))
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// IsActionLabel reports whether v is one of the eight convergence actions.
func IsActionLabel(v string) bool { return contains(ActionLabels, v) }

// IsResourceKind reports whether v is a known availability resource type.
func IsResourceKind(v string) bool { return contains(ResourceKinds, v) }

// IsControlUnsur reports whether v is one of the five SPI dimensions.
func IsControlUnsur(v string) bool { return contains(ControlUnsur, v) }

func (b Budget) Validate() error {
	if err := requireText("provinsi", b.Provinsi, 100, ErrEmptyProvince); err != nil {
		return err
	}
	if err := requireText("kabupaten", b.Kabupaten, 100, ErrEmptyDistrict); err != nil {
		return err
	}
	if err := requireText("opd", b.OPD, 200, ErrEmptyAgency); err != nil {
		return err
	}
	if b.Anggaran < 0 {
		return invalid("anggaran", ErrInvalidAmount)
	}
	if b.Realisasi < 0 {
		return invalid("realisasi", ErrInvalidAmount)
	}
	return nil
}

// Region is the "<provinsi> - <kabupaten>" key used to group chart data.
func (b Budget) Region() string {
	return b.Provinsi + " - " + b.Kabupaten
}

// Absorption returns realisasi as a percentage of anggaran, 0 when nothing was budgeted.
func (b Budget) Absorption() float64 {
	if b.Anggaran <= 0 {
		return 0
	}
	return float64(b.Realisasi) * 100 / float64(b.Anggaran)
}

// RegionOf returns the region key of b, or "Unknown - Unknown" when b is nil.
func RegionOf(b *Budget) string {
	if b == nil {
		return UnknownRegionPart + " - " + UnknownRegionPart
	}
	return b.Region()
}

func (a ConvergenceAction) Validate() error {
	if a.BudgetID <= 0 {
		return invalid("budgetId", ErrMissingBudget)
	}
	if !IsActionLabel(a.Aksi) {
		return invalid("aksi", ErrInvalidAksi)
	}
	if strings.TrimSpace(a.HasilPengawasan) == "" {
		return invalid("hasilPengawasan", ErrEmptyResult)
	}
	if _, err := ParseScore(a.HasilPengawasan); err != nil {
		return invalid("hasilPengawasan", err)
	}
	return nil
}

// Score is the numeric value of HasilPengawasan; unparseable text counts as zero.
func (a ConvergenceAction) Score() float64 {
	v, err := ParseScore(a.HasilPengawasan)
	if err != nil {
		return 0
	}
	return v
}

func (r ResourceAvailability) Validate() error {
	if r.BudgetID <= 0 {
		return invalid("budgetId", ErrMissingBudget)
	}
	if !IsResourceKind(r.Jenis) {
		return invalid("jenis", ErrInvalidJenis)
	}
	if r.Kebutuhan < 0 {
		return invalid("kebutuhan", ErrInvalidQty)
	}
	if r.Tersedia < 0 {
		return invalid("tersedia", ErrInvalidQty)
	}
	return nil
}

// Gap is tersedia minus kebutuhan; negative means a shortage.
func (r ResourceAvailability) Gap() int64 {
	return r.Tersedia - r.Kebutuhan
}

func (c ControlElement) Validate() error {
	if !IsControlUnsur(c.Unsur) {
		return invalid("unsur", ErrInvalidUnsur)
	}
	return requireText("hasilPengawasan", c.HasilPengawasan, 1000, ErrEmptyResult)
}
