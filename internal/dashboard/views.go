package dashboard

import (
	"fmt"
	"strconv"

	"monev/internal/core"
)

// Filter placeholders of the region tables and the SPI table.
const (
	RegionPlaceholder  = "Cari berdasarkan Provinsi/Kabupaten/Kota"
	ControlPlaceholder = "Cari berdasarkan Unsur SPI"
)

// HeaderView is a rendered column header with its sort link state.
type HeaderView struct {
	Key       string
	Header    string
	Numeric   bool
	Active    bool
	Indicator string // ▲ or ▼ on the active column
	Link      string // query string that toggles sorting on this column
}

// CellView is one rendered cell.
type CellView struct {
	Text     string
	Numeric  bool
	Negative bool
}

// RowView is one rendered row. Unmatched marks children without a budget.
type RowView struct {
	ID        int64
	Cells     []CellView
	Unmatched bool
}

// TableView is everything a table partial needs.
type TableView struct {
	Resource    string
	Title       string
	Placeholder string
	Editable    bool
	Query       Query
	Headers     []HeaderView
	Rows        []RowView
	Total       int
	Page        int
	PageCount   int
	HasPrev     bool
	HasNext     bool
	PrevLink    string
	NextLink    string
	Err         string
}

// View describes how to render rows of T into a TableView.
type View[T any] struct {
	Resource    string
	Title       string
	Placeholder string
	Editable    bool
	Table       Table[T]
	RowID       func(T) int64
	Unmatched   func(T) bool
}

// Render applies q to rows and builds the TableView.
func (v View[T]) Render(rows []T, q Query) TableView {
	page := v.Table.Apply(rows, q)
	q.Page = page.Page
	q.Size = page.Size

	tv := TableView{
		Resource:    v.Resource,
		Title:       v.Title,
		Placeholder: v.Placeholder,
		Editable:    v.Editable,
		Query:       q,
		Total:       page.Total,
		Page:        page.Page,
		PageCount:   page.PageCount,
		HasPrev:     page.HasPrev,
		HasNext:     page.HasNext,
	}

	for _, c := range v.Table.Columns {
		h := HeaderView{Key: c.Key, Header: c.Header, Numeric: c.Kind == SortNumeric}
		next := q
		next.Sort = c.Key
		next.Dir = Asc
		next.Page = 1
		if q.Sort == c.Key {
			h.Active = true
			if q.Dir == Desc {
				h.Indicator = "▼"
			} else {
				h.Indicator = "▲"
				next.Dir = Desc
			}
		}
		h.Link = encode(next)
		tv.Headers = append(tv.Headers, h)
	}

	for _, r := range page.Rows {
		row := RowView{ID: v.RowID(r)}
		if v.Unmatched != nil {
			row.Unmatched = v.Unmatched(r)
		}
		for _, c := range v.Table.Columns {
			cell := CellView{Text: c.Cell(r), Numeric: c.Kind == SortNumeric}
			if cell.Numeric && c.Value != nil {
				cell.Negative = c.Value(r) < 0
			}
			row.Cells = append(row.Cells, cell)
		}
		tv.Rows = append(tv.Rows, row)
	}

	if page.HasPrev {
		prev := q
		prev.Page = page.Page - 1
		tv.PrevLink = encode(prev)
	}
	if page.HasNext {
		next := q
		next.Page = page.Page + 1
		tv.NextLink = encode(next)
	}
	return tv
}

func encode(q Query) string {
	v := q.Values()
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// QueryString is the current table state, used to refresh a table in place.
func (tv TableView) QueryString() string {
	return encode(tv.Query)
}

func amount[T any](f func(T) int64) (func(T) string, func(T) float64) {
	return func(r T) string { return core.FormatRupiah(f(r)) },
		func(r T) float64 { return float64(f(r)) }
}

func quantity[T any](f func(T) int64) (func(T) string, func(T) float64) {
	return func(r T) string { return core.GroupDigits(f(r)) },
		func(r T) float64 { return float64(f(r)) }
}

func rupiahColumn[T any](key, header string, f func(T) int64) Column[T] {
	cell, value := amount(f)
	return Column[T]{Key: key, Header: header, Kind: SortNumeric, Cell: cell, Value: value}
}

func quantityColumn[T any](key, header string, f func(T) int64) Column[T] {
	cell, value := quantity(f)
	return Column[T]{Key: key, Header: header, Kind: SortNumeric, Cell: cell, Value: value}
}

// BudgetView renders the budget table.
var BudgetView = View[core.Budget]{
	Resource:    core.ResourceBudget,
	Title:       "Anggaran",
	Placeholder: RegionPlaceholder,
	RowID:       func(b core.Budget) int64 { return b.ID },
	Table: Table[core.Budget]{Columns: []Column[core.Budget]{
		{Key: "provinsi", Header: "Provinsi", Cell: func(b core.Budget) string { return b.Provinsi }},
		{Key: "kabupaten", Header: "Kabupaten/Kota", Cell: func(b core.Budget) string { return b.Kabupaten }},
		{Key: "opd", Header: "OPD", Cell: func(b core.Budget) string { return b.OPD }},
		rupiahColumn("anggaran", "Anggaran", func(b core.Budget) int64 { return b.Anggaran }),
		rupiahColumn("realisasi", "Realisasi", func(b core.Budget) int64 { return b.Realisasi }),
		{
			Key: "serapan", Header: "Serapan", Kind: SortNumeric,
			Cell:  func(b core.Budget) string { return fmt.Sprintf("%.1f%%", b.Absorption()) },
			Value: func(b core.Budget) float64 { return b.Absorption() },
		},
	}},
}

// ActionView renders the convergence action table.
var ActionView = View[JoinedAction]{
	Resource:    core.ResourceAction,
	Title:       "Aksi Konvergensi",
	Placeholder: RegionPlaceholder,
	RowID:       func(j JoinedAction) int64 { return j.ID },
	Unmatched:   func(j JoinedAction) bool { return j.Unmatched },
	Table: Table[JoinedAction]{Columns: []Column[JoinedAction]{
		{Key: "provinsi", Header: "Provinsi", Cell: JoinedAction.Provinsi},
		{Key: "kabupaten", Header: "Kabupaten/Kota", Cell: JoinedAction.Kabupaten},
		{Key: "aksi", Header: "Aksi", Cell: func(j JoinedAction) string { return j.Aksi }},
		{
			Key: "hasil", Header: "Hasil Pengawasan", Kind: SortNumeric,
			Cell:  func(j JoinedAction) string { return j.HasilPengawasan },
			Value: func(j JoinedAction) float64 { return j.Score() },
		},
	}},
}

// AvailabilityView renders the availability table with its gap column.
var AvailabilityView = View[JoinedAvailability]{
	Resource:    core.ResourceKetersediaan,
	Title:       "Ketersediaan Sumber Daya",
	Placeholder: RegionPlaceholder,
	RowID:       func(j JoinedAvailability) int64 { return j.ID },
	Unmatched:   func(j JoinedAvailability) bool { return j.Unmatched },
	Table: Table[JoinedAvailability]{Columns: []Column[JoinedAvailability]{
		{Key: "provinsi", Header: "Provinsi", Cell: JoinedAvailability.Provinsi},
		{Key: "kabupaten", Header: "Kabupaten/Kota", Cell: JoinedAvailability.Kabupaten},
		{Key: "jenis", Header: "Jenis", Cell: func(j JoinedAvailability) string { return j.Jenis }},
		quantityColumn("kebutuhan", "Kebutuhan", func(j JoinedAvailability) int64 { return j.Kebutuhan }),
		quantityColumn("tersedia", "Tersedia", func(j JoinedAvailability) int64 { return j.Tersedia }),
		{
			Key: "selisih", Header: "Selisih", Kind: SortNumeric,
			Cell:  func(j JoinedAvailability) string { return strconv.FormatInt(j.Gap(), 10) },
			Value: func(j JoinedAvailability) float64 { return float64(j.Gap()) },
		},
	}},
}

// ControlView renders the SPI table. Rows can be edited inline.
var ControlView = View[core.ControlElement]{
	Resource:    core.ResourceControl,
	Title:       "Sistem Pengendalian Intern",
	Placeholder: ControlPlaceholder,
	Editable:    true,
	RowID:       func(c core.ControlElement) int64 { return c.ID },
	Table: Table[core.ControlElement]{Columns: []Column[core.ControlElement]{
		{Key: "unsur", Header: "Unsur SPI", Cell: func(c core.ControlElement) string { return c.Unsur }},
		{Key: "hasil", Header: "Hasil Pengawasan", Cell: func(c core.ControlElement) string { return c.HasilPengawasan }},
	}},
}

// BudgetOption is one entry of the child forms' budget select.
type BudgetOption struct {
	ID    int64
	Label string
}

// BudgetSelectPlaceholder is the empty first option of the budget select.
const BudgetSelectPlaceholder = "Pilih Provinsi dan Kabupaten/Kota"

// BudgetOptions lists budgets as "<provinsi> - <kabupaten>" select options.
func BudgetOptions(budgets []core.Budget) []BudgetOption {
	out := make([]BudgetOption, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, BudgetOption{ID: b.ID, Label: b.Region()})
	}
	return out
}
