package core

import "time"

// Resource names as they appear in routes, change events and HTMX triggers.
const (
	ResourceBudget       = "budget"
	ResourceAction       = "aksiKonvergensi"
	ResourceKetersediaan = "ketersediaan"
	ResourceControl      = "spi"
)

// Resources lists every resource in dashboard order.
var Resources = []string{ResourceBudget, ResourceAction, ResourceKetersediaan, ResourceControl}

// Snapshot is one consistent read of all four collections, as the dashboard renders it.
type Snapshot struct {
	Budgets      []Budget               `json:"budgets"`
	Actions      []ConvergenceAction    `json:"actions"`
	Availability []ResourceAvailability `json:"availability"`
	Controls     []ControlElement       `json:"controls"`
	LoadedAt     time.Time              `json:"loadedAt"`
}

// BudgetIndex maps budget ids to budgets for joining children.
func (s Snapshot) BudgetIndex() map[int64]Budget {
	idx := make(map[int64]Budget, len(s.Budgets))
	for _, b := range s.Budgets {
		idx[b.ID] = b
	}
	return idx
}

// NewValidationError exposes field-scoped validation errors to other packages.
func NewValidationError(field string, err error) error {
	return invalid(field, err)
}
