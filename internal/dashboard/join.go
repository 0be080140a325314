package dashboard

import "monev/internal/core"

// NotFoundLabel fills region cells of children whose budget is missing.
const NotFoundLabel = "Tidak ditemukan"

// JoinedAction is a convergence action paired with its budget.
type JoinedAction struct {
	core.ConvergenceAction
	Parent    core.Budget
	Unmatched bool
}

// JoinedAvailability is an availability row paired with its budget.
type JoinedAvailability struct {
	core.ResourceAvailability
	Parent    core.Budget
	Unmatched bool
}

func (j JoinedAction) Provinsi() string  { return regionCell(j.Unmatched, j.Parent.Provinsi) }
func (j JoinedAction) Kabupaten() string { return regionCell(j.Unmatched, j.Parent.Kabupaten) }

func (j JoinedAvailability) Provinsi() string  { return regionCell(j.Unmatched, j.Parent.Provinsi) }
func (j JoinedAvailability) Kabupaten() string { return regionCell(j.Unmatched, j.Parent.Kabupaten) }

func regionCell(unmatched bool, v string) string {
	if unmatched {
		return NotFoundLabel
	}
	return v
}

// JoinActions pairs actions with budgets by budgetId. An embedded budget is
// used when the id is not in budgets.
func JoinActions(actions []core.ConvergenceAction, budgets []core.Budget) []JoinedAction {
	idx := indexBudgets(budgets)
	out := make([]JoinedAction, 0, len(actions))
	for _, a := range actions {
		j := JoinedAction{ConvergenceAction: a}
		if b, ok := idx[a.BudgetID]; ok {
			j.Parent = b
		} else if a.Budget != nil && a.Budget.ID == a.BudgetID {
			j.Parent = *a.Budget
		} else {
			j.Unmatched = true
		}
		out = append(out, j)
	}
	return out
}

// JoinAvailability pairs availability rows with budgets by budgetId.
func JoinAvailability(items []core.ResourceAvailability, budgets []core.Budget) []JoinedAvailability {
	idx := indexBudgets(budgets)
	out := make([]JoinedAvailability, 0, len(items))
	for _, r := range items {
		b, ok := idx[r.BudgetID]
		out = append(out, JoinedAvailability{ResourceAvailability: r, Parent: b, Unmatched: !ok})
	}
	return out
}

func indexBudgets(budgets []core.Budget) map[int64]core.Budget {
	idx := make(map[int64]core.Budget, len(budgets))
	for _, b := range budgets {
		idx[b.ID] = b
	}
	return idx
}
