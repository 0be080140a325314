package storage

import (
	"context"
	"log/slog"

	"monev/internal/core"
)

const (
	listBudgetsQuery  = `SELECT id, provinsi, kabupaten, opd, anggaran, realisasi FROM budgets ORDER BY id`
	getBudgetQuery    = `SELECT id, provinsi, kabupaten, opd, anggaran, realisasi FROM budgets WHERE id = ?`
	budgetExistsQuery = `SELECT COUNT(1) FROM budgets WHERE id = ?`
	deleteBudgetQuery = `DELETE FROM budgets WHERE id = ?`
	insertBudgetQuery = `INSERT INTO budgets (provinsi, kabupaten, opd, anggaran, realisasi)
        VALUES (:provinsi, :kabupaten, :opd, :anggaran, :realisasi)
        RETURNING id`
)

func (s *Store) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	budgets := []core.Budget{}
	if err := s.db.SelectContext(ctx, &budgets, listBudgetsQuery); err != nil {
		return nil, classify("list_budgets", err)
	}
	return budgets, nil
}

func (s *Store) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	var b core.Budget
	if err := s.db.GetContext(ctx, &b, s.db.Rebind(getBudgetQuery), id); err != nil {
		return core.Budget{}, classify("get_budget", err)
	}
	return b, nil
}

// BudgetExists reports whether a budget with id is stored.
func (s *Store) BudgetExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(budgetExistsQuery), id); err != nil {
		return false, classify("budget_exists", err)
	}
	return n > 0, nil
}

func (s *Store) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	id, err := s.insertNamed(ctx, "create_budget", insertBudgetQuery, b)
	if err != nil {
		return core.Budget{}, err
	}
	b.ID = id

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"provinsi", b.Provinsi,
		"kabupaten", b.Kabupaten,
		"anggaran", b.Anggaran,
		"realisasi", b.Realisasi)

	return b, nil
}

// DeleteBudget removes a budget and returns it. A budget still referenced by
// convergence actions or availability rows yields core.ErrConflict.
func (s *Store) DeleteBudget(ctx context.Context, id int64) (core.Budget, error) {
	var b core.Budget
	if err := s.deleteTx(ctx, "delete_budget", getBudgetQuery, deleteBudgetQuery, id, &b); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}
