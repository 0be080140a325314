package storage

import (
	"context"
	"database/sql"

	"monev/internal/core"
)

const (
	listActionsQuery = `SELECT a.id, a.budget_id, a.aksi, a.hasil_pengawasan,
            b.id AS budget_ref, b.provinsi, b.kabupaten, b.opd, b.anggaran, b.realisasi
        FROM aksi_konvergensi a
        LEFT JOIN budgets b ON b.id = a.budget_id
        ORDER BY a.id`
	getActionQuery    = `SELECT id, budget_id, aksi, hasil_pengawasan FROM aksi_konvergensi WHERE id = ?`
	deleteActionQuery = `DELETE FROM aksi_konvergensi WHERE id = ?`
	insertActionQuery = `INSERT INTO aksi_konvergensi (budget_id, aksi, hasil_pengawasan)
        VALUES (:budget_id, :aksi, :hasil_pengawasan)
        RETURNING id`
)

// actionRow is one convergence action joined with its (possibly missing) budget.
type actionRow struct {
	core.ConvergenceAction
	BudgetRef sql.NullInt64  `db:"budget_ref"`
	Provinsi  sql.NullString `db:"provinsi"`
	Kabupaten sql.NullString `db:"kabupaten"`
	OPD       sql.NullString `db:"opd"`
	Anggaran  sql.NullInt64  `db:"anggaran"`
	Realisasi sql.NullInt64  `db:"realisasi"`
}

func (r actionRow) toCore() core.ConvergenceAction {
	a := r.ConvergenceAction
	if r.BudgetRef.Valid {
		a.Budget = &core.Budget{
			ID:        r.BudgetRef.Int64,
			Provinsi:  r.Provinsi.String,
			Kabupaten: r.Kabupaten.String,
			OPD:       r.OPD.String,
			Anggaran:  r.Anggaran.Int64,
			Realisasi: r.Realisasi.Int64,
		}
	}
	return a
}

// ListActions returns every convergence action with its parent budget embedded.
func (s *Store) ListActions(ctx context.Context) ([]core.ConvergenceAction, error) {
	var rows []actionRow
	if err := s.db.SelectContext(ctx, &rows, listActionsQuery); err != nil {
		return nil, classify("list_actions", err)
	}
	actions := make([]core.ConvergenceAction, 0, len(rows))
	for _, r := range rows {
		actions = append(actions, r.toCore())
	}
	return actions, nil
}

func (s *Store) CreateAction(ctx context.Context, a core.ConvergenceAction) (core.ConvergenceAction, error) {
	id, err := s.insertNamed(ctx, "create_action", insertActionQuery, a)
	if err != nil {
		return core.ConvergenceAction{}, err
	}
	a.ID = id
	return a, nil
}

func (s *Store) DeleteAction(ctx context.Context, id int64) (core.ConvergenceAction, error) {
	var a core.ConvergenceAction
	if err := s.deleteTx(ctx, "delete_action", getActionQuery, deleteActionQuery, id, &a); err != nil {
		return core.ConvergenceAction{}, err
	}
	return a, nil
}
