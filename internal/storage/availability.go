package storage

import (
	"context"

	"monev/internal/core"
)

const (
	listAvailabilityQuery   = `SELECT id, budget_id, jenis, kebutuhan, tersedia FROM ketersediaan ORDER BY id`
	getAvailabilityQuery    = `SELECT id, budget_id, jenis, kebutuhan, tersedia FROM ketersediaan WHERE id = ?`
	deleteAvailabilityQuery = `DELETE FROM ketersediaan WHERE id = ?`
	insertAvailabilityQuery = `INSERT INTO ketersediaan (budget_id, jenis, kebutuhan, tersedia)
        VALUES (:budget_id, :jenis, :kebutuhan, :tersedia)
        RETURNING id`
)

// ListAvailability returns availability rows without their budgets; callers join.
func (s *Store) ListAvailability(ctx context.Context) ([]core.ResourceAvailability, error) {
	items := []core.ResourceAvailability{}
	if err := s.db.SelectContext(ctx, &items, listAvailabilityQuery); err != nil {
		return nil, classify("list_availability", err)
	}
	return items, nil
}

func (s *Store) CreateAvailability(ctx context.Context, r core.ResourceAvailability) (core.ResourceAvailability, error) {
	id, err := s.insertNamed(ctx, "create_availability", insertAvailabilityQuery, r)
	if err != nil {
		return core.ResourceAvailability{}, err
	}
	r.ID = id
	return r, nil
}

func (s *Store) DeleteAvailability(ctx context.Context, id int64) (core.ResourceAvailability, error) {
	var r core.ResourceAvailability
	if err := s.deleteTx(ctx, "delete_availability", getAvailabilityQuery, deleteAvailabilityQuery, id, &r); err != nil {
		return core.ResourceAvailability{}, err
	}
	return r, nil
}
