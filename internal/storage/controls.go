package storage

import (
	"context"

	"monev/internal/core"
)

const (
	listControlsQuery  = `SELECT id, unsur, hasil_pengawasan FROM spi ORDER BY id`
	getControlQuery    = `SELECT id, unsur, hasil_pengawasan FROM spi WHERE id = ?`
	deleteControlQuery = `DELETE FROM spi WHERE id = ?`
	insertControlQuery = `INSERT INTO spi (unsur, hasil_pengawasan)
        VALUES (:unsur, :hasil_pengawasan)
        RETURNING id`
	updateControlQuery = `UPDATE spi SET unsur = :unsur, hasil_pengawasan = :hasil_pengawasan,
        updated_at = CURRENT_TIMESTAMP WHERE id = :id`
)

func (s *Store) ListControls(ctx context.Context) ([]core.ControlElement, error) {
	items := []core.ControlElement{}
	if err := s.db.SelectContext(ctx, &items, listControlsQuery); err != nil {
		return nil, classify("list_controls", err)
	}
	return items, nil
}

func (s *Store) GetControl(ctx context.Context, id int64) (core.ControlElement, error) {
	var c core.ControlElement
	if err := s.db.GetContext(ctx, &c, s.db.Rebind(getControlQuery), id); err != nil {
		return core.ControlElement{}, classify("get_control", err)
	}
	return c, nil
}

func (s *Store) CreateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error) {
	id, err := s.insertNamed(ctx, "create_control", insertControlQuery, c)
	if err != nil {
		return core.ControlElement{}, err
	}
	c.ID = id
	return c, nil
}

// UpdateControl replaces unsur and hasilPengawasan of the SPI entry c.ID.
func (s *Store) UpdateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error) {
	res, err := s.db.NamedExecContext(ctx, updateControlQuery, c)
	if err != nil {
		return core.ControlElement{}, classify("update_control", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.ControlElement{}, classify("update_control", err)
	}
	if n == 0 {
		return core.ControlElement{}, &OperationError{Operation: "update_control", Err: core.ErrNotFound}
	}
	return c, nil
}

func (s *Store) DeleteControl(ctx context.Context, id int64) (core.ControlElement, error) {
	var c core.ControlElement
	if err := s.deleteTx(ctx, "delete_control", getControlQuery, deleteControlQuery, id, &c); err != nil {
		return core.ControlElement{}, err
	}
	return c, nil
}
