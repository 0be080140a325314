package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"monev/internal/cache"
	"monev/internal/core"
)

const snapshotKey = "snapshot"

// Store is the persistence port the service drives. storage.Store satisfies it.
type Store interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	BudgetExists(ctx context.Context, id int64) (bool, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) (core.Budget, error)

	ListActions(ctx context.Context) ([]core.ConvergenceAction, error)
	CreateAction(ctx context.Context, a core.ConvergenceAction) (core.ConvergenceAction, error)
	DeleteAction(ctx context.Context, id int64) (core.ConvergenceAction, error)

	ListAvailability(ctx context.Context) ([]core.ResourceAvailability, error)
	CreateAvailability(ctx context.Context, r core.ResourceAvailability) (core.ResourceAvailability, error)
	DeleteAvailability(ctx context.Context, id int64) (core.ResourceAvailability, error)

	ListControls(ctx context.Context) ([]core.ControlElement, error)
	GetControl(ctx context.Context, id int64) (core.ControlElement, error)
	CreateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error)
	UpdateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error)
	DeleteControl(ctx context.Context, id int64) (core.ControlElement, error)

	Ping(ctx context.Context) error
	Close() error
}

// EventPublisher announces committed mutations. amqp.Client satisfies it.
type EventPublisher interface {
	PublishChange(ctx context.Context, resource, action string, id int64) error
	Close() error
}

// MonitoringService orchestrates the four monitoring resources across the store,
// the snapshot cache and change events.
type MonitoringService struct {
	store     Store
	publisher EventPublisher
	snapshots cache.Cache[core.Snapshot]
	retry     RetryPolicy

	// generation counts committed mutations. A load only caches its result
	// when no mutation committed while it ran.
	cacheMu    sync.Mutex
	generation uint64
}

// Option customises a MonitoringService.
type Option func(*MonitoringService)

func WithPublisher(p EventPublisher) Option {
	return func(s *MonitoringService) { s.publisher = p }
}

func WithSnapshotCache(c cache.Cache[core.Snapshot]) Option {
	return func(s *MonitoringService) { s.snapshots = c }
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(s *MonitoringService) { s.retry = p }
}

func NewMonitoringService(store Store, opts ...Option) *MonitoringService {
	s := &MonitoringService{
		store: store,
		retry: DefaultRetryPolicy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping checks the store is reachable.
func (s *MonitoringService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Snapshot loads all four collections concurrently. Any failing load fails the
// whole snapshot. A cached snapshot is returned when one is fresh.
func (s *MonitoringService) Snapshot(ctx context.Context) (core.Snapshot, error) {
	if s.snapshots != nil {
		if snap, ok := s.snapshots.Get(snapshotKey); ok {
			return snap, nil
		}
	}

	gen := s.currentGeneration()

	var snap core.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := s.ListBudgets(gctx)
		snap.Budgets = v
		return err
	})
	g.Go(func() error {
		v, err := s.ListActions(gctx)
		snap.Actions = v
		return err
	})
	g.Go(func() error {
		v, err := s.ListAvailability(gctx)
		snap.Availability = v
		return err
	})
	g.Go(func() error {
		v, err := s.ListControls(gctx)
		snap.Controls = v
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	snap.LoadedAt = time.Now()

	s.storeSnapshot(gen, snap)
	return snap, nil
}

func (s *MonitoringService) currentGeneration() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.generation
}

// storeSnapshot caches snap unless a mutation committed after gen was read.
func (s *MonitoringService) storeSnapshot(gen uint64, snap core.Snapshot) {
	if s.snapshots == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != gen {
		return
	}
	s.snapshots.Set(snapshotKey, snap)
}

// invalidate drops the cached snapshot and discards loads still in flight.
func (s *MonitoringService) invalidate() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.generation++
	if s.snapshots != nil {
		s.snapshots.Delete(snapshotKey)
	}
}

func (s *MonitoringService) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	return withRetry(ctx, s.retry, "list_budgets", s.store.ListBudgets)
}

func (s *MonitoringService) ListActions(ctx context.Context) ([]core.ConvergenceAction, error) {
	return withRetry(ctx, s.retry, "list_actions", s.store.ListActions)
}

func (s *MonitoringService) ListAvailability(ctx context.Context) ([]core.ResourceAvailability, error) {
	return withRetry(ctx, s.retry, "list_availability", s.store.ListAvailability)
}

func (s *MonitoringService) ListControls(ctx context.Context) ([]core.ControlElement, error) {
	return withRetry(ctx, s.retry, "list_controls", s.store.ListControls)
}

func (s *MonitoringService) GetControl(ctx context.Context, id int64) (core.ControlElement, error) {
	if id <= 0 {
		return core.ControlElement{}, core.NewValidationError("id", core.ErrMissingID)
	}
	return withRetry(ctx, s.retry, "get_control", func(ctx context.Context) (core.ControlElement, error) {
		return s.store.GetControl(ctx, id)
	})
}

func (s *MonitoringService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	created, err := withRetry(ctx, s.retry, "create_budget", func(ctx context.Context) (core.Budget, error) {
		return s.store.CreateBudget(ctx, b)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	s.changed(ctx, core.ResourceBudget, "created", created.ID)
	return created, nil
}

// DeleteBudget fails with core.ErrConflict while children still reference the budget.
func (s *MonitoringService) DeleteBudget(ctx context.Context, id int64) (core.Budget, error) {
	if id <= 0 {
		return core.Budget{}, core.NewValidationError("id", core.ErrMissingID)
	}
	deleted, err := withRetry(ctx, s.retry, "delete_budget", func(ctx context.Context) (core.Budget, error) {
		return s.store.DeleteBudget(ctx, id)
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("delete budget %d: %w", id, err)
	}
	s.changed(ctx, core.ResourceBudget, "deleted", id)
	return deleted, nil
}

func (s *MonitoringService) CreateAction(ctx context.Context, a core.ConvergenceAction) (core.ConvergenceAction, error) {
	if err := a.Validate(); err != nil {
		return core.ConvergenceAction{}, err
	}
	if err := s.requireBudget(ctx, a.BudgetID); err != nil {
		return core.ConvergenceAction{}, err
	}
	created, err := withRetry(ctx, s.retry, "create_action", func(ctx context.Context) (core.ConvergenceAction, error) {
		return s.store.CreateAction(ctx, a)
	})
	if err != nil {
		return core.ConvergenceAction{}, fmt.Errorf("create convergence action: %w", parentGone(err))
	}
	s.changed(ctx, core.ResourceAction, "created", created.ID)
	return created, nil
}

func (s *MonitoringService) DeleteAction(ctx context.Context, id int64) (core.ConvergenceAction, error) {
	if id <= 0 {
		return core.ConvergenceAction{}, core.NewValidationError("id", core.ErrMissingID)
	}
	deleted, err := withRetry(ctx, s.retry, "delete_action", func(ctx context.Context) (core.ConvergenceAction, error) {
		return s.store.DeleteAction(ctx, id)
	})
	if err != nil {
		return core.ConvergenceAction{}, fmt.Errorf("delete convergence action %d: %w", id, err)
	}
	s.changed(ctx, core.ResourceAction, "deleted", id)
	return deleted, nil
}

func (s *MonitoringService) CreateAvailability(ctx context.Context, r core.ResourceAvailability) (core.ResourceAvailability, error) {
	if err := r.Validate(); err != nil {
		return core.ResourceAvailability{}, err
	}
	if err := s.requireBudget(ctx, r.BudgetID); err != nil {
		return core.ResourceAvailability{}, err
	}
	created, err := withRetry(ctx, s.retry, "create_availability", func(ctx context.Context) (core.ResourceAvailability, error) {
		return s.store.CreateAvailability(ctx, r)
	})
	if err != nil {
		return core.ResourceAvailability{}, fmt.Errorf("create availability: %w", parentGone(err))
	}
	s.changed(ctx, core.ResourceKetersediaan, "created", created.ID)
	return created, nil
}

func (s *MonitoringService) DeleteAvailability(ctx context.Context, id int64) (core.ResourceAvailability, error) {
	if id <= 0 {
		return core.ResourceAvailability{}, core.NewValidationError("id", core.ErrMissingID)
	}
	deleted, err := withRetry(ctx, s.retry, "delete_availability", func(ctx context.Context) (core.ResourceAvailability, error) {
		return s.store.DeleteAvailability(ctx, id)
	})
	if err != nil {
		return core.ResourceAvailability{}, fmt.Errorf("delete availability %d: %w", id, err)
	}
	s.changed(ctx, core.ResourceKetersediaan, "deleted", id)
	return deleted, nil
}

func (s *MonitoringService) CreateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error) {
	if err := c.Validate(); err != nil {
		return core.ControlElement{}, err
	}
	created, err := withRetry(ctx, s.retry, "create_control", func(ctx context.Context) (core.ControlElement, error) {
		return s.store.CreateControl(ctx, c)
	})
	if err != nil {
		return core.ControlElement{}, fmt.Errorf("create spi: %w", err)
	}
	s.changed(ctx, core.ResourceControl, "created", created.ID)
	return created, nil
}

func (s *MonitoringService) UpdateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error) {
	if c.ID <= 0 {
		return core.ControlElement{}, core.NewValidationError("id", core.ErrMissingID)
	}
	if err := c.Validate(); err != nil {
		return core.ControlElement{}, err
	}
	updated, err := withRetry(ctx, s.retry, "update_control", func(ctx context.Context) (core.ControlElement, error) {
		return s.store.UpdateControl(ctx, c)
	})
	if err != nil {
		return core.ControlElement{}, fmt.Errorf("update spi %d: %w", c.ID, err)
	}
	s.changed(ctx, core.ResourceControl, "updated", c.ID)
	return updated, nil
}

func (s *MonitoringService) DeleteControl(ctx context.Context, id int64) (core.ControlElement, error) {
	if id <= 0 {
		return core.ControlElement{}, core.NewValidationError("id", core.ErrMissingID)
	}
	deleted, err := withRetry(ctx, s.retry, "delete_control", func(ctx context.Context) (core.ControlElement, error) {
		return s.store.DeleteControl(ctx, id)
	})
	if err != nil {
		return core.ControlElement{}, fmt.Errorf("delete spi %d: %w", id, err)
	}
	s.changed(ctx, core.ResourceControl, "deleted", id)
	return deleted, nil
}

func (s *MonitoringService) requireBudget(ctx context.Context, id int64) error {
	ok, err := withRetry(ctx, s.retry, "budget_exists", func(ctx context.Context) (bool, error) {
		return s.store.BudgetExists(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("check budget %d: %w", id, err)
	}
	if !ok {
		return core.NewValidationError("budgetId", core.ErrUnknownBudget)
	}
	return nil
}

// parentGone turns an FK violation on insert, a budget deleted after the
// existence check, into the same validation error the check would give.
func parentGone(err error) error {
	if errors.Is(err, core.ErrConflict) {
		return core.NewValidationError("budgetId", core.ErrUnknownBudget)
	}
	return err
}

// changed invalidates the snapshot cache and publishes a change event.
// Publishing failures are logged; the mutation is already committed.
func (s *MonitoringService) changed(ctx context.Context, resource, action string, id int64) {
	s.invalidate()

	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping change event",
			"resource", resource, "action", action, "id", id)
		return
	}
	if err := s.publisher.PublishChange(ctx, resource, action, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"resource", resource,
			"action", action,
			"id", id,
			"error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *MonitoringService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close monitoring service: %v", errs)
	}

	return nil
}
