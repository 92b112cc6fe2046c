package coordinator

import (
	"context"
	"errors"
	"fmt"

	"github.com/jcmexdev/food-storefront/internal/cart"
	"github.com/jcmexdev/food-storefront/internal/ordering"
)

// --- RecordOrderStep ---

// RecordOrderStep stores the order as PENDING. A clash on the order
// number is retried once with a fresh number.
type RecordOrderStep struct {
	repo  ordering.Repository
	order *ordering.Order
}

func NewRecordOrderStep(repo ordering.Repository, order *ordering.Order) *RecordOrderStep {
	return &RecordOrderStep{repo: repo, order: order}
}

func (s *RecordOrderStep) Name() string { return "Record_Order_Step" }

func (s *RecordOrderStep) Execute(ctx context.Context) error {
	s.order.Status = ordering.StatusPending
	err := s.repo.Save(ctx, s.order)
	if errors.Is(err, ordering.ErrDuplicateNumber) {
		s.order.Number = ordering.NewOrderNumber()
		err = s.repo.Save(ctx, s.order)
	}
	if err != nil {
		return fmt.Errorf("failed to record order: %w", err)
	}
	return nil
}

func (s *RecordOrderStep) Compensate(ctx context.Context) error {
	if err := s.repo.UpdateStatus(ctx, s.order.ID, ordering.StatusCancelled); err != nil {
		return err
	}
	s.order.Status = ordering.StatusCancelled
	return nil
}

// --- ClearCartStep ---

// ClearCartStep empties the cart the order was placed from. The caller
// must hold the cart's owner lock for the whole placement.
type ClearCartStep struct {
	store    *cart.Store
	snapshot map[string]int
}

func NewClearCartStep(store *cart.Store) *ClearCartStep {
	return &ClearCartStep{store: store}
}

func (s *ClearCartStep) Name() string { return "Clear_Cart_Step" }

func (s *ClearCartStep) Execute(context.Context) error {
	s.snapshot = s.store.Snapshot()
	s.store.Clear()
	return nil
}

func (s *ClearCartStep) Compensate(context.Context) error {
	if s.snapshot != nil {
		s.store.Restore(s.snapshot)
	}
	return nil
}

// --- NotifyKitchenStep ---

// KitchenNotifier tells the kitchen about an order and retracts it.
type KitchenNotifier interface {
	OrderPlaced(ctx context.Context, o *ordering.Order) error
	OrderCancelled(ctx context.Context, o *ordering.Order) error
}

type NotifyKitchenStep struct {
	kitchen KitchenNotifier
	order   *ordering.Order
}

func NewNotifyKitchenStep(kitchen KitchenNotifier, order *ordering.Order) *NotifyKitchenStep {
	return &NotifyKitchenStep{kitchen: kitchen, order: order}
}

func (s *NotifyKitchenStep) Name() string { return "Notify_Kitchen_Step" }

func (s *NotifyKitchenStep) Execute(ctx context.Context) error {
	return s.kitchen.OrderPlaced(ctx, s.order)
}

func (s *NotifyKitchenStep) Compensate(ctx context.Context) error {
	return s.kitchen.OrderCancelled(ctx, s.order)
}

// --- ConfirmOrderStep ---

type ConfirmOrderStep struct {
	repo  ordering.Repository
	order *ordering.Order
}

func NewConfirmOrderStep(repo ordering.Repository, order *ordering.Order) *ConfirmOrderStep {
	return &ConfirmOrderStep{repo: repo, order: order}
}

func (s *ConfirmOrderStep) Name() string { return "Confirm_Order_Step" }

func (s *ConfirmOrderStep) Execute(ctx context.Context) error {
	if err := s.repo.UpdateStatus(ctx, s.order.ID, ordering.StatusConfirmed); err != nil {
		return fmt.Errorf("failed to confirm order %s: %w", s.order.ID, err)
	}
	s.order.Status = ordering.StatusConfirmed
	return nil
}

// Compensate is a no-op: nothing runs after confirmation.
func (s *ConfirmOrderStep) Compensate(context.Context) error {
	return nil
}
