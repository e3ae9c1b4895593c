package order

import (
	"context"
	"time"

	"tienda-be/internal/client"
	"tienda-be/internal/logger"
	"tienda-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, clientID int64, items []NewOrderItem) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByClient(ctx context.Context, clientID int64) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	Cancel(ctx context.Context, id int64) error
	IsOwner(ctx context.Context, orderID int64, subjectID string) bool
}

type service struct {
	repo    Repository
	clients client.Service
}

func NewService(repo Repository, clients client.Service) Service {
	return &service{repo: repo, clients: clients}
}

// Create converts the requested lines into a priced order. Inside one
// transaction each product row is locked, checked against the requested
// quantity and decremented; the first shortfall aborts the whole call, so
// no earlier decrement survives. Unit prices are frozen at this moment.
func (s *service) Create(ctx context.Context, clientID int64, items []NewOrderItem) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "CreateOrder"),
		zap.Int64("client_id", clientID),
		zap.Int("item_count", len(items)),
	)

	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
	}

	cl, err := s.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	o := &Order{
		ClientID:  cl.ID,
		Client:    cl.Summary(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		var total float64

		for _, it := range items {
			p, err := s.repo.GetProductForUpdate(txCtx, it.ProductID)
			if err != nil {
				return err
			}

			if p.Stock < it.Quantity {
				log.Warn("insufficient stock",
					zap.Int64("product_id", p.ID),
					zap.Int("available", p.Stock),
					zap.Int("requested", it.Quantity),
				)
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Available:   p.Stock,
					Requested:   it.Quantity,
				}
			}

			remaining := p.Stock - it.Quantity
			if err := s.repo.SetProductStock(txCtx, p.ID, remaining); err != nil {
				return err
			}

			line := OrderItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: p.Price,
				Subtotal:  p.Price * float64(it.Quantity),
				Product:   product.Summary{ID: p.ID, Name: p.Name, Price: p.Price, Stock: remaining},
			}
			o.Items = append(o.Items, line)
			total += line.Subtotal
		}

		o.Total = total
		return s.repo.InsertOrder(txCtx, o)
	})
	if err != nil {
		return nil, err
	}

	log.Info("order created",
		zap.Int64("order_id", o.ID),
		zap.Float64("total", o.Total),
	)
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id int64) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListAll(ctx context.Context) ([]*Order, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByClient(ctx context.Context, clientID int64) ([]*Order, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.repo.ListByClient(ctx, clientID)
}

// UpdateStatus enforces the monotonic chain PENDING -> CONFIRMED -> SHIPPED
// -> DELIVERED through the transition table. A transition to CANCELLED goes
// through the cancellation protocol so the stock restoration is never skipped.
func (s *service) UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, ErrUnknownStatus
	}

	if status == StatusCancelled {
		if err := s.Cancel(ctx, id); err != nil {
			return nil, err
		}
		return s.repo.GetByID(ctx, id)
	}

	var updated *Order
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if !o.Status.CanTransitionTo(status) {
			return &InvalidTransitionError{From: o.Status, To: status}
		}

		if err := s.repo.SetStatus(txCtx, o.ID, status); err != nil {
			return err
		}

		logger.FromCtx(txCtx).Info("order status changed",
			zap.Int64("order_id", o.ID),
			zap.String("from", o.Status.String()),
			zap.String("to", status.String()),
		)

		o.Status = status
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel reverses the creation protocol: every line's quantity is returned to
// its product's stock and the order is marked CANCELLED, all in one
// transaction. Shipped, delivered or already cancelled orders are rejected.
func (s *service) Cancel(ctx context.Context, id int64) error {
	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		o, err := s.repo.GetForUpdate(txCtx, id)
		if err != nil {
			return err
		}

		if !o.Status.Cancellable() {
			return &InvalidTransitionError{From: o.Status, To: StatusCancelled}
		}

		for _, it := range o.Items {
			p, err := s.repo.GetProductForUpdate(txCtx, it.ProductID)
			if err != nil {
				return err
			}
			if err := s.repo.SetProductStock(txCtx, p.ID, p.Stock+it.Quantity); err != nil {
				return err
			}
		}

		if err := s.repo.SetStatus(txCtx, o.ID, StatusCancelled); err != nil {
			return err
		}

		logger.FromCtx(txCtx).Info("order cancelled, stock restored",
			zap.Int64("order_id", o.ID),
		)
		return nil
	})
}

// IsOwner reports whether the authenticated subject owns the order. It fails
// closed: a missing order or a lookup error yields false, never an error.
func (s *service) IsOwner(ctx context.Context, orderID int64, subjectID string) bool {
	owner, err := s.repo.OwnerSubject(ctx, orderID)
	if err != nil {
		logger.FromCtx(ctx).Debug("ownership check failed closed",
			zap.Int64("order_id", orderID), zap.Error(err))
		return false
	}
	return owner == subjectID
}
