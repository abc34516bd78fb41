package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TxRunner owns the atomic unit of work. Implemented by postgres.DB.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type LineInput struct {
	ProductID int64 `json:"product_id"`
	SizeID    int64 `json:"size_id"`
	Quantity  int   `json:"quantity"`
}

type CreateOrderInput struct {
	UserID       int64       `json:"user_id"`
	ReceiverName string      `json:"receiver_name"`
	Address      string      `json:"address"`
	Phone        string      `json:"phone"`
	Lines        []LineInput `json:"items"`
	UsePoint     int         `json:"use_point"`
}

// Coordinator turns a cart-like request into a durable order and undoes it
// on cancellation. It is the only code path that mutates stock quantities
// and user balances, and it owns every transaction boundary.
type Coordinator struct {
	DB         TxRunner
	Orders     OrderRepo
	Stock      StockLedger
	Accounts   AccountLedger
	Classifier *Classifier
	Catalog    Catalog
	Events     EventSink
	TxTimeout  time.Duration
	Now        func() time.Time
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) txTimeout() time.Duration {
	if c.TxTimeout > 0 {
		return c.TxTimeout
	}
	return 5 * time.Second
}

// Create validates the request, resolves prices outside the transaction,
// then runs one atomic unit of work: stock check under lock, order + lines +
// payment insert, stock decrement, point deduction, lifetime-spend update,
// grade recalculation, and a final aggregate re-read. Post-commit it fires
// best-effort notifications and returns exactly what was committed.
func (c *Coordinator) Create(ctx context.Context, in CreateOrderInput) (*OrderAggregate, error) {
	if len(in.Lines) == 0 {
		return nil, BadRequestf("order has no line items")
	}
	if in.UsePoint < 0 {
		return nil, BadRequestf("use_point must not be negative")
	}

	// Price resolution is a read-only catalog lookup; the frozen line prices
	// come from here, never from the client.
	now := c.now()
	subtotal, totalQty := 0, 0
	lines := make([]OrderLine, 0, len(in.Lines))
	for _, li := range in.Lines {
		if li.Quantity <= 0 {
			return nil, BadRequestf("invalid quantity for product %d", li.ProductID)
		}
		info, err := c.Catalog.PriceInfo(ctx, li.ProductID)
		if err != nil {
			return nil, err
		}
		unit := EffectivePrice(info, now)
		lines = append(lines, OrderLine{
			ProductID: li.ProductID,
			SizeID:    li.SizeID,
			Price:     unit,
			Quantity:  li.Quantity,
		})
		subtotal += unit * li.Quantity
		totalQty += li.Quantity
	}

	// Optimistic fast-fail; the guarded decrement inside the transaction is
	// the authoritative check.
	if in.UsePoint > 0 {
		balance, err := c.Accounts.Balance(ctx, in.UserID)
		if err != nil {
			return nil, err
		}
		if in.UsePoint > balance {
			return nil, BadRequestf("use_point %d exceeds point balance %d", in.UsePoint, balance)
		}
		if in.UsePoint > subtotal {
			return nil, BadRequestf("use_point %d exceeds order subtotal %d", in.UsePoint, subtotal)
		}
	}

	order := Order{
		ID:            uuid.NewString(),
		UserID:        in.UserID,
		ReceiverName:  in.ReceiverName,
		Address:       in.Address,
		Phone:         in.Phone,
		Subtotal:      subtotal,
		TotalQuantity: totalQty,
		UsePoint:      in.UsePoint,
	}
	payment := Payment{
		ID:      uuid.NewString(),
		OrderID: order.ID,
		Price:   subtotal - in.UsePoint,
		Status:  PaymentCompleted,
	}

	tctx, cancel := context.WithTimeout(ctx, c.txTimeout())
	defer cancel()

	var agg *OrderAggregate
	var soldOut []SoldOutKey
	err := c.DB.InTx(tctx, func(ctx context.Context) error {
		for _, ln := range lines {
			avail, err := c.Stock.ReadForUpdate(ctx, ln.ProductID, ln.SizeID)
			if err != nil {
				return err
			}
			if avail < ln.Quantity {
				return BadRequestf("insufficient stock for product %d size %d: requested %d, available %d",
					ln.ProductID, ln.SizeID, ln.Quantity, avail)
			}
		}
		if err := c.Orders.Insert(ctx, order, lines, payment); err != nil {
			return err
		}
		for _, ln := range lines {
			remaining, err := c.Stock.Decrement(ctx, ln.ProductID, ln.SizeID, ln.Quantity)
			if err != nil {
				return err
			}
			if remaining == 0 {
				soldOut = append(soldOut, SoldOutKey{ProductID: ln.ProductID, SizeID: ln.SizeID})
			}
		}
		if in.UsePoint > 0 {
			if err := c.Accounts.DecrementPoints(ctx, in.UserID, in.UsePoint); err != nil {
				return err
			}
		}
		if err := c.Accounts.AddTotalAmount(ctx, in.UserID, payment.Price); err != nil {
			return err
		}
		if err := c.Classifier.Recalculate(ctx, in.UserID); err != nil {
			return err
		}
		// Last statement in the transaction: the response reflects exactly
		// what commits.
		var err error
		agg, err = c.Orders.Aggregate(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.Events.OrderStatusChanged(order.ID, in.UserID, PaymentCompleted)
	c.Events.StockSoldOut(order.ID, soldOut)
	return agg, nil
}

// Cancel reverses a completed order: stock back, points refunded, lifetime
// spend reduced, grade recalculated, payment flipped to cancelled. It is
// one-way and non-idempotent; cancelling twice fails.
func (c *Coordinator) Cancel(ctx context.Context, userID int64, orderID string) (*OrderAggregate, error) {
	agg, err := c.Orders.Aggregate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if agg.Order.UserID != userID {
		return nil, Forbiddenf("order %s does not belong to user %d", orderID, userID)
	}
	if agg.Payment == nil {
		// Creation always writes a payment; missing means corrupted data.
		return nil, Internalf("order %s has no payment", orderID)
	}
	if !CanTransition(agg.Payment.Status, PaymentCancelled) {
		return nil, BadRequestf("payment for order %s is %s, not cancellable", orderID, agg.Payment.Status)
	}

	tctx, cancel := context.WithTimeout(ctx, c.txTimeout())
	defer cancel()

	var out *OrderAggregate
	err = c.DB.InTx(tctx, func(ctx context.Context) error {
		for _, ln := range agg.Lines {
			if err := c.Stock.Increment(ctx, ln.ProductID, ln.SizeID, ln.Quantity); err != nil {
				return err
			}
		}
		if agg.Order.UsePoint > 0 {
			if err := c.Accounts.IncrementPoints(ctx, agg.Order.UserID, agg.Order.UsePoint); err != nil {
				return err
			}
		}
		if err := c.Accounts.SubtractTotalAmount(ctx, agg.Order.UserID, agg.Payment.Price); err != nil {
			return err
		}
		if err := c.Classifier.Recalculate(ctx, agg.Order.UserID); err != nil {
			return err
		}
		if err := c.Orders.MarkPaymentCancelled(ctx, agg.Payment.ID); err != nil {
			return err
		}
		var err error
		out, err = c.Orders.Aggregate(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.Events.OrderStatusChanged(orderID, userID, PaymentCancelled)
	return out, nil
}
