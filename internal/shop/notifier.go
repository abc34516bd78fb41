package shop

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"

	kafkax "github.com/fadhilr/go-shop-orders/internal/kafka"
)

// SoldOutKey identifies a stock row that hit zero in a committed order.
type SoldOutKey struct {
	ProductID int64
	SizeID    int64
}

// EventSink receives post-commit side effects. Implementations must never
// fail the caller: the order is already durable by the time these fire.
type EventSink interface {
	OrderStatusChanged(orderID string, userID int64, status PaymentStatus)
	StockSoldOut(orderID string, items []SoldOutKey)
}

// Notifier is the Kafka-backed EventSink. Events are handed to async
// producers (buffered inbox channels), and the sold-out fan-out gathers its
// display data and cart holders in a background goroutine with its own
// deadline. Every failure is logged and swallowed.
type Notifier struct {
	Catalog Catalog
	Cart    CartLookup
	Status  *kafkax.Producer // shop.order.status
	SoldOut *kafkax.Producer // shop.stock.sold_out
	Service string
	Timeout time.Duration
}

func (n *Notifier) OrderStatusChanged(orderID string, userID int64, status PaymentStatus) {
	ev := n.envelope(EventOrderStatusChanged, orderID)
	ev.Payload = kafkax.MustMarshal(OrderStatusPayload{OrderID: orderID, UserID: userID, Status: status})
	n.Status.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(EventOrderStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (n *Notifier) StockSoldOut(orderID string, items []SoldOutKey) {
	if len(items) == 0 {
		return
	}
	timeout := n.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, it := range items {
			it := it
			g.Go(func() error {
				info, err := n.Catalog.SoldOutInfo(ctx, it.ProductID, it.SizeID)
				if err != nil {
					log.Printf("sold-out fan-out: catalog lookup product=%d size=%d: %v", it.ProductID, it.SizeID, err)
					return nil
				}
				holders, err := n.Cart.Holders(ctx, it.ProductID, it.SizeID)
				if err != nil {
					// Still notify the seller even when the cart lookup fails.
					log.Printf("sold-out fan-out: cart lookup product=%d size=%d: %v", it.ProductID, it.SizeID, err)
					holders = nil
				}
				ev := n.envelope(EventStockSoldOut, orderID)
				ev.Payload = kafkax.MustMarshal(StockSoldOutPayload{
					OrderID:     orderID,
					ProductID:   it.ProductID,
					SizeID:      it.SizeID,
					SellerID:    info.SellerID,
					StoreName:   info.StoreName,
					ProductName: info.ProductName,
					SizeName:    info.SizeName,
					CartUserIDs: holders,
				})
				n.SoldOut.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
					kafkago.Header{Key: "x-event-type", Value: []byte(EventStockSoldOut)},
					kafkago.Header{Key: "x-event-version", Value: []byte("1")},
				)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func (n *Notifier) envelope(eventType, orderID string) Envelope {
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      n.Service,
		CorrelationID: orderID,
	}
}
