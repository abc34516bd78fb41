package shop

import (
	"encoding/json"
	"time"
)

const (
	EventStockSoldOut       = "StockSoldOut"
	EventOrderStatusChanged = "OrderStatusChanged"
)

const (
	TopicStockSoldOut = "shop.stock.sold_out"
	TopicOrderStatus  = "shop.order.status"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type StockSoldOutPayload struct {
	OrderID     string  `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	SizeID      int64   `json:"size_id"`
	SellerID    int64   `json:"seller_id"`
	StoreName   string  `json:"store_name"`
	ProductName string  `json:"product_name"`
	SizeName    string  `json:"size_name"`
	CartUserIDs []int64 `json:"cart_user_ids,omitempty"`
}

type OrderStatusPayload struct {
	OrderID string        `json:"order_id"`
	UserID  int64         `json:"user_id"`
	Status  PaymentStatus `json:"status"`
}

// Partition key = order_id so all events of one order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
