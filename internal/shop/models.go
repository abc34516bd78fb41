package shop

import "time"

type Order struct {
	ID            string    `json:"id"`
	UserID        int64     `json:"user_id"`
	ReceiverName  string    `json:"receiver_name"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone"`
	Subtotal      int       `json:"subtotal"`
	TotalQuantity int       `json:"total_quantity"`
	UsePoint      int       `json:"use_point"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderLine carries the unit price at time of purchase; it is frozen at
// creation and never recomputed from the catalog.
type OrderLine struct {
	ID        int64  `json:"id"`
	OrderID   string `json:"order_id"`
	ProductID int64  `json:"product_id"`
	SizeID    int64  `json:"size_id"`
	Price     int    `json:"price"`
	Quantity  int    `json:"quantity"`
}

type Payment struct {
	ID        string        `json:"id"`
	OrderID   string        `json:"order_id"`
	Price     int           `json:"price"`
	Status    PaymentStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// OrderAggregate is the full persisted shape of one order. Payment is the
// most recent row for the order; nil means a data-integrity fault.
type OrderAggregate struct {
	Order   Order       `json:"order"`
	Lines   []OrderLine `json:"lines"`
	Payment *Payment    `json:"payment"`
}

// Account is the ledger view of a user row.
type Account struct {
	UserID      int64
	Points      int
	TotalAmount int
	GradeID     int64
}

type Grade struct {
	ID        int64
	Name      string
	MinAmount int
}

// PriceInfo is the catalog's pricing snapshot for one product.
// Discount bounds are nil when no window is configured.
type PriceInfo struct {
	Price         int
	DiscountRate  int
	DiscountStart *time.Time
	DiscountEnd   *time.Time
}

type OrderSummary struct {
	Order
	PaymentPrice  int           `json:"payment_price"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type OrderPage struct {
	Data []OrderSummary `json:"data"`
	Meta PageMeta       `json:"meta"`
}

func NewPageMeta(total, page, limit int) PageMeta {
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: pages}
}
