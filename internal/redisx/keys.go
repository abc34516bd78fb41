package redisx

import "time"

const (
	// Users holding a (product,size) in their cart: cart:item:{product_id}:{size_id} -> set of user ids.
	// Maintained by the cart service; read here for the sold-out fan-out.
	KeyCartItem = "cart:item:%d:%d"

	// Cache of an order's payment status: order_status:{order_id} -> {"status": "..."}
	KeyOrderStatus = "order_status:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
)
