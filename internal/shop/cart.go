package shop

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/fadhilr/go-shop-orders/internal/redisx"
)

// CartLookup answers which users currently hold a (product,size) in a cart.
// Used only by the sold-out fan-out.
type CartLookup interface {
	Holders(ctx context.Context, productID, sizeID int64) ([]int64, error)
}

// RedisCart reads the cart-holdings set maintained by the cart service.
type RedisCart struct {
	RDB *redis.Client
}

func (c *RedisCart) Holders(ctx context.Context, productID, sizeID int64) ([]int64, error) {
	key := fmt.Sprintf(redisx.KeyCartItem, productID, sizeID)
	members, err := c.RDB.SMembers(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}
