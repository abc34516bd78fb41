package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/fadhilr/go-shop-orders/internal/postgres"
)

// SoldOutInfo is the display data the out-of-stock notification carries.
type SoldOutInfo struct {
	ProductID   int64
	SizeID      int64
	SellerID    int64
	StoreID     int64
	StoreName   string
	ProductName string
	SizeName    string
}

// Catalog is the read-only product boundary the engine prices and
// notifies through. Catalog CRUD itself lives elsewhere.
type Catalog interface {
	PriceInfo(ctx context.Context, productID int64) (PriceInfo, error)
	SoldOutInfo(ctx context.Context, productID, sizeID int64) (SoldOutInfo, error)
}

type PGCatalog struct {
	DB *postgres.DB
}

func (c *PGCatalog) PriceInfo(ctx context.Context, productID int64) (PriceInfo, error) {
	var info PriceInfo
	err := c.DB.Q(ctx).QueryRow(ctx,
		`SELECT price, discount_rate, discount_start, discount_end FROM products WHERE id=$1`,
		productID).Scan(&info.Price, &info.DiscountRate, &info.DiscountStart, &info.DiscountEnd)
	if errors.Is(err, pgx.ErrNoRows) {
		return PriceInfo{}, NotFoundf("product %d not found", productID)
	}
	if err != nil {
		return PriceInfo{}, err
	}
	return info, nil
}

func (c *PGCatalog) SoldOutInfo(ctx context.Context, productID, sizeID int64) (SoldOutInfo, error) {
	info := SoldOutInfo{ProductID: productID, SizeID: sizeID}
	err := c.DB.Q(ctx).QueryRow(ctx, `
		SELECT p.name, st.id, st.seller_id, st.name, s.name
		FROM products p
		JOIN stores st ON st.id = p.store_id
		JOIN sizes s ON s.id = $2
		WHERE p.id = $1`,
		productID, sizeID).Scan(&info.ProductName, &info.StoreID, &info.SellerID, &info.StoreName, &info.SizeName)
	if errors.Is(err, pgx.ErrNoRows) {
		return SoldOutInfo{}, NotFoundf("product %d or size %d not found", productID, sizeID)
	}
	if err != nil {
		return SoldOutInfo{}, err
	}
	return info, nil
}
