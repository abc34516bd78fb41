package shop

import "time"

// EffectivePrice resolves the unit price a buyer pays right now.
// The discount applies only when the rate is positive, both window bounds
// are set, and now falls inside [start, end] inclusive. Amounts are integer
// currency units, so the division floors the discounted price.
func EffectivePrice(info PriceInfo, now time.Time) int {
	if info.DiscountRate <= 0 || info.DiscountStart == nil || info.DiscountEnd == nil {
		return info.Price
	}
	if now.Before(*info.DiscountStart) || now.After(*info.DiscountEnd) {
		return info.Price
	}
	return info.Price * (100 - info.DiscountRate) / 100
}
