package coupon

import "time"

// Coupon is a percent-off discount code managed by the admin.
type Coupon struct {
	ID              string
	Code            string
	DiscountPercent int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
