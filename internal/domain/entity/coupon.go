package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CouponType is how a coupon value is applied.
type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

// CouponStatus toggles whether a coupon may be redeemed.
type CouponStatus string

const (
	CouponActive   CouponStatus = "active"
	CouponInactive CouponStatus = "inactive"
)

// Coupon is a discount code. Codes are unique and upper case.
type Coupon struct {
	ID              string          `json:"id,omitempty"`
	Code            string          `json:"code"`
	Type            CouponType      `json:"type"`
	Value           decimal.Decimal `json:"value"`
	MinimumPurchase decimal.Decimal `json:"minimumPurchase"`
	StartDate       time.Time       `json:"startDate,omitzero"`
	ExpirationDate  time.Time       `json:"expirationDate,omitzero"`
	MaxUsage        int             `json:"maxUsage,omitempty"`
	MaxUsagePerUser int             `json:"maxUsagePerUser,omitempty"`
	Status          CouponStatus    `json:"status,omitempty"`
	CreatedBy       string          `json:"createdBy,omitempty"`
}

// NormalizeCouponCode trims and upper-cases a user-typed code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CouponsCreatedBy keeps the coupons created by userID.
func CouponsCreatedBy(coupons []Coupon, userID string) []Coupon {
	result := make([]Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.CreatedBy == userID {
			result = append(result, c)
		}
	}

	return result
}

// CouponValidation asks the backend whether Code can be stacked on the
// already accepted codes for the given purchase amount.
type CouponValidation struct {
	Code           string
	CouponCodes    []string
	PurchaseAmount decimal.Decimal
}
