package form

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// OrderUpdateRequest is the body of a live analytics update for one completed order.
type OrderUpdateRequest struct {
	OrderID   string          `json:"orderId"`
	Amount    decimal.Decimal `json:"amount"`
	Occasion  string          `json:"occasion"`
	OrderDate time.Time       `json:"orderDate"`
}

func (r *OrderUpdateRequest) Validate() error {
	return ValidateStruct(r,
		validation.Field(&r.OrderID, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.Amount, validation.By(nonNegative)),
		validation.Field(&r.Occasion, validation.Length(0, 500)),
		validation.Field(&r.OrderDate, validation.Required),
	)
}

func nonNegative(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return validation.NewError("validation_decimal", "must be a decimal")
	}
	if d.IsNegative() {
		return validation.NewError("validation_non_negative", "must not be negative")
	}
	return nil
}
