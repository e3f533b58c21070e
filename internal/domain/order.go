package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

type ShippingAddress struct {
	Details string `json:"details" validate:"required,min=5,max=200"`
	Phone   string `json:"phone" validate:"required,shippingphone"`
	City    string `json:"city" validate:"required,min=2,max=50"`
}

type Order struct {
	ID                string          `json:"_id"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	TaxPrice          decimal.Decimal `json:"taxPrice"`
	ShippingPrice     decimal.Decimal `json:"shippingPrice"`
	TotalOrderPrice   decimal.Decimal `json:"totalOrderPrice"`
	PaymentMethodType PaymentMethod   `json:"paymentMethodType"`
	IsPaid            bool            `json:"isPaid"`
	IsDelivered       bool            `json:"isDelivered"`
	CartItems         []CartItem      `json:"cartItems"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// CheckoutSession is the hosted payment page created for online payment.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
