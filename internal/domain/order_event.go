package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated  = "order.created"
	TopicOrderAccepted = "order.accepted"
	TopicOrderRejected = "order.rejected"
)

type OrderCreatedEvent struct {
	OrderID     string          `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type OrderAcceptedEvent struct {
	OrderID    string    `json:"orderId"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

type OrderRejectedEvent struct {
	OrderID    string    `json:"orderId"`
	Reason     string    `json:"reason"`
	RejectedAt time.Time `json:"rejectedAt"`
}
