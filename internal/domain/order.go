package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusProcessed OrderStatus = "Processed"
	StatusAccepted  OrderStatus = "Accepted"
	StatusRejected  OrderStatus = "Rejected"
)

const DefaultRejectReason = "rejected by administrator"

// CustomerInfo is the contact block captured with every order.
type CustomerInfo struct {
	FullName    string `json:"fullName" gorm:"size:100;not null" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" gorm:"size:20;not null" validate:"required,e164"`
	Email       string `json:"email,omitempty" gorm:"size:254" validate:"omitempty,email"`
	Address     string `json:"address" gorm:"size:500;not null" validate:"required,max=500"`
	Notes       string `json:"notes,omitempty" gorm:"type:text" validate:"omitempty,max=1000"`
}

type Order struct {
	ID           string          `json:"id" gorm:"primaryKey;size:36"`
	CustomerInfo `gorm:"embedded"`
	TotalAmount  decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	Status       OrderStatus     `json:"status" gorm:"type:enum('Processed','Accepted','Rejected');default:'Processed';index"`
	Items        []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `json:"createdAt" gorm:"autoCreateTime"`
	AcceptedAt   *time.Time      `json:"acceptedAt,omitempty"`
	RejectedAt   *time.Time      `json:"rejectedAt,omitempty"`
	RejectReason *string         `json:"rejectedReason,omitempty" gorm:"size:500"`
}

// OrderItem is a line of an order. The product reference is by id only;
// UnitPrice is the effective (discounted) price snapshotted at creation time
// and never re-read from the catalog afterwards.
type OrderItem struct {
	ID          uint64          `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID     string          `json:"-" gorm:"size:36;not null;index"`
	ProductID   uint64          `json:"productId" gorm:"not null"`
	ProductName string          `json:"productName,omitempty" gorm:"size:200"`
	Quantity    int64           `json:"quantity" gorm:"not null"`
	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"type:decimal(16,6);not null"`
}

// LineTotal is quantity × unit price, rounded once for the whole line with
// banker's rounding to currency precision.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(i.Quantity)).RoundBank(2)
}

// RecomputeTotal sums the line totals. Persisted TotalAmount must always
// equal this sum.
func (o *Order) RecomputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// IsTerminal reports whether the order has left Processed. Accepted and
// Rejected admit no further transitions.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusAccepted || o.Status == StatusRejected
}

// Accept moves Processed → Accepted. It only mutates the order; persistence
// and stock commits are the lifecycle manager's job.
func (o *Order) Accept(now time.Time) error {
	if o.Status != StatusProcessed {
		return &InvalidStateTransitionError{OrderID: o.ID, Current: o.Status, Attempted: StatusAccepted}
	}
	o.Status = StatusAccepted
	o.AcceptedAt = &now
	return nil
}

// Reject moves Processed → Rejected, recording the reason.
func (o *Order) Reject(now time.Time, reason string) error {
	if o.Status != StatusProcessed {
		return &InvalidStateTransitionError{OrderID: o.ID, Current: o.Status, Attempted: StatusRejected}
	}
	if reason == "" {
		reason = DefaultRejectReason
	}
	o.Status = StatusRejected
	o.RejectedAt = &now
	o.RejectReason = &reason
	return nil
}
