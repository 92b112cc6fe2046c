// Package ordering holds placed orders: the priced snapshot of a cart at
// checkout together with delivery details and status.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart has no orderable items")
	ErrInvalidDetails = errors.New("invalid delivery details")
	// ErrDuplicateNumber reports an order number already taken by another
	// order.
	ErrDuplicateNumber = errors.New("order number already in use")
)

// EstimatedDelivery is quoted on every confirmed order.
const EstimatedDelivery = "30-45 minutes"

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
)

// ParsePaymentMethod accepts the method names shown at checkout. An empty
// value selects card; "wallet" is accepted for UPI.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "card":
		return PaymentCard, nil
	case "cash":
		return PaymentCash, nil
	case "upi", "wallet":
		return PaymentUPI, nil
	}
	return "", fmt.Errorf("%w: unsupported payment method %q", ErrInvalidDetails, s)
}

type DeliveryDetails struct {
	FullName string
	Phone    string
	Email    string
	Address  string
}

// Normalize trims every field.
func (d DeliveryDetails) Normalize() DeliveryDetails {
	return DeliveryDetails{
		FullName: strings.TrimSpace(d.FullName),
		Phone:    strings.TrimSpace(d.Phone),
		Email:    strings.TrimSpace(d.Email),
		Address:  strings.TrimSpace(d.Address),
	}
}

// Validate requires every field and a parseable email address.
func (d DeliveryDetails) Validate() error {
	d = d.Normalize()
	var missing []string
	if d.FullName == "" {
		missing = append(missing, "full_name")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.Email == "" {
		missing = append(missing, "email")
	}
	if d.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDetails, strings.Join(missing, ", "))
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidDetails, d.Email)
	}
	return nil
}

// Line is a cart line frozen at placement time.
type Line struct {
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID     string
	Number string

	SessionID string
	Lines     []Line

	Zone        string
	PromoCode   string
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal

	Details DeliveryDetails
	Payment PaymentMethod
	Status  Status

	IdempotencyKey string
	RequestID      string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemCount sums line quantities.
func (o *Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

const orderNumberLen = 9

// NewOrderNumber returns the short customer-facing reference: nine
// uppercase base-36 characters drawn from a random uuid.
func NewOrderNumber() string {
	id := uuid.New()
	n := new(big.Int).SetBytes(id[:])
	s := strings.ToUpper(n.Text(36))
	if len(s) < orderNumberLen {
		s = strings.Repeat("0", orderNumberLen-len(s)) + s
	}
	return s[len(s)-orderNumberLen:]
}

// Repository persists orders.
type Repository interface {
	Save(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
