package domain

import (
	"errors"
	"time"

	"github.com/go-divvy/divvy/pkg/moneypkg"
)

var (
	// ErrPaymentNotFound indicates that the payment is not found.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrSelfPayment indicates a payment from a member to themselves.
	ErrSelfPayment = errors.New("cannot record a payment to yourself")
)

// Payment holds a settling payment between two group members.
type Payment struct {
	ID        int64          `json:"id"`
	GroupID   int64          `json:"group_id"`
	From      int64          `json:"from"`
	FromName  string         `json:"from_name,omitempty"`
	To        int64          `json:"to"`
	ToName    string         `json:"to_name,omitempty"`
	Amount    moneypkg.Money `json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
}

// CreatePaymentParams is the input data to record a payment.
type CreatePaymentParams struct {
	GroupID int64
	From    int64
	To      int64
	Amount  moneypkg.Money
}
