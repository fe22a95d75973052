package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-divvy/divvy/pkg/moneypkg"
)

var (
	// ErrExpenseNotFound indicates that the expense is not found.
	ErrExpenseNotFound = errors.New("expense not found")
	// ErrInvalidAmount indicates a non-positive or too large amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrNoParticipants indicates an expense without participants.
	ErrNoParticipants = errors.New("expense requires at least one participant")
	// ErrUnknownParticipant indicates a participant outside the group.
	ErrUnknownParticipant = errors.New("participant is not a group member")
	// ErrInvalidCategory indicates an unsupported expense category.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrInvalidSplitType indicates an unsupported split type.
	ErrInvalidSplitType = errors.New("invalid split type")
)

// ShareMismatchError indicates custom shares that do not add up to the expense amount.
type ShareMismatchError struct {
	Expected moneypkg.Money
	Actual   moneypkg.Money
}

func (e *ShareMismatchError) Error() string {
	return fmt.Sprintf("shares sum to %s but the expense amount is %s", e.Actual, e.Expected)
}

// SplitType tells how an expense amount is divided between participants.
type SplitType string

// Supported split types.
const (
	SplitEqual  SplitType = "equal"
	SplitCustom SplitType = "custom"
)

// Category labels an expense for reporting.
type Category string

// Supported expense categories.
const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryHousing       Category = "housing"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryShopping      Category = "shopping"
	CategoryHealth        Category = "health"
	CategoryTravel        Category = "travel"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

// Categories holds all supported expense categories.
var Categories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryEntertainment,
	CategoryUtilities,
	CategoryShopping,
	CategoryHealth,
	CategoryTravel,
	CategoryEducation,
	CategoryOther,
}

// IsValidCategory returns true if the category is supported.
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}

	return false
}

// Expense holds a shared group expense.
//
// Shares are set for custom splits only. Equal splits derive
// the per participant shares from the amount.
type Expense struct {
	ID           int64                    `json:"id"`
	GroupID      int64                    `json:"group_id"`
	Description  string                   `json:"description"`
	Category     Category                 `json:"category,omitempty"`
	Amount       moneypkg.Money           `json:"amount"`
	PaidBy       int64                    `json:"paid_by"`
	PaidByName   string                   `json:"paid_by_name,omitempty"`
	SplitType    SplitType                `json:"split_type"`
	Participants []int64                  `json:"participants"`
	Shares       map[int64]moneypkg.Money `json:"shares,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

// CreateExpenseParams is the input data to create an expense.
type CreateExpenseParams struct {
	GroupID      int64
	Description  string
	Category     Category
	Amount       moneypkg.Money
	PaidBy       int64
	SplitType    SplitType
	Participants []int64
	Shares       map[int64]moneypkg.Money
}

// UpdateExpenseParams is the input data to partially update an expense.
// Nil fields keep their stored values.
type UpdateExpenseParams struct {
	ID           int64
	Description  *string
	Category     *Category
	Amount       *moneypkg.Money
	PaidBy       *int64
	SplitType    *SplitType
	Participants []int64
	Shares       map[int64]moneypkg.Money
}

// ListExpensesParams is the input data to list group expenses.
type ListExpensesParams struct {
	GroupID  int64
	Search   string
	Category Category
	Limit    int32
	Offset   int32
}
