package domain

import "github.com/go-divvy/divvy/pkg/moneypkg"

// Balance is the net position of a group member.
// Positive amounts are owed to the member, negative amounts are owed by the member.
type Balance struct {
	MemberID int64          `json:"member_id"`
	Name     string         `json:"name,omitempty"`
	Amount   moneypkg.Money `json:"amount"`
}

// Transfer is one suggested repayment between two members.
type Transfer struct {
	From     int64          `json:"from"`
	FromName string         `json:"from_name,omitempty"`
	To       int64          `json:"to"`
	ToName   string         `json:"to_name,omitempty"`
	Amount   moneypkg.Money `json:"amount"`
}

// Settlement holds the current balances of a group and the
// suggested transfers that settle them.
type Settlement struct {
	GroupID   int64      `json:"group_id"`
	Balances  []Balance  `json:"balances"`
	Transfers []Transfer `json:"transfers"`
}

// MemberAmount pairs a member with a money amount.
type MemberAmount struct {
	MemberID int64          `json:"member_id"`
	Name     string         `json:"name,omitempty"`
	Amount   moneypkg.Money `json:"amount"`
}

// DashboardSummary holds aggregate spending figures for a group.
//
// CategoryTotals only covers expenses with a recognized category.
// Uncategorized expenses still count towards TotalSpent.
type DashboardSummary struct {
	GroupID        int64                       `json:"group_id"`
	TotalSpent     moneypkg.Money              `json:"total_spent"`
	ExpenseCount   int                         `json:"expense_count"`
	YourBalance    moneypkg.Money              `json:"your_balance"`
	MemberPaid     []MemberAmount              `json:"member_paid"`
	CategoryTotals map[Category]moneypkg.Money `json:"category_totals"`
	Balances       []Balance                   `json:"balances"`
	Transfers      []Transfer                  `json:"suggested_transfers"`
	RecentExpenses []Expense                   `json:"recent_expenses"`
}
