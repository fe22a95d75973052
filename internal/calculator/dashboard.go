package calculator

import (
	"sort"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

const recentExpenseCount = 5

// Summarize builds the dashboard view of a group for one member.
//
// Totals are gross spend: full expense amounts grouped by payer and by
// category, independent of how the amounts were split. Payments do not count
// as spending. Expenses without a recognized category stay out of
// CategoryTotals; they still count towards TotalSpent.
func Summarize(members []domain.Member, expenses []domain.Expense, payments []domain.Payment, callerID int64) (domain.DashboardSummary, error) {
	var summary domain.DashboardSummary

	balances, err := Balances(members, expenses, payments)
	if err != nil {
		return summary, err
	}

	transfers, err := Simplify(balances)
	if err != nil {
		return summary, err
	}

	paid := make(map[int64]moneypkg.Money, len(members))
	for _, m := range members {
		paid[m.ID] = 0
	}

	categories := make(map[domain.Category]moneypkg.Money)

	var total moneypkg.Money

	for i := range expenses {
		e := expenses[i]

		total += e.Amount
		paid[e.PaidBy] += e.Amount

		if domain.IsValidCategory(e.Category) {
			categories[e.Category] += e.Amount
		}
	}

	memberPaid := make([]domain.MemberAmount, 0, len(paid))
	for id, amount := range paid {
		memberPaid = append(memberPaid, domain.MemberAmount{MemberID: id, Amount: amount})
	}

	sort.Slice(memberPaid, func(i, j int) bool { return memberPaid[i].MemberID < memberPaid[j].MemberID })

	var yourBalance moneypkg.Money

	for _, b := range balances {
		if b.MemberID == callerID {
			yourBalance = b.Amount
			break
		}
	}

	recent := make([]domain.Expense, len(expenses))
	copy(recent, expenses)

	sort.SliceStable(recent, func(i, j int) bool { return recent[i].CreatedAt.After(recent[j].CreatedAt) })

	if len(recent) > recentExpenseCount {
		recent = recent[:recentExpenseCount]
	}

	summary = domain.DashboardSummary{
		TotalSpent:     total,
		ExpenseCount:   len(expenses),
		YourBalance:    yourBalance,
		CategoryTotals: categories,
		MemberPaid:     memberPaid,
		Balances:       balances,
		Transfers:      transfers,
		RecentExpenses: recent,
	}

	return summary, nil
}
