package calculator

import (
	"fmt"
	"sort"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

// Balances folds a group's expense and payment records into per member net
// positions, sorted by ascending member id.
//
// Every group member starts at zero. Each expense credits the payer with the
// full amount and debits every participant by its share, so a payer who also
// participates nets amount minus their own share. Each payment credits the
// sender and debits the recipient. Record order does not matter; the fold is
// pure summation.
//
// The returned positions sum to exactly zero. Anything else means a stored
// record is corrupt and the error is reported rather than papered over.
func Balances(members []domain.Member, expenses []domain.Expense, payments []domain.Payment) ([]domain.Balance, error) {
	net := make(map[int64]moneypkg.Money, len(members))
	for _, m := range members {
		net[m.ID] = 0
	}

	// Ids referenced by records but missing from the member list still get
	// an entry, otherwise their counterpart would tilt the total.
	touch := func(id int64) {
		if _, ok := net[id]; !ok {
			net[id] = 0
		}
	}

	for i := range expenses {
		e := expenses[i]

		shares, err := Shares(e)
		if err != nil {
			return nil, fmt.Errorf("expense %d: %w", e.ID, err)
		}

		touch(e.PaidBy)
		net[e.PaidBy] += e.Amount

		for id, share := range shares {
			touch(id)
			net[id] -= share
		}
	}

	for _, p := range payments {
		touch(p.From)
		touch(p.To)

		net[p.From] += p.Amount
		net[p.To] -= p.Amount
	}

	balances := make([]domain.Balance, 0, len(net))

	var sum moneypkg.Money

	for id, amount := range net {
		balances = append(balances, domain.Balance{MemberID: id, Amount: amount})
		sum += amount
	}

	if sum != 0 {
		return nil, ErrUnbalanced
	}

	sort.Slice(balances, func(i, j int) bool { return balances[i].MemberID < balances[j].MemberID })

	return balances, nil
}
