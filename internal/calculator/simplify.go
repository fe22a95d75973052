package calculator

import (
	"container/heap"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

type party struct {
	id     int64
	amount moneypkg.Money
}

// partyHeap orders parties by the largest amount first, breaking amount ties
// by the lowest member id so plans come out the same every run.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].amount != h[j].amount {
		return h[i].amount > h[j].amount
	}

	return h[i].id < h[j].id
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]

	return item
}

// Simplify turns net positions into the transfer plan that settles them,
// repeatedly matching the largest debtor against the largest creditor.
//
// The plan never exceeds n-1 transfers for n non-zero positions, every
// transfer amount is positive, and applying the plan zeroes the input
// balances exactly. The greedy matching is not guaranteed globally minimal
// for adversarial inputs; that trade-off is accepted.
//
// Input balances must sum to zero. If they do not, one side of the match
// runs dry early and the leftover is reported as ErrResidual instead of
// being dropped.
func Simplify(balances []domain.Balance) ([]domain.Transfer, error) {
	debtors := &partyHeap{}
	creditors := &partyHeap{}

	for _, b := range balances {
		switch {
		case b.Amount < 0:
			*debtors = append(*debtors, party{id: b.MemberID, amount: -b.Amount})
		case b.Amount > 0:
			*creditors = append(*creditors, party{id: b.MemberID, amount: b.Amount})
		}
	}

	heap.Init(debtors)
	heap.Init(creditors)

	var transfers []domain.Transfer

	for debtors.Len() > 0 && creditors.Len() > 0 {
		debtor := heap.Pop(debtors).(party)
		creditor := heap.Pop(creditors).(party)

		amount := debtor.amount
		if creditor.amount < amount {
			amount = creditor.amount
		}

		transfers = append(transfers, domain.Transfer{
			From:   debtor.id,
			To:     creditor.id,
			Amount: amount,
		})

		debtor.amount -= amount
		creditor.amount -= amount

		if debtor.amount > 0 {
			heap.Push(debtors, debtor)
		}

		if creditor.amount > 0 {
			heap.Push(creditors, creditor)
		}
	}

	if debtors.Len() > 0 || creditors.Len() > 0 {
		return nil, ErrResidual
	}

	return transfers, nil
}
