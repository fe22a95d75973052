// Package calculator computes group settlement figures: expense splits,
// member balances, simplified repayment plans and dashboard summaries.
//
// Every function is pure and works on an in-memory snapshot of group
// records. Nothing is cached between calls, so results always reflect the
// records the caller just read.
package calculator

import (
	"errors"
	"sort"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

// ShareTolerance is how far the sum of custom shares may drift from the
// expense amount before the split is rejected.
const ShareTolerance moneypkg.Money = 1

var (
	// ErrShareSum indicates stored shares that no longer add up to their expense amount.
	ErrShareSum = errors.New("stored shares do not sum to the expense amount")
	// ErrUnbalanced indicates group balances that do not sum to zero.
	ErrUnbalanced = errors.New("group balances do not sum to zero")
	// ErrResidual indicates balances left unsettled by the transfer plan.
	ErrResidual = errors.New("residual balance after simplification")
)

// ValidateSplit checks an expense against the group membership and returns
// the final per member shares to store on the record.
//
// Equal splits divide the amount in exact minor units, handing the remainder
// out one unit at a time in ascending member id order. Custom shares must
// sum to the amount within ShareTolerance; the difference, if any, is folded
// into the largest share so stored shares always sum exactly. Participants
// with a zero share are dropped.
func ValidateSplit(e domain.Expense, members []domain.Member, maxAmount moneypkg.Money) (map[int64]moneypkg.Money, error) {
	if e.Amount <= 0 || e.Amount > maxAmount {
		return nil, domain.ErrInvalidAmount
	}

	participants := uniqueIDs(e.Participants)
	if len(participants) == 0 {
		return nil, domain.ErrNoParticipants
	}

	memberSet := make(map[int64]bool, len(members))
	for _, m := range members {
		memberSet[m.ID] = true
	}

	if !memberSet[e.PaidBy] {
		return nil, domain.ErrUnknownParticipant
	}

	for _, id := range participants {
		if !memberSet[id] {
			return nil, domain.ErrUnknownParticipant
		}
	}

	switch e.SplitType {
	case domain.SplitEqual:
		return equalShares(e.Amount, participants), nil
	case domain.SplitCustom:
		return customShares(e.Amount, participants, e.Shares)
	}

	return nil, domain.ErrInvalidSplitType
}

// Shares returns the per member shares of a stored expense.
//
// Equal splits are derived from the amount and participants; custom splits
// return the stored shares after checking they still sum to the amount
// exactly. A drifted sum means the record is corrupt, not that the caller
// made a mistake.
func Shares(e domain.Expense) (map[int64]moneypkg.Money, error) {
	switch e.SplitType {
	case domain.SplitEqual:
		participants := uniqueIDs(e.Participants)
		if len(participants) == 0 {
			return nil, domain.ErrNoParticipants
		}

		return equalShares(e.Amount, participants), nil
	case domain.SplitCustom:
		var sum moneypkg.Money
		for _, share := range e.Shares {
			sum += share
		}

		if sum != e.Amount {
			return nil, ErrShareSum
		}

		return e.Shares, nil
	}

	return nil, domain.ErrInvalidSplitType
}

func equalShares(amount moneypkg.Money, participants []int64) map[int64]moneypkg.Money {
	n := moneypkg.Money(len(participants))
	base := amount / n
	remainder := amount % n

	shares := make(map[int64]moneypkg.Money, len(participants))

	// participants are sorted ascending, so the extra minor units always
	// land on the lowest member ids.
	for i, id := range participants {
		share := base
		if moneypkg.Money(i) < remainder {
			share++
		}

		shares[id] = share
	}

	return shares
}

func customShares(amount moneypkg.Money, participants []int64, raw map[int64]moneypkg.Money) (map[int64]moneypkg.Money, error) {
	participantSet := make(map[int64]bool, len(participants))
	for _, id := range participants {
		participantSet[id] = true
	}

	for id := range raw {
		if !participantSet[id] {
			return nil, domain.ErrUnknownParticipant
		}
	}

	shares := make(map[int64]moneypkg.Money, len(raw))

	var sum moneypkg.Money

	// A missing share counts as zero and drops the participant.
	for _, id := range participants {
		share := raw[id]

		if share < 0 {
			return nil, domain.ErrInvalidAmount
		}

		if share == 0 {
			continue
		}

		shares[id] = share
		sum += share
	}

	if len(shares) == 0 {
		return nil, domain.ErrNoParticipants
	}

	diff := amount - sum
	if diff.Abs() > ShareTolerance {
		return nil, &domain.ShareMismatchError{Expected: amount, Actual: sum}
	}

	if diff != 0 {
		id := largestShareID(shares)

		shares[id] += diff
		if shares[id] == 0 {
			delete(shares, id)
		}
	}

	return shares, nil
}

// largestShareID returns the participant holding the largest share,
// breaking ties by the lowest member id.
func largestShareID(shares map[int64]moneypkg.Money) int64 {
	var (
		best      int64
		bestShare moneypkg.Money = -1
	)

	for id, share := range shares {
		if share > bestShare || (share == bestShare && id < best) {
			best = id
			bestShare = share
		}
	}

	return best
}

// uniqueIDs returns the ids sorted ascending with duplicates removed.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if seen[id] {
			continue
		}

		seen[id] = true

		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}
