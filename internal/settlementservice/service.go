// Package settlementservice computes settlement and dashboard views of a group.
//
// Views are computed fresh from the stored records on every call. The
// calculator itself is stateless, so a view can never lag behind a write the
// caller just made.
package settlementservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-divvy/divvy/internal/calculator"
	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/errorspkg"
)

// ExpenseRepo provides the expense reads needed to settle a group.
//
//go:generate mockgen -source service.go -destination service_mock.go -package settlementservice
type ExpenseRepo interface {
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Expense, error)
}

// PaymentRepo provides the payment reads needed to settle a group.
//
//go:generate mockgen -source service.go -destination service_mock.go -package settlementservice
type PaymentRepo interface {
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Payment, error)
}

// GroupService provides the member-only group lookups used to authorize
// every settlement operation.
//
//go:generate mockgen -source service.go -destination service_mock.go -package settlementservice
type GroupService interface {
	Get(ctx context.Context, callerEmail string, groupID int64) (domain.Group, error)
}

// Service facilitates settlement service layer logic.
type Service struct {
	expenses ExpenseRepo
	payments PaymentRepo
	groups   GroupService
}

// New returns settlement service struct to compute settlement views.
func New(er ExpenseRepo, pr PaymentRepo, gs GroupService) *Service {
	return &Service{
		expenses: er,
		payments: pr,
		groups:   gs,
	}
}

// Settle returns the group's member balances and the suggested transfers
// that settle them.
func (s *Service) Settle(ctx context.Context, callerEmail string, groupID int64) (domain.Settlement, error) {
	l := zerolog.Ctx(ctx)

	group, err := s.groups.Get(ctx, callerEmail, groupID)
	if err != nil {
		return domain.Settlement{}, err
	}

	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return domain.Settlement{}, err
	}

	payments, err := s.payments.ListByGroup(ctx, groupID)
	if err != nil {
		return domain.Settlement{}, err
	}

	balances, err := calculator.Balances(group.Members, expenses, payments)
	if err != nil {
		l.Error().Err(err).Int64("group_id", groupID).Send()
		return domain.Settlement{}, errorspkg.ErrInternal
	}

	transfers, err := calculator.Simplify(balances)
	if err != nil {
		l.Error().Err(err).Int64("group_id", groupID).Send()
		return domain.Settlement{}, errorspkg.ErrInternal
	}

	names := memberNames(group.Members)

	for i := range balances {
		balances[i].Name = names[balances[i].MemberID]
	}

	for i := range transfers {
		transfers[i].FromName = names[transfers[i].From]
		transfers[i].ToName = names[transfers[i].To]
	}

	return domain.Settlement{
		GroupID:   groupID,
		Balances:  balances,
		Transfers: transfers,
	}, nil
}

// Dashboard returns the group's aggregate spending summary for the caller.
func (s *Service) Dashboard(ctx context.Context, callerEmail string, groupID int64) (domain.DashboardSummary, error) {
	l := zerolog.Ctx(ctx)

	group, err := s.groups.Get(ctx, callerEmail, groupID)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	caller, ok := domain.MemberByEmail(group.Members, callerEmail)
	if !ok {
		// The group lookup already proved membership, so a missing entry
		// means the member list is inconsistent.
		l.Error().Str("email", callerEmail).Int64("group_id", groupID).Msg("caller missing from member list")
		return domain.DashboardSummary{}, errorspkg.ErrInternal
	}

	expenses, err := s.expenses.ListByGroup(ctx, groupID)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	payments, err := s.payments.ListByGroup(ctx, groupID)
	if err != nil {
		return domain.DashboardSummary{}, err
	}

	summary, err := calculator.Summarize(group.Members, expenses, payments, caller.ID)
	if err != nil {
		l.Error().Err(err).Int64("group_id", groupID).Send()
		return domain.DashboardSummary{}, errorspkg.ErrInternal
	}

	summary.GroupID = groupID

	names := memberNames(group.Members)

	for i := range summary.Balances {
		summary.Balances[i].Name = names[summary.Balances[i].MemberID]
	}

	for i := range summary.Transfers {
		summary.Transfers[i].FromName = names[summary.Transfers[i].From]
		summary.Transfers[i].ToName = names[summary.Transfers[i].To]
	}

	for i := range summary.MemberPaid {
		summary.MemberPaid[i].Name = names[summary.MemberPaid[i].MemberID]
	}

	return summary, nil
}

// memberNames indexes display names by member id. Ids outside the map keep
// an empty name, which the JSON encoding then omits.
func memberNames(members []domain.Member) map[int64]string {
	names := make(map[int64]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	return names
}
