// Package paymentservice manages business logic layer of settling payments.
package paymentservice

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

// Repo provides data access layer interface needed by payment service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package paymentservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Payment, error)
}

// GroupService provides the member-only group lookups used to authorize
// every payment operation.
//
//go:generate mockgen -source service.go -destination service_mock.go -package paymentservice
type GroupService interface {
	Get(ctx context.Context, callerEmail string, groupID int64) (domain.Group, error)
}

// Service facilitates payment service layer logic.
type Service struct {
	repo   Repo
	groups GroupService
}

// New returns payment service struct to manage payment business logic.
func New(pr Repo, gs GroupService) *Service {
	return &Service{
		repo:   pr,
		groups: gs,
	}
}

// Create records a settling payment from the caller to another group member.
func (s *Service) Create(ctx context.Context, callerEmail string, groupID, to int64, amount moneypkg.Money) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	if amount <= 0 {
		return domain.Payment{}, domain.ErrInvalidAmount
	}

	group, err := s.groups.Get(ctx, callerEmail, groupID)
	if err != nil {
		return domain.Payment{}, err
	}

	caller, ok := domain.MemberByEmail(group.Members, callerEmail)
	if !ok {
		// The group lookup already proved membership, so a missing entry
		// means the member list is inconsistent.
		l.Error().Str("email", callerEmail).Int64("group_id", groupID).Msg("caller missing from member list")
		return domain.Payment{}, errorspkg.ErrInternal
	}

	if to == caller.ID {
		return domain.Payment{}, domain.ErrSelfPayment
	}

	if !domain.IsMember(group.Members, to) {
		return domain.Payment{}, domain.ErrUnknownParticipant
	}

	arg := domain.CreatePaymentParams{
		GroupID: groupID,
		From:    caller.ID,
		To:      to,
		Amount:  amount,
	}

	payment, err := s.repo.Create(ctx, arg)
	if err != nil {
		return payment, err
	}

	return payment, nil
}

// List returns the group's payments, newest first.
func (s *Service) List(ctx context.Context, callerEmail string, groupID int64) ([]domain.Payment, error) {
	if _, err := s.groups.Get(ctx, callerEmail, groupID); err != nil {
		return nil, err
	}

	payments, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return payments, nil
}
