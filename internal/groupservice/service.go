// Package groupservice manages business logic layer of groups.
package groupservice

import (
	"context"

	"github.com/go-divvy/divvy/internal/domain"
)

// Repo provides data access layer interface needed by group service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package groupservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error)
	Get(ctx context.Context, id int64) (domain.Group, error)
	ListForMember(ctx context.Context, userID int64) ([]domain.Group, error)
	Rename(ctx context.Context, id int64, name string) (domain.Group, error)
	Delete(ctx context.Context, id int64) error
	AddMember(ctx context.Context, groupID, userID int64) (domain.Member, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
}

// UserGetter provides the user lookups needed to resolve the caller and to
// add members by email.
//
//go:generate mockgen -source service.go -destination service_mock.go -package groupservice
type UserGetter interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}

// Service facilitates group service layer logic.
type Service struct {
	repo  Repo
	users UserGetter
}

// New returns group service struct to manage group business logic.
func New(gr Repo, ug UserGetter) *Service {
	return &Service{
		repo:  gr,
		users: ug,
	}
}

// Create creates a group with the caller as its first member.
func (s *Service) Create(ctx context.Context, callerEmail, name, currency string) (domain.Group, error) {
	caller, err := s.users.GetByEmail(ctx, callerEmail)
	if err != nil {
		return domain.Group{}, err
	}

	arg := domain.CreateGroupParams{
		Name:      name,
		Currency:  currency,
		CreatedBy: caller.ID,
	}

	group, err := s.repo.Create(ctx, arg)
	if err != nil {
		return group, err
	}

	return group, nil
}

// Get returns the group with its members if the caller belongs to it.
func (s *Service) Get(ctx context.Context, callerEmail string, groupID int64) (domain.Group, error) {
	caller, err := s.users.GetByEmail(ctx, callerEmail)
	if err != nil {
		return domain.Group{}, err
	}

	group, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return domain.Group{}, err
	}

	if !domain.IsMember(group.Members, caller.ID) {
		return domain.Group{}, domain.ErrNotGroupMember
	}

	return group, nil
}

// ListMine returns all groups the caller belongs to.
func (s *Service) ListMine(ctx context.Context, callerEmail string) ([]domain.Group, error) {
	caller, err := s.users.GetByEmail(ctx, callerEmail)
	if err != nil {
		return nil, err
	}

	groups, err := s.repo.ListForMember(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	return groups, nil
}

// Rename updates the group name if the caller belongs to the group.
func (s *Service) Rename(ctx context.Context, callerEmail string, groupID int64, name string) (domain.Group, error) {
	if _, err := s.Get(ctx, callerEmail, groupID); err != nil {
		return domain.Group{}, err
	}

	group, err := s.repo.Rename(ctx, groupID, name)
	if err != nil {
		return group, err
	}

	return group, nil
}

// Delete removes the group with all its expenses and payments if the caller
// belongs to the group.
func (s *Service) Delete(ctx context.Context, callerEmail string, groupID int64) error {
	if _, err := s.Get(ctx, callerEmail, groupID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, groupID)
}

// AddMember adds a registered user to the group by email.
func (s *Service) AddMember(ctx context.Context, callerEmail string, groupID int64, email string) (domain.Member, error) {
	if _, err := s.Get(ctx, callerEmail, groupID); err != nil {
		return domain.Member{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.Member{}, err
	}

	member, err := s.repo.AddMember(ctx, groupID, user.ID)
	if err != nil {
		return member, err
	}

	return member, nil
}

// RemoveMember removes another member from the group.
func (s *Service) RemoveMember(ctx context.Context, callerEmail string, groupID, memberID int64) error {
	caller, err := s.users.GetByEmail(ctx, callerEmail)
	if err != nil {
		return err
	}

	group, err := s.repo.Get(ctx, groupID)
	if err != nil {
		return err
	}

	if !domain.IsMember(group.Members, caller.ID) {
		return domain.ErrNotGroupMember
	}

	if memberID == caller.ID {
		return domain.ErrCannotRemoveSelf
	}

	return s.repo.RemoveMember(ctx, groupID, memberID)
}
