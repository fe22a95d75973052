// Package expenseservice manages business logic layer of expenses.
package expenseservice

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/go-divvy/divvy/internal/calculator"
	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/configpkg"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/go-divvy/divvy/pkg/moneypkg"
)

// List paging bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

var csvHeader = []string{"Date", "Description", "Category", "Amount", "Paid By", "Split Type", "Participants"}

// Repo provides data access layer interface needed by expense service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package expenseservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateExpenseParams) (domain.Expense, error)
	Get(ctx context.Context, id int64) (domain.Expense, error)
	List(ctx context.Context, arg domain.ListExpensesParams) ([]domain.Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]domain.Expense, error)
	Update(ctx context.Context, arg domain.Expense) (domain.Expense, error)
	Delete(ctx context.Context, id int64) error
}

// GroupService provides the member-only group lookups used to authorize
// every expense operation.
//
//go:generate mockgen -source service.go -destination service_mock.go -package expenseservice
type GroupService interface {
	Get(ctx context.Context, callerEmail string, groupID int64) (domain.Group, error)
}

// Service facilitates expense service layer logic.
type Service struct {
	repo      Repo
	groups    GroupService
	maxAmount moneypkg.Money
}

// New returns expense service struct to manage expense business logic.
func New(er Repo, gs GroupService, config configpkg.Config) (*Service, error) {
	maxAmount, err := moneypkg.Parse(config.MaxExpenseAmount)
	if err != nil {
		return nil, fmt.Errorf("parse max expense amount: %w", err)
	}

	return &Service{
		repo:      er,
		groups:    gs,
		maxAmount: maxAmount,
	}, nil
}

// Create validates the split against the group membership and stores
// the expense.
func (s *Service) Create(ctx context.Context, callerEmail string, arg domain.CreateExpenseParams) (domain.Expense, error) {
	group, err := s.groups.Get(ctx, callerEmail, arg.GroupID)
	if err != nil {
		return domain.Expense{}, err
	}

	if arg.Category != "" && !domain.IsValidCategory(arg.Category) {
		return domain.Expense{}, domain.ErrInvalidCategory
	}

	// A custom split without an explicit participant list splits between
	// the share holders.
	if arg.SplitType == domain.SplitCustom && len(arg.Participants) == 0 {
		for id := range arg.Shares {
			arg.Participants = append(arg.Participants, id)
		}
	}

	e := domain.Expense{
		GroupID:      arg.GroupID,
		Description:  arg.Description,
		Category:     arg.Category,
		Amount:       arg.Amount,
		PaidBy:       arg.PaidBy,
		SplitType:    arg.SplitType,
		Participants: arg.Participants,
		Shares:       arg.Shares,
	}

	shares, err := calculator.ValidateSplit(e, group.Members, s.maxAmount)
	if err != nil {
		return domain.Expense{}, err
	}

	arg.Participants, arg.Shares = storedSplit(arg.SplitType, shares)

	created, err := s.repo.Create(ctx, arg)
	if err != nil {
		return created, err
	}

	return s.withShares(ctx, created)
}

// Get returns the expense with its per member shares if the caller belongs
// to the expense group.
func (s *Service) Get(ctx context.Context, callerEmail string, id int64) (domain.Expense, error) {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return e, err
	}

	if _, err := s.groups.Get(ctx, callerEmail, e.GroupID); err != nil {
		return domain.Expense{}, err
	}

	return s.withShares(ctx, e)
}

// List returns a page of group expenses, newest first.
func (s *Service) List(ctx context.Context, callerEmail string, arg domain.ListExpensesParams) ([]domain.Expense, error) {
	if _, err := s.groups.Get(ctx, callerEmail, arg.GroupID); err != nil {
		return nil, err
	}

	if arg.Category != "" && !domain.IsValidCategory(arg.Category) {
		return nil, domain.ErrInvalidCategory
	}

	if arg.Limit <= 0 {
		arg.Limit = DefaultPageSize
	}

	if arg.Limit > MaxPageSize {
		arg.Limit = MaxPageSize
	}

	if arg.Offset < 0 {
		arg.Offset = 0
	}

	expenses, err := s.repo.List(ctx, arg)
	if err != nil {
		return nil, err
	}

	for i := range expenses {
		expenses[i], err = s.withShares(ctx, expenses[i])
		if err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// Update applies the given changes and revalidates the merged expense as
// a whole.
func (s *Service) Update(ctx context.Context, callerEmail string, arg domain.UpdateExpenseParams) (domain.Expense, error) {
	current, err := s.repo.Get(ctx, arg.ID)
	if err != nil {
		return domain.Expense{}, err
	}

	group, err := s.groups.Get(ctx, callerEmail, current.GroupID)
	if err != nil {
		return domain.Expense{}, err
	}

	merged := merge(current, arg)

	if merged.Category != "" && !domain.IsValidCategory(merged.Category) {
		return domain.Expense{}, domain.ErrInvalidCategory
	}

	shares, err := calculator.ValidateSplit(merged, group.Members, s.maxAmount)
	if err != nil {
		return domain.Expense{}, err
	}

	merged.Participants, merged.Shares = storedSplit(merged.SplitType, shares)

	updated, err := s.repo.Update(ctx, merged)
	if err != nil {
		return updated, err
	}

	return s.withShares(ctx, updated)
}

// Delete removes the expense if the caller belongs to the expense group.
func (s *Service) Delete(ctx context.Context, callerEmail string, id int64) error {
	e, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.groups.Get(ctx, callerEmail, e.GroupID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// ExportCSV renders all group expenses as a CSV document in chronological
// order.
func (s *Service) ExportCSV(ctx context.Context, callerEmail string, groupID int64) ([]byte, error) {
	l := zerolog.Ctx(ctx)

	group, err := s.groups.Get(ctx, callerEmail, groupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(group.Members))
	for _, m := range group.Members {
		names[m.ID] = m.Name
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	for _, e := range expenses {
		participants := make([]string, len(e.Participants))

		for i, id := range e.Participants {
			name, ok := names[id]
			if !ok {
				// Former members keep their expenses but lose their
				// name, so fall back to the raw id.
				name = strconv.FormatInt(id, 10)
			}

			participants[i] = name
		}

		record := []string{
			e.CreatedAt.Format("2006-01-02"),
			e.Description,
			string(e.Category),
			e.Amount.String(),
			e.PaidByName,
			string(e.SplitType),
			strings.Join(participants, ";"),
		}

		if err := w.Write(record); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return buf.Bytes(), nil
}

// withShares attaches the computed per member shares to the expense. A share
// set that no longer checks out against the stored amount is corrupt state
// and surfaces as an internal error.
func (s *Service) withShares(ctx context.Context, e domain.Expense) (domain.Expense, error) {
	l := zerolog.Ctx(ctx)

	shares, err := calculator.Shares(e)
	if err != nil {
		l.Error().Err(err).Int64("expense_id", e.ID).Send()
		return e, errorspkg.ErrInternal
	}

	e.Shares = shares

	return e, nil
}

// storedSplit converts validated shares to the persisted form: ascending
// participant ids plus, for custom splits only, the share amounts.
func storedSplit(splitType domain.SplitType, shares map[int64]moneypkg.Money) ([]int64, map[int64]moneypkg.Money) {
	ids := make([]int64, 0, len(shares))
	for id := range shares {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	if splitType == domain.SplitCustom {
		return ids, shares
	}

	return ids, nil
}

// merge overlays the set update fields on the stored expense.
func merge(current domain.Expense, arg domain.UpdateExpenseParams) domain.Expense {
	merged := current

	if arg.Description != nil {
		merged.Description = *arg.Description
	}

	if arg.Category != nil {
		merged.Category = *arg.Category
	}

	if arg.Amount != nil {
		merged.Amount = *arg.Amount
	}

	if arg.PaidBy != nil {
		merged.PaidBy = *arg.PaidBy
	}

	if arg.SplitType != nil {
		merged.SplitType = *arg.SplitType
	}

	if arg.Participants != nil {
		merged.Participants = arg.Participants
	}

	if arg.Shares != nil {
		merged.Shares = arg.Shares
	}

	return merged
}
