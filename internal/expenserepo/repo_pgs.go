// Package expenserepo manages repository layer of expenses.
//
// An expense row carries the amount and split type; the participant set and
// custom shares live in side tables and are written in the same transaction
// as the expense row.
package expenserepo

import (
	"context"
	"database/sql"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/dbpkg"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/go-divvy/divvy/pkg/moneypkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates expense repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns expense RepoPGS for use inside an external transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns expense RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO expenses (
	group_id,
	description,
	category,
	amount,
	paid_by,
	split_type
) VALUES (
	$1, $2, $3, $4, $5, $6
) RETURNING id, group_id, description, category, amount, paid_by, split_type, created_at
`

const payerNameQuery = `
SELECT name FROM users WHERE id = $1
`

// Create persists the expense with its participants and shares inside a
// single transaction and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateExpenseParams) (domain.Expense, error) {
	l := zerolog.Ctx(ctx)

	var e domain.Expense

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	row := tx.QueryRowContext(ctx, createQuery,
		arg.GroupID,
		arg.Description,
		arg.Category,
		arg.Amount,
		arg.PaidBy,
		arg.SplitType,
	)

	err = row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Category,
		&e.Amount,
		&e.PaidBy,
		&e.SplitType,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return e, mapExpenseErr(err)
	}

	e.Participants = arg.Participants
	e.Shares = arg.Shares

	if err := insertSplit(ctx, tx, e); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, mapExpenseErr(err)
	}

	if err := tx.QueryRowContext(ctx, payerNameQuery, e.PaidBy).Scan(&e.PaidByName); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	return e, nil
}

const updateQuery = `
UPDATE expenses
SET description = $2,
	category = $3,
	amount = $4,
	paid_by = $5,
	split_type = $6
WHERE id = $1
RETURNING id, group_id, description, category, amount, paid_by, split_type, created_at
`

const deleteParticipantsQuery = `
DELETE FROM expense_participants WHERE expense_id = $1
`

const deleteSharesQuery = `
DELETE FROM expense_shares WHERE expense_id = $1
`

// Update replaces the expense with the given state, rewriting its
// participants and shares inside a single transaction.
func (r *RepoPGS) Update(ctx context.Context, arg domain.Expense) (domain.Expense, error) {
	l := zerolog.Ctx(ctx)

	var e domain.Expense

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return e, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	row := tx.QueryRowContext(ctx, updateQuery,
		arg.ID,
		arg.Description,
		arg.Category,
		arg.Amount,
		arg.PaidBy,
		arg.SplitType,
	)

	err = row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Category,
		&e.Amount,
		&e.PaidBy,
		&e.SplitType,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return e, domain.ErrExpenseNotFound
		}

		return e, mapExpenseErr(err)
	}

	if _, err := tx.ExecContext(ctx, deleteParticipantsQuery, e.ID); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	if _, err := tx.ExecContext(ctx, deleteSharesQuery, e.ID); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	e.Participants = arg.Participants
	e.Shares = arg.Shares

	if err := insertSplit(ctx, tx, e); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, mapExpenseErr(err)
	}

	if err := tx.QueryRowContext(ctx, payerNameQuery, e.PaidBy).Scan(&e.PaidByName); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return domain.Expense{}, errorspkg.ErrInternal
	}

	return e, nil
}

const insertParticipantQuery = `
INSERT INTO expense_participants (expense_id, user_id) VALUES ($1, $2)
`

const insertShareQuery = `
INSERT INTO expense_shares (expense_id, user_id, amount) VALUES ($1, $2, $3)
`

func insertSplit(ctx context.Context, tx dbpkg.SQLInterface, e domain.Expense) error {
	for _, userID := range e.Participants {
		if _, err := tx.ExecContext(ctx, insertParticipantQuery, e.ID, userID); err != nil {
			return err
		}
	}

	if e.SplitType != domain.SplitCustom {
		return nil
	}

	// Participants are sorted, so share rows land in deterministic order.
	for _, userID := range e.Participants {
		if _, err := tx.ExecContext(ctx, insertShareQuery, e.ID, userID, e.Shares[userID]); err != nil {
			return err
		}
	}

	return nil
}

func mapExpenseErr(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "expenses_group_id_fkey":
			return domain.ErrGroupNotFound
		case "expenses_paid_by_fkey",
			"expense_participants_user_id_fkey",
			"expense_shares_user_id_fkey":
			return domain.ErrUnknownParticipant
		case "expenses_amount_check", "expense_shares_amount_check":
			return domain.ErrInvalidAmount
		}
	}

	return errorspkg.ErrInternal
}

const getQuery = `
SELECT
	e.id,
	e.group_id,
	e.description,
	e.category,
	e.amount,
	e.paid_by,
	u.name,
	e.split_type,
	e.created_at
FROM expenses e
JOIN users u ON u.id = e.paid_by
WHERE e.id = $1
`

// Get returns the expense with the given id, participants and shares included.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Expense, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var e domain.Expense

	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Category,
		&e.Amount,
		&e.PaidBy,
		&e.PaidByName,
		&e.SplitType,
		&e.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return e, domain.ErrExpenseNotFound
		}

		return e, errorspkg.ErrInternal
	}

	expenses := []domain.Expense{e}
	if err := r.attachSplits(ctx, expenses); err != nil {
		return e, err
	}

	return expenses[0], nil
}

const listQuery = `
SELECT
	e.id,
	e.group_id,
	e.description,
	e.category,
	e.amount,
	e.paid_by,
	u.name,
	e.split_type,
	e.created_at
FROM expenses e
JOIN users u ON u.id = e.paid_by
WHERE e.group_id = $1
	AND ($2 = '' OR e.description ILIKE '%' || $2 || '%')
	AND ($3 = '' OR e.category = $3)
ORDER BY e.created_at DESC, e.id DESC
LIMIT $4 OFFSET $5
`

// List returns the group's expenses newest first, filtered by the optional
// description search and category, with limit/offset paging.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListExpensesParams) ([]domain.Expense, error) {
	return r.list(ctx, listQuery,
		arg.GroupID,
		arg.Search,
		arg.Category,
		arg.Limit,
		arg.Offset,
	)
}

const listByGroupQuery = `
SELECT
	e.id,
	e.group_id,
	e.description,
	e.category,
	e.amount,
	e.paid_by,
	u.name,
	e.split_type,
	e.created_at
FROM expenses e
JOIN users u ON u.id = e.paid_by
WHERE e.group_id = $1
ORDER BY e.created_at, e.id
`

// ListByGroup returns every expense of the group in chronological order.
// Settlement and export paths need the full record set, not a page.
func (r *RepoPGS) ListByGroup(ctx context.Context, groupID int64) ([]domain.Expense, error) {
	return r.list(ctx, listByGroupQuery, groupID)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...interface{}) ([]domain.Expense, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Expense{}

	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.Description,
			&e.Category,
			&e.Amount,
			&e.PaidBy,
			&e.PaidByName,
			&e.SplitType,
			&e.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := r.attachSplits(ctx, items); err != nil {
		return nil, err
	}

	return items, nil
}

const participantsQuery = `
SELECT expense_id, user_id
FROM expense_participants
WHERE expense_id = ANY($1)
ORDER BY expense_id, user_id
`

const sharesQuery = `
SELECT expense_id, user_id, amount
FROM expense_shares
WHERE expense_id = ANY($1)
ORDER BY expense_id, user_id
`

// attachSplits loads participants and custom shares for the expenses in two
// batched queries and fills them in place.
func (r *RepoPGS) attachSplits(ctx context.Context, expenses []domain.Expense) error {
	l := zerolog.Ctx(ctx)

	if len(expenses) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Expense, len(expenses))
	ids := make([]int64, 0, len(expenses))

	for i := range expenses {
		byID[expenses[i].ID] = &expenses[i]
		ids = append(ids, expenses[i].ID)
	}

	rows, err := r.db.QueryContext(ctx, participantsQuery, pq.Array(ids))
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID, userID int64

		if err := rows.Scan(&expenseID, &userID); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		e := byID[expenseID]
		e.Participants = append(e.Participants, userID)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	shareRows, err := r.db.QueryContext(ctx, sharesQuery, pq.Array(ids))
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var (
			expenseID, userID int64
			amount            moneypkg.Money
		)

		if err := shareRows.Scan(&expenseID, &userID, &amount); err != nil {
			l.Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		e := byID[expenseID]
		if e.Shares == nil {
			e.Shares = make(map[int64]moneypkg.Money)
		}

		e.Shares[userID] = amount
	}

	if err := shareRows.Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

const deleteQuery = `
DELETE FROM expenses WHERE id = $1
`

// Delete removes the expense with its participants and shares.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}
