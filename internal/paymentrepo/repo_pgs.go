// Package paymentrepo manages repository layer of settlement payments.
package paymentrepo

import (
	"context"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/dbpkg"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates payment repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns payment RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
WITH inserted AS (
	INSERT INTO payments (group_id, from_user, to_user, amount)
	VALUES ($1, $2, $3, $4)
	RETURNING id, group_id, from_user, to_user, amount, created_at
)
SELECT
	i.id,
	i.group_id,
	i.from_user,
	uf.name,
	i.to_user,
	ut.name,
	i.amount,
	i.created_at
FROM inserted i
JOIN users uf ON uf.id = i.from_user
JOIN users ut ON ut.id = i.to_user
`

// Create creates the payment and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreatePaymentParams) (domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.GroupID,
		arg.From,
		arg.To,
		arg.Amount,
	)

	var p domain.Payment

	err := row.Scan(
		&p.ID,
		&p.GroupID,
		&p.From,
		&p.FromName,
		&p.To,
		&p.ToName,
		&p.Amount,
		&p.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "payments_group_id_fkey":
				return p, domain.ErrGroupNotFound
			case "payments_from_user_fkey", "payments_to_user_fkey":
				return p, domain.ErrUnknownParticipant
			case "payments_amount_check":
				return p, domain.ErrInvalidAmount
			case "payments_distinct_users_check":
				return p, domain.ErrSelfPayment
			}
		}

		return p, errorspkg.ErrInternal
	}

	return p, nil
}

const listByGroupQuery = `
SELECT
	p.id,
	p.group_id,
	p.from_user,
	uf.name,
	p.to_user,
	ut.name,
	p.amount,
	p.created_at
FROM payments p
JOIN users uf ON uf.id = p.from_user
JOIN users ut ON ut.id = p.to_user
WHERE p.group_id = $1
ORDER BY p.created_at DESC, p.id DESC
`

// ListByGroup returns the group's payments newest first.
func (r *RepoPGS) ListByGroup(ctx context.Context, groupID int64) ([]domain.Payment, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByGroupQuery, groupID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Payment{}

	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(
			&p.ID,
			&p.GroupID,
			&p.From,
			&p.FromName,
			&p.To,
			&p.ToName,
			&p.Amount,
			&p.CreatedAt,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, p)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
