// Package grouprepo manages repository layer of groups and their members.
package grouprepo

import (
	"context"
	"database/sql"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/dbpkg"
	"github.com/go-divvy/divvy/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates group repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns group RepoPGS for use inside an external transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns group RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const createQuery = `
INSERT INTO groups (
	name,
	currency,
	created_by
) VALUES (
	$1, $2, $3
) RETURNING id, name, currency, created_by, created_at
`

const addMemberQuery = `
WITH added AS (
	INSERT INTO group_members (group_id, user_id)
	VALUES ($1, $2)
	RETURNING user_id
)
SELECT u.id, u.name, u.email
FROM users u
JOIN added ON added.user_id = u.id
`

// Create creates the group with the creator as its first member inside a
// single transaction and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateGroupParams) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	var g domain.Group

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			l.Error().Err(err).Send()
		}
	}()

	row := tx.QueryRowContext(ctx, createQuery, arg.Name, arg.Currency, arg.CreatedBy)

	err = row.Scan(
		&g.ID,
		&g.Name,
		&g.Currency,
		&g.CreatedBy,
		&g.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Constraint == "groups_created_by_fkey" {
				return g, domain.ErrUserNotFound
			}
		}

		return g, errorspkg.ErrInternal
	}

	var creator domain.Member

	row = tx.QueryRowContext(ctx, addMemberQuery, g.ID, arg.CreatedBy)
	if err := row.Scan(&creator.ID, &creator.Name, &creator.Email); err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return g, errorspkg.ErrInternal
	}

	g.Members = []domain.Member{creator}

	return g, nil
}

const getQuery = `
SELECT
	id,
	name,
	currency,
	created_by,
	created_at
FROM groups
WHERE id = $1
`

// Get returns the group with the given id, members included.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var g domain.Group

	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Currency,
		&g.CreatedBy,
		&g.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return g, domain.ErrGroupNotFound
		}

		return g, errorspkg.ErrInternal
	}

	g.Members, err = r.Members(ctx, g.ID)
	if err != nil {
		return g, err
	}

	return g, nil
}

const membersQuery = `
SELECT
	u.id,
	u.name,
	u.email
FROM group_members gm
JOIN users u ON u.id = gm.user_id
WHERE gm.group_id = $1
ORDER BY u.id
`

// Members returns the group's members ordered by ascending user id.
func (r *RepoPGS) Members(ctx context.Context, groupID int64) ([]domain.Member, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, membersQuery, groupID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	members := []domain.Member{}

	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Email); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return members, nil
}

const listForMemberQuery = `
SELECT
	g.id,
	g.name,
	g.currency,
	g.created_by,
	g.created_at
FROM groups g
JOIN group_members gm ON gm.group_id = g.id
WHERE gm.user_id = $1
ORDER BY g.id
`

const listMembersQuery = `
SELECT
	gm.group_id,
	u.id,
	u.name,
	u.email
FROM group_members gm
JOIN users u ON u.id = gm.user_id
WHERE gm.group_id = ANY($1)
ORDER BY gm.group_id, u.id
`

// ListForMember returns all groups the user belongs to, members included.
func (r *RepoPGS) ListForMember(ctx context.Context, userID int64) ([]domain.Group, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listForMemberQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	groups := []domain.Group{}
	groupIDs := []int64{}

	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Currency, &g.CreatedBy, &g.CreatedAt); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		g.Members = []domain.Member{}
		groups = append(groups, g)
		groupIDs = append(groupIDs, g.ID)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if len(groups) == 0 {
		return groups, nil
	}

	memberRows, err := r.db.QueryContext(ctx, listMembersQuery, pq.Array(groupIDs))
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer memberRows.Close()

	byID := make(map[int64]int, len(groups))
	for i := range groups {
		byID[groups[i].ID] = i
	}

	for memberRows.Next() {
		var (
			groupID int64
			m       domain.Member
		)

		if err := memberRows.Scan(&groupID, &m.ID, &m.Name, &m.Email); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		i := byID[groupID]
		groups[i].Members = append(groups[i].Members, m)
	}

	if err := memberRows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return groups, nil
}

const renameQuery = `
UPDATE groups
SET name = $2
WHERE id = $1
RETURNING id, name, currency, created_by, created_at
`

// Rename updates the group name and then returns the group, members included.
func (r *RepoPGS) Rename(ctx context.Context, id int64, name string) (domain.Group, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, renameQuery, id, name)

	var g domain.Group

	err := row.Scan(
		&g.ID,
		&g.Name,
		&g.Currency,
		&g.CreatedBy,
		&g.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return g, domain.ErrGroupNotFound
		}

		return g, errorspkg.ErrInternal
	}

	g.Members, err = r.Members(ctx, g.ID)
	if err != nil {
		return g, err
	}

	return g, nil
}

const deleteQuery = `
DELETE FROM groups
WHERE id = $1
`

// Delete removes the group with all its expenses and payments.
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
		return domain.ErrGroupNotFound
	}

	return nil
}

// AddMember adds the user to the group and then returns the member.
func (r *RepoPGS) AddMember(ctx context.Context, groupID, userID int64) (domain.Member, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, addMemberQuery, groupID, userID)

	var m domain.Member

	err := row.Scan(&m.ID, &m.Name, &m.Email)
	if err != nil {
		l.Error().Err(err).Send()

		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Constraint {
			case "group_members_pkey":
				return m, domain.ErrAlreadyGroupMember
			case "group_members_group_id_fkey":
				return m, domain.ErrGroupNotFound
			case "group_members_user_id_fkey":
				return m, domain.ErrUserNotFound
			}
		}

		return m, errorspkg.ErrInternal
	}

	return m, nil
}

const removeMemberQuery = `
DELETE FROM group_members
WHERE group_id = $1 AND user_id = $2
`

// RemoveMember removes the user from the group.
func (r *RepoPGS) RemoveMember(ctx context.Context, groupID, userID int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, removeMemberQuery, groupID, userID)
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
		return domain.ErrMemberNotFound
	}

	return nil
}
