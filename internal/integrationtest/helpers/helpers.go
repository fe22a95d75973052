// Package helpers provides shared fixtures for delivery and repository tests.
package helpers

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/go-divvy/divvy/internal/domain"
	"github.com/go-divvy/divvy/pkg/dbpkg"
	"github.com/go-divvy/divvy/pkg/passpkg"
	"github.com/go-divvy/divvy/pkg/randompkg"
)

// lastUserID hands out unique fixture ids so that membership checks never
// trip over two fixtures sharing an id.
var lastUserID int64

// RandomUser returns an unsaved user fixture with a unique id.
func RandomUser() domain.User {
	return domain.User{
		ID:    atomic.AddInt64(&lastUserID, 1),
		Name:  randompkg.Name(),
		Email: randompkg.Email(),
	}
}

// RandomGroup returns an unsaved group fixture with the given users as its
// members. The first user is the creator.
func RandomGroup(members ...domain.User) domain.Group {
	g := domain.Group{
		ID:       randompkg.Int64Between(1, 1000),
		Name:     randompkg.Name(),
		Currency: randompkg.Currency(),
	}

	if len(members) > 0 {
		g.CreatedBy = members[0].ID
	}

	for _, u := range members {
		g.Members = append(g.Members, domain.Member{ID: u.ID, Name: u.Name, Email: u.Email})
	}

	return g
}

// RandomExpense returns an unsaved expense fixture split equally between all
// group members and paid by the given member.
func RandomExpense(g domain.Group, paidBy int64) domain.Expense {
	participants := make([]int64, len(g.Members))
	for i, m := range g.Members {
		participants[i] = m.ID
	}

	return domain.Expense{
		ID:           randompkg.Int64Between(1, 1000),
		GroupID:      g.ID,
		Description:  randompkg.String(10),
		Amount:       randompkg.AmountBetween(1, 100),
		PaidBy:       paidBy,
		SplitType:    domain.SplitEqual,
		Participants: participants,
	}
}

// SeedUser inserts a random user row and returns it.
func SeedUser(t *testing.T, db dbpkg.SQLInterface) domain.User {
	t.Helper()

	hashedPassword, err := passpkg.Hash(randompkg.String(10))
	if err != nil {
		t.Fatalf("passpkg.Hash() returned error: %v", err)
	}

	const query = `
	INSERT INTO users (name, email, hashed_password)
	VALUES ($1, $2, $3)
	RETURNING id, name, email, hashed_password, created_at`

	row := db.QueryRowContext(context.Background(), query,
		randompkg.Name(), randompkg.Email(), hashedPassword)

	var u domain.User

	err = row.Scan(&u.ID, &u.Name, &u.Email, &u.HashedPassword, &u.CreatedAt)
	if err != nil {
		t.Fatalf("seeding user returned error: %v", err)
	}

	return u
}

// SeedGroup inserts a group row with the creator as its first member and
// returns the group.
func SeedGroup(t *testing.T, db dbpkg.SQLInterface, creator domain.User) domain.Group {
	t.Helper()

	const query = `
	INSERT INTO groups (name, currency, created_by)
	VALUES ($1, $2, $3)
	RETURNING id, name, currency, created_by, created_at`

	row := db.QueryRowContext(context.Background(), query,
		randompkg.Name(), randompkg.Currency(), creator.ID)

	var g domain.Group

	err := row.Scan(&g.ID, &g.Name, &g.Currency, &g.CreatedBy, &g.CreatedAt)
	if err != nil {
		t.Fatalf("seeding group returned error: %v", err)
	}

	g.Members = []domain.Member{SeedMember(t, db, g.ID, creator)}

	return g
}

// SeedMember adds the user to the group and returns the member.
func SeedMember(t *testing.T, db dbpkg.SQLInterface, groupID int64, u domain.User) domain.Member {
	t.Helper()

	const query = `
	INSERT INTO group_members (group_id, user_id)
	VALUES ($1, $2)`

	if _, err := db.ExecContext(context.Background(), query, groupID, u.ID); err != nil {
		t.Fatalf("seeding group member returned error: %v", err)
	}

	return domain.Member{ID: u.ID, Name: u.Name, Email: u.Email}
}

// SeedExpense inserts an expense row with its participant rows and, for
// custom splits, its share rows.
func SeedExpense(t *testing.T, db dbpkg.SQLInterface, arg domain.CreateExpenseParams) domain.Expense {
	t.Helper()

	ctx := context.Background()

	const query = `
	INSERT INTO expenses (group_id, description, category, amount, paid_by, split_type)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, group_id, description, category, amount, paid_by, split_type, created_at`

	row := db.QueryRowContext(ctx, query,
		arg.GroupID, arg.Description, arg.Category, arg.Amount, arg.PaidBy, arg.SplitType)

	var e domain.Expense

	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Category,
		&e.Amount, &e.PaidBy, &e.SplitType, &e.CreatedAt)
	if err != nil {
		t.Fatalf("seeding expense returned error: %v", err)
	}

	const participantQuery = `
	INSERT INTO expense_participants (expense_id, user_id)
	VALUES ($1, $2)`

	for _, id := range arg.Participants {
		if _, err := db.ExecContext(ctx, participantQuery, e.ID, id); err != nil {
			t.Fatalf("seeding expense participant returned error: %v", err)
		}
	}

	e.Participants = arg.Participants

	const shareQuery = `
	INSERT INTO expense_shares (expense_id, user_id, amount)
	VALUES ($1, $2, $3)`

	for id, amount := range arg.Shares {
		if _, err := db.ExecContext(ctx, shareQuery, e.ID, id, amount); err != nil {
			t.Fatalf("seeding expense share returned error: %v", err)
		}
	}

	e.Shares = arg.Shares

	return e
}

// SeedSession inserts a session row and returns it.
func SeedSession(t *testing.T, db dbpkg.SQLInterface, arg domain.CreateSessionParams) domain.Session {
	t.Helper()

	const query = `
	INSERT INTO sessions (id, email, refresh_token, user_agent, client_ip, is_blocked, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, email, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at`

	row := db.QueryRowContext(context.Background(), query,
		arg.ID, arg.Email, arg.RefreshToken, arg.UserAgent, arg.ClientIP, arg.IsBlocked, arg.ExpiresAt)

	var s domain.Session

	err := row.Scan(&s.ID, &s.Email, &s.RefreshToken, &s.UserAgent, &s.ClientIP,
		&s.IsBlocked, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		t.Fatalf("seeding session returned error: %v", err)
	}

	return s
}

// SeedPayment inserts a payment row and returns it.
func SeedPayment(t *testing.T, db dbpkg.SQLInterface, arg domain.CreatePaymentParams) domain.Payment {
	t.Helper()

	const query = `
	INSERT INTO payments (group_id, from_user, to_user, amount)
	VALUES ($1, $2, $3, $4)
	RETURNING id, group_id, from_user, to_user, amount, created_at`

	row := db.QueryRowContext(context.Background(), query,
		arg.GroupID, arg.From, arg.To, arg.Amount)

	var p domain.Payment

	err := row.Scan(&p.ID, &p.GroupID, &p.From, &p.To, &p.Amount, &p.CreatedAt)
	if err != nil {
		t.Fatalf("seeding payment returned error: %v", err)
	}

	return p
}
