// Package database persists users, categories and expenses. A single
// SQLStore serves both PostgreSQL and SQLite.
package database

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record conflicts with an existing one")
	ErrInvalidSort = errors.New("invalid sort field")
)

type UserStore interface {
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, id int64) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	CountUsers(ctx context.Context) (int64, error)
	SetUserRefreshToken(ctx context.Context, id int64, token string) error
	RecordUserLogin(ctx context.Context, id int64, token string, at time.Time) error
}

type CategoryStore interface {
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, error)
	UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error)
	ToggleCategory(ctx context.Context, id int64) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type ExpenseStore interface {
	CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error)
	GetExpense(ctx context.Context, id int64) (Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error)
	UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error)
	DeleteExpense(ctx context.Context, id int64) error
	SumExpensesBy(ctx context.Context, q GroupQuery) ([]GroupTotal, error)
	SumExpensesByMonth(ctx context.Context, start, end time.Time) ([]MonthTotal, error)
}

type Store interface {
	UserStore
	CategoryStore
	ExpenseStore
	Ping(ctx context.Context) error
	Close() error
}
