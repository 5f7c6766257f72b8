package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/money"
)

func init() {
	// amounts go out as JSON numbers, as the existing clients expect
	decimal.MarshalJSONWithoutQuotes = true
}

// User is the public view of a user record; the password hash and refresh
// token never leave the server.
type User struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"isActive"`
	LastLogin *time.Time `json:"lastLogin"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func userFromDB(u database.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func categoryFromDB(c database.Category) Category {
	return Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type Expense struct {
	ID              int64           `json:"id"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	Category        string          `json:"category"`
	Date            time.Time       `json:"date"`
	PaidBy          string          `json:"paidBy"`
	TransactionType string          `json:"transactionType"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func expenseFromDB(e database.Expense) Expense {
	return Expense{
		ID:              e.ID,
		Description:     e.Description,
		Amount:          money.FromCents(e.AmountCents),
		Category:        e.Category,
		Date:            e.Date,
		PaidBy:          e.PaidBy,
		TransactionType: e.TransactionType,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func expensesFromDB(es []database.Expense) []Expense {
	out := make([]Expense, 0, len(es))
	for _, e := range es {
		out = append(out, expenseFromDB(e))
	}
	return out
}

// listResponse and itemResponse are the envelopes for collections and
// single records.
type listResponse[T any] struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
	Data    []T  `json:"data"`
}

func newListResponse[T any](data []T) listResponse[T] {
	if data == nil {
		data = []T{}
	}
	return listResponse[T]{Success: true, Count: len(data), Data: data}
}

type itemResponse[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}
