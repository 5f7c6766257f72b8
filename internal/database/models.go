package database

import "time"

const (
	RoleMember = "member"
	RoleAdmin  = "admin"

	KindExpense = "expense"
	KindEarning = "earning"
)

type User struct {
	ID           int64
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	// RefreshToken is empty when no refresh token is live.
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CreateUserParams struct {
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
}

// UpdateUserParams leaves a column unchanged when its field is nil.
type UpdateUserParams struct {
	ID           int64
	Name         *string
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *string
	IsActive     *bool
}

type Category struct {
	ID          int64
	Name        string
	Description string
	Color       string
	Icon        string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CreateCategoryParams struct {
	Name        string
	Description string
	Color       string
	Icon        string
	IsActive    bool
}

type UpdateCategoryParams struct {
	ID          int64
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsActive    *bool
}

type CategoryFilter struct {
	Active *bool
	Search string
}

type Expense struct {
	ID              int64
	Description     string
	AmountCents     int64
	Category        string
	Date            time.Time
	PaidBy          string
	TransactionType string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type CreateExpenseParams struct {
	Description     string
	AmountCents     int64
	Category        string
	Date            time.Time
	PaidBy          string
	TransactionType string
}

type UpdateExpenseParams struct {
	ID              int64
	Description     *string
	AmountCents     *int64
	Category        *string
	Date            *time.Time
	PaidBy          *string
	TransactionType *string
}

// ExpenseFilter narrows an expense listing. Zero values mean "no
// constraint". Start is inclusive and End exclusive.
type ExpenseFilter struct {
	Category string
	PaidBy   string
	Kind     string
	Start    time.Time
	End      time.Time
	Sort     []SortField
	Limit    int
}

type SortField struct {
	Field string
	Desc  bool
}

const (
	GroupByCategory = "category"
	GroupByPaidBy   = "paid_by"
	GroupByKind     = "transaction_type"
)

type GroupQuery struct {
	Field string
	Kind  string
	Start time.Time
	End   time.Time
}

type GroupTotal struct {
	Key        string
	TotalCents int64
	Count      int64
}

type MonthTotal struct {
	Month      int
	Kind       string
	TotalCents int64
	Count      int64
}
