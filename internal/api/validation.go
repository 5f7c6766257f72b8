package api

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/money"
)

// fieldErrors collects every failing field of a payload, keyed by its JSON
// name.
type fieldErrors map[string][]string

func (fe fieldErrors) add(field, format string, args ...any) {
	fe[field] = append(fe[field], fmt.Sprintf(format, args...))
}

func (fe fieldErrors) any() bool { return len(fe) > 0 }

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// checkString validates an optional string field. Required fields must be
// present and non-blank unless partial is set, in which case they may be
// absent but not blank.
func (fe fieldErrors) checkString(field string, v *string, required, partial bool, minLen, maxLen int) {
	if v == nil {
		if required && !partial {
			fe.add(field, "The %s field is required.", field)
		}
		return
	}
	if required && strings.TrimSpace(*v) == "" {
		fe.add(field, "The %s field is required.", field)
		return
	}
	n := utf8.RuneCountInString(*v)
	if minLen > 0 && n < minLen {
		fe.add(field, "The %s field must be at least %d characters.", field, minLen)
	}
	if maxLen > 0 && n > maxLen {
		fe.add(field, "The %s field must not be greater than %d characters.", field, maxLen)
	}
}

type userPayload struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

func (p userPayload) validate(partial bool) fieldErrors {
	fe := fieldErrors{}
	fe.checkString("name", p.Name, true, partial, 0, 255)
	fe.checkString("username", p.Username, true, partial, 3, 30)
	fe.checkString("email", p.Email, true, partial, 0, 255)
	if p.Email != nil && strings.TrimSpace(*p.Email) != "" {
		if addr, err := mail.ParseAddress(*p.Email); err != nil || addr.Address != *p.Email {
			fe.add("email", "The email field must be a valid email address.")
		}
	}
	fe.checkString("password", p.Password, true, partial, 6, 100)
	if p.Role != nil && *p.Role != database.RoleMember && *p.Role != database.RoleAdmin {
		fe.add("role", "The selected role is invalid.")
	}
	return fe
}

type expensePayload struct {
	Description     *string          `json:"description"`
	Amount          *decimal.Decimal `json:"amount"`
	Category        *string          `json:"category"`
	Date            *string          `json:"date"`
	PaidBy          *string          `json:"paidBy"`
	TransactionType *string          `json:"transactionType"`
}

// validExpense carries the converted values of a checked expensePayload.
type validExpense struct {
	amountCents *int64
	date        *time.Time
}

func (p expensePayload) validate(partial bool) (validExpense, fieldErrors) {
	var out validExpense
	fe := fieldErrors{}
	fe.checkString("description", p.Description, true, partial, 0, 255)
	fe.checkString("category", p.Category, true, partial, 0, 255)
	fe.checkString("paidBy", p.PaidBy, true, partial, 0, 255)

	switch {
	case p.Amount == nil:
		if !partial {
			fe.add("amount", "The amount field is required.")
		}
	default:
		cents, err := money.ToCents(*p.Amount)
		if err != nil {
			fe.add("amount", "The amount field must be a non-negative number below 100000000 with at most 2 decimal places.")
		} else {
			out.amountCents = &cents
		}
	}

	if p.Date != nil && *p.Date != "" {
		var d time.Time
		if err := parseDate(*p.Date, &d); err != nil {
			fe.add("date", "The date field must be a valid date.")
		} else {
			out.date = &d
		}
	}

	if p.TransactionType != nil && *p.TransactionType != "" &&
		*p.TransactionType != database.KindExpense && *p.TransactionType != database.KindEarning {
		fe.add("transactionType", "The selected transactionType is invalid.")
	}
	return out, fe
}

type categoryPayload struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color"`
	Icon        *string `json:"icon"`
	IsActive    *bool   `json:"isActive"`
}

func (p categoryPayload) validate(partial bool) fieldErrors {
	fe := fieldErrors{}
	fe.checkString("name", p.Name, true, partial, 0, 255)
	fe.checkString("description", p.Description, false, partial, 0, 255)
	if p.Color != nil && *p.Color != "" && !colorPattern.MatchString(*p.Color) {
		fe.add("color", "The color field format is invalid.")
	}
	fe.checkString("icon", p.Icon, false, partial, 0, 10)
	return fe
}
