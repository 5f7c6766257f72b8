package hearthtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
)

func MakeRequest(method, path, token string, body any) *http.Request {
	var buffer io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		buffer = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, buffer)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// USER AUTH

func RegisterUser(name, username, email, password, role string) *http.Request {
	payload := map[string]any{
		"name":     name,
		"username": username,
		"email":    email,
		"password": password,
	}
	if role != "" {
		payload["role"] = role
	}
	return MakeRequest(http.MethodPost, "/api/auth/register", "", payload)
}

func LoginUser(username, password string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/login", "", map[string]any{
		"username": username,
		"password": password,
	})
}

func RefreshToken(refreshToken string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/refresh", "", map[string]any{
		"refreshToken": refreshToken,
	})
}

func LogoutUser(token string) *http.Request {
	return MakeRequest(http.MethodPost, "/api/auth/logout", token, nil)
}

func GetMe(token string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/auth/me", token, nil)
}

func ChangePassword(token, current, next string) *http.Request {
	return MakeRequest(http.MethodPut, "/api/auth/password", token, map[string]any{
		"currentPassword": current,
		"newPassword":     next,
	})
}

// USER CRUD (admin)

func GetUsers(token string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/users", token, nil)
}

func GetUser(token string, userID int64) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/users/%d", userID), token, nil)
}

func CreateUser(token string, payload map[string]any) *http.Request {
	return MakeRequest(http.MethodPost, "/api/users", token, payload)
}

func UpdateUser(token string, userID int64, payload map[string]any) *http.Request {
	return MakeRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", userID), token, payload)
}

func DeleteUser(token string, userID int64) *http.Request {
	return MakeRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", userID), token, nil)
}

// CATEGORIES

func GetCategories(token string, query url.Values) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/categories", query), token, nil)
}

func GetCategory(token string, categoryID int64) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/categories/%d", categoryID), token, nil)
}

func CreateCategory(token string, payload map[string]any) *http.Request {
	return MakeRequest(http.MethodPost, "/api/categories", token, payload)
}

func UpdateCategory(token string, categoryID int64, payload map[string]any) *http.Request {
	return MakeRequest(http.MethodPut, fmt.Sprintf("/api/categories/%d", categoryID), token, payload)
}

func ToggleCategory(token string, categoryID int64) *http.Request {
	return MakeRequest(http.MethodPatch, fmt.Sprintf("/api/categories/%d/toggle", categoryID), token, nil)
}

func DeleteCategory(token string, categoryID int64) *http.Request {
	return MakeRequest(http.MethodDelete, fmt.Sprintf("/api/categories/%d", categoryID), token, nil)
}

// EXPENSES

func GetExpenses(token string, query url.Values) *http.Request {
	return MakeRequest(http.MethodGet, withQuery("/api/expenses", query), token, nil)
}

func GetExpense(token string, expenseID int64) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/expenses/%d", expenseID), token, nil)
}

// LogExpense creates an expense; amount is sent as given so callers can
// exercise both numeric and string forms.
func LogExpense(token, description string, amount any, category, date, paidBy, kind string) *http.Request {
	payload := map[string]any{
		"description": description,
		"amount":      amount,
		"category":    category,
		"paidBy":      paidBy,
	}
	if date != "" {
		payload["date"] = date
	}
	if kind != "" {
		payload["transactionType"] = kind
	}
	return MakeRequest(http.MethodPost, "/api/expenses", token, payload)
}

func UpdateExpense(token string, expenseID int64, payload map[string]any) *http.Request {
	return MakeRequest(http.MethodPut, fmt.Sprintf("/api/expenses/%d", expenseID), token, payload)
}

func DeleteExpense(token string, expenseID int64) *http.Request {
	return MakeRequest(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", expenseID), token, nil)
}

func GetExpenseStats(token string) *http.Request {
	return MakeRequest(http.MethodGet, "/api/expenses/stats", token, nil)
}

// REPORTS

func GetMonthlyReport(token string, year, month int) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/reports/monthly?year=%d&month=%d", year, month), token, nil)
}

func GetMonthlyReportPDF(token string, year, month int) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/reports/monthly/pdf?year=%d&month=%d", year, month), token, nil)
}

func GetYearlyReport(token string, year int) *http.Request {
	return MakeRequest(http.MethodGet, fmt.Sprintf("/api/reports/yearly?year=%d", year), token, nil)
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
