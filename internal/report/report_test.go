package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YouWantToPinch/hearth-api/internal/database"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func txn(kind string, cents int64, category, paidBy string, at time.Time) database.Expense {
	return database.Expense{
		Description:     category + " " + paidBy,
		AmountCents:     cents,
		Category:        category,
		PaidBy:          paidBy,
		TransactionType: kind,
		Date:            at,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func openStore(t *testing.T) *database.SQLStore {
	t.Helper()
	store, err := database.Open(context.Background(), database.Config{Backend: database.BackendSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seed(t *testing.T, store *database.SQLStore, txns ...database.Expense) {
	t.Helper()
	for _, e := range txns {
		_, err := store.CreateExpense(context.Background(), database.CreateExpenseParams{
			Description:     e.Description,
			AmountCents:     e.AmountCents,
			Category:        e.Category,
			Date:            e.Date,
			PaidBy:          e.PaidBy,
			TransactionType: e.TransactionType,
		})
		require.NoError(t, err)
	}
}

func TestMonthlyMarch2024(t *testing.T) {
	store := openStore(t)
	seed(t, store,
		txn(database.KindExpense, 10000, "Food", "John", day(2024, 3, 5)),
		txn(database.KindEarning, 50000, "Salary", "Jane", day(2024, 3, 10)),
		txn(database.KindExpense, 5000, "Food", "John", day(2024, 4, 1)),
	)

	m, err := NewAggregator(store).Monthly(context.Background(), 2024, 3)
	require.NoError(t, err)

	assertDecimal(t, "100", m.TotalExpenses)
	assertDecimal(t, "500", m.TotalEarnings)
	assertDecimal(t, "400", m.NetBalance)
	assert.Equal(t, int64(1), m.ExpenseCount)
	assert.Equal(t, int64(1), m.EarningCount)
	require.Len(t, m.ExpensesByCategory, 1)
	assert.Equal(t, "Food", m.ExpensesByCategory[0].Category)
	assertDecimal(t, "100", m.ExpensesByCategory[0].Total)
	assert.Equal(t, int64(1), m.ExpensesByCategory[0].Count)
	require.Len(t, m.Transactions, 2)
	assert.True(t, m.Transactions[0].Date.Before(m.Transactions[1].Date))
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), m.EndDate)
}

func TestMonthlyWindowEdges(t *testing.T) {
	store := openStore(t)
	seed(t, store,
		txn(database.KindExpense, 100, "Food", "John", time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC)),
		txn(database.KindExpense, 200, "Food", "John", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)),
		txn(database.KindExpense, 300, "Food", "John", time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)),
		txn(database.KindExpense, 400, "Food", "John", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)),
	)

	m, err := NewAggregator(store).Monthly(context.Background(), 2024, 3)
	require.NoError(t, err)
	assertDecimal(t, "5", m.TotalExpenses)
	assert.Equal(t, int64(2), m.ExpenseCount)
}

func TestInvalidPeriod(t *testing.T) {
	agg := NewAggregator(openStore(t))
	ctx := context.Background()

	for _, month := range []int{0, 13, -1} {
		_, err := agg.Monthly(ctx, 2024, month)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "month %d", month)
	}
	_, err := agg.Yearly(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = agg.Yearly(ctx, 10000)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestBuildMonthlyPartitionsSumToTotals(t *testing.T) {
	txns := []database.Expense{
		txn(database.KindExpense, 1999, "Food", "John", day(2024, 3, 1)),
		txn(database.KindExpense, 1, "Food", "Jane", day(2024, 3, 2)),
		txn(database.KindExpense, 3333, "Bills", "Jane", day(2024, 3, 3)),
		txn(database.KindExpense, 10, "Pets", "Kid", day(2024, 3, 4)),
		txn(database.KindEarning, 123456, "Salary", "John", day(2024, 3, 5)),
		txn(database.KindEarning, 44, "Gifts", "Kid", day(2024, 3, 6)),
	}
	m := BuildMonthly(2024, 3, txns)

	sumCat := func(b []CategoryBreakdown) (decimal.Decimal, int64) {
		total, n := decimal.Zero, int64(0)
		for _, c := range b {
			total = total.Add(c.Total)
			n += c.Count
		}
		return total, n
	}
	sumPerson := func(b []PersonBreakdown) (decimal.Decimal, int64) {
		total, n := decimal.Zero, int64(0)
		for _, p := range b {
			total = total.Add(p.Total)
			n += p.Count
		}
		return total, n
	}

	total, n := sumCat(m.ExpensesByCategory)
	assert.True(t, total.Equal(m.TotalExpenses))
	assert.Equal(t, m.ExpenseCount, n)
	total, n = sumCat(m.EarningsByCategory)
	assert.True(t, total.Equal(m.TotalEarnings))
	assert.Equal(t, m.EarningCount, n)
	total, n = sumPerson(m.ExpensesByPerson)
	assert.True(t, total.Equal(m.TotalExpenses))
	assert.Equal(t, m.ExpenseCount, n)
	total, n = sumPerson(m.EarningsByPerson)
	assert.True(t, total.Equal(m.TotalEarnings))
	assert.Equal(t, m.EarningCount, n)

	assertDecimal(t, "53.43", m.TotalExpenses)
	assertDecimal(t, "1181.57", m.NetBalance)
}

func TestBreakdownOrder(t *testing.T) {
	m := BuildMonthly(2024, 3, []database.Expense{
		txn(database.KindExpense, 500, "Books", "A", day(2024, 3, 1)),
		txn(database.KindExpense, 900, "Rent", "B", day(2024, 3, 1)),
		txn(database.KindExpense, 500, "Apples", "C", day(2024, 3, 1)),
	})
	var got []string
	for _, c := range m.ExpensesByCategory {
		got = append(got, c.Category)
	}
	assert.Equal(t, []string{"Rent", "Apples", "Books"}, got)
}

func TestBuildMonthlyEmpty(t *testing.T) {
	m := BuildMonthly(2024, 2, nil)
	assert.NotNil(t, m.Transactions)
	assert.Empty(t, m.ExpensesByCategory)
	assert.NotNil(t, m.ExpensesByCategory)
	assert.True(t, m.NetBalance.IsZero())
}

func TestYearlyAlwaysHasTwelveMonths(t *testing.T) {
	cases := []struct {
		name   string
		totals []database.MonthTotal
	}{
		{name: "no data"},
		{name: "one month", totals: []database.MonthTotal{{Month: 6, Kind: database.KindExpense, TotalCents: 100, Count: 1}}},
		{name: "out of range month ignored", totals: []database.MonthTotal{{Month: 13, Kind: database.KindExpense, TotalCents: 100, Count: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y := BuildYearly(2024, tc.totals)
			require.Len(t, y.MonthlyBreakdown, 12)
			for i, slot := range y.MonthlyBreakdown {
				assert.Equal(t, i+1, slot.Month)
			}
		})
	}
}

func TestYearly(t *testing.T) {
	store := openStore(t)
	seed(t, store,
		txn(database.KindExpense, 1000, "Food", "John", day(2024, 1, 15)),
		txn(database.KindExpense, 2050, "Food", "John", day(2024, 1, 20)),
		txn(database.KindEarning, 500000, "Salary", "Jane", day(2024, 1, 31)),
		txn(database.KindExpense, 700, "Food", "Jane", day(2024, 12, 31)),
		txn(database.KindExpense, 9900, "Food", "Jane", day(2025, 1, 1)),
		txn(database.KindExpense, 9900, "Food", "Jane", day(2023, 12, 31)),
	)

	y, err := NewAggregator(store).Yearly(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, y.MonthlyBreakdown, 12)

	jan := y.MonthlyBreakdown[0]
	assertDecimal(t, "30.50", jan.Expenses)
	assertDecimal(t, "5000", jan.Earnings)
	assertDecimal(t, "4969.50", jan.NetBalance)
	assert.Equal(t, int64(2), jan.ExpenseCount)
	assert.Equal(t, int64(1), jan.EarningCount)

	december := y.MonthlyBreakdown[11]
	assertDecimal(t, "7", december.Expenses)
	assertDecimal(t, "-7", december.NetBalance)

	for _, empty := range y.MonthlyBreakdown[1:11] {
		assert.True(t, empty.Expenses.IsZero())
		assert.Zero(t, empty.ExpenseCount)
	}
	assertDecimal(t, "37.50", y.TotalExpenses)
	assertDecimal(t, "4962.50", y.NetBalance)
}

func TestStats(t *testing.T) {
	store := openStore(t)
	seed(t, store,
		txn(database.KindExpense, 1000, "Food", "John", day(2024, 2, 15)),
		txn(database.KindExpense, 2500, "Bills", "John", day(2024, 3, 2)),
		txn(database.KindExpense, 500, "Food", "Jane", day(2024, 3, 9)),
		txn(database.KindEarning, 300000, "Salary", "Jane", day(2024, 3, 1)),
	)

	now := func() time.Time { return time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC) }
	s, err := NewAggregator(store).WithClock(now).Stats(context.Background())
	require.NoError(t, err)

	assertDecimal(t, "40", s.TotalExpenses)
	assertDecimal(t, "3000", s.TotalEarnings)
	assertDecimal(t, "2960", s.NetBalance)
	assertDecimal(t, "30", s.CurrentMonthExpenses)
	assertDecimal(t, "3000", s.CurrentMonthEarnings)
	assertDecimal(t, "2970", s.CurrentMonthNet)

	require.Len(t, s.ExpensesByCategory, 2)
	assert.Equal(t, "Bills", s.ExpensesByCategory[0].Category)
	assertDecimal(t, "15", s.ExpensesByCategory[1].Total)
	assert.Equal(t, int64(2), s.ExpensesByCategory[1].Count)
	require.Len(t, s.EarningsByCategory, 1)
}

func TestWriteMonthlyPDF(t *testing.T) {
	m := BuildMonthly(2024, 3, []database.Expense{
		txn(database.KindExpense, 10000, "Food & Groceries", "John", day(2024, 3, 5)),
		txn(database.KindEarning, 50000, "Salary", "Jane", day(2024, 3, 10)),
	})
	var buf bytes.Buffer
	require.NoError(t, WriteMonthlyPDF(&buf, m))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSignedAmount(t *testing.T) {
	assert.Equal(t, "-12.50", signedAmount(1250, database.KindExpense))
	assert.Equal(t, "0.05", signedAmount(5, database.KindEarning))
}
