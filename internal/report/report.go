// Package report builds monthly, yearly and lifetime summaries of
// expenses and earnings. Amounts are summed as integer cents and only
// turned into decimals for presentation.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/money"
)

var ErrInvalidPeriod = errors.New("invalid report period")

// Source is the part of the expense store reports read from.
type Source interface {
	ListExpenses(ctx context.Context, filter database.ExpenseFilter) ([]database.Expense, error)
	SumExpensesBy(ctx context.Context, q database.GroupQuery) ([]database.GroupTotal, error)
	SumExpensesByMonth(ctx context.Context, start, end time.Time) ([]database.MonthTotal, error)
}

type CategoryBreakdown struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

type PersonBreakdown struct {
	PaidBy string          `json:"paidBy"`
	Total  decimal.Decimal `json:"total"`
	Count  int64           `json:"count"`
}

type Monthly struct {
	Year               int                 `json:"year"`
	Month              int                 `json:"month"`
	StartDate          time.Time           `json:"startDate"`
	EndDate            time.Time           `json:"endDate"`
	TotalExpenses      decimal.Decimal     `json:"totalExpenses"`
	TotalEarnings      decimal.Decimal     `json:"totalEarnings"`
	NetBalance         decimal.Decimal     `json:"netBalance"`
	ExpenseCount       int64               `json:"expenseCount"`
	EarningCount       int64               `json:"earningCount"`
	Transactions       []database.Expense  `json:"-"`
	ExpensesByCategory []CategoryBreakdown `json:"expensesByCategory"`
	EarningsByCategory []CategoryBreakdown `json:"earningsByCategory"`
	ExpensesByPerson   []PersonBreakdown   `json:"expensesByPerson"`
	EarningsByPerson   []PersonBreakdown   `json:"earningsByPerson"`
}

type MonthSlot struct {
	Month        int             `json:"month"`
	Expenses     decimal.Decimal `json:"expenses"`
	Earnings     decimal.Decimal `json:"earnings"`
	NetBalance   decimal.Decimal `json:"netBalance"`
	ExpenseCount int64           `json:"expenseCount"`
	EarningCount int64           `json:"earningCount"`
}

type Yearly struct {
	Year             int             `json:"year"`
	MonthlyBreakdown []MonthSlot     `json:"monthlyBreakdown"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	TotalEarnings    decimal.Decimal `json:"totalEarnings"`
	NetBalance       decimal.Decimal `json:"netBalance"`
}

type Stats struct {
	TotalExpenses        decimal.Decimal     `json:"totalExpenses"`
	TotalEarnings        decimal.Decimal     `json:"totalEarnings"`
	NetBalance           decimal.Decimal     `json:"netBalance"`
	CurrentMonthExpenses decimal.Decimal     `json:"currentMonthExpenses"`
	CurrentMonthEarnings decimal.Decimal     `json:"currentMonthEarnings"`
	CurrentMonthNet      decimal.Decimal     `json:"currentMonthNet"`
	ExpensesByCategory   []CategoryBreakdown `json:"expensesByCategory"`
	EarningsByCategory   []CategoryBreakdown `json:"earningsByCategory"`
}

// MonthWindow returns [first instant of the month, first instant of the
// next month) in UTC.
func MonthWindow(year, month int) (time.Time, time.Time, error) {
	if err := checkYear(year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}

func checkYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

type Aggregator struct {
	src Source
	now func() time.Time
}

func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src, now: time.Now}
}

func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	cp := *a
	cp.now = now
	return &cp
}

// Monthly loads every transaction of the month, oldest first, and groups
// them in memory.
func (a *Aggregator) Monthly(ctx context.Context, year, month int) (Monthly, error) {
	start, end, err := MonthWindow(year, month)
	if err != nil {
		return Monthly{}, err
	}
	txns, err := a.src.ListExpenses(ctx, database.ExpenseFilter{
		Start: start,
		End:   end,
		Sort:  []database.SortField{{Field: "date"}},
	})
	if err != nil {
		return Monthly{}, fmt.Errorf("listing transactions for %04d-%02d: %w", year, month, err)
	}
	return BuildMonthly(year, month, txns), nil
}

// Yearly sums each month of the year in the database.
func (a *Aggregator) Yearly(ctx context.Context, year int) (Yearly, error) {
	if err := checkYear(year); err != nil {
		return Yearly{}, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	totals, err := a.src.SumExpensesByMonth(ctx, start, start.AddDate(1, 0, 0))
	if err != nil {
		return Yearly{}, fmt.Errorf("summing months of %d: %w", year, err)
	}
	return BuildYearly(year, totals), nil
}

// Stats covers every transaction ever recorded plus the current calendar
// month.
func (a *Aggregator) Stats(ctx context.Context) (Stats, error) {
	now := a.now().UTC()
	monthStart, monthEnd, err := MonthWindow(now.Year(), int(now.Month()))
	if err != nil {
		return Stats{}, err
	}

	lifetime, err := a.src.SumExpensesBy(ctx, database.GroupQuery{Field: database.GroupByKind})
	if err != nil {
		return Stats{}, fmt.Errorf("summing lifetime totals: %w", err)
	}
	current, err := a.src.SumExpensesBy(ctx, database.GroupQuery{
		Field: database.GroupByKind,
		Start: monthStart,
		End:   monthEnd,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("summing current month: %w", err)
	}
	expensesByCategory, err := a.src.SumExpensesBy(ctx, database.GroupQuery{
		Field: database.GroupByCategory,
		Kind:  database.KindExpense,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("summing expenses by category: %w", err)
	}
	earningsByCategory, err := a.src.SumExpensesBy(ctx, database.GroupQuery{
		Field: database.GroupByCategory,
		Kind:  database.KindEarning,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("summing earnings by category: %w", err)
	}

	totalExp, totalEarn := kindTotals(lifetime)
	curExp, curEarn := kindTotals(current)
	return Stats{
		TotalExpenses:        money.FromCents(totalExp),
		TotalEarnings:        money.FromCents(totalEarn),
		NetBalance:           money.FromCents(totalEarn - totalExp),
		CurrentMonthExpenses: money.FromCents(curExp),
		CurrentMonthEarnings: money.FromCents(curEarn),
		CurrentMonthNet:      money.FromCents(curEarn - curExp),
		ExpensesByCategory:   categoryBreakdowns(expensesByCategory),
		EarningsByCategory:   categoryBreakdowns(earningsByCategory),
	}, nil
}

func kindTotals(groups []database.GroupTotal) (expenses, earnings int64) {
	for _, g := range groups {
		switch g.Key {
		case database.KindExpense:
			expenses += g.TotalCents
		case database.KindEarning:
			earnings += g.TotalCents
		}
	}
	return expenses, earnings
}

// BuildMonthly groups one month of transactions. txns is kept as given.
func BuildMonthly(year, month int, txns []database.Expense) Monthly {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	m := Monthly{
		Year:         year,
		Month:        month,
		StartDate:    start,
		EndDate:      start.AddDate(0, 1, 0),
		Transactions: txns,
	}
	if m.Transactions == nil {
		m.Transactions = []database.Expense{}
	}

	expCategory := newGrouper()
	earnCategory := newGrouper()
	expPerson := newGrouper()
	earnPerson := newGrouper()
	var expCents, earnCents int64

	for _, t := range txns {
		switch t.TransactionType {
		case database.KindExpense:
			expCents += t.AmountCents
			m.ExpenseCount++
			expCategory.add(t.Category, t.AmountCents)
			expPerson.add(t.PaidBy, t.AmountCents)
		case database.KindEarning:
			earnCents += t.AmountCents
			m.EarningCount++
			earnCategory.add(t.Category, t.AmountCents)
			earnPerson.add(t.PaidBy, t.AmountCents)
		}
	}

	m.TotalExpenses = money.FromCents(expCents)
	m.TotalEarnings = money.FromCents(earnCents)
	m.NetBalance = money.FromCents(earnCents - expCents)
	m.ExpensesByCategory = categoryBreakdowns(expCategory.totals())
	m.EarningsByCategory = categoryBreakdowns(earnCategory.totals())
	m.ExpensesByPerson = personBreakdowns(expPerson.totals())
	m.EarningsByPerson = personBreakdowns(earnPerson.totals())
	return m
}

// BuildYearly spreads per-month totals over exactly twelve slots. Months
// without transactions are zero.
func BuildYearly(year int, totals []database.MonthTotal) Yearly {
	y := Yearly{Year: year, MonthlyBreakdown: make([]MonthSlot, 12)}
	exp := make([]int64, 12)
	earn := make([]int64, 12)
	for i := range y.MonthlyBreakdown {
		y.MonthlyBreakdown[i].Month = i + 1
	}
	for _, t := range totals {
		if t.Month < 1 || t.Month > 12 {
			continue
		}
		slot := &y.MonthlyBreakdown[t.Month-1]
		switch t.Kind {
		case database.KindExpense:
			exp[t.Month-1] += t.TotalCents
			slot.ExpenseCount += t.Count
		case database.KindEarning:
			earn[t.Month-1] += t.TotalCents
			slot.EarningCount += t.Count
		}
	}

	for i := range y.MonthlyBreakdown {
		slot := &y.MonthlyBreakdown[i]
		slot.Expenses = money.FromCents(exp[i])
		slot.Earnings = money.FromCents(earn[i])
		slot.NetBalance = money.FromCents(earn[i] - exp[i])
	}
	expTotal, earnTotal := money.Sum(exp...), money.Sum(earn...)
	y.TotalExpenses = money.FromCents(expTotal)
	y.TotalEarnings = money.FromCents(earnTotal)
	y.NetBalance = money.FromCents(earnTotal - expTotal)
	return y
}

type grouper struct {
	index map[string]int
	items []database.GroupTotal
}

func newGrouper() *grouper {
	return &grouper{index: map[string]int{}}
}

func (g *grouper) add(key string, cents int64) {
	i, ok := g.index[key]
	if !ok {
		i = len(g.items)
		g.index[key] = i
		g.items = append(g.items, database.GroupTotal{Key: key})
	}
	g.items[i].TotalCents += cents
	g.items[i].Count++
}

func (g *grouper) totals() []database.GroupTotal {
	return g.items
}

// sortGroups orders by total descending, then key ascending.
func sortGroups(groups []database.GroupTotal) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].TotalCents != groups[j].TotalCents {
			return groups[i].TotalCents > groups[j].TotalCents
		}
		return groups[i].Key < groups[j].Key
	})
}

func categoryBreakdowns(groups []database.GroupTotal) []CategoryBreakdown {
	sortGroups(groups)
	out := make([]CategoryBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, CategoryBreakdown{Category: g.Key, Total: money.FromCents(g.TotalCents), Count: g.Count})
	}
	return out
}

func personBreakdowns(groups []database.GroupTotal) []PersonBreakdown {
	sortGroups(groups)
	out := make([]PersonBreakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, PersonBreakdown{PaidBy: g.Key, Total: money.FromCents(g.TotalCents), Count: g.Count})
	}
	return out
}
