package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/money"
)

// WriteMonthlyPDF renders m as a single A4 document: totals, the
// breakdowns and the transaction list.
func WriteMonthlyPDF(w io.Writer, m Monthly) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	title := fmt.Sprintf("Hearth Report %s %d", time.Month(m.Month), m.Year)
	pdf.SetTitle(title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Expenses: %s (%d)", m.TotalExpenses.StringFixed(2), m.ExpenseCount))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Earnings: %s (%d)", m.TotalEarnings.StringFixed(2), m.EarningCount))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Net balance: "+m.NetBalance.StringFixed(2))
	pdf.Ln(10)

	breakdownTable(pdf, tr, "Expenses by category", "Category", categoryRows(m.ExpensesByCategory))
	breakdownTable(pdf, tr, "Earnings by category", "Category", categoryRows(m.EarningsByCategory))
	breakdownTable(pdf, tr, "Expenses by person", "Paid by", personRows(m.ExpensesByPerson))
	breakdownTable(pdf, tr, "Earnings by person", "Paid by", personRows(m.EarningsByPerson))

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Transactions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(25, 6, "Date")
	pdf.Cell(65, 6, "Description")
	pdf.Cell(35, 6, "Category")
	pdf.Cell(30, 6, "Paid by")
	pdf.CellFormat(30, 6, "Amount", "", 0, "R", false, 0, "")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 10)
	for _, t := range m.Transactions {
		amount := signedAmount(t.AmountCents, t.TransactionType)
		pdf.Cell(25, 6, t.Date.Format("2006-01-02"))
		pdf.Cell(65, 6, tr(truncate(t.Description, 38)))
		pdf.Cell(35, 6, tr(truncate(t.Category, 20)))
		pdf.Cell(30, 6, tr(truncate(t.PaidBy, 16)))
		pdf.CellFormat(30, 6, amount, "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

type row struct {
	label string
	total decimal.Decimal
	count int64
}

func categoryRows(b []CategoryBreakdown) []row {
	rows := make([]row, 0, len(b))
	for _, c := range b {
		rows = append(rows, row{c.Category, c.Total, c.Count})
	}
	return rows
}

func personRows(b []PersonBreakdown) []row {
	rows := make([]row, 0, len(b))
	for _, p := range b {
		rows = append(rows, row{p.PaidBy, p.Total, p.Count})
	}
	return rows
}

func breakdownTable(pdf *gofpdf.Fpdf, tr func(string) string, heading, label string, rows []row) {
	if len(rows) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, heading)
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(80, 7, label)
	pdf.CellFormat(40, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Count", "", 0, "R", false, 0, "")
	pdf.Ln(7)

	pdf.SetFont("Helvetica", "", 11)
	for _, r := range rows {
		pdf.Cell(80, 7, tr(truncate(r.label, 45)))
		pdf.CellFormat(40, 7, r.total.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, fmt.Sprint(r.count), "", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(4)
}

// signedAmount formats an amount with a leading minus for expenses.
func signedAmount(cents int64, kind string) string {
	d := money.FromCents(cents)
	if kind == database.KindExpense {
		d = d.Neg()
	}
	return d.StringFixed(2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
