// Package aggregation turns a raw transaction snapshot into the filtered, summed
// per-month view and resolves the categories it references.
//
// Every function here is pure over its inputs except BuildCategoryIndex, which
// calls the supplied lookup.
package aggregation

import (
	"errors"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MonthlyView is the result of the composed month/category pipeline.
type MonthlyView struct {
	Month    domain.MonthSelector
	Filter   domain.CategoryFilterSet
	Filtered []*domain.Transaction
	Total    decimal.Decimal
	Income   decimal.Decimal
	Expense  decimal.Decimal
	// Skipped holds the records dropped because a field could not be parsed.
	Skipped []*domain.ParseError
}

// FilterByMonth keeps the transactions dated inside month, preserving input order.
// Transactions with malformed dates are dropped.
func FilterByMonth(transactions []*domain.Transaction, month domain.MonthSelector) []*domain.Transaction {
	filtered, _ := filterByMonth(transactions, month)
	return filtered
}

func filterByMonth(transactions []*domain.Transaction, month domain.MonthSelector) ([]*domain.Transaction, []*domain.ParseError) {
	result := make([]*domain.Transaction, 0, len(transactions))
	var skipped []*domain.ParseError
	for _, tx := range transactions {
		if tx == nil {
			continue
		}
		date, err := tx.ParseDate()
		if err != nil {
			var parseErr *domain.ParseError
			if errors.As(err, &parseErr) {
				skipped = append(skipped, parseErr)
			}
			continue
		}
		if month.Contains(date) {
			result = append(result, tx)
		}
	}
	return result, skipped
}

// FilterByCategories keeps the transactions whose category is in filter.
// An empty filter returns the input unchanged; uncategorized transactions never
// pass a non-empty filter.
func FilterByCategories(transactions []*domain.Transaction, filter domain.CategoryFilterSet) []*domain.Transaction {
	if filter.IsEmpty() {
		return transactions
	}
	result := make([]*domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx == nil || !tx.HasCategory() {
			continue
		}
		if filter.Contains(*tx.CategoryID) {
			result = append(result, tx)
		}
	}
	return result
}

// ComputeSignedTotal sums income positively and expenses negatively.
// Accumulation is exact; round only when presenting the result.
func ComputeSignedTotal(transactions []*domain.Transaction) decimal.Decimal {
	t := summarize(transactions)
	return t.total
}

// Totals splits a transaction list into income and expense sums.
func Totals(transactions []*domain.Transaction) (income, expense decimal.Decimal) {
	t := summarize(transactions)
	return t.income, t.expense
}

type summary struct {
	total   decimal.Decimal
	income  decimal.Decimal
	expense decimal.Decimal
	skipped []*domain.ParseError
}

func summarize(transactions []*domain.Transaction) summary {
	s := summary{total: decimal.Zero, income: decimal.Zero, expense: decimal.Zero}
	for _, tx := range transactions {
		if tx == nil {
			continue
		}
		signed, err := tx.SignedAmount()
		if err != nil {
			var parseErr *domain.ParseError
			if errors.As(err, &parseErr) {
				s.skipped = append(s.skipped, parseErr)
			}
			continue
		}
		s.total = s.total.Add(signed)
		if tx.Type == domain.TransactionTypeIncome {
			s.income = s.income.Add(tx.Amount)
		} else {
			s.expense = s.expense.Add(tx.Amount)
		}
	}
	return s
}

// ComputeMonthlyView runs the month filter, then the category filter, then the
// signed total over the result.
func ComputeMonthlyView(transactions []*domain.Transaction, month domain.MonthSelector, filter domain.CategoryFilterSet) MonthlyView {
	inMonth, skipped := filterByMonth(transactions, month)
	filtered := FilterByCategories(inMonth, filter)
	s := summarize(filtered)

	return MonthlyView{
		Month:    month,
		Filter:   filter,
		Filtered: filtered,
		Total:    s.total,
		Income:   s.income,
		Expense:  s.expense,
		Skipped:  append(skipped, s.skipped...),
	}
}
