package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ExpenseCategory groups expenses in the monthly summary.
type ExpenseCategory string

const (
	ExpenseFuel   ExpenseCategory = "fuel"
	ExpenseWash   ExpenseCategory = "wash"
	ExpenseRepair ExpenseCategory = "repair"
	ExpenseFluids ExpenseCategory = "fluids"
	ExpenseOther  ExpenseCategory = "other"
)

// ExpenseCategories lists the categories in display order.
var ExpenseCategories = []ExpenseCategory{ExpenseFuel, ExpenseWash, ExpenseRepair, ExpenseFluids, ExpenseOther}

// IsValidExpenseCategory checks if the category is known
func IsValidExpenseCategory(c ExpenseCategory) bool {
	for _, v := range ExpenseCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Expense is one entry of the running-cost ledger. Amount is in tenge and
// Timestamp in unix milliseconds.
type Expense struct {
	ID         string          `json:"id"`
	Timestamp  int64           `json:"ts"`
	Category   ExpenseCategory `json:"category"`
	Amount     float64         `json:"amount"`
	OdometerKm *int            `json:"odometer,omitempty"`
	Note       string          `json:"note,omitempty"`
}

// Time returns the moment the expense was recorded.
func (e Expense) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// ExpenseLedger holds expenses in the order they were added.
type ExpenseLedger []Expense

// DecodeExpenses reads the stored ledger. Non-object entries are dropped,
// an unknown category reads as other and an entry without an id gets one
// derived from its position and timestamp.
func DecodeExpenses(raw []byte) ExpenseLedger {
	var entries []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &entries) != nil {
		return ExpenseLedger{}
	}
	ledger := make(ExpenseLedger, 0, len(entries))
	for pos, e := range entries {
		m, ok := e.(map[string]interface{})
		if !ok {
			continue
		}
		ts := int64(floatField(m, "ts", 0))
		exp := Expense{
			ID:        textField(m, "id", ""),
			Timestamp: ts,
			Category:  ExpenseCategory(textField(m, "category", "")),
			Amount:    floatField(m, "amount", 0),
			Note:      textField(m, "note", ""),
		}
		if !IsValidExpenseCategory(exp.Category) {
			exp.Category = ExpenseOther
		}
		if km := intField(m, "odometer", -1); km >= 0 {
			exp.OdometerKm = &km
		}
		if exp.ID == "" {
			exp.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("expense/%d/%d", pos, ts))).String()
		}
		ledger = append(ledger, exp)
	}
	return ledger
}

// Encode serializes the ledger for storage.
func (l ExpenseLedger) Encode() ([]byte, error) {
	if l == nil {
		l = ExpenseLedger{}
	}
	return json.Marshal([]Expense(l))
}

// Index returns the position of the expense with the given id.
func (l ExpenseLedger) Index(id string) (int, bool) {
	for i, e := range l {
		if e.ID == id {
			return i, true
		}
	}
	return 0, false
}

// MonthlySummary totals the expenses of one calendar month.
type MonthlySummary struct {
	Month      string                      `json:"month"`
	Total      float64                     `json:"total"`
	ByCategory map[ExpenseCategory]float64 `json:"byCategory"`
	Count      int                         `json:"count"`
}

// Monthly sums the expenses recorded in the calendar month containing
// when, with month boundaries taken in when's location. Every category
// is present in ByCategory, zero when unused.
func (l ExpenseLedger) Monthly(when time.Time) MonthlySummary {
	loc := when.Location()
	start := time.Date(when.Year(), when.Month(), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)

	sum := MonthlySummary{
		Month:      start.Format("2006-01"),
		ByCategory: make(map[ExpenseCategory]float64, len(ExpenseCategories)),
	}
	for _, c := range ExpenseCategories {
		sum.ByCategory[c] = 0
	}
	for _, e := range l {
		t := e.Time().In(loc)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		sum.Total += e.Amount
		sum.ByCategory[e.Category] += e.Amount
		sum.Count++
	}
	return sum
}
