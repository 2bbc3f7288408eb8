package sheets

import (
	"testing"
	"time"

	"conti/internal/core"
)

func TestRowValues(t *testing.T) {
	r := Row{
		RecordedAt:    time.Date(2025, 3, 4, 10, 30, 0, 0, time.FixedZone("IST", 19800)),
		Event:         "expense.updated",
		ExpenseID:     "e1",
		Date:          core.NewDate(2025, 3, 4),
		Time:          "09:15:00",
		Amount:        core.Cents(5000),
		Category:      "Food",
		Subcategory:   "Groceries",
		PaymentSource: "Savings Account",
		User:          "Ana",
		Notes:         "weekly shop",
	}
	got := r.Values()
	want := []any{
		"2025-03-04T05:00:00Z", "expense.updated", "e1", "2025-03-04", "09:15:00", "50.00",
		"Food", "Groceries", "Savings Account", "Ana", "false", "weekly shop",
	}
	if len(got) != len(Header) {
		t.Fatalf("got %d columns, header has %d", len(got), len(Header))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d (%v) = %v, want %v", i, Header[i], got[i], want[i])
		}
	}
}
