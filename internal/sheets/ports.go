package sheets

import (
	"context"
	"strconv"
	"time"

	"conti/internal/core"
)

// Header is the first row of a ledger sheet. Row.Values follows this order.
var Header = []any{
	"Recorded At", "Event", "Expense ID", "Date", "Time", "Amount",
	"Category", "Subcategory", "Payment Source", "User", "Shared", "Notes",
}

// Row is one ledger line. Every expense event appends a new row; rows are
// never rewritten, so the sheet is an audit trail of changes.
type Row struct {
	RecordedAt    time.Time
	Event         string
	ExpenseID     string
	Date          core.Date
	Time          string
	Amount        core.Money
	Category      string
	Subcategory   string
	PaymentSource string
	User          string
	Shared        bool
	Notes         string
}

// Values renders the row for a USER_ENTERED write. Amounts go out as plain
// decimals so the sheet can sum them.
func (r Row) Values() []any {
	return []any{
		r.RecordedAt.UTC().Format(time.RFC3339),
		r.Event,
		r.ExpenseID,
		r.Date.String(),
		r.Time,
		r.Amount.String(),
		r.Category,
		r.Subcategory,
		r.PaymentSource,
		r.User,
		strconv.FormatBool(r.Shared),
		r.Notes,
	}
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		Append(ctx context.Context, r Row) (rowRef string, err error)
	}
)
