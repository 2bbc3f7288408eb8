package core

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxNotesLength = 500
	maxNameLength  = 100
)

var (
	timeRe  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)
	colorRe = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	last4Re = regexp.MustCompile(`^\d{4}$`)
)

// ValidationError carries every problem found in an input, in order.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type problems []string

func (p *problems) add(format string, args ...any) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Problems: p}
}

// NormalizeTime turns HH:MM into HH:MM:SS and leaves anything else alone.
func NormalizeTime(s string) string {
	s = strings.TrimSpace(s)
	if len(s) == 5 && s[2] == ':' {
		return s + ":00"
	}
	return s
}

func ValidTime(s string) bool { return timeRe.MatchString(s) }

func ValidColor(s string) bool { return colorRe.MatchString(s) }

// ValidEmail applies the loose address check used at invite time and a
// stricter RFC 5322 parse.
func ValidEmail(s string) bool {
	if !emailRe.MatchString(s) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type ExpenseInput struct {
	Amount              Money
	CategoryID          string
	SubcategoryID       string
	PaymentSourceID     string
	CreditCardID        string
	Date                Date
	Time                string
	Notes               string
	CustomIcon          string
	PaidByUserID        string
	IsShared            bool
	AmountPaidByUser    *Money
	AmountPaidByPartner *Money
}

func (in ExpenseInput) Validate() error {
	var p problems
	if in.Amount.Cents <= 0 {
		p.add("Amount must be greater than 0")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		p.add("Category is required")
	}
	if in.Date.IsZero() {
		p.add("Date is required")
	} else {
		validateDate(&p, "Date", in.Date)
	}
	if in.Time != "" && !ValidTime(in.Time) {
		p.add("Invalid time format")
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		p.add("Notes too long (max %d characters)", maxNotesLength)
	}
	if in.IsShared && (in.AmountPaidByUser != nil || in.AmountPaidByPartner != nil) {
		var user, partner Money
		if in.AmountPaidByUser != nil {
			user = *in.AmountPaidByUser
		}
		if in.AmountPaidByPartner != nil {
			partner = *in.AmountPaidByPartner
		}
		if total := user.Add(partner); total != in.Amount {
			p.add("Split amounts (₹%s) must equal total expense (₹%s)", total, in.Amount)
		}
		if user.Cents < 0 || partner.Cents < 0 {
			p.add("Split amounts cannot be negative")
		}
		if user.Cents > in.Amount.Cents || partner.Cents > in.Amount.Cents {
			p.add("Split amounts cannot exceed total expense amount")
		}
	}
	return p.err()
}

// Normalize trims free text and drops split amounts on private expenses.
func (in ExpenseInput) Normalize() ExpenseInput {
	in.Notes = strings.TrimSpace(in.Notes)
	in.Time = NormalizeTime(in.Time)
	if !in.IsShared {
		in.AmountPaidByUser = nil
		in.AmountPaidByPartner = nil
	}
	return in
}

type CategoryInput struct {
	Name  string
	Icon  string
	Color string
}

func (in CategoryInput) Validate() error {
	var p problems
	validateLabel(&p, "Category", in.Name, in.Icon, in.Color)
	return p.err()
}

type SubcategoryInput struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
}

func (in SubcategoryInput) Validate() error {
	var p problems
	if strings.TrimSpace(in.CategoryID) == "" {
		p.add("Category is required")
	}
	validateLabel(&p, "Subcategory", in.Name, in.Icon, in.Color)
	return p.err()
}

func validateDate(p *problems, field string, d Date) {
	if err := d.Validate(); err != nil {
		if errors.Is(err, ErrInvalidYear) {
			p.add("%s must be between %d and %d", field, MinYear, MaxYear)
			return
		}
		p.add("Invalid %s format", strings.ToLower(field))
	}
}

func validateLabel(p *problems, kind, name, icon, color string) {
	name = strings.TrimSpace(name)
	if name == "" {
		p.add("%s name is required", kind)
	} else if utf8.RuneCountInString(name) > maxNameLength {
		p.add("%s name too long (max %d characters)", kind, maxNameLength)
	}
	if icon == "" {
		p.add("Icon is required")
	}
	if color == "" {
		p.add("Color is required")
	} else if !ValidColor(color) {
		p.add("Invalid color format")
	}
}

type InvestmentInput struct {
	InvestmentTypeID string
	Amount           Money
	Date             Date
	TransactionType  TransactionType
	Notes            string
	MaturityDate     Date
	InterestRate     decimal.NullDecimal
}

func (in InvestmentInput) Validate() error {
	var p problems
	if strings.TrimSpace(in.InvestmentTypeID) == "" {
		p.add("Investment type is required")
	}
	if in.Amount.Cents <= 0 {
		p.add("Amount must be greater than 0")
	}
	if in.Date.IsZero() {
		p.add("Date is required")
	} else {
		validateDate(&p, "Date", in.Date)
	}
	if !in.MaturityDate.IsZero() {
		validateDate(&p, "Maturity date", in.MaturityDate)
	}
	switch in.TransactionType {
	case Deposit, Withdrawal:
	default:
		p.add("Transaction type must be deposit or withdrawal")
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		p.add("Notes too long (max %d characters)", maxNotesLength)
	}
	if !in.MaturityDate.IsZero() && !in.Date.IsZero() && in.MaturityDate.Before(in.Date) {
		p.add("Maturity date cannot be before the investment date")
	}
	if in.InterestRate.Valid {
		r := in.InterestRate.Decimal
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(100)) {
			p.add("Interest rate must be between 0 and 100")
		}
	}
	return p.err()
}

type CreditCardInput struct {
	CardName       string
	Last4          string
	CreditLimit    Money
	OpeningBalance Money
	DueDate        Date
}

func (in CreditCardInput) Validate() error {
	var p problems
	if name := strings.TrimSpace(in.CardName); name == "" {
		p.add("Card name is required")
	} else if utf8.RuneCountInString(name) > maxNameLength {
		p.add("Card name too long (max %d characters)", maxNameLength)
	}
	if in.Last4 != "" && !last4Re.MatchString(in.Last4) {
		p.add("Card number must be the last 4 digits")
	}
	if in.CreditLimit.Cents < 0 {
		p.add("Credit limit cannot be negative")
	}
	if in.OpeningBalance.Cents < 0 {
		p.add("Balance cannot be negative")
	}
	if !in.DueDate.IsZero() {
		validateDate(&p, "Due date", in.DueDate)
	}
	return p.err()
}

type RepaymentInput struct {
	CreditCardID string
	Amount       Money
	PaymentDate  Date
	Notes        string
}

func (in RepaymentInput) Validate() error {
	var p problems
	if strings.TrimSpace(in.CreditCardID) == "" {
		p.add("Credit card is required")
	}
	if in.Amount.Cents <= 0 {
		p.add("Amount must be greater than 0")
	}
	if in.PaymentDate.IsZero() {
		p.add("Payment date is required")
	} else {
		validateDate(&p, "Payment date", in.PaymentDate)
	}
	if utf8.RuneCountInString(in.Notes) > maxNotesLength {
		p.add("Notes too long (max %d characters)", maxNotesLength)
	}
	return p.err()
}
