package core

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PartnerPending PartnerStatus = "pending"
	PartnerActive  PartnerStatus = "active"
	PartnerBlocked PartnerStatus = "blocked"
)

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
	InvitationExpired  InvitationStatus = "expired"
)

const (
	SourceCreditCard     PaymentSourceType = "credit_card"
	SourceSavingsAccount PaymentSourceType = "savings_account"
)

const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

type (
	PartnerStatus     string
	InvitationStatus  string
	PaymentSourceType string
	TransactionType   string

	User struct {
		ID           string    `json:"id"`
		Email        string    `json:"email"`
		FullName     string    `json:"full_name"`
		PasswordHash string    `json:"-"`
		PartnerID    string    `json:"partner_id,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Partner links two users. Both sides see each other's expenses
	// while the link is active.
	Partner struct {
		ID          string        `json:"id"`
		User1ID     string        `json:"user1_id"`
		User2ID     string        `json:"user2_id"`
		Status      PartnerStatus `json:"status"`
		InitiatedBy string        `json:"initiated_by"`
		CreatedAt   time.Time     `json:"created_at"`
		UpdatedAt   time.Time     `json:"updated_at"`
	}

	Invitation struct {
		ID         string           `json:"id"`
		FromUserID string           `json:"from_user_id"`
		ToEmail    string           `json:"to_email"`
		Token      string           `json:"token"`
		Status     InvitationStatus `json:"status"`
		ExpiresAt  time.Time        `json:"expires_at"`
		CreatedAt  time.Time        `json:"created_at"`
	}

	// Category with an empty UserID is a default shared by every account.
	Category struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Icon      string    `json:"icon"`
		Color     string    `json:"color"`
		UserID    string    `json:"user_id,omitempty"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}

	Subcategory struct {
		ID         string    `json:"id"`
		CategoryID string    `json:"category_id"`
		Name       string    `json:"name"`
		Icon       string    `json:"icon"`
		Color      string    `json:"color"`
		CreatedAt  time.Time `json:"created_at"`
		UpdatedAt  time.Time `json:"updated_at"`
	}

	PaymentSource struct {
		ID        string            `json:"id"`
		Name      string            `json:"name"`
		Type      PaymentSourceType `json:"type"`
		Icon      string            `json:"icon"`
		CreatedAt time.Time         `json:"created_at"`
		UpdatedAt time.Time         `json:"updated_at"`
	}

	// CreditCard tracks a running balance. CurrentBalance is derived from
	// OpeningBalance, the expenses charged to the card and its repayments.
	CreditCard struct {
		ID             string    `json:"id"`
		UserID         string    `json:"user_id"`
		CardName       string    `json:"card_name"`
		Last4          string    `json:"card_number_last4,omitempty"`
		CreditLimit    Money     `json:"credit_limit"`
		OpeningBalance Money     `json:"opening_balance"`
		CurrentBalance Money     `json:"current_balance"`
		DueDate        Date      `json:"due_date"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}

	Repayment struct {
		ID           string    `json:"id"`
		UserID       string    `json:"user_id"`
		CreditCardID string    `json:"credit_card_id"`
		Amount       Money     `json:"amount"`
		PaymentDate  Date      `json:"payment_date"`
		Notes        string    `json:"notes,omitempty"`
		CreatedAt    time.Time `json:"created_at"`
		UpdatedAt    time.Time `json:"updated_at"`
	}

	Expense struct {
		ID                  string     `json:"id"`
		UserID              string     `json:"user_id"`
		PartnerID           string     `json:"partner_id,omitempty"`
		Amount              Money      `json:"amount"`
		CategoryID          string     `json:"category_id"`
		SubcategoryID       string     `json:"subcategory_id,omitempty"`
		PaymentSourceID     string     `json:"payment_source_id,omitempty"`
		CreditCardID        string     `json:"credit_card_id,omitempty"`
		Date                Date       `json:"date"`
		Time                string     `json:"time,omitempty"`
		Notes               string     `json:"notes,omitempty"`
		CustomIcon          string     `json:"custom_icon,omitempty"`
		PaidByUserID        string     `json:"paid_by_user_id,omitempty"`
		IsShared            bool       `json:"is_shared"`
		AmountPaidByUser    *Money     `json:"amount_paid_by_user,omitempty"`
		AmountPaidByPartner *Money     `json:"amount_paid_by_partner,omitempty"`
		CreatedAt           time.Time  `json:"created_at"`
		UpdatedAt           time.Time  `json:"updated_at"`
		DeletedAt           *time.Time `json:"deleted_at,omitempty"`
	}

	InvestmentType struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Icon string `json:"icon"`
	}

	Investment struct {
		ID               string              `json:"id"`
		UserID           string              `json:"user_id"`
		InvestmentTypeID string              `json:"investment_type_id"`
		Amount           Money               `json:"amount"`
		Date             Date                `json:"date"`
		TransactionType  TransactionType     `json:"transaction_type"`
		Notes            string              `json:"notes,omitempty"`
		MaturityDate     Date                `json:"maturity_date"`
		InterestRate     decimal.NullDecimal `json:"interest_rate"`
		CreatedAt        time.Time           `json:"created_at"`
		UpdatedAt        time.Time           `json:"updated_at"`
		DeletedAt        *time.Time          `json:"deleted_at,omitempty"`
	}
)

var (
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrUnauthorized  = errors.New("unauthorized")
)

// Has reports whether userID is one side of the partnership.
func (p Partner) Has(userID string) bool {
	return userID != "" && (p.User1ID == userID || p.User2ID == userID)
}

// Other returns the member that is not userID.
func (p Partner) Other(userID string) string {
	if p.User1ID == userID {
		return p.User2ID
	}
	return p.User1ID
}

func (p Partner) Members() []string {
	return []string{p.User1ID, p.User2ID}
}

func (i Invitation) Expired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

func (c Category) IsDefault() bool {
	return c.UserID == ""
}

// Signed returns the amount as it affects the investment balance.
func (i Investment) Signed() Money {
	if i.TransactionType == Withdrawal {
		return Money{Cents: -i.Amount.Cents}
	}
	return i.Amount
}

// Deleted reports whether the expense was soft deleted.
func (e Expense) Deleted() bool {
	return e.DeletedAt != nil
}
