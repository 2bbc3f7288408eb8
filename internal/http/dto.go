package http

import (
	"github.com/shopspring/decimal"

	"conti/internal/core"
	"conti/internal/services"
)

// Request bodies. Tags cover shape; cross-field rules stay in core.

type signUpRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	FullName    string `json:"full_name" validate:"required,max=100"`
	InviteToken string `json:"invite_token" validate:"omitempty,hexadecimal,max=128"`
}

func (r signUpRequest) input() services.SignUpInput {
	return services.SignUpInput{
		Email:       r.Email,
		Password:    r.Password,
		FullName:    sanitizeInput(r.FullName),
		InviteToken: r.InviteToken,
	}
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

type inviteRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type categoryRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Icon  string `json:"icon" validate:"required,max=16"`
	Color string `json:"color" validate:"required,hexcolor"`
}

func (r categoryRequest) input() core.CategoryInput {
	return core.CategoryInput{Name: sanitizeInput(r.Name), Icon: r.Icon, Color: r.Color}
}

type subcategoryRequest struct {
	CategoryID string `json:"category_id" validate:"required"`
	Name       string `json:"name" validate:"required,max=100"`
	Icon       string `json:"icon" validate:"required,max=16"`
	Color      string `json:"color" validate:"required,hexcolor"`
}

func (r subcategoryRequest) input() core.SubcategoryInput {
	return core.SubcategoryInput{CategoryID: r.CategoryID, Name: sanitizeInput(r.Name), Icon: r.Icon, Color: r.Color}
}

type expenseRequest struct {
	Amount              core.Money  `json:"amount"`
	CategoryID          string      `json:"category_id" validate:"required"`
	SubcategoryID       string      `json:"subcategory_id"`
	PaymentSourceID     string      `json:"payment_source_id"`
	CreditCardID        string      `json:"credit_card_id"`
	Date                core.Date   `json:"date"`
	Time                string      `json:"time" validate:"omitempty,clock"`
	Notes               string      `json:"notes" validate:"max=500"`
	CustomIcon          string      `json:"custom_icon" validate:"max=16"`
	PaidByUserID        string      `json:"paid_by_user_id"`
	IsShared            bool        `json:"is_shared"`
	AmountPaidByUser    *core.Money `json:"amount_paid_by_user"`
	AmountPaidByPartner *core.Money `json:"amount_paid_by_partner"`
}

func (r expenseRequest) input() core.ExpenseInput {
	return core.ExpenseInput{
		Amount:              r.Amount,
		CategoryID:          r.CategoryID,
		SubcategoryID:       r.SubcategoryID,
		PaymentSourceID:     r.PaymentSourceID,
		CreditCardID:        r.CreditCardID,
		Date:                r.Date,
		Time:                r.Time,
		Notes:               sanitizeInput(r.Notes),
		CustomIcon:          r.CustomIcon,
		PaidByUserID:        r.PaidByUserID,
		IsShared:            r.IsShared,
		AmountPaidByUser:    r.AmountPaidByUser,
		AmountPaidByPartner: r.AmountPaidByPartner,
	}
}

type investmentRequest struct {
	InvestmentTypeID string              `json:"investment_type_id" validate:"required"`
	Amount           core.Money          `json:"amount"`
	Date             core.Date           `json:"date"`
	TransactionType  string              `json:"transaction_type" validate:"required,oneof=deposit withdrawal"`
	Notes            string              `json:"notes" validate:"max=500"`
	MaturityDate     core.Date           `json:"maturity_date"`
	InterestRate     decimal.NullDecimal `json:"interest_rate"`
}

func (r investmentRequest) input() core.InvestmentInput {
	return core.InvestmentInput{
		InvestmentTypeID: r.InvestmentTypeID,
		Amount:           r.Amount,
		Date:             r.Date,
		TransactionType:  core.TransactionType(r.TransactionType),
		Notes:            sanitizeInput(r.Notes),
		MaturityDate:     r.MaturityDate,
		InterestRate:     r.InterestRate,
	}
}

type creditCardRequest struct {
	CardName       string     `json:"card_name" validate:"required,max=100"`
	Last4          string     `json:"card_number_last4" validate:"omitempty,len=4,numeric"`
	CreditLimit    core.Money `json:"credit_limit"`
	OpeningBalance core.Money `json:"opening_balance"`
	DueDate        core.Date  `json:"due_date"`
}

func (r creditCardRequest) input() core.CreditCardInput {
	return core.CreditCardInput{
		CardName:       sanitizeInput(r.CardName),
		Last4:          r.Last4,
		CreditLimit:    r.CreditLimit,
		OpeningBalance: r.OpeningBalance,
		DueDate:        r.DueDate,
	}
}

type repaymentRequest struct {
	CreditCardID string     `json:"credit_card_id" validate:"required"`
	Amount       core.Money `json:"amount"`
	PaymentDate  core.Date  `json:"payment_date"`
	Notes        string     `json:"notes" validate:"max=500"`
}

func (r repaymentRequest) input() core.RepaymentInput {
	return core.RepaymentInput{
		CreditCardID: r.CreditCardID,
		Amount:       r.Amount,
		PaymentDate:  r.PaymentDate,
		Notes:        sanitizeInput(r.Notes),
	}
}

// meResponse is the signed-in user with the active partnership, if any.
type meResponse struct {
	User    core.User     `json:"user"`
	Partner *core.Partner `json:"partner"`
}
