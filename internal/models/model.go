package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies what an account is allowed to do on the marketplace
type Role string

const (
	RoleBidder     Role = "Bidder"
	RoleAuctioneer Role = "Auctioneer"
	RoleSuperAdmin Role = "Super Admin"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleBidder, RoleAuctioneer, RoleSuperAdmin:
		return true
	}
	return false
}

// Image is a hosted file reference as returned by the image host
type Image struct {
	PublicID string `json:"public_id" bson:"public_id"`
	URL      string `json:"url" bson:"url"`
}

// BankTransfer holds an auctioneer's bank account details
type BankTransfer struct {
	AccountNumber string `json:"bank_account_number" bson:"bank_account_number"`
	AccountName   string `json:"bank_account_name" bson:"bank_account_name"`
	BankName      string `json:"bank_name" bson:"bank_name"`
}

// Easypaisa holds an auctioneer's mobile wallet account
type Easypaisa struct {
	AccountNumber string `json:"easypaisa_account_number" bson:"easypaisa_account_number"`
}

// Paypal holds an auctioneer's PayPal account
type Paypal struct {
	Email string `json:"paypal_email" bson:"paypal_email"`
}

// PaymentMethods are the payout details every auctioneer must provide
type PaymentMethods struct {
	BankTransfer BankTransfer `json:"bank_transfer" bson:"bank_transfer"`
	Easypaisa    Easypaisa    `json:"easypaisa" bson:"easypaisa"`
	Paypal       Paypal       `json:"paypal" bson:"paypal"`
}

// Complete reports whether every payout field is filled in
func (p PaymentMethods) Complete() bool {
	return p.BankTransfer.AccountNumber != "" &&
		p.BankTransfer.AccountName != "" &&
		p.BankTransfer.BankName != "" &&
		p.Easypaisa.AccountNumber != "" &&
		p.Paypal.Email != ""
}

// Account represents a registered marketplace user
type Account struct {
	ID               string          `json:"id"`
	UserName         string          `json:"user_name"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"-"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	Role             Role            `json:"role"`
	ProfileImage     Image           `json:"profile_image"`
	PaymentMethods   *PaymentMethods `json:"payment_methods,omitempty"`
	UnpaidCommission decimal.Decimal `json:"unpaid_commission"`
	MoneySpent       decimal.Decimal `json:"money_spent"`
	AuctionsWon      int             `json:"auctions_won"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Bid represents an accepted bid on an auction. Bids are never modified.
type Bid struct {
	BidID      string          `json:"bid_id"`
	AuctionID  string          `json:"auction_id"`
	BidderID   string          `json:"bidder_id"`
	BidderName string          `json:"bidder_name"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
}
