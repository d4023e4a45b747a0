package helpers

import (
	"time"

	model "auction-marketplace/internal/models"
)

// Request/Response DTOs

type PlaceBidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID      string `json:"bid_id"`
	AuctionID  string `json:"auction_id"`
	BidderID   string `json:"bidder_id"`
	BidderName string `json:"bidder_name"`
	Amount     string `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

type PlaceBidResponse struct {
	Bid        BidResponse `json:"bid"`
	CurrentBid string      `json:"current_bid"`
}

type AuctionDetailsResponse struct {
	Auction model.Auction `json:"auction"`
	Bids    []BidResponse `json:"bids"`
}

// NewBidResponse renders bid with two-decimal amounts and RFC 3339 times
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:      bid.BidID,
		AuctionID:  bid.AuctionID,
		BidderID:   bid.BidderID,
		BidderName: bid.BidderName,
		Amount:     bid.Amount.StringFixed(2),
		CreatedAt:  bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewBidResponses renders bids, never returning nil
func NewBidResponses(bids []model.Bid) []BidResponse {
	resp := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		resp = append(resp, NewBidResponse(b))
	}
	return resp
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  model.Account `json:"user"`
	Token string        `json:"token"`
}

// RegisterForm is the multipart sign-up form; the profile image travels in field profileImage
type RegisterForm struct {
	UserName               string `form:"userName"`
	Email                  string `form:"email"`
	Password               string `form:"password"`
	Phone                  string `form:"phone"`
	Address                string `form:"address"`
	Role                   string `form:"role"`
	BankAccountNumber      string `form:"bankAccountNumber"`
	BankAccountName        string `form:"bankAccountName"`
	BankName               string `form:"bankName"`
	EasypaisaAccountNumber string `form:"easypaisaAccountNumber"`
	PaypalEmail            string `form:"paypalEmail"`
}

// PaymentMethods returns nil when no payout field was filled in
func (f RegisterForm) PaymentMethods() *model.PaymentMethods {
	if f.BankAccountNumber == "" && f.BankAccountName == "" && f.BankName == "" &&
		f.EasypaisaAccountNumber == "" && f.PaypalEmail == "" {
		return nil
	}
	return &model.PaymentMethods{
		BankTransfer: model.BankTransfer{
			AccountNumber: f.BankAccountNumber,
			AccountName:   f.BankAccountName,
			BankName:      f.BankName,
		},
		Easypaisa: model.Easypaisa{AccountNumber: f.EasypaisaAccountNumber},
		Paypal:    model.Paypal{Email: f.PaypalEmail},
	}
}

// CreateAuctionForm is the multipart listing form; the item image travels in field image
type CreateAuctionForm struct {
	Title       string    `form:"title" binding:"required"`
	Description string    `form:"description" binding:"required"`
	Category    string    `form:"category" binding:"required"`
	Condition   string    `form:"condition" binding:"required"`
	StartingBid float64   `form:"startingBid" binding:"required,gt=0"`
	StartTime   time.Time `form:"startTime" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"endTime" binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ProofForm carries the comment of a payment proof; the file travels in field proof
type ProofForm struct {
	Comment string `form:"comment"`
}

type ReviewRequest struct {
	Status string  `json:"status" binding:"required"`
	Amount float64 `json:"amount" binding:"gte=0"`
}

type MonthlyIncomeResponse struct {
	Year    int      `json:"year"`
	Revenue []string `json:"revenue"`
}
