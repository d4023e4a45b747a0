package mongostore

import (
	"time"

	model "auction-marketplace/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type accountDoc struct {
	ID               string                `bson:"_id"`
	UserName         string                `bson:"user_name"`
	Email            string                `bson:"email"`
	EmailKey         string                `bson:"email_key"`
	PasswordHash     string                `bson:"password_hash"`
	Phone            string                `bson:"phone"`
	Address          string                `bson:"address"`
	Role             string                `bson:"role"`
	ProfileImage     model.Image           `bson:"profile_image"`
	PaymentMethods   *model.PaymentMethods `bson:"payment_methods,omitempty"`
	UnpaidCommission primitive.Decimal128  `bson:"unpaid_commission"`
	MoneySpent       primitive.Decimal128  `bson:"money_spent"`
	AuctionsWon      int                   `bson:"auctions_won"`
	CreatedAt        time.Time             `bson:"created_at"`
}

type bidDoc struct {
	ID         string               `bson:"bid_id"`
	BidderID   string               `bson:"bidder_id"`
	BidderName string               `bson:"bidder_name"`
	Amount     primitive.Decimal128 `bson:"amount"`
	CreatedAt  time.Time            `bson:"created_at"`
}

// auctionDoc embeds its bids so a bid and the current-bid bump land in one document write
type auctionDoc struct {
	ID              string               `bson:"_id"`
	Title           string               `bson:"title"`
	Description     string               `bson:"description"`
	Category        string               `bson:"category"`
	Condition       string               `bson:"condition"`
	Image           model.Image          `bson:"image"`
	StartingBid     primitive.Decimal128 `bson:"starting_bid"`
	CurrentBid      primitive.Decimal128 `bson:"current_bid"`
	HighestBidderID string               `bson:"highest_bidder_id,omitempty"`
	WinnerID        string               `bson:"winner_id,omitempty"`
	BidCount        int                  `bson:"bid_count"`
	Bids            []bidDoc             `bson:"bids,omitempty"`
	StartTime       time.Time            `bson:"start_time"`
	EndTime         time.Time            `bson:"end_time"`
	Status          string               `bson:"status"`
	CreatedBy       string               `bson:"created_by"`
	CreatedAt       time.Time            `bson:"created_at"`
	EndedAt         *time.Time           `bson:"ended_at,omitempty"`
}

type obligationDoc struct {
	ID             string               `bson:"_id"`
	AuctionID      string               `bson:"auction_id"`
	AuctioneerID   string               `bson:"auctioneer_id"`
	AmountOwed     primitive.Decimal128 `bson:"amount_owed"`
	VerifiedAmount primitive.Decimal128 `bson:"verified_amount"`
	Status         string               `bson:"status"`
	Proof          *model.Image         `bson:"proof,omitempty"`
	Comment        string               `bson:"comment,omitempty"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
	ReviewedAt     *time.Time           `bson:"reviewed_at,omitempty"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func newAccountDoc(a model.Account, emailKey string) accountDoc {
	return accountDoc{
		ID:               a.ID,
		UserName:         a.UserName,
		Email:            a.Email,
		EmailKey:         emailKey,
		PasswordHash:     a.PasswordHash,
		Phone:            a.Phone,
		Address:          a.Address,
		Role:             string(a.Role),
		ProfileImage:     a.ProfileImage,
		PaymentMethods:   a.PaymentMethods,
		UnpaidCommission: toDecimal128(a.UnpaidCommission),
		MoneySpent:       toDecimal128(a.MoneySpent),
		AuctionsWon:      a.AuctionsWon,
		CreatedAt:        a.CreatedAt,
	}
}

func (d accountDoc) model() model.Account {
	return model.Account{
		ID:               d.ID,
		UserName:         d.UserName,
		Email:            d.Email,
		PasswordHash:     d.PasswordHash,
		Phone:            d.Phone,
		Address:          d.Address,
		Role:             model.Role(d.Role),
		ProfileImage:     d.ProfileImage,
		PaymentMethods:   d.PaymentMethods,
		UnpaidCommission: fromDecimal128(d.UnpaidCommission),
		MoneySpent:       fromDecimal128(d.MoneySpent),
		AuctionsWon:      d.AuctionsWon,
		CreatedAt:        d.CreatedAt.UTC(),
	}
}

func newBidDoc(b model.Bid) bidDoc {
	return bidDoc{
		ID:         b.BidID,
		BidderID:   b.BidderID,
		BidderName: b.BidderName,
		Amount:     toDecimal128(b.Amount),
		CreatedAt:  b.CreatedAt,
	}
}

func (d bidDoc) model(auctionID string) model.Bid {
	return model.Bid{
		BidID:      d.ID,
		AuctionID:  auctionID,
		BidderID:   d.BidderID,
		BidderName: d.BidderName,
		Amount:     fromDecimal128(d.Amount),
		CreatedAt:  d.CreatedAt.UTC(),
	}
}

func newAuctionDoc(a model.Auction) auctionDoc {
	return auctionDoc{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		Category:        a.Category,
		Condition:       a.Condition,
		Image:           a.Image,
		StartingBid:     toDecimal128(a.StartingBid),
		CurrentBid:      toDecimal128(a.CurrentBid),
		HighestBidderID: a.HighestBidderID,
		WinnerID:        a.WinnerID,
		BidCount:        a.BidCount,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Status:          string(a.Status),
		CreatedBy:       a.CreatedBy,
		CreatedAt:       a.CreatedAt,
		EndedAt:         a.EndedAt,
	}
}

func (d auctionDoc) model() model.Auction {
	a := model.Auction{
		ID:              d.ID,
		Title:           d.Title,
		Description:     d.Description,
		Category:        d.Category,
		Condition:       d.Condition,
		Image:           d.Image,
		StartingBid:     fromDecimal128(d.StartingBid),
		CurrentBid:      fromDecimal128(d.CurrentBid),
		HighestBidderID: d.HighestBidderID,
		WinnerID:        d.WinnerID,
		BidCount:        d.BidCount,
		StartTime:       d.StartTime.UTC(),
		EndTime:         d.EndTime.UTC(),
		Status:          model.AuctionStatus(d.Status),
		CreatedBy:       d.CreatedBy,
		CreatedAt:       d.CreatedAt.UTC(),
	}
	if d.EndedAt != nil {
		endedAt := d.EndedAt.UTC()
		a.EndedAt = &endedAt
	}
	return a
}

func newObligationDoc(o model.CommissionObligation) obligationDoc {
	return obligationDoc{
		ID:             o.ID,
		AuctionID:      o.AuctionID,
		AuctioneerID:   o.AuctioneerID,
		AmountOwed:     toDecimal128(o.AmountOwed),
		VerifiedAmount: toDecimal128(o.VerifiedAmount),
		Status:         string(o.Status),
		Proof:          o.Proof,
		Comment:        o.Comment,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		ReviewedAt:     o.ReviewedAt,
	}
}

func (d obligationDoc) model() model.CommissionObligation {
	o := model.CommissionObligation{
		ID:             d.ID,
		AuctionID:      d.AuctionID,
		AuctioneerID:   d.AuctioneerID,
		AmountOwed:     fromDecimal128(d.AmountOwed),
		VerifiedAmount: fromDecimal128(d.VerifiedAmount),
		Status:         model.ObligationStatus(d.Status),
		Proof:          d.Proof,
		Comment:        d.Comment,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
	if d.ReviewedAt != nil {
		reviewedAt := d.ReviewedAt.UTC()
		o.ReviewedAt = &reviewedAt
	}
	return o
}
