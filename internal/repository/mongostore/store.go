// Package mongostore persists the marketplace in MongoDB.
//
// Bids are embedded in their auction document, so placing a bid is a single
// conditional document update. Settlement and commission review touch several
// documents and run inside a transaction, which requires a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-marketplace/internal/auctionerrors"
	model "auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection    = "accounts"
	auctionsCollection    = "auctions"
	obligationsCollection = "commission_obligations"
)

// Store implements repository.Store backed by MongoDB
type Store struct {
	client      *mongo.Client
	accounts    *mongo.Collection
	auctions    *mongo.Collection
	obligations *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and prepares indexes
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := New(client, database)
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// New wraps an already connected client
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:      client,
		accounts:    db.Collection(accountsCollection),
		auctions:    db.Collection(auctionsCollection),
		obligations: db.Collection(obligationsCollection),
	}
}

// EnsureIndexes creates the indexes the queries rely on
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if _, err := s.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create account email index: %w", err)
	}
	if _, err := s.auctions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "bids.bidder_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("create auction indexes: %w", err)
	}
	if _, err := s.obligations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "auction_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create obligation index: %w", err)
	}
	return nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// storeError tags driver failures the caller may retry
func storeError(op string, err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%s: %w: %v", op, auctionerrors.ErrTransientStore, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// withoutBids keeps listing queries from loading every embedded bid
var withoutBids = bson.D{{Key: "bids", Value: 0}}

// --- AccountStore -----------------------------------------------------------

func (s *Store) CreateAccount(ctx context.Context, acct model.Account) error {
	_, err := s.accounts.InsertOne(ctx, newAccountDoc(acct, strings.ToLower(acct.Email)))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create account %s: %w", acct.Email, auctionerrors.ErrAlreadyRegistered)
	}
	if err != nil {
		return storeError("create account", err)
	}
	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (model.Account, error) {
	return s.findAccount(ctx, bson.M{"_id": id}, id)
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (model.Account, error) {
	return s.findAccount(ctx, bson.M{"email_key": strings.ToLower(email)}, email)
}

func (s *Store) findAccount(ctx context.Context, filter bson.M, key string) (model.Account, error) {
	var doc accountDoc
	err := s.accounts.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Account{}, fmt.Errorf("get account %s: %w", key, auctionerrors.ErrAccountNotFound)
	}
	if err != nil {
		return model.Account{}, storeError("get account", err)
	}
	return doc.model(), nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]model.Account, error) {
	cur, err := s.accounts.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	var docs []accountDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError("list accounts", err)
	}

	accounts := make([]model.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.model())
	}
	return accounts, nil
}

// --- AuctionStore -----------------------------------------------------------

func (s *Store) CreateAuction(ctx context.Context, auction model.Auction) error {
	_, err := s.auctions.InsertOne(ctx, newAuctionDoc(auction))
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("create auction %s: %w", auction.ID, auctionerrors.ErrConflict)
	}
	if err != nil {
		return storeError("create auction", err)
	}
	return nil
}

func (s *Store) GetAuction(ctx context.Context, id string) (model.Auction, error) {
	var doc auctionDoc
	err := s.auctions.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(withoutBids)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, storeError("get auction", err)
	}
	return doc.model(), nil
}

func (s *Store) ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}
	return s.findAuctions(ctx, "list auctions", query)
}

func (s *Store) DeleteAuction(ctx context.Context, id string) error {
	res, err := s.auctions.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete auction", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("delete auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	return nil
}

func (s *Store) ListDueForActivation(ctx context.Context, now time.Time) ([]model.Auction, error) {
	return s.findAuctions(ctx, "list auctions due for activation", bson.M{
		"status":     string(model.AuctionPending),
		"start_time": bson.M{"$lte": now},
	})
}

func (s *Store) ActivateAuction(ctx context.Context, id string, now time.Time) (model.Auction, error) {
	var doc auctionDoc
	err := s.auctions.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": string(model.AuctionPending), "start_time": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"status": string(model.AuctionActive)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutBids),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := s.GetAuction(ctx, id)
		if getErr != nil {
			return model.Auction{}, getErr
		}
		return model.Auction{}, fmt.Errorf("activate auction %s in status %s: %w", id, current.Status, auctionerrors.ErrInvalidStateTransition)
	}
	if err != nil {
		return model.Auction{}, storeError("activate auction", err)
	}
	return doc.model(), nil
}

func (s *Store) ListDueForSettlement(ctx context.Context, now time.Time) ([]model.Auction, error) {
	return s.findAuctions(ctx, "list auctions due for settlement", bson.M{
		"status":   string(model.AuctionActive),
		"end_time": bson.M{"$lte": now},
	})
}

func (s *Store) findAuctions(ctx context.Context, op string, query bson.M) ([]model.Auction, error) {
	opts := options.Find().SetProjection(withoutBids).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := s.auctions.Find(ctx, query, opts)
	if err != nil {
		return nil, storeError(op, err)
	}
	var docs []auctionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError(op, err)
	}

	auctions := make([]model.Auction, 0, len(docs))
	for _, d := range docs {
		auctions = append(auctions, d.model())
	}
	return auctions, nil
}

// --- BidLedger --------------------------------------------------------------

func (s *Store) PlaceBid(ctx context.Context, bid model.Bid, now time.Time) (model.Auction, error) {
	amount := toDecimal128(bid.Amount)
	filter := bson.M{
		"_id":         bid.AuctionID,
		"status":      string(model.AuctionActive),
		"end_time":    bson.M{"$gt": now},
		"current_bid": bson.M{"$lt": amount},
	}
	update := bson.M{
		"$set":  bson.M{"current_bid": amount, "highest_bidder_id": bid.BidderID},
		"$inc":  bson.M{"bid_count": 1},
		"$push": bson.M{"bids": newBidDoc(bid)},
	}

	var doc auctionDoc
	err := s.auctions.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutBids),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		current, getErr := s.GetAuction(ctx, bid.AuctionID)
		if getErr != nil {
			return model.Auction{}, getErr
		}
		if reason := repository.ClassifyBidRejection(current, bid.Amount, now); reason != nil {
			return model.Auction{}, reason
		}
		return model.Auction{}, fmt.Errorf("place bid on auction %s: %w", bid.AuctionID, auctionerrors.ErrConflict)
	}
	if err != nil {
		return model.Auction{}, storeError("place bid", err)
	}
	return doc.model(), nil
}

func (s *Store) auctionBids(ctx context.Context, auctionID string) ([]model.Bid, error) {
	var doc auctionDoc
	err := s.auctions.FindOne(ctx, bson.M{"_id": auctionID},
		options.FindOne().SetProjection(bson.D{{Key: "bids", Value: 1}})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return nil, storeError("get bids", err)
	}
	if len(doc.Bids) == 0 {
		return nil, fmt.Errorf("get bids for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}

	bids := make([]model.Bid, 0, len(doc.Bids))
	// every accepted bid beat the one before it, so reverse order is highest first
	for i := len(doc.Bids) - 1; i >= 0; i-- {
		bids = append(bids, doc.Bids[i].model(auctionID))
	}
	return bids, nil
}

func (s *Store) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	return s.auctionBids(ctx, auctionID)
}

func (s *Store) GetWinningBid(ctx context.Context, auctionID string) (model.Bid, error) {
	bids, err := s.auctionBids(ctx, auctionID)
	if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
		return model.Bid{}, fmt.Errorf("get winning bid for auction %s: %w", auctionID, auctionerrors.ErrNoBids)
	}
	if err != nil {
		return model.Bid{}, err
	}
	return bids[0], nil
}

func (s *Store) GetAuctionsByBidder(ctx context.Context, bidderID string) ([]model.Auction, error) {
	auctions, err := s.findAuctions(ctx, "get auctions for bidder", bson.M{"bids.bidder_id": bidderID})
	if err != nil {
		return nil, err
	}
	if len(auctions) == 0 {
		return nil, fmt.Errorf("get auctions for bidder %s: %w", bidderID, auctionerrors.ErrNoBids)
	}
	return auctions, nil
}

// --- CommissionLedger -------------------------------------------------------

func (s *Store) GetObligation(ctx context.Context, id string) (model.CommissionObligation, error) {
	var doc obligationDoc
	err := s.obligations.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.CommissionObligation{}, fmt.Errorf("get obligation %s: %w", id, auctionerrors.ErrObligationNotFound)
	}
	if err != nil {
		return model.CommissionObligation{}, storeError("get obligation", err)
	}
	return doc.model(), nil
}

func (s *Store) ListObligations(ctx context.Context, filter model.ObligationFilter) ([]model.CommissionObligation, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.AuctioneerID != "" {
		query["auctioneer_id"] = filter.AuctioneerID
	}

	cur, err := s.obligations.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, storeError("list obligations", err)
	}
	var docs []obligationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, storeError("list obligations", err)
	}

	result := make([]model.CommissionObligation, 0, len(docs))
	for _, d := range docs {
		result = append(result, d.model())
	}
	return result, nil
}

func (s *Store) TransitionObligation(ctx context.Context, id string, from, to model.ObligationStatus, mutate func(*model.CommissionObligation)) (model.CommissionObligation, error) {
	current, err := s.GetObligation(ctx, id)
	if err != nil {
		return model.CommissionObligation{}, err
	}
	if current.Status != from || !from.CanTransitionTo(to) {
		return model.CommissionObligation{}, fmt.Errorf("transition obligation %s from %s to %s (is %s): %w", id, from, to, current.Status, auctionerrors.ErrInvalidStateTransition)
	}

	next := current
	if mutate != nil {
		mutate(&next)
	}
	next.Status = to

	res, err := s.obligations.ReplaceOne(ctx, bson.M{"_id": id, "status": string(from)}, newObligationDoc(next))
	if err != nil {
		return model.CommissionObligation{}, storeError("transition obligation", err)
	}
	if res.MatchedCount == 0 {
		return model.CommissionObligation{}, fmt.Errorf("transition obligation %s from %s: %w", id, from, auctionerrors.ErrInvalidStateTransition)
	}
	return next, nil
}

func (s *Store) ApplyReview(ctx context.Context, id string, to model.ObligationStatus, amount decimal.Decimal, at time.Time) (model.CommissionObligation, error) {
	if !model.ObligationProofSubmitted.CanTransitionTo(to) {
		return model.CommissionObligation{}, fmt.Errorf("review obligation %s to %s: %w", id, to, auctionerrors.ErrInvalidStateTransition)
	}

	result, err := s.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		set := bson.M{"status": string(to), "reviewed_at": at, "updated_at": at}
		if to == model.ObligationVerified {
			set["verified_amount"] = toDecimal128(amount)
		}

		var doc obligationDoc
		err := s.obligations.FindOneAndUpdate(sc,
			bson.M{"_id": id, "status": string(model.ObligationProofSubmitted)},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			current, getErr := s.GetObligation(sc, id)
			if getErr != nil {
				return nil, getErr
			}
			return nil, fmt.Errorf("review obligation %s from %s to %s: %w", id, current.Status, to, auctionerrors.ErrInvalidStateTransition)
		}
		if err != nil {
			return nil, err
		}

		if to == model.ObligationVerified {
			floored := mongo.Pipeline{{{Key: "$set", Value: bson.M{
				"unpaid_commission": bson.M{"$max": bson.A{
					bson.M{"$subtract": bson.A{"$unpaid_commission", toDecimal128(amount)}},
					toDecimal128(decimal.Zero),
				}},
			}}}}
			res, err := s.accounts.UpdateOne(sc, bson.M{"_id": doc.AuctioneerID}, floored)
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("review obligation %s: auctioneer %s: %w", id, doc.AuctioneerID, auctionerrors.ErrAccountNotFound)
			}
		}
		return doc.model(), nil
	})
	if err != nil {
		return model.CommissionObligation{}, err
	}
	return result.(model.CommissionObligation), nil
}

// --- Settler ----------------------------------------------------------------

func (s *Store) SettleAuction(ctx context.Context, st model.Settlement) (model.Auction, error) {
	result, err := s.inTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		set := bson.M{"status": string(model.AuctionEnded), "ended_at": st.EndedAt}
		if st.WinnerID != "" {
			set["winner_id"] = st.WinnerID
		}

		var doc auctionDoc
		err := s.auctions.FindOneAndUpdate(sc,
			bson.M{
				"_id":         st.AuctionID,
				"status":      string(model.AuctionActive),
				"end_time":    bson.M{"$lte": st.EndedAt},
				"current_bid": toDecimal128(st.ExpectedBid),
			},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(withoutBids),
		).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			current, getErr := s.GetAuction(sc, st.AuctionID)
			if getErr != nil {
				return nil, getErr
			}
			if reason := repository.ClassifySettlementRejection(current, st); reason != nil {
				return nil, reason
			}
			return nil, fmt.Errorf("settle auction %s: %w", st.AuctionID, auctionerrors.ErrConflict)
		}
		if err != nil {
			return nil, err
		}
		if st.WinnerID == "" {
			return doc.model(), nil
		}

		res, err := s.accounts.UpdateOne(sc, bson.M{"_id": st.WinnerID}, bson.M{"$inc": bson.M{
			"money_spent":  toDecimal128(st.FinalPrice),
			"auctions_won": 1,
		}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, fmt.Errorf("settle auction %s: winner %s: %w", st.AuctionID, st.WinnerID, auctionerrors.ErrAccountNotFound)
		}

		if st.Obligation != nil {
			res, err := s.accounts.UpdateOne(sc, bson.M{"_id": st.Obligation.AuctioneerID}, bson.M{"$inc": bson.M{
				"unpaid_commission": toDecimal128(st.Obligation.AmountOwed),
			}})
			if err != nil {
				return nil, err
			}
			if res.MatchedCount == 0 {
				return nil, fmt.Errorf("settle auction %s: auctioneer %s: %w", st.AuctionID, st.Obligation.AuctioneerID, auctionerrors.ErrAccountNotFound)
			}
			if _, err := s.obligations.InsertOne(sc, newObligationDoc(*st.Obligation)); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return nil, fmt.Errorf("settle auction %s: obligation exists: %w", st.AuctionID, auctionerrors.ErrConflict)
				}
				return nil, err
			}
		}
		return doc.model(), nil
	})
	if err != nil {
		return model.Auction{}, err
	}
	return result.(model.Auction), nil
}

// inTransaction runs fn in a session transaction, tagging driver failures
func (s *Store) inTransaction(ctx context.Context, fn func(mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	sess, err := s.client.StartSession()
	if err != nil {
		return nil, storeError("start session", err)
	}
	defer sess.EndSession(ctx)

	result, err := sess.WithTransaction(ctx, fn)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, storeError("transaction", err)
	}
	return result, nil
}

func isDomainError(err error) bool {
	for _, target := range []error{
		auctionerrors.ErrNotFound,
		auctionerrors.ErrInvalidStateTransition,
		auctionerrors.ErrConflict,
		auctionerrors.ErrNoBids,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
