package auctionerrors

import "errors"

// ErrNotFound is the parent of every lookup failure
var ErrNotFound = errors.New("not found")

// Repository-level errors
var (
	ErrAuctionNotFound    = wrapNotFound("auction not found")
	ErrAccountNotFound    = wrapNotFound("account not found")
	ErrObligationNotFound = wrapNotFound("commission obligation not found")
	ErrNoBids             = errors.New("no bids found for auction")
	ErrAlreadyRegistered  = errors.New("user already registered")
	ErrConflict           = errors.New("record changed concurrently")
	ErrTransientStore     = errors.New("transient store failure")
)

// bidding errors
var (
	ErrInvalidBid       = errors.New("invalid bid")
	ErrAuctionNotActive = errors.New("auction is not active")
	ErrAuctionExpired   = errors.New("auction has ended")
)

// business logic errors
var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnpaidCommission       = errors.New("auctioneer has unpaid commission")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUnauthorized           = errors.New("authentication required")
	ErrForbidden              = errors.New("not allowed for this account")
)

type notFoundError struct{ msg string }

func wrapNotFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
