package helpers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"auction-marketplace/internal/auctionerrors"
	"auction-marketplace/internal/auth"
	"auction-marketplace/internal/media"
	model "auction-marketplace/internal/models"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// HandleServiceError maps err to a status, writes the error envelope and logs it
func HandleServiceError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrAccountNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrObligationNotFound):
		return http.StatusNotFound, "payment proof not found"
	case errors.Is(err, auctionerrors.ErrNoBids):
		return http.StatusNotFound, "no bids found for auction"
	case errors.Is(err, auctionerrors.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, auctionerrors.ErrInvalidBid):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return http.StatusConflict, "auction is not active"
	case errors.Is(err, auctionerrors.ErrAuctionExpired):
		return http.StatusConflict, "auction has ended"
	case errors.Is(err, auctionerrors.ErrInvalidInput), errors.Is(err, media.ErrUnsupportedType):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, auctionerrors.ErrInvalidStateTransition):
		return http.StatusConflict, "invalid state transition"
	case errors.Is(err, auctionerrors.ErrAlreadyRegistered):
		return http.StatusConflict, "user already registered"
	case errors.Is(err, auctionerrors.ErrConflict):
		return http.StatusConflict, "request conflicts with current state"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auctionerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "user not authenticated"
	case errors.Is(err, auctionerrors.ErrUnpaidCommission):
		return http.StatusForbidden, "you have unpaid commissions"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "not allowed"
	case errors.Is(err, auctionerrors.ErrTransientStore):
		return http.StatusServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// RequireAccount returns the authenticated account or writes a 401
func RequireAccount(c *gin.Context, handlerName string) (model.Account, bool) {
	acct, ok := auth.CurrentAccount(c)
	if !ok {
		HandleServiceError(c, handlerName, auctionerrors.ErrUnauthorized, nil)
		return model.Account{}, false
	}
	return acct, true
}

// OpenImage opens the uploaded image in field after checking its content type.
// The caller closes the returned file.
func OpenImage(c *gin.Context, field string) (multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w - %s is required", auctionerrors.ErrInvalidInput, field)
	}
	if err := media.CheckContentType(header.Header.Get("Content-Type")); err != nil {
		return nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	return f, nil
}
