package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"reuse-market/internal/marketerrors"
	"reuse-market/utils"

	"github.com/gin-gonic/gin"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message.
// Classification happens here with errors.Is, never by matching message
// text downstream.
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, marketerrors.ErrItemNotFound):
		return http.StatusNotFound, "item not found"
	case errors.Is(err, marketerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, marketerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, marketerrors.ErrDuplicateBid):
		return http.StatusBadRequest, "bidder has already placed a bid on this item"
	case errors.Is(err, marketerrors.ErrOwnItemBid):
		return http.StatusForbidden, "sellers cannot bid on their own items"
	case errors.Is(err, marketerrors.ErrBidAlreadyAccepted):
		return http.StatusConflict, "bid has already been accepted"
	case errors.Is(err, marketerrors.ErrItemAlreadySold):
		return http.StatusConflict, "another bid on this item has already been accepted"
	case errors.Is(err, marketerrors.ErrBidNotAccepted):
		return http.StatusBadRequest, "bid has not been accepted"
	case errors.Is(err, marketerrors.ErrDuplicateReview):
		return http.StatusConflict, "this bid has already been reviewed"
	case errors.Is(err, marketerrors.ErrNotParticipant):
		return http.StatusBadRequest, "reviewer and reviewee must be the bidder or the seller"
	case errors.Is(err, marketerrors.ErrInvalidRating):
		return http.StatusBadRequest, "rating must be between 1 and 5"
	case errors.Is(err, marketerrors.ErrInvalidInput):
		return http.StatusBadRequest, "invalid request details"
	case errors.Is(err, marketerrors.ErrUnauthorized):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, marketerrors.ErrForbidden):
		return http.StatusForbidden, "not allowed"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError maps the error and sends the standard error envelope.
func RespondError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if ctx == nil {
		ctx = map[string]any{}
	}
	ctx["handler"] = handlerName
	ctx["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": "+message, ctx)
	} else {
		utils.Warn(handlerName+": "+message, ctx)
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
