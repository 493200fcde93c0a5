package marketerrors

import "errors"

// Repository-level errors
var (
	ErrItemNotFound = errors.New("item not found")
	ErrUserNotFound = errors.New("user not found")
	ErrBidNotFound  = errors.New("bid not found")
)

// business logic errors
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateBid       = errors.New("bidder has already placed a bid on this item")
	ErrOwnItemBid         = errors.New("sellers cannot bid on their own items")
	ErrBidAlreadyAccepted = errors.New("bid has already been accepted")
	ErrBidNotAccepted     = errors.New("bid has not been accepted")
	ErrItemAlreadySold    = errors.New("another bid on this item has already been accepted")
	ErrNotParticipant     = errors.New("user is not the bidder or the seller of this bid")
	ErrDuplicateReview    = errors.New("reviewer has already reviewed this bid")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

// auth errors
var (
	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("not allowed")
)
