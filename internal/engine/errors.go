package engine

import (
	"errors"
	"fmt"
)

var (
	ErrAuctionNotFound       = errors.New("auction not found")
	ErrAuctionSettled        = errors.New("auction settled")
	ErrAuctionAlreadySettled = errors.New("auction already settled")
	ErrAuctionNotEnded       = errors.New("auction not ended")
	ErrAuctionEnded          = errors.New("auction ended")
	ErrAssetAlreadyAuctioned = errors.New("asset already auctioned")
	ErrNotApprovedForCustody = errors.New("engine not approved for custody")
	ErrEndTimeInPast         = errors.New("end time in past")
	ErrEndTimeTooFar         = errors.New("end time too far ahead")
	ErrNothingToWithdraw     = errors.New("nothing to withdraw")

	ErrBidTooLow = errors.New("bid too low")
	// ErrBidBelowStartPrice is the start-price variant of ErrBidTooLow:
	// errors.Is matches both sentinels.
	ErrBidBelowStartPrice = fmt.Errorf("%w: below start price", ErrBidTooLow)
)
