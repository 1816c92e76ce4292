package arbitrage

import "errors"

var (
	// ErrInsufficientFunds is returned when native balance cannot cover a wrap
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrMalformedVenueResponse marks a quote or swap result without [in, ..., out] amounts
	ErrMalformedVenueResponse = errors.New("malformed venue response")
	// ErrInvalidPrice is returned when on-chain state cannot produce a positive price
	ErrInvalidPrice = errors.New("invalid price")
)
