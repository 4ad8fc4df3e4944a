package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrExchangeDown = errors.New("exchange unavailable")
	ErrContextDone  = errors.New("context cancelled")
)

// VerificationParseError reports that the reasoning collaborator returned a
// payload that does not satisfy the verification schema. It is fatal for the
// candidate being verified and is surfaced to the caller rather than
// defaulted.
type VerificationParseError struct {
	MarketID string
	Reason   string
}

func (e *VerificationParseError) Error() string {
	return fmt.Sprintf("verification payload invalid for %s: %s", e.MarketID, e.Reason)
}
