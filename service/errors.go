package service

import (
	"errors"
)

// Validation
var (
	ErrBetOutOfRange      = errors.New("bet is outside the allowed range")
	ErrSelfDuel           = errors.New("cannot duel yourself")
	ErrInvalidCoordinates = errors.New("coordinates are out of range")
	ErrInvalidLinkCode    = errors.New("link code is invalid or expired")
)

// Permission
var (
	ErrImmuneTarget = errors.New("target is immune to moderation")
)

// Not found
var (
	ErrNoActiveWarns     = errors.New("user has no active warnings")
	ErrAccountNotLinked  = errors.New("chat account is not linked to a profile")
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuelOfferNotFound = errors.New("duel offer expired or already taken")
)

// Conflicts and external failures
var (
	ErrInitiatorInsufficientFunds = errors.New("initiator has insufficient credits")
	ErrAcceptorInsufficientFunds  = errors.New("acceptor has insufficient credits")
	ErrAlreadyLinked              = errors.New("chat account is already linked to another profile")
	ErrPlaceNotResolved           = errors.New("could not resolve a place for these coordinates")
)
