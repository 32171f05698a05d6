package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrNoActivePlayer        = errors.New("no active player selected")
	ErrInvalidPlayer         = errors.New("player is not on either roster for this game")
	ErrSyncFailure           = errors.New("league data sync failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
