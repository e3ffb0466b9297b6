package game

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrDuplicate           = fmt.Errorf("%w: agent already registered", ErrConflict)
	ErrQuotaExhausted      = errors.New("quota exhausted")
	ErrForbidden           = errors.New("forbidden")
	ErrCooldown            = errors.New("quest claim cooldown active")
	ErrAlreadyClaimed      = errors.New("quest already claimed")
	ErrPaymentInvalid      = errors.New("payment invalid")
	ErrDecisionUnavailable = errors.New("game master decision unavailable")
	ErrInvalidArgument     = errors.New("invalid argument")
)

func notFound(what, id string) error {
	return fmt.Errorf("%s %q: %w", what, id, ErrNotFound)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
